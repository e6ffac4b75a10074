package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tasknotes-backend/internal/tasks"
)

const shutdownTimeout = 10 * time.Second

// run serves on ln until ctx is cancelled, then drains the server. The
// writer outlives the drain: it is stopped only after Shutdown returns, so
// requests still in flight can finish their mutations.
func run(ctx context.Context, srv *http.Server, ln net.Listener, writer *tasks.Writer, logger *log.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()
	if writer != nil {
		g.Go(func() error { return writer.Run(writerCtx) })
	}

	g.Go(func() error {
		logger.WithField("addr", ln.Addr().String()).Info("🚀 API server is running")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopWriter()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
