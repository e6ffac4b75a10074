package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"tasknotes-backend/internal/config"
	"tasknotes-backend/internal/server"
	"tasknotes-backend/internal/tasks"
)

func main() {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("❌ Failed to load config")
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("❌ Failed to open store")
	}
	defer closeStore()

	var writer *tasks.Writer
	opts := []tasks.Option{tasks.WithLogger(logger)}
	if cfg.SerializeWrites {
		writer = tasks.NewWriter(64)
		opts = append(opts, tasks.WithWriter(writer))
	} else {
		logger.Warn("SERIALIZE_WRITES=false: concurrent writes may lose updates")
	}
	svc := tasks.NewService(st, opts...)

	srv := &http.Server{
		Handler: server.NewHandler(server.Options{
			Service:     svc,
			Logger:      logger,
			AuthSecret:  cfg.AuthSecret,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		closeStore()
		logger.WithError(err).WithField("addr", cfg.Addr).Fatal("❌ Failed to listen")
	}

	if err := run(ctx, srv, ln, writer, logger); err != nil {
		logger.WithError(err).Error("server stopped with error")
		closeStore()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
