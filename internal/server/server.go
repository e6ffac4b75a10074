// Package server assembles the HTTP handler: routes, CORS, optional bearer
// auth, access logging and metrics.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"tasknotes-backend/internal/analytics"
	"tasknotes-backend/internal/auth"
	"tasknotes-backend/internal/tasks"
)

type Options struct {
	Service     *tasks.Service
	Logger      *log.Logger
	AuthSecret  string
	CORSOrigins []string
}

func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	r := mux.NewRouter()
	r.Use(accessLog(logger))

	// Health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	var apiMW []mux.MiddlewareFunc
	if opts.AuthSecret != "" {
		apiMW = append(apiMW, auth.New([]byte(opts.AuthSecret)).Wrap)
	}
	events := analytics.NewRecorder(logger)
	tasks.Register(r, opts.Service, events, logger, apiMW...)

	ev := r.PathPrefix("/api/events").Subrouter()
	ev.Use(apiMW...)
	ev.HandleFunc("/app_opened", analytics.AppOpenedHandler(events)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Idempotency-Key", "X-Source-Event-Key", "X-Platform", "X-App-Version", "X-Session-Id", "X-Device-Locale"},
	})

	return c.Handler(r)
}
