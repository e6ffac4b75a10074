package tasks

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"tasknotes-backend/internal/analytics"
	"tasknotes-backend/internal/view"
)

const (
	msgNotFound   = "Task not found"
	msgValidation = "Title and content required"

	createMaxBody = 1 << 20
)

// Register mounts the task API under /api and the board page at /.
// Middlewares apply to the /api routes only.
func Register(r *mux.Router, svc *Service, events *analytics.Recorder, logger *log.Logger, mws ...mux.MiddlewareFunc) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(mws...)

	api.HandleFunc("/tasks", ListTasksHandler(svc, logger)).Methods(http.MethodGet)
	api.HandleFunc("/task/{id}", GetTaskHandler(svc, logger)).Methods(http.MethodGet)
	api.HandleFunc("/task", CreateTaskHandler(svc, events, logger)).Methods(http.MethodPost)
	api.HandleFunc("/task/{id}", DeleteTaskHandler(svc, events, logger)).Methods(http.MethodDelete)

	r.HandleFunc("/", BoardPageHandler(svc, logger)).Methods(http.MethodGet)
}

// -------------------------------
// HANDLERS
// -------------------------------

func ListTasksHandler(svc *Service, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

func GetTaskHandler(svc *Service, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func CreateTaskHandler(svc *Service, events *analytics.Recorder, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateRequest
		dec := sonic.ConfigStd.NewDecoder(io.LimitReader(r.Body, createMaxBody))
		if err := dec.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, msgValidation)
			return
		}

		task, err := svc.Create(r.Context(), body)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		events.Log(r.Context(), analytics.FromRequest(r), "task_created", map[string]any{
			"task_id":     task.ID,
			"title_len":   len(task.Title),
			"content_len": len(task.Content),
		}, analytics.SourceEventKeyFromRequest(r))

		writeJSON(w, http.StatusCreated, task)
	}
}

func DeleteTaskHandler(svc *Service, events *analytics.Recorder, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		events.Log(r.Context(), analytics.FromRequest(r), "task_deleted", map[string]any{
			"task_id": id,
		}, analytics.SourceEventKeyFromRequest(r))

		writeJSON(w, http.StatusOK, deleteResponse{Success: true})
	}
}

// BoardPageHandler renders the task board server-side. It honours the same
// ?q= and ?sort= controls as the interactive clients.
func BoardPageHandler(svc *Service, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		mode, err := view.ParseSortMode(r.URL.Query().Get("sort"))
		if err != nil {
			mode = view.SortNone
		}

		page := view.Page{Query: query, Sort: mode, Location: time.Local}
		status := http.StatusOK

		tasks, err := svc.List(r.Context())
		if err != nil {
			logger.WithError(err).Error("render board")
			page.Status = view.Error(err.Error())
			status = http.StatusInternalServerError
		} else {
			page.Tasks = view.Compute(tasks, query, mode)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, view.RenderPage(page))
	}
}

// -------------------------------
// RESPONSES
// -------------------------------

func writeServiceError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, msgValidation)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		logger.WithError(err).WithField("path", r.URL.Path).Error("task request failed")
		writeError(w, http.StatusInternalServerError, strings.TrimSpace(err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigStd.NewEncoder(w).Encode(v)
}
