package analytics

import (
	"context"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"tasknotes-backend/internal/auth"
)

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tasknotes_task_events_total",
	Help: "Task lifecycle events recorded, by event name and platform.",
}, []string{"event", "platform"})

// Envelope is what we attach to every event.
type Envelope struct {
	Subject      string // token subject, when the API is behind auth
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "web", "cli", "tui", "ios", "android":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	subject, _ := auth.SubjectFromContext(r.Context())

	return Envelope{
		Subject:      subject,
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

// SourceEventKeyFromRequest returns the client-provided idempotency key, if any.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Recorder writes task events to the log and to a Prometheus counter.
type Recorder struct {
	log *log.Logger
}

func NewRecorder(logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Recorder{log: logger}
}

// Log records one event. Never pass raw task text in props; callers send
// lengths and ids only.
func (rec *Recorder) Log(ctx context.Context, env Envelope, eventName string, props map[string]any, sourceEventKey string) {
	if rec == nil || eventName == "" {
		return
	}

	fields := log.Fields{
		"event":    eventName,
		"platform": env.Platform,
	}
	if env.Subject != "" {
		fields["subject"] = env.Subject
	}
	if env.SessionID != "" {
		fields["session_id"] = env.SessionID
	}
	if env.AppVersion != "" {
		fields["app_version"] = env.AppVersion
	}
	if env.DeviceLocale != "" {
		fields["device_locale"] = env.DeviceLocale
	}
	if sourceEventKey != "" {
		fields["source_event_key"] = sourceEventKey
	}
	for k, v := range props {
		fields[k] = v
	}

	rec.log.WithContext(ctx).WithFields(fields).Info("task event")
	eventsTotal.WithLabelValues(eventName, env.Platform).Inc()
}
