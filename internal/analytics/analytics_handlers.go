package analytics

import (
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// AppOpenedHandler records "app_opened", reported by a client when it starts.
// The body is optional; a missing or malformed one still counts the event.
func AppOpenedHandler(rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ColdStart bool   `json:"cold_start"`
			From      string `json:"from"` // icon/shell/deeplink/unknown
		}
		_ = sonic.ConfigStd.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&body)

		from := strings.ToLower(strings.TrimSpace(body.From))
		switch from {
		case "icon", "shell", "deeplink":
		default:
			from = "unknown"
		}

		props := map[string]any{
			"cold_start": body.ColdStart,
			"from":       from,
		}
		rec.Log(r.Context(), FromRequest(r), "app_opened", props, SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}
