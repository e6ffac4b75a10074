package view

// StatusKind selects how a status message is styled.
type StatusKind string

const (
	StatusInfo  StatusKind = "info"
	StatusOK    StatusKind = "ok"
	StatusError StatusKind = "error"
)

// Status is the one-line message a client shows after each operation.
type Status struct {
	Message string
	Kind    StatusKind
}

func Info(msg string) Status  { return Status{Message: msg, Kind: StatusInfo} }
func OK(msg string) Status    { return Status{Message: msg, Kind: StatusOK} }
func Error(msg string) Status { return Status{Message: msg, Kind: StatusError} }

// Text prefixes the message with a marker for its kind. An empty message
// renders as an empty string.
func (s Status) Text() string {
	if s.Message == "" {
		return ""
	}
	switch s.Kind {
	case StatusOK:
		return "✅ " + s.Message
	case StatusError:
		return "⚠️ " + s.Message
	default:
		return s.Message
	}
}
