package notify

import "github.com/rs/zerolog"

// LogNotifier logs events through zerolog.
type LogNotifier struct {
	Logger zerolog.Logger
}

// NewLogNotifier creates a notifier that logs every event.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(event Event) {
	entry := n.Logger.Info()
	switch event.Severity {
	case SeverityWarning:
		entry = n.Logger.Warn()
	case SeverityError:
		entry = n.Logger.Error()
	}

	entry.
		Str("event", string(event.Type)).
		Time("at", event.Timestamp).
		Fields(event.Metadata).
		Msg(event.Message)
}
