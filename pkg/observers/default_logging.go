package observers

import "log/slog"

// NewDefaultLoggingObserver creates a logging observer on slog.Default tagged with the junction component
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(slog.Default().With("component", "tjunction"))
}
