package errutil

import (
	"log/slog"
)

// LogMsg logs err at warning level with a message, if err is not nil.
func LogMsg(err error, msg string, args ...any) {
	if err != nil {
		allArgs := append([]any{"error", err}, args...)
		slog.Warn(msg, allArgs...)
	}
}

// ReportError logs an unexpected error at error level.
// All unexpected-error reporting funnels through here so a future reporting
// backend only needs one hook.
func ReportError(err error, msg string, args ...any) {
	if err != nil {
		allArgs := append([]any{"error", err}, args...)
		slog.Error(msg, allArgs...)
	}
}
