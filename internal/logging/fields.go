package logging

import "log/slog"

// Common field names for consistent logging.
const (
	FieldService    = "service"
	FieldRequestID  = "request_id"
	FieldSource     = "source"
	FieldLineNumber = "line_number"
	FieldColumns    = "columns"
	FieldKey        = "key"
	FieldToken      = "token"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldEventID    = "event_id"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Source returns a slog attribute for the CSV source identifier.
func Source(source string) slog.Attr {
	return slog.String(FieldSource, source)
}

// LineNumber returns a slog attribute for a source line number.
func LineNumber(n int64) slog.Attr {
	return slog.Int64(FieldLineNumber, n)
}

// Columns returns a slog attribute for a column count.
func Columns(n int) slog.Attr {
	return slog.Int(FieldColumns, n)
}

// Key returns a slog attribute for a property key.
func Key(key string) slog.Attr {
	return slog.String(FieldKey, key)
}

// Token returns a slog attribute for a header token.
func Token(token string) slog.Attr {
	return slog.String(FieldToken, token)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// EventID returns a slog attribute for an event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}
