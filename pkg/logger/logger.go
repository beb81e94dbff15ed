// Package logger wraps log/slog with the field vocabulary the HTTP
// layer uses. The binaries configure slog directly; this package exists
// so handlers can log with typed domain fields (student IDs, risk
// scores) without importing slog everywhere.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIELDS
// ══════════════════════════════════════════════════════════════════════════════

// Field is a typed key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F creates a field from an arbitrary value.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field     { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field       { return Field{Key: key, Value: value} }
func Any(key string, value any) Field         { return Field{Key: key, Value: value} }

// Duration renders a duration in its human form rather than nanoseconds.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Err attaches an error under the conventional "error" key.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain field helpers.
func StudentID(id string) Field     { return String("student_id", id) }
func TeacherID(id string) Field     { return String("teacher_id", id) }
func AssessmentID(id string) Field  { return String("assessment_id", id) }
func RiskScore(score float64) Field { return Float64("risk_score", score) }
func RiskLevel(level string) Field  { return String("risk_level", level) }

// ══════════════════════════════════════════════════════════════════════════════
// LOGGER
// ══════════════════════════════════════════════════════════════════════════════

// Logger emits structured JSON log lines via slog.
type Logger struct {
	s *slog.Logger
}

// Options configures a Logger.
type Options struct {
	// Output defaults to os.Stdout.
	Output io.Writer

	// Level is the minimum level that gets emitted.
	Level slog.Level

	// AddSource includes the file:line of the call site.
	AddSource bool
}

// New creates a Logger writing JSON to opts.Output.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	})
	return &Logger{s: slog.New(handler)}
}

// Default creates an info-level Logger on stdout.
func Default() *Logger {
	return New(Options{Level: slog.LevelInfo})
}

// FromSlog wraps an already configured slog logger, so the HTTP layer
// shares the handler the binary set up.
func FromSlog(s *slog.Logger) *Logger {
	if s == nil {
		s = slog.Default()
	}
	return &Logger{s: s}
}

// ParseLevel maps a config string onto a slog level. Unknown strings
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a Logger that attaches fields to every line.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{s: l.s.With(args(fields)...)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.s.Debug(msg, args(fields)...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.s.Info(msg, args(fields)...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.s.Warn(msg, args(fields)...) }
func (l *Logger) Error(msg string, fields ...Field) { l.s.Error(msg, args(fields)...) }

// args flattens fields into slog's alternating key-value form.
func args(fields []Field) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}
