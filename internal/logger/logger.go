package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer
}

// Logger wraps zerolog to provide a simplified API for the scenario runner.
type Logger struct {
	base zerolog.Logger
}

// New creates a configured Logger instance based on Options.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var output io.Writer = writer
	if opts.HumanReadable {
		console := zerolog.NewConsoleWriter()
		console.Out = writer
		console.TimeFormat = time.RFC3339
		output = console
	}

	base := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{base: base}, nil
}

// With returns a derived logger that always writes the supplied key/value pairs.
func (l *Logger) With(pairs ...any) *Logger {
	if l == nil {
		return nil
	}

	builder := l.base.With()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		builder = builder.Interface(key, pairs[i+1])
	}

	return &Logger{base: builder.Logger()}
}

// Debug writes a debug-level log entry if enabled.
func (l *Logger) Debug(msg string, pairs ...any) {
	if l == nil {
		return
	}
	l.emit(l.base.Debug(), msg, pairs)
}

// Info writes an informational log entry.
func (l *Logger) Info(msg string, pairs ...any) {
	if l == nil {
		return
	}
	l.emit(l.base.Info(), msg, pairs)
}

// Warn writes a warning level log entry.
func (l *Logger) Warn(msg string, pairs ...any) {
	if l == nil {
		return
	}
	l.emit(l.base.Warn(), msg, pairs)
}

// Error writes an error log entry including the supplied error context.
func (l *Logger) Error(err error, msg string, pairs ...any) {
	if l == nil {
		return
	}
	event := l.base.Error()
	if err != nil {
		event = event.Err(err)
	}
	l.emit(event, msg, pairs)
}

func (l *Logger) emit(event *zerolog.Event, msg string, pairs []any) {
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, pairs[i+1])
	}
	event.Msg(msg)
}
