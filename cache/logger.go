package cache

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Field is a structured log attribute.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int64 creates an int64 field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger is the minimal structured logging interface used by the
// decorator. The default is NopLogger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}

func (NopLogger) Error(string, ...Field) {}

// jsonLogger writes one JSON object per line.
type jsonLogger struct {
	mu    sync.Mutex
	w     io.Writer
	debug bool
}

// NewLogger returns a JSON line logger writing to w. Debug output is
// suppressed unless debug is true.
func NewLogger(w io.Writer, debug bool) Logger {
	return &jsonLogger{w: w, debug: debug}
}

func (l *jsonLogger) Debug(msg string, fields ...Field) {
	if !l.debug {
		return
	}
	l.write("debug", msg, fields)
}

func (l *jsonLogger) Error(msg string, fields ...Field) {
	l.write("error", msg, fields)
}

func (l *jsonLogger) write(level, msg string, fields []Field) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	for _, f := range fields {
		entry[f.Key] = f.Value
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(data)
}

// Ensure the logger implementations satisfy Logger
var (
	_ Logger = NopLogger{}
	_ Logger = (*jsonLogger)(nil)
)
