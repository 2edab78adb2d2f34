package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

type entry struct {
	Level     string         `json:"level"`
	Time      string         `json:"time"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger writes JSON-line log entries. Constructed once at process start
// and passed into each component; there is no package-level logger.
type Logger struct {
	out       io.Writer
	component string
}

// New returns a logger writing to out (stdout when nil).
func New(out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{out: out}
}

// With returns a logger tagging every entry with the given component.
func (l *Logger) With(component string) *Logger {
	return &Logger{out: l.out, component: component}
}

func (l *Logger) log(level, msg string, fields map[string]any) {
	e := entry{
		Level:     level,
		Time:      time.Now().UTC().Format(time.RFC3339Nano),
		Component: l.component,
		Message:   msg,
		Fields:    fields,
	}
	b, _ := json.Marshal(e)
	fmt.Fprintln(l.out, string(b))
}

func (l *Logger) Info(msg string, fields map[string]any)  { l.log("info", msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]any)  { l.log("warn", msg, fields) }
func (l *Logger) Error(msg string, fields map[string]any) { l.log("error", msg, fields) }
