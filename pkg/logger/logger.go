package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents the logging level
type Level int

const (
	// Debug level for detailed troubleshooting
	Debug Level = iota
	// Info level for general operational information
	Info
	// Warn level for potentially harmful situations
	Warn
	// Error level for error events that might still allow the session to continue
	Error
	// Fatal level for severe error events that will lead the application to abort
	Fatal
)

var levelNames = map[Level]string{
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
	Fatal: "FATAL",
}

var levelColors = map[Level]*color.Color{
	Debug: color.New(color.FgCyan),
	Info:  color.New(color.FgGreen),
	Warn:  color.New(color.FgYellow),
	Error: color.New(color.FgRed),
	Fatal: color.New(color.FgHiRed, color.Bold),
}

// ParseLevel parses a level string into a Level
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return Debug, nil
	case "INFO":
		return Info, nil
	case "WARN":
		return Warn, nil
	case "ERROR":
		return Error, nil
	case "FATAL":
		return Fatal, nil
	default:
		return Info, fmt.Errorf("unknown log level: %s", level)
	}
}

// Logger is a leveled logger with optional field context. Diagnostics go to
// stderr so forwarded traffic tooling reading stdout is never polluted.
type Logger struct {
	level      Level
	out        io.Writer
	fields     map[string]interface{}
	mu         sync.Mutex
	UseColors  bool
	timeFormat string
}

// Config represents logger configuration
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	UseColors bool   `yaml:"use_colors" mapstructure:"use_colors"`
}

// New creates a new logger with the given configuration
func New(cfg *Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := NewDefault()
	l.level = level
	l.UseColors = cfg.UseColors
	return l, nil
}

// NewDefault creates a new logger with default configuration
func NewDefault() *Logger {
	return &Logger{
		level:      Info,
		out:        os.Stderr,
		fields:     make(map[string]interface{}),
		UseColors:  true,
		timeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// WithField returns a new logger with the field added to the context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with the fields added to the context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLogger := &Logger{
		level:      l.level,
		out:        l.out,
		UseColors:  l.UseColors,
		timeFormat: l.timeFormat,
		fields:     make(map[string]interface{}, len(l.fields)+len(fields)),
	}

	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}

	return newLogger
}

// log logs a message at the specified level
func (l *Logger) log(level Level, msg string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var builder strings.Builder

	builder.WriteString(time.Now().Format(l.timeFormat))
	builder.WriteString(" ")

	if l.UseColors {
		builder.WriteString(levelColors[level].Sprint(levelNames[level]))
	} else {
		builder.WriteString(levelNames[level])
	}
	builder.WriteString(" ")

	builder.WriteString(msg)

	if len(l.fields) > 0 {
		builder.WriteString(" ")
		first := true
		for k, v := range l.fields {
			if !first {
				builder.WriteString(", ")
			}
			builder.WriteString(k)
			builder.WriteString("=")
			builder.WriteString(fmt.Sprintf("%v", v))
			first = false
		}
	}

	builder.WriteString("\n")

	fmt.Fprint(l.out, builder.String())

	if level == Fatal {
		os.Exit(1)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(Debug, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(Info, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(Warn, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(Error, msg, args...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log(Fatal, msg, args...)
}
