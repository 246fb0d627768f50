package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Logger writes leveled records through zerolog.
type Logger struct {
	zl zerolog.Logger
}

// Init installs the global logger described by cfg.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(&cfg, Output(cfg.Output)))
}

// New creates a logger writing to w. Console formats name the component in
// front of each message instead of as a trailing field.
func New(cfg *Config, w io.Writer) *Logger {
	if isConsole(cfg.Format) {
		w = consoleWriter(w, cfg.NoColor)
	}
	zc := zerolog.New(w).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{zl: zc.Logger().Level(parseLevel(cfg.Level))}
}

// Output maps a configured output name to a stream. Anything but stdout
// goes to stderr so that stdout stays free for result records.
func Output(name string) io.Writer {
	if strings.EqualFold(name, "stdout") {
		return os.Stdout
	}
	return os.Stderr
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func isConsole(format string) bool {
	switch strings.ToLower(format) {
	case FormatConsole, FormatPretty, "text":
		return true
	}
	return false
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	component := color.New(color.FgBlue)
	if noColor {
		component.DisableColor()
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
		FormatPrepare: func(evt map[string]any) error {
			name, ok := evt[FieldComponent].(string)
			if !ok {
				return nil
			}
			delete(evt, FieldComponent)
			evt[zerolog.MessageFieldName] = fmt.Sprintf("%s %v", component.Sprint(name+":"), evt[zerolog.MessageFieldName])
			return nil
		},
	}
}

type runKey struct{}

type runIdentity struct {
	job, runID string
}

// ContextWithRun stores the run identity picked up by WithContext.
func ContextWithRun(ctx context.Context, job, runID string) context.Context {
	return context.WithValue(ctx, runKey{}, runIdentity{job: job, runID: runID})
}

// WithContext returns l tagged with the run identity stored in ctx, or l
// itself when ctx carries none.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id, ok := ctx.Value(runKey{}).(runIdentity)
	if !ok {
		return l
	}
	zc := l.zl.With()
	if id.job != "" {
		zc = zc.Str(FieldJob, id.job)
	}
	if id.runID != "" {
		zc = zc.Str(FieldRunID, id.runID)
	}
	return &Logger{zl: zc.Logger()}
}

// WithComponent returns l tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, name).Logger()}
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level string) bool {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return false
	}
	return lvl >= l.zl.GetLevel() && lvl >= zerolog.GlobalLevel()
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { write(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { write(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { write(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { write(l.zl.Error(), msg, fields) }

// write is a no-op for events below the logger's level, which zerolog
// reports as nil.
func write(e *zerolog.Event, msg string, fields []map[string]any) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}

var globalLogger *Logger

// SetGlobalLogger replaces the global logger and drops the component
// loggers derived from the previous one.
func SetGlobalLogger(l *Logger) {
	globalLogger = l
	resetDerived()
}

// GetGlobalLogger returns the global logger, creating a console one on
// stderr at info level if Init was never called.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		cfg := Config{}
		cfg.ApplyDefaults()
		globalLogger = New(&cfg, os.Stderr)
	}
	return globalLogger
}

// Info logs on the global logger.
func Info(msg string, fields ...map[string]any) {
	GetGlobalLogger().Info(msg, fields...)
}
