package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// LoggerOptions configures NewRuntimeLogger.
type LoggerOptions struct {
	Level  string
	File   string // optional; receives logfmt output
	Prefix string
}

// RuntimeLogger fans log records to a styled console sink and an optional
// logfmt file sink.
type RuntimeLogger struct {
	sinks     []*charmLog.Logger
	closeFile func() error
	filePath  string
}

// NewRuntimeLogger creates a RuntimeLogger writing to stderr and, when
// opts.File is set, appending to that file.
func NewRuntimeLogger(stderr io.Writer, opts LoggerOptions) (*RuntimeLogger, error) {
	levelName := opts.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := charmLog.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", opts.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "staffplan"
	}

	console := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Formatter:       charmLog.TextFormatter,
	})
	logger := &RuntimeLogger{sinks: []*charmLog.Logger{console}}
	if opts.File == "" {
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	fileLogger := charmLog.NewWithOptions(f, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = f.Close
	logger.filePath = opts.File
	return logger, nil
}

// FilePath returns the active log file, or "" when only the console is used.
func (l *RuntimeLogger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Close closes the file sink.
func (l *RuntimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// Debug logs to every sink.
func (l *RuntimeLogger) Debug(msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		sink.Debug(msg, keyvals...)
	}
}

// Info logs to every sink.
func (l *RuntimeLogger) Info(msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		sink.Info(msg, keyvals...)
	}
}

// Warn logs to every sink.
func (l *RuntimeLogger) Warn(msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		sink.Warn(msg, keyvals...)
	}
}

// Error logs to every sink.
func (l *RuntimeLogger) Error(msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		sink.Error(msg, keyvals...)
	}
}
