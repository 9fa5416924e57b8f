package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"smsvault/internal/config"
)

// Logger interface is used to allow tests to inject custom loggers.
type Logger interface {
	Fatalf(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	WithField(key string, value interface{}) Logger
	Writer() io.Writer
	SetWriter(io.Writer)
}

type logger struct {
	entry *log.Entry
}

// NewLogger returns a new Logger backed by Logrus, configured from the
// logging section of the service config.
func NewLogger(cfg config.LoggingConfig) (Logger, error) {
	level, err := GetLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := log.New()
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.Formatter = &log.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"}
	default:
		l.Formatter = &log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		}
	}

	switch cfg.OutputPath {
	case "", "stdout":
		l.Out = os.Stdout
	case "stderr":
		l.Out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log output: %w", err)
		}
		l.Out = f
	}

	return &logger{entry: log.NewEntry(l)}, nil
}

// NewNop returns a Logger that discards everything. Handy in tests.
func NewNop() Logger {
	l := log.New()
	l.Out = io.Discard
	return &logger{entry: log.NewEntry(l)}
}

// GetLogLevel converts the level string to its logrus value. It returns an
// error if the level is invalid.
func GetLogLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}

func (l *logger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }
func (l *logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }

func (l *logger) WithField(key string, value interface{}) Logger {
	return &logger{entry: l.entry.WithField(key, value)}
}

func (l *logger) Writer() io.Writer {
	return l.entry.Logger.Out
}

func (l *logger) SetWriter(writer io.Writer) {
	l.entry.Logger.Out = writer
}
