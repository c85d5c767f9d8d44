package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is an immutable set of fields bound to a logrus logger. The With*
// methods return a new Logger and never modify the receiver.
type Logger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// Config selects level, format and destination.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output string // stdout, stderr, or a file path
	Caller bool
}

// New builds a Logger. An unknown level falls back to info.
func New(cfg Config) (*Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	switch cfg.Output {
	case "", "stdout":
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		l.SetOutput(file)
	}

	l.SetReportCaller(cfg.Caller)

	return &Logger{logger: l, fields: logrus.Fields{}}, nil
}

// NewWriter logs to w, for tests.
func NewWriter(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{logger: l, fields: logrus.Fields{}}
}

// Nop discards everything.
func Nop() *Logger {
	return NewWriter(io.Discard, logrus.PanicLevel)
}

func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{logger: l.logger, fields: merged}
}

func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) WithDriverID(id string) *Logger { return l.WithField("driver_id", id) }
func (l *Logger) WithShiftID(id string) *Logger  { return l.WithField("shift_id", id) }
func (l *Logger) WithTripID(id string) *Logger   { return l.WithField("trip_id", id) }

func (l *Logger) Debug(msg string) { l.entry().Debug(msg) }
func (l *Logger) Info(msg string)  { l.entry().Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry().Warn(msg) }
func (l *Logger) Error(msg string) { l.entry().Error(msg) }
func (l *Logger) Fatal(msg string) { l.entry().Fatal(msg) }

func (l *Logger) Debugf(format string, args ...any) { l.entry().Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry().Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry().Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry().Errorf(format, args...) }
func (l *Logger) Fatalf(format string, args ...any) { l.entry().Fatalf(format, args...) }

// LogShiftEvent records a shift lifecycle transition.
func (l *Logger) LogShiftEvent(driverID, shiftID, event string, details map[string]any) {
	fields := map[string]any{
		"driver_id": driverID,
		"shift_id":  shiftID,
		"event":     event,
		"type":      "shift_event",
	}
	for k, v := range details {
		fields[k] = v
	}
	l.WithFields(fields).Info("shift event")
}

// Writer exposes the underlying output at info level, for frameworks that
// want an io.Writer.
func (l *Logger) Writer() *io.PipeWriter {
	return l.entry().WriterLevel(logrus.InfoLevel)
}

func (l *Logger) entry() *logrus.Entry {
	return l.logger.WithFields(l.fields)
}
