// Package logging provides the structured logging interface used by bigcalc.
// The zerolog adapter is the default; the standard library adapter exists
// for embedding in programs that already configure a log.Logger.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the logging interface used across the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	// Error logs msg with err attached.
	Error(msg string, err error, fields ...Field)

	// Printf and Println make Logger usable where a *log.Logger is expected,
	// such as http.Server.ErrorLog wrappers.
	Printf(format string, args ...any)
	Println(args ...any)
}

// Field is a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field          { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field        { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err creates an error field.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Setup configures the global zerolog logger used by packages that log
// through github.com/rs/zerolog/log. An empty or unknown level means info.
// Console output is human-readable; any other writer receives JSON.
func Setup(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if w == os.Stderr || w == os.Stdout {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ZerologAdapter adapts a zerolog.Logger to the Logger interface.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger backed by zerolog.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewDefaultLogger writes timestamped JSON to stderr.
func NewDefaultLogger() *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(os.Stderr).With().Timestamp().Logger(),
	)
}

// NewLogger creates a Logger writing to w, tagging every entry with
// component.
func NewLogger(w io.Writer, component string) *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(w).With().Str("component", component).Timestamp().Logger(),
	)
}

func applyFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case int64:
			event = event.Int64(f.Key, v)
		case uint64:
			event = event.Uint64(f.Key, v)
		case float64:
			event = event.Float64(f.Key, v)
		case bool:
			event = event.Bool(f.Key, v)
		case time.Duration:
			event = event.Dur(f.Key, v)
		case error:
			event = event.AnErr(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	return event
}

func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	applyFields(z.logger.Debug(), fields).Msg(msg)
}

func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	applyFields(z.logger.Info(), fields).Msg(msg)
}

func (z *ZerologAdapter) Warn(msg string, fields ...Field) {
	applyFields(z.logger.Warn(), fields).Msg(msg)
}

func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	applyFields(z.logger.Error().Err(err), fields).Msg(msg)
}

func (z *ZerologAdapter) Printf(format string, args ...any) {
	z.logger.Info().Msgf(format, args...)
}

func (z *ZerologAdapter) Println(args ...any) {
	z.logger.Info().Msgf("%v", args)
}

// StdLoggerAdapter adapts a standard log.Logger to the Logger interface.
type StdLoggerAdapter struct {
	logger *stdlog.Logger
}

// NewStdLoggerAdapter creates a Logger backed by a standard log.Logger.
func NewStdLoggerAdapter(logger *stdlog.Logger) *StdLoggerAdapter {
	return &StdLoggerAdapter{logger: logger}
}

func (s *StdLoggerAdapter) emit(level, msg string, fields []Field) {
	if len(fields) == 0 {
		s.logger.Println(level, msg)
		return
	}
	s.logger.Printf("%s %s %v\n", level, msg, fields)
}

func (s *StdLoggerAdapter) Debug(msg string, fields ...Field) { s.emit("[DEBUG]", msg, fields) }
func (s *StdLoggerAdapter) Info(msg string, fields ...Field)  { s.emit("[INFO]", msg, fields) }
func (s *StdLoggerAdapter) Warn(msg string, fields ...Field)  { s.emit("[WARN]", msg, fields) }

func (s *StdLoggerAdapter) Error(msg string, err error, fields ...Field) {
	s.emit("[ERROR]", msg+": "+errString(err), fields)
}

func (s *StdLoggerAdapter) Printf(format string, args ...any) {
	s.logger.Printf(format, args...)
}

func (s *StdLoggerAdapter) Println(args ...any) {
	s.logger.Println(args...)
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
