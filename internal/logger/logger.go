package logger

import (
	"io"
	"os"
	"time"

	"codeberg.org/mutker/gputemps/internal/errors"
	"github.com/rs/zerolog"
)

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Stdout carries the temperature table, so every log line goes to stderr.
// Lines logged before Setup already use the console format.
var log = newLogger(os.Stderr, false).Level(zerolog.WarnLevel)

type LogEvent struct {
	*zerolog.Event
}

// Options selects destination and verbosity. Level, when it names a valid
// level, wins over Debug and Verbose.
type Options struct {
	Out     io.Writer
	Debug   bool
	Verbose bool
	Level   string
	Service bool
}

// Setup replaces the package-level logger.
func Setup(opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := WarnLevel
	switch {
	case opts.Debug:
		level = DebugLevel
	case opts.Verbose:
		level = InfoLevel
	}
	if parsed, ok := ParseLevel(opts.Level); ok {
		level = parsed
	}

	log = newLogger(out, opts.Service).Level(zerolog.Level(level))
}

func newLogger(w io.Writer, service bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    service,
	}

	// journald stamps every line itself
	if service {
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// SetLogLevel changes the level of the package-level logger.
func SetLogLevel(level LogLevel) {
	log = log.Level(zerolog.Level(level))
}

// ParseLevel maps a configured level name onto a LogLevel.
func ParseLevel(name string) (LogLevel, bool) {
	switch name {
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "warning", "warn":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	default:
		return WarnLevel, false
	}
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}

	return os.Getppid() == 1
}

func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs err at error level together with the code of its
// outermost domain error.
func ErrorWithCode(err error) *LogEvent {
	return &LogEvent{log.Error().
		Str("error_code", string(errors.CodeOf(err))).
		Err(err)}
}
