package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogMode is the output mode of the global logger.
type LogMode string

const (
	// LogModeDefault renders human readable console output on stderr.
	LogModeDefault LogMode = "default"
	// LogModeJSON renders one JSON object per line on stdout.
	LogModeJSON LogMode = "json"
)

var stderr = struct{ io.Writer }{os.Stderr}

func init() { //nolint:gochecknoinits // init with zerolog is idiomatic
	configureLogging(LogModeDefault)
}

// ParseLogMode returns the LogMode for the given string, defaulting to
// LogModeDefault for unknown values.
func ParseLogMode(s string) LogMode {
	switch strings.ToLower(s) {
	case string(LogModeJSON):
		return LogModeJSON
	default:
		return LogModeDefault
	}
}

// ConfigureLogging sets up the global zerolog logger. The level is taken
// from the LOG_LEVEL environment variable and defaults to info.
func ConfigureLogging(mode LogMode) {
	configureLogging(mode)
}

type tTesting interface {
	Log(args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
	Cleanup(f func())
}

// ConfigureTestLogging allows logs to be associated with individual tests
func ConfigureTestLogging(t tTesting) {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger
	configureLogging(LogModeDefault, zerolog.ConsoleTestWriter(t))
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})
}

func configureLogging(mode LogMode, loggingOptions ...func(w *zerolog.ConsoleWriter)) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(levelFromEnv())

	isTerminal := isatty.IsTerminal(os.Stdout.Fd())

	defaultLogging := func(w *zerolog.ConsoleWriter) {
		w.Out = stderr
		w.NoColor = !isTerminal
		w.TimeFormat = "15:04:05.999 |"
		w.PartsOrder = []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		}

		w.FormatFieldName = func(i interface{}) string {
			return fmt.Sprintf("[%s:", i)
		}

		w.FormatFieldValue = func(i interface{}) string {
			// don't print nil in case field value wasn't preset
			if i == nil {
				i = ""
			}
			return fmt.Sprintf("%s]", i)
		}
	}

	loggingOptions = append([]func(w *zerolog.ConsoleWriter){defaultLogging}, loggingOptions...)

	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		short := file

		separatorCount := 2
		countedSeparators := 0

		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				countedSeparators += 1
				if countedSeparators >= separatorCount {
					short = file[i+1:]
					break
				}
			}
		}
		return short + ":" + strconv.Itoa(line)
	}

	var useLogWriter io.Writer
	switch mode {
	case LogModeJSON:
		useLogWriter = os.Stdout
	default:
		useLogWriter = zerolog.NewConsoleWriter(loggingOptions...)
	}

	log.Logger = zerolog.New(useLogWriter).With().Timestamp().Caller().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
