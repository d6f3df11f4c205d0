package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	isDevelopment = false // if running in debug mode

	logFile *os.File = nil

	// AdHocLogger is used by code that doesn't own a service-scoped logger,
	// e.g. package-level helpers reached before a Plan/operator is wired up.
	AdHocLogger zerolog.Logger

	once sync.Once

	globalLogger zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	AdHocLogger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "flowplan").Caller().Logger()
}

// GetLogger returns the process-wide logger, scoped with a service name.
// The underlying zerolog.Logger is created once; later calls only change
// the "service" field of the returned copy.
func GetLogger(serviceName string) zerolog.Logger {
	once.Do(func() {
		if !isDevelopment {
			globalLogger = zerolog.New(os.Stderr).With().Timestamp().Str("service", serviceName).Logger()
			return
		}

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339,
			FormatLevel: func(i any) string {
				return strings.ToUpper(fmt.Sprintf("[%5s]", i))
			},
			FormatMessage: func(i any) string {
				return fmt.Sprintf("| %s |", i)
			},
			FormatCaller: func(i any) string {
				return filepath.Base(fmt.Sprintf("%s", i))
			},
			PartsExclude: []string{
				zerolog.TimestampFieldName,
			}}

		writers := []io.Writer{consoleWriter}
		if logFile != nil {
			writers = append(writers, logFile)
		}
		multiDev := zerolog.MultiLevelWriter(writers...)
		globalLogger = zerolog.New(multiDev).Level(zerolog.TraceLevel).With().Timestamp().Str("service", serviceName).Caller().Logger()
	})

	return globalLogger
}

// SetDevelopment toggles human-readable console logging. Must be called
// before the first GetLogger call to have an effect.
func SetDevelopment(value bool) {
	isDevelopment = value
}

// SetLogFile adds a file sink to the development logger.
func SetLogFile(file *os.File) {
	logFile = file
}

// WithOperator returns a child logger carrying the operator's stable name,
// the common correlation field for every plan.OperatorMeta log line.
func WithOperator(l zerolog.Logger, operatorName string) zerolog.Logger {
	return l.With().Str("operator", operatorName).Logger()
}

// WithStream returns a child logger carrying a stream id, the common
// correlation field for every plan.Stream log line.
func WithStream(l zerolog.Logger, streamID string) zerolog.Logger {
	return l.With().Str("stream", streamID).Logger()
}
