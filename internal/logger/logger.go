package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Discards everything until Init runs; packages under test can log
// without initializing the console writer.
var log = zerolog.New(io.Discard)

func Init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log = zerolog.New(output).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}

// Get returns the logger instance
func Get() zerolog.Logger {
	return log
}

// WithComponent returns a logger tagged with a component field
func WithComponent(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
