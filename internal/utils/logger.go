package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogger routes the global zerolog logger to stderr. Debug output is
// only emitted when debug is set.
func ConfigureLogger(debug bool) {
	ConfigureLoggerTo(os.Stderr, debug)
}

// ConfigureLoggerTo is ConfigureLogger with an explicit destination.
func ConfigureLoggerTo(w io.Writer, debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}
