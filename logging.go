package lthread

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the structured logging sink used for scheduler diagnostics:
// invariant violations observed while selecting the next thread. It is
// satisfied directly by *zerolog.Logger.
type Logger interface {
	Warn() *zerolog.Event
	Error() *zerolog.Event
}

// nopLogger discards everything; it is the default when no WithLogger
// option is supplied.
type nopLogger struct{}

func (nopLogger) Warn() *zerolog.Event  { return zerolog.Nop().Warn() }
func (nopLogger) Error() *zerolog.Event { return zerolog.Nop().Error() }

var (
	defaultLoggerOnce sync.Once
	defaultLoggerInst zerolog.Logger
)

// defaultLogger lazily builds a console-writer zerolog.Logger, used by
// the default fatal hook to report the error before exiting.
func defaultLogger() zerolog.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLoggerInst = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Str("component", "lthread").Logger()
	})
	return defaultLoggerInst
}

func defaultFatalHook(err error) {
	defaultLogger().Error().Err(err).Msg("lthread: fatal scheduler error")
	os.Exit(1)
}
