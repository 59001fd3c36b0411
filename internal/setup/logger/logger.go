package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// New builds a structured logger at the given level, falling back to
// info for unknown level strings.
func New(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
