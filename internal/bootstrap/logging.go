package bootstrap

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aitools/aitools/internal/config"
)

// SetupLogging configures the global zerolog logger: console output in
// development, JSON otherwise.
func SetupLogging(cfg *config.Config, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "aitools").Logger()
}
