package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/calvinalkan/tap14/internal/config"
	"github.com/calvinalkan/tap14/internal/term"
)

// newLogger returns the diagnostics logger written to stderr. Commands reach
// it through zerolog.Ctx.
func newLogger(w io.Writer, cfg config.Config, env map[string]string) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !useColor(cfg.Color, w, env),
		TimeFormat: time.TimeOnly,
	}

	return zerolog.New(console).Level(cfg.Level()).With().Timestamp().Logger()
}

// useColor resolves a color mode for stream f.
func useColor(mode string, f any, env map[string]string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return term.IsTerminal(f) && term.ColorAllowed(env)
	}
}
