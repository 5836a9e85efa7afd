package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/linemk/e-cart/internal/lib/logger/handlers/slogpretty"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// ServiceName попадает в каждую запись JSON-логов
const ServiceName = "e-cart"

// SetupLogger создаёт логгер для окружения env с выводом в stdout
func SetupLogger(env string) *slog.Logger {
	return New(os.Stdout, env)
}

// New создаёт логгер для окружения env.
// local - цветной вывод без служебных атрибутов, dev - JSON с уровнем debug, prod и прочие - JSON с уровнем info.
func New(w io.Writer, env string) *slog.Logger {
	switch env {
	case EnvLocal:
		return setupPrettySlog(w)
	case EnvDev:
		return newJSON(w, env, slog.LevelDebug)
	case EnvProd:
		return newJSON(w, env, slog.LevelInfo)
	default:
		log := newJSON(w, env, slog.LevelInfo)
		log.Warn("unknown env, falling back to prod logging", slog.String("env", env))
		return log
	}
}

func newJSON(w io.Writer, env string, level slog.Level) *slog.Logger {
	return slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	).With(
		slog.String("service", ServiceName),
		slog.String("env", env),
	)
}

func setupPrettySlog(w io.Writer) *slog.Logger {
	color.NoColor = false

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(w)
	return slog.New(handler)
}
