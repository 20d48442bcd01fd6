package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"

	"github.com/lidofinance/blockview/internal/env"
)

const LocalEnv = `local`

func New(cfg *env.AppConfig) (*slog.Logger, *sentry.Client, error) {
	slogHandler := newHandler(os.Stdout, cfg.LogFormat, parseLevel(cfg.LogLevel))

	if cfg.Env != LocalEnv && cfg.SentryDSN != "" {
		hub := sentry.CurrentHub()
		client, sentryErr := sentry.NewClient(sentry.ClientOptions{
			Dsn:           cfg.SentryDSN,
			EnableTracing: false,
			Environment:   cfg.Env,
			ServerName:    cfg.Source,
		})
		if sentryErr != nil {
			return nil, nil, sentryErr
		}

		hub.BindClient(client)
		return slog.New(
			slogmulti.Fanout(
				slogHandler,
				slogsentry.Option{
					Level: slog.LevelError,
					Hub:   hub,
				}.NewSentryHandler(),
			),
		), client, nil
	}

	return slog.New(slogHandler), nil, nil
}

// Discard is used by tests and by the CLI when output must stay clean.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}
