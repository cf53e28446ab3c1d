package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
)

// NewLogger returns a configured slog.Logger based on configuration.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true, Level: slog.LevelInfo}
	if cfg != nil && !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	if cfg != nil {
		logger = logger.With(slog.String("env", cfg.AppEnv))
	}
	return logger
}

// NewResponder builds the API error responder. Outside production 500
// responses carry the raw error text.
func NewResponder(cfg *Config, logger *slog.Logger) httpx.Responder {
	return httpx.Responder{Logger: logger, Verbose: !cfg.IsProduction()}
}
