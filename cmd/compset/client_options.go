package main

import (
	"log/slog"

	"github.com/helixml/compset"
	"github.com/helixml/compset/internal/config"
)

// clientOptions returns the compset.Option slice shared by every entrypoint.
// Callers append entrypoint-specific options before calling compset.New.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []compset.Option {
	return []compset.Option{
		compset.WithConfig(cfg),
		compset.WithLogger(logger),
	}
}
