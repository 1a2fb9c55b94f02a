package server

import (
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/quadtile/internal/config"
	"github.com/woozymasta/quadtile/internal/metrics"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config  *config.Config
	Metrics *metrics.Provider
	Version string
}

// NewServerContext initializes the context from the loaded configuration.
func NewServerContext(cfg *config.Config, version string) *ServerContext {
	ctx := &ServerContext{
		Config:  cfg,
		Version: version,
	}

	if cfg.Metrics {
		ctx.Metrics = metrics.New(version)
	}

	log.Info().
		Int("zoom_limit", cfg.ZoomLimit).
		Float64("default_dpi", cfg.DefaultDPI).
		Bool("metrics", cfg.Metrics).
		Msg("Server context initialized")

	return ctx
}

// observeConversion is a nil-safe metrics shortcut for handlers.
func (s *ServerContext) observeConversion(kind string, ok bool) {
	if s.Metrics != nil {
		s.Metrics.ObserveConversion(kind, ok)
	}
}
