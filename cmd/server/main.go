package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/woozymasta/quadtile/internal/config"
	"github.com/woozymasta/quadtile/internal/logger"
	"github.com/woozymasta/quadtile/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"     env:"CONFIG_FILE"    description:"Path to configuration file"`
	Addr       string `short:"a" long:"addr"       env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"       env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	ZoomLimit  int    `short:"z" long:"zoom-limit" env:"ZOOM_LIMIT"     description:"Highest level of detail served"`
	Metrics    bool   `short:"m" long:"metrics"    env:"METRICS"        description:"Expose Prometheus metrics on /metrics"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config, flags win over file values
	cfg := &config.Config{}
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		cfg = loaded
	}

	if opts.ZoomLimit > 0 {
		cfg.ZoomLimit = opts.ZoomLimit
	}
	if opts.Metrics {
		cfg.Metrics = true
	}
	if err := cfg.Normalize(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	srvCtx := server.NewServerContext(cfg, Version)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pixel", srvCtx.HandlePixel)
	mux.HandleFunc("/api/latlong", srvCtx.HandleLatLong)
	mux.HandleFunc("/api/quadkey/", srvCtx.HandleQuadkey)
	mux.HandleFunc("/api/resolution", srvCtx.HandleResolution)
	mux.HandleFunc("/", srvCtx.HandleInfo)

	if srvCtx.Metrics != nil {
		mux.Handle("/metrics", srvCtx.Metrics.Handler())
	}

	handler := server.RequestLogger(mux, srvCtx.Metrics)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("version", Version).
		Int("zoom_limit", cfg.ZoomLimit).
		Bool("metrics", cfg.Metrics).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
