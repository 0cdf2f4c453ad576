package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pptd/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	defaults := server.DefaultConfig()

	var (
		addr        string
		configPath  string
		uploadBytes int64
		verbose     bool
	)
	flag.StringVar(&addr, "addr", envOr("PPTD_ADDR", defaults.Addr), "Listen address")
	flag.StringVar(&configPath, "config", os.Getenv("PPTD_CONFIG"), "Path to YAML config file (optional)")
	flag.Int64Var(&uploadBytes, "max.uploadBytes", defaults.Max.UploadBytes, "Maximum request body size in bytes")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := defaults
	if configPath != "" {
		if err := server.LoadConfigFile(configPath, &cfg); err != nil {
			log.Fatal().Err(err).Msg("loading config")
		}
	}
	// Flags set explicitly on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = addr
		case "max.uploadBytes":
			cfg.Max.UploadBytes = uploadBytes
		case "v":
			cfg.Verbose = verbose
		}
	})

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	srv := server.New(cfg, log.Logger)
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("PowerPoint service listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
