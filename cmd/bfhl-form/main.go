package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/twipi/bfhl/backend"
	"github.com/twipi/bfhl/form/web"
	"github.com/twipi/bfhl/internal/cfgutil"
	"github.com/twipi/bfhl/internal/config"
	"github.com/twipi/bfhl/internal/srvutil"
	"golang.org/x/sync/errgroup"
	"libdb.so/hserve"

	twicfgutil "github.com/twipi/cfgutil"
)

var (
	configPath = ""
	listenAddr = ""
	backendURL = ""
	verbosity  = 0
	jsonLog    = false
)

func main() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "path to a TOML or JSON config file")
	pflag.StringVarP(&listenAddr, "listen", "l", listenAddr, "listen address, overrides the config file")
	pflag.StringVarP(&backendURL, "backend", "b", backendURL, "base URL of the BFHL endpoint, overrides the config file")
	pflag.CountVarP(&verbosity, "verbose", "v", "verbosity level: info (0), debug")
	pflag.BoolVarP(&jsonLog, "json-log", "j", jsonLog, "log output as JSON to stdout")
	pflag.Parse()

	logger := setupLogging()
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", tint.Err(err))
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if backendURL != "" {
		cfg.BackendURL = cfgutil.EnvString(backendURL)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := start(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

func start(ctx context.Context, cfg config.Root, logger *slog.Logger) error {
	client := backend.NewClient(backend.ClientConfig{
		BaseURL: cfg.BackendURL.Value(),
		Timeout: time.Duration(cfg.RequestTimeout),
	}, logger.With("component", "backend"))

	form := web.NewHandler(client, web.Config{
		SessionTTL: time.Duration(cfg.SessionTTL),
	}, logger.With("component", "form"))

	r := chi.NewMux()
	r.Get("/health", srvutil.Respond200)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", form)

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		return form.Start(ctx)
	})

	errg.Go(func() error {
		logger.Info(
			"starting server",
			"listen_addr", cfg.ListenAddr,
			"backend_url", cfg.BackendURL.Value())

		if err := hserve.ListenAndServe(ctx, cfg.ListenAddr, r); err != nil {
			logger.Error(
				"failed to start server",
				"listen_addr", cfg.ListenAddr,
				tint.Err(err))
			return err
		}
		return nil
	})

	return errg.Wait()
}

func setupLogging() *slog.Logger {
	level := twicfgutil.VerbosityToLevel(slog.LevelInfo, verbosity)

	var handler slog.Handler
	if jsonLog {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:   level,
			NoColor: os.Getenv("NO_COLOR") != "",
		})
	}

	return slog.New(handler)
}
