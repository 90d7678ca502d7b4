// Command bfhl-stub serves a local BFHL endpoint for development.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/twipi/bfhl/backend"
	"github.com/twipi/bfhl/internal/srvutil"
	"libdb.so/hserve"

	twicfgutil "github.com/twipi/cfgutil"
)

var (
	listenAddr = ":5000"
	verbosity  = 0
)

func main() {
	pflag.StringVarP(&listenAddr, "listen", "l", listenAddr, "listen address")
	pflag.CountVarP(&verbosity, "verbose", "v", "verbosity level: info (0), debug")
	pflag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   twicfgutil.VerbosityToLevel(slog.LevelInfo, verbosity),
		NoColor: os.Getenv("NO_COLOR") != "",
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	r := chi.NewMux()
	r.Use(cors.AllowAll().Handler)
	r.Use(srvutil.LogRequests(logger))
	r.Get("/health", srvutil.Respond200)
	r.Mount("/", backend.NewStub(logger))

	logger.Info(
		"starting stub endpoint",
		"listen_addr", listenAddr)

	if err := hserve.ListenAndServe(ctx, listenAddr, r); err != nil {
		logger.Error(
			"failed to start server",
			"listen_addr", listenAddr,
			tint.Err(err))

		os.Exit(1)
	}
}
