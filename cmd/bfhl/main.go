// Command bfhl is a terminal version of the BFHL form.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/twipi/bfhl/backend"
	"github.com/twipi/bfhl/form"
	"github.com/twipi/bfhl/form/repl"

	twicfgutil "github.com/twipi/cfgutil"
)

var (
	backendURL = "http://localhost:5000"
	verbosity  = 0
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [flags]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "%s\n", repl.Usage)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		pflag.PrintDefaults()
	}
	pflag.StringVarP(&backendURL, "backend", "b", backendURL, "base URL of the BFHL endpoint")
	pflag.CountVarP(&verbosity, "verbose", "v", "verbosity level: warn (0), info, debug")
	pflag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if !start(ctx) {
		os.Exit(1)
	}
}

func start(ctx context.Context) bool {
	reader, err := readline.New("bfhl> ")
	if err != nil {
		slog.Error(
			"failed to create readline instance",
			"err", err)
		return false
	}
	defer reader.Close()

	logger := slog.New(tint.NewHandler(reader.Stderr(), &tint.Options{
		Level:   twicfgutil.VerbosityToLevel(slog.LevelWarn, verbosity),
		NoColor: os.Getenv("NO_COLOR") != "",
	}))
	slog.SetDefault(logger)

	client := backend.NewClient(backend.ClientConfig{BaseURL: backendURL}, logger)
	shell := repl.NewShell(form.NewController(client, logger))

	fmt.Fprintln(reader.Stdout(), `type "help" for commands`)
	for {
		line, err := reader.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return true
			}
			logger.Error("failed to read line", tint.Err(err))
			return false
		}

		out, err := shell.Exec(ctx, line)
		if err != nil {
			if errors.Is(err, repl.ErrQuit) {
				return true
			}
			fmt.Fprintln(reader.Stderr(), err)
			continue
		}

		if out != "" {
			fmt.Fprintln(reader.Stdout(), out)
		}
	}
}
