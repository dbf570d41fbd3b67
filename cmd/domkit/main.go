package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-go/domkit/internal/config"
	"github.com/vango-go/domkit/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errorFormat is the log format of the loaded config, used to report the
// error a command fails with.
var errorFormat = "text"

func main() {
	if err := rootCmd().Execute(); err != nil {
		reportError(os.Stderr, err, errorFormat, useColor(os.Stderr))
		os.Exit(1)
	}
}

// reportError writes err as a JSON line when format is json, and as
// terminal text otherwise.
func reportError(w io.Writer, err error, format string, color bool) {
	if format == "json" {
		errors.PrintJSON(w, err)
		return
	}
	errors.SetColors(color)
	errors.PrintError(w, err)
}

// useColor reports whether f is a terminal and NO_COLOR is unset.
func useColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "domkit",
		Short: "Quote service and headless component runtime",
		Long: `domkit serves the quote API with a websocket bridge onto its event
hubs, and drives the quote components on a headless document.

  • serve   run the API, the hub bridge and /metrics
  • export  snapshot the quotes to S3
  • demo    render the quote screen against a running API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "Config file (default: domkit.json, .yaml or .toml in the working directory)")

	root.AddCommand(
		serveCmd(),
		exportCmd(),
		demoCmd(),
		configCmd(),
		errorsCmd(),
		versionCmd(),
	)
	return root
}

// loadConfig reads the --config file or searches the working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}
	errorFormat = cfg.Log.Format
	return cfg, nil
}

// newLogger builds the handler the log section asks for.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
