package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/coolbeans/tenure/pkg/config"
	"github.com/coolbeans/tenure/pkg/locale"
)

var version = "0.1.0"

// app holds the configuration and shared services for one invocation.
type app struct {
	config   *config.Config
	registry *locale.DefaultRegistry
	logger   *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tenure",
		Short: "Office terms from multilingual infobox data",
		Long: `Tenure turns free-form, multilingual term dates and numbered infobox
fields into normalized office terms.

It provides:
  - Date normalization across locales (YYYY, YYYY-MM, YYYY-MM-DD)
  - Date range splitting, including open-ended terms
  - Term reconstruction from infobox page JSON
  - Days-in-office counting across overlapping terms
  - An inbox watcher that processes pages as they arrive`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (default: ./tenure.yaml if present)")
	flags.StringP("locale", "l", "", "Locale code (default: en)")
	flags.String("locales-dir", "", "Directory of locale tables overriding the built-in ones")
	flags.StringP("format", "f", "", "Output format (text, json)")
	flags.Bool("strict", false, "Fail on the first unparseable date instead of keeping raw text")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(dateCmd(a))
	rootCmd.AddCommand(rangeCmd(a))
	rootCmd.AddCommand(termsCmd(a))
	rootCmd.AddCommand(experienceCmd(a))
	rootCmd.AddCommand(localesCmd(a))
	rootCmd.AddCommand(watchCmd(a))

	return rootCmd
}

// setup loads the config file and applies flags set on the command line
// over it.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("locale") {
		cfg.Locale, _ = flags.GetString("locale")
	}
	if flags.Changed("locales-dir") {
		cfg.LocalesDir, _ = flags.GetString("locales-dir")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.config = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))

	registry, err := cfg.Registry(a.logger)
	if err != nil {
		return fmt.Errorf("loading locales: %w", err)
	}
	a.registry = registry
	return nil
}

// rules returns the configured locale's rules.
func (a *app) rules() (*locale.Rules, error) {
	return a.registry.Lookup(a.config.Locale)
}

func (a *app) jsonOutput() bool {
	return a.config.Format == config.FormatJSON
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
