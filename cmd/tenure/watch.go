package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coolbeans/tenure/pkg/batch"
	"github.com/coolbeans/tenure/pkg/config"
	"github.com/coolbeans/tenure/pkg/inbox"
	"github.com/coolbeans/tenure/pkg/locale"
)

func watchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Process page JSON files as they arrive in a directory",
		Long: `Watch a directory for page JSON documents and build their terms whenever
one is added or changed. Existing documents are processed first unless
they were already seen according to the state file.

When a locales directory is configured its tables are reloaded on change.

Example:
  tenure watch pages/
  tenure watch --out results/ --state .tenure-state.json pages/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config.Inbox
			if len(args) > 0 {
				cfg.Dir = args[0]
			}
			if flags := cmd.Flags(); flags.Changed("pattern") {
				cfg.Pattern, _ = flags.GetString("pattern")
			}
			if flags := cmd.Flags(); flags.Changed("out") {
				cfg.OutputDir, _ = flags.GetString("out")
			}
			if flags := cmd.Flags(); flags.Changed("state") {
				cfg.StateFile, _ = flags.GetString("state")
			}
			if cfg.Dir == "" {
				return fmt.Errorf("an inbox directory is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd, cfg)
		},
	}
	cmd.Flags().String("pattern", "", "Doublestar pattern selecting documents (default: **/*.json)")
	cmd.Flags().StringP("out", "o", "", "Directory for per-document result files")
	cmd.Flags().String("state", "", "File remembering processed documents between runs")
	return cmd
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command, cfg config.InboxConfig) error {
	watcher, err := inbox.New(cfg.Config, a.logger)
	if err != nil {
		return err
	}
	if cfg.StateFile != "" {
		if err := watcher.LoadState(cfg.StateFile); err != nil {
			return err
		}
	}

	if a.config.LocalesDir != "" {
		a.registry.SetOnChange(func(event string, rules *locale.Rules) {
			code := ""
			if rules != nil {
				code = rules.Code
			}
			a.logger.Info("Locale tables changed", "event", event, "locale", code)
		})
		if err := a.registry.Watch(); err != nil {
			return err
		}
		defer a.registry.StopWatch()
	}

	runner := batch.NewRunner(a.registry, a.batchConfig(), a.logger)
	process := func(events []inbox.Event) error {
		if err := a.processEvents(ctx, cmd, runner, cfg.OutputDir, events); err != nil {
			return err
		}
		if cfg.StateFile != "" {
			if err := watcher.SaveState(cfg.StateFile); err != nil {
				a.logger.Warn("Failed to save inbox state", "path", cfg.StateFile, "error", err)
			}
		}
		return nil
	}

	existing, err := watcher.Scan()
	if err != nil {
		return err
	}
	if err := process(existing); err != nil {
		return err
	}

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logSummary(runner)
			return nil
		case event, ok := <-watcher.Events():
			if !ok {
				a.logSummary(runner)
				return nil
			}
			if err := process([]inbox.Event{event}); err != nil {
				return err
			}
		}
	}
}

// processEvents builds terms for created and modified documents and
// removes the result files of deleted ones.
func (a *app) processEvents(ctx context.Context, cmd *cobra.Command, runner *batch.Runner, outDir string, events []inbox.Event) error {
	var docs []batch.Document
	for _, event := range events {
		if event.Operation == inbox.OpDelete {
			if outDir != "" {
				if err := removeResult(resultPath(outDir, event.Path)); err != nil {
					a.logger.Warn("Failed to remove result file", "path", event.Path, "error", err)
				}
			}
			a.logger.Info("Document removed", "path", event.Path)
			continue
		}
		doc, err := batch.ReadDocument(event.AbsPath, "")
		if err != nil {
			a.logger.Warn("Skipping unreadable document", "path", event.Path, "error", err)
			continue
		}
		doc.Name = event.Path
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil
	}

	report, err := runner.Run(ctx, docs)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if outDir == "" {
		if a.jsonOutput() {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		printReport(cmd, report)
		return nil
	}
	for _, result := range report.Results {
		if err := writeResult(resultPath(outDir, result.Name), result); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) logSummary(runner *batch.Runner) {
	snap, err := runner.Metrics().Snapshot()
	if err != nil {
		a.logger.Warn("Failed to read metrics", "error", err)
		return
	}
	a.logger.Info("Inbox watcher stopped",
		"documents", snap.Documents,
		"failures", snap.Failures,
		"terms", snap.Terms,
		"date_fallbacks", snap.DateFallbacks)
}

// resultPath maps a document's inbox path to its result file.
func resultPath(outDir, rel string) string {
	return filepath.Join(outDir, filepath.FromSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))+".terms.json")
}

// removeResult deletes a result file. A file that was never written is not
// an error.
func removeResult(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing result file: %w", err)
	}
	return nil
}

func writeResult(path string, result batch.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file: %w", err)
	}
	if err := writeJSON(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
