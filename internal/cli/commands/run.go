package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gridstack-labs/gridcalc/internal/config"
	"github.com/gridstack-labs/gridcalc/internal/loader"
	"github.com/gridstack-labs/gridcalc/internal/model"
	"github.com/gridstack-labs/gridcalc/internal/state"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	OutPath    string
	Watch      bool
	NoHistory  bool
	TablesOnly bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve the model and print results",
		Long: `Load the model file, resolve every formula in dependency order,
and print the resolved scalars and tables.

Scalars resolve first, then tables in cross-reference order. Each run is
recorded in the run-history database unless --no-history is given.`,
		Example: `  # Resolve the default model
  gridcalc run

  # Resolve under a scenario
  gridcalc run --scenario optimistic

  # Write the resolved model back out as YAML
  gridcalc run --out resolved.yaml

  # Re-resolve whenever the model file changes
  gridcalc run --watch`,
		Aliases: []string{"resolve"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.OutPath, "out", "", "Write the resolved model to this YAML file")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-resolve when the model file changes")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Skip recording the run in the state database")
	cmd.Flags().BoolVar(&opts.TablesOnly, "tables-only", false, "Print only tables, not scalars")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	cfg := getConfig()

	if opts.Watch {
		return runWatch(cmd, cfg, opts)
	}
	return runOnce(cmd, cfg, opts)
}

func runOnce(cmd *cobra.Command, cfg *config.Config, opts *RunOptions) error {
	logger := config.GetLogger(cmd.Context())
	startTime := time.Now()

	var store state.Store
	if !opts.NoHistory {
		store = openStore(cfg, logger)
	}

	var run *state.Run
	if store != nil {
		defer store.Close()
		var err error
		run, err = store.CreateRun(cfg.ModelPath, cfg.Scenario)
		if err != nil {
			logger.Warn("failed to record run", "error", err)
			run = nil
		}
	}

	resolved, err := resolveModel(cmd.Context(), cfg, logger)
	if err != nil {
		if run != nil {
			_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		}
		return err
	}

	if run != nil {
		recordResults(store, run.ID, resolved, cfg.Precision, logger)
		if err := store.CompleteRun(run.ID, state.RunStatusCompleted, ""); err != nil {
			logger.Warn("failed to complete run", "error", err)
		}
	}

	w := cmd.OutOrStdout()
	if !opts.TablesOnly {
		if err := renderScalars(w, resolved, cfg.OutputFormat, cfg.Precision); err != nil {
			return err
		}
	}
	for _, name := range resolved.TableNames() {
		if err := renderModelTable(w, resolved.Tables[name], cfg.OutputFormat, cfg.Precision); err != nil {
			return err
		}
	}

	if opts.OutPath != "" {
		if err := loader.Save(opts.OutPath, resolved); err != nil {
			return fmt.Errorf("failed to write resolved model: %w", err)
		}
		fmt.Fprintf(w, "Wrote resolved model to %s\n", opts.OutPath)
	}

	if cfg.OutputFormat == "table" {
		fmt.Fprintf(w, "Completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	}

	return nil
}

// openStore opens the run-history store, logging rather than failing on
// errors so a broken state database never blocks a resolution.
func openStore(cfg *config.Config, logger *slog.Logger) state.Store {
	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		logger.Warn("failed to open state database", "path", cfg.StatePath, "error", err)
		return nil
	}
	if err := store.InitSchema(); err != nil {
		logger.Warn("failed to initialize state database", "path", cfg.StatePath, "error", err)
		store.Close()
		return nil
	}
	return store
}

// recordResults saves resolved scalars and table summaries for a run.
func recordResults(store state.Store, runID string, m *model.Model, precision int, logger *slog.Logger) {
	var scalars []state.ScalarResult
	for _, name := range m.VariableNames() {
		scalars = append(scalars, state.ScalarResult{
			RunID: runID,
			Name:  name,
			Value: formatValue(m.Variables[name].Value, precision),
		})
	}
	if err := store.RecordScalars(runID, scalars); err != nil {
		logger.Warn("failed to record scalars", "error", err)
	}

	var tables []state.TableResult
	for _, name := range m.TableNames() {
		t := m.Tables[name]
		tables = append(tables, state.TableResult{
			RunID:    runID,
			Name:     name,
			RowCount: t.RowCount(),
			Columns:  len(t.Columns),
		})
	}
	if err := store.RecordTables(runID, tables); err != nil {
		logger.Warn("failed to record tables", "error", err)
	}
}

// runWatch resolves the model, then re-resolves on every change to the
// model file until interrupted.
func runWatch(cmd *cobra.Command, cfg *config.Config, opts *RunOptions) error {
	logger := config.GetLogger(cmd.Context())
	w := cmd.OutOrStdout()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file. Editors replace files on save,
	// which breaks a direct file watch.
	dir := filepath.Dir(cfg.ModelPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	resolve := func() {
		if err := runOnce(cmd, cfg, opts); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
	resolve()

	fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", cfg.ModelPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	target, _ := filepath.Abs(cfg.ModelPath)
	var debounce *time.Timer
	for {
		select {
		case <-sigCh:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			if abs != target {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				fmt.Fprintf(w, "\nModel changed, re-resolving...\n")
				resolve()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
