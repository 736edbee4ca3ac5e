package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gridstack-labs/gridcalc/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit   int
	Details string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show run history",
		Long: `List previous runs recorded in the state database, newest first.

Use --details with a run ID to show the scalar values recorded for
that run.`,
		Example: `  # Show the last 20 runs
  gridcalc runs

  # Show the recorded scalars of a run
  gridcalc runs --details 4f7c2a9e-...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&opts.Details, "details", "", "Show recorded results for the given run ID")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cfg := getConfig()

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer store.Close()
	if err := store.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize state database: %w", err)
	}

	if opts.Details != "" {
		return showRunDetails(cmd, store, opts.Details)
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Model", "Scenario", "Status", "Started", "Duration"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.ModelPath,
			run.Scenario,
			run.Status,
			run.StartedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%dms", run.DurationMS),
		})
	}
	t.Render()
	return nil
}

func showRunDetails(cmd *cobra.Command, store state.Store, id string) error {
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  model:    %s\n", run.ModelPath)
	if run.Scenario != "" {
		fmt.Fprintf(w, "  scenario: %s\n", run.Scenario)
	}
	fmt.Fprintf(w, "  status:   %s\n", run.Status)
	if run.Error != "" {
		fmt.Fprintf(w, "  error:    %s\n", run.Error)
	}
	fmt.Fprintln(w)

	scalars, err := store.GetScalars(id)
	if err != nil {
		return err
	}
	if len(scalars) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Scalar", "Value"})
		for _, sc := range scalars {
			t.AppendRow(table.Row{sc.Name, sc.Value})
		}
		t.Render()
	}

	tables, err := store.GetTables(id)
	if err != nil {
		return err
	}
	if len(tables) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Table", "Rows", "Columns"})
		for _, tb := range tables {
			t.AppendRow(table.Row{tb.Name, tb.RowCount, tb.Columns})
		}
		t.Render()
	}

	return nil
}

// shortID truncates a UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
