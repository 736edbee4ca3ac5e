package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/gridstack-labs/gridcalc/internal/config"
	"github.com/gridstack-labs/gridcalc/internal/engine"
	"github.com/gridstack-labs/gridcalc/internal/model"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [formula]",
		Short: "Evaluate a formula against the resolved model",
		Long: `Evaluate a single formula against the resolved model, or start an
interactive REPL when no formula is given.

Formulas may reference any scalar or table column of the model, for
example SUM(sales.revenue) or total_revenue * 1.1.`,
		Example: `  # Evaluate one formula
  gridcalc eval "SUM(sales.revenue)"

  # Start the interactive REPL
  gridcalc eval`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			logger := config.GetLogger(cmd.Context())

			resolved, err := resolveModel(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			eng := createEngine(cmd.Context(), cfg)

			if len(args) == 1 {
				result, err := eng.EvalFormula(resolved, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatValue(result, cfg.Precision))
				return nil
			}

			return runEvalREPL(cmd, cfg, eng, resolved)
		},
	}
	return cmd
}

func runEvalREPL(cmd *cobra.Command, cfg *config.Config, eng *engine.Engine, m *model.Model) error {
	historyFile := filepath.Join(filepath.Dir(cfg.StatePath), "eval_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gridcalc> ",
		HistoryFile:     historyFile,
		AutoComplete:    newReferenceCompleter(m),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "gridcalc eval REPL (model: %s)\n", cfg.ModelPath)
	fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, m, line); quit {
				break
			}
			continue
		}

		result, err := eng.EvalFormula(m, line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, formatValue(result, cfg.Precision))
	}

	return nil
}

// handleDotCommand processes REPL dot-commands. Returns true to exit.
func handleDotCommand(cmd *cobra.Command, m *model.Model, line string) bool {
	out := cmd.OutOrStdout()
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".scalars":
		for _, name := range m.VariableNames() {
			fmt.Fprintf(out, "  %s\n", name)
		}

	case ".tables":
		for _, name := range m.TableNames() {
			t := m.Tables[name]
			fmt.Fprintf(out, "  %s (%d rows): %s\n", name, t.RowCount(), strings.Join(t.ColumnNames(), ", "))
		}

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", line)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .scalars        List scalar names
  .tables         List tables with their columns
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - Formulas may start with '=' but don't have to
  - Reference columns as table.column, e.g. SUM(sales.revenue)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newReferenceCompleter creates a readline completer for scalar and
// column references.
func newReferenceCompleter(m *model.Model) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range m.VariableNames() {
		items = append(items, readline.PcItem(name))
	}
	for _, name := range m.TableNames() {
		for _, col := range m.Tables[name].ColumnNames() {
			items = append(items, readline.PcItem(name+"."+col))
		}
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".scalars"),
		readline.PcItem(".tables"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
