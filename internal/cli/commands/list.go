package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridstack-labs/gridcalc/internal/config"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the model's scalars, tables, and formulas",
		Long: `Display every scalar and table defined in the model file, with
formulas shown unresolved.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
	return cmd
}

func runList(cmd *cobra.Command) error {
	cfg := getConfig()
	m, err := loadModel(cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	names := m.VariableNames()
	fmt.Fprintf(w, "Scalars (%d):\n", len(names))
	for _, name := range names {
		v := m.Variables[name]
		if v.Formula != "" {
			fmt.Fprintf(w, "  %-24s %s\n", name, v.Formula)
		} else {
			fmt.Fprintf(w, "  %-24s %s\n", name, formatValue(v.Value, cfg.Precision))
		}
	}
	fmt.Fprintln(w)

	tableNames := m.TableNames()
	fmt.Fprintf(w, "Tables (%d):\n", len(tableNames))
	for _, name := range tableNames {
		t := m.Tables[name]
		fmt.Fprintf(w, "  %s (%d rows)\n", name, t.RowCount())
		fmt.Fprintf(w, "    columns:  %s\n", strings.Join(t.ColumnNames(), ", "))
		for _, col := range t.FormulaNames() {
			fmt.Fprintf(w, "    %-10s %s = %s\n", "formula:", col, t.Formulas[col])
		}
	}

	if len(m.Scenarios) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Scenarios (%d):\n", len(m.Scenarios))
		scenarios := make([]string, 0, len(m.Scenarios))
		for name := range m.Scenarios {
			scenarios = append(scenarios, name)
		}
		sort.Strings(scenarios)
		for _, name := range scenarios {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	if cfg.Verbose {
		if configFile := config.GetConfigFileUsed(); configFile != "" {
			fmt.Fprintf(w, "\nConfig: %s\n", configFile)
		}
	}

	return nil
}
