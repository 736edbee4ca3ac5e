package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridstack-labs/gridcalc/internal/dag"
)

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dag",
		Short: "Show the model's dependency graphs",
		Long: `Display the scalar and table dependency graphs of the model.

Nodes are grouped by resolution level. Everything in a level depends
only on earlier levels, so nodes within a level are independent.`,
		Example: `  # Show both graphs
  gridcalc dag

  # Output as JSON
  gridcalc dag --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDAG(cmd)
		},
	}
	return cmd
}

func runDAG(cmd *cobra.Command) error {
	cfg := getConfig()
	m, err := loadModel(cfg)
	if err != nil {
		return err
	}

	eng := createEngine(cmd.Context(), cfg)

	scalarGraph, err := eng.ScalarGraph(m)
	if err != nil {
		return fmt.Errorf("failed to build scalar graph: %w", err)
	}
	tableGraph, err := eng.TableGraph(m)
	if err != nil {
		return fmt.Errorf("failed to build table graph: %w", err)
	}

	if cfg.OutputFormat == "json" {
		return dagJSON(cmd, scalarGraph, tableGraph)
	}
	w := cmd.OutOrStdout()
	if err := dagText(cmd, "Scalar Graph", scalarGraph); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return dagText(cmd, "Table Graph", tableGraph)
}

// dagText prints one graph grouped by resolution level.
func dagText(cmd *cobra.Command, title string, g *dag.Graph) error {
	w := cmd.OutOrStdout()

	levels, err := g.Levels()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s:\n", title)
	for i, level := range levels {
		fmt.Fprintf(w, "Level %d:\n", i)
		for _, node := range level {
			deps := g.Dependencies(node)
			dependents := g.Dependents(node)

			fmt.Fprintf(w, "  %s\n", node)
			if len(deps) > 0 {
				fmt.Fprintf(w, "    depends on: %s\n", strings.Join(deps, ", "))
			}
			if len(dependents) > 0 {
				fmt.Fprintf(w, "    used by: %s\n", strings.Join(dependents, ", "))
			}
		}
	}
	fmt.Fprintf(w, "Total: %d nodes, %d dependencies\n", g.Len(), g.EdgeCount())
	return nil
}

// dagNode is one graph node in JSON output.
type dagNode struct {
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on,omitempty"`
	UsedBy    []string `json:"used_by,omitempty"`
}

// dagLevel is one resolution level in JSON output.
type dagLevel struct {
	Level int       `json:"level"`
	Nodes []dagNode `json:"nodes"`
}

type dagOutput struct {
	Scalars []dagLevel `json:"scalars"`
	Tables  []dagLevel `json:"tables"`
}

func dagJSON(cmd *cobra.Command, scalarGraph, tableGraph *dag.Graph) error {
	scalarLevels, err := graphLevels(scalarGraph)
	if err != nil {
		return err
	}
	tableLevels, err := graphLevels(tableGraph)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(dagOutput{Scalars: scalarLevels, Tables: tableLevels})
}

func graphLevels(g *dag.Graph) ([]dagLevel, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}

	out := make([]dagLevel, 0, len(levels))
	for i, level := range levels {
		dl := dagLevel{Level: i, Nodes: make([]dagNode, 0, len(level))}
		for _, node := range level {
			dl.Nodes = append(dl.Nodes, dagNode{
				Name:      node,
				DependsOn: g.Dependencies(node),
				UsedBy:    g.Dependents(node),
			})
		}
		out = append(out, dl)
	}
	return out, nil
}
