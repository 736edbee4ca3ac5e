package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridstack-labs/gridcalc/internal/model"
	"github.com/gridstack-labs/gridcalc/internal/value"
)

// Marshal renders a resolved model back to YAML. Formula provenance is
// kept alongside computed values so the output documents how each value
// was obtained.
func Marshal(m *model.Model) ([]byte, error) {
	doc := map[string]any{}

	if len(m.Variables) > 0 {
		vars := map[string]any{}
		for _, name := range m.VariableNames() {
			v := m.Variables[name]
			if v.Formula != "" {
				vars[name] = map[string]any{
					"formula": v.Formula,
					"value":   exportValue(v.Value),
				}
			} else {
				vars[name] = exportValue(v.Value)
			}
		}
		doc["variables"] = vars
	}

	if len(m.Tables) > 0 {
		tables := map[string]any{}
		for _, name := range m.TableNames() {
			t := m.Tables[name]
			cols := map[string]any{}
			for _, colName := range t.ColumnNames() {
				cols[colName] = exportColumn(t.Columns[colName])
			}
			entry := map[string]any{"columns": cols}
			if len(t.Formulas) > 0 {
				entry["formulas"] = t.Formulas
			}
			tables[name] = entry
		}
		doc["tables"] = tables
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model: %w", err)
	}
	return out, nil
}

// Save writes a resolved model to a YAML file.
func Save(path string, m *model.Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

func exportValue(v value.Value) any {
	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		return n
	case value.KindBoolean:
		return v.Bool()
	case value.KindArray:
		items := v.Items()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = exportValue(it)
		}
		return out
	case value.KindNull:
		return nil
	default:
		return v.AsText()
	}
}

func exportColumn(c *model.Column) any {
	switch c.Type {
	case model.ColumnNumber:
		return c.Numbers()
	case model.ColumnBoolean:
		return c.Booleans()
	default:
		return c.Texts()
	}
}
