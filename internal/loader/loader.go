// Package loader reads and writes calculation model files in YAML form.
// A model file declares variables (literal values or formulas), tables
// (literal columns plus row formulas), and named scenarios of scalar
// overrides.
package loader

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gridstack-labs/gridcalc/internal/model"
	"github.com/gridstack-labs/gridcalc/internal/value"
)

// fileModel mirrors the YAML document structure.
type fileModel struct {
	Variables map[string]any            `yaml:"variables"`
	Tables    map[string]fileTable      `yaml:"tables"`
	Scenarios map[string]map[string]any `yaml:"scenarios"`
}

type fileTable struct {
	Columns  map[string][]any  `yaml:"columns"`
	Formulas map[string]string `yaml:"formulas"`
}

// datePattern recognizes ISO dates so date columns keep their own type.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Load reads a model file from disk.
func Load(path string) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes YAML model content.
func Parse(data []byte) (*model.Model, error) {
	var fm fileModel
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("invalid model YAML: %w", err)
	}

	m := model.NewModel()
	for name, raw := range fm.Variables {
		v, err := decodeVariable(name, raw)
		if err != nil {
			return nil, err
		}
		m.Variables[name] = v
	}
	for name, ft := range fm.Tables {
		t, err := decodeTable(name, ft)
		if err != nil {
			return nil, err
		}
		m.Tables[name] = t
	}
	for name, raw := range fm.Scenarios {
		overrides := make(map[string]value.Value, len(raw))
		for scalar, rv := range raw {
			v, ok := decodeScalar(rv)
			if !ok {
				return nil, fmt.Errorf("scenario %q: unsupported value for %q", name, scalar)
			}
			overrides[scalar] = v
		}
		m.Scenarios[name] = overrides
	}
	return m, nil
}

// decodeVariable turns a YAML scalar into a variable. Strings starting
// with "=" are formulas; everything else is a literal.
func decodeVariable(name string, raw any) (*model.Variable, error) {
	if s, ok := raw.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "=") {
		return model.FormulaVariable(name, s), nil
	}
	v, ok := decodeScalar(raw)
	if !ok {
		return nil, fmt.Errorf("variable %q: unsupported value %v", name, raw)
	}
	return model.LiteralVariable(name, v), nil
}

func decodeScalar(raw any) (value.Value, bool) {
	switch v := raw.(type) {
	case nil:
		return value.Null, true
	case bool:
		return value.Boolean(v), true
	case int:
		return value.Number(float64(v)), true
	case int64:
		return value.Number(float64(v)), true
	case float64:
		return value.Number(v), true
	case string:
		return value.Text(v), true
	}
	return value.Null, false
}

// decodeTable builds a table from literal column data and row formulas.
// Column type is inferred from the first element.
func decodeTable(name string, ft fileTable) (*model.Table, error) {
	t := model.NewTable(name)
	for colName, raw := range ft.Columns {
		col, err := decodeColumn(colName, raw)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		t.Columns[colName] = col
	}
	for colName, f := range ft.Formulas {
		if strings.TrimSpace(f) == "" {
			return nil, fmt.Errorf("table %q: column %q has an empty formula", name, colName)
		}
		t.Formulas[colName] = f
	}
	return t, nil
}

func decodeColumn(name string, raw []any) (*model.Column, error) {
	if len(raw) == 0 {
		return model.TextColumn(name, nil), nil
	}
	switch first := raw[0].(type) {
	case bool:
		vals := make([]bool, len(raw))
		for i, rv := range raw {
			b, ok := rv.(bool)
			if !ok {
				return nil, fmt.Errorf("column %q: row %d is not a boolean", name, i)
			}
			vals[i] = b
		}
		return model.BooleanColumn(name, vals), nil
	case int, int64, float64:
		vals := make([]float64, len(raw))
		for i, rv := range raw {
			n, ok := toFloat(rv)
			if !ok {
				return nil, fmt.Errorf("column %q: row %d is not a number", name, i)
			}
			vals[i] = n
		}
		return model.NumberColumn(name, vals), nil
	case string:
		vals := make([]string, len(raw))
		for i, rv := range raw {
			s, ok := rv.(string)
			if !ok {
				return nil, fmt.Errorf("column %q: row %d is not text", name, i)
			}
			vals[i] = s
		}
		if datePattern.MatchString(first) {
			return model.DateColumn(name, vals), nil
		}
		return model.TextColumn(name, vals), nil
	}
	return nil, fmt.Errorf("column %q: unsupported element type %T", name, raw[0])
}

// ParseLiteral interprets a raw override string as a scalar value.
// Numbers and booleans are recognized; everything else is text.
func ParseLiteral(raw string) value.Value {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return value.Number(n)
	}
	switch strings.ToLower(raw) {
	case "true":
		return value.Boolean(true)
	case "false":
		return value.Boolean(false)
	}
	return value.Text(raw)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
