package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gridstack-labs/gridcalc/internal/model"
	"github.com/gridstack-labs/gridcalc/internal/value"
)

// formatValue renders a single value for display.
// Numbers are rounded to precision decimal places and printed in the
// shortest form that survives the rounding.
func formatValue(v value.Value, precision int) string {
	if v.IsNull() {
		return ""
	}
	if v.Kind() == value.KindNumber {
		n, _ := v.AsNumber()
		factor := math.Pow(10, float64(precision))
		rounded := math.Round(n*factor) / factor
		return strconv.FormatFloat(rounded, 'f', -1, 64)
	}
	return v.AsText()
}

// renderScalars writes resolved scalar values in the requested format.
func renderScalars(w io.Writer, m *model.Model, format string, precision int) error {
	names := m.VariableNames()

	switch format {
	case "json":
		out := make(map[string]any, len(names))
		for _, name := range names {
			out[name] = jsonValue(m.Variables[name].Value)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case "csv":
		_, _ = fmt.Fprintln(w, "name,value")
		for _, name := range names {
			v := formatValue(m.Variables[name].Value, precision)
			_, _ = fmt.Fprintf(w, "%s,%s\n", escapeCSV(name), escapeCSV(v))
		}
		return nil

	default:
		if len(names) == 0 {
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Scalar", "Value"})
		for _, name := range names {
			t.AppendRow(table.Row{name, formatValue(m.Variables[name].Value, precision)})
		}
		t.Render()
		return nil
	}
}

// renderModelTable writes one resolved table in the requested format.
func renderModelTable(w io.Writer, tbl *model.Table, format string, precision int) error {
	cols := tbl.ColumnNames()
	rowCount := tbl.RowCount()

	switch format {
	case "json":
		out := make(map[string]any, len(cols))
		for _, col := range cols {
			vals := tbl.Columns[col].Values()
			items := make([]any, len(vals))
			for i, v := range vals {
				items[i] = jsonValue(v)
			}
			out[col] = items
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{tbl.Name: out})

	case "csv":
		_, _ = fmt.Fprintln(w, strings.Join(cols, ","))
		for i := 0; i < rowCount; i++ {
			cells := make([]string, len(cols))
			for j, col := range cols {
				cells[j] = escapeCSV(formatValue(tbl.Columns[col].Value(i), precision))
			}
			_, _ = fmt.Fprintln(w, strings.Join(cells, ","))
		}
		return nil

	default:
		_, _ = fmt.Fprintf(w, "%s\n", tbl.Name)
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		headerRow := make(table.Row, len(cols))
		for i, col := range cols {
			headerRow[i] = col
		}
		t.AppendHeader(headerRow)
		for i := 0; i < rowCount; i++ {
			row := make(table.Row, len(cols))
			for j, col := range cols {
				row[j] = formatValue(tbl.Columns[col].Value(i), precision)
			}
			t.AppendRow(row)
		}
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", rowCount)
		return nil
	}
}

// jsonValue converts a value into its JSON-friendly representation.
func jsonValue(v value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindNumber:
		n, _ := v.AsNumber()
		return n
	case value.KindBoolean:
		return v.Bool()
	case value.KindArray:
		items := v.Items()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = jsonValue(it)
		}
		return out
	default:
		return v.AsText()
	}
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
