package engine

import (
	"strings"
	"testing"

	"github.com/gridstack-labs/gridcalc/internal/eval"
	"github.com/gridstack-labs/gridcalc/internal/model"
	"github.com/gridstack-labs/gridcalc/internal/value"
)

// testModel builds the canonical sales model used across the engine tests:
// four sales rows, a tax rate, and a derived total.
func testModel() *model.Model {
	m := model.NewModel()
	m.Variables["tax_rate"] = model.LiteralVariable("tax_rate", value.Number(0.1))
	m.Variables["total_revenue"] = model.FormulaVariable("total_revenue", "=SUM(sales.revenue)")
	m.Variables["taxed_total"] = model.FormulaVariable("taxed_total", "=total_revenue * (1 + tax_rate)")

	sales := model.NewTable("sales")
	sales.Columns["region"] = model.TextColumn("region", []string{"East", "West", "East", "North"})
	sales.Columns["revenue"] = model.NumberColumn("revenue", []float64{100, 250, 150, 500})
	m.Tables["sales"] = sales

	m.Scenarios["optimistic"] = map[string]value.Value{"tax_rate": value.Number(0.05)}
	return m
}

func scalarNumber(t *testing.T, m *model.Model, name string) float64 {
	t.Helper()
	v, ok := m.Variables[name]
	if !ok || !v.HasValue {
		t.Fatalf("scalar %q not resolved", name)
	}
	n, ok := v.Value.AsNumber()
	if !ok {
		t.Fatalf("scalar %q is not numeric: %v", name, v.Value)
	}
	return n
}

func TestResolve_Scalars(t *testing.T) {
	eng := New(Config{})
	out, err := eng.Resolve(testModel())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if got := scalarNumber(t, out, "total_revenue"); got != 1000 {
		t.Errorf("total_revenue = %v, want 1000", got)
	}
	if got := scalarNumber(t, out, "taxed_total"); got != 1100 {
		t.Errorf("taxed_total = %v, want 1100", got)
	}
}

func TestResolve_InputNotMutated(t *testing.T) {
	eng := New(Config{})
	in := testModel()
	if _, err := eng.Resolve(in); err != nil {
		t.Fatal(err)
	}
	if in.Variables["total_revenue"].HasValue {
		t.Error("input model was mutated by resolve")
	}
}

func TestResolve_DerivedColumns(t *testing.T) {
	m := testModel()
	// margin depends on the sibling derived column taxed; declaration
	// order must not matter.
	m.Tables["sales"].Formulas["margin"] = "=taxed + revenue"
	m.Tables["sales"].Formulas["taxed"] = "=revenue * 2"

	eng := New(Config{})
	out, err := eng.Resolve(m)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	taxed := out.Tables["sales"].Columns["taxed"]
	if taxed == nil {
		t.Fatal("derived column taxed missing")
	}
	if got := taxed.Numbers(); got[0] != 200 || got[3] != 1000 {
		t.Errorf("taxed = %v", got)
	}
	margin := out.Tables["sales"].Columns["margin"]
	if got := margin.Numbers(); got[0] != 300 {
		t.Errorf("margin[0] = %v, want 300", got[0])
	}
}

func TestResolve_CrossTable(t *testing.T) {
	m := testModel()
	m.Tables["sales"].Formulas["taxed"] = "=revenue * 2"

	budget := model.NewTable("budget")
	budget.Columns["base"] = model.NumberColumn("base", []float64{10, 20, 30, 40})
	budget.Formulas["net"] = "=base + sales.taxed"
	m.Tables["budget"] = budget

	eng := New(Config{})
	out, err := eng.Resolve(m)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	net := out.Tables["budget"].Columns["net"].Numbers()
	if net[0] != 210 || net[3] != 1040 {
		t.Errorf("net = %v", net)
	}
}

func TestResolve_RowCountMismatch(t *testing.T) {
	m := testModel()
	m.Tables["sales"].Columns["extra"] = model.NumberColumn("extra", []float64{1, 2})

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected row count error")
	}
	if !strings.Contains(err.Error(), "rows") {
		t.Errorf("error %q does not mention rows", err)
	}
}

func TestResolve_CrossTableRowMismatch(t *testing.T) {
	m := testModel()
	short := model.NewTable("short")
	short.Columns["x"] = model.NumberColumn("x", []float64{1, 2})
	short.Formulas["y"] = "=x + sales.revenue"
	m.Tables["short"] = short

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected row count error")
	}
	if !strings.Contains(err.Error(), "rows") {
		t.Errorf("error %q does not mention rows", err)
	}
}

func TestResolve_ScalarCycle(t *testing.T) {
	m := model.NewModel()
	m.Variables["a"] = model.FormulaVariable("a", "=b + 1")
	m.Variables["b"] = model.FormulaVariable("b", "=a + 1")

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Circular") {
		t.Errorf("error %q does not say Circular", msg)
	}
	if !strings.Contains(msg, "a") || !strings.Contains(msg, "b") || !strings.Contains(msg, " -> ") {
		t.Errorf("error %q does not name the cycle path", msg)
	}
}

func TestResolve_ScalarSelfReference(t *testing.T) {
	m := model.NewModel()
	m.Variables["a"] = model.FormulaVariable("a", "=a + 1")

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "Circular") || !strings.Contains(err.Error(), `"a"`) {
		t.Errorf("unexpected error %q", err)
	}
}

func TestResolve_TableCycle(t *testing.T) {
	m := model.NewModel()
	t1 := model.NewTable("t1")
	t1.Columns["x"] = model.NumberColumn("x", []float64{1})
	t1.Formulas["y"] = "=t2.y + 1"
	t2 := model.NewTable("t2")
	t2.Columns["x"] = model.NumberColumn("x", []float64{1})
	t2.Formulas["y"] = "=t1.y + 1"
	m.Tables["t1"] = t1
	m.Tables["t2"] = t2

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "Circular") || !strings.Contains(err.Error(), " -> ") {
		t.Errorf("unexpected error %q", err)
	}
}

func TestResolve_ColumnCycle(t *testing.T) {
	m := testModel()
	m.Tables["sales"].Formulas["f1"] = "=f2 + 1"
	m.Tables["sales"].Formulas["f2"] = "=f1 + 1"

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "Circular") || !strings.Contains(err.Error(), "sales") {
		t.Errorf("unexpected error %q", err)
	}
}

func TestResolve_ColumnSelfReference(t *testing.T) {
	m := testModel()
	m.Tables["sales"].Formulas["f"] = "=f + 1"

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "Circular") || !strings.Contains(err.Error(), `"f"`) {
		t.Errorf("unexpected error %q", err)
	}
}

func TestResolve_AggregationInRowFormula(t *testing.T) {
	m := testModel()
	m.Tables["sales"].Formulas["bad"] = "=SUM(revenue)"

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected aggregation error")
	}
	if !strings.Contains(err.Error(), "aggregation") {
		t.Errorf("error %q does not mention aggregation", err)
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("error %q does not name the column", err)
	}
}

func TestIsAggregationFormula(t *testing.T) {
	tests := []struct {
		formula string
		want    bool
	}{
		{"=SUM(revenue)", true},
		{"=sumif(region, \"East\", revenue)", true},
		{"=STDEV.P(revenue)", true},
		{"=IF(revenue > 0, 1, 0)", false},
		{"=IFS(revenue > 0, 1, TRUE, 0)", false},
		{"=revenue + 1", false},
		{"=ROUND(revenue, 2)", false},
	}
	for _, tt := range tests {
		if got := isAggregationFormula(tt.formula); got != tt.want {
			t.Errorf("isAggregationFormula(%q) = %v, want %v", tt.formula, got, tt.want)
		}
	}
}

func TestResolve_EmptyTableWithFormulas(t *testing.T) {
	m := model.NewModel()
	tbl := model.NewTable("empty")
	tbl.Formulas["y"] = "=1 + 1"
	m.Tables["empty"] = tbl

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected empty table error")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("unexpected error %q", err)
	}
}

func TestResolve_MixedTypeDerivedColumn(t *testing.T) {
	m := testModel()
	m.Tables["sales"].Formulas["mix"] = `=IF(revenue > 200, "big", revenue)`

	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected mixed type error")
	}
	if !strings.Contains(err.Error(), `"mix"`) {
		t.Errorf("error %q does not name the column", err)
	}
}

func TestResolveScenario(t *testing.T) {
	eng := New(Config{})
	out, err := eng.ResolveScenario(testModel(), "optimistic")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := scalarNumber(t, out, "taxed_total"); got != 1050 {
		t.Errorf("taxed_total = %v, want 1050", got)
	}
}

func TestResolveScenario_Unknown(t *testing.T) {
	eng := New(Config{})
	_, err := eng.ResolveScenario(testModel(), "pessimistic")
	if err == nil || !strings.Contains(err.Error(), "unknown scenario") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestResolveScenario_UnknownScalar(t *testing.T) {
	m := testModel()
	m.Scenarios["broken"] = map[string]value.Value{"bogus": value.Number(1)}

	eng := New(Config{})
	_, err := eng.ResolveScenario(m, "broken")
	if err == nil || !strings.Contains(err.Error(), `"bogus"`) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestEvalFormula(t *testing.T) {
	eng := New(Config{})
	out, err := eng.Resolve(testModel())
	if err != nil {
		t.Fatal(err)
	}

	v, err := eng.EvalFormula(out, "=total_revenue * 2")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if n, _ := v.AsNumber(); n != 2000 {
		t.Errorf("total_revenue * 2 = %v, want 2000", v)
	}

	v, err = eng.EvalFormula(out, `=SUMIF(sales.region, "East", sales.revenue)`)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if n, _ := v.AsNumber(); n != 250 {
		t.Errorf("SUMIF East = %v, want 250", v)
	}
}

func TestResolve_DemoFunctionSet(t *testing.T) {
	m := testModel()
	m.Variables["looked"] = model.FormulaVariable("looked",
		`=XLOOKUP("East", sales.region, sales.revenue)`)

	eng := New(Config{Functions: eval.DemoSet()})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected unknown function error")
	}
	if !strings.Contains(err.Error(), "XLOOKUP") {
		t.Errorf("error %q does not name the function", err)
	}

	full := New(Config{})
	if _, err := full.Resolve(m); err != nil {
		t.Errorf("full set should resolve XLOOKUP: %v", err)
	}
}

func TestResolve_ScalarCannotSeeDerivedColumns(t *testing.T) {
	m := testModel()
	m.Tables["sales"].Formulas["taxed"] = "=revenue * 2"
	m.Variables["sum_taxed"] = model.FormulaVariable("sum_taxed", "=SUM(sales.taxed)")

	// Scalars resolve before tables, so derived columns are out of reach
	// for scalar formulas.
	eng := New(Config{})
	_, err := eng.Resolve(m)
	if err == nil {
		t.Fatal("expected unknown reference error")
	}
	if !strings.Contains(err.Error(), "taxed") {
		t.Errorf("unexpected error %q", err)
	}
}

func TestExtractRefs(t *testing.T) {
	idents, columns := extractRefs(`=IF(rate > 0, sales.revenue * rate, "rate fallback")`)
	if len(idents) != 2 || idents[0] != "rate" || idents[1] != "rate" {
		t.Errorf("idents = %v", idents)
	}
	if len(columns) != 1 || columns[0] != (columnRef{Table: "sales", Column: "revenue"}) {
		t.Errorf("columns = %v", columns)
	}
}

func TestExtractTableDeps(t *testing.T) {
	deps := extractTableDeps("=base + sales.taxed + sales.revenue + costs.amount", "budget")
	if len(deps) != 2 || deps[0] != "sales" || deps[1] != "costs" {
		t.Errorf("deps = %v", deps)
	}
}
