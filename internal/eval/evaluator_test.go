package eval

import (
	"strings"
	"testing"

	"github.com/gridstack-labs/gridcalc/internal/formula"
	"github.com/gridstack-labs/gridcalc/internal/value"
)

// testContext builds a context with a sales table and a couple of scalars.
func testContext() *Context {
	ctx := NewContext()
	ctx.Scalars["tax_rate"] = value.Number(0.1)
	ctx.Scalars["label"] = value.Text("Q1")
	ctx.Tables["sales"] = map[string][]value.Value{
		"region":  {value.Text("East"), value.Text("West"), value.Text("East"), value.Text("North")},
		"revenue": {value.Number(100), value.Number(250), value.Number(150), value.Number(500)},
	}
	return ctx
}

func evalText(t *testing.T, input string, ctx *Context) value.Value {
	t.Helper()
	expr, err := formula.Parse(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	ev := New(NewLibrary(FullSet()))
	v, err := ev.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("eval %q: %v", input, err)
	}
	return v
}

func evalErr(t *testing.T, input string, ctx *Context) error {
	t.Helper()
	expr, err := formula.Parse(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	ev := New(NewLibrary(FullSet()))
	_, err = ev.Eval(expr, ctx)
	if err == nil {
		t.Fatalf("eval %q: expected error", input)
	}
	return err
}

func wantNumber(t *testing.T, v value.Value, want float64) {
	t.Helper()
	got, ok := v.AsNumber()
	if !ok {
		t.Fatalf("expected number, got %s %q", v.Kind(), v.AsText())
	}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEval_Arithmetic(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		input string
		want  float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 4", 2.5},
		{"2 ^ 10", 1024},
		{"7 % 3", 1},
		{"-3 + 5", 2},
		{"2 ^ 3 ^ 2", 512},
	}
	for _, tt := range tests {
		wantNumber(t, evalText(t, tt.input, ctx), tt.want)
	}
}

func TestEval_TextCoercionInArithmetic(t *testing.T) {
	ctx := NewContext()
	wantNumber(t, evalText(t, `"3" + 4`, ctx), 7)
	wantNumber(t, evalText(t, "TRUE + 1", ctx), 2)
}

func TestEval_DivisionByZero(t *testing.T) {
	ctx := NewContext()
	err := evalErr(t, "1 / 0", ctx)
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("expected division by zero message, got %q", err)
	}
	err = evalErr(t, "1 % 0", ctx)
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("expected division by zero message, got %q", err)
	}
}

func TestEval_Concat(t *testing.T) {
	ctx := testContext()
	v := evalText(t, `label & "-" & 2024`, ctx)
	if v.AsText() != "Q1-2024" {
		t.Errorf("expected Q1-2024, got %q", v.AsText())
	}
}

func TestEval_Comparisons(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		input string
		want  bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"2 >= 2", true},
		{`"abc" = "ABC"`, true},
		{`"a" <> "b"`, true},
		{`"2" = 2`, true},
	}
	for _, tt := range tests {
		v := evalText(t, tt.input, ctx)
		if v.Kind() != value.KindBoolean || v.Bool() != tt.want {
			t.Errorf("%q: expected %v, got %s %q", tt.input, tt.want, v.Kind(), v.AsText())
		}
	}
}

func TestEval_ScalarReference(t *testing.T) {
	ctx := testContext()
	wantNumber(t, evalText(t, "tax_rate * 100", ctx), 10)
}

func TestEval_UnknownReference(t *testing.T) {
	ctx := testContext()
	err := evalErr(t, "no_such_scalar + 1", ctx)
	if KindOf(err) != KindUnknownReference {
		t.Errorf("expected unknown reference kind, got %v", KindOf(err))
	}
	if !strings.Contains(err.Error(), "no_such_scalar") {
		t.Errorf("expected offending name in message, got %q", err)
	}
}

func TestEval_ColumnAsArray(t *testing.T) {
	ctx := testContext()
	v := evalText(t, "sales.revenue", ctx)
	if v.Kind() != value.KindArray {
		t.Fatalf("expected array outside row context, got %s", v.Kind())
	}
	if len(v.Items()) != 4 {
		t.Errorf("expected 4 elements, got %d", len(v.Items()))
	}
}

func TestEval_ColumnInRowContext(t *testing.T) {
	ctx := testContext()
	ctx.CurrentTable = "sales"
	ctx.RowCount = 4
	v := evalText(t, "revenue * (1 + tax_rate)", ctx.WithRow(1))
	wantNumber(t, v, 275)
}

func TestEval_CrossTableRowCountMismatch(t *testing.T) {
	ctx := testContext()
	ctx.Tables["costs"] = map[string][]value.Value{
		"amount": {value.Number(5), value.Number(6)},
	}
	ctx.CurrentTable = "sales"
	ctx.RowCount = 4
	expr, err := formula.Parse("revenue - costs.amount")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ev := New(NewLibrary(FullSet()))
	_, err = ev.Eval(expr, ctx.WithRow(0))
	if err == nil {
		t.Fatal("expected row count mismatch")
	}
	if KindOf(err) != KindRowCountMismatch {
		t.Errorf("expected row count mismatch kind, got %v", KindOf(err))
	}
	if !strings.Contains(err.Error(), "rows") {
		t.Errorf("expected message to mention rows, got %q", err)
	}
}

func TestEval_BracketIndexing(t *testing.T) {
	ctx := testContext()

	wantNumber(t, evalText(t, "sales.revenue[0]", ctx), 100)
	wantNumber(t, evalText(t, "sales.revenue[3]", ctx), 500)

	// same meaning inside a row formula
	rowCtx := testContext()
	rowCtx.CurrentTable = "sales"
	rowCtx.RowCount = 4
	wantNumber(t, evalText(t, "sales.revenue[0]", rowCtx.WithRow(2)), 100)

	err := evalErr(t, "sales.revenue[4]", ctx)
	if KindOf(err) != KindIndexOutOfBounds {
		t.Errorf("expected index out of bounds kind, got %v", KindOf(err))
	}

	err = evalErr(t, "tax_rate[0]", ctx)
	if KindOf(err) != KindDomain {
		t.Errorf("expected domain error for indexing a scalar, got %v", KindOf(err))
	}
}

func TestEval_ArrayBroadcasting(t *testing.T) {
	ctx := testContext()

	v := evalText(t, "sales.revenue * 2", ctx)
	if v.Kind() != value.KindArray {
		t.Fatalf("expected array result, got %s", v.Kind())
	}
	wantNumber(t, v.Items()[1], 500)

	// array op array, element-wise
	v = evalText(t, "sales.revenue + sales.revenue", ctx)
	wantNumber(t, v.Items()[3], 1000)
}

func TestEval_ArrayBroadcastMismatch(t *testing.T) {
	ctx := testContext()
	ctx.Tables["costs"] = map[string][]value.Value{
		"amount": {value.Number(5), value.Number(6)},
	}
	err := evalErr(t, "sales.revenue + costs.amount", ctx)
	if KindOf(err) != KindRowCountMismatch {
		t.Errorf("expected row count mismatch kind, got %v", KindOf(err))
	}
	if !strings.Contains(err.Error(), "rows") {
		t.Errorf("expected message to mention rows, got %q", err)
	}
}

func TestEval_IFLazyBranches(t *testing.T) {
	ctx := testContext()

	// the untaken branch divides by zero and must never run
	wantNumber(t, evalText(t, "IF(TRUE, 1, 1/0)", ctx), 1)
	wantNumber(t, evalText(t, "IF(FALSE, 1/0, 2)", ctx), 2)

	// two-arg IF with false condition yields FALSE
	v := evalText(t, "IF(FALSE, 1)", ctx)
	if v.Kind() != value.KindBoolean || v.Bool() {
		t.Errorf("expected FALSE, got %s %q", v.Kind(), v.AsText())
	}
}

func TestEval_IFS(t *testing.T) {
	ctx := NewContext()
	wantNumber(t, evalText(t, "IFS(FALSE, 1, TRUE, 2)", ctx), 2)
	// odd trailing argument is the fallback
	wantNumber(t, evalText(t, "IFS(FALSE, 1, FALSE, 2, 99)", ctx), 99)

	err := evalErr(t, "IFS(FALSE, 1)", ctx)
	if !strings.Contains(err.Error(), "no condition matched") {
		t.Errorf("expected no-match error, got %q", err)
	}
}

func TestEval_IFERROR(t *testing.T) {
	ctx := NewContext()
	wantNumber(t, evalText(t, "IFERROR(1/0, -1)", ctx), -1)
	wantNumber(t, evalText(t, "IFERROR(6, -1)", ctx), 6)
}

func TestEval_UnknownFunction(t *testing.T) {
	ctx := NewContext()
	err := evalErr(t, "NOPE(1)", ctx)
	if KindOf(err) != KindUnknownFunction {
		t.Errorf("expected unknown function kind, got %v", KindOf(err))
	}
	if !strings.Contains(err.Error(), "NOPE") {
		t.Errorf("expected function name in message, got %q", err)
	}
}

func TestEval_DemoSetHidesFunctions(t *testing.T) {
	ctx := testContext()
	ev := New(NewLibrary(DemoSet()))

	// SUM is in the demo set
	expr, _ := formula.Parse("SUM(sales.revenue)")
	if _, err := ev.Eval(expr, ctx); err != nil {
		t.Errorf("SUM should be available in demo set: %v", err)
	}

	// XLOOKUP is not
	expr, _ = formula.Parse(`XLOOKUP("East", sales.region, sales.revenue)`)
	_, err := ev.Eval(expr, ctx)
	if KindOf(err) != KindUnknownFunction {
		t.Errorf("expected unknown function in demo set, got %v", err)
	}
}

func TestEval_FunctionNamesCaseInsensitive(t *testing.T) {
	ctx := testContext()
	wantNumber(t, evalText(t, "sum(sales.revenue)", ctx), 1000)
	wantNumber(t, evalText(t, "Sum(sales.revenue)", ctx), 1000)
}
