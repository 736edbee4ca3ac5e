package eval

import (
	"math"
	"strings"
	"testing"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

func TestAggregations(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		input string
		want  float64
	}{
		{"SUM(sales.revenue)", 1000},
		{"AVERAGE(sales.revenue)", 250},
		{"AVG(sales.revenue)", 250},
		{"MIN(sales.revenue)", 100},
		{"MAX(sales.revenue)", 500},
		{"COUNT(sales.revenue)", 4},
		{"COUNTA(sales.region)", 4},
		{"MEDIAN(sales.revenue)", 200},
		{"MEDIAN(1, 3, 5)", 3},
		{"PRODUCT(2, 3, 4)", 24},
		{"SUM(1, 2, 3)", 6},
		{"SUM()", 0},
	}
	for _, tt := range tests {
		wantNumber(t, evalText(t, tt.input, ctx), tt.want)
	}
}

func TestAggregation_SkipsNonNumeric(t *testing.T) {
	ctx := NewContext()
	ctx.Tables["mixed"] = map[string][]value.Value{
		"vals": {value.Number(10), value.Text("skip"), value.Number(20), value.Null},
	}
	wantNumber(t, evalText(t, "SUM(mixed.vals)", ctx), 30)
	wantNumber(t, evalText(t, "COUNT(mixed.vals)", ctx), 2)
	wantNumber(t, evalText(t, "COUNTA(mixed.vals)", ctx), 3)
}

func TestVarianceAndStdev(t *testing.T) {
	ctx := NewContext()
	ctx.Tables["t"] = map[string][]value.Value{
		"x": {value.Number(2), value.Number(4), value.Number(4), value.Number(4), value.Number(5), value.Number(5), value.Number(7), value.Number(9)},
	}

	// population variance of this classic data set is 4
	wantNumber(t, evalText(t, "VAR.P(t.x)", ctx), 4)
	wantNumber(t, evalText(t, "STDEV.P(t.x)", ctx), 2)

	v := evalText(t, "VAR.S(t.x)", ctx)
	n, _ := v.AsNumber()
	if math.Abs(n-32.0/7.0) > 1e-9 {
		t.Errorf("expected sample variance 32/7, got %v", n)
	}
}

func TestPercentileAndQuartile(t *testing.T) {
	ctx := NewContext()
	ctx.Tables["t"] = map[string][]value.Value{
		"x": {value.Number(1), value.Number(2), value.Number(3), value.Number(4)},
	}
	wantNumber(t, evalText(t, "PERCENTILE(t.x, 0)", ctx), 1)
	wantNumber(t, evalText(t, "PERCENTILE(t.x, 1)", ctx), 4)
	wantNumber(t, evalText(t, "PERCENTILE(t.x, 0.5)", ctx), 2.5)
	wantNumber(t, evalText(t, "QUARTILE(t.x, 2)", ctx), 2.5)
}

func TestCorrel(t *testing.T) {
	ctx := NewContext()
	ctx.Tables["t"] = map[string][]value.Value{
		"x": {value.Number(1), value.Number(2), value.Number(3)},
		"y": {value.Number(2), value.Number(4), value.Number(6)},
		"z": {value.Number(1), value.Number(2)},
	}
	wantNumber(t, evalText(t, "CORREL(t.x, t.y)", ctx), 1)

	err := evalErr(t, "CORREL(t.x, t.z)", ctx)
	if KindOf(err) != KindRowCountMismatch {
		t.Errorf("expected row count mismatch, got %v", KindOf(err))
	}
	if !strings.Contains(err.Error(), "rows") {
		t.Errorf("expected message to mention rows, got %q", err)
	}
}

func TestEmptyAggregates(t *testing.T) {
	ctx := NewContext()
	ctx.Tables["t"] = map[string][]value.Value{"x": {}}

	// SUM of nothing is zero; the others have no meaningful result.
	wantNumber(t, evalText(t, "SUM(t.x)", ctx), 0)

	for _, input := range []string{"AVERAGE(t.x)", "MIN(t.x)", "MAX(t.x)", "MEDIAN(t.x)"} {
		err := evalErr(t, input, ctx)
		if KindOf(err) != KindDomain {
			t.Errorf("%s: expected domain error on empty input, got %v", input, KindOf(err))
		}
	}
}

func TestArrayFunctions(t *testing.T) {
	ctx := NewContext()
	ctx.Tables["t"] = map[string][]value.Value{
		"x":    {value.Number(3), value.Number(1), value.Number(3), value.Number(2)},
		"keep": {value.Boolean(true), value.Boolean(false), value.Boolean(true), value.Boolean(false)},
	}

	v := evalText(t, "UNIQUE(t.x)", ctx)
	if len(v.Items()) != 3 {
		t.Errorf("UNIQUE: expected 3 items, got %d", len(v.Items()))
	}
	wantNumber(t, v.Items()[0], 3) // first-seen order

	v = evalText(t, "SORT(t.x)", ctx)
	wantNumber(t, v.Items()[0], 1)
	wantNumber(t, v.Items()[3], 3)

	v = evalText(t, "SORT(t.x, -1)", ctx)
	wantNumber(t, v.Items()[0], 3)
	wantNumber(t, v.Items()[3], 1)

	v = evalText(t, "FILTER(t.x, t.keep)", ctx)
	if len(v.Items()) != 2 {
		t.Fatalf("FILTER: expected 2 items, got %d", len(v.Items()))
	}
	wantNumber(t, v.Items()[0], 3)
	wantNumber(t, v.Items()[1], 3)

	v = evalText(t, "SEQUENCE(4, 10, 5)", ctx)
	if len(v.Items()) != 4 {
		t.Fatalf("SEQUENCE: expected 4 items, got %d", len(v.Items()))
	}
	wantNumber(t, v.Items()[3], 25)
}

func TestFilterLengthMismatch(t *testing.T) {
	ctx := NewContext()
	ctx.Tables["t"] = map[string][]value.Value{
		"x":    {value.Number(1), value.Number(2)},
		"mask": {value.Boolean(true)},
	}
	err := evalErr(t, "FILTER(t.x, t.mask)", ctx)
	if KindOf(err) != KindRowCountMismatch {
		t.Errorf("expected row count mismatch, got %v", KindOf(err))
	}
}

func TestRandDeterministic(t *testing.T) {
	lib := NewLibrary(FullSet())
	lib.SetRandom(func() float64 { return 0.25 })
	v, err := lib.Call("RAND", nil, NewContext())
	if err != nil {
		t.Fatalf("RAND: %v", err)
	}
	n, _ := v.AsNumber()
	if n != 0.25 {
		t.Errorf("expected injected random value, got %v", n)
	}

	arr, err := lib.Call("RANDARRAY", []value.Value{value.Number(3)}, NewContext())
	if err != nil {
		t.Fatalf("RANDARRAY: %v", err)
	}
	if len(arr.Items()) != 3 {
		t.Errorf("RANDARRAY: expected 3 items, got %d", len(arr.Items()))
	}
}

func TestConditionalAggregations(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		input string
		want  float64
	}{
		{`SUMIF(sales.region, "East", sales.revenue)`, 250},
		{`COUNTIF(sales.region, "East")`, 2},
		{`AVERAGEIF(sales.region, "East", sales.revenue)`, 125},
		{`SUMIF(sales.revenue, ">=200")`, 750},
		{`SUMIFS(sales.revenue, sales.region, "East", sales.revenue, ">100")`, 150},
		{`COUNTIFS(sales.region, "East", sales.revenue, ">100")`, 1},
		{`MAXIFS(sales.revenue, sales.region, "East")`, 150},
		{`MINIFS(sales.revenue, sales.region, "East")`, 100},
		{`MAXIFS(sales.revenue, sales.region, "Nowhere")`, 0},
	}
	for _, tt := range tests {
		wantNumber(t, evalText(t, tt.input, ctx), tt.want)
	}
}

func TestConditional_RangeLengthMismatch(t *testing.T) {
	ctx := testContext()
	ctx.Tables["short"] = map[string][]value.Value{
		"x": {value.Number(1)},
	}
	err := evalErr(t, `SUMIF(sales.region, "East", short.x)`, ctx)
	if KindOf(err) != KindRowCountMismatch {
		t.Errorf("expected row count mismatch, got %v", KindOf(err))
	}
}

func TestLogicalFunctions(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		input string
		want  bool
	}{
		{"AND(TRUE, TRUE, TRUE)", true},
		{"AND(TRUE, FALSE)", false},
		{"OR(FALSE, FALSE)", false},
		{"OR(FALSE, TRUE)", true},
		{"NOT(FALSE)", true},
		{"XOR(TRUE, TRUE)", false},
		{"XOR(TRUE, FALSE, FALSE)", true},
		{"TRUE()", true},
		{"FALSE()", false},
		{"AND(1, 2)", true},
		{"AND(1, 0)", false},
	}
	for _, tt := range tests {
		v := evalText(t, tt.input, ctx)
		if v.Kind() != value.KindBoolean || v.Bool() != tt.want {
			t.Errorf("%q: expected %v, got %s %q", tt.input, tt.want, v.Kind(), v.AsText())
		}
	}
}

func TestLookupFunctions(t *testing.T) {
	ctx := testContext()

	// INDEX and MATCH are 1-based
	wantNumber(t, evalText(t, "INDEX(sales.revenue, 1)", ctx), 100)
	wantNumber(t, evalText(t, `MATCH("West", sales.region, 0)`, ctx), 2)
	wantNumber(t, evalText(t, `INDEX(sales.revenue, MATCH("West", sales.region, 0))`, ctx), 250)

	wantNumber(t, evalText(t, "CHOOSE(2, 10, 20, 30)", ctx), 20)

	wantNumber(t, evalText(t, `XLOOKUP("North", sales.region, sales.revenue)`, ctx), 500)
	wantNumber(t, evalText(t, `XLOOKUP("Nowhere", sales.region, sales.revenue, -1)`, ctx), -1)

	wantNumber(t, evalText(t, `VLOOKUP("West", sales.region, sales.revenue)`, ctx), 250)

	wantNumber(t, evalText(t, `INDIRECT("tax_rate")`, ctx), 0.1)
	v := evalText(t, `INDIRECT("sales.revenue")`, ctx)
	if v.Kind() != value.KindArray {
		t.Errorf("INDIRECT of a column should yield an array, got %s", v.Kind())
	}
}

func TestIndexOutOfRange(t *testing.T) {
	ctx := testContext()

	err := evalErr(t, "INDEX(sales.revenue, 0)", ctx)
	if KindOf(err) != KindIndexOutOfBounds {
		t.Errorf("expected out-of-bounds for INDEX 0, got %v", KindOf(err))
	}
	err = evalErr(t, "INDEX(sales.revenue, 5)", ctx)
	if KindOf(err) != KindIndexOutOfBounds {
		t.Errorf("expected out-of-bounds for INDEX 5, got %v", KindOf(err))
	}
}

func TestMatchNotFound(t *testing.T) {
	ctx := testContext()
	err := evalErr(t, `MATCH("Nowhere", sales.region, 0)`, ctx)
	if KindOf(err) != KindIndexOutOfBounds {
		t.Errorf("expected not-found error, got %v", KindOf(err))
	}
}

func TestMatchApproximate(t *testing.T) {
	ctx := NewContext()
	ctx.Tables["t"] = map[string][]value.Value{
		"asc":  {value.Number(100), value.Number(150), value.Number(250), value.Number(500)},
		"desc": {value.Number(500), value.Number(250), value.Number(150), value.Number(100)},
	}

	// Type 1: position of the largest value <= target on ascending data.
	wantNumber(t, evalText(t, "MATCH(350, t.asc, 1)", ctx), 3)
	wantNumber(t, evalText(t, "MATCH(250, t.asc, 1)", ctx), 3)
	wantNumber(t, evalText(t, "MATCH(100, t.asc, 1)", ctx), 1)

	// Type 1 is the default.
	wantNumber(t, evalText(t, "MATCH(350, t.asc)", ctx), 3)

	// No element <= target fails rather than clamping to the first.
	err := evalErr(t, "MATCH(50, t.asc, 1)", ctx)
	if KindOf(err) != KindIndexOutOfBounds {
		t.Errorf("expected out-of-bounds when every value exceeds the target, got %v", KindOf(err))
	}

	// Type -1: position of the smallest value >= target on descending data.
	wantNumber(t, evalText(t, "MATCH(200, t.desc, -1)", ctx), 2)
	wantNumber(t, evalText(t, "MATCH(100, t.desc, -1)", ctx), 4)

	err = evalErr(t, "MATCH(600, t.desc, -1)", ctx)
	if KindOf(err) != KindIndexOutOfBounds {
		t.Errorf("expected out-of-bounds when every value is below the target, got %v", KindOf(err))
	}
}

func TestXLookupLengthMismatch(t *testing.T) {
	ctx := testContext()
	ctx.Tables["short"] = map[string][]value.Value{
		"x": {value.Number(1)},
	}
	err := evalErr(t, `XLOOKUP("East", sales.region, short.x)`, ctx)
	if KindOf(err) != KindRowCountMismatch {
		t.Errorf("expected row count mismatch, got %v", KindOf(err))
	}
}

func TestTextFunctions(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		input string
		want  string
	}{
		{`CONCAT("a", "b", 3)`, "ab3"},
		{`CONCATENATE("x", "-", "y")`, "x-y"},
		{`LEFT("hello", 2)`, "he"},
		{`LEFT("hello")`, "h"},
		{`RIGHT("hello", 3)`, "llo"},
		{`MID("hello", 2, 3)`, "ell"},
		{`TRIM("  a   b  ")`, "a b"},
		{`UPPER("abc")`, "ABC"},
		{`LOWER("ABC")`, "abc"},
		{`SUBSTITUTE("aaa", "a", "b", 2)`, "aba"},
		{`SUBSTITUTE("aaa", "a", "b")`, "bbb"},
		{`REPT("ab", 3)`, "ababab"},
	}
	for _, tt := range tests {
		v := evalText(t, tt.input, ctx)
		if v.AsText() != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.want, v.AsText())
		}
	}

	wantNumber(t, evalText(t, `LEN("héllo")`, ctx), 5)
	wantNumber(t, evalText(t, `FIND("l", "hello")`, ctx), 3)
	wantNumber(t, evalText(t, `SEARCH("L", "hello")`, ctx), 3)

	err := evalErr(t, `FIND("L", "hello")`, ctx)
	if KindOf(err) != KindDomain {
		t.Errorf("FIND is case-sensitive; expected not-found error, got %v", KindOf(err))
	}
}

func TestTextFunctions_MultibyteText(t *testing.T) {
	ctx := NewContext()

	// Positions and lengths count characters, not bytes, so multibyte
	// text never gets cut mid-rune.
	tests := []struct {
		input string
		want  string
	}{
		{`LEFT("héllo", 2)`, "hé"},
		{`RIGHT("héllo", 4)`, "éllo"},
		{`MID("héllo", 2, 3)`, "éll"},
		{`MID("héllo", SEARCH("l", "héllo"), 2)`, "ll"},
	}
	for _, tt := range tests {
		v := evalText(t, tt.input, ctx)
		if v.AsText() != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.want, v.AsText())
		}
	}

	wantNumber(t, evalText(t, `FIND("é", "héllo")`, ctx), 2)
	wantNumber(t, evalText(t, `FIND("l", "héllo", 4)`, ctx), 4)
}

func TestMathFunctions(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		input string
		want  float64
	}{
		{"ABS(-5)", 5},
		{"SQRT(16)", 4},
		{"ROUND(2.567, 2)", 2.57},
		{"ROUND(2.5, 0)", 3},
		{"ROUNDUP(2.01, 0)", 3},
		{"ROUNDDOWN(2.99, 0)", 2},
		{"FLOOR(3.7)", 3},
		{"CEILING(3.2)", 4},
		{"INT(-1.5)", -2},
		{"SIGN(-42)", -1},
		{"POWER(2, 5)", 32},
		{"MOD(10, 3)", 1},
		{"EXP(0)", 1},
		{"LN(1)", 0},
		{"LOG10(1000)", 3},
		{"LOG(8, 2)", 3},
	}
	for _, tt := range tests {
		wantNumber(t, evalText(t, tt.input, ctx), tt.want)
	}

	v := evalText(t, "PI()", ctx)
	n, _ := v.AsNumber()
	if math.Abs(n-math.Pi) > 1e-12 {
		t.Errorf("PI: got %v", n)
	}

	err := evalErr(t, "SQRT(-1)", ctx)
	if !strings.Contains(err.Error(), "negative") {
		t.Errorf("expected negative sqrt message, got %q", err)
	}
	err = evalErr(t, "MOD(1, 0)", ctx)
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("expected division by zero, got %q", err)
	}
}

func TestArityErrors(t *testing.T) {
	ctx := testContext()
	for _, input := range []string{"ABS()", "ABS(1, 2)", "SUMIF(sales.region)", `MID("x", 1)`} {
		err := evalErr(t, input, ctx)
		if KindOf(err) != KindArity {
			t.Errorf("%s: expected arity error, got %v (%v)", input, KindOf(err), err)
		}
	}
}
