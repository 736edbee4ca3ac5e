package value

import "testing"

func TestAsNumber(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want float64
		ok   bool
	}{
		{"number", Number(42.5), 42.5, true},
		{"boolean true", Boolean(true), 1, true},
		{"boolean false", Boolean(false), 0, true},
		{"numeric text", Text("3.14"), 3.14, true},
		{"negative numeric text", Text("-7"), -7, true},
		{"non-numeric text", Text("hello"), 0, false},
		{"null", Null, 0, false},
		{"array", Array([]Value{Number(1)}), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.AsNumber()
			if ok != tt.ok {
				t.Fatalf("AsNumber ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("AsNumber = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsText(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"integer number", Number(100), "100"},
		{"decimal number", Number(2.5), "2.5"},
		{"text", Text("abc"), "abc"},
		{"boolean true", Boolean(true), "TRUE"},
		{"boolean false", Boolean(false), "FALSE"},
		{"null", Null, ""},
		{"array", Array([]Value{Number(1), Text("x")}), "1, x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.AsText(); got != tt.want {
				t.Errorf("AsText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want bool
	}{
		{"nonzero number", Number(5), true},
		{"zero", Number(0), false},
		{"negative", Number(-1), true},
		{"boolean true", Boolean(true), true},
		{"boolean false", Boolean(false), false},
		{"empty text", Text(""), false},
		{"false text", Text("false"), false},
		{"plain text", Text("anything"), true},
		{"zero text", Text("0"), false},
		{"numeric text", Text("2"), true},
		{"null", Null, false},
		{"empty array", Array(nil), false},
		{"non-empty array", Array([]Value{Number(0)}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.IsTruthy(); got != tt.want {
				t.Errorf("IsTruthy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Number(2).Equal(Number(2)) {
		t.Error("equal numbers should be equal")
	}
	if Number(2).Equal(Number(3)) {
		t.Error("different numbers should not be equal")
	}
	if !Text("a").Equal(Text("a")) {
		t.Error("equal texts should be equal")
	}
	if !Null.Equal(Null) {
		t.Error("null should equal null")
	}
	if Number(1).Equal(Boolean(true)) {
		t.Error("values of different kinds should not be equal")
	}
	a := Array([]Value{Number(1), Text("x")})
	b := Array([]Value{Number(1), Text("x")})
	if !a.Equal(b) {
		t.Error("element-wise equal arrays should be equal")
	}
}
