package eval

import (
	"testing"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

func TestMatchesCriteria(t *testing.T) {
	tests := []struct {
		name     string
		v        value.Value
		criteria value.Value
		want     bool
	}{
		{"bare number equals", value.Number(10), value.Number(10), true},
		{"bare number differs", value.Number(10), value.Number(11), false},
		{"bare text equals case-insensitive", value.Text("East"), value.Text("east"), true},
		{"bare text differs", value.Text("East"), value.Text("West"), false},
		{"numeric text equals number", value.Number(5), value.Text("5"), true},

		{"greater than", value.Number(10), value.Text(">5"), true},
		{"greater than false", value.Number(3), value.Text(">5"), false},
		{"greater or equal boundary", value.Number(5), value.Text(">=5"), true},
		{"less than", value.Number(3), value.Text("<5"), true},
		{"less or equal boundary", value.Number(5), value.Text("<=5"), true},
		{"not equal", value.Number(3), value.Text("<>5"), true},
		{"not equal false", value.Number(5), value.Text("<>5"), false},
		{"explicit equals", value.Number(5), value.Text("=5"), true},

		{"text comparison", value.Text("banana"), value.Text(">apple"), true},
		{"text comparison insensitive", value.Text("BANANA"), value.Text(">apple"), true},
		{"text not equal", value.Text("East"), value.Text("<>West"), true},

		{"boolean against criteria", value.Boolean(true), value.Text(">0"), true},
		{"non-numeric against numeric op", value.Text("abc"), value.Text(">5"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesCriteria(tt.v, tt.criteria); got != tt.want {
				t.Errorf("MatchesCriteria(%v, %v) = %v, want %v",
					tt.v.AsText(), tt.criteria.AsText(), got, tt.want)
			}
		})
	}
}
