package expr

import (
	"errors"
	"math"
	"testing"
)

type varmap map[string]float64

func (m varmap) Lookup(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

func TestEvaluateLiterals(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"5", 5},
		{"  3.25 ", 3.25},
		{"-4", -4},
		{"2 + 3", 5},
		{"10 - 4", 6},
		{"6 * 7", 42},
		{"9 / 3", 3},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"2 * (8 - 3)", 10},
		{"-4 + 6", 2},
		{"3 * -5", -15},
		{"((7))", 7},
	}
	for _, c := range cases {
		got, err := Evaluate(c.input, nil)
		if err != nil {
			t.Errorf("Evaluate(%q) failed: %v", c.input, err)
			continue
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Evaluate(%q) = %g, want %g", c.input, got, c.want)
		}
	}
}

// The split point for additive chains is the rightmost top-level operator,
// which keeps same-precedence chains left-associative.
func TestEvaluateMixedAdditive(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"1 - 2 + 3", 2},
		{"1 + 2 - 3", 0},
		{"10 - 2 - 3", 5},
	}
	for _, c := range cases {
		got, err := Evaluate(c.input, nil)
		if err != nil {
			t.Errorf("Evaluate(%q) failed: %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("Evaluate(%q) = %g, want %g", c.input, got, c.want)
		}
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	first, err := Evaluate("2 + 3", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Evaluate("2 + 3", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first != 5 || second != 5 {
		t.Errorf("expected 5 both times, got %g then %g", first, second)
	}
}

func TestEvaluateVariables(t *testing.T) {
	vars := varmap{"$x": 2, "$offset_z": 0.5}
	got, err := Evaluate("$x * 10 + $offset_z", vars)
	if err != nil {
		t.Fatal(err)
	}
	if got != 20.5 {
		t.Errorf("got %g, want 20.5", got)
	}
}

func TestEvaluateUnknownVariableIsZero(t *testing.T) {
	got, err := Evaluate("$nope + 1", varmap{})
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("got %g, want 1", got)
	}
}

func TestEvaluateNegativeVariable(t *testing.T) {
	got, err := Evaluate("3 * $x", varmap{"$x": -5})
	if err != nil {
		t.Fatal(err)
	}
	if got != -15 {
		t.Errorf("got %g, want -15", got)
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	_, err := Evaluate("1 / 0", nil)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestEvaluateMalformed(t *testing.T) {
	for _, input := range []string{"", "foo", "2 +", "* 3", "(2 + 3"} {
		if _, err := Evaluate(input, nil); !errors.Is(err, ErrInvalidExpression) {
			t.Errorf("Evaluate(%q): expected ErrInvalidExpression, got %v", input, err)
		}
	}
}

func TestSubstitute(t *testing.T) {
	vars := varmap{"$x": 2, "$y": -1.5}
	cases := []struct {
		input string
		want  string
	}{
		{"$x + $y", "2 + -1.5"},
		{"$x$y", "2-1.5"},
		{"no vars", "no vars"},
		{"$ alone", "$ alone"},
		{"$unknown", "0"},
	}
	for _, c := range cases {
		if got := Substitute(c.input, vars); got != c.want {
			t.Errorf("Substitute(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}
