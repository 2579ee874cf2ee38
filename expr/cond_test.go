package expr

import (
	"errors"
	"testing"
)

func TestEvaluateConditionComparators(t *testing.T) {
	vars := varmap{"$x": 2, "$y": 10}
	cases := []struct {
		cond string
		want bool
	}{
		{"$x == 2", true},
		{"$x == 3", false},
		{"$x != 3", true},
		{"$x < $y", true},
		{"$x > $y", false},
		{"$x <= 2", true},
		{"$x >= 3", false},
		{"$y >= 10", true},
		{"$x + 1 == 3", true},
		{"2 * $x > 3", true},
	}
	for _, c := range cases {
		got, err := EvaluateCondition(c.cond, vars)
		if err != nil {
			t.Errorf("EvaluateCondition(%q) failed: %v", c.cond, err)
			continue
		}
		if got != c.want {
			t.Errorf("EvaluateCondition(%q) = %v, want %v", c.cond, got, c.want)
		}
	}
}

func TestEvaluateConditionBareExpression(t *testing.T) {
	got, err := EvaluateCondition("$flag", varmap{"$flag": 1})
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("non-zero expression should be true")
	}
	got, err = EvaluateCondition("0", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("zero expression should be false")
	}
}

func TestEvaluateConditionMalformed(t *testing.T) {
	if _, err := EvaluateCondition("jam == toast", nil); !errors.Is(err, ErrInvalidExpression) {
		t.Errorf("expected ErrInvalidExpression, got %v", err)
	}
}
