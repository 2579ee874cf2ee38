package expr

import "strings"

// comparators, in scan priority. Two-byte operators come before their
// single-byte prefixes so that "<=" is never misread as "<".
var comparators = []struct {
	op string
	fn func(a, b float64) bool
}{
	{"<=", func(a, b float64) bool { return a <= b }},
	{">=", func(a, b float64) bool { return a >= b }},
	{"==", func(a, b float64) bool { return a == b }},
	{"!=", func(a, b float64) bool { return a != b }},
	{"<", func(a, b float64) bool { return a < b }},
	{">", func(a, b float64) bool { return a > b }},
}

// EvaluateCondition computes the truth value of a condition string. The
// first comparison operator found (in comparator priority) splits the
// condition into two expressions; without one, the whole string evaluates
// as an expression and non-zero is true.
func EvaluateCondition(cond string, vars Resolver) (bool, error) {
	c := strings.TrimSpace(cond)
	for _, cmp := range comparators {
		i := strings.Index(c, cmp.op)
		if i < 0 {
			continue
		}
		left, err := Evaluate(c[:i], vars)
		if err != nil {
			return false, err
		}
		right, err := Evaluate(c[i+len(cmp.op):], vars)
		if err != nil {
			return false, err
		}
		return cmp.fn(left, right), nil
	}
	v, err := Evaluate(c, vars)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
