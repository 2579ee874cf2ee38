/*
Package expr evaluates arithmetic expressions and boolean conditions over
script variables.

Expressions are plain strings. Every `$identifier` occurrence is substituted
with its current variable value (0 if unknown) before arithmetic evaluation.
Evaluation splits recursively at the lowest-precedence top-level operator;
parenthesized groups are opaque during the split. The evaluator is stateless
apart from variable lookups and has no side effects.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Resolver looks up the current value of a script variable. Names include
// the '$' sigil. Implementations must not mutate state during Lookup.
type Resolver interface {
	Lookup(name string) (float64, bool)
}

// ErrInvalidExpression flags malformed expression input.
var ErrInvalidExpression = errors.New("invalid expression")

// ErrDivisionByZero flags a division with a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// Evaluate computes the value of an expression string, substituting script
// variables through vars first. A nil vars resolves every variable to 0.
func Evaluate(input string, vars Resolver) (float64, error) {
	return eval(Substitute(input, vars))
}

// Substitute replaces every $identifier occurrence in input with the
// decimal rendering of its current value. Unknown variables substitute as 0.
// A '$' not followed by an identifier character is copied verbatim.
func Substitute(input string, vars Resolver) string {
	var b strings.Builder
	for i := 0; i < len(input); {
		if input[i] != '$' {
			b.WriteByte(input[i])
			i++
			continue
		}
		j := i + 1
		for j < len(input) && isIdentChar(input[j]) {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			i++
			continue
		}
		var v float64
		if vars != nil {
			v, _ = vars.Lookup(input[i:j])
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		i = j
	}
	return b.String()
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// eval evaluates a fully substituted expression. Lowest precedence first:
// split at a top-level '+'/'-', then at '*'/'/', then parse the remainder
// as a literal (stripping one level of parentheses if present).
func eval(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}
	if i, op := splitPoint(s, '+', '-'); i >= 0 {
		left, err := eval(s[:i])
		if err != nil {
			return 0, err
		}
		right, err := eval(s[i+1:])
		if err != nil {
			return 0, err
		}
		if op == '+' {
			return left + right, nil
		}
		return left - right, nil
	}
	if i, op := splitPoint(s, '*', '/'); i >= 0 {
		left, err := eval(s[:i])
		if err != nil {
			return 0, err
		}
		right, err := eval(s[i+1:])
		if err != nil {
			return 0, err
		}
		if op == '*' {
			return left * right, nil
		}
		if right == 0 {
			return 0, fmt.Errorf("%w: %q", ErrDivisionByZero, s)
		}
		return left / right, nil
	}
	if strings.HasPrefix(s, "(") && closesAtEnd(s) {
		return eval(s[1 : len(s)-1])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidExpression, s)
	}
	return v, nil
}

// splitPoint returns the index and operator byte to split s at, considering
// the last top-level occurrence of a and of b. If both occur, the one
// farther to the right wins; splitting at the rightmost operator keeps
// same-precedence chains left-associative. Returns -1 if neither occurs.
func splitPoint(s string, a, b byte) (int, byte) {
	ia := indexTopLevel(s, a)
	ib := indexTopLevel(s, b)
	switch {
	case ia < 0 && ib < 0:
		return -1, 0
	case ib < 0:
		return ia, a
	case ia < 0:
		return ib, b
	case ia > ib:
		return ia, a
	default:
		return ib, b
	}
}

// indexTopLevel finds the last occurrence of op outside parentheses that
// acts as a binary operator. An occurrence at the start of the string, or
// directly after another operator or an opening parenthesis, is a sign
// prefix and does not qualify.
func indexTopLevel(s string, op byte) int {
	depth := 0
	last := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case op:
			if depth == 0 && isBinaryAt(s, i) {
				last = i
			}
		}
	}
	return last
}

func isBinaryAt(s string, i int) bool {
	j := i - 1
	for j >= 0 && (s[j] == ' ' || s[j] == '\t') {
		j--
	}
	if j < 0 {
		return false
	}
	switch s[j] {
	case '+', '-', '*', '/', '(':
		return false
	}
	return true
}

// closesAtEnd reports whether the parenthesis opening s closes exactly at
// the last byte.
func closesAtEnd(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}
