package parse

import (
	"fmt"
	"strings"
)

// Error is a line-attributed parse diagnostic. Lines are 1-based and counted
// over the surviving script lines (procedure definitions removed, blank and
// comment lines kept).
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Message)
}

// ErrorList accumulates diagnostics. Parsing continues after a per-line
// error to collect as many diagnostics as possible.
type ErrorList []Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Strings renders every diagnostic, one per entry.
func (l ErrorList) Strings() []string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return msgs
}
