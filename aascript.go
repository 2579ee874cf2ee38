package aascript

import (
	"context"
	"fmt"
)

// --- Instructions ----------------------------------------------------------

// An Instruction is one parsed unit of a script program: an effect-producing
// command, a flow-control marker, a variable assignment, or a procedure call.
// Instructions are immutable once parsed.
type Instruction interface {
	Description() string
}

// FlowKind is a category type for flow-control markers.
type FlowKind int8

// Flow-control marker kinds. Openers (If, For, While) are closed by their
// matching end markers at the same nesting depth.
const (
	If FlowKind = iota
	Else
	EndIf
	For
	EndFor
	While
	EndWhile
)

func (k FlowKind) String() string {
	switch k {
	case If:
		return "If"
	case Else:
		return "Else"
	case EndIf:
		return "EndIf"
	case For:
		return "For"
	case EndFor:
		return "EndFor"
	case While:
		return "While"
	case EndWhile:
		return "EndWhile"
	}
	return "Unknown"
}

// Command is an opaque unit of work, delegated to an Effect.
type Command struct {
	Name   string   // normalized command keyword, e.g. "MOVE"
	Args   []string // raw argument tokens as they appeared in the script
	Effect Effect
}

// Description names the wrapped effect.
func (c *Command) Description() string {
	return c.Effect.Description()
}

// FlowControl is a flow-control marker. Condition is an uninterpreted string:
// a boolean expression for If/While, a packed "var|start|end|step" descriptor
// for For, empty for the remaining kinds.
type FlowControl struct {
	Kind      FlowKind
	Condition string
	Line      int // 1-based script line the marker came from
}

func (f *FlowControl) Description() string {
	switch f.Kind {
	case If, For, While:
		return f.Kind.String() + " " + f.Condition
	default:
		return f.Kind.String()
	}
}

// Assignment sets a variable from an expression.
type Assignment struct {
	Name       string // variable name including the '$' sigil
	Expression string
}

func (a *Assignment) Description() string {
	return "Set " + a.Name + " = " + a.Expression
}

// ProcedureCall references a named procedure body extracted by the
// preprocessor.
type ProcedureCall struct {
	Name string
}

func (p *ProcedureCall) Description() string {
	return "Call procedure: " + p.Name
}

// --- Effects ---------------------------------------------------------------

// Effect is an opaque, externally supplied action a Command performs.
// Execution is synchronous; a non-nil error halts the run. Implementations
// must not retain ctx beyond the call.
type Effect interface {
	Execute(ctx context.Context) error
	Description() string
}

// --- Programs --------------------------------------------------------------

// A Program is an ordered sequence of instructions; insertion order is
// execution order. Programs are immutable after parsing. The interpreter's
// program counter is the only execution-time index into it.
type Program []Instruction

// closerFor maps opening markers to their closing counterparts.
func closerFor(open FlowKind) FlowKind {
	switch open {
	case If:
		return EndIf
	case For:
		return EndFor
	case While:
		return EndWhile
	}
	return open
}

// FindMatchingEnd scans forward from the opener at index start and returns
// the index of its matching end marker, counting nested openers of the same
// kind. The scan is linear and never cached; target scripts are tens to low
// hundreds of instructions.
func (p Program) FindMatchingEnd(start int, open FlowKind) (int, error) {
	end := closerFor(open)
	depth := 1
	for i := start + 1; i < len(p); i++ {
		f, ok := p[i].(*FlowControl)
		if !ok {
			continue
		}
		switch f.Kind {
		case open:
			depth++
		case end:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("no matching %s for %s at instruction %d", end, open, start)
}

// FindElseOrEndIf scans forward from the If at index start and returns the
// index of the nearest same-depth Else or EndIf marker. A nested If opens a
// sub-scope whose Else markers are skipped.
func (p Program) FindElseOrEndIf(start int) (int, error) {
	depth := 1
	for i := start + 1; i < len(p); i++ {
		f, ok := p[i].(*FlowControl)
		if !ok {
			continue
		}
		switch f.Kind {
		case If:
			depth++
		case Else:
			if depth == 1 {
				return i, nil
			}
		case EndIf:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("no matching Else/EndIf for If at instruction %d", start)
}
