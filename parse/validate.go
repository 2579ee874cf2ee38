package parse

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/komcat/aascript"
)

// kw renders a flow kind the way it is spelled in scripts.
func kw(k aascript.FlowKind) string {
	return strings.ToUpper(k.String())
}

// validateControl walks a program and checks that every IF, FOR and WHILE
// has a matching close and that ELSE only appears inside an IF. Returns
// the first structural diagnostic found, nil for a well-formed program.
func validateControl(program aascript.Program) *Error {
	stack := arraystack.New() // of *aascript.FlowControl openers
	for _, instr := range program {
		fc, ok := instr.(*aascript.FlowControl)
		if !ok {
			continue
		}
		switch fc.Kind {
		case aascript.If, aascript.For, aascript.While:
			stack.Push(fc)
		case aascript.Else:
			top, ok := stack.Peek()
			if !ok || top.(*aascript.FlowControl).Kind != aascript.If {
				return &Error{fc.Line, "ELSE without matching IF"}
			}
		case aascript.EndIf, aascript.EndFor, aascript.EndWhile:
			top, ok := stack.Pop()
			if !ok {
				return &Error{fc.Line, fmt.Sprintf("%s without matching %s", kw(fc.Kind), kw(openerFor(fc.Kind)))}
			}
			opener := top.(*aascript.FlowControl)
			if closerFor(opener.Kind) != fc.Kind {
				return &Error{fc.Line, fmt.Sprintf("%s closes %s opened at line %d",
					kw(fc.Kind), kw(opener.Kind), opener.Line)}
			}
		}
	}
	if top, ok := stack.Peek(); ok {
		opener := top.(*aascript.FlowControl)
		return &Error{opener.Line, fmt.Sprintf("unclosed %s", kw(opener.Kind))}
	}
	return nil
}

func openerFor(k aascript.FlowKind) aascript.FlowKind {
	switch k {
	case aascript.EndIf:
		return aascript.If
	case aascript.EndFor:
		return aascript.For
	case aascript.EndWhile:
		return aascript.While
	}
	return k
}

func closerFor(k aascript.FlowKind) aascript.FlowKind {
	switch k {
	case aascript.If:
		return aascript.EndIf
	case aascript.For:
		return aascript.EndFor
	case aascript.While:
		return aascript.EndWhile
	}
	return k
}
