package interp

import (
	"fmt"
	"strings"

	"github.com/komcat/aascript"
	"github.com/komcat/aascript/expr"
	"github.com/komcat/aascript/runtime"
)

// forLoop is the bookkeeping attached to a FOR frame.
type forLoop struct {
	name string
	end  float64
	step float64
}

// whileLoop is the bookkeeping attached to a WHILE frame.
type whileLoop struct {
	cond string
}

// dispatchLocked executes one non-command instruction: it updates
// variables and frames and advances the current frame's program counter.
// Caller holds the engine lock.
func (e *Engine) dispatchLocked(pc int, instr aascript.Instruction) error {
	frame := e.env.Frames.Current()
	switch it := instr.(type) {
	case *aascript.Assignment:
		val, err := expr.Evaluate(it.Expression, e.env.Vars)
		if err != nil {
			return fmt.Errorf("cannot evaluate %q: %w", it.Expression, err)
		}
		e.env.Vars.Set(it.Name, val)
		e.logLocked(it.Description())
		frame.PC = pc + 1
		return nil
	case *aascript.ProcedureCall:
		e.logLocked(it.Description())
		frame.PC = pc + 1
		return nil
	case *aascript.FlowControl:
		return e.dispatchFlowLocked(pc, it)
	}
	return fmt.Errorf("cannot execute %T", instr)
}

func (e *Engine) dispatchFlowLocked(pc int, fc *aascript.FlowControl) error {
	frame := e.env.Frames.Current()
	switch fc.Kind {
	case aascript.If:
		taken, err := expr.EvaluateCondition(fc.Condition, e.env.Vars)
		if err != nil {
			return err
		}
		e.logLocked(fmt.Sprintf("If %s -> %v", fc.Condition, taken))
		if taken {
			frame.PC = pc + 1
			return nil
		}
		idx, err := e.program.FindElseOrEndIf(pc)
		if err != nil {
			return err
		}
		frame.PC = idx + 1
		return nil
	case aascript.Else:
		// reached only after the true branch; skip over the false one
		end, err := e.program.FindMatchingEnd(pc, aascript.If)
		if err != nil {
			return err
		}
		frame.PC = end + 1
		return nil
	case aascript.For:
		return e.beginForLocked(pc, fc)
	case aascript.While:
		return e.beginWhileLocked(pc, fc)
	case aascript.EndIf, aascript.EndFor, aascript.EndWhile:
		frame.PC = pc + 1
		return nil
	}
	return fmt.Errorf("unexpected flow-control marker %s", fc.Kind)
}

// beginForLocked unpacks a "var|start|end|step" loop descriptor, assigns
// the loop variable and either enters the body frame or jumps past it.
func (e *Engine) beginForLocked(pc int, fc *aascript.FlowControl) error {
	parts := strings.Split(fc.Condition, "|")
	if len(parts) != 4 {
		return fmt.Errorf("malformed FOR descriptor: %s", fc.Condition)
	}
	name := parts[0]
	start, err := expr.Evaluate(parts[1], e.env.Vars)
	if err != nil {
		return fmt.Errorf("cannot evaluate FOR start %q: %w", parts[1], err)
	}
	end, err := expr.Evaluate(parts[2], e.env.Vars)
	if err != nil {
		return fmt.Errorf("cannot evaluate FOR end %q: %w", parts[2], err)
	}
	step, err := expr.Evaluate(parts[3], e.env.Vars)
	if err != nil {
		return fmt.Errorf("cannot evaluate FOR step %q: %w", parts[3], err)
	}
	if step == 0 {
		return fmt.Errorf("FOR step must not be zero")
	}
	endIdx, err := e.program.FindMatchingEnd(pc, aascript.For)
	if err != nil {
		return err
	}
	e.env.Vars.Set(name, start)
	e.logLocked(fmt.Sprintf("For %s = %g to %g step %g", name, start, end, step))
	if loopContinues(start, end, step) {
		f := e.env.Frames.PushNewFrame("for "+name, pc+1, endIdx, endIdx+1)
		f.UData = &forLoop{name: name, end: end, step: step}
		return nil
	}
	e.env.Frames.Current().PC = endIdx + 1
	return nil
}

func (e *Engine) beginWhileLocked(pc int, fc *aascript.FlowControl) error {
	endIdx, err := e.program.FindMatchingEnd(pc, aascript.While)
	if err != nil {
		return err
	}
	taken, err := expr.EvaluateCondition(fc.Condition, e.env.Vars)
	if err != nil {
		return err
	}
	e.logLocked(fmt.Sprintf("While %s -> %v", fc.Condition, taken))
	if taken {
		f := e.env.Frames.PushNewFrame("while", pc+1, endIdx, endIdx+1)
		f.UData = &whileLoop{cond: fc.Condition}
		return nil
	}
	e.env.Frames.Current().PC = endIdx + 1
	return nil
}

// frameEndedLocked handles a frame whose program counter has left its
// body: loop frames either iterate again or pop back to their parent; the
// main frame reports completion. Returns false when the program is done.
func (e *Engine) frameEndedLocked(frame *runtime.Frame) (bool, error) {
	switch loop := frame.UData.(type) {
	case *forLoop:
		v, _ := e.env.Vars.Lookup(loop.name)
		v += loop.step
		e.env.Vars.Set(loop.name, v)
		if loopContinues(v, loop.end, loop.step) {
			frame.PC = frame.Start
			return true, nil
		}
		e.popLoopLocked(frame)
		return true, nil
	case *whileLoop:
		taken, err := expr.EvaluateCondition(loop.cond, e.env.Vars)
		if err != nil {
			return true, err
		}
		e.logLocked(fmt.Sprintf("While %s -> %v", loop.cond, taken))
		if taken {
			frame.PC = frame.Start
			return true, nil
		}
		e.popLoopLocked(frame)
		return true, nil
	}
	return false, nil // main frame
}

func (e *Engine) popLoopLocked(frame *runtime.Frame) {
	e.env.Frames.PopFrame()
	e.env.Frames.Current().PC = frame.After
}

// loopContinues is the FOR continuation test: inclusive bounds, direction
// given by the sign of step.
func loopContinues(v, end, step float64) bool {
	return step > 0 && v <= end || step < 0 && v >= end
}
