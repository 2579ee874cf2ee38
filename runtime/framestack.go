package runtime

import (
	"fmt"
)

// This module implements a stack of execution frames.
// Execution frames are used by the interpreter to track the live extent of
// program execution: the whole program, and one frame per active loop pass.

// Frame is an execution frame, representing a half-open instruction range
// [Start, End) the program counter currently walks.
type Frame struct {
	Name   string
	PC     int // program counter, an index into the program
	Start  int // first instruction of the frame's body
	End    int // index one past the last body instruction
	After  int // parent-frame pc to continue at once this frame is done
	Parent *Frame
	UData  interface{} // loop bookkeeping owned by the interpreter
}

// NewFrame creates a new execution frame covering [start, end).
func NewFrame(nm string, start, end, after int) *Frame {
	return &Frame{
		Name:  nm,
		PC:    start,
		Start: start,
		End:   end,
		After: after,
	}
}

func (f *Frame) String() string {
	return fmt.Sprintf("<frame %s pc=%d [%d,%d)>", f.Name, f.PC, f.Start, f.End)
}

// IsRoot is a predicate: Is this a root frame?
func (f *Frame) IsRoot() bool {
	return f.Parent == nil
}

// Done is a predicate: Has the program counter left the frame's body?
func (f *Frame) Done() bool {
	return f.PC >= f.End
}

// ---------------------------------------------------------------------------

// FrameStack is a stack of execution frames.
type FrameStack struct {
	frameBase *Frame
	frameTOS  *Frame
}

// Current gets the current execution frame of a stack (TOS).
func (fst *FrameStack) Current() *Frame {
	if fst.frameTOS == nil {
		panic("attempt to access execution frame from empty stack")
	}
	return fst.frameTOS
}

// Root gets the outermost frame, covering the whole program.
func (fst *FrameStack) Root() *Frame {
	if fst.frameBase == nil {
		panic("attempt to access root frame from empty stack")
	}
	return fst.frameBase
}

// IsEmpty is a predicate: Does the stack hold no frames?
func (fst *FrameStack) IsEmpty() bool {
	return fst.frameTOS == nil
}

// PushNewFrame pushes a frame covering [start, end) onto the stack.
// The frame links back to the previous TOS.
func (fst *FrameStack) PushNewFrame(nm string, start, end, after int) *Frame {
	f := NewFrame(nm, start, end, after)
	f.Parent = fst.frameTOS
	if fst.frameTOS == nil {
		fst.frameBase = f
	}
	fst.frameTOS = f
	tracer().P("frame", f.Name).Debugf("pushing new execution frame")
	return f
}

// PopFrame pops the top-most (recent) frame.
func (fst *FrameStack) PopFrame() *Frame {
	if fst.frameTOS == nil {
		panic("attempt to pop execution frame from empty stack")
	}
	f := fst.frameTOS
	fst.frameTOS = f.Parent
	if fst.frameTOS == nil {
		fst.frameBase = nil
	}
	return f
}

// Depth counts the frames on the stack.
func (fst *FrameStack) Depth() int {
	d := 0
	for f := fst.frameTOS; f != nil; f = f.Parent {
		d++
	}
	return d
}
