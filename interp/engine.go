/*
Package interp drives the execution of parsed scripts.

An Engine owns one script at a time. Execution runs on a background
goroutine and is controlled with Start, Pause, Resume and Stop. Control
requests take effect between instructions; an effect already in flight is
allowed to finish. Clients observe execution through state and log
callbacks and through snapshot accessors, all safe for concurrent use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/
package interp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/schuko/tracing"

	"github.com/komcat/aascript"
	"github.com/komcat/aascript/parse"
	"github.com/komcat/aascript/runtime"
)

// tracer traces with key 'aascript.interp'.
func tracer() tracing.Trace {
	return tracing.Select("aascript.interp")
}

// ExecutionState is the lifecycle state of an Engine.
type ExecutionState int8

const (
	Idle ExecutionState = iota
	Running
	Paused
	Completed
	Error
)

func (s ExecutionState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Completed:
		return "Completed"
	case Error:
		return "Error"
	}
	return fmt.Sprintf("ExecutionState(%d)", s)
}

// Engine executes a compiled program. The zero value is not usable; create
// engines with NewEngine.
type Engine struct {
	mu   sync.Mutex
	cond *sync.Cond // signalled on pause/stop requests

	program aascript.Program
	loaded  bool
	env     *runtime.Env
	state   ExecutionState
	pc      int // instruction most recently fetched, for progress reporting

	gen      int // run generation, guards against stale workers
	pauseReq bool
	stopReq  bool
	done     chan struct{} // closed when the current worker exits

	errs    []string
	logBuf  *arraylist.List // of string
	onState func(ExecutionState)
	onLog   func(string)
}

// NewEngine creates an idle engine with no script loaded.
func NewEngine() *Engine {
	e := &Engine{
		state:  Idle,
		env:    runtime.NewEnv(),
		logBuf: arraylist.New(),
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// OnStateChange registers a callback invoked on every state transition.
// The callback runs on the engine's worker goroutine and must not call
// back into the engine.
func (e *Engine) OnStateChange(fn func(ExecutionState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onState = fn
}

// OnLog registers a callback invoked for every execution-log entry, under
// the same constraints as OnStateChange.
func (e *Engine) OnLog(fn func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onLog = fn
}

// Load installs a parsed script. Loading resets variables, the execution
// log and accumulated errors. Loading while a script is running or paused
// is refused.
func (e *Engine) Load(result *parse.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Running || e.state == Paused {
		return fmt.Errorf("cannot load while a script is executing")
	}
	e.program = result.Program
	e.loaded = true
	e.resetLocked()
	e.setStateLocked(Idle)
	return nil
}

func (e *Engine) resetLocked() {
	e.env = runtime.NewEnv()
	e.errs = nil
	e.logBuf.Clear()
	e.pc = 0
}

// Start begins executing the loaded script on a background goroutine. The
// context is handed to every effect; cancelling it aborts the instruction
// in flight, whereas Stop lets it finish.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return fmt.Errorf("no script loaded")
	}
	if e.state == Running || e.state == Paused {
		return fmt.Errorf("script is already executing")
	}
	e.resetLocked()
	e.env.Frames.PushNewFrame("main", 0, len(e.program), len(e.program))
	e.pauseReq = false
	e.stopReq = false
	e.gen++
	e.done = make(chan struct{})
	e.setStateLocked(Running)
	go e.run(ctx, e.gen, e.done)
	return nil
}

// Pause requests suspension. The worker performs the transition to
// Paused once the instruction in flight has completed; until then the
// engine keeps reporting Running. Pausing an engine that is not running
// is a no-op.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Running {
		e.pauseReq = true
	}
}

// Resume continues a paused script. Resuming before the worker reached
// its suspension point cancels the pending pause request.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseReq = false
	if e.state == Paused {
		e.setStateLocked(Running)
		e.cond.Broadcast()
	}
}

// Stop requests cooperative termination and waits up to timeout for the
// worker to exit. The instruction in flight is not interrupted. If the
// worker does not yield in time, the engine is forced back to Idle and the
// stale worker is fenced off; its eventual writes are discarded.
func (e *Engine) Stop(timeout time.Duration) error {
	e.mu.Lock()
	if e.state != Running && e.state != Paused {
		e.mu.Unlock()
		return nil
	}
	e.stopReq = true
	done := e.done
	e.cond.Broadcast()
	e.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		e.mu.Lock()
		e.gen++
		e.setStateLocked(Idle)
		e.mu.Unlock()
		return fmt.Errorf("script did not stop within %v", timeout)
	}
}

// State returns the current execution state.
func (e *Engine) State() ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Variables returns a snapshot of all script variables.
func (e *Engine) Variables() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.env.Vars.Snapshot()
}

// Errors returns the diagnostics accumulated by the current or last run.
func (e *Engine) Errors() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.errs))
	copy(out, e.errs)
	return out
}

// Log returns the execution log of the current or last run.
func (e *Engine) Log() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, e.logBuf.Size())
	e.logBuf.Each(func(_ int, v interface{}) {
		out = append(out, v.(string))
	})
	return out
}

// Progress reports the 1-based position of the instruction most recently
// fetched and the total instruction count. Loops revisit positions, so the
// pair is a location, not a percentage.
func (e *Engine) Progress() (line, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pc + 1, len(e.program)
}

func (e *Engine) setStateLocked(s ExecutionState) {
	if s == e.state {
		return
	}
	tracer().Debugf("state %s -> %s", e.state, s)
	e.state = s
	if e.onState != nil {
		e.onState(s)
	}
}

func (e *Engine) logLocked(msg string) {
	e.logBuf.Add(msg)
	if e.onLog != nil {
		e.onLog(msg)
	}
}

func (e *Engine) failLocked(pc int, err error) {
	msg := fmt.Sprintf("Line %d: %v", pc+1, err)
	tracer().Errorf("%s", msg)
	e.errs = append(e.errs, msg)
	e.logLocked(msg)
	e.setStateLocked(Error)
}

// run is the worker loop. It holds the lock while stepping through
// variables and frames and releases it around effect execution, so that
// control requests and snapshots stay responsive during long effects.
func (e *Engine) run(ctx context.Context, gen int, done chan struct{}) {
	defer close(done)
	for {
		e.mu.Lock()
		if e.pauseReq && gen == e.gen {
			e.pauseReq = false
			if e.state == Running && !e.stopReq {
				e.setStateLocked(Paused)
			}
		}
		for e.state == Paused && !e.stopReq && gen == e.gen {
			e.cond.Wait()
		}
		if gen != e.gen {
			e.mu.Unlock()
			return
		}
		if e.stopReq {
			e.setStateLocked(Idle)
			e.mu.Unlock()
			return
		}
		frame := e.env.Frames.Current()
		if frame.Done() {
			running, err := e.frameEndedLocked(frame)
			if err != nil {
				e.failLocked(frame.Start-1, err)
				e.mu.Unlock()
				return
			}
			if !running {
				e.setStateLocked(Completed)
				e.mu.Unlock()
				return
			}
			e.mu.Unlock()
			continue
		}
		pc := frame.PC
		e.pc = pc
		instr := e.program[pc]

		if cmd, ok := instr.(*aascript.Command); ok {
			e.logLocked(cmd.Description())
			e.mu.Unlock()
			err := cmd.Effect.Execute(ctx)
			e.mu.Lock()
			if gen != e.gen {
				e.mu.Unlock()
				return
			}
			if err != nil {
				e.failLocked(pc, err)
				e.mu.Unlock()
				return
			}
			frame.PC = pc + 1
			e.mu.Unlock()
			continue
		}

		if err := e.dispatchLocked(pc, instr); err != nil {
			e.failLocked(pc, err)
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()
	}
}
