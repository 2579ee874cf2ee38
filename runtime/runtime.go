/*
Package runtime implements supporting data types for the script interpreter
runtime: a variable table and a stack of execution frames.

Variable Table

Script variables are flat: one namespace per run, names carry a '$' sigil,
values are float64. The table is created fresh for every run and is only
mutated by the worker executing the run.

Execution Frames

The interpreter walks a flat instruction list with a program counter. Loop
bodies are executed by pushing an execution frame per active loop onto a
frame stack, which turns nested-loop recursion into iteration with bounded
stack depth.

----------------------------------------------------------------------

BSD License

Copyright © 2025 komcat

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software or the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package runtime

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'aascript.runtime'.
func tracer() tracing.Trace {
	return tracing.Select("aascript.runtime")
}

// Env is a runtime environment for one script run: the variable table plus
// the frame stack the interpreter drives.
type Env struct {
	Vars   *VarTable   // script variables, one flat namespace
	Frames *FrameStack // live execution frames
	UData  interface{} // extension point
}

// NewEnv constructs a runtime environment, initialized and empty.
func NewEnv() *Env {
	env := &Env{}
	env.Vars = NewVarTable()
	env.Frames = new(FrameStack)
	return env
}
