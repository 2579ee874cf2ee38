/*
Package aascript is a parsing and execution engine for automation scripts.

aascript compiles operator-written `.aas` script text into a flat, ordered
instruction list and interprets it on a worker goroutine, with conditionals,
counted and conditional loops, variables, arithmetic and boolean expressions,
and a pausable/cancellable execution-control protocol. Package structure is
as follows:

■ scan: Package scan tokenizes script lines (whitespace-separated tokens,
double-quoted strings kept whole).

■ expr: Package expr evaluates arithmetic expressions and boolean conditions
over the script's variables.

■ runtime: Package runtime provides supporting data types for the interpreter
runtime: the variable table and the execution frame stack.

■ parse: Package parse turns script text into a Program: procedure extraction,
per-command builders, control-structure validation.

■ machine: Package machine is the hardware boundary. Script commands become
opaque effects executed against the Ops interface; a simulator ships with
the package.

■ interp: Package interp owns a run: the execution state machine, the worker
goroutine, pause/resume/stop, and state/log callbacks.

■ runner: Package runner manages a library of named script slots with
persisted configuration and records every run.

The base package contains the data types which are used throughout all the
other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/
package aascript
