/*
Package aasrun/main provides an interactive command line tool for
automation scripts. Scripts are loaded from files or from a YAML slot
library, executed against a simulated machine, and controlled with
pause/resume/stop while they run. aasrun serves as a sandbox for writing
and debugging scripts without a machine attached.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/

package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'aascript.runner'
func tracer() tracing.Trace {
	return tracing.Select("aascript.runner")
}
