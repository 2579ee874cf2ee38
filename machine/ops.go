/*
Package machine is the hardware boundary of the script engine.

Script commands compile into opaque effects. Every effect executes against
the Ops interface, which mirrors the machine-operations surface of the
surrounding application: motion over a motion graph, digital I/O, pneumatic
slides, laser/TEC control, scanning, and waits. The engine treats effects as
synchronous and opaque; a non-nil error halts the run.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/
package machine

import (
	"context"
	"time"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'aascript.machine'.
func tracer() tracing.Trace {
	return tracing.Select("aascript.machine")
}

// Ops is the set of machine operations scripts can reach. Implementations
// talk to device SDKs; all calls are synchronous and must respect ctx
// cancellation where the underlying operation allows it.
type Ops interface {
	// Motion
	MoveDeviceToNode(ctx context.Context, device, graph, node string) error
	MoveToPointName(ctx context.Context, device, point string) error
	MoveRelative(ctx context.Context, device, axis string, distance float64) error

	// Digital I/O
	SetOutput(ctx context.Context, device string, pin int, state bool) error
	ReadInput(ctx context.Context, device string, pin int) (bool, error)
	ClearLatch(ctx context.Context, device string, pin int) error

	// Pneumatics
	ExtendSlide(ctx context.Context, slide string) error
	RetractSlide(ctx context.Context, slide string) error

	// Laser / TEC
	LaserOn(ctx context.Context, laser string) error
	LaserOff(ctx context.Context, laser string) error
	SetLaserCurrent(ctx context.Context, current float64, laser string) error
	TECOn(ctx context.Context, laser string) error
	TECOff(ctx context.Context, laser string) error
	SetTECTemperature(ctx context.Context, temperature float64, laser string) error
	WaitForTemperature(ctx context.Context, target float64, timeout time.Duration) error

	// Scanning
	PerformScan(ctx context.Context, device, channel string, steps []float64,
		settling time.Duration, axes []string) error

	// Operator-visible output
	LogInfo(message string)
}

// Confirmer resolves an operator prompt. Confirm blocks until the operator
// answers or ctx is cancelled; false means the operator declined.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// DefaultScanAxes is the axis order used when RUN_SCAN does not name any.
var DefaultScanAxes = []string{"Z", "X", "Y"}
