package machine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/komcat/aascript"
)

// Compile-time checks: every command effect satisfies the Effect interface.
var (
	_ aascript.Effect = (*MoveToNode)(nil)
	_ aascript.Effect = (*MoveToPoint)(nil)
	_ aascript.Effect = (*MoveRelative)(nil)
	_ aascript.Effect = (*SetOutput)(nil)
	_ aascript.Effect = (*ReadInput)(nil)
	_ aascript.Effect = (*ClearLatch)(nil)
	_ aascript.Effect = (*Slide)(nil)
	_ aascript.Effect = (*LaserPower)(nil)
	_ aascript.Effect = (*TECPower)(nil)
	_ aascript.Effect = (*SetLaserCurrent)(nil)
	_ aascript.Effect = (*SetTECTemperature)(nil)
	_ aascript.Effect = (*WaitForTemperature)(nil)
	_ aascript.Effect = (*RunScan)(nil)
	_ aascript.Effect = (*Wait)(nil)
	_ aascript.Effect = (*Prompt)(nil)
	_ aascript.Effect = (*Print)(nil)
)

// SimOps is a machine-operations simulator. Every call is logged and
// succeeds unless failure injection says otherwise. It backs the CLI when
// no hardware is attached, and the package tests.
type SimOps struct {
	mu     sync.Mutex
	calls  []string
	inputs map[string]bool // "device:pin" -> state
	failOn string          // operation name to fail, "" for none
}

// NewSimOps creates a simulator with all inputs reading false.
func NewSimOps() *SimOps {
	return &SimOps{inputs: make(map[string]bool)}
}

// FailOn arms failure injection: the next call of the named operation
// ("MoveDeviceToNode", "SetOutput", …) returns an error.
func (s *SimOps) FailOn(op string) {
	s.mu.Lock()
	s.failOn = op
	s.mu.Unlock()
}

// SetInput seeds the state a ReadInput call will report.
func (s *SimOps) SetInput(device string, pin int, state bool) {
	s.mu.Lock()
	s.inputs[fmt.Sprintf("%s:%d", device, pin)] = state
	s.mu.Unlock()
}

// Calls returns a copy of the recorded call log.
func (s *SimOps) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *SimOps) record(op string, format string, args ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := op + " " + fmt.Sprintf(format, args...)
	s.calls = append(s.calls, entry)
	tracer().Debugf("sim: %s", entry)
	if s.failOn == op {
		s.failOn = ""
		return fmt.Errorf("simulated %s failure", op)
	}
	return nil
}

func (s *SimOps) MoveDeviceToNode(ctx context.Context, device, graph, node string) error {
	return s.record("MoveDeviceToNode", "%s -> %s in %s", device, node, graph)
}

func (s *SimOps) MoveToPointName(ctx context.Context, device, point string) error {
	return s.record("MoveToPointName", "%s -> %s", device, point)
}

func (s *SimOps) MoveRelative(ctx context.Context, device, axis string, distance float64) error {
	return s.record("MoveRelative", "%s %s %g", device, axis, distance)
}

func (s *SimOps) SetOutput(ctx context.Context, device string, pin int, state bool) error {
	return s.record("SetOutput", "%s:%d = %v", device, pin, state)
}

func (s *SimOps) ReadInput(ctx context.Context, device string, pin int) (bool, error) {
	err := s.record("ReadInput", "%s:%d", device, pin)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs[fmt.Sprintf("%s:%d", device, pin)], nil
}

func (s *SimOps) ClearLatch(ctx context.Context, device string, pin int) error {
	return s.record("ClearLatch", "%s:%d", device, pin)
}

func (s *SimOps) ExtendSlide(ctx context.Context, slide string) error {
	return s.record("ExtendSlide", "%s", slide)
}

func (s *SimOps) RetractSlide(ctx context.Context, slide string) error {
	return s.record("RetractSlide", "%s", slide)
}

func (s *SimOps) LaserOn(ctx context.Context, laser string) error {
	return s.record("LaserOn", "%s", laser)
}

func (s *SimOps) LaserOff(ctx context.Context, laser string) error {
	return s.record("LaserOff", "%s", laser)
}

func (s *SimOps) SetLaserCurrent(ctx context.Context, current float64, laser string) error {
	return s.record("SetLaserCurrent", "%g mA %s", current, laser)
}

func (s *SimOps) TECOn(ctx context.Context, laser string) error {
	return s.record("TECOn", "%s", laser)
}

func (s *SimOps) TECOff(ctx context.Context, laser string) error {
	return s.record("TECOff", "%s", laser)
}

func (s *SimOps) SetTECTemperature(ctx context.Context, temperature float64, laser string) error {
	return s.record("SetTECTemperature", "%g C %s", temperature, laser)
}

func (s *SimOps) WaitForTemperature(ctx context.Context, target float64, timeout time.Duration) error {
	return s.record("WaitForTemperature", "%g C", target)
}

func (s *SimOps) PerformScan(ctx context.Context, device, channel string, steps []float64,
	settling time.Duration, axes []string) error {
	return s.record("PerformScan", "%s ch=%s steps=%v", device, channel, steps)
}

func (s *SimOps) LogInfo(message string) {
	s.mu.Lock()
	s.calls = append(s.calls, "LogInfo "+message)
	s.mu.Unlock()
	tracer().Infof("%s", message)
}

var _ Ops = (*SimOps)(nil)

// AutoConfirm answers every prompt immediately.
type AutoConfirm struct {
	Decline bool // answer "no" instead of "yes"
}

// Confirm is part of the Confirmer interface.
func (a AutoConfirm) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return !a.Decline, nil
}

var _ Confirmer = AutoConfirm{}
