package machine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Concrete effect types, one per effect-producing script command. Each type
// closes over its Ops at construction; Execute is synchronous.

// MoveToNode moves a device to a node of a motion graph.
type MoveToNode struct {
	ops    Ops
	Device string
	Graph  string
	Node   string
}

func NewMoveToNode(ops Ops, device, graph, node string) *MoveToNode {
	return &MoveToNode{ops: ops, Device: device, Graph: graph, Node: node}
}

func (e *MoveToNode) Execute(ctx context.Context) error {
	return e.ops.MoveDeviceToNode(ctx, e.Device, e.Graph, e.Node)
}

func (e *MoveToNode) Description() string {
	return fmt.Sprintf("Move %s to %s in %s", e.Device, e.Node, e.Graph)
}

// MoveToPoint moves a device to a named taught position.
type MoveToPoint struct {
	ops    Ops
	Device string
	Point  string
}

func NewMoveToPoint(ops Ops, device, point string) *MoveToPoint {
	return &MoveToPoint{ops: ops, Device: device, Point: point}
}

func (e *MoveToPoint) Execute(ctx context.Context) error {
	return e.ops.MoveToPointName(ctx, e.Device, e.Point)
}

func (e *MoveToPoint) Description() string {
	return fmt.Sprintf("Move %s to point %s", e.Device, e.Point)
}

// MoveRelative jogs one axis of a device by a distance.
type MoveRelative struct {
	ops      Ops
	Device   string
	Axis     string
	Distance float64
}

func NewMoveRelative(ops Ops, device, axis string, distance float64) *MoveRelative {
	return &MoveRelative{ops: ops, Device: device, Axis: axis, Distance: distance}
}

func (e *MoveRelative) Execute(ctx context.Context) error {
	return e.ops.MoveRelative(ctx, e.Device, e.Axis, e.Distance)
}

func (e *MoveRelative) Description() string {
	return fmt.Sprintf("Move %s relative %s %g", e.Device, e.Axis, e.Distance)
}

// SetOutput drives a digital output pin, then settles for a delay.
type SetOutput struct {
	ops    Ops
	Device string
	Pin    int
	State  bool
	Delay  time.Duration
}

func NewSetOutput(ops Ops, device string, pin int, state bool, delay time.Duration) *SetOutput {
	return &SetOutput{ops: ops, Device: device, Pin: pin, State: state, Delay: delay}
}

func (e *SetOutput) Execute(ctx context.Context) error {
	if err := e.ops.SetOutput(ctx, e.Device, e.Pin, e.State); err != nil {
		return err
	}
	return sleep(ctx, e.Delay)
}

func (e *SetOutput) Description() string {
	state := "OFF"
	if e.State {
		state = "ON"
	}
	return fmt.Sprintf("Set output %d on %s %s", e.Pin, e.Device, state)
}

// ReadInput reads a digital input pin and reports its state.
type ReadInput struct {
	ops    Ops
	Device string
	Pin    int
}

func NewReadInput(ops Ops, device string, pin int) *ReadInput {
	return &ReadInput{ops: ops, Device: device, Pin: pin}
}

func (e *ReadInput) Execute(ctx context.Context) error {
	state, err := e.ops.ReadInput(ctx, e.Device, e.Pin)
	if err != nil {
		return err
	}
	e.ops.LogInfo(fmt.Sprintf("Input %d on %s reads %v", e.Pin, e.Device, state))
	return nil
}

func (e *ReadInput) Description() string {
	return fmt.Sprintf("Read input %d on %s", e.Pin, e.Device)
}

// ClearLatch clears a latched input pin.
type ClearLatch struct {
	ops    Ops
	Device string
	Pin    int
}

func NewClearLatch(ops Ops, device string, pin int) *ClearLatch {
	return &ClearLatch{ops: ops, Device: device, Pin: pin}
}

func (e *ClearLatch) Execute(ctx context.Context) error {
	return e.ops.ClearLatch(ctx, e.Device, e.Pin)
}

func (e *ClearLatch) Description() string {
	return fmt.Sprintf("Clear latch %d on %s", e.Pin, e.Device)
}

// Slide extends or retracts a pneumatic slide.
type Slide struct {
	ops    Ops
	Name   string
	Extend bool
}

func NewExtendSlide(ops Ops, name string) *Slide {
	return &Slide{ops: ops, Name: name, Extend: true}
}

func NewRetractSlide(ops Ops, name string) *Slide {
	return &Slide{ops: ops, Name: name}
}

func (e *Slide) Execute(ctx context.Context) error {
	if e.Extend {
		return e.ops.ExtendSlide(ctx, e.Name)
	}
	return e.ops.RetractSlide(ctx, e.Name)
}

func (e *Slide) Description() string {
	if e.Extend {
		return "Extend slide " + e.Name
	}
	return "Retract slide " + e.Name
}

// LaserPower switches a laser source on or off.
type LaserPower struct {
	ops   Ops
	Laser string
	On    bool
}

func NewLaserOn(ops Ops, laser string) *LaserPower {
	return &LaserPower{ops: ops, Laser: laser, On: true}
}

func NewLaserOff(ops Ops, laser string) *LaserPower {
	return &LaserPower{ops: ops, Laser: laser}
}

func (e *LaserPower) Execute(ctx context.Context) error {
	if e.On {
		return e.ops.LaserOn(ctx, e.Laser)
	}
	return e.ops.LaserOff(ctx, e.Laser)
}

func (e *LaserPower) Description() string {
	name := e.Laser
	if name == "" {
		name = "default"
	}
	if e.On {
		return "Laser on (" + name + ")"
	}
	return "Laser off (" + name + ")"
}

// TECPower switches a laser's TEC on or off.
type TECPower struct {
	ops   Ops
	Laser string
	On    bool
}

func NewTECOn(ops Ops, laser string) *TECPower {
	return &TECPower{ops: ops, Laser: laser, On: true}
}

func NewTECOff(ops Ops, laser string) *TECPower {
	return &TECPower{ops: ops, Laser: laser}
}

func (e *TECPower) Execute(ctx context.Context) error {
	if e.On {
		return e.ops.TECOn(ctx, e.Laser)
	}
	return e.ops.TECOff(ctx, e.Laser)
}

func (e *TECPower) Description() string {
	name := e.Laser
	if name == "" {
		name = "default"
	}
	if e.On {
		return "TEC on (" + name + ")"
	}
	return "TEC off (" + name + ")"
}

// SetLaserCurrent programs a laser drive current in mA.
type SetLaserCurrent struct {
	ops     Ops
	Current float64
	Laser   string
}

func NewSetLaserCurrent(ops Ops, current float64, laser string) *SetLaserCurrent {
	return &SetLaserCurrent{ops: ops, Current: current, Laser: laser}
}

func (e *SetLaserCurrent) Execute(ctx context.Context) error {
	return e.ops.SetLaserCurrent(ctx, e.Current, e.Laser)
}

func (e *SetLaserCurrent) Description() string {
	return fmt.Sprintf("Set laser current %g mA", e.Current)
}

// SetTECTemperature programs a TEC setpoint in °C.
type SetTECTemperature struct {
	ops         Ops
	Temperature float64
	Laser       string
}

func NewSetTECTemperature(ops Ops, temperature float64, laser string) *SetTECTemperature {
	return &SetTECTemperature{ops: ops, Temperature: temperature, Laser: laser}
}

func (e *SetTECTemperature) Execute(ctx context.Context) error {
	return e.ops.SetTECTemperature(ctx, e.Temperature, e.Laser)
}

func (e *SetTECTemperature) Description() string {
	return fmt.Sprintf("Set TEC temperature %g C", e.Temperature)
}

// WaitForTemperature blocks until the TEC reaches its target, bounded by a
// timeout.
type WaitForTemperature struct {
	ops     Ops
	Target  float64
	Timeout time.Duration
}

func NewWaitForTemperature(ops Ops, target float64, timeout time.Duration) *WaitForTemperature {
	return &WaitForTemperature{ops: ops, Target: target, Timeout: timeout}
}

func (e *WaitForTemperature) Execute(ctx context.Context) error {
	return e.ops.WaitForTemperature(ctx, e.Target, e.Timeout)
}

func (e *WaitForTemperature) Description() string {
	return fmt.Sprintf("Wait for temperature %g C", e.Target)
}

// RunScan runs a scan routine on a data channel with decreasing step sizes.
type RunScan struct {
	ops      Ops
	Device   string
	Channel  string
	Steps    []float64
	Settling time.Duration
	Axes     []string
}

func NewRunScan(ops Ops, device, channel string, steps []float64, settling time.Duration) *RunScan {
	return &RunScan{
		ops: ops, Device: device, Channel: channel,
		Steps: steps, Settling: settling, Axes: DefaultScanAxes,
	}
}

func (e *RunScan) Execute(ctx context.Context) error {
	return e.ops.PerformScan(ctx, e.Device, e.Channel, e.Steps, e.Settling, e.Axes)
}

func (e *RunScan) Description() string {
	return fmt.Sprintf("Run scan on %s channel %s", e.Device, e.Channel)
}

// Wait pauses the run for a duration.
type Wait struct {
	Duration time.Duration
}

func NewWait(d time.Duration) *Wait {
	return &Wait{Duration: d}
}

func (e *Wait) Execute(ctx context.Context) error {
	return sleep(ctx, e.Duration)
}

func (e *Wait) Description() string {
	return fmt.Sprintf("Wait %d ms", e.Duration.Milliseconds())
}

// Prompt blocks the run until the operator confirms or declines.
type Prompt struct {
	ui      Confirmer
	Message string
}

func NewPrompt(ui Confirmer, message string) *Prompt {
	return &Prompt{ui: ui, Message: message}
}

func (e *Prompt) Execute(ctx context.Context) error {
	ok, err := e.ui.Confirm(ctx, e.Message)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("operator declined: %s", e.Message)
	}
	return nil
}

func (e *Prompt) Description() string {
	return "Prompt: " + strings.Trim(e.Message, `"`)
}

// Print writes an operator-visible message.
type Print struct {
	ops     Ops
	Message string
}

func NewPrint(ops Ops, message string) *Print {
	return &Print{ops: ops, Message: message}
}

func (e *Print) Execute(ctx context.Context) error {
	e.ops.LogInfo(strings.Trim(e.Message, `"`))
	return nil
}

func (e *Print) Description() string {
	return "Print: " + strings.Trim(e.Message, `"`)
}

// sleep waits for d, honoring ctx cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
