package machine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestEffectDescriptions(t *testing.T) {
	ops := NewSimOps()
	cases := []struct {
		eff  interface{ Description() string }
		want string
	}{
		{NewMoveToNode(ops, "gantry", "probe_graph", "node_4"), "Move gantry to node_4 in probe_graph"},
		{NewMoveToPoint(ops, "hexapod", "park"), "Move hexapod to point park"},
		{NewMoveRelative(ops, "gantry", "Z", -0.5), "Move gantry relative Z -0.5"},
		{NewSetOutput(ops, "eziio1", 3, true, 0), "Set output 3 on eziio1 ON"},
		{NewReadInput(ops, "eziio1", 7), "Read input 7 on eziio1"},
		{NewExtendSlide(ops, "uv_head"), "Extend slide uv_head"},
		{NewRetractSlide(ops, "uv_head"), "Retract slide uv_head"},
		{NewLaserOn(ops, ""), "Laser on (default)"},
		{NewTECOff(ops, "ld1"), "TEC off (ld1)"},
		{NewWait(500 * time.Millisecond), "Wait 500 ms"},
		{NewPrompt(AutoConfirm{}, `"Load the part"`), "Prompt: Load the part"},
		{NewPrint(ops, `"done"`), "Print: done"},
	}
	for _, c := range cases {
		if got := c.eff.Description(); got != c.want {
			t.Errorf("Description() = %q, want %q", got, c.want)
		}
	}
}

func TestSimOpsRecordsCalls(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.machine")
	defer teardown()
	//
	ops := NewSimOps()
	eff := NewMoveToNode(ops, "gantry", "probe_graph", "node_4")
	if err := eff.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	calls := ops.Calls()
	if len(calls) != 1 || !strings.HasPrefix(calls[0], "MoveDeviceToNode") {
		t.Errorf("unexpected call log: %v", calls)
	}
}

func TestSimOpsFailureInjection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.machine")
	defer teardown()
	//
	ops := NewSimOps()
	ops.FailOn("ExtendSlide")
	if err := NewExtendSlide(ops, "uv_head").Execute(context.Background()); err == nil {
		t.Error("expected injected failure")
	}
	// injection is one-shot
	if err := NewExtendSlide(ops, "uv_head").Execute(context.Background()); err != nil {
		t.Errorf("second call should succeed, got %v", err)
	}
}

func TestPromptDeclined(t *testing.T) {
	eff := NewPrompt(AutoConfirm{Decline: true}, "Continue?")
	if err := eff.Execute(context.Background()); err == nil {
		t.Error("declined prompt should fail the effect")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewWait(time.Minute).Execute(ctx); err == nil {
		t.Error("cancelled context should abort the wait")
	}
}
