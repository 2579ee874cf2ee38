package parse

import (
	"context"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/komcat/aascript"
	"github.com/komcat/aascript/machine"
)

func newTestParser() *Parser {
	return NewParser(machine.NewSimOps(), &machine.AutoConfirm{})
}

func TestParseCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	script := strings.Join([]string{
		"MOVE gantry TO node_4 IN probe_graph",
		"MOVE_TO_POINT hexapod safe_position",
		"MOVE_RELATIVE gantry Z -0.5",
		"SET_OUTPUT io_main 3 ON 500",
		"READ_INPUT io_main 7",
		"CLEAR_LATCH io_main 7",
		"EXTEND_SLIDE uv_head",
		"RETRACT_SLIDE uv_head",
		"LASER_ON",
		"SET_LASER_CURRENT 0.25",
		"SET_TEC_TEMPERATURE 25.5",
		"WAIT_FOR_TEMPERATURE 25.5 60000",
		"TEC_OFF",
		"LASER_OFF",
		"RUN_SCAN hexapod ch1 0.01,0.002 500",
		"WAIT 100",
		"PRINT \"all done\"",
	}, "\n")
	result, errs := newTestParser().ParseScript(script)
	if len(errs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	if len(result.Program) != 17 {
		t.Fatalf("expected 17 instructions, got %d", len(result.Program))
	}
	first, ok := result.Program[0].(*aascript.Command)
	if !ok {
		t.Fatalf("expected *Command, got %T", result.Program[0])
	}
	if first.Description() != "Move gantry to node_4 in probe_graph" {
		t.Errorf("unexpected description: %q", first.Description())
	}
}

func TestParsedEffectsRun(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	sim := machine.NewSimOps()
	p := NewParser(sim, &machine.AutoConfirm{})
	result, errs := p.ParseScript("MOVE gantry TO node_4 IN probe_graph\nEXTEND_SLIDE uv_head")
	if len(errs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	for _, instr := range result.Program {
		cmd := instr.(*aascript.Command)
		if err := cmd.Effect.Execute(context.Background()); err != nil {
			t.Fatalf("%s failed: %v", cmd.Name, err)
		}
	}
	if calls := sim.Calls(); len(calls) != 2 {
		t.Errorf("expected 2 recorded calls, got %v", calls)
	}
}

func TestParseFlowControl(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	script := strings.Join([]string{
		"IF $x > 3",
		"PRINT big",
		"ELSE",
		"PRINT small",
		"ENDIF",
		"FOR $i = 1 TO 5 STEP 2",
		"WAIT 10",
		"ENDFOR",
		"WHILE $i < 10",
		"SET $i = $i + 1",
		"ENDWHILE",
	}, "\n")
	result, errs := newTestParser().ParseScript(script)
	if len(errs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	forInstr, ok := result.Program[5].(*aascript.FlowControl)
	if !ok || forInstr.Kind != aascript.For {
		t.Fatalf("expected FOR at index 5, got %v", result.Program[5])
	}
	if forInstr.Condition != "$i|1|5|2" {
		t.Errorf("packed FOR condition = %q", forInstr.Condition)
	}
	if forInstr.Line != 6 {
		t.Errorf("FOR line = %d, want 6", forInstr.Line)
	}
}

func TestParseForDefaultStep(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	result, errs := newTestParser().ParseScript("FOR $i = 1 TO 3\nWAIT 1\nENDFOR")
	if len(errs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	fc := result.Program[0].(*aascript.FlowControl)
	if fc.Condition != "$i|1|3|1" {
		t.Errorf("packed FOR condition = %q, want default step 1", fc.Condition)
	}
}

func TestParseAssignment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	result, errs := newTestParser().ParseScript("SET $total = $a * 2 + 1")
	if len(errs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	asgn, ok := result.Program[0].(*aascript.Assignment)
	if !ok {
		t.Fatalf("expected *Assignment, got %T", result.Program[0])
	}
	if asgn.Name != "$total" || asgn.Expression != "$a * 2 + 1" {
		t.Errorf("parsed assignment = %q / %q", asgn.Name, asgn.Expression)
	}
}

func TestParseProcedureCall(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	script := "DEFINE PROCEDURE homeAll()\nWAIT 1\nEND\nCALL homeAll()"
	result, errs := newTestParser().ParseScript(script)
	if len(errs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	call, ok := result.Program[0].(*aascript.ProcedureCall)
	if !ok || call.Name != "homeAll" {
		t.Fatalf("expected call to homeAll, got %v", result.Program[0])
	}
}

func TestParseCallUndefinedProcedure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	_, errs := newTestParser().ParseScript("CALL nowhere()")
	if len(errs) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", errs)
	}
	if errs[0].Error() != "Line 1: procedure not defined: nowhere" {
		t.Errorf("unexpected diagnostic: %q", errs[0].Error())
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	cases := []struct {
		line string
		want string // substring of the diagnostic
	}{
		{"FROBNICATE now", "unknown command"},
		{"SET total = 3", "must start with $"},
		{"SET $x 3", "SET $variable = expression"},
		{"FOR $i = 1 UNTIL 5", "FOR $var = start TO end"},
		{"FOR i = 1 TO 5", "FOR $var = start TO end"},
		{"MOVE gantry node_4", "MOVE <device> TO <node> IN <graph>"},
		{"MOVE_RELATIVE gantry Z fast", "distance"},
		{"SET_OUTPUT io_main three ON", "pin"},
		{"WAIT soon", "duration"},
		{"RUN_SCAN hexapod ch1 0.01,big", "step size"},
		{"IF", "condition"},
		{"WHILE", "condition"},
	}
	for _, c := range cases {
		_, errs := newTestParser().ParseScript(c.line)
		if len(errs) == 0 {
			t.Errorf("%q: expected a diagnostic", c.line)
			continue
		}
		if !strings.Contains(errs[0].Message, c.want) {
			t.Errorf("%q: diagnostic %q does not mention %q", c.line, errs[0].Message, c.want)
		}
	}
}

func TestParseAllOrNothing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	result, errs := newTestParser().ParseScript("WAIT 10\nFROBNICATE\nWAIT 20")
	if result != nil {
		t.Error("a script with diagnostics must yield no program")
	}
	if len(errs) != 1 || errs[0].Line != 2 {
		t.Errorf("unexpected diagnostics: %v", errs)
	}
}

func TestParseErrorLinesCountCommentsAndBlanks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	_, errs := newTestParser().ParseScript("# comment\n\nFROBNICATE")
	if len(errs) != 1 || errs[0].Line != 3 {
		t.Errorf("diagnostic should point at line 3, got %v", errs)
	}
}

func TestStructuralValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	cases := []struct {
		name   string
		script string
		line   int
		want   string
	}{
		{"unclosed if", "IF $x > 1\nWAIT 1", 1, "unclosed IF"},
		{"stray endfor", "WAIT 1\nENDFOR", 2, "ENDFOR without matching FOR"},
		{"else outside if", "ELSE", 1, "ELSE without matching IF"},
		{"cross closed", "FOR $i = 1 TO 3\nIF $i > 1\nENDFOR", 3, "ENDFOR closes IF opened at line 2"},
	}
	for _, c := range cases {
		result, errs := newTestParser().ParseScript(c.script)
		if result != nil {
			t.Errorf("%s: expected rejection", c.name)
			continue
		}
		if len(errs) != 1 {
			t.Errorf("%s: expected 1 diagnostic, got %v", c.name, errs)
			continue
		}
		if errs[0].Line != c.line || !strings.Contains(errs[0].Message, c.want) {
			t.Errorf("%s: got %q, want line %d mentioning %q", c.name, errs[0].Error(), c.line, c.want)
		}
	}
}

func TestValidateScript(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	p := newTestParser()
	if errs := p.ValidateScript("WAIT 10\nPRINT ok"); len(errs) != 0 {
		t.Errorf("clean script should validate, got %v", errs)
	}
	if errs := p.ValidateScript("WHILE $x < 3"); len(errs) == 0 {
		t.Error("unclosed WHILE should fail validation")
	}
}

func TestRegisterCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	p := newTestParser()
	p.RegisterCommand("BEEP", func(p *Parser, tokens []string) (aascript.Instruction, error) {
		return &aascript.Command{Name: "BEEP", Args: tokens[1:], Effect: machine.NewWait(0)}, nil
	})
	result, errs := p.ParseScript("BEEP twice")
	if len(errs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	cmd := result.Program[0].(*aascript.Command)
	if cmd.Name != "BEEP" || len(cmd.Args) != 1 {
		t.Errorf("unexpected registered-command result: %v", cmd)
	}
}

func TestProcessedScript(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.parse")
	defer teardown()
	script := "# setup\nDEFINE PROCEDURE p()\nWAIT 1\nEND\nWAIT 5\n\nPRINT done"
	result, errs := newTestParser().ParseScript(script)
	if len(errs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	if result.Processed != "WAIT 5\nPRINT done" {
		t.Errorf("processed script = %q", result.Processed)
	}
}
