/*
Package parse turns script text into an executable instruction list.

Parsing happens in three steps: the preprocessor extracts procedure
definitions, per-command builders turn each surviving line into exactly
zero or one instruction, and a final walk validates that every opened
control structure is properly closed. Per-line errors are accumulated, not
thrown; a script with diagnostics yields no program.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/komcat/aascript"
	"github.com/komcat/aascript/machine"
	"github.com/komcat/aascript/scan"
)

// tracer traces with key 'aascript.parse'.
func tracer() tracing.Trace {
	return tracing.Select("aascript.parse")
}

// Builder turns the tokens of one line into an instruction. Applications
// register builders for commands the core set does not know.
type Builder func(p *Parser, tokens []string) (aascript.Instruction, error)

// Parser compiles script text into a Program. A Parser is not safe for
// concurrent use; create one per script or guard it externally.
type Parser struct {
	ops   machine.Ops
	ui    machine.Confirmer
	extra map[string]Builder

	errs  ErrorList
	procs ProcTable
	line  int
}

// NewParser creates a parser bound to a machine-operations implementation
// and a prompt confirmer.
func NewParser(ops machine.Ops, ui machine.Confirmer) *Parser {
	return &Parser{
		ops:   ops,
		ui:    ui,
		extra: make(map[string]Builder),
	}
}

// RegisterCommand adds a builder for a command keyword outside the core
// set. The keyword is case-normalized. Core keywords cannot be overridden.
func (p *Parser) RegisterCommand(keyword string, b Builder) {
	p.extra[strings.ToUpper(keyword)] = b
}

// Result is a successfully parsed script.
type Result struct {
	Program    aascript.Program
	Procedures ProcTable
	Processed  string // surviving instruction lines, newline-joined
}

// ParseScript compiles a script. On any diagnostic, per-line or
// structural, no program is produced and the full error list is returned.
func (p *Parser) ParseScript(script string) (*Result, ErrorList) {
	lines, procs, errs := Preprocess(script)
	p.errs = errs
	p.procs = procs
	p.line = 0

	var program aascript.Program
	var processed []string
	for _, line := range lines {
		p.line++
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		instr, err := p.parseLine(line)
		if err != nil {
			p.addError(err.Error())
			continue
		}
		if instr != nil {
			program = append(program, instr)
			processed = append(processed, line)
		}
	}

	if len(p.errs) == 0 {
		if err := validateControl(program); err != nil {
			p.errs = append(p.errs, *err)
		}
	}
	if len(p.errs) > 0 {
		tracer().Errorf("script rejected with %d diagnostic(s)", len(p.errs))
		return nil, p.errs
	}
	tracer().Infof("parsed %d instruction(s), %d procedure(s)", len(program), len(procs))
	return &Result{
		Program:    program,
		Procedures: procs,
		Processed:  strings.Join(processed, "\n"),
	}, nil
}

// ValidateScript checks a script for syntax errors without producing a
// program. Returns the accumulated diagnostics, nil when clean.
func (p *Parser) ValidateScript(script string) ErrorList {
	_, errs := p.ParseScript(script)
	return errs
}

func (p *Parser) addError(msg string) {
	p.errs = append(p.errs, Error{p.line, msg})
}

// parseLine converts one surviving line into exactly zero or one
// instruction.
func (p *Parser) parseLine(line string) (aascript.Instruction, error) {
	tokens := scan.Tokenize(line)
	if len(tokens) == 0 {
		return nil, nil
	}
	command := strings.ToUpper(tokens[0])
	switch command {
	case "IF", "ELSE", "ENDIF", "FOR", "ENDFOR", "WHILE", "ENDWHILE":
		return p.parseFlowControl(command, tokens)
	case "CALL":
		return p.parseProcedureCall(tokens)
	case "SET":
		return p.parseAssignment(tokens)
	case "MOVE", "MOVE_TO_POINT", "MOVE_RELATIVE":
		return p.parseMoveCommand(command, tokens)
	case "SET_OUTPUT", "READ_INPUT", "CLEAR_LATCH":
		return p.parseOutputCommand(command, tokens)
	case "EXTEND_SLIDE", "RETRACT_SLIDE":
		return p.parsePneumaticCommand(command, tokens)
	case "LASER_ON", "LASER_OFF", "TEC_ON", "TEC_OFF",
		"SET_LASER_CURRENT", "SET_TEC_TEMPERATURE", "WAIT_FOR_TEMPERATURE":
		return p.parseLaserCommand(command, tokens)
	case "RUN_SCAN":
		return p.parseScanCommand(command, tokens)
	case "WAIT", "PROMPT", "PRINT":
		return p.parseUtilityCommand(command, tokens)
	}
	if b, ok := p.extra[command]; ok {
		return b(p, tokens)
	}
	return nil, fmt.Errorf("unknown command: %s", tokens[0])
}

func isVariable(token string) bool {
	return len(token) > 1 && token[0] == '$'
}

func (p *Parser) parseFlowControl(command string, tokens []string) (aascript.Instruction, error) {
	switch command {
	case "IF":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("IF statement requires a condition")
		}
		cond := strings.Join(tokens[1:], " ")
		return &aascript.FlowControl{Kind: aascript.If, Condition: cond, Line: p.line}, nil
	case "ELSE":
		return &aascript.FlowControl{Kind: aascript.Else, Line: p.line}, nil
	case "ENDIF":
		return &aascript.FlowControl{Kind: aascript.EndIf, Line: p.line}, nil
	case "FOR":
		if len(tokens) < 6 || tokens[2] != "=" || !strings.EqualFold(tokens[4], "TO") ||
			!isVariable(tokens[1]) {
			return nil, fmt.Errorf("invalid FOR syntax, expected: FOR $var = start TO end [STEP step]")
		}
		step := "1"
		if len(tokens) > 7 && strings.EqualFold(tokens[6], "STEP") {
			step = tokens[7]
		} else if len(tokens) > 6 {
			return nil, fmt.Errorf("invalid FOR syntax, expected: FOR $var = start TO end [STEP step]")
		}
		// packed as "variable|start|end|step"
		cond := tokens[1] + "|" + tokens[3] + "|" + tokens[5] + "|" + step
		return &aascript.FlowControl{Kind: aascript.For, Condition: cond, Line: p.line}, nil
	case "ENDFOR":
		return &aascript.FlowControl{Kind: aascript.EndFor, Line: p.line}, nil
	case "WHILE":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("WHILE statement requires a condition")
		}
		cond := strings.Join(tokens[1:], " ")
		return &aascript.FlowControl{Kind: aascript.While, Condition: cond, Line: p.line}, nil
	case "ENDWHILE":
		return &aascript.FlowControl{Kind: aascript.EndWhile, Line: p.line}, nil
	}
	return nil, fmt.Errorf("unknown flow control command: %s", command)
}

func (p *Parser) parseAssignment(tokens []string) (aascript.Instruction, error) {
	if len(tokens) < 4 || tokens[2] != "=" {
		return nil, fmt.Errorf("invalid variable assignment, expected: SET $variable = expression")
	}
	if !isVariable(tokens[1]) {
		return nil, fmt.Errorf("variable name must start with $: %s", tokens[1])
	}
	return &aascript.Assignment{
		Name:       tokens[1],
		Expression: strings.Join(tokens[3:], " "),
	}, nil
}

func (p *Parser) parseProcedureCall(tokens []string) (aascript.Instruction, error) {
	if len(tokens) < 2 {
		return nil, fmt.Errorf("invalid procedure call, expected: CALL procedureName()")
	}
	name := tokens[1]
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	if _, ok := p.procs[name]; !ok {
		return nil, fmt.Errorf("procedure not defined: %s", name)
	}
	return &aascript.ProcedureCall{Name: name}, nil
}

func (p *Parser) parseMoveCommand(command string, tokens []string) (aascript.Instruction, error) {
	switch command {
	case "MOVE":
		if len(tokens) < 6 || !strings.EqualFold(tokens[2], "TO") || !strings.EqualFold(tokens[4], "IN") {
			return nil, fmt.Errorf("invalid MOVE syntax, expected: MOVE <device> TO <node> IN <graph>")
		}
		eff := machine.NewMoveToNode(p.ops, tokens[1], tokens[5], tokens[3])
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	case "MOVE_TO_POINT":
		if len(tokens) < 3 {
			return nil, fmt.Errorf("invalid MOVE_TO_POINT syntax, expected: MOVE_TO_POINT <device> <position>")
		}
		eff := machine.NewMoveToPoint(p.ops, tokens[1], tokens[2])
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	case "MOVE_RELATIVE":
		if len(tokens) < 4 {
			return nil, fmt.Errorf("invalid MOVE_RELATIVE syntax, expected: MOVE_RELATIVE <device> <axis> <distance>")
		}
		dist, err := strconv.ParseFloat(tokens[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MOVE_RELATIVE distance: %s", tokens[3])
		}
		eff := machine.NewMoveRelative(p.ops, tokens[1], tokens[2], dist)
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	}
	return nil, fmt.Errorf("unrecognized move command: %s", command)
}

func (p *Parser) parseOutputCommand(command string, tokens []string) (aascript.Instruction, error) {
	switch command {
	case "SET_OUTPUT":
		if len(tokens) < 4 {
			return nil, fmt.Errorf("invalid SET_OUTPUT syntax, expected: SET_OUTPUT <device> <pin> <ON|OFF> [delay_ms]")
		}
		pin, err := strconv.Atoi(tokens[2])
		if err != nil {
			return nil, fmt.Errorf("invalid SET_OUTPUT pin: %s", tokens[2])
		}
		state := strings.ToUpper(tokens[3])
		on := state == "ON" || state == "TRUE" || state == "1"
		delay := 200 * time.Millisecond
		if len(tokens) > 4 {
			ms, err := strconv.Atoi(tokens[4])
			if err != nil {
				return nil, fmt.Errorf("invalid SET_OUTPUT delay: %s", tokens[4])
			}
			delay = time.Duration(ms) * time.Millisecond
		}
		eff := machine.NewSetOutput(p.ops, tokens[1], pin, on, delay)
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	case "READ_INPUT":
		if len(tokens) < 3 {
			return nil, fmt.Errorf("invalid READ_INPUT syntax, expected: READ_INPUT <device> <pin>")
		}
		pin, err := strconv.Atoi(tokens[2])
		if err != nil {
			return nil, fmt.Errorf("invalid READ_INPUT pin: %s", tokens[2])
		}
		eff := machine.NewReadInput(p.ops, tokens[1], pin)
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	case "CLEAR_LATCH":
		if len(tokens) < 3 {
			return nil, fmt.Errorf("invalid CLEAR_LATCH syntax, expected: CLEAR_LATCH <device> <pin>")
		}
		pin, err := strconv.Atoi(tokens[2])
		if err != nil {
			return nil, fmt.Errorf("invalid CLEAR_LATCH pin: %s", tokens[2])
		}
		eff := machine.NewClearLatch(p.ops, tokens[1], pin)
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	}
	return nil, fmt.Errorf("unrecognized output command: %s", command)
}

func (p *Parser) parsePneumaticCommand(command string, tokens []string) (aascript.Instruction, error) {
	if len(tokens) < 2 {
		return nil, fmt.Errorf("invalid %s syntax, expected: %s <slide_name>", command, command)
	}
	if command == "EXTEND_SLIDE" {
		eff := machine.NewExtendSlide(p.ops, tokens[1])
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	}
	eff := machine.NewRetractSlide(p.ops, tokens[1])
	return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
}

func (p *Parser) parseLaserCommand(command string, tokens []string) (aascript.Instruction, error) {
	optName := func() string {
		if len(tokens) > 1 {
			return tokens[1]
		}
		return ""
	}
	switch command {
	case "LASER_ON":
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: machine.NewLaserOn(p.ops, optName())}, nil
	case "LASER_OFF":
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: machine.NewLaserOff(p.ops, optName())}, nil
	case "TEC_ON":
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: machine.NewTECOn(p.ops, optName())}, nil
	case "TEC_OFF":
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: machine.NewTECOff(p.ops, optName())}, nil
	case "SET_LASER_CURRENT":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("invalid SET_LASER_CURRENT syntax, expected: SET_LASER_CURRENT <current> [laser_name]")
		}
		current, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SET_LASER_CURRENT current: %s", tokens[1])
		}
		laser := ""
		if len(tokens) > 2 {
			laser = tokens[2]
		}
		eff := machine.NewSetLaserCurrent(p.ops, current, laser)
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	case "SET_TEC_TEMPERATURE":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("invalid SET_TEC_TEMPERATURE syntax, expected: SET_TEC_TEMPERATURE <temperature> [laser_name]")
		}
		temp, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SET_TEC_TEMPERATURE temperature: %s", tokens[1])
		}
		laser := ""
		if len(tokens) > 2 {
			laser = tokens[2]
		}
		eff := machine.NewSetTECTemperature(p.ops, temp, laser)
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	case "WAIT_FOR_TEMPERATURE":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("invalid WAIT_FOR_TEMPERATURE syntax, expected: WAIT_FOR_TEMPERATURE <target> [timeout_ms]")
		}
		target, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WAIT_FOR_TEMPERATURE target: %s", tokens[1])
		}
		timeout := 30 * time.Second
		if len(tokens) > 2 {
			ms, err := strconv.Atoi(tokens[2])
			if err != nil {
				return nil, fmt.Errorf("invalid WAIT_FOR_TEMPERATURE timeout: %s", tokens[2])
			}
			timeout = time.Duration(ms) * time.Millisecond
		}
		eff := machine.NewWaitForTemperature(p.ops, target, timeout)
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	}
	return nil, fmt.Errorf("unrecognized laser command: %s", command)
}

func (p *Parser) parseScanCommand(command string, tokens []string) (aascript.Instruction, error) {
	if len(tokens) < 4 {
		return nil, fmt.Errorf("invalid RUN_SCAN syntax, expected: RUN_SCAN <device> <channel> <step_sizes> [settling_ms]")
	}
	var steps []float64
	for _, s := range strings.Split(tokens[3], ",") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_SCAN step size: %s", s)
		}
		steps = append(steps, v)
	}
	settling := 300 * time.Millisecond
	if len(tokens) > 4 {
		ms, err := strconv.Atoi(tokens[4])
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_SCAN settling time: %s", tokens[4])
		}
		settling = time.Duration(ms) * time.Millisecond
	}
	eff := machine.NewRunScan(p.ops, tokens[1], tokens[2], steps, settling)
	return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
}

func (p *Parser) parseUtilityCommand(command string, tokens []string) (aascript.Instruction, error) {
	switch command {
	case "WAIT":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("invalid WAIT syntax, expected: WAIT <milliseconds>")
		}
		ms, err := strconv.Atoi(tokens[1])
		if err != nil {
			return nil, fmt.Errorf("invalid WAIT duration: %s", tokens[1])
		}
		eff := machine.NewWait(time.Duration(ms) * time.Millisecond)
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	case "PROMPT":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("invalid PROMPT syntax, expected: PROMPT <message>")
		}
		eff := machine.NewPrompt(p.ui, strings.Join(tokens[1:], " "))
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	case "PRINT":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("invalid PRINT syntax, expected: PRINT <message>")
		}
		eff := machine.NewPrint(p.ops, strings.Join(tokens[1:], " "))
		return &aascript.Command{Name: command, Args: tokens[1:], Effect: eff}, nil
	}
	return nil, fmt.Errorf("unrecognized utility command: %s", command)
}
