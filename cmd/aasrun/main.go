package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/komcat/aascript/interp"
	"github.com/komcat/aascript/machine"
	"github.com/komcat/aascript/runner"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/

var traceKeys = []string{
	"aascript.scan",
	"aascript.parse",
	"aascript.runtime",
	"aascript.machine",
	"aascript.interp",
	"aascript.runner",
}

// main() starts an interactive CLI where users load, run and control
// automation scripts against a simulated machine. A slot library given
// with -slots is loaded on startup and can be run by slot name; a
// directory given with -scripts is scanned for .aas files.
func main() {
	initDisplay()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	slotsf := flag.String("slots", "", "Slot library (YAML)")
	scriptsd := flag.String("scripts", "", "Directory to scan for .aas script files")
	flag.Parse()
	initTracing(*tlevel)
	pterm.Info.Println("Welcome to aasrun")
	tracer().Infof("Trace level is %s", *tlevel)
	//
	cfg := &runner.Config{}
	if *slotsf != "" {
		var err error
		cfg, err = runner.LoadConfig(*slotsf)
		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(2)
		}
		tracer().Infof("Loaded %d slot(s) from %s", len(cfg.Slots), *slotsf)
	}
	//
	repl, err := readline.New("aasrun> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	sim := machine.NewSimOps()
	intp := &Intp{
		repl:   repl,
		sim:    sim,
		runner: runner.NewRunner(cfg, sim, &echoConfirm{}),
	}
	if *scriptsd != "" {
		intp.loadDir(*scriptsd)
	}
	for _, arg := range flag.Args() {
		intp.loadFile(arg)
	}
	tracer().Infof("Quit with <ctrl>D")
	intp.REPL()
}

// initTracing installs a Go-standard-log tracing backend and applies the
// requested level to all module trace keys. Without a backend the tracing
// frontend hands out no-op tracers.
func initTracing(level string) {
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	l := tracing.TraceLevelFromString(level)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// echoConfirm surfaces PROMPT messages on the terminal and confirms them.
// Interactive yes/no input would contend with the line editor for stdin;
// a GUI front-end plugs its dialog in through the Confirmer interface
// instead.
type echoConfirm struct{}

func (echoConfirm) Confirm(ctx context.Context, message string) (bool, error) {
	pterm.Info.Println("PROMPT: " + message + " (confirmed)")
	return true, nil
}

// Intp is our interpreter shell.
type Intp struct {
	repl    *readline.Instance
	sim     *machine.SimOps
	runner  *runner.Runner
	current string // slot name of the most recently loaded script
}

// loadFile reads a script file into a slot named after its base name.
func (intp *Intp) loadFile(filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	intp.runner.SetSlot(name, string(data))
	intp.current = name
	if err := intp.runner.Validate(name); err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	pterm.Info.Printf("Loaded %s into slot %q\n", filename, name)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		args := strings.Fields(line)
		quit := intp.Execute(args[0], args[1:])
		if quit {
			break
		}
	}
	println("Good bye!")
}

// Execute runs one shell command. Returns true to leave the REPL.
func (intp *Intp) Execute(cmd string, args []string) bool {
	switch cmd {
	case "help":
		intp.help()
	case "load":
		if len(args) < 1 {
			pterm.Error.Println("usage: load <file>")
			break
		}
		intp.loadFile(args[0])
	case "scripts":
		if len(args) < 1 {
			pterm.Error.Println("usage: scripts <dir>")
			break
		}
		intp.loadDir(args[0])
	case "slots":
		intp.listSlots()
	case "validate":
		name, ok := intp.slotArg(args)
		if !ok {
			break
		}
		if err := intp.runner.Validate(name); err != nil {
			pterm.Error.Println(err.Error())
			break
		}
		pterm.Info.Printf("Slot %q is valid\n", name)
	case "run":
		name, ok := intp.slotArg(args)
		if !ok {
			break
		}
		intp.runSlot(name)
	case "pause":
		intp.runner.Engine().Pause()
	case "resume":
		intp.runner.Engine().Resume()
	case "stop":
		if err := intp.runner.Engine().Stop(5 * time.Second); err != nil {
			pterm.Error.Println(err.Error())
		}
	case "state":
		pterm.Info.Println(intp.runner.Engine().State().String())
	case "vars":
		intp.listVars()
	case "log":
		for _, entry := range intp.runner.Engine().Log() {
			pterm.Println(entry)
		}
	case "errors":
		for _, msg := range intp.runner.Engine().Errors() {
			pterm.Error.Println(msg)
		}
	case "input":
		intp.setInput(args)
	case "history":
		intp.listHistory()
	case "quit", "exit":
		return true
	default:
		pterm.Error.Printf("Unknown command %q, try help\n", cmd)
	}
	return false
}

func (intp *Intp) help() {
	pterm.Println("load <file>       load a script file into a slot")
	pterm.Println("scripts <dir>     load every .aas file under a directory")
	pterm.Println("slots             list slots and fingerprints")
	pterm.Println("validate [slot]   check a slot for syntax errors")
	pterm.Println("run [slot]        execute a slot in the background")
	pterm.Println("pause | resume    suspend / continue the running script")
	pterm.Println("stop              terminate the running script")
	pterm.Println("state             show the engine state")
	pterm.Println("vars              show script variables")
	pterm.Println("log               show the execution log")
	pterm.Println("errors            show execution diagnostics")
	pterm.Println("input <dev> <pin> <on|off>  drive a simulated input")
	pterm.Println("history           show past runs")
	pterm.Println("quit              leave the shell")
}

// slotArg resolves the slot-name argument of validate/run, falling back to
// the most recently loaded script.
func (intp *Intp) slotArg(args []string) (string, bool) {
	if len(args) > 0 {
		return args[0], true
	}
	if intp.current == "" {
		pterm.Error.Println("no script loaded, use: load <file>")
		return "", false
	}
	return intp.current, true
}

// runSlot launches a run in the background so that pause/resume/stop stay
// available at the prompt.
func (intp *Intp) runSlot(name string) {
	state := intp.runner.Engine().State()
	if state == interp.Running || state == interp.Paused {
		pterm.Error.Println("a script is already executing")
		return
	}
	go func() {
		rec, err := intp.runner.Run(context.Background(), name)
		if err != nil {
			pterm.Error.Println(err.Error())
			return
		}
		pterm.Info.Printf("Run %s: %s after %v\n", rec.ID, rec.State, rec.Duration)
	}()
	pterm.Info.Printf("Running slot %q\n", name)
}

func (intp *Intp) listSlots() {
	slots := intp.runner.Slots()
	if len(slots) == 0 {
		pterm.Info.Println("no slots")
		return
	}
	for i := range slots {
		pterm.Printf("%-20s %s\n", slots[i].Name, slots[i].Fingerprint())
	}
}

func (intp *Intp) listVars() {
	vars := intp.runner.Engine().Variables()
	if len(vars) == 0 {
		pterm.Info.Println("no variables")
		return
	}
	for name, value := range vars {
		pterm.Printf("%-20s = %g\n", name, value)
	}
}

// setInput drives a simulated input pin, for scripts using READ_INPUT.
func (intp *Intp) setInput(args []string) {
	if len(args) < 3 {
		pterm.Error.Println("usage: input <device> <pin> <on|off>")
		return
	}
	pin, err := strconv.Atoi(args[1])
	if err != nil {
		pterm.Error.Printf("invalid pin %q\n", args[1])
		return
	}
	on := strings.EqualFold(args[2], "on") || args[2] == "1"
	intp.sim.SetInput(args[0], pin, on)
	pterm.Info.Printf("%s:%d = %v\n", args[0], pin, on)
}

func (intp *Intp) listHistory() {
	history := intp.runner.History()
	if len(history) == 0 {
		pterm.Info.Println("no runs yet")
		return
	}
	for _, rec := range history {
		pterm.Printf("%s  %-12s %-10s %v\n", rec.ID, rec.Slot, rec.State, rec.Duration)
	}
}

// loadDir discovers .aas files under dir and loads each into a slot.
func (intp *Intp) loadDir(dir string) {
	files, err := runner.ScriptFiles(dir)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	if len(files) == 0 {
		pterm.Info.Printf("No .aas scripts under %s\n", dir)
		return
	}
	for _, f := range files {
		intp.loadFile(f)
	}
}
