/*
Package runner manages a library of named script slots and executes them.

Slots are persisted as a YAML document. Every execution is recorded with a
unique run ID, the slot's content fingerprint, its duration and terminal
state, so that operators can tell which revision of a script produced a
given result.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/
package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cnf/structhash"
	"github.com/google/uuid"
	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"

	"github.com/komcat/aascript/interp"
	"github.com/komcat/aascript/machine"
	"github.com/komcat/aascript/parse"
)

// tracer traces with key 'aascript.runner'.
func tracer() tracing.Trace {
	return tracing.Select("aascript.runner")
}

// Slot is a named, persisted script.
type Slot struct {
	Name   string `yaml:"name" json:"name"`
	Script string `yaml:"script" json:"script"`
}

// Fingerprint returns a stable content hash of the slot. Two slots with
// the same name and script text hash identically across processes.
func (s *Slot) Fingerprint() string {
	return fmt.Sprintf("%x", structhash.Md5(s, 1))
}

// Config is the persisted slot library.
type Config struct {
	Slots []Slot `yaml:"slots"`
}

// LoadConfig reads a slot library from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ScriptFiles finds the script files under dir, descending into
// subdirectories. Script files carry the ".aas" extension, compared
// case-insensitively. The result is sorted by path.
func ScriptFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".aas") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Save writes the slot library to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Slot looks up a slot by name.
func (c *Config) Slot(name string) (*Slot, bool) {
	for i := range c.Slots {
		if c.Slots[i].Name == name {
			return &c.Slots[i], true
		}
	}
	return nil, false
}

// SetSlot creates or replaces a slot.
func (c *Config) SetSlot(name, script string) {
	if s, ok := c.Slot(name); ok {
		s.Script = script
		return
	}
	c.Slots = append(c.Slots, Slot{Name: name, Script: script})
}

// RemoveSlot deletes a slot, reporting whether it existed.
func (c *Config) RemoveSlot(name string) bool {
	for i := range c.Slots {
		if c.Slots[i].Name == name {
			c.Slots = append(c.Slots[:i], c.Slots[i+1:]...)
			return true
		}
	}
	return false
}

// RunRecord describes one execution of a slot.
type RunRecord struct {
	ID          string
	Slot        string
	Fingerprint string
	Started     time.Time
	Duration    time.Duration
	State       interp.ExecutionState
	Errors      []string
}

// Runner executes slots from a Config on a single engine. Runs are
// serialized; Run blocks until the script reaches a terminal state.
type Runner struct {
	ops    machine.Ops
	ui     machine.Confirmer
	engine *interp.Engine

	mu      sync.Mutex
	cfg     *Config
	history []RunRecord
}

// NewRunner creates a runner over a slot library.
func NewRunner(cfg *Config, ops machine.Ops, ui machine.Confirmer) *Runner {
	return &Runner{
		ops:    ops,
		ui:     ui,
		engine: interp.NewEngine(),
		cfg:    cfg,
	}
}

// Engine exposes the underlying engine, for pause/resume/stop control and
// state observation while a run is in flight.
func (r *Runner) Engine() *interp.Engine {
	return r.engine
}

// SetSlot creates or replaces a slot in the underlying library.
func (r *Runner) SetSlot(name, script string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.SetSlot(name, script)
}

// Slots returns a snapshot of the slot library.
func (r *Runner) Slots() []Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Slot, len(r.cfg.Slots))
	copy(out, r.cfg.Slots)
	return out
}

// Validate checks a slot's script for syntax errors without running it.
func (r *Runner) Validate(name string) error {
	r.mu.Lock()
	slot, ok := r.cfg.Slot(name)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("no such slot: %s", name)
	}
	p := parse.NewParser(r.ops, r.ui)
	if errs := p.ValidateScript(slot.Script); len(errs) > 0 {
		return errs
	}
	return nil
}

// Run parses and executes a slot, blocking until the run reaches a
// terminal state, and appends a RunRecord to the history. A run that ends
// in the Error state still yields a record; only a failure to launch
// returns a nil record.
func (r *Runner) Run(ctx context.Context, name string) (*RunRecord, error) {
	r.mu.Lock()
	slot, ok := r.cfg.Slot(name)
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no such slot: %s", name)
	}
	p := parse.NewParser(r.ops, r.ui)
	result, errs := p.ParseScript(slot.Script)
	if len(errs) > 0 {
		return nil, errs
	}
	if err := r.engine.Load(result); err != nil {
		return nil, err
	}

	rec := RunRecord{
		ID:          uuid.NewString(),
		Slot:        name,
		Fingerprint: slot.Fingerprint(),
		Started:     time.Now(),
	}
	tracer().Infof("run %s: slot %q (%s)", rec.ID, name, rec.Fingerprint)
	if err := r.engine.Start(ctx); err != nil {
		return nil, err
	}
	rec.State = r.waitTerminal()
	rec.Duration = time.Since(rec.Started)
	rec.Errors = r.engine.Errors()
	tracer().Infof("run %s: %s after %v", rec.ID, rec.State, rec.Duration)

	r.mu.Lock()
	r.history = append(r.history, rec)
	r.mu.Unlock()
	return &rec, nil
}

// waitTerminal blocks until the engine leaves the Running/Paused states.
func (r *Runner) waitTerminal() interp.ExecutionState {
	for {
		s := r.engine.State()
		if s != interp.Running && s != interp.Paused {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// History returns the run records accumulated so far, oldest first.
func (r *Runner) History() []RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RunRecord, len(r.history))
	copy(out, r.history)
	return out
}
