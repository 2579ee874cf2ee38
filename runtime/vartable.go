package runtime

import (
	"fmt"
)

// Variable table for script runs. One flat namespace per run; variable
// names include the '$' sigil ("$count", "$offset_z").

// --- Vars -------------------------------------------------------

// Var is a variable binding to be stored into a variable table.
type Var struct {
	name  string
	Value float64
	UData interface{} // user data
}

// NewVar creates a new variable binding with value 0.
func NewVar(nm string) *Var {
	return &Var{name: nm}
}

// String is a debug Stringer for variable bindings.
func (v *Var) String() string {
	return fmt.Sprintf("<var '%s' = %g>", v.name, v.Value)
}

// Name gets the variable's name, including the sigil.
func (v *Var) Name() string {
	return v.name
}

// === Variable Tables =======================================================

// VarTable is a table of variable bindings (map-like semantics).
type VarTable struct {
	table map[string]*Var
}

// NewVarTable creates an empty variable table.
func NewVarTable() *VarTable {
	return &VarTable{table: make(map[string]*Var)}
}

// ResolveVar checks for a variable in the table.
// Returns a binding or nil.
func (t *VarTable) ResolveVar(name string) *Var {
	return t.table[name]
}

// ResolveOrDefineVar finds a variable in the table, inserting a new zero
// binding if not found. Returns the binding and a flag signalling whether
// the variable had already been present.
func (t *VarTable) ResolveOrDefineVar(name string) (*Var, bool) {
	if len(name) == 0 {
		return nil, false
	}
	v := t.ResolveVar(name)
	if v == nil {
		v, _ = t.DefineVar(name)
		return v, false
	}
	return v, true
}

// DefineVar creates a new binding to store into the table. The name may not
// be empty. Overwrites an existing binding with this name, if any.
// Returns the new binding and the previously stored one (or nil).
func (t *VarTable) DefineVar(name string) (*Var, *Var) {
	if len(name) == 0 {
		return nil, nil
	}
	v := NewVar(name)
	old := t.ResolveVar(name)
	t.table[name] = v
	return v, old
}

// Set assigns a value, defining the variable on first use.
func (t *VarTable) Set(name string, value float64) {
	v, _ := t.ResolveOrDefineVar(name)
	if v == nil {
		return
	}
	v.Value = value
	tracer().Debugf("set %s = %g", name, value)
}

// Lookup returns the current value of a variable and whether it is defined.
// Undefined variables read as 0. Lookup makes VarTable usable as an
// expression resolver.
func (t *VarTable) Lookup(name string) (float64, bool) {
	v := t.ResolveVar(name)
	if v == nil {
		return 0, false
	}
	return v.Value, true
}

// Size counts the bindings in a variable table.
func (t *VarTable) Size() int {
	return len(t.table)
}

// Each iterates over each binding in the table, executing a mapper function.
func (t *VarTable) Each(mapper func(string, float64)) {
	for k, v := range t.table {
		mapper(k, v.Value)
	}
}

// Snapshot returns a copy of the current bindings, safe to hand to other
// goroutines.
func (t *VarTable) Snapshot() map[string]float64 {
	m := make(map[string]float64, len(t.table))
	for k, v := range t.table {
		m[k] = v.Value
	}
	return m
}
