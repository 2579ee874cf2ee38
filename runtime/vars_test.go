package runtime

import (
	"testing"
)

func TestNewVarTable(t *testing.T) {
	vars := NewVarTable()
	if vars == nil {
		t.Error("no variable table created")
	}
}

func TestNewVar(t *testing.T) {
	vars := NewVarTable()
	v, _ := vars.DefineVar("$x")
	if v == nil {
		t.Error("no variable created for table")
	}
	v.Value = 5
	if got, _ := vars.Lookup("$x"); got != 5 {
		t.Errorf("lookup after write returned %g", got)
	}
}

func TestResolveVar(t *testing.T) {
	vars := NewVarTable()
	v, _ := vars.DefineVar("$x")
	if got := vars.ResolveVar(v.Name()); got == nil {
		t.Error("cannot find stored variable in table")
	}
}

func TestResolveOrDefineVar(t *testing.T) {
	vars := NewVarTable()
	v, _ := vars.DefineVar("$x")
	if _, found := vars.ResolveOrDefineVar(v.Name()); !found {
		t.Error("cannot find stored variable in table")
	}
}

func TestDefineVarReplaces(t *testing.T) {
	vars := NewVarTable()
	v, _ := vars.DefineVar("$x")
	if _, old := vars.DefineVar("$x"); old != v {
		t.Error("variable should have been replaced")
	}
}

func TestLookupUndefined(t *testing.T) {
	vars := NewVarTable()
	if v, ok := vars.Lookup("$nope"); ok || v != 0 {
		t.Errorf("undefined variable should read as 0, got %g (%v)", v, ok)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	vars := NewVarTable()
	vars.Set("$x", 1)
	snap := vars.Snapshot()
	vars.Set("$x", 2)
	if snap["$x"] != 1 {
		t.Error("snapshot should not observe later writes")
	}
}

func TestFrameStack(t *testing.T) {
	fst := new(FrameStack)
	if !fst.IsEmpty() {
		t.Error("new frame stack should be empty")
	}
	root := fst.PushNewFrame("program", 0, 10, 10)
	loop := fst.PushNewFrame("for", 3, 7, 8)
	if fst.Depth() != 2 {
		t.Errorf("depth = %d, want 2", fst.Depth())
	}
	if fst.Current() != loop || fst.Root() != root {
		t.Error("TOS/root frames mixed up")
	}
	if !root.IsRoot() || loop.IsRoot() {
		t.Error("IsRoot predicate wrong")
	}
	loop.PC = 7
	if !loop.Done() {
		t.Error("frame with pc at End should be done")
	}
	if fst.PopFrame() != loop {
		t.Error("pop should return TOS")
	}
	if fst.Current() != root {
		t.Error("pop should restore parent frame")
	}
}
