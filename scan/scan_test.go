package scan

import (
	"reflect"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var inputLines = []string{
	"MOVE gantry TO node_4 IN probe_graph",
	`PROMPT "Confirm part loaded"`,
	"SET $x = 2 + 3",
	"   WAIT\t500  ",
	"",
}

var wantTokens = [][]string{
	{"MOVE", "gantry", "TO", "node_4", "IN", "probe_graph"},
	{"PROMPT", `"Confirm part loaded"`},
	{"SET", "$x", "=", "2", "+", "3"},
	{"WAIT", "500"},
	nil,
}

func TestTokenize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.scan")
	defer teardown()
	//
	for i, line := range inputLines {
		got := Tokenize(line)
		if !reflect.DeepEqual(got, wantTokens[i]) {
			t.Errorf("Tokenize(%q) = %v, want %v", line, got, wantTokens[i])
		}
	}
}

func TestTokenizeQuotesKeepWhitespace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.scan")
	defer teardown()
	//
	got := Tokenize(`PRINT "two  spaces kept"`)
	if len(got) != 2 || got[1] != `"two  spaces kept"` {
		t.Errorf("quoted whitespace not preserved: %v", got)
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "aascript.scan")
	defer teardown()
	//
	got := Tokenize(`PRINT "oops no close`)
	want := []string{"PRINT", `"oops no close`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestHandSplitMatchesTokenize(t *testing.T) {
	for _, line := range inputLines {
		if !reflect.DeepEqual(Tokenize(line), handSplit(line)) {
			t.Errorf("DFA and fallback disagree on %q", line)
		}
	}
}
