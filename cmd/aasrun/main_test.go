package main

import (
	"testing"

	"github.com/npillmayer/schuko/tracing"
)

func TestInitTracingInstallsBackend(t *testing.T) {
	initTracing("Debug")
	// The default selector hands out no-op tracers, which ignore
	// SetTraceLevel and always report LevelError.
	if lvl := tracing.Select("aascript.interp").GetTraceLevel(); lvl != tracing.LevelDebug {
		t.Errorf("trace level is %s, tracing backend not installed", lvl)
	}
}
