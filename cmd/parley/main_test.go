package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("PARLEY_DB_PATH", filepath.Join(t.TempDir(), "parley.db"))
	t.Setenv("PARLEY_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootFlags.caseID, rootFlags.caseFile, rootFlags.dbPath = "", "", ""
		simulateFlags.script, simulateFlags.runs, simulateFlags.seed = "negotiate", 1, 0
		simulateFlags.persist, simulateFlags.verbose = false, false
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("parley %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestCasesCommand(t *testing.T) {
	out := execute(t, "cases")
	for _, want := range []string{"ferryman", "lamplighter", "ritual x4", "no ritual"} {
		if !strings.Contains(out, want) {
			t.Errorf("cases output missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateCarriesLedger(t *testing.T) {
	out := execute(t, "simulate", "--script=slay", "--runs=2", "--seed=3")
	if !strings.Contains(out, "Run 2 (seed 4") {
		t.Errorf("second run missing:\n%s", out)
	}
	if !strings.Contains(out, "distortion=2") {
		t.Errorf("ledger should carry across runs:\n%s", out)
	}
}

func TestSimulatePersistThenShowAndClear(t *testing.T) {
	db := filepath.Join(t.TempDir(), "save.db")
	execute(t, "simulate", "--script=negotiate", "--seed=1", "--persist", "--db", db)

	out := execute(t, "checkpoint", "show", "--db", db)
	for _, want := range []string{"FERRY_END", "Interrupted: false", "Outcome:     contract", "boon=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("checkpoint show missing %q:\n%s", want, out)
		}
	}

	execute(t, "checkpoint", "clear", "--db", db)
	out = execute(t, "checkpoint", "show", "--db", db)
	if !strings.Contains(out, "No checkpoint saved.") {
		t.Errorf("checkpoint should be cleared:\n%s", out)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"play": false, "simulate": false, "checkpoint": false, "cases": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
