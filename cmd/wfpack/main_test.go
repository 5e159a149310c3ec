package main

import (
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"build", "config", "history", "staging", "doctor"} {
		findSubcommand(t, root, name)
	}
}

func TestBuildRequiresName(t *testing.T) {
	cfgPath := writeTestConfig(t, "")
	_, err := executeCommand(t, "-c", cfgPath, "build", t.TempDir())
	if err == nil {
		t.Fatal("expected error when --name is missing")
	}
}

func TestBuildRequiresBundleArgs(t *testing.T) {
	cfgPath := writeTestConfig(t, "")
	_, err := executeCommand(t, "-c", cfgPath, "build", "-n", "Demo")
	if err == nil {
		t.Fatal("expected error when no bundle directories are given")
	}
}
