package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output should mention target: %q", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[archive]") {
		t.Error("sample config missing [archive] section")
	}
}

func TestConfigInitRefusesExisting(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# mine"), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}

	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal without --force")
	}

	if _, err := executeCommand(t, "config", "init", "--path", target, "--force"); err != nil {
		t.Fatalf("forced init: %v", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) == "# mine" {
		t.Error("forced init did not replace file")
	}
}

func TestConfigValidate(t *testing.T) {
	cfgPath := writeTestConfig(t, "")
	out, err := executeCommand(t, "-c", cfgPath, "config", "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "valid") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigValidateRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[archive]\nengine = \"rar\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := executeCommand(t, "-c", cfgPath, "config", "validate"); err == nil {
		t.Fatal("expected validation failure")
	}
}
