package deps

import (
	"testing"

	"wfpack/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "shell", Command: "sh"},
		{Name: "ghost", Command: "wfpack-no-such-binary"},
		{Name: "blank", Command: "   "},
	})
	if len(statuses) != 3 {
		t.Fatalf("got %d statuses", len(statuses))
	}
	if !statuses[0].Available {
		t.Errorf("sh should be available: %s", statuses[0].Detail)
	}
	if statuses[1].Available {
		t.Error("missing binary reported available")
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Errorf("blank command status = %+v", statuses[2])
	}
}

func TestForConfigOptionality(t *testing.T) {
	cfg := config.Default()
	cfg.Archive.Engine = "internal"
	reqs := ForConfig(&cfg)
	if len(reqs) != 1 || !reqs[0].Optional {
		t.Errorf("zip should be optional with internal engine: %+v", reqs)
	}

	cfg.Archive.Engine = "tool"
	cfg.Archive.ZipCommand = "7z"
	reqs = ForConfig(&cfg)
	if reqs[0].Optional {
		t.Error("zip should be required with tool engine")
	}
	if reqs[0].Command != "7z" {
		t.Errorf("command = %q", reqs[0].Command)
	}
}
