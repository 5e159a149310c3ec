// Package deps reports the availability of external binaries wfpack
// may shell out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"wfpack/internal/config"
)

// Requirement defines an external dependency wfpack relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig returns the requirements implied by the configuration. The
// external zip tool is mandatory only when the tool engine is active.
func ForConfig(cfg *config.Config) []Requirement {
	optional := true
	if cfg != nil && cfg.Archive.Engine == "tool" {
		optional = false
	}
	command := "zip"
	if cfg != nil {
		command = cfg.Archive.ZipCommand
	}
	return []Requirement{
		{
			Name:        "zip",
			Command:     command,
			Description: "external archiving tool (archive.engine = \"tool\")",
			Optional:    optional,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
