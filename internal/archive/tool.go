package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ToolError reports a non-zero exit from the external archiving tool.
type ToolError struct {
	ExitCode int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("archive tool exited with status %d", e.ExitCode)
}

// Tool archives via an external zip command. The command runs with the
// staging directory as its working directory so relative paths land at
// the archive root; the process-wide working directory never changes.
type Tool struct {
	Command string
}

// Archive implements Archiver.
func (t Tool) Archive(ctx context.Context, sourceDir, destPath string, quiet bool) error {
	command := t.Command
	if command == "" {
		command = "zip"
	}

	dest, err := filepath.Abs(destPath)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	args := []string{"-r"}
	if quiet {
		args = append(args, "-q")
	}
	args = append(args, dest, ".")

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = sourceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ToolError{ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("run %s: %w", command, err)
	}
	return nil
}
