package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"

	"wfpack/internal/logging"
	"wfpack/internal/manifest"
)

// Extension is the artifact file extension.
const Extension = ".alfredworkflow"

// ErrDestinationExists reports a refused overwrite. It marks the build
// failed without aborting the rest of the run.
var ErrDestinationExists = errors.New("destination already exists")

// Archiver produces a compressed archive of an entire directory tree.
// quiet suppresses only the archiver's own chatter, never log level.
type Archiver interface {
	Archive(ctx context.Context, sourceDir, destPath string, quiet bool) error
}

// ArtifactName computes the destination filename for a bundle:
// NFC-normalized name, a -version suffix when version is non-empty,
// and the fixed extension.
func ArtifactName(name, version string) string {
	base := norm.NFC.String(strings.TrimSpace(name))
	if version = strings.TrimSpace(version); version != "" {
		base += "-" + version
	}
	return base + Extension
}

// Builder finalizes a staged bundle copy into an archive artifact.
type Builder struct {
	Archiver Archiver
	Logger   *slog.Logger
}

// Build reloads the staged manifest, applies export redaction to the
// staged copy only, enforces the overwrite policy, and archives the
// staged tree. It returns the final artifact path.
func (b *Builder) Build(ctx context.Context, stagedDir, outputDir, name string, overwrite, verbose bool) (string, error) {
	logger := b.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	manifestPath := filepath.Join(stagedDir, manifest.FileName)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return "", err
	}

	m.RedactExports()
	if err := m.Save(manifestPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	dest := filepath.Join(outputDir, ArtifactName(name, m.Version()))
	if _, err := os.Stat(dest); err == nil {
		if !overwrite {
			return "", fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		}
		if err := os.Remove(dest); err != nil {
			return "", fmt.Errorf("remove existing artifact: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat destination: %w", err)
	}

	if err := b.Archiver.Archive(ctx, stagedDir, dest, !verbose); err != nil {
		return "", err
	}

	size := int64(0)
	if info, err := os.Stat(dest); err == nil {
		size = info.Size()
	}
	logger.InfoContext(ctx, "wrote artifact",
		slog.String(logging.FieldArtifact, dest),
		slog.String("size", humanize.Bytes(uint64(size))))

	return dest, nil
}
