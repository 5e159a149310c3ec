package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"wfpack/internal/exclude"
	"wfpack/internal/fileutil"
	"wfpack/internal/logging"
)

// Error reports an I/O failure while assembling a staged copy.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("staging %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Dir is an exclusively-owned staged copy of a bundle. Close removes
// the entire tree; callers defer it on every path.
type Dir struct {
	path    string
	cleaned bool
}

// Path returns the staged tree's root directory.
func (d *Dir) Path() string { return d.path }

// Close recursively deletes the staged tree. Safe to call twice.
func (d *Dir) Close() error {
	if d == nil || d.cleaned {
		return nil
	}
	d.cleaned = true
	return os.RemoveAll(d.path)
}

// Stage copies sourceDir into a fresh temporary directory under root,
// skipping entries the filter excludes at every depth. On any copy
// failure the partial tree is removed before the error returns.
func Stage(ctx context.Context, sourceDir, root string, filter *exclude.Filter, logger *slog.Logger) (*Dir, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, &Error{Path: root, Err: err}
		}
	}

	tmp, err := os.MkdirTemp(root, "wfpack-")
	if err != nil {
		return nil, &Error{Path: root, Err: err}
	}
	dir := &Dir{path: tmp}

	if err := copyTree(ctx, sourceDir, tmp, filter); err != nil {
		_ = dir.Close()
		return nil, err
	}

	logger.DebugContext(ctx, "staged bundle copy",
		slog.String(logging.FieldBundle, filepath.Base(sourceDir)),
		slog.String("staging_dir", tmp))
	return dir, nil
}

func copyTree(ctx context.Context, src, dst string, filter *exclude.Filter) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return &Error{Path: src, Err: err}
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return &Error{Path: src, Err: err}
		}
		name := entry.Name()
		if filter.Skip(name) {
			continue
		}

		srcPath := filepath.Join(src, name)
		dstPath := filepath.Join(dst, name)

		// Symlinks are followed; a dangling link is a copy failure.
		info, err := os.Stat(srcPath)
		if err != nil {
			return &Error{Path: srcPath, Err: err}
		}

		if info.IsDir() {
			if err := os.Mkdir(dstPath, 0o755); err != nil {
				return &Error{Path: dstPath, Err: err}
			}
			if err := copyTree(ctx, srcPath, dstPath, filter); err != nil {
				return err
			}
			continue
		}

		if err := fileutil.CopyFileMode(srcPath, dstPath, info.Mode().Perm()); err != nil {
			return &Error{Path: srcPath, Err: err}
		}
	}
	return nil
}
