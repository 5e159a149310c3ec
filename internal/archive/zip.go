package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"wfpack/internal/logging"
)

// Zip is the built-in library archiver. It writes a standard deflate
// zip with relative paths preserved.
type Zip struct {
	// Level is the deflate level, 1 (fastest) to 9 (best).
	Level int
	// Logger receives per-file chatter when quiet is false.
	Logger *slog.Logger
}

// Archive implements Archiver. A failed write removes the partial
// destination file.
func (z Zip) Archive(ctx context.Context, sourceDir, destPath string, quiet bool) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	err = z.write(ctx, out, sourceDir, quiet)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(destPath)
		return err
	}
	return nil
}

func (z Zip) write(ctx context.Context, out io.Writer, sourceDir string, quiet bool) error {
	logger := z.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	level := z.Level
	if level < 1 || level > 9 {
		level = flate.DefaultCompression
	}

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	walkErr := filepath.WalkDir(sourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}

		if entry.IsDir() {
			header, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			header.Name = rel + "/"
			_, err = zw.CreateHeader(header)
			return err
		}

		if !quiet {
			logging.Debugf(ctx, logger, "adding %s", rel)
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = rel
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, in)
		in.Close()
		return err
	})

	if closeErr := zw.Close(); walkErr == nil {
		walkErr = closeErr
	}
	if walkErr != nil {
		return fmt.Errorf("write archive: %w", walkErr)
	}
	return nil
}
