package staging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wfpack/internal/fileutil"
)

// DirInfo describes one staging directory.
type DirInfo struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size_bytes"`
	Modified time.Time `json:"modified"`
}

// List enumerates wfpack staging directories under root, newest first.
func List(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	dirs := make([]DirInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "wfpack-") {
			continue
		}
		path := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		size, err := fileutil.DirSize(path)
		if err != nil {
			size = 0
		}
		dirs = append(dirs, DirInfo{Path: path, Size: size, Modified: info.ModTime()})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Modified.After(dirs[j].Modified) })
	return dirs, nil
}
