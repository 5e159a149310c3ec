package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"wfpack/internal/fileutil"
)

// Overrides is the caller-supplied override set applied to a manifest
// before packaging. Field semantics are deliberately asymmetric:
//
//   - Name is required and always written.
//   - Version, CreatedBy, BundleID, and WebAddress are written only
//     when non-empty; BundleID and WebAddress are lowercased first.
//   - Disabled is written only when true.
//   - ReadmePath and DescriptionPath are ALWAYS recomputed from the
//     resolved files, trimmed, empty when the file is absent —
//     regardless of whether the caller overrode the paths.
type Overrides struct {
	Name       string
	Version    string
	CreatedBy  string
	BundleID   string
	WebAddress string
	Disabled   bool

	// ReadmePath and DescriptionPath may be relative, in which case
	// they resolve against the bundle directory.
	ReadmePath      string
	DescriptionPath string
}

// Validate checks the override set before any manifest is touched.
func (o Overrides) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("bundle name is required")
	}
	return nil
}

// Apply rewrites m in place per the override semantics above and binds
// the entrypoint object's keyword and derived uid. bundleDir anchors
// relative readme/description paths.
func Apply(m *Manifest, o Overrides, bundleDir string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	m.Set("name", o.Name)
	if o.Version != "" {
		m.Set("version", o.Version)
	}
	if o.CreatedBy != "" {
		m.Set("createdby", o.CreatedBy)
	}
	if o.BundleID != "" {
		m.Set("bundleid", strings.ToLower(o.BundleID))
	}
	if o.WebAddress != "" {
		m.Set("webaddress", strings.ToLower(o.WebAddress))
	}
	if o.Disabled {
		m.Set("disabled", true)
	}

	readme, err := fileutil.ReadTrimmed(resolvePath(bundleDir, o.ReadmePath))
	if err != nil {
		return fmt.Errorf("read readme source: %w", err)
	}
	m.Set("readme", readme)

	description, err := fileutil.ReadTrimmed(resolvePath(bundleDir, o.DescriptionPath))
	if err != nil {
		return fmt.Errorf("read description source: %w", err)
	}
	m.Set("description", description)

	m.BindEntrypoint(o.Name, EntrypointID(o.Name))
	return nil
}

func resolvePath(bundleDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(bundleDir, path)
}
