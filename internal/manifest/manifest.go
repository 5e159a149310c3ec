package manifest

import (
	"fmt"
	"os"

	"howett.net/plist"
)

// FileName is the manifest file expected at the root of every bundle.
const FileName = "info.plist"

// Manifest is a bundle's metadata document. It is backed by the raw
// property-list mapping so keys the packager does not understand
// survive a load/save round trip untouched.
type Manifest struct {
	attrs map[string]any
}

// ReadError reports a missing or malformed manifest file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read manifest %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed manifest serialization or write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write manifest %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// New returns an empty manifest. Used by tests and fixtures.
func New() *Manifest {
	return &Manifest{attrs: make(map[string]any)}
}

// Load parses the property list at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	attrs := make(map[string]any)
	if _, err := plist.Unmarshal(data, &attrs); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return &Manifest{attrs: attrs}, nil
}

// Save serializes the manifest as an XML property list at path.
func (m *Manifest) Save(path string) error {
	data, err := plist.MarshalIndent(m.attrs, plist.XMLFormat, "\t")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Name returns the bundle's human-readable name.
func (m *Manifest) Name() string { return m.stringAttr("name") }

// Version returns the bundle's version tag, empty when unset.
func (m *Manifest) Version() string { return m.stringAttr("version") }

// Readme returns the bundled readme text.
func (m *Manifest) Readme() string { return m.stringAttr("readme") }

// Description returns the bundled description text.
func (m *Manifest) Description() string { return m.stringAttr("description") }

// BundleID returns the bundle identifier.
func (m *Manifest) BundleID() string { return m.stringAttr("bundleid") }

// WebAddress returns the bundle's web address.
func (m *Manifest) WebAddress() string { return m.stringAttr("webaddress") }

// CreatedBy returns the bundle author field.
func (m *Manifest) CreatedBy() string { return m.stringAttr("createdby") }

// Disabled reports whether the bundle is flagged disabled.
func (m *Manifest) Disabled() bool {
	v, _ := m.attrs["disabled"].(bool)
	return v
}

// Set assigns an arbitrary manifest key. Fixture helper; production
// code goes through the typed setters in overrides.go.
func (m *Manifest) Set(key string, value any) {
	m.attrs[key] = value
}

// Attr returns the raw value stored under key.
func (m *Manifest) Attr(key string) (any, bool) {
	v, ok := m.attrs[key]
	return v, ok
}

func (m *Manifest) stringAttr(key string) string {
	v, _ := m.attrs[key].(string)
	return v
}

// BindEntrypoint writes the keyword and uid binding onto the bundle's
// first object record. Bundles without objects are left unchanged.
func (m *Manifest) BindEntrypoint(keyword, uid string) {
	objects, _ := m.attrs["objects"].([]any)
	if len(objects) == 0 {
		return
	}
	first, ok := objects[0].(map[string]any)
	if !ok {
		return
	}
	cfg, ok := first["config"].(map[string]any)
	if !ok {
		cfg = make(map[string]any)
		first["config"] = cfg
	}
	cfg["keyword"] = keyword
	first["uid"] = uid
}

// EntrypointUID returns the uid bound to the first object, if any.
func (m *Manifest) EntrypointUID() string {
	objects, _ := m.attrs["objects"].([]any)
	if len(objects) == 0 {
		return ""
	}
	first, _ := objects[0].(map[string]any)
	uid, _ := first["uid"].(string)
	return uid
}

// RedactExports clears, in the variables mapping, the value of every
// key flagged do-not-export. The flag set is accepted in both mapping
// and list form; redaction is idempotent.
func (m *Manifest) RedactExports() {
	variables, _ := m.attrs["variables"].(map[string]any)
	if len(variables) == 0 {
		return
	}
	for _, key := range m.noExportKeys() {
		if _, ok := variables[key]; ok {
			variables[key] = ""
		}
	}
}

func (m *Manifest) noExportKeys() []string {
	switch flagged := m.attrs["variablesdontexport"].(type) {
	case map[string]any:
		keys := make([]string, 0, len(flagged))
		for key := range flagged {
			keys = append(keys, key)
		}
		return keys
	case []any:
		keys := make([]string, 0, len(flagged))
		for _, entry := range flagged {
			if key, ok := entry.(string); ok {
				keys = append(keys, key)
			}
		}
		return keys
	default:
		return nil
	}
}
