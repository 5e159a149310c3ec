// Package manifest models a bundle's info.plist metadata document and
// the transformations the packager applies to it: override application,
// deterministic entrypoint identifier derivation, and export
// redaction. Unknown manifest keys pass through untouched.
package manifest
