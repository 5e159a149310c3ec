// Package archive turns staged bundle copies into .alfredworkflow
// artifacts. The Builder owns finalization (redaction, naming,
// overwrite policy); the Archiver interface isolates the actual zip
// production so the built-in writer and an external zip tool are
// interchangeable.
package archive
