// Package logging builds the slog loggers used across wfpack. Console
// output is a compact single-line format with optional ANSI color;
// JSON output is the stock slog JSON handler with normalized keys.
// Loggers are passed explicitly, never stored in package globals.
package logging
