// Package config loads, normalizes, and validates wfpack's TOML
// configuration. Configuration is resolved from an explicit path, then
// ~/.config/wfpack/config.toml, then a project-local wfpack.toml;
// missing files fall back to defaults.
package config
