// Package config loads, normalizes, and validates archconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and fills archive tool locations from
// ARCHCONV_UNRAR, ARCHCONV_RAR, ARCHCONV_7Z, or the PATH. The Config type
// centralizes every knob the CLI needs so the temp root, timeouts, and tool
// paths are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
