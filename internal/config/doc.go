// Package config loads, validates, and normalizes the scribe TOML
// configuration.
//
// Load resolves the config path (flag override, then ~/.config/scribe),
// applies defaults for missing values, expands ~ in paths, and validates the
// result. A sample config is embedded for `scribe config init`.
package config
