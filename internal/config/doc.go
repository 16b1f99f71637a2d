// Package config loads, normalizes, and validates slideset configuration.
//
// Configuration is optional: every field has a default that reproduces the
// fixed relative layout the tools have always used (presentations/, images/,
// ./annotations.csv). A TOML file may override any of them. Load searches an
// explicit path first, then ./slideset.toml, then
// ~/.config/slideset/config.toml, and falls back to defaults when none exist.
//
// Loading runs in three steps: decode over Default(), normalize (expand paths,
// trim and lower-case enumerations), then Validate. Callers receive a fully
// resolved Config and never need to re-check values.
package config
