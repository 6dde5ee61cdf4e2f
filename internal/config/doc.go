// Package config provides the layered configuration of indentscope.
//
// Layers are merged from lowest to highest priority:
//
//	call overrides        1000
//	document overrides     700
//	environment and flags  500
//	setup()                101
//	user files             100
//	builtin defaults         0
//
// The merged map is decoded into Settings with mapstructure and validated.
// Unknown keys and invalid values are rejected with a *ValidationError.
//
// Sub-packages:
//
//   - layer: prioritized nested maps and deep merging
//   - loader: TOML and YAML file parsing
//   - watcher: fsnotify based live reload
package config
