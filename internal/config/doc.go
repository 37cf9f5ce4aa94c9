// Package config loads picoTVKit settings from a YAML file. Command-line
// flags are applied on top of the loaded values by the caller.
package config
