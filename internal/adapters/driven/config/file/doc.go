// Package file provides the TOML configuration file and the loader that
// turns it into validated domain.Settings.
//
// Precedence, lowest first: built-in defaults, config.toml, environment
// variables, command-line flags (applied by the CLI).
package file
