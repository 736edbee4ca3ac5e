// Package config provides configuration management for the gridcalc CLI.
//
// Configuration is loaded from gridcalc.yaml (or gridcalc.yml), environment
// variables with the GRIDCALC_ prefix, and command-line flags, in increasing
// order of precedence.
package config

// Config holds all CLI configuration options.
type Config struct {
	ModelPath    string            `koanf:"model"`
	Scenario     string            `koanf:"scenario"`
	StatePath    string            `koanf:"state_path"`
	OutputFormat string            `koanf:"output"`
	Functions    string            `koanf:"functions"`
	Precision    int               `koanf:"precision"`
	Verbose      bool              `koanf:"verbose"`
	Overrides    map[string]string `koanf:"overrides"`

	// ProjectRoot is the directory all relative paths resolve against.
	// Set during loading, never read from the config file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultModelPath = "model.yaml"
	DefaultStateFile = ".gridcalc/state.db"
	DefaultOutput    = "table"
	DefaultFunctions = "full"
	DefaultPrecision = 2
)
