package config

import (
	"fmt"
	"os"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model is required")
	}
	switch c.OutputFormat {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("invalid output format %q: must be table, json, or csv", c.OutputFormat)
	}
	switch c.Functions {
	case "full", "demo":
	default:
		return fmt.Errorf("invalid function set %q: must be full or demo", c.Functions)
	}
	if c.Precision < 0 || c.Precision > 15 {
		return fmt.Errorf("precision must be between 0 and 15, got %d", c.Precision)
	}
	return nil
}

// ValidateModelFile checks that the model file exists.
// Kept separate from Validate so help commands work without a model on disk.
func (c *Config) ValidateModelFile() error {
	if _, err := os.Stat(c.ModelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file does not exist: %s\nHint: create the file or use --model to specify a different path", c.ModelPath)
	}
	return nil
}
