// Package config handles knobgen configuration loading and management.
package config

import "github.com/Faultbox/knobsmith/internal/params"

// Config holds the knob and collar parameters plus tool settings.
type Config struct {
	Knob    params.Knob   `yaml:"knob"`
	Collar  params.Collar `yaml:"collar"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig holds mesh export settings.
type OutputConfig struct {
	Dir   string `yaml:"dir"`   // Directory for exported meshes
	ASCII bool   `yaml:"ascii"` // Write ASCII instead of binary STL
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock knob and collar.
func Default() *Config {
	return &Config{
		Knob:   params.DefaultKnob(),
		Collar: params.DefaultCollar(),
		Output: OutputConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Clamp limits the knob and collar parameters to their documented ranges.
func (c *Config) Clamp() {
	c.Knob.Clamp()
	c.Collar.Clamp()
}
