package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagSegments = flag.Int("segments", 0, "Radial segments of the knob body")
	flagMesh     = flag.String("mesh", "", "Collar mesh to import (STL or GLB)")
	flagOut      = flag.String("out", "", "Output directory for exported meshes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSegments > 0 {
		cfg.Knob.RadialSegments = *flagSegments
	}
	if *flagMesh != "" {
		cfg.Collar.Import.MeshPath = *flagMesh
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
}
