package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/knobsmith/internal/params"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Knob != params.DefaultKnob() {
		t.Error("expected the stock knob")
	}
	if cfg.Collar != params.DefaultCollar() {
		t.Error("expected the stock collar")
	}
	if cfg.Output.Dir != "." {
		t.Errorf("expected output dir '.', got %s", cfg.Output.Dir)
	}
	if cfg.Output.ASCII {
		t.Error("expected binary STL output by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
knob:
  radius: 180
  radial_segments: 96
  grip:
    type: diamond
    density: 24
  indicator:
    shape: needle
    relief: raised
    profile: straight
    cad_walls: true

collar:
  bite_angle: 1.2
  import:
    mesh_path: "assets/serpent.glb"
    mirror:
      x: true

output:
  dir: "build/meshes"
  ascii: true

logging:
  level: "debug"
  log_file: "knobgen.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Knob.Radius != 180 {
		t.Errorf("expected radius 180, got %v", cfg.Knob.Radius)
	}
	if cfg.Knob.RadialSegments != 96 {
		t.Errorf("expected 96 segments, got %d", cfg.Knob.RadialSegments)
	}
	if cfg.Knob.Grip.Type != params.GripDiamond {
		t.Errorf("expected diamond grip, got %v", cfg.Knob.Grip.Type)
	}
	if cfg.Knob.Indicator.Shape != params.IndicatorNeedle || cfg.Knob.Indicator.Relief != params.ReliefRaised {
		t.Errorf("unexpected indicator %+v", cfg.Knob.Indicator)
	}
	if !cfg.Knob.Indicator.CadWalls {
		t.Error("expected cad_walls to be true")
	}
	// Keys absent from the file keep their defaults.
	if cfg.Knob.Height != params.DefaultKnob().Height {
		t.Errorf("expected default height, got %v", cfg.Knob.Height)
	}
	if cfg.Knob.Grip.Depth != params.DefaultKnob().Grip.Depth {
		t.Errorf("expected default grip depth, got %v", cfg.Knob.Grip.Depth)
	}

	if cfg.Collar.BiteAngle != 1.2 {
		t.Errorf("expected bite angle 1.2, got %v", cfg.Collar.BiteAngle)
	}
	if cfg.Collar.Import.MeshPath != "assets/serpent.glb" {
		t.Errorf("expected mesh path, got %s", cfg.Collar.Import.MeshPath)
	}
	if !cfg.Collar.Import.Mirror.X || cfg.Collar.Import.Mirror.Y {
		t.Errorf("unexpected mirror %+v", cfg.Collar.Import.Mirror)
	}
	if cfg.Collar.Import.Scale != 1 {
		t.Errorf("expected default import scale, got %v", cfg.Collar.Import.Scale)
	}

	if cfg.Output.Dir != "build/meshes" || !cfg.Output.ASCII {
		t.Errorf("unexpected output %+v", cfg.Output)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "knobgen.log" {
		t.Errorf("expected log file 'knobgen.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":       "knob:\n  radius: not a number\n  invalid syntax here\n",
		"unknown key":  "knob:\n  radiuss: 10\n",
		"unknown enum": "knob:\n  grip:\n    type: spiral\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty config should load: %v", err)
	}
	if cfg.Knob != params.DefaultKnob() {
		t.Error("empty config should keep defaults")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "knobgen.yaml")
	if err := os.WriteFile(configPath, []byte("knob:\n  radius: 100\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find knobgen.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "segments flag",
			setup: func() { *flagSegments = 64 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Knob.RadialSegments != 64 {
					t.Errorf("expected 64 segments, got %d", cfg.Knob.RadialSegments)
				}
			},
			teardown: func() { *flagSegments = 0 },
		},
		{
			name:  "mesh flag",
			setup: func() { *flagMesh = "collar.stl" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Collar.Import.MeshPath != "collar.stl" {
					t.Errorf("expected mesh path collar.stl, got %s", cfg.Collar.Import.MeshPath)
				}
			},
			teardown: func() { *flagMesh = "" },
		},
		{
			name:  "out flag",
			setup: func() { *flagOut = "dist" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Output.Dir != "dist" {
					t.Errorf("expected output dir dist, got %s", cfg.Output.Dir)
				}
			},
			teardown: func() { *flagOut = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriorityAndClamp(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
knob:
  radial_segments: 48
  radius: 150
  bevel: -5
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagSegments = 120
	defer func() {
		*flagConfig = ""
		*flagSegments = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Knob.RadialSegments != 120 {
		t.Errorf("expected 120 segments from flag, got %d", cfg.Knob.RadialSegments)
	}
	if cfg.Knob.Radius != 150 {
		t.Errorf("expected radius 150 from file, got %v", cfg.Knob.Radius)
	}
	if cfg.Knob.Bevel != 0 {
		t.Errorf("expected bevel clamped to 0, got %v", cfg.Knob.Bevel)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Knob.Grip.Type = params.GripHex
	cfg.Collar.Import.MeshPath = "ring.stl"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := &Config{}
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if loaded.Knob != cfg.Knob || loaded.Collar != cfg.Collar || loaded.Output != cfg.Output {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}
