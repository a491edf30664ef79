// knobgen builds knob and collar meshes from a config file and exports them
// as STL for inspection.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/knobsmith/internal/collar"
	"github.com/Faultbox/knobsmith/internal/config"
	"github.com/Faultbox/knobsmith/internal/importer"
	"github.com/Faultbox/knobsmith/internal/knob"
	"github.com/Faultbox/knobsmith/internal/logger"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "body":
		err = cmdBody(cfg)
	case "collar":
		err = cmdCollar(cfg)
	case "import":
		err = cmdImport(cfg, args)
	case "info":
		err = cmdInfo(args)
	case "defaults":
		err = cmdDefaults(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `knobgen - knob and collar mesh generator

Usage:
  knobgen [flags] <command> [args]

Commands:
  body                     Build the knob body and export knob.stl
  collar                   Build the procedural collar and export collar.stl
  import [file]            Import a collar mesh (STL/GLB) and export imported.stl
  info <file>              Show triangle counts and import diagnostics for a file
  defaults [file]          Write the effective config (default: user config dir)

Flags:`)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
Examples:
  knobgen -segments 96 body
  knobgen -config knobgen.yaml -out build collar
  knobgen -mesh serpent.glb import`)
}

func cmdBody(cfg *config.Config) error {
	start := time.Now()
	m := knob.Build(cfg.Knob)
	logger.Info("knob built",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	layout := knob.Layout(cfg.Knob)
	logger.Sugar.Debugf("layout: %+v", layout)
	return export(cfg, m, "knob.stl")
}

func cmdCollar(cfg *config.Config) error {
	start := time.Now()
	m := collar.Build(cfg.Knob, cfg.Collar)
	logger.Info("collar built",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return export(cfg, m, "collar.stl")
}

func cmdImport(cfg *config.Config, args []string) error {
	path := cfg.Collar.Import.MeshPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no mesh to import: pass a file or -mesh")
	}

	a := importer.New()
	m := a.Load(path, cfg.Knob, cfg.Collar)
	if m == nil {
		return fmt.Errorf("import of %s failed", path)
	}
	logger.Info("collar imported",
		zap.String("path", path),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
	)
	return export(cfg, m, "imported.stl")
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: knobgen info <file>")
	}
	path := args[0]

	prep, err := importer.New().Prepare(path)
	if err != nil {
		return err
	}
	w, e, o := prep.Winding, prep.Extraction, prep.Orientation

	fmt.Printf("File:        %s\n", path)
	fmt.Printf("Triangles:   %d\n", prep.TriangleCount())
	fmt.Printf("Vertices:    %d\n", len(prep.Positions))
	fmt.Println()
	fmt.Println("Winding:")
	fmt.Printf("  components   %d\n", w.Components)
	fmt.Printf("  flipped      %d\n", w.Flipped)
	fmt.Printf("  inverted     %d\n", w.Inverted)
	fmt.Printf("  non-manifold %d\n", w.NonManifoldEdges)
	fmt.Println("Extraction:")
	fmt.Printf("  components   %d\n", e.Components)
	if e.KeptWhole {
		fmt.Println("  selected     (whole mesh)")
	} else {
		fmt.Printf("  selected     #%d\n", e.Selected)
	}
	fmt.Printf("  hole ratio   %.3f\n", e.HoleRatio)
	fmt.Printf("  score        %.3f\n", e.Score)
	fmt.Println("Orientation:")
	fmt.Printf("  permutation  %v\n", o.Permutation)
	fmt.Printf("  signs        %v\n", o.Signs)
	fmt.Printf("  flatness     %.3f\n", o.Score)
	fmt.Printf("  flipped      %v\n", o.Flipped)
	return nil
}

func cmdDefaults(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return cfg.SaveTo(args[0])
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	logger.Info("config saved", zap.String("dir", config.ConfigDir()))
	return nil
}

func export(cfg *config.Config, m *mesh.Mesh, name string) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid mesh: %w", err)
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(cfg.Output.Dir, name)
	stats, err := writeSTL(m, path, cfg.Output.ASCII)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logger.Info("mesh exported",
		zap.String("path", path),
		zap.Int("triangles", stats.Triangles),
		zap.Int("skipped", stats.Skipped),
		zap.Float64("size_x", stats.Size.X),
		zap.Float64("size_y", stats.Size.Y),
		zap.Float64("size_z", stats.Size.Z),
		zap.Float32("reference_radius", m.ReferenceRadius),
	)
	return nil
}
