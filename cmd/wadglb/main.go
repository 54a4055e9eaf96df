// wadglb converts a level of a Doom WAD into a binary glTF scene.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Faultbox/wadglb/internal/config"
	"github.com/Faultbox/wadglb/internal/convert"
	"github.com/Faultbox/wadglb/internal/dump"
	"github.com/Faultbox/wadglb/internal/geometry"
	"github.com/Faultbox/wadglb/internal/logger"
	"github.com/Faultbox/wadglb/internal/texture"
	"github.com/Faultbox/wadglb/pkg/wad"
)

func main() {
	config.ParseFlags()

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

	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Config written to %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	}

	if cfg.Input == "" {
		if config.SaveRequested() {
			return
		}
		printUsage()
		os.Exit(1)
	}

	archive, err := wad.ParseFile(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if config.ListOnly() {
		cmdList(archive)
		return
	}

	if err := run(cfg, archive); err != nil {
		logger.Error("conversion failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `wadglb - Doom WAD to glTF binary converter

Usage:
  wadglb [options] <file.wad>

Options:
  -map NAME          Level to convert (default: first level)
  -out DIR           Output directory
  -list              List levels and exit
  -dump-textures     Write used textures as images
  -dump-format FMT   png, bmp, tga or webp
  -no-progress       Hide the progress bar
  -sky-hack          No upper walls between two sky ceilings
  -config FILE       Config file
  -save-config       Save the effective config
  -debug             Debug logging

The level needs GL nodes (GL_VERT, GL_SEGS, GL_SSECT) built by a GL node
builder such as glBSP or ZDBSP.

Examples:
  wadglb doom1.wad
  wadglb -map E1M3 -out scenes doom1.wad
  wadglb -dump-textures -dump-format webp -map MAP01 doom2.wad`)
}

func cmdList(archive *wad.Archive) {
	names := archive.LevelNames()
	for _, name := range names {
		gl := "no GL nodes"
		if _, err := archive.GLLumps(name); err == nil {
			gl = "GL nodes"
		}
		fmt.Printf("%-8s %s\n", name, gl)
	}
	fmt.Fprintf(os.Stderr, "\n(%d levels)\n", len(names))
}

func run(cfg *config.Config, archive *wad.Archive) error {
	opts := convert.Options{
		Map:       cfg.Map,
		UnitScale: cfg.Scene.UnitScale,
		Geometry: geometry.Options{
			SlopeMaxStep:       cfg.Scene.SlopeMaxStep,
			CollinearTolerance: cfg.Scene.CollinearTolerance,
			LightLevels:        cfg.Scene.LightLevels,
			SkyHack:            cfg.Scene.SkyHack,
		},
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		opts.Progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("sectors"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish())
			}
			bar.Set(done)
		}
	}

	res, err := convert.Run(archive, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(cfg.OutputDir, strings.ToLower(res.Map)+".glb")
	if err := os.WriteFile(outPath, res.GLB, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	dumped := 0
	if cfg.TextureDump.Enabled {
		dumped, err = dumpTextures(cfg, res)
		if err != nil {
			logger.Warn("texture dump incomplete", zap.Error(err))
		}
	}

	printSummary(res, outPath, dumped)
	return nil
}

func dumpTextures(cfg *config.Config, res *convert.Result) (int, error) {
	format, err := dump.ParseFormat(cfg.TextureDump.Format)
	if err != nil {
		return 0, err
	}
	var ids []int
	if cfg.TextureDump.OnlyUsed {
		ids = res.Geometry.Queue.IDs()
	}
	return dump.Textures(res.Catalog, ids, dump.Options{
		Dir:     filepath.Join(cfg.OutputDir, cfg.TextureDump.Dir),
		Format:  format,
		Workers: cfg.TextureDump.Workers,
	})
}

func printSummary(res *convert.Result, outPath string, dumped int) {
	meshes, quads, triangles := res.Geometry.Stats()
	kinds := res.Catalog.CountByKind()

	p := message.NewPrinter(language.English)
	p.Printf("Level:     %s\n", res.Map)
	p.Printf("Sectors:   %d\n", len(res.Level.Sectors))
	p.Printf("Linedefs:  %d\n", len(res.Level.Linedefs))
	p.Printf("Meshes:    %d (%d wall quads, %d triangles)\n", meshes, quads, triangles)
	p.Printf("Catalog:   %d textures (%d flats, %d patches, %d composites)\n",
		res.Catalog.Len(), kinds[texture.KindFlat], kinds[texture.KindPatch], kinds[texture.KindComposite])
	p.Printf("Embedded:  %d textures\n", res.Geometry.Queue.Len())
	if dumped > 0 {
		p.Printf("Dumped:    %d textures\n", dumped)
	}
	p.Printf("Output:    %s (%d bytes, %v)\n", outPath, len(res.GLB), res.Elapsed.Round(time.Millisecond))
}
