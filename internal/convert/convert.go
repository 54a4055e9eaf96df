// Package convert runs the WAD to GLB pipeline for one level.
package convert

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/wadglb/internal/geometry"
	"github.com/Faultbox/wadglb/internal/gltf"
	"github.com/Faultbox/wadglb/internal/level"
	"github.com/Faultbox/wadglb/internal/logger"
	"github.com/Faultbox/wadglb/internal/texture"
	"github.com/Faultbox/wadglb/pkg/wad"
)

// ErrNoLevels is returned when no map was named and the archive has none.
var ErrNoLevels = errors.New("archive contains no levels")

// Options controls a conversion.
type Options struct {
	// Map is the level to convert. Empty picks the first level in the archive.
	Map       string
	UnitScale float32
	Geometry  geometry.Options
	// Progress, when not nil, is called after each sector is generated.
	Progress func(done, total int)
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		UnitScale: gltf.DefaultUnitScale,
		Geometry:  geometry.DefaultOptions(),
	}
}

// Result holds the scene bytes and the intermediate data they were built from.
type Result struct {
	Map      string
	GLB      []byte
	Catalog  *texture.Catalog
	Level    *level.Level
	Geometry *geometry.Result
	Elapsed  time.Duration
}

// Convert parses data as a WAD and converts one of its levels.
func Convert(data []byte, opts Options) (*Result, error) {
	a, err := wad.Parse(data)
	if err != nil {
		return nil, err
	}
	return Run(a, opts)
}

// Run converts one level of an already parsed archive. Palette 0 and
// colormap 0 are used for every texture.
func Run(a *wad.Archive, opts Options) (*Result, error) {
	start := time.Now()

	name, err := pickMap(a, opts.Map)
	if err != nil {
		return nil, err
	}

	palettes, err := wad.ReadPalettes(a)
	if err != nil {
		return nil, err
	}
	colormaps, err := wad.ReadColormaps(a)
	if err != nil {
		return nil, err
	}

	catalog, err := texture.Build(a, &palettes[0], &colormaps[0])
	if err != nil {
		return nil, fmt.Errorf("building texture catalog: %w", err)
	}

	lv, err := level.Read(a, name)
	if err != nil {
		return nil, fmt.Errorf("reading level %s: %w", name, err)
	}

	geo, err := geometry.NewGenerator(catalog, opts.Geometry).Generate(lv, opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", name, err)
	}

	out, err := gltf.EncodeLevel(name, geo, catalog, opts.UnitScale)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", name, err)
	}

	res := &Result{
		Map:      name,
		GLB:      out,
		Catalog:  catalog,
		Level:    lv,
		Geometry: geo,
		Elapsed:  time.Since(start),
	}
	logger.Info("level converted",
		zap.String("map", name),
		zap.Int("sectors", len(lv.Sectors)),
		zap.Int("textures", geo.Queue.Len()),
		zap.Int("bytes", len(out)),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func pickMap(a *wad.Archive, name string) (string, error) {
	if name != "" {
		return strings.ToUpper(name), nil
	}
	names := a.LevelNames()
	if len(names) == 0 {
		return "", ErrNoLevels
	}
	logger.Debug("no map named, using first level", zap.String("map", names[0]))
	return names[0], nil
}
