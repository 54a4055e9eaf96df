// Package dump writes catalog textures to image files for inspection.
package dump

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/remeh/sizedwaitgroup"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/wadglb/internal/logger"
	"github.com/Faultbox/wadglb/internal/texture"
)

// ErrUnknownFormat is returned for an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown image format")

// Format is an output image format.
type Format string

// Supported formats.
const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTGA  Format = "tga"
	FormatWebP Format = "webp"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatBMP, FormatTGA, FormatWebP:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTGA:
		return tga.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Options controls a dump.
type Options struct {
	Dir     string
	Format  Format
	Workers int
}

// Textures writes the catalog textures with the given ids to opts.Dir, one
// file per texture named after it. A nil ids slice dumps the whole catalog.
// Files are encoded concurrently; every failure is reported.
func Textures(catalog *texture.Catalog, ids []int, opts Options) (int, error) {
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return 0, fmt.Errorf("creating dump directory: %w", err)
	}
	if ids == nil {
		ids = make([]int, catalog.Len())
		for i := range ids {
			ids[i] = i
		}
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	// Unknown ids are collected before any worker touches errs.
	var errs error
	textures := make([]*texture.Texture, 0, len(ids))
	for _, id := range ids {
		tex, ok := catalog.ByID(id)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("texture id %d not in catalog", id))
			continue
		}
		textures = append(textures, tex)
	}

	var (
		mu      sync.Mutex
		written int
	)
	swg := sizedwaitgroup.New(workers)
	for _, tex := range textures {
		swg.Add()
		go func(tex *texture.Texture) {
			defer swg.Done()
			path := filepath.Join(opts.Dir, FileName(tex.Name, opts.Format))
			err := writeFile(path, tex.Image(), opts.Format)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", tex.Name, err))
				return
			}
			written++
		}(tex)
	}
	swg.Wait()

	logger.Info("textures dumped",
		zap.String("dir", opts.Dir),
		zap.String("format", string(opts.Format)),
		zap.Int("written", written),
		zap.Int("failed", len(multierr.Errors(errs))))
	return written, errs
}

func writeFile(path string, img image.Image, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// FileName maps a texture name to a file name. Characters that are not
// safe in paths are replaced with underscores.
func FileName(name string, f Format) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return safe + "." + string(f)
}
