package wad

import (
	"fmt"
)

// Lump names of the global color tables.
const (
	PaletteLump  = "PLAYPAL"
	ColormapLump = "COLORMAP"
)

const (
	paletteBytes  = 256 * 3
	colormapBytes = 256
	// MaxColormaps is the number of light-level tables in COLORMAP.
	MaxColormaps = 34
)

// RGB is one palette color.
type RGB struct {
	R, G, B uint8
}

// Palette holds 256 colors.
type Palette [256]RGB

// Colormap remaps palette indices, one table per light level.
type Colormap [256]uint8

// Resolve performs the two-stage lookup pixel -> colormap -> palette.
func (p *Palette) Resolve(cm *Colormap, index uint8) RGB {
	return p[cm[index]]
}

// ReadPalettes decodes every palette in PLAYPAL.
func ReadPalettes(a *Archive) ([]Palette, error) {
	data, err := a.ReadRequired(PaletteLump)
	if err != nil {
		return nil, err
	}
	return ParsePalettes(data)
}

// ParsePalettes partitions raw PLAYPAL bytes into palettes.
// Trailing bytes that do not form a full palette are ignored.
func ParsePalettes(data []byte) ([]Palette, error) {
	count := len(data) / paletteBytes
	if count == 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes, need %d", ErrTruncatedLump, PaletteLump, len(data), paletteBytes)
	}

	palettes := make([]Palette, count)
	for p := range palettes {
		base := p * paletteBytes
		for c := 0; c < 256; c++ {
			off := base + c*3
			palettes[p][c] = RGB{R: data[off], G: data[off+1], B: data[off+2]}
		}
	}
	return palettes, nil
}

// ReadColormaps decodes the light tables in COLORMAP.
func ReadColormaps(a *Archive) ([]Colormap, error) {
	data, err := a.ReadRequired(ColormapLump)
	if err != nil {
		return nil, err
	}
	return ParseColormaps(data)
}

// ParseColormaps partitions raw COLORMAP bytes into at most 34 tables.
func ParseColormaps(data []byte) ([]Colormap, error) {
	count := min(len(data)/colormapBytes, MaxColormaps)
	if count == 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes, need %d", ErrTruncatedLump, ColormapLump, len(data), colormapBytes)
	}

	maps := make([]Colormap, count)
	for i := range maps {
		copy(maps[i][:], data[i*colormapBytes:(i+1)*colormapBytes])
	}
	return maps, nil
}
