// Package texture decodes WAD pictures into RGBA textures and keeps them in
// an id-addressed catalog.
package texture

import (
	"fmt"
	"image"

	"github.com/Faultbox/wadglb/pkg/formats"
	"github.com/Faultbox/wadglb/pkg/wad"
)

// Kind identifies the source format of a texture.
type Kind int

const (
	KindFlat Kind = iota
	KindPatch
	KindComposite
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindPatch:
		return "patch"
	case KindComposite:
		return "composite"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// PatchRef records one patch that contributed to a composite texture.
type PatchRef struct {
	Name    string
	OriginX int
	OriginY int
}

// Texture is a decoded RGBA image (non-premultiplied, row-major).
// len(Pixels) == Width*Height*4.
type Texture struct {
	Kind    Kind
	Name    string
	Width   int
	Height  int
	Pixels  []uint8
	Masked  bool
	Patches []PatchRef // composites only

	// Patch drawing offsets, kept for diagnostics.
	LeftOffset int
	TopOffset  int
}

// Image wraps the pixel data as an image without copying.
func (t *Texture) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    t.Pixels,
		Stride: t.Width * 4,
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}

// Opaque reports whether the pixel at (x, y) is painted.
func (t *Texture) Opaque(x, y int) bool {
	return t.Pixels[(y*t.Width+x)*4+3] == 0xFF
}

func newTexture(kind Kind, name string, width, height int) *Texture {
	return &Texture{
		Kind:   kind,
		Name:   name,
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height*4),
	}
}

// setIndex writes a resolved, opaque palette index at pixel i.
func (t *Texture) setIndex(i int, index uint8, pal *wad.Palette, cm *wad.Colormap) {
	c := pal.Resolve(cm, index)
	p := t.Pixels[i*4 : i*4+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 0xFF
}

// DecodeFlat decodes a 64x64 flat lump. Flats are always fully opaque.
func DecodeFlat(name string, data []byte, pal *wad.Palette, cm *wad.Colormap) (*Texture, error) {
	indices, err := formats.ParseFlat(data)
	if err != nil {
		return nil, fmt.Errorf("flat %s: %w", name, err)
	}

	t := newTexture(KindFlat, name, formats.FlatWidth, formats.FlatHeight)
	for i, idx := range indices {
		t.setIndex(i, idx, pal, cm)
	}
	return t, nil
}

// DecodePatch decodes a column-post patch lump. Pixels no post covers stay
// transparent black.
func DecodePatch(name string, data []byte, pal *wad.Palette, cm *wad.Colormap) (*Texture, error) {
	pic, err := formats.ParsePicture(data)
	if err != nil {
		return nil, fmt.Errorf("patch %s: %w", name, err)
	}

	t := newTexture(KindPatch, name, pic.Width, pic.Height)
	t.LeftOffset = pic.LeftOffset
	t.TopOffset = pic.TopOffset
	for i, painted := range pic.Mask {
		if painted {
			t.setIndex(i, pic.Index[i], pal, cm)
		}
	}
	return t, nil
}

// Compose builds a composite texture on a transparent canvas. Patches are
// drawn in order; opaque pixels of later patches overwrite earlier ones and
// anything outside the canvas is dropped.
func Compose(name string, width, height int, masked bool, layers []Layer) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("composite %s: %w: %dx%d", name, formats.ErrInvalidImageSize, width, height)
	}

	t := newTexture(KindComposite, name, width, height)
	t.Masked = masked
	t.Patches = make([]PatchRef, 0, len(layers))

	for _, l := range layers {
		t.Patches = append(t.Patches, PatchRef{Name: l.Patch.Name, OriginX: l.OriginX, OriginY: l.OriginY})
		t.blit(l.Patch, l.OriginX, l.OriginY)
	}
	return t, nil
}

// Layer places a decoded patch on a composite canvas.
type Layer struct {
	Patch   *Texture
	OriginX int
	OriginY int
}

func (t *Texture) blit(src *Texture, ox, oy int) {
	for sy := 0; sy < src.Height; sy++ {
		dy := oy + sy
		if dy < 0 || dy >= t.Height {
			continue
		}
		for sx := 0; sx < src.Width; sx++ {
			dx := ox + sx
			if dx < 0 || dx >= t.Width {
				continue
			}
			s := (sy*src.Width + sx) * 4
			if src.Pixels[s+3] == 0 {
				continue
			}
			d := (dy*t.Width + dx) * 4
			copy(t.Pixels[d:d+4], src.Pixels[s:s+4])
		}
	}
}

// newFallback returns the 2x2 checkerboard used for unresolved names:
// black, magenta / magenta, black.
func newFallback() *Texture {
	t := newTexture(KindFlat, FallbackName, 2, 2)
	copy(t.Pixels, []uint8{
		0x00, 0x00, 0x00, 0xFF, 0xFF, 0x00, 0xFF, 0xFF,
		0xFF, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0xFF,
	})
	return t
}
