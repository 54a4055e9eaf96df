package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Picture format errors.
var (
	ErrTruncatedPicture = errors.New("truncated picture data")
	ErrInvalidImageSize = errors.New("invalid image dimensions")
)

const (
	pictureHeaderSize = 8
	postEnd           = 0xFF
)

// Picture is a decoded column-based patch in palette-index form.
// Index and Mask are row-major, Width*Height long; Mask marks painted pixels.
type Picture struct {
	Width      int
	Height     int
	LeftOffset int
	TopOffset  int
	Index      []uint8
	Mask       []bool
}

// At returns the palette index at (x, y) and whether the pixel is painted.
func (p *Picture) At(x, y int) (uint8, bool) {
	i := y*p.Width + x
	return p.Index[i], p.Mask[i]
}

// ParsePicture parses a patch lump.
//
// Layout: {width u16, height u16, left i16, top i16}, one u32 column offset
// per column, then per column a run of posts
// {topdelta u8 (0xFF ends the column), length u8, pad u8, pixels[length], pad u8}.
// A post starts at row topdelta. When a topdelta is not greater than the
// previous one it is taken relative to it, which lets tall patches address
// rows past 254.
func ParsePicture(data []byte) (*Picture, error) {
	if len(data) < pictureHeaderSize {
		return nil, fmt.Errorf("%w: header", ErrTruncatedPicture)
	}

	width := int(binary.LittleEndian.Uint16(data[0:2]))
	height := int(binary.LittleEndian.Uint16(data[2:4]))
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImageSize, width, height)
	}

	pic := &Picture{
		Width:      width,
		Height:     height,
		LeftOffset: int(int16(binary.LittleEndian.Uint16(data[4:6]))),
		TopOffset:  int(int16(binary.LittleEndian.Uint16(data[6:8]))),
		Index:      make([]uint8, width*height),
		Mask:       make([]bool, width*height),
	}

	if len(data) < pictureHeaderSize+width*4 {
		return nil, fmt.Errorf("%w: column offsets", ErrTruncatedPicture)
	}

	for x := 0; x < width; x++ {
		off := int(binary.LittleEndian.Uint32(data[pictureHeaderSize+x*4:]))
		if err := pic.readColumn(data, x, off); err != nil {
			return nil, fmt.Errorf("column %d: %w", x, err)
		}
	}

	return pic, nil
}

func (p *Picture) readColumn(data []byte, x, off int) error {
	top := -1
	for {
		if off >= len(data) {
			return fmt.Errorf("%w: post header at %d", ErrTruncatedPicture, off)
		}
		delta := int(data[off])
		if delta == postEnd {
			return nil
		}
		if off+2 >= len(data) {
			return fmt.Errorf("%w: post header at %d", ErrTruncatedPicture, off)
		}

		if delta <= top {
			top += delta
		} else {
			top = delta
		}

		length := int(data[off+1])
		start := off + 3 // skip topdelta, length and the leading pad byte
		if start+length > len(data) {
			return fmt.Errorf("%w: post of %d pixels at %d", ErrTruncatedPicture, length, off)
		}

		for i := 0; i < length; i++ {
			y := top + i
			if y < 0 || y >= p.Height {
				continue
			}
			idx := y*p.Width + x
			p.Index[idx] = data[start+i]
			p.Mask[idx] = true
		}

		off = start + length + 1 // trailing pad byte
	}
}
