package formats

import (
	"errors"
	"fmt"
)

// ErrTruncatedFlat is returned for flat lumps shorter than 64x64 bytes.
var ErrTruncatedFlat = errors.New("truncated flat data")

// Flat dimensions. Flats are always square 64x64 palette-index images.
const (
	FlatWidth  = 64
	FlatHeight = 64
	FlatSize   = FlatWidth * FlatHeight
)

// ParseFlat returns the 4096 row-major palette indices of a flat lump.
// Extra trailing bytes are ignored.
func ParseFlat(data []byte) ([]uint8, error) {
	if len(data) < FlatSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrTruncatedFlat, len(data), FlatSize)
	}
	out := make([]uint8, FlatSize)
	copy(out, data[:FlatSize])
	return out, nil
}
