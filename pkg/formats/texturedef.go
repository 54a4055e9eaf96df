package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Faultbox/wadglb/pkg/encoding"
)

// Texture definition errors.
var (
	ErrTruncatedPatchNames = errors.New("truncated PNAMES data")
	ErrTruncatedTextureDef = errors.New("truncated texture definition data")
)

// Lump names of the composite texture tables.
const (
	PatchNamesLump = "PNAMES"
	Texture1Lump   = "TEXTURE1"
	Texture2Lump   = "TEXTURE2"
)

// PatchPlacement places one patch on a composite texture canvas.
type PatchPlacement struct {
	PatchIndex int // index into PNAMES
	OriginX    int
	OriginY    int
}

// TextureDef is one composite texture entry from TEXTURE1/TEXTURE2.
type TextureDef struct {
	Name    string
	Masked  bool
	Width   int
	Height  int
	Patches []PatchPlacement
}

type binTextureHeader struct {
	Name            [8]byte
	Masked          int32
	Width           int16
	Height          int16
	ColumnDirectory int32 // unused
	PatchCount      int16
}

type binPatchPlacement struct {
	OriginX  int16
	OriginY  int16
	Patch    int16
	StepDir  int16 // unused
	Colormap int16 // unused
}

// ParsePatchNames parses PNAMES: an i32 count followed by 8-byte names.
func ParsePatchNames(data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: count", ErrTruncatedPatchNames)
	}
	count := int(int32(binary.LittleEndian.Uint32(data[0:4])))
	if count < 0 || 4+count*encoding.NameSize > len(data) {
		return nil, fmt.Errorf("%w: %d names in %d bytes", ErrTruncatedPatchNames, count, len(data))
	}

	names := make([]string, count)
	for i := range names {
		off := 4 + i*encoding.NameSize
		names[i] = encoding.FixedName(data[off : off+encoding.NameSize])
	}
	return names, nil
}

// ParseTextureDefs parses a TEXTURE1/TEXTURE2 lump.
func ParseTextureDefs(data []byte) ([]TextureDef, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: count", ErrTruncatedTextureDef)
	}
	count := int(int32(binary.LittleEndian.Uint32(data[0:4])))
	if count < 0 || 4+count*4 > len(data) {
		return nil, fmt.Errorf("%w: %d offsets in %d bytes", ErrTruncatedTextureDef, count, len(data))
	}

	defs := make([]TextureDef, 0, count)
	for i := 0; i < count; i++ {
		off := int(int32(binary.LittleEndian.Uint32(data[4+i*4:])))
		if off < 0 || off >= len(data) {
			return nil, fmt.Errorf("%w: texture %d offset %d", ErrTruncatedTextureDef, i, off)
		}
		def, err := parseTextureDef(data[off:])
		if err != nil {
			return nil, fmt.Errorf("parsing texture %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseTextureDef(data []byte) (TextureDef, error) {
	r := bytes.NewReader(data)

	var h binTextureHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return TextureDef{}, fmt.Errorf("%w: header", ErrTruncatedTextureDef)
	}
	if h.PatchCount < 0 {
		return TextureDef{}, fmt.Errorf("%w: negative patch count", ErrTruncatedTextureDef)
	}

	raw := make([]binPatchPlacement, h.PatchCount)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return TextureDef{}, fmt.Errorf("%w: %d patches", ErrTruncatedTextureDef, h.PatchCount)
	}

	def := TextureDef{
		Name:    encoding.FixedName(h.Name[:]),
		Masked:  h.Masked != 0,
		Width:   int(h.Width),
		Height:  int(h.Height),
		Patches: make([]PatchPlacement, len(raw)),
	}
	for i, p := range raw {
		def.Patches[i] = PatchPlacement{
			PatchIndex: int(p.Patch),
			OriginX:    int(p.OriginX),
			OriginY:    int(p.OriginY),
		}
	}
	return def, nil
}
