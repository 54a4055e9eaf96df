package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Faultbox/wadglb/pkg/encoding"
)

// ErrTruncatedLevelData is returned when a map lump is not a whole number of records.
var ErrTruncatedLevelData = errors.New("truncated level data")

// Map lump names, in the order they follow a map marker.
const (
	ThingsLump   = "THINGS"
	LinedefsLump = "LINEDEFS"
	SidedefsLump = "SIDEDEFS"
	VertexesLump = "VERTEXES"
	SectorsLump  = "SECTORS"
)

// NoSidedef marks an absent sidedef in a linedef.
const NoSidedef = 0xFFFF

// NoTexture is the sidedef texture name meaning "nothing drawn".
const NoTexture = "-"

// Linedef flags.
const (
	LineBlocking      = 0x0001
	LineBlockMonsters = 0x0002
	LineTwoSided      = 0x0004
	LineUpperUnpegged = 0x0008
	LineLowerUnpegged = 0x0010
	LineSecret        = 0x0020
	LineBlockSound    = 0x0040
	LineNotOnMap      = 0x0080
	LineAlreadyOnMap  = 0x0100
)

// MapVertex is one VERTEXES record.
type MapVertex struct {
	X, Y int16
}

// MapLinedef is one LINEDEFS record.
type MapLinedef struct {
	V1, V2  uint16
	Flags   uint16
	Special uint16
	Tag     uint16
	Front   uint16
	Back    uint16
}

// MapSidedef is one SIDEDEFS record with decoded texture names.
type MapSidedef struct {
	XOffset int16
	YOffset int16
	Upper   string
	Lower   string
	Middle  string
	Sector  uint16
}

// MapSector is one SECTORS record with decoded flat names.
type MapSector struct {
	FloorHeight   int16
	CeilingHeight int16
	FloorFlat     string
	CeilingFlat   string
	LightLevel    int16
	Special       int16
	Tag           int16
}

type binSidedef struct {
	XOffset int16
	YOffset int16
	Upper   [8]byte
	Lower   [8]byte
	Middle  [8]byte
	Sector  uint16
}

type binSector struct {
	FloorHeight   int16
	CeilingHeight int16
	FloorFlat     [8]byte
	CeilingFlat   [8]byte
	LightLevel    int16
	Special       int16
	Tag           int16
}

// readRecords decodes a lump made of fixed-size little-endian records.
func readRecords[T any](data []byte, size int, lump string) ([]T, error) {
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes, not a multiple of %d", ErrTruncatedLevelData, lump, len(data), size)
	}
	out := make([]T, len(data)/size)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTruncatedLevelData, lump, err)
	}
	return out, nil
}

// ParseVertexes parses a VERTEXES lump.
func ParseVertexes(data []byte) ([]MapVertex, error) {
	return readRecords[MapVertex](data, 4, VertexesLump)
}

// ParseLinedefs parses a LINEDEFS lump.
func ParseLinedefs(data []byte) ([]MapLinedef, error) {
	return readRecords[MapLinedef](data, 14, LinedefsLump)
}

// ParseSidedefs parses a SIDEDEFS lump.
func ParseSidedefs(data []byte) ([]MapSidedef, error) {
	raw, err := readRecords[binSidedef](data, 30, SidedefsLump)
	if err != nil {
		return nil, err
	}
	sides := make([]MapSidedef, len(raw))
	for i, s := range raw {
		sides[i] = MapSidedef{
			XOffset: s.XOffset,
			YOffset: s.YOffset,
			Upper:   encoding.NormalizeName(encoding.FixedName(s.Upper[:])),
			Lower:   encoding.NormalizeName(encoding.FixedName(s.Lower[:])),
			Middle:  encoding.NormalizeName(encoding.FixedName(s.Middle[:])),
			Sector:  s.Sector,
		}
	}
	return sides, nil
}

// ParseSectors parses a SECTORS lump.
func ParseSectors(data []byte) ([]MapSector, error) {
	raw, err := readRecords[binSector](data, 26, SectorsLump)
	if err != nil {
		return nil, err
	}
	sectors := make([]MapSector, len(raw))
	for i, s := range raw {
		sectors[i] = MapSector{
			FloorHeight:   s.FloorHeight,
			CeilingHeight: s.CeilingHeight,
			FloorFlat:     encoding.NormalizeName(encoding.FixedName(s.FloorFlat[:])),
			CeilingFlat:   encoding.NormalizeName(encoding.FixedName(s.CeilingFlat[:])),
			LightLevel:    s.LightLevel,
			Special:       s.Special,
			Tag:           s.Tag,
		}
	}
	return sectors, nil
}

// HasTexture reports whether a sidedef texture name refers to an actual texture.
func HasTexture(name string) bool {
	return name != "" && name != NoTexture
}
