// Package level loads a map's geometry lumps and cross-links them into a
// sector graph ready for mesh generation.
package level

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/wadglb/pkg/formats"
)

// SkyFlat is the ceiling flat that marks outdoor sectors.
const SkyFlat = "F_SKY1"

// None marks an absent reference.
const None = -1

// Sector is an area with a single floor and ceiling.
type Sector struct {
	Index         int
	FloorHeight   float32
	CeilingHeight float32
	FloorFlat     string
	CeilingFlat   string
	LightLevel    int
	SubSectors    []int
	Linedefs      []int
}

// HasSkyCeiling reports whether the ceiling is open sky.
func (s *Sector) HasSkyCeiling() bool {
	return s.CeilingFlat == SkyFlat
}

// Sidedef is the textured face of a linedef toward one sector.
type Sidedef struct {
	Index   int
	XOffset float32
	YOffset float32
	Upper   string
	Lower   string
	Middle  string
	Sector  int
}

// Linedef is a wall between two map vertices.
type Linedef struct {
	Index int
	Start mgl32.Vec2
	End   mgl32.Vec2
	Flags uint16
	Front int
	Back  int // None for one-sided lines
}

// TwoSided reports whether the line has a back sidedef.
func (l *Linedef) TwoSided() bool {
	return l.Back != None
}

// HasFlag reports whether all bits of flag are set.
func (l *Linedef) HasFlag(flag uint16) bool {
	return l.Flags&flag == flag
}

// Length returns the line length in map units.
func (l *Linedef) Length() float32 {
	return l.End.Sub(l.Start).Len()
}

// Segment is a GL seg: part of a sub-sector boundary.
type Segment struct {
	Index   int
	Start   mgl32.Vec2
	End     mgl32.Vec2
	Linedef int // None for partition-only segments
	Side    int // 0 front, 1 back
}

// OnLinedef reports whether the segment lies on a linedef.
func (s *Segment) OnLinedef() bool {
	return s.Linedef != None
}

// SubSector is a convex polygon bounded by a contiguous run of segments.
type SubSector struct {
	Index    int
	Sector   int
	Segments []int
}

// Level is a fully cross-linked map.
type Level struct {
	Name       string
	GLVersion  formats.GLVersion
	Vertices   []mgl32.Vec2
	GLVertices []mgl32.Vec2
	Linedefs   []Linedef
	Sidedefs   []Sidedef
	Sectors    []Sector
	Segments   []Segment
	SubSectors []SubSector
}

// SidedefOf returns the sidedef of l facing side (0 front, 1 back), or nil.
func (lv *Level) SidedefOf(l *Linedef, side int) *Sidedef {
	idx := l.Front
	if side == 1 {
		idx = l.Back
	}
	if idx == None {
		return nil
	}
	return &lv.Sidedefs[idx]
}

// SectorOf returns the sector a sidedef faces.
func (lv *Level) SectorOf(s *Sidedef) *Sector {
	return &lv.Sectors[s.Sector]
}

// Bounds returns the min and max map coordinates of all linedef vertices.
func (lv *Level) Bounds() (mgl32.Vec2, mgl32.Vec2) {
	if len(lv.Vertices) == 0 {
		return mgl32.Vec2{}, mgl32.Vec2{}
	}
	lo, hi := lv.Vertices[0], lv.Vertices[0]
	for _, v := range lv.Vertices[1:] {
		lo = mgl32.Vec2{min(lo[0], v[0]), min(lo[1], v[1])}
		hi = mgl32.Vec2{max(hi[0], v[0]), max(hi[1], v[1])}
	}
	return lo, hi
}
