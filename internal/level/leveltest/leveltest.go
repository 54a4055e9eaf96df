// Package leveltest builds small synthetic maps for tests.
package leveltest

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/wadglb/internal/level"
	"github.com/Faultbox/wadglb/pkg/encoding"
	"github.com/Faultbox/wadglb/pkg/formats"
	"github.com/Faultbox/wadglb/pkg/wad"
)

// Map texture and flat names used by TwoRooms.
const (
	WallTexture  = "WALL"
	StepTexture  = "STEP"
	UpperTexture = "UPPER"
	FloorFlat    = "FLOOR"
	CeilingFlat  = "CEIL"
)

// Rooms configures the second room of TwoRooms and the shared line.
type Rooms struct {
	BackFloor        int16
	BackCeiling      int16
	FrontCeilingFlat string
	BackCeilingFlat  string
	FrontLower       string
	BackLower        string
	FrontUpper       string
	BackUpper        string
	Middle           string // middle texture on both sides of the shared line
	SharedFlags      uint16
}

// DefaultRooms returns two 64x64 rooms with equal heights and a shared line
// that carries STEP on its front lower side and UPPER on its front upper side.
func DefaultRooms() Rooms {
	return Rooms{
		BackFloor:   0,
		BackCeiling: 128,
		FrontLower:  StepTexture,
		BackLower:   formats.NoTexture,
		FrontUpper:  UpperTexture,
		BackUpper:   formats.NoTexture,
		Middle:      formats.NoTexture,
	}
}

// TwoRooms returns a map with two adjacent 64x64 sectors side by side.
// Sector 0 spans x 0..64 with floor 0 and ceiling 128; sector 1 spans
// x 64..128 with the configured heights. Linedef 2 is the shared two-sided
// line, front side in sector 0.
func TwoRooms(r Rooms) *level.Raw {
	frontCeil := r.FrontCeilingFlat
	if frontCeil == "" {
		frontCeil = CeilingFlat
	}
	backCeil := r.BackCeilingFlat
	if backCeil == "" {
		backCeil = CeilingFlat
	}

	raw := &level.Raw{
		Name: "E1M1",
		Vertexes: []formats.MapVertex{
			{X: 0, Y: 0}, {X: 64, Y: 0}, {X: 128, Y: 0},
			{X: 128, Y: 64}, {X: 64, Y: 64}, {X: 0, Y: 64},
		},
		Linedefs: []formats.MapLinedef{
			{V1: 0, V2: 5, Front: 0, Back: formats.NoSidedef, Flags: formats.LineBlocking},
			{V1: 5, V2: 4, Front: 1, Back: formats.NoSidedef, Flags: formats.LineBlocking},
			{V1: 4, V2: 1, Front: 2, Back: 4, Flags: formats.LineTwoSided | r.SharedFlags},
			{V1: 1, V2: 0, Front: 3, Back: formats.NoSidedef, Flags: formats.LineBlocking},
			{V1: 4, V2: 3, Front: 5, Back: formats.NoSidedef, Flags: formats.LineBlocking},
			{V1: 3, V2: 2, Front: 6, Back: formats.NoSidedef, Flags: formats.LineBlocking},
			{V1: 2, V2: 1, Front: 7, Back: formats.NoSidedef, Flags: formats.LineBlocking},
		},
		Sidedefs: []formats.MapSidedef{
			wall(0), wall(0),
			{Upper: r.FrontUpper, Lower: r.FrontLower, Middle: r.Middle, Sector: 0},
			wall(0),
			{Upper: r.BackUpper, Lower: r.BackLower, Middle: r.Middle, Sector: 1},
			wall(1), wall(1), wall(1),
		},
		Sectors: []formats.MapSector{
			{FloorHeight: 0, CeilingHeight: 128, FloorFlat: FloorFlat, CeilingFlat: frontCeil, LightLevel: 160},
			{FloorHeight: r.BackFloor, CeilingHeight: r.BackCeiling, FloorFlat: FloorFlat, CeilingFlat: backCeil, LightLevel: 255},
		},
		GLVersion: formats.GLVersion2,
		GLSegs: []formats.GLSeg{
			seg(0, 5, 0, 0), seg(5, 4, 1, 0), seg(4, 1, 2, 0), seg(1, 0, 3, 0),
			seg(1, 4, 2, 1), seg(4, 3, 4, 0), seg(3, 2, 5, 0), seg(2, 1, 6, 0),
		},
		GLSubSectors: []formats.GLSubSector{
			{Count: 4, First: 0},
			{Count: 4, First: 4},
		},
	}
	return raw
}

func wall(sector uint16) formats.MapSidedef {
	return formats.MapSidedef{
		Upper:  formats.NoTexture,
		Lower:  formats.NoTexture,
		Middle: WallTexture,
		Sector: sector,
	}
}

func seg(v1, v2, line, side int) formats.GLSeg {
	return formats.GLSeg{
		Start:   formats.VertexRef{Index: v1},
		End:     formats.VertexRef{Index: v2},
		Linedef: line,
		Side:    side,
		Partner: -1,
	}
}

// AppendMap writes raw as map lumps followed by GL nodes v2 lumps.
func AppendMap(w *wad.Writer, raw *level.Raw) {
	w.Marker(raw.Name)
	w.Add(formats.ThingsLump, nil)
	w.Add(formats.LinedefsLump, encode(raw.Linedefs))
	w.Add(formats.SidedefsLump, encodeSidedefs(raw.Sidedefs))
	w.Add(formats.VertexesLump, encode(raw.Vertexes))
	w.Add(formats.SectorsLump, encodeSectors(raw.Sectors))

	w.Marker(wad.GLMarker(raw.Name))
	w.Add(formats.GLVertLump, encodeGLVertices(raw.GLVertices))
	w.Add(formats.GLSegsLump, encodeGLSegs(raw.GLSegs))
	w.Add(formats.GLSSectLump, encodeGLSubSectors(raw.GLSubSectors))
}

func encode(v any) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func name8(s string) []byte {
	b := encoding.PadName(s)
	return b[:]
}

func encodeSidedefs(sides []formats.MapSidedef) []byte {
	var buf bytes.Buffer
	for _, s := range sides {
		binary.Write(&buf, binary.LittleEndian, []int16{s.XOffset, s.YOffset})
		buf.Write(name8(s.Upper))
		buf.Write(name8(s.Lower))
		buf.Write(name8(s.Middle))
		binary.Write(&buf, binary.LittleEndian, s.Sector)
	}
	return buf.Bytes()
}

func encodeSectors(sectors []formats.MapSector) []byte {
	var buf bytes.Buffer
	for _, s := range sectors {
		binary.Write(&buf, binary.LittleEndian, []int16{s.FloorHeight, s.CeilingHeight})
		buf.Write(name8(s.FloorFlat))
		buf.Write(name8(s.CeilingFlat))
		binary.Write(&buf, binary.LittleEndian, []int16{s.LightLevel, s.Special, s.Tag})
	}
	return buf.Bytes()
}

func encodeGLVertices(verts []formats.GLVertex) []byte {
	var buf bytes.Buffer
	buf.WriteString("gNd2")
	for _, v := range verts {
		binary.Write(&buf, binary.LittleEndian, []int32{int32(v.X * 65536), int32(v.Y * 65536)})
	}
	return buf.Bytes()
}

func vertexRef16(r formats.VertexRef) uint16 {
	if r.GL {
		return uint16(r.Index) | 0x8000
	}
	return uint16(r.Index)
}

func encodeGLSegs(segs []formats.GLSeg) []byte {
	var buf bytes.Buffer
	for _, s := range segs {
		line, partner := uint16(0xFFFF), uint16(0xFFFF)
		if s.Linedef >= 0 {
			line = uint16(s.Linedef)
		}
		if s.Partner >= 0 {
			partner = uint16(s.Partner)
		}
		binary.Write(&buf, binary.LittleEndian, []uint16{
			vertexRef16(s.Start), vertexRef16(s.End), line, uint16(s.Side), partner,
		})
	}
	return buf.Bytes()
}

func encodeGLSubSectors(subs []formats.GLSubSector) []byte {
	var buf bytes.Buffer
	for _, s := range subs {
		binary.Write(&buf, binary.LittleEndian, []uint16{uint16(s.Count), uint16(s.First)})
	}
	return buf.Bytes()
}
