package level

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/wadglb/internal/logger"
	"github.com/Faultbox/wadglb/pkg/encoding"
	"github.com/Faultbox/wadglb/pkg/formats"
	"github.com/Faultbox/wadglb/pkg/wad"
)

// ErrMalformedLevel is returned when map data references something that
// does not exist.
var ErrMalformedLevel = errors.New("malformed level")

// Raw holds the decoded lumps of one map before cross-linking.
type Raw struct {
	Name         string
	Vertexes     []formats.MapVertex
	Linedefs     []formats.MapLinedef
	Sidedefs     []formats.MapSidedef
	Sectors      []formats.MapSector
	GLVersion    formats.GLVersion
	GLVertices   []formats.GLVertex
	GLSegs       []formats.GLSeg
	GLSubSectors []formats.GLSubSector
}

// Load reads the geometry and GL nodes lumps of a map.
func Load(a *wad.Archive, mapName string) (*Raw, error) {
	name := encoding.NormalizeName(mapName)

	lumps, err := a.MapLumps(name)
	if err != nil {
		return nil, err
	}
	glLumps, err := a.GLLumps(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wad.ErrMissingLump, err)
	}

	read := func(block map[string]int, lump string) ([]byte, error) {
		idx, ok := block[lump]
		if !ok {
			return nil, fmt.Errorf("%w: %s for map %s", wad.ErrMissingLump, lump, name)
		}
		return a.Read(idx)
	}

	raw := &Raw{Name: name}

	data, err := read(lumps, formats.VertexesLump)
	if err != nil {
		return nil, err
	}
	if raw.Vertexes, err = formats.ParseVertexes(data); err != nil {
		return nil, err
	}

	if data, err = read(lumps, formats.LinedefsLump); err != nil {
		return nil, err
	}
	if raw.Linedefs, err = formats.ParseLinedefs(data); err != nil {
		return nil, err
	}

	if data, err = read(lumps, formats.SidedefsLump); err != nil {
		return nil, err
	}
	if raw.Sidedefs, err = formats.ParseSidedefs(data); err != nil {
		return nil, err
	}

	if data, err = read(lumps, formats.SectorsLump); err != nil {
		return nil, err
	}
	if raw.Sectors, err = formats.ParseSectors(data); err != nil {
		return nil, err
	}

	if data, err = read(glLumps, formats.GLVertLump); err != nil {
		return nil, err
	}
	if raw.GLVertices, raw.GLVersion, err = formats.ParseGLVertices(data); err != nil {
		return nil, err
	}

	if data, err = read(glLumps, formats.GLSegsLump); err != nil {
		return nil, err
	}
	if raw.GLSegs, err = formats.ParseGLSegs(data, raw.GLVersion); err != nil {
		return nil, err
	}

	if data, err = read(glLumps, formats.GLSSectLump); err != nil {
		return nil, err
	}
	if raw.GLSubSectors, err = formats.ParseGLSubSectors(data, raw.GLVersion); err != nil {
		return nil, err
	}

	logger.Debug("map lumps loaded",
		zap.String("map", name),
		zap.Stringer("gl_version", raw.GLVersion),
		zap.Int("linedefs", len(raw.Linedefs)),
		zap.Int("sectors", len(raw.Sectors)),
		zap.Int("gl_segs", len(raw.GLSegs)),
		zap.Int("gl_subsectors", len(raw.GLSubSectors)))

	return raw, nil
}

// Read loads and cross-links a map.
func Read(a *wad.Archive, mapName string) (*Level, error) {
	raw, err := Load(a, mapName)
	if err != nil {
		return nil, err
	}
	return Build(raw)
}

// Build cross-links raw map data. Any dangling reference fails the whole
// level.
func Build(raw *Raw) (*Level, error) {
	lv := &Level{
		Name:       raw.Name,
		GLVersion:  raw.GLVersion,
		Vertices:   make([]mgl32.Vec2, len(raw.Vertexes)),
		GLVertices: make([]mgl32.Vec2, len(raw.GLVertices)),
		Sectors:    make([]Sector, len(raw.Sectors)),
		Sidedefs:   make([]Sidedef, len(raw.Sidedefs)),
		Linedefs:   make([]Linedef, len(raw.Linedefs)),
		Segments:   make([]Segment, len(raw.GLSegs)),
		SubSectors: make([]SubSector, len(raw.GLSubSectors)),
	}

	for i, v := range raw.Vertexes {
		lv.Vertices[i] = mgl32.Vec2{float32(v.X), float32(v.Y)}
	}
	for i, v := range raw.GLVertices {
		lv.GLVertices[i] = mgl32.Vec2{v.X, v.Y}
	}

	for i, s := range raw.Sectors {
		lv.Sectors[i] = Sector{
			Index:         i,
			FloorHeight:   float32(s.FloorHeight),
			CeilingHeight: float32(s.CeilingHeight),
			FloorFlat:     s.FloorFlat,
			CeilingFlat:   s.CeilingFlat,
			LightLevel:    int(s.LightLevel),
		}
	}

	for i, s := range raw.Sidedefs {
		if int(s.Sector) >= len(lv.Sectors) {
			return nil, fmt.Errorf("%w: sidedef %d references sector %d of %d", ErrMalformedLevel, i, s.Sector, len(lv.Sectors))
		}
		lv.Sidedefs[i] = Sidedef{
			Index:   i,
			XOffset: float32(s.XOffset),
			YOffset: float32(s.YOffset),
			Upper:   s.Upper,
			Lower:   s.Lower,
			Middle:  s.Middle,
			Sector:  int(s.Sector),
		}
	}

	if err := lv.linkLinedefs(raw.Linedefs); err != nil {
		return nil, err
	}
	if err := lv.linkSegments(raw.GLSegs); err != nil {
		return nil, err
	}
	if err := lv.linkSubSectors(raw.GLSubSectors); err != nil {
		return nil, err
	}

	return lv, nil
}

func (lv *Level) linkLinedefs(raw []formats.MapLinedef) error {
	for i, l := range raw {
		if int(l.V1) >= len(lv.Vertices) || int(l.V2) >= len(lv.Vertices) {
			return fmt.Errorf("%w: linedef %d references vertex %d/%d of %d", ErrMalformedLevel, i, l.V1, l.V2, len(lv.Vertices))
		}
		if l.Front == formats.NoSidedef {
			return fmt.Errorf("%w: linedef %d has no front sidedef", ErrMalformedLevel, i)
		}

		line := Linedef{
			Index: i,
			Start: lv.Vertices[l.V1],
			End:   lv.Vertices[l.V2],
			Flags: l.Flags,
			Front: int(l.Front),
			Back:  None,
		}
		if l.Back != formats.NoSidedef {
			line.Back = int(l.Back)
		}

		for _, side := range []int{line.Front, line.Back} {
			if side == None {
				continue
			}
			if side >= len(lv.Sidedefs) {
				return fmt.Errorf("%w: linedef %d references sidedef %d of %d", ErrMalformedLevel, i, side, len(lv.Sidedefs))
			}
		}
		lv.Linedefs[i] = line

		front := lv.Sidedefs[line.Front].Sector
		lv.Sectors[front].Linedefs = append(lv.Sectors[front].Linedefs, i)
		if line.Back != None {
			if back := lv.Sidedefs[line.Back].Sector; back != front {
				lv.Sectors[back].Linedefs = append(lv.Sectors[back].Linedefs, i)
			}
		}
	}
	return nil
}

func (lv *Level) vertex(ref formats.VertexRef) (mgl32.Vec2, bool) {
	pool := lv.Vertices
	if ref.GL {
		pool = lv.GLVertices
	}
	if ref.Index < 0 || ref.Index >= len(pool) {
		return mgl32.Vec2{}, false
	}
	return pool[ref.Index], true
}

func (lv *Level) linkSegments(raw []formats.GLSeg) error {
	for i, s := range raw {
		start, ok1 := lv.vertex(s.Start)
		end, ok2 := lv.vertex(s.End)
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: segment %d references missing vertex %+v/%+v", ErrMalformedLevel, i, s.Start, s.End)
		}

		seg := Segment{Index: i, Start: start, End: end, Linedef: None, Side: s.Side}
		if s.HasLinedef() {
			if s.Linedef >= len(lv.Linedefs) {
				return fmt.Errorf("%w: segment %d references linedef %d of %d", ErrMalformedLevel, i, s.Linedef, len(lv.Linedefs))
			}
			if s.Side != 0 && s.Side != 1 {
				return fmt.Errorf("%w: segment %d has side %d", ErrMalformedLevel, i, s.Side)
			}
			if lv.SidedefOf(&lv.Linedefs[s.Linedef], s.Side) == nil {
				return fmt.Errorf("%w: segment %d uses missing back side of linedef %d", ErrMalformedLevel, i, s.Linedef)
			}
			seg.Linedef = s.Linedef
		}
		lv.Segments[i] = seg
	}
	return nil
}

func (lv *Level) linkSubSectors(raw []formats.GLSubSector) error {
	for i, ss := range raw {
		if ss.Count <= 0 || ss.First < 0 || ss.First+ss.Count > len(lv.Segments) {
			return fmt.Errorf("%w: subsector %d segments [%d,+%d) outside %d", ErrMalformedLevel, i, ss.First, ss.Count, len(lv.Segments))
		}

		sub := SubSector{Index: i, Sector: None, Segments: make([]int, ss.Count)}
		for k := range sub.Segments {
			seg := &lv.Segments[ss.First+k]
			sub.Segments[k] = seg.Index
			if sub.Sector == None && seg.OnLinedef() {
				side := lv.SidedefOf(&lv.Linedefs[seg.Linedef], seg.Side)
				sub.Sector = side.Sector
			}
		}
		if sub.Sector == None {
			return fmt.Errorf("%w: subsector %d has no linedef segment", ErrMalformedLevel, i)
		}

		lv.SubSectors[i] = sub
		lv.Sectors[sub.Sector].SubSectors = append(lv.Sectors[sub.Sector].SubSectors, i)
	}
	return nil
}
