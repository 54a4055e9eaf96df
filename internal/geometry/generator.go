// Package geometry turns a level's sector graph into floor, ceiling and
// wall meshes.
//
// Scene coordinates are (x, y, z) = (map x, height, map y).
package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/wadglb/internal/level"
	"github.com/Faultbox/wadglb/internal/logger"
	"github.com/Faultbox/wadglb/internal/mesh"
	"github.com/Faultbox/wadglb/internal/texture"
)

// Options tunes mesh generation.
type Options struct {
	// SlopeMaxStep is the largest floor step that gets a slope quad.
	SlopeMaxStep float32
	// CollinearTolerance is the turn angle, in radians, under which a
	// floor polygon vertex is dropped.
	CollinearTolerance float32
	// LightLevels writes sector light to vertex colors; otherwise white.
	LightLevels bool
	// SkyHack leaves out upper walls between two sky ceilings.
	SkyHack bool
}

// DefaultOptions returns the standard generation settings.
func DefaultOptions() Options {
	return Options{
		SlopeMaxStep:       24,
		CollinearTolerance: 0.05,
		LightLevels:        true,
	}
}

// SectorGeometry is everything generated for one sector.
type SectorGeometry struct {
	Sector  int
	Floor   *mesh.Mesh
	Ceiling *mesh.Mesh
	Walls   []mesh.Quad
	Slopes  []mesh.Quad
}

// Meshes returns the floor, the ceiling and the walls and slopes grouped
// into one mesh per texture, in first-use order. Empty meshes are omitted.
func (sg *SectorGeometry) Meshes() []*mesh.Mesh {
	var out []*mesh.Mesh
	for _, m := range []*mesh.Mesh{sg.Floor, sg.Ceiling} {
		if m != nil && !m.Empty() {
			out = append(out, m)
		}
	}

	byTexture := make(map[int]*mesh.Mesh)
	for _, quads := range [][]mesh.Quad{sg.Walls, sg.Slopes} {
		for _, q := range quads {
			m, ok := byTexture[q.TextureID]
			if !ok {
				m = mesh.New(q.TextureID)
				byTexture[q.TextureID] = m
				out = append(out, m)
			}
			m.AppendQuad(q)
		}
	}
	return out
}

// Result is the output of Generate.
type Result struct {
	Sectors []SectorGeometry
	Queue   *TextureQueue
}

// Stats summarizes a result.
func (r *Result) Stats() (meshes, quads, triangles int) {
	for i := range r.Sectors {
		sg := &r.Sectors[i]
		quads += len(sg.Walls) + len(sg.Slopes)
		for _, m := range sg.Meshes() {
			meshes++
			triangles += m.TriangleCount()
		}
	}
	return meshes, quads, triangles
}

// Generator builds sector geometry against a texture catalog.
type Generator struct {
	catalog *texture.Catalog
	opts    Options
}

// NewGenerator creates a generator.
func NewGenerator(catalog *texture.Catalog, opts Options) *Generator {
	return &Generator{catalog: catalog, opts: opts}
}

// Generate builds geometry for every sector of lv. progress, when not nil,
// is called after each sector.
func (g *Generator) Generate(lv *level.Level, progress func(done, total int)) (*Result, error) {
	res := &Result{
		Sectors: make([]SectorGeometry, len(lv.Sectors)),
		Queue:   NewTextureQueue(),
	}
	for i := range res.Sectors {
		res.Sectors[i].Sector = i
	}

	emitted := make(map[int]bool, len(lv.Linedefs))

	for si := range lv.Sectors {
		sector := &lv.Sectors[si]
		sg := &res.Sectors[si]

		sg.Floor = g.flatMesh(sector.FloorFlat)
		sg.Ceiling = g.flatMesh(sector.CeilingFlat)

		for _, ssi := range sector.SubSectors {
			sub := &lv.SubSectors[ssi]
			if sub.Sector != si {
				return nil, fmt.Errorf("%w: subsector %d listed under sector %d belongs to %d", level.ErrMalformedLevel, ssi, si, sub.Sector)
			}

			if err := g.appendFlats(lv, sub, sector, sg, res.Queue); err != nil {
				return nil, err
			}

			for _, segi := range sub.Segments {
				seg := &lv.Segments[segi]
				if !seg.OnLinedef() || emitted[seg.Linedef] {
					continue
				}
				emitted[seg.Linedef] = true
				g.appendWalls(lv, &lv.Linedefs[seg.Linedef], res)
			}
		}

		if progress != nil {
			progress(si+1, len(lv.Sectors))
		}
	}

	meshes, quads, triangles := res.Stats()
	logger.Debug("geometry generated",
		zap.String("map", lv.Name),
		zap.Int("sectors", len(res.Sectors)),
		zap.Int("meshes", meshes),
		zap.Int("quads", quads),
		zap.Int("triangles", triangles),
		zap.Int("textures", res.Queue.Len()))

	return res, nil
}

// lookup finds a texture by name, falling back to the missing texture.
func (g *Generator) lookup(name string) (int, *texture.Texture) {
	id, tex := g.catalog.ByName(name)
	if id == texture.MissingID {
		logger.Debug("texture not found, using fallback", zap.String("name", name))
	}
	return id, tex
}

// resolve is lookup that also queues the id.
func (g *Generator) resolve(name string, q *TextureQueue) (int, *texture.Texture) {
	id, tex := g.lookup(name)
	q.Add(id)
	return id, tex
}

// color returns the vertex color for a sector.
func (g *Generator) color(s *level.Sector) mgl32.Vec4 {
	if !g.opts.LightLevels {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	l := mgl32.Clamp(float32(s.LightLevel)/255, 0, 1)
	return mgl32.Vec4{l, l, l, 1}
}
