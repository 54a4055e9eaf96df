package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/wadglb/internal/level"
	"github.com/Faultbox/wadglb/internal/mesh"
)

var (
	floorNormal   = mgl32.Vec3{0, 1, 0}
	ceilingNormal = mgl32.Vec3{0, -1, 0}
)

// flatMesh creates the empty floor or ceiling mesh of a sector. Its texture
// is queued once a polygon lands in it.
func (g *Generator) flatMesh(flat string) *mesh.Mesh {
	id, _ := g.lookup(flat)
	return mesh.New(id)
}

// appendFlats adds the floor and ceiling polygons of one sub-sector.
// GL segments run clockwise in map space, which the (x, z) = (map x, map y)
// mirror turns counter-clockwise seen from above: the floor fan keeps the
// loop order and the ceiling fan reverses it.
func (g *Generator) appendFlats(lv *level.Level, sub *level.SubSector, sector *level.Sector, sg *SectorGeometry, q *TextureQueue) error {
	points := make([]mgl32.Vec2, 0, len(sub.Segments))
	for _, segi := range sub.Segments {
		if segi < 0 || segi >= len(lv.Segments) {
			return fmt.Errorf("%w: subsector %d references segment %d", level.ErrMalformedLevel, sub.Index, segi)
		}
		points = append(points, lv.Segments[segi].Start)
	}

	color := g.color(sector)
	g.appendFlat(sg.Floor, points, sector.FloorHeight, floorNormal, color, false, q)
	g.appendFlat(sg.Ceiling, points, sector.CeilingHeight, ceilingNormal, color, true, q)
	return nil
}

func (g *Generator) appendFlat(m *mesh.Mesh, points []mgl32.Vec2, height float32, normal mgl32.Vec3, color mgl32.Vec4, reverse bool, q *TextureQueue) {
	tex, _ := g.catalog.ByID(m.TextureID)
	w, h := float32(tex.Width), float32(tex.Height)

	loop := make([]mesh.Vertex, len(points))
	for i, p := range points {
		loop[i] = mesh.Vertex{
			Position: mgl32.Vec3{p.X(), height, p.Y()},
			Normal:   normal,
			UV:       mgl32.Vec2{p.X() / w, -p.Y() / h},
			Color:    color,
		}
	}

	loop = mesh.CleanupCollinear(loop, g.opts.CollinearTolerance)
	if len(loop) < 3 {
		return
	}
	m.AppendLoop(loop, reverse)
	q.Add(m.TextureID)
}
