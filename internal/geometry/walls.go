package geometry

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/wadglb/internal/level"
	"github.com/Faultbox/wadglb/internal/mesh"
	"github.com/Faultbox/wadglb/internal/texture"
	"github.com/Faultbox/wadglb/pkg/formats"
)

// wall is one textured rectangle on a linedef before it becomes a quad.
type wall struct {
	side   int // side of the linedef the wall is seen from
	top    float32
	bottom float32
	// anchor is the height of texture row 0 before the sidedef y offset.
	anchor  float32
	sidedef *level.Sidedef
	texID   int
	tex     *texture.Texture
	color   mgl32.Vec4
}

// appendWalls emits every quad of one linedef into the sector it is seen from.
func (g *Generator) appendWalls(lv *level.Level, line *level.Linedef, res *Result) {
	if line.Length() == 0 {
		return
	}

	front := lv.SidedefOf(line, 0)
	fs := lv.SectorOf(front)

	if !line.TwoSided() {
		id, tex := g.resolve(front.Middle, res.Queue)
		anchor := fs.CeilingHeight
		if line.HasFlag(formats.LineLowerUnpegged) {
			anchor = fs.FloorHeight + float32(tex.Height)
		}
		q := g.quad(line, wall{
			side: 0, top: fs.CeilingHeight, bottom: fs.FloorHeight, anchor: anchor,
			sidedef: front, texID: id, tex: tex, color: g.color(fs),
		})
		res.Sectors[fs.Index].Walls = append(res.Sectors[fs.Index].Walls, q)
		return
	}

	back := lv.SidedefOf(line, 1)
	bs := lv.SectorOf(back)

	g.appendLowerWall(line, front, back, fs, bs, res)
	g.appendUpperWall(line, front, back, fs, bs, res)
	g.appendMaskedMiddles(line, []*level.Sidedef{front, back}, fs, bs, lv, res)
}

// appendLowerWall emits the floor step seen from the lower side, plus a
// slope quad for steps up to SlopeMaxStep.
func (g *Generator) appendLowerWall(line *level.Linedef, front, back *level.Sidedef, fs, bs *level.Sector, res *Result) {
	if fs.FloorHeight == bs.FloorHeight {
		return
	}
	side, low, high := 0, fs, bs
	if bs.FloorHeight < fs.FloorHeight {
		side, low, high = 1, bs, fs
	}

	src := pickTexture(front, back, func(s *level.Sidedef) string { return s.Lower })
	id, tex := g.resolve(src.Lower, res.Queue)

	anchor := high.FloorHeight
	if line.HasFlag(formats.LineLowerUnpegged) {
		anchor = low.CeilingHeight
	}

	q := g.quad(line, wall{
		side: side, top: high.FloorHeight, bottom: low.FloorHeight, anchor: anchor,
		sidedef: src, texID: id, tex: tex, color: g.color(low),
	})
	sg := &res.Sectors[low.Index]
	sg.Walls = append(sg.Walls, q)

	if gap := high.FloorHeight - low.FloorHeight; gap <= g.opts.SlopeMaxStep {
		sg.Slopes = append(sg.Slopes, slope(q, gap))
	}
}

// appendUpperWall emits the ceiling step seen from the higher-ceiling side.
// With SkyHack set, steps between two sky ceilings are left open.
func (g *Generator) appendUpperWall(line *level.Linedef, front, back *level.Sidedef, fs, bs *level.Sector, res *Result) {
	if fs.CeilingHeight == bs.CeilingHeight {
		return
	}
	if g.opts.SkyHack && fs.HasSkyCeiling() && bs.HasSkyCeiling() {
		return
	}
	side, high, low := 0, fs, bs
	if bs.CeilingHeight > fs.CeilingHeight {
		side, high, low = 1, bs, fs
	}

	src := pickTexture(front, back, func(s *level.Sidedef) string { return s.Upper })
	id, tex := g.resolve(src.Upper, res.Queue)

	anchor := low.CeilingHeight + float32(tex.Height)
	if line.HasFlag(formats.LineUpperUnpegged) {
		anchor = high.CeilingHeight
	}

	q := g.quad(line, wall{
		side: side, top: high.CeilingHeight, bottom: low.CeilingHeight, anchor: anchor,
		sidedef: src, texID: id, tex: tex, color: g.color(high),
	})
	res.Sectors[high.Index].Walls = append(res.Sectors[high.Index].Walls, q)
}

// appendMaskedMiddles emits the middle texture of each side of a two-sided
// line: one texture height at its anchor, clipped to the opening.
func (g *Generator) appendMaskedMiddles(line *level.Linedef, sides []*level.Sidedef, fs, bs *level.Sector, lv *level.Level, res *Result) {
	openTop := min(fs.CeilingHeight, bs.CeilingHeight)
	openBottom := max(fs.FloorHeight, bs.FloorHeight)
	if openTop <= openBottom {
		return
	}

	for side, sd := range sides {
		if !formats.HasTexture(sd.Middle) {
			continue
		}
		id, tex := g.resolve(sd.Middle, res.Queue)
		h := float32(tex.Height)

		anchor := openTop
		if line.HasFlag(formats.LineLowerUnpegged) {
			anchor = openBottom + h
		}
		top := min(openTop, anchor+sd.YOffset)
		bottom := max(openBottom, anchor+sd.YOffset-h)
		if top <= bottom {
			continue
		}

		view := lv.SectorOf(sd)
		q := g.quad(line, wall{
			side: side, top: top, bottom: bottom, anchor: anchor,
			sidedef: sd, texID: id, tex: tex, color: g.color(view),
		})
		res.Sectors[view.Index].Walls = append(res.Sectors[view.Index].Walls, q)
	}
}

// pickTexture returns the front sidedef when it names a texture in the
// selected slot, else the back one. A back slot of "-" resolves to the
// missing texture like any other unknown name.
func pickTexture(front, back *level.Sidedef, slot func(*level.Sidedef) string) *level.Sidedef {
	if formats.HasTexture(slot(front)) {
		return front
	}
	return back
}

// quad lays out w on line. Seen from the front the left end is the line's
// start vertex; seen from the back it is the end vertex.
//
// u runs along the wall from the left end, offset by the sidedef x offset.
// v(z) = (anchor - z + yoffset) / height, so row 0 sits at the anchor.
func (g *Generator) quad(line *level.Linedef, w wall) mesh.Quad {
	left, right := line.Start, line.End
	if w.side == 1 {
		left, right = right, left
	}

	tw, th := float32(w.tex.Width), float32(w.tex.Height)
	u0 := w.sidedef.XOffset / tw
	u1 := (w.sidedef.XOffset + line.Length()) / tw
	vTop := (w.anchor - w.top + w.sidedef.YOffset) / th
	vBottom := (w.anchor - w.bottom + w.sidedef.YOffset) / th

	q := mesh.Quad{TextureID: w.texID}
	q.Vertices[mesh.TopLeft] = mesh.Vertex{Position: mgl32.Vec3{left.X(), w.top, left.Y()}, UV: mgl32.Vec2{u0, vTop}}
	q.Vertices[mesh.BottomLeft] = mesh.Vertex{Position: mgl32.Vec3{left.X(), w.bottom, left.Y()}, UV: mgl32.Vec2{u0, vBottom}}
	q.Vertices[mesh.BottomRight] = mesh.Vertex{Position: mgl32.Vec3{right.X(), w.bottom, right.Y()}, UV: mgl32.Vec2{u1, vBottom}}
	q.Vertices[mesh.TopRight] = mesh.Vertex{Position: mgl32.Vec3{right.X(), w.top, right.Y()}, UV: mgl32.Vec2{u1, vTop}}
	for i := range q.Vertices {
		q.Vertices[i].Color = w.color
	}

	// The mirror makes FaceNormal point away from the viewer.
	q.SetNormal(q.FaceNormal().Mul(-1))
	return q
}

// slope copies a floor step quad and pushes its top edge along the face
// normal by the step height, giving a ramp into the higher sector.
func slope(step mesh.Quad, gap float32) mesh.Quad {
	s := step
	d := step.FaceNormal().Mul(gap)
	s.Vertices[mesh.TopLeft].Position = s.Vertices[mesh.TopLeft].Position.Add(d)
	s.Vertices[mesh.TopRight].Position = s.Vertices[mesh.TopRight].Position.Add(d)
	s.SetNormal(s.FaceNormal().Mul(-1))
	return s
}
