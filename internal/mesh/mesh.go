// Package mesh holds vertex/index buffers and the polygon helpers used to
// fill them.
package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one mesh vertex.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Color    mgl32.Vec4
}

// Mesh is a triangle list over its own vertex buffer.
type Mesh struct {
	Vertices  []Vertex
	Indices   []uint32
	TextureID int
	Textured  bool
}

// New creates an empty mesh drawn with the given catalog texture.
func New(textureID int) *Mesh {
	return &Mesh{TextureID: textureID, Textured: true}
}

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// AppendLoop appends a convex polygon as a triangle fan.
func (m *Mesh) AppendLoop(loop []Vertex, reverse bool) {
	if len(loop) < 3 {
		return
	}
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, loop...)
	for _, idx := range Triangulate(len(loop), reverse) {
		m.Indices = append(m.Indices, base+idx)
	}
}

// Bounds returns the component-wise min and max vertex position.
func (m *Mesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo := m.Vertices[0].Position
	hi := lo
	for _, v := range m.Vertices[1:] {
		for c := 0; c < 3; c++ {
			lo[c] = math32.Min(lo[c], v.Position[c])
			hi[c] = math32.Max(hi[c], v.Position[c])
		}
	}
	return lo, hi
}

// Triangulate returns fan indices for a convex loop of n vertices:
// (0, i-1, i) or, reversed, (0, i, i-1) for i in [2, n).
func Triangulate(n int, reverse bool) []uint32 {
	if n < 3 {
		return nil
	}
	out := make([]uint32, 0, (n-2)*3)
	for i := 2; i < n; i++ {
		if reverse {
			out = append(out, 0, uint32(i), uint32(i-1))
		} else {
			out = append(out, 0, uint32(i-1), uint32(i))
		}
	}
	return out
}

// CleanupCollinear drops the middle vertex of every circular triple whose
// turn angle is within tolerance radians of a straight line.
// The pass is made once, front to back; after a removal the next triple is
// taken from the shortened loop at the following index, so some
// near-collinear vertices can survive.
func CleanupCollinear(loop []Vertex, tolerance float32) []Vertex {
	out := make([]Vertex, len(loop))
	copy(out, loop)

	for i := 0; i < len(out) && len(out) >= 3; i++ {
		n := len(out)
		prev := out[(i+n-1)%n].Position
		cur := out[i].Position
		next := out[(i+1)%n].Position

		if turnAngle(prev, cur, next) <= tolerance {
			out = append(out[:i], out[i+1:]...)
		}
	}
	return out
}

// turnAngle is the angle between the incoming and outgoing edge at cur.
// Degenerate (zero-length) edges count as straight.
func turnAngle(prev, cur, next mgl32.Vec3) float32 {
	in := cur.Sub(prev)
	out := next.Sub(cur)
	li, lo := in.Len(), out.Len()
	if li == 0 || lo == 0 {
		return 0
	}
	cos := in.Dot(out) / (li * lo)
	return math32.Acos(mgl32.Clamp(cos, -1, 1))
}
