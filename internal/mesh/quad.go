package mesh

import "github.com/go-gl/mathgl/mgl32"

// Quad corner order.
const (
	TopLeft = iota
	BottomLeft
	BottomRight
	TopRight
)

// Quad is a wall rectangle with corners in TopLeft, BottomLeft,
// BottomRight, TopRight order as seen by the viewer.
type Quad struct {
	Vertices  [4]Vertex
	TextureID int
}

// FaceNormal returns normalize(cross(BL-TL, BR-TL)).
func (q *Quad) FaceNormal() mgl32.Vec3 {
	tl := q.Vertices[TopLeft].Position
	a := q.Vertices[BottomLeft].Position.Sub(tl)
	b := q.Vertices[BottomRight].Position.Sub(tl)
	n := a.Cross(b)
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// SetNormal writes n to all four corners.
func (q *Quad) SetNormal(n mgl32.Vec3) {
	for i := range q.Vertices {
		q.Vertices[i].Normal = n
	}
}

// quadIndices emits (TL, BR, BL) and (TL, TR, BR).
var quadIndices = [6]uint32{TopLeft, BottomRight, BottomLeft, TopLeft, TopRight, BottomRight}

// AppendQuad appends q as two triangles.
func (m *Mesh) AppendQuad(q Quad) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, q.Vertices[:]...)
	for _, idx := range quadIndices {
		m.Indices = append(m.Indices, base+idx)
	}
}
