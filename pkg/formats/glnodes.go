package formats

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// GL nodes errors.
var (
	ErrUnsupportedGLVersion = errors.New("unsupported GL nodes version")
	ErrTruncatedGLData      = errors.New("truncated GL nodes data")
)

// GL nodes lump names, in the order they follow a GL_<map> marker.
const (
	GLVertLump   = "GL_VERT"
	GLSegsLump   = "GL_SEGS"
	GLSSectLump  = "GL_SSECT"
	GLNodesLump  = "GL_NODES"
	glMagicV2    = "gNd2"
	glMagicV3    = "gNd3"
	glMagicV4    = "gNd4"
	glMagicV5    = "gNd5"
	glNoLinedef  = 0xFFFF
	glNoPartner  = 0xFFFFFFFF
	glVertFlagV2 = 0x8000
	glVertFlagV5 = 0x80000000
)

// GLVersion identifies the GL nodes layout, taken from the GL_VERT magic.
type GLVersion int

const (
	GLVersion1 GLVersion = 1
	GLVersion2 GLVersion = 2
	GLVersion5 GLVersion = 5
)

// String returns the version as "vN".
func (v GLVersion) String() string {
	return fmt.Sprintf("v%d", int(v))
}

// GLVertex is an extra vertex created by the nodes builder, in map units.
type GLVertex struct {
	X, Y float32
}

// VertexRef points into either VERTEXES or GL_VERT.
type VertexRef struct {
	Index int
	GL    bool
}

// GLSeg is one GL_SEGS record. Linedef is -1 for partition-only segments.
type GLSeg struct {
	Start   VertexRef
	End     VertexRef
	Linedef int
	Side    int // 0 = front, 1 = back
	Partner int // -1 when none
}

// HasLinedef reports whether the segment lies on a linedef.
func (s GLSeg) HasLinedef() bool {
	return s.Linedef >= 0
}

// GLSubSector is one GL_SSECT record: a run of consecutive GL_SEGS.
type GLSubSector struct {
	Count int
	First int
}

// ParseGLVertices parses GL_VERT and reports which layout the GL lumps use.
func ParseGLVertices(data []byte) ([]GLVertex, GLVersion, error) {
	if len(data) >= 4 {
		switch string(data[0:4]) {
		case glMagicV2:
			verts, err := parseFixedVertices(data[4:])
			return verts, GLVersion2, err
		case glMagicV5:
			verts, err := parseFixedVertices(data[4:])
			return verts, GLVersion5, err
		case glMagicV3, glMagicV4:
			return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedGLVersion, data[0:4])
		}
	}

	// v1: headerless 16-bit integer pairs
	if len(data)%4 != 0 {
		return nil, 0, fmt.Errorf("%w: %s has %d bytes", ErrTruncatedGLData, GLVertLump, len(data))
	}
	verts := make([]GLVertex, len(data)/4)
	for i := range verts {
		verts[i] = GLVertex{
			X: fixedToFloat(int16(binary.LittleEndian.Uint16(data[i*4:])), 0),
			Y: fixedToFloat(int16(binary.LittleEndian.Uint16(data[i*4+2:])), 0),
		}
	}
	return verts, GLVersion1, nil
}

// parseFixedVertices decodes 16.16 fixed point pairs.
func parseFixedVertices(data []byte) ([]GLVertex, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes after magic", ErrTruncatedGLData, GLVertLump, len(data))
	}
	verts := make([]GLVertex, len(data)/8)
	for i := range verts {
		x := int32(binary.LittleEndian.Uint32(data[i*8:]))
		y := int32(binary.LittleEndian.Uint32(data[i*8+4:]))
		verts[i] = GLVertex{X: fixedToFloat(x, 16), Y: fixedToFloat(y, 16)}
	}
	return verts, nil
}

// fixedToFloat converts a signed fixed point value with fracBits fraction bits.
func fixedToFloat[T constraints.Signed](v T, fracBits uint) float32 {
	return float32(v) / float32(int64(1)<<fracBits)
}

// ParseGLSegs parses GL_SEGS for the given layout.
func ParseGLSegs(data []byte, version GLVersion) ([]GLSeg, error) {
	if version == GLVersion5 {
		return parseGLSegsV5(data)
	}

	const size = 10
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrTruncatedGLData, GLSegsLump, len(data))
	}
	segs := make([]GLSeg, len(data)/size)
	for i := range segs {
		rec := data[i*size:]
		start := binary.LittleEndian.Uint16(rec[0:])
		end := binary.LittleEndian.Uint16(rec[2:])
		line := binary.LittleEndian.Uint16(rec[4:])
		partner := binary.LittleEndian.Uint16(rec[8:])

		segs[i] = GLSeg{
			Start:   VertexRef{Index: int(start &^ glVertFlagV2), GL: start&glVertFlagV2 != 0},
			End:     VertexRef{Index: int(end &^ glVertFlagV2), GL: end&glVertFlagV2 != 0},
			Linedef: -1,
			Side:    int(binary.LittleEndian.Uint16(rec[6:])),
			Partner: -1,
		}
		if line != glNoLinedef {
			segs[i].Linedef = int(line)
		}
		if partner != 0xFFFF {
			segs[i].Partner = int(partner)
		}
	}
	return segs, nil
}

func parseGLSegsV5(data []byte) ([]GLSeg, error) {
	const size = 16
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrTruncatedGLData, GLSegsLump, len(data))
	}
	segs := make([]GLSeg, len(data)/size)
	for i := range segs {
		rec := data[i*size:]
		start := binary.LittleEndian.Uint32(rec[0:])
		end := binary.LittleEndian.Uint32(rec[4:])
		line := binary.LittleEndian.Uint16(rec[8:])
		partner := binary.LittleEndian.Uint32(rec[12:])

		segs[i] = GLSeg{
			Start:   VertexRef{Index: int(start &^ glVertFlagV5), GL: start&glVertFlagV5 != 0},
			End:     VertexRef{Index: int(end &^ glVertFlagV5), GL: end&glVertFlagV5 != 0},
			Linedef: -1,
			Side:    int(binary.LittleEndian.Uint16(rec[10:])),
			Partner: -1,
		}
		if line != glNoLinedef {
			segs[i].Linedef = int(line)
		}
		if partner != glNoPartner {
			segs[i].Partner = int(partner)
		}
	}
	return segs, nil
}

// ParseGLSubSectors parses GL_SSECT for the given layout.
func ParseGLSubSectors(data []byte, version GLVersion) ([]GLSubSector, error) {
	size := 4
	if version == GLVersion5 {
		size = 8
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrTruncatedGLData, GLSSectLump, len(data))
	}

	subs := make([]GLSubSector, len(data)/size)
	for i := range subs {
		rec := data[i*size:]
		if version == GLVersion5 {
			subs[i] = GLSubSector{
				Count: int(binary.LittleEndian.Uint32(rec[0:])),
				First: int(binary.LittleEndian.Uint32(rec[4:])),
			}
			continue
		}
		subs[i] = GLSubSector{
			Count: int(binary.LittleEndian.Uint16(rec[0:])),
			First: int(binary.LittleEndian.Uint16(rec[2:])),
		}
	}
	return subs, nil
}
