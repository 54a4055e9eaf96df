package gltf

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/wadglb/internal/mesh"
)

// DefaultUnitScale is the number of level units per scene unit.
const DefaultUnitScale = 20

// Writer accumulates a single-buffer glTF scene and serializes it as GLB.
type Writer struct {
	doc       Document
	bin       []byte
	scale     float32
	sampler   *int
	materials map[int]int // texture id -> material index
}

// NewWriter creates a writer. Positions are divided by unitScale.
func NewWriter(generator string, unitScale float32) *Writer {
	if unitScale <= 0 {
		unitScale = DefaultUnitScale
	}
	return &Writer{
		doc: Document{
			Asset: Asset{Version: "2.0", Generator: generator},
		},
		scale:     unitScale,
		materials: make(map[int]int),
	}
}

// align pads the blob with zeros to a 4-byte boundary.
func (w *Writer) align() {
	for len(w.bin)%4 != 0 {
		w.bin = append(w.bin, 0)
	}
}

// addView appends data as a new 4-byte aligned buffer view.
func (w *Writer) addView(data []byte, target *int) int {
	w.align()
	w.doc.BufferViews = append(w.doc.BufferViews, BufferView{
		Buffer:     0,
		ByteOffset: len(w.bin),
		ByteLength: len(data),
		Target:     target,
	})
	w.bin = append(w.bin, data...)
	return len(w.doc.BufferViews) - 1
}

func (w *Writer) addAccessor(view int, componentType int, typ string, count int, lo, hi []float32) int {
	w.doc.Accessors = append(w.doc.Accessors, Accessor{
		BufferView:    ptr(view),
		ComponentType: componentType,
		Count:         count,
		Type:          typ,
		Min:           lo,
		Max:           hi,
	})
	return len(w.doc.Accessors) - 1
}

func appendFloats(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// sharedSampler returns the single nearest/repeat sampler, creating it once.
func (w *Writer) sharedSampler() int {
	if w.sampler == nil {
		w.doc.Samplers = append(w.doc.Samplers, Sampler{
			MagFilter: ptr(FilterNearest),
			MinFilter: ptr(FilterNearest),
			WrapS:     ptr(WrapRepeat),
			WrapT:     ptr(WrapRepeat),
		})
		w.sampler = ptr(len(w.doc.Samplers) - 1)
	}
	return *w.sampler
}

// AddTexture embeds img as PNG and creates the image, texture and material
// for catalog texture id. Adding the same id again returns the existing
// material.
func (w *Writer) AddTexture(id int, name string, img image.Image, masked bool) (int, error) {
	if mat, ok := w.materials[id]; ok {
		return mat, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encoding texture %s: %w", name, err)
	}

	view := w.addView(buf.Bytes(), nil)
	w.doc.Images = append(w.doc.Images, Image{Name: name, MimeType: "image/png", BufferView: ptr(view)})
	w.doc.Textures = append(w.doc.Textures, Texture{
		Name:    name,
		Sampler: ptr(w.sharedSampler()),
		Source:  ptr(len(w.doc.Images) - 1),
	})

	mat := Material{
		Name: name,
		PbrMetallicRoughness: &PbrMetallicRoughness{
			BaseColorFactor:  &[4]float32{1, 1, 1, 1},
			BaseColorTexture: &TextureInfo{Index: len(w.doc.Textures) - 1},
			MetallicFactor:   ptr[float32](0),
			RoughnessFactor:  ptr[float32](1),
		},
	}
	if masked {
		mat.AlphaMode = "MASK"
		mat.AlphaCutoff = ptr[float32](0.5)
	}
	w.doc.Materials = append(w.doc.Materials, mat)
	w.materials[id] = len(w.doc.Materials) - 1
	return w.materials[id], nil
}

// plainMaterial returns a material with a flat base color and no texture.
func (w *Writer) plainMaterial() int {
	const key = -1
	if mat, ok := w.materials[key]; ok {
		return mat
	}
	w.doc.Materials = append(w.doc.Materials, Material{
		Name: "untextured",
		PbrMetallicRoughness: &PbrMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
			MetallicFactor:  ptr[float32](0),
			RoughnessFactor: ptr[float32](1),
		},
	})
	w.materials[key] = len(w.doc.Materials) - 1
	return w.materials[key]
}

// addPrimitive writes the buffers of one mesh and returns its primitive.
func (w *Writer) addPrimitive(m *mesh.Mesh) (Primitive, error) {
	n := len(m.Vertices)
	positions := make([]byte, 0, n*12)
	normals := make([]byte, 0, n*12)
	uvs := make([]byte, 0, n*8)
	colors := make([]byte, 0, n*16)

	lo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range m.Vertices {
		p := v.Position.Mul(1 / w.scale)
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], p[c])
			hi[c] = max(hi[c], p[c])
		}
		positions = appendFloats(positions, p[:]...)
		normals = appendFloats(normals, v.Normal[:]...)
		uvs = appendFloats(uvs, v.UV[:]...)
		colors = appendFloats(colors, v.Color[:]...)
	}

	indices := make([]byte, 0, len(m.Indices)*4)
	for _, idx := range m.Indices {
		if int(idx) >= n {
			return Primitive{}, fmt.Errorf("%w: index %d with %d vertices", ErrInconsistentOutput, idx, n)
		}
		indices = binary.LittleEndian.AppendUint32(indices, idx)
	}

	array := ptr(TargetArrayBuffer)
	prim := Primitive{
		Attributes: map[string]int{
			"POSITION":   w.addAccessor(w.addView(positions, array), ComponentFloat, TypeVec3, n, lo[:], hi[:]),
			"NORMAL":     w.addAccessor(w.addView(normals, array), ComponentFloat, TypeVec3, n, nil, nil),
			"TEXCOORD_0": w.addAccessor(w.addView(uvs, array), ComponentFloat, TypeVec2, n, nil, nil),
			"COLOR_0":    w.addAccessor(w.addView(colors, array), ComponentFloat, TypeVec4, n, nil, nil),
		},
		Indices: ptr(w.addAccessor(w.addView(indices, ptr(TargetElementArrayBuffer)), ComponentUnsignedInt, TypeScalar, len(m.Indices), nil, nil)),
		Mode:    ptr(ModeTriangles),
	}

	if mat, ok := w.materials[m.TextureID]; ok && m.Textured {
		prim.Material = ptr(mat)
	} else {
		prim.Material = ptr(w.plainMaterial())
	}
	return prim, nil
}

// AddNode adds a node holding one glTF mesh with a primitive per non-empty
// mesh. It returns the node index, or -1 when every mesh was empty.
func (w *Writer) AddNode(name string, meshes []*mesh.Mesh) (int, error) {
	var prims []Primitive
	for _, m := range meshes {
		if m == nil || m.Empty() {
			continue
		}
		p, err := w.addPrimitive(m)
		if err != nil {
			return -1, fmt.Errorf("node %s: %w", name, err)
		}
		prims = append(prims, p)
	}
	if len(prims) == 0 {
		return -1, nil
	}

	w.doc.Meshes = append(w.doc.Meshes, Mesh{Name: name, Primitives: prims})
	w.doc.Nodes = append(w.doc.Nodes, Node{Name: name, Mesh: ptr(len(w.doc.Meshes) - 1)})
	return len(w.doc.Nodes) - 1, nil
}

// AddScene adds a root node named name parenting children and a scene
// holding it. The first scene becomes the default.
func (w *Writer) AddScene(name string, children []int) int {
	w.doc.Nodes = append(w.doc.Nodes, Node{Name: name, Children: children})
	root := len(w.doc.Nodes) - 1
	w.doc.Scenes = append(w.doc.Scenes, Scene{Name: name, Nodes: []int{root}})
	if w.doc.Scene == nil {
		w.doc.Scene = ptr(0)
	}
	return len(w.doc.Scenes) - 1
}

// Bytes serializes the GLB and validates the result. A scene without any
// binary data gets neither a buffer nor a BIN chunk.
func (w *Writer) Bytes() ([]byte, error) {
	w.align()
	if len(w.bin) == 0 {
		w.doc.Buffers = nil
	} else {
		w.doc.Buffers = []Buffer{{ByteLength: len(w.bin)}}
	}

	js, err := json.Marshal(&w.doc)
	if err != nil {
		return nil, fmt.Errorf("encoding glTF JSON: %w", err)
	}
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}

	total := glbHeaderSize + chunkHeadSize + len(js)
	if len(w.bin) > 0 {
		total += chunkHeadSize + len(w.bin)
	}
	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, glbMagic)
	out = binary.LittleEndian.AppendUint32(out, glbVersion)
	out = binary.LittleEndian.AppendUint32(out, 0) // total length, patched below

	out = binary.LittleEndian.AppendUint32(out, uint32(len(js)))
	out = binary.LittleEndian.AppendUint32(out, chunkJSON)
	out = append(out, js...)

	if len(w.bin) > 0 {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(w.bin)))
		out = binary.LittleEndian.AppendUint32(out, chunkBIN)
		out = append(out, w.bin...)
	}

	binary.LittleEndian.PutUint32(out[8:12], uint32(len(out)))

	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Document returns the JSON document built so far.
func (w *Writer) Document() *Document {
	return &w.doc
}
