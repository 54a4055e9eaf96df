// Package gltf writes and checks binary glTF 2.0 (GLB) scenes.
//
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package gltf

// Document is the JSON chunk of a GLB file.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Samplers    []Sampler    `json:"samplers,omitempty"`
}

// Asset carries the glTF version and producer.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Scene lists root nodes.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is a scene graph node.
type Node struct {
	Name     string `json:"name,omitempty"`
	Children []int  `json:"children,omitempty"`
	Mesh     *int   `json:"mesh,omitempty"`
}

// Mesh is a set of primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one draw call.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

// Accessor describes typed elements inside a buffer view.
type Accessor struct {
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Max           []float32 `json:"max,omitempty"`
	Min           []float32 `json:"min,omitempty"`
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	Target     *int `json:"target,omitempty"`
}

// Buffer is the binary blob. In a GLB it has no URI and is the BIN chunk.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`
}

// Material is a metallic-roughness material.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PbrMetallicRoughness *PbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
	AlphaCutoff          *float32              `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
}

// PbrMetallicRoughness holds the base color and surface parameters.
type PbrMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32     `json:"roughnessFactor,omitempty"`
}

// TextureInfo references a texture.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// Texture pairs an image with a sampler.
type Texture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
}

// Image is an embedded image stored in a buffer view.
type Image struct {
	Name       string `json:"name,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Sampler sets filtering and wrapping.
type Sampler struct {
	MagFilter *int `json:"magFilter,omitempty"`
	MinFilter *int `json:"minFilter,omitempty"`
	WrapS     *int `json:"wrapS,omitempty"`
	WrapT     *int `json:"wrapT,omitempty"`
}

// Component types.
const (
	ComponentUnsignedInt = 5125
	ComponentFloat       = 5126
)

// Accessor element types.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
)

// Buffer view targets.
const (
	TargetArrayBuffer        = 34962
	TargetElementArrayBuffer = 34963
)

// Sampler values.
const (
	FilterNearest = 9728
	WrapRepeat    = 10497
)

// ModeTriangles is the triangle list primitive mode.
const ModeTriangles = 4

// GLB container constants.
const (
	glbMagic      = 0x46546C67 // "glTF"
	glbVersion    = 2
	chunkJSON     = 0x4E4F534A // "JSON"
	chunkBIN      = 0x004E4942 // "BIN\0"
	glbHeaderSize = 12
	chunkHeadSize = 8
)

// elementSize returns the byte size of one accessor element.
func elementSize(componentType int, typ string) int {
	var comp int
	switch componentType {
	case ComponentUnsignedInt, ComponentFloat:
		comp = 4
	default:
		return 0
	}
	switch typ {
	case TypeScalar:
		return comp
	case TypeVec2:
		return comp * 2
	case TypeVec3:
		return comp * 3
	case TypeVec4:
		return comp * 4
	}
	return 0
}

func ptr[T any](v T) *T {
	return &v
}
