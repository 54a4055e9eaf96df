package gltf

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"

	"github.com/Faultbox/wadglb/internal/geometry"
	"github.com/Faultbox/wadglb/internal/level"
	"github.com/Faultbox/wadglb/internal/level/leveltest"
	"github.com/Faultbox/wadglb/internal/mesh"
	"github.com/Faultbox/wadglb/internal/texture"
)

func triangleMesh(textureID int) *mesh.Mesh {
	m := mesh.New(textureID)
	m.AppendLoop([]mesh.Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}, Color: mgl32.Vec4{1, 1, 1, 1}},
		{Position: mgl32.Vec3{0, 0, 40}, Normal: mgl32.Vec3{0, 1, 0}, Color: mgl32.Vec4{1, 1, 1, 1}},
		{Position: mgl32.Vec3{60, 20, 40}, Normal: mgl32.Vec3{0, 1, 0}, Color: mgl32.Vec4{1, 1, 1, 1}},
	}, false)
	return m
}

func checker() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	return img
}

func buildGLB(t *testing.T) []byte {
	t.Helper()
	w := NewWriter(Generator, 20)
	if _, err := w.AddTexture(5, "TEX", checker(), false); err != nil {
		t.Fatalf("AddTexture failed: %v", err)
	}
	node, err := w.AddNode("sector 0", []*mesh.Mesh{triangleMesh(5), mesh.New(5)})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	w.AddScene("E1M1", []int{node})

	out, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	return out
}

func TestWriter_ContainerLayout(t *testing.T) {
	out := buildGLB(t)

	if magic := binary.LittleEndian.Uint32(out[0:4]); magic != 0x46546C67 {
		t.Errorf("magic = 0x%08X", magic)
	}
	if v := binary.LittleEndian.Uint32(out[4:8]); v != 2 {
		t.Errorf("version = %d", v)
	}

	jsonLen := int(binary.LittleEndian.Uint32(out[12:16]))
	binLen := int(binary.LittleEndian.Uint32(out[20+jsonLen:]))
	if jsonLen%4 != 0 || binLen%4 != 0 {
		t.Errorf("chunks not padded: json %d, bin %d", jsonLen, binLen)
	}

	want := 12 + 8 + jsonLen + 8 + binLen
	if total := int(binary.LittleEndian.Uint32(out[8:12])); total != want || len(out) != want {
		t.Errorf("total length header %d, file %d, want %d", total, len(out), want)
	}
	if typ := binary.LittleEndian.Uint32(out[16:20]); typ != 0x4E4F534A {
		t.Errorf("JSON chunk type = 0x%08X", typ)
	}
	if typ := binary.LittleEndian.Uint32(out[24+jsonLen:]); typ != 0x004E4942 {
		t.Errorf("BIN chunk type = 0x%08X", typ)
	}

	var doc Document
	if err := json.Unmarshal(out[20:20+jsonLen], &doc); err != nil {
		t.Fatalf("JSON chunk does not decode: %v", err)
	}
	if len(doc.Scenes) != 1 || len(doc.Meshes) != 1 {
		t.Errorf("got %d scenes, %d meshes", len(doc.Scenes), len(doc.Meshes))
	}
	if doc.Buffers[0].ByteLength != binLen {
		t.Errorf("buffer byteLength %d, BIN chunk %d", doc.Buffers[0].ByteLength, binLen)
	}
}

func TestWriter_Document(t *testing.T) {
	g, err := Parse(buildGLB(t))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	doc := g.Document

	if len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("empty mesh should be skipped, got %d primitives", len(doc.Meshes[0].Primitives))
	}
	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{"POSITION", "NORMAL", "TEXCOORD_0", "COLOR_0"} {
		if _, ok := prim.Attributes[attr]; !ok {
			t.Errorf("missing attribute %s", attr)
		}
	}

	pos := doc.Accessors[prim.Attributes["POSITION"]]
	if len(pos.Min) != 3 || len(pos.Max) != 3 {
		t.Fatalf("POSITION needs min/max, got %v/%v", pos.Min, pos.Max)
	}
	if pos.Max[0] != 3 || pos.Max[1] != 1 || pos.Max[2] != 2 {
		t.Errorf("positions should be divided by 20, max = %v", pos.Max)
	}

	seenViews := make(map[int]bool)
	for _, idx := range prim.Attributes {
		v := *doc.Accessors[idx].BufferView
		if seenViews[v] {
			t.Errorf("attributes share bufferView %d", v)
		}
		seenViews[v] = true
	}
	for i, v := range doc.BufferViews {
		if v.ByteOffset%4 != 0 {
			t.Errorf("bufferView %d offset %d not aligned", i, v.ByteOffset)
		}
	}

	if len(doc.Samplers) != 1 || *doc.Samplers[0].MagFilter != FilterNearest || *doc.Samplers[0].WrapS != WrapRepeat {
		t.Errorf("unexpected samplers %+v", doc.Samplers)
	}
	if doc.Images[0].MimeType != "image/png" {
		t.Errorf("image mime type %q", doc.Images[0].MimeType)
	}
	pbr := doc.Materials[*prim.Material].PbrMetallicRoughness
	if pbr.BaseColorTexture == nil || *pbr.MetallicFactor != 0 || *pbr.RoughnessFactor != 1 {
		t.Errorf("unexpected material %+v", pbr)
	}
}

func TestWriter_AddTextureTwice(t *testing.T) {
	w := NewWriter(Generator, 20)
	a, _ := w.AddTexture(1, "A", checker(), false)
	b, _ := w.AddTexture(1, "A", checker(), false)
	if a != b || len(w.Document().Images) != 1 {
		t.Errorf("same texture id should map to one material, got %d and %d", a, b)
	}
}

func TestWriter_UntexturedMesh(t *testing.T) {
	w := NewWriter(Generator, 20)
	m := triangleMesh(0)
	m.Textured = false
	node, err := w.AddNode("n", []*mesh.Mesh{m})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	w.AddScene("s", []int{node})
	if _, err := w.Bytes(); err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	mat := w.Document().Materials[0]
	if mat.PbrMetallicRoughness.BaseColorTexture != nil {
		t.Error("untextured mesh should get a plain material")
	}
}

func TestWriter_EmptyNode(t *testing.T) {
	w := NewWriter(Generator, 20)
	node, err := w.AddNode("empty", []*mesh.Mesh{mesh.New(0), nil})
	if err != nil || node != -1 {
		t.Errorf("AddNode = (%d, %v), want (-1, nil)", node, err)
	}
}

func TestWriter_SceneWithoutGeometry(t *testing.T) {
	w := NewWriter(Generator, 20)
	w.AddScene("E1M1", nil)

	out, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	jsonLen := int(binary.LittleEndian.Uint32(out[12:16]))
	if len(out) != 20+jsonLen {
		t.Errorf("file is %d bytes, want header and JSON chunk only (%d)", len(out), 20+jsonLen)
	}
	g, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(g.Document.Buffers) != 0 || g.BIN != nil {
		t.Errorf("expected no buffer and no BIN chunk, got %d buffers, %d BIN bytes", len(g.Document.Buffers), len(g.BIN))
	}
}

func TestValidate_EmptyBuffer(t *testing.T) {
	g := &GLB{Document: Document{
		Asset:   Asset{Version: "2.0"},
		Buffers: []Buffer{{ByteLength: 0}},
	}}
	if err := g.check(); err == nil {
		t.Error("a buffer with byteLength 0 should be rejected")
	}

	g.Document.Buffers = nil
	if err := g.check(); err != nil {
		t.Errorf("document without buffers: %v", err)
	}
}

func TestValidate_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(out []byte) []byte
	}{
		{"magic", func(out []byte) []byte { out[0] = 'x'; return out }},
		{"version", func(out []byte) []byte { out[4] = 1; return out }},
		{"total length", func(out []byte) []byte { out[8]++; return out }},
		{"truncated", func(out []byte) []byte { return out[:len(out)-4] }},
		{"chunk type", func(out []byte) []byte { out[16] = 'X'; return out }},
		{"index out of range", func(out []byte) []byte {
			g, _ := Parse(out)
			acc := g.Document.Accessors[*g.Document.Meshes[0].Primitives[0].Indices]
			view := g.Document.BufferViews[*acc.BufferView]
			jsonLen := int(binary.LittleEndian.Uint32(out[12:16]))
			binStart := 20 + jsonLen + 8
			binary.LittleEndian.PutUint32(out[binStart+view.ByteOffset:], 99)
			return out
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.corrupt(buildGLB(t))
			if err := Validate(out); !errors.Is(err, ErrInconsistentOutput) {
				t.Errorf("expected ErrInconsistentOutput, got %v", err)
			}
		})
	}
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	g, err := Parse(buildGLB(t))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	g.Document.Buffers[0].ByteLength++
	g.Document.Nodes[0].Mesh = ptr(7)
	g.Document.Textures[0].Source = ptr(3)

	errs := g.check()
	if errs == nil {
		t.Fatal("expected violations")
	}
	if n := len(multierr.Errors(errs)); n != 3 {
		t.Errorf("expected 3 violations, got %d: %v", n, errs)
	}
}

func TestEncodeLevel(t *testing.T) {
	rooms := leveltest.DefaultRooms()
	rooms.BackFloor = 16
	lv, err := level.Build(leveltest.TwoRooms(rooms))
	if err != nil {
		t.Fatalf("build level: %v", err)
	}

	catalog := texture.NewCatalog()
	for _, name := range []string{leveltest.WallTexture, leveltest.StepTexture, leveltest.FloorFlat} {
		tex, _ := texture.Compose(name, 8, 8, false, nil)
		catalog.Register(tex)
	}

	res, err := geometry.NewGenerator(catalog, geometry.DefaultOptions()).Generate(lv, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	out, err := EncodeLevel(lv.Name, res, catalog, DefaultUnitScale)
	if err != nil {
		t.Fatalf("EncodeLevel failed: %v", err)
	}

	g, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	doc := g.Document
	if len(doc.Scenes) != 1 || doc.Scene == nil || *doc.Scene != 0 {
		t.Errorf("expected one default scene")
	}
	if len(doc.Images) != res.Queue.Len() || len(doc.Textures) != res.Queue.Len() {
		t.Errorf("%d images, %d textures for %d queued ids", len(doc.Images), len(doc.Textures), res.Queue.Len())
	}
	root := doc.Nodes[doc.Scenes[0].Nodes[0]]
	if root.Name != "E1M1" || len(root.Children) != 2 {
		t.Errorf("root node %q with %d children", root.Name, len(root.Children))
	}
	// Composites without patches are fully transparent; the fallback is not.
	for _, mat := range doc.Materials {
		wantMask := mat.Name != texture.FallbackName
		if (mat.AlphaMode == "MASK") != wantMask {
			t.Errorf("material %s alpha mode %q", mat.Name, mat.AlphaMode)
		}
	}
}
