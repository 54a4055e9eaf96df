package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Faultbox/wadglb/pkg/encoding"
)

func buildSyntheticPatchNames(names ...string) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(len(names)))
	for _, n := range names {
		b := encoding.PadName(n)
		buf.Write(b[:])
	}
	return buf.Bytes()
}

func buildSyntheticTextureDefs(defs ...TextureDef) []byte {
	var body bytes.Buffer
	offsets := make([]int32, len(defs))
	base := 4 + 4*len(defs)

	for i, d := range defs {
		offsets[i] = int32(base + body.Len())
		masked := int32(0)
		if d.Masked {
			masked = 1
		}
		binary.Write(&body, binary.LittleEndian, binTextureHeader{
			Name:       encoding.PadName(d.Name),
			Masked:     masked,
			Width:      int16(d.Width),
			Height:     int16(d.Height),
			PatchCount: int16(len(d.Patches)),
		})
		for _, p := range d.Patches {
			binary.Write(&body, binary.LittleEndian, binPatchPlacement{
				OriginX: int16(p.OriginX),
				OriginY: int16(p.OriginY),
				Patch:   int16(p.PatchIndex),
			})
		}
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(len(defs)))
	binary.Write(&buf, binary.LittleEndian, offsets)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func TestParsePatchNames(t *testing.T) {
	names, err := ParsePatchNames(buildSyntheticPatchNames("WALL00_1", "DOOR2"))
	if err != nil {
		t.Fatalf("ParsePatchNames failed: %v", err)
	}
	if len(names) != 2 || names[0] != "WALL00_1" || names[1] != "DOOR2" {
		t.Errorf("unexpected names %q", names)
	}

	short := buildSyntheticPatchNames("A", "B")
	if _, err := ParsePatchNames(short[:10]); !errors.Is(err, ErrTruncatedPatchNames) {
		t.Errorf("expected ErrTruncatedPatchNames, got %v", err)
	}
}

func TestParseTextureDefs(t *testing.T) {
	data := buildSyntheticTextureDefs(
		TextureDef{Name: "STARTAN3", Width: 128, Height: 128, Patches: []PatchPlacement{
			{PatchIndex: 0, OriginX: 0, OriginY: 0},
			{PatchIndex: 1, OriginX: 64, OriginY: -8},
		}},
		TextureDef{Name: "MIDGRATE", Masked: true, Width: 64, Height: 128},
	)

	defs, err := ParseTextureDefs(data)
	if err != nil {
		t.Fatalf("ParseTextureDefs failed: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 textures, got %d", len(defs))
	}

	if defs[0].Name != "STARTAN3" || defs[0].Width != 128 || defs[0].Height != 128 {
		t.Errorf("unexpected first texture %+v", defs[0])
	}
	if len(defs[0].Patches) != 2 {
		t.Fatalf("expected 2 patches, got %d", len(defs[0].Patches))
	}
	if p := defs[0].Patches[1]; p.PatchIndex != 1 || p.OriginX != 64 || p.OriginY != -8 {
		t.Errorf("unexpected placement %+v", p)
	}
	if !defs[1].Masked || len(defs[1].Patches) != 0 {
		t.Errorf("unexpected second texture %+v", defs[1])
	}
}

func TestParseTextureDefs_Truncated(t *testing.T) {
	data := buildSyntheticTextureDefs(TextureDef{Name: "X", Width: 8, Height: 8, Patches: []PatchPlacement{{}}})

	if _, err := ParseTextureDefs(data[:len(data)-4]); !errors.Is(err, ErrTruncatedTextureDef) {
		t.Errorf("expected ErrTruncatedTextureDef, got %v", err)
	}
	if _, err := ParseTextureDefs([]byte{1, 0}); !errors.Is(err, ErrTruncatedTextureDef) {
		t.Errorf("expected ErrTruncatedTextureDef for short count, got %v", err)
	}
}
