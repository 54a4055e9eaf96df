package convert_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Faultbox/wadglb/internal/convert"
	"github.com/Faultbox/wadglb/internal/gltf"
	"github.com/Faultbox/wadglb/internal/level/leveltest"
	"github.com/Faultbox/wadglb/internal/texture"
	"github.com/Faultbox/wadglb/pkg/encoding"
	"github.com/Faultbox/wadglb/pkg/wad"
)

func solidPatch(width, height int, index uint8) []byte {
	var body bytes.Buffer
	offsets := make([]uint32, width)
	for x := range offsets {
		offsets[x] = uint32(8 + width*4 + body.Len())
		body.Write([]byte{0, uint8(height), 0})
		body.Write(bytes.Repeat([]byte{index}, height))
		body.Write([]byte{0, 0xFF})
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint16{uint16(width), uint16(height), 0, 0})
	binary.Write(&buf, binary.LittleEndian, offsets)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

// buildWAD returns a PWAD holding everything one level needs: a palette,
// a colormap, two flats, a patch and one composite per wall texture.
func buildWAD(withLevel bool) []byte {
	playpal := make([]byte, 768)
	for i := 0; i < 256; i++ {
		playpal[i*3], playpal[i*3+1], playpal[i*3+2] = uint8(i), uint8(i), uint8(i)
	}
	colormap := make([]byte, 256*2)
	for i := range colormap {
		colormap[i] = uint8(i)
	}

	var pnames bytes.Buffer
	binary.Write(&pnames, binary.LittleEndian, int32(1))
	patch := encoding.PadName("BRICK")
	pnames.Write(patch[:])

	walls := []string{leveltest.WallTexture, leveltest.StepTexture, leveltest.UpperTexture}
	var tex1 bytes.Buffer
	binary.Write(&tex1, binary.LittleEndian, int32(len(walls)))
	for i := range walls {
		binary.Write(&tex1, binary.LittleEndian, int32(4+len(walls)*4+i*32))
	}
	for _, w := range walls {
		name := encoding.PadName(w)
		tex1.Write(name[:])
		binary.Write(&tex1, binary.LittleEndian, int32(0))
		binary.Write(&tex1, binary.LittleEndian, []int16{64, 64})
		binary.Write(&tex1, binary.LittleEndian, int32(0))
		binary.Write(&tex1, binary.LittleEndian, int16(1))
		binary.Write(&tex1, binary.LittleEndian, []int16{0, 0, 0, 1, 0})
	}

	w := wad.NewWriter(wad.MagicIWAD).
		Add(wad.PaletteLump, playpal).
		Add(wad.ColormapLump, colormap).
		Add("PNAMES", pnames.Bytes()).
		Add("TEXTURE1", tex1.Bytes()).
		Marker("P_START").
		Add("BRICK", solidPatch(64, 64, 90)).
		Marker("P_END").
		Marker("F_START").
		Add(leveltest.FloorFlat, bytes.Repeat([]byte{20}, 4096)).
		Add(leveltest.CeilingFlat, bytes.Repeat([]byte{30}, 4096)).
		Marker("F_END")

	if withLevel {
		rooms := leveltest.DefaultRooms()
		rooms.BackFloor = 16
		leveltest.AppendMap(w, leveltest.TwoRooms(rooms))
	}
	return w.Bytes()
}

func TestConvert(t *testing.T) {
	var calls, lastTotal int
	opts := convert.DefaultOptions()
	opts.Progress = func(done, total int) {
		calls++
		lastTotal = total
	}

	res, err := convert.Convert(buildWAD(true), opts)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Map != "E1M1" {
		t.Errorf("expected first level E1M1, got %s", res.Map)
	}
	if calls != 2 || lastTotal != 2 {
		t.Errorf("progress called %d times with total %d", calls, lastTotal)
	}

	// fallback, BRICK, FLOOR, CEIL, WALL, STEP, UPPER
	if res.Catalog.Len() != 7 {
		t.Errorf("expected 7 catalog entries, got %d", res.Catalog.Len())
	}
	if n := res.Catalog.CountByKind()[texture.KindComposite]; n != 3 {
		t.Errorf("expected 3 composites, got %d", n)
	}

	if err := gltf.Validate(res.GLB); err != nil {
		t.Fatalf("output does not validate: %v", err)
	}
	g, err := gltf.Parse(res.GLB)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// FLOOR, CEIL, WALL, STEP; UPPER is never used because the ceilings match.
	if got := len(g.Document.Images); got != 4 {
		t.Errorf("expected 4 embedded images, got %d", got)
	}
	for _, img := range g.Document.Images {
		if img.Name == texture.FallbackName {
			t.Error("fallback texture should not be needed")
		}
	}
}

func TestConvert_NamedMap(t *testing.T) {
	opts := convert.DefaultOptions()
	opts.Map = "e1m1"
	res, err := convert.Convert(buildWAD(true), opts)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Map != "E1M1" {
		t.Errorf("map = %s", res.Map)
	}

	opts.Map = "E9M9"
	if _, err := convert.Convert(buildWAD(true), opts); !errors.Is(err, wad.ErrLumpNotFound) {
		t.Errorf("expected ErrLumpNotFound for a missing map, got %v", err)
	}
}

func TestConvert_Errors(t *testing.T) {
	if _, err := convert.Convert(buildWAD(false), convert.DefaultOptions()); !errors.Is(err, convert.ErrNoLevels) {
		t.Errorf("expected ErrNoLevels, got %v", err)
	}

	if _, err := convert.Convert([]byte("nope"), convert.DefaultOptions()); !errors.Is(err, wad.ErrMalformedContainer) {
		t.Errorf("expected ErrMalformedContainer, got %v", err)
	}

	noPalette := wad.NewWriter(wad.MagicPWAD)
	leveltest.AppendMap(noPalette, leveltest.TwoRooms(leveltest.DefaultRooms()))
	if _, err := convert.Convert(noPalette.Bytes(), convert.DefaultOptions()); !errors.Is(err, wad.ErrMissingLump) {
		t.Errorf("expected ErrMissingLump, got %v", err)
	}
}
