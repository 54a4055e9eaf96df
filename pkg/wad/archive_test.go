package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestParse_InvalidMagic(t *testing.T) {
	data := make([]byte, 16)
	copy(data, "XWAD")
	_, err := Parse(data)
	if !errors.Is(err, ErrMalformedContainer) {
		t.Errorf("expected ErrMalformedContainer, got %v", err)
	}
}

func TestParse_TruncatedHeader(t *testing.T) {
	_, err := Parse([]byte("IWAD\x01\x00"))
	if !errors.Is(err, ErrMalformedContainer) {
		t.Errorf("expected ErrMalformedContainer, got %v", err)
	}
}

func TestParse_DirectoryOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("PWAD")
	binary.Write(&buf, binary.LittleEndian, int32(4))
	binary.Write(&buf, binary.LittleEndian, int32(12))
	_, err := Parse(buf.Bytes())
	if !errors.Is(err, ErrMalformedContainer) {
		t.Errorf("expected ErrMalformedContainer, got %v", err)
	}
}

func TestDirectoryRoundTrip(t *testing.T) {
	// Hand-built archive: payload at a known offset, directory record pointing at it.
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}
	var buf bytes.Buffer
	buf.WriteString("IWAD")
	binary.Write(&buf, binary.LittleEndian, int32(2))
	binary.Write(&buf, binary.LittleEndian, int32(12+3+len(payload)))
	buf.Write([]byte{0xAA, 0xBB, 0xCC}) // filler before payload
	buf.Write(payload)

	writeRecord := func(offset, size int32, name string) {
		binary.Write(&buf, binary.LittleEndian, offset)
		binary.Write(&buf, binary.LittleEndian, size)
		var n [8]byte
		copy(n[:], name)
		buf.Write(n[:])
	}
	writeRecord(12, 3, "FILLER")
	writeRecord(15, int32(len(payload)), "TARGET")

	a, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	idx, err := a.Find("TARGET")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected index 1, got %d", idx)
	}

	got, err := a.Read(idx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Read = %x, want %x", got, payload)
	}
}

func TestFind_FirstMatchWins(t *testing.T) {
	data := NewWriter(MagicPWAD).
		Add("DUP", []byte{1}).
		Add("OTHER", []byte{2}).
		Add("DUP", []byte{3}).
		Bytes()

	a, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	idx, err := a.Find("DUP")
	if err != nil || idx != 0 {
		t.Fatalf("Find(DUP) = %d, %v; want 0", idx, err)
	}

	idx, err = a.FindAfter(1, "DUP")
	if err != nil || idx != 2 {
		t.Fatalf("FindAfter(1, DUP) = %d, %v; want 2", idx, err)
	}
}

func TestFind_NotFound(t *testing.T) {
	a, err := Parse(NewWriter(MagicIWAD).Add("A", nil).Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := a.Find("B"); !errors.Is(err, ErrLumpNotFound) {
		t.Errorf("expected ErrLumpNotFound, got %v", err)
	}
	if _, err := a.ReadRequired("B"); !errors.Is(err, ErrMissingLump) {
		t.Errorf("expected ErrMissingLump, got %v", err)
	}
}

func TestFind_NameComparisonStopsAtNull(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("IWAD")
	binary.Write(&buf, binary.LittleEndian, int32(1))
	binary.Write(&buf, binary.LittleEndian, int32(12))
	binary.Write(&buf, binary.LittleEndian, int32(0))
	binary.Write(&buf, binary.LittleEndian, int32(0))
	buf.Write([]byte{'M', 'A', 'P', 0, 'J', 'U', 'N', 'K'})

	a, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := a.Find("MAP"); err != nil {
		t.Errorf("expected MAP to match null-terminated name, got %v", err)
	}
}

func TestEntry_IndexOutOfRange(t *testing.T) {
	a, err := Parse(NewWriter(MagicIWAD).Add("A", []byte{1}).Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, idx := range []int{-1, 1, 100} {
		if _, err := a.Entry(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Entry(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
		if _, err := a.Read(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Read(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
}

func TestRead_LumpOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("IWAD")
	binary.Write(&buf, binary.LittleEndian, int32(1))
	binary.Write(&buf, binary.LittleEndian, int32(12))
	binary.Write(&buf, binary.LittleEndian, int32(0))
	binary.Write(&buf, binary.LittleEndian, int32(1000)) // far past the end
	buf.Write([]byte("BIG\x00\x00\x00\x00\x00"))

	a, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := a.Entry(0); err != nil {
		t.Errorf("Entry should only check the index, got %v", err)
	}
	if _, err := a.Read(0); !errors.Is(err, ErrLumpOutOfRange) {
		t.Errorf("expected ErrLumpOutOfRange, got %v", err)
	}
}

func TestBetween_SkipsNestedMarkers(t *testing.T) {
	data := NewWriter(MagicIWAD).
		Add("PLAYPAL", []byte{0}).
		Marker("P_START").
		Marker("P1_START").
		Add("WALL01", []byte{1}).
		Add("WALL02", []byte{2}).
		Marker("P1_END").
		Add("EMPTY", nil).
		Marker("P_END").
		Add("AFTER", []byte{3}).
		Bytes()

	a, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	indices, err := a.Between("P_START", "P_END")
	if err != nil {
		t.Fatalf("Between failed: %v", err)
	}
	if len(indices) != 2 {
		t.Fatalf("expected 2 lumps, got %d", len(indices))
	}
	for i, want := range []string{"WALL01", "WALL02"} {
		e, _ := a.Entry(indices[i])
		if e.Name != want {
			t.Errorf("lump %d = %s, want %s", i, e.Name, want)
		}
	}
}

func TestLevelNames(t *testing.T) {
	data := NewWriter(MagicPWAD).
		Marker("MAP02").
		Add("THINGS", []byte{0}).
		Marker("E1M1").
		Add("THINGS", []byte{0}).
		Marker("GL_E1M1").
		Add("GL_VERT", []byte{0}).
		Bytes()

	a, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	names := a.LevelNames()
	if len(names) != 2 || names[0] != "E1M1" || names[1] != "MAP02" {
		t.Errorf("LevelNames = %v, want [E1M1 MAP02]", names)
	}
}

func TestGLMarker(t *testing.T) {
	if got := GLMarker("e1m1"); got != "GL_E1M1" {
		t.Errorf("GLMarker(e1m1) = %s", got)
	}
	if got := GLMarker("LONGMAP1"); got != "GL_LEVEL" {
		t.Errorf("GLMarker(LONGMAP1) = %s", got)
	}
}

func TestMapLumps(t *testing.T) {
	data := NewWriter(MagicPWAD).
		Marker("E1M1").
		Add("THINGS", []byte{1}).
		Add("LINEDEFS", []byte{2}).
		Add("VERTEXES", []byte{3}).
		Marker("E1M2").
		Add("THINGS", []byte{4}).
		Add("SECTORS", []byte{5}).
		Marker("GL_E1M1").
		Add("GL_VERT", []byte{6}).
		Add("GL_SEGS", []byte{7}).
		Bytes()

	a, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	lumps, err := a.MapLumps("E1M1")
	if err != nil {
		t.Fatalf("MapLumps failed: %v", err)
	}
	if len(lumps) != 3 || lumps["LINEDEFS"] != 2 {
		t.Errorf("unexpected E1M1 lumps %v", lumps)
	}
	if _, ok := lumps["SECTORS"]; ok {
		t.Error("E1M1 block must stop at the next map marker")
	}

	gl, err := a.GLLumps("E1M1")
	if err != nil {
		t.Fatalf("GLLumps failed: %v", err)
	}
	if gl["GL_VERT"] != 8 || gl["GL_SEGS"] != 9 {
		t.Errorf("unexpected GL lumps %v", gl)
	}

	if _, err := a.GLLumps("E1M2"); !errors.Is(err, ErrLumpNotFound) {
		t.Errorf("expected ErrLumpNotFound, got %v", err)
	}
	if _, err := a.MapLumps("E9M9"); !errors.Is(err, ErrLumpNotFound) {
		t.Errorf("expected ErrLumpNotFound, got %v", err)
	}
}

func TestGLLumps_GenericMarker(t *testing.T) {
	data := NewWriter(MagicPWAD).
		Add("GL_LEVEL", []byte("LEVEL=OTHERMAP\n")).
		Add("GL_VERT", []byte{1}).
		Add("GL_LEVEL", []byte("LEVEL=LONGMAP1\n")).
		Add("GL_VERT", []byte{2}).
		Bytes()

	a, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	gl, err := a.GLLumps("LONGMAP1")
	if err != nil {
		t.Fatalf("GLLumps failed: %v", err)
	}
	if gl["GL_VERT"] != 3 {
		t.Errorf("expected GL_VERT at 3, got %v", gl)
	}
}
