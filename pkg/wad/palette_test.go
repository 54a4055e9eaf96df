package wad

import (
	"errors"
	"testing"
)

func TestParsePalettes(t *testing.T) {
	data := make([]byte, 2*paletteBytes+10)
	data[3*5] = 200                 // palette 0, color 5, red
	data[paletteBytes+3*7+2] = 100 // palette 1, color 7, blue

	pals, err := ParsePalettes(data)
	if err != nil {
		t.Fatalf("ParsePalettes failed: %v", err)
	}
	if len(pals) != 2 {
		t.Fatalf("expected 2 palettes, got %d", len(pals))
	}
	if pals[0][5].R != 200 {
		t.Errorf("palette 0 color 5 R = %d, want 200", pals[0][5].R)
	}
	if pals[1][7].B != 100 {
		t.Errorf("palette 1 color 7 B = %d, want 100", pals[1][7].B)
	}
}

func TestParseColormaps_CappedAt34(t *testing.T) {
	data := make([]byte, 40*colormapBytes)
	maps, err := ParseColormaps(data)
	if err != nil {
		t.Fatalf("ParseColormaps failed: %v", err)
	}
	if len(maps) != MaxColormaps {
		t.Errorf("expected %d colormaps, got %d", MaxColormaps, len(maps))
	}
}

func TestParse_Truncated(t *testing.T) {
	if _, err := ParsePalettes(make([]byte, 10)); !errors.Is(err, ErrTruncatedLump) {
		t.Errorf("expected ErrTruncatedLump, got %v", err)
	}
	if _, err := ParseColormaps(make([]byte, 255)); !errors.Is(err, ErrTruncatedLump) {
		t.Errorf("expected ErrTruncatedLump, got %v", err)
	}
}

func TestReadPalettes_Missing(t *testing.T) {
	a, err := Parse(NewWriter(MagicIWAD).Add("COLORMAP", make([]byte, 256)).Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := ReadPalettes(a); !errors.Is(err, ErrMissingLump) {
		t.Errorf("expected ErrMissingLump, got %v", err)
	}
	if _, err := ReadColormaps(a); err != nil {
		t.Errorf("ReadColormaps failed: %v", err)
	}
}

func TestResolve_TwoStage(t *testing.T) {
	var pal Palette
	var cm Colormap
	pal[9] = RGB{R: 1, G: 2, B: 3}
	cm[4] = 9

	if got := pal.Resolve(&cm, 4); got != (RGB{1, 2, 3}) {
		t.Errorf("Resolve = %v, want {1 2 3}", got)
	}
}
