package wad

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/wadglb/pkg/encoding"
)

// Writer assembles a WAD archive in memory.
// Lumps are laid out in insertion order, followed by the directory.
type Writer struct {
	magic string
	names []string
	lumps [][]byte
}

// NewWriter creates a writer for the given magic (MagicIWAD or MagicPWAD).
func NewWriter(magic string) *Writer {
	return &Writer{magic: magic}
}

// Add appends a lump. A nil payload writes a zero-length marker.
func (w *Writer) Add(name string, data []byte) *Writer {
	w.names = append(w.names, name)
	w.lumps = append(w.lumps, data)
	return w
}

// Marker appends a zero-length lump.
func (w *Writer) Marker(name string) *Writer {
	return w.Add(name, nil)
}

// Bytes serializes the archive.
func (w *Writer) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(w.magic)
	binary.Write(&buf, binary.LittleEndian, int32(len(w.lumps)))
	binary.Write(&buf, binary.LittleEndian, int32(0)) // directory offset, patched below

	offsets := make([]int32, len(w.lumps))
	for i, data := range w.lumps {
		offsets[i] = int32(buf.Len())
		buf.Write(data)
	}

	dirOffset := int32(buf.Len())
	for i, data := range w.lumps {
		binary.Write(&buf, binary.LittleEndian, offsets[i])
		binary.Write(&buf, binary.LittleEndian, int32(len(data)))
		name := encoding.PadName(w.names[i])
		buf.Write(name[:])
	}

	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[8:12], uint32(dirOffset))
	return out
}
