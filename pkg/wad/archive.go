// Package wad provides reading functionality for Doom WAD archives.
package wad

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/wadglb/pkg/encoding"
)

// Archive format errors.
var (
	ErrMalformedContainer = errors.New("malformed WAD container")
	ErrLumpNotFound       = errors.New("lump not found")
	ErrMissingLump        = errors.New("required lump missing")
	ErrIndexOutOfRange    = errors.New("lump index out of range")
	ErrLumpOutOfRange     = errors.New("lump data out of range")
	ErrTruncatedLump      = errors.New("truncated lump")
)

const (
	headerSize    = 12
	directorySize = 16
)

// Magic values accepted in the first four bytes of a WAD.
const (
	MagicIWAD = "IWAD"
	MagicPWAD = "PWAD"
)

// Header contains the WAD file header.
type Header struct {
	Magic           [4]byte
	LumpCount       int32
	DirectoryOffset int32
}

// Entry is one directory record: a named byte range inside the archive.
type Entry struct {
	Name   string
	Offset int
	Size   int
}

// Archive represents a parsed WAD held in memory.
type Archive struct {
	header  Header
	data    []byte
	entries []Entry
}

// Parse parses a WAD archive from raw bytes.
// The directory is decoded up front; lump payloads are sliced on demand.
func Parse(data []byte) (*Archive, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrMalformedContainer, headerSize, len(data))
	}

	var h Header
	copy(h.Magic[:], data[0:4])
	if magic := string(h.Magic[:]); magic != MagicIWAD && magic != MagicPWAD {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformedContainer, magic)
	}
	h.LumpCount = int32(binary.LittleEndian.Uint32(data[4:8]))
	h.DirectoryOffset = int32(binary.LittleEndian.Uint32(data[8:12]))

	if h.LumpCount < 0 || h.DirectoryOffset < 0 {
		return nil, fmt.Errorf("%w: negative lump count or directory offset", ErrMalformedContainer)
	}

	dirStart := int(h.DirectoryOffset)
	dirEnd := dirStart + int(h.LumpCount)*directorySize
	if dirEnd > len(data) {
		return nil, fmt.Errorf("%w: directory [%d,%d) exceeds %d bytes", ErrMalformedContainer, dirStart, dirEnd, len(data))
	}

	a := &Archive{
		header:  h,
		data:    data,
		entries: make([]Entry, h.LumpCount),
	}

	for i := range a.entries {
		rec := data[dirStart+i*directorySize : dirStart+(i+1)*directorySize]
		a.entries[i] = Entry{
			Offset: int(int32(binary.LittleEndian.Uint32(rec[0:4]))),
			Size:   int(int32(binary.LittleEndian.Uint32(rec[4:8]))),
			Name:   encoding.FixedName(rec[8:16]),
		}
	}

	return a, nil
}

// ParseFile parses a WAD archive from disk.
func ParseFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading WAD file: %w", err)
	}
	return Parse(data)
}

// IsIWAD reports whether the archive is a main game archive.
func (a *Archive) IsIWAD() bool {
	return string(a.header.Magic[:]) == MagicIWAD
}

// Len returns the number of directory entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entry returns the directory entry at index.
func (a *Archive) Entry(index int) (Entry, error) {
	if index < 0 || index >= len(a.entries) {
		return Entry{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(a.entries))
	}
	return a.entries[index], nil
}

// Find returns the index of the first entry named name.
func (a *Archive) Find(name string) (int, error) {
	return a.FindAfter(0, name)
}

// FindAfter returns the index of the first entry at or after start named name.
func (a *Archive) FindAfter(start int, name string) (int, error) {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(a.entries); i++ {
		if a.entries[i].Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrLumpNotFound, name)
}

// Contains checks if a lump exists.
func (a *Archive) Contains(name string) bool {
	_, err := a.Find(name)
	return err == nil
}

// Read returns the payload of the entry at index.
// The returned slice aliases the archive buffer and must not be modified.
func (a *Archive) Read(index int) ([]byte, error) {
	e, err := a.Entry(index)
	if err != nil {
		return nil, err
	}
	end := e.Offset + e.Size
	if e.Offset < 0 || e.Size < 0 || end > len(a.data) {
		return nil, fmt.Errorf("%w: %s [%d,%d) in %d bytes", ErrLumpOutOfRange, e.Name, e.Offset, end, len(a.data))
	}
	return a.data[e.Offset:end], nil
}

// ReadNamed finds and reads the first lump named name.
func (a *Archive) ReadNamed(name string) ([]byte, error) {
	idx, err := a.Find(name)
	if err != nil {
		return nil, err
	}
	return a.Read(idx)
}

// ReadRequired is ReadNamed with a missing lump reported as ErrMissingLump.
func (a *Archive) ReadRequired(name string) ([]byte, error) {
	data, err := a.ReadNamed(name)
	if errors.Is(err, ErrLumpNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMissingLump, name)
	}
	return data, err
}

// Between returns the indices strictly between the first start marker and
// the following end marker. Nested markers and empty lumps are skipped.
func (a *Archive) Between(startMarker, endMarker string) ([]int, error) {
	start, err := a.Find(startMarker)
	if err != nil {
		return nil, err
	}
	end, err := a.FindAfter(start+1, endMarker)
	if err != nil {
		return nil, err
	}

	var indices []int
	for i := start + 1; i < end; i++ {
		e := a.entries[i]
		if e.Size == 0 || IsMarker(e.Name) {
			continue
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// IsMarker reports whether name is a namespace marker such as P1_START.
func IsMarker(name string) bool {
	return strings.HasSuffix(name, "_START") || strings.HasSuffix(name, "_END")
}
