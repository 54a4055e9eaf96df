package gltf

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInconsistentOutput is returned when a GLB fails its consistency checks.
var ErrInconsistentOutput = errors.New("inconsistent GLB output")

// GLB is a split binary glTF file.
type GLB struct {
	Document Document
	BIN      []byte
}

// Parse splits a GLB into its JSON document and BIN chunk, checking the
// container framing.
func Parse(data []byte) (*GLB, error) {
	if len(data) < glbHeaderSize+chunkHeadSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a GLB", ErrInconsistentOutput, len(data))
	}

	var errs error
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != glbMagic {
		errs = multierr.Append(errs, fmt.Errorf("bad magic 0x%08X", magic))
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != glbVersion {
		errs = multierr.Append(errs, fmt.Errorf("unsupported version %d", version))
	}
	if length := binary.LittleEndian.Uint32(data[8:12]); int(length) != len(data) {
		errs = multierr.Append(errs, fmt.Errorf("header length %d, file is %d bytes", length, len(data)))
	}

	off := glbHeaderSize
	jsonLen := int(binary.LittleEndian.Uint32(data[off:]))
	if typ := binary.LittleEndian.Uint32(data[off+4:]); typ != chunkJSON {
		errs = multierr.Append(errs, fmt.Errorf("first chunk type 0x%08X, want JSON", typ))
	}
	if jsonLen%4 != 0 {
		errs = multierr.Append(errs, fmt.Errorf("JSON chunk length %d not 4-byte aligned", jsonLen))
	}
	off += chunkHeadSize
	if off+jsonLen > len(data) {
		return nil, fmt.Errorf("%w: %w", ErrInconsistentOutput, multierr.Append(errs, fmt.Errorf("JSON chunk overruns file")))
	}

	g := &GLB{}
	if err := json.Unmarshal(data[off:off+jsonLen], &g.Document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInconsistentOutput, multierr.Append(errs, fmt.Errorf("decoding JSON chunk: %w", err)))
	}
	off += jsonLen

	if off < len(data) {
		if off+chunkHeadSize > len(data) {
			errs = multierr.Append(errs, fmt.Errorf("truncated BIN chunk header"))
		} else {
			binLen := int(binary.LittleEndian.Uint32(data[off:]))
			if typ := binary.LittleEndian.Uint32(data[off+4:]); typ != chunkBIN {
				errs = multierr.Append(errs, fmt.Errorf("second chunk type 0x%08X, want BIN", typ))
			}
			if binLen%4 != 0 {
				errs = multierr.Append(errs, fmt.Errorf("BIN chunk length %d not 4-byte aligned", binLen))
			}
			off += chunkHeadSize
			if off+binLen != len(data) {
				errs = multierr.Append(errs, fmt.Errorf("BIN chunk ends at %d, file is %d bytes", off+binLen, len(data)))
			}
			if off+binLen <= len(data) {
				g.BIN = data[off : off+binLen]
			}
		}
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrInconsistentOutput, errs)
	}
	return g, nil
}

// Validate parses a GLB and checks that the document and the BIN chunk
// agree. Every violation found is reported in one error.
func Validate(data []byte) error {
	g, err := Parse(data)
	if err != nil {
		return err
	}
	if errs := g.check(); errs != nil {
		return fmt.Errorf("%w: %w", ErrInconsistentOutput, errs)
	}
	return nil
}

func (g *GLB) check() error {
	doc := &g.Document
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	if doc.Asset.Version != "2.0" {
		add("asset version %q", doc.Asset.Version)
	}

	// A document without binary data has no buffer and no BIN chunk.
	switch {
	case len(doc.Buffers) == 0:
		if g.BIN != nil {
			add("BIN chunk of %d bytes without a buffer", len(g.BIN))
		}
		if len(doc.BufferViews) > 0 {
			add("%d bufferViews without a buffer", len(doc.BufferViews))
		}
	case len(doc.Buffers) > 1:
		add("%d buffers, want 1", len(doc.Buffers))
	case doc.Buffers[0].ByteLength < 1:
		add("buffer byteLength %d, must be at least 1", doc.Buffers[0].ByteLength)
	case doc.Buffers[0].ByteLength != len(g.BIN):
		add("buffer byteLength %d, BIN chunk is %d bytes", doc.Buffers[0].ByteLength, len(g.BIN))
	}

	prevEnd := 0
	for i, v := range doc.BufferViews {
		switch {
		case v.Buffer != 0:
			add("bufferView %d references buffer %d", i, v.Buffer)
		case v.ByteOffset%4 != 0:
			add("bufferView %d offset %d not 4-byte aligned", i, v.ByteOffset)
		case v.ByteOffset < prevEnd:
			add("bufferView %d at %d overlaps previous view ending at %d", i, v.ByteOffset, prevEnd)
		case v.ByteOffset-prevEnd >= 4:
			add("bufferView %d leaves a %d byte gap", i, v.ByteOffset-prevEnd)
		case v.ByteLength < 0 || v.ByteOffset+v.ByteLength > len(g.BIN):
			add("bufferView %d [%d,+%d) outside the %d byte buffer", i, v.ByteOffset, v.ByteLength, len(g.BIN))
		}
		prevEnd = v.ByteOffset + v.ByteLength
	}

	for i, a := range doc.Accessors {
		if a.BufferView == nil || *a.BufferView < 0 || *a.BufferView >= len(doc.BufferViews) {
			add("accessor %d has no valid bufferView", i)
			continue
		}
		size := elementSize(a.ComponentType, a.Type)
		if size == 0 {
			add("accessor %d has unsupported type %d/%s", i, a.ComponentType, a.Type)
			continue
		}
		if view := doc.BufferViews[*a.BufferView]; a.Count*size != view.ByteLength {
			add("accessor %d covers %d bytes, bufferView %d is %d", i, a.Count*size, *a.BufferView, view.ByteLength)
		}
	}

	for mi, m := range doc.Meshes {
		for pi, p := range m.Primitives {
			g.checkPrimitive(mi, pi, p, add)
		}
	}

	for i, img := range doc.Images {
		if img.BufferView == nil || *img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews) {
			add("image %d has no valid bufferView", i)
		}
	}
	for i, t := range doc.Textures {
		if t.Source == nil || *t.Source < 0 || *t.Source >= len(doc.Images) {
			add("texture %d has no valid source image", i)
		}
		if t.Sampler != nil && (*t.Sampler < 0 || *t.Sampler >= len(doc.Samplers)) {
			add("texture %d references sampler %d", i, *t.Sampler)
		}
	}
	for i, mat := range doc.Materials {
		if pbr := mat.PbrMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			if idx := pbr.BaseColorTexture.Index; idx < 0 || idx >= len(doc.Textures) {
				add("material %d references texture %d", i, idx)
			}
		}
	}
	for i, n := range doc.Nodes {
		if n.Mesh != nil && (*n.Mesh < 0 || *n.Mesh >= len(doc.Meshes)) {
			add("node %d references mesh %d", i, *n.Mesh)
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(doc.Nodes) {
				add("node %d references child %d", i, c)
			}
		}
	}
	for i, s := range doc.Scenes {
		for _, n := range s.Nodes {
			if n < 0 || n >= len(doc.Nodes) {
				add("scene %d references node %d", i, n)
			}
		}
	}
	if doc.Scene != nil && (*doc.Scene < 0 || *doc.Scene >= len(doc.Scenes)) {
		add("default scene %d out of range", *doc.Scene)
	}

	return errs
}

func (g *GLB) checkPrimitive(mi, pi int, p Primitive, add func(string, ...any)) {
	doc := &g.Document

	count := -1
	for name, idx := range p.Attributes {
		if idx < 0 || idx >= len(doc.Accessors) {
			add("mesh %d primitive %d attribute %s references accessor %d", mi, pi, name, idx)
			continue
		}
		c := doc.Accessors[idx].Count
		if count == -1 {
			count = c
		} else if c != count {
			add("mesh %d primitive %d attribute %s has %d elements, others have %d", mi, pi, name, c, count)
		}
	}
	if p.Material != nil && (*p.Material < 0 || *p.Material >= len(doc.Materials)) {
		add("mesh %d primitive %d references material %d", mi, pi, *p.Material)
	}

	if p.Indices == nil {
		return
	}
	if *p.Indices < 0 || *p.Indices >= len(doc.Accessors) {
		add("mesh %d primitive %d references index accessor %d", mi, pi, *p.Indices)
		return
	}
	acc := doc.Accessors[*p.Indices]
	if acc.ComponentType != ComponentUnsignedInt || acc.Type != TypeScalar {
		add("mesh %d primitive %d indices are %d/%s, want uint32 scalars", mi, pi, acc.ComponentType, acc.Type)
		return
	}
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return // reported with the accessor
	}
	view := doc.BufferViews[*acc.BufferView]
	start := view.ByteOffset + acc.ByteOffset
	if start < 0 || start+acc.Count*4 > len(g.BIN) {
		return // reported with the view
	}
	for i := 0; i < acc.Count; i++ {
		idx := binary.LittleEndian.Uint32(g.BIN[start+i*4:])
		if int(idx) >= count {
			add("mesh %d primitive %d index %d is %d, vertex count %d", mi, pi, i, idx, count)
			return
		}
	}
}
