package texture

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when a texture name is registered twice.
var ErrDuplicateName = errors.New("duplicate texture name")

// FallbackName is the catalog name of the missing-texture checkerboard.
// It is longer than any lump name so it cannot collide with one.
const FallbackName = "*MISSING*"

// MissingID is the id of the fallback texture.
const MissingID = 0

// Catalog is an append-only, id-addressed set of textures.
// Ids are insertion order; id 0 is always the fallback.
type Catalog struct {
	textures []*Texture
	index    map[string]int
}

// NewCatalog creates a catalog holding only the fallback texture.
func NewCatalog() *Catalog {
	c := &Catalog{index: make(map[string]int)}
	fb := newFallback()
	c.textures = append(c.textures, fb)
	c.index[fb.Name] = MissingID
	return c
}

// Register adds t under t.Name and returns its id.
// A name that is already present is rejected; the first texture keeps it.
func (c *Catalog) Register(t *Texture) (int, error) {
	if id, ok := c.index[t.Name]; ok {
		return id, fmt.Errorf("%w: %s (%s, already id %d)", ErrDuplicateName, t.Name, t.Kind, id)
	}
	id := len(c.textures)
	c.textures = append(c.textures, t)
	c.index[t.Name] = id
	return id, nil
}

// Lookup finds a texture by its exact name. Names read from a WAD are
// already upper-cased by the decoders.
func (c *Catalog) Lookup(name string) (int, *Texture, bool) {
	id, ok := c.index[name]
	if !ok {
		return 0, nil, false
	}
	return id, c.textures[id], true
}

// ByName is Lookup falling back to the missing texture.
func (c *Catalog) ByName(name string) (int, *Texture) {
	if id, t, ok := c.Lookup(name); ok {
		return id, t
	}
	return c.Missing()
}

// ByID returns the texture with the given id.
func (c *Catalog) ByID(id int) (*Texture, bool) {
	if id < 0 || id >= len(c.textures) {
		return nil, false
	}
	return c.textures[id], true
}

// Missing returns the fallback texture.
func (c *Catalog) Missing() (int, *Texture) {
	return MissingID, c.textures[MissingID]
}

// NameOf returns the name registered under id.
func (c *Catalog) NameOf(id int) (string, bool) {
	t, ok := c.ByID(id)
	if !ok {
		return "", false
	}
	return t.Name, true
}

// Len returns the number of textures, fallback included.
func (c *Catalog) Len() int {
	return len(c.textures)
}

// CountByKind returns how many textures of each kind are registered.
func (c *Catalog) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, t := range c.textures[1:] {
		counts[t.Kind]++
	}
	return counts
}
