package texture

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wadglb/internal/logger"
	"github.com/Faultbox/wadglb/pkg/encoding"
	"github.com/Faultbox/wadglb/pkg/formats"
	"github.com/Faultbox/wadglb/pkg/wad"
)

// Marker pairs delimiting patch and flat namespaces. The doubled forms are
// used by PWADs that extend the IWAD namespaces.
var (
	patchMarkers = [][2]string{{"P_START", "P_END"}, {"PP_START", "PP_END"}}
	flatMarkers  = [][2]string{{"F_START", "F_END"}, {"FF_START", "FF_END"}}
)

// Build decodes every patch, flat and composite texture of the archive into
// a new catalog, in that order. PNAMES and TEXTURE1 are required; TEXTURE2
// is read when present.
func Build(a *wad.Archive, pal *wad.Palette, cm *wad.Colormap) (*Catalog, error) {
	c := NewCatalog()

	for _, m := range patchMarkers {
		c.registerRange(a, m[0], m[1], pal, cm, DecodePatch)
	}
	for _, m := range flatMarkers {
		c.registerRange(a, m[0], m[1], pal, cm, DecodeFlat)
	}

	if err := c.registerComposites(a, pal, cm); err != nil {
		return nil, err
	}

	counts := c.CountByKind()
	logger.Debug("texture catalog built",
		zap.Int("patches", counts[KindPatch]),
		zap.Int("flats", counts[KindFlat]),
		zap.Int("composites", counts[KindComposite]))

	return c, nil
}

type decodeFunc func(name string, data []byte, pal *wad.Palette, cm *wad.Colormap) (*Texture, error)

func (c *Catalog) registerRange(a *wad.Archive, start, end string, pal *wad.Palette, cm *wad.Colormap, decode decodeFunc) {
	indices, err := a.Between(start, end)
	if err != nil {
		logger.Debug("marker range not present", zap.String("start", start), zap.String("end", end))
		return
	}

	for _, i := range indices {
		e, _ := a.Entry(i)
		data, err := a.Read(i)
		if err != nil {
			logger.Warn("skipping unreadable lump", zap.String("lump", e.Name), zap.Error(err))
			continue
		}
		t, err := decode(e.Name, data, pal, cm)
		if err != nil {
			logger.Warn("skipping undecodable lump", zap.String("lump", e.Name), zap.Error(err))
			continue
		}
		c.add(t)
	}
}

// add registers t and logs a rejected duplicate.
func (c *Catalog) add(t *Texture) {
	if _, err := c.Register(t); err != nil {
		logger.Warn("texture not registered", zap.String("name", t.Name), zap.Error(err))
	}
}

func (c *Catalog) registerComposites(a *wad.Archive, pal *wad.Palette, cm *wad.Colormap) error {
	pnamesData, err := a.ReadRequired(formats.PatchNamesLump)
	if err != nil {
		return err
	}
	pnames, err := formats.ParsePatchNames(pnamesData)
	if err != nil {
		return err
	}

	texData, err := a.ReadRequired(formats.Texture1Lump)
	if err != nil {
		return err
	}
	defs, err := formats.ParseTextureDefs(texData)
	if err != nil {
		return fmt.Errorf("%s: %w", formats.Texture1Lump, err)
	}

	if tex2, err := a.ReadNamed(formats.Texture2Lump); err == nil {
		more, err := formats.ParseTextureDefs(tex2)
		if err != nil {
			return fmt.Errorf("%s: %w", formats.Texture2Lump, err)
		}
		defs = append(defs, more...)
	} else if !errors.Is(err, wad.ErrLumpNotFound) {
		return err
	}

	patches := &patchResolver{catalog: c, archive: a, pal: pal, cm: cm, cache: make(map[string]*Texture)}

	for _, def := range defs {
		layers := make([]Layer, 0, len(def.Patches))
		for _, p := range def.Patches {
			if p.PatchIndex < 0 || p.PatchIndex >= len(pnames) {
				logger.Warn("patch index out of PNAMES range",
					zap.String("texture", def.Name), zap.Int("index", p.PatchIndex), zap.Int("pnames", len(pnames)))
				continue
			}
			patch := patches.resolve(pnames[p.PatchIndex])
			if patch == nil {
				logger.Warn("unresolved patch",
					zap.String("texture", def.Name), zap.String("patch", pnames[p.PatchIndex]))
				continue
			}
			layers = append(layers, Layer{Patch: patch, OriginX: p.OriginX, OriginY: p.OriginY})
		}

		t, err := Compose(def.Name, def.Width, def.Height, def.Masked, layers)
		if err != nil {
			logger.Warn("skipping composite", zap.String("texture", def.Name), zap.Error(err))
			continue
		}
		c.add(t)
	}
	return nil
}

// patchResolver finds the patch a PNAMES entry names: first among the
// catalog's patches, then as a lump anywhere in the archive.
type patchResolver struct {
	catalog *Catalog
	archive *wad.Archive
	pal     *wad.Palette
	cm      *wad.Colormap
	cache   map[string]*Texture
}

func (r *patchResolver) resolve(name string) *Texture {
	key := encoding.NormalizeName(name)
	if t, ok := r.cache[key]; ok {
		return t
	}

	var found *Texture
	if _, t, ok := r.catalog.Lookup(key); ok && t.Kind == KindPatch {
		found = t
	} else if data, err := r.archive.ReadNamed(key); err == nil {
		if t, err := DecodePatch(key, data, r.pal, r.cm); err == nil {
			found = t
		}
	}

	r.cache[key] = found
	return found
}
