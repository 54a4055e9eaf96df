package gltf

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wadglb/internal/geometry"
	"github.com/Faultbox/wadglb/internal/logger"
	"github.com/Faultbox/wadglb/internal/texture"
)

// Generator is the asset.generator value of written files.
const Generator = "wadglb"

// EncodeLevel writes generated level geometry as a GLB scene: one image,
// texture and material per queued texture, one node per non-empty sector
// under a root node named after the map.
func EncodeLevel(name string, res *geometry.Result, catalog *texture.Catalog, unitScale float32) ([]byte, error) {
	w := NewWriter(Generator, unitScale)

	for _, id := range res.Queue.IDs() {
		tex, ok := catalog.ByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: queued texture id %d not in catalog", ErrInconsistentOutput, id)
		}
		if _, err := w.AddTexture(id, tex.Name, tex.Image(), hasTransparency(tex)); err != nil {
			return nil, err
		}
	}

	var children []int
	for i := range res.Sectors {
		sg := &res.Sectors[i]
		node, err := w.AddNode(fmt.Sprintf("sector %d", sg.Sector), sg.Meshes())
		if err != nil {
			return nil, err
		}
		if node >= 0 {
			children = append(children, node)
		}
	}
	w.AddScene(name, children)

	out, err := w.Bytes()
	if err != nil {
		return nil, err
	}

	doc := w.Document()
	logger.Debug("scene encoded",
		zap.String("map", name),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("images", len(doc.Images)),
		zap.Int("bytes", len(out)))
	return out, nil
}

func hasTransparency(t *texture.Texture) bool {
	for i := 3; i < len(t.Pixels); i += 4 {
		if t.Pixels[i] != 0xFF {
			return true
		}
	}
	return false
}
