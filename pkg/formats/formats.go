// Package formats provides parsers for Doom WAD lump formats.
package formats

// Note: pictures (patches) are decoded in picture.go, flats in flat.go
// Note: PNAMES and TEXTURE1/TEXTURE2 are decoded in texturedef.go
// Note: map geometry lumps are decoded in level.go, GL nodes in glnodes.go
