package wad

import (
	"fmt"
	"sort"
	"strings"
)

// LevelNames returns the map markers in the archive (E1M1, MAP01, ...).
// A marker is any lump directly followed by a THINGS lump.
func (a *Archive) LevelNames() []string {
	var names []string
	for i := 0; i+1 < len(a.entries); i++ {
		if a.entries[i+1].Name != "THINGS" {
			continue
		}
		names = append(names, a.entries[i].Name)
	}
	sort.Strings(names)
	return names
}

// GLMarker returns the GL-nodes marker name for a map.
// Map names longer than five characters use the generic GL_LEVEL marker.
func GLMarker(mapName string) string {
	if len(mapName) > 5 {
		return "GL_LEVEL"
	}
	return "GL_" + strings.ToUpper(mapName)
}

// Lumps that may follow a map marker in classic and Hexen-format maps,
// and the GL nodes lumps that may follow a GL marker.
var (
	mapLumpNames = map[string]bool{
		"THINGS": true, "LINEDEFS": true, "SIDEDEFS": true, "VERTEXES": true,
		"SEGS": true, "SSECTORS": true, "NODES": true, "SECTORS": true,
		"REJECT": true, "BLOCKMAP": true, "BEHAVIOR": true, "SCRIPTS": true,
	}
	glLumpNames = map[string]bool{
		"GL_VERT": true, "GL_SEGS": true, "GL_SSECT": true, "GL_NODES": true, "GL_PVS": true,
	}
)

// MapLumps returns the indices of the lumps belonging to the map whose
// marker is mapName, keyed by lump name.
func (a *Archive) MapLumps(mapName string) (map[string]int, error) {
	marker, err := a.Find(mapName)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", mapName, err)
	}
	return a.lumpBlock(marker, mapLumpNames), nil
}

// GLLumps returns the indices of the GL nodes lumps for mapName.
// With the generic GL_LEVEL marker, the marker whose payload names the map
// is preferred; otherwise the first one is used.
func (a *Archive) GLLumps(mapName string) (map[string]int, error) {
	name := GLMarker(mapName)
	marker, err := a.Find(name)
	if err != nil {
		return nil, fmt.Errorf("GL nodes for %s: %w", mapName, err)
	}

	if name == "GL_LEVEL" {
		want := "LEVEL=" + strings.ToUpper(mapName)
		for i := marker; i >= 0; {
			if data, err := a.Read(i); err == nil && strings.Contains(strings.ToUpper(string(data)), want) {
				marker = i
				break
			}
			next, err := a.FindAfter(i+1, name)
			if err != nil {
				break
			}
			i = next
		}
	}

	return a.lumpBlock(marker, glLumpNames), nil
}

func (a *Archive) lumpBlock(marker int, allowed map[string]bool) map[string]int {
	out := make(map[string]int)
	for i := marker + 1; i < len(a.entries); i++ {
		name := a.entries[i].Name
		if !allowed[name] {
			break
		}
		if _, seen := out[name]; !seen {
			out[name] = i
		}
	}
	return out
}
