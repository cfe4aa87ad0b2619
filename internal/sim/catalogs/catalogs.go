// Package catalogs holds the immutable tables the engine reads: sectors,
// structures, the transit graph, event archetypes, fabrication recipes and
// faction vocabularies. Everything here is built once and must not be mutated.
package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

type Catalogs struct {
	Sectors    SectorCatalog
	Structures StructureCatalog
	Graph      Graph
	Events     EventCatalog
	Recipes    RecipeCatalog
	Factions   FactionCatalog
	Relays     []RelayDef
}

var std = build()

// Default returns the process-wide catalogs.
func Default() *Catalogs { return std }

func build() *Catalogs {
	c := &Catalogs{
		Sectors:    buildSectors(),
		Structures: buildStructures(),
		Graph:      buildGraph(),
		Events:     buildEvents(),
		Recipes:    buildRecipes(),
		Factions:   buildFactions(),
		Relays:     append([]RelayDef(nil), relayDefs...),
	}
	c.Sectors.Digest = digestJSON(c.Sectors.Defs)
	c.Structures.Digest = digestJSON(c.Structures.Defs)
	c.Events.Digest = digestJSON(c.Events.Defs)
	c.Recipes.Digest = digestJSON(c.Recipes.sorted())
	return c
}

// Digests returns name -> digest for every catalog, for the read-model index.
func (c *Catalogs) Digests() map[string]string {
	return map[string]string{
		"sectors":    c.Sectors.Digest,
		"structures": c.Structures.Digest,
		"events":     c.Events.Digest,
		"recipes":    c.Recipes.Digest,
	}
}

// JSON returns the canonical JSON for a named catalog (nil if unknown).
func (c *Catalogs) JSON(name string) []byte {
	var v any
	switch name {
	case "sectors":
		v = c.Sectors.Defs
	case "structures":
		v = c.Structures.Defs
	case "events":
		v = c.Events.Defs
	case "recipes":
		v = c.Recipes.sorted()
	default:
		return nil
	}
	b, _ := json.Marshal(v)
	return b
}

func digestJSON(v any) string {
	b, _ := json.Marshal(v)
	return sha256Hex(b)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
