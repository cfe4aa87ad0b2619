package catalogs

import "strings"

// Sector names.
const (
	Comms       = "COMMS"
	DefenseGrid = "DEFENSE GRID"
	Command     = "COMMAND"
	Power       = "POWER"
	Fabrication = "FABRICATION"
	Archive     = "ARCHIVE"
	Storage     = "STORAGE"
	Hangar      = "HANGAR"
	Gateway     = "GATEWAY"
)

// Structure ids with special roles.
const (
	CommsCore   = "CM_CORE"
	DefenseCore = "DF_CORE"
	PowerCore   = "PW_CORE"
	DroneBay    = "FB_CORE"
	FabTools    = "FB_TOOLS"
	ArchiveCore = "AR_CORE"
	CommandCore = "CC_CORE"
)

type SectorDef struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Tags           []string `json:"tags"`
	StaticPriority float64  `json:"static_priority"`
	Critical       bool     `json:"critical,omitempty"`
}

type SectorCatalog struct {
	Defs   []SectorDef
	ByName map[string]SectorDef
	ByID   map[string]SectorDef
	Digest string
}

type StructureDef struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	MinPower      float64 `json:"min_power"`
	StandardPower float64 `json:"standard_power"`
}

type StructureCatalog struct {
	Defs   []StructureDef
	ByID   map[string]StructureDef
	Digest string
}

var sectorDefs = []SectorDef{
	{ID: "CM", Name: Comms, Tags: []string{"comms", "info", "sensor"}, StaticPriority: 1.8},
	{ID: "DF", Name: DefenseGrid, Tags: []string{"defense", "mitigation", "perimeter"}, StaticPriority: 1.6},
	{ID: "CC", Name: Command, Tags: []string{"command", "critical", "authority", "control"}, StaticPriority: 3.0, Critical: true},
	{ID: "PW", Name: Power, Tags: []string{"power", "amplifier", "hazard"}, StaticPriority: 2.0},
	{ID: "FB", Name: Fabrication, Tags: []string{"fabrication", "maintenance", "service"}, StaticPriority: 1.4},
	{ID: "AR", Name: Archive, Tags: []string{"archive", "goal", "knowledge", "critical"}, StaticPriority: 2.6, Critical: true},
	{ID: "ST", Name: Storage, Tags: []string{"storage", "buffer", "infrastructure"}, StaticPriority: 0.8},
	{ID: "HG", Name: Hangar, Tags: []string{"hangar", "egress", "approach"}, StaticPriority: 1.0},
	{ID: "GS", Name: Gateway, Tags: []string{"gateway", "ingress", "approach"}, StaticPriority: 1.2},
}

func buildSectors() SectorCatalog {
	c := SectorCatalog{
		Defs:   append([]SectorDef(nil), sectorDefs...),
		ByName: map[string]SectorDef{},
		ByID:   map[string]SectorDef{},
	}
	for _, d := range c.Defs {
		c.ByName[d.Name] = d
		c.ByID[d.ID] = d
	}
	return c
}

// Names returns sector names in catalog order.
func (c SectorCatalog) Names() []string {
	out := make([]string, 0, len(c.Defs))
	for _, d := range c.Defs {
		out = append(out, d.Name)
	}
	return out
}

// Resolve accepts a sector name, id, or a name with spaces replaced by
// underscores, case-insensitively.
func (c SectorCatalog) Resolve(token string) (SectorDef, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	t = strings.ReplaceAll(t, "_", " ")
	if d, ok := c.ByName[t]; ok {
		return d, true
	}
	if d, ok := c.ByID[t]; ok {
		return d, true
	}
	return SectorDef{}, false
}

func (d SectorDef) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func buildStructures() StructureCatalog {
	c := StructureCatalog{ByID: map[string]StructureDef{}}
	for _, s := range sectorDefs {
		c.Defs = append(c.Defs, StructureDef{
			ID:            s.ID + "_CORE",
			Name:          s.Name + " CORE",
			Sector:        s.Name,
			MinPower:      0.4,
			StandardPower: 1.0,
		})
		if s.Name == Fabrication {
			c.Defs = append(c.Defs, StructureDef{
				ID:            FabTools,
				Name:          "ASSEMBLY TOOLS",
				Sector:        s.Name,
				MinPower:      0.4,
				StandardPower: 1.0,
			})
		}
	}
	for _, d := range c.Defs {
		c.ByID[d.ID] = d
	}
	return c
}

// InSector returns structure ids located in a sector, in catalog order.
func (c StructureCatalog) InSector(sector string) []string {
	var out []string
	for _, d := range c.Defs {
		if d.Sector == sector {
			out = append(out, d.ID)
		}
	}
	return out
}
