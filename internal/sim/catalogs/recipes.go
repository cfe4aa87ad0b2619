package catalogs

import "strings"

// Named stockpiles; any other output key goes to generic inventory.
const (
	StockTurretAmmo   = "TURRET_AMMO"
	StockRepairDrones = "REPAIR_DRONES"
)

// Inventory item keys.
const (
	ItemScrap      = "SCRAP"
	ItemComponents = "COMPONENTS"
	ItemAssemblies = "ASSEMBLIES"
	ItemModules    = "MODULES"
)

var InventoryItems = []string{ItemScrap, ItemComponents, ItemAssemblies, ItemModules}

type RecipeDef struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Ticks     int            `json:"ticks"`
	Materials int            `json:"materials"`
	Inputs    map[string]int `json:"inputs,omitempty"`
	Outputs   map[string]int `json:"outputs"`
}

type RecipeCatalog struct {
	ByID   map[string]RecipeDef
	Digest string
}

var recipeDefs = []RecipeDef{
	{ID: "TURRET_AMMO", Name: "TURRET AMMUNITION", Category: "DEFENSE", Ticks: 3, Materials: 1,
		Outputs: map[string]int{StockTurretAmmo: 3}},
	{ID: "REPAIR_DRONE", Name: "REPAIR DRONE", Category: "DRONES", Ticks: 4, Materials: 2,
		Outputs: map[string]int{StockRepairDrones: 1}},
	{ID: "SCRAP_SALVAGE", Name: "SCRAP SALVAGE", Category: "REPAIRS", Ticks: 2,
		Outputs: map[string]int{ItemScrap: 2}},
	{ID: "COMPONENTS", Name: "COMPONENT BATCH", Category: "REPAIRS", Ticks: 3,
		Inputs: map[string]int{ItemScrap: 2}, Outputs: map[string]int{ItemComponents: 1}},
	{ID: "ASSEMBLY", Name: "SUBASSEMBLY", Category: "REPAIRS", Ticks: 5,
		Inputs: map[string]int{ItemComponents: 2}, Outputs: map[string]int{ItemAssemblies: 1}},
	{ID: "ARCHIVE_MODULE", Name: "ARCHIVE MODULE", Category: "ARCHIVE", Ticks: 6, Materials: 2,
		Inputs: map[string]int{ItemAssemblies: 1}, Outputs: map[string]int{ItemModules: 1}},
}

func buildRecipes() RecipeCatalog {
	c := RecipeCatalog{ByID: map[string]RecipeDef{}}
	for _, r := range recipeDefs {
		c.ByID[r.ID] = r
	}
	return c
}

func (c RecipeCatalog) sorted() []RecipeDef {
	out := make([]RecipeDef, 0, len(c.ByID))
	for _, id := range sortedKeys(c.ByID) {
		out = append(out, c.ByID[id])
	}
	return out
}

// IDs returns recipe ids sorted.
func (c RecipeCatalog) IDs() []string {
	return sortedKeys(c.ByID)
}

// Resolve matches an id or display name, case-insensitively.
func (c RecipeCatalog) Resolve(token string) (RecipeDef, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if r, ok := c.ByID[t]; ok {
		return r, true
	}
	if r, ok := c.ByID[strings.ReplaceAll(t, " ", "_")]; ok {
		return r, true
	}
	for _, id := range c.IDs() {
		if c.ByID[id].Name == t {
			return c.ByID[id], true
		}
	}
	return RecipeDef{}, false
}
