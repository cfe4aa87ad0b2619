package catalogs

// Phrase is a full/short pair from a faction vocabulary table.
type Phrase struct {
	Full  string
	Short string
}

type WeightedName struct {
	Name   string
	Weight int
}

type FactionCatalog struct {
	Ideologies       []Phrase
	IdeologyGoals    map[string]string
	Forms            []Phrase
	Tech             []Phrase
	Doctrines        []Phrase
	Signatures       []Phrase
	TargetPriorities []Phrase
	Aggression       []WeightedName
	Cohesion         []WeightedName
	Enemies          map[string]EnemyDef
}

// EnemyDef is the cost/hp/morale triple used when dividing a threat budget.
type EnemyDef struct {
	Type   string
	Cost   int
	HP     float64
	Morale float64
}

const (
	EnemyZealot     = "zealot"
	EnemyIconoclast = "iconoclast"
	EnemyRaider     = "raider"
)

func buildFactions() FactionCatalog {
	return FactionCatalog{
		Ideologies: []Phrase{
			{"Preservationists", "Preservationist"},
			{"Iconoclasts", "Iconoclast"},
			{"Cult Mechanists", "Cult Mechanist"},
			{"Expansionists", "Expansionist"},
			{"Continuity Wardens", "Continuity Warden"},
			{"Reliquary Brokers", "Reliquary Broker"},
		},
		IdeologyGoals: map[string]string{
			"Preservationists":   "reclaim archived knowledge",
			"Iconoclasts":        "erase relic systems",
			"Cult Mechanists":    "awaken machine relics",
			"Expansionists":      "seize operational territory",
			"Continuity Wardens": "seal forbidden tech",
			"Reliquary Brokers":  "extract tradable data",
		},
		Forms: []Phrase{
			{"humans", "human"},
			{"post-humans", "post-human"},
			{"bio-engineered remnants", "bio-remnant"},
			{"autonomous warforms", "warform"},
			{"hybrid scavenger constructs", "scavenger-construct"},
			{"sleeper drones", "sleeper-drone"},
			{"void-wrecked crews", "void-crew"},
		},
		Tech: []Phrase{
			{"crude kinetic weapons", "kinetic"},
			{"ritualized tech misuse", "ritual-tech"},
			{"reverse-engineered relics", "relic"},
			{"elegant but fragile systems", "elegant"},
			{"industrial scrap rigs", "industrial"},
			{"signal-weave interference", "signal"},
		},
		Doctrines: []Phrase{
			{"attritional pressure", "attrition"},
			{"precision raids", "precision"},
			{"overwhelm in waves", "waves"},
			{"stealth and sabotage", "sabotage"},
			{"ritual siege", "ritual"},
			{"probe then withdraw", "probe"},
		},
		Signatures: []Phrase{
			{"static-chatter spikes", "chatter"},
			{"synchronized light cutouts", "blackout"},
			{"irradiated residue", "radiation"},
			{"cold-reactor traces", "cryogenic"},
			{"ion-scorched entry points", "ion"},
			{"magnetic dust trails", "magnetic"},
		},
		TargetPriorities: []Phrase{
			{"command relays", "command"},
			{"power conduits", "power"},
			{"fabrication lines", "fabrication"},
			{"sensor towers", "sensor"},
			{"data cores", "data"},
			{"fuel stores", "fuel"},
		},
		Aggression: []WeightedName{{"low", 2}, {"measured", 4}, {"high", 3}, {"feral", 1}},
		Cohesion:   []WeightedName{{"fractured", 2}, {"disciplined", 4}, {"fanatical", 2}},
		Enemies: map[string]EnemyDef{
			EnemyZealot:     {Type: EnemyZealot, Cost: 6, HP: 18, Morale: 24},
			EnemyIconoclast: {Type: EnemyIconoclast, Cost: 8, HP: 22, Morale: 20},
			EnemyRaider:     {Type: EnemyRaider, Cost: 5, HP: 16, Morale: 18},
		},
	}
}

type RelayDef struct {
	ID             string
	Location       string
	StabilizeTicks int
	RiskProfile    string
	Located        bool
}

var relayDefs = []RelayDef{
	{ID: "R_ARCHIVE", Location: Archive, StabilizeTicks: 4, RiskProfile: "FRINGE"},
	{ID: "R_GATEWAY", Location: Gateway, StabilizeTicks: 4, RiskProfile: "FRINGE"},
	{ID: "R_NORTH", Location: TransitNorth, StabilizeTicks: 3, RiskProfile: "TRANSIT", Located: true},
	{ID: "R_SOUTH", Location: TransitSouth, StabilizeTicks: 3, RiskProfile: "TRANSIT", Located: true},
}
