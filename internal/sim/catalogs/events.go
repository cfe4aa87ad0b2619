package catalogs

type EventDef struct {
	ID        string   `json:"id"`
	Report    string   `json:"report"`
	MinThreat float64  `json:"min_threat"`
	Weight    int      `json:"weight"`
	Cooldown  int      `json:"cooldown"`
	Tags      []string `json:"tags"`
	// Optional sector preconditions; zero means unconstrained.
	MaxPower  float64  `json:"max_power,omitempty"`
	MinDamage float64  `json:"min_damage,omitempty"`
	Chains    []string `json:"chains,omitempty"`
}

type EventCatalog struct {
	Defs   []EventDef
	ByID   map[string]EventDef
	Digest string
}

// Event archetype ids.
const (
	EventPerimeterProbe     = "perimeter_probe"
	EventSabotageCharge     = "sabotage_charge"
	EventConduitCut         = "conduit_cut"
	EventPowerBrownout      = "power_brownout"
	EventStructuralFatigue  = "structural_fatigue"
	EventCoolantLeak        = "coolant_leak"
	EventFuelFire           = "fuel_fire"
	EventTunnelInfiltration = "tunnel_infiltration"
	EventSensorJam          = "sensor_jam"
	EventSignalBlackout     = "signal_blackout"
	EventDataSiphon         = "data_siphon"
	EventDoctrinePanic      = "doctrine_panic"
	EventGoalBreach         = "goal_breach"
)

var eventDefs = []EventDef{
	{ID: EventPerimeterProbe, Report: "PERIMETER PROBE DETECTED", MinThreat: 0.2, Weight: 4, Cooldown: 12,
		Tags: []string{"perimeter", "approach", "ingress"},
		Chains: []string{"MOTION TRACKERS LOSE CONTACT", "PROBE WITHDRAWS INTO THE DARK"}},
	{ID: EventSabotageCharge, Report: "SABOTAGE CHARGE DETONATED", MinThreat: 1.2, Weight: 3, Cooldown: 18,
		Tags:   []string{"power", "defense", "infrastructure"},
		Chains: []string{"SECONDARY SPARKING ALONG CONDUITS"}},
	{ID: EventConduitCut, Report: "POWER CONDUIT SEVERED", MinThreat: 3.0, Weight: 2, Cooldown: 22,
		Tags: []string{"power", "infrastructure"}, MaxPower: 0.85,
		Chains: []string{"LOAD REROUTED THROUGH AUXILIARY LINES"}},
	{ID: EventPowerBrownout, Report: "POWER BROWNOUT", MinThreat: 1.6, Weight: 2, Cooldown: 20,
		Tags:   []string{"power", "amplifier"},
		Chains: []string{"LIGHTING FLICKERS ACROSS THE GRID"}},
	{ID: EventStructuralFatigue, Report: "STRUCTURAL FATIGUE REPORTED", MinThreat: 2.2, Weight: 2, Cooldown: 24,
		Tags: []string{"infrastructure", "storage", "defense"}, MinDamage: 0.2,
		Chains: []string{"BULKHEAD STRESS READINGS CLIMB"}},
	{ID: EventCoolantLeak, Report: "COOLANT LEAK", MinThreat: 2.6, Weight: 2, Cooldown: 26,
		Tags:   []string{"power", "fabrication", "maintenance"},
		Chains: []string{"THERMAL ALARMS TRIPPED"}},
	{ID: EventFuelFire, Report: "FUEL FIRE", MinThreat: 4.5, Weight: 1, Cooldown: 40,
		Tags:   []string{"hangar", "power", "hazard"},
		Chains: []string{"FIRE SUPPRESSION DEPLETED", "SMOKE SPREADS TO ADJACENT BAYS"}},
	{ID: EventTunnelInfiltration, Report: "TUNNEL INFILTRATION", MinThreat: 3.5, Weight: 2, Cooldown: 30,
		Tags:   []string{"ingress", "approach", "storage"},
		Chains: []string{"SUBSURFACE VIBRATIONS CONTINUE"}},
	{ID: EventSensorJam, Report: "SENSOR JAMMING", MinThreat: 2.0, Weight: 2, Cooldown: 20,
		Tags:   []string{"sensor", "comms"},
		Chains: []string{"TELEMETRY PACKETS DROPPED"}},
	{ID: EventSignalBlackout, Report: "SIGNAL BLACKOUT", MinThreat: 3.2, Weight: 1, Cooldown: 34,
		Tags:   []string{"comms", "info"},
		Chains: []string{"RELAY HANDSHAKES FAILING"}},
	{ID: EventDataSiphon, Report: "DATA SIPHON IN PROGRESS", MinThreat: 4.0, Weight: 1, Cooldown: 32,
		Tags:   []string{"archive", "knowledge", "info"},
		Chains: []string{"INDEX TABLES CORRUPTED"}},
	{ID: EventDoctrinePanic, Report: "DOCTRINE PANIC", MinThreat: 4.2, Weight: 1, Cooldown: 36,
		Tags:   []string{"command", "authority"},
		Chains: []string{"CONFLICTING ORDERS ON ALL CHANNELS"}},
	{ID: EventGoalBreach, Report: "GOAL SECTOR BREACH", MinThreat: 5.0, Weight: 1, Cooldown: 45,
		Tags:   []string{"goal", "critical"},
		Chains: []string{"CONTAINMENT PROTOCOLS ENGAGED"}},
}

func buildEvents() EventCatalog {
	c := EventCatalog{
		Defs: append([]EventDef(nil), eventDefs...),
		ByID: map[string]EventDef{},
	}
	for _, d := range c.Defs {
		c.ByID[d.ID] = d
	}
	return c
}

// Eligible reports whether an archetype may fire in a sector, ignoring cooldowns.
func (d EventDef) Eligible(threat float64, sector SectorDef, power, damage float64) bool {
	if threat < d.MinThreat {
		return false
	}
	if d.MaxPower > 0 && power > d.MaxPower {
		return false
	}
	if d.MinDamage > 0 && damage < d.MinDamage {
		return false
	}
	for _, t := range d.Tags {
		if sector.HasTag(t) {
			return true
		}
	}
	return false
}
