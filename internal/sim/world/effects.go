package world

import "math"

// Effect keys.
const (
	effectPowerDrain         = "power_drain"
	effectStructuralFatigue  = "structural_fatigue"
	effectAlertnessResidue   = "alertness_residue"
	effectCoolantLeak        = "coolant_leak"
	effectSensorBlackout     = "sensor_blackout"
	effectSignalInterference = "signal_interference"
	effectSupplyStrain       = "supply_strain"
)

const minEffectDecay = 0.01

func stackEffect(m map[string]Effect, key string, severity, decay float64) {
	cur, ok := m[key]
	if !ok {
		m[key] = Effect{Severity: severity, Decay: decay}
		return
	}
	m[key] = Effect{Severity: math.Max(cur.Severity, severity), Decay: math.Max(cur.Decay, decay)}
}

// AddSectorEffect stacks an effect, keeping the larger severity and decay.
func AddSectorEffect(sec *SectorState, key string, severity, decay float64) {
	stackEffect(sec.Effects, key, severity, decay)
}

// AddGlobalEffect stacks a global effect. Decay 0 makes it permanent.
func AddGlobalEffect(s *GameState, key string, severity, decay float64) {
	stackEffect(s.GlobalEffects, key, severity, decay)
}

func decayEffects(m map[string]Effect, permanentAllowed bool) {
	for _, k := range sortedEffectKeys(m) {
		e := m[k]
		if permanentAllowed && e.Decay == 0 {
			continue
		}
		e.Severity -= math.Max(e.Decay, minEffectDecay)
		if e.Severity <= 0 {
			delete(m, k)
			continue
		}
		m[k] = e
	}
}

func applySectorEffects(s *GameState, sec *SectorState) {
	critical := isCritical(s, sec.Name)
	for _, k := range sortedEffectKeys(sec.Effects) {
		sev := sec.Effects[k].Severity
		switch k {
		case effectPowerDrain:
			sec.Power = math.Max(0.2, sec.Power-0.02*sev)
		case effectStructuralFatigue:
			sec.Damage += 0.01 * sev
		case effectAlertnessResidue:
			sec.Alertness += 0.03 * sev
		case effectCoolantLeak:
			sec.Power = math.Max(0.3, sec.Power-0.015*sev)
			sec.Damage += 0.01 * sev
		case effectSensorBlackout:
			sec.Alertness += 0.02 * sev
			if critical {
				s.AmbientThreat += 0.02 * sev
			}
		}
	}
	decayEffects(sec.Effects, false)
}

func applyGlobalEffects(s *GameState) {
	for _, k := range sortedEffectKeys(s.GlobalEffects) {
		sev := s.GlobalEffects[k].Severity
		switch k {
		case effectSignalInterference:
			s.AmbientThreat += 0.015 * sev
		case effectSupplyStrain:
			s.AmbientThreat += 0.01 * sev
		}
	}
	decayEffects(s.GlobalEffects, true)
}

func sortedEffectKeys(m map[string]Effect) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

func isCritical(s *GameState, sector string) bool {
	return s.cats.Sectors.ByName[sector].Critical
}
