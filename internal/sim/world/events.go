package world

import (
	"fmt"
	"math"

	"github.com/braydio/custodian/internal/sim/catalogs"
)

func cooldownKey(event, sector string) string { return event + "|" + sector }

// eventReady reports whether the (event, sector) pair is off cooldown.
func eventReady(s *GameState, def catalogs.EventDef, sector string) bool {
	last, ok := s.EventCooldowns[cooldownKey(def.ID, sector)]
	return !ok || s.Time-last >= def.Cooldown
}

// EventChance is the per-tick trigger probability.
func EventChance(s *GameState) float64 {
	t := s.tune.Events
	p := t.ChanceBase + s.AmbientThreat*t.ChancePerThreat
	if h := s.Sectors[catalogs.Hangar]; h != nil && h.Damage >= 1.0 {
		p += t.HangarBonus
	}
	if s.PowerLoad > 4 {
		p += math.Min(t.BrownoutBonus, (s.PowerLoad-4)*0.02)
	}
	return math.Min(p, t.ChanceMax)
}

type eventCandidate struct {
	def    catalogs.EventDef
	sector *SectorState
}

func eventCandidates(s *GameState) []eventCandidate {
	var out []eventCandidate
	for _, name := range s.SectorOrder {
		sec := s.Sectors[name]
		sdef := s.cats.Sectors.ByName[name]
		for _, def := range s.cats.Events.Defs {
			if !def.Eligible(s.AmbientThreat, sdef, sec.Power, sec.Damage) {
				continue
			}
			if eventReady(s, def, name) {
				out = append(out, eventCandidate{def: def, sector: sec})
			}
		}
	}
	return out
}

// maybeTriggerEvent rolls once for an ambient incident and applies it.
// Returns the triggered archetype id, or "".
func maybeTriggerEvent(s *GameState) string {
	cands := eventCandidates(s)
	if len(cands) == 0 {
		return ""
	}
	if !chance(s.RNG, EventChance(s)) {
		return ""
	}
	weights := make([]float64, len(cands))
	for i, c := range cands {
		weights[i] = float64(c.def.Weight)
	}
	i := weightedIndex(s.RNG, weights)
	if i < 0 {
		return ""
	}
	c := cands[i]
	applyEvent(s, c.def.ID, c.sector)
	s.EventCooldowns[cooldownKey(c.def.ID, c.sector.Name)] = s.Time
	s.Lines.Events = append(s.Lines.Events, fmt.Sprintf("[EVENT] %s IN %s", c.def.Report, c.sector.Name))
	for _, line := range c.def.Chains {
		if chance(s.RNG, s.tune.Events.ChainChance) {
			s.Lines.Events = append(s.Lines.Events, "  -> "+line)
		}
	}
	return c.def.ID
}

// applyEvent mutates sector and global scalars for one archetype.
func applyEvent(s *GameState, id string, sec *SectorState) {
	switch id {
	case catalogs.EventPerimeterProbe:
		sec.Alertness += 0.4
		sec.Occupied = true
	case catalogs.EventSabotageCharge:
		sec.Damage += 0.6
		sec.Alertness += 0.8
		sec.Power = math.Max(0.5, sec.Power-0.2)
		s.AmbientThreat += 0.3
	case catalogs.EventConduitCut:
		sec.Damage += 0.4
		sec.Power = math.Max(0.3, sec.Power-0.3)
		sec.Alertness += 1.0
	case catalogs.EventPowerBrownout:
		before := sec.Power
		sec.Alertness += 0.6
		sec.Power = math.Max(0.4, sec.Power-0.2)
		AddSectorEffect(sec, effectPowerDrain, 1.4, 0.04)
		if s.Trace {
			s.Ledger.Append(AssaultTickRecord{
				Tick:           s.Time,
				TargetedSector: sec.ID,
				Note:           fmt.Sprintf("BROWNOUT:POWER_DELTA=%.2f", sec.Power-before),
			})
		}
	case catalogs.EventStructuralFatigue:
		sec.Damage += 0.4
		sec.Alertness += 0.5
		AddSectorEffect(sec, effectStructuralFatigue, 1.6, 0.03)
	case catalogs.EventCoolantLeak:
		sec.Damage += 0.2
		sec.Alertness += 0.7
		AddSectorEffect(sec, effectCoolantLeak, 1.3, 0.03)
	case catalogs.EventFuelFire:
		sec.Damage += 1.2
		sec.Alertness += 2.0
		s.AmbientThreat += 0.8
	case catalogs.EventTunnelInfiltration:
		sec.Alertness += 1.5
		sec.Occupied = true
	case catalogs.EventSensorJam:
		sec.Alertness += 0.9
		sec.Power = math.Max(0.4, sec.Power-0.2)
		s.AmbientThreat += 0.2
	case catalogs.EventSignalBlackout:
		sec.Alertness += 0.8
		AddSectorEffect(sec, effectSensorBlackout, 1.5, 0.04)
		AddGlobalEffect(s, effectSignalInterference, 1.2, 0.03)
	case catalogs.EventDataSiphon:
		sec.Alertness += 1.4
		s.AmbientThreat += 0.5
		if isCritical(s, sec.Name) {
			sec.Damage += 0.3
		}
	case catalogs.EventDoctrinePanic:
		sec.Alertness += 1.0
		AddSectorEffect(sec, effectAlertnessResidue, 1.1, 0.02)
		AddGlobalEffect(s, effectSupplyStrain, 1.0, 0.02)
	case catalogs.EventGoalBreach:
		sec.Damage += 0.8
		sec.Alertness += 1.6
		s.AmbientThreat += 0.6
	}
}
