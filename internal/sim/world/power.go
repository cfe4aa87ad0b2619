package world

import (
	"math"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/policy"
)

type PowerTier string

const (
	PowerOffline  PowerTier = "OFFLINE"
	PowerDegraded PowerTier = "DEGRADED"
	PowerNormal   PowerTier = "NORMAL"
)

// Fidelity tiers, best first.
const (
	FidelityFull       = "FULL"
	FidelityDegraded   = "DEGRADED"
	FidelityFragmented = "FRAGMENTED"
	FidelityLost       = "LOST"
)

var fidelityRank = map[string]int{FidelityLost: 0, FidelityFragmented: 1, FidelityDegraded: 2, FidelityFull: 3}

func PowerEfficiency(power, minPower, standardPower float64) float64 {
	if power < minPower {
		return 0
	}
	if standardPower <= 0 {
		return 1
	}
	return math.Min(1, power/standardPower)
}

func ClassifyPowerTier(power, minPower, standardPower float64) PowerTier {
	switch {
	case power < minPower:
		return PowerOffline
	case power < standardPower:
		return PowerDegraded
	default:
		return PowerNormal
	}
}

func SectorPowerModifier(tier PowerTier) float64 {
	switch tier {
	case PowerNormal:
		return 1.0
	case PowerDegraded:
		return 0.5
	default:
		return 0
	}
}

// StructureEffectiveOutput is power efficiency times the integrity modifier.
func StructureEffectiveOutput(s *GameState, st *Structure) float64 {
	if st == nil {
		return 0
	}
	sec := s.Sectors[st.Sector]
	if sec == nil {
		return 0
	}
	return PowerEfficiency(sec.Power, st.MinPower, st.StandardPower) * integrityModifier(st.State)
}

func structureOutput(s *GameState, id string) float64 {
	return StructureEffectiveOutput(s, s.Structures[id])
}

func sectorTier(s *GameState, sector string) PowerTier {
	sec := s.Sectors[sector]
	if sec == nil {
		return PowerOffline
	}
	lo, std := 0.4, 1.0
	if sts := s.structuresIn(sector); len(sts) > 0 {
		lo, std = sts[0].MinPower, sts[0].StandardPower
	}
	return ClassifyPowerTier(sec.Power, lo, std)
}

func FidelityFromOutput(x float64) string {
	switch {
	case x >= 0.9:
		return FidelityFull
	case x >= 0.6:
		return FidelityDegraded
	case x >= 0.3:
		return FidelityFragmented
	default:
		return FidelityLost
	}
}

// CommsFidelity derives fidelity from the comms structure and surveillance posture.
func CommsFidelity(s *GameState) string {
	x := structureOutput(s, catalogs.CommsCore) * policy.FidelityBuffer.At(s.Policies.Surveillance)
	if _, ok := s.GlobalEffects[effectSignalInterference]; ok {
		x *= 0.85
	}
	return FidelityFromOutput(x)
}

// RefreshFidelity recomputes fidelity and reports tier changes.
func RefreshFidelity(s *GameState, emit bool) {
	next := CommsFidelity(s)
	prev := s.Fidelity
	s.Fidelity = next
	if !emit || prev == next || prev == "" {
		return
	}
	if fidelityRank[next] < fidelityRank[prev] {
		s.Lines.Fidelity = append(s.Lines.Fidelity, "[WARNING] SIGNAL DEGRADATION DETECTED")
	} else {
		s.Lines.Fidelity = append(s.Lines.Fidelity, "[EVENT] SIGNAL CLARITY RESTORED")
	}
}
