package world

import (
	"math"

	"github.com/braydio/custodian/internal/sim/catalogs"
)

const (
	staticWeight     = 1.0
	damageWeight     = 1.4
	alertnessWeight  = 0.6
	transitWeight    = 0.35
	commandBonus     = 0.5
	focusDampener    = 0.25
	minTargetWeight  = 0.05
	minBiasDampening = 0.6
)

// transitPressure is the worst damage among the other sectors that share a
// transit lane with this one.
func transitPressure(s *GameState, sector string) float64 {
	g := s.cats.Graph
	var worst float64
	for _, node := range g.Neighbors(sector) {
		if !g.IsTransit(node) {
			continue
		}
		for _, n := range g.Neighbors(node) {
			if n == sector {
				continue
			}
			if sec := s.Sectors[n]; sec != nil && sec.Damage > worst {
				worst = sec.Damage
			}
		}
	}
	return worst
}

// SectorTargetWeight scores how attractive a sector is to an approach.
func SectorTargetWeight(s *GameState, sector string) float64 {
	sec := s.Sectors[sector]
	if sec == nil {
		return 0
	}
	def := s.cats.Sectors.ByName[sector]
	w := def.StaticPriority*staticWeight +
		sec.Damage*damageWeight +
		sec.Alertness*alertnessWeight +
		transitPressure(s, sector)*transitWeight
	if sector == catalogs.Command {
		w += commandBonus
	}
	w *= s.Doctrine.SectorPriorityMultiplier(sector)
	w *= math.Max(minBiasDampening, 1.6-DefenseBias(s.Allocation, sector))
	if s.FocusedSector == sector {
		w *= focusDampener
	}
	return math.Max(minTargetWeight, w)
}

// TargetWeights scores every sector in catalog order. With Trace set the
// weights are kept on the state keyed by sector id.
func TargetWeights(s *GameState) []float64 {
	weights := make([]float64, len(s.SectorOrder))
	for i, name := range s.SectorOrder {
		weights[i] = SectorTargetWeight(s, name)
	}
	if s.Trace {
		s.LastTargetWeights = make(map[string]float64, len(weights))
		for i, name := range s.SectorOrder {
			s.LastTargetWeights[s.Sectors[name].ID] = round4(weights[i])
		}
	}
	return weights
}

// SelectTarget draws one sector by cumulative target weight.
func SelectTarget(s *GameState) string {
	i := weightedIndex(s.RNG, TargetWeights(s))
	if i < 0 {
		return ""
	}
	return s.SectorOrder[i]
}

// selectFocusTargets draws up to n extra sectors without replacement,
// never repeating one already in exclude.
func selectFocusTargets(s *GameState, exclude []string, n int) []string {
	var pool []string
	var weights []float64
	for _, name := range s.SectorOrder {
		if containsString(exclude, name) {
			continue
		}
		pool = append(pool, name)
		weights = append(weights, SectorTargetWeight(s, name))
	}
	var out []string
	for len(out) < n && len(pool) > 0 {
		i := weightedIndex(s.RNG, weights)
		if i < 0 {
			break
		}
		out = append(out, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
		weights = append(weights[:i], weights[i+1:]...)
	}
	return out
}

func containsString(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
