package world

import (
	"math"
	"strings"

	"github.com/braydio/custodian/internal/sim/policy"
)

// Approach states.
const (
	ApproachApproaching = "APPROACHING"
	ApproachEngaged     = "ENGAGED"
)

// AssaultApproach is a hostile force walking the transit graph.
type AssaultApproach struct {
	ID          int      `json:"id"`
	Ingress     string   `json:"ingress"`
	Target      string   `json:"target"`
	Route       []string `json:"route"`
	Index       int      `json:"index"`
	TicksToNext int      `json:"ticks_to_next"`
	State       string   `json:"state"`
	ETA         int      `json:"eta"`
}

// Node is the graph node the approach currently occupies.
func (a *AssaultApproach) Node() string {
	if a.Index < 0 || a.Index >= len(a.Route) {
		return ""
	}
	return a.Route[a.Index]
}

func (a *AssaultApproach) refreshETA(edgeTicks int) {
	if a.State == ApproachEngaged {
		a.ETA = 0
		return
	}
	left := len(a.Route) - 2 - a.Index
	if left < 0 {
		left = 0
	}
	a.ETA = a.TicksToNext + left*edgeTicks
}

var detectionBase = map[string]float64{
	FidelityFull:       0.85,
	FidelityDegraded:   0.6,
	FidelityFragmented: 0.35,
	FidelityLost:       0.1,
}

// DetectionProbability is the chance a transit passage is reported precisely.
func DetectionProbability(s *GameState) float64 {
	base, ok := detectionBase[s.Fidelity]
	if !ok {
		base = detectionBase[FidelityLost]
	}
	return clamp(base*policy.DetectionSpeed.At(s.Policies.Surveillance), 0.05, 0.98)
}

// SpawnChance is the per-tick probability of a new approach.
func SpawnChance(s *GameState) float64 {
	a := s.tune.Assault
	return math.Min(a.SpawnMax, a.SpawnBase+s.AmbientThreat*a.SpawnPerThreat)
}

func approachingCount(s *GameState) int {
	n := 0
	for _, a := range s.Assaults {
		if a.State == ApproachApproaching {
			n++
		}
	}
	return n
}

// maybeSpawnAssault rolls for a new approach while no assault is engaged.
func maybeSpawnAssault(s *GameState) *AssaultApproach {
	a := s.tune.Assault
	if s.CurrentAssault != nil || s.AmbientThreat <= a.SpawnThreshold {
		return nil
	}
	if approachingCount(s) >= a.MaxApproaches {
		return nil
	}
	if !chance(s.RNG, SpawnChance(s)) {
		return nil
	}
	g := s.cats.Graph
	ingress := g.Ingress[s.RNG.Intn(len(g.Ingress))]
	target := SelectTarget(s)
	route := g.Route(ingress, target)
	if len(route) < 2 {
		return nil
	}
	s.NextApproachID++
	ap := &AssaultApproach{
		ID:          s.NextApproachID,
		Ingress:     ingress,
		Target:      target,
		Route:       route,
		TicksToNext: a.EdgeTravelTicks,
		State:       ApproachApproaching,
		ETA:         (len(route) - 1) * a.EdgeTravelTicks,
	}
	s.Assaults = append(s.Assaults, ap)
	if line := activityLine(s.Fidelity); line != "" {
		s.Lines.Assault = append(s.Lines.Assault, line)
	}
	return ap
}

func activityLine(fidelity string) string {
	switch fidelity {
	case FidelityFull:
		return "[ASSAULT] THREAT ACTIVITY INCREASING"
	case FidelityDegraded:
		return "[ASSAULT] THREAT ACTIVITY APPEARS TO BE INCREASING"
	case FidelityFragmented:
		return "[ASSAULT] HOSTILE ACTIVITY POSSIBLE"
	}
	return ""
}

// advanceAssaults moves every approach along its route and seeds an
// assault instance from the first engaged one.
func advanceAssaults(s *GameState) {
	edge := s.tune.Assault.EdgeTravelTicks
	g := s.cats.Graph
	for _, ap := range s.Assaults {
		if ap.State != ApproachApproaching {
			continue
		}
		ap.TicksToNext--
		if ap.TicksToNext <= 0 {
			ap.Index++
			if ap.Index >= len(ap.Route)-1 {
				ap.Index = len(ap.Route) - 1
				ap.State = ApproachEngaged
				ap.TicksToNext = 0
			} else {
				ap.TicksToNext = edge
				if node := ap.Node(); g.IsTransit(node) {
					transitWarning(s, node)
				}
			}
		}
		ap.refreshETA(edge)
	}
	if s.CurrentAssault != nil {
		return
	}
	for i, ap := range s.Assaults {
		if ap.State == ApproachEngaged {
			s.Assaults = append(s.Assaults[:i], s.Assaults[i+1:]...)
			startAssault(s, ap)
			return
		}
	}
}

func transitWarning(s *GameState, node string) {
	if chance(s.RNG, DetectionProbability(s)) {
		s.Lines.Assault = append(s.Lines.Assault, "[WARNING] HOSTILE MOVEMENT NEAR "+node)
		return
	}
	s.Lines.Assault = append(s.Lines.Assault, "[EVENT] SIGNAL INTERFERENCE DETECTED")
}

// ThreatScale grows the budget once ambient threat passes 3.
func ThreatScale(threat float64) float64 {
	return 1 + math.Max(0, threat-3)*0.1
}

func startAssault(s *GameState, ap *AssaultApproach) {
	targets := []string{ap.Target}
	if extra := s.tune.Assault.FocusTargets - 1; extra > 0 {
		targets = append(targets, selectFocusTargets(s, targets, extra)...)
	}
	weights := make(map[string]float64, len(targets))
	for _, t := range targets {
		weights[t] = round4(SectorTargetWeight(s, t))
	}
	alloc := make(map[string]float64, len(s.Allocation))
	for k, v := range s.Allocation {
		alloc[k] = v
	}
	inst := NewAssaultInstance(AssaultParams{
		Faction:          s.Faction,
		Enemies:          s.cats.Factions.Enemies,
		Targets:          targets,
		BaseBudget:       s.tune.Assault.ThreatBudgetBase,
		Readiness:        ComputeReadiness(s),
		ThreatMultiplier: s.Doctrine.ThreatMultiplier(),
		ThreatScale:      ThreatScale(s.AmbientThreat),
		StartTime:        s.Time,
	})
	inst.ApproachID = ap.ID
	inst.Doctrine = s.Doctrine
	inst.Allocation = alloc
	inst.TargetWeights = weights
	s.CurrentAssault = inst
	s.AssaultCount++
	for _, t := range targets {
		regressRepairs(s, t)
	}
	switch s.Fidelity {
	case FidelityFull, FidelityDegraded:
		s.Lines.Assault = append(s.Lines.Assault, "[ASSAULT] HOSTILES ENGAGING: "+strings.Join(targets, ", "))
	case FidelityFragmented:
		s.Lines.Assault = append(s.Lines.Assault, "[ASSAULT] HOSTILE CONTACT REPORTED")
	}
}
