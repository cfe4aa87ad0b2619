package world

import (
	"math"

	"github.com/braydio/custodian/internal/sim/policy"
)

// computePowerLoad sums the posture draw: base 1, the three policy sliders
// and every sector's fortification draw.
func computePowerLoad(s *GameState) float64 {
	load := 1.0 +
		policy.DefensePower.At(s.Policies.Defense) +
		policy.SurveillancePower.At(s.Policies.Surveillance) +
		policy.RepairPower.At(s.Policies.Repair)
	for _, name := range s.SectorOrder {
		load += policy.FortificationPower.At(s.FortLevels[name])
	}
	s.PowerLoad = round4(load)
	return s.PowerLoad
}

// LogisticsThroughput is the work capacity the base can move per tick.
func LogisticsThroughput(powerLoad float64, surveillance int) float64 {
	t := 3.0 + math.Max(0, 4-powerLoad)*0.35 + math.Max(0, float64(2-surveillance))*0.2
	return clamp(t, 1.5, 5.0)
}

// LogisticsMultiplier converts overload pressure into a work speed factor.
func LogisticsMultiplier(load, throughput float64) float64 {
	pressure := math.Max(0, load-throughput)
	return math.Max(0.45, 1-math.Min(0.55, pressure*0.18))
}

func logisticsLoad(s *GameState) float64 {
	load := s.PowerLoad*0.45 +
		1.0*float64(len(s.ActiveRepairs)) +
		math.Min(2, 0.4*float64(len(s.FabQueue)))
	if s.CurrentAssault != nil {
		load += 0.8
	}
	if s.ActiveTask != nil && s.ActiveTask.Kind() == TaskRelay {
		load += 0.6
	}
	return load
}

// updateLogistics refreshes power load, throughput, load and multiplier.
func updateLogistics(s *GameState) {
	computePowerLoad(s)
	s.LogisticsThroughput = round4(LogisticsThroughput(s.PowerLoad, s.Policies.Surveillance))
	s.LogisticsLoad = round4(logisticsLoad(s))
	s.LogisticsMultiplier = round4(LogisticsMultiplier(s.LogisticsLoad, s.LogisticsThroughput))
}
