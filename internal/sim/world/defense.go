package world

import (
	"math"
	"strings"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/policy"
)

type Doctrine string

const (
	DoctrineBalanced            Doctrine = "BALANCED"
	DoctrineAggressive          Doctrine = "AGGRESSIVE"
	DoctrineCommandFirst        Doctrine = "COMMAND_FIRST"
	DoctrineInfrastructureFirst Doctrine = "INFRASTRUCTURE_FIRST"
	DoctrineSensorPriority      Doctrine = "SENSOR_PRIORITY"
)

var Doctrines = []Doctrine{
	DoctrineBalanced,
	DoctrineAggressive,
	DoctrineCommandFirst,
	DoctrineInfrastructureFirst,
	DoctrineSensorPriority,
}

const doctrineSettleTicks = 3

func ParseDoctrine(v string) (Doctrine, bool) {
	t := Doctrine(strings.ToUpper(strings.TrimSpace(v)))
	for _, d := range Doctrines {
		if d == t {
			return d, true
		}
	}
	return "", false
}

func (d Doctrine) DPSMultiplier() float64 {
	switch d {
	case DoctrineAggressive:
		return 1.2
	case DoctrineSensorPriority:
		return 0.9
	}
	return 1.0
}

func (d Doctrine) ThreatMultiplier() float64 {
	switch d {
	case DoctrineAggressive:
		return 1.05
	case DoctrineCommandFirst:
		return 0.98
	case DoctrineSensorPriority:
		return 0.95
	}
	return 1.0
}

func (d Doctrine) SectorPriorityMultiplier(sector string) float64 {
	switch d {
	case DoctrineCommandFirst:
		if sector == catalogs.Command {
			return 1.5
		}
		return 0.8
	case DoctrineInfrastructureFirst:
		switch sector {
		case catalogs.Power, catalogs.Comms, catalogs.Fabrication:
			return 1.35
		case catalogs.Gateway, catalogs.Hangar, catalogs.DefenseGrid:
			return 0.85
		}
	case DoctrineSensorPriority:
		if sector == catalogs.Comms {
			return 1.45
		}
	}
	return 1.0
}

// pressureFactor shapes incoming assault pressure per sector.
func (d Doctrine) pressureFactor(sector string) float64 {
	if d == DoctrineCommandFirst {
		if sector == catalogs.Command {
			return 0.5
		}
		return 1.15
	}
	return 1.0
}

// Allocation groups.
const (
	GroupPerimeter = "PERIMETER"
	GroupPower     = "POWER"
	GroupSensors   = "SENSORS"
	GroupCommand   = "COMMAND"
)

var AllocationGroups = []string{GroupPerimeter, GroupPower, GroupSensors, GroupCommand}

func DefaultAllocation() map[string]float64 {
	out := make(map[string]float64, len(AllocationGroups))
	for _, g := range AllocationGroups {
		out[g] = 1.0
	}
	return out
}

func AllocationGroupForSector(sector string) string {
	switch sector {
	case catalogs.Command:
		return GroupCommand
	case catalogs.Power, catalogs.Fabrication:
		return GroupPower
	case catalogs.Comms:
		return GroupSensors
	}
	return GroupPerimeter
}

func ParseAllocationGroup(v string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(v))
	for _, g := range AllocationGroups {
		if g == t {
			return g, true
		}
	}
	return "", false
}

// DefenseBias is the allocation weight of the sector's group, floored at 0.1.
func DefenseBias(alloc map[string]float64, sector string) float64 {
	v, ok := alloc[AllocationGroupForSector(sector)]
	if !ok {
		v = 1.0
	}
	return math.Max(0.1, v)
}

// NormalizeAllocation floors each group at 0.1 and rescales to mean 1.0.
func NormalizeAllocation(raw map[string]float64) map[string]float64 {
	vals := make(map[string]float64, len(AllocationGroups))
	var sum float64
	for _, g := range AllocationGroups {
		v, ok := raw[g]
		if !ok {
			v = 1.0
		}
		v = math.Max(0.1, v)
		vals[g] = v
		sum += v
	}
	mean := sum / float64(len(AllocationGroups))
	if mean <= 0 {
		return DefaultAllocation()
	}
	for g, v := range vals {
		vals[g] = round4(v / mean)
	}
	return vals
}

// AllocationFromPercent gives one group the requested share and splits the
// rest evenly. ok is false for unknown groups or percent outside (0,100).
func AllocationFromPercent(group string, percent float64) (map[string]float64, bool) {
	g, ok := ParseAllocationGroup(group)
	if !ok || percent <= 0 || percent >= 100 {
		return nil, false
	}
	n := float64(len(AllocationGroups))
	share := percent / 100
	rest := (1 - share) / (n - 1)
	raw := make(map[string]float64, len(AllocationGroups))
	for _, k := range AllocationGroups {
		raw[k] = rest * n
	}
	raw[g] = share * n
	return NormalizeAllocation(raw), true
}

// ComputeReadiness is integrity x repair backlog x power balance x doctrine
// stability x defense posture, clamped to [0,1].
func ComputeReadiness(s *GameState) float64 {
	var health, powerSum float64
	for _, name := range s.SectorOrder {
		sec := s.Sectors[name]
		health += 1 - clamp(sec.Damage, 0, 2)/2
		powerSum += math.Max(0, sec.Power)
	}
	n := float64(len(s.SectorOrder))
	if n == 0 {
		return 0
	}
	integrity := health / n

	structures := math.Max(1, float64(len(s.Structures)))
	repairFactor := clamp(1-float64(len(s.ActiveRepairs))/structures, 0, 1)

	mean := powerSum / n
	var imbalance float64
	for _, name := range s.SectorOrder {
		imbalance += math.Abs(math.Max(0, s.Sectors[name].Power) - mean)
	}
	powerFactor := clamp(1-imbalance/n, 0, 1)

	doctrineFactor := 1.0
	if s.Time-s.DoctrineChangedAt < doctrineSettleTicks {
		doctrineFactor = 0.9
	}

	r := integrity * repairFactor * powerFactor * doctrineFactor * policy.DefenseMult.At(s.Policies.Defense)
	return clamp(r, 0, 1)
}

// SetDoctrine switches doctrine and restarts the stability clock.
func SetDoctrine(s *GameState, d Doctrine) {
	if s.Doctrine != d {
		s.Doctrine = d
		s.DoctrineChangedAt = s.Time
	}
}

func fortMult(s *GameState, sector string) float64 {
	return policy.FortificationMult.At(s.FortLevels[sector])
}
