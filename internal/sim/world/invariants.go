package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/policy"
)

// ErrInvariant marks a broken engine invariant. It is a programming error,
// never a player-facing refusal.
var ErrInvariant = errors.New("invariant violated")

func violation(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvariant)
}

// ValidateInvariants checks the cross-subsystem rules and returns the first
// violation found.
func ValidateInvariants(s *GameState) error {
	if s.ActiveTask != nil && s.localRepairActive() {
		return violation("active task and local repair cannot run simultaneously")
	}
	if s.ActiveTask != nil {
		want := map[TaskKind]string{TaskMove: FieldMoving, TaskRelay: FieldStabilizing, TaskScavenge: FieldScavenging}[s.ActiveTask.Kind()]
		if s.FieldAction != want {
			return violation("field action %s does not match %s task", s.FieldAction, s.ActiveTask.Kind())
		}
	}
	if s.InCommandMode() && s.PlayerLocation != catalogs.Command {
		return violation("command mode must be located at COMMAND, got %s", s.PlayerLocation)
	}
	if _, ok := ParseDoctrine(string(s.Doctrine)); !ok {
		return violation("unknown doctrine %q", s.Doctrine)
	}

	var sum float64
	for _, g := range AllocationGroups {
		v := s.Allocation[g]
		if v <= 0 {
			return violation("allocation weight %s must be positive", g)
		}
		sum += v
	}
	if mean := sum / float64(len(AllocationGroups)); math.Abs(mean-1) > 0.05 {
		return violation("allocation weights average %.4f, want 1.0", mean)
	}

	for _, p := range []struct {
		name  string
		level int
	}{{"repair", s.Policies.Repair}, {"defense", s.Policies.Defense}, {"surveillance", s.Policies.Surveillance}} {
		if !policy.ValidLevel(p.level) {
			return violation("policy %s level %d out of range", p.name, p.level)
		}
	}
	for _, c := range policy.FabCategories {
		if lvl, ok := s.FabAllocation[c]; !ok || !policy.ValidLevel(lvl) {
			return violation("fabrication level %s out of range", c)
		}
	}
	for _, name := range s.SectorOrder {
		if lvl, ok := s.FortLevels[name]; !ok || !policy.ValidLevel(lvl) {
			return violation("fortification level %s out of range", name)
		}
		sec := s.Sectors[name]
		if sec.Damage < 0 || sec.Alertness < 0 {
			return violation("sector %s has negative damage or alertness", name)
		}
	}
	for _, item := range catalogs.InventoryItems {
		if s.Inventory[item] < 0 {
			return violation("inventory %s is negative", item)
		}
	}
	if s.Materials < 0 {
		return violation("materials are negative")
	}
	if s.Stock.TurretAmmo < 0 || s.Stock.RepairDrones < 0 {
		return violation("stockpiles are negative")
	}
	if s.RelayPacketsPending < 0 {
		return violation("relay packet count is negative")
	}
	for _, id := range sortedRelayIDs(s) {
		if !relayStatuses[s.Relays[id].Status] {
			return violation("relay %s has unknown status %q", id, s.Relays[id].Status)
		}
	}
	if s.LogisticsThroughput <= 0 || s.LogisticsLoad < 0 || s.LogisticsMultiplier <= 0 {
		return violation("logistics out of range")
	}
	for _, a := range s.Assaults {
		if a.Index < 0 || a.Index >= len(a.Route) {
			return violation("approach %d is off its route", a.ID)
		}
	}
	return nil
}

// repairInvariants clamps what can be clamped after a violation in
// non-strict mode.
func repairInvariants(s *GameState) {
	for _, name := range s.SectorOrder {
		sec := s.Sectors[name]
		sec.Damage = math.Max(0, sec.Damage)
		sec.Alertness = math.Max(0, sec.Alertness)
		s.FortLevels[name] = policy.ClampLevel(s.FortLevels[name])
	}
	s.Policies.Repair = policy.ClampLevel(s.Policies.Repair)
	s.Policies.Defense = policy.ClampLevel(s.Policies.Defense)
	s.Policies.Surveillance = policy.ClampLevel(s.Policies.Surveillance)
	for _, c := range policy.FabCategories {
		s.FabAllocation[c] = policy.ClampLevel(s.FabAllocation[c])
	}
	s.Allocation = NormalizeAllocation(s.Allocation)
	for _, item := range catalogs.InventoryItems {
		if s.Inventory[item] < 0 {
			s.Inventory[item] = 0
		}
	}
	if s.Materials < 0 {
		s.Materials = 0
	}
	if s.Stock.TurretAmmo < 0 {
		s.Stock.TurretAmmo = 0
	}
	if s.Stock.RepairDrones < 0 {
		s.Stock.RepairDrones = 0
	}
}
