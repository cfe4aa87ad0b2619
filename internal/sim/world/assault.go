package world

import (
	"fmt"
	"math"
	"strings"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/tactical"
)

type EnemyGroup struct {
	Group  int     `json:"group"`
	Type   string  `json:"enemy_type"`
	Count  int     `json:"count"`
	HP     float64 `json:"hp"`
	Morale float64 `json:"morale"`
	Label  string  `json:"label"`
}

// EntryPhase schedules one group into one sector on one tactical tick.
type EntryPhase struct {
	Tick   int    `json:"tick"`
	Sector string `json:"sector"`
	Group  int    `json:"group"`
}

// AssaultInstance is an engaged assault awaiting tactical resolution.
type AssaultInstance struct {
	ApproachID       int                `json:"approach_id"`
	TargetSectors    []string           `json:"target_sectors"`
	BaseThreatBudget int                `json:"base_threat_budget"`
	ThreatBudget     int                `json:"threat_budget"`
	Readiness        float64            `json:"readiness"`
	StartTime        int                `json:"start_time"`
	EnemyGroups      []EnemyGroup       `json:"enemy_groups"`
	EntryPhases      []EntryPhase       `json:"entry_phases"`
	DurationTicks    int                `json:"duration_ticks"`
	TicksElapsed     int                `json:"ticks_elapsed"`
	Doctrine         Doctrine           `json:"doctrine"`
	Allocation       map[string]float64 `json:"allocation"`
	TargetWeights    map[string]float64 `json:"target_weights"`
	Losses           []string           `json:"losses,omitempty"`
}

type AssaultParams struct {
	Faction          FactionProfile
	Enemies          map[string]catalogs.EnemyDef
	Targets          []string
	BaseBudget       int
	Readiness        float64
	ThreatMultiplier float64
	ThreatScale      float64
	StartTime        int
}

var waveTicks = []int{0, 2, 5, 8}

const (
	minThreatBudget = 10
	maxGroupCount   = 5
)

// NewAssaultInstance scales the budget by readiness, doctrine and threat,
// then divides it into enemy groups and entry phases.
func NewAssaultInstance(p AssaultParams) *AssaultInstance {
	base := p.BaseBudget
	if base < minThreatBudget {
		base = minThreatBudget
	}
	readiness := clamp(p.Readiness, 0, 1)
	mult := p.ThreatMultiplier
	if mult <= 0 {
		mult = 1
	}
	scaled := float64(base) * (1.1 - readiness) * mult * math.Max(0.1, p.ThreatScale)
	budget := int(math.Round(scaled))
	if budget < minThreatBudget {
		budget = minThreatBudget
	}
	inst := &AssaultInstance{
		TargetSectors:    append([]string(nil), p.Targets...),
		BaseThreatBudget: base,
		ThreatBudget:     budget,
		Readiness:        readiness,
		StartTime:        p.StartTime,
	}
	inst.EnemyGroups = buildEnemyGroups(p.Faction, p.Enemies, budget)
	inst.EntryPhases = buildEntryPhases(inst.EnemyGroups, inst.TargetSectors)
	inst.DurationTicks = 6 + 2*len(inst.EntryPhases)
	if inst.DurationTicks < 10 {
		inst.DurationTicks = 10
	}
	return inst
}

func enemyDef(enemies map[string]catalogs.EnemyDef, typ string) catalogs.EnemyDef {
	if d, ok := enemies[typ]; ok && d.Cost > 0 {
		return d
	}
	return catalogs.EnemyDef{Type: catalogs.EnemyRaider, Cost: 5, HP: 16, Morale: 18}
}

// buildEnemyGroups alternates primary and secondary types, spending
// count*cost of the budget per group.
func buildEnemyGroups(f FactionProfile, enemies map[string]catalogs.EnemyDef, budget int) []EnemyGroup {
	primary := f.PrimaryEnemyType()
	secondary := f.SecondaryEnemyType(primary)
	var groups []EnemyGroup
	for idx := 1; budget > 0; idx++ {
		typ := secondary
		if idx%2 == 1 {
			typ = primary
		}
		d := enemyDef(enemies, typ)
		count := budget / d.Cost
		if count < 1 {
			count = 1
		}
		if count > maxGroupCount {
			count = maxGroupCount
		}
		groups = append(groups, EnemyGroup{
			Group:  idx,
			Type:   d.Type,
			Count:  count,
			HP:     d.HP,
			Morale: d.Morale,
			Label:  fmt.Sprintf("%s Group %d", titleCase(d.Type), idx),
		})
		budget -= count * d.Cost
	}
	return groups
}

func buildEntryPhases(groups []EnemyGroup, targets []string) []EntryPhase {
	if len(targets) == 0 {
		return nil
	}
	phases := make([]EntryPhase, 0, len(groups))
	for i := range groups {
		phases = append(phases, EntryPhase{
			Tick:   waveTicks[i%len(waveTicks)],
			Sector: targets[i%len(targets)],
			Group:  i,
		})
	}
	return phases
}

// SpawnAt places every group scheduled for tick into its tactical sector.
func (a *AssaultInstance) SpawnAt(tick int, sectors map[string]*tactical.Sector) int {
	spawned := 0
	for _, ph := range a.EntryPhases {
		if ph.Tick != tick || ph.Group < 0 || ph.Group >= len(a.EnemyGroups) {
			continue
		}
		sec := sectors[ph.Sector]
		if sec == nil {
			continue
		}
		g := a.EnemyGroups[ph.Group]
		for i := 1; i <= g.Count; i++ {
			sec.Enemies = append(sec.Enemies, tactical.NewEnemy(fmt.Sprintf("%s %d", g.Label, i), g.Type, g.HP, g.Morale))
			spawned++
		}
	}
	return spawned
}

func (a *AssaultInstance) Targets(sector string) bool {
	return containsString(a.TargetSectors, sector)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
