package world

import (
	"math"
	"strings"
	"testing"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/tactical"
)

func TestAssaultOutcome_SevereBreach(t *testing.T) {
	o := NewAssaultOutcome(50, 10, 10, 1, 1, 8)
	if math.Abs(o.AttackerLossRatio-0.2) > 1e-9 {
		t.Fatalf("ratio=%v want=0.2", o.AttackerLossRatio)
	}
	if o.Penetration != PenetrationSevere || o.Intensity != IntensityMedium {
		t.Fatalf("penetration=%s intensity=%s want=severe,medium", o.Penetration, o.Intensity)
	}
}

func TestAssaultOutcome_RatioBoundedAndNoneMeansNoneRemaining(t *testing.T) {
	for spawned := 0; spawned <= 6; spawned++ {
		for killed := 0; killed <= spawned; killed++ {
			for retreated := 0; killed+retreated <= spawned; retreated++ {
				remaining := spawned - killed - retreated
				o := NewAssaultOutcome(30, 10, spawned, killed, retreated, remaining)
				if o.AttackerLossRatio < 0 || o.AttackerLossRatio > 1 {
					t.Fatalf("ratio=%v out of range (%d/%d/%d)", o.AttackerLossRatio, spawned, killed, retreated)
				}
				if (o.Penetration == PenetrationNone) != (remaining == 0) {
					t.Fatalf("penetration=%s remaining=%d", o.Penetration, remaining)
				}
			}
		}
	}
}

func TestAssaultOutcome_IntensityBuckets(t *testing.T) {
	cases := map[int]string{10: IntensityLow, 39: IntensityLow, 40: IntensityMedium, 79: IntensityMedium, 80: IntensityHigh, 200: IntensityHigh}
	for budget, want := range cases {
		if got := NewAssaultOutcome(budget, 10, 1, 1, 0, 0).Intensity; got != want {
			t.Fatalf("budget=%d intensity=%s want=%s", budget, got, want)
		}
	}
}

func iconoclastCell() FactionProfile {
	return FactionProfile{Ideology: "Iconoclasts", Doctrine: "precision raids"}
}

func TestNewAssaultInstance_GroupsAndPhases(t *testing.T) {
	inst := NewAssaultInstance(AssaultParams{
		Faction:          iconoclastCell(),
		Enemies:          catalogs.Default().Factions.Enemies,
		Targets:          []string{"STORAGE", "HANGAR"},
		BaseBudget:       100,
		Readiness:        0.5,
		ThreatMultiplier: 1,
		ThreatScale:      1,
	})
	if inst.ThreatBudget != 60 {
		t.Fatalf("budget=%d want=60", inst.ThreatBudget)
	}
	if len(inst.EnemyGroups) != 2 {
		t.Fatalf("groups=%+v want 2", inst.EnemyGroups)
	}
	g1, g2 := inst.EnemyGroups[0], inst.EnemyGroups[1]
	if g1.Type != "iconoclast" || g1.Count != 5 || g2.Type != "raider" || g2.Count != 4 {
		t.Fatalf("groups=%+v", inst.EnemyGroups)
	}
	if g1.Label != "Iconoclast Group 1" {
		t.Fatalf("label=%q", g1.Label)
	}
	want := []EntryPhase{{Tick: 0, Sector: "STORAGE", Group: 0}, {Tick: 2, Sector: "HANGAR", Group: 1}}
	for i, ph := range want {
		if inst.EntryPhases[i] != ph {
			t.Fatalf("phase %d=%+v want=%+v", i, inst.EntryPhases[i], ph)
		}
	}
	if inst.DurationTicks != 10 {
		t.Fatalf("duration=%d want=10", inst.DurationTicks)
	}

	sectors := map[string]*tactical.Sector{"STORAGE": {Name: "STORAGE"}, "HANGAR": {Name: "HANGAR"}}
	if n := inst.SpawnAt(0, sectors); n != 5 || len(sectors["STORAGE"].Enemies) != 5 {
		t.Fatalf("tick0 spawned=%d storage=%d", n, len(sectors["STORAGE"].Enemies))
	}
	if n := inst.SpawnAt(1, sectors); n != 0 {
		t.Fatalf("tick1 spawned=%d want=0", n)
	}
	if n := inst.SpawnAt(2, sectors); n != 4 || len(sectors["HANGAR"].Enemies) != 4 {
		t.Fatalf("tick2 spawned=%d hangar=%d", n, len(sectors["HANGAR"].Enemies))
	}
	if name := sectors["HANGAR"].Enemies[0].Name; name != "Raider Group 2 1" {
		t.Fatalf("enemy name=%q", name)
	}
}

func TestNewAssaultInstance_BudgetOrdering(t *testing.T) {
	budget := func(readiness, mult, scale float64) int {
		return NewAssaultInstance(AssaultParams{
			Faction:          iconoclastCell(),
			Enemies:          catalogs.Default().Factions.Enemies,
			Targets:          []string{"STORAGE"},
			BaseBudget:       100,
			Readiness:        readiness,
			ThreatMultiplier: mult,
			ThreatScale:      scale,
		}).ThreatBudget
	}
	aggressive := budget(0.5, DoctrineAggressive.ThreatMultiplier(), 1)
	balanced := budget(0.5, DoctrineBalanced.ThreatMultiplier(), 1)
	sensor := budget(0.5, DoctrineSensorPriority.ThreatMultiplier(), 1)
	if !(aggressive >= balanced && balanced >= sensor) {
		t.Fatalf("doctrine ordering: aggressive=%d balanced=%d sensor=%d", aggressive, balanced, sensor)
	}
	if aggressive != 63 || sensor != 57 {
		t.Fatalf("aggressive=%d sensor=%d want=63,57", aggressive, sensor)
	}
	if got := budget(1, 1, 1); got != 10 {
		t.Fatalf("full readiness budget=%d want=10", got)
	}
	if got := budget(0, 1, 1); got != 110 {
		t.Fatalf("zero readiness budget=%d want=110", got)
	}
	if got := budget(0.5, 1, ThreatScale(5)); got <= balanced {
		t.Fatalf("threat scale budget=%d want > %d", got, balanced)
	}
}

func TestDegradeSteps(t *testing.T) {
	cases := []struct {
		incoming    float64
		penetration string
		want        int
	}{
		{0.5, PenetrationNone, 0},
		{0.5, PenetrationSevere, 1},
		{1.0, PenetrationNone, 0},
		{1.0, PenetrationPartial, 1},
		{1.0, PenetrationSevere, 2},
		{2.0, PenetrationNone, 1},
		{2.0, PenetrationSevere, 2},
	}
	for _, c := range cases {
		if got := DegradeSteps(c.incoming, c.penetration); got != c.want {
			t.Fatalf("incoming=%v penetration=%s steps=%d want=%d", c.incoming, c.penetration, got, c.want)
		}
	}
}

// engage installs an assault the turrets cannot answer: the defense core is
// gone and nothing is fortified, so every spawned enemy remains.
func engage(s *GameState, readiness float64, targets ...string) *AssaultInstance {
	s.Structures["DF_CORE"].State = Destroyed
	inst := NewAssaultInstance(AssaultParams{
		Faction:          s.Faction,
		Enemies:          s.cats.Factions.Enemies,
		Targets:          targets,
		BaseBudget:       100,
		Readiness:        readiness,
		ThreatMultiplier: 1,
		ThreatScale:      1,
		StartTime:        s.Time,
	})
	inst.Doctrine = s.Doctrine
	inst.Allocation = DefaultAllocation()
	inst.TargetWeights = map[string]float64{}
	s.CurrentAssault = inst
	return inst
}

func TestResolveAssault_CommandBreach(t *testing.T) {
	s := newTestState(t, 1)
	engage(s, 0.5, "COMMAND")
	s.FocusedSector = "COMMAND"
	s.Hardened = true

	out := resolveAssault(s)
	if out.Penetration != PenetrationSevere || out.Remaining == 0 {
		t.Fatalf("outcome=%+v want severe with survivors", out)
	}
	if s.CurrentAssault != nil || s.FocusedSector != "" || s.Hardened {
		t.Fatalf("assault state not cleared: current=%v focus=%q hardened=%v", s.CurrentAssault, s.FocusedSector, s.Hardened)
	}
	if !hasLine(s.Lines.Assault, lineCommandBreached) {
		t.Fatalf("missing breach line: %v", s.Lines.Assault)
	}
	if s.Sectors["COMMAND"].Damage < 2.0 {
		t.Fatalf("command damage=%v want >= 2", s.Sectors["COMMAND"].Damage)
	}
	if s.Structures["CC_CORE"].State != Offline {
		t.Fatalf("CC_CORE=%v want=OFFLINE", s.Structures["CC_CORE"].State)
	}
	if s.Materials != 7 || !hasLine(s.Lines.Assault, "[SALVAGE] +2 MATERIALS") {
		t.Fatalf("materials=%d lines=%v", s.Materials, s.Lines.Assault)
	}
}

func TestResolveAssault_StrategicLoss(t *testing.T) {
	s := newTestState(t, 1)
	inst := engage(s, 0, "STORAGE")

	resolveAssault(s)
	if !hasLine(s.Lines.Assault, lineStrategicLoss) {
		t.Fatalf("missing strategic loss line: %v", s.Lines.Assault)
	}
	if e, ok := s.GlobalEffects[effectSignalInterference]; !ok || e.Decay != 0 {
		t.Fatalf("global effect=%+v ok=%v want permanent interference", e, ok)
	}
	if p := s.Sectors["STORAGE"].Power; math.Abs(p-0.8) > 1e-9 {
		t.Fatalf("storage power=%v want=0.8", p)
	}
	if s.Structures["ST_CORE"].State != Offline {
		t.Fatalf("ST_CORE=%v want=OFFLINE", s.Structures["ST_CORE"].State)
	}
	if inst.TicksElapsed != inst.DurationTicks {
		t.Fatalf("ticks elapsed=%d want=%d", inst.TicksElapsed, inst.DurationTicks)
	}
	rows := s.Ledger.Since(0)
	if len(rows) != inst.DurationTicks {
		t.Fatalf("ledger rows=%d want one per tactical tick (%d)", len(rows), inst.DurationTicks)
	}
	for _, r := range rows {
		if r.TargetedSector != "ST" || r.AssaultStrength <= 0 {
			t.Fatalf("row=%+v", r)
		}
	}
	lines := s.Lines.Assault
	tail := lines[len(lines)-3:]
	if tail[0] != "AFTER ACTION SUMMARY:" || tail[1] != "LOSS: NONE" || tail[2] != "POLICY LOAD: R2 D2 S2 | LOAD 4.00" {
		t.Fatalf("after action=%v", tail)
	}
}

func TestResolveAssault_AutonomyHolds(t *testing.T) {
	s := newTestState(t, 1)
	engage(s, 0, "STORAGE")
	s.AutonomyStrengthBonus = 1000

	resolveAssault(s)
	if !hasLine(s.Lines.Assault, lineAutonomyHeld) {
		t.Fatalf("missing autonomy line: %v", s.Lines.Assault)
	}
	if s.Structures["ST_CORE"].State != Damaged {
		t.Fatalf("ST_CORE=%v want=DAMAGED", s.Structures["ST_CORE"].State)
	}
	if s.Materials != 6 {
		t.Fatalf("materials=%d want=6", s.Materials)
	}
}

func TestResolveAssault_DestroyedStructuresListedAsLosses(t *testing.T) {
	s := newTestState(t, 1)
	s.Structures["ST_CORE"].State = Offline
	engage(s, 0, "STORAGE")

	resolveAssault(s)
	if s.Structures["ST_CORE"].State != Destroyed {
		t.Fatalf("ST_CORE=%v want=DESTROYED", s.Structures["ST_CORE"].State)
	}
	if !hasLine(s.Lines.Assault, "LOSS: ST_CORE") || !hasLine(s.Lines.Assault, "[WARNING] STRUCTURE LOST: STORAGE CORE") {
		t.Fatalf("lines=%v", s.Lines.Assault)
	}
	var destroyed bool
	for _, r := range s.Ledger.Since(0) {
		if r.BuildingDestroyed == "ST_CORE" {
			destroyed = true
		}
	}
	if !destroyed {
		t.Fatalf("ledger has no destruction row")
	}
}

func TestApplyAssaultOutcome_Ladder(t *testing.T) {
	t.Run("clean defense", func(t *testing.T) {
		s := newTestState(t, 1)
		s.AmbientThreat = 1.0
		s.Sectors["HANGAR"].Alertness = 1.0
		inst := &AssaultInstance{TargetSectors: []string{"HANGAR"}}
		pen := applyAssaultOutcome(s, inst, NewAssaultOutcome(20, 10, 4, 4, 0, 0), tactical.Summary{})
		if pen != PenetrationNone || !hasLine(s.Lines.Assault, lineDefensesHeld) {
			t.Fatalf("pen=%s lines=%v", pen, s.Lines.Assault)
		}
		if math.Abs(s.AmbientThreat-0.8) > 1e-9 || math.Abs(s.Sectors["HANGAR"].Alertness-0.85) > 1e-9 {
			t.Fatalf("threat=%v alert=%v", s.AmbientThreat, s.Sectors["HANGAR"].Alertness)
		}
	})
	t.Run("clean defense floors threat", func(t *testing.T) {
		s := newTestState(t, 1)
		s.AmbientThreat = 0.1
		inst := &AssaultInstance{TargetSectors: []string{"HANGAR"}}
		applyAssaultOutcome(s, inst, NewAssaultOutcome(20, 10, 4, 4, 0, 0), tactical.Summary{})
		if s.AmbientThreat != 0 {
			t.Fatalf("threat=%v want=0", s.AmbientThreat)
		}
	})
	t.Run("repulsed", func(t *testing.T) {
		s := newTestState(t, 1)
		inst := &AssaultInstance{TargetSectors: []string{"HANGAR", "GATEWAY"}}
		applyAssaultOutcome(s, inst, NewAssaultOutcome(100, 10, 4, 4, 0, 0), tactical.Summary{})
		if !hasLine(s.Lines.Assault, lineRepulsed) {
			t.Fatalf("lines=%v", s.Lines.Assault)
		}
		for _, name := range inst.TargetSectors {
			if math.Abs(s.Sectors[name].Damage-0.6) > 1e-9 {
				t.Fatalf("%s damage=%v want=0.6", name, s.Sectors[name].Damage)
			}
		}
	})
	t.Run("contained", func(t *testing.T) {
		s := newTestState(t, 1)
		inst := &AssaultInstance{TargetSectors: []string{"HANGAR", "GATEWAY"}}
		pen := applyAssaultOutcome(s, inst, NewAssaultOutcome(100, 10, 10, 7, 1, 2), tactical.Summary{})
		if pen != PenetrationPartial || !hasLine(s.Lines.Assault, lineContained) {
			t.Fatalf("pen=%s lines=%v", pen, s.Lines.Assault)
		}
		if s.Sectors["HANGAR"].Damage != 2.0 || s.Sectors["GATEWAY"].Damage != 0 {
			t.Fatalf("hangar=%v gateway=%v", s.Sectors["HANGAR"].Damage, s.Sectors["GATEWAY"].Damage)
		}
		if _, ok := s.Sectors["HANGAR"].Effects[effectSensorBlackout]; !ok {
			t.Fatalf("missing sensor blackout effect")
		}
	})
}

func TestAwardSalvage(t *testing.T) {
	s := newTestState(t, 1)
	if n := awardSalvage(s, PenetrationNone); n != 0 || len(s.Lines.Assault) != 0 {
		t.Fatalf("none salvage=%d lines=%v", n, s.Lines.Assault)
	}
	if n := awardSalvage(s, PenetrationPartial); n != 1 || s.Materials != 6 {
		t.Fatalf("partial salvage=%d materials=%d", n, s.Materials)
	}
	if !strings.HasPrefix(s.Lines.Assault[0], "[SALVAGE] +1") {
		t.Fatalf("line=%q", s.Lines.Assault[0])
	}
}
