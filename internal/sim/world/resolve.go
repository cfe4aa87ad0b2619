package world

import (
	"fmt"
	"math"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/tactical"
)

// Outcome report lines.
const (
	lineCommandBreached = "[ASSAULT] COMMAND BREACHED."
	lineDefensesHeld    = "[ASSAULT] DEFENSES HELD. ENEMY WITHDREW."
	lineRepulsed        = "[ASSAULT] ENEMY REPULSED. INFRASTRUCTURE DAMAGE REPORTED."
	lineContained       = "[ASSAULT] BREACH CONTAINED. SECTOR CONTROL DEGRADED."
	lineAutonomyHeld    = "[ASSAULT] AUTONOMOUS SYSTEMS HELD PERIMETER."
	lineStrategicLoss   = "[ASSAULT] CRITICAL SYSTEM LOST. NO REPLACEMENT AVAILABLE."
)

// IncomingMultiplier scales assault pressure on a sector: inverse allocation
// bias, inverse fortification, doctrine, a failed defense grid and hardening.
func IncomingMultiplier(s *GameState, inst *AssaultInstance, sector string) float64 {
	alloc, doctrine := s.Allocation, s.Doctrine
	if inst != nil {
		if inst.Allocation != nil {
			alloc = inst.Allocation
		}
		if inst.Doctrine != "" {
			doctrine = inst.Doctrine
		}
	}
	m := (1 / math.Max(0.1, DefenseBias(alloc, sector))) / math.Max(1, fortMult(s, sector))
	m *= doctrine.pressureFactor(sector)
	if df := s.Sectors[catalogs.DefenseGrid]; df != nil && df.Damage >= 1.0 {
		m *= s.tune.Assault.DefenseDamageMult
	}
	if s.Hardened {
		m *= 0.85
	}
	return m
}

// turretOutput is the defense core output, with a floor for well
// fortified sectors when the grid is down.
func turretOutput(s *GameState, sector string) float64 {
	out := structureOutput(s, catalogs.DefenseCore)
	if out <= 0 && s.FortLevels[sector] >= 2 {
		out = 0.6
	}
	return out
}

func (s *GameState) fireTurret() float64 {
	if s.Stock.TurretAmmo > 0 {
		s.Stock.TurretAmmo--
		return 1
	}
	return s.tune.Tactical.EmptyAmmoScale
}

func buildTacticalSectors(s *GameState, inst *AssaultInstance) []*tactical.Sector {
	tt := s.tune.Tactical
	out := make([]*tactical.Sector, 0, len(inst.TargetSectors))
	for _, name := range inst.TargetSectors {
		out = append(out, &tactical.Sector{
			Name: name,
			Defenses: []*tactical.Turret{{
				Damage:       tt.TurretDamage,
				Output:       turretOutput(s, name),
				IdleBelow:    tt.IdleOutput,
				IdleCooldown: tt.IdleCooldown,
				Fire:         s.fireTurret,
			}},
		})
	}
	return out
}

// resolveAssault runs the engaged assault to completion inside one world
// tick and applies its consequences.
func resolveAssault(s *GameState) AssaultOutcome {
	inst := s.CurrentAssault
	at := s.tune.Assault
	pre := make(map[string]float64, len(inst.TargetSectors))
	for _, name := range inst.TargetSectors {
		pre[name] = s.Sectors[name].Damage
	}

	onTick := func(sectors []*tactical.Sector, tick int) {
		inst.TicksElapsed++
		for _, ts := range sectors {
			if !ts.HasHostiles() {
				continue
			}
			sec := s.Sectors[ts.Name]
			if sec == nil {
				continue
			}
			mult := IncomingMultiplier(s, inst, ts.Name)
			sec.Damage += at.DamagePerTick * mult
			sec.Alertness += at.AlertnessPerTick
			s.AmbientThreat += at.ThreatPerTick
			hostiles := 0
			for _, e := range ts.Enemies {
				if e.Alive {
					hostiles++
				}
			}
			s.Ledger.Append(AssaultTickRecord{
				Tick:              s.Time,
				TargetedSector:    sec.ID,
				TargetWeight:      inst.TargetWeights[ts.Name],
				AssaultStrength:   float64(hostiles),
				DefenseMitigation: round4(1 / math.Max(0.01, mult)),
				Note:              fmt.Sprintf("TACTICAL_TICK=%d", tick),
			})
		}
	}

	sum := tactical.Resolve(buildTacticalSectors(s, inst), inst, tactical.Config{
		Duration:      inst.DurationTicks,
		Doctrine:      string(inst.Doctrine),
		Bias:          func(name string) float64 { return DefenseBias(inst.Allocation, name) },
		RetreatMorale: s.tune.Tactical.RetreatMorale,
		OnTick:        onTick,
	})

	s.CurrentAssault = nil
	s.FocusedSector = ""
	s.Hardened = false

	out := NewAssaultOutcome(inst.ThreatBudget, sum.Duration, sum.Spawned, sum.Killed, sum.Retreated, sum.Remaining)
	penetration := applyAssaultOutcome(s, inst, out, sum)
	degradeTargetStructures(s, inst, penetration)
	awardSalvage(s, penetration)
	s.Lines.Assault = append(s.Lines.Assault, afterActionLines(s, inst)...)
	return out
}

// AutonomyMargin is the defensive surplus that can hold a severe breach.
func AutonomyMargin(s *GameState, inst *AssaultInstance, sum tactical.Summary) float64 {
	return float64(sum.Killed+sum.Retreated) +
		2*structureOutput(s, catalogs.DefenseCore) +
		4*inst.Readiness +
		s.AutonomyStrengthBonus + s.tune.Assault.AutonomyBonus -
		float64(sum.Remaining)
}

// applyAssaultOutcome walks the outcome ladder and returns the effective
// penetration used for structure damage and salvage.
func applyAssaultOutcome(s *GameState, inst *AssaultInstance, out AssaultOutcome, sum tactical.Summary) string {
	report := func(line string) { s.Lines.Assault = append(s.Lines.Assault, line) }
	first := s.Sectors[inst.TargetSectors[0]]

	switch {
	case inst.Targets(catalogs.Command) && out.Penetration == PenetrationSevere:
		cmd := s.Sectors[catalogs.Command]
		cmd.Damage = math.Max(cmd.Damage, s.tune.Failure.CommandBreachDamage)
		report(lineCommandBreached)
		return PenetrationSevere

	case out.Penetration == PenetrationNone && out.Intensity == IntensityLow:
		s.AmbientThreat = math.Max(0, s.AmbientThreat-0.2)
		for _, name := range inst.TargetSectors {
			s.Sectors[name].Alertness *= 0.85
		}
		report(lineDefensesHeld)
		return PenetrationNone

	case out.Penetration == PenetrationNone:
		for _, name := range inst.TargetSectors {
			s.Sectors[name].Damage += 0.6
			s.Sectors[name].Alertness += 0.4
		}
		report(lineRepulsed)
		return PenetrationNone

	case out.Penetration == PenetrationPartial:
		first.Damage = math.Max(first.Damage, 2.0)
		first.Alertness += 1.0
		AddSectorEffect(first, effectSensorBlackout, 1.0, 0.02)
		report(lineContained)
		return PenetrationPartial

	case AutonomyMargin(s, inst, sum) >= 0:
		first.Damage += 0.6
		first.Alertness += 0.4
		report(lineAutonomyHeld)
		return PenetrationPartial
	}

	first.Power = math.Max(0.2, first.Power-0.2)
	AddGlobalEffect(s, effectSignalInterference, 1.0, 0)
	report(lineStrategicLoss)
	return PenetrationSevere
}

// DegradeSteps is how many ladder steps a targeted sector's structures lose.
func DegradeSteps(incoming float64, penetration string) int {
	steps := 0
	switch {
	case incoming < 0.8:
		steps = 0
	case incoming < 1.4:
		steps = 1
	default:
		steps = 2
	}
	switch penetration {
	case PenetrationSevere:
		steps++
	case PenetrationNone:
		steps--
	}
	if steps < 0 {
		return 0
	}
	if steps > 2 {
		return 2
	}
	return steps
}

func degradeTargetStructures(s *GameState, inst *AssaultInstance, penetration string) {
	for _, name := range inst.TargetSectors {
		steps := DegradeSteps(IncomingMultiplier(s, inst, name), penetration)
		for _, st := range s.structuresIn(name) {
			for i := 0; i < steps; i++ {
				if st.Degrade() {
					onStructureDestroyed(s, st)
					inst.Losses = append(inst.Losses, st.ID)
				}
			}
		}
	}
}

// onStructureDestroyed cancels in-flight work and applies the one-time loss
// effects for a structure.
func onStructureDestroyed(s *GameState, st *Structure) {
	if job, ok := s.ActiveRepairs[st.ID]; ok {
		refund := dropRepair(s, job)
		s.Lines.Assault = append(s.Lines.Assault, fmt.Sprintf("REPAIR ABORTED: %s (REFUND: %d MATERIALS)", st.Name, refund))
	}
	s.Ledger.Append(AssaultTickRecord{
		Tick:              s.Time,
		TargetedSector:    s.Sectors[st.Sector].ID,
		BuildingDestroyed: st.ID,
	})
	if s.PendingStructureLosses[st.ID] {
		return
	}
	s.PendingStructureLosses[st.ID] = true
	var line string
	switch st.ID {
	case catalogs.CommsCore:
		AddGlobalEffect(s, effectSignalInterference, 1.0, 0.03)
		line = "[WARNING] COMMS CORE LOST. SENSOR FIDELITY COLLAPSING."
	case catalogs.DefenseCore:
		line = "[WARNING] DEFENSE GRID CORE LOST. AUTOMATED DEFENSES FAILING."
	case catalogs.PowerCore:
		s.AmbientThreat += 0.2
		line = "[WARNING] POWER CORE LOST. GRID UNSTABLE."
	case catalogs.FabTools, catalogs.DroneBay:
		line = "[WARNING] FABRICATION CAPACITY LOST."
	case catalogs.ArchiveCore:
		s.ArchiveLosses++
		line = "[WARNING] ARCHIVE CORE LOST. RECORDS UNRECOVERABLE."
	default:
		line = "[WARNING] STRUCTURE LOST: " + st.Name
	}
	s.Lines.Assault = append(s.Lines.Assault, line)
}

var salvageByPenetration = map[string]int{PenetrationNone: 0, PenetrationPartial: 1, PenetrationSevere: 2}

func awardSalvage(s *GameState, penetration string) int {
	n := salvageByPenetration[penetration]
	if n > 0 {
		s.Materials += n
		s.Lines.Assault = append(s.Lines.Assault, fmt.Sprintf("[SALVAGE] +%d MATERIALS", n))
	}
	return n
}

func afterActionLines(s *GameState, inst *AssaultInstance) []string {
	lines := []string{"AFTER ACTION SUMMARY:"}
	if len(inst.Losses) == 0 {
		lines = append(lines, "LOSS: NONE")
	}
	for _, id := range inst.Losses {
		lines = append(lines, "LOSS: "+id)
	}
	lines = append(lines, fmt.Sprintf("POLICY LOAD: R%d D%d S%d | LOAD %.2f",
		s.Policies.Repair, s.Policies.Defense, s.Policies.Surveillance, s.PowerLoad))
	return lines
}
