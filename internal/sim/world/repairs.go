package world

import (
	"fmt"
	"math"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/policy"
)

// RepairJob is one queued repair. Remaining counts down in fractional ticks
// because speed depends on drones, policy, power and logistics.
type RepairJob struct {
	StructureID string  `json:"structure_id"`
	Remaining   float64 `json:"remaining"`
	Total       float64 `json:"total"`
	Cost        int     `json:"cost"`
	Local       bool    `json:"local"`
}

// RecoveryWindow heals a sector evenly after a repair completes.
type RecoveryWindow struct {
	Sector     string  `json:"sector"`
	Remaining  int     `json:"remaining"`
	Total      int     `json:"total"`
	DamageStep float64 `json:"damage_step"`
	AlertStep  float64 `json:"alert_step"`
}

const (
	remoteRepairCost    = 2
	remoteRepairTicks   = 4
	localRecoveryTicks  = 4
	remoteRecoveryTicks = 6
	recoveryShare       = 0.5
	knowledgeDiscountAt = 3
)

var (
	localRepairCost  = map[StructureState]int{Damaged: 1, Offline: 2, Destroyed: 4}
	localRepairTicks = map[StructureState]int{Damaged: 2, Offline: 4, Destroyed: 6}
)

// PhysicallyPresent reports whether the operator stands in the structure's
// sector: in the field at that sector, or at the command center for COMMAND.
func PhysicallyPresent(s *GameState, st *Structure) bool {
	if s.PlayerMode == ModeField {
		return s.PlayerLocation == st.Sector
	}
	return st.Sector == catalogs.Command
}

func dronesAvailable(s *GameState) bool {
	return structureOutput(s, catalogs.DroneBay) > 0 || s.Stock.RepairDrones > 0
}

// RepairCost is the material cost of repairing st from its current state.
func RepairCost(s *GameState, st *Structure, local bool) int {
	base := remoteRepairCost
	if local {
		base = localRepairCost[st.State]
	}
	cost := int(math.Round(float64(base) * policy.RepairMaterial.At(s.Policies.Repair)))
	if cost < 1 {
		cost = 1
	}
	if !local && s.KnowledgeIndex >= knowledgeDiscountAt && cost > 1 {
		cost--
	}
	return cost
}

// StartRepair validates and enqueues a repair. The line is always returned;
// ok reports whether state changed.
func StartRepair(s *GameState, token string, wantLocal bool) (string, bool) {
	st := s.ResolveStructure(token)
	if st == nil {
		return "UNKNOWN STRUCTURE.", false
	}
	if _, busy := s.ActiveRepairs[st.ID]; busy {
		return "REPAIR ALREADY IN PROGRESS.", false
	}
	if st.State == Operational {
		return "STRUCTURE DOES NOT REQUIRE REPAIR.", false
	}
	if s.CurrentAssault != nil && st.State == Destroyed {
		return "RECONSTRUCTION NOT POSSIBLE DURING ASSAULT.", false
	}
	// Only an explicit LOCAL request makes a manual repair.
	local := wantLocal
	if local && !PhysicallyPresent(s, st) {
		return "LOCAL REPAIR REQUIRES FIELD PRESENCE.", false
	}
	if !local && st.State != Damaged {
		return "REMOTE REPAIR NOT POSSIBLE. PHYSICAL INTERVENTION REQUIRED.", false
	}
	if local {
		if s.ActiveTask != nil {
			return "ACTION IN PROGRESS.", false
		}
		if sectorTier(s, st.Sector) == PowerOffline {
			return "REPAIR FAILED: MINIMUM SECTOR POWER REQUIRED.", false
		}
	}
	if !dronesAvailable(s) {
		return "REPAIR FAILED: MECHANIC DRONES OFFLINE.", false
	}
	cost := RepairCost(s, st, local)
	if s.Materials < cost {
		return "REPAIR FAILED: INSUFFICIENT MATERIALS.", false
	}
	ticks := remoteRepairTicks
	if local {
		ticks = localRepairTicks[st.State]
	}
	s.Materials -= cost
	s.ActiveRepairs[st.ID] = &RepairJob{
		StructureID: st.ID,
		Remaining:   float64(ticks),
		Total:       float64(ticks),
		Cost:        cost,
		Local:       local,
	}
	if local {
		if s.PlayerMode == ModeField {
			s.FieldAction = FieldRepairing
		}
		return fmt.Sprintf("MANUAL REPAIR STARTED: %s (COST: %d MATERIALS)", st.Name, cost), true
	}
	return fmt.Sprintf("REMOTE REPAIR QUEUED: %s (COST: %d MATERIALS)", st.Name, cost), true
}

// CancelRepair drops a queued repair and refunds half its cost, rounded up.
func CancelRepair(s *GameState, token string) (string, bool) {
	st := s.ResolveStructure(token)
	if st == nil {
		return "UNKNOWN STRUCTURE.", false
	}
	job, ok := s.ActiveRepairs[st.ID]
	if !ok {
		return "NO ACTIVE REPAIR.", false
	}
	refund := dropRepair(s, job)
	return fmt.Sprintf("REPAIR CANCELLED: %s (REFUND: %d MATERIALS)", st.Name, refund), true
}

func dropRepair(s *GameState, job *RepairJob) int {
	refund := ceilHalf(job.Cost)
	s.Materials += refund
	delete(s.ActiveRepairs, job.StructureID)
	settleFieldRepair(s)
	return refund
}

func settleFieldRepair(s *GameState) {
	if s.FieldAction != FieldRepairing {
		return
	}
	for _, job := range s.ActiveRepairs {
		if job.Local {
			return
		}
	}
	s.FieldAction = FieldIdle
}

// RepairSpeed is the per-tick progress of a job.
func RepairSpeed(s *GameState, job *RepairJob) float64 {
	st := s.Structures[job.StructureID]
	if st == nil {
		return 0
	}
	drone := structureOutput(s, catalogs.DroneBay)
	if drone < 0.5 && (job.Local || s.Stock.RepairDrones > 0) {
		drone = 0.5
	}
	speed := drone *
		policy.RepairSpeed.At(s.Policies.Repair) *
		SectorPowerModifier(sectorTier(s, st.Sector)) *
		s.LogisticsMultiplier
	if s.CurrentAssault != nil {
		if s.Stock.TurretAmmo == 0 {
			speed *= 0.5
		} else {
			speed *= 0.75
		}
	}
	if !job.Local && s.FocusedSector == catalogs.Fabrication {
		speed *= 1.25
	}
	return speed
}

// TickRepairs advances every job and completes those that reach zero.
func TickRepairs(s *GameState) []string {
	var lines []string
	for _, id := range s.sortedRepairIDs() {
		job := s.ActiveRepairs[id]
		job.Remaining = round4(job.Remaining - RepairSpeed(s, job))
		if job.Remaining > 0 {
			continue
		}
		st := s.Structures[id]
		delete(s.ActiveRepairs, id)
		if st == nil {
			continue
		}
		st.Improve()
		delete(s.PendingStructureLosses, st.ID)
		ticks := remoteRecoveryTicks
		if job.Local {
			ticks = localRecoveryTicks
		}
		startRecoveryWindow(s, st.Sector, ticks)
		lines = append(lines, "REPAIR COMPLETE: "+st.Name)
	}
	settleFieldRepair(s)
	s.Lines.Repairs = append(s.Lines.Repairs, lines...)
	return lines
}

func startRecoveryWindow(s *GameState, sector string, ticks int) {
	sec := s.Sectors[sector]
	if sec == nil || ticks <= 0 {
		return
	}
	s.RecoveryWindows[sector] = &RecoveryWindow{
		Sector:     sector,
		Remaining:  ticks,
		Total:      ticks,
		DamageStep: sec.Damage * recoveryShare / float64(ticks),
		AlertStep:  sec.Alertness * recoveryShare / float64(ticks),
	}
}

func tickRecoveryWindows(s *GameState) {
	for _, name := range s.SectorOrder {
		w, ok := s.RecoveryWindows[name]
		if !ok {
			continue
		}
		sec := s.Sectors[name]
		sec.Damage = math.Max(0, sec.Damage-w.DamageStep)
		sec.Alertness = math.Max(0, sec.Alertness-w.AlertStep)
		w.Remaining--
		if w.Remaining <= 0 {
			delete(s.RecoveryWindows, name)
		}
	}
}

// regressRepairs pushes back repairs in an assaulted sector unless its
// allocation bias protects it.
func regressRepairs(s *GameState, sector string) {
	if DefenseBias(s.Allocation, sector) >= s.tune.Assault.RegressProtectBias {
		return
	}
	for _, id := range s.sortedRepairIDs() {
		job := s.ActiveRepairs[id]
		if st := s.Structures[id]; st != nil && st.Sector == sector {
			job.Remaining = math.Min(job.Total, job.Remaining+1.0)
		}
	}
}
