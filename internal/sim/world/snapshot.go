package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/tuning"
)

const SnapshotVersion = 2

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

type SectorSnapshot struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    string            `json:"status"`
	Damage    float64           `json:"damage"`
	Alertness float64           `json:"alertness"`
	Power     float64           `json:"power"`
	Occupied  bool              `json:"occupied"`
	FortLevel int               `json:"fort_level"`
	Effects   map[string]Effect `json:"effects"`
}

type StructureSnapshot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	State  string `json:"state"`
}

// SnapshotV2 is the full, JSON-serializable session state. The display
// fields (threat bucket, assault phase, sector status) are derived and
// ignored on restore.
type SnapshotV2 struct {
	Version       int     `json:"version"`
	Seed          int64   `json:"seed"`
	RNGState      uint64  `json:"rng_state"`
	Time          int     `json:"time"`
	AmbientThreat float64 `json:"ambient_threat"`
	ThreatBucket  string  `json:"threat_bucket"`
	AssaultPhase  string  `json:"assault_phase"`

	Sectors        []SectorSnapshot    `json:"sectors"`
	Structures     []StructureSnapshot `json:"structures"`
	GlobalEffects  map[string]Effect   `json:"global_effects"`
	EventCooldowns map[string]int      `json:"event_cooldowns"`

	Assaults       []*AssaultApproach `json:"assaults"`
	CurrentAssault *AssaultInstance   `json:"current_assault"`
	NextApproachID int                `json:"next_approach_id"`
	AssaultCount   int                `json:"assault_count"`

	ActiveRepairs   []RepairJob       `json:"active_repairs"`
	RecoveryWindows []RecoveryWindow  `json:"recovery_windows"`
	FabQueue        []FabricationTask `json:"fabrication_queue"`
	NextFabID       int               `json:"next_fab_id"`

	Policies          Policies           `json:"policies"`
	FabAllocation     map[string]int     `json:"fab_allocation"`
	Doctrine          string             `json:"defense_doctrine"`
	DoctrineChangedAt int                `json:"doctrine_changed_at"`
	Allocation        map[string]float64 `json:"defense_allocation"`

	Materials int            `json:"materials"`
	Inventory map[string]int `json:"inventory"`
	Stock     Stockpiles     `json:"stockpiles"`

	Fidelity              string  `json:"fidelity"`
	AutonomyStrengthBonus float64 `json:"autonomy_strength_bonus"`
	FocusedSector         string  `json:"focused_sector"`
	Hardened              bool    `json:"hardened"`

	PlayerMode          string      `json:"player_mode"`
	PlayerLocation      string      `json:"player_location"`
	FieldAction         string      `json:"field_action"`
	ActiveTask          *TaskRecord `json:"active_task"`
	Relays              []Relay     `json:"relays"`
	RelayPacketsPending int         `json:"relay_packets_pending"`
	KnowledgeIndex      int         `json:"knowledge_index"`
	LastSyncTime        int         `json:"last_sync_time"`

	Faction       FactionProfile      `json:"faction"`
	Ledger        []AssaultTickRecord `json:"ledger"`
	LedgerNextSeq int                 `json:"ledger_next_seq"`

	ArchiveLosses          int      `json:"archive_losses"`
	ArchiveLimit           int      `json:"archive_limit"`
	CommandBreachCountdown int      `json:"command_breach_countdown"`
	PendingStructureLosses []string `json:"pending_structure_losses"`
	Failed                 bool     `json:"is_failed"`
	FailureReason          string   `json:"failure_reason"`

	OperatorLog []string `json:"operator_log"`
}

// Snapshot captures the state. The result shares no memory with s.
func Snapshot(s *GameState) SnapshotV2 {
	snap := SnapshotV2{
		Version:                SnapshotVersion,
		Seed:                   s.Seed,
		Time:                   s.Time,
		AmbientThreat:          s.AmbientThreat,
		ThreatBucket:           s.ThreatBucket(),
		AssaultPhase:           s.AssaultPhase(),
		GlobalEffects:          copyEffects(s.GlobalEffects),
		EventCooldowns:         copyIntMap(s.EventCooldowns),
		NextApproachID:         s.NextApproachID,
		AssaultCount:           s.AssaultCount,
		NextFabID:              s.NextFabID,
		Policies:               s.Policies,
		FabAllocation:          copyIntMap(s.FabAllocation),
		Doctrine:               string(s.Doctrine),
		DoctrineChangedAt:      s.DoctrineChangedAt,
		Allocation:             copyFloatMap(s.Allocation),
		Materials:              s.Materials,
		Inventory:              copyIntMap(s.Inventory),
		Stock:                  s.Stock,
		Fidelity:               s.Fidelity,
		AutonomyStrengthBonus:  s.AutonomyStrengthBonus,
		FocusedSector:          s.FocusedSector,
		Hardened:               s.Hardened,
		PlayerMode:             s.PlayerMode,
		PlayerLocation:         s.PlayerLocation,
		FieldAction:            s.FieldAction,
		ActiveTask:             taskRecord(s.ActiveTask),
		RelayPacketsPending:    s.RelayPacketsPending,
		KnowledgeIndex:         s.KnowledgeIndex,
		LastSyncTime:           s.LastSyncTime,
		Faction:                s.Faction,
		Ledger:                 append([]AssaultTickRecord(nil), s.Ledger.Rows...),
		LedgerNextSeq:          s.Ledger.NextSeq,
		ArchiveLosses:          s.ArchiveLosses,
		ArchiveLimit:           s.ArchiveLimit,
		CommandBreachCountdown: s.CommandBreachCountdown,
		Failed:                 s.Failed,
		FailureReason:          s.FailureReason,
		OperatorLog:            append([]string(nil), s.OperatorLog...),
	}
	if r, ok := s.RNG.(*RNG); ok {
		snap.RNGState = r.State
	}
	for _, name := range s.SectorOrder {
		sec := s.Sectors[name]
		snap.Sectors = append(snap.Sectors, SectorSnapshot{
			ID:        sec.ID,
			Name:      sec.Name,
			Status:    s.SectorStatus(name),
			Damage:    sec.Damage,
			Alertness: sec.Alertness,
			Power:     sec.Power,
			Occupied:  sec.Occupied,
			FortLevel: s.FortLevels[name],
			Effects:   copyEffects(sec.Effects),
		})
		if w, ok := s.RecoveryWindows[name]; ok {
			snap.RecoveryWindows = append(snap.RecoveryWindows, *w)
		}
	}
	for _, id := range s.StructureOrder {
		st := s.Structures[id]
		snap.Structures = append(snap.Structures, StructureSnapshot{ID: st.ID, Name: st.Name, Sector: st.Sector, State: st.State.String()})
	}
	for _, a := range s.Assaults {
		cp := *a
		cp.Route = append([]string(nil), a.Route...)
		snap.Assaults = append(snap.Assaults, &cp)
	}
	snap.CurrentAssault = copyAssaultInstance(s.CurrentAssault)
	for _, id := range s.sortedRepairIDs() {
		snap.ActiveRepairs = append(snap.ActiveRepairs, *s.ActiveRepairs[id])
	}
	for _, t := range s.FabQueue {
		snap.FabQueue = append(snap.FabQueue, *t)
	}
	for _, id := range sortedRelayIDs(s) {
		snap.Relays = append(snap.Relays, *s.Relays[id])
	}
	for id := range s.PendingStructureLosses {
		snap.PendingStructureLosses = append(snap.PendingStructureLosses, id)
	}
	sort.Strings(snap.PendingStructureLosses)
	return snap
}

// FromSnapshot restores a session. Older versions must go through
// MigrateSnapshot first.
func FromSnapshot(snap SnapshotV2, tune tuning.Tuning) (*GameState, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("version %d: %w", snap.Version, ErrSnapshotVersion)
	}
	s := New(snap.Seed, tune)
	if snap.RNGState != 0 {
		s.RNG = &RNG{State: snap.RNGState}
	}
	s.Time = snap.Time
	s.AmbientThreat = snap.AmbientThreat

	for _, ss := range snap.Sectors {
		sec := s.Sectors[ss.Name]
		if sec == nil {
			return nil, fmt.Errorf("snapshot: unknown sector %q", ss.Name)
		}
		sec.Damage, sec.Alertness, sec.Power, sec.Occupied = ss.Damage, ss.Alertness, ss.Power, ss.Occupied
		sec.Effects = copyEffects(ss.Effects)
		s.FortLevels[ss.Name] = ss.FortLevel
	}
	for _, st := range snap.Structures {
		cur := s.Structures[st.ID]
		if cur == nil {
			return nil, fmt.Errorf("snapshot: unknown structure %q", st.ID)
		}
		state, ok := ParseStructureState(st.State)
		if !ok {
			return nil, fmt.Errorf("snapshot: structure %s: bad state %q", st.ID, st.State)
		}
		cur.State = state
	}
	s.GlobalEffects = copyEffects(snap.GlobalEffects)
	s.EventCooldowns = copyIntMap(snap.EventCooldowns)

	s.Assaults = nil
	for _, a := range snap.Assaults {
		cp := *a
		cp.Route = append([]string(nil), a.Route...)
		s.Assaults = append(s.Assaults, &cp)
	}
	s.CurrentAssault = copyAssaultInstance(snap.CurrentAssault)
	s.NextApproachID = snap.NextApproachID
	s.AssaultCount = snap.AssaultCount

	for _, job := range snap.ActiveRepairs {
		j := job
		s.ActiveRepairs[j.StructureID] = &j
	}
	for _, w := range snap.RecoveryWindows {
		win := w
		s.RecoveryWindows[win.Sector] = &win
	}
	for _, t := range snap.FabQueue {
		task := t
		s.FabQueue = append(s.FabQueue, &task)
	}
	s.NextFabID = snap.NextFabID

	s.Policies = snap.Policies
	for k, v := range snap.FabAllocation {
		s.FabAllocation[k] = v
	}
	if d, ok := ParseDoctrine(snap.Doctrine); ok {
		s.Doctrine = d
	}
	s.DoctrineChangedAt = snap.DoctrineChangedAt
	if len(snap.Allocation) > 0 {
		s.Allocation = copyFloatMap(snap.Allocation)
	}
	s.Materials = snap.Materials
	for k, v := range snap.Inventory {
		s.Inventory[k] = v
	}
	s.Stock = snap.Stock
	s.AutonomyStrengthBonus = snap.AutonomyStrengthBonus
	s.FocusedSector = snap.FocusedSector
	s.Hardened = snap.Hardened

	s.PlayerMode = snap.PlayerMode
	s.PlayerLocation = snap.PlayerLocation
	s.FieldAction = snap.FieldAction
	task, err := snap.ActiveTask.task()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	s.ActiveTask = task
	for _, r := range snap.Relays {
		relay := r
		s.Relays[relay.ID] = &relay
	}
	s.RelayPacketsPending = snap.RelayPacketsPending
	s.KnowledgeIndex = snap.KnowledgeIndex
	s.LastSyncTime = snap.LastSyncTime

	s.Faction = snap.Faction
	s.Ledger.Rows = append([]AssaultTickRecord(nil), snap.Ledger...)
	if snap.LedgerNextSeq > 0 {
		s.Ledger.NextSeq = snap.LedgerNextSeq
	}
	s.ArchiveLosses = snap.ArchiveLosses
	if snap.ArchiveLimit > 0 {
		s.ArchiveLimit = snap.ArchiveLimit
	}
	s.CommandBreachCountdown = snap.CommandBreachCountdown
	for _, id := range snap.PendingStructureLosses {
		s.PendingStructureLosses[id] = true
	}
	s.Failed = snap.Failed
	s.FailureReason = snap.FailureReason
	s.OperatorLog = append([]string(nil), snap.OperatorLog...)

	updateLogistics(s)
	s.Fidelity = snap.Fidelity
	if s.Fidelity == "" {
		RefreshFidelity(s, false)
	}
	if err := ValidateInvariants(s); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return s, nil
}

// SnapshotV1 is the display-only snapshot written before field operations
// and full-state restore existed.
type SnapshotV1 struct {
	Version       int     `json:"version"`
	Seed          int64   `json:"seed"`
	Time          int     `json:"time"`
	AmbientThreat float64 `json:"ambient_threat"`
	Sectors       []struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Status    string  `json:"status"`
		Damage    float64 `json:"damage"`
		Alertness float64 `json:"alertness"`
		Power     float64 `json:"power"`
	} `json:"sectors"`
	Materials     int               `json:"materials"`
	Policies      Policies          `json:"policies"`
	FabAllocation map[string]int    `json:"fab_allocation"`
	FabQueue      []FabricationTask `json:"fabrication_queue"`
	ActiveRepairs []RepairJob       `json:"active_repairs"`
	Doctrine      string            `json:"defense_doctrine"`
	OperatorLog   []string          `json:"operator_log"`
	Failed        bool              `json:"is_failed"`
	FailureReason string            `json:"failure_reason"`
}

// MigrateSnapshot decodes a JSON snapshot of any known version and returns
// it as the current version. Fields a version lacks take their defaults:
// COMMAND mode at the command center, idle, no task, default relays.
func MigrateSnapshot(data []byte, tune tuning.Tuning) (SnapshotV2, error) {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return SnapshotV2{}, fmt.Errorf("snapshot header: %w", err)
	}
	switch head.Version {
	case SnapshotVersion:
		var snap SnapshotV2
		if err := json.Unmarshal(data, &snap); err != nil {
			return SnapshotV2{}, fmt.Errorf("snapshot v2: %w", err)
		}
		return snap, nil
	case 1:
		var v1 SnapshotV1
		if err := json.Unmarshal(data, &v1); err != nil {
			return SnapshotV2{}, fmt.Errorf("snapshot v1: %w", err)
		}
		return migrateV1(v1, tune), nil
	}
	return SnapshotV2{}, fmt.Errorf("version %d: %w", head.Version, ErrSnapshotVersion)
}

func migrateV1(v1 SnapshotV1, tune tuning.Tuning) SnapshotV2 {
	s := New(v1.Seed, tune)
	s.Time = v1.Time
	s.AmbientThreat = v1.AmbientThreat
	for _, ss := range v1.Sectors {
		if sec := s.Sectors[ss.Name]; sec != nil {
			sec.Damage, sec.Alertness, sec.Power = ss.Damage, ss.Alertness, ss.Power
		}
	}
	s.Materials = v1.Materials
	s.Policies = v1.Policies
	for k, v := range v1.FabAllocation {
		s.FabAllocation[k] = v
	}
	for _, t := range v1.FabQueue {
		task := t
		s.FabQueue = append(s.FabQueue, &task)
		if task.ID > s.NextFabID {
			s.NextFabID = task.ID
		}
	}
	for _, job := range v1.ActiveRepairs {
		j := job
		if st := s.Structures[j.StructureID]; st != nil {
			s.ActiveRepairs[j.StructureID] = &j
		}
	}
	if d, ok := ParseDoctrine(v1.Doctrine); ok {
		s.Doctrine = d
	}
	s.OperatorLog = append([]string(nil), v1.OperatorLog...)
	s.Failed = v1.Failed
	s.FailureReason = v1.FailureReason
	s.PlayerMode = ModeCommand
	s.PlayerLocation = catalogs.Command
	s.FieldAction = FieldIdle
	s.ActiveTask = nil
	return Snapshot(s)
}

func copyEffects(m map[string]Effect) map[string]Effect {
	out := make(map[string]Effect, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyAssaultInstance(a *AssaultInstance) *AssaultInstance {
	if a == nil {
		return nil
	}
	cp := *a
	cp.TargetSectors = append([]string(nil), a.TargetSectors...)
	cp.EnemyGroups = append([]EnemyGroup(nil), a.EnemyGroups...)
	cp.EntryPhases = append([]EntryPhase(nil), a.EntryPhases...)
	cp.Allocation = copyFloatMap(a.Allocation)
	cp.TargetWeights = copyFloatMap(a.TargetWeights)
	cp.Losses = append([]string(nil), a.Losses...)
	return &cp
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
