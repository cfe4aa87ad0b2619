package world

import (
	"fmt"
	"sort"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/policy"
	"github.com/braydio/custodian/internal/sim/tuning"
)

type Effect struct {
	Severity float64 `json:"severity"`
	Decay    float64 `json:"decay"`
}

type SectorState struct {
	ID        string
	Name      string
	Damage    float64
	Alertness float64
	Power     float64
	Occupied  bool
	Effects   map[string]Effect
}

// StatusLabel is a pure function of damage, alertness and occupancy.
func (s *SectorState) StatusLabel() string {
	switch {
	case s.Damage >= 2.0:
		return StatusCompromised
	case s.Damage >= 1.0 || s.Alertness >= 2.0:
		return StatusDamaged
	case s.Alertness >= 0.8 || s.Occupied:
		return StatusAlert
	default:
		return StatusStable
	}
}

const (
	StatusStable      = "STABLE"
	StatusAlert       = "ALERT"
	StatusDamaged     = "DAMAGED"
	StatusCompromised = "COMPROMISED"
)

var statusRank = map[string]int{StatusStable: 0, StatusAlert: 1, StatusDamaged: 2, StatusCompromised: 3}

type Policies struct {
	Repair       int `json:"repair"`
	Defense      int `json:"defense"`
	Surveillance int `json:"surveillance"`
}

type Stockpiles struct {
	TurretAmmo   int `json:"turret_ammo"`
	RepairDrones int `json:"repair_drones"`
}

// Player modes and field actions.
const (
	ModeCommand = "COMMAND"
	ModeField   = "FIELD"

	FieldIdle        = "IDLE"
	FieldMoving      = "MOVING"
	FieldStabilizing = "STABILIZING"
	FieldRepairing   = "REPAIRING"
	FieldScavenging  = "SCAVENGING"
)

// GameState is the root aggregate. It is owned by a single writer; every
// subsystem mutates it in place through the functions of this package.
type GameState struct {
	Seed int64
	RNG  Source

	Time          int
	AmbientThreat float64

	Sectors     map[string]*SectorState
	SectorOrder []string

	Structures     map[string]*Structure
	StructureOrder []string

	GlobalEffects  map[string]Effect
	EventCooldowns map[string]int

	Assaults       []*AssaultApproach
	CurrentAssault *AssaultInstance
	NextApproachID int
	AssaultCount   int

	ActiveRepairs   map[string]*RepairJob
	RecoveryWindows map[string]*RecoveryWindow
	FabQueue        []*FabricationTask
	NextFabID       int

	Policies          Policies
	FabAllocation     map[string]int
	FortLevels        map[string]int
	Doctrine          Doctrine
	DoctrineChangedAt int
	Allocation        map[string]float64

	Materials int
	Inventory map[string]int
	Stock     Stockpiles

	PowerLoad             float64
	LogisticsThroughput   float64
	LogisticsLoad         float64
	LogisticsMultiplier   float64
	Fidelity              string
	AutonomyStrengthBonus float64

	FocusedSector string
	Hardened      bool

	PlayerMode     string
	PlayerLocation string
	FieldAction    string
	ActiveTask     Task

	Relays              map[string]*Relay
	RelayPacketsPending int
	KnowledgeIndex      int
	LastSyncTime        int

	Faction FactionProfile
	Ledger  *AssaultLedger

	ArchiveLosses          int
	ArchiveLimit           int
	CommandBreachCountdown int
	PendingStructureLosses map[string]bool
	Failed                 bool
	FailureReason          string

	OperatorLog []string

	// Trace captures target weights and extra ledger notes.
	Trace             bool
	LastTargetWeights map[string]float64
	// StrictInvariants makes StepWorld panic on an invariant violation.
	StrictInvariants bool

	Lines TickLines

	tune tuning.Tuning
	cats *catalogs.Catalogs
}

// New builds a fresh session state. The same seed and tuning always yield
// the same initial state, faction profile included.
func New(seed int64, tune tuning.Tuning) *GameState {
	cats := catalogs.Default()
	s := &GameState{
		Seed:                   seed,
		RNG:                    NewRNG(seed),
		Sectors:                map[string]*SectorState{},
		Structures:             map[string]*Structure{},
		GlobalEffects:          map[string]Effect{},
		EventCooldowns:         map[string]int{},
		ActiveRepairs:          map[string]*RepairJob{},
		RecoveryWindows:        map[string]*RecoveryWindow{},
		FabAllocation:          map[string]int{},
		FortLevels:             map[string]int{},
		Doctrine:               DoctrineBalanced,
		DoctrineChangedAt:      -doctrineSettleTicks,
		Allocation:             DefaultAllocation(),
		Materials:              tune.Start.Materials,
		Inventory:              map[string]int{},
		Stock:                  Stockpiles{TurretAmmo: tune.Start.TurretAmmo, RepairDrones: tune.Start.RepairDrones},
		Fidelity:               FidelityFull,
		PlayerMode:             ModeCommand,
		PlayerLocation:         catalogs.Command,
		FieldAction:            FieldIdle,
		Relays:                 defaultRelays(cats),
		Ledger:                 NewAssaultLedger(tune.LedgerCap),
		ArchiveLimit:           tune.Failure.ArchiveLossLimit,
		PendingStructureLosses: map[string]bool{},
		tune:                   tune,
		cats:                   cats,
	}
	s.Policies = Policies{Repair: policy.DefaultLevel, Defense: policy.DefaultLevel, Surveillance: policy.DefaultLevel}
	for _, c := range policy.FabCategories {
		s.FabAllocation[c] = policy.DefaultLevel
	}
	for _, item := range catalogs.InventoryItems {
		s.Inventory[item] = 0
	}
	for _, d := range cats.Sectors.Defs {
		s.Sectors[d.Name] = &SectorState{ID: d.ID, Name: d.Name, Power: 1.0, Effects: map[string]Effect{}}
		s.SectorOrder = append(s.SectorOrder, d.Name)
		s.FortLevels[d.Name] = 0
	}
	for _, d := range cats.Structures.Defs {
		s.Structures[d.ID] = &Structure{
			ID:            d.ID,
			Name:          d.Name,
			Sector:        d.Sector,
			State:         Operational,
			MinPower:      d.MinPower,
			StandardPower: d.StandardPower,
		}
		s.StructureOrder = append(s.StructureOrder, d.ID)
	}
	s.Faction = BuildFactionProfile(s.RNG, cats.Factions)
	updateLogistics(s)
	return s
}

// Reset reinitializes s in place for the same seed and tuning. Test flags
// survive the reset.
func Reset(s *GameState) {
	strict, trace := s.StrictInvariants, s.Trace
	*s = *New(s.Seed, s.tune)
	s.StrictInvariants, s.Trace = strict, trace
}

func (s *GameState) Tuning() tuning.Tuning         { return s.tune }
func (s *GameState) Catalogs() *catalogs.Catalogs { return s.cats }

// Sector returns a sector by name (nil if unknown).
func (s *GameState) Sector(name string) *SectorState { return s.Sectors[name] }

// SectorByID returns a sector by its two-letter id.
func (s *GameState) SectorByID(id string) *SectorState {
	for _, name := range s.SectorOrder {
		if sec := s.Sectors[name]; sec.ID == id {
			return sec
		}
	}
	return nil
}

func (s *GameState) InCommandMode() bool { return s.PlayerMode == ModeCommand }

func (s *GameState) ThreatBucket() string {
	switch t := s.AmbientThreat; {
	case t < 1.5:
		return "LOW"
	case t < 3.0:
		return "ELEVATED"
	case t < 5.0:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// AssaultPhase is ACTIVE while engaged, PENDING while approaches travel.
func (s *GameState) AssaultPhase() string {
	if s.CurrentAssault != nil {
		return "ACTIVE"
	}
	if len(s.Assaults) > 0 {
		return "PENDING"
	}
	return "NONE"
}

// SectorStatus is the operator-facing status: the sector label, raised to
// DAMAGED when any structure in it is not operational.
func (s *GameState) SectorStatus(name string) string {
	sec := s.Sectors[name]
	if sec == nil {
		return ""
	}
	label := sec.StatusLabel()
	for _, id := range s.StructureOrder {
		st := s.Structures[id]
		if st.Sector == name && st.State != Operational && statusRank[label] < statusRank[StatusDamaged] {
			return StatusDamaged
		}
	}
	return label
}

// ResolveStructure matches an id, a full name, or the first word of a name.
func (s *GameState) ResolveStructure(token string) *Structure {
	t := upper(token)
	if t == "" {
		return nil
	}
	if st, ok := s.Structures[t]; ok {
		return st
	}
	for _, id := range s.StructureOrder {
		st := s.Structures[id]
		if st.Name == t || firstWord(st.Name) == t {
			return st
		}
	}
	return nil
}

// AppendOperatorLog records an accepted command, keeping the newest entries.
func (s *GameState) AppendOperatorLog(verb, text string) {
	s.OperatorLog = append(s.OperatorLog, fmt.Sprintf("T%04d %s: %s", s.Time, verb, text))
	if over := len(s.OperatorLog) - s.tune.OperatorLogCap; over > 0 {
		s.OperatorLog = append([]string(nil), s.OperatorLog[over:]...)
	}
}

func (s *GameState) sortedRepairIDs() []string {
	ids := make([]string, 0, len(s.ActiveRepairs))
	for id := range s.ActiveRepairs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *GameState) structuresIn(sector string) []*Structure {
	var out []*Structure
	for _, id := range s.StructureOrder {
		if st := s.Structures[id]; st.Sector == sector {
			out = append(out, st)
		}
	}
	return out
}
