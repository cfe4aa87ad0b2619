package world

import (
	"fmt"
	"strings"

	"github.com/braydio/custodian/internal/sim/catalogs"
)

type TaskKind string

const (
	TaskMove     TaskKind = "MOVE"
	TaskRelay    TaskKind = "RELAY"
	TaskScavenge TaskKind = "SCAVENGE"
)

// Task is the operator's single active field task. Concrete types are
// *MoveTask, *RelayTask and *ScavengeTask.
type Task interface {
	Kind() TaskKind
	Progress() (remaining, total int)
	step() (done bool)
}

type countdown struct {
	Ticks int `json:"ticks"`
	Total int `json:"total"`
}

func (c *countdown) Progress() (int, int) { return c.Ticks, c.Total }

func (c *countdown) step() bool {
	c.Ticks--
	return c.Ticks <= 0
}

type MoveTask struct {
	countdown
	Target string
}

type RelayTask struct {
	countdown
	RelayID string
	Target  string
}

type ScavengeTask struct {
	countdown
}

func (*MoveTask) Kind() TaskKind     { return TaskMove }
func (*RelayTask) Kind() TaskKind    { return TaskRelay }
func (*ScavengeTask) Kind() TaskKind { return TaskScavenge }

// Relay statuses.
const (
	RelayUnknown  = "UNKNOWN"
	RelayLocated  = "LOCATED"
	RelayUnstable = "UNSTABLE"
	RelayStable   = "STABLE"
	RelayDormant  = "DORMANT"
)

var relayStatuses = map[string]bool{RelayUnknown: true, RelayLocated: true, RelayUnstable: true, RelayStable: true, RelayDormant: true}

type Relay struct {
	ID             string `json:"id"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	StabilizeTicks int    `json:"stabilize_ticks"`
	RiskProfile    string `json:"risk_profile"`
	LastStabilized int    `json:"last_stabilized"`
}

func defaultRelays(cats *catalogs.Catalogs) map[string]*Relay {
	out := make(map[string]*Relay, len(cats.Relays))
	for _, d := range cats.Relays {
		status := RelayUnknown
		if d.Located {
			status = RelayLocated
		}
		out[d.ID] = &Relay{
			ID:             d.ID,
			Location:       d.Location,
			Status:         status,
			StabilizeTicks: d.StabilizeTicks,
			RiskProfile:    d.RiskProfile,
			LastStabilized: -1,
		}
	}
	return out
}

const (
	scavengeTicks   = 3
	scavengeMinGain = 1
	scavengeMaxGain = 3
)

// ResolveLocation maps a token to a graph node: node name, sector id, or
// NORTH/SOUTH for the transit lanes.
func ResolveLocation(s *GameState, token string) (string, bool) {
	t := upper(token)
	switch t {
	case "NORTH":
		t = catalogs.TransitNorth
	case "SOUTH":
		t = catalogs.TransitSouth
	}
	g := s.cats.Graph
	if g.HasNode(t) && !g.IsIngress(t) {
		return t, true
	}
	if d, ok := s.cats.Sectors.Resolve(t); ok {
		return d.Name, true
	}
	return "", false
}

func (s *GameState) travelTicks(from, to string) int {
	route := s.cats.Graph.Route(from, to)
	if len(route) < 2 {
		return 0
	}
	return (len(route) - 1) * s.tune.Assault.EdgeTravelTicks
}

func (s *GameState) localRepairActive() bool {
	for _, job := range s.ActiveRepairs {
		if job.Local {
			return true
		}
	}
	return false
}

func (s *GameState) startMove(target string, ticks int) {
	s.ActiveTask = &MoveTask{countdown: countdown{Ticks: ticks, Total: ticks}, Target: target}
	s.FieldAction = FieldMoving
}

func Deploy(s *GameState, token string) (string, bool) {
	if s.PlayerMode != ModeCommand {
		return "ALREADY DEPLOYED.", false
	}
	if s.ActiveTask != nil || s.localRepairActive() {
		return "ACTION IN PROGRESS.", false
	}
	target, ok := ResolveLocation(s, token)
	if !ok || target == catalogs.Command {
		return "INVALID DEPLOYMENT TARGET.", false
	}
	ticks := s.travelTicks(catalogs.Command, target)
	if ticks <= 0 {
		return "INVALID DEPLOYMENT TARGET.", false
	}
	s.PlayerMode = ModeField
	s.PlayerLocation = catalogs.Command
	s.startMove(target, ticks)
	return "DEPLOYING TO " + target + ".", true
}

func Move(s *GameState, token string) (string, bool) {
	if s.PlayerMode != ModeField {
		return "FIELD AUTHORITY REQUIRED.", false
	}
	if s.ActiveTask != nil || s.localRepairActive() {
		return "ACTION IN PROGRESS.", false
	}
	target, ok := ResolveLocation(s, token)
	if !ok || target == s.PlayerLocation {
		return "INVALID ROUTE.", false
	}
	ticks := s.travelTicks(s.PlayerLocation, target)
	if ticks <= 0 {
		return "INVALID ROUTE.", false
	}
	s.startMove(target, ticks)
	return "MOVING TO " + target + ".", true
}

func Return(s *GameState) (string, bool) {
	if s.PlayerMode != ModeField {
		return "ALREADY IN COMMAND.", false
	}
	if s.ActiveTask != nil || s.localRepairActive() {
		return "ACTION IN PROGRESS.", false
	}
	ticks := s.travelTicks(s.PlayerLocation, catalogs.Command)
	if ticks <= 0 {
		ticks = s.tune.Assault.EdgeTravelTicks
	}
	s.startMove(catalogs.Command, ticks)
	return "RETURNING TO COMMAND CENTER.", true
}

// StartScavenge queues a scavenge run; it completes through StepWorld.
func StartScavenge(s *GameState) (string, bool) {
	if s.ActiveTask != nil || s.localRepairActive() {
		return "ACTION IN PROGRESS.", false
	}
	s.ActiveTask = &ScavengeTask{countdown{Ticks: scavengeTicks, Total: scavengeTicks}}
	s.FieldAction = FieldScavenging
	return "[SCAVENGE] OPERATION STARTED.", true
}

func ResolveRelay(s *GameState, token string) *Relay {
	t := upper(token)
	if r, ok := s.Relays[t]; ok {
		return r
	}
	for _, id := range sortedRelayIDs(s) {
		if s.Relays[id].Location == t {
			return s.Relays[id]
		}
	}
	return nil
}

func Stabilize(s *GameState, token string) (string, bool) {
	if s.PlayerMode != ModeField {
		return "FIELD AUTHORITY REQUIRED.", false
	}
	if s.ActiveTask != nil || len(s.ActiveRepairs) > 0 {
		return "ACTION IN PROGRESS.", false
	}
	r := ResolveRelay(s, token)
	if r == nil {
		return "UNKNOWN RELAY.", false
	}
	if r.Location != s.PlayerLocation {
		return "RELAY NOT IN CURRENT LOCATION.", false
	}
	if r.Status == RelayStable {
		return fmt.Sprintf("RELAY %s ALREADY STABLE.", r.ID), false
	}
	r.Status = RelayUnstable
	s.ActiveTask = &RelayTask{countdown: countdown{Ticks: r.StabilizeTicks, Total: r.StabilizeTicks}, RelayID: r.ID, Target: r.Location}
	s.FieldAction = FieldStabilizing
	return fmt.Sprintf("STABILIZING %s (%d TICKS).", r.ID, r.StabilizeTicks), true
}

// Sync folds pending relay packets into the knowledge index.
func Sync(s *GameState) ([]string, bool) {
	if !s.InCommandMode() || s.PlayerLocation != catalogs.Command {
		return []string{"COMMAND AUTHORITY REQUIRED."}, false
	}
	packets := s.RelayPacketsPending
	if packets <= 0 {
		return []string{"SYNC: NO RELAY PACKETS PENDING."}, false
	}
	s.RelayPacketsPending = 0
	s.KnowledgeIndex += packets
	s.LastSyncTime = s.Time
	plural := "S"
	if packets == 1 {
		plural = ""
	}
	lines := []string{
		fmt.Sprintf("SYNC COMPLETE: %d PACKET%s.", packets, plural),
		fmt.Sprintf("KNOWLEDGE INDEX RELAY_RECOVERY=%d.", s.KnowledgeIndex),
	}
	if s.KnowledgeIndex >= knowledgeDiscountAt {
		lines = append(lines, "BENEFIT ACTIVE: REMOTE REPAIR COST -1.")
	}
	return lines, true
}

// RelayScanLines reports the relay network at the current fidelity.
func RelayScanLines(s *GameState) []string {
	switch s.Fidelity {
	case FidelityLost:
		return []string{"RELAY SCAN: NO SIGNAL."}
	case FidelityFragmented:
		return []string{"RELAY SCAN: SIGNAL IRREGULAR.", "CONTACT REQUIRES FIELD VERIFICATION."}
	}
	lines := []string{"RELAY NETWORK:"}
	for _, id := range sortedRelayIDs(s) {
		r := s.Relays[id]
		if s.Fidelity == FidelityDegraded {
			text := "ACTIVE"
			switch r.Status {
			case RelayUnknown, RelayDormant:
				text = "IRREGULAR"
			case RelayStable:
				text = "STABLE"
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", id, text))
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s | SECTOR %s | STABILIZE %d TICKS", id, r.Status, r.Location, r.StabilizeTicks))
	}
	lines = append(lines,
		fmt.Sprintf("PENDING PACKETS: %d", s.RelayPacketsPending),
		fmt.Sprintf("KNOWLEDGE INDEX: %d", s.KnowledgeIndex))
	return lines
}

func sortedRelayIDs(s *GameState) []string {
	ids := make([]string, 0, len(s.Relays))
	for id := range s.Relays {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}

// tickFieldTask advances the active task and applies its completion.
func tickFieldTask(s *GameState) {
	task := s.ActiveTask
	if task == nil || !task.step() {
		return
	}
	s.ActiveTask = nil
	s.FieldAction = FieldIdle
	switch t := task.(type) {
	case *MoveTask:
		s.PlayerLocation = t.Target
		if t.Target == catalogs.Command {
			s.PlayerMode = ModeCommand
			s.Lines.Field = append(s.Lines.Field, "ARRIVED: COMMAND CENTER.")
		} else {
			s.Lines.Field = append(s.Lines.Field, "ARRIVED: "+t.Target+".")
		}
	case *RelayTask:
		if r := s.Relays[t.RelayID]; r != nil {
			r.Status = RelayStable
			r.LastStabilized = s.Time
			s.RelayPacketsPending++
			s.Lines.Field = append(s.Lines.Field, "RELAY STABLE: "+r.ID, "PACKET READY FOR SYNC.")
		}
	case *ScavengeTask:
		gained := scavengeMinGain + s.RNG.Intn(scavengeMaxGain-scavengeMinGain+1)
		s.Materials += gained
		s.Lines.Field = append(s.Lines.Field, "[SCAVENGE] OPERATION COMPLETE.", fmt.Sprintf("[RESOURCE GAIN] +%d MATERIALS", gained))
	}
}

// TaskRecord is the serialized form of a Task.
type TaskRecord struct {
	Kind    TaskKind `json:"kind"`
	Target  string   `json:"target,omitempty"`
	RelayID string   `json:"relay_id,omitempty"`
	Ticks   int      `json:"ticks"`
	Total   int      `json:"total"`
}

func taskRecord(t Task) *TaskRecord {
	if t == nil {
		return nil
	}
	rem, total := t.Progress()
	rec := &TaskRecord{Kind: t.Kind(), Ticks: rem, Total: total}
	switch v := t.(type) {
	case *MoveTask:
		rec.Target = v.Target
	case *RelayTask:
		rec.Target = v.Target
		rec.RelayID = v.RelayID
	}
	return rec
}

func (r *TaskRecord) task() (Task, error) {
	if r == nil {
		return nil, nil
	}
	c := countdown{Ticks: r.Ticks, Total: r.Total}
	switch TaskKind(strings.ToUpper(string(r.Kind))) {
	case TaskMove:
		return &MoveTask{countdown: c, Target: r.Target}, nil
	case TaskRelay:
		return &RelayTask{countdown: c, RelayID: r.RelayID, Target: r.Target}, nil
	case TaskScavenge:
		return &ScavengeTask{c}, nil
	}
	return nil, fmt.Errorf("unknown task kind %q", r.Kind)
}
