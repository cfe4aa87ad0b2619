package command

import (
	"fmt"
	"sort"

	"github.com/braydio/custodian/internal/sim/world"
)

var statusMarkers = map[string]string{
	world.StatusCompromised: "X",
	world.StatusDamaged:     "!",
	world.StatusAlert:       "~",
	world.StatusStable:      ".",
}

var statusPriority = map[string]int{
	world.StatusCompromised: 0,
	world.StatusDamaged:     1,
	world.StatusAlert:       2,
	world.StatusStable:      3,
}

// handleStatus renders the operator readout. It reads the state only.
func handleStatus(p *Processor, s *world.GameState, _ []string) Result {
	fidelity := world.CommsFidelity(s)
	if !s.InCommandMode() {
		return ok(p.fieldView(s, fidelity)...)
	}
	if fidelity == world.FidelityLost {
		lines := []string{
			"TIME: ?? | THREAT: UNKNOWN | ASSAULT: NO SIGNAL",
			"POSTURE: - | ARCHIVE: NO SIGNAL",
			situation(s, fidelity),
			"SECTORS:",
		}
		for _, name := range sortedSectors(s) {
			lines = append(lines, fmt.Sprintf("%-12s ?", name))
		}
		return ok(lines...)
	}

	archive := fmt.Sprintf("%d/%d", s.ArchiveLosses, s.ArchiveLimit)
	if fidelity != world.FidelityFull {
		archive = fmt.Sprintf("%d+", s.ArchiveLosses)
	}
	lines := []string{
		fmt.Sprintf("TIME: %d | THREAT: %s | ASSAULT: %s", s.Time, s.ThreatBucket(), s.AssaultPhase()),
		fmt.Sprintf("POSTURE: %s | ARCHIVE: %s", posture(s, fidelity), archive),
		situation(s, fidelity),
	}
	if fidelity == world.FidelityFull {
		lines = append(lines, fmt.Sprintf("SEED: %d", s.Seed))
	}
	lines = append(lines, fmt.Sprintf("RESOURCES: MATERIALS %d | AMMO %d | DRONES %d",
		s.Materials, s.Stock.TurretAmmo, s.Stock.RepairDrones))
	lines = append(lines, repairLines(s, fidelity)...)

	lines = append(lines, "SECTORS:")
	stableHeader := false
	for _, name := range sortedSectors(s) {
		cur := s.SectorStatus(name)
		if cur == world.StatusStable && !stableHeader {
			lines = append(lines, "---")
			stableHeader = true
		}
		delta := ""
		if prev, seen := p.lastStatus[name]; seen && prev != cur {
			if statusPriority[cur] < statusPriority[prev] {
				delta = " (+)"
			} else {
				delta = " (-)"
			}
		}
		lines = append(lines, fmt.Sprintf("%-12s %s%s", name, statusMarkers[cur], delta))
		p.lastStatus[name] = cur
	}
	lines = append(lines, "DEFENSE DOCTRINE: "+string(s.Doctrine))
	return ok(lines...)
}

func (p *Processor) fieldView(s *world.GameState, fidelity string) []string {
	lines := []string{
		"LOCATION: " + s.PlayerLocation,
		"FIDELITY: " + fidelity,
		"ACTION: " + s.FieldAction,
	}
	if s.ActiveTask != nil {
		left, total := s.ActiveTask.Progress()
		lines = append(lines, fmt.Sprintf("TASK: %s %d/%d", s.ActiveTask.Kind(), total-left, total))
	}
	stableHeader := false
	for _, name := range sortedSectors(s) {
		cur := s.SectorStatus(name)
		if cur == world.StatusStable && !stableHeader {
			lines = append(lines, "---")
			stableHeader = true
		}
		prefix := " "
		if name == s.PlayerLocation {
			prefix = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %-12s %s", prefix, name, statusMarkers[cur]))
	}
	return lines
}

func sortedSectors(s *world.GameState) []string {
	names := append([]string(nil), s.SectorOrder...)
	sort.SliceStable(names, func(i, j int) bool {
		return statusPriority[s.SectorStatus(names[i])] < statusPriority[s.SectorStatus(names[j])]
	})
	return names
}

func situation(s *world.GameState, fidelity string) string {
	degraded := 0
	for _, name := range s.SectorOrder {
		switch s.Sectors[name].StatusLabel() {
		case world.StatusDamaged, world.StatusCompromised:
			degraded++
		}
	}
	switch {
	case degraded == 1:
		return "SITUATION: 1 SYSTEM DEGRADED"
	case degraded > 1:
		return fmt.Sprintf("SITUATION: %d SYSTEMS DEGRADED", degraded)
	case fidelity != world.FidelityFull:
		return "SITUATION: INFORMATION UNSTABLE"
	}
	return "SITUATION: STABLE"
}

func posture(s *world.GameState, fidelity string) string {
	switch {
	case s.Hardened:
		return "HARDENED"
	case s.FocusedSector != "" && fidelity == world.FidelityFull:
		return "FOCUSED (" + s.FocusedSector + ")"
	case s.FocusedSector != "":
		return "FOCUSED"
	}
	return "ACTIVE"
}

func repairLines(s *world.GameState, fidelity string) []string {
	if len(s.ActiveRepairs) == 0 {
		return nil
	}
	if fidelity == world.FidelityLost {
		return []string{"REPAIRS: NO SIGNAL"}
	}
	ids := make([]string, 0, len(s.ActiveRepairs))
	for id := range s.ActiveRepairs {
		ids = append(ids, id)
	}
	sortStrings(ids)
	lines := []string{"REPAIRS:"}
	for _, id := range ids {
		job := s.ActiveRepairs[id]
		switch fidelity {
		case world.FidelityFull:
			lines = append(lines, fmt.Sprintf("- %s %s: %.1f/%.0f TICKS",
				id, s.Structures[id].Name, job.Total-job.Remaining, job.Total))
		case world.FidelityDegraded:
			lines = append(lines, fmt.Sprintf("- %s: IN PROGRESS", id))
		default:
			return append(lines, "- MAINTENANCE SIGNALS DETECTED")
		}
	}
	return lines
}

func sortStrings(xs []string) { sort.Strings(xs) }
