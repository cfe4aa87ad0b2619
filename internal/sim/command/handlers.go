package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/braydio/custodian/internal/sim/policy"
	"github.com/braydio/custodian/internal/sim/world"
)

func joinArgs(args []string) string { return strings.Join(args, " ") }

func resolveSector(s *world.GameState, token string) (string, bool) {
	d, found := s.Catalogs().Sectors.Resolve(token)
	if !found {
		return "", false
	}
	return d.Name, true
}

func parseLevel(token string) (int, bool) {
	n, err := strconv.Atoi(token)
	if err != nil || !policy.ValidLevel(n) {
		return 0, false
	}
	return n, true
}

var levelError = fmt.Sprintf("LEVEL MUST BE %d-%d.", policy.MinLevel, policy.MaxLevel)

// REPAIR <ID> [LOCAL] | REPAIR CANCEL <ID>
func handleRepair(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) == 0 {
		return fail("REPAIR REQUIRES STRUCTURE ID.")
	}
	if args[0] == "CANCEL" {
		if len(args) < 2 {
			return fail("REPAIR CANCEL REQUIRES STRUCTURE ID.")
		}
		return from(world.CancelRepair(s, joinArgs(args[1:])))
	}
	local := false
	if last := len(args) - 1; last > 0 && args[last] == "LOCAL" {
		local = true
		args = args[:last]
	}
	token := joinArgs(args)
	if st := s.ResolveStructure(token); st != nil {
		if job, busy := s.ActiveRepairs[st.ID]; busy {
			return query(repairProgressLine(s, st.Name, job))
		}
	}
	return from(world.StartRepair(s, token, local))
}

func repairProgressLine(s *world.GameState, name string, job *world.RepairJob) string {
	switch world.CommsFidelity(s) {
	case world.FidelityFull:
		return fmt.Sprintf("[REPAIR] IN PROGRESS: %s (%.1f/%.0f TICKS, COST: %d MATERIALS)",
			name, job.Total-job.Remaining, job.Total, job.Cost)
	case world.FidelityDegraded:
		stage := "EARLY STAGE"
		switch {
		case job.Remaining <= 1:
			stage = "NEAR COMPLETE"
		case job.Remaining <= 3:
			stage = "MID PROGRESS"
		}
		return fmt.Sprintf("[REPAIR] IN PROGRESS: %s (COST: %d MATERIALS)", stage, job.Cost)
	case world.FidelityFragmented:
		return fmt.Sprintf("[EVENT] MAINTENANCE SIGNALS DETECTED (COST: %d MATERIALS)", job.Cost)
	}
	return "REPAIR STATUS: NO SIGNAL."
}

func handleFocus(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) == 0 {
		return fail("FOCUS REQUIRES SECTOR ID.")
	}
	if s.CurrentAssault != nil {
		return fail("[FOCUS IGNORED] ASSAULT ACTIVE.")
	}
	name, found := resolveSector(s, joinArgs(args))
	if !found {
		return fail("UNKNOWN SECTOR.")
	}
	if s.Sectors[name].StatusLabel() == world.StatusCompromised {
		return fail("FOCUS UNAVAILABLE: " + name + " COMPROMISED.")
	}
	s.FocusedSector = name
	s.Hardened = false
	return ok("[FOCUS SET] " + name)
}

func handleHarden(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) > 0 {
		return unknownCommand
	}
	if s.CurrentAssault != nil {
		return fail("[HARDEN IGNORED] ASSAULT ACTIVE.")
	}
	s.Hardened = true
	s.FocusedSector = ""
	return ok("[HARDENING SYSTEMS]")
}

func handleDeploy(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) == 0 {
		return fail("DEPLOY REQUIRES TARGET.")
	}
	return from(world.Deploy(s, joinArgs(args)))
}

func handleMove(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) == 0 {
		return fail("MOVE REQUIRES TARGET.")
	}
	return from(world.Move(s, joinArgs(args)))
}

func handleReturn(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) > 0 {
		return unknownCommand
	}
	return from(world.Return(s))
}

// SET REPAIR|DEFENSE|SURVEILLANCE <0-4> | SET FAB <CATEGORY> <0-4>
func handleSet(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) == 3 && args[0] == "FAB" {
		level, valid := parseLevel(args[2])
		if !valid {
			return fail(levelError)
		}
		if !policy.IsFabCategory(args[1]) {
			return fail("FAB CATEGORY MUST BE DEFENSE, DRONES, REPAIRS, OR ARCHIVE.")
		}
		s.FabAllocation[args[1]] = level
		return ok(fmt.Sprintf("FABRICATION %s ALLOCATION SET TO %d.", args[1], level))
	}
	if len(args) != 2 {
		return fail("SET REQUIRES: REPAIR, DEFENSE, OR SURVEILLANCE.")
	}
	level, valid := parseLevel(args[1])
	if !valid {
		return fail(levelError)
	}
	switch args[0] {
	case "REPAIR":
		s.Policies.Repair = level
		return ok(fmt.Sprintf("REPAIR INTENSITY SET TO %d.", level))
	case "DEFENSE":
		s.Policies.Defense = level
		return ok(fmt.Sprintf("DEFENSE READINESS SET TO %d.", level))
	case "SURVEILLANCE":
		s.Policies.Surveillance = level
		return ok(fmt.Sprintf("SURVEILLANCE COVERAGE SET TO %d.", level))
	}
	return fail("SET REQUIRES: REPAIR, DEFENSE, OR SURVEILLANCE.")
}

// FORTIFY <SECTOR> <0-4>
func handleFortify(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) < 2 {
		return fail("FORTIFY REQUIRES SECTOR AND LEVEL.")
	}
	last := len(args) - 1
	level, valid := parseLevel(args[last])
	if !valid {
		return fail(levelError)
	}
	name, found := resolveSector(s, joinArgs(args[:last]))
	if !found {
		return fail("UNKNOWN SECTOR.")
	}
	s.FortLevels[name] = level
	return ok(fmt.Sprintf("FORTIFICATION %s SET TO %d.", name, level))
}

// CONFIG DOCTRINE <NAME>
func handleConfig(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) != 2 || args[0] != "DOCTRINE" {
		return fail("CONFIG REQUIRES: DOCTRINE <NAME>.")
	}
	d, valid := world.ParseDoctrine(args[1])
	if !valid {
		names := make([]string, 0, len(world.Doctrines))
		for _, x := range world.Doctrines {
			names = append(names, string(x))
		}
		return fail("INVALID DOCTRINE.", "VALID: "+strings.Join(names, ", ")+".")
	}
	world.SetDoctrine(s, d)
	return ok("DEFENSE DOCTRINE SET: "+string(s.Doctrine),
		fmt.Sprintf("READINESS: %.2f", world.ComputeReadiness(s)))
}

// ALLOCATE DEFENSE <GROUP|SECTOR> <PERCENT>
func handleAllocate(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) < 3 || args[0] != "DEFENSE" {
		return fail("ALLOCATE REQUIRES: DEFENSE <GROUP> <PERCENT>.")
	}
	last := len(args) - 1
	target := joinArgs(args[1:last])
	group, found := world.ParseAllocationGroup(target)
	if !found {
		name, isSector := resolveSector(s, target)
		if !isSector {
			return fail("INVALID ALLOCATION TARGET.")
		}
		group = world.AllocationGroupForSector(name)
	}
	percent, err := strconv.ParseFloat(strings.TrimSuffix(args[last], "%"), 64)
	if err != nil {
		return fail("INVALID PERCENT VALUE.")
	}
	weights, valid := world.AllocationFromPercent(group, percent)
	if !valid {
		return fail("ALLOCATION PERCENT MUST BE > 0 AND < 100.")
	}
	s.Allocation = weights
	return ok(fmt.Sprintf("DEFENSE ALLOCATION UPDATED: %s %.0f%%", group, percent),
		fmt.Sprintf("READINESS: %.2f", world.ComputeReadiness(s)))
}

// FAB ADD|CANCEL|PRIORITY <ITEM> | FAB QUEUE
func handleFab(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) == 0 {
		return fail("FAB REQUIRES: ADD, CANCEL, PRIORITY, OR QUEUE.")
	}
	item := joinArgs(args[1:])
	switch args[0] {
	case "QUEUE":
		return query(world.FabQueueLines(s)...)
	case "ADD":
		line, accepted := world.AddFabrication(s, item)
		if line == "UNKNOWN FAB ITEM." {
			return fail(line, "KNOWN: "+strings.Join(s.Catalogs().Recipes.IDs(), ", "))
		}
		return from(line, accepted)
	case "CANCEL":
		return from(world.CancelFabrication(s, item))
	case "PRIORITY":
		return from(world.PrioritizeFabrication(s, item))
	}
	return fail("FAB REQUIRES: ADD, CANCEL, PRIORITY, OR QUEUE.")
}

// STABILIZE [RELAY] <ID>
func handleStabilize(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) > 0 && args[0] == "RELAY" {
		args = args[1:]
	}
	if len(args) == 0 {
		return fail("STABILIZE REQUIRES RELAY ID.")
	}
	return from(world.Stabilize(s, joinArgs(args)))
}

func handleSync(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) > 0 {
		return unknownCommand
	}
	lines, accepted := world.Sync(s)
	return Result{Lines: lines, OK: accepted}
}

// SCAN RELAYS
func handleScan(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) != 1 || args[0] != "RELAYS" {
		return fail("SCAN REQUIRES: RELAYS.")
	}
	return ok(world.RelayScanLines(s)...)
}
