package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/braydio/custodian/internal/sim/world"
)

const maxWaitTicks = 50

var fidelityOrder = map[string]int{
	world.FidelityFull:       0,
	world.FidelityDegraded:   1,
	world.FidelityFragmented: 2,
	world.FidelityLost:       3,
}

// parseWaitTicks accepts no argument, "N" or "NX".
func parseWaitTicks(args []string) (int, bool) {
	if len(args) == 0 {
		return 1, true
	}
	if len(args) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(args[0], "X"))
	if err != nil || n < 1 || n > maxWaitTicks {
		return 0, false
	}
	return n, true
}

// tickRun collects what happened across a run of StepWorld calls.
type tickRun struct {
	ticks int
	// reports holds every tick's lines after fidelity filtering.
	reports []string
	// field and failures are first-hand lines shown even in summaries.
	field         []string
	failures      []string
	worst         string
	failed        bool
	phaseChanged  bool
	anyEvent      bool
	assaultSignal bool
	startThreat   float64
}

func runTicks(s *world.GameState, n int, until func() bool) tickRun {
	run := tickRun{worst: world.FidelityFull, startThreat: s.AmbientThreat}
	phase := s.AssaultPhase()
	for i := 0; i < n; i++ {
		approaches, engaged := len(s.Assaults), s.CurrentAssault != nil
		failed := world.StepWorld(s)
		run.ticks++
		run.reports = append(run.reports, tickReport(s)...)
		run.field = append(run.field, s.Lines.Field...)
		run.failures = append(run.failures, failureLines(s.Lines.Failure)...)
		if len(s.Lines.Events) > 0 || len(s.Lines.Repairs) > 0 {
			run.anyEvent = true
		}
		if len(s.Assaults) > approaches || (!engaged && s.CurrentAssault != nil) {
			run.assaultSignal = true
		}
		if fidelityOrder[s.Fidelity] > fidelityOrder[run.worst] {
			run.worst = s.Fidelity
		}
		if p := s.AssaultPhase(); p != phase {
			run.phaseChanged = true
			phase = p
		}
		if failed || s.Failed {
			run.failed = true
			break
		}
		if until != nil && until() {
			break
		}
	}
	return run
}

// handleWait reports a single tick line by line and a longer wait as a
// summary graded by the worst fidelity seen.
func handleWait(_ *Processor, s *world.GameState, args []string) Result {
	n, valid := parseWaitTicks(args)
	if !valid {
		return fail(fmt.Sprintf("WAIT REQUIRES 1-%d TICKS.", maxWaitTicks))
	}
	run := runTicks(s, n, nil)

	if run.ticks == 1 {
		lines := append([]string{"TIME ADVANCED."}, run.reports...)
		if run.failed {
			lines = append(lines, "SESSION TERMINATED.")
		}
		return ok(lines...)
	}

	lines := []string{fmt.Sprintf("TIME ADVANCED x%d.", run.ticks)}
	lines = append(lines, run.field...)
	if run.worst != world.FidelityLost {
		lines = append(lines, "[SUMMARY]")
		lines = append(lines, run.summary(s)...)
	}
	if run.failed {
		lines = append(lines, run.failures...)
		lines = append(lines, "SESSION TERMINATED.")
	}
	return ok(lines...)
}

func (r tickRun) summary(s *world.GameState) []string {
	escalated := s.AmbientThreat-r.startThreat >= 0.1
	var out []string
	switch r.worst {
	case world.FidelityFull:
		if escalated {
			out = append(out, "- THREAT ESCALATED")
		}
		if r.assaultSignal {
			out = append(out, "- HOSTILE COUNT INCREASED")
		}
		if r.phaseChanged {
			out = append(out, "- ASSAULT STATUS CHANGED")
		}
		if r.anyEvent {
			out = append(out, "- SYSTEM STABILITY DECLINED")
		}
	case world.FidelityDegraded:
		if r.anyEvent || escalated {
			out = append(out, "- SYSTEM STABILITY DECLINED")
		}
		if r.assaultSignal {
			out = append(out, "- HOSTILE ACTIVITY INCREASED")
		}
		if r.phaseChanged {
			out = append(out, "- ASSAULT STATUS SHIFTED")
		}
	default:
		if r.anyEvent || escalated || r.phaseChanged || r.assaultSignal {
			out = append(out, "- CONDITIONS MAY HAVE WORSENED")
		} else {
			out = append(out, "- SIGNALS INCONCLUSIVE")
		}
	}
	if len(out) == 0 {
		out = append(out, "- CONDITIONS UNCHANGED")
	}
	return out
}

// handleScavenge starts a scavenge run and advances time until it lands.
func handleScavenge(_ *Processor, s *world.GameState, args []string) Result {
	if len(args) > 0 {
		return unknownCommand
	}
	line, accepted := world.StartScavenge(s)
	if !accepted {
		return fail(line)
	}
	run := runTicks(s, maxWaitTicks, func() bool { return s.ActiveTask == nil })
	lines := append([]string{line}, run.reports...)
	if run.failed {
		lines = append(lines, "SESSION TERMINATED.")
	}
	return ok(lines...)
}
