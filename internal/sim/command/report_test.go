package command

import (
	"strings"
	"testing"

	"github.com/braydio/custodian/internal/sim/world"
)

func sampleLines() world.TickLines {
	return world.TickLines{
		Events:      []string{"[EVENT] SENSOR JAMMING IN COMMS", "  -> RELAY CHATTER SPIKES"},
		Assault:     []string{"[WARNING] HOSTILE MOVEMENT NEAR T_NORTH", "[SALVAGE] +2 MATERIALS", "POLICY LOAD: R2 D2 S2 | LOAD 4.00", "[WARNING] POWER CORE LOST. GRID UNSTABLE."},
		Repairs:     []string{"REPAIR COMPLETE: DEFENSE GRID CORE"},
		Fabrication: []string{"FAB COMPLETE: TURRET AMMUNITION"},
		Field:       []string{"ARRIVED: COMMS."},
		Failure:     []string{"[WARNING] COMMAND CENTER BREACH. RECOVERY WINDOW: 3 TICKS", "[FAILURE] COMMAND CENTER LOST"},
	}
}

func TestTickReport_ByFidelity(t *testing.T) {
	cases := []struct {
		fidelity string
		want     []string
	}{
		{world.FidelityFull, sampleLines().All()},
		{world.FidelityDegraded, []string{
			"[EVENT] SENSOR JAMMING",
			"[WARNING] HOSTILE ACTIVITY REPORTED",
			"[SALVAGE] MATERIALS RECOVERED",
			"[WARNING] POWER CORE LOST. GRID UNSTABLE.",
			"REPAIR COMPLETE: DEFENSE GRID CORE",
			"FAB COMPLETE: TURRET AMMUNITION",
			"ARRIVED: COMMS.",
			"[WARNING] COMMAND CENTER BREACH.",
			"[FAILURE] COMMAND CENTER LOST",
		}},
		{world.FidelityFragmented, []string{
			"[EVENT] IRREGULAR SIGNALS DETECTED",
			"[ASSAULT] HOSTILE ACTIVITY POSSIBLE",
			"[WARNING] STRUCTURAL STRESS INDICATED",
			"[EVENT] MAINTENANCE SIGNALS DETECTED",
			"[EVENT] FABRICATION SIGNALS DETECTED",
			"ARRIVED: COMMS.",
			"[WARNING] COMMAND CENTER INTEGRITY UNCERTAIN",
			"[FAILURE] COMMAND CENTER LOST",
		}},
		{world.FidelityLost, []string{
			"ARRIVED: COMMS.",
			"[FAILURE] COMMAND CENTER LOST",
		}},
	}
	for _, c := range cases {
		t.Run(c.fidelity, func(t *testing.T) {
			s := newState(t, 1)
			s.Lines = sampleLines()
			s.Fidelity = c.fidelity
			got := tickReport(s)
			if strings.Join(got, "\n") != strings.Join(c.want, "\n") {
				t.Fatalf("lines=%q\nwant=%q", got, c.want)
			}
		})
	}
}

// repairingAt returns a state at the given comms fidelity with a remote
// DF_CORE repair one tick from completion.
func repairingAt(t *testing.T, fidelity string) *world.GameState {
	t.Helper()
	s := newState(t, 3)
	switch fidelity {
	case world.FidelityDegraded:
		s.Structures["CM_CORE"].State = world.Damaged
	case world.FidelityFragmented:
		s.Structures["CM_CORE"].State = world.Damaged
		s.Policies.Surveillance = 0
	case world.FidelityLost:
		s.Structures["CM_CORE"].State = world.Destroyed
	}
	world.RefreshFidelity(s, false)
	if s.Fidelity != fidelity {
		t.Fatalf("fidelity=%s want=%s", s.Fidelity, fidelity)
	}
	s.Structures["DF_CORE"].State = world.Damaged
	if line, ok := world.StartRepair(s, "DF_CORE", false); !ok {
		t.Fatalf("repair: %s", line)
	}
	s.ActiveRepairs["DF_CORE"].Remaining = 0.1
	return s
}

var tierCases = []struct {
	fidelity string
	exact    bool
	vague    string
}{
	{world.FidelityFull, true, ""},
	{world.FidelityDegraded, true, ""},
	{world.FidelityFragmented, false, "[EVENT] MAINTENANCE SIGNALS DETECTED"},
	{world.FidelityLost, false, ""},
}

const dfComplete = "REPAIR COMPLETE: DEFENSE GRID CORE"

func TestWait_SingleTickByFidelity(t *testing.T) {
	for _, c := range tierCases {
		t.Run(c.fidelity, func(t *testing.T) {
			p, s := NewProcessor(), repairingAt(t, c.fidelity)
			res := mustOK(t, p, s, "WAIT")
			if s.Structures["DF_CORE"].State != world.Operational {
				t.Fatalf("repair did not complete")
			}
			if contains(res.Lines, dfComplete) != c.exact {
				t.Fatalf("exact line shown=%v want=%v: %v", !c.exact, c.exact, res.Lines)
			}
			if c.vague != "" && !contains(res.Lines, c.vague) {
				t.Fatalf("missing %q in %v", c.vague, res.Lines)
			}
			if c.fidelity == world.FidelityLost && (len(res.Lines) != 1 || first(res) != "TIME ADVANCED.") {
				t.Fatalf("lost lines=%v", res.Lines)
			}
		})
	}
}

func TestWait_MultiTickShowsSummaryOnly(t *testing.T) {
	for _, c := range tierCases {
		t.Run(c.fidelity, func(t *testing.T) {
			p, s := NewProcessor(), repairingAt(t, c.fidelity)
			res := mustOK(t, p, s, "WAIT 5")
			if contains(res.Lines, dfComplete) || contains(res.Lines, "[EVENT] MAINTENANCE SIGNALS DETECTED") {
				t.Fatalf("tick lines leaked into summary: %v", res.Lines)
			}
			if c.fidelity == world.FidelityLost {
				if len(res.Lines) != 1 || first(res) != "TIME ADVANCED x5." {
					t.Fatalf("lost lines=%v", res.Lines)
				}
				return
			}
			if !contains(res.Lines, "[SUMMARY]") {
				t.Fatalf("no summary in %v", res.Lines)
			}
		})
	}
}

func TestScavenge_ReportByFidelity(t *testing.T) {
	for _, c := range tierCases {
		t.Run(c.fidelity, func(t *testing.T) {
			p, s := NewProcessor(), repairingAt(t, c.fidelity)
			res := mustOK(t, p, s, "SCAVENGE")
			if !contains(res.Lines, "[SCAVENGE] OPERATION COMPLETE.") {
				t.Fatalf("first-hand result missing: %v", res.Lines)
			}
			if contains(res.Lines, dfComplete) != c.exact {
				t.Fatalf("exact line shown=%v want=%v: %v", !c.exact, c.exact, res.Lines)
			}
			if c.vague != "" && !contains(res.Lines, c.vague) {
				t.Fatalf("missing %q in %v", c.vague, res.Lines)
			}
		})
	}
}

func TestQueries_NotLogged(t *testing.T) {
	p, s := NewProcessor(), newState(t, 3)
	mustOK(t, p, s, "FAB ADD TURRET_AMMO")
	s.Structures["PW_CORE"].State = world.Damaged
	mustOK(t, p, s, "REPAIR PW_CORE")
	n := len(s.OperatorLog)
	mustOK(t, p, s, "FAB QUEUE")
	mustOK(t, p, s, "REPAIR PW_CORE")
	if len(s.OperatorLog) != n {
		t.Fatalf("queries logged: %v", s.OperatorLog[n:])
	}
}
