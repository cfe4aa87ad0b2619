package world

import (
	"math"
	"testing"
)

func TestCommandBreach_FailsOnFourthTick(t *testing.T) {
	s := newTestState(t, 1)
	s.Sectors["COMMAND"].Damage = 2.0

	for i := 1; i <= 3; i++ {
		if StepWorld(s) {
			t.Fatalf("failed on tick %d", i)
		}
		if s.CommandBreachCountdown != 4-i {
			t.Fatalf("tick %d: countdown=%d want=%d", i, s.CommandBreachCountdown, 4-i)
		}
	}
	if !StepWorld(s) {
		t.Fatalf("expected failure on tick 4")
	}
	if !s.Failed || s.FailureReason != FailureCommandLost {
		t.Fatalf("failed=%v reason=%q", s.Failed, s.FailureReason)
	}
	if !hasLine(s.Lines.Failure, "[FAILURE] COMMAND CENTER LOST") {
		t.Fatalf("lines=%v", s.Lines.Failure)
	}
	rows := s.Ledger.Since(0)
	if len(rows) == 0 || !rows[len(rows)-1].FailureTriggered {
		t.Fatalf("ledger=%+v want failure row", rows)
	}

	tick := s.Time
	digest := StateDigest(s)
	if StepWorld(s) || s.Time != tick || StateDigest(s) != digest {
		t.Fatalf("failed state must not advance")
	}
}

func TestCommandBreach_Averted(t *testing.T) {
	s := newTestState(t, 1)
	s.Sectors["COMMAND"].Damage = 2.0
	StepWorld(s)
	if !hasLine(s.Lines.Failure, "[WARNING] COMMAND CENTER BREACH. RECOVERY WINDOW: 3 TICKS") {
		t.Fatalf("lines=%v", s.Lines.Failure)
	}
	StepWorld(s)
	s.Sectors["COMMAND"].Damage = 1.0
	StepWorld(s)
	if s.CommandBreachCountdown != 0 || s.Failed {
		t.Fatalf("countdown=%d failed=%v", s.CommandBreachCountdown, s.Failed)
	}
	if !hasLine(s.Lines.Failure, "[EVENT] COMMAND CENTER STABILIZED.") {
		t.Fatalf("lines=%v", s.Lines.Failure)
	}
}

func TestArchiveLimit_Fails(t *testing.T) {
	s := newTestState(t, 1)
	s.ArchiveLosses = s.ArchiveLimit
	if !StepWorld(s) || s.FailureReason != FailureArchiveLost {
		t.Fatalf("failed=%v reason=%q", s.Failed, s.FailureReason)
	}
}

func TestAdvanceTime_GrowthAndRecoveryGate(t *testing.T) {
	s := newTestState(t, 1)
	advanceTime(s)
	if s.Time != 1 || math.Abs(s.AmbientThreat-0.015) > 1e-9 {
		t.Fatalf("time=%d threat=%v", s.Time, s.AmbientThreat)
	}

	s = newTestState(t, 1)
	s.Sectors["POWER"].Damage = 1.0
	advanceTime(s)
	if math.Abs(s.AmbientThreat-0.018) > 1e-9 {
		t.Fatalf("power-damaged growth threat=%v want=0.018", s.AmbientThreat)
	}

	s = newTestState(t, 1)
	s.AmbientThreat = 2.0
	advanceTime(s)
	if math.Abs(s.AmbientThreat-1.985) > 1e-9 {
		t.Fatalf("recovering threat=%v want=1.985", s.AmbientThreat)
	}

	s = newTestState(t, 1)
	s.AmbientThreat = 2.0
	s.Sectors["COMMS"].Damage = 0.5
	advanceTime(s)
	if math.Abs(s.AmbientThreat-2.015) > 1e-9 {
		t.Fatalf("gated threat=%v want=2.015", s.AmbientThreat)
	}
}

func TestAdvanceTime_ClearsOccupancyAndDecaysAlertness(t *testing.T) {
	s := newTestState(t, 1)
	sec := s.Sectors["GATEWAY"]
	sec.Occupied = true
	sec.Alertness = 0.5
	advanceTime(s)
	if sec.Occupied {
		t.Fatalf("occupancy should reset every tick")
	}
	if math.Abs(sec.Alertness-0.49) > 1e-9 {
		t.Fatalf("alert=%v want=0.49", sec.Alertness)
	}
	sec.Alertness = 0
	advanceTime(s)
	if sec.Alertness != 0 {
		t.Fatalf("alert=%v must not go negative", sec.Alertness)
	}
}

func TestApplyWear_FortificationReduces(t *testing.T) {
	s := newTestState(t, 1)
	s.FortLevels["GATEWAY"] = 4
	applyWear(s)
	if d := s.Sectors["STORAGE"].Damage; math.Abs(d-0.0025) > 1e-12 {
		t.Fatalf("storage wear=%v want=0.0025", d)
	}
	if d := s.Sectors["GATEWAY"].Damage; math.Abs(d-0.0025/1.8) > 1e-12 {
		t.Fatalf("gateway wear=%v want=%v", d, 0.0025/1.8)
	}
}

func TestStepWorld_NonStrictInvariantFault(t *testing.T) {
	s := newTestState(t, 1)
	s.StrictInvariants = false
	s.Materials = -4
	StepWorld(s)
	if s.Materials != 0 {
		t.Fatalf("materials=%d want clamped to 0", s.Materials)
	}
	if !hasPrefix(s.Lines.Faults, "[FAULT] INVARIANT: materials are negative") {
		t.Fatalf("faults=%v", s.Lines.Faults)
	}
}

func TestStepWorld_StrictInvariantPanics(t *testing.T) {
	s := newTestState(t, 1)
	s.Materials = -1
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	StepWorld(s)
}
