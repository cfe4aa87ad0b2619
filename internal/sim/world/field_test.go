package world

import "testing"

func TestFieldLoop_DeployStabilizeReturnSync(t *testing.T) {
	s := newTestState(t, 1)

	line, ok := Deploy(s, "north")
	if !ok || line != "DEPLOYING TO T_NORTH." {
		t.Fatalf("deploy=%q ok=%v", line, ok)
	}
	if s.PlayerMode != ModeField || s.PlayerLocation != "COMMAND" || s.FieldAction != FieldMoving {
		t.Fatalf("mode=%s loc=%s action=%s", s.PlayerMode, s.PlayerLocation, s.FieldAction)
	}
	stepN(t, s, 3)
	if s.PlayerLocation != "COMMAND" {
		t.Fatalf("arrived early at %s", s.PlayerLocation)
	}
	StepWorld(s)
	if s.PlayerLocation != "T_NORTH" || s.FieldAction != FieldIdle || s.ActiveTask != nil {
		t.Fatalf("loc=%s action=%s task=%v", s.PlayerLocation, s.FieldAction, s.ActiveTask)
	}
	if !hasLine(s.Lines.Field, "ARRIVED: T_NORTH.") {
		t.Fatalf("lines=%v", s.Lines.Field)
	}

	if line, ok := Stabilize(s, "R_SOUTH"); ok || line != "RELAY NOT IN CURRENT LOCATION." {
		t.Fatalf("stabilize south=%q ok=%v", line, ok)
	}
	line, ok = Stabilize(s, "T_NORTH")
	if !ok || line != "STABILIZING R_NORTH (3 TICKS)." {
		t.Fatalf("stabilize=%q ok=%v", line, ok)
	}
	if s.Relays["R_NORTH"].Status != RelayUnstable || s.FieldAction != FieldStabilizing {
		t.Fatalf("relay=%s action=%s", s.Relays["R_NORTH"].Status, s.FieldAction)
	}
	stepN(t, s, 3)
	if s.Relays["R_NORTH"].Status != RelayStable || s.RelayPacketsPending != 1 {
		t.Fatalf("relay=%s packets=%d", s.Relays["R_NORTH"].Status, s.RelayPacketsPending)
	}
	if !hasLine(s.Lines.Field, "RELAY STABLE: R_NORTH") {
		t.Fatalf("lines=%v", s.Lines.Field)
	}
	if line, ok := Stabilize(s, "R_NORTH"); ok || line != "RELAY R_NORTH ALREADY STABLE." {
		t.Fatalf("restabilize=%q ok=%v", line, ok)
	}

	if lines, ok := Sync(s); ok || lines[0] != "COMMAND AUTHORITY REQUIRED." {
		t.Fatalf("field sync=%v ok=%v", lines, ok)
	}

	if line, ok := Return(s); !ok || line != "RETURNING TO COMMAND CENTER." {
		t.Fatalf("return=%q ok=%v", line, ok)
	}
	stepN(t, s, 4)
	if s.PlayerMode != ModeCommand || s.PlayerLocation != "COMMAND" {
		t.Fatalf("mode=%s loc=%s", s.PlayerMode, s.PlayerLocation)
	}
	if !hasLine(s.Lines.Field, "ARRIVED: COMMAND CENTER.") {
		t.Fatalf("lines=%v", s.Lines.Field)
	}

	lines, ok := Sync(s)
	if !ok || lines[0] != "SYNC COMPLETE: 1 PACKET." || lines[1] != "KNOWLEDGE INDEX RELAY_RECOVERY=1." {
		t.Fatalf("sync=%v ok=%v", lines, ok)
	}
	if s.KnowledgeIndex != 1 || s.RelayPacketsPending != 0 || s.LastSyncTime != s.Time {
		t.Fatalf("knowledge=%d packets=%d last=%d", s.KnowledgeIndex, s.RelayPacketsPending, s.LastSyncTime)
	}
	if lines, ok := Sync(s); ok || lines[0] != "SYNC: NO RELAY PACKETS PENDING." {
		t.Fatalf("empty sync=%v ok=%v", lines, ok)
	}
}

func TestSync_KnowledgeBenefit(t *testing.T) {
	s := newTestState(t, 1)
	s.RelayPacketsPending = 3
	lines, ok := Sync(s)
	if !ok || len(lines) != 3 || lines[2] != "BENEFIT ACTIVE: REMOTE REPAIR COST -1." {
		t.Fatalf("sync=%v ok=%v", lines, ok)
	}
}

func TestField_Refusals(t *testing.T) {
	s := newTestState(t, 1)
	if line, ok := Move(s, "POWER"); ok || line != "FIELD AUTHORITY REQUIRED." {
		t.Fatalf("move=%q ok=%v", line, ok)
	}
	if line, ok := Return(s); ok || line != "ALREADY IN COMMAND." {
		t.Fatalf("return=%q ok=%v", line, ok)
	}
	for _, tok := range []string{"COMMAND", "NOWHERE", "INGRESS_N"} {
		if line, ok := Deploy(s, tok); ok || line != "INVALID DEPLOYMENT TARGET." {
			t.Fatalf("deploy %s=%q ok=%v", tok, line, ok)
		}
	}
	if line, ok := Stabilize(s, "R_NORTH"); ok || line != "FIELD AUTHORITY REQUIRED." {
		t.Fatalf("stabilize=%q ok=%v", line, ok)
	}
	StartScavenge(s)
	if line, ok := Deploy(s, "POWER"); ok || line != "ACTION IN PROGRESS." {
		t.Fatalf("deploy during scavenge=%q ok=%v", line, ok)
	}

	s = newTestState(t, 1)
	Deploy(s, "POWER")
	if line, ok := Deploy(s, "ARCHIVE"); ok || line != "ALREADY DEPLOYED." {
		t.Fatalf("second deploy=%q ok=%v", line, ok)
	}
	if line, ok := Move(s, "ARCHIVE"); ok || line != "ACTION IN PROGRESS." {
		t.Fatalf("move while moving=%q ok=%v", line, ok)
	}
}

func TestScavenge_GainFromSource(t *testing.T) {
	s := newTestState(t, 1)
	s.RNG = &scriptSource{Ints: []int{2}}
	if line, ok := StartScavenge(s); !ok || line != "[SCAVENGE] OPERATION STARTED." {
		t.Fatalf("scavenge=%q ok=%v", line, ok)
	}
	if line, ok := StartScavenge(s); ok || line != "ACTION IN PROGRESS." {
		t.Fatalf("second scavenge=%q ok=%v", line, ok)
	}
	stepN(t, s, 3)
	if s.Materials != 8 || s.FieldAction != FieldIdle {
		t.Fatalf("materials=%d action=%s want=8,IDLE", s.Materials, s.FieldAction)
	}
	if !hasLine(s.Lines.Field, "[RESOURCE GAIN] +3 MATERIALS") {
		t.Fatalf("lines=%v", s.Lines.Field)
	}
}

func TestLocalRepair_InField(t *testing.T) {
	s := newTestState(t, 1)
	s.Structures["PW_CORE"].State = Offline
	Deploy(s, "POWER")
	stepN(t, s, 2)
	if s.PlayerLocation != "POWER" {
		t.Fatalf("loc=%s want=POWER", s.PlayerLocation)
	}
	line, ok := StartRepair(s, "PW_CORE", true)
	if !ok || line != "MANUAL REPAIR STARTED: POWER CORE (COST: 2 MATERIALS)" {
		t.Fatalf("repair=%q ok=%v", line, ok)
	}
	if s.FieldAction != FieldRepairing {
		t.Fatalf("action=%s want=REPAIRING", s.FieldAction)
	}
	if line, ok := Move(s, "COMMS"); ok || line != "ACTION IN PROGRESS." {
		t.Fatalf("move during repair=%q ok=%v", line, ok)
	}
	if line, ok := StartScavenge(s); ok || line != "ACTION IN PROGRESS." {
		t.Fatalf("scavenge during repair=%q ok=%v", line, ok)
	}
	stepN(t, s, 4)
	if s.Structures["PW_CORE"].State != Damaged || s.FieldAction != FieldIdle {
		t.Fatalf("PW_CORE=%v action=%s", s.Structures["PW_CORE"].State, s.FieldAction)
	}
	if w := s.RecoveryWindows["POWER"]; w == nil || w.Total != localRecoveryTicks {
		t.Fatalf("window=%+v", w)
	}
}

func TestRelayScanLines_ByFidelity(t *testing.T) {
	s := newTestState(t, 1)
	lines := RelayScanLines(s)
	if lines[0] != "RELAY NETWORK:" || lines[1] != "- R_ARCHIVE: UNKNOWN | SECTOR ARCHIVE | STABILIZE 4 TICKS" {
		t.Fatalf("full scan=%v", lines)
	}
	if last := lines[len(lines)-1]; last != "KNOWLEDGE INDEX: 0" {
		t.Fatalf("last=%q", last)
	}
	s.Fidelity = FidelityDegraded
	if lines := RelayScanLines(s); lines[1] != "- R_ARCHIVE: IRREGULAR" || lines[3] != "- R_NORTH: ACTIVE" {
		t.Fatalf("degraded scan=%v", lines)
	}
	s.Fidelity = FidelityFragmented
	if lines := RelayScanLines(s); lines[0] != "RELAY SCAN: SIGNAL IRREGULAR." {
		t.Fatalf("fragmented scan=%v", lines)
	}
	s.Fidelity = FidelityLost
	if lines := RelayScanLines(s); len(lines) != 1 || lines[0] != "RELAY SCAN: NO SIGNAL." {
		t.Fatalf("lost scan=%v", lines)
	}
}

func TestResolveLocation(t *testing.T) {
	s := newTestState(t, 1)
	cases := map[string]string{"south": "T_SOUTH", "T_NORTH": "T_NORTH", "df": "DEFENSE GRID", "defense_grid": "DEFENSE GRID", "archive": "ARCHIVE"}
	for tok, want := range cases {
		if got, ok := ResolveLocation(s, tok); !ok || got != want {
			t.Fatalf("resolve %q=%q,%v want=%q", tok, got, ok, want)
		}
	}
	if _, ok := ResolveLocation(s, "INGRESS_S"); ok {
		t.Fatalf("ingress nodes are not operator destinations")
	}
}
