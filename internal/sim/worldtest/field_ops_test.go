package worldtest

import "testing"

func TestFieldOps_DeployScavengeReturn(t *testing.T) {
	h := NewHarness(t, 21)
	h.MustOK("DEPLOY COMMS")
	if h.State.InCommandMode() {
		t.Fatalf("still in command mode after DEPLOY")
	}
	res := h.MustFail("SET REPAIR 2")
	if res.Lines[0] != "COMMAND AUTHORITY REQUIRED." {
		t.Fatalf("line=%q", res.Lines[0])
	}
	h.Wait(2)
	status := h.Status()
	if !Contains(status, "LOCATION: COMMS") {
		t.Fatalf("status=%v", status)
	}

	before := h.State.Materials
	h.MustOK("SCAVENGE")
	if gain := h.State.Materials - before; gain < 1 || gain > 3 {
		t.Fatalf("scavenge gain=%d want 1..3", gain)
	}

	h.MustOK("RETURN")
	h.Wait(4)
	if !h.State.InCommandMode() {
		t.Fatalf("mode=%s location=%s after return", h.State.PlayerMode, h.State.PlayerLocation)
	}
	h.MustOK("SET REPAIR 2")
	if h.State.Policies.Repair != 2 {
		t.Fatalf("repair policy=%d want=2", h.State.Policies.Repair)
	}
}

func TestFieldOps_StatusNeverMutates(t *testing.T) {
	h := NewHarness(t, 8)
	h.Wait(15)
	d := h.Digest()
	for i := 0; i < 3; i++ {
		h.Status()
		h.MustOK("HELP")
		h.MustOK("SCAN RELAYS")
	}
	if h.Digest() != d {
		t.Fatalf("read-only verbs changed the digest")
	}
}
