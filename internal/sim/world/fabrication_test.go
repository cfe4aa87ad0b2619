package world

import (
	"math"
	"testing"
)

func TestFabrication_AmmoCompletesInThreeTicks(t *testing.T) {
	s := newTestState(t, 1)
	line, ok := AddFabrication(s, "turret_ammo")
	if !ok || line != "FAB QUEUED: TURRET AMMUNITION" {
		t.Fatalf("add=%q ok=%v", line, ok)
	}
	if s.Materials != 4 {
		t.Fatalf("materials=%d want=4", s.Materials)
	}
	for i := 1; i <= 2; i++ {
		if out := TickFabrication(s); len(out) != 0 {
			t.Fatalf("tick %d completed early: %v", i, out)
		}
	}
	out := TickFabrication(s)
	if len(out) != 1 || out[0] != "FAB COMPLETE: TURRET AMMUNITION" {
		t.Fatalf("tick 3 lines=%v", out)
	}
	if s.Stock.TurretAmmo != 9 || len(s.FabQueue) != 0 {
		t.Fatalf("ammo=%d queue=%d want=9,0", s.Stock.TurretAmmo, len(s.FabQueue))
	}
}

func TestFabrication_InputsChain(t *testing.T) {
	s := newTestState(t, 1)
	if line, ok := AddFabrication(s, "COMPONENTS"); ok || line != "FAB FAILED: INSUFFICIENT SCRAP." {
		t.Fatalf("add=%q ok=%v", line, ok)
	}
	AddFabrication(s, "SCRAP_SALVAGE")
	TickFabrication(s)
	TickFabrication(s)
	if s.Inventory["SCRAP"] != 2 {
		t.Fatalf("scrap=%d want=2", s.Inventory["SCRAP"])
	}
	if _, ok := AddFabrication(s, "component batch"); !ok {
		t.Fatalf("components should queue with scrap on hand")
	}
	if s.Inventory["SCRAP"] != 0 {
		t.Fatalf("scrap=%d want consumed at queue time", s.Inventory["SCRAP"])
	}
}

func TestFabrication_Refusals(t *testing.T) {
	s := newTestState(t, 1)
	if line, ok := AddFabrication(s, "PLASMA"); ok || line != "UNKNOWN FAB ITEM." {
		t.Fatalf("add=%q ok=%v", line, ok)
	}
	s.Materials = 0
	if line, ok := AddFabrication(s, "TURRET_AMMO"); ok || line != "FAB FAILED: INSUFFICIENT MATERIALS." {
		t.Fatalf("add=%q ok=%v", line, ok)
	}
	if line, ok := CancelFabrication(s, "TURRET_AMMO"); ok || line != "FAB QUEUE EMPTY." {
		t.Fatalf("cancel=%q ok=%v", line, ok)
	}
	if lines := FabQueueLines(s); len(lines) != 1 || lines[0] != "FAB QUEUE EMPTY." {
		t.Fatalf("queue lines=%v", lines)
	}
}

func TestFabrication_CancelRefundsAndPriority(t *testing.T) {
	s := newTestState(t, 1)
	s.Materials = 10
	AddFabrication(s, "TURRET_AMMO")
	AddFabrication(s, "SCRAP_SALVAGE")
	AddFabrication(s, "REPAIR_DRONE")
	if s.Materials != 7 {
		t.Fatalf("materials=%d want=7", s.Materials)
	}
	if line, ok := PrioritizeFabrication(s, "repair drone"); !ok || line != "FAB PRIORITY SET: REPAIR DRONE" {
		t.Fatalf("priority=%q ok=%v", line, ok)
	}
	order := []string{"REPAIR_DRONE", "TURRET_AMMO", "SCRAP_SALVAGE"}
	for i, id := range order {
		if s.FabQueue[i].Recipe != id {
			t.Fatalf("queue[%d]=%s want=%s", i, s.FabQueue[i].Recipe, id)
		}
	}
	lines := FabQueueLines(s)
	if lines[0] != "FAB QUEUE:" || lines[1] != "1. REPAIR DRONE [DRONES] 0.0/4 TICKS" {
		t.Fatalf("queue lines=%v", lines)
	}
	if line, ok := CancelFabrication(s, "REPAIR_DRONE"); !ok || line != "FAB CANCELLED: REPAIR DRONE" {
		t.Fatalf("cancel=%q ok=%v", line, ok)
	}
	if s.Materials != 9 || len(s.FabQueue) != 2 {
		t.Fatalf("materials=%d queue=%d want=9,2", s.Materials, len(s.FabQueue))
	}
	if _, ok := CancelFabrication(s, "ARCHIVE_MODULE"); ok {
		t.Fatalf("cancelled a recipe that is not queued")
	}
}

func TestFabrication_StallsWithoutTools(t *testing.T) {
	s := newTestState(t, 1)
	AddFabrication(s, "TURRET_AMMO")
	s.Structures["FB_TOOLS"].State = Offline
	for i := 0; i < 5; i++ {
		TickFabrication(s)
	}
	if s.FabQueue[0].Remaining != 3 {
		t.Fatalf("remaining=%v, fabrication must stall with tools offline", s.FabQueue[0].Remaining)
	}
}

func TestFabricationRate_AllocationAndFortification(t *testing.T) {
	s := newTestState(t, 1)
	if r := FabricationRate(s, "DEFENSE"); r != 1.0 {
		t.Fatalf("rate=%v want=1", r)
	}
	s.FabAllocation["DEFENSE"] = 4
	if r := FabricationRate(s, "DEFENSE"); r != 1.5 {
		t.Fatalf("rate=%v want=1.5", r)
	}
	for _, name := range s.SectorOrder {
		s.FortLevels[name] = 4
	}
	if r := FabricationRate(s, "DEFENSE"); math.Abs(r-1.5*0.76) > 1e-9 {
		t.Fatalf("fortified rate=%v want=%v", r, 1.5*0.76)
	}
}
