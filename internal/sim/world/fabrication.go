package world

import (
	"fmt"
	"math"

	"github.com/braydio/custodian/internal/sim/catalogs"
)

// FabricationTask is a queued recipe. Inputs and materials are paid when the
// task is queued and refunded on cancel.
type FabricationTask struct {
	ID        int     `json:"id"`
	Recipe    string  `json:"recipe"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Remaining float64 `json:"remaining"`
	Total     float64 `json:"total"`
}

// FabricationRate is the head task's progress per tick.
func FabricationRate(s *GameState, category string) float64 {
	level := s.FabAllocation[category]
	var fort float64
	for _, name := range s.SectorOrder {
		fort += float64(s.FortLevels[name])
	}
	avg := fort / math.Max(1, float64(len(s.SectorOrder)))
	return (0.5 + float64(level)*0.25) * math.Max(0.6, 1-avg*0.06) * s.LogisticsMultiplier
}

func AddFabrication(s *GameState, token string) (string, bool) {
	r, ok := s.cats.Recipes.Resolve(token)
	if !ok {
		return "UNKNOWN FAB ITEM.", false
	}
	if s.Materials < r.Materials {
		return "FAB FAILED: INSUFFICIENT MATERIALS.", false
	}
	for _, item := range sortedIntKeys(r.Inputs) {
		if s.Inventory[item] < r.Inputs[item] {
			return fmt.Sprintf("FAB FAILED: INSUFFICIENT %s.", item), false
		}
	}
	s.Materials -= r.Materials
	for item, n := range r.Inputs {
		s.Inventory[item] -= n
	}
	s.NextFabID++
	s.FabQueue = append(s.FabQueue, &FabricationTask{
		ID:        s.NextFabID,
		Recipe:    r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Remaining: float64(r.Ticks),
		Total:     float64(r.Ticks),
	})
	return "FAB QUEUED: " + r.Name, true
}

func findFabTask(s *GameState, token string) int {
	r, ok := s.cats.Recipes.Resolve(token)
	if !ok {
		return -1
	}
	for i, t := range s.FabQueue {
		if t.Recipe == r.ID {
			return i
		}
	}
	return -1
}

// CancelFabrication removes the first queued task for a recipe and refunds it.
func CancelFabrication(s *GameState, token string) (string, bool) {
	if len(s.FabQueue) == 0 {
		return "FAB QUEUE EMPTY.", false
	}
	i := findFabTask(s, token)
	if i < 0 {
		return "UNKNOWN FAB ITEM.", false
	}
	t := s.FabQueue[i]
	r := s.cats.Recipes.ByID[t.Recipe]
	s.Materials += r.Materials
	for item, n := range r.Inputs {
		s.Inventory[item] += n
	}
	s.FabQueue = append(s.FabQueue[:i], s.FabQueue[i+1:]...)
	return "FAB CANCELLED: " + t.Name, true
}

// PrioritizeFabrication moves the first matching task to the head.
func PrioritizeFabrication(s *GameState, token string) (string, bool) {
	if len(s.FabQueue) == 0 {
		return "FAB QUEUE EMPTY.", false
	}
	i := findFabTask(s, token)
	if i < 0 {
		return "UNKNOWN FAB ITEM.", false
	}
	t := s.FabQueue[i]
	copy(s.FabQueue[1:i+1], s.FabQueue[:i])
	s.FabQueue[0] = t
	return "FAB PRIORITY SET: " + t.Name, true
}

func FabQueueLines(s *GameState) []string {
	if len(s.FabQueue) == 0 {
		return []string{"FAB QUEUE EMPTY."}
	}
	lines := []string{"FAB QUEUE:"}
	for i, t := range s.FabQueue {
		lines = append(lines, fmt.Sprintf("%d. %s [%s] %.1f/%.0f TICKS", i+1, t.Name, t.Category, t.Total-t.Remaining, t.Total))
	}
	return lines
}

// TickFabrication advances the head task. Nothing moves while the assembly
// tools are down.
func TickFabrication(s *GameState) []string {
	if len(s.FabQueue) == 0 || structureOutput(s, catalogs.FabTools) <= 0 {
		return nil
	}
	head := s.FabQueue[0]
	head.Remaining = round4(head.Remaining - FabricationRate(s, head.Category))
	if head.Remaining > 0 {
		return nil
	}
	s.FabQueue = s.FabQueue[1:]
	r := s.cats.Recipes.ByID[head.Recipe]
	for _, key := range sortedIntKeys(r.Outputs) {
		n := r.Outputs[key]
		switch key {
		case catalogs.StockTurretAmmo:
			s.Stock.TurretAmmo += n
		case catalogs.StockRepairDrones:
			s.Stock.RepairDrones += n
		default:
			s.Inventory[key] += n
		}
	}
	line := "FAB COMPLETE: " + head.Name
	s.Lines.Fabrication = append(s.Lines.Fabrication, line)
	return []string{line}
}
