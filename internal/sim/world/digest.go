package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// StateDigest hashes the simulation state that affects future ticks. Two
// states with equal digests step identically.
func StateDigest(s *GameState) string {
	h := sha256.New()
	var tmp [8]byte

	digestHeader(h, &tmp, s)
	digestSectors(h, &tmp, s)
	digestStructures(h, &tmp, s)
	digestAssaults(h, &tmp, s)
	digestEconomy(h, &tmp, s)
	digestField(h, &tmp, s)

	return hex.EncodeToString(h.Sum(nil))
}

func digestU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestInt(h hash.Hash, tmp *[8]byte, v int) { digestU64(h, tmp, uint64(int64(v))) }

func digestFloat(h hash.Hash, tmp *[8]byte, v float64) { digestU64(h, tmp, math.Float64bits(v)) }

func digestString(h hash.Hash, tmp *[8]byte, v string) {
	digestInt(h, tmp, len(v))
	h.Write([]byte(v))
}

func digestBool(h hash.Hash, v bool) {
	if v {
		h.Write([]byte{1})
		return
	}
	h.Write([]byte{0})
}

func digestIntMap(h hash.Hash, tmp *[8]byte, m map[string]int) {
	keys := sortedIntKeys(m)
	digestInt(h, tmp, len(keys))
	for _, k := range keys {
		digestString(h, tmp, k)
		digestInt(h, tmp, m[k])
	}
}

func digestEffects(h hash.Hash, tmp *[8]byte, m map[string]Effect) {
	keys := sortedEffectKeys(m)
	digestInt(h, tmp, len(keys))
	for _, k := range keys {
		digestString(h, tmp, k)
		digestFloat(h, tmp, m[k].Severity)
		digestFloat(h, tmp, m[k].Decay)
	}
}

func digestHeader(h hash.Hash, tmp *[8]byte, s *GameState) {
	digestInt(h, tmp, s.Time)
	digestU64(h, tmp, uint64(s.Seed))
	if r, ok := s.RNG.(*RNG); ok {
		digestU64(h, tmp, r.State)
	}
	digestFloat(h, tmp, s.AmbientThreat)
	digestBool(h, s.Failed)
	digestString(h, tmp, s.FailureReason)
	digestInt(h, tmp, s.CommandBreachCountdown)
	digestInt(h, tmp, s.ArchiveLosses)
	digestEffects(h, tmp, s.GlobalEffects)
	digestIntMap(h, tmp, s.EventCooldowns)
}

func digestSectors(h hash.Hash, tmp *[8]byte, s *GameState) {
	for _, name := range s.SectorOrder {
		sec := s.Sectors[name]
		digestString(h, tmp, name)
		digestFloat(h, tmp, sec.Damage)
		digestFloat(h, tmp, sec.Alertness)
		digestFloat(h, tmp, sec.Power)
		digestBool(h, sec.Occupied)
		digestEffects(h, tmp, sec.Effects)
		digestInt(h, tmp, s.FortLevels[name])
		if w, ok := s.RecoveryWindows[name]; ok {
			digestInt(h, tmp, w.Remaining)
			digestFloat(h, tmp, w.DamageStep)
			digestFloat(h, tmp, w.AlertStep)
		}
	}
}

func digestStructures(h hash.Hash, tmp *[8]byte, s *GameState) {
	for _, id := range s.StructureOrder {
		digestString(h, tmp, id)
		digestInt(h, tmp, int(s.Structures[id].State))
	}
	for _, id := range s.sortedRepairIDs() {
		job := s.ActiveRepairs[id]
		digestString(h, tmp, id)
		digestFloat(h, tmp, job.Remaining)
		digestFloat(h, tmp, job.Total)
		digestInt(h, tmp, job.Cost)
		digestBool(h, job.Local)
	}
}

func digestAssaults(h hash.Hash, tmp *[8]byte, s *GameState) {
	digestInt(h, tmp, s.NextApproachID)
	digestInt(h, tmp, s.AssaultCount)
	for _, a := range s.Assaults {
		digestInt(h, tmp, a.ID)
		digestString(h, tmp, a.Target)
		digestInt(h, tmp, a.Index)
		digestInt(h, tmp, a.TicksToNext)
		digestString(h, tmp, a.State)
	}
	if a := s.CurrentAssault; a != nil {
		digestInt(h, tmp, a.ThreatBudget)
		digestInt(h, tmp, a.StartTime)
		for _, t := range a.TargetSectors {
			digestString(h, tmp, t)
		}
	}
}

func digestEconomy(h hash.Hash, tmp *[8]byte, s *GameState) {
	digestInt(h, tmp, s.Materials)
	digestIntMap(h, tmp, s.Inventory)
	digestInt(h, tmp, s.Stock.TurretAmmo)
	digestInt(h, tmp, s.Stock.RepairDrones)
	digestInt(h, tmp, s.Policies.Repair)
	digestInt(h, tmp, s.Policies.Defense)
	digestInt(h, tmp, s.Policies.Surveillance)
	digestIntMap(h, tmp, s.FabAllocation)
	digestString(h, tmp, string(s.Doctrine))
	digestInt(h, tmp, s.DoctrineChangedAt)
	for _, g := range AllocationGroups {
		digestFloat(h, tmp, s.Allocation[g])
	}
	digestInt(h, tmp, s.NextFabID)
	for _, t := range s.FabQueue {
		digestInt(h, tmp, t.ID)
		digestString(h, tmp, t.Recipe)
		digestFloat(h, tmp, t.Remaining)
	}
}

func digestField(h hash.Hash, tmp *[8]byte, s *GameState) {
	digestString(h, tmp, s.FocusedSector)
	digestBool(h, s.Hardened)
	digestString(h, tmp, s.PlayerMode)
	digestString(h, tmp, s.PlayerLocation)
	digestString(h, tmp, s.FieldAction)
	if rec := taskRecord(s.ActiveTask); rec != nil {
		digestString(h, tmp, string(rec.Kind))
		digestString(h, tmp, rec.Target)
		digestString(h, tmp, rec.RelayID)
		digestInt(h, tmp, rec.Ticks)
	}
	for _, id := range sortedRelayIDs(s) {
		digestString(h, tmp, id)
		digestString(h, tmp, s.Relays[id].Status)
	}
	digestInt(h, tmp, s.RelayPacketsPending)
	digestInt(h, tmp, s.KnowledgeIndex)
}
