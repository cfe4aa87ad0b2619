package world

import (
	"fmt"
	"math"

	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/policy"
)

// Failure reasons.
const (
	FailureCommandLost = "COMMAND CENTER LOST"
	FailureArchiveLost = "ARCHIVAL INTEGRITY LOST"
)

// advanceTime moves the clock one tick: threat growth, effects, alertness
// drift, recovery windows and the threat recovery gate.
func advanceTime(s *GameState) {
	t := s.tune.Threat
	s.Time++
	growth := t.Growth
	if p := s.Sectors[catalogs.Power]; p != nil && p.Damage >= 1.0 {
		growth *= t.PowerDamageMult
	}
	s.AmbientThreat += growth
	applyGlobalEffects(s)

	storageDamaged := false
	if st := s.Sectors[catalogs.Storage]; st != nil && st.Damage >= 1.0 {
		storageDamaged = true
	}
	for _, name := range s.SectorOrder {
		sec := s.Sectors[name]
		applySectorEffects(s, sec)
		sec.Alertness += sec.Damage * t.AlertnessFromDamage
		if storageDamaged && name != catalogs.Storage {
			sec.Alertness += sec.Damage * t.AlertnessFromDamage * t.StorageDecayMult
		}
		sec.Alertness = math.Max(0, sec.Alertness-t.AlertnessDecay)
		sec.Occupied = false
	}
	tickRecoveryWindows(s)
	applyRecoveryGate(s)
}

// applyRecoveryGate bleeds threat back toward the floor while the core
// sectors are intact and nothing hostile is inbound.
func applyRecoveryGate(s *GameState) {
	t := s.tune.Threat
	if s.AmbientThreat < t.RecoveryGate || s.CurrentAssault != nil || len(s.Assaults) > 0 {
		return
	}
	for _, name := range []string{catalogs.Command, catalogs.Comms, catalogs.Power} {
		if sec := s.Sectors[name]; sec != nil && sec.Damage >= 0.5 {
			return
		}
	}
	s.AmbientThreat = math.Max(t.RecoveryFloor, s.AmbientThreat-t.RecoveryRate)
}

// applyWear accrues standing damage from the defense posture.
func applyWear(s *GameState) {
	rate := 0.0025 * policy.WearRate.At(s.Policies.Defense)
	for _, name := range s.SectorOrder {
		s.Sectors[name].Damage += rate / math.Max(1, fortMult(s, name))
	}
}

// checkFailure runs the command breach countdown and the archive limit.
// It reports whether this call moved the state into failure.
func checkFailure(s *GameState) bool {
	if s.Failed {
		return false
	}
	f := s.tune.Failure
	cmd := s.Sectors[catalogs.Command]
	if cmd != nil && cmd.Damage >= f.CommandBreachDamage {
		switch {
		case s.CommandBreachCountdown == 0:
			s.CommandBreachCountdown = f.CommandRecoveryTicks
			s.Lines.Failure = append(s.Lines.Failure,
				fmt.Sprintf("[WARNING] COMMAND CENTER BREACH. RECOVERY WINDOW: %d TICKS", s.CommandBreachCountdown))
		default:
			s.CommandBreachCountdown--
			if s.CommandBreachCountdown <= 0 {
				return fail(s, FailureCommandLost)
			}
			s.Lines.Failure = append(s.Lines.Failure,
				fmt.Sprintf("[WARNING] COMMAND CENTER BREACH. RECOVERY WINDOW: %d TICKS", s.CommandBreachCountdown))
		}
	} else if s.CommandBreachCountdown > 0 {
		s.CommandBreachCountdown = 0
		s.Lines.Failure = append(s.Lines.Failure, "[EVENT] COMMAND CENTER STABILIZED.")
	}
	if s.ArchiveLimit > 0 && s.ArchiveLosses >= s.ArchiveLimit {
		return fail(s, FailureArchiveLost)
	}
	return false
}

func fail(s *GameState, reason string) bool {
	s.Failed = true
	s.FailureReason = reason
	s.CommandBreachCountdown = 0
	s.Lines.Failure = append(s.Lines.Failure, "[FAILURE] "+reason)
	s.Ledger.Append(AssaultTickRecord{Tick: s.Time, FailureTriggered: true, Note: reason})
	return true
}
