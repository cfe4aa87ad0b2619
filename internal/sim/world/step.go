package world

// TickLines buffers the report lines produced by one tick, per subsystem.
type TickLines struct {
	Events      []string
	Assault     []string
	Repairs     []string
	Fabrication []string
	Field       []string
	Fidelity    []string
	Failure     []string
	Faults      []string
}

func (l *TickLines) Reset() { *l = TickLines{} }

// All returns every buffered line in report order.
func (l TickLines) All() []string {
	var out []string
	for _, group := range [][]string{l.Events, l.Assault, l.Repairs, l.Fabrication, l.Field, l.Fidelity, l.Failure, l.Faults} {
		out = append(out, group...)
	}
	return out
}

// StepWorld advances the simulation by one tick in a fixed order and
// reports whether this tick moved the session into failure. A failed state
// only has its line buffers cleared.
func StepWorld(s *GameState) bool {
	s.Lines.Reset()
	if s.Failed {
		return false
	}

	advanceTime(s)
	tickFieldTask(s)
	updateLogistics(s)
	maybeTriggerEvent(s)

	if s.CurrentAssault != nil {
		resolveAssault(s)
	} else {
		advanceAssaults(s)
		maybeSpawnAssault(s)
	}

	TickRepairs(s)
	TickFabrication(s)
	applyWear(s)
	RefreshFidelity(s, true)

	if err := ValidateInvariants(s); err != nil {
		if s.StrictInvariants {
			panic(err)
		}
		s.Lines.Faults = append(s.Lines.Faults, "[FAULT] INVARIANT: "+err.Error())
		repairInvariants(s)
	}
	return checkFailure(s)
}
