package world

import "strings"

type StructureState int

const (
	Operational StructureState = iota
	Damaged
	Offline
	Destroyed
)

var structureStateNames = [...]string{"OPERATIONAL", "DAMAGED", "OFFLINE", "DESTROYED"}

func (s StructureState) String() string {
	if s < Operational || s > Destroyed {
		return "UNKNOWN"
	}
	return structureStateNames[s]
}

func ParseStructureState(v string) (StructureState, bool) {
	for i, n := range structureStateNames {
		if n == strings.ToUpper(v) {
			return StructureState(i), true
		}
	}
	return Operational, false
}

type Structure struct {
	ID            string
	Name          string
	Sector        string
	State         StructureState
	MinPower      float64
	StandardPower float64
}

// Degrade moves one step down the ladder and reports whether this call
// destroyed the structure. DESTROYED is absorbing.
func (st *Structure) Degrade() (destroyedNow bool) {
	if st.State == Destroyed {
		return false
	}
	st.State++
	return st.State == Destroyed
}

// Improve moves one step up the ladder, saturating at OPERATIONAL.
func (st *Structure) Improve() {
	if st.State > Operational {
		st.State--
	}
}

func integrityModifier(state StructureState) float64 {
	switch state {
	case Operational:
		return 1.0
	case Damaged:
		return 0.75
	default:
		return 0
	}
}
