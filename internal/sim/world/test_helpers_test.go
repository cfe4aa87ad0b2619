package world

import (
	"strings"
	"testing"

	"github.com/braydio/custodian/internal/sim/tuning"
)

func newTestState(t *testing.T, seed int64) *GameState {
	t.Helper()
	s := New(seed, tuning.Defaults())
	s.StrictInvariants = true
	return s
}

// scriptSource replays fixed draws, then falls back to Def for floats and 0
// for ints.
type scriptSource struct {
	Floats []float64
	Ints   []int
	Def    float64

	fi, ii int
}

func (r *scriptSource) Float64() float64 {
	if r.fi < len(r.Floats) {
		v := r.Floats[r.fi]
		r.fi++
		return v
	}
	return r.Def
}

func (r *scriptSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if r.ii < len(r.Ints) {
		v := r.Ints[r.ii]
		r.ii++
		return v % n
	}
	return 0
}

// zeroSource makes every roll succeed and every weighted draw pick the
// first drawable index.
func zeroSource() *scriptSource { return &scriptSource{} }

// neverSource makes every chance roll fail.
func neverSource() *scriptSource { return &scriptSource{Def: 0.999999} }

func hasLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func hasPrefix(lines []string, prefix string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func stepN(t *testing.T, s *GameState, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		StepWorld(s)
	}
}
