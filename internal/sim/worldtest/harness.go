package worldtest

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/braydio/custodian/internal/sim/command"
	"github.com/braydio/custodian/internal/sim/tuning"
	world "github.com/braydio/custodian/internal/sim/world"
)

// Harness is a small black-box test helper for driving a session through the
// command surface:
// - Exec()/MustOK() run operator lines through a command.Processor
// - Wait() advances time with WAIT
// - Digest()/ExportSnapshot()/Restore() give deterministic checkpoints
//
// It reads the state only through exported accessors so tests can live outside
// the world package.
type Harness struct {
	T     *testing.T
	State *world.GameState

	proc    *command.Processor
	history []string
}

func NewHarness(t *testing.T, seed int64) *Harness {
	t.Helper()
	return NewHarnessWithState(t, world.New(seed, tuning.Defaults()))
}

// NewHarnessWithState is like NewHarness, but drives an already-constructed
// state. This is useful for snapshot round-trip tests.
func NewHarnessWithState(t *testing.T, s *world.GameState) *Harness {
	t.Helper()
	if s == nil {
		t.Fatalf("NewHarnessWithState: nil state")
	}
	s.StrictInvariants = true
	return &Harness{T: t, State: s, proc: command.NewProcessor()}
}

func (h *Harness) Exec(line string) command.Result {
	h.T.Helper()
	h.history = append(h.history, line)
	return h.proc.Execute(h.State, line)
}

// MustOK runs line and fails the test if it is refused.
func (h *Harness) MustOK(line string) command.Result {
	h.T.Helper()
	res := h.Exec(line)
	if !res.OK {
		h.T.Fatalf("%s refused: %v", line, res.Lines)
	}
	return res
}

// MustFail runs line and fails the test if it is accepted.
func (h *Harness) MustFail(line string) command.Result {
	h.T.Helper()
	res := h.Exec(line)
	if res.OK {
		h.T.Fatalf("%s accepted: %v", line, res.Lines)
	}
	return res
}

// Wait advances n ticks in chunks the WAIT verb accepts.
func (h *Harness) Wait(n int) []string {
	h.T.Helper()
	var out []string
	for n > 0 && !h.State.Failed {
		step := n
		if step > 50 {
			step = 50
		}
		res := h.MustOK("WAIT " + strconv.Itoa(step))
		out = append(out, res.Lines...)
		n -= step
	}
	return out
}

func (h *Harness) Status() []string {
	h.T.Helper()
	return h.MustOK("STATUS").Lines
}

func (h *Harness) Digest() string { return world.StateDigest(h.State) }

func (h *Harness) History() []string { return append([]string(nil), h.history...) }

// ExportSnapshot returns the snapshot as JSON, the way an external store
// would hold it.
func (h *Harness) ExportSnapshot() []byte {
	h.T.Helper()
	b, err := json.Marshal(world.Snapshot(h.State))
	if err != nil {
		h.T.Fatalf("marshal snapshot: %v", err)
	}
	return b
}

// Restore builds a new harness from a JSON snapshot.
func Restore(t *testing.T, data []byte) *Harness {
	t.Helper()
	snap, err := world.MigrateSnapshot(data, tuning.Defaults())
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s, err := world.FromSnapshot(snap, tuning.Defaults())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	return NewHarnessWithState(t, s)
}

// Contains reports whether any line contains substr.
func Contains(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
