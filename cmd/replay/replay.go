package main

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/braydio/custodian/internal/persistence/snapshot"
	"github.com/braydio/custodian/internal/sim/command"
	"github.com/braydio/custodian/internal/sim/session"
	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/sim/world"
)

type replayResult struct {
	Skipped  int
	Checked  int
	LastSeq  int
	LastTick int
	Digest   string
}

// replay re-executes entries after startSeq against s and checks every
// recorded digest. Entries from other sessions are ignored when sessionID is
// set.
func replay(s *world.GameState, sessionID string, startSeq int, entries []session.CommandLogEntry) (replayResult, error) {
	res := replayResult{LastSeq: startSeq, LastTick: s.Time, Digest: world.StateDigest(s)}
	proc := command.NewProcessor()
	for _, e := range entries {
		if sessionID != "" && e.Session != sessionID {
			continue
		}
		if e.Seq <= startSeq {
			res.Skipped++
			continue
		}
		if e.Seq != res.LastSeq+1 {
			return res, fmt.Errorf("seq gap: want=%d got=%d", res.LastSeq+1, e.Seq)
		}
		out := proc.Execute(s, e.Line)
		digest := world.StateDigest(s)
		if out.OK != e.OK {
			return res, fmt.Errorf("seq %d %q: ok=%v want=%v", e.Seq, e.Line, out.OK, e.OK)
		}
		if digest != e.Digest {
			return res, fmt.Errorf("digest mismatch at seq %d (%q): got=%s want=%s", e.Seq, e.Line, digest, e.Digest)
		}
		if s.Time != e.Time {
			return res, fmt.Errorf("time mismatch at seq %d: got=%d want=%d", e.Seq, s.Time, e.Time)
		}
		res.Checked++
		res.LastSeq = e.Seq
		res.LastTick = s.Time
		res.Digest = digest
	}
	return res, nil
}

// loadStart builds the starting state from a snapshot, or fresh from seed.
func loadStart(snapPath string, seed int64, tune tuning.Tuning) (*world.GameState, snapshot.Header, error) {
	if snapPath == "" {
		return world.New(seed, tune), snapshot.Header{}, nil
	}
	file, err := snapshot.ReadSnapshot(snapPath, tune)
	if err != nil {
		return nil, snapshot.Header{}, err
	}
	s, err := world.FromSnapshot(file.State, tune)
	if err != nil {
		return nil, file.Header, err
	}
	return s, file.Header, nil
}

// validateState checks the JSON form of s against the snapshot schema.
func validateState(schemaPath string, s *world.GameState) error {
	sch, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	b, err := json.Marshal(world.Snapshot(s))
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return sch.Validate(v)
}
