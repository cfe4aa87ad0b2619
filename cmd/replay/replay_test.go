package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	persistlog "github.com/braydio/custodian/internal/persistence/log"
	"github.com/braydio/custodian/internal/persistence/snapshot"
	"github.com/braydio/custodian/internal/sim/session"
	"github.com/braydio/custodian/internal/sim/tuning"
)

var script = []string{
	"STATUS",
	"WAIT 6",
	"SET DEFENSE 3",
	"FAB ADD TURRET AMMO",
	"WAIT 10",
	"DEPLOY COMMS",
	"WAIT 4",
	"RETURN",
	"WAIT 20",
	"FLY",
	"WAIT 15",
}

// record runs script through a session that writes the real command log and
// a snapshot every 4 commands.
func record(t *testing.T, dir string) []session.Response {
	t.Helper()
	cl := persistlog.NewCommandLogger(dir)
	r, err := session.New(session.Config{
		ID:            "rec",
		Seed:          21,
		Tuning:        tuning.Defaults(),
		DataDir:       dir,
		SnapshotEvery: 4,
		CommandLog:    cl,
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	var out []session.Response
	for _, line := range script {
		resp, err := r.Execute(context.Background(), line)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		out = append(out, resp)
	}
	cancel()
	<-done
	if err := cl.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}
	return out
}

func TestReplay_FromSeed(t *testing.T) {
	dir := t.TempDir()
	resps := record(t, dir)

	entries, err := persistlog.ReadCommandLog(dir)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s, _, err := loadStart("", 21, tuning.Defaults())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := replay(s, "rec", 0, entries)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	last := resps[len(resps)-1]
	if res.Checked != len(script) || res.Digest != last.Digest || res.LastTick != last.Tick {
		t.Fatalf("res=%+v last=%+v", res, last)
	}
}

func TestReplay_FromSnapshotSkipsApplied(t *testing.T) {
	dir := t.TempDir()
	resps := record(t, dir)

	path, err := snapshot.Latest(dir)
	if err != nil || path == "" {
		t.Fatalf("latest: %q %v", path, err)
	}
	s, header, err := loadStart(path, 0, tuning.Defaults())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if header.Seq != 8 {
		t.Fatalf("header seq=%d want=8", header.Seq)
	}
	entries, _ := persistlog.ReadCommandLog(dir)
	res, err := replay(s, header.SessionID, header.Seq, entries)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Skipped != 8 || res.Checked != len(script)-8 || res.Digest != resps[len(resps)-1].Digest {
		t.Fatalf("res=%+v", res)
	}
}

func TestReplay_DetectsTampering(t *testing.T) {
	dir := t.TempDir()
	record(t, dir)
	entries, _ := persistlog.ReadCommandLog(dir)
	entries[3].Line = "SET DEFENSE 4"

	s, _, _ := loadStart("", 21, tuning.Defaults())
	_, err := replay(s, "", 0, entries)
	if err == nil || !strings.Contains(err.Error(), "seq 4") {
		t.Fatalf("err=%v want mismatch", err)
	}
}

func TestReplay_SeqGap(t *testing.T) {
	dir := t.TempDir()
	record(t, dir)
	entries, _ := persistlog.ReadCommandLog(dir)
	entries = append(entries[:2], entries[3:]...)

	s, _, _ := loadStart("", 21, tuning.Defaults())
	if _, err := replay(s, "", 0, entries); err == nil || !strings.Contains(err.Error(), "seq gap") {
		t.Fatalf("err=%v want seq gap", err)
	}
}

func TestValidateState(t *testing.T) {
	s, _, _ := loadStart("", 4, tuning.Defaults())
	if err := validateState(filepath.Join("..", "..", "schemas", "snapshot.schema.json"), s); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
