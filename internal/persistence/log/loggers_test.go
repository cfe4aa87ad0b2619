package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/braydio/custodian/internal/sim/session"
	"github.com/braydio/custodian/internal/sim/world"
)

func TestCommandLogger_ReadBack(t *testing.T) {
	dir := t.TempDir()
	l := NewCommandLogger(dir)
	for i, line := range []string{"STATUS", "WAIT 3", "FLY"} {
		e := session.CommandLogEntry{Seq: i + 1, Session: "s", Time: i, Line: line, OK: line != "FLY", Lines: []string{"x"}, Digest: "d"}
		if err := l.WriteCommand(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A second logger on the same dir appends a new zstd frame.
	l2 := NewCommandLogger(dir)
	if err := l2.WriteCommand(session.CommandLogEntry{Seq: 4, Line: "WAIT"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = l2.Close()

	got, err := ReadCommandLog(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("entries=%d want=4", len(got))
	}
	for i, e := range got {
		if e.Seq != i+1 {
			t.Fatalf("entry %d seq=%d", i, e.Seq)
		}
	}
	if got[2].Line != "FLY" || got[2].OK {
		t.Fatalf("entry=%+v", got[2])
	}
}

func TestLedgerLogger_ScanJSONL(t *testing.T) {
	dir := t.TempDir()
	l := NewLedgerLogger(dir)
	rows := []world.AssaultTickRecord{
		{Seq: 1, Tick: 40, TargetedSector: "POWER", AssaultStrength: 2.5},
		{Seq: 2, Tick: 41, TargetedSector: "COMMAND", FailureTriggered: true},
	}
	if err := l.WriteLedger(rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = l.Close()

	files, err := ListFiles(filepath.Join(dir, "ledger"), "ledger")
	if err != nil || len(files) != 1 {
		t.Fatalf("files=%v err=%v", files, err)
	}
	var got []world.AssaultTickRecord
	err = ScanJSONL(files[0], func(line []byte) error {
		var r world.AssaultTickRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 || got[1].TargetedSector != "COMMAND" || !got[1].FailureTriggered {
		t.Fatalf("rows=%+v", got)
	}
}

func TestListFiles_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"commands-2026-01-02-03.jsonl.zst", "commands-2026-01-01-23.jsonl.zst", "ledger-2026-01-01-00.jsonl.zst", "commands.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	files, err := ListFiles(dir, "commands")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "commands-2026-01-01-23.jsonl.zst" {
		t.Fatalf("files=%v", files)
	}
}
