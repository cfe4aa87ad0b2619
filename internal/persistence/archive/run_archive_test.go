package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/braydio/custodian/internal/persistence/snapshot"
	"github.com/braydio/custodian/internal/sim/world"
)

func writeDummy(t *testing.T, dir string, tick int) string {
	t.Helper()
	src := snapshot.Path(dir, tick)
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatalf("mkdir snapshots: %v", err)
	}
	if err := os.WriteFile(src, []byte("dummy"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	return src
}

func TestArchiveFailedRun_CopiesSnapshotAndMeta(t *testing.T) {
	dir := t.TempDir()
	src := writeDummy(t, dir, 212)
	file := snapshot.File{
		Header: snapshot.Header{SessionID: "s1", Seq: 40, Tick: 212},
		State:  world.SnapshotV2{Seed: 42, Time: 212, Failed: true, FailureReason: "COMMAND CENTER LOST", AssaultCount: 5},
	}

	archivedPath, ok, err := ArchiveFailedRun(dir, src, file)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !ok {
		t.Fatalf("expected archived=true")
	}
	if want := filepath.Join(dir, "archives", "s1_t000212", "212.snap.zst"); archivedPath != want {
		t.Fatalf("path=%s want=%s", archivedPath, want)
	}
	got, err := os.ReadFile(archivedPath)
	if err != nil {
		t.Fatalf("read archived: %v", err)
	}
	if string(got) != "dummy" {
		t.Fatalf("archived content=%q", got)
	}

	meta, err := ReadMeta(filepath.Dir(archivedPath))
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.SessionID != "s1" || meta.Seq != 40 || meta.EndTick != 212 || meta.Seed != 42 || meta.FailureReason != "COMMAND CENTER LOST" || meta.Assaults != 5 {
		t.Fatalf("meta=%+v", meta)
	}
}

func TestArchiveFailedRun_SkipsLiveSession(t *testing.T) {
	dir := t.TempDir()
	src := writeDummy(t, dir, 10)
	_, ok, err := ArchiveFailedRun(dir, src, snapshot.File{State: world.SnapshotV2{Time: 10}})
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v want skipped", ok, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "archives")); !os.IsNotExist(err) {
		t.Fatalf("archives dir created for a live session")
	}
}
