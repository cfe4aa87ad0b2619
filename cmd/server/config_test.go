package main

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/braydio/custodian/internal/sim/session"
	"github.com/braydio/custodian/internal/transport/observer"
)

func TestApplyEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Setenv("CUSTODIAN_SEED", "42")
	t.Setenv("CUSTODIAN_INDEX_BACKEND", "none")
	t.Setenv("CUSTODIAN_ENABLE_PPROF_HTTP", "true")

	cfg := serverConfig{Addr: ":9000", Seed: 1337, IndexBackend: "sqlite", SnapshotEvery: 50}
	if err := applyEnv(&cfg); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.SnapshotEvery != 50 {
		t.Fatalf("flag values lost: %+v", cfg)
	}
	if cfg.Seed != 42 || cfg.IndexBackend != "none" || !cfg.EnablePprof {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestApplyEnv_Errors(t *testing.T) {
	t.Setenv("CUSTODIAN_SEED", "not-a-number")
	if err := applyEnv(&serverConfig{}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnv_RejectsNegativeSnapshotEvery(t *testing.T) {
	t.Setenv("CUSTODIAN_SNAPSHOT_EVERY", "-1")
	if err := applyEnv(&serverConfig{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenIndex(t *testing.T) {
	idx, err := openIndex("none", t.TempDir())
	if err != nil || idx != nil {
		t.Fatalf("none: idx=%v err=%v", idx, err)
	}
	if _, err := openIndex("d1", t.TempDir()); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
	idx, err = openIndex("sqlite", t.TempDir())
	if err != nil || idx == nil {
		t.Fatalf("sqlite: err=%v", err)
	}
	_ = idx.Close()
}

func TestIsLoopbackRemote(t *testing.T) {
	if !isLoopbackRemote("127.0.0.1:1") || isLoopbackRemote("192.168.1.2:1") {
		t.Fatalf("loopback detection wrong")
	}
}

func TestWriteMetrics(t *testing.T) {
	var b strings.Builder
	writeMetrics(&b, session.Info{ID: "s", Tick: 12, Seq: 4, Failed: true}, nil, observer.NewServer(log.New(io.Discard, "", 0)))
	out := b.String()
	for _, want := range []string{
		`custodian_session_tick{session="s"} 12`,
		`custodian_session_commands_total{session="s"} 4`,
		`custodian_session_failed{session="s"} 1`,
		`custodian_observer_dropped_total 0`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "custodian_index_") {
		t.Fatalf("index metrics without an index")
	}
}
