package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/braydio/custodian/internal/persistence/snapshot"
	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

// listCmd prints the header of every snapshot in the data dir, oldest first.
func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	if err := listSnapshots(os.Stdout, *dataDir); err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
}

func listSnapshots(w io.Writer, dataDir string) error {
	dir := filepath.Join(dataDir, "snapshots")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var ticks []int
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), ".snap.zst")
		if !ok || e.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(base); err == nil {
			ticks = append(ticks, n)
		}
	}
	sort.Ints(ticks)
	for _, tick := range ticks {
		path := snapshot.Path(dataDir, tick)
		h, err := snapshot.ReadHeader(path)
		if err != nil {
			fmt.Fprintf(w, "%s\tERROR %v\n", filepath.Base(path), err)
			continue
		}
		fmt.Fprintf(w, "%s\tv%d\tsession=%s\ttick=%d\tseq=%d\n", filepath.Base(path), h.Version, h.SessionID, h.Tick, h.Seq)
	}
	return nil
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*snapPath)
	if path == "" {
		var err error
		if path, err = snapshot.Latest(*dataDir); err != nil || path == "" {
			fmt.Fprintln(os.Stderr, "no snapshot found; provide -snapshot or run the server until it writes one")
			os.Exit(2)
		}
	}
	if err := inspectSnapshot(os.Stdout, path); err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(1)
	}
}

type snapshotSummary struct {
	Path      string  `json:"path"`
	SessionID string  `json:"session_id"`
	Seq       int     `json:"seq"`
	Tick      int     `json:"tick"`
	Seed      int64   `json:"seed"`
	Threat    float64 `json:"ambient_threat"`
	Materials int     `json:"materials"`
	Assaults  int     `json:"assault_count"`
	Failed    bool    `json:"failed"`
	Reason    string  `json:"failure_reason,omitempty"`
	Digest    string  `json:"digest"`
}

// inspectSnapshot restores the snapshot, so a file that decodes but fails
// invariants is reported as an error.
func inspectSnapshot(w io.Writer, path string) error {
	tune := tuning.Defaults()
	file, err := snapshot.ReadSnapshot(path, tune)
	if err != nil {
		return err
	}
	s, err := world.FromSnapshot(file.State, tune)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshotSummary{
		Path:      path,
		SessionID: file.Header.SessionID,
		Seq:       file.Header.Seq,
		Tick:      s.Time,
		Seed:      s.Seed,
		Threat:    s.AmbientThreat,
		Materials: s.Materials,
		Assaults:  file.State.AssaultCount,
		Failed:    s.Failed,
		Reason:    s.FailureReason,
		Digest:    world.StateDigest(s),
	})
}
