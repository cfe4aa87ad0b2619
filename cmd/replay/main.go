package main

import (
	"flag"
	"fmt"
	"os"

	persistlog "github.com/braydio/custodian/internal/persistence/log"
	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/sim/world"
)

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst to start from (optional)")
		dataDir    = flag.String("data", "./data", "data dir containing commands/commands-*.jsonl.zst")
		seed       = flag.Int64("seed", 1337, "seed for a fresh start when -snapshot is empty")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		session    = flag.String("session", "", "only replay entries of this session (default: snapshot session)")
		schemaPath = flag.String("validate", "", "snapshot schema to validate the start and end state against (optional)")
	)
	flag.Parse()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}

	s, header, err := loadStart(*snapPath, *seed, tune)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load start state:", err)
		os.Exit(1)
	}
	s.StrictInvariants = true
	sessionID := *session
	if sessionID == "" {
		sessionID = header.SessionID
	}
	fmt.Printf("start session=%q tick=%d seq=%d seed=%d digest=%s\n", sessionID, s.Time, header.Seq, s.Seed, world.StateDigest(s))

	if *schemaPath != "" {
		if err := validateState(*schemaPath, s); err != nil {
			fmt.Fprintln(os.Stderr, "validate start:", err)
			os.Exit(1)
		}
	}

	entries, err := persistlog.ReadCommandLog(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read command log:", err)
		os.Exit(1)
	}
	res, err := replay(s, sessionID, header.Seq, entries)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}

	if *schemaPath != "" {
		if err := validateState(*schemaPath, s); err != nil {
			fmt.Fprintln(os.Stderr, "validate end:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("replay ok: checked=%d skipped=%d seq=%d tick=%d digest=%s\n", res.Checked, res.Skipped, res.LastSeq, res.LastTick, res.Digest)
}
