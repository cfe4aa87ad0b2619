package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/braydio/custodian/internal/persistence/snapshot"
	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/sim/world"
)

func main() {
	var (
		seed       = flag.Int64("seed", 1337, "session seed")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		snapPath   = flag.String("snapshot", "", "start from this snapshot instead of -seed")
		saveDir    = flag.String("save", "", "write a snapshot here when input ends (optional)")
		digest     = flag.Bool("digest", false, "print the state digest after every command")
		strict     = flag.Bool("strict", false, "panic on invariant violations")
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

	var s *world.GameState
	if *snapPath != "" {
		file, err := snapshot.ReadSnapshot(*snapPath, tune)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		if s, err = world.FromSnapshot(file.State, tune); err != nil {
			fmt.Fprintln(os.Stderr, "restore:", err)
			os.Exit(1)
		}
	} else {
		s = world.New(*seed, tune)
	}
	s.StrictInvariants = *strict

	d := &driver{state: s, out: os.Stdout, digest: *digest, prompt: isTerminal(os.Stdin)}
	if err := d.run(os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "input:", err)
		os.Exit(1)
	}

	if *saveDir != "" {
		path := snapshot.Path(*saveDir, s.Time)
		file := snapshot.File{Header: snapshot.Header{SessionID: "sim", Seq: d.seq}, State: world.Snapshot(s)}
		if err := snapshot.WriteSnapshot(path, file); err != nil {
			fmt.Fprintln(os.Stderr, "save:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "saved", path)
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
