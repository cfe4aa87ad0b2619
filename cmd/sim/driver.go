package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/braydio/custodian/internal/sim/command"
	"github.com/braydio/custodian/internal/sim/world"
)

type driver struct {
	state  *world.GameState
	proc   *command.Processor
	out    io.Writer
	digest bool
	prompt bool

	seq int
}

// run executes one command per input line until EOF or QUIT. Blank lines
// and lines starting with # are skipped.
func (d *driver) run(in io.Reader) error {
	if d.proc == nil {
		d.proc = command.NewProcessor()
	}
	sc := bufio.NewScanner(in)
	for {
		if d.prompt {
			fmt.Fprint(d.out, "> ")
		}
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.EqualFold(line, "QUIT") || strings.EqualFold(line, "EXIT") {
			return nil
		}
		res := d.proc.Execute(d.state, line)
		d.seq++
		for _, l := range res.Lines {
			fmt.Fprintln(d.out, l)
		}
		if d.digest {
			fmt.Fprintf(d.out, "# seq=%d time=%d digest=%s\n", d.seq, d.state.Time, world.StateDigest(d.state))
		}
	}
}
