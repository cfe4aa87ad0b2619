// Package command turns operator input lines into world mutations and
// report lines. It holds no simulation logic: every verb delegates to the
// world package.
package command

import (
	"strings"

	"github.com/braydio/custodian/internal/sim/world"
)

// Result is the outcome of one command. OK is false for refusals and parse
// errors; those never mutate the state.
type Result struct {
	Lines []string `json:"lines"`
	OK    bool     `json:"ok"`

	// query marks an accepted result that only reported state.
	query bool
}

func ok(lines ...string) Result    { return Result{Lines: lines, OK: true} }
func query(lines ...string) Result { return Result{Lines: lines, OK: true, query: true} }
func fail(lines ...string) Result  { return Result{Lines: lines} }

func from(line string, accepted bool) Result { return Result{Lines: []string{line}, OK: accepted} }

var unknownCommand = fail("UNKNOWN COMMAND.", "TYPE HELP FOR AVAILABLE COMMANDS.")

type handler func(p *Processor, s *world.GameState, args []string) Result

type verbHandler struct {
	run handler
	// readOnly verbs are never written to the operator log.
	readOnly bool
	// authority verbs need COMMAND mode.
	authority bool
}

var dispatch map[string]verbHandler

func init() {
	dispatch = map[string]verbHandler{
		"STATUS":    {run: handleStatus, readOnly: true},
		"HELP":      {run: handleHelp, readOnly: true},
		"WAIT":      {run: handleWait},
		"REPAIR":    {run: handleRepair},
		"FOCUS":     {run: handleFocus, authority: true},
		"HARDEN":    {run: handleHarden, authority: true},
		"DEPLOY":    {run: handleDeploy},
		"MOVE":      {run: handleMove},
		"RETURN":    {run: handleReturn},
		"SCAVENGE":  {run: handleScavenge},
		"SET":       {run: handleSet, authority: true},
		"FORTIFY":   {run: handleFortify, authority: true},
		"CONFIG":    {run: handleConfig, authority: true},
		"ALLOCATE":  {run: handleAllocate, authority: true},
		"FAB":       {run: handleFab, authority: true},
		"STABILIZE": {run: handleStabilize},
		"SYNC":      {run: handleSync, authority: true},
		"SCAN":      {run: handleScan, readOnly: true},
	}
}

// Processor executes command lines against a state. It remembers the last
// sector labels it reported so STATUS can mark changes; that memory is
// presentation only and never feeds the simulation.
type Processor struct {
	lastStatus map[string]string
}

func NewProcessor() *Processor {
	return &Processor{lastStatus: map[string]string{}}
}

// Execute parses and runs one line. RESET and REBOOT are always accepted;
// every other verb is refused while the session is failed.
func (p *Processor) Execute(s *world.GameState, line string) Result {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return unknownCommand
	}
	verb, args := fields[0], fields[1:]

	if verb == "RESET" || verb == "REBOOT" {
		world.Reset(s)
		p.lastStatus = map[string]string{}
		res := ok("SYSTEM REBOOTED.", "SESSION READY.")
		s.AppendOperatorLog(verb, res.Lines[0])
		return res
	}
	if s.Failed {
		return fail(failureReason(s), "REBOOT REQUIRED. ONLY RESET OR REBOOT ACCEPTED.")
	}
	h, found := dispatch[verb]
	if !found {
		return unknownCommand
	}
	if h.authority && !s.InCommandMode() {
		return fail("COMMAND AUTHORITY REQUIRED.")
	}
	res := h.run(p, s, args)
	if res.OK && !h.readOnly && !res.query && len(res.Lines) > 0 {
		s.AppendOperatorLog(verb, res.Lines[0])
	}
	return res
}

// Verbs lists the accepted verbs, sorted.
func Verbs() []string {
	out := make([]string, 0, len(dispatch)+2)
	for v := range dispatch {
		out = append(out, v)
	}
	out = append(out, "RESET", "REBOOT")
	sortStrings(out)
	return out
}

func failureReason(s *world.GameState) string {
	if s.FailureReason == "" {
		return "SESSION FAILED."
	}
	return s.FailureReason
}
