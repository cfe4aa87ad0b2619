// Package session hosts one CUSTODIAN game on a single goroutine. Every
// command is serialized through Run, so the GameState has exactly one
// writer; persistence sinks are fed after each command and never see the
// state itself.
package session

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/braydio/custodian/internal/persistence/archive"
	"github.com/braydio/custodian/internal/persistence/snapshot"
	"github.com/braydio/custodian/internal/sim/command"
	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/sim/world"
)

var ErrClosed = errors.New("session closed")

// CommandLogEntry is one line of the command log. Digest is the state digest
// after the command, which is what replay verifies.
type CommandLogEntry struct {
	Seq     int      `json:"seq"`
	Session string   `json:"session"`
	Time    int      `json:"time"`
	Line    string   `json:"line"`
	OK      bool     `json:"ok"`
	Lines   []string `json:"lines"`
	Digest  string   `json:"digest"`
}

type CommandLog interface {
	WriteCommand(CommandLogEntry) error
}

type LedgerSink interface {
	WriteLedger([]world.AssaultTickRecord) error
}

// Index is the read-model sink. It is a CommandLog and LedgerSink that also
// records written snapshots.
type Index interface {
	CommandLog
	LedgerSink
	RecordSnapshot(path string, file snapshot.File)
}

type Config struct {
	ID     string
	Seed   int64
	Tuning tuning.Tuning

	// Restore starts the session from a snapshot instead of Seed.
	Restore *snapshot.File

	// DataDir receives snapshots every SnapshotEvery commands (0 disables).
	DataDir       string
	SnapshotEvery int

	CommandLog CommandLog
	Ledger     LedgerSink
	Index      Index
	Logger     *log.Logger

	StrictInvariants bool
}

// Response is what a caller gets back for one command.
type Response struct {
	Seq    int
	Result command.Result
	Tick   int
	Digest string
}

// Info describes the session for handshakes.
type Info struct {
	ID     string
	Seed   int64
	Tick   int
	Seq    int
	Failed bool
}

type execReq struct {
	line string
	resp chan Response
}

type snapReq struct {
	resp chan snapResp
}

type snapResp struct {
	path string
	err  error
}

type Runner struct {
	cfg    Config
	logger *log.Logger

	state *world.GameState
	proc  *command.Processor

	seq          int
	ledgerCursor int

	exec chan execReq
	info chan chan Info
	snap chan snapReq
	done chan struct{}
}

func New(cfg Config) (*Runner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		proc:   command.NewProcessor(),
		exec:   make(chan execReq),
		info:   make(chan chan Info),
		snap:   make(chan snapReq),
		done:   make(chan struct{}),
	}
	if cfg.Restore != nil {
		s, err := world.FromSnapshot(cfg.Restore.State, cfg.Tuning)
		if err != nil {
			return nil, err
		}
		r.state = s
		r.seq = cfg.Restore.Header.Seq
		r.ledgerCursor = s.Ledger.NextSeq - 1
	} else {
		r.state = world.New(cfg.Seed, cfg.Tuning)
	}
	r.state.StrictInvariants = cfg.StrictInvariants
	return r, nil
}

// Run serves requests until ctx is cancelled. It is the only goroutine that
// touches the GameState.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-r.exec:
			req.resp <- r.handle(req.line)
		case resp := <-r.info:
			resp <- r.snapshotInfo()
		case req := <-r.snap:
			path, _, err := r.writeSnapshot()
			req.resp <- snapResp{path: path, err: err}
		}
	}
}

// Execute runs one command line on the session goroutine.
func (r *Runner) Execute(ctx context.Context, line string) (Response, error) {
	req := execReq{line: line, resp: make(chan Response, 1)}
	select {
	case r.exec <- req:
	case <-r.done:
		return Response{}, ErrClosed
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
	select {
	case resp := <-req.resp:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func (r *Runner) Info(ctx context.Context) (Info, error) {
	resp := make(chan Info, 1)
	select {
	case r.info <- resp:
	case <-r.done:
		return Info{}, ErrClosed
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
	select {
	case info := <-resp:
		return info, nil
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
}

// RequestSnapshot writes a snapshot now and returns its path.
func (r *Runner) RequestSnapshot(ctx context.Context) (string, error) {
	req := snapReq{resp: make(chan snapResp, 1)}
	select {
	case r.snap <- req:
	case <-r.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case resp := <-req.resp:
		return resp.path, resp.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Runner) snapshotInfo() Info {
	return Info{
		ID:     r.cfg.ID,
		Seed:   r.state.Seed,
		Tick:   r.state.Time,
		Seq:    r.seq,
		Failed: r.state.Failed,
	}
}

func (r *Runner) handle(line string) Response {
	wasFailed := r.state.Failed
	res := r.proc.Execute(r.state, line)
	r.seq++
	digest := world.StateDigest(r.state)
	entry := CommandLogEntry{
		Seq:     r.seq,
		Session: r.cfg.ID,
		Time:    r.state.Time,
		Line:    line,
		OK:      res.OK,
		Lines:   res.Lines,
		Digest:  digest,
	}
	if r.cfg.CommandLog != nil {
		if err := r.cfg.CommandLog.WriteCommand(entry); err != nil {
			r.logger.Printf("command log: %v", err)
		}
	}
	if r.cfg.Index != nil {
		_ = r.cfg.Index.WriteCommand(entry)
	}
	r.drainLedger()

	switch {
	case !wasFailed && r.state.Failed && r.cfg.DataDir != "":
		r.archiveFailure()
	case r.cfg.SnapshotEvery > 0 && r.seq%r.cfg.SnapshotEvery == 0:
		if _, _, err := r.writeSnapshot(); err != nil {
			r.logger.Printf("snapshot: %v", err)
		}
	}
	return Response{Seq: r.seq, Result: res, Tick: r.state.Time, Digest: digest}
}

func (r *Runner) drainLedger() {
	// A reset restarts the ledger sequence.
	if r.state.Ledger.NextSeq-1 < r.ledgerCursor {
		r.ledgerCursor = 0
	}
	rows, cursor := world.DrainLedger(r.state, r.ledgerCursor)
	r.ledgerCursor = cursor
	if len(rows) == 0 {
		return
	}
	if r.cfg.Ledger != nil {
		if err := r.cfg.Ledger.WriteLedger(rows); err != nil {
			r.logger.Printf("ledger log: %v", err)
		}
	}
	if r.cfg.Index != nil {
		_ = r.cfg.Index.WriteLedger(rows)
	}
}

// archiveFailure snapshots the failed state and keeps a copy under archives/
// so the run survives a later RESET.
func (r *Runner) archiveFailure() {
	path, file, err := r.writeSnapshot()
	if err != nil {
		r.logger.Printf("failure snapshot: %v", err)
		return
	}
	dst, _, err := archive.ArchiveFailedRun(r.cfg.DataDir, path, file)
	if err != nil {
		r.logger.Printf("archive run: %v", err)
		return
	}
	r.logger.Printf("session failed at tick=%d (%s); archived %s", r.state.Time, r.state.FailureReason, dst)
}

func (r *Runner) writeSnapshot() (string, snapshot.File, error) {
	if r.cfg.DataDir == "" {
		return "", snapshot.File{}, errors.New("snapshots disabled")
	}
	file := snapshot.File{
		Header: snapshot.Header{Version: world.SnapshotVersion, SessionID: r.cfg.ID, Tick: r.state.Time, Seq: r.seq},
		State:  world.Snapshot(r.state),
	}
	path := snapshot.Path(r.cfg.DataDir, r.state.Time)
	if err := snapshot.WriteSnapshot(path, file); err != nil {
		return "", file, err
	}
	if r.cfg.Index != nil {
		r.cfg.Index.RecordSnapshot(path, file)
	}
	r.logger.Printf("snapshot tick=%d seq=%d path=%s", r.state.Time, r.seq, path)
	return path, file, nil
}
