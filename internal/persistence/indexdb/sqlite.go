package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/braydio/custodian/internal/persistence/snapshot"
	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/session"
	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/sim/world"
)

const defaultQueueSize = 65536

// SQLiteIndex is a queryable read model of a session. The JSONL logs are the
// source of truth; rows are dropped (and counted) when the writer falls
// behind.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropCommand  atomic.Uint64
	dropLedger   atomic.Uint64
	dropSnapshot atomic.Uint64
	written      atomic.Uint64
}

type reqKind int

const (
	reqCommand reqKind = iota + 1
	reqLedger
	reqSnapshot
)

type req struct {
	kind reqKind

	command  session.CommandLogEntry
	ledger   []world.AssaultTickRecord
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick      int
	Path      string
	SessionID string
	Seed      int64
	Threat    float64
	Materials int
	Assaults  int
	Failed    bool
}

// Stats reports queue pressure for the writer goroutine.
type Stats struct {
	QueueDepth        int
	QueueCapacity     int
	RowsWritten       uint64
	DropCommandTotal  uint64
	DropLedgerTotal   uint64
	DropSnapshotTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, defaultQueueSize),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tuning (
			digest TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			line TEXT NOT NULL,
			ok INTEGER NOT NULL,
			digest TEXT NOT NULL,
			lines_json TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_tick ON commands(tick);`,
		`CREATE TABLE IF NOT EXISTS ledger (
			seq INTEGER PRIMARY KEY,
			tick INTEGER NOT NULL,
			sector TEXT NOT NULL,
			target_weight REAL NOT NULL,
			strength REAL NOT NULL,
			mitigation REAL NOT NULL,
			destroyed TEXT,
			failure INTEGER NOT NULL,
			note TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_sector_tick ON ledger(sector, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			session_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			threat REAL NOT NULL,
			materials INTEGER NOT NULL,
			assaults INTEGER NOT NULL,
			failed INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		RowsWritten:       s.written.Load(),
		DropCommandTotal:  s.dropCommand.Load(),
		DropLedgerTotal:   s.dropLedger.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

func (s *SQLiteIndex) WriteCommand(entry session.CommandLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqCommand, command: entry}:
	default:
		s.dropCommand.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) WriteLedger(rows []world.AssaultTickRecord) error {
	if s == nil || s.closed.Load() || len(rows) == 0 {
		return nil
	}
	select {
	case s.ch <- req{kind: reqLedger, ledger: append([]world.AssaultTickRecord(nil), rows...)}:
	default:
		s.dropLedger.Add(uint64(len(rows)))
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, file snapshot.File) {
	if s == nil || s.closed.Load() {
		return
	}
	st := file.State
	r := snapshotRow{
		Tick:      st.Time,
		Path:      path,
		SessionID: file.Header.SessionID,
		Seed:      st.Seed,
		Threat:    st.AmbientThreat,
		Materials: st.Materials,
		Assaults:  st.AssaultCount,
		Failed:    st.Failed,
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

// UpsertCatalogs stores the canonical catalog JSON and the tuning in effect,
// keyed by digest.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	digests := cats.Digests()
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)

	tb, _ := json.Marshal(tune)
	sum := sha256.Sum256(tb)
	tuneDigest := hex.EncodeToString(sum[:])

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('tuning_digest',?)`, tuneDigest); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO tuning(digest,json,updated_at) VALUES(?,?,?)`, tuneDigest, string(tb), now); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, name := range names {
		b := cats.JSON(name)
		if digests[name] == "" || len(b) == 0 {
			continue
		}
		if _, err := stmt.Exec(name, digests[name], string(b), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetMeta records a session-level key (session id, seed).
func (s *SQLiteIndex) SetMeta(key, value string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, key, value)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertCommand, _ := s.db.Prepare(`INSERT OR REPLACE INTO commands(session_id,seq,tick,line,ok,digest,lines_json) VALUES(?,?,?,?,?,?,?)`)
	insertLedger, _ := s.db.Prepare(`INSERT OR REPLACE INTO ledger(seq,tick,sector,target_weight,strength,mitigation,destroyed,failure,note) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,session_id,seed,threat,materials,assaults,failed) VALUES(?,?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertCommand, insertLedger, insertSnapshot} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		// Commit whenever the queue drains so readers see rows promptly.
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait || len(s.ch) == 0 {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqCommand:
			c := r.command
			if insertCommand == nil {
				break
			}
			lines, _ := json.Marshal(c.Lines)
			if _, err := tx.Stmt(insertCommand).Exec(c.Session, c.Seq, c.Time, c.Line, boolInt(c.OK), c.Digest, string(lines)); err != nil {
				rollback()
				continue
			}
			opCount++
			s.written.Add(1)

		case reqLedger:
			if insertLedger == nil {
				break
			}
			for _, row := range r.ledger {
				if _, err := tx.Stmt(insertLedger).Exec(
					row.Seq,
					row.Tick,
					row.TargetedSector,
					row.TargetWeight,
					row.AssaultStrength,
					row.DefenseMitigation,
					row.BuildingDestroyed,
					boolInt(row.FailureTriggered),
					row.Note,
				); err != nil {
					rollback()
					break
				}
				opCount++
				s.written.Add(1)
			}

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot == nil {
				break
			}
			if _, err := tx.Stmt(insertSnapshot).Exec(
				sn.Tick,
				sn.Path,
				sn.SessionID,
				sn.Seed,
				sn.Threat,
				sn.Materials,
				sn.Assaults,
				boolInt(sn.Failed),
			); err != nil {
				rollback()
				continue
			}
			opCount++
			s.written.Add(1)
		}
		flushIfNeeded()
	}

	commit()
}
