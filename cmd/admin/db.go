package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	sector := fs.String("sector", "", "sector filter (ledger)")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "session.sqlite")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := queryIndex(os.Stdout, db, q, *limit, *sector); err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
}

// queryIndex prints one JSON object per row, newest first.
func queryIndex(w io.Writer, db *sql.DB, q string, limit int, sector string) error {
	if limit <= 0 {
		limit = 20
	}
	enc := json.NewEncoder(w)
	switch q {
	case "snapshots":
		rows, err := db.Query(`SELECT tick,path,session_id,seed,threat,materials,assaults,failed FROM snapshots ORDER BY tick DESC LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick      int64   `json:"tick"`
				Path      string  `json:"path"`
				SessionID string  `json:"session_id"`
				Seed      int64   `json:"seed"`
				Threat    float64 `json:"threat"`
				Materials int     `json:"materials"`
				Assaults  int     `json:"assaults"`
				Failed    bool    `json:"failed"`
			}
			if err := rows.Scan(&r.Tick, &r.Path, &r.SessionID, &r.Seed, &r.Threat, &r.Materials, &r.Assaults, &r.Failed); err != nil {
				return err
			}
			_ = enc.Encode(r)
		}
		return rows.Err()

	case "commands":
		rows, err := db.Query(`SELECT session_id,seq,tick,line,ok,digest FROM commands ORDER BY tick DESC, seq DESC LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				SessionID string `json:"session_id"`
				Seq       int    `json:"seq"`
				Tick      int    `json:"tick"`
				Line      string `json:"line"`
				OK        bool   `json:"ok"`
				Digest    string `json:"digest"`
			}
			if err := rows.Scan(&r.SessionID, &r.Seq, &r.Tick, &r.Line, &r.OK, &r.Digest); err != nil {
				return err
			}
			_ = enc.Encode(r)
		}
		return rows.Err()

	case "ledger":
		query := `SELECT seq,tick,sector,strength,mitigation,COALESCE(destroyed,''),failure FROM ledger`
		qargs := []any{}
		if sector != "" {
			query += ` WHERE sector=?`
			qargs = append(qargs, strings.ToUpper(sector))
		}
		query += ` ORDER BY seq DESC LIMIT ?`
		qargs = append(qargs, limit)
		rows, err := db.Query(query, qargs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Seq        int     `json:"seq"`
				Tick       int     `json:"tick"`
				Sector     string  `json:"sector"`
				Strength   float64 `json:"strength"`
				Mitigation float64 `json:"mitigation"`
				Destroyed  string  `json:"destroyed,omitempty"`
				Failure    bool    `json:"failure,omitempty"`
			}
			if err := rows.Scan(&r.Seq, &r.Tick, &r.Sector, &r.Strength, &r.Mitigation, &r.Destroyed, &r.Failure); err != nil {
				return err
			}
			_ = enc.Encode(r)
		}
		return rows.Err()

	case "meta":
		rows, err := db.Query(`SELECT key,value FROM meta ORDER BY key`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var k, v string
			if err := rows.Scan(&k, &v); err != nil {
				return err
			}
			_ = enc.Encode(map[string]string{"key": k, "value": v})
		}
		return rows.Err()

	default:
		return fmt.Errorf("unknown query %q (want snapshots|commands|ledger|meta)", q)
	}
}
