package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	persistlog "github.com/braydio/custodian/internal/persistence/log"
	"github.com/braydio/custodian/internal/persistence/snapshot"
	"github.com/braydio/custodian/internal/sim/catalogs"
	"github.com/braydio/custodian/internal/sim/session"
	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/transport/observer"
	"github.com/braydio/custodian/internal/transport/ws"
)

func main() {
	var cfg serverConfig
	flag.StringVar(&cfg.Addr, "addr", ":8080", "http listen address")
	flag.StringVar(&cfg.DataDir, "data", "./data", "runtime data directory")
	flag.Int64Var(&cfg.Seed, "seed", 1337, "session seed (used only when starting fresh)")
	flag.StringVar(&cfg.TuningPath, "tuning", "./configs/tuning.yaml", "path to tuning.yaml")
	flag.StringVar(&cfg.SnapshotPath, "snapshot", "", "path to snapshot to load (optional)")
	flag.BoolVar(&cfg.LoadLatest, "load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	flag.IntVar(&cfg.SnapshotEvery, "snapshot_every", 50, "write a snapshot every N commands (0 disables)")
	flag.StringVar(&cfg.SessionID, "session", "", "session id (default: from snapshot, else a new uuid)")
	flag.StringVar(&cfg.IndexBackend, "index", "sqlite", "index backend: sqlite|none")
	flag.BoolVar(&cfg.EnableAdmin, "admin", true, "enable loopback-only admin and observer endpoints")
	flag.BoolVar(&cfg.EnablePprof, "pprof", false, "enable /debug/pprof endpoints")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	if err := applyEnv(&cfg); err != nil {
		logger.Fatalf("config: %v", err)
	}

	tune, err := tuning.Load(cfg.TuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", cfg.TuningPath)
		tune = tuning.Defaults()
	}

	snapshotToLoad := strings.TrimSpace(cfg.SnapshotPath)
	if snapshotToLoad == "" && cfg.LoadLatest {
		snapshotToLoad, err = snapshot.Latest(cfg.DataDir)
		if err != nil {
			logger.Fatalf("find latest snapshot: %v", err)
		}
	}
	var restore *snapshot.File
	if snapshotToLoad != "" {
		file, err := snapshot.ReadSnapshot(snapshotToLoad, tune)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		restore = &file
		logger.Printf("resuming from snapshot=%s tick=%d seq=%d", filepath.Base(snapshotToLoad), file.Header.Tick, file.Header.Seq)
	}

	sessionID := cfg.SessionID
	if sessionID == "" && restore != nil {
		sessionID = restore.Header.SessionID
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	idx, err := openIndex(cfg.IndexBackend, cfg.DataDir)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	var index session.Index
	if idx != nil {
		defer idx.Close()
		index = idx
		if err := idx.UpsertCatalogs(catalogs.Default(), tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		seed := cfg.Seed
		if restore != nil {
			seed = restore.State.Seed
		}
		_ = idx.SetMeta("session_id", sessionID)
		_ = idx.SetMeta("seed", strconv.FormatInt(seed, 10))
	}

	commandLog := persistlog.NewCommandLogger(cfg.DataDir)
	ledgerLog := persistlog.NewLedgerLogger(cfg.DataDir)
	defer commandLog.Close()
	defer ledgerLog.Close()

	var obs *observer.Server
	var feed session.CommandLog
	if cfg.EnableAdmin {
		obs = observer.NewServer(logger)
		feed = obs
	}

	runner, err := session.New(session.Config{
		ID:            sessionID,
		Seed:          cfg.Seed,
		Tuning:        tune,
		Restore:       restore,
		DataDir:       cfg.DataDir,
		SnapshotEvery: cfg.SnapshotEvery,
		CommandLog:    session.MultiLog(commandLog, feed),
		Ledger:        ledgerLog,
		Index:         index,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatalf("session: %v", err)
	}

	// The runner outlives the HTTP server so a final snapshot can be taken.
	runCtx, stopRunner := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := runner.Run(runCtx); err != nil && err != context.Canceled {
			logger.Printf("session stopped: %v", err)
		}
	}()

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		info, err := runner.Info(r.Context())
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, info, idx, obs)
	})
	if cfg.EnableAdmin {
		mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			path, err := runner.RequestSnapshot(ctx2)
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "path": path})
		})
		mux.HandleFunc("/admin/v1/observer/bootstrap", obs.BootstrapHandler(runner))
		mux.HandleFunc("/admin/v1/observer/ws", obs.WSHandler())
	} else {
		logger.Printf("admin endpoints disabled")
	}
	if cfg.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(runner, logger).Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("session=%s listening on %s", sessionID, cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	ctx3, cancel3 := context.WithTimeout(context.Background(), 5*time.Second)
	if path, err := runner.RequestSnapshot(ctx3); err != nil {
		logger.Printf("final snapshot: %v", err)
	} else {
		logger.Printf("final snapshot %s", path)
	}
	cancel3()
	stopRunner()
	<-runDone
}
