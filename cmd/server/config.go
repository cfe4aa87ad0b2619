package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// serverConfig is filled from flags first; CUSTODIAN_* variables that are
// set override the flag values.
type serverConfig struct {
	Addr          string `env:"CUSTODIAN_ADDR"`
	DataDir       string `env:"CUSTODIAN_DATA_DIR"`
	Seed          int64  `env:"CUSTODIAN_SEED"`
	TuningPath    string `env:"CUSTODIAN_TUNING"`
	SnapshotPath  string `env:"CUSTODIAN_SNAPSHOT"`
	LoadLatest    bool   `env:"CUSTODIAN_LOAD_LATEST_SNAPSHOT"`
	SnapshotEvery int    `env:"CUSTODIAN_SNAPSHOT_EVERY"`
	SessionID     string `env:"CUSTODIAN_SESSION_ID"`
	IndexBackend  string `env:"CUSTODIAN_INDEX_BACKEND"`

	EnableAdmin bool `env:"CUSTODIAN_ENABLE_ADMIN_HTTP"`
	EnablePprof bool `env:"CUSTODIAN_ENABLE_PPROF_HTTP"`
}

func applyEnv(cfg *serverConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if cfg.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot every must be >= 0, got %d", cfg.SnapshotEvery)
	}
	return nil
}
