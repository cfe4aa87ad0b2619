package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/braydio/custodian/internal/persistence/indexdb"
)

// openIndex opens the read-model index. It returns nil when indexing is
// disabled; the session runs the same either way.
func openIndex(backend, dataDir string) (*indexdb.SQLiteIndex, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "sqlite":
		return indexdb.OpenSQLite(filepath.Join(dataDir, "index", "session.sqlite"))
	case "none", "off", "disabled":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", backend)
	}
}
