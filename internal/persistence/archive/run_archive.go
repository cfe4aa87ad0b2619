package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/braydio/custodian/internal/persistence/snapshot"
)

type RunArchiveMeta struct {
	SessionID     string  `json:"session_id"`
	Seq           int     `json:"seq"`
	EndTick       int     `json:"end_tick"`
	Seed          int64   `json:"seed"`
	FailureReason string  `json:"failure_reason"`
	AmbientThreat float64 `json:"ambient_threat"`
	Assaults      int     `json:"assault_count"`
	ArchiveLosses int     `json:"archive_losses"`
	Snapshot      string  `json:"snapshot"`
	CreatedAt     string  `json:"created_at"`
}

// ArchiveFailedRun copies the snapshot of a failed session into
// `dataDir/archives/<session>_t<tick>/` next to a meta.json. Snapshots of
// sessions that have not failed are left alone (archived=false).
func ArchiveFailedRun(dataDir, snapshotPath string, file snapshot.File) (archivedPath string, archived bool, err error) {
	st := file.State
	if !st.Failed {
		return "", false, nil
	}
	session := file.Header.SessionID
	if session == "" {
		session = "session"
	}
	archiveDir := filepath.Join(dataDir, "archives", fmt.Sprintf("%s_t%06d", session, st.Time))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", false, err
	}

	meta := RunArchiveMeta{
		SessionID:     file.Header.SessionID,
		Seq:           file.Header.Seq,
		EndTick:       st.Time,
		Seed:          st.Seed,
		FailureReason: st.FailureReason,
		AmbientThreat: st.AmbientThreat,
		Assaults:      st.AssaultCount,
		ArchiveLosses: st.ArchiveLosses,
		Snapshot:      filepath.Base(dst),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return dst, true, err
	}
	if err := os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644); err != nil {
		return dst, true, err
	}
	return dst, true, nil
}

// ReadMeta loads the meta.json of an archived run.
func ReadMeta(archiveDir string) (RunArchiveMeta, error) {
	var m RunArchiveMeta
	b, err := os.ReadFile(filepath.Join(archiveDir, "meta.json"))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
