package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/sim/world"
)

const fileSuffix = ".snap.zst"

// Header is the JSON line at the top of every snapshot file. It can be read
// without decoding the body.
type Header struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	Tick      int    `json:"tick"`
	// Seq is the last command sequence applied before the snapshot.
	Seq int `json:"seq,omitempty"`
}

// File is the gob body of a current-version snapshot file.
type File struct {
	Header Header
	State  world.SnapshotV2
}

// Path returns the conventional location of the snapshot for tick.
func Path(dir string, tick int) string {
	return filepath.Join(dir, "snapshots", fmt.Sprintf("%d%s", tick, fileSuffix))
}

func WriteSnapshot(path string, file File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	file.Header.Version = world.SnapshotVersion
	file.Header.Tick = file.State.Time
	hb, _ := json.Marshal(file.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&file); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadSnapshot decodes a snapshot file. Current-version files carry a gob
// body; older files carry a JSON body that is upgraded through
// world.MigrateSnapshot.
func ReadSnapshot(path string, tune tuning.Tuning) (File, error) {
	var file File
	f, err := os.Open(path)
	if err != nil {
		return file, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return file, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return file, fmt.Errorf("snapshot header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return file, fmt.Errorf("snapshot header: %w", err)
	}

	if h.Version == world.SnapshotVersion {
		if err := gob.NewDecoder(br).Decode(&file); err != nil {
			return file, fmt.Errorf("gob decode: %w", err)
		}
		return file, nil
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return file, err
	}
	state, err := world.MigrateSnapshot(body, tune)
	if err != nil {
		return file, err
	}
	h.Version = world.SnapshotVersion
	h.Tick = state.Time
	return File{Header: h, State: state}, nil
}

// ReadHeader reads only the header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()
	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("snapshot header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("snapshot header: %w", err)
	}
	return h, nil
}

// Latest returns the path of the highest-tick snapshot under dir, or "" if
// there is none.
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, "snapshots"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var ticks []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		ticks = append(ticks, n)
	}
	if len(ticks) == 0 {
		return "", nil
	}
	sort.Ints(ticks)
	return Path(dir, ticks[len(ticks)-1]), nil
}
