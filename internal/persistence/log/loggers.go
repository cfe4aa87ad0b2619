package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/braydio/custodian/internal/sim/session"
	"github.com/braydio/custodian/internal/sim/world"
)

// JSONLZstdWriter appends JSON lines to zstd files rotated by UTC hour.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// CommandLogger writes one entry per executed command.
type CommandLogger struct{ w *JSONLZstdWriter }

func NewCommandLogger(dataDir string) *CommandLogger {
	return &CommandLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "commands"), "commands")}
}

func (l *CommandLogger) WriteCommand(v session.CommandLogEntry) error { return l.w.Write(v) }
func (l *CommandLogger) Close() error                                { return l.w.Close() }

// LedgerLogger writes assault ledger rows as they are drained.
type LedgerLogger struct{ w *JSONLZstdWriter }

func NewLedgerLogger(dataDir string) *LedgerLogger {
	return &LedgerLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "ledger"), "ledger")}
}

func (l *LedgerLogger) WriteLedger(rows []world.AssaultTickRecord) error {
	for _, r := range rows {
		if err := l.w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
func (l *LedgerLogger) Close() error { return l.w.Close() }
