package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/braydio/custodian/internal/persistence/indexdb"
	"github.com/braydio/custodian/internal/sim/session"
	"github.com/braydio/custodian/internal/transport/observer"
)

// writeMetrics renders a minimal Prometheus exposition of the session and
// its sinks. idx and obs may be nil.
func writeMetrics(w io.Writer, info session.Info, idx *indexdb.SQLiteIndex, obs *observer.Server) {
	failed := 0
	if info.Failed {
		failed = 1
	}
	fmt.Fprintf(w, "# HELP custodian_session_tick Current session time.\n")
	fmt.Fprintf(w, "# TYPE custodian_session_tick gauge\n")
	fmt.Fprintf(w, "custodian_session_tick{session=%q} %d\n", info.ID, info.Tick)

	fmt.Fprintf(w, "# HELP custodian_session_commands_total Commands executed by the session.\n")
	fmt.Fprintf(w, "# TYPE custodian_session_commands_total counter\n")
	fmt.Fprintf(w, "custodian_session_commands_total{session=%q} %d\n", info.ID, info.Seq)

	fmt.Fprintf(w, "# HELP custodian_session_failed 1 while the session awaits RESET or REBOOT.\n")
	fmt.Fprintf(w, "# TYPE custodian_session_failed gauge\n")
	fmt.Fprintf(w, "custodian_session_failed{session=%q} %d\n", info.ID, failed)

	if idx != nil {
		st := idx.Stats()
		fmt.Fprintf(w, "# HELP custodian_index_queue_depth Index writer backlog.\n")
		fmt.Fprintf(w, "# TYPE custodian_index_queue_depth gauge\n")
		fmt.Fprintf(w, "custodian_index_queue_depth %d\n", st.QueueDepth)
		fmt.Fprintf(w, "custodian_index_queue_capacity %d\n", st.QueueCapacity)

		fmt.Fprintf(w, "# HELP custodian_index_rows_written_total Rows committed to the index.\n")
		fmt.Fprintf(w, "# TYPE custodian_index_rows_written_total counter\n")
		fmt.Fprintf(w, "custodian_index_rows_written_total %d\n", st.RowsWritten)

		fmt.Fprintf(w, "# HELP custodian_index_dropped_total Rows dropped because the index queue was full.\n")
		fmt.Fprintf(w, "# TYPE custodian_index_dropped_total counter\n")
		fmt.Fprintf(w, "custodian_index_dropped_total{kind=%q} %d\n", "command", st.DropCommandTotal)
		fmt.Fprintf(w, "custodian_index_dropped_total{kind=%q} %d\n", "ledger", st.DropLedgerTotal)
		fmt.Fprintf(w, "custodian_index_dropped_total{kind=%q} %d\n", "snapshot", st.DropSnapshotTotal)
	}
	if obs != nil {
		fmt.Fprintf(w, "# HELP custodian_observer_dropped_total Feed messages dropped for slow observers.\n")
		fmt.Fprintf(w, "# TYPE custodian_observer_dropped_total counter\n")
		fmt.Fprintf(w, "custodian_observer_dropped_total %d\n", obs.Dropped())
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
