package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/braydio/custodian/internal/observerproto"
	"github.com/braydio/custodian/internal/persistence/snapshot"
)

// adminClient talks to the loopback admin endpoints of a running server.
type adminClient struct {
	base string
	http *http.Client
}

func newAdminClient(baseURL string, timeout time.Duration) *adminClient {
	return &adminClient{
		base: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// snapshotReply is the body of POST /admin/v1/snapshot.
type snapshotReply struct {
	OK    bool   `json:"ok"`
	Path  string `json:"path"`
	Error string `json:"error"`
}

func (c *adminClient) bootstrap(ctx context.Context) (observerproto.BootstrapResponse, error) {
	var out observerproto.BootstrapResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/admin/v1/observer/bootstrap", nil)
	if err != nil {
		return out, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return out, fmt.Errorf("bootstrap: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("bootstrap: %w", err)
	}
	if out.ProtocolVersion != observerproto.Version {
		return out, fmt.Errorf("bootstrap: protocol_version %q, want %q", out.ProtocolVersion, observerproto.Version)
	}
	return out, nil
}

// snapshot asks the server to write a snapshot now and returns its path.
func (c *adminClient) snapshot(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/admin/v1/snapshot", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var reply snapshotReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("snapshot: %s: %w", resp.Status, err)
	}
	if !reply.OK {
		return "", fmt.Errorf("snapshot: %s", reply.Error)
	}
	return reply.Path, nil
}

func formatBootstrap(b observerproto.BootstrapResponse) string {
	status := "RUNNING"
	if b.Failed {
		status = "FAILED"
	}
	return fmt.Sprintf("session=%s seed=%d tick=%d seq=%d status=%s", b.SessionID, b.Seed, b.Tick, b.Seq, status)
}

// stateCmd prints the observer bootstrap of a running server.
func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	asJSON := fs.Bool("json", false, "print the raw bootstrap json")
	_ = fs.Parse(args)

	b, err := newAdminClient(*baseURL, 5*time.Second).bootstrap(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *asJSON {
		_ = json.NewEncoder(os.Stdout).Encode(b)
		return
	}
	fmt.Println(formatBootstrap(b))
}

// snapshotCmd triggers a snapshot and, when the file is reachable from
// here, prints its header.
func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	path, err := newAdminClient(*baseURL, 10*time.Second).snapshot(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(path)
	if h, err := snapshot.ReadHeader(path); err == nil {
		fmt.Printf("session=%s tick=%d seq=%d version=%d\n", h.SessionID, h.Tick, h.Seq, h.Version)
	}
}
