// Package observer streams every executed command of the session to
// read-only watchers. It is fed as a session command log.
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/braydio/custodian/internal/observerproto"
	"github.com/braydio/custodian/internal/sim/session"
)

const (
	backlogCap = 64
	queueSize  = 256
)

type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	subs    map[string]chan []byte
	backlog [][]byte
	dropped atomic.Uint64
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log:  logger,
		subs: map[string]chan []byte{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// WriteCommand fans an executed command out to every subscriber. Slow
// subscribers lose messages rather than stall the session.
func (s *Server) WriteCommand(e session.CommandLogEntry) error {
	b, err := json.Marshal(observerproto.FeedMsg{
		Type:            "FEED",
		ProtocolVersion: observerproto.Version,
		SessionID:       e.Session,
		Seq:             e.Seq,
		Line:            e.Line,
		OK:              e.OK,
		Lines:           e.Lines,
		Tick:            e.Time,
		Digest:          e.Digest,
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backlog = append(s.backlog, b)
	if over := len(s.backlog) - backlogCap; over > 0 {
		s.backlog = append([][]byte(nil), s.backlog[over:]...)
	}
	for _, ch := range s.subs {
		select {
		case ch <- b:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}

// Dropped reports how many feed messages were discarded for slow subscribers.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

func (s *Server) subscribe(backlog int) (string, chan []byte) {
	sid := fmt.Sprintf("O%d", s.nextID.Add(1))
	ch := make(chan []byte, queueSize)
	s.mu.Lock()
	defer s.mu.Unlock()
	if backlog > len(s.backlog) {
		backlog = len(s.backlog)
	}
	for _, b := range s.backlog[len(s.backlog)-backlog:] {
		ch <- b
	}
	s.subs[sid] = ch
	return sid, ch
}

func (s *Server) unsubscribe(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sid)
}

// BootstrapHandler describes the session so a watcher can line up the feed
// sequence with what it already has.
func (s *Server) BootstrapHandler(r *session.Runner) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(req.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		info, err := r.Info(req.Context())
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			SessionID:       info.ID,
			Seed:            info.Seed,
			Tick:            info.Tick,
			Seq:             info.Seq,
			Failed:          info.Failed,
		})
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}
		if sub.Backlog < 0 {
			sub.Backlog = 0
		}

		sid, out := s.subscribe(sub.Backlog)
		defer s.unsubscribe(sid)
		s.log.Printf("observer %s subscribed (%s)", sid, r.RemoteAddr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: observers only send control frames; any read error ends
		// the subscription.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
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
