package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/braydio/custodian/internal/protocol"
	"github.com/braydio/custodian/internal/sim/command"
	"github.com/braydio/custodian/internal/sim/session"
)

const commandTimeout = 10 * time.Second

type Server struct {
	runner *session.Runner
	log    *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(r *session.Runner, logger *log.Logger) *Server {
	return &Server{
		runner: r,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler serves one operator connection. Every connection drives the same
// session; commands from different connections are serialized by the runner.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		operator := s.handshake(r.Context(), conn)
		if operator == "" {
			return
		}
		s.log.Printf("operator connected: %s (%s)", operator, r.RemoteAddr)
		defer s.log.Printf("operator disconnected: %s", operator)

		for {
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeCmd {
				continue
			}
			var cmd protocol.CmdMsg
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			if cmd.ProtocolVersion != protocol.Version {
				continue
			}
			if strings.TrimSpace(cmd.Line) == "" {
				if err := writeJSON(conn, protocol.NewError(cmd.ID, protocol.ErrBadRequest, "empty command line")); err != nil {
					return
				}
				continue
			}

			ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
			resp, err := s.runner.Execute(ctx, cmd.Line)
			cancel()
			if err != nil {
				code := protocol.ErrInternal
				switch {
				case errors.Is(err, session.ErrClosed):
					code = protocol.ErrSessionClosed
				case errors.Is(err, context.DeadlineExceeded):
					code = protocol.ErrSessionBusy
				}
				_ = writeJSON(conn, protocol.NewError(cmd.ID, code, err.Error()))
				if code == protocol.ErrSessionClosed {
					return
				}
				continue
			}
			if err := writeJSON(conn, protocol.ResultMsg{
				Type:            protocol.TypeResult,
				ProtocolVersion: protocol.Version,
				ID:              cmd.ID,
				Seq:             resp.Seq,
				OK:              resp.Result.OK,
				Lines:           resp.Result.Lines,
				Tick:            resp.Tick,
				Digest:          resp.Digest,
			}); err != nil {
				return
			}
		}
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (operator string) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ""
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ""
	}
	operator = strings.TrimSpace(hello.Operator)
	if operator == "" {
		operator = "operator"
	}

	info, err := s.runner.Info(ctx)
	if err != nil {
		_ = writeJSON(conn, protocol.NewError("", protocol.ErrSessionClosed, err.Error()))
		return ""
	}
	if err := writeJSON(conn, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       info.ID,
		Operator:        operator,
		Seed:            info.Seed,
		Tick:            info.Tick,
		Failed:          info.Failed,
		Verbs:           command.Verbs(),
	}); err != nil {
		return ""
	}
	return operator
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
