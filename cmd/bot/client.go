package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/braydio/custodian/internal/protocol"
)

// client drives one operator connection. Commands are sent one at a time
// and matched to their RESULT or ERROR by id.
type client struct {
	conn    *websocket.Conn
	next    int
	timeout time.Duration
}

func dial(url string) (*client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &client{conn: conn, timeout: 15 * time.Second}, nil
}

func (c *client) Close() error { return c.conn.Close() }

func (c *client) hello(operator string) (protocol.WelcomeMsg, error) {
	var w protocol.WelcomeMsg
	err := c.conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, Operator: operator})
	if err != nil {
		return w, fmt.Errorf("send HELLO: %w", err)
	}
	for {
		msg, base, err := c.read()
		if err != nil {
			return w, err
		}
		if base.Type != protocol.TypeWelcome {
			continue
		}
		if err := json.Unmarshal(msg, &w); err != nil {
			return w, err
		}
		return w, nil
	}
}

func (c *client) exec(line string) (protocol.ResultMsg, error) {
	var res protocol.ResultMsg
	c.next++
	id := "c" + strconv.Itoa(c.next)
	if err := c.conn.WriteJSON(protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: id, Line: line}); err != nil {
		return res, fmt.Errorf("send CMD: %w", err)
	}
	for {
		msg, base, err := c.read()
		if err != nil {
			return res, err
		}
		switch base.Type {
		case protocol.TypeResult:
			if err := json.Unmarshal(msg, &res); err != nil {
				return res, err
			}
			if res.ID == id {
				return res, nil
			}
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				return res, err
			}
			if e.ID == id || e.ID == "" {
				return res, fmt.Errorf("%s: %s", e.Code, e.Message)
			}
		}
	}
}

func (c *client) read() ([]byte, protocol.BaseMessage, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, protocol.BaseMessage{}, err
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return nil, base, err
	}
	return msg, base, nil
}
