package observerproto

// Version is the observer protocol version (separate from the operator WS protocol).
const Version = "0.1"

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// Backlog asks for up to this many recent commands before live ones.
	Backlog int `json:"backlog,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	Seed            int64  `json:"seed"`
	Tick            int    `json:"tick"`
	Seq             int    `json:"seq"`
	Failed          bool   `json:"failed"`
}

// Server -> Client. Sent once per executed command.
type FeedMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	Seq             int      `json:"seq"`
	Line            string   `json:"line"`
	OK              bool     `json:"ok"`
	Lines           []string `json:"lines"`
	Tick            int      `json:"tick"`
	Digest          string   `json:"digest"`
}
