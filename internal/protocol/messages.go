package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Operator        string `json:"operator,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	Operator        string   `json:"operator"`
	Seed            int64    `json:"seed"`
	Tick            int      `json:"tick"`
	Failed          bool     `json:"failed,omitempty"`
	Verbs           []string `json:"verbs"`
}

// CMD (client -> server). ID is echoed back in the RESULT.
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Line            string `json:"line"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	ID              string   `json:"id,omitempty"`
	Seq             int      `json:"seq"`
	OK              bool     `json:"ok"`
	Lines           []string `json:"lines"`
	Tick            int      `json:"tick"`
	Digest          string   `json:"digest"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(id, code, message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, ID: id, Code: code, Message: message}
}
