package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/braydio/custodian/internal/protocol"
	"github.com/braydio/custodian/internal/sim/command"
	"github.com/braydio/custodian/internal/sim/tuning"
	"github.com/braydio/custodian/internal/sim/world"
)

func compile(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// roundTripAny turns a Go value into the generic form the validator expects.
func roundTripAny(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateMessages(t *testing.T) {
	validate := func(name string, v any) {
		t.Helper()
		if err := compile(t, name).Validate(roundTripAny(t, v)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}

	validate("hello.schema.json", protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, Operator: "warden"})
	validate("welcome.schema.json", protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "8a0f6f1e-5c1d-4c53-9d0b-0c2a8d2b7f10",
		Operator:        "warden",
		Seed:            1337,
		Tick:            0,
		Verbs:           command.Verbs(),
	})
	validate("cmd.schema.json", protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: "c1", Line: "WAIT 5"})

	s := world.New(1, tuning.Defaults())
	res := command.NewProcessor().Execute(s, "STATUS")
	validate("result.schema.json", protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		ID:              "c1",
		Seq:             1,
		OK:              res.OK,
		Lines:           res.Lines,
		Tick:            s.Time,
		Digest:          world.StateDigest(s),
	})
	validate("error.schema.json", protocol.NewError("c2", protocol.ErrSessionClosed, "session closed"))
}

func TestSchemas_RejectBadMessages(t *testing.T) {
	cmd := compile(t, "cmd.schema.json")
	var bad any
	_ = json.Unmarshal([]byte(`{"type":"CMD","protocol_version":"1.0","line":""}`), &bad)
	if err := cmd.Validate(bad); err == nil {
		t.Fatalf("empty line accepted")
	}
	result := compile(t, "result.schema.json")
	_ = json.Unmarshal([]byte(`{"type":"RESULT","protocol_version":"1.0","seq":1,"ok":true,"lines":[],"tick":0,"digest":"nothex"}`), &bad)
	if err := result.Validate(bad); err == nil {
		t.Fatalf("bad digest accepted")
	}
}

func TestSchemas_ValidateSnapshot(t *testing.T) {
	schema := compile(t, "snapshot.schema.json")

	s := world.New(4, tuning.Defaults())
	s.AmbientThreat = 3
	p := command.NewProcessor()
	for _, line := range []string{"FAB ADD TURRET AMMO", "REPAIR PW_CORE", "WAIT 40", "DEPLOY COMMS", "WAIT 1"} {
		p.Execute(s, line)
	}
	if err := schema.Validate(roundTripAny(t, world.Snapshot(s))); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	fresh := roundTripAny(t, world.Snapshot(world.New(9, tuning.Defaults())))
	fresh.(map[string]any)["version"] = float64(1)
	if err := schema.Validate(fresh); err == nil {
		t.Fatalf("version 1 accepted as current")
	}
}
