package eventbus

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCheckCompatibility(t *testing.T) {
	prev := VersionedSchema{
		SchemaVersion: "v1",
		Fields: []FieldSchema{
			{Name: "signal_id", Type: "string", Required: true},
			{Name: "type", Type: "string", Required: true},
		},
	}
	nextAdditive := VersionedSchema{
		SchemaVersion: "v2",
		Fields: []FieldSchema{
			{Name: "signal_id", Type: "string", Required: true},
			{Name: "type", Type: "string", Required: true},
			{Name: "subject", Type: "string", Required: false},
		},
	}
	nextBreaking := VersionedSchema{
		SchemaVersion: "v3",
		Fields: []FieldSchema{
			{Name: "signal_id", Type: "string", Required: true},
			{Name: "type", Type: "int", Required: true},
		},
	}

	additive := CheckCompatibility(prev, nextAdditive)
	if !additive.Compatible || !additive.Additive {
		t.Fatalf("expected additive compatibility, got %+v", additive)
	}
	if len(additive.AddedOptional) != 1 || additive.AddedOptional[0] != "subject" {
		t.Fatalf("unexpected additive report: %+v", additive)
	}

	breaking := CheckCompatibility(prev, nextBreaking)
	if breaking.Compatible || breaking.Additive {
		t.Fatalf("expected breaking schema report, got %+v", breaking)
	}
	if len(breaking.TypeChanged) == 0 {
		t.Fatalf("expected type change details, got %+v", breaking)
	}
}

func TestSchemaRouter_RegisterSignalSchemaRejectsMissingField(t *testing.T) {
	router := NewSchemaRouter()
	if err := router.RegisterSignalSchema(SchemaVersionV1, "user.created"); err != nil {
		t.Fatalf("RegisterSignalSchema() error = %v", err)
	}

	payload, _ := json.Marshal(map[string]any{"id": "abc"})
	envelope := Envelope{
		EventID:       "evt-1",
		EventType:     "user.created",
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersionV1,
		NodeID:        "node-1",
		OrderingKey:   "node-1:user.created",
		Sequence:      1,
		Payload:       payload,
	}
	if err := router.ValidateIncoming(envelope); err == nil {
		t.Fatal("expected validation to reject a payload missing required Signal fields")
	}
}

func TestSchemaRouter_RegisterSignalSchemaAcceptsCompleteSignal(t *testing.T) {
	router := NewSchemaRouter()
	if err := router.RegisterSignalSchema(SchemaVersionV1, "user.created"); err != nil {
		t.Fatalf("RegisterSignalSchema() error = %v", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"specversion": "1.0.2",
		"id":          "abc",
		"source":      "test",
		"type":        "user.created",
	})
	envelope := Envelope{
		EventID:       "evt-2",
		EventType:     "user.created",
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersionV1,
		NodeID:        "node-1",
		OrderingKey:   "node-1:user.created",
		Sequence:      1,
		Payload:       payload,
	}
	if err := router.ValidateIncoming(envelope); err != nil {
		t.Fatalf("expected a complete Signal payload to pass validation, got %v", err)
	}
}
