package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope is the standard WebSocket message wrapper.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope creates an envelope with a JSON-encoded payload.
func NewEnvelope(typ string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: typ, Payload: data}, nil
}

// MustEnvelope is like NewEnvelope but panics on error.
func MustEnvelope(typ string, payload any) Envelope {
	e, err := NewEnvelope(typ, payload)
	if err != nil {
		panic(err)
	}
	return e
}

// Decode unmarshals the payload into v. An empty payload leaves v as is.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
