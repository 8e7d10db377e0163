package events

import (
	"encoding/json"
	"fmt"

	relay_errors "atendimento-relay/pkg/errors"
)

// Envelope is the websocket frame in both directions: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func Encode(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: payload})
}

func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed frame: %w", relay_errors.ErrInvalidInput)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("frame without event name: %w", relay_errors.ErrInvalidInput)
	}
	return env, nil
}
