package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Envelope is the unit carried on the bus.
type Envelope struct {
	EventType  Type           `json:"eventType"`
	ActorID    string         `json:"actorId"`
	TargetID   string         `json:"targetId"`
	TargetType TargetType     `json:"targetType"`
	Payload    map[string]any `json:"payload,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Key returns the partition/routing key.
func (e Envelope) Key() string {
	return strings.TrimSpace(e.TargetID)
}

// Validate checks the fields every consumer relies on. Structural problems
// are reported before ErrUnknownEventType so callers can tell a malformed
// envelope from a well-formed one of a type they do not know.
func (e Envelope) Validate() error {
	if e.Key() == "" {
		return ErrMissingTargetID
	}
	if strings.TrimSpace(e.ActorID) == "" {
		return ErrMissingActorID
	}
	if e.EventType == "" {
		return ErrMissingEventType
	}
	if !e.TargetType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTargetType, e.TargetType)
	}
	if !e.EventType.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.EventType)
	}
	return nil
}

// Encode stamps a zero Timestamp with the current UTC time and serializes
// the envelope to JSON.
func (e *Envelope) Encode() ([]byte, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Join(ErrEncodeEnvelope, err)
	}
	return data, nil
}

// Decode parses a JSON-encoded envelope.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, errors.Join(ErrDecodeEnvelope, err)
	}
	return e, nil
}

// DecodePayload decodes the open payload map into T.
func DecodePayload[T any](e Envelope) (T, error) {
	var out T
	if len(e.Payload) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return out, errors.Join(ErrDecodePayload, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.Join(ErrDecodePayload, err)
	}
	return out, nil
}
