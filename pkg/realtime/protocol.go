package realtime

import (
	"encoding/json"
	"errors"
	"strings"
)

// Frame events.
const (
	EventAuthenticate         = "authenticate"
	EventJoin                 = "join"
	EventJoined               = "joined"
	EventNotification         = "notification"
	EventNotificationReceived = "notificationReceived"
	EventNotificationError    = "notificationError"
	EventWelcome              = "welcome"
	EventError                = "error"
)

const userRoomPrefix = "user:"

// UserRoom returns the room every connection of user id joins.
func UserRoom(id string) string {
	return userRoomPrefix + id
}

// Frame is the envelope of every WebSocket message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinedPayload struct {
	Room string `json:"room"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type WelcomePayload struct {
	Message string `json:"message"`
	ConnID  string `json:"connId"`
}

// RelayRequest asks the bridge to emit Data to Room.
type RelayRequest struct {
	ID   string          `json:"id,omitempty"`
	Room string          `json:"room"`
	Data json.RawMessage `json:"data"`
}

// RelayAck confirms a relay; Delivered counts the clients that got it.
type RelayAck struct {
	ID            string `json:"id,omitempty"`
	Success       bool   `json:"success"`
	RoomDelivered string `json:"roomDelivered"`
	Delivered     int    `json:"delivered"`
}

type RelayError struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Join(ErrEncodeFrame, err)
	}
	out, err := json.Marshal(Frame{Event: event, Data: raw})
	if err != nil {
		return nil, errors.Join(ErrEncodeFrame, err)
	}
	return out, nil
}

// stringArg reads a frame argument sent either as a bare JSON string or as
// an object carrying it under key.
func stringArg(data json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return ""
	}
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		raw, _ := json.Marshal(v)
		return string(raw)
	}
	return ""
}
