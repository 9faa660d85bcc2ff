package core

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Event names carried on the wire.
const (
	EventRoomList      = "room list"
	EventCreateRoom    = "create room"
	EventJoinRoom      = "join room request"
	EventRoomJoined    = "room joined"
	EventNoSuchRoom    = "no such room"
	EventWrongPassword = "wrong password"
	EventChatMessage   = "chat message"
	EventFileUpload    = "file upload"
	EventFileMessage   = "file message"
	EventTyping        = "typing"
	EventStopTyping    = "stop typing"
)

var ErrBadEnvelope = errors.New("bad envelope")

// Envelope is a named event with positional arguments.
type Envelope struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args"`
}

func Encode(event string, args ...any) (Frame, error) {
	if args == nil {
		args = []any{}
	}
	b, err := json.Marshal(struct {
		Event string `json:"event"`
		Args  []any  `json:"args"`
	}{Event: event, Args: args})
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", event, err)
	}
	return Frame(b), nil
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", ErrBadEnvelope)
	}
	return env, nil
}

// String returns argument i as a string. Missing or non-string arguments
// yield "" so that field validation rejects them.
func (e Envelope) String(i int) string {
	if i >= len(e.Args) {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Args[i], &s); err != nil {
		return ""
	}
	return s
}

// Object decodes argument i into v. It reports false when the argument is
// missing or null.
func (e Envelope) Object(i int, v any) (bool, error) {
	if i >= len(e.Args) {
		return false, nil
	}
	raw := bytes.TrimSpace(e.Args[i])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: arg %d: %v", ErrBadEnvelope, i, err)
	}
	return true, nil
}
