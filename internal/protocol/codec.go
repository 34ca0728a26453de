package protocol

import (
	"encoding/json"
	"errors"
)

var (
	// ErrBadJSON means the frame was not a well-formed JSON object.
	ErrBadJSON = errors.New("message is not a JSON object")

	// ErrUnknownType means the frame carried a type the server does not
	// accept from bots.
	ErrUnknownType = errors.New("unknown message type")

	// ErrMalformedAction means an action frame's nested action object
	// could not be decoded, for example a non-integer amount.
	ErrMalformedAction = errors.New("malformed action object")
)

// ClientMessage is a decoded bot -> server frame. Exactly one of Join and
// Action is set, matching Type.
type ClientMessage struct {
	Type   string
	Join   *Join
	Action *Action
}

// DecodeClient parses a single inbound text frame. It distinguishes
// undecodable JSON (ErrBadJSON), unsupported message types
// (ErrUnknownType), and action frames whose payload does not fit the
// schema (ErrMalformedAction); callers map these to the matching error
// codes.
func DecodeClient(data []byte) (*ClientMessage, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrBadJSON
	}

	switch env.Type {
	case TypeJoin:
		var m Join
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, ErrBadJSON
		}
		return &ClientMessage{Type: TypeJoin, Join: &m}, nil

	case TypeAction:
		var m ActionMsg
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, ErrMalformedAction
		}
		return &ClientMessage{Type: TypeAction, Action: &m.Action}, nil

	default:
		return nil, ErrUnknownType
	}
}

// Encode serializes any outbound message to a JSON text frame.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
