// Package wire is the JSON contract for board actions and snapshots.
//
// An action is an envelope {"type": ..., "payload": {...}}. Types this
// build does not know decode to board.Unknown so newer producers never break
// older consumers.
package wire

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/model"
)

// ErrMissingType is returned for an envelope without a "type".
var ErrMissingType = errors.New("action has no type")

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type addTaskPayload struct {
	Text string `json:"text"`
}

type moveCardPayload struct {
	Card     model.Card   `json:"card"`
	From     model.LaneID `json:"from"`
	To       model.LaneID `json:"to"`
	TargetID string       `json:"targetId,omitempty"`
}

type deleteTaskPayload struct {
	CardID string       `json:"cardId"`
	From   model.LaneID `json:"from"`
}

type editCardPayload struct {
	CardID  string       `json:"cardId"`
	From    model.LaneID `json:"from"`
	NewText string       `json:"newText"`
}

// MarshalAction encodes a as a single-line envelope.
func MarshalAction(a board.Action) ([]byte, error) {
	var payload any
	switch a := a.(type) {
	case board.AddTask:
		payload = addTaskPayload{Text: a.Text}
	case board.MoveCard:
		payload = moveCardPayload{Card: a.Card, From: a.From, To: a.To, TargetID: a.TargetID}
	case board.DeleteTask:
		payload = deleteTaskPayload{CardID: a.CardID, From: a.From}
	case board.EditCard:
		payload = editCardPayload{CardID: a.CardID, From: a.From, NewText: a.NewText}
	case board.Unknown:
		if a.Type == "" {
			return nil, ErrMissingType
		}
		return json.Marshal(envelope{Type: a.Type, Payload: a.Payload})
	case nil:
		return nil, errors.New("nil action")
	default:
		return nil, fmt.Errorf("unsupported action %T", a)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", a.Kind(), err)
	}
	return json.Marshal(envelope{Type: string(a.Kind()), Payload: raw})
}

// UnmarshalAction decodes one envelope.
func UnmarshalAction(data []byte) (board.Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}
	payload := env.Payload
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("{}")
	}

	switch board.Kind(env.Type) {
	case board.KindAddTask:
		var p addTaskPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return board.AddTask{Text: p.Text}, nil
	case board.KindMoveCard:
		var p moveCardPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return board.MoveCard{Card: p.Card, From: p.From, To: p.To, TargetID: p.TargetID}, nil
	case board.KindDeleteTask:
		var p deleteTaskPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return board.DeleteTask{CardID: p.CardID, From: p.From}, nil
	case board.KindEditCard:
		var p editCardPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return board.EditCard{CardID: p.CardID, From: p.From, NewText: p.NewText}, nil
	default:
		return board.Unknown{Type: env.Type, Payload: bytes.Clone(env.Payload)}, nil
	}
}
