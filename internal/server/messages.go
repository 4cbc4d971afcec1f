package server

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message types sent to observers.
const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
	MessageControl  = "control"
)

// Control actions accepted over the websocket and mirrored by the HTTP endpoints.
const (
	ActionToggleWolf  = "toggle_wolf"
	ActionTogglePause = "toggle_pause"
)

// Message is the envelope of everything written to an observer.
type Message struct {
	Type      string    `json:"type"`
	Event     string    `json:"event,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// ControlMessage is sent by observers to drive the simulation.
type ControlMessage struct {
	Action string `json:"action"`
}

// ControlResult reports the state after a control action.
type ControlResult struct {
	Action     string `json:"action"`
	WolfActive *bool  `json:"wolf_active,omitempty"`
	Paused     *bool  `json:"paused,omitempty"`
}

func encode(typ, event string, data any) ([]byte, error) {
	b, err := json.Marshal(Message{Type: typ, Event: event, Timestamp: time.Now().UTC(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", typ, err)
	}
	return b, nil
}
