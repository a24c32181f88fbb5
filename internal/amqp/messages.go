package amqp

import (
	"encoding/json"
	"fmt"

	"github.com/diewo77/gestion/internal/events"
)

// EventMessage is the wire form of an events.Event. It only carries
// identifiers; consumers reload the record from the database.
type EventMessage struct {
	events.Event
	Source string `json:"source"`
}

const messageSource = "gestion"

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON decodes a message and checks it names an event.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" || msg.ID == "" {
		return nil, fmt.Errorf("message without event type or id")
	}
	return &msg, nil
}
