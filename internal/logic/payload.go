package logic

import "encoding/json"

// Payload is the wire representation of a ChangeEvent sent to subscribers.
// Subscribers key off these two fields only.
type Payload struct {
	GPIO  int `json:"gpio"`
	State int `json:"state"`
}

// FormatPayload creates the JSON payload for a change event,
// e.g. {"gpio":4,"state":1}.
func FormatPayload(event ChangeEvent) ([]byte, error) {
	return json.Marshal(Payload{GPIO: event.Line, State: int(event.Level)})
}
