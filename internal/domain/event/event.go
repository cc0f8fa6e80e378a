package event

import "github.com/goccy/go-json"

type Event interface {
	EventType() string
	EventValue() ([]byte, error)
}

// DefaultEventValue provides a common implementation for EventValue
func DefaultEventValue(ev interface{}) ([]byte, error) {
	return json.Marshal(ev)
}
