package rpc

import (
	"encoding/json"

	"github.com/polywrap/near-engine/pkg/codec"
)

type EventContent interface {
	Event() string
	Data() codec.Encodable
	JSONData() ([]byte, error)
}

func NewEventContent(event string, data codec.Encodable) EventContent {
	return &eventContent{
		event: event,
		data:  data,
	}
}

type eventContent struct {
	event string
	data  codec.Encodable
}

func (e *eventContent) Event() string {
	return e.event
}

func (e *eventContent) Data() codec.Encodable {
	return e.data
}

func (e *eventContent) JSONData() ([]byte, error) {
	return json.Marshal(e.data)
}
