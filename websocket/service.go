package websocket

import (
	"encoding/json"
)

// Service handles one named slice of the connection's traffic. Text
// messages are routed by the envelope's service field; binary frames are
// offered to every registered service.
type Service interface {
	HandleTextMessage(id string, action string, data json.RawMessage)
	HandleBinaryMessage(data []byte)
	Name() string
	Cleanup(err error)
	Register(conn *Conn)
}

// ServiceMessage is the JSON envelope every text frame carries.
type ServiceMessage struct {
	Service string          `json:"service"`
	Id      string          `json:"id,omitempty"`
	Action  string          `json:"action,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
