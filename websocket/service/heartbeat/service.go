package heartbeat

import (
	"encoding/json"

	ws "filebrowser/websocket"
)

// messageWriter is the slice of the connection the service writes to.
type messageWriter interface {
	WriteJSON(v any) error
}

// HeartbeatService echoes every message straight back so the client can
// tell a live connection from a dead one. It is registered passively:
// its traffic never counts as activity for the idle timeout.
type HeartbeatService struct {
	conn messageWriter
}

func NewService() ws.Service {
	return &HeartbeatService{}
}

func (s *HeartbeatService) Name() string {
	return "heartbeat"
}

func (s *HeartbeatService) Register(conn *ws.Conn) {
	s.conn = conn
}

func (s *HeartbeatService) HandleTextMessage(id, action string, data json.RawMessage) {
	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  action,
	})
}

func (s *HeartbeatService) HandleBinaryMessage(data []byte) {}

func (s *HeartbeatService) Cleanup(err error) {}
