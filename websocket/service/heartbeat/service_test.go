package heartbeat

import (
	"encoding/json"
	"sync"
	"testing"

	ws "filebrowser/websocket"
)

type recorderConn struct {
	mu       sync.Mutex
	messages []*ws.ServiceMessage
}

func (r *recorderConn) WriteJSON(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := v.(*ws.ServiceMessage); ok {
		r.messages = append(r.messages, msg)
	}
	return nil
}

func TestHeartbeatService_Name(t *testing.T) {
	service := NewService()
	if service.Name() != "heartbeat" {
		t.Errorf("Expected service name to be 'heartbeat', got '%s'", service.Name())
	}
}

func TestHeartbeatService_HandleTextMessage(t *testing.T) {
	conn := &recorderConn{}
	service := &HeartbeatService{conn: conn}

	testCases := []struct {
		name     string
		id       string
		action   string
		data     json.RawMessage
		expected ws.ServiceMessage
	}{
		{
			name:   "Simple heartbeat",
			id:     "test-id-1",
			action: "ping",
			data:   json.RawMessage(`{}`),
			expected: ws.ServiceMessage{
				Service: "heartbeat",
				Action:  "ping",
				Id:      "test-id-1",
			},
		},
		{
			name:   "Different action",
			id:     "test-id-2",
			action: "pong",
			data:   json.RawMessage(`{}`),
			expected: ws.ServiceMessage{
				Service: "heartbeat",
				Action:  "pong",
				Id:      "test-id-2",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service.HandleTextMessage(tc.id, tc.action, tc.data)

			conn.mu.Lock()
			defer conn.mu.Unlock()

			if len(conn.messages) == 0 {
				t.Fatal("No message was recorded")
			}

			got := conn.messages[len(conn.messages)-1]
			if got.Service != tc.expected.Service || got.Id != tc.expected.Id || got.Action != tc.expected.Action {
				t.Errorf("unexpected echo: got %+v, want %+v", got, tc.expected)
			}
		})
	}
}
