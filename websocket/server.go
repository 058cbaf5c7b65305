package websocket

import (
	"log"
	"net/http"
	"slices"
	"sync"
	"time"
)

type Server struct {
	*Conn
	services map[string]Service

	mu             sync.Mutex
	lastActiveTime time.Time
	activeServices []string

	done chan struct{}
}

func (s *Server) checkTimeout() {
	ticker := time.NewTicker(time.Second * 10)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			idle := time.Since(s.lastActiveTime)
			s.mu.Unlock()
			if idle > connectionTimeout {
				s.Close()
			}
		}
	}
}

// Register adds a service whose traffic counts as connection activity.
func (s *Server) Register(service Service) {
	s.RegisterPassive(service)
	s.activeServices = append(s.activeServices, service.Name())
}

// RegisterPassive adds a service that does not keep the connection alive,
// such as the heartbeat.
func (s *Server) RegisterPassive(service Service) {
	if _, exists := s.services[service.Name()]; exists {
		log.Printf("service %s already registered", service.Name())
		return
	}

	service.Register(s.Conn)
	s.services[service.Name()] = service
}

// Start runs the connection until it drops, then cleans up every
// registered service. It blocks the calling goroutine.
func (s *Server) Start() {
	go s.checkTimeout()

	go func() {
		for msg := range s.TextMessage {
			if slices.Contains(s.activeServices, msg.Service) {
				s.touch()
			}
			if svc, exists := s.services[msg.Service]; exists {
				svc.HandleTextMessage(msg.Id, msg.Action, msg.Data)
			}
		}
	}()

	go func() {
		for data := range s.BinaryMessage {
			s.touch()
			for _, svc := range s.services {
				svc.HandleBinaryMessage(data)
			}
		}
	}()

	err := s.StartDispatch()
	close(s.done)
	for _, svc := range s.services {
		svc.Cleanup(err)
	}
}

func (s *Server) touch() {
	s.mu.Lock()
	s.lastActiveTime = time.Now()
	s.mu.Unlock()
}

func NewServer(w http.ResponseWriter, r *http.Request) (*Server, error) {
	conn, err := NewConn(w, r)
	if err != nil {
		return nil, err
	}

	server := &Server{
		Conn:           conn,
		services:       make(map[string]Service),
		lastActiveTime: time.Now(),
		done:           make(chan struct{}),
	}

	return server, nil
}
