package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"log"
	"sync"

	"filebrowser/store"
	ws "filebrowser/websocket"
)

const (
	actionStart    = "start"
	actionChunk    = "chunk"
	actionComplete = "complete"
	actionCancel   = "cancel"
)

type startData struct {
	Path string `json:"path"`
}
type completeData struct {
	Digest string `json:"digest,omitempty"`
}

type session struct {
	dest   string
	hasher hash.Hash
	file   io.WriteCloser
}

// UploadService streams file content into the browsed tree. A text
// message with the chunk action announces that the next binary frame
// belongs to the given session; content integrity is checked against a
// sha256 digest on completion.
// messageWriter is the slice of the connection the service writes to.
type messageWriter interface {
	WriteJSON(v any) error
}

type UploadService struct {
	conn messageWriter
	fs   store.FileSystem

	mu       sync.Mutex
	sessions map[string]*session

	// buffered; carries session ids of announced binary frames
	pending chan string
	// closed on Cleanup; releases announcement senders and receivers
	done chan struct{}

	*log.Logger
}

func NewService(fs store.FileSystem) *UploadService {
	return &UploadService{
		fs:       fs,
		sessions: make(map[string]*session),
		pending:  make(chan string, 10),
		done:     make(chan struct{}),
		Logger:   log.New(log.Writer(), "[upload] ", log.LstdFlags),
	}
}

func (s *UploadService) Name() string {
	return "upload"
}

func (s *UploadService) Register(conn *ws.Conn) {
	s.conn = conn
}

func (s *UploadService) HandleTextMessage(id, action string, data json.RawMessage) {
	switch action {
	case actionStart:
		s.handleStart(id, data)
	case actionChunk:
		s.handleChunk(id)
	case actionComplete:
		s.handleComplete(id, data)
	case actionCancel:
		s.handleCancel(id)
	}
}

// HandleBinaryMessage pairs a binary frame with the most recently
// announced chunk. Frames arrive in connection order, so the pairing
// holds as long as the client announces every frame.
func (s *UploadService) HandleBinaryMessage(data []byte) {
	var id string
	select {
	case id = <-s.pending:
	case <-s.done:
		return
	}

	s.mu.Lock()
	ss, exists := s.sessions[id]
	s.mu.Unlock()

	if !exists {
		s.Printf("session not found, dropping chunk: %s", id)
		return
	}

	if _, err := ss.file.Write(data); err != nil {
		s.handleError(id, actionChunk, fmt.Errorf("failed to write chunk: %w", err))
		s.abort(id, ss)
		return
	}
	ss.hasher.Write(data)

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  actionChunk,
	})
}

func (s *UploadService) handleStart(id string, data json.RawMessage) {
	var d startData
	if err := json.Unmarshal(data, &d); err != nil {
		s.Printf("error unmarshalling start payload: %v", err)
		return
	}

	if _, err := s.fs.Stat(d.Path); err == nil {
		s.handleError(id, actionStart, fmt.Errorf("destination already exists: %s", d.Path))
		return
	}

	file, err := s.fs.OpenWrite(d.Path)
	if err != nil {
		s.handleError(id, actionStart, err)
		return
	}

	s.mu.Lock()
	s.sessions[id] = &session{
		dest:   d.Path,
		hasher: sha256.New(),
		file:   file,
	}
	s.mu.Unlock()

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  actionStart,
	})
}

func (s *UploadService) handleChunk(id string) {
	select {
	case s.pending <- id:
	case <-s.done:
	}
}

func (s *UploadService) handleComplete(id string, data json.RawMessage) {
	var d completeData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			s.Printf("error unmarshalling complete payload: %v", err)
			return
		}
	}

	s.mu.Lock()
	ss, exists := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !exists {
		s.Printf("session not found, cannot complete: %s", id)
		return
	}

	if err := ss.file.Close(); err != nil {
		s.handleError(id, actionComplete, fmt.Errorf("failed to close file: %w", err))
		s.fs.Delete(ss.dest)
		return
	}

	if d.Digest != "" {
		digest := hex.EncodeToString(ss.hasher.Sum(nil))
		if digest != d.Digest {
			s.handleError(id, actionComplete, fmt.Errorf("digest mismatch: got %s", digest))
			s.fs.Delete(ss.dest)
			return
		}
	}

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  actionComplete,
	})
}

func (s *UploadService) handleCancel(id string) {
	s.mu.Lock()
	ss, exists := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if exists {
		ss.file.Close()
		s.fs.Delete(ss.dest)
	}

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  actionCancel,
	})
}

func (s *UploadService) abort(id string, ss *session) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	ss.file.Close()
	s.fs.Delete(ss.dest)
}

func (s *UploadService) Cleanup(err error) {
	// pending stays open: the dispatch goroutines may still drain
	// buffered announcements after the connection has died.
	close(s.done)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ss := range s.sessions {
		ss.file.Close()
		s.fs.Delete(ss.dest)
		delete(s.sessions, id)
	}
}

func (s *UploadService) handleError(id, action string, err error) {
	s.Println(err)

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  action,
		Error:   err.Error(),
	})
}
