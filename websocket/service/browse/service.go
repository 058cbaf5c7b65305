package browse

import (
	"encoding/json"
	"fmt"
	"log"

	"filebrowser/store"
	ws "filebrowser/websocket"
)

const (
	actionRoot    = "root"
	actionEnter   = "enter"
	actionRefresh = "refresh"
	actionFilter  = "filter"
	actionRead    = "read"
	actionWrite   = "write"
	actionCopy    = "copy"
	actionMove    = "move"
	actionRename  = "rename"
	actionDelete  = "delete"
	actionMkdir   = "mkdir"
)

type filterData struct {
	Text string `json:"text"`
}
type readData struct {
	// res
	Content string `json:"content"`
}
type writeData struct {
	Content string `json:"content"`
}
type moveData struct {
	Dest string `json:"dest,omitempty"`
}
type renameData struct {
	NewName string `json:"newName"`
}
type mkdirData struct {
	Name string `json:"name,omitempty"`
}

// listingData is the reply payload of every listing-returning action:
// the current directory, the active filter and the visible entries.
type listingData struct {
	Dir     string         `json:"dir"`
	Filter  string         `json:"filter,omitempty"`
	Entries []*store.Entry `json:"entries"`
}

// messageWriter is the slice of the connection the service writes to.
type messageWriter interface {
	WriteJSON(v any) error
}

// BrowseService maps envelope actions onto one Store. The message id
// carries the target entry's path.
type BrowseService struct {
	conn  messageWriter
	store *store.Store

	*log.Logger
}

// NewService wraps a store for serving over a connection.
func NewService(st *store.Store) *BrowseService {
	return &BrowseService{
		store:  st,
		Logger: log.New(log.Writer(), "[browse] ", log.LstdFlags),
	}
}

func (s *BrowseService) Name() string {
	return "browse"
}

func (s *BrowseService) Register(conn *ws.Conn) {
	s.conn = conn
}

func (s *BrowseService) Cleanup(err error) {}

func (s *BrowseService) HandleBinaryMessage(data []byte) {}

func (s *BrowseService) HandleTextMessage(id, action string, data json.RawMessage) {
	switch action {
	case actionRoot:
		go s.handleRoot(id)
	case actionEnter:
		go s.handleEnter(id)
	case actionRefresh:
		go s.handleRefresh(id)
	case actionFilter:
		go s.handleFilter(id, data)
	case actionRead:
		go s.handleRead(id)
	case actionWrite:
		go s.handleWrite(id, data)
	case actionCopy:
		go s.handleCopy(id)
	case actionMove:
		go s.handleMove(id, data)
	case actionRename:
		go s.handleRename(id, data)
	case actionDelete:
		go s.handleDelete(id)
	case actionMkdir:
		go s.handleMkdir(id, data)
	}
}

func (s *BrowseService) handleRoot(id string) {
	listing, err := s.store.SetRoot()
	if err != nil {
		s.handleError(id, actionRoot, err)
		return
	}
	s.replyListing(id, actionRoot, listing)
}

func (s *BrowseService) handleEnter(id string) {
	e, ok := s.store.Find(id)
	if !ok {
		s.handleError(id, actionEnter, fmt.Errorf("no such entry: %s", id))
		return
	}

	listing, err := s.store.Enter(e)
	if err != nil {
		s.handleError(id, actionEnter, err)
		return
	}
	s.replyListing(id, actionEnter, listing)
}

func (s *BrowseService) handleRefresh(id string) {
	listing, err := s.store.Refresh()
	if err != nil {
		s.handleError(id, actionRefresh, err)
		return
	}
	s.replyListing(id, actionRefresh, listing)
}

func (s *BrowseService) handleFilter(id string, data json.RawMessage) {
	var d filterData
	if err := json.Unmarshal(data, &d); err != nil {
		s.Printf("error unmarshalling filter payload: %v", err)
		return
	}

	s.replyListing(id, actionFilter, s.store.SetFilter(d.Text))
}

func (s *BrowseService) handleRead(id string) {
	e, ok := s.store.Find(id)
	if !ok {
		s.handleError(id, actionRead, fmt.Errorf("no such entry: %s", id))
		return
	}

	content, err := s.store.Read(e)
	if err != nil {
		s.handleError(id, actionRead, err)
		return
	}

	r, err := json.Marshal(readData{Content: content})
	if err != nil {
		s.Printf("error marshalling read response: %v", err)
		return
	}

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  actionRead,
		Data:    r,
	})
}

func (s *BrowseService) handleWrite(id string, data json.RawMessage) {
	var d writeData
	if err := json.Unmarshal(data, &d); err != nil {
		s.Printf("error unmarshalling write payload: %v", err)
		return
	}

	e, ok := s.store.Find(id)
	if !ok {
		s.handleError(id, actionWrite, fmt.Errorf("no such entry: %s", id))
		return
	}

	if err := s.store.Write(e, d.Content); err != nil {
		s.handleError(id, actionWrite, err)
		return
	}

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  actionWrite,
	})
}

func (s *BrowseService) handleCopy(id string) {
	e, ok := s.store.Find(id)
	if !ok {
		s.handleError(id, actionCopy, fmt.Errorf("no such entry: %s", id))
		return
	}

	listing, err := s.store.Copy(e)
	if err != nil {
		s.handleError(id, actionCopy, err)
		return
	}
	s.replyListing(id, actionCopy, listing)
}

func (s *BrowseService) handleMove(id string, data json.RawMessage) {
	var d moveData
	if err := json.Unmarshal(data, &d); err != nil {
		s.Printf("error unmarshalling move payload: %v", err)
		return
	}

	e, ok := s.store.Find(id)
	if !ok {
		s.handleError(id, actionMove, fmt.Errorf("no such entry: %s", id))
		return
	}

	listing, err := s.store.Move(e, d.Dest)
	if err != nil {
		s.handleError(id, actionMove, err)
		return
	}
	s.replyListing(id, actionMove, listing)
}

func (s *BrowseService) handleRename(id string, data json.RawMessage) {
	var d renameData
	if err := json.Unmarshal(data, &d); err != nil {
		s.Printf("error unmarshalling rename payload: %v", err)
		return
	}

	e, ok := s.store.Find(id)
	if !ok {
		s.handleError(id, actionRename, fmt.Errorf("no such entry: %s", id))
		return
	}

	listing, err := s.store.Rename(e, d.NewName)
	if err != nil {
		s.handleError(id, actionRename, err)
		return
	}
	s.replyListing(id, actionRename, listing)
}

func (s *BrowseService) handleDelete(id string) {
	e, ok := s.store.Find(id)
	if !ok {
		s.handleError(id, actionDelete, fmt.Errorf("no such entry: %s", id))
		return
	}

	listing, err := s.store.Delete(e)
	if err != nil {
		s.handleError(id, actionDelete, err)
		return
	}
	s.replyListing(id, actionDelete, listing)
}

func (s *BrowseService) handleMkdir(id string, data json.RawMessage) {
	var d mkdirData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			s.Printf("error unmarshalling mkdir payload: %v", err)
			return
		}
	}

	listing, err := s.store.CreateFolder(d.Name)
	if err != nil {
		s.handleError(id, actionMkdir, err)
		return
	}
	s.replyListing(id, actionMkdir, listing)
}

func (s *BrowseService) replyListing(id, action string, listing *store.Listing) {
	d := listingData{
		Dir:     listing.Dir,
		Filter:  listing.Filter,
		Entries: listing.Visible(),
	}

	r, err := json.Marshal(d)
	if err != nil {
		s.Printf("error marshalling %s response: %v", action, err)
		return
	}

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  action,
		Data:    r,
	})
}

func (s *BrowseService) handleError(id, action string, err error) {
	s.Println(err)

	s.conn.WriteJSON(&ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  action,
		Error:   err.Error(),
	})
}
