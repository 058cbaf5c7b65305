package browse

import (
	"encoding/json"
	"os"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filebrowser/store"
	ws "filebrowser/websocket"
)

// recorderConn captures everything the service writes.
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

func (r *recorderConn) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *recorderConn) last() *ws.ServiceMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return nil
	}
	return r.messages[len(r.messages)-1]
}

func newTestService(t *testing.T) (*BrowseService, *recorderConn, string) {
	t.Helper()
	root := t.TempDir()
	st := store.New(&store.LocalFileSystem{}, root)
	service := NewService(st)

	conn := &recorderConn{}
	service.conn = conn
	return service, conn, root
}

// await waits until the service has replied n times; handlers run in
// their own goroutines.
func await(t *testing.T, conn *recorderConn, n int) *ws.ServiceMessage {
	t.Helper()
	require.Eventually(t, func() bool {
		return conn.count() >= n
	}, time.Second, 5*time.Millisecond)
	return conn.last()
}

func decodeListing(t *testing.T, msg *ws.ServiceMessage) listingData {
	t.Helper()
	var d listingData
	require.NoError(t, json.Unmarshal(msg.Data, &d))
	return d
}

func names(d listingData) []string {
	out := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		out = append(out, e.Name)
	}
	return out
}

func TestBrowseService_Name(t *testing.T) {
	service, _, _ := newTestService(t)
	assert.Equal(t, "browse", service.Name())
}

func TestBrowseService_RootAndFilter(t *testing.T) {
	service, conn, root := newTestService(t)

	require.NoError(t, os.WriteFile(path.Join(root, "a.txt"), []byte("0123456789"), 0644))
	require.NoError(t, os.Mkdir(path.Join(root, "docs"), 0750))

	service.HandleTextMessage("", actionRoot, nil)
	msg := await(t, conn, 1)
	assert.Equal(t, actionRoot, msg.Action)
	assert.Empty(t, msg.Error)

	d := decodeListing(t, msg)
	assert.Equal(t, root, d.Dir)
	assert.ElementsMatch(t, []string{"a.txt", "docs"}, names(d))

	service.HandleTextMessage("", actionFilter, json.RawMessage(`{"text":"doc"}`))
	msg = await(t, conn, 2)
	d = decodeListing(t, msg)
	assert.Equal(t, "doc", d.Filter)
	assert.Equal(t, []string{"docs"}, names(d))
}

func TestBrowseService_ReadWrite(t *testing.T) {
	service, conn, root := newTestService(t)

	filePath := path.Join(root, "note.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("before"), 0644))

	service.HandleTextMessage("", actionRoot, nil)
	await(t, conn, 1)

	service.HandleTextMessage(filePath, actionWrite, json.RawMessage(`{"content":"after"}`))
	msg := await(t, conn, 2)
	assert.Equal(t, actionWrite, msg.Action)
	assert.Empty(t, msg.Error)

	service.HandleTextMessage(filePath, actionRead, nil)
	msg = await(t, conn, 3)
	assert.Empty(t, msg.Error)

	var d readData
	require.NoError(t, json.Unmarshal(msg.Data, &d))
	assert.Equal(t, "after", d.Content)
}

func TestBrowseService_Mutations(t *testing.T) {
	service, conn, root := newTestService(t)

	filePath := path.Join(root, "x.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))

	service.HandleTextMessage("", actionRoot, nil)
	await(t, conn, 1)

	service.HandleTextMessage(filePath, actionCopy, nil)
	msg := await(t, conn, 2)
	assert.Empty(t, msg.Error)
	assert.ElementsMatch(t, []string{"x.txt", "x.txt copy"}, names(decodeListing(t, msg)))

	service.HandleTextMessage(path.Join(root, "x.txt copy"), actionRename, json.RawMessage(`{"newName":"y.txt"}`))
	msg = await(t, conn, 3)
	assert.Empty(t, msg.Error)
	assert.ElementsMatch(t, []string{"x.txt", "y.txt"}, names(decodeListing(t, msg)))

	service.HandleTextMessage("", actionMkdir, json.RawMessage(`{"name":"made"}`))
	msg = await(t, conn, 4)
	assert.Empty(t, msg.Error)
	assert.ElementsMatch(t, []string{"x.txt", "y.txt", "made"}, names(decodeListing(t, msg)))

	// collision reports an error and changes nothing
	service.HandleTextMessage("", actionMkdir, json.RawMessage(`{"name":"made"}`))
	msg = await(t, conn, 5)
	assert.NotEmpty(t, msg.Error)

	service.HandleTextMessage(path.Join(root, "y.txt"), actionDelete, nil)
	msg = await(t, conn, 6)
	assert.Empty(t, msg.Error)
	assert.ElementsMatch(t, []string{"x.txt", "made"}, names(decodeListing(t, msg)))
}

func TestBrowseService_UnknownEntry(t *testing.T) {
	service, conn, root := newTestService(t)

	service.HandleTextMessage("", actionRoot, nil)
	await(t, conn, 1)

	service.HandleTextMessage(path.Join(root, "missing.txt"), actionRead, nil)
	msg := await(t, conn, 2)
	assert.NotEmpty(t, msg.Error)
}
