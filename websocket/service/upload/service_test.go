package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
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

func (r *recorderConn) last() *ws.ServiceMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return nil
	}
	return r.messages[len(r.messages)-1]
}

func newTestService(t *testing.T) (*UploadService, *recorderConn, string) {
	t.Helper()
	root := t.TempDir()
	service := NewService(&store.LocalFileSystem{})
	conn := &recorderConn{}
	service.conn = conn
	return service, conn, root
}

func startPayload(p string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"path":%q}`, p))
}

func TestUploadService_Roundtrip(t *testing.T) {
	service, conn, root := newTestService(t)

	dest := path.Join(root, "upload.bin")
	service.HandleTextMessage("s1", actionStart, startPayload(dest))
	require.Empty(t, conn.last().Error)

	chunks := [][]byte{[]byte("first "), []byte("second "), []byte("third")}
	hasher := sha256.New()
	for _, chunk := range chunks {
		service.HandleTextMessage("s1", actionChunk, nil)
		service.HandleBinaryMessage(chunk)
		require.Empty(t, conn.last().Error)
		hasher.Write(chunk)
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	service.HandleTextMessage("s1", actionComplete, json.RawMessage(fmt.Sprintf(`{"digest":%q}`, digest)))

	msg := conn.last()
	assert.Equal(t, actionComplete, msg.Action)
	assert.Empty(t, msg.Error)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("first second third"), content)
}

func TestUploadService_DigestMismatch(t *testing.T) {
	service, conn, root := newTestService(t)

	dest := path.Join(root, "corrupt.bin")
	service.HandleTextMessage("s1", actionStart, startPayload(dest))

	service.HandleTextMessage("s1", actionChunk, nil)
	service.HandleBinaryMessage([]byte("payload"))

	service.HandleTextMessage("s1", actionComplete, json.RawMessage(`{"digest":"deadbeef"}`))

	msg := conn.last()
	assert.NotEmpty(t, msg.Error)

	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadService_ExistingDestination(t *testing.T) {
	service, conn, root := newTestService(t)

	dest := path.Join(root, "taken.txt")
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0644))

	service.HandleTextMessage("s1", actionStart, startPayload(dest))
	assert.NotEmpty(t, conn.last().Error)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("already here"), content)
}

func TestUploadService_Cancel(t *testing.T) {
	service, conn, root := newTestService(t)

	dest := path.Join(root, "partial.bin")
	service.HandleTextMessage("s1", actionStart, startPayload(dest))

	service.HandleTextMessage("s1", actionChunk, nil)
	service.HandleBinaryMessage([]byte("half written"))

	service.HandleTextMessage("s1", actionCancel, nil)

	msg := conn.last()
	assert.Equal(t, actionCancel, msg.Action)
	assert.Empty(t, msg.Error)

	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadService_CleanupRemovesPartialFiles(t *testing.T) {
	service, _, root := newTestService(t)

	dest := path.Join(root, "orphan.bin")
	service.HandleTextMessage("s1", actionStart, startPayload(dest))

	service.Cleanup(fmt.Errorf("connection dropped"))

	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadService_ChunkAnnouncementAfterCleanup(t *testing.T) {
	service, _, root := newTestService(t)

	dest := path.Join(root, "late.bin")
	service.HandleTextMessage("s1", actionStart, startPayload(dest))

	service.Cleanup(fmt.Errorf("connection dropped"))

	// the dispatch loop may still deliver buffered announcements
	// after the connection is gone
	assert.NotPanics(t, func() {
		service.HandleTextMessage("s1", actionChunk, nil)
	})
}

func TestUploadService_BinaryFrameAfterCleanup(t *testing.T) {
	service, _, _ := newTestService(t)

	service.Cleanup(fmt.Errorf("connection dropped"))

	released := make(chan struct{})
	go func() {
		service.HandleBinaryMessage([]byte("unannounced frame"))
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("binary frame handler did not return after cleanup")
	}
}
