package controller

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"filebrowser/store"
	"filebrowser/websocket"
	"filebrowser/websocket/service/browse"
	"filebrowser/websocket/service/heartbeat"
	"filebrowser/websocket/service/upload"
)

// LocalController serves the sandbox root on the local volume.
type LocalController struct {
	root string
}

func NewLocalController(root string) *LocalController {
	return &LocalController{root: root}
}

// Browse upgrades the request to a WebSocket and serves a fresh store
// session over it. The store lives exactly as long as the connection.
func (lc *LocalController) Browse(c *gin.Context) {
	wsServer, err := websocket.NewServer(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logger := log.New(log.Writer(), "[browse] ", log.LstdFlags)
	fsys := store.NewLocalFileSystem(logger)
	st := store.New(fsys, lc.root)

	browseService := browse.NewService(st)
	uploadService := upload.NewService(fsys)
	heartbeatService := heartbeat.NewService()

	wsServer.Register(browseService)
	wsServer.Register(uploadService)

	wsServer.RegisterPassive(heartbeatService)

	wsServer.Start()
}

// Download streams a file from the sandbox to the client. The requested
// path must stay inside the root.
func (lc *LocalController) Download(c *gin.Context) {
	reqPath := c.Query("path")
	if reqPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	cleaned := filepath.Clean(reqPath)
	if cleaned != lc.root && !strings.HasPrefix(cleaned, lc.root+string(filepath.Separator)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "path is outside the sandbox root"})
		return
	}

	c.FileAttachment(cleaned, filepath.Base(cleaned))
}
