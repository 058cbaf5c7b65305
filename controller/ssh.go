package controller

import (
	"fmt"
	"log"
	"net/http"
	"path"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"filebrowser/store"
	"filebrowser/websocket"
	"filebrowser/websocket/service/browse"
	"filebrowser/websocket/service/heartbeat"
	"filebrowser/websocket/service/upload"
)

// SSHController serves sandbox roots that live on remote hosts, reached
// over SFTP on an SSH connection established up front.
type SSHController struct {
	Clients map[string]*ssh.Client
	*sync.RWMutex
}

func NewSSHController() *SSHController {
	return &SSHController{
		Clients: make(map[string]*ssh.Client),
		RWMutex: &sync.RWMutex{},
	}
}

type sshInfo struct {
	Host     string `json:"host" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Port     int    `json:"port"`
	Root     string `json:"root"`
}

// Login dials the remote host and hands back an opaque id for the
// follow-up browse and download requests.
func (sc *SSHController) Login(c *gin.Context) {
	var info sshInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if info.Port == 0 {
		info.Port = 22
	}

	config := &ssh.ClientConfig{
		User:            info.Username,
		Auth:            []ssh.AuthMethod{},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // Note: In production, use proper host key verification
	}

	if info.Password != "" {
		config.Auth = append(config.Auth, ssh.Password(info.Password))
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No authentication method provided"})
		return
	}

	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", info.Host, info.Port), config)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	id := uuid.NewString()
	sc.Lock()
	sc.Clients[id] = client
	sc.Unlock()

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// Browse upgrades the request to a WebSocket and serves a store session
// over the remote filesystem.
func (sc *SSHController) Browse(c *gin.Context) {
	sshClient, ok := sc.client(c)
	if !ok {
		return
	}

	root := c.Query("root")
	if root == "" {
		root = "/"
	}

	wsServer, err := websocket.NewServer(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logger := log.New(log.Writer(), "[browse] ", log.LstdFlags)
	fsys, err := store.NewSFTPFileSystem(sshClient, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer fsys.Close()

	st := store.New(fsys, root)

	browseService := browse.NewService(st)
	uploadService := upload.NewService(fsys)
	heartbeatService := heartbeat.NewService()

	wsServer.Register(browseService)
	wsServer.Register(uploadService)

	wsServer.RegisterPassive(heartbeatService)

	wsServer.Start()
}

// Download streams a remote file to the client.
func (sc *SSHController) Download(c *gin.Context) {
	sshClient, ok := sc.client(c)
	if !ok {
		return
	}

	reqPath := c.Query("path")
	if reqPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	logger := log.New(log.Writer(), "[download] ", log.LstdFlags)
	fsys, err := store.NewSFTPFileSystem(sshClient, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer fsys.Close()

	entry, err := fsys.Stat(reqPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if entry.IsDir {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot download a directory"})
		return
	}

	file, err := fsys.Client.Open(reqPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename=%q`, path.Base(reqPath)),
	}
	c.DataFromReader(http.StatusOK, entry.Size, "application/octet-stream", file, headers)
}

func (sc *SSHController) client(c *gin.Context) (*ssh.Client, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid SSH client ID"})
		return nil, false
	}

	sc.RLock()
	sshClient, exists := sc.Clients[id]
	sc.RUnlock()

	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid SSH client ID"})
		return nil, false
	}

	return sshClient, true
}
