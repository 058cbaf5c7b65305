package websocket

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	timeoutName = "FILEBROWSER_CONNECTION_TIMEOUT"
)

var (
	connectionTimeout = time.Duration(getEnvTimeout()) * time.Minute
)

func getEnvTimeout() int {
	if timeout := os.Getenv(timeoutName); timeout == "" {
		log.Printf("$%s not set, default to 5 minutes", timeoutName)
	} else {
		timeout, err := strconv.Atoi(timeout)
		if err == nil {
			return timeout
		}
		log.Printf("$%s (%v) is not a valid integer, default to 5 minutes", timeoutName, timeout)
	}

	return 5
}
