package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"filebrowser/controller"
)

func SetupRoutes(r *gin.Engine, root string) {
	browse := r.Group("/browse")
	{
		local := controller.NewLocalController(root)
		browse.GET("/local", local.Browse)
		browse.GET("/local/download", local.Download)

		sshController := controller.NewSSHController()
		browse.POST("/ssh", sshController.Login)
		browse.GET("/ssh/:id", sshController.Browse)
		browse.GET("/ssh/:id/download", sshController.Download)
	}
}

// Start serves the browse API until the listener fails.
func Start(port uint, root string) error {
	r := gin.Default()
	SetupRoutes(r, root)
	return r.Run(fmt.Sprintf(":%d", port))
}
