package main

import (
	"log"
	"plannerjobs/config"
	"plannerjobs/connection"

	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	if err := config.InitLogger(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer config.Logger.Sync()
	connection.StartServer()
}
