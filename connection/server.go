package connection

import (
	"plannerjobs/config"
	"plannerjobs/controller/notification"
	"plannerjobs/services"
	"plannerjobs/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func StartServer() {
	router := gin.Default()

	fb, err := FBConnection()
	if err != nil {
		config.Logger.Fatalf("Failed to initialize Firestore client: %v", err)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	router.Use(cors.Default())

	deps := notification.Deps{
		Store: store.NewFirestoreStore(fb),
		Push:  services.NewWebPushSenderFromEnv(),
		Mail:  services.NewHTTPDigestMailerFromEnv(),
		Log:   config.Logger,
	}
	notification.NotificationCheckController(router, deps)

	router.Run()
}
