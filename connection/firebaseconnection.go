package connection

import (
	"context"
	"fmt"
	"os"

	"plannerjobs/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func FBConnection() (*firestore.Client, error) {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		config.Logger.Warn("No .env file found or failed to load") // Use only in dev
	}

	// Get the path to the service account key from the environment variable
	serviceAccountKeyPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if serviceAccountKeyPath == "" {
		return nil, fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS is not set")
	}

	ctx := context.Background()

	// Initialize Firebase app with Firestore
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountKeyPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	config.Logger.Info("Firestore connection successful")
	return client, nil
}
