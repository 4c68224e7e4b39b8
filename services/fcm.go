package services

import (
	"context"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService sends push notifications through Firebase Cloud Messaging.
// Push is optional: without credentials the service stays a no-op and
// in-app notifications still work.
type FCMService struct {
	client *messaging.Client
}

func NewFCMService() (*FCMService, error) {
	service := &FCMService{}

	credentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
	if credentialsFile == "" {
		credentialsFile = "firebase-service-account-key.json"
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("Firebase app not initialized: %v (push notifications disabled)", err)
		return service, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("Firebase messaging client not initialized: %v (push notifications disabled)", err)
		return service, nil
	}

	service.client = client
	log.Println("FCM Service: Firebase messaging initialized")
	return service, nil
}

// IsEnabled reports whether push delivery is configured
func (s *FCMService) IsEnabled() bool {
	return s.client != nil
}

// SendPush delivers one push message to a device token
func (s *FCMService) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	if s.client == nil {
		return nil
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	response, err := s.client.Send(ctx, message)
	if err != nil {
		return err
	}
	log.Printf("FCM: sent message %s", response)
	return nil
}
