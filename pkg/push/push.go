package push

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Notification is a single push message addressed to a device token.
type Notification struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Notifier defines the interface for a push notification dispatcher.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type fcmClient struct {
	messaging *messaging.Client
}

// serviceAccount covers the fields a usable FCM credential must carry.
type serviceAccount struct {
	Type       string `json:"type"`
	ProjectID  string `json:"project_id"`
	PrivateKey string `json:"private_key"`
	Email      string `json:"client_email"`
}

// ValidateCredentials checks that the given service account JSON is well
// formed and complete. It rejects malformed input outright instead of
// attempting any repair, so a bad deployment secret fails at startup with a
// clear diagnostic.
func ValidateCredentials(credentialsJSON string) error {
	if credentialsJSON == "" {
		return fmt.Errorf("firebase service account is empty")
	}

	var sa serviceAccount
	if err := json.Unmarshal([]byte(credentialsJSON), &sa); err != nil {
		return fmt.Errorf("firebase service account is not valid JSON: %w", err)
	}
	if sa.Type != "service_account" {
		return fmt.Errorf("firebase service account has unexpected type %q", sa.Type)
	}
	if sa.ProjectID == "" || sa.PrivateKey == "" || sa.Email == "" {
		return fmt.Errorf("firebase service account is missing project_id, private_key or client_email")
	}

	return nil
}

// NewFCMClient creates a Firebase Cloud Messaging notifier from a service
// account JSON string.
func NewFCMClient(ctx context.Context, credentialsJSON string) (Notifier, error) {
	if err := ValidateCredentials(credentialsJSON); err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM client: %w", err)
	}

	return &fcmClient{messaging: client}, nil
}

// Send delivers a single notification to the device token in n.
func (c *fcmClient) Send(ctx context.Context, n Notification) error {
	msg := &messaging.Message{
		Token: n.Token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
	}

	if _, err := c.messaging.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}

	return nil
}
