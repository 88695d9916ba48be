package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"journal-backend/internal/config"
)

type Client struct {
	client *messaging.Client
	logger *zap.Logger
}

// NewClient initializes Firebase Cloud Messaging. Without credentials it
// returns a disabled client rather than an error.
func NewClient(ctx context.Context, cfg config.FCMConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opt option.ClientOption
	switch {
	case cfg.CredentialsPath != "":
		opt = option.WithCredentialsFile(cfg.CredentialsPath)
	case cfg.CredentialsJSON != "":
		opt = option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))
	default:
		logger.Warn("no firebase credentials configured, push notifications disabled")
		return &Client{logger: logger}, nil
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	logger.Info("firebase cloud messaging initialized")
	return &Client{client: client, logger: logger}, nil
}

// SendMulticast sends one notification to several device tokens
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if c.client == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	if len(tokens) == 0 {
		return nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "normal",
			Notification: &messaging.AndroidNotification{
				ChannelID: "journal_updates",
				Priority:  messaging.PriorityDefault,
			},
		},
	}

	response, err := c.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending multicast: %w", err)
	}

	c.logger.Debug("fcm multicast sent",
		zap.Int("success", response.SuccessCount),
		zap.Int("failure", response.FailureCount))
	return nil
}

// IsEnabled returns true if FCM client is initialized
func (c *Client) IsEnabled() bool {
	return c != nil && c.client != nil
}
