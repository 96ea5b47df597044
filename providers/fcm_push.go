package providers

import (
	"context"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
	"tourmate.app/errors"
)

// FCMPushProvider implements PushProvider on Firebase Cloud Messaging
type FCMPushProvider struct {
	messagingClient *messaging.Client
}

// NewFCMPushProvider creates a new FCM provider using the given service
// account credentials file
func NewFCMPushProvider(credentialsFile string) (*FCMPushProvider, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to initialize Firebase app", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to get messaging client", err)
	}

	slog.Info("FCM push provider initialized")
	return &FCMPushProvider{
		messagingClient: messagingClient,
	}, nil
}

// SendToDevice sends a push notification to a single device token
func (p *FCMPushProvider) SendToDevice(ctx context.Context, token string, notification PushNotification) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification.Data,
	}

	response, err := p.messagingClient.Send(ctx, message)
	if err != nil {
		return errors.NewPushError("failed to send FCM message", err)
	}

	slog.Debug("FCM message sent", "response", response)
	return nil
}

// SendToDevices sends a push notification to multiple device tokens and
// returns the tokens that failed
func (p *FCMPushProvider) SendToDevices(ctx context.Context, tokens []string, notification PushNotification) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification.Data,
	}

	response, err := p.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, errors.NewPushError("failed to send FCM multicast message", err)
	}

	slog.Debug("FCM multicast sent", "success", response.SuccessCount, "failures", response.FailureCount)

	var failedTokens []string
	for i, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[i])
			slog.Warn("FCM delivery failed for token", "error", resp.Error)
		}
	}

	return failedTokens, nil
}

// Ensure implementation satisfies the interface
var _ PushProvider = (*FCMPushProvider)(nil)

// NoopPushProvider drops every message. It stands in for FCM when no
// credentials are configured, keeping scheduling fully functional.
type NoopPushProvider struct{}

// NewNoopPushProvider creates a push provider that delivers nothing
func NewNoopPushProvider() *NoopPushProvider {
	return &NoopPushProvider{}
}

func (p *NoopPushProvider) SendToDevice(_ context.Context, _ string, _ PushNotification) error {
	return nil
}

func (p *NoopPushProvider) SendToDevices(_ context.Context, _ []string, _ PushNotification) ([]string, error) {
	return nil, nil
}

var _ PushProvider = (*NoopPushProvider)(nil)
