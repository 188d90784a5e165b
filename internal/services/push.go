package services

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Message is the rendered payload handed to the push transport.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// TokenError is one failed delivery within an otherwise completed batch send.
type TokenError struct {
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

// BatchResult is the validated shape of one multicast response. Per-token
// outcomes are kept so the caller can update token health.
type BatchResult struct {
	SuccessCount int
	FailureCount int
	Succeeded    []string
	Failed       []TokenError
}

// Transport delivers a rendered message to a batch of device tokens. An error
// return means the whole attempt failed at the transport level (retryable);
// individual token failures are reported inside the result.
type Transport interface {
	Send(ctx context.Context, tokens []string, msg Message) (*BatchResult, error)
}

// FCMTransport sends through Firebase Cloud Messaging multicast.
type FCMTransport struct {
	client *messaging.Client
}

// NewFCMTransport initializes the Firebase app from a service-account file.
func NewFCMTransport(ctx context.Context, serviceAccountPath string) (*FCMTransport, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &FCMTransport{client: client}, nil
}

func (t *FCMTransport) Send(ctx context.Context, tokens []string, msg Message) (*BatchResult, error) {
	resp, err := t.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("fcm multicast: %w", err)
	}

	result := &BatchResult{
		SuccessCount: resp.SuccessCount,
		FailureCount: resp.FailureCount,
	}
	for i, r := range resp.Responses {
		if r.Success {
			result.Succeeded = append(result.Succeeded, tokens[i])
		} else {
			reason := "unknown"
			if r.Error != nil {
				reason = r.Error.Error()
			}
			result.Failed = append(result.Failed, TokenError{Token: tokens[i], Reason: reason})
		}
	}
	return result, nil
}

// DisabledTransport is the dev-mode transport used when push is turned off.
// It logs the message and reports every token as delivered.
type DisabledTransport struct{}

func (DisabledTransport) Send(ctx context.Context, tokens []string, msg Message) (*BatchResult, error) {
	slog.Debug("push disabled, dropping message", "title", msg.Title, "tokens", len(tokens))
	return &BatchResult{SuccessCount: len(tokens), Succeeded: tokens}, nil
}
