package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const DefaultFCMTopic = "daily-digest"

type FCMConfig struct {
	ProjectID       string
	CredentialsFile string
	// Topic receives every notification. Empty means DefaultFCMTopic.
	Topic string
}

// messagingClient is the subset of *messaging.Client used here.
type messagingClient interface {
	Send(ctx context.Context, m *messaging.Message) (string, error)
}

// FCM sends notifications to a Firebase Cloud Messaging topic.
type FCM struct {
	client messagingClient
	topic  string
}

func NewFCM(ctx context.Context, cfg FCMConfig) (*FCM, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("fcm: project id required")
	}
	var opts []option.ClientOption
	if f := strings.TrimSpace(cfg.CredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("fcm: init app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm: messaging client: %w", err)
	}
	return newFCM(client, cfg.Topic), nil
}

func newFCM(client messagingClient, topic string) *FCM {
	topic = strings.TrimPrefix(strings.TrimSpace(topic), "/topics/")
	if topic == "" {
		topic = DefaultFCMTopic
	}
	return &FCM{client: client, topic: topic}
}

func (f *FCM) Name() string { return "fcm" }

func (f *FCM) Send(ctx context.Context, p Payload) error {
	_, err := f.client.Send(ctx, f.message(p))
	return err
}

func (f *FCM) message(p Payload) *messaging.Message {
	return &messaging.Message{
		Topic: f.topic,
		Notification: &messaging.Notification{
			Title:    p.Title,
			Body:     p.Body,
			ImageURL: p.Image,
		},
	}
}
