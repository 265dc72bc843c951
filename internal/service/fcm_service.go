package service

import (
	"context"
	"encoding/json"
	"fmt"

	"crimewatch/internal/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(ctx context.Context, serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	log := logger.Component("fcm")
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Error("init firebase app", "err", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Error("init messaging client", "err", err)
		return nil
	}
	return &FCMService{client: client}
}

// Send sends a high priority alert to one device token.
func (s *FCMService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "geofence_alerts",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

// StringifyData converts a notification payload to FCM's string-only data map.
func StringifyData(notifType string, data map[string]interface{}) map[string]string {
	out := map[string]string{"type": notifType}
	for k, v := range data {
		switch val := v.(type) {
		case string:
			out[k] = val
		case uint:
			out[k] = fmt.Sprintf("%d", val)
		case int:
			out[k] = fmt.Sprintf("%d", val)
		case float64:
			out[k] = fmt.Sprintf("%g", val)
		default:
			b, _ := json.Marshal(v)
			out[k] = string(b)
		}
	}
	return out
}

// FCMChannel delivers push jobs to the user's registered device.
type FCMChannel struct {
	FCM   *FCMService
	Users UserDirectory
}

func (FCMChannel) Name() string { return "fcm" }

func (c FCMChannel) Deliver(ctx context.Context, job PushJob) (bool, error) {
	if c.FCM == nil {
		return false, nil
	}
	u, err := c.Users.GetByID(ctx, job.UserID)
	if err != nil {
		return false, err
	}
	if u.FCMToken == "" {
		return false, nil
	}
	if err := c.FCM.Send(ctx, u.FCMToken, job.Title, job.Body, StringifyData(job.Type, job.Data)); err != nil {
		return false, err
	}
	return true, nil
}
