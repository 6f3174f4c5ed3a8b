package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"plannerjobs/model"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// PushPayload is the JSON body handed to the push transport. The service
// worker on the client side reads Data to route clicks.
type PushPayload struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Icon  string                 `json:"icon,omitempty"`
	Badge string                 `json:"badge,omitempty"`
	Tag   string                 `json:"tag,omitempty"`
	Data  model.NotificationData `json:"data"`
}

// PushSender delivers one payload to one subscription.
type PushSender interface {
	Send(ctx context.Context, sub model.PushSubscription, payload PushPayload) error
}

// WebPushSender sends VAPID-signed Web Push messages.
type WebPushSender struct {
	Subject    string
	PublicKey  string
	PrivateKey string
	TTL        int
}

func NewWebPushSenderFromEnv() *WebPushSender {
	return &WebPushSender{
		Subject:    os.Getenv("VAPID_SUBJECT"),
		PublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		PrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		TTL:        60,
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub model.PushSubscription, payload PushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}
	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		Subscriber:      s.Subject,
		VAPIDPublicKey:  s.PublicKey,
		VAPIDPrivateKey: s.PrivateKey,
		TTL:             s.TTL,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// IsSubscriptionGone reports whether a delivery failure means the
// subscription is permanently dead and must be deleted.
func IsSubscriptionGone(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "410") ||
		strings.Contains(msg, http.StatusText(http.StatusGone))
}
