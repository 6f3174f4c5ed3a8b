package notification

import (
	"context"
	"sync"

	"plannerjobs/model"
	"plannerjobs/services"
	"plannerjobs/store"
	"plannerjobs/store/memstore"
)

type fakePush struct {
	mu      sync.Mutex
	sent    []services.PushPayload
	failFor map[string]error // keyed by subscription ID
}

func newFakePush() *fakePush {
	return &fakePush{failFor: make(map[string]error)}
}

func (f *fakePush) Send(ctx context.Context, sub model.PushSubscription, payload services.PushPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[sub.SubscriptionID]; ok {
		return err
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakePush) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeMailer struct {
	mu         sync.Mutex
	daily      []string
	weekly     []string
	failDaily  error
	failWeekly error
}

func (f *fakeMailer) SendDailyDigest(ctx context.Context, userEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDaily != nil {
		return f.failDaily
	}
	f.daily = append(f.daily, userEmail)
	return nil
}

func (f *fakeMailer) SendWeeklyDigest(ctx context.Context, userEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWeekly != nil {
		return f.failWeekly
	}
	f.weekly = append(f.weekly, userEmail)
	return nil
}

func newTestDeps(s store.Store) (Deps, *fakePush, *fakeMailer) {
	push := newFakePush()
	mail := &fakeMailer{}
	return Deps{Store: s, Push: push, Mail: mail}, push, mail
}

func seedScanUser(s *memstore.Store, email string) model.NotificationPreference {
	pref := model.NotificationPreference{
		UserEmail:     email,
		Enabled:       true,
		OverdueAlerts: true,
		TaskReminders: true,
	}
	s.AddNotificationPreference(pref)
	s.AddSubscription(email, model.PushSubscription{
		SubscriptionID: "sub-1",
		Endpoint:       "https://push.example.com/sub-1",
		P256dh:         "p256dh-key",
		Auth:           "auth-key",
	})
	return pref
}
