// Package memstore provides an in-memory Store implementation used by unit
// tests and local runs without Firestore credentials.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"plannerjobs/model"
)

type Store struct {
	mu            sync.Mutex
	notifPrefs    map[string]model.NotificationPreference
	emailPrefs    map[string]*model.EmailPreference
	tasks         map[string]map[string]*model.Task
	milestones    map[string]map[string]*model.Milestone
	subscriptions map[string]map[string]model.PushSubscription
	notifications map[string][]*model.NotificationRecord
	loop          model.LoopControl
}

func New() *Store {
	return &Store{
		notifPrefs:    make(map[string]model.NotificationPreference),
		emailPrefs:    make(map[string]*model.EmailPreference),
		tasks:         make(map[string]map[string]*model.Task),
		milestones:    make(map[string]map[string]*model.Milestone),
		subscriptions: make(map[string]map[string]model.PushSubscription),
		notifications: make(map[string][]*model.NotificationRecord),
	}
}

func (s *Store) NotificationPreferences(ctx context.Context) ([]model.NotificationPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prefs []model.NotificationPreference
	for _, email := range sortedKeys(s.notifPrefs) {
		prefs = append(prefs, s.notifPrefs[email])
	}
	return prefs, nil
}

func (s *Store) EmailPreferences(ctx context.Context) ([]model.EmailPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prefs []model.EmailPreference
	for _, email := range sortedKeys(s.emailPrefs) {
		prefs = append(prefs, *s.emailPrefs[email])
	}
	return prefs, nil
}

func (s *Store) UpdateEmailPreference(ctx context.Context, userEmail string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pref, ok := s.emailPrefs[userEmail]
	if !ok {
		return fmt.Errorf("email preference %s not found", userEmail)
	}
	for path, value := range fields {
		switch path {
		case "lastDailySent":
			pref.LastDailySent = asTimePtr(value)
		case "lastWeeklySent":
			pref.LastWeeklySent = asTimePtr(value)
		}
	}
	return nil
}

func (s *Store) TasksForUser(ctx context.Context, userEmail string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tasks []model.Task
	for _, id := range sortedKeys(s.tasks[userEmail]) {
		tasks = append(tasks, *s.tasks[userEmail][id])
	}
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, userEmail, taskID string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[userEmail][taskID]
	if !ok {
		return fmt.Errorf("task %s not found", taskID)
	}
	for path, value := range fields {
		switch path {
		case "notifiedAt":
			task.NotifiedAt = asTimePtr(value)
		case "lastRemindedAt":
			task.LastRemindedAt = asTimePtr(value)
		}
	}
	return nil
}

func (s *Store) ActiveMilestonesForUser(ctx context.Context, userEmail string) ([]model.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var milestones []model.Milestone
	for _, id := range sortedKeys(s.milestones[userEmail]) {
		if m := s.milestones[userEmail][id]; m.IsActive {
			milestones = append(milestones, *m)
		}
	}
	return milestones, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, userEmail, milestoneID string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.milestones[userEmail][milestoneID]
	if !ok {
		return fmt.Errorf("milestone %s not found", milestoneID)
	}
	for path, value := range fields {
		if path == "lastNotifiedAt" {
			m.LastNotifiedAt = asTimePtr(value)
		}
	}
	return nil
}

func (s *Store) SubscriptionsForUser(ctx context.Context, userEmail string) ([]model.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subs []model.PushSubscription
	for _, id := range sortedKeys(s.subscriptions[userEmail]) {
		subs = append(subs, s.subscriptions[userEmail][id])
	}
	return subs, nil
}

func (s *Store) DeleteSubscription(ctx context.Context, userEmail, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscriptions[userEmail], subscriptionID)
	return nil
}

func (s *Store) HasUnreadTaskNotification(ctx context.Context, userEmail, taskID, notifType string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.notifications[userEmail] {
		if record.RelatedTaskID == taskID && !record.IsRead && record.Data.Type == notifType {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) HasMilestoneNotificationSince(ctx context.Context, userEmail, milestoneID, notificationType string, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.notifications[userEmail] {
		if record.RelatedMilestoneID == milestoneID &&
			record.Data.Type == model.NotifTypeMilestoneReminder &&
			record.Data.NotificationType == notificationType &&
			!record.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateNotification(ctx context.Context, userEmail string, record model.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[userEmail] = append(s.notifications[userEmail], &record)
	return nil
}

func (s *Store) MarkNotificationSent(ctx context.Context, userEmail, notificationID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.notifications[userEmail] {
		if record.NotificationID == notificationID {
			record.SentAt = &sentAt
			return nil
		}
	}
	return fmt.Errorf("notification %s not found", notificationID)
}

func (s *Store) LoopControl(ctx context.Context) (model.LoopControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop, nil
}

func (s *Store) SetLoopControl(ctx context.Context, running bool, updatedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop = model.LoopControl{IsLoopRunning: running, UpdatedAt: updatedAt}
	return nil
}

// Seed helpers and accessors for tests.

func (s *Store) AddNotificationPreference(pref model.NotificationPreference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifPrefs[pref.UserEmail] = pref
}

func (s *Store) AddEmailPreference(pref model.EmailPreference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailPrefs[pref.UserEmail] = &pref
}

func (s *Store) AddTask(userEmail string, task model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[userEmail] == nil {
		s.tasks[userEmail] = make(map[string]*model.Task)
	}
	s.tasks[userEmail][task.TaskID] = &task
}

func (s *Store) AddMilestone(userEmail string, m model.Milestone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.milestones[userEmail] == nil {
		s.milestones[userEmail] = make(map[string]*model.Milestone)
	}
	s.milestones[userEmail][m.MilestoneID] = &m
}

func (s *Store) AddSubscription(userEmail string, sub model.PushSubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscriptions[userEmail] == nil {
		s.subscriptions[userEmail] = make(map[string]model.PushSubscription)
	}
	s.subscriptions[userEmail][sub.SubscriptionID] = sub
}

func (s *Store) AddNotification(userEmail string, record model.NotificationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[userEmail] = append(s.notifications[userEmail], &record)
}

func (s *Store) MarkNotificationRead(userEmail, notificationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.notifications[userEmail] {
		if record.NotificationID == notificationID {
			record.IsRead = true
		}
	}
}

func (s *Store) Task(userEmail, taskID string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[userEmail][taskID]
	if !ok {
		return model.Task{}, false
	}
	return *task, true
}

func (s *Store) Milestone(userEmail, milestoneID string) (model.Milestone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.milestones[userEmail][milestoneID]
	if !ok {
		return model.Milestone{}, false
	}
	return *m, true
}

func (s *Store) EmailPreference(userEmail string) (model.EmailPreference, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pref, ok := s.emailPrefs[userEmail]
	if !ok {
		return model.EmailPreference{}, false
	}
	return *pref, true
}

func (s *Store) Notifications(userEmail string) []model.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []model.NotificationRecord
	for _, record := range s.notifications[userEmail] {
		records = append(records, *record)
	}
	return records
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asTimePtr(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	default:
		return nil
	}
}
