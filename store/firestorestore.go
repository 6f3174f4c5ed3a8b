package store

import (
	"context"
	"fmt"
	"time"

	"plannerjobs/model"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	notificationPrefsCollection = "notificationPreferences"
	emailPrefsCollection        = "emailPreferences"
	usersCollection             = "users"
	tasksSubcollection          = "tasks"
	milestonesSubcollection     = "milestones"
	notificationsSubcollection  = "notifications"
	subscriptionsSubcollection  = "pushSubscriptions"
	loopControlDocPath          = "system/notificationLoop"
)

// FirestoreStore implements Store against the planner's Firestore project.
// Documents are decoded from their raw map form so that every timestamp-like
// field goes through NormalizeTimestamp before business logic sees it.
type FirestoreStore struct {
	Client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{Client: client}
}

func (s *FirestoreStore) NotificationPreferences(ctx context.Context) ([]model.NotificationPreference, error) {
	iter := s.Client.Collection(notificationPrefsCollection).Documents(ctx)
	defer iter.Stop()

	var prefs []model.NotificationPreference
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list notification preferences: %w", err)
		}
		prefs = append(prefs, decodeNotificationPreference(doc.Ref.ID, doc.Data()))
	}
	return prefs, nil
}

func (s *FirestoreStore) EmailPreferences(ctx context.Context) ([]model.EmailPreference, error) {
	iter := s.Client.Collection(emailPrefsCollection).Documents(ctx)
	defer iter.Stop()

	var prefs []model.EmailPreference
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list email preferences: %w", err)
		}
		prefs = append(prefs, decodeEmailPreference(doc.Ref.ID, doc.Data()))
	}
	return prefs, nil
}

func (s *FirestoreStore) UpdateEmailPreference(ctx context.Context, userEmail string, fields map[string]interface{}) error {
	_, err := s.Client.Collection(emailPrefsCollection).Doc(userEmail).Update(ctx, toUpdates(fields))
	return err
}

func (s *FirestoreStore) TasksForUser(ctx context.Context, userEmail string) ([]model.Task, error) {
	iter := s.userDoc(userEmail).Collection(tasksSubcollection).Documents(ctx)
	defer iter.Stop()

	var tasks []model.Task
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list tasks for %s: %w", userEmail, err)
		}
		tasks = append(tasks, decodeTask(doc.Ref.ID, doc.Data()))
	}
	return tasks, nil
}

func (s *FirestoreStore) UpdateTask(ctx context.Context, userEmail, taskID string, fields map[string]interface{}) error {
	_, err := s.userDoc(userEmail).Collection(tasksSubcollection).Doc(taskID).Update(ctx, toUpdates(fields))
	return err
}

func (s *FirestoreStore) ActiveMilestonesForUser(ctx context.Context, userEmail string) ([]model.Milestone, error) {
	query := s.userDoc(userEmail).Collection(milestonesSubcollection).Where("isActive", "==", true)
	iter := query.Documents(ctx)
	defer iter.Stop()

	var milestones []model.Milestone
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list milestones for %s: %w", userEmail, err)
		}
		milestones = append(milestones, decodeMilestone(doc.Ref.ID, doc.Data()))
	}
	return milestones, nil
}

func (s *FirestoreStore) UpdateMilestone(ctx context.Context, userEmail, milestoneID string, fields map[string]interface{}) error {
	_, err := s.userDoc(userEmail).Collection(milestonesSubcollection).Doc(milestoneID).Update(ctx, toUpdates(fields))
	return err
}

func (s *FirestoreStore) SubscriptionsForUser(ctx context.Context, userEmail string) ([]model.PushSubscription, error) {
	iter := s.userDoc(userEmail).Collection(subscriptionsSubcollection).Documents(ctx)
	defer iter.Stop()

	var subs []model.PushSubscription
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list subscriptions for %s: %w", userEmail, err)
		}
		var sub model.PushSubscription
		if err := doc.DataTo(&sub); err != nil {
			continue
		}
		sub.SubscriptionID = doc.Ref.ID
		subs = append(subs, sub)
	}
	return subs, nil
}

func (s *FirestoreStore) DeleteSubscription(ctx context.Context, userEmail, subscriptionID string) error {
	_, err := s.userDoc(userEmail).Collection(subscriptionsSubcollection).Doc(subscriptionID).Delete(ctx)
	return err
}

func (s *FirestoreStore) HasUnreadTaskNotification(ctx context.Context, userEmail, taskID, notifType string) (bool, error) {
	query := s.userDoc(userEmail).Collection(notificationsSubcollection).
		Where("relatedTaskId", "==", taskID).
		Where("isRead", "==", false).
		Where("data.type", "==", notifType).
		Limit(1)
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

func (s *FirestoreStore) HasMilestoneNotificationSince(ctx context.Context, userEmail, milestoneID, notificationType string, since time.Time) (bool, error) {
	query := s.userDoc(userEmail).Collection(notificationsSubcollection).
		Where("relatedMilestoneId", "==", milestoneID).
		Where("data.type", "==", model.NotifTypeMilestoneReminder).
		Where("data.notificationType", "==", notificationType).
		Where("createdAt", ">=", since).
		Limit(1)
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

func (s *FirestoreStore) CreateNotification(ctx context.Context, userEmail string, record model.NotificationRecord) error {
	_, err := s.userDoc(userEmail).Collection(notificationsSubcollection).Doc(record.NotificationID).Set(ctx, record)
	return err
}

func (s *FirestoreStore) MarkNotificationSent(ctx context.Context, userEmail, notificationID string, sentAt time.Time) error {
	_, err := s.userDoc(userEmail).Collection(notificationsSubcollection).Doc(notificationID).
		Update(ctx, []firestore.Update{{Path: "sentAt", Value: sentAt}})
	return err
}

func (s *FirestoreStore) LoopControl(ctx context.Context) (model.LoopControl, error) {
	doc, err := s.Client.Doc(loopControlDocPath).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.LoopControl{}, nil
		}
		return model.LoopControl{}, err
	}
	var ctrl model.LoopControl
	if err := doc.DataTo(&ctrl); err != nil {
		return model.LoopControl{}, err
	}
	return ctrl, nil
}

func (s *FirestoreStore) SetLoopControl(ctx context.Context, running bool, updatedAt string) error {
	_, err := s.Client.Doc(loopControlDocPath).Set(ctx, map[string]interface{}{
		"isLoopRunning": running,
		"updatedAt":     updatedAt,
	})
	return err
}

func (s *FirestoreStore) userDoc(userEmail string) *firestore.DocumentRef {
	return s.Client.Collection(usersCollection).Doc(userEmail)
}

func toUpdates(fields map[string]interface{}) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	return updates
}

func decodeNotificationPreference(id string, data map[string]interface{}) model.NotificationPreference {
	pref := model.NotificationPreference{UserEmail: id}
	pref.Enabled, _ = data["enabled"].(bool)
	pref.OverdueAlerts, _ = data["overdueAlerts"].(bool)
	pref.TaskReminders, _ = data["taskReminders"].(bool)
	pref.QuietHours = decodeQuietHours(data["quietHours"])
	return pref
}

func decodeEmailPreference(id string, data map[string]interface{}) model.EmailPreference {
	pref := model.EmailPreference{UserEmail: id}
	pref.DailyDigest, _ = data["dailyDigest"].(bool)
	pref.WeeklyDigest, _ = data["weeklyDigest"].(bool)
	pref.DailyDigestTime, _ = data["dailyDigestTime"].(string)
	if pref.DailyDigestTime == "" {
		pref.DailyDigestTime = "09:00"
	}
	pref.DigestDay, _ = data["digestDay"].(string)
	if pref.DigestDay == "" {
		pref.DigestDay = "monday"
	}
	pref.QuietHours = decodeQuietHours(data["quietHours"])
	pref.LastDailySent = NormalizeTimestamp(data["lastDailySent"])
	pref.LastWeeklySent = NormalizeTimestamp(data["lastWeeklySent"])
	return pref
}

func decodeQuietHours(v interface{}) *model.QuietHoursConfig {
	data, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	cfg := &model.QuietHoursConfig{}
	cfg.Enabled, _ = data["enabled"].(bool)
	cfg.Start, _ = data["start"].(string)
	cfg.End, _ = data["end"].(string)
	return cfg
}

func decodeTask(id string, data map[string]interface{}) model.Task {
	task := model.Task{TaskID: id}
	task.Title, _ = data["title"].(string)
	task.ReminderAt = NormalizeTimestamp(data["reminderAt"])
	task.CompletedAt = NormalizeTimestamp(data["completedAt"])
	task.NotifiedAt = NormalizeTimestamp(data["notifiedAt"])
	task.LastRemindedAt = NormalizeTimestamp(data["lastRemindedAt"])
	task.OnlyNotifyAtReminder, _ = data["onlyNotifyAtReminder"].(bool)
	return task
}

func decodeMilestone(id string, data map[string]interface{}) model.Milestone {
	m := model.Milestone{MilestoneID: id}
	m.Title, _ = data["title"].(string)
	m.Type, _ = data["type"].(string)
	m.Icon, _ = data["icon"].(string)
	m.IsActive, _ = data["isActive"].(bool)
	m.IsRecurring, _ = data["isRecurring"].(bool)
	m.OriginalDate = NormalizeTimestamp(data["originalDate"])
	m.LastNotifiedAt = NormalizeTimestamp(data["lastNotifiedAt"])
	if settings, ok := data["notificationSettings"].(map[string]interface{}); ok {
		m.NotificationSettings.OnTheDay, _ = settings["onTheDay"].(bool)
		m.NotificationSettings.OneDayBefore, _ = settings["oneDayBefore"].(bool)
		m.NotificationSettings.ThreeDaysBefore, _ = settings["threeDaysBefore"].(bool)
		m.NotificationSettings.OneWeekBefore, _ = settings["oneWeekBefore"].(bool)
		m.NotificationSettings.OneMonthBefore, _ = settings["oneMonthBefore"].(bool)
	}
	return m
}
