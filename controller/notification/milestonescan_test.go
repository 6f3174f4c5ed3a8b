package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"plannerjobs/model"
	"plannerjobs/store/memstore"
)

func TestDaysUntilAnniversary(t *testing.T) {
	original := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC), 2},   // two days before this year's
		{time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), 0},    // the day itself
		{time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), 364},  // rolls to next year's
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 28},
	}
	for _, tc := range cases {
		if got := daysUntilAnniversary(original, tc.now); got != tc.want {
			t.Errorf("daysUntilAnniversary(now=%s) = %d, want %d", tc.now.Format("2006-01-02"), got, tc.want)
		}
	}

	if got := daysUntilAnniversary(original, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)); got <= 300 {
		t.Errorf("after the anniversary the next one is far out, got %d", got)
	}
}

func TestMilestoneNotificationType(t *testing.T) {
	all := model.MilestoneNotificationSettings{OnTheDay: true, OneDayBefore: true, ThreeDaysBefore: true, OneWeekBefore: true, OneMonthBefore: true}

	cases := []struct {
		days int
		want string
	}{
		{0, model.MilestoneOnTheDay},
		{1, model.MilestoneOneDayBefore},
		{3, model.MilestoneThreeDaysBefore},
		{7, model.MilestoneOneWeekBefore},
		{30, model.MilestoneOneMonthBefore},
	}
	for _, tc := range cases {
		got, ok := milestoneNotificationType(all, tc.days)
		if !ok || got != tc.want {
			t.Errorf("daysUntil=%d -> (%q, %v), want %q", tc.days, got, ok, tc.want)
		}
	}

	// offsets outside the fixed thresholds never trigger
	for _, days := range []int{2, 4, 6, 8, 14, 29, 31, 100} {
		if _, ok := milestoneNotificationType(all, days); ok {
			t.Errorf("daysUntil=%d must not trigger", days)
		}
	}

	// each threshold is gated by its own setting
	if _, ok := milestoneNotificationType(model.MilestoneNotificationSettings{OneDayBefore: true}, 3); ok {
		t.Error("threeDaysBefore disabled must not trigger at daysUntil=3")
	}
}

func TestScanUserMilestones_SendsAndStamps(t *testing.T) {
	s := memstore.New()
	pref := seedScanUser(s, "u@example.com")
	original := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.AddMilestone("u@example.com", model.Milestone{
		MilestoneID:          "m1",
		Title:                "Sober",
		IsActive:             true,
		IsRecurring:          true,
		OriginalDate:         &original,
		NotificationSettings: model.MilestoneNotificationSettings{ThreeDaysBefore: true},
	})
	deps, push, _ := newTestDeps(s)
	now := time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC) // three days before March 1

	detail := ScanUserNotifications(context.Background(), deps, pref, now)

	if detail.MilestonesSent != 1 || push.sentCount() != 1 {
		t.Fatalf("MilestonesSent = %d, deliveries = %d", detail.MilestonesSent, push.sentCount())
	}
	records := s.Notifications("u@example.com")
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	record := records[0]
	if record.Data.Type != model.NotifTypeMilestoneReminder || record.Data.NotificationType != model.MilestoneThreeDaysBefore {
		t.Errorf("unexpected record data: %+v", record.Data)
	}
	if !strings.Contains(record.Body, "3 days until Sober") {
		t.Errorf("unexpected body %q", record.Body)
	}
	m, _ := s.Milestone("u@example.com", "m1")
	if m.LastNotifiedAt == nil || !m.LastNotifiedAt.Equal(now) {
		t.Errorf("LastNotifiedAt = %v, want %v", m.LastNotifiedAt, now)
	}
}

func TestScanUserMilestones_OnTheDayBodyCountsThisAnniversary(t *testing.T) {
	s := memstore.New()
	pref := seedScanUser(s, "u@example.com")
	original := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.AddMilestone("u@example.com", model.Milestone{
		MilestoneID:          "m1",
		Title:                "Sober",
		IsActive:             true,
		IsRecurring:          true,
		OriginalDate:         &original,
		NotificationSettings: model.MilestoneNotificationSettings{OnTheDay: true},
	})
	deps, _, _ := newTestDeps(s)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ScanUserNotifications(context.Background(), deps, pref, now)

	records := s.Notifications("u@example.com")
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	// 2024 -> 2026 is the 2nd anniversary
	if !strings.Contains(records[0].Body, "2 years") || !strings.Contains(records[0].Body, "today") {
		t.Errorf("unexpected body %q", records[0].Body)
	}
}

func TestScanUserMilestones_OncePerTypePerDay(t *testing.T) {
	s := memstore.New()
	pref := seedScanUser(s, "u@example.com")
	original := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.AddMilestone("u@example.com", model.Milestone{
		MilestoneID:          "m1",
		Title:                "Sober",
		IsActive:             true,
		IsRecurring:          true,
		OriginalDate:         &original,
		NotificationSettings: model.MilestoneNotificationSettings{OnTheDay: true},
	})
	deps, _, _ := newTestDeps(s)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := ScanUserNotifications(context.Background(), deps, pref, now)
	// unlike task alerts, reading the record does not re-arm the milestone
	s.MarkNotificationRead("u@example.com", s.Notifications("u@example.com")[0].NotificationID)
	second := ScanUserNotifications(context.Background(), deps, pref, now.Add(2*time.Hour))

	if first.MilestonesSent != 1 || second.MilestonesSent != 0 {
		t.Fatalf("MilestonesSent = %d then %d, want 1 then 0", first.MilestonesSent, second.MilestonesSent)
	}
	if got := len(s.Notifications("u@example.com")); got != 1 {
		t.Fatalf("records = %d, want 1", got)
	}
}

func TestScanUserMilestones_NonRecurringNeverAlerts(t *testing.T) {
	s := memstore.New()
	pref := seedScanUser(s, "u@example.com")
	original := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.AddMilestone("u@example.com", model.Milestone{
		MilestoneID:          "m1",
		Title:                "One-off",
		IsActive:             true,
		IsRecurring:          false,
		OriginalDate:         &original,
		NotificationSettings: model.MilestoneNotificationSettings{OnTheDay: true, OneDayBefore: true, ThreeDaysBefore: true, OneWeekBefore: true, OneMonthBefore: true},
	})
	deps, push, _ := newTestDeps(s)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	detail := ScanUserNotifications(context.Background(), deps, pref, now)

	if detail.MilestonesSent != 0 || push.sentCount() != 0 {
		t.Fatalf("non-recurring milestones must not alert: %+v", detail)
	}
}
