package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plannerjobs/dto"
	"plannerjobs/model"
	"plannerjobs/store/memstore"

	"github.com/gin-gonic/gin"
)

func newTestRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NotificationCheckController(router, deps)
	return router
}

func TestRunNotificationCheck_SingleMode(t *testing.T) {
	s := memstore.New()
	seedScanUser(s, "u@example.com")
	reminderAt := time.Now().Add(-2 * time.Hour)
	s.AddTask("u@example.com", model.Task{TaskID: "t1", Title: "Pay rent", ReminderAt: &reminderAt})
	deps, _, _ := newTestDeps(s)
	router := newTestRouter(deps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/check?mode=single", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var report dto.CycleReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.NotificationsSent != 1 || report.TotalProcessed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	// single mode must not touch the loop flag
	ctrl, _ := s.LoopControl(context.Background())
	if ctrl.IsLoopRunning {
		t.Fatal("single mode must leave the loop flag alone")
	}
}

func TestSendTestNotifications(t *testing.T) {
	s := memstore.New()
	seedScanUser(s, "subscribed@example.com")
	s.AddNotificationPreference(model.NotificationPreference{UserEmail: "disabled@example.com", Enabled: false})
	s.AddNotificationPreference(model.NotificationPreference{UserEmail: "nosubs@example.com", Enabled: true})
	deps, push, _ := newTestDeps(s)
	router := newTestRouter(deps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications/check", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		UsersNotified  int  `json:"usersNotified"`
		UsersAttempted int  `json:"usersAttempted"`
		IsLoopRunning  bool `json:"isLoopRunning"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.UsersNotified != 1 || body.UsersAttempted != 1 {
		t.Fatalf("counts: %+v", body)
	}
	if push.sentCount() != 1 {
		t.Fatalf("delivery attempts = %d, want 1", push.sentCount())
	}

	records := s.Notifications("subscribed@example.com")
	if len(records) != 1 || records[0].Data.Type != model.NotifTypeTest {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].SentAt == nil {
		t.Error("test notification should be marked sent")
	}
	if got := len(s.Notifications("disabled@example.com")); got != 0 {
		t.Errorf("disabled user got %d records", got)
	}
	if got := len(s.Notifications("nosubs@example.com")); got != 0 {
		t.Errorf("subscriptionless user got %d records", got)
	}
}

func TestStopNotificationLoop_ResetsFlag(t *testing.T) {
	s := memstore.New()
	if err := s.SetLoopControl(context.Background(), true, "2026-08-24 10:00:00"); err != nil {
		t.Fatal(err)
	}
	deps, _, _ := newTestDeps(s)
	router := newTestRouter(deps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/notifications/check", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Message != "Notification loop stopped" {
		t.Fatalf("unexpected body: %+v", body)
	}
	ctrl, _ := s.LoopControl(context.Background())
	if ctrl.IsLoopRunning {
		t.Fatal("flag must be false after the stop endpoint")
	}
}

func TestInternalAuth_TokenEnforced(t *testing.T) {
	t.Setenv("INTERNAL_AUTH_TOKEN", "s3cret")

	deps, _, _ := newTestDeps(memstore.New())
	router := newTestRouter(deps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/notifications/check", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("missing header: status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/notifications/check", nil)
	req.Header.Set("X-Internal-Auth", "s3cret")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with header: status = %d, want 200", w.Code)
	}
}
