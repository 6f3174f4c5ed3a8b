package notification

import (
	"context"
	"testing"
	"time"

	"plannerjobs/model"
	"plannerjobs/store/memstore"
)

func fastLoopConfig() LoopConfig {
	return LoopConfig{
		MaxRunTime: 200 * time.Millisecond,
		CycleDelay: 10 * time.Millisecond,
		ErrorDelay: 5 * time.Millisecond,
		StopMargin: 5 * time.Millisecond,
	}
}

func TestStartNotificationLoop_AlreadyRunning(t *testing.T) {
	s := memstore.New()
	if err := s.SetLoopControl(context.Background(), true, "2026-08-24 10:00:00"); err != nil {
		t.Fatal(err)
	}
	deps, push, _ := newTestDeps(s)

	result := StartNotificationLoop(context.Background(), deps, fastLoopConfig())

	if !result.Success || result.Message != "Loop already running" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Cycles != 0 || push.sentCount() != 0 {
		t.Fatalf("no cycles may run while the flag is set: %+v", result)
	}
	// the flag belongs to the other invocation and must be left alone
	ctrl, _ := s.LoopControl(context.Background())
	if !ctrl.IsLoopRunning {
		t.Fatal("flag must remain set")
	}
}

func TestStartNotificationLoop_RunsCyclesAndResetsFlag(t *testing.T) {
	s := memstore.New()
	seedScanUser(s, "u@example.com")
	reminderAt := time.Now().Add(-2 * time.Hour)
	s.AddTask("u@example.com", model.Task{TaskID: "t1", Title: "Pay rent", ReminderAt: &reminderAt})
	deps, _, _ := newTestDeps(s)

	result := StartNotificationLoop(context.Background(), deps, fastLoopConfig())

	if !result.Success {
		t.Fatalf("loop should succeed: %+v", result)
	}
	if result.Cycles < 1 {
		t.Fatalf("at least one cycle expected, got %d", result.Cycles)
	}
	// the first cycle alerts, later ones hit the cooldown
	if result.NotificationsSent != 1 {
		t.Fatalf("NotificationsSent = %d, want 1", result.NotificationsSent)
	}
	ctrl, _ := s.LoopControl(context.Background())
	if ctrl.IsLoopRunning {
		t.Fatal("flag must be reset when the loop returns")
	}
	if result.StartedAt == "" || result.EndedAt == "" {
		t.Fatalf("timestamps missing: %+v", result)
	}
}

func TestStartNotificationLoop_SingleCycleWhenBudgetTight(t *testing.T) {
	s := memstore.New()
	deps, _, _ := newTestDeps(s)

	cfg := fastLoopConfig()
	cfg.StopMargin = cfg.MaxRunTime * 2 // remaining budget is always under the margin

	result := StartNotificationLoop(context.Background(), deps, cfg)

	if result.Cycles != 1 {
		t.Fatalf("Cycles = %d, want exactly 1", result.Cycles)
	}
	if result.Message != "Run time budget exhausted" {
		t.Fatalf("Message = %q", result.Message)
	}
}

func TestStartNotificationLoop_ExternalStop(t *testing.T) {
	s := memstore.New()
	deps, _, _ := newTestDeps(s)

	cfg := fastLoopConfig()
	cfg.MaxRunTime = 2 * time.Second

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.SetLoopControl(context.Background(), false, "stopped by test")
	}()

	start := time.Now()
	result := StartNotificationLoop(context.Background(), deps, cfg)

	if result.Message != "Loop stopped externally" {
		t.Fatalf("Message = %q", result.Message)
	}
	if time.Since(start) >= cfg.MaxRunTime {
		t.Fatal("external stop should end the loop before the budget expires")
	}
}
