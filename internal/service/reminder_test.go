package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dayline/dayline/internal/domain"
	"go.uber.org/zap"
)

type mockSender struct {
	sent    []int64
	failFor map[int64]error
}

func (m *mockSender) SendText(ctx context.Context, chatID int64, text string) error {
	if err, ok := m.failFor[chatID]; ok {
		return err
	}
	m.sent = append(m.sent, chatID)
	return nil
}

func newReminderFixture(t *testing.T) (*ReminderService, *mockProfileStore, *mockRecordStore, *mockSender) {
	t.Helper()
	profiles := newMockProfileStore()
	records := newMockRecordStore()
	sender := &mockSender{failFor: make(map[int64]error)}
	clock := &fakeClock{now: eveningUTC}
	logger := zap.NewNop()

	sessions := NewSessionService(records, clock, 5, 21, 0, logger)
	flow := NewFlowService(profiles, records, sessions,
		NewAnalyzerService(logger), NewRecommendationService(logger),
		clock, 30, 21, 0, logger)

	// High rate so tests never wait on the limiter.
	svc := NewReminderService(profiles, records, sessions, flow, sender, clock, 5, 21, 0, 1000, logger)
	return svc, profiles, records, sender
}

func addProfile(profiles *mockProfileStore, chatID int64) {
	profiles.profiles[chatID] = &domain.UserProfile{ChatID: chatID, FullName: "User", Age: 30}
}

func TestReminderSweepSkipsSubmitted(t *testing.T) {
	svc, profiles, records, sender := newReminderFixture(t)
	addProfile(profiles, 1)
	addProfile(profiles, 2)

	// eveningUTC is 2026-03-10 local; user 2 already logged it.
	records.records["2026-03-10"] = domain.DailyRecord{ChatID: 2, Day: "2026-03-10"}

	sent, skipped := svc.Sweep(context.Background())
	if sent != 1 || skipped != 1 {
		t.Fatalf("sent=%d skipped=%d, want 1/1", sent, skipped)
	}
	if len(sender.sent) != 1 || sender.sent[0] != 1 {
		t.Fatalf("sends = %v, want [1]", sender.sent)
	}
}

func TestReminderSweepSendsToUnsubmitted(t *testing.T) {
	svc, profiles, _, sender := newReminderFixture(t)
	addProfile(profiles, 1)
	addProfile(profiles, 2)

	sent, skipped := svc.Sweep(context.Background())
	if sent != 2 || skipped != 0 {
		t.Fatalf("sent=%d skipped=%d, want 2/0", sent, skipped)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sends = %v, want 2 entries", sender.sent)
	}
}

func TestReminderSweepContinuesPastSendFailure(t *testing.T) {
	svc, profiles, _, sender := newReminderFixture(t)
	addProfile(profiles, 1)
	addProfile(profiles, 2)
	addProfile(profiles, 3)
	sender.failFor[2] = errors.New("forbidden: bot was blocked by the user")

	sent, skipped := svc.Sweep(context.Background())
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
}

func TestReminderSweepContinuesPastCheckFailure(t *testing.T) {
	svc, profiles, records, sender := newReminderFixture(t)
	addProfile(profiles, 1)
	records.existsErr = errors.New("connection reset")

	sent, skipped := svc.Sweep(context.Background())
	if sent != 0 || skipped != 1 {
		t.Fatalf("sent=%d skipped=%d, want 0/1", sent, skipped)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sends = %v, want none", sender.sent)
	}
}

func TestReminderStartStop(t *testing.T) {
	svc, _, _, _ := newReminderFixture(t)
	svc.Start()
	svc.Stop()
}
