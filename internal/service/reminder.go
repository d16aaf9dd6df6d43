package service

import (
	"context"
	"sync"
	"time"

	"github.com/dayline/dayline/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender delivers reminder messages. The Telegram adapter satisfies this.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

const reminderText = "Hey! Don't forget to log today's data. Send /today to start."

const janitorInterval = time.Minute

// ReminderService fires a reminder to every registered user at the daily
// cutoff, skipping users who already logged the day. Between cutoffs it also
// runs the session janitor.
type ReminderService struct {
	profiles domain.ProfileStore
	records  domain.RecordStore
	sessions *SessionService
	flow     *FlowService
	sender   Sender
	clock    domain.Clock
	logger   *zap.Logger

	utcOffsetHours int
	cutoffHour     int
	cutoffMinute   int
	limiter        *rate.Limiter

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewReminderService(
	profiles domain.ProfileStore,
	records domain.RecordStore,
	sessions *SessionService,
	flow *FlowService,
	sender Sender,
	clock domain.Clock,
	utcOffsetHours, cutoffHour, cutoffMinute int,
	sendRPS float64,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		profiles:       profiles,
		records:        records,
		sessions:       sessions,
		flow:           flow,
		sender:         sender,
		clock:          clock,
		logger:         logger,
		utcOffsetHours: utcOffsetHours,
		cutoffHour:     cutoffHour,
		cutoffMinute:   cutoffMinute,
		limiter:        rate.NewLimiter(rate.Limit(sendRPS), 1),
		stopCh:         make(chan struct{}),
	}
}

// Start launches the background loop. Call Stop to shut it down.
func (s *ReminderService) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("reminder service started",
		zap.Int("cutoff_hour", s.cutoffHour),
		zap.Int("cutoff_minute", s.cutoffMinute),
		zap.Int("utc_offset_hours", s.utcOffsetHours))
}

// Stop signals the loop to exit and waits for it.
func (s *ReminderService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("reminder service stopped")
}

func (s *ReminderService) run() {
	defer s.wg.Done()

	janitor := time.NewTicker(janitorInterval)
	defer janitor.Stop()

	cutoff := time.NewTimer(s.untilNextCutoff())
	defer cutoff.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-janitor.C:
			s.sessions.ExpireStale()
			s.flow.ExpireStale()
		case <-cutoff.C:
			s.Sweep(context.Background())
			cutoff.Reset(s.untilNextCutoff())
		}
	}
}

func (s *ReminderService) untilNextCutoff() time.Duration {
	now := s.clock.Now()
	next := domain.NextCutoff(now, s.utcOffsetHours, s.cutoffHour, s.cutoffMinute)
	return next.Sub(now)
}

// Sweep sends one reminder pass over all registered users. Individual failures
// are logged and skipped; the pass always completes.
func (s *ReminderService) Sweep(ctx context.Context) (sent, skipped int) {
	day := domain.LocalDay(s.clock.Now(), s.utcOffsetHours)

	chatIDs, err := s.profiles.ListChatIDs(ctx)
	if err != nil {
		s.logger.Error("reminder sweep aborted: listing users failed", zap.Error(err))
		return 0, 0
	}

	for _, chatID := range chatIDs {
		remind, err := s.shouldRemind(ctx, chatID, day)
		if err != nil {
			s.logger.Warn("reminder check failed, skipping user",
				zap.Int64("chat_id", chatID), zap.Error(err))
			skipped++
			continue
		}
		if !remind {
			skipped++
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Warn("reminder sweep interrupted", zap.Error(err))
			return sent, skipped
		}
		if err := s.sender.SendText(ctx, chatID, reminderText); err != nil {
			s.logger.Warn("reminder send failed",
				zap.Int64("chat_id", chatID), zap.Error(err))
			skipped++
			continue
		}
		sent++
	}

	s.logger.Info("reminder sweep finished",
		zap.String("day", day),
		zap.Int("sent", sent),
		zap.Int("skipped", skipped))
	return sent, skipped
}

// shouldRemind is true for users without a record for the given day.
func (s *ReminderService) shouldRemind(ctx context.Context, chatID int64, day string) (bool, error) {
	exists, err := s.records.Exists(ctx, chatID, day)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
