package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dayline/dayline/internal/domain"
	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Daily check-in states. Idle and completed are equivalent rest points; a
// completed session is discarded immediately, so only awaiting states ever
// live in the session table.
const (
	stateIdle               = "idle"
	stateAwaitingSleep      = "awaiting_sleep"
	stateAwaitingActivity   = "awaiting_activity"
	stateAwaitingAggression = "awaiting_aggression"
	stateAwaitingMood       = "awaiting_mood"
	stateCompleted          = "completed"
)

const (
	eventBegin      = "begin"
	eventSleep      = "sleep"
	eventActivity   = "activity"
	eventAggression = "aggression"
	eventMood       = "mood"
	eventCancel     = "cancel"
)

// Stage identifies which prompt a live session is waiting on.
type Stage string

const (
	StageSleep      Stage = "sleep"
	StageActivity   Stage = "activity"
	StageAggression Stage = "aggression"
	StageMood       Stage = "mood"
)

var (
	ErrTooEarly         = errors.New("daily flow not open yet")
	ErrAlreadySubmitted = errors.New("record already submitted today")
	ErrNoSession        = errors.New("no active session")
	ErrStoreFailure     = errors.New("store operation failed")
)

// DefaultSessionTimeout is the idle threshold after which a session is
// considered abandoned.
const DefaultSessionTimeout = 30 * time.Minute

type checkinSession struct {
	machine      *fsm.FSM
	record       domain.DailyRecord
	lastActivity time.Time
}

func newCheckinMachine() *fsm.FSM {
	return fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventBegin, Src: []string{stateIdle}, Dst: stateAwaitingSleep},
			{Name: eventSleep, Src: []string{stateAwaitingSleep}, Dst: stateAwaitingActivity},
			{Name: eventActivity, Src: []string{stateAwaitingActivity}, Dst: stateAwaitingAggression},
			{Name: eventAggression, Src: []string{stateAwaitingAggression}, Dst: stateAwaitingMood},
			{Name: eventMood, Src: []string{stateAwaitingMood}, Dst: stateCompleted},
			{Name: eventCancel, Src: []string{
				stateAwaitingSleep, stateAwaitingActivity, stateAwaitingAggression, stateAwaitingMood,
			}, Dst: stateIdle},
		},
		fsm.Callbacks{},
	)
}

// StepOutcome is what the flow layer needs to continue the conversation:
// either the stage to prompt for next, or the committed record.
type StepOutcome struct {
	NextStage Stage
	Completed bool
	Record    domain.DailyRecord
}

// SessionService owns the per-user session table and drives each session's
// state machine. The table lock guards only the map; a session's machine and
// partial record are mutated outside it, which is safe because the poller
// delivers updates one at a time, so two Submits for the same chat id never
// run concurrently.
type SessionService struct {
	records domain.RecordStore
	clock   domain.Clock
	logger  *zap.Logger

	utcOffsetHours int
	cutoffHour     int
	cutoffMinute   int
	timeout        time.Duration

	mu       sync.Mutex
	sessions map[int64]*checkinSession
}

func NewSessionService(records domain.RecordStore, clock domain.Clock, utcOffsetHours, cutoffHour, cutoffMinute int, logger *zap.Logger) *SessionService {
	return &SessionService{
		records:        records,
		clock:          clock,
		logger:         logger,
		utcOffsetHours: utcOffsetHours,
		cutoffHour:     cutoffHour,
		cutoffMinute:   cutoffMinute,
		timeout:        DefaultSessionTimeout,
		sessions:       make(map[int64]*checkinSession),
	}
}

func (s *SessionService) SetTimeout(d time.Duration) {
	s.timeout = d
}

// LocalDay returns the current user-local calendar date.
func (s *SessionService) LocalDay() string {
	return domain.LocalDay(s.clock.Now(), s.utcOffsetHours)
}

// Begin gates and starts the daily flow. It fails with ErrTooEarly before the
// local cutoff and ErrAlreadySubmitted when a record for today exists. If a
// live session already exists, Begin is a no-op returning its current stage;
// a new triggering action is input to the existing session, never a second one.
func (s *SessionService) Begin(ctx context.Context, chatID int64) (StepOutcome, error) {
	now := s.clock.Now()

	s.mu.Lock()
	if sess, ok := s.sessions[chatID]; ok && !s.expired(sess, now) {
		sess.lastActivity = now
		out := StepOutcome{NextStage: stageOf(sess.machine.Current())}
		s.mu.Unlock()
		return out, nil
	}
	delete(s.sessions, chatID)
	s.mu.Unlock()

	if !domain.AfterCutoff(now, s.utcOffsetHours, s.cutoffHour, s.cutoffMinute) {
		return StepOutcome{}, ErrTooEarly
	}

	day := domain.LocalDay(now, s.utcOffsetHours)
	exists, err := s.existsWithRetry(ctx, chatID, day)
	if err != nil {
		return StepOutcome{}, ErrStoreFailure
	}
	if exists {
		return StepOutcome{}, ErrAlreadySubmitted
	}

	sess := &checkinSession{
		machine:      newCheckinMachine(),
		record:       domain.DailyRecord{ChatID: chatID, Day: day},
		lastActivity: now,
	}
	if err := sess.machine.Event(ctx, eventBegin); err != nil {
		return StepOutcome{}, err
	}

	s.mu.Lock()
	s.sessions[chatID] = sess
	s.mu.Unlock()

	s.logger.Info("check-in session started",
		zap.Int64("chat_id", chatID),
		zap.String("day", day))

	return StepOutcome{NextStage: StageSleep}, nil
}

// Active reports whether a live, non-expired session exists for the user.
func (s *SessionService) Active(chatID int64) bool {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return false
	}
	if s.expired(sess, now) {
		delete(s.sessions, chatID)
		return false
	}
	return true
}

// Submit feeds one answer into the user's live session. A validation failure
// leaves the state unchanged and is returned alongside the current stage so
// the caller can re-prompt. The final valid answer commits the record.
func (s *SessionService) Submit(ctx context.Context, chatID int64, answer domain.Answer) (StepOutcome, error) {
	now := s.clock.Now()

	s.mu.Lock()
	sess, ok := s.sessions[chatID]
	if !ok || s.expired(sess, now) {
		delete(s.sessions, chatID)
		s.mu.Unlock()
		return StepOutcome{}, ErrNoSession
	}
	sess.lastActivity = now
	s.mu.Unlock()

	stage := stageOf(sess.machine.Current())

	if err := applyAnswer(&sess.record, stage, answer); err != nil {
		return StepOutcome{NextStage: stage}, err
	}

	if err := sess.machine.Event(ctx, eventFor(stage)); err != nil {
		return StepOutcome{NextStage: stage}, err
	}

	if sess.machine.Current() != stateCompleted {
		return StepOutcome{NextStage: stageOf(sess.machine.Current())}, nil
	}

	// Exactly one upsert per completed session. On failure the session is
	// destroyed with no partial data; the user re-invokes the flow.
	record := sess.record
	s.drop(chatID)

	if err := s.upsertWithRetry(ctx, &record); err != nil {
		s.logger.Error("daily record upsert failed",
			zap.Int64("chat_id", chatID),
			zap.String("day", record.Day),
			zap.Error(err))
		return StepOutcome{}, ErrStoreFailure
	}

	s.logger.Info("daily record committed",
		zap.Int64("chat_id", chatID),
		zap.String("day", record.Day),
		zap.Float64("sleep_hours", record.SleepHours),
		zap.Float64("activity_hours", record.ActivityHours),
		zap.Int("aggression", record.Aggression),
		zap.Int("mood", record.Mood))

	return StepOutcome{Completed: true, Record: record}, nil
}

// LiveCount reports how many sessions are in the table, expired or not.
func (s *SessionService) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cancel discards the user's live session, if any, and reports whether one
// existed.
func (s *SessionService) Cancel(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[chatID]
	delete(s.sessions, chatID)
	return ok
}

// ExpireStale evicts sessions idle past the timeout. Expiry is advisory
// cleanup; Active and Submit also check lazily.
func (s *SessionService) ExpireStale() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for chatID, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, chatID)
			n++
		}
	}
	if n > 0 {
		s.logger.Info("expired stale sessions", zap.Int("count", n))
	}
	return n
}

func (s *SessionService) drop(chatID int64) {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
}

func (s *SessionService) expired(sess *checkinSession, now time.Time) bool {
	return now.Sub(sess.lastActivity) > s.timeout
}

func (s *SessionService) existsWithRetry(ctx context.Context, chatID int64, day string) (bool, error) {
	exists, err := s.records.Exists(ctx, chatID, day)
	if err != nil {
		s.logger.Warn("record existence check failed, retrying", zap.Error(err))
		exists, err = s.records.Exists(ctx, chatID, day)
	}
	return exists, err
}

func (s *SessionService) upsertWithRetry(ctx context.Context, r *domain.DailyRecord) error {
	err := s.records.Upsert(ctx, r)
	if err != nil {
		s.logger.Warn("record upsert failed, retrying", zap.Error(err))
		err = s.records.Upsert(ctx, r)
	}
	return err
}

func stageOf(state string) Stage {
	switch state {
	case stateAwaitingSleep:
		return StageSleep
	case stateAwaitingActivity:
		return StageActivity
	case stateAwaitingAggression:
		return StageAggression
	default:
		return StageMood
	}
}

func eventFor(stage Stage) string {
	switch stage {
	case StageSleep:
		return eventSleep
	case StageActivity:
		return eventActivity
	case StageAggression:
		return eventAggression
	default:
		return eventMood
	}
}

// applyAnswer validates one answer against the stage's expected kind and
// writes it into the partial record. Option stages reject free text with
// ErrUnknownOption; numeric stages reject option taps with ErrNotANumber.
func applyAnswer(r *domain.DailyRecord, stage Stage, answer domain.Answer) error {
	switch stage {
	case StageSleep:
		text, ok := answer.(domain.NumericAnswer)
		if !ok {
			return ErrNotANumber
		}
		v, err := ParseSleepHours(text.Value)
		if err != nil {
			return err
		}
		r.SleepHours = v
	case StageActivity:
		text, ok := answer.(domain.NumericAnswer)
		if !ok {
			return ErrNotANumber
		}
		v, err := ParseActivityHours(text.Value)
		if err != nil {
			return err
		}
		r.ActivityHours = v
	case StageAggression:
		opt, ok := answer.(domain.OptionAnswer)
		if !ok {
			return ErrUnknownOption
		}
		v, err := ParseAggression(opt.Token)
		if err != nil {
			return err
		}
		r.Aggression = v
	case StageMood:
		opt, ok := answer.(domain.OptionAnswer)
		if !ok {
			return ErrUnknownOption
		}
		v, err := ParseMood(opt.Token)
		if err != nil {
			return err
		}
		r.Mood = v
	}
	return nil
}
