package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dayline/dayline/internal/domain"
	"github.com/dayline/dayline/internal/store"
	"go.uber.org/zap"
)

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// Keyboard tells the transport which reply keyboard to show with a message.
// The adapter owns the actual labels.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardRemove
	KeyboardAggression
	KeyboardMood
)

// Reply is one outbound message from the core to the transport.
type Reply struct {
	Text     string
	Keyboard Keyboard
	// Document carries an optional file attachment (CSV export).
	Document     []byte
	DocumentName string
}

// Registration stages for users without a profile.
const (
	regStageName = "name"
	regStageAge  = "age"
)

type registration struct {
	stage        string
	name         string
	lastActivity time.Time
}

// FlowService is the surface the transport talks to. It routes each incoming
// action to the registration flow or the daily check-in session and composes
// the outbound text.
type FlowService struct {
	profiles    domain.ProfileStore
	records     domain.RecordStore
	sessions    *SessionService
	analyzer    *AnalyzerService
	recommender *RecommendationService
	clock       domain.Clock
	logger      *zap.Logger

	recentWindow int
	cutoffHour   int
	cutoffMinute int

	mu            sync.Mutex
	registrations map[int64]*registration
}

func NewFlowService(
	profiles domain.ProfileStore,
	records domain.RecordStore,
	sessions *SessionService,
	analyzer *AnalyzerService,
	recommender *RecommendationService,
	clock domain.Clock,
	recentWindow, cutoffHour, cutoffMinute int,
	logger *zap.Logger,
) *FlowService {
	return &FlowService{
		profiles:      profiles,
		records:       records,
		sessions:      sessions,
		analyzer:      analyzer,
		recommender:   recommender,
		clock:         clock,
		logger:        logger,
		recentWindow:  recentWindow,
		cutoffHour:    cutoffHour,
		cutoffMinute:  cutoffMinute,
		registrations: make(map[int64]*registration),
	}
}

const (
	msgWelcome = "Welcome to Dayline! I track your daily sleep, activity, aggression and mood, and show you the patterns behind them.\n\nLet's get you registered. What is your name?"
	msgAskAge  = "How old are you? (numbers only)"
	msgHelp    = "Dayline commands:\n" +
		"/start - register\n" +
		"/today - log today's data (opens after the daily cutoff)\n" +
		"/stats - averages for the last 7 days\n" +
		"/export - download your data as CSV\n" +
		"/cancel - abandon the current entry\n" +
		"/help - this message\n\n" +
		"Every evening I will remind you to log four things: sleep, activity, aggression and mood. After each entry you get an analysis with personal recommendations."
	msgNotRegistered  = "Please register first with /start."
	msgGenericFailure = "Something went wrong. Please try again."
	msgRestartFlow    = "Something went wrong while saving. Please run /today again."
	msgSaved          = "Data saved! Analyzing..."

	promptSleep      = "How many hours did you sleep today? (e.g. 7.5)"
	promptActivity   = "How many hours of physical activity did you get today? (e.g. 1.5)"
	promptAggression = "Pick today's aggression level:"
	promptMood       = "Pick today's mood:"
)

// OnStart begins registration, or greets an already-registered user.
func (s *FlowService) OnStart(ctx context.Context, chatID int64) Reply {
	profile, err := s.getProfile(ctx, chatID)
	if err == nil {
		return Reply{Text: fmt.Sprintf("Hi %s! You are already registered.\n\nUse /today to log today's data.", profile.FullName)}
	}
	if !errors.Is(err, ErrNotRegistered) {
		return Reply{Text: msgGenericFailure}
	}

	s.mu.Lock()
	s.registrations[chatID] = &registration{stage: regStageName, lastActivity: s.clock.Now()}
	s.mu.Unlock()

	return Reply{Text: msgWelcome}
}

// OnText routes free-form input: a pending registration step, a live check-in
// session, or a nudge toward /help.
func (s *FlowService) OnText(ctx context.Context, chatID int64, answer domain.Answer) Reply {
	if reg := s.pendingRegistration(chatID); reg != nil {
		return s.continueRegistration(ctx, chatID, reg, answer)
	}
	if s.sessions.Active(chatID) {
		return s.continueSession(ctx, chatID, answer)
	}
	return Reply{Text: "I did not catch that. Use /help to see what I can do."}
}

// OnToday triggers the gated daily flow.
func (s *FlowService) OnToday(ctx context.Context, chatID int64) Reply {
	if _, err := s.getProfile(ctx, chatID); err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return Reply{Text: msgNotRegistered}
		}
		return Reply{Text: msgGenericFailure}
	}

	out, err := s.sessions.Begin(ctx, chatID)
	switch {
	case errors.Is(err, ErrTooEarly):
		local := domain.LocalTime(s.clock.Now(), s.sessions.utcOffsetHours)
		return Reply{Text: fmt.Sprintf(
			"Data entry opens at %02d:%02d local time. It is now %s.",
			s.cutoffHour, s.cutoffMinute, local.Format("15:04"))}
	case errors.Is(err, ErrAlreadySubmitted):
		return Reply{Text: "You already logged today's data!"}
	case err != nil:
		return Reply{Text: msgGenericFailure}
	}

	return s.promptFor(out.NextStage, "")
}

// OnCancel discards any in-progress entry.
func (s *FlowService) OnCancel(ctx context.Context, chatID int64) Reply {
	s.mu.Lock()
	_, hadReg := s.registrations[chatID]
	delete(s.registrations, chatID)
	s.mu.Unlock()

	if s.sessions.Cancel(chatID) || hadReg {
		return Reply{Text: "Cancelled. Nothing was saved.", Keyboard: KeyboardRemove}
	}
	return Reply{Text: "Nothing to cancel."}
}

// OnStats summarizes the last seven days.
func (s *FlowService) OnStats(ctx context.Context, chatID int64) Reply {
	if _, err := s.getProfile(ctx, chatID); err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return Reply{Text: msgNotRegistered}
		}
		return Reply{Text: msgGenericFailure}
	}

	records, err := s.recentWithRetry(ctx, chatID, 7)
	if err != nil {
		return Reply{Text: msgGenericFailure}
	}
	if len(records) == 0 {
		return Reply{Text: "No data yet. Log your first day with /today."}
	}

	text := fmt.Sprintf(
		"Stats for the last %d day(s):\n\n"+
			"Sleep: %.1f h average\n"+
			"Activity: %.1f h average\n"+
			"Mood: %.1f/5 average\n"+
			"Aggression: %.1f/3 average\n\n"+
			"Days logged: %d",
		len(records),
		mean(sleepHours(records)),
		mean(activityHours(records)),
		mean(moodLevels(records)),
		mean(aggressionLevels(records)),
		len(records),
	)
	return Reply{Text: text}
}

// OnHelp lists the commands.
func (s *FlowService) OnHelp(ctx context.Context, chatID int64) Reply {
	return Reply{Text: msgHelp}
}

// OnExport returns the user's recent records as a CSV attachment.
func (s *FlowService) OnExport(ctx context.Context, chatID int64) Reply {
	if _, err := s.getProfile(ctx, chatID); err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return Reply{Text: msgNotRegistered}
		}
		return Reply{Text: msgGenericFailure}
	}

	records, err := s.recentWithRetry(ctx, chatID, s.recentWindow)
	if err != nil {
		return Reply{Text: msgGenericFailure}
	}
	if len(records) == 0 {
		return Reply{Text: "No data to export yet."}
	}

	csv, err := BuildCSV(records)
	if err != nil {
		s.logger.Error("csv export failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return Reply{Text: msgGenericFailure}
	}

	return Reply{
		Text:         fmt.Sprintf("Your last %d day(s) of data.", len(records)),
		Document:     csv,
		DocumentName: fmt.Sprintf("dayline-%s.csv", s.sessions.LocalDay()),
	}
}

// ExpireStale evicts idle registrations alongside the session janitor.
func (s *FlowService) ExpireStale() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for chatID, reg := range s.registrations {
		if now.Sub(reg.lastActivity) > s.sessions.timeout {
			delete(s.registrations, chatID)
			n++
		}
	}
	return n
}

func (s *FlowService) pendingRegistration(chatID int64) *registration {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[chatID]
	if !ok {
		return nil
	}
	if now.Sub(reg.lastActivity) > s.sessions.timeout {
		delete(s.registrations, chatID)
		return nil
	}
	reg.lastActivity = now
	return reg
}

func (s *FlowService) continueRegistration(ctx context.Context, chatID int64, reg *registration, answer domain.Answer) Reply {
	text, ok := answer.(domain.NumericAnswer)
	if !ok {
		return Reply{Text: "Please answer with text."}
	}

	switch reg.stage {
	case regStageName:
		name := strings.TrimSpace(text.Value)
		if name == "" {
			return Reply{Text: "Please tell me your name."}
		}
		reg.name = name
		reg.stage = regStageAge
		return Reply{Text: msgAskAge}

	default: // regStageAge
		age, err := ParseAge(text.Value)
		if errors.Is(err, ErrNotANumber) {
			return Reply{Text: "Numbers only, please:"}
		}
		if errors.Is(err, ErrOutOfRange) {
			return Reply{Text: "Please enter a real age (1-120):"}
		}

		profile := &domain.UserProfile{ChatID: chatID, FullName: reg.name, Age: age}
		if err := s.upsertProfileWithRetry(ctx, profile); err != nil {
			s.mu.Lock()
			delete(s.registrations, chatID)
			s.mu.Unlock()
			return Reply{Text: msgGenericFailure}
		}

		s.mu.Lock()
		delete(s.registrations, chatID)
		s.mu.Unlock()

		s.logger.Info("user registered", zap.Int64("chat_id", chatID), zap.Int("age", age))
		return Reply{Text: fmt.Sprintf(
			"You're all set, %s! Every evening after the cutoff, log your day with /today. I'll also send you a daily reminder.",
			profile.FullName)}
	}
}

func (s *FlowService) continueSession(ctx context.Context, chatID int64, answer domain.Answer) Reply {
	out, err := s.sessions.Submit(ctx, chatID, answer)
	switch {
	case errors.Is(err, ErrNotANumber):
		return s.promptFor(out.NextStage, "That does not look like a number. ")
	case errors.Is(err, ErrOutOfRange):
		return s.promptFor(out.NextStage, "That value is out of range (0-24). ")
	case errors.Is(err, ErrUnknownOption):
		return s.promptFor(out.NextStage, "Please use one of the buttons. ")
	case errors.Is(err, ErrNoSession):
		return Reply{Text: "That entry expired. Start again with /today.", Keyboard: KeyboardRemove}
	case errors.Is(err, ErrStoreFailure):
		return Reply{Text: msgRestartFlow, Keyboard: KeyboardRemove}
	case err != nil:
		return Reply{Text: msgGenericFailure, Keyboard: KeyboardRemove}
	}

	if !out.Completed {
		return s.promptFor(out.NextStage, "")
	}

	return s.composeAnalysis(ctx, out.Record)
}

// composeAnalysis runs the analyzer and the recommendation engine over the
// fresh window and builds the end-of-flow message.
func (s *FlowService) composeAnalysis(ctx context.Context, record domain.DailyRecord) Reply {
	records, err := s.recentWithRetry(ctx, record.ChatID, s.recentWindow)
	if err != nil {
		// The record itself is committed; analysis is best-effort.
		s.logger.Warn("post-commit window read failed", zap.Int64("chat_id", record.ChatID), zap.Error(err))
		return Reply{Text: msgSaved + "\n\n" + domain.InsufficientDataText, Keyboard: KeyboardRemove}
	}

	analysis := s.analyzer.Analyze(records)
	analysis.Recommendations = s.recommender.Recommend(record, records)

	var b strings.Builder
	b.WriteString(msgSaved)
	b.WriteString("\n\nToday's analysis:\n\n")
	b.WriteString(analysis.Render())
	if !analysis.InsufficientData {
		b.WriteString(fmt.Sprintf("\n\nWellness score: %.0f/100. %s", analysis.OverallScore, domain.ScoreDescription(analysis.OverallScore)))
	}
	b.WriteString("\n\nRecommendations:\n\n")
	b.WriteString(strings.Join(analysis.Recommendations, "\n\n"))

	return Reply{Text: b.String(), Keyboard: KeyboardRemove}
}

func (s *FlowService) promptFor(stage Stage, prefix string) Reply {
	switch stage {
	case StageSleep:
		return Reply{Text: prefix + promptSleep, Keyboard: KeyboardRemove}
	case StageActivity:
		return Reply{Text: prefix + promptActivity, Keyboard: KeyboardRemove}
	case StageAggression:
		return Reply{Text: prefix + promptAggression, Keyboard: KeyboardAggression}
	default:
		return Reply{Text: prefix + promptMood, Keyboard: KeyboardMood}
	}
}

// ErrNotRegistered gates actions that need a profile.
var ErrNotRegistered = errors.New("user not registered")

func (s *FlowService) getProfile(ctx context.Context, chatID int64) (*domain.UserProfile, error) {
	p, err := s.profiles.GetByChatID(ctx, chatID)
	if err == nil {
		return p, nil
	}
	if isNotFound(err) {
		return nil, ErrNotRegistered
	}
	s.logger.Warn("profile read failed, retrying", zap.Int64("chat_id", chatID), zap.Error(err))
	p, err = s.profiles.GetByChatID(ctx, chatID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return p, nil
}

func (s *FlowService) recentWithRetry(ctx context.Context, chatID int64, limit int) ([]domain.DailyRecord, error) {
	records, err := s.records.Recent(ctx, chatID, limit)
	if err != nil {
		s.logger.Warn("recent records read failed, retrying", zap.Int64("chat_id", chatID), zap.Error(err))
		records, err = s.records.Recent(ctx, chatID, limit)
	}
	return records, err
}

func (s *FlowService) upsertProfileWithRetry(ctx context.Context, p *domain.UserProfile) error {
	err := s.profiles.Upsert(ctx, p)
	if err != nil {
		s.logger.Warn("profile upsert failed, retrying", zap.Int64("chat_id", p.ChatID), zap.Error(err))
		err = s.profiles.Upsert(ctx, p)
	}
	return err
}
