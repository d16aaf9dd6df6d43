package service

import (
	"github.com/dayline/dayline/internal/domain"
	"go.uber.org/zap"
)

const (
	// SleepStddevThreshold flags an inconsistent sleep schedule over the
	// most recent seven days.
	SleepStddevThreshold = 2.0

	// WeekendMoodGap is how much the two most recent days' mean mood must
	// exceed the mean of positions 3-7 before the engagement note fires.
	WeekendMoodGap = 0.5
)

// Fixed advice strings, one per rule, in evaluation order.
const (
	adviceSleepMore     = "Try to get at least 7-8 hours of sleep tomorrow. Good sleep lifts your mood."
	adviceNoOversleep   = "Oversleeping does not help either; 7-8 hours is the sweet spot."
	adviceMinExercise   = "Get at least 30 minutes of exercise tomorrow. Even a walk counts."
	adviceMoreActivity  = "Try to raise your activity level. An hour a day is ideal."
	adviceLowMood       = "To lift a low mood: talk to friends, do something you enjoy, spend time outdoors."
	adviceSleepMoodLink = "Short sleep may be dragging your mood down."
	adviceStressRelief  = "To bring aggression down: deep breathing, meditation, light exercise."
	adviceStressPattern = "Your aggression has stayed elevated for several days. Try to pin down the sources of stress."
	adviceSleepRhythm   = "Your sleep schedule is inconsistent. Settle into a regular rhythm."
	adviceWeekEngage    = "Your mood is better on days off. Try to stay more engaged during the week."
	adviceRoutine       = "Keep a steady routine: consistent sleep and wake times, regular meals."
	adviceNutrition     = "Eat well: more fruit and vegetables, fewer processed foods."
)

// RecommendationService evaluates the fixed rule list against today's record
// and the recent window and returns the advice that applies, in rule order.
type RecommendationService struct {
	logger *zap.Logger
}

func NewRecommendationService(logger *zap.Logger) *RecommendationService {
	return &RecommendationService{logger: logger}
}

// Recommend returns the ordered advice list. The window is newest-first and
// includes today's record at position 0. The two closing tips always fire, so
// the result is never empty.
func (s *RecommendationService) Recommend(today domain.DailyRecord, window []domain.DailyRecord) []string {
	var advice []string

	// Rule 1: sleep duration. The branches cannot both fire.
	if today.SleepHours < domain.SleepMinHours {
		advice = append(advice, adviceSleepMore)
	} else if today.SleepHours > domain.SleepMaxHours {
		advice = append(advice, adviceNoOversleep)
	}

	// Rule 2: activity.
	if today.ActivityHours < domain.ActivityModerateHours {
		advice = append(advice, adviceMinExercise)
	} else if today.ActivityHours < 1 {
		advice = append(advice, adviceMoreActivity)
	}

	// Rule 3: low mood, with the sleep linkage note.
	if today.Mood <= 2 {
		advice = append(advice, adviceLowMood)
		if today.SleepHours < domain.SleepMinHours {
			advice = append(advice, adviceSleepMoodLink)
		}
	}

	// Rule 4: high aggression, with the multi-day escalation warning.
	if today.Aggression >= domain.MaxAggression {
		advice = append(advice, adviceStressRelief)
		if len(window) >= 3 && allAggressionAtLeast(window[:3], 2) {
			advice = append(advice, adviceStressPattern)
		}
	}

	// Rule 5: weekly patterns.
	if len(window) >= 7 {
		if stddev(sleepHours(window[:7])) > SleepStddevThreshold {
			advice = append(advice, adviceSleepRhythm)
		}
		recentMood := mean(moodLevels(window[:2]))
		earlierMood := mean(moodLevels(window[2:7]))
		if recentMood > earlierMood+WeekendMoodGap {
			advice = append(advice, adviceWeekEngage)
		}
	}

	// Rule 6: closing tips, unconditional.
	advice = append(advice, adviceRoutine, adviceNutrition)

	s.logger.Debug("recommendations generated",
		zap.Int64("chat_id", today.ChatID),
		zap.String("day", today.Day),
		zap.Int("count", len(advice)))

	return advice
}

func allAggressionAtLeast(records []domain.DailyRecord, level int) bool {
	for _, r := range records {
		if r.Aggression < level {
			return false
		}
	}
	return true
}
