package service

import (
	"testing"

	"github.com/dayline/dayline/internal/domain"
	"go.uber.org/zap"
)

func TestRecommend_AllGoodDayStillClosesWithTips(t *testing.T) {
	svc := NewRecommendationService(zap.NewNop())

	today := rec("2025-01-01", 8, 2, 1, 5)
	advice := svc.Recommend(today, []domain.DailyRecord{today})

	if len(advice) != 2 {
		t.Fatalf("expected exactly the two closing tips, got %d: %v", len(advice), advice)
	}
	if advice[0] != adviceRoutine || advice[1] != adviceNutrition {
		t.Errorf("closing tips wrong or out of order: %v", advice)
	}
}

func TestRecommend_WorstCaseFiresAllRules(t *testing.T) {
	svc := NewRecommendationService(zap.NewNop())

	today := rec("2025-01-01", 5, 0.2, 3, 1)
	advice := svc.Recommend(today, []domain.DailyRecord{today})

	want := []string{
		adviceSleepMore,
		adviceMinExercise,
		adviceLowMood,
		adviceSleepMoodLink,
		adviceStressRelief,
		adviceRoutine,
		adviceNutrition,
	}
	if len(advice) != len(want) {
		t.Fatalf("got %d items, want %d: %v", len(advice), len(want), advice)
	}
	for i := range want {
		if advice[i] != want[i] {
			t.Errorf("advice[%d] = %q, want %q", i, advice[i], want[i])
		}
	}
}

func TestRecommend_SleepRulesMutuallyExclusive(t *testing.T) {
	svc := NewRecommendationService(zap.NewNop())

	over := svc.Recommend(rec("2025-01-01", 10, 2, 1, 4), nil)
	if over[0] != adviceNoOversleep {
		t.Errorf("expected oversleep advice first, got %v", over)
	}
	for _, a := range over {
		if a == adviceSleepMore {
			t.Error("sleep-more advice must not fire alongside oversleep advice")
		}
	}
}

func TestRecommend_ModerateActivity(t *testing.T) {
	svc := NewRecommendationService(zap.NewNop())

	advice := svc.Recommend(rec("2025-01-01", 8, 0.7, 1, 4), nil)
	if advice[0] != adviceMoreActivity {
		t.Errorf("expected increase-activity advice, got %v", advice)
	}
}

func TestRecommend_AggressionEscalationWarning(t *testing.T) {
	svc := NewRecommendationService(zap.NewNop())

	today := rec("2025-01-03", 8, 2, 3, 4)
	window := []domain.DailyRecord{
		today,
		rec("2025-01-02", 8, 2, 2, 4),
		rec("2025-01-01", 8, 2, 3, 4),
	}

	advice := svc.Recommend(today, window)
	found := false
	for _, a := range advice {
		if a == adviceStressPattern {
			found = true
		}
	}
	if !found {
		t.Errorf("expected escalation warning, got %v", advice)
	}

	// One calm day in the last three suppresses the warning.
	window[1].Aggression = 1
	advice = svc.Recommend(today, window)
	for _, a := range advice {
		if a == adviceStressPattern {
			t.Errorf("escalation warning must not fire: %v", advice)
		}
	}
}

func TestRecommend_WeeklyPatterns(t *testing.T) {
	svc := NewRecommendationService(zap.NewNop())

	// Wildly varying sleep over seven days, and the two most recent days
	// clearly happier than the rest.
	window := []domain.DailyRecord{
		rec("2025-01-07", 11, 2, 1, 5),
		rec("2025-01-06", 4, 2, 1, 5),
		rec("2025-01-05", 10, 2, 1, 3),
		rec("2025-01-04", 5, 2, 1, 3),
		rec("2025-01-03", 11, 2, 1, 3),
		rec("2025-01-02", 4, 2, 1, 3),
		rec("2025-01-01", 10, 2, 1, 3),
	}

	advice := svc.Recommend(window[0], window)

	var gotRhythm, gotEngage bool
	for _, a := range advice {
		if a == adviceSleepRhythm {
			gotRhythm = true
		}
		if a == adviceWeekEngage {
			gotEngage = true
		}
	}
	if !gotRhythm {
		t.Errorf("expected inconsistent-sleep note, got %v", advice)
	}
	if !gotEngage {
		t.Errorf("expected weekday-engagement note, got %v", advice)
	}

	// Six records: weekly rules must stay silent.
	advice = svc.Recommend(window[0], window[:6])
	for _, a := range advice {
		if a == adviceSleepRhythm || a == adviceWeekEngage {
			t.Errorf("weekly rules fired below the 7-record window: %v", advice)
		}
	}
}

func TestRecommend_NeverEmpty(t *testing.T) {
	svc := NewRecommendationService(zap.NewNop())

	advice := svc.Recommend(domain.DailyRecord{SleepHours: 8, ActivityHours: 2, Mood: 5, Aggression: 1}, nil)
	if len(advice) < 2 {
		t.Fatalf("recommendations must never have fewer than two items, got %v", advice)
	}
}
