package domain

import "time"

// Metric thresholds shared by the record helpers, the analyzer and the
// recommendation rules.
const (
	SleepGoodHours     = 7.5
	SleepAdequateHours = 6.0
	SleepMinHours      = 7.0
	SleepMaxHours      = 9.0

	ActivityGoodHours     = 1.5
	ActivityModerateHours = 0.5

	MinAggression = 1
	MaxAggression = 3
	MinMood       = 1
	MaxMood       = 5
)

// DailyRecord is one day's four-metric submission for one user. Day is the
// user-local calendar date in YYYY-MM-DD form; (ChatID, Day) is unique.
type DailyRecord struct {
	ChatID        int64     `json:"chat_id"`
	Day           string    `json:"day"`
	SleepHours    float64   `json:"sleep_hours"`
	ActivityHours float64   `json:"activity_hours"`
	Aggression    int       `json:"aggression"`
	Mood          int       `json:"mood"`
	CreatedAt     time.Time `json:"created_at"`
}

var moodLabels = map[int]string{
	1: "very bad",
	2: "bad",
	3: "okay",
	4: "good",
	5: "excellent",
}

var aggressionLabels = map[int]string{
	1: "low",
	2: "normal",
	3: "high",
}

// SleepStatus classifies today's sleep against fixed thresholds.
func (r DailyRecord) SleepStatus() string {
	switch {
	case r.SleepHours >= SleepGoodHours:
		return "good"
	case r.SleepHours >= SleepAdequateHours:
		return "adequate"
	default:
		return "low"
	}
}

// ActivityStatus classifies today's physical activity.
func (r DailyRecord) ActivityStatus() string {
	switch {
	case r.ActivityHours >= ActivityGoodHours:
		return "good"
	case r.ActivityHours >= ActivityModerateHours:
		return "moderate"
	default:
		return "low"
	}
}

func (r DailyRecord) MoodLabel() string {
	if l, ok := moodLabels[r.Mood]; ok {
		return l
	}
	return "unknown"
}

func (r DailyRecord) AggressionLabel() string {
	if l, ok := aggressionLabels[r.Aggression]; ok {
		return l
	}
	return "unknown"
}

// WellnessScore folds the four metrics into a 0-100 composite. Sleep and
// activity contribute banded scores; mood and aggression contribute linearly,
// aggression inverted so that low aggression scores high.
func (r DailyRecord) WellnessScore() float64 {
	var sleepScore float64
	switch {
	case r.SleepHours >= SleepGoodHours:
		sleepScore = 25
	case r.SleepHours >= SleepAdequateHours:
		sleepScore = 15
	default:
		sleepScore = 5
	}

	var activityScore float64
	switch {
	case r.ActivityHours >= ActivityGoodHours:
		activityScore = 25
	case r.ActivityHours >= ActivityModerateHours:
		activityScore = 15
	default:
		activityScore = 5
	}

	moodScore := float64(r.Mood) / float64(MaxMood) * 25
	aggressionScore := float64(MaxAggression+1-r.Aggression) / float64(MaxAggression) * 25

	return sleepScore + activityScore + moodScore + aggressionScore
}

// ScoreDescription maps a wellness score to its summary band.
func ScoreDescription(score float64) string {
	switch {
	case score >= 80:
		return "Excellent! Your wellness is in great shape."
	case score >= 60:
		return "Good! Your wellness is at a satisfactory level."
	case score >= 40:
		return "Average. A few areas could use improvement."
	default:
		return "Attention needed! Take better care of yourself."
	}
}
