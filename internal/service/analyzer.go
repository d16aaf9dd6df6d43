package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/dayline/dayline/internal/domain"
	"go.uber.org/zap"
)

const (
	// TrendMarginHours is how far the 3-day sleep mean must drift from the
	// all-time mean before a trend statement is emitted.
	TrendMarginHours = 0.5

	// CorrelationThreshold is the |r| above which a correlation insight fires.
	CorrelationThreshold = 0.6

	// MinRecordsForTrend and MinRecordsForCorrelation gate the deeper passes.
	MinRecordsForTrend       = 3
	MinRecordsForCorrelation = 5
)

// AnalyzerService turns a newest-first window of daily records into the
// per-metric status, trend and correlation narrative.
type AnalyzerService struct {
	logger *zap.Logger
}

func NewAnalyzerService(logger *zap.Logger) *AnalyzerService {
	return &AnalyzerService{logger: logger}
}

// Analyze computes the full narrative for the window. Records must be ordered
// newest-first; fewer than two records yield an insufficient-data result.
func (s *AnalyzerService) Analyze(records []domain.DailyRecord) domain.AnalysisResult {
	if len(records) < 2 {
		return domain.AnalysisResult{InsufficientData: true}
	}

	today := records[0]
	result := domain.AnalysisResult{
		Day:                today.Day,
		SleepAnalysis:      s.sleepAnalysis(records),
		ActivityAnalysis:   s.activityAnalysis(records),
		MoodAnalysis:       s.moodAnalysis(records),
		AggressionAnalysis: s.aggressionAnalysis(records),
		Correlations:       s.correlationInsights(records),
		OverallScore:       today.WellnessScore(),
	}

	s.logger.Debug("analysis computed",
		zap.Int64("chat_id", today.ChatID),
		zap.String("day", today.Day),
		zap.Int("window", len(records)),
		zap.Float64("score", result.OverallScore))

	return result
}

func (s *AnalyzerService) sleepAnalysis(records []domain.DailyRecord) string {
	today := records[0]
	avg := mean(sleepHours(records))

	trend := ""
	if len(records) >= MinRecordsForTrend {
		recentAvg := mean(sleepHours(records[:3]))
		switch {
		case recentAvg > avg+TrendMarginHours:
			trend = " Your sleep has improved over the last few days."
		case recentAvg < avg-TrendMarginHours:
			trend = " Your sleep has declined over the last few days."
		}
	}

	return fmt.Sprintf("Sleep: you slept %s hours today (%s). Average: %.1f hours.%s",
		trimFloat(today.SleepHours), today.SleepStatus(), avg, trend)
}

func (s *AnalyzerService) activityAnalysis(records []domain.DailyRecord) string {
	today := records[0]
	avg := mean(activityHours(records))

	comparison := ""
	switch {
	case today.ActivityHours > avg:
		comparison = fmt.Sprintf(" That is %.1f hours more than usual.", today.ActivityHours-avg)
	case today.ActivityHours < avg:
		comparison = fmt.Sprintf(" That is %.1f hours less than usual.", avg-today.ActivityHours)
	}

	return fmt.Sprintf("Activity: you were active for %s hours today (%s).%s",
		trimFloat(today.ActivityHours), today.ActivityStatus(), comparison)
}

func (s *AnalyzerService) moodAnalysis(records []domain.DailyRecord) string {
	today := records[0]
	avg := mean(moodLevels(records))

	trend := ""
	if len(records) >= MinRecordsForTrend {
		// Strict 3-in-a-row monotonic run; ties produce no statement.
		m0, m1, m2 := records[0].Mood, records[1].Mood, records[2].Mood
		switch {
		case m0 > m1 && m1 > m2:
			trend = " Your mood keeps improving!"
		case m0 < m1 && m1 < m2:
			trend = " Your mood has been sliding, pay attention."
		}
	}

	return fmt.Sprintf("Mood: %s today (%d/5). Average: %.1f/5.%s",
		today.MoodLabel(), today.Mood, avg, trend)
}

func (s *AnalyzerService) aggressionAnalysis(records []domain.DailyRecord) string {
	today := records[0]
	avg := mean(aggressionLevels(records))

	comparison := "At or below your usual level."
	if float64(today.Aggression) > avg {
		comparison = "Above your usual level, worth examining why."
	}

	return fmt.Sprintf("Aggression: %s today (%d/3). %s",
		today.AggressionLabel(), today.Aggression, comparison)
}

func (s *AnalyzerService) correlationInsights(records []domain.DailyRecord) string {
	if len(records) < MinRecordsForCorrelation {
		return ""
	}

	sleep := sleepHours(records)
	activity := activityHours(records)
	mood := moodLevels(records)
	aggression := aggressionLevels(records)

	var insights []string

	if r := Pearson(sleep, mood); math.Abs(r) > CorrelationThreshold {
		if r > 0 {
			insights = append(insights, "You tend to be in a better mood on days when you sleep more.")
		} else {
			insights = append(insights, "Sleep and mood appear inversely related for you.")
		}
	}

	if r := Pearson(activity, mood); math.Abs(r) > CorrelationThreshold {
		if r > 0 {
			insights = append(insights, "Active days line up with better moods.")
		} else {
			insights = append(insights, "Physical activity seems to weigh on your mood.")
		}
	}

	if r := Pearson(sleep, aggression); math.Abs(r) > CorrelationThreshold {
		if r < 0 {
			insights = append(insights, "You get more aggressive on days with less sleep.")
		} else {
			insights = append(insights, "More sleep seems to come with more tension for you, worth a look.")
		}
	}

	if len(insights) == 0 {
		return ""
	}
	return "Patterns: " + strings.Join(insights, " ")
}

// Pearson computes the Pearson correlation coefficient over two equal-length
// series. Degenerate input (mismatched, short, or zero-variance series) is
// defined as 0 rather than an error.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func sleepHours(records []domain.DailyRecord) []float64 {
	xs := make([]float64, len(records))
	for i, r := range records {
		xs[i] = r.SleepHours
	}
	return xs
}

func activityHours(records []domain.DailyRecord) []float64 {
	xs := make([]float64, len(records))
	for i, r := range records {
		xs[i] = r.ActivityHours
	}
	return xs
}

func moodLevels(records []domain.DailyRecord) []float64 {
	xs := make([]float64, len(records))
	for i, r := range records {
		xs[i] = float64(r.Mood)
	}
	return xs
}

func aggressionLevels(records []domain.DailyRecord) []float64 {
	xs := make([]float64, len(records))
	for i, r := range records {
		xs[i] = float64(r.Aggression)
	}
	return xs
}

// trimFloat renders hours without a trailing ".0" for whole values.
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
