package service

import (
	"math"
	"strings"
	"testing"

	"github.com/dayline/dayline/internal/domain"
	"go.uber.org/zap"
)

func rec(day string, sleep, activity float64, aggression, mood int) domain.DailyRecord {
	return domain.DailyRecord{
		ChatID:        1,
		Day:           day,
		SleepHours:    sleep,
		ActivityHours: activity,
		Aggression:    aggression,
		Mood:          mood,
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{
			name: "perfect positive",
			x:    []float64{1, 2, 3, 4, 5},
			y:    []float64{2, 4, 6, 8, 10},
			want: 1,
		},
		{
			name: "perfect negative",
			x:    []float64{1, 2, 3, 4, 5},
			y:    []float64{5, 4, 3, 2, 1},
			want: -1,
		},
		{
			name: "constant series defined as zero",
			x:    []float64{3, 3, 3, 3, 3},
			y:    []float64{3, 3, 3, 3, 3},
			want: 0,
		},
		{
			name: "mismatched lengths",
			x:    []float64{1, 2, 3},
			y:    []float64{1, 2},
			want: 0,
		},
		{
			name: "single element",
			x:    []float64{1},
			y:    []float64{1},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pearson(tt.x, tt.y)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Pearson = %f, want %f", got, tt.want)
			}
			if math.IsNaN(got) {
				t.Error("Pearson must never be NaN")
			}
		})
	}
}

func TestAnalyze_InsufficientData(t *testing.T) {
	svc := NewAnalyzerService(zap.NewNop())

	for _, records := range [][]domain.DailyRecord{
		nil,
		{rec("2025-01-01", 8, 1, 1, 4)},
	} {
		result := svc.Analyze(records)
		if !result.InsufficientData {
			t.Errorf("expected insufficient data for %d records", len(records))
		}
		if result.Render() != domain.InsufficientDataText {
			t.Errorf("unexpected render: %q", result.Render())
		}
	}
}

func TestAnalyze_SleepTrend(t *testing.T) {
	svc := NewAnalyzerService(zap.NewNop())

	// Recent three days average 9h against a longer baseline near 6h.
	improving := []domain.DailyRecord{
		rec("2025-01-07", 9, 1, 1, 3),
		rec("2025-01-06", 9, 1, 1, 3),
		rec("2025-01-05", 9, 1, 1, 3),
		rec("2025-01-04", 6, 1, 1, 3),
		rec("2025-01-03", 6, 1, 1, 3),
		rec("2025-01-02", 6, 1, 1, 3),
		rec("2025-01-01", 6, 1, 1, 3),
	}
	result := svc.Analyze(improving)
	if !strings.Contains(result.SleepAnalysis, "improved") {
		t.Errorf("expected improving trend, got %q", result.SleepAnalysis)
	}

	// Flat series stays within the margin: no trend statement.
	flat := []domain.DailyRecord{
		rec("2025-01-03", 7, 1, 1, 3),
		rec("2025-01-02", 7.2, 1, 1, 3),
		rec("2025-01-01", 7.1, 1, 1, 3),
	}
	result = svc.Analyze(flat)
	if strings.Contains(result.SleepAnalysis, "improved") || strings.Contains(result.SleepAnalysis, "declined") {
		t.Errorf("expected no trend, got %q", result.SleepAnalysis)
	}
}

func TestAnalyze_MoodTrend(t *testing.T) {
	svc := NewAnalyzerService(zap.NewNop())

	tests := []struct {
		name  string
		moods [3]int // newest first
		want  string
	}{
		{"strictly improving", [3]int{4, 3, 2}, "improving"},
		{"strictly declining", [3]int{2, 3, 4}, "sliding"},
		{"non-monotonic", [3]int{3, 2, 4}, ""},
		{"tie breaks the run", [3]int{4, 4, 2}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []domain.DailyRecord{
				rec("2025-01-03", 7, 1, 1, tt.moods[0]),
				rec("2025-01-02", 7, 1, 1, tt.moods[1]),
				rec("2025-01-01", 7, 1, 1, tt.moods[2]),
			}
			result := svc.Analyze(records)
			if tt.want == "" {
				if strings.Contains(result.MoodAnalysis, "improving") || strings.Contains(result.MoodAnalysis, "sliding") {
					t.Errorf("expected no trend, got %q", result.MoodAnalysis)
				}
				return
			}
			if !strings.Contains(result.MoodAnalysis, tt.want) {
				t.Errorf("MoodAnalysis = %q, want mention of %q", result.MoodAnalysis, tt.want)
			}
		})
	}
}

func TestAnalyze_AggressionComparison(t *testing.T) {
	svc := NewAnalyzerService(zap.NewNop())

	aboveUsual := []domain.DailyRecord{
		rec("2025-01-03", 7, 1, 3, 3),
		rec("2025-01-02", 7, 1, 1, 3),
		rec("2025-01-01", 7, 1, 1, 3),
	}
	result := svc.Analyze(aboveUsual)
	if !strings.Contains(result.AggressionAnalysis, "Above your usual") {
		t.Errorf("AggressionAnalysis = %q", result.AggressionAnalysis)
	}

	atUsual := []domain.DailyRecord{
		rec("2025-01-02", 7, 1, 2, 3),
		rec("2025-01-01", 7, 1, 2, 3),
	}
	result = svc.Analyze(atUsual)
	if !strings.Contains(result.AggressionAnalysis, "At or below your usual") {
		t.Errorf("AggressionAnalysis = %q", result.AggressionAnalysis)
	}
}

func TestAnalyze_SleepMoodAntiCorrelation(t *testing.T) {
	svc := NewAnalyzerService(zap.NewNop())

	// Sleep 1..5 exactly anti-correlated with mood 5..1: r = -1.0.
	records := []domain.DailyRecord{
		rec("2025-01-05", 1, 1, 1, 5),
		rec("2025-01-04", 2, 1, 1, 4),
		rec("2025-01-03", 3, 1, 1, 3),
		rec("2025-01-02", 4, 1, 1, 2),
		rec("2025-01-01", 5, 1, 1, 1),
	}

	result := svc.Analyze(records)
	if !strings.Contains(result.Correlations, "inversely related") {
		t.Errorf("expected negative sleep-mood insight, got %q", result.Correlations)
	}
}

func TestAnalyze_NoCorrelationBelowWindow(t *testing.T) {
	svc := NewAnalyzerService(zap.NewNop())

	// Four records: correlations must not be evaluated at all.
	records := []domain.DailyRecord{
		rec("2025-01-04", 1, 1, 1, 5),
		rec("2025-01-03", 2, 1, 1, 4),
		rec("2025-01-02", 3, 1, 1, 3),
		rec("2025-01-01", 4, 1, 1, 2),
	}
	result := svc.Analyze(records)
	if result.Correlations != "" {
		t.Errorf("expected no correlations for N=4, got %q", result.Correlations)
	}
}

func TestAnalyze_RenderOrder(t *testing.T) {
	svc := NewAnalyzerService(zap.NewNop())

	records := []domain.DailyRecord{
		rec("2025-01-02", 8, 2, 1, 4),
		rec("2025-01-01", 7, 1, 1, 3),
	}
	rendered := svc.Analyze(records).Render()

	sleepIdx := strings.Index(rendered, "Sleep:")
	activityIdx := strings.Index(rendered, "Activity:")
	moodIdx := strings.Index(rendered, "Mood:")
	aggressionIdx := strings.Index(rendered, "Aggression:")

	if sleepIdx < 0 || activityIdx < 0 || moodIdx < 0 || aggressionIdx < 0 {
		t.Fatalf("missing sections in %q", rendered)
	}
	if !(sleepIdx < activityIdx && activityIdx < moodIdx && moodIdx < aggressionIdx) {
		t.Errorf("sections out of order in %q", rendered)
	}
}

func TestStddev(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := stddev(xs); math.Abs(got-2) > 1e-9 {
		t.Errorf("stddev = %f, want 2", got)
	}
	if got := stddev([]float64{5}); got != 0 {
		t.Errorf("stddev of single element = %f, want 0", got)
	}
}
