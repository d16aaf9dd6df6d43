package domain

import "strings"

// AnalysisResult is the derived, human-readable view over a user's recent
// records. It is recomputed on demand and never persisted as source of truth.
type AnalysisResult struct {
	Day                string   `json:"day"`
	InsufficientData   bool     `json:"insufficient_data"`
	SleepAnalysis      string   `json:"sleep_analysis"`
	ActivityAnalysis   string   `json:"activity_analysis"`
	MoodAnalysis       string   `json:"mood_analysis"`
	AggressionAnalysis string   `json:"aggression_analysis"`
	Correlations       string   `json:"correlations"`
	Recommendations    []string `json:"recommendations"`
	OverallScore       float64  `json:"overall_score"`
}

// InsufficientDataText is returned when fewer than two records exist.
const InsufficientDataText = "Not enough data to analyze yet. Keep logging for a few more days."

// Render concatenates the non-empty analysis sections in fixed order:
// sleep, activity, mood, aggression, correlations.
func (a AnalysisResult) Render() string {
	if a.InsufficientData {
		return InsufficientDataText
	}

	sections := make([]string, 0, 5)
	for _, s := range []string{
		a.SleepAnalysis,
		a.ActivityAnalysis,
		a.MoodAnalysis,
		a.AggressionAnalysis,
		a.Correlations,
	} {
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n\n")
}
