package service

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNotANumber    = errors.New("not a number")
	ErrOutOfRange    = errors.New("out of range")
	ErrUnknownOption = errors.New("unknown option")
)

// Canonical option tokens produced by the transport adapter. The core never
// sees keyboard labels or emojis.
var aggressionTokens = map[string]int{
	"low":    1,
	"normal": 2,
	"high":   3,
}

var moodTokens = map[string]int{
	"1": 1,
	"2": 2,
	"3": 3,
	"4": 4,
	"5": 5,
}

func parseHours(text string) (float64, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, ErrNotANumber
	}
	// ParseFloat accepts "NaN" and "Inf"; neither is a duration.
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 24 {
		return 0, ErrOutOfRange
	}
	return v, nil
}

// ParseSleepHours validates a sleep duration answer in [0,24] hours.
func ParseSleepHours(text string) (float64, error) {
	return parseHours(text)
}

// ParseActivityHours validates a physical-activity duration answer in [0,24] hours.
func ParseActivityHours(text string) (float64, error) {
	return parseHours(text)
}

// ParseAggression maps a canonical aggression token to its 1-3 ordinal.
func ParseAggression(token string) (int, error) {
	if v, ok := aggressionTokens[token]; ok {
		return v, nil
	}
	return 0, ErrUnknownOption
}

// ParseMood maps a canonical mood token to its 1-5 ordinal.
func ParseMood(token string) (int, error) {
	if v, ok := moodTokens[token]; ok {
		return v, nil
	}
	return 0, ErrUnknownOption
}

// ParseAge validates a registration age answer in [1,120].
func ParseAge(text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, ErrNotANumber
	}
	if v < 1 || v > 120 {
		return 0, ErrOutOfRange
	}
	return v, nil
}
