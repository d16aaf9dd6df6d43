package service

import (
	"errors"
	"testing"
)

func TestParseSleepHours(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr error
	}{
		{"7.5", 7.5, nil},
		{"0", 0, nil},
		{"24", 24, nil},
		{" 8 ", 8, nil},
		{"7,5", 7.5, nil},
		{"-1", 0, ErrOutOfRange},
		{"24.5", 0, ErrOutOfRange},
		// ParseFloat parses these, but they are not durations.
		{"NaN", 0, ErrOutOfRange},
		{"nan", 0, ErrOutOfRange},
		{"Inf", 0, ErrOutOfRange},
		{"+Inf", 0, ErrOutOfRange},
		{"-Inf", 0, ErrOutOfRange},
		{"seven", 0, ErrNotANumber},
		{"", 0, ErrNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSleepHours(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseActivityHours(t *testing.T) {
	if _, err := ParseActivityHours("25"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	v, err := ParseActivityHours("1.5")
	if err != nil || v != 1.5 {
		t.Errorf("ParseActivityHours(1.5) = %v, %v", v, err)
	}
}

func TestParseAggression(t *testing.T) {
	tests := []struct {
		token   string
		want    int
		wantErr error
	}{
		{"low", 1, nil},
		{"normal", 2, nil},
		{"high", 3, nil},
		{"Low", 0, ErrUnknownOption},
		{"extreme", 0, ErrUnknownOption},
		{"", 0, ErrUnknownOption},
	}

	for _, tt := range tests {
		got, err := ParseAggression(tt.token)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseAggression(%q) err = %v, want %v", tt.token, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseAggression(%q) = %d, want %d", tt.token, got, tt.want)
		}
	}
}

func TestParseMood(t *testing.T) {
	for i := 1; i <= 5; i++ {
		token := string(rune('0' + i))
		got, err := ParseMood(token)
		if err != nil || got != i {
			t.Errorf("ParseMood(%q) = %d, %v", token, got, err)
		}
	}
	if _, err := ParseMood("6"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}
	if _, err := ParseMood("happy"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr error
	}{
		{"30", 30, nil},
		{"1", 1, nil},
		{"120", 120, nil},
		{"0", 0, ErrOutOfRange},
		{"121", 0, ErrOutOfRange},
		{"thirty", 0, ErrNotANumber},
	}

	for _, tt := range tests {
		got, err := ParseAge(tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseAge(%q) err = %v, want %v", tt.input, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseAge(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
