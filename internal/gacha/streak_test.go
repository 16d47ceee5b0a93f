package gacha

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateStreak(t *testing.T) {
	tests := []struct {
		name     string
		lastDate string
		today    string
		streak   int
		expected int
	}{
		{"first ever draw", "", "2024-01-11", 0, 1},
		{"consecutive day extends", "2024-01-10", "2024-01-11", 5, 6},
		{"same day unchanged", "2024-01-11", "2024-01-11", 5, 5},
		{"one day gap resets", "2024-01-09", "2024-01-11", 5, 1},
		{"long gap resets", "2023-12-01", "2024-01-11", 12, 1},
		{"garbage last date resets", "not-a-date", "2024-01-11", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateStreak(tt.lastDate, tt.today, tt.streak))
		})
	}
}

func TestStreakExpired(t *testing.T) {
	tests := []struct {
		name     string
		lastDate string
		today    string
		expected bool
	}{
		{"no history", "", "2024-01-11", false},
		{"drew today", "2024-01-11", "2024-01-11", false},
		{"drew yesterday", "2024-01-10", "2024-01-11", false},
		{"skipped a day", "2024-01-09", "2024-01-11", true},
		{"long gap", "2023-11-01", "2024-01-11", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StreakExpired(tt.lastDate, tt.today))
		})
	}
}

func TestTodayUsesUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2024, 1, 10, 23, 30, 0, 0, loc)

	assert.Equal(t, "2024-01-11", Today(now))
}
