package gacha

import "time"

// DateLayout is the UTC calendar date format used for draw gating and streaks.
const DateLayout = "2006-01-02"

// Today returns the current UTC calendar date string. Draw days roll over at
// UTC midnight, not local midnight.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// CalculateStreak applies the streak rules for a draw happening on today:
// drawing the day after the last draw extends the streak, drawing the same
// day leaves it unchanged, and any longer gap (or no history) starts over
// at one.
func CalculateStreak(lastDate, today string, streak int) int {
	if lastDate == "" {
		return 1
	}

	last, err := time.Parse(DateLayout, lastDate)
	if err != nil {
		return 1
	}
	cur, err := time.Parse(DateLayout, today)
	if err != nil {
		return 1
	}

	switch daysDiff := int(cur.Sub(last).Hours() / 24); daysDiff {
	case 0:
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}

// StreakExpired reports whether a streak has lapsed: the last draw was before
// yesterday, so today's draw would restart at one.
func StreakExpired(lastDate, today string) bool {
	if lastDate == "" {
		return false
	}
	last, err := time.Parse(DateLayout, lastDate)
	if err != nil {
		return false
	}
	cur, err := time.Parse(DateLayout, today)
	if err != nil {
		return false
	}
	return int(cur.Sub(last).Hours()/24) > 1
}
