package attendance

import "errors"

var ErrNoAttendance = errors.New("no attendance records for period")

// SuggestedScore converts a lateness percentage into the advisory 1-5 score
// shown next to the attendance metric.
func SuggestedScore(latenessPercent float64) int {
	switch {
	case latenessPercent <= 1:
		return 5
	case latenessPercent <= 3:
		return 4
	case latenessPercent <= 5:
		return 3
	case latenessPercent <= 10:
		return 2
	default:
		return 1
	}
}

// Percent returns late days as a percentage of recorded days, clamped to [0, 100].
func Percent(late, total int) (float64, error) {
	if total <= 0 {
		return 0, ErrNoAttendance
	}
	pct := float64(late) / float64(total) * 100
	if pct < 0 {
		return 0, nil
	}
	if pct > 100 {
		return 100, nil
	}
	return pct, nil
}
