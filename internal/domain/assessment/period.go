package assessment

import (
	"strconv"
	"strings"
	"time"
)

// PeriodStart derives the first day of a review period token. Recognised
// forms are "2026", "2026-S1".."2026-S2" and "2026-Q1".."2026-Q4"; any other
// token is opaque and yields false.
func PeriodStart(period string) (time.Time, bool) {
	token := strings.ToUpper(strings.TrimSpace(period))
	yearPart, rest, hasRest := strings.Cut(token, "-")
	year, err := strconv.Atoi(yearPart)
	if err != nil || len(yearPart) != 4 {
		return time.Time{}, false
	}
	month := time.January
	if hasRest {
		if len(rest) != 2 {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(rest[1:])
		if err != nil {
			return time.Time{}, false
		}
		switch {
		case rest[0] == 'S' && n >= 1 && n <= 2:
			month = time.Month(1 + (n-1)*6)
		case rest[0] == 'Q' && n >= 1 && n <= 4:
			month = time.Month(1 + (n-1)*3)
		default:
			return time.Time{}, false
		}
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
}
