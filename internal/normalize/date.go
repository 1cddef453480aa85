package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
)

// Layouts tried after cast's built-in set; exports written by
// spreadsheet tools commonly use them.
var extraLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
	"1/2/06",
	"1/2/06 15:04",
}

// ParseDate parses a date value from an export. It accepts time.Time
// values and strings, trying generic layouts first and an explicit
// month/day/year slash form second. ok is false when nothing parses;
// callers must leave such values out of any date-bucketed aggregate.
func ParseDate(v any) (t time.Time, ok bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, false
		}
		return *d, true
	}

	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return time.Time{}, false
	}

	if t, err := cast.ToTimeInDefaultLocationE(s, time.Local); err == nil && !t.IsZero() {
		return t, true
	}
	for _, layout := range extraLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return parseSlashDate(s)
}

// parseSlashDate parses M/D/YYYY, reading the leading integer of each
// part so trailing time components are ignored. Out-of-range months or
// days normalize the way time.Date does.
func parseSlashDate(s string) (time.Time, bool) {
	if !strings.Contains(s, "/") {
		return time.Time{}, false
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, ok := leadingInt(p)
		if !ok {
			return time.Time{}, false
		}
		nums[i] = n
	}
	month, day, year := nums[0], nums[1], nums[2]
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MonthKey returns the "YYYY-MM" bucket key for t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// FormatDate renders t the way the closings table shows dates (M/D/YYYY).
func FormatDate(t time.Time) string {
	return t.Format("1/2/2006")
}
