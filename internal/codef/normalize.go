package codef

import (
	"strconv"
	"time"
)

// AmountToInt64 parses an aggregator amount string into a non-negative
// integer of minor units. Sign markers, separators and currency symbols are
// stripped; empty or unparseable input yields 0, which callers treat as
// "no movement", never as an error.
func AmountToInt64(raw string) int64 {
	digits := digitsOnly(raw)
	if digits == "" {
		return 0
	}
	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return amount
}

// ParseOccurrence combines the aggregator's raw date and time strings into a
// timestamp. The date must carry at least 8 digits (YYYYMMDD); anything less
// returns ok=false and the caller skips the row. The time degrades from
// seconds precision (HHMMSS) to minute precision (HHMM) to midnight, because
// aggregators omit time for some transaction types.
func ParseOccurrence(rawDate, rawTime string) (time.Time, bool) {
	date := digitsOnly(rawDate)
	if len(date) < 8 {
		return time.Time{}, false
	}

	year, err1 := strconv.Atoi(date[0:4])
	month, err2 := strconv.Atoi(date[4:6])
	day, err3 := strconv.Atoi(date[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	hour, minute, second := parseTimeOfDay(rawTime)

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true
}

func parseTimeOfDay(rawTime string) (hour, minute, second int) {
	digits := digitsOnly(rawTime)

	switch {
	case len(digits) >= 6:
		hour, _ = strconv.Atoi(digits[0:2])
		minute, _ = strconv.Atoi(digits[2:4])
		second, _ = strconv.Atoi(digits[4:6])
	case len(digits) >= 4:
		hour, _ = strconv.Atoi(digits[0:2])
		minute, _ = strconv.Atoi(digits[2:4])
	}

	if hour > 23 || minute > 59 || second > 59 {
		return 0, 0, 0
	}
	return hour, minute, second
}

func digitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
