package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const clockFormat = "15:04:05"

// Accepted layouts, tried in order: 24h with seconds, 24h, bare hour with
// meridiem, hour:minute with meridiem.
var timeLayouts = []string{"15:04:05", "15:04", "3pm", "3:04pm"}

var bareHour = regexp.MustCompile(`^\d{1,2}$`)

// NormalizeTimeString coerces a free-form time of day ("8pm", "20:00", "8")
// to canonical "HH:MM:SS". The second return value reports whether the input
// was parsable.
func NormalizeTimeString(t string) (string, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(t))
	if cleaned == "" {
		return "", false
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			return parsed.Format(clockFormat), true
		}
	}

	if bareHour.MatchString(cleaned) {
		hour, err := strconv.Atoi(cleaned)
		if err == nil && hour >= 0 && hour <= 23 {
			return fmt.Sprintf("%02d:00:00", hour), true
		}
	}

	return "", false
}

// frequency code -> canonical administration times
var codeToTimes = map[string][]string{
	"QD":    {"08:00:00"},
	"BID":   {"08:00:00", "20:00:00"},
	"TID":   {"08:00:00", "14:00:00", "20:00:00"},
	"QID":   {"06:00:00", "12:00:00", "18:00:00", "00:00:00"},
	"QHS":   {"22:00:00"},
	"HS":    {"22:00:00"},
	"PRN":   {},
	"QAM":   {"08:00:00"},
	"QPM":   {"20:00:00"},
	"STAT":  {"00:00:00"},
	"MG/MG": {"08:00:00", "20:00:00"},
	"AC":    {"07:00:00", "12:00:00", "18:00:00"},
	"PC":    {"08:00:00", "13:00:00", "19:00:00"},
}

var qxhPattern = regexp.MustCompile(`^Q(\d+)H`)

// timesFromFrequencyCode derives a time-of-day list from a clinical
// frequency code. Unknown codes return ok=false so the caller can fall back
// to interpolation. A known code with no times (PRN) returns an empty list
// with ok=true.
func timesFromFrequencyCode(code string) ([]string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if times, known := codeToTimes[code]; known {
		return times, true
	}

	if m := qxhPattern.FindStringSubmatch(code); m != nil {
		hours, err := strconv.Atoi(m[1])
		if err == nil && hours > 0 && hours <= 24 {
			n := 24 / hours
			times := make([]string, 0, n)
			for i := 0; i < n; i++ {
				times = append(times, fmt.Sprintf("%02d:00:00", (i*hours)%24))
			}
			return times, true
		}
	}

	return nil, false
}

// interpolateTimes spreads n administration times evenly between 08:00:00
// and 22:00:00 inclusive. A single dose lands at 08:00:00.
func interpolateTimes(n int) []string {
	if n <= 0 {
		return nil
	}

	start := time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)
	if n == 1 {
		return []string{start.Format(clockFormat)}
	}

	end := time.Date(0, 1, 1, 22, 0, 0, 0, time.UTC)
	step := end.Sub(start) / time.Duration(n-1)

	times := make([]string, 0, n)
	for i := 0; i < n; i++ {
		times = append(times, start.Add(step*time.Duration(i)).Format(clockFormat))
	}
	return times
}
