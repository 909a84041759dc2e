package extraction

import (
	"regexp"
	"strconv"
)

var (
	minutesPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:min|mins|minute|minutes)`)
	secondsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:sec|secs|second|seconds)`)
)

// DurationToSeconds converts a human-readable duration like "1 min 30 sec"
// to seconds. Minutes and seconds are matched independently; an absent
// component counts as zero, so a string with neither ("90", "brief") yields 0.
func DurationToSeconds(durationStr string) int {
	var total int

	if m := minutesPattern.FindStringSubmatch(durationStr); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		total += minutes * 60
	}

	if m := secondsPattern.FindStringSubmatch(durationStr); m != nil {
		seconds, _ := strconv.Atoi(m[1])
		total += seconds
	}

	return total
}
