package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	allWhitespace  = regexp.MustCompile(`\s+`)
	prefixedRange  = regexp.MustCompile(`^([A-Z]+)(\d+)[/-](\d+)$`)
	bareRange      = regexp.MustCompile(`^\d+[/-]\d+$`)
	digitsOnly     = regexp.MustCompile(`^\d+$`)
	stripDigits    = regexp.MustCompile(`\d+`)
	stripNonDigits = regexp.MustCompile(`\D+`)
)

// SplitElectrodes expands clinical electrode shorthand into individual
// contact identifiers: "RMH1-4" (or "RMH1/4") becomes RMH1..RMH4, and the
// comma-scattered variants "RMH1,-,4" and "RMH,1-4" expand the same way.
// Tokens that match no range form pass through unchanged.
func SplitElectrodes(electrodeStr string) []string {
	normalized := allWhitespace.ReplaceAllString(strings.ToUpper(electrodeStr), "")
	if normalized == "" {
		return nil
	}

	parts := strings.Split(normalized, ",")

	var electrodes []string
	for i := 0; i < len(parts); {
		current := parts[i]

		// "RMH1" "-" "4" scattered across three tokens
		if i+2 < len(parts) && (parts[i+1] == "-" || parts[i+1] == "/") && digitsOnly.MatchString(parts[i+2]) {
			prefix := stripDigits.ReplaceAllString(current, "")
			start, startErr := strconv.Atoi(stripNonDigits.ReplaceAllString(current, ""))
			end, endErr := strconv.Atoi(parts[i+2])
			if startErr == nil && endErr == nil {
				electrodes = append(electrodes, expandRange(prefix, start, end)...)
				i += 3
				continue
			}
		}

		// "RMH1-4" or "RMH1/4"
		if m := prefixedRange.FindStringSubmatch(current); m != nil {
			start, _ := strconv.Atoi(m[2])
			end, _ := strconv.Atoi(m[3])
			electrodes = append(electrodes, expandRange(m[1], start, end)...)
			i++
			continue
		}

		// "RMH" followed by "1-4"
		if i+1 < len(parts) && bareRange.MatchString(parts[i+1]) {
			bounds := strings.FieldsFunc(parts[i+1], func(r rune) bool { return r == '-' || r == '/' })
			start, _ := strconv.Atoi(bounds[0])
			end, _ := strconv.Atoi(bounds[1])
			electrodes = append(electrodes, expandRange(current, start, end)...)
			i += 2
			continue
		}

		if current != "" {
			electrodes = append(electrodes, current)
		}
		i++
	}

	return electrodes
}

func expandRange(prefix string, start, end int) []string {
	if end < start {
		start, end = end, start
	}
	out := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, fmt.Sprintf("%s%d", prefix, n))
	}
	return out
}
