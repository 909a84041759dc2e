package report

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// DaySpan is the contiguous portion of an LTM report attributed to a single
// monitoring day.
type DaySpan struct {
	Label string
	Day   int
	Text  string
}

var (
	trailingSummaryMarker = regexp.MustCompile(`(?i)summary of eeg and behavior`)
	dayMarker             = regexp.MustCompile(`Day\s+(\d+)`)
)

// Segment splits raw report text into per-day spans, keyed by the "Day N"
// headers found in the text. Everything from the trailing "Summary of EEG and
// Behavior" section onward is boilerplate, not day content, and is discarded.
// Text preceding the first day header is discarded too. A report with no day
// headers yields no spans.
//
// A repeated day header restarts that day's accumulation, so the last
// occurrence wins.
func Segment(text string) []DaySpan {
	if loc := trailingSummaryMarker.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	markers := dayMarker.FindAllStringSubmatchIndex(text, -1)
	if len(markers) == 0 {
		return nil
	}

	spans := make([]DaySpan, 0, len(markers))
	index := make(map[string]int, len(markers))

	for i, m := range markers {
		label := normalizeLabel(text[m[0]:m[1]])
		day, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}

		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}

		body := strings.TrimSpace(text[m[1]:end])
		if body != "" {
			body += "\n"
		}

		if at, seen := index[label]; seen {
			spans[at].Text = body
			continue
		}

		index[label] = len(spans)
		spans = append(spans, DaySpan{Label: label, Day: day, Text: body})
	}

	logger.Debug("Report segmented", zap.Int("days", len(spans)))

	return spans
}

// SegmentWithFallback applies the implicit-day policy for reports that carry
// no recognizable day headers: when implicitDayOne is set, the entire text is
// treated as "Day 1" so extraction still runs; otherwise no spans are
// returned and the caller skips extraction.
func SegmentWithFallback(text string, implicitDayOne bool) []DaySpan {
	spans := Segment(text)
	if len(spans) > 0 || !implicitDayOne {
		return spans
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	logger.Info("No day headers found, treating report as a single implicit day")

	return []DaySpan{{Label: "Day 1", Day: 1, Text: trimmed + "\n"}}
}

func normalizeLabel(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
