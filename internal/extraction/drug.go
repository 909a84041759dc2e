package extraction

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// NormalizeDrugs parses a raw completion into drug administration records
// for the given day, one record per reconciled (dose, time) pair. Same
// no-fail contract as NormalizeSeizures: malformed completions yield
// nothing, broken entries are skipped individually.
func NormalizeDrugs(day int, raw string) []DrugRecord {
	entries, err := decodeEntries(raw)
	if err != nil {
		logger.Debug("Drug completion rejected",
			zap.Int("day", day),
			zap.Error(err),
		)
		return nil
	}

	var records []DrugRecord
	for _, entry := range entries {
		name := CleanDrugName(stringField(entry, "name"))
		if name == "" {
			continue
		}

		doses := parseDoses(entry["dose_mg"])
		times := parseTimes(entry["time_of_administration"])
		frequencyCode := stringField(entry, "frequency_code")

		for _, pair := range reconcile(doses, times, frequencyCode) {
			timeOfDay := pair.timeOfDay
			records = append(records, DrugRecord{
				Day:       day,
				Name:      name,
				DoseMG:    pair.dose,
				TimeOfDay: &timeOfDay,
			})
		}
	}

	return records
}

type dosePair struct {
	dose      *float64 // nil for the "n/a" sentinel
	timeOfDay string
}

// reconcile resolves the dose-list/time-list length mismatch policy:
// equal lengths pair positionally; a singleton dose replicates across all
// times; any other mismatch treats the times as authoritative and repeats
// the first dose. With no usable times the clinical frequency code supplies
// the schedule, falling back to even interpolation across the waking day.
func reconcile(doses []*float64, times []string, frequencyCode string) []dosePair {
	if len(times) > 0 {
		switch {
		case len(times) == len(doses):
			// positional
		case len(doses) == 1:
			doses = repeatDose(doses[0], len(times))
		default:
			var first *float64
			if len(doses) > 0 {
				first = doses[0]
			}
			doses = repeatDose(first, len(times))
		}
		return zipPairs(doses, times)
	}

	if len(doses) == 0 {
		return nil
	}

	schedule, known := timesFromFrequencyCode(frequencyCode)
	if !known {
		schedule = interpolateTimes(len(doses))
	}
	if len(schedule) == 0 {
		// PRN and friends: administered as needed, nothing to schedule
		return nil
	}

	for len(schedule) < len(doses) {
		schedule = append(schedule, schedule[len(schedule)-1])
	}
	for len(doses) < len(schedule) {
		doses = append(doses, doses[len(doses)-1])
	}

	return zipPairs(doses, schedule)
}

func zipPairs(doses []*float64, times []string) []dosePair {
	pairs := make([]dosePair, len(times))
	for i := range times {
		pairs[i] = dosePair{dose: doses[i], timeOfDay: times[i]}
	}
	return pairs
}

func repeatDose(dose *float64, n int) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = dose
	}
	return out
}

// parseDoses accepts the dose_mg shapes models actually emit: a number, a
// numeric string, the "n/a" sentinel, or a list mixing all three. "n/a"
// becomes a nil dose.
func parseDoses(v any) []*float64 {
	switch value := v.(type) {
	case float64:
		return []*float64{&value}
	case string:
		return []*float64{parseDoseToken(value)}
	case []any:
		doses := make([]*float64, 0, len(value))
		for _, item := range value {
			switch dose := item.(type) {
			case float64:
				d := dose
				doses = append(doses, &d)
			case string:
				doses = append(doses, parseDoseToken(dose))
			default:
				doses = append(doses, nil)
			}
		}
		return doses
	default:
		return nil
	}
}

func parseDoseToken(s string) *float64 {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "n/a" {
		return nil
	}
	if parsed, err := strconv.ParseFloat(strings.TrimSuffix(s, "mg"), 64); err == nil {
		return &parsed
	}
	return nil
}

// parseTimes normalizes each time entry independently and drops the
// unparsable ones.
func parseTimes(v any) []string {
	var inputs []string
	switch value := v.(type) {
	case string:
		if strings.EqualFold(strings.TrimSpace(value), "n/a") {
			return nil
		}
		inputs = []string{value}
	case []any:
		for _, item := range value {
			if s, ok := item.(string); ok {
				inputs = append(inputs, s)
			}
		}
	default:
		return nil
	}

	var times []string
	for _, input := range inputs {
		if normalized, ok := NormalizeTimeString(input); ok {
			times = append(times, normalized)
		}
	}
	return times
}

func stringField(entry map[string]any, key string) string {
	if s, ok := entry[key].(string); ok {
		return s
	}
	return ""
}
