package extraction

import (
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// Field-name drift observed across model completions.
var seizureFieldAliases = map[string]string{
	"seizure_time":             "start_time",
	"seizure_onset_electrodes": "electrodes_involved",
}

// NormalizeSeizures parses a raw completion into validated seizure records
// for the given day. It never fails: a completion with no JSON array yields
// nothing, and an entry that stays incomplete after alias resolution is
// skipped without affecting its siblings.
func NormalizeSeizures(day int, raw string) []SeizureRecord {
	entries, err := decodeEntries(raw)
	if err != nil {
		logger.Debug("Seizure completion rejected",
			zap.Int("day", day),
			zap.Error(err),
		)
		return nil
	}

	var records []SeizureRecord
	for _, entry := range entries {
		for alias, canonical := range seizureFieldAliases {
			if _, has := entry[canonical]; !has {
				if v, hasAlias := entry[alias]; hasAlias {
					entry[canonical] = v
				}
			}
		}

		startRaw, hasStart := entry["start_time"]
		electrodesRaw, hasElectrodes := entry["electrodes_involved"]
		durationRaw, hasDuration := entry["duration"]
		if !hasStart || !hasElectrodes || !hasDuration {
			continue
		}

		record := SeizureRecord{Day: day}

		if s, ok := startRaw.(string); ok {
			if normalized, ok := NormalizeTimeString(s); ok {
				record.StartTime = &normalized
			}
		}

		switch v := electrodesRaw.(type) {
		case string:
			record.Electrodes = SplitElectrodes(v)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					record.Electrodes = append(record.Electrodes, SplitElectrodes(s)...)
				}
			}
		}

		switch v := durationRaw.(type) {
		case string:
			record.DurationSeconds = DurationToSeconds(v)
		case float64:
			record.DurationSeconds = int(v)
		}

		records = append(records, record)
	}

	return records
}
