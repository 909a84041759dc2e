// Package graphs derives chart-ready series from extracted records: seizure
// counts and durations bucketed by day, a continuous-hours timeline with
// drug administration overlays, and per-electrode onset counts.
package graphs

import (
	"sort"
	"time"

	"github.com/gabrielfortuny/neuroclinaical/internal/extraction"
)

// defaultDoseCeilingMG scales the dose axis when a report has no
// administrations to measure.
const defaultDoseCeilingMG = 100

// doseCeilingHeadroomMG is added above the largest administered dose so the
// tallest point never touches the top of the chart.
const doseCeilingHeadroomMG = 200

// DayCount is one day's bucket in a per-day series. Days run contiguously
// from 1 even when intermediate days are empty.
type DayCount struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

// DayDurations carries every seizure duration observed on one day, in
// record order, for stacked-bar rendering.
type DayDurations struct {
	Day              int   `json:"day"`
	DurationsSeconds []int `json:"durations_seconds"`
}

// SeizureBar is one seizure positioned on the continuous timeline. Hours is
// the offset from midnight of day 1, so day 2 at 06:00 is 30.0.
type SeizureBar struct {
	Day             int     `json:"day"`
	Hours           float64 `json:"hours"`
	DurationSeconds int     `json:"duration_seconds"`
}

// DosePoint is one drug administration on the continuous timeline.
type DosePoint struct {
	Day    int     `json:"day"`
	Hours  float64 `json:"hours"`
	Name   string  `json:"name"`
	DoseMG float64 `json:"dose_mg"`
}

// Timeline is the combined seizure/drug view over the monitoring period.
type Timeline struct {
	Seizures        []SeizureBar `json:"seizures"`
	Administrations []DosePoint  `json:"administrations"`
	DayCount        int          `json:"day_count"`
	DoseCeilingMG   float64      `json:"dose_ceiling_mg"`
}

// ElectrodeCount is the number of seizures a contact participated in at
// onset.
type ElectrodeCount struct {
	Electrode string `json:"electrode"`
	Count     int    `json:"count"`
}

// SeizureCountsByDay buckets seizures into contiguous day counts from day 1
// through the last observed day. No seizures yields a single empty day 1
// bucket.
func SeizureCountsByDay(seizures []extraction.SeizureRecord) []DayCount {
	perDay := map[int]int{}
	for _, s := range seizures {
		perDay[s.Day]++
	}

	counts := make([]DayCount, maxDay(seizures))
	for i := range counts {
		counts[i] = DayCount{Day: i + 1, Count: perDay[i+1]}
	}
	return counts
}

// SeizureDurationsByDay groups seizure durations by day for stacked-length
// bars, same contiguous-day contract as SeizureCountsByDay.
func SeizureDurationsByDay(seizures []extraction.SeizureRecord) []DayDurations {
	perDay := map[int][]int{}
	for _, s := range seizures {
		perDay[s.Day] = append(perDay[s.Day], s.DurationSeconds)
	}

	days := make([]DayDurations, maxDay(seizures))
	for i := range days {
		days[i] = DayDurations{Day: i + 1, DurationsSeconds: perDay[i+1]}
	}
	return days
}

// BuildTimeline projects seizures and administrations onto a single
// continuous-hours axis. Records without a usable time of day are dropped
// from the timeline (they still count in the per-day series). The dose axis
// ceiling is the largest administered dose plus headroom, or a fixed default
// when nothing was administered.
func BuildTimeline(seizures []extraction.SeizureRecord, drugs []extraction.DrugRecord) Timeline {
	timeline := Timeline{DayCount: maxDay(seizures)}

	for _, s := range seizures {
		if s.StartTime == nil {
			continue
		}
		hours, ok := hoursOnTimeline(s.Day, *s.StartTime)
		if !ok {
			continue
		}
		timeline.Seizures = append(timeline.Seizures, SeizureBar{
			Day:             s.Day,
			Hours:           hours,
			DurationSeconds: s.DurationSeconds,
		})
	}

	var maxDose float64
	for _, d := range drugs {
		if d.TimeOfDay == nil || d.DoseMG == nil {
			continue
		}
		hours, ok := hoursOnTimeline(d.Day, *d.TimeOfDay)
		if !ok {
			continue
		}
		if *d.DoseMG > maxDose {
			maxDose = *d.DoseMG
		}
		timeline.Administrations = append(timeline.Administrations, DosePoint{
			Day:    d.Day,
			Hours:  hours,
			Name:   d.Name,
			DoseMG: *d.DoseMG,
		})
	}

	if len(timeline.Administrations) == 0 {
		timeline.DoseCeilingMG = defaultDoseCeilingMG
	} else {
		timeline.DoseCeilingMG = maxDose + doseCeilingHeadroomMG
	}

	return timeline
}

// ElectrodeCounts tallies seizures per onset electrode, sorted by contact
// name.
func ElectrodeCounts(seizures []extraction.SeizureRecord) []ElectrodeCount {
	perElectrode := map[string]int{}
	for _, s := range seizures {
		for _, e := range s.Electrodes {
			perElectrode[e]++
		}
	}

	counts := make([]ElectrodeCount, 0, len(perElectrode))
	for electrode, count := range perElectrode {
		counts = append(counts, ElectrodeCount{Electrode: electrode, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Electrode < counts[j].Electrode
	})
	return counts
}

func maxDay(seizures []extraction.SeizureRecord) int {
	max := 1
	for _, s := range seizures {
		if s.Day > max {
			max = s.Day
		}
	}
	return max
}

func hoursOnTimeline(day int, clock string) (float64, bool) {
	parsed, err := time.Parse("15:04:05", clock)
	if err != nil {
		return 0, false
	}
	hours := float64(day-1)*24 +
		float64(parsed.Hour()) +
		float64(parsed.Minute())/60 +
		float64(parsed.Second())/3600
	return hours, true
}
