// Package extraction turns raw model completions into validated clinical
// records: seizure events and drug administrations, keyed by monitoring day.
package extraction

// SeizureRecord is one validated seizure event. Never mutated after
// creation; the persistence layer owns electrode dimension dedup.
type SeizureRecord struct {
	Day             int
	StartTime       *string // "HH:MM:SS", nil when the source had no parsable time
	DurationSeconds int
	Electrodes      []string // ranges expanded, order preserved, dedup not guaranteed
}

// DrugRecord is one (dose, time) administration pair. A single model entry
// naming a drug with several doses or times expands into several records.
type DrugRecord struct {
	Day       int
	Name      string
	DoseMG    *float64 // nil when the source used the "n/a" sentinel
	TimeOfDay *string  // "HH:MM:SS", nil only for records that never got a time
}

// Kind selects which normalizer an extraction run uses.
type Kind string

const (
	KindSeizure Kind = "seizure"
	KindDrug    Kind = "drug"
)

// outcome is per-day retry bookkeeping; it never leaves this package.
type outcome struct {
	day       int
	attempts  int
	succeeded bool
}
