package models

import "time"

type Patient struct {
	ID        string
	Name      string
	DOB       *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Report struct {
	ID         string
	PatientID  string
	Summary    string
	Filepath   string
	Filetype   string
	RawContent string
	Days       int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Seizure struct {
	ID              string
	ReportID        string
	Day             int
	StartTime       *string // "HH:MM:SS", nil when the model could not pin one down
	DurationSeconds int
	Electrodes      []string
	CreatedAt       time.Time
}

type Electrode struct {
	ID   int64
	Name string
}

type DrugAdministration struct {
	ID        string
	ReportID  string
	Name      string
	Day       int
	DoseMG    *float64
	TimeOfDay *string
	CreatedAt time.Time
}

type ChatMessage struct {
	ID        string
	ReportID  string
	Query     string
	Response  string
	CreatedAt time.Time
}
