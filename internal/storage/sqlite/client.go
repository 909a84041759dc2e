package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/storage/models"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		dob INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_patients_name ON patients(name);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL,
		summary TEXT,
		filepath TEXT,
		filetype TEXT,
		raw_content TEXT,
		days INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_reports_patient ON reports(patient_id);

	CREATE TABLE IF NOT EXISTS seizures (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		start_time TEXT,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_seizures_report ON seizures(report_id);
	CREATE INDEX IF NOT EXISTS idx_seizures_day ON seizures(day);

	CREATE TABLE IF NOT EXISTS electrodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS seizure_electrodes (
		seizure_id TEXT NOT NULL,
		electrode_id INTEGER NOT NULL,
		PRIMARY KEY (seizure_id, electrode_id),
		FOREIGN KEY (seizure_id) REFERENCES seizures(id) ON DELETE CASCADE,
		FOREIGN KEY (electrode_id) REFERENCES electrodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS drug_administrations (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL,
		name TEXT NOT NULL,
		day INTEGER NOT NULL,
		dose_mg REAL,
		time_of_day TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_drugs_report ON drug_administrations(report_id);
	CREATE INDEX IF NOT EXISTS idx_drugs_day ON drug_administrations(day);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL,
		query TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_chat_report ON chat_messages(report_id);
	CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_messages(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertPatient(p *models.Patient) error {
	query := `
		INSERT INTO patients (id, name, dob, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			dob = excluded.dob,
			updated_at = excluded.updated_at
	`

	var dob *int64
	if p.DOB != nil {
		unix := p.DOB.Unix()
		dob = &unix
	}

	_, err := c.db.Exec(query, p.ID, p.Name, dob, p.CreatedAt.Unix(), p.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert patient: %w", err)
	}

	logger.Debug("Patient inserted", zap.String("patient_id", p.ID))
	return nil
}

func (c *Client) GetPatient(id string) (*models.Patient, error) {
	query := `SELECT id, name, dob, created_at, updated_at FROM patients WHERE id = ?`

	var p models.Patient
	var dob *int64
	var createdAt, updatedAt int64

	err := c.db.QueryRow(query, id).Scan(&p.ID, &p.Name, &dob, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if dob != nil {
		t := time.Unix(*dob, 0)
		p.DOB = &t
	}
	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)

	return &p, nil
}

func (c *Client) InsertReport(r *models.Report) error {
	query := `
		INSERT INTO reports (id, patient_id, summary, filepath, filetype, raw_content, days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			summary = excluded.summary,
			raw_content = excluded.raw_content,
			days = excluded.days,
			updated_at = excluded.updated_at
	`

	_, err := c.db.Exec(
		query,
		r.ID,
		r.PatientID,
		r.Summary,
		r.Filepath,
		r.Filetype,
		r.RawContent,
		r.Days,
		r.CreatedAt.Unix(),
		r.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	logger.Debug("Report inserted", zap.String("report_id", r.ID), zap.String("patient_id", r.PatientID))
	return nil
}

func (c *Client) GetReport(id string) (*models.Report, error) {
	query := `SELECT id, patient_id, summary, filepath, filetype, raw_content, days, created_at, updated_at FROM reports WHERE id = ?`

	var r models.Report
	var createdAt, updatedAt int64

	err := c.db.QueryRow(query, id).Scan(
		&r.ID,
		&r.PatientID,
		&r.Summary,
		&r.Filepath,
		&r.Filetype,
		&r.RawContent,
		&r.Days,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	r.CreatedAt = time.Unix(createdAt, 0)
	r.UpdatedAt = time.Unix(updatedAt, 0)

	return &r, nil
}

func (c *Client) UpdateReportSummary(reportID, summary string) error {
	query := `UPDATE reports SET summary = ?, updated_at = ? WHERE id = ?`

	_, err := c.db.Exec(query, summary, time.Now().Unix(), reportID)
	if err != nil {
		return fmt.Errorf("failed to update report summary: %w", err)
	}

	return nil
}

// InsertSeizure stores the seizure and links its electrodes through the
// association table. Electrode rows are shared across seizures and
// deduplicated by name.
func (c *Client) InsertSeizure(s *models.Seizure) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO seizures (id, report_id, day, start_time, duration_seconds, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.ReportID,
		s.Day,
		s.StartTime,
		s.DurationSeconds,
		s.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert seizure: %w", err)
	}

	for _, name := range s.Electrodes {
		_, err = tx.Exec(`INSERT OR IGNORE INTO electrodes (name) VALUES (?)`, name)
		if err != nil {
			return fmt.Errorf("failed to insert electrode: %w", err)
		}

		var electrodeID int64
		err = tx.QueryRow(`SELECT id FROM electrodes WHERE name = ?`, name).Scan(&electrodeID)
		if err != nil {
			return fmt.Errorf("failed to resolve electrode: %w", err)
		}

		_, err = tx.Exec(
			`INSERT OR IGNORE INTO seizure_electrodes (seizure_id, electrode_id) VALUES (?, ?)`,
			s.ID,
			electrodeID,
		)
		if err != nil {
			return fmt.Errorf("failed to link electrode: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seizure: %w", err)
	}

	return nil
}

func (c *Client) GetSeizures(reportID string) ([]models.Seizure, error) {
	query := `
		SELECT id, report_id, day, start_time, duration_seconds, created_at
		FROM seizures
		WHERE report_id = ?
		ORDER BY day ASC, start_time ASC
	`

	rows, err := c.db.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seizures: %w", err)
	}
	defer rows.Close()

	var seizures []models.Seizure
	for rows.Next() {
		var s models.Seizure
		var createdAt int64

		err := rows.Scan(&s.ID, &s.ReportID, &s.Day, &s.StartTime, &s.DurationSeconds, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		s.CreatedAt = time.Unix(createdAt, 0)
		seizures = append(seizures, s)
	}

	for i := range seizures {
		electrodes, err := c.seizureElectrodes(seizures[i].ID)
		if err != nil {
			return nil, err
		}
		seizures[i].Electrodes = electrodes
	}

	return seizures, nil
}

func (c *Client) seizureElectrodes(seizureID string) ([]string, error) {
	query := `
		SELECT e.name
		FROM electrodes e
		JOIN seizure_electrodes se ON se.electrode_id = e.id
		WHERE se.seizure_id = ?
		ORDER BY e.name ASC
	`

	rows, err := c.db.Query(query, seizureID)
	if err != nil {
		return nil, fmt.Errorf("failed to get electrodes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		names = append(names, name)
	}

	return names, nil
}

func (c *Client) InsertDrugAdministration(d *models.DrugAdministration) error {
	query := `
		INSERT INTO drug_administrations (id, report_id, name, day, dose_mg, time_of_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(query, d.ID, d.ReportID, d.Name, d.Day, d.DoseMG, d.TimeOfDay, d.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert drug administration: %w", err)
	}

	return nil
}

func (c *Client) GetDrugAdministrations(reportID string) ([]models.DrugAdministration, error) {
	query := `
		SELECT id, report_id, name, day, dose_mg, time_of_day, created_at
		FROM drug_administrations
		WHERE report_id = ?
		ORDER BY day ASC, time_of_day ASC
	`

	rows, err := c.db.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drug administrations: %w", err)
	}
	defer rows.Close()

	var drugs []models.DrugAdministration
	for rows.Next() {
		var d models.DrugAdministration
		var createdAt int64

		err := rows.Scan(&d.ID, &d.ReportID, &d.Name, &d.Day, &d.DoseMG, &d.TimeOfDay, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		d.CreatedAt = time.Unix(createdAt, 0)
		drugs = append(drugs, d)
	}

	return drugs, nil
}

func (c *Client) InsertChatMessage(m *models.ChatMessage) error {
	query := `INSERT INTO chat_messages (id, report_id, query, response, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.Exec(query, m.ID, m.ReportID, m.Query, m.Response, m.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	logger.Debug("Chat message stored", zap.String("report_id", m.ReportID))
	return nil
}

func (c *Client) GetChatHistory(reportID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, report_id, query, response, created_at
		FROM chat_messages
		WHERE report_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, reportID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var createdAt int64

		err := rows.Scan(&m.ID, &m.ReportID, &m.Query, &m.Response, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		m.CreatedAt = time.Unix(createdAt, 0)
		messages = append(messages, m)
	}

	return messages, nil
}
