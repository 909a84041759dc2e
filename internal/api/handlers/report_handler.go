package handlers

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/ingestion"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/models"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/sqlite"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

type ReportHandler struct {
	processor *ingestion.Processor
	store     *sqlite.Client
}

func NewReportHandler(processor *ingestion.Processor, store *sqlite.Client) *ReportHandler {
	return &ReportHandler{
		processor: processor,
		store:     store,
	}
}

func (h *ReportHandler) CreatePatient(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	now := time.Now()
	patient := &models.Patient{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.InsertPatient(patient); err != nil {
		logger.Error("Failed to create patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create patient",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":   patient.ID,
		"name": patient.Name,
	})
}

// UploadReport accepts either a multipart "file" field or a JSON body with
// patient_id and content, then runs the full extraction pipeline.
func (h *ReportHandler) UploadReport(c *fiber.Ctx) error {
	patientID, filename, content, err := parseUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if _, err := h.store.GetPatient(patientID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Patient not found",
		})
	}

	report, err := h.processor.ProcessReport(
		c.Context(),
		patientID,
		filename,
		strings.TrimPrefix(filepath.Ext(filename), "."),
		content,
	)
	if err != nil {
		logger.Error("Failed to process report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         report.ID,
		"patient_id": report.PatientID,
		"days":       report.Days,
		"summary":    report.Summary,
	})
}

func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	report, err := h.store.GetReport(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found",
		})
	}

	return c.JSON(fiber.Map{
		"id":         report.ID,
		"patient_id": report.PatientID,
		"summary":    report.Summary,
		"filetype":   report.Filetype,
		"days":       report.Days,
		"created_at": report.CreatedAt.Unix(),
	})
}

func (h *ReportHandler) GetSeizures(c *fiber.Ctx) error {
	seizures, err := h.store.GetSeizures(c.Params("id"))
	if err != nil {
		logger.Error("Failed to fetch seizures", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch seizures",
		})
	}

	out := make([]fiber.Map, 0, len(seizures))
	for _, s := range seizures {
		out = append(out, fiber.Map{
			"id":               s.ID,
			"day":              s.Day,
			"start_time":       s.StartTime,
			"duration_seconds": s.DurationSeconds,
			"electrodes":       s.Electrodes,
		})
	}

	return c.JSON(fiber.Map{"seizures": out})
}

func (h *ReportHandler) GetDrugAdministrations(c *fiber.Ctx) error {
	drugs, err := h.store.GetDrugAdministrations(c.Params("id"))
	if err != nil {
		logger.Error("Failed to fetch drug administrations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch drug administrations",
		})
	}

	out := make([]fiber.Map, 0, len(drugs))
	for _, d := range drugs {
		out = append(out, fiber.Map{
			"id":          d.ID,
			"name":        d.Name,
			"day":         d.Day,
			"dose_mg":     d.DoseMG,
			"time_of_day": d.TimeOfDay,
		})
	}

	return c.JSON(fiber.Map{"drug_administrations": out})
}

func parseUpload(c *fiber.Ctx) (patientID, filename, content string, err error) {
	if file, ferr := c.FormFile("file"); ferr == nil {
		patientID = c.FormValue("patient_id")
		if patientID == "" {
			return "", "", "", fiber.NewError(fiber.StatusBadRequest, "patient_id is required")
		}

		f, oerr := file.Open()
		if oerr != nil {
			return "", "", "", fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file")
		}
		defer f.Close()

		data, rerr := io.ReadAll(f)
		if rerr != nil {
			return "", "", "", fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file")
		}

		return patientID, file.Filename, string(data), nil
	}

	var req struct {
		PatientID string `json:"patient_id"`
		Filename  string `json:"filename"`
		Content   string `json:"content"`
	}
	if perr := c.BodyParser(&req); perr != nil {
		return "", "", "", fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.PatientID == "" || req.Content == "" {
		return "", "", "", fiber.NewError(fiber.StatusBadRequest, "patient_id and content are required")
	}
	if req.Filename == "" {
		req.Filename = "report.txt"
	}

	return req.PatientID, req.Filename, req.Content, nil
}
