package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/extraction"
	"github.com/gabrielfortuny/neuroclinaical/internal/graphs"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/sqlite"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

type GraphHandler struct {
	store *sqlite.Client
}

func NewGraphHandler(store *sqlite.Client) *GraphHandler {
	return &GraphHandler{store: store}
}

func (h *GraphHandler) GetSeizureCounts(c *fiber.Ctx) error {
	seizures, err := h.loadSeizures(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"counts":    graphs.SeizureCountsByDay(seizures),
		"durations": graphs.SeizureDurationsByDay(seizures),
	})
}

func (h *GraphHandler) GetTimeline(c *fiber.Ctx) error {
	seizures, err := h.loadSeizures(c)
	if err != nil {
		return err
	}

	drugs, err := h.store.GetDrugAdministrations(c.Params("id"))
	if err != nil {
		logger.Error("Failed to fetch drug administrations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build timeline",
		})
	}

	drugRecords := make([]extraction.DrugRecord, len(drugs))
	for i, d := range drugs {
		drugRecords[i] = extraction.DrugRecord{
			Day:       d.Day,
			Name:      d.Name,
			DoseMG:    d.DoseMG,
			TimeOfDay: d.TimeOfDay,
		}
	}

	return c.JSON(graphs.BuildTimeline(seizures, drugRecords))
}

func (h *GraphHandler) GetElectrodeCounts(c *fiber.Ctx) error {
	seizures, err := h.loadSeizures(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"electrodes": graphs.ElectrodeCounts(seizures),
	})
}

func (h *GraphHandler) loadSeizures(c *fiber.Ctx) ([]extraction.SeizureRecord, error) {
	seizures, err := h.store.GetSeizures(c.Params("id"))
	if err != nil {
		logger.Error("Failed to fetch seizures", zap.Error(err))
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch seizures",
		})
	}

	records := make([]extraction.SeizureRecord, len(seizures))
	for i, s := range seizures {
		records[i] = extraction.SeizureRecord{
			Day:             s.Day,
			StartTime:       s.StartTime,
			DurationSeconds: s.DurationSeconds,
			Electrodes:      s.Electrodes,
		}
	}

	return records, nil
}
