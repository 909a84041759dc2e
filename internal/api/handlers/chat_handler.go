package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/chat"
	"github.com/gabrielfortuny/neuroclinaical/internal/metrics"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/models"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/sqlite"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
	"github.com/gabrielfortuny/neuroclinaical/pkg/utils"
)

const answerCacheTTL = 24 * time.Hour

// AnswerCache is satisfied by the redis cache client; a nil cache disables
// answer caching.
type AnswerCache interface {
	GetAnswer(ctx context.Context, questionHash string) (string, bool, error)
	SetAnswer(ctx context.Context, questionHash string, answer string, ttl time.Duration) error
}

type ChatHandler struct {
	engine *chat.Engine
	store  *sqlite.Client
	cache  AnswerCache
}

func NewChatHandler(engine *chat.Engine, store *sqlite.Client, cache AnswerCache) *ChatHandler {
	return &ChatHandler{
		engine: engine,
		store:  store,
		cache:  cache,
	}
}

func (h *ChatHandler) HandleQuestion(c *fiber.Ctx) error {
	var req struct {
		Question string `json:"question"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	report, err := h.store.GetReport(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found",
		})
	}

	start := time.Now()
	answer, cached := h.answer(c.Context(), report.ID, report.RawContent, req.Question)
	metrics.ChatDuration.WithLabelValues("question").Observe(time.Since(start).Seconds())

	if answer == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "The model did not return an answer. Please try again.",
		})
	}

	message := &models.ChatMessage{
		ID:        uuid.NewString(),
		ReportID:  report.ID,
		Query:     req.Question,
		Response:  answer,
		CreatedAt: time.Now(),
	}
	if err := h.store.InsertChatMessage(message); err != nil {
		logger.Warn("Failed to persist chat message", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"id":       message.ID,
		"question": req.Question,
		"answer":   answer,
		"cached":   cached,
	})
}

func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	messages, err := h.store.GetChatHistory(c.Params("id"), limit)
	if err != nil {
		logger.Error("Failed to fetch chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch chat history",
		})
	}

	out := make([]fiber.Map, 0, len(messages))
	for _, m := range messages {
		out = append(out, fiber.Map{
			"id":         m.ID,
			"question":   m.Query,
			"answer":     m.Response,
			"created_at": m.CreatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{"messages": out})
}

func (h *ChatHandler) Summarize(c *fiber.Ctx) error {
	report, err := h.store.GetReport(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found",
		})
	}

	start := time.Now()
	summary := h.engine.Summarize(c.Context(), report.ID, report.RawContent)
	metrics.ChatDuration.WithLabelValues("summary").Observe(time.Since(start).Seconds())

	if summary == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "The model did not return a summary. Please try again.",
		})
	}

	if err := h.store.UpdateReportSummary(report.ID, summary); err != nil {
		logger.Warn("Failed to store report summary", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"report_id": report.ID,
		"summary":   summary,
	})
}

// answer consults the cache before paying for a completion. Cache failures
// degrade to a live completion.
func (h *ChatHandler) answer(ctx context.Context, reportID, reportText, question string) (string, bool) {
	key := utils.HashString(reportID + "|" + question)

	if h.cache != nil {
		if cached, hit, err := h.cache.GetAnswer(ctx, key); err == nil && hit {
			metrics.CacheHits.WithLabelValues("answer").Inc()
			return cached, true
		}
		metrics.CacheMisses.WithLabelValues("answer").Inc()
	}

	answer := h.engine.Answer(ctx, reportID, reportText, question)

	if h.cache != nil && answer != "" {
		if err := h.cache.SetAnswer(ctx, key, answer, answerCacheTTL); err != nil {
			logger.Warn("Failed to cache answer", zap.Error(err))
		}
	}

	return answer, false
}
