package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/chat"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/sqlite"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

type WebSocketHandler struct {
	engine *chat.Engine
	store  *sqlite.Client
}

func NewWebSocketHandler(engine *chat.Engine, store *sqlite.Client) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
		store:  store,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type     string `json:"type"`
			ReportID string `json:"report_id"`
			Content  string `json:"content"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "question" {
			continue
		}

		if msg.ReportID == "" || msg.Content == "" {
			h.sendError(c, "report_id and content are required")
			continue
		}

		err = h.streamAnswer(c, msg.ReportID, msg.Content)
		if err != nil {
			logger.Error("Failed to stream answer", zap.Error(err))
			h.sendError(c, "Failed to answer question")
		}
	}
}

func (h *WebSocketHandler) streamAnswer(c *websocket.Conn, reportID, question string) error {
	ctx := context.Background()

	report, err := h.store.GetReport(reportID)
	if err != nil {
		h.sendError(c, "Report not found")
		return nil
	}

	h.sendChunk(c, "status", "Answering question...")

	answer := h.engine.Answer(ctx, report.ID, report.RawContent, question)
	if answer == "" {
		h.sendError(c, "The model did not return an answer")
		return nil
	}

	words := splitIntoWords(answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		if err := h.sendChunk(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":      "complete",
		"report_id": reportID,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
