package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"ticketbot/pkg/response"
)

// ActivityReporter exposes how many conversations have queued work.
type ActivityReporter interface {
	Active() int
}

type DialogueCounter interface {
	Len() int
}

type HealthHandler struct {
	conversations ActivityReporter
	dialogues     DialogueCounter
	started       time.Time
}

func NewHealthHandler(conversations ActivityReporter, dialogues DialogueCounter) *HealthHandler {
	return &HealthHandler{
		conversations: conversations,
		dialogues:     dialogues,
		started:       time.Now(),
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	data := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}
	if h.conversations != nil {
		data["active_conversations"] = h.conversations.Active()
	}
	if h.dialogues != nil {
		data["open_dialogues"] = h.dialogues.Len()
	}

	return response.Success(c, data)
}
