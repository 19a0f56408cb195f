// Package handlers contains the HTTP handlers mounted on the bridge server.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/botmirror/botmirror/internal/queue"
)

// PingHandler serves liveness and queue-depth endpoints.
type PingHandler struct {
	queue *queue.Queue
}

// NewPingHandler creates a ping handler.
func NewPingHandler(q *queue.Queue) *PingHandler {
	return &PingHandler{queue: q}
}

// Register mounts GET /ping and GET /health on the Echo instance.
func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.GET("/health", h.Health)
}

// Ping returns 200 JSON {"status":"ok"}.
func (h *PingHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Health reports the pending pipeline queue depth.
func (h *PingHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": h.queue.Len(),
	})
}
