package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/botmirror/botmirror/internal/pipeline"
)

// EventsHandler accepts channel events over HTTP and feeds them to the
// sync pipeline. Enqueueing is fire-and-forget, so accepted events answer 202.
type EventsHandler struct {
	pipeline *pipeline.Pipeline
}

// NewEventsHandler creates an events handler.
func NewEventsHandler(p *pipeline.Pipeline) *EventsHandler {
	return &EventsHandler{pipeline: p}
}

// Register mounts the event ingestion routes on the Echo instance.
func (h *EventsHandler) Register(e *echo.Echo) {
	e.POST("/events/inbound", h.Inbound)
	e.POST("/events/outbound", h.Outbound)
}

// Inbound ingests one user→bot event.
func (h *EventsHandler) Inbound(c echo.Context) error {
	var ev pipeline.InboundEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed event")
	}
	if err := h.pipeline.HandleInbound(ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

// Outbound ingests one bot→user event.
func (h *EventsHandler) Outbound(c echo.Context) error {
	var ev pipeline.OutboundEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed event")
	}
	if err := h.pipeline.HandleOutbound(ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}
