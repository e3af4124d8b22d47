package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

// RecalcDispatcher is the interface the handler uses to enqueue
// recalculation jobs.
type RecalcDispatcher interface {
	Enqueue(job ports.RecalcInput)
}

// RecalcHandler handles asynchronous rate recalculation requests.
type RecalcHandler struct {
	dispatcher RecalcDispatcher
}

// NewRecalcHandler creates a RecalcHandler backed by the given dispatcher.
func NewRecalcHandler(dispatcher RecalcDispatcher) *RecalcHandler {
	return &RecalcHandler{dispatcher: dispatcher}
}

// Recalculate handles POST /v1/rates/recalculate — enqueues a recalculation
// of one user's stopped entries, returns 202.
//
// @Summary      Recalculate a user's entry rates
// @Tags         rates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      recalcRequest  true  "Recalculation request"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/rates/recalculate [post]
func (h *RecalcHandler) Recalculate(c echo.Context) error {
	var req recalcRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}

	h.dispatcher.Enqueue(ports.RecalcInput{UserID: req.UserID, Reason: reason})
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "recalculation accepted"})
}
