package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/timeclerk/timesheet-engine/internal/api/metrics"
	"github.com/timeclerk/timesheet-engine/internal/core/domain"
	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

// TimesheetHandler handles HTTP requests for timesheet entry operations.
type TimesheetHandler struct {
	service ports.TimesheetService
}

func NewTimesheetHandler(service ports.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{service: service}
}

// Start handles POST /v1/timesheets — begins tracking a new entry.
//
// @Summary      Start a new timesheet entry
// @Tags         timesheets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startEntryRequest  true  "Entry details"
// @Success      201   {object}  entryResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/timesheets [post]
func (h *TimesheetHandler) Start(c echo.Context) error {
	_, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req startEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	input := ports.StartEntryInput{
		UserID:      userID,
		CustomerID:  req.CustomerID,
		ProjectID:   req.ProjectID,
		ActivityID:  req.ActivityID,
		Description: req.Description,
		Billable:    req.Billable,
	}
	if req.Begin != nil {
		input.Begin = *req.Begin
	}

	entry, err := h.service.StartEntry(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEntryResponse(entry))
}

// Stop handles PATCH /v1/timesheets/:id/stop — stops a running entry, applying
// rounding rules and rate resolution.
//
// @Summary      Stop a running timesheet entry
// @Tags         timesheets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Entry ID (e.g. TE-7A8B9C2D)"
// @Param        body  body      stopEntryRequest  false "Stop details"
// @Success      200   {object}  entryResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/timesheets/{id}/stop [patch]
func (h *TimesheetHandler) Stop(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req stopEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	input := ports.StopEntryInput{
		EntryID:    c.Param("id"),
		Role:       role,
		UserID:     userID,
		FixedRate:  req.FixedRate,
		HourlyRate: req.HourlyRate,
	}
	if req.End != nil {
		input.End = *req.End
	}

	entry, err := h.service.StopEntry(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.EntriesStoppedTotal.WithLabelValues(strconv.FormatBool(entry.Billable)).Inc()
	metrics.RatesComputedTotal.WithLabelValues(rateKind(entry)).Inc()

	return c.JSON(http.StatusOK, toEntryResponse(entry))
}

// Get handles GET /v1/timesheets/:id.
//
// @Summary      Get a timesheet entry
// @Tags         timesheets
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Entry ID"
// @Success      200 {object}  entryResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/timesheets/{id} [get]
func (h *TimesheetHandler) Get(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	entry, err := h.service.GetEntry(c.Request().Context(), ports.GetEntryInput{
		EntryID: c.Param("id"),
		Role:    role,
		UserID:  userID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEntryResponse(entry))
}

// List handles GET /v1/timesheets with filtering and pagination.
//
// @Summary      List timesheet entries
// @Tags         timesheets
// @Produce      json
// @Security     BearerAuth
// @Param        project_id   query     string  false  "Filter by project"
// @Param        activity_id  query     string  false  "Filter by activity"
// @Param        billable     query     bool    false  "Filter by billable flag"
// @Param        running      query     bool    false  "true = running only, false = stopped only"
// @Param        date_from    query     string  false  "Begin >= date_from (RFC 3339)"
// @Param        date_to      query     string  false  "Begin <= date_to (RFC 3339)"
// @Param        page         query     int     false  "Page number (1-based)"
// @Param        limit        query     int     false  "Page size"
// @Success      200          {object}  listEntriesResponse
// @Failure      400          {object}  errorResponse
// @Router       /v1/timesheets [get]
func (h *TimesheetHandler) List(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	input := ports.ListEntriesInput{
		Role:       role,
		UserID:     userID,
		ProjectID:  c.QueryParam("project_id"),
		ActivityID: c.QueryParam("activity_id"),
	}

	if v := c.QueryParam("billable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid billable parameter")
		}
		input.Billable = &b
	}
	if v := c.QueryParam("running"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid running parameter")
		}
		input.Running = &b
	}
	if v := c.QueryParam("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from parameter")
		}
		input.DateFrom = t
	}
	if v := c.QueryParam("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to parameter")
		}
		input.DateTo = t
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListEntries(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// Update handles PUT /v1/timesheets/:id — edits a stopped entry, subject to
// the lockdown policy.
//
// @Summary      Update a timesheet entry
// @Tags         timesheets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Entry ID"
// @Param        body  body      updateEntryRequest  true  "Updated entry"
// @Success      200   {object}  entryResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      423   {object}  errorResponse
// @Router       /v1/timesheets/{id} [put]
func (h *TimesheetHandler) Update(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	entry, err := h.service.UpdateEntry(c.Request().Context(), ports.UpdateEntryInput{
		EntryID:                c.Param("id"),
		Role:                   role,
		UserID:                 userID,
		Begin:                  req.Begin,
		End:                    req.End,
		Description:            req.Description,
		Billable:               req.Billable,
		FixedRate:              req.FixedRate,
		HourlyRate:             req.HourlyRate,
		AllowEditInGracePeriod: req.AllowEditInGracePeriod && role == domain.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEntryLocked) {
			metrics.LockdownDeniedTotal.Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, toEntryResponse(entry))
}

// Delete handles DELETE /v1/timesheets/:id, subject to the lockdown policy.
//
// @Summary      Delete a timesheet entry
// @Tags         timesheets
// @Security     BearerAuth
// @Param        id  path  string  true  "Entry ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      423  {object}  errorResponse
// @Router       /v1/timesheets/{id} [delete]
func (h *TimesheetHandler) Delete(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	err = h.service.DeleteEntry(c.Request().Context(), ports.DeleteEntryInput{
		EntryID:                c.Param("id"),
		Role:                   role,
		UserID:                 userID,
		AllowEditInGracePeriod: role == domain.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEntryLocked) {
			metrics.LockdownDeniedTotal.Inc()
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Lockdown handles GET /v1/timesheets/:id/lockdown — reports the lockdown
// boundaries and editability verdict for the entry.
//
// @Summary      Lockdown status of a timesheet entry
// @Tags         timesheets
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Entry ID"
// @Success      200 {object}  lockdownStatusResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/timesheets/{id}/lockdown [get]
func (h *TimesheetHandler) Lockdown(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	status, err := h.service.LockdownStatus(c.Request().Context(), ports.GetEntryInput{
		EntryID: c.Param("id"),
		Role:    role,
		UserID:  userID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLockdownResponse(status))
}

// rateKind classifies the priced entry for the rates_computed_total metric.
func rateKind(e *domain.TimeEntry) string {
	switch {
	case e.FixedRate != nil:
		return "fixed"
	case e.Rate > 0:
		return "hourly"
	default:
		return "zero"
	}
}
