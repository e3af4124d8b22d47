package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

type stubTimesheetService struct {
	startFn    func(ctx context.Context, in ports.StartEntryInput) (*domain.TimeEntry, error)
	stopFn     func(ctx context.Context, in ports.StopEntryInput) (*domain.TimeEntry, error)
	getFn      func(ctx context.Context, in ports.GetEntryInput) (*domain.TimeEntry, error)
	listFn     func(ctx context.Context, in ports.ListEntriesInput) (*ports.ListEntriesResult, error)
	updateFn   func(ctx context.Context, in ports.UpdateEntryInput) (*domain.TimeEntry, error)
	deleteFn   func(ctx context.Context, in ports.DeleteEntryInput) error
	lockdownFn func(ctx context.Context, in ports.GetEntryInput) (*ports.LockdownStatus, error)
}

func (s *stubTimesheetService) StartEntry(ctx context.Context, in ports.StartEntryInput) (*domain.TimeEntry, error) {
	return s.startFn(ctx, in)
}

func (s *stubTimesheetService) StopEntry(ctx context.Context, in ports.StopEntryInput) (*domain.TimeEntry, error) {
	return s.stopFn(ctx, in)
}

func (s *stubTimesheetService) GetEntry(ctx context.Context, in ports.GetEntryInput) (*domain.TimeEntry, error) {
	return s.getFn(ctx, in)
}

func (s *stubTimesheetService) ListEntries(ctx context.Context, in ports.ListEntriesInput) (*ports.ListEntriesResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubTimesheetService) UpdateEntry(ctx context.Context, in ports.UpdateEntryInput) (*domain.TimeEntry, error) {
	return s.updateFn(ctx, in)
}

func (s *stubTimesheetService) DeleteEntry(ctx context.Context, in ports.DeleteEntryInput) error {
	return s.deleteFn(ctx, in)
}

func (s *stubTimesheetService) LockdownStatus(ctx context.Context, in ports.GetEntryInput) (*ports.LockdownStatus, error) {
	return s.lockdownFn(ctx, in)
}

func newTestContext(t *testing.T, method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", domain.RoleUser)
	c.Set("user_id", "user_1")
	return c, rec
}

func TestTimesheetHandler_Start_Success(t *testing.T) {
	begin := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	stub := &stubTimesheetService{
		startFn: func(ctx context.Context, in ports.StartEntryInput) (*domain.TimeEntry, error) {
			if in.UserID != "user_1" || in.ProjectID != "p1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.TimeEntry{ID: "TE-00000001", UserID: in.UserID, ProjectID: in.ProjectID, Begin: &begin}, nil
		},
	}
	h := NewTimesheetHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/timesheets",
		`{"project_id":"p1","description":"work","billable":true}`)

	if err := h.Start(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "TE-00000001" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTimesheetHandler_Start_MissingClaims(t *testing.T) {
	h := NewTimesheetHandler(&stubTimesheetService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/timesheets", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Start(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestTimesheetHandler_Stop_Success(t *testing.T) {
	begin := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	end := begin.Add(2 * time.Hour)
	stub := &stubTimesheetService{
		stopFn: func(ctx context.Context, in ports.StopEntryInput) (*domain.TimeEntry, error) {
			if in.EntryID != "TE-00000001" || in.UserID != "user_1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.TimeEntry{
				ID: in.EntryID, UserID: in.UserID,
				Begin: &begin, End: &end, Duration: 7200,
				Rate: 40, InternalRate: 40, Billable: true,
			}, nil
		},
	}
	h := NewTimesheetHandler(stub)

	c, rec := newTestContext(t, http.MethodPatch, "/v1/timesheets/TE-00000001/stop", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("TE-00000001")

	if err := h.Stop(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["duration"] != float64(7200) || resp["rate"] != float64(40) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTimesheetHandler_Stop_NegativeRateRejected(t *testing.T) {
	stub := &stubTimesheetService{
		stopFn: func(ctx context.Context, in ports.StopEntryInput) (*domain.TimeEntry, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewTimesheetHandler(stub)

	c, _ := newTestContext(t, http.MethodPatch, "/v1/timesheets/TE-00000001/stop",
		`{"hourly_rate":-5}`)
	c.SetParamNames("id")
	c.SetParamValues("TE-00000001")

	err := h.Stop(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestTimesheetHandler_List_ParsesFilters(t *testing.T) {
	stub := &stubTimesheetService{
		listFn: func(ctx context.Context, in ports.ListEntriesInput) (*ports.ListEntriesResult, error) {
			if in.ProjectID != "p1" {
				t.Fatalf("project_id not passed: %+v", in)
			}
			if in.Billable == nil || !*in.Billable {
				t.Fatalf("billable filter not parsed")
			}
			if in.Running == nil || *in.Running {
				t.Fatalf("running filter not parsed")
			}
			if in.Page != 2 || in.Limit != 10 {
				t.Fatalf("pagination not parsed: %+v", in)
			}
			return &ports.ListEntriesResult{Page: 2, Limit: 10}, nil
		},
	}
	h := NewTimesheetHandler(stub)

	c, rec := newTestContext(t, http.MethodGet,
		"/v1/timesheets?project_id=p1&billable=true&running=false&page=2&limit=10", "")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTimesheetHandler_List_InvalidDate(t *testing.T) {
	h := NewTimesheetHandler(&stubTimesheetService{})

	c, _ := newTestContext(t, http.MethodGet, "/v1/timesheets?date_from=yesterday-ish", "")

	err := h.List(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestTimesheetHandler_Update_Locked(t *testing.T) {
	stub := &stubTimesheetService{
		updateFn: func(ctx context.Context, in ports.UpdateEntryInput) (*domain.TimeEntry, error) {
			if in.AllowEditInGracePeriod {
				t.Fatalf("user role must not bypass grace period")
			}
			return nil, domain.ErrEntryLocked
		},
	}
	h := NewTimesheetHandler(stub)

	c, _ := newTestContext(t, http.MethodPut, "/v1/timesheets/TE-00000001",
		`{"begin":"2024-03-10T09:00:00Z","end":"2024-03-10T11:00:00Z","allow_edit_in_grace_period":true}`)
	c.SetParamNames("id")
	c.SetParamValues("TE-00000001")

	err := h.Update(c)
	if !errors.Is(err, domain.ErrEntryLocked) {
		t.Fatalf("expected ErrEntryLocked, got %v", err)
	}
}

func TestTimesheetHandler_Delete_Success(t *testing.T) {
	stub := &stubTimesheetService{
		deleteFn: func(ctx context.Context, in ports.DeleteEntryInput) error {
			if in.EntryID != "TE-00000001" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return nil
		},
	}
	h := NewTimesheetHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/v1/timesheets/TE-00000001", "")
	c.SetParamNames("id")
	c.SetParamValues("TE-00000001")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestTimesheetHandler_Lockdown_Status(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubTimesheetService{
		lockdownFn: func(ctx context.Context, in ports.GetEntryInput) (*ports.LockdownStatus, error) {
			return &ports.LockdownStatus{Active: true, Start: &start, Editable: false}, nil
		},
	}
	h := NewTimesheetHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/timesheets/TE-00000001/lockdown", "")
	c.SetParamNames("id")
	c.SetParamValues("TE-00000001")

	if err := h.Lockdown(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["active"] != true || resp["editable"] != false {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
