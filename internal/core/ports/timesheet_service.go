package ports

import (
	"context"
	"time"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

// StartEntryInput carries all data needed to start tracking a new entry.
type StartEntryInput struct {
	UserID      string
	CustomerID  string
	ProjectID   string
	ActivityID  string
	Description string
	Billable    bool
	// Begin defaults to the current time when zero.
	Begin time.Time
}

// StopEntryInput stops a running entry. End defaults to the current time.
type StopEntryInput struct {
	EntryID string
	// Role and UserID enforce RBAC: the "user" role only touches own entries.
	Role   string
	UserID string
	End    time.Time
	// FixedRate and HourlyRate are optional explicit overrides applied
	// before rate resolution. Overridden rates are never weekday-factored.
	FixedRate  *float64
	HourlyRate *float64
}

// UpdateEntryInput edits a stopped entry. The lockdown policy is consulted
// before any change is applied.
type UpdateEntryInput struct {
	EntryID     string
	Role        string
	UserID      string
	Begin       time.Time
	End         time.Time
	Description string
	Billable    bool
	FixedRate   *float64
	HourlyRate  *float64
	// AllowEditInGracePeriod is asserted by callers with elevated privilege
	// to bypass an expired grace period.
	AllowEditInGracePeriod bool
}

// DeleteEntryInput removes an entry, subject to the lockdown policy.
type DeleteEntryInput struct {
	EntryID                string
	Role                   string
	UserID                 string
	AllowEditInGracePeriod bool
}

// GetEntryInput retrieves a single entry.
type GetEntryInput struct {
	EntryID string
	Role    string
	UserID  string
}

// ListEntriesInput carries all parameters for the list endpoint.
type ListEntriesInput struct {
	Role       string
	UserID     string
	ProjectID  string
	ActivityID string
	Billable   *bool
	Running    *bool
	DateFrom   time.Time
	DateTo     time.Time
	Page       int
	Limit      int
}

// ListEntriesResult is returned by ListEntries.
type ListEntriesResult struct {
	Items      []*domain.TimeEntry
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// LockdownStatus reports the lockdown boundaries relevant to a user, used by
// validators rendering a "locked until" message. Editable reflects the policy
// verdict for the given entry at the time of the call.
type LockdownStatus struct {
	Active   bool
	Start    *time.Time
	End      *time.Time
	Grace    *time.Time
	Editable bool
}

// TimesheetService defines the use-case operations for timesheet entries.
type TimesheetService interface {
	StartEntry(ctx context.Context, input StartEntryInput) (*domain.TimeEntry, error)
	StopEntry(ctx context.Context, input StopEntryInput) (*domain.TimeEntry, error)
	GetEntry(ctx context.Context, input GetEntryInput) (*domain.TimeEntry, error)
	ListEntries(ctx context.Context, input ListEntriesInput) (*ListEntriesResult, error)
	UpdateEntry(ctx context.Context, input UpdateEntryInput) (*domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, input DeleteEntryInput) error
	LockdownStatus(ctx context.Context, input GetEntryInput) (*LockdownStatus, error)
}

// RecalcInput requests a rate recalculation of a user's stopped entries,
// typically after candidate rate rules changed.
type RecalcInput struct {
	UserID string
	// Reason is recorded in logs and used for deduplication.
	Reason string
}

// RecalcService recomputes entry rates asynchronously.
type RecalcService interface {
	Process(ctx context.Context, input RecalcInput) error
}
