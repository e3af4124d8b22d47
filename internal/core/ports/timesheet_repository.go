package ports

import (
	"context"
	"time"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

// ListEntriesFilter carries all query parameters for listing entries.
// UserID is enforced by the service layer for the "user" role.
type ListEntriesFilter struct {
	UserID     string    // empty = no filter (admin); non-empty = scoped to owner
	ProjectID  string    // optional
	ActivityID string    // optional
	Billable   *bool     // optional
	Running    *bool     // optional: true = running only, false = stopped only
	DateFrom   time.Time // optional: begin >= DateFrom
	DateTo     time.Time // optional: begin <= DateTo
	Page       int       // 1-based
	Limit      int       // max rows per page (capped at 100 by service)
}

// TimesheetRepository defines persistence operations for timesheet entries.
type TimesheetRepository interface {
	Create(ctx context.Context, e *domain.TimeEntry) error
	// FindByID retrieves an entry. When userID is non-empty, the query is
	// additionally filtered by owner (for RBAC).
	FindByID(ctx context.Context, id string, userID string) (*domain.TimeEntry, error)
	// FindRunning returns the user's currently running entry, or
	// domain.ErrEntryNotFound when none is running.
	FindRunning(ctx context.Context, userID string) (*domain.TimeEntry, error)
	Update(ctx context.Context, e *domain.TimeEntry) error
	Delete(ctx context.Context, id string) error
	// List returns a page of entries matching filter and the total count.
	List(ctx context.Context, filter ListEntriesFilter) ([]*domain.TimeEntry, int64, error)
	// ListStopped returns all finished entries of a user, used by rate
	// recalculation after rule changes.
	ListStopped(ctx context.Context, userID string) ([]*domain.TimeEntry, error)
}
