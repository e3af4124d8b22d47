package domain

import (
	"errors"
	"time"
)

var ErrEntryNotFound = errors.New("timesheet entry not found")
var ErrEntryLocked = errors.New("timesheet entry is locked")
var ErrEntryStillRunning = errors.New("timesheet entry is still running")
var ErrEntryNotRunning = errors.New("timesheet entry is not running")
var ErrInvalidTimeRange = errors.New("end time must not be before begin time")
var ErrForbidden = errors.New("access forbidden")

// TimeEntry is the core aggregate: one tracked work interval.
//
// End == nil means the entry is still running. Duration is derived from
// begin/end in seconds and may be adjusted by the rounding engine after the
// raw timestamps were rounded.
type TimeEntry struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	UserID      string     `json:"user_id" bson:"user_id"`
	CustomerID  string     `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	ProjectID   string     `json:"project_id,omitempty" bson:"project_id,omitempty"`
	ActivityID  string     `json:"activity_id,omitempty" bson:"activity_id,omitempty"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Begin       *time.Time `json:"begin" bson:"begin"`
	End         *time.Time `json:"end,omitempty" bson:"end,omitempty"`
	// Duration in seconds, recomputed from begin/end before rounding.
	Duration int64 `json:"duration" bson:"duration"`
	// FixedRate and HourlyRate are explicit caller overrides. They take
	// precedence over any rate rule and suppress weekday factors.
	FixedRate  *float64 `json:"fixed_rate,omitempty" bson:"fixed_rate,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty"`
	// Rate and InternalRate are the computed monetary values for the entry.
	Rate         float64   `json:"rate" bson:"rate"`
	InternalRate float64   `json:"internal_rate" bson:"internal_rate"`
	Billable     bool      `json:"billable" bson:"billable"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// IsRunning reports whether the entry has not been stopped yet.
func (e *TimeEntry) IsRunning() bool {
	return e.End == nil
}

// Stop sets the end timestamp and recomputes the raw duration.
func (e *TimeEntry) Stop(end time.Time) {
	e.End = &end
	e.RefreshDuration()
}

// RefreshDuration recomputes Duration from the current begin/end timestamps.
// A running entry keeps a zero duration.
func (e *TimeEntry) RefreshDuration() {
	if e.Begin == nil || e.End == nil {
		e.Duration = 0
		return
	}
	e.Duration = e.End.Unix() - e.Begin.Unix()
}
