package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type startEntryRequest struct {
	CustomerID  string     `json:"customer_id"`
	ProjectID   string     `json:"project_id"`
	ActivityID  string     `json:"activity_id"`
	Description string     `json:"description"`
	Billable    bool       `json:"billable"`
	Begin       *time.Time `json:"begin"`
}

type stopEntryRequest struct {
	End        *time.Time `json:"end"`
	FixedRate  *float64   `json:"fixed_rate"  validate:"omitempty,gte=0"`
	HourlyRate *float64   `json:"hourly_rate" validate:"omitempty,gte=0"`
}

type updateEntryRequest struct {
	Begin       time.Time `json:"begin" validate:"required"`
	End         time.Time `json:"end"   validate:"required"`
	Description string    `json:"description"`
	Billable    bool      `json:"billable"`
	FixedRate   *float64  `json:"fixed_rate"  validate:"omitempty,gte=0"`
	HourlyRate  *float64  `json:"hourly_rate" validate:"omitempty,gte=0"`
	// AllowEditInGracePeriod bypasses an expired grace period; honored for
	// admins only.
	AllowEditInGracePeriod bool `json:"allow_edit_in_grace_period"`
}

type recalcRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Reason string `json:"reason"`
}

// Response-only types owned by the transport layer.
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type entryResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	CustomerID   string     `json:"customer_id,omitempty"`
	ProjectID    string     `json:"project_id,omitempty"`
	ActivityID   string     `json:"activity_id,omitempty"`
	Description  string     `json:"description,omitempty"`
	Begin        *time.Time `json:"begin"`
	End          *time.Time `json:"end,omitempty"`
	Duration     int64      `json:"duration"`
	Rate         float64    `json:"rate"`
	InternalRate float64    `json:"internal_rate"`
	HourlyRate   *float64   `json:"hourly_rate,omitempty"`
	FixedRate    *float64   `json:"fixed_rate,omitempty"`
	Billable     bool       `json:"billable"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type lockdownStatusResponse struct {
	Active   bool       `json:"active"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Grace    *time.Time `json:"grace,omitempty"`
	Editable bool       `json:"editable"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listEntriesResponse struct {
	Data       []entryResponse    `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}
