package handler

import (
	"github.com/timeclerk/timesheet-engine/internal/core/domain"
	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

// --- Domain / service result → HTTP response ---

func toEntryResponse(e *domain.TimeEntry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		CustomerID:   e.CustomerID,
		ProjectID:    e.ProjectID,
		ActivityID:   e.ActivityID,
		Description:  e.Description,
		Begin:        e.Begin,
		End:          e.End,
		Duration:     e.Duration,
		Rate:         e.Rate,
		InternalRate: e.InternalRate,
		HourlyRate:   e.HourlyRate,
		FixedRate:    e.FixedRate,
		Billable:     e.Billable,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toListResponse(r *ports.ListEntriesResult) listEntriesResponse {
	items := make([]entryResponse, len(r.Items))
	for i, e := range r.Items {
		items[i] = toEntryResponse(e)
	}
	return listEntriesResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toLockdownResponse(s *ports.LockdownStatus) lockdownStatusResponse {
	return lockdownStatusResponse{
		Active:   s.Active,
		Start:    s.Start,
		End:      s.End,
		Grace:    s.Grace,
		Editable: s.Editable,
	}
}
