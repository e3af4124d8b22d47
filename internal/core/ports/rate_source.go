package ports

import (
	"context"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

// RateSource supplies the candidate rate rules for an entry's scope
// (customer, project, activity, user). The rate resolver never queries
// persistence itself.
type RateSource interface {
	FindCandidateRates(ctx context.Context, entry *domain.TimeEntry) ([]domain.RateRule, error)
}

// PreferenceStore exposes per-user numeric preferences, used for the
// hourly_rate and internal_rate fallbacks. A missing preference is reported
// as domain.ErrPreferenceNotFound, never invented.
type PreferenceStore interface {
	GetFloat(ctx context.Context, userID, key string) (float64, error)
}
