package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

// RateResolver computes the monetary rate and internal rate of a finished
// entry from externally supplied candidate rules, explicit entry overrides,
// user preferences, and configured weekday factors.
type RateResolver struct {
	prefs   ports.PreferenceStore
	factors []domain.WeekdayFactor
	log     zerolog.Logger
}

func NewRateResolver(prefs ports.PreferenceStore, factors []domain.WeekdayFactor, log zerolog.Logger) *RateResolver {
	return &RateResolver{prefs: prefs, factors: factors, log: log}
}

// Calculate resolves the rate for entry. A running entry always yields the
// zero rate, regardless of candidates. Missing rules, overrides, and
// preferences resolve to 0.00, never an error.
func (r *RateResolver) Calculate(ctx context.Context, entry *domain.TimeEntry, candidates []domain.RateRule) domain.ComputedRate {
	if entry.End == nil {
		return domain.ZeroRate()
	}

	rule := bestRule(entry, candidates)

	fixedRate := entry.FixedRate
	hourlyRate := entry.HourlyRate
	var fixedInternal, internal *float64

	if rule != nil {
		if rule.IsFixed() {
			if fixedRate == nil {
				v := rule.Rate
				fixedRate = &v
			}
			if rule.InternalRate != nil {
				fixedInternal = rule.InternalRate
			}
		} else {
			if hourlyRate == nil {
				v := rule.Rate
				hourlyRate = &v
			}
			if rule.InternalRate != nil {
				internal = rule.InternalRate
			}
		}
	}

	// Fixed rates short-circuit: no weekday factor, no duration multiplication.
	if fixedRate != nil {
		if fixedInternal == nil {
			v := r.preference(ctx, entry.UserID, domain.PrefInternalRate, *fixedRate)
			fixedInternal = &v
		}
		return domain.NewComputedRate(*fixedRate, *fixedInternal, nil, fixedRate)
	}

	var hourly float64
	if hourlyRate != nil {
		hourly = *hourlyRate
	} else {
		hourly = r.preference(ctx, entry.UserID, domain.PrefHourlyRate, 0)
	}

	internalHourly := hourly
	if internal != nil {
		internalHourly = *internal
	} else {
		internalHourly = r.preference(ctx, entry.UserID, domain.PrefInternalRate, hourly)
	}

	// Weekday factors apply only to fully rule/preference-derived values;
	// manually overridden rates are never multiplied.
	factor := 1.0
	if entry.FixedRate == nil && entry.HourlyRate == nil {
		factor = r.weekdayFactor(*entry.End)
	}

	factoredHourly := hourly * factor
	factoredInternal := internalHourly * factor
	rate := factoredHourly * float64(entry.Duration) / 3600
	internalRate := factoredInternal * float64(entry.Duration) / 3600

	return domain.NewComputedRate(rate, internalRate, &factoredHourly, nil)
}

// bestRule selects the candidate with the highest score, where a rule whose
// user matches the entry's owner earns one extra point. At equal score the
// last candidate encountered wins: the score map overwrites on collision, so
// the outcome depends on candidate order, mirroring the historical behavior.
func bestRule(entry *domain.TimeEntry, candidates []domain.RateRule) *domain.RateRule {
	if len(candidates) == 0 {
		return nil
	}

	byScore := make(map[int]domain.RateRule, len(candidates))
	for _, c := range candidates {
		score := c.Score
		if c.UserID != "" && c.UserID == entry.UserID {
			score++
		}
		byScore[score] = c
	}

	var best int
	var found bool
	for score := range byScore {
		if !found || score > best {
			best = score
			found = true
		}
	}
	rule := byScore[best]
	return &rule
}

// preference reads a numeric user preference, substituting fallback when the
// preference is absent or the store is unreachable.
func (r *RateResolver) preference(ctx context.Context, userID, key string, fallback float64) float64 {
	v, err := r.prefs.GetFloat(ctx, userID, key)
	if err != nil {
		if !errors.Is(err, domain.ErrPreferenceNotFound) {
			r.log.Warn().Err(err).Str("user_id", userID).Str("key", key).Msg("preference lookup failed, using fallback")
		}
		return fallback
	}
	return v
}

// weekdayFactor sums every configured factor matching the weekday of end.
// A non-positive sum defaults to 1.0.
func (r *RateResolver) weekdayFactor(end time.Time) float64 {
	sum := 0.0
	for _, f := range r.factors {
		if f.Matches(end) {
			sum += f.Factor
		}
	}
	if sum <= 0 {
		return 1.0
	}
	return sum
}
