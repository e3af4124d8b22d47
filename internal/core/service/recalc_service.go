package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

// DedupChecker abstracts the recalculation idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, userID, reason string) (bool, error)
	Mark(ctx context.Context, userID, reason string) error
}

type recalcService struct {
	repo     ports.TimesheetRepository
	rates    ports.RateSource
	resolver *RateResolver
	dedup    DedupChecker
	log      zerolog.Logger
}

// NewRecalcService returns a RecalcService that recomputes the rates of a
// user's stopped entries after candidate rate rules changed.
func NewRecalcService(
	repo ports.TimesheetRepository,
	rates ports.RateSource,
	resolver *RateResolver,
	dedup DedupChecker,
	log zerolog.Logger,
) ports.RecalcService {
	return &recalcService{
		repo:     repo,
		rates:    rates,
		resolver: resolver,
		dedup:    dedup,
		log:      log,
	}
}

// Process recalculates one user's stopped entries. Duplicate requests within
// the dedup TTL are silently skipped.
func (s *recalcService) Process(ctx context.Context, in ports.RecalcInput) error {
	isDup, err := s.dedup.IsDuplicate(ctx, in.UserID, in.Reason)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Str("user_id", in.UserID).Str("reason", in.Reason).Msg("duplicate recalculation skipped")
		return nil
	}

	if markErr := s.dedup.Mark(ctx, in.UserID, in.Reason); markErr != nil {
		s.log.Warn().Err(markErr).Str("user_id", in.UserID).Msg("failed to set dedup key")
	}

	entries, err := s.repo.ListStopped(ctx, in.UserID)
	if err != nil {
		return fmt.Errorf("recalculate: %w", err)
	}

	updated := 0
	for _, entry := range entries {
		rules, err := s.rates.FindCandidateRates(ctx, entry)
		if err != nil {
			return fmt.Errorf("recalculate: candidate rates for %s: %w", entry.ID, err)
		}
		computed := s.resolver.Calculate(ctx, entry, rules)
		if computed.Rate == entry.Rate && computed.InternalRate == entry.InternalRate {
			continue
		}
		entry.Rate = computed.Rate
		entry.InternalRate = computed.InternalRate
		if err := s.repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("recalculate: update %s: %w", entry.ID, err)
		}
		updated++
	}

	s.log.Info().
		Str("user_id", in.UserID).
		Str("reason", in.Reason).
		Int("entries", len(entries)).
		Int("updated", updated).
		Msg("rates recalculated")
	return nil
}
