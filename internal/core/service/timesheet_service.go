package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// TimesheetService implements the entry lifecycle: tracking, stopping with
// rounding and rate resolution, and lockdown-guarded editing.
type TimesheetService struct {
	repo     ports.TimesheetRepository
	rates    ports.RateSource
	users    ports.UserRepository
	resolver *RateResolver
	rounder  *RoundingEngine
	lockdown LockdownConfig
	log      zerolog.Logger
}

func NewTimesheetService(
	repo ports.TimesheetRepository,
	rates ports.RateSource,
	users ports.UserRepository,
	resolver *RateResolver,
	rounder *RoundingEngine,
	lockdown LockdownConfig,
	log zerolog.Logger,
) *TimesheetService {
	return &TimesheetService{
		repo:     repo,
		rates:    rates,
		users:    users,
		resolver: resolver,
		rounder:  rounder,
		lockdown: lockdown,
		log:      log,
	}
}

// StartEntry begins tracking a new entry. A user has at most one running
// entry: any previous one is stopped (with rounding and rates applied) first.
func (s *TimesheetService) StartEntry(ctx context.Context, input ports.StartEntryInput) (*domain.TimeEntry, error) {
	now := time.Now().UTC()
	begin := input.Begin
	if begin.IsZero() {
		begin = now
	}

	running, err := s.repo.FindRunning(ctx, input.UserID)
	if err != nil && !errors.Is(err, domain.ErrEntryNotFound) {
		return nil, fmt.Errorf("start entry: %w", err)
	}
	if running != nil {
		if err := s.finish(ctx, running, now); err != nil {
			return nil, fmt.Errorf("start entry: stop previous: %w", err)
		}
		s.log.Info().Str("entry_id", running.ID).Str("user_id", input.UserID).Msg("previous running entry stopped")
	}

	entry := &domain.TimeEntry{
		ID:          generateEntryID(),
		UserID:      input.UserID,
		CustomerID:  input.CustomerID,
		ProjectID:   input.ProjectID,
		ActivityID:  input.ActivityID,
		Description: input.Description,
		Billable:    input.Billable,
		Begin:       &begin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("user_id", input.UserID).Msg("failed to create entry")
		return nil, err
	}

	s.log.Info().Str("entry_id", entry.ID).Str("user_id", input.UserID).Msg("entry started")
	return entry, nil
}

// StopEntry finishes a running entry: the end timestamp is set, the rounding
// rules are applied, and the rate is resolved and persisted.
func (s *TimesheetService) StopEntry(ctx context.Context, input ports.StopEntryInput) (*domain.TimeEntry, error) {
	entry, err := s.scopedFind(ctx, input.EntryID, input.Role, input.UserID)
	if err != nil {
		return nil, err
	}
	if !entry.IsRunning() {
		return nil, domain.ErrEntryNotRunning
	}

	end := input.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if entry.Begin != nil && end.Before(*entry.Begin) {
		return nil, domain.ErrInvalidTimeRange
	}

	entry.FixedRate = input.FixedRate
	entry.HourlyRate = input.HourlyRate

	if err := s.finish(ctx, entry, end); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("entry_id", entry.ID).
		Int64("duration", entry.Duration).
		Float64("rate", entry.Rate).
		Msg("entry stopped")
	return entry, nil
}

// GetEntry retrieves a single entry, scoped to the owner for the user role.
func (s *TimesheetService) GetEntry(ctx context.Context, input ports.GetEntryInput) (*domain.TimeEntry, error) {
	return s.scopedFind(ctx, input.EntryID, input.Role, input.UserID)
}

// ListEntries returns a page of entries. The user role only sees own entries.
func (s *TimesheetService) ListEntries(ctx context.Context, input ports.ListEntriesInput) (*ports.ListEntriesResult, error) {
	filter := ports.ListEntriesFilter{
		ProjectID:  input.ProjectID,
		ActivityID: input.ActivityID,
		Billable:   input.Billable,
		Running:    input.Running,
		DateFrom:   input.DateFrom,
		DateTo:     input.DateTo,
		Page:       input.Page,
		Limit:      input.Limit,
	}
	if input.Role != domain.RoleAdmin {
		filter.UserID = input.UserID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListEntriesResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateEntry edits a stopped entry after consulting the lockdown policy.
// Rounding and rates are recomputed from the edited timestamps.
func (s *TimesheetService) UpdateEntry(ctx context.Context, input ports.UpdateEntryInput) (*domain.TimeEntry, error) {
	entry, err := s.scopedFind(ctx, input.EntryID, input.Role, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.checkLockdown(ctx, entry, input.AllowEditInGracePeriod); err != nil {
		return nil, err
	}

	if input.End.Before(input.Begin) {
		return nil, domain.ErrInvalidTimeRange
	}

	begin, end := input.Begin, input.End
	entry.Begin = &begin
	entry.End = &end
	entry.Description = input.Description
	entry.Billable = input.Billable
	entry.FixedRate = input.FixedRate
	entry.HourlyRate = input.HourlyRate
	entry.RefreshDuration()

	if err := s.finish(ctx, entry, end); err != nil {
		return nil, err
	}

	s.log.Info().Str("entry_id", entry.ID).Msg("entry updated")
	return entry, nil
}

// DeleteEntry removes an entry after consulting the lockdown policy.
func (s *TimesheetService) DeleteEntry(ctx context.Context, input ports.DeleteEntryInput) error {
	entry, err := s.scopedFind(ctx, input.EntryID, input.Role, input.UserID)
	if err != nil {
		return err
	}

	if err := s.checkLockdown(ctx, entry, input.AllowEditInGracePeriod); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	s.log.Info().Str("entry_id", entry.ID).Msg("entry deleted")
	return nil
}

// LockdownStatus exposes the lockdown boundaries for an entry's owner, for
// rendering "locked until" messages. Boundary parse failures yield nil
// boundaries and an editable verdict, matching the policy's fail-open rule.
func (s *TimesheetService) LockdownStatus(ctx context.Context, input ports.GetEntryInput) (*ports.LockdownStatus, error) {
	entry, err := s.scopedFind(ctx, input.EntryID, input.Role, input.UserID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, entry.UserID)
	if err != nil {
		return nil, fmt.Errorf("lockdown status: %w", err)
	}

	now := time.Now().UTC()
	policy := NewLockdownPolicy(s.lockdown, s.log)

	status := &ports.LockdownStatus{
		Active:   policy.IsActive(),
		Editable: policy.IsEditable(entry, user, now, false),
	}
	if !status.Active {
		return status, nil
	}

	if start, err := policy.LockdownStart(user, now); err == nil {
		status.Start = &start
	}
	if end, err := policy.LockdownEnd(user, now); err == nil {
		status.End = &end
	}
	if grace, err := policy.LockdownGrace(user, now); err == nil {
		status.Grace = grace
	}
	return status, nil
}

// finish applies rounding and rate resolution to a stopped entry and persists it.
func (s *TimesheetService) finish(ctx context.Context, entry *domain.TimeEntry, end time.Time) error {
	entry.Stop(end)
	s.rounder.ApplyRoundings(entry)

	rules, err := s.rates.FindCandidateRates(ctx, entry)
	if err != nil {
		return fmt.Errorf("candidate rates: %w", err)
	}
	// Only the resolved amounts are persisted. HourlyRate and FixedRate stay
	// as the caller set them so a later recalculation can re-resolve against
	// the rules current at that time.
	computed := s.resolver.Calculate(ctx, entry, rules)
	entry.Rate = computed.Rate
	entry.InternalRate = computed.InternalRate

	entry.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to persist entry")
		return err
	}
	return nil
}

// checkLockdown builds a fresh policy from the current configuration snapshot
// and rejects the edit when the entry falls inside the locked period.
func (s *TimesheetService) checkLockdown(ctx context.Context, entry *domain.TimeEntry, allowEditInGracePeriod bool) error {
	user, err := s.users.FindByID(ctx, entry.UserID)
	if err != nil {
		return fmt.Errorf("lockdown check: %w", err)
	}
	policy := NewLockdownPolicy(s.lockdown, s.log)
	if !policy.IsEditable(entry, user, time.Now().UTC(), allowEditInGracePeriod) {
		return domain.ErrEntryLocked
	}
	return nil
}

func (s *TimesheetService) scopedFind(ctx context.Context, id, role, userID string) (*domain.TimeEntry, error) {
	scope := userID
	if role == domain.RoleAdmin {
		scope = ""
	}
	return s.repo.FindByID(ctx, id, scope)
}

// generateEntryID returns a unique entry identifier in the format TE-XXXXXXXX.
func generateEntryID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("TE-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("TE-%08X", b)
}
