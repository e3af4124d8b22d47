package service

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/timeclerk/timesheet-engine/internal/core/dateexpr"
	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

// LockdownConfig holds the raw lockdown window expressions. Start and End may
// be comma-separated lists of date expressions; Grace is a signed offset
// expression advancing the end boundary.
type LockdownConfig struct {
	Start string
	End   string
	Grace string
	// Timezone pins expression parsing to a fixed zone. When empty, the
	// owning user's timezone is used.
	Timezone string
}

// LockdownPolicy decides whether an entry inside an administratively locked
// period may still be edited. A policy instance memoizes its activity flag
// and must not outlive the configuration snapshot it was built from: build
// one per request.
//
// Every internal failure resolves to "editable". A misconfigured lockdown
// must never lock out all editing.
type LockdownPolicy struct {
	cfg    LockdownConfig
	log    zerolog.Logger
	active *bool
}

func NewLockdownPolicy(cfg LockdownConfig, log zerolog.Logger) *LockdownPolicy {
	return &LockdownPolicy{cfg: cfg, log: log}
}

// IsActive reports whether both window boundaries are configured. The result
// is memoized for the lifetime of this policy instance.
func (p *LockdownPolicy) IsActive() bool {
	if p.active == nil {
		v := p.cfg.Start != "" && p.cfg.End != ""
		p.active = &v
	}
	return *p.active
}

// LockdownStart resolves the start boundary, converted to the user's timezone.
func (p *LockdownPolicy) LockdownStart(user *domain.User, now time.Time) (time.Time, error) {
	t, err := p.parseBoundary(p.cfg.Start, now, p.location(user))
	if err != nil {
		return time.Time{}, err
	}
	return t.In(user.Location()), nil
}

// LockdownEnd resolves the end boundary, converted to the user's timezone.
func (p *LockdownPolicy) LockdownEnd(user *domain.User, now time.Time) (time.Time, error) {
	t, err := p.parseBoundary(p.cfg.End, now, p.location(user))
	if err != nil {
		return time.Time{}, err
	}
	return t.In(user.Location()), nil
}

// LockdownGrace resolves the end boundary advanced by the grace offset. It
// returns nil when no grace expression or no end boundary is configured.
func (p *LockdownPolicy) LockdownGrace(user *domain.User, now time.Time) (*time.Time, error) {
	if p.cfg.Grace == "" || p.cfg.End == "" {
		return nil, nil
	}
	end, err := p.parseBoundary(p.cfg.End, now, p.location(user))
	if err != nil {
		return nil, err
	}
	g, err := dateexpr.Offset(p.cfg.Grace, end)
	if err != nil {
		return nil, err
	}
	gu := g.In(user.Location())
	return &gu, nil
}

// IsEditable reports whether the entry may still be edited at time now.
//
// allowEditInGracePeriod is a caller-asserted override (elevated privilege)
// honored only after the grace period expired; within the grace period the
// entry is editable regardless of the flag. Entries that begin before the
// lockdown start are never editable.
func (p *LockdownPolicy) IsEditable(entry *domain.TimeEntry, user *domain.User, now time.Time, allowEditInGracePeriod bool) bool {
	if !p.IsActive() {
		return true
	}
	if entry.Begin == nil {
		return true
	}

	loc := p.location(user)

	start, err := p.parseBoundary(p.cfg.Start, now, loc)
	if err != nil {
		p.log.Warn().Err(err).Str("expression", p.cfg.Start).Msg("lockdown start unparseable, skipping validation")
		return true
	}
	end, err := p.parseBoundary(p.cfg.End, now, loc)
	if err != nil {
		p.log.Warn().Err(err).Str("expression", p.cfg.End).Msg("lockdown end unparseable, skipping validation")
		return true
	}
	if end.Before(start) {
		p.log.Warn().Time("start", start).Time("end", end).Msg("lockdown window inverted, skipping validation")
		return true
	}

	begin := *entry.Begin
	if begin.After(end) {
		// Entry postdates the locked window.
		return true
	}

	if !begin.Before(start) {
		grace := end
		if p.cfg.Grace != "" {
			g, err := dateexpr.Offset(p.cfg.Grace, end)
			if err != nil {
				p.log.Warn().Err(err).Str("expression", p.cfg.Grace).Msg("lockdown grace unparseable, skipping validation")
				return true
			}
			grace = g
		}
		if !now.After(grace) {
			return true
		}
		return allowEditInGracePeriod
	}

	// Entry begins before the lockdown window ever started.
	return false
}

// parseBoundary parses a comma-separated list of date expressions and keeps
// the latest resulting time. A single-element list skips comparison.
func (p *LockdownPolicy) parseBoundary(value string, now time.Time, loc *time.Location) (time.Time, error) {
	parts := strings.Split(value, ",")

	latest, err := dateexpr.Parse(parts[0], now, loc)
	if err != nil {
		return time.Time{}, err
	}
	for _, part := range parts[1:] {
		t, err := dateexpr.Parse(part, now, loc)
		if err != nil {
			return time.Time{}, err
		}
		if t.After(latest) {
			latest = t
		}
	}
	return latest, nil
}

// location returns the configured lockdown timezone, or the user's own when
// none is configured or the name is invalid.
func (p *LockdownPolicy) location(user *domain.User) *time.Location {
	if p.cfg.Timezone != "" {
		if loc, err := time.LoadLocation(p.cfg.Timezone); err == nil {
			return loc
		}
		p.log.Warn().Str("timezone", p.cfg.Timezone).Msg("invalid lockdown timezone, using user timezone")
	}
	return user.Location()
}
