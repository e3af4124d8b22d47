package service

import (
	"testing"
	"time"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

var utcUser = &domain.User{ID: "u1", Username: "anna", Timezone: "UTC"}

func marchLockdown() LockdownConfig {
	return LockdownConfig{
		Start:    "2024-03-01 00:00:00",
		End:      "2024-03-31 23:59:59",
		Grace:    "+3 days",
		Timezone: "UTC",
	}
}

func entryBeginning(begin time.Time) *domain.TimeEntry {
	return &domain.TimeEntry{ID: "TE-LOCK0001", UserID: "u1", Begin: &begin}
}

func TestLockdownPolicy_InactiveWithoutBothBoundaries(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := entryBeginning(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	for _, cfg := range []LockdownConfig{
		{},
		{Start: "2024-03-01 00:00:00"},
		{End: "2024-03-31 23:59:59"},
	} {
		policy := NewLockdownPolicy(cfg, discardLogger)
		if policy.IsActive() {
			t.Errorf("cfg %+v: expected inactive", cfg)
		}
		if !policy.IsEditable(entry, utcUser, now, false) {
			t.Errorf("cfg %+v: inactive lockdown must be editable", cfg)
		}
	}
}

func TestLockdownPolicy_EntryWithoutBeginIsAlwaysEditable(t *testing.T) {
	policy := NewLockdownPolicy(marchLockdown(), discardLogger)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	entry := &domain.TimeEntry{ID: "TE-LOCK0002", UserID: "u1"}
	if !policy.IsEditable(entry, utcUser, now, false) {
		t.Error("entry without begin must always be editable")
	}
}

func TestLockdownPolicy_ParseFailureFailsOpen(t *testing.T) {
	cfg := marchLockdown()
	cfg.Start = "definitely not a date"
	policy := NewLockdownPolicy(cfg, discardLogger)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := entryBeginning(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	if !policy.IsEditable(entry, utcUser, now, false) {
		t.Error("unparseable lockdown expression must fail open")
	}
}

func TestLockdownPolicy_InvertedWindowFailsOpen(t *testing.T) {
	cfg := marchLockdown()
	cfg.Start, cfg.End = cfg.End, cfg.Start
	policy := NewLockdownPolicy(cfg, discardLogger)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := entryBeginning(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	if !policy.IsEditable(entry, utcUser, now, false) {
		t.Error("inverted lockdown window must fail open")
	}
}

func TestLockdownPolicy_EntryAfterWindowIsEditable(t *testing.T) {
	policy := NewLockdownPolicy(marchLockdown(), discardLogger)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := entryBeginning(time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC))

	if !policy.IsEditable(entry, utcUser, now, false) {
		t.Error("entry postdating the window must be editable")
	}
}

func TestLockdownPolicy_GraceBoundaryInclusive(t *testing.T) {
	policy := NewLockdownPolicy(marchLockdown(), discardLogger)
	entry := entryBeginning(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	// grace = end (2024-03-31 23:59:59) + 3 days
	graceEnd := time.Date(2024, 4, 3, 23, 59, 59, 0, time.UTC)

	if !policy.IsEditable(entry, utcUser, graceEnd, false) {
		t.Error("now == grace boundary must be editable, regardless of the flag")
	}
	if NewLockdownPolicy(marchLockdown(), discardLogger).IsEditable(entry, utcUser, graceEnd.Add(time.Second), false) {
		t.Error("one second past the grace boundary must not be editable")
	}
}

func TestLockdownPolicy_AllowFlagBypassesExpiredGrace(t *testing.T) {
	policy := NewLockdownPolicy(marchLockdown(), discardLogger)
	entry := entryBeginning(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	afterGrace := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	if !policy.IsEditable(entry, utcUser, afterGrace, true) {
		t.Error("caller-asserted override must permit the edit after grace expiry")
	}
}

func TestLockdownPolicy_NoGraceFallsBackToEnd(t *testing.T) {
	cfg := marchLockdown()
	cfg.Grace = ""
	policy := NewLockdownPolicy(cfg, discardLogger)
	entry := entryBeginning(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	if !policy.IsEditable(entry, utcUser, end, false) {
		t.Error("without grace, now == end must still be editable")
	}
	if NewLockdownPolicy(cfg, discardLogger).IsEditable(entry, utcUser, end.Add(time.Second), false) {
		t.Error("without grace, one second past end must not be editable")
	}
}

func TestLockdownPolicy_EntryBeforeWindowIsNotEditable(t *testing.T) {
	policy := NewLockdownPolicy(marchLockdown(), discardLogger)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	entry := entryBeginning(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))

	if policy.IsEditable(entry, utcUser, now, false) {
		t.Error("entry beginning before the lockdown start must not be editable")
	}
	if policy.IsEditable(entry, utcUser, now, true) {
		t.Error("the grace override does not apply before the window")
	}
}

func TestLockdownPolicy_BoundaryListPicksLatest(t *testing.T) {
	cfg := LockdownConfig{
		Start:    "2024-01-01 00:00:00, 2024-03-01 00:00:00",
		End:      "2024-02-15 00:00:00, 2024-03-31 23:59:59",
		Timezone: "UTC",
	}
	policy := NewLockdownPolicy(cfg, discardLogger)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	start, err := policy.LockdownStart(utcUser, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want latest candidate %v", start, want)
	}

	end, err := policy.LockdownEnd(utcUser, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want latest candidate %v", end, want)
	}
}

func TestLockdownPolicy_BoundariesConvertedToUserTimezone(t *testing.T) {
	policy := NewLockdownPolicy(marchLockdown(), discardLogger)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	user := &domain.User{ID: "u2", Username: "berliner", Timezone: "Europe/Berlin"}
	start, err := policy.LockdownStart(user, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Location().String() != "Europe/Berlin" {
		t.Errorf("start location = %s, want Europe/Berlin", start.Location())
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start instant = %v, want %v", start, want)
	}
}

func TestLockdownPolicy_GraceAccessor(t *testing.T) {
	policy := NewLockdownPolicy(marchLockdown(), discardLogger)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	grace, err := policy.LockdownGrace(utcUser, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grace == nil {
		t.Fatal("expected a grace boundary")
	}
	if want := time.Date(2024, 4, 3, 23, 59, 59, 0, time.UTC); !grace.Equal(want) {
		t.Errorf("grace = %v, want %v", grace, want)
	}

	cfg := marchLockdown()
	cfg.Grace = ""
	grace, err = NewLockdownPolicy(cfg, discardLogger).LockdownGrace(utcUser, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grace != nil {
		t.Errorf("grace = %v, want nil without a grace expression", grace)
	}
}
