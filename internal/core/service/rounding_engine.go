package service

import (
	"fmt"
	"time"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

// roundingMode is one named strategy of the closed registry. Granularities
// are minutes; implementations must leave the value untouched for
// granularities below one minute.
type roundingMode interface {
	RoundBegin(t time.Time, minutes int) time.Time
	RoundEnd(t time.Time, minutes int) time.Time
	RoundDuration(seconds int64, minutes int) int64
}

// roundingModes is the fixed set of recognized mode names. Unknown names are
// a fatal configuration error, rejected when the engine is constructed.
var roundingModes = map[string]roundingMode{
	"default": defaultRounding{},
	"ceil":    ceilRounding{},
	"floor":   floorRounding{},
	"closest": closestRounding{},
}

// RoundingEngine mutates an entry's begin/end/duration according to the
// configured weekday-scoped rules, in configured order. Rules compound: a
// later matching rule operates on the already-rounded result of an earlier
// one, so the engine is intentionally not idempotent across rules.
type RoundingEngine struct {
	rules []domain.RoundingRule
	modes []roundingMode // resolved per rule at construction
}

// NewRoundingEngine validates every rule's mode name against the registry.
// An unrecognized name aborts construction with domain.ErrUnknownRoundingMode.
func NewRoundingEngine(rules []domain.RoundingRule) (*RoundingEngine, error) {
	modes := make([]roundingMode, len(rules))
	for i, rule := range rules {
		m, ok := roundingModes[rule.Mode]
		if !ok {
			return nil, fmt.Errorf("rounding rule %d: %w: %q", i, domain.ErrUnknownRoundingMode, rule.Mode)
		}
		modes[i] = m
	}
	return &RoundingEngine{rules: rules, modes: modes}, nil
}

// ApplyRoundings applies every rule in order. Begin is rounded when the rule
// covers begin's weekday; end and the duration rounding when it covers end's
// weekday. Every rule recomputes duration from the (possibly just-rounded)
// timestamps, so duration equals end minus begin even when only one side of
// the entry matched.
func (e *RoundingEngine) ApplyRoundings(entry *domain.TimeEntry) {
	if entry.Begin == nil || entry.End == nil {
		return
	}
	for i, rule := range e.rules {
		mode := e.modes[i]
		if rule.Matches(*entry.Begin) {
			b := mode.RoundBegin(*entry.Begin, rule.Begin)
			entry.Begin = &b
		}
		if rule.Matches(*entry.End) {
			end := mode.RoundEnd(*entry.End, rule.End)
			entry.End = &end
		}
		entry.Duration = entry.End.Unix() - entry.Begin.Unix()
		if rule.Matches(*entry.End) {
			entry.Duration = mode.RoundDuration(entry.Duration, rule.Duration)
		}
	}
}

// --- timestamp helpers ---

func floorTime(t time.Time, minutes int) time.Time {
	if minutes < 1 {
		return t
	}
	step := int64(minutes) * 60
	ts := t.Unix()
	return time.Unix(ts-ts%step, 0).In(t.Location())
}

func ceilTime(t time.Time, minutes int) time.Time {
	if minutes < 1 {
		return t
	}
	step := int64(minutes) * 60
	ts := t.Unix()
	if rem := ts % step; rem != 0 {
		ts += step - rem
	}
	return time.Unix(ts, 0).In(t.Location())
}

func closestTime(t time.Time, minutes int) time.Time {
	if minutes < 1 {
		return t
	}
	step := int64(minutes) * 60
	ts := t.Unix()
	rem := ts % step
	ts -= rem
	if rem*2 >= step {
		ts += step
	}
	return time.Unix(ts, 0).In(t.Location())
}

func floorSeconds(seconds, step int64) int64 {
	return seconds - seconds%step
}

func ceilSeconds(seconds, step int64) int64 {
	if rem := seconds % step; rem != 0 {
		return seconds + step - rem
	}
	return seconds
}

// --- strategies ---

// defaultRounding favors the worker: begin is rounded down, end and duration up.
type defaultRounding struct{}

func (defaultRounding) RoundBegin(t time.Time, minutes int) time.Time { return floorTime(t, minutes) }
func (defaultRounding) RoundEnd(t time.Time, minutes int) time.Time   { return ceilTime(t, minutes) }
func (defaultRounding) RoundDuration(seconds int64, minutes int) int64 {
	if minutes < 1 {
		return seconds
	}
	return ceilSeconds(seconds, int64(minutes)*60)
}

type ceilRounding struct{}

func (ceilRounding) RoundBegin(t time.Time, minutes int) time.Time { return ceilTime(t, minutes) }
func (ceilRounding) RoundEnd(t time.Time, minutes int) time.Time   { return ceilTime(t, minutes) }
func (ceilRounding) RoundDuration(seconds int64, minutes int) int64 {
	if minutes < 1 {
		return seconds
	}
	return ceilSeconds(seconds, int64(minutes)*60)
}

type floorRounding struct{}

func (floorRounding) RoundBegin(t time.Time, minutes int) time.Time { return floorTime(t, minutes) }
func (floorRounding) RoundEnd(t time.Time, minutes int) time.Time   { return floorTime(t, minutes) }
func (floorRounding) RoundDuration(seconds int64, minutes int) int64 {
	if minutes < 1 {
		return seconds
	}
	return floorSeconds(seconds, int64(minutes)*60)
}

// closestRounding rounds to the nearest granularity boundary, half up.
type closestRounding struct{}

func (closestRounding) RoundBegin(t time.Time, minutes int) time.Time { return closestTime(t, minutes) }
func (closestRounding) RoundEnd(t time.Time, minutes int) time.Time   { return closestTime(t, minutes) }
func (closestRounding) RoundDuration(seconds int64, minutes int) int64 {
	if minutes < 1 {
		return seconds
	}
	step := int64(minutes) * 60
	rem := seconds % step
	seconds -= rem
	if rem*2 >= step {
		seconds += step
	}
	return seconds
}
