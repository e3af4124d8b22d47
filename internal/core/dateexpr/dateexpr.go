// Package dateexpr parses the date expressions used in lockdown
// configuration. An expression is either relative ("first day of this month",
// "+10 days", "yesterday") or absolute ("2024-01-31 18:00"). Absolute values
// are handled by github.com/araddon/dateparse; the relative grammar is a
// closed set resolved against a reference time.
package dateexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var offsetRe = regexp.MustCompile(`^([+-])\s*(\d+)\s*(second|minute|hour|day|week|month|year)s?$`)
var dayOfRe = regexp.MustCompile(`^(first|last) day of (this|last|previous|next) (month|year)$`)

// Parse resolves expr against the reference time ref, interpreted in loc.
// ref carries "now" for relative expressions; loc defaults to UTC.
func Parse(expr string, ref time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return time.Time{}, fmt.Errorf("dateexpr: empty expression")
	}

	now := ref.In(loc)

	switch s {
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return startOfDay(now.AddDate(0, 0, 1)), nil
	}

	if m := dayOfRe.FindStringSubmatch(s); m != nil {
		return dayOf(now, m[1], m[2], m[3]), nil
	}

	if m := offsetRe.FindStringSubmatch(s); m != nil {
		return applyOffset(now, m[1], m[2], m[3])
	}

	t, err := dateparse.ParseIn(expr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("dateexpr: parse %q: %w", expr, err)
	}
	return t, nil
}

// Offset applies a signed offset expression such as "+3 days" to base.
func Offset(expr string, base time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("dateexpr: invalid offset %q", expr)
	}
	return applyOffset(base, m[1], m[2], m[3])
}

func applyOffset(base time.Time, sign, amount, unit string) (time.Time, error) {
	n, err := strconv.Atoi(amount)
	if err != nil {
		return time.Time{}, fmt.Errorf("dateexpr: invalid amount %q: %w", amount, err)
	}
	if sign == "-" {
		n = -n
	}
	switch unit {
	case "second":
		return base.Add(time.Duration(n) * time.Second), nil
	case "minute":
		return base.Add(time.Duration(n) * time.Minute), nil
	case "hour":
		return base.Add(time.Duration(n) * time.Hour), nil
	case "day":
		return base.AddDate(0, 0, n), nil
	case "week":
		return base.AddDate(0, 0, 7*n), nil
	case "month":
		return base.AddDate(0, n, 0), nil
	case "year":
		return base.AddDate(n, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("dateexpr: unknown unit %q", unit)
}

// dayOf resolves "(first|last) day of (this|last|previous|next) (month|year)".
// First-day expressions resolve to 00:00:00, last-day to 23:59:59.
func dayOf(now time.Time, edge, shift, unit string) time.Time {
	year, month := now.Year(), now.Month()

	switch unit {
	case "month":
		switch shift {
		case "last", "previous":
			month--
		case "next":
			month++
		}
		first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
		if edge == "first" {
			return first
		}
		return first.AddDate(0, 1, 0).Add(-time.Second)
	default: // year
		switch shift {
		case "last", "previous":
			year--
		case "next":
			year++
		}
		if edge == "first" {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		}
		return time.Date(year, time.December, 31, 23, 59, 59, 0, now.Location())
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
