package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrUnknownRoundingMode = errors.New("unknown rounding mode")

// RoundingRule is one weekday-scoped rounding configuration. Rules are applied
// in configured order; granularities are minutes, values below one minute
// disable rounding for that field.
type RoundingRule struct {
	Days     []string `yaml:"days"`
	Mode     string   `yaml:"mode"`
	Begin    int      `yaml:"begin"`
	End      int      `yaml:"end"`
	Duration int      `yaml:"duration"`
}

// Matches reports whether the rule's weekday set contains the weekday of t.
func (r RoundingRule) Matches(t time.Time) bool {
	return matchesWeekday(r.Days, t)
}

// WeekdayFactor multiplies hourly and internal rates for entries ending on
// one of the configured weekdays. Multiple matching factors add together.
type WeekdayFactor struct {
	Days   []string `yaml:"days"`
	Factor float64  `yaml:"factor"`
}

// Matches reports whether the factor applies to the weekday of t.
func (f WeekdayFactor) Matches(t time.Time) bool {
	return matchesWeekday(f.Days, t)
}

// matchesWeekday compares by English weekday name, case-insensitive.
func matchesWeekday(days []string, t time.Time) bool {
	name := strings.ToLower(t.Weekday().String())
	for _, d := range days {
		if strings.ToLower(strings.TrimSpace(d)) == name {
			return true
		}
	}
	return false
}
