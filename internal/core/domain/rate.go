package domain

import "math"

// RateKind distinguishes fixed-price from hourly rate rules.
type RateKind string

const (
	RateKindFixed  RateKind = "fixed"
	RateKindHourly RateKind = "hourly"
)

// RateRule is an externally supplied candidate rate for an entry's scope.
// Rules are immutable inputs; the resolver never mutates them.
type RateRule struct {
	ID           string   `json:"id" bson:"_id,omitempty"`
	Kind         RateKind `json:"kind" bson:"kind"`
	Rate         float64  `json:"rate" bson:"rate"`
	InternalRate *float64 `json:"internal_rate,omitempty" bson:"internal_rate,omitempty"`
	// Scope references; empty means the rule does not constrain that axis.
	CustomerID string `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	ProjectID  string `json:"project_id,omitempty" bson:"project_id,omitempty"`
	ActivityID string `json:"activity_id,omitempty" bson:"activity_id,omitempty"`
	UserID     string `json:"user_id,omitempty" bson:"user_id,omitempty"`
	// Score is the rule's specificity. A rule whose user matches the entry's
	// user earns one extra point during resolution.
	Score int `json:"score" bson:"score"`
}

// IsFixed reports whether the rule carries a fixed price instead of an hourly rate.
func (r RateRule) IsFixed() bool {
	return r.Kind == RateKindFixed
}

// ComputedRate is the immutable result of rate resolution.
// Rate and InternalRate are non-negative and rounded to 4 decimal places.
// HourlyRate is set only on the hourly path, FixedRate only on the fixed path.
type ComputedRate struct {
	Rate         float64  `json:"rate"`
	InternalRate float64  `json:"internal_rate"`
	HourlyRate   *float64 `json:"hourly_rate,omitempty"`
	FixedRate    *float64 `json:"fixed_rate,omitempty"`
}

// NewComputedRate builds a ComputedRate, clamping negative values and rounding
// the monetary amounts to 4 decimal places.
func NewComputedRate(rate, internalRate float64, hourlyRate, fixedRate *float64) ComputedRate {
	return ComputedRate{
		Rate:         RoundRate(math.Max(0, rate)),
		InternalRate: RoundRate(math.Max(0, internalRate)),
		HourlyRate:   hourlyRate,
		FixedRate:    fixedRate,
	}
}

// ZeroRate is the result for running entries and for entries without any
// applicable rule, override, or preference.
func ZeroRate() ComputedRate {
	return ComputedRate{}
}

// RoundRate rounds a monetary value to 4 decimal places.
func RoundRate(v float64) float64 {
	return math.Round(v*10000) / 10000
}
