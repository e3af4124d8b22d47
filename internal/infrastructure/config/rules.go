package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

// Rules is the parsed content of the YAML rules file: the ordered list of
// weekday-scoped rounding rules and the weekday rate factors.
type Rules struct {
	RoundingRules  []roundingRuleSpec  `yaml:"rounding_rules" validate:"dive"`
	WeekdayFactors []weekdayFactorSpec `yaml:"weekday_factors" validate:"dive"`
}

type roundingRuleSpec struct {
	Days     []string `yaml:"days" validate:"required,min=1,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Mode     string   `yaml:"mode" validate:"required"`
	Begin    int      `yaml:"begin" validate:"gte=0"`
	End      int      `yaml:"end" validate:"gte=0"`
	Duration int      `yaml:"duration" validate:"gte=0"`
}

type weekdayFactorSpec struct {
	Days   []string `yaml:"days" validate:"required,min=1,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Factor float64  `yaml:"factor" validate:"required"`
}

// LoadRules parses and validates the rules file. A missing path yields empty
// rule sets. Mode names are validated later by the rounding engine, which
// owns the registry of recognized strategies.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return &Rules{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("rules: parse %s: %w", path, err)
	}

	if err := validator.New().Struct(&rules); err != nil {
		return nil, fmt.Errorf("rules: validate %s: %w", path, err)
	}

	return &rules, nil
}

// Rounding converts the parsed specs into domain rules, preserving order.
func (r *Rules) Rounding() []domain.RoundingRule {
	out := make([]domain.RoundingRule, 0, len(r.RoundingRules))
	for _, spec := range r.RoundingRules {
		out = append(out, domain.RoundingRule{
			Days:     spec.Days,
			Mode:     spec.Mode,
			Begin:    spec.Begin,
			End:      spec.End,
			Duration: spec.Duration,
		})
	}
	return out
}

// Factors converts the parsed specs into domain weekday factors.
func (r *Rules) Factors() []domain.WeekdayFactor {
	out := make([]domain.WeekdayFactor, 0, len(r.WeekdayFactors))
	for _, spec := range r.WeekdayFactors {
		out = append(out, domain.WeekdayFactor{Days: spec.Days, Factor: spec.Factor})
	}
	return out
}
