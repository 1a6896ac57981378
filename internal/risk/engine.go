// Package risk evaluates the rule-based patient risk classifier.
package risk

import (
	"errors"
	"fmt"
	"sort"

	"covid-dashboard/internal/models"
)

var ErrInvalidAge = errors.New("age out of range")

const (
	highHeadline = "This patient is considered HIGH RISK."
	highAdvice   = "Immediate hospitalisation is suggested for monitoring."
	lowHeadline  = "This patient is considered LOW RISK."
	lowAdvice    = "The patient presents stable factors for home follow-up."
)

type Engine struct {
	rules RulesService
}

func NewEngine(rules RulesService) *Engine {
	return &Engine{rules: rules}
}

// Assess returns High when any active rule matches, Low otherwise.
func (e *Engine) Assess(in *models.PatientInput) (*models.Assessment, error) {
	if in == nil {
		return nil, errors.New("patient input cannot be nil")
	}
	if in.Age < MinAge || in.Age > MaxAge {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidAge, in.Age, MinAge, MaxAge)
	}

	rules := e.rules.GetActive()
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].PriorityOrder < rules[j].PriorityOrder
	})

	var reasons []string
	for _, rule := range rules {
		if ruleMatches(rule, in) {
			reasons = append(reasons, rule.Name)
		}
	}

	if len(reasons) > 0 {
		return &models.Assessment{
			Level:    models.RiskHigh,
			Headline: highHeadline,
			Advice:   highAdvice,
			Reasons:  reasons,
		}, nil
	}
	return &models.Assessment{
		Level:    models.RiskLow,
		Headline: lowHeadline,
		Advice:   lowAdvice,
	}, nil
}

// ruleMatches requires every condition of the rule to hold. A rule with
// no known condition never matches.
func ruleMatches(rule *models.RiskRule, in *models.PatientInput) bool {
	filters := rule.ConditionFilters
	checked := false

	if val, ok := filters["age_over"]; ok {
		var threshold float64
		switch v := val.(type) {
		case int:
			threshold = float64(v)
		case int64:
			threshold = float64(v)
		case float64:
			threshold = v
		default:
			return false
		}
		if float64(in.Age) <= threshold {
			return false
		}
		checked = true
	}

	if val, ok := filters["comorbidity"]; ok {
		name, _ := val.(string)
		if !in.Has(models.Comorbidity(name)) {
			return false
		}
		checked = true
	}

	return checked
}
