package risk

import "covid-dashboard/internal/models"

const (
	// AgeThreshold is the age above which a patient is high risk.
	AgeThreshold = 60

	MinAge     = 0
	MaxAge     = 100
	DefaultAge = 30
)

// DefaultRules is the fixed rule set: age over 60, or pneumonia.
func DefaultRules() []*models.RiskRule {
	return []*models.RiskRule{
		{
			ID:               1,
			Name:             "Age over 60",
			PriorityOrder:    1,
			ConditionFilters: map[string]interface{}{"age_over": AgeThreshold},
			Enabled:          true,
		},
		{
			ID:               2,
			Name:             "Pneumonia",
			PriorityOrder:    2,
			ConditionFilters: map[string]interface{}{"comorbidity": string(models.Pneumonia)},
			Enabled:          true,
		},
	}
}

// StaticRules serves a fixed rule list.
type StaticRules struct {
	Rules []*models.RiskRule
}

func NewStaticRules() *StaticRules {
	return &StaticRules{Rules: DefaultRules()}
}

func (s *StaticRules) GetActive() []*models.RiskRule {
	var active []*models.RiskRule
	for _, r := range s.Rules {
		if r.Enabled {
			active = append(active, r)
		}
	}
	return active
}
