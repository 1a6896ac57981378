package models

// RiskRule flags a patient as high risk when all of its conditions hold.
//
// Supported ConditionFilters keys:
//   - "age_over": patient age strictly greater than the value
//   - "comorbidity": name of a Comorbidity that must be checked
type RiskRule struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name"`
	PriorityOrder    int                    `json:"priority_order"`
	ConditionFilters map[string]interface{} `json:"condition_filters"`
	Enabled          bool                   `json:"enabled"`
}
