package risk

import "covid-dashboard/internal/models"

// RulesService defines the interface for rule retrieval
type RulesService interface {
	GetActive() []*models.RiskRule
}
