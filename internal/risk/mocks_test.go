package risk

import "covid-dashboard/internal/models"

type MockRulesService struct {
	GetActiveFunc func() []*models.RiskRule
}

func (m *MockRulesService) GetActive() []*models.RiskRule {
	return m.GetActiveFunc()
}
