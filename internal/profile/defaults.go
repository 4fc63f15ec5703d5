package profile

import (
	"strings"

	"github.com/spigell/card-advisor/internal/catalog"
)

// Defaults fill the fields a sparse profile is missing before scoring.
type Defaults struct {
	MonthlyIncome     float64            `mapstructure:"monthly-income"`
	Spending          map[string]float64 `mapstructure:"spending"`
	PreferredBenefits []string           `mapstructure:"preferred-benefits"`
	CreditScore       int                `mapstructure:"credit-score"`
}

// DefaultDefaults returns the assumptions used when a consultation ends without data.
func DefaultDefaults() Defaults {
	return Defaults{
		MonthlyIncome: 40000,
		Spending: map[string]float64{
			string(catalog.Fuel):      3000,
			string(catalog.Travel):    2000,
			string(catalog.Groceries): 8000,
			string(catalog.Dining):    4000,
			string(catalog.Online):    5000,
			string(catalog.Utilities): 2000,
		},
		PreferredBenefits: []string{"Cashback", "Fuel Benefits"},
		CreditScore:       700,
	}
}

// SpendingHabits converts the configured spending into habits in canonical
// category order. Unknown categories are skipped.
func (d Defaults) SpendingHabits() SpendingHabits {
	var habits SpendingHabits
	for _, category := range catalog.Categories {
		for key, amount := range d.Spending {
			if !strings.EqualFold(strings.TrimSpace(key), string(category)) {
				continue
			}
			// Set rejects general and negative amounts.
			_ = habits.Set(category, amount)
		}
	}
	return habits
}

// ApplyDefaults fills missing fields of p in place. Zero values count as missing.
func ApplyDefaults(p *UserProfile, d Defaults) {
	if p == nil {
		return
	}

	if (p.MonthlyIncome == nil || *p.MonthlyIncome == 0) && d.MonthlyIncome > 0 {
		p.SetMonthlyIncome(d.MonthlyIncome)
	}
	if len(p.SpendingHabits) == 0 {
		p.SpendingHabits = d.SpendingHabits()
	}
	if len(p.PreferredBenefits) == 0 && len(d.PreferredBenefits) > 0 {
		p.PreferredBenefits = append([]string{}, d.PreferredBenefits...)
	}
	if (p.CreditScore == nil || *p.CreditScore == 0) && d.CreditScore > 0 {
		p.SetCreditScore(d.CreditScore)
	}
}

var completionMarkers = []string{
	"ready to provide",
	"personalized recommendations",
	"based on your profile",
	"here are my recommendations",
}

// ReadyForRecommendations reports whether the latest assistant turn signals
// that enough has been gathered to recommend.
func ReadyForRecommendations(turns []Turn) bool {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != RoleAssistant {
			continue
		}
		return containsAny(strings.ToLower(turns[i].Content), completionMarkers)
	}
	return false
}
