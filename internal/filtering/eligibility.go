package filtering

import (
	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/profile"
)

type incomeFilter struct {
	disabled bool
	reason   string
}

// NewIncome creates a filter that removes cards whose minimum annual income
// is above the profile income. Unknown income keeps every card.
func NewIncome() Filter {
	return &incomeFilter{}
}

func (f *incomeFilter) Name() string { return "income" }

func (f *incomeFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *incomeFilter) IsEnabled() bool { return !f.disabled }

func (f *incomeFilter) Apply(cards []*catalog.Card, p *profile.UserProfile) ([]*catalog.Card, Step) {
	annual, ok := p.AnnualIncome()
	if !ok {
		return keep(cards, func(*catalog.Card) bool { return true })
	}

	return keep(cards, func(c *catalog.Card) bool {
		return annual >= c.MinIncome
	})
}

func (f *incomeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type creditScoreFilter struct {
	disabled bool
	reason   string
}

// NewCreditScore creates a filter that removes cards whose minimum credit
// score is above the profile score. Unknown score keeps every card.
func NewCreditScore() Filter {
	return &creditScoreFilter{}
}

func (f *creditScoreFilter) Name() string { return "credit_score" }

func (f *creditScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *creditScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *creditScoreFilter) Apply(cards []*catalog.Card, p *profile.UserProfile) ([]*catalog.Card, Step) {
	if p == nil || p.CreditScore == nil {
		return keep(cards, func(*catalog.Card) bool { return true })
	}

	score := *p.CreditScore
	return keep(cards, func(c *catalog.Card) bool {
		return score >= c.MinCreditScore
	})
}

func (f *creditScoreFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
