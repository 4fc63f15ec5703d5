package scoring

import "github.com/spigell/card-advisor/internal/catalog"

// PointValue is the currency value of one reward point or mile.
const PointValue = 0.25

// EstimateReward converts a year of spending in one category into the reward
// value the card pays for it. Cards without a bonus for the category earn 0.
func EstimateReward(card *catalog.Card, category catalog.Category, annualSpend float64) float64 {
	if card == nil {
		return 0
	}

	bonus, ok := card.Bonus(category)
	if !ok {
		return 0
	}

	earned := annualSpend * bonus.Rate / 100
	if card.RewardType == catalog.Cashback {
		return earned
	}
	return earned * PointValue
}
