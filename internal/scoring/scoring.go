package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/profile"
)

const (
	// MaxReasons is the number of reasons kept, in generation order.
	MaxReasons = 4
	// MaxMatchPercentage caps the displayed match value.
	MaxMatchPercentage = 95

	maxCategoryScore = 10
	categoryFactor   = 5
	benefitScore     = 5
	welcomeScore     = 3
)

// Recommendation is the scoring result for one card.
// Score is the ranking key, MatchPercentage is for display only.
type Recommendation struct {
	Card             *catalog.Card `json:"card"`
	Score            float64       `json:"score"`
	Reasons          []string      `json:"reasons"`
	EstimatedRewards float64       `json:"estimated_rewards"`
	MatchPercentage  int           `json:"match_percentage"`
}

type feeTier struct {
	max    float64
	score  float64
	reason string
}

// The first tier whose max is not exceeded applies.
var feeTiers = []feeTier{
	{max: 0, score: 10, reason: "Lifetime free card - no annual fee"},
	{max: 500, score: 8, reason: "Very low annual fee"},
	{max: 1000, score: 6, reason: "Low annual fee"},
	{max: 2500, score: 4, reason: "Moderate annual fee with premium benefits"},
	{max: math.Inf(1), score: 2, reason: "Premium card with exclusive benefits"},
}

// Perk words a preferred benefit can match on even without the full phrase.
var perkAliases = []string{"lounge", "movie", "fuel", "dining"}

type scorer struct {
	score   float64
	reasons []string
}

func (s *scorer) add(points float64, reason string) {
	s.score += points
	if reason != "" {
		s.reasons = append(s.reasons, reason)
	}
}

// Score rates how well the card fits the profile. Absent profile fields skip
// their contribution. Score is deterministic and never fails.
func Score(card *catalog.Card, p *profile.UserProfile) *Recommendation {
	if p == nil {
		p = &profile.UserProfile{}
	}

	s := &scorer{}

	scoreIncome(s, card, p)
	rewards := scoreCategories(s, card, p)
	scoreBenefits(s, card, p)
	scoreFee(s, card)
	scoreCreditScore(s, card, p)

	if card.WelcomeBonus != "" {
		s.add(welcomeScore, "Attractive welcome bonus offer")
	}

	reasons := s.reasons
	if len(reasons) > MaxReasons {
		reasons = reasons[:MaxReasons]
	}

	return &Recommendation{
		Card:             card,
		Score:            s.score,
		Reasons:          reasons,
		EstimatedRewards: math.Round(rewards),
		MatchPercentage:  MatchPercentage(s.score),
	}
}

// MatchPercentage compresses a raw score into the displayed 0-95 range.
func MatchPercentage(score float64) int {
	pct := math.Round(score)
	if pct > MaxMatchPercentage {
		pct = MaxMatchPercentage
	}
	if pct < 0 {
		pct = 0
	}
	return int(pct)
}

func scoreIncome(s *scorer, card *catalog.Card, p *profile.UserProfile) {
	annual, ok := p.AnnualIncome()
	if !ok {
		return
	}

	switch {
	case annual >= card.MinIncome*2:
		s.add(20, "Excellent income compatibility - well above minimum requirement")
	case annual >= card.MinIncome*1.5:
		s.add(15, "Very good income match for this card")
	case annual >= card.MinIncome:
		s.add(10, "Meets income requirements")
	}
}

// scoreCategories adds the per-category alignment and returns the estimated
// annual rewards over all matched categories.
func scoreCategories(s *scorer, card *catalog.Card, p *profile.UserProfile) float64 {
	total := p.SpendingHabits.Total()
	if total <= 0 {
		return 0
	}

	var rewards float64
	for _, spend := range p.SpendingHabits {
		bonus, ok := card.Bonus(spend.Category)
		if !ok || spend.Amount <= 0 {
			continue
		}

		weight := spend.Amount / total
		s.add(math.Min(weight*bonus.Rate*categoryFactor, maxCategoryScore), categoryReason(spend.Category, bonus.Rate))

		rewards += EstimateReward(card, spend.Category, spend.Amount*12)
	}

	return rewards
}

func categoryReason(category catalog.Category, rate float64) string {
	var grade string
	switch {
	case rate >= 10:
		grade = "Excellent"
	case rate >= 5:
		grade = "Great"
	case rate >= 3:
		grade = "Good"
	default:
		return ""
	}
	return fmt.Sprintf("%s %s rewards - %sX points/cashback", grade, category, strconv.FormatFloat(rate, 'f', -1, 64))
}

func scoreBenefits(s *scorer, card *catalog.Card, p *profile.UserProfile) {
	for _, benefit := range p.PreferredBenefits {
		if MatchesBenefit(card, benefit) {
			s.add(benefitScore, "Offers your preferred benefit: "+benefit)
		}
	}
}

// MatchesBenefit reports whether the card offers the preferred benefit,
// either through a perk containing the phrase or through a known alias.
func MatchesBenefit(card *catalog.Card, benefit string) bool {
	b := strings.ToLower(benefit)

	if strings.Contains(b, "cashback") && card.RewardType == catalog.Cashback {
		return true
	}
	if strings.Contains(b, "travel") && (card.RewardType == catalog.Points || card.RewardType == catalog.Miles) {
		return true
	}

	for _, perk := range card.SpecialPerks {
		perk = strings.ToLower(perk)
		if strings.Contains(perk, b) {
			return true
		}
		for _, alias := range perkAliases {
			if strings.Contains(b, alias) && strings.Contains(perk, alias) {
				return true
			}
		}
	}

	return false
}

func scoreFee(s *scorer, card *catalog.Card) {
	for _, tier := range feeTiers {
		if card.AnnualFee <= tier.max {
			s.add(tier.score, tier.reason)
			return
		}
	}
}

func scoreCreditScore(s *scorer, card *catalog.Card, p *profile.UserProfile) {
	if p.CreditScore == nil {
		return
	}

	score := *p.CreditScore
	switch {
	case score >= card.MinCreditScore+100:
		s.add(10, "Excellent credit score match - high approval chances")
	case score >= card.MinCreditScore+50:
		s.add(8, "Very good credit score for this card")
	case score >= card.MinCreditScore:
		s.add(5, "Meets credit score requirements")
	}
}
