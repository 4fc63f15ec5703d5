package profile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/card-advisor/internal/catalog"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    string `json:"role" mapstructure:"role"`
	Content string `json:"content" mapstructure:"content"`
}

// Extractor builds a partial profile from a conversation.
type Extractor interface {
	Extract(turns []Turn) *UserProfile
}

var incomePattern = regexp.MustCompile(`(\d+)\s*(?:thousand|k|lakh|lakhs|per month|monthly)`)

type keywordRule struct {
	keywords []string
	category catalog.Category
	amount   float64
}

// Categories are populated with a fixed monthly estimate when any keyword appears.
var spendingRules = []keywordRule{
	{keywords: []string{"fuel"}, category: catalog.Fuel, amount: 3000},
	{keywords: []string{"travel"}, category: catalog.Travel, amount: 5000},
	{keywords: []string{"groceries", "grocery"}, category: catalog.Groceries, amount: 8000},
	{keywords: []string{"dining", "restaurant"}, category: catalog.Dining, amount: 4000},
	{keywords: []string{"online shopping", "shopping"}, category: catalog.Online, amount: 6000},
	{keywords: []string{"utilities", "bills"}, category: catalog.Utilities, amount: 2000},
}

var benefitRules = []struct {
	keywords []string
	label    string
}{
	{keywords: []string{"cashback"}, label: "Cashback"},
	{keywords: []string{"travel points", "points"}, label: "Travel Points"},
	{keywords: []string{"lounge"}, label: "Airport Lounge Access"},
	{keywords: []string{"movie"}, label: "Movie Tickets"},
	{keywords: []string{"fuel"}, label: "Fuel Benefits"},
	{keywords: []string{"dining"}, label: "Dining Discounts"},
}

// First match wins.
var creditScoreRules = []struct {
	keywords []string
	score    int
}{
	{keywords: []string{"excellent", "750"}, score: 750},
	{keywords: []string{"good", "700"}, score: 700},
	{keywords: []string{"fair", "650"}, score: 650},
}

// KeywordExtractor detects profile fields by keyword presence in user turns.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract never fails. Fields without a signal are left unset.
func (e *KeywordExtractor) Extract(turns []Turn) *UserProfile {
	text := userText(turns)
	p := &UserProfile{}

	if income, ok := extractIncome(text); ok {
		p.SetMonthlyIncome(income)
	}

	for _, rule := range spendingRules {
		if containsAny(text, rule.keywords) {
			p.SpendingHabits = append(p.SpendingHabits, Spend{Category: rule.category, Amount: rule.amount})
		}
	}

	for _, rule := range benefitRules {
		if containsAny(text, rule.keywords) {
			p.PreferredBenefits = append(p.PreferredBenefits, rule.label)
		}
	}

	for _, rule := range creditScoreRules {
		if containsAny(text, rule.keywords) {
			p.SetCreditScore(rule.score)
			break
		}
	}

	return p
}

func userText(turns []Turn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		if t.Role != RoleUser {
			continue
		}
		parts = append(parts, strings.ToLower(t.Content))
	}
	return strings.Join(parts, " ")
}

// extractIncome takes the first number next to an income unit. The unit
// multiplier is decided by the whole text, not by the matched number.
func extractIncome(text string) (float64, bool) {
	m := incomePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	income, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	switch {
	case strings.Contains(text, "lakh"):
		income *= 100000
	case strings.Contains(text, "thousand"), strings.Contains(text, "k"):
		income *= 1000
	}

	return income, true
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
