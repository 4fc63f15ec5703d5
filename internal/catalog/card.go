package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Category is a spending category a card can reward.
type Category string

const (
	Fuel      Category = "fuel"
	Travel    Category = "travel"
	Groceries Category = "groceries"
	Dining    Category = "dining"
	Online    Category = "online"
	Utilities Category = "utilities"
	General   Category = "general"
)

// Categories lists every known category in canonical order.
var Categories = []Category{Fuel, Travel, Groceries, Dining, Online, Utilities, General}

// ParseCategory converts a raw category name into a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// RewardType is the currency a card pays rewards in.
type RewardType string

const (
	Cashback RewardType = "cashback"
	Points   RewardType = "points"
	Miles    RewardType = "miles"
)

func (r RewardType) Valid() bool {
	return r == Cashback || r == Points || r == Miles
}

var ErrInvalidCard = errors.New("invalid card")

// CategoryBonus is an accelerated reward rate for one category.
// Rate is a percent for cashback cards and a multiplier otherwise.
type CategoryBonus struct {
	Category    Category `mapstructure:"category" json:"category"`
	Rate        float64  `mapstructure:"rate" json:"rate"`
	Description string   `mapstructure:"description" json:"description,omitempty"`
}

// Card is a single catalog entry. Cards are shared between consultations
// and must not be modified after the catalog is built.
type Card struct {
	ID     string `mapstructure:"id" json:"id"`
	Name   string `mapstructure:"name" json:"name"`
	Issuer string `mapstructure:"issuer" json:"issuer"`

	JoiningFee float64 `mapstructure:"joining_fee" json:"joining_fee"`
	AnnualFee  float64 `mapstructure:"annual_fee" json:"annual_fee"`

	RewardType   RewardType `mapstructure:"reward_type" json:"reward_type"`
	RewardRate   float64    `mapstructure:"reward_rate" json:"reward_rate"`
	MaxRewardCap float64    `mapstructure:"max_reward_cap" json:"max_reward_cap,omitempty"`

	MinIncome      float64 `mapstructure:"min_income" json:"min_income"`
	MinCreditScore int     `mapstructure:"min_credit_score" json:"min_credit_score"`

	Categories   []CategoryBonus `mapstructure:"categories" json:"categories"`
	SpecialPerks []string        `mapstructure:"special_perks" json:"special_perks"`
	Features     []string        `mapstructure:"features" json:"features,omitempty"`
	ApplyLink    string          `mapstructure:"apply_link" json:"apply_link,omitempty"`
	WelcomeBonus string          `mapstructure:"welcome_bonus" json:"welcome_bonus,omitempty"`
}

// Bonus returns the category bonus of the card for the given category.
func (c *Card) Bonus(category Category) (CategoryBonus, bool) {
	for _, b := range c.Categories {
		if b.Category == category {
			return b, true
		}
	}
	return CategoryBonus{}, false
}

// Validate checks the card invariants.
func (c *Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCard)
	}
	if !c.RewardType.Valid() {
		return fmt.Errorf("%w: %s: unknown reward type %q", ErrInvalidCard, c.ID, c.RewardType)
	}
	if c.MinIncome < 0 || c.MinCreditScore < 0 {
		return fmt.Errorf("%w: %s: eligibility minimums must not be negative", ErrInvalidCard, c.ID)
	}
	if c.JoiningFee < 0 || c.AnnualFee < 0 {
		return fmt.Errorf("%w: %s: fees must not be negative", ErrInvalidCard, c.ID)
	}

	seen := make(map[Category]struct{}, len(c.Categories))
	for _, b := range c.Categories {
		if !b.Category.Valid() {
			return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidCard, c.ID, b.Category)
		}
		if _, ok := seen[b.Category]; ok {
			return fmt.Errorf("%w: %s: duplicate category %q", ErrInvalidCard, c.ID, b.Category)
		}
		if b.Rate < 0 {
			return fmt.Errorf("%w: %s: negative rate for %q", ErrInvalidCard, c.ID, b.Category)
		}
		seen[b.Category] = struct{}{}
	}

	return nil
}
