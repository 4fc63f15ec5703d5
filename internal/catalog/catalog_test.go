package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Len() != 21 {
		t.Fatalf("expected 21 cards, got %d", c.Len())
	}

	ids := c.IDs()
	if ids[0] != "hdfc-regalia" || ids[len(ids)-1] != "dhanlaxmi-platinum" {
		t.Fatalf("unexpected catalog order: first %s, last %s", ids[0], ids[len(ids)-1])
	}

	card := c.FindByID("sbi-cashback")
	if card == nil {
		t.Fatalf("expected sbi-cashback to be present")
	}
	if card.RewardType != Cashback || card.MinIncome != 200000 || card.MinCreditScore != 650 {
		t.Fatalf("unexpected card: %+v", card)
	}

	bonus, ok := card.Bonus(Online)
	if !ok || bonus.Rate != 5 {
		t.Fatalf("expected 5%% online bonus, got %+v (found %v)", bonus, ok)
	}

	if _, ok := card.Bonus(Fuel); ok {
		t.Fatalf("did not expect fuel bonus")
	}
}

func TestCardsReturnsCopy(t *testing.T) {
	c, err := New([]*Card{
		{ID: "a", RewardType: Cashback},
		{ID: "b", RewardType: Points},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cards := c.Cards()
	cards[0] = nil

	if c.Cards()[0] == nil {
		t.Fatalf("catalog order must not change through the returned slice")
	}
}

func TestNewRejectsInvalidCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cards  []*Card
		target error
	}{
		{
			name:   "duplicate id",
			cards:  []*Card{{ID: "a", RewardType: Cashback}, {ID: "a", RewardType: Miles}},
			target: ErrDuplicateCard,
		},
		{
			name:   "missing id",
			cards:  []*Card{{RewardType: Cashback}},
			target: ErrInvalidCard,
		},
		{
			name:   "unknown reward type",
			cards:  []*Card{{ID: "a", RewardType: "stars"}},
			target: ErrInvalidCard,
		},
		{
			name:   "negative income",
			cards:  []*Card{{ID: "a", RewardType: Points, MinIncome: -1}},
			target: ErrInvalidCard,
		},
		{
			name: "duplicate category",
			cards: []*Card{{ID: "a", RewardType: Points, Categories: []CategoryBonus{
				{Category: Fuel, Rate: 1},
				{Category: Fuel, Rate: 2},
			}}},
			target: ErrInvalidCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tt.cards); !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	data := `{"cards": [{"id": "x", "name": "X", "reward_type": "miles", "min_income": 100,
		"categories": [{"category": "travel", "rate": 3}], "special_perks": ["Lounge"]}]}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	card := c.FindByID("x")
	if card == nil || card.RewardType != Miles || card.MinIncome != 100 {
		t.Fatalf("unexpected card: %+v", card)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("cards:\n  - id: a\n    reward_type: points\n    annual_feee: 10\n"))
	if err == nil {
		t.Fatalf("expected error for misspelled key")
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Groceries ")
	if err != nil || c != Groceries {
		t.Fatalf("expected groceries, got %q (%v)", c, err)
	}

	if _, err := ParseCategory("rent"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
