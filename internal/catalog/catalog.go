package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed cards.yaml
var defaultCards []byte

var ErrDuplicateCard = errors.New("duplicate card id")

// Catalog is an immutable, ordered list of cards.
type Catalog struct {
	cards []*Card
	byID  map[string]*Card
}

type catalogFile struct {
	Cards []*Card `mapstructure:"cards"`
}

// New validates the cards and builds a catalog preserving their order.
func New(cards []*Card) (*Catalog, error) {
	c := &Catalog{
		cards: make([]*Card, 0, len(cards)),
		byID:  make(map[string]*Card, len(cards)),
	}

	for _, card := range cards {
		if card == nil {
			continue
		}
		if err := card.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.byID[card.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, card.ID)
		}
		c.cards = append(c.cards, card)
		c.byID[card.ID] = card
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCards)
	if err != nil {
		return nil, fmt.Errorf("built-in catalog: %w", err)
	}
	return c, nil
}

// LoadFile reads a YAML or JSON catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %q: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document with a top-level "cards" list.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var file catalogFile
	cfg := &mapstructure.DecoderConfig{
		Result:      &file,
		ErrorUnused: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return New(file.Cards)
}

// Cards returns the cards in catalog order.
func (c *Catalog) Cards() []*Card {
	if c == nil {
		return nil
	}
	out := make([]*Card, len(c.cards))
	copy(out, c.cards)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cards)
}

func (c *Catalog) FindByID(id string) *Card {
	if c == nil {
		return nil
	}
	return c.byID[id]
}

func (c *Catalog) IDs() []string {
	ids := make([]string, 0, c.Len())
	for _, card := range c.Cards() {
		ids = append(ids, card.ID)
	}
	return ids
}
