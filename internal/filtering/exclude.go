package filtering

import (
	"slices"
	"strings"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/profile"
)

type excludeFilter struct {
	cards   map[string]struct{}
	issuers map[string]struct{}
}

// NewExclude creates a filter that removes cards by id or issuer name.
// Issuers are matched case-insensitively.
func NewExclude(cardIDs, issuers []string) Filter {
	f := &excludeFilter{
		cards:   make(map[string]struct{}, len(cardIDs)),
		issuers: make(map[string]struct{}, len(issuers)),
	}
	for _, id := range cardIDs {
		if id = strings.TrimSpace(id); id != "" {
			f.cards[id] = struct{}{}
		}
	}
	for _, issuer := range issuers {
		if issuer = strings.ToLower(strings.TrimSpace(issuer)); issuer != "" {
			f.issuers[issuer] = struct{}{}
		}
	}
	return f
}

func (f *excludeFilter) Name() string { return "exclude" }

func (f *excludeFilter) Disable(string) {}

func (f *excludeFilter) IsEnabled() bool { return true }

func (f *excludeFilter) Apply(cards []*catalog.Card, _ *profile.UserProfile) ([]*catalog.Card, Step) {
	return keep(cards, func(c *catalog.Card) bool {
		if _, ok := f.cards[c.ID]; ok {
			return false
		}
		_, ok := f.issuers[strings.ToLower(c.Issuer)]
		return !ok
	})
}

func (f *excludeFilter) Status() Status {
	details := map[string]string{}
	if len(f.cards) > 0 {
		details["cards"] = joinKeys(f.cards)
	}
	if len(f.issuers) > 0 {
		details["issuers"] = joinKeys(f.issuers)
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

func joinKeys(m map[string]struct{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, ",")
}
