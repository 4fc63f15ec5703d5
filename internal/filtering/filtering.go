package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/profile"
)

// Filter represents a single step that removes cards a profile cannot get.
// Apply must not modify the input slice.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(cards []*catalog.Card, p *profile.UserProfile) ([]*catalog.Card, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Filtering runs filters sequentially.
type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Filtering{
		steps:  steps,
		logger: logger,
	}
}

// Eligibility returns the filters that enforce the hard card requirements.
func Eligibility() []Filter {
	return []Filter{
		NewIncome(),
		NewCreditScore(),
	}
}

// Eligible keeps the cards whose income and credit score requirements the profile meets.
func Eligible(cards []*catalog.Card, p *profile.UserProfile) []*catalog.Card {
	return New(Eligibility(), nil).Run(cards, p)
}

// Run applies every enabled filter and returns the remaining cards in input order.
func (f *Filtering) Run(cards []*catalog.Card, p *profile.UserProfile) []*catalog.Card {
	left := make([]*catalog.Card, len(cards))
	copy(left, cards)

	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info := step.Apply(left, p)

		f.logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		left = next
	}

	return left
}

// Describe returns status entries for the configured filters.
func (f *Filtering) Describe() []Status {
	return Describe(f.steps)
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
// It reports whether any filter had that name.
func DisableByName(steps []Filter, name, reason string) bool {
	found := false
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
			found = true
		}
	}
	return found
}

// keep returns the cards accepted by the predicate without touching the input.
func keep(cards []*catalog.Card, accept func(*catalog.Card) bool) ([]*catalog.Card, Step) {
	out := make([]*catalog.Card, 0, len(cards))
	for _, card := range cards {
		if accept(card) {
			out = append(out, card)
		}
	}
	return out, Step{Initial: len(cards), Dropped: len(cards) - len(out), Left: len(out)}
}
