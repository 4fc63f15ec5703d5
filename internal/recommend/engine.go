package recommend

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/filtering"
	"github.com/spigell/card-advisor/internal/profile"
	"github.com/spigell/card-advisor/internal/scoring"
)

const (
	// MaxResults is the maximum number of recommendations returned.
	MaxResults = 5

	minCompare = 2
	maxCompare = 3
)

var ErrCompareSize = fmt.Errorf("between %d and %d cards can be compared", minCompare, maxCompare)

// Engine recommends cards from an immutable catalog. It holds no per-call
// state and is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	filters []filtering.Filter
	limit   int
	logger  *zap.Logger
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLimit sets how many recommendations are returned. Values outside
// 1..MaxResults are ignored.
func WithLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 && limit <= MaxResults {
			e.limit = limit
		}
	}
}

// WithFilters appends filters run after the eligibility checks.
func WithFilters(steps ...filtering.Filter) Option {
	return func(e *Engine) {
		e.filters = append(e.filters, steps...)
	}
}

func New(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: c,
		filters: filtering.Eligibility(),
		limit:   MaxResults,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DisableFilter turns off the named filter for all later calls. It must not
// run concurrently with Recommend.
func (e *Engine) DisableFilter(name, reason string) error {
	if !filtering.DisableByName(e.filters, name, reason) {
		return fmt.Errorf("unknown filter %q", name)
	}
	return nil
}

// FilterStatus reports the configured filters in run order.
func (e *Engine) FilterStatus() []filtering.Status {
	return filtering.New(e.filters, e.logger).Describe()
}

// Recommend filters the catalog by the profile, scores the remaining cards and
// returns the best ones by descending score. Ties keep catalog order.
func (e *Engine) Recommend(p *profile.UserProfile) []*scoring.Recommendation {
	eligible := filtering.New(e.filters, e.logger).Run(e.catalog.Cards(), p)
	if len(eligible) == 0 {
		e.logger.Info("no eligible cards", zap.Int("catalog_size", e.catalog.Len()))
		return []*scoring.Recommendation{}
	}

	scored := scoreAll(eligible, p)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > e.limit {
		scored = scored[:e.limit]
	}

	e.logger.Debug("recommendations ready",
		zap.Int("eligible", len(eligible)),
		zap.Int("returned", len(scored)),
		zap.Float64("top_score", scored[0].Score),
	)

	return scored
}

// scoreAll scores cards concurrently. Results keep the input order.
func scoreAll(cards []*catalog.Card, p *profile.UserProfile) []*scoring.Recommendation {
	results := make([]*scoring.Recommendation, len(cards))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, card := range cards {
		g.Go(func() error {
			results[i] = scoring.Score(card, p)
			return nil
		})
	}
	// Scoring never fails.
	_ = g.Wait()

	return results
}

// Compare returns the requested cards in catalog order for a side-by-side view.
func (e *Engine) Compare(ids ...string) ([]*catalog.Card, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	if len(wanted) < minCompare || len(wanted) > maxCompare {
		return nil, ErrCompareSize
	}

	var missing []error
	for id := range wanted {
		if e.catalog.FindByID(id) == nil {
			missing = append(missing, fmt.Errorf("unknown card %q", id))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	cards := make([]*catalog.Card, 0, len(wanted))
	for _, card := range e.catalog.Cards() {
		if _, ok := wanted[card.ID]; ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}
