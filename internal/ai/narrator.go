package ai

import (
	"context"
	"strings"

	"github.com/spigell/card-advisor/internal/profile"
	"github.com/spigell/card-advisor/internal/recommend"
	"github.com/spigell/card-advisor/internal/scoring"
	"go.uber.org/zap"
)

// Narrator turns ranked recommendations into a message for the user.
type Narrator interface {
	Narrate(ctx context.Context, p *profile.UserProfile, recs []*scoring.Recommendation) (string, error)
}

// TemplateNarrator renders the fixed plain text summary.
type TemplateNarrator struct{}

func (TemplateNarrator) Narrate(_ context.Context, _ *profile.UserProfile, recs []*scoring.Recommendation) (string, error) {
	return recommend.Summary(recs), nil
}

type fallbackNarrator struct {
	primary  Narrator
	fallback Narrator
	logger   *zap.Logger
}

// WithFallback uses the template summary whenever primary fails or
// returns an empty message.
func WithFallback(primary Narrator, logger *zap.Logger) Narrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if primary == nil {
		return TemplateNarrator{}
	}
	return &fallbackNarrator{primary: primary, fallback: TemplateNarrator{}, logger: logger}
}

func (f *fallbackNarrator) Narrate(ctx context.Context, p *profile.UserProfile, recs []*scoring.Recommendation) (string, error) {
	msg, err := f.primary.Narrate(ctx, p, recs)
	if err == nil && strings.TrimSpace(msg) != "" {
		return msg, nil
	}

	if err != nil {
		f.logger.Warn("narration failed, using template", zap.Error(err))
	} else {
		f.logger.Warn("narration returned empty message, using template")
	}
	return f.fallback.Narrate(ctx, p, recs)
}
