package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/card-advisor/internal/logger"
	"github.com/spigell/card-advisor/internal/profile"
	"github.com/spigell/card-advisor/internal/scoring"
	"github.com/spigell/card-advisor/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Narrator asks Gemini to present ranked recommendations in a friendly tone.
type Narrator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// recommendationView is the part of a recommendation the model gets to see.
type recommendationView struct {
	Rank             int      `json:"rank"`
	Name             string   `json:"name"`
	Issuer           string   `json:"issuer"`
	AnnualFee        float64  `json:"annual_fee"`
	EstimatedRewards float64  `json:"estimated_rewards"`
	MatchPercentage  int      `json:"match_percentage"`
	Reasons          []string `json:"reasons"`
	ApplyLink        string   `json:"apply_link,omitempty"`
}

func NewNarrator(generator contentGenerator, log *zap.Logger, maxLogLength int) *Narrator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Narrator{
		generator: generator,
		logger:    logger.WithAI(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (n *Narrator) Narrate(ctx context.Context, p *profile.UserProfile, recs []*scoring.Recommendation) (string, error) {
	if p == nil {
		p = &profile.UserProfile{}
	}

	profileJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	views := make([]recommendationView, 0, len(recs))
	for i, rec := range recs {
		views = append(views, recommendationView{
			Rank:             i + 1,
			Name:             rec.Card.Name,
			Issuer:           rec.Card.Issuer,
			AnnualFee:        rec.Card.AnnualFee,
			EstimatedRewards: rec.EstimatedRewards,
			MatchPercentage:  rec.MatchPercentage,
			Reasons:          rec.Reasons,
			ApplyLink:        rec.Card.ApplyLink,
		})
	}

	recsJSON, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal recommendations payload: %w", err)
	}

	prompt := buildPrompt(string(profileJSON), string(recsJSON))

	n.logger.Debug("gemini generate content request",
		zap.Int("recommendations", len(recs)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, n.maxLogLen)),
	)

	raw, err := n.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	n.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, n.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(profileJSON, recsJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE_JSON}}\n\nRecommendations:\n{{RECOMMENDATIONS_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", profileJSON)
	prompt = strings.ReplaceAll(prompt, "{{RECOMMENDATIONS_JSON}}", recsJSON)
	return prompt
}

// parseResponse takes the message field of a JSON answer. Answers that are
// not JSON objects are used as plain text.
func parseResponse(raw string) (string, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		if strings.HasPrefix(cleaned, "{") {
			return "", fmt.Errorf("parse gemini response: %w", err)
		}
		return cleaned, nil
	}

	message := coerceString(data["message"])
	if message == "" {
		return "", errors.New("gemini response has no message")
	}
	return message, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
