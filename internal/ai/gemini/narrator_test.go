package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/profile"
	"github.com/spigell/card-advisor/internal/scoring"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestNarratorNarrate(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"message\": \"Here are your cards!\"}\n```"}
	narrator := NewNarrator(stub, zap.NewNop(), 0)

	p := &profile.UserProfile{}
	p.SetMonthlyIncome(40000)
	_ = p.SpendingHabits.Set(catalog.Fuel, 3000)

	recs := []*scoring.Recommendation{{
		Card:             &catalog.Card{Name: "IDFC FIRST Millennia", Issuer: "IDFC FIRST Bank"},
		Reasons:          []string{"Free card"},
		EstimatedRewards: 7200,
		MatchPercentage:  53,
	}}

	got, err := narrator.Narrate(context.Background(), p, recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Here are your cards!" {
		t.Fatalf("unexpected message %q", got)
	}

	for _, want := range []string{`"monthly_income": 40000`, `"fuel": 3000`, `"name": "IDFC FIRST Millennia"`, `"match_percentage": 53`, `"rank": 1`} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, stub.lastPrompt)
		}
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("prompt has unresolved placeholders:\n%s", stub.lastPrompt)
	}
}

func TestNarratorErrors(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota")}
	if _, err := NewNarrator(stub, nil, 10).Narrate(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected generator error")
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "json", raw: `{"message": " hi "}`, want: "hi"},
		{name: "fenced", raw: "```\n{\"message\": \"hi\"}\n```", want: "hi"},
		{name: "plain text", raw: "Hello! Your best card is Millennia.", want: "Hello! Your best card is Millennia."},
		{name: "missing message", raw: `{"text": "hi"}`, wantErr: true},
		{name: "broken json", raw: `{"message": `, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
