package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/card-advisor/internal/ai"
	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/notify"
	"github.com/spigell/card-advisor/internal/profile"
	"github.com/spigell/card-advisor/internal/scoring"
)

func TestParseSpending(t *testing.T) {
	habits, err := parseSpending([]string{"Online=6000", " fuel = 3000", "online=7000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(habits) != 2 {
		t.Fatalf("expected 2 entries, got %+v", habits)
	}
	if habits[0].Category != catalog.Online || habits[0].Amount != 7000 {
		t.Fatalf("repeated category must update in place, got %+v", habits[0])
	}
	if habits[1].Category != catalog.Fuel || habits[1].Amount != 3000 {
		t.Fatalf("unexpected second entry %+v", habits[1])
	}

	for _, bad := range []string{"fuel", "rent=100", "fuel=abc", "fuel=-1", "general=10"} {
		if _, err := parseSpending([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestReadTurns(t *testing.T) {
	in := strings.NewReader(`[{"role":"assistant","content":"Income?"},{"role":"user","content":"I earn 50k"}]`)

	turns, err := readTurns("", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 2 || turns[1].Role != profile.RoleUser || turns[1].Content != "I earn 50k" {
		t.Fatalf("unexpected turns %+v", turns)
	}

	if _, err := readTurns("", strings.NewReader("{")); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := readTurns("/nonexistent/turns.json", nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteComparison(t *testing.T) {
	cards := []*catalog.Card{
		{ID: "a", Name: "Card A", AnnualFee: 500, RewardType: catalog.Cashback, RewardRate: 1.5, MinCreditScore: 700},
		{ID: "b", Name: "Card B", MaxRewardCap: 1000, SpecialPerks: []string{"Lounge", "Movie"}},
	}

	var buf bytes.Buffer
	writeComparison(&buf, cards)
	out := buf.String()

	for _, want := range []string{"Card A", "Card B", "₹500", "1.5% cashback", "₹1000", "Lounge, Movie", "none"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestConsultAnswersExtract(t *testing.T) {
	turns := []profile.Turn{{Role: profile.RoleAssistant, Content: consultQuestions[0].text}}
	answers := []string{"about 60k", "mostly fuel and groceries", "cashback please", consultQuestions[3].choices[0]}
	for i, a := range answers {
		if i > 0 {
			turns = append(turns, profile.Turn{Role: profile.RoleAssistant, Content: consultQuestions[i].text})
		}
		turns = append(turns, profile.Turn{Role: profile.RoleUser, Content: a})
	}
	turns = append(turns, profile.Turn{Role: profile.RoleAssistant, Content: readyMessage})

	if !profile.ReadyForRecommendations(turns) {
		t.Fatalf("closing message must mark the consultation ready")
	}

	p := profile.NewKeywordExtractor().Extract(turns)
	if p.MonthlyIncome == nil || *p.MonthlyIncome != 60000 {
		t.Fatalf("unexpected income %v", p.MonthlyIncome)
	}
	if p.CreditScore == nil || *p.CreditScore != 750 {
		t.Fatalf("unexpected credit score %v", p.CreditScore)
	}
	if _, ok := p.SpendingHabits.Get(catalog.Groceries); !ok {
		t.Fatalf("expected groceries spend, got %+v", p.SpendingHabits)
	}
}

func TestConsultChoicesKeepIncome(t *testing.T) {
	for _, q := range consultQuestions {
		for _, choice := range q.choices {
			t.Run(choice, func(t *testing.T) {
				turns := []profile.Turn{
					{Role: profile.RoleAssistant, Content: consultQuestions[0].text},
					{Role: profile.RoleUser, Content: "60000 per month"},
					{Role: profile.RoleAssistant, Content: q.text},
				}
				if turn, ok := answerTurn(choice); ok {
					turns = append(turns, turn)
				}

				p := profile.NewKeywordExtractor().Extract(turns)
				if p.MonthlyIncome == nil || *p.MonthlyIncome != 60000 {
					t.Fatalf("choice %q changed income to %v", choice, p.MonthlyIncome)
				}
			})
		}
	}
}

func TestAnswerTurn(t *testing.T) {
	tests := []struct {
		answer string
		ok     bool
	}{
		{answer: "  50k  ", ok: true},
		{answer: "Not sure", ok: true},
		{answer: skipAnswer},
		{answer: "   "},
	}

	for _, tt := range tests {
		turn, ok := answerTurn(tt.answer)
		if ok != tt.ok {
			t.Fatalf("answer %q: expected recorded=%v", tt.answer, tt.ok)
		}
		if ok && (turn.Role != profile.RoleUser || turn.Content != strings.TrimSpace(tt.answer)) {
			t.Fatalf("unexpected turn %+v", turn)
		}
	}
}

type recordingSender struct {
	to, body string
	err      error
}

func (s *recordingSender) Send(_ context.Context, to, body string) error {
	s.to, s.body = to, body
	return s.err
}

type fixedNarrator struct {
	msg string
	err error
}

func (n fixedNarrator) Narrate(context.Context, *profile.UserProfile, []*scoring.Recommendation) (string, error) {
	return n.msg, n.err
}

func TestDeliver(t *testing.T) {
	recs := []*scoring.Recommendation{{Card: &catalog.Card{Name: "Millennia"}, MatchPercentage: 53, EstimatedRewards: 7200}}
	formatted := notify.FormatRecommendations(recs)

	tests := []struct {
		name     string
		narrator ai.Narrator
		want     string
	}{
		{name: "template uses whatsapp layout", narrator: ai.TemplateNarrator{}, want: formatted},
		{name: "no narrator", narrator: nil, want: formatted},
		{name: "narration", narrator: fixedNarrator{msg: "Hi! Millennia fits you best."}, want: "Hi! Millennia fits you best."},
		{name: "failed narration", narrator: fixedNarrator{err: errors.New("quota")}, want: formatted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			if err := deliver(context.Background(), sender, tt.narrator, "+919800000000", nil, recs); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sender.to != "+919800000000" || sender.body != tt.want {
				t.Fatalf("unexpected delivery to %q: %q", sender.to, sender.body)
			}
		})
	}

	failing := &recordingSender{err: notify.ErrNotConfigured}
	if err := deliver(context.Background(), failing, nil, "+1", nil, recs); !errors.Is(err, notify.ErrNotConfigured) {
		t.Fatalf("expected sender error, got %v", err)
	}
}

func TestWriteMessages(t *testing.T) {
	var buf bytes.Buffer
	writeMessages(&buf, []notify.Message{{
		From:        "whatsapp:+14155238886",
		To:          "whatsapp:+919800000000",
		Status:      "delivered",
		Body:        "*Your credit card recommendations*\n\n*1. Millennia*",
		DateCreated: "Thu, 15 Oct 2026 10:00:00 +0000",
	}})

	out := buf.String()
	for _, want := range []string{"STATUS", "delivered", "whatsapp:+919800000000", "*Your credit card recommendations* ..."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Millennia") {
		t.Fatalf("only the first line of the body should be listed:\n%s", out)
	}
}
