package notify

import (
	"fmt"
	"strings"

	"github.com/spigell/card-advisor/internal/scoring"
)

const noMatches = "Sorry, no credit card fits your profile right now. Reply with updated income or credit score details to try again."

// FormatRecommendations renders recommendations with WhatsApp markup.
// Only the top reason of each card is kept to stay within message limits.
func FormatRecommendations(recs []*scoring.Recommendation) string {
	if len(recs) == 0 {
		return noMatches
	}

	var b strings.Builder
	b.WriteString("*Your credit card recommendations*\n")
	for i, rec := range recs {
		fmt.Fprintf(&b, "\n*%d. %s* (%d%% match)\n", i+1, rec.Card.Name, rec.MatchPercentage)
		fmt.Fprintf(&b, "Annual fee: %s | Rewards: ~₹%.0f/year\n", fee(rec.Card.AnnualFee), rec.EstimatedRewards)
		if len(rec.Reasons) > 0 {
			fmt.Fprintf(&b, "_%s_\n", rec.Reasons[0])
		}
		if rec.Card.ApplyLink != "" {
			fmt.Fprintf(&b, "%s\n", rec.Card.ApplyLink)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func fee(v float64) string {
	if v == 0 {
		return "Free"
	}
	return fmt.Sprintf("₹%.0f", v)
}
