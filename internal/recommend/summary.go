package recommend

import (
	"fmt"
	"strings"

	"github.com/spigell/card-advisor/internal/scoring"
)

const noMatchesMessage = "We could not find a card that matches your profile right now. " +
	"Try again after updating your income or credit score details."

// Summary renders recommendations as a plain text message suitable for chat channels.
func Summary(recs []*scoring.Recommendation) string {
	if len(recs) == 0 {
		return noMatchesMessage
	}

	var b strings.Builder
	b.WriteString("Your top credit card matches:\n")
	for i, rec := range recs {
		fmt.Fprintf(&b, "\n%d. %s (%s) - %d%% match\n", i+1, rec.Card.Name, rec.Card.Issuer, rec.MatchPercentage)
		fmt.Fprintf(&b, "   Annual fee: %s, estimated rewards: ₹%.0f/year\n", feeLabel(rec.Card.AnnualFee), rec.EstimatedRewards)
		for _, reason := range rec.Reasons {
			fmt.Fprintf(&b, "   - %s\n", reason)
		}
		if rec.Card.ApplyLink != "" {
			fmt.Fprintf(&b, "   Apply: %s\n", rec.Card.ApplyLink)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func feeLabel(v float64) string {
	if v == 0 {
		return "free"
	}
	return fmt.Sprintf("₹%.0f", v)
}
