package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spigell/card-advisor/internal/ai"
	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/notify"
	"github.com/spigell/card-advisor/internal/profile"
	"github.com/spigell/card-advisor/internal/scoring"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend credit cards for a spending profile",
	Example: `  card-advisor recommend --income 40000 --spend fuel=3000 --spend groceries=8000 \
    --benefit Cashback --credit-score 700`,
	Run: func(cmd *cobra.Command, _ []string) {
		runRecommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().Float64("income", 0, "monthly income in INR")
	recommendCmd.Flags().StringArray("spend", nil, "monthly spend as category=amount, repeatable; order matters for ties")
	recommendCmd.Flags().StringArray("benefit", nil, "preferred benefit, repeatable")
	recommendCmd.Flags().Int("credit-score", 0, "credit score")
	recommendCmd.Flags().Int("limit", 0, "number of recommendations (1-5)")
	recommendCmd.Flags().Bool("no-defaults", false, "do not fill missing profile fields with configured defaults")
	recommendCmd.Flags().StringP("output", "o", "text", "output format: text or json")
	recommendCmd.Flags().String("notify", "", "send the recommendations to this WhatsApp number")
}

func runRecommend(cmd *cobra.Command) {
	ctx := context.Background()
	l, config := setup()

	p, err := profileFromFlags(cmd)
	if err != nil {
		l.Fatal("reading profile flags", zap.Error(err), zap.String("hint", "use --spend category=amount with one of "+categoryList()))
	}

	if noDefaults, _ := cmd.Flags().GetBool("no-defaults"); !noDefaults {
		profile.ApplyDefaults(p, *config.Defaults)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	engine, _, err := newEngine(config, limit, l)
	if err != nil {
		l.Fatal("building the engine", zap.Error(err))
	}

	recs := engine.Recommend(p)

	output, _ := cmd.Flags().GetString("output")
	if err := printRecommendations(ctx, config, l, output, p, recs); err != nil {
		l.Fatal("printing recommendations", zap.Error(err))
	}

	if to, _ := cmd.Flags().GetString("notify"); to != "" {
		sender, err := newNotifier(config, l)
		if err != nil {
			l.Fatal("creating the notifier", zap.Error(err),
				zap.String("hint", "configure notify.twilio in the config file"))
		}
		if err := deliver(ctx, sender, newNarrator(ctx, config, l), to, p, recs); err != nil {
			l.Fatal("sending recommendations", zap.Error(err))
		}
	}
}

func printRecommendations(ctx context.Context, config *Config, l *zap.Logger, output string, p *profile.UserProfile, recs []*scoring.Recommendation) error {
	switch output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case "text", "":
		msg, err := newNarrator(ctx, config, l).Narrate(ctx, p, recs)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

// deliver sends the recommendations to the user. A narrator other than the
// plain template replaces the compact WhatsApp layout.
func deliver(ctx context.Context, sender notify.Sender, narrator ai.Narrator, to string, p *profile.UserProfile, recs []*scoring.Recommendation) error {
	body := notify.FormatRecommendations(recs)
	if _, plain := narrator.(ai.TemplateNarrator); narrator != nil && !plain {
		if msg, err := narrator.Narrate(ctx, p, recs); err == nil && strings.TrimSpace(msg) != "" {
			body = msg
		}
	}

	return sender.Send(ctx, to, body)
}

func profileFromFlags(cmd *cobra.Command) (*profile.UserProfile, error) {
	p := &profile.UserProfile{}
	flags := cmd.Flags()

	if flags.Changed("income") {
		income, _ := flags.GetFloat64("income")
		if income < 0 {
			return nil, fmt.Errorf("income must not be negative")
		}
		p.SetMonthlyIncome(income)
	}

	if flags.Changed("credit-score") {
		score, _ := flags.GetInt("credit-score")
		p.SetCreditScore(score)
	}

	spend, _ := flags.GetStringArray("spend")
	habits, err := parseSpending(spend)
	if err != nil {
		return nil, err
	}
	p.SpendingHabits = habits

	benefits, _ := flags.GetStringArray("benefit")
	for _, b := range benefits {
		if b = strings.TrimSpace(b); b != "" {
			p.PreferredBenefits = append(p.PreferredBenefits, b)
		}
	}

	return p, nil
}

func parseSpending(values []string) (profile.SpendingHabits, error) {
	var habits profile.SpendingHabits
	for _, v := range values {
		key, raw, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("spend %q: expected category=amount", v)
		}

		category, err := catalog.ParseCategory(key)
		if err != nil {
			return nil, err
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("spend %q: %w", v, err)
		}

		if err := habits.Set(category, amount); err != nil {
			return nil, err
		}
	}
	return habits, nil
}

func categoryList() string {
	names := make([]string, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		if c != catalog.General {
			names = append(names, string(c))
		}
	}
	return strings.Join(names, ", ")
}
