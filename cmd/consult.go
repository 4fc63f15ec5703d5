package cmd

import (
	"context"
	"errors"
	"os"
	"os/user"
	"strings"

	"github.com/spigell/card-advisor/internal/logger"
	"github.com/spigell/card-advisor/internal/profile"
	"github.com/spigell/card-advisor/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	readyMessage = "Thanks! I'm ready to provide personalized recommendations based on your profile."
	skipAnswer   = "Prefer not to say"
)

type question struct {
	text    string
	choices []string
}

var consultQuestions = []question{
	{text: "What is your monthly income? (for example 50k or 1 lakh)"},
	{text: "Where do you spend the most each month? (fuel, travel, groceries, dining, online shopping, bills)"},
	{text: "Which benefits matter most to you? (cashback, travel points, lounge access, movie tickets, fuel, dining)"},
	{
		text:    "How would you describe your credit score?",
		choices: []string{"Excellent (750+)", "Good (700+)", "Fair (650+)", "Not sure", skipAnswer},
	},
}

var consultCmd = &cobra.Command{
	Use:   "consult",
	Short: "Answer a few questions and get card recommendations",
	Run: func(cmd *cobra.Command, _ []string) {
		runConsult(cmd)
	},
}

func init() {
	rootCmd.AddCommand(consultCmd)

	consultCmd.Flags().String("user", "", "user id stored with the session (default is the OS user)")
	consultCmd.Flags().String("notify", "", "send the recommendations to this WhatsApp number")
}

func runConsult(cmd *cobra.Command) {
	ctx := context.Background()
	l, config := setup()

	store, err := newSessionStore(config, l)
	if err != nil {
		l.Fatal("creating the session store", zap.Error(err))
	}

	engine, _, err := newEngine(config, 0, l)
	if err != nil {
		l.Fatal("building the engine", zap.Error(err))
	}

	userID, _ := cmd.Flags().GetString("user")
	if userID == "" {
		userID = currentUser()
	}

	sess, err := store.Create(ctx, userID)
	if err != nil {
		l.Fatal("creating a session", zap.Error(err))
	}
	l = logger.WithSession(l, sess.ID, "cli")
	l.Info("consultation started")

	if err := interview(ctx, store, sess.ID); err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			l.Info("exiting", zap.String("reason", "consultation interrupted"))
			return
		}
		l.Fatal("running the consultation", zap.Error(err))
	}

	turns, err := store.Turns(ctx, sess.ID)
	if err != nil {
		l.Fatal("reading turns", zap.Error(err))
	}
	if !profile.ReadyForRecommendations(turns) {
		l.Fatal("consultation ended before it was complete")
	}

	p := profile.NewKeywordExtractor().Extract(turns)
	profile.ApplyDefaults(p, *config.Defaults)
	if err := store.SaveProfile(ctx, sess.ID, p); err != nil {
		l.Fatal("saving profile", zap.Error(err))
	}

	recs := engine.Recommend(p)
	if err := printRecommendations(ctx, config, l, "text", p, recs); err != nil {
		l.Fatal("printing recommendations", zap.Error(err))
	}

	if to, _ := cmd.Flags().GetString("notify"); to != "" {
		sender, err := newNotifier(config, l)
		if err == nil {
			err = deliver(ctx, sender, newNarrator(ctx, config, l), to, p, recs)
		}
		if err != nil {
			l.Error("sending recommendations", zap.Error(err))
		}
	}

	if err := store.Complete(ctx, sess.ID); err != nil {
		l.Fatal("completing session", zap.Error(err))
	}
	l.Info("consultation completed", zap.Int("recommendations", len(recs)))
}

// interview asks every question and records both sides of the exchange.
func interview(ctx context.Context, store session.Store, id string) error {
	for _, q := range consultQuestions {
		if err := store.AppendTurn(ctx, id, profile.Turn{Role: profile.RoleAssistant, Content: q.text}); err != nil {
			return err
		}

		answer, err := ask(q)
		if err != nil {
			return err
		}

		turn, ok := answerTurn(answer)
		if !ok {
			continue
		}
		if err := store.AppendTurn(ctx, id, turn); err != nil {
			return err
		}
	}

	return store.AppendTurn(ctx, id, profile.Turn{Role: profile.RoleAssistant, Content: readyMessage})
}

// answerTurn converts an answer into a user turn. Empty and skipped answers
// are not recorded. Canned choices must not contain income unit words such
// as "k" since the extractor reads units from the whole conversation.
func answerTurn(answer string) (profile.Turn, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" || answer == skipAnswer {
		return profile.Turn{}, false
	}
	return profile.Turn{Role: profile.RoleUser, Content: answer}, true
}

func ask(q question) (string, error) {
	if len(q.choices) > 0 {
		sel := promptui.Select{Label: q.text, Items: q.choices}
		_, answer, err := sel.Run()
		return answer, err
	}

	p := promptui.Prompt{Label: q.text}
	answer, err := p.Run()
	return strings.TrimSpace(answer), err
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "cli"
}
