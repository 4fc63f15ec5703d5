package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spigell/card-advisor/internal/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the card catalog or compare cards side by side",
	Run: func(cmd *cobra.Command, _ []string) {
		l, config := setup()

		engine, c, err := newEngine(config, 0, l)
		if err != nil {
			l.Fatal("building the engine", zap.Error(err))
		}

		ids, _ := cmd.Flags().GetStringSlice("compare")
		if len(ids) == 0 {
			writeCatalog(os.Stdout, c.Cards())
			return
		}

		cards, err := engine.Compare(ids...)
		if err != nil {
			l.Fatal("comparing cards", zap.Error(err), zap.Strings("known ids", c.IDs()))
		}
		writeComparison(os.Stdout, cards)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringSlice("compare", nil, "card ids to compare, 2 or 3")
}

func writeCatalog(out io.Writer, cards []*catalog.Card) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tISSUER\tANNUAL FEE\tREWARD\tMIN INCOME\tMIN SCORE")
	for _, c := range cards {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%s %.1f%%\t%.0f\t%d\n",
			c.ID, c.Name, c.Issuer, c.AnnualFee, c.RewardType, c.RewardRate, c.MinIncome, c.MinCreditScore)
	}
	w.Flush()
}

func writeComparison(out io.Writer, cards []*catalog.Card) {
	rows := []struct {
		label string
		value func(*catalog.Card) string
	}{
		{"Name", func(c *catalog.Card) string { return c.Name }},
		{"Issuer", func(c *catalog.Card) string { return c.Issuer }},
		{"Joining fee", func(c *catalog.Card) string { return fmt.Sprintf("₹%.0f", c.JoiningFee) }},
		{"Annual fee", func(c *catalog.Card) string { return fmt.Sprintf("₹%.0f", c.AnnualFee) }},
		{"Reward", func(c *catalog.Card) string { return fmt.Sprintf("%.1f%% %s", c.RewardRate, c.RewardType) }},
		{"Reward cap", func(c *catalog.Card) string {
			if c.MaxRewardCap == 0 {
				return "none"
			}
			return fmt.Sprintf("₹%.0f", c.MaxRewardCap)
		}},
		{"Min income", func(c *catalog.Card) string { return fmt.Sprintf("₹%.0f/year", c.MinIncome) }},
		{"Min credit score", func(c *catalog.Card) string { return fmt.Sprint(c.MinCreditScore) }},
		{"Bonus categories", func(c *catalog.Card) string {
			parts := make([]string, 0, len(c.Categories))
			for _, b := range c.Categories {
				parts = append(parts, fmt.Sprintf("%s %.0fx", b.Category, b.Rate))
			}
			return strings.Join(parts, ", ")
		}},
		{"Perks", func(c *catalog.Card) string { return strings.Join(c.SpecialPerks, ", ") }},
		{"Welcome bonus", func(c *catalog.Card) string { return c.WelcomeBonus }},
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := []string{""}
	for _, c := range cards {
		header = append(header, c.ID)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, row := range rows {
		line := []string{row.label}
		for _, c := range cards {
			line = append(line, row.value(c))
		}
		fmt.Fprintln(w, strings.Join(line, "\t"))
	}
	w.Flush()
}
