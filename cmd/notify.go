package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spigell/card-advisor/internal/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a WhatsApp message or show the recent message history",
	Example: `  card-advisor notify --history --limit 10
  card-advisor notify --to +919800000000 --message "Your card recommendations are ready"`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		l, config := setup()

		client, err := newNotifier(config, l)
		if err != nil {
			l.Fatal("creating the notifier", zap.Error(err),
				zap.String("hint", "configure notify.twilio in the config file"))
		}

		if history, _ := cmd.Flags().GetBool("history"); history {
			limit, _ := cmd.Flags().GetInt("limit")
			msgs, err := client.Messages(ctx, limit)
			if err != nil {
				l.Fatal("listing messages", zap.Error(err))
			}
			writeMessages(os.Stdout, msgs)
			return
		}

		to, _ := cmd.Flags().GetString("to")
		body, _ := cmd.Flags().GetString("message")
		if to == "" || body == "" {
			l.Fatal("nothing to send", zap.String("hint", "use --to and --message, or --history"))
		}

		if err := client.Send(ctx, to, body); err != nil {
			l.Fatal("sending message", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	notifyCmd.Flags().Bool("history", false, "list the most recent messages")
	notifyCmd.Flags().Int("limit", 20, "number of messages listed with --history")
	notifyCmd.Flags().String("to", "", "WhatsApp number to send to")
	notifyCmd.Flags().String("message", "", "message body to send")
}

func writeMessages(out io.Writer, msgs []notify.Message) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tFROM\tTO\tSTATUS\tBODY")
	for _, m := range msgs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.DateCreated, m.From, m.To, m.Status, firstLine(m.Body))
	}
	w.Flush()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
