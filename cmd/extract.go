package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spigell/card-advisor/internal/profile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a profile from a conversation transcript",
	Long: `Reads a JSON array of {"role": "user|assistant", "content": "..."} turns
from --file or stdin and prints the extracted profile as JSON.`,
	Run: func(cmd *cobra.Command, _ []string) {
		l, config := setup()

		file, _ := cmd.Flags().GetString("file")
		turns, err := readTurns(file, os.Stdin)
		if err != nil {
			l.Fatal("reading conversation", zap.Error(err))
		}

		p := profile.NewKeywordExtractor().Extract(turns)
		if withDefaults, _ := cmd.Flags().GetBool("with-defaults"); withDefaults {
			profile.ApplyDefaults(p, *config.Defaults)
		}

		l.Debug("profile extracted",
			zap.Int("turns", len(turns)),
			zap.Bool("ready", profile.ReadyForRecommendations(turns)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			l.Fatal("encoding profile", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("file", "f", "", "conversation file, stdin when empty")
	extractCmd.Flags().Bool("with-defaults", false, "fill missing fields with configured defaults")
}

func readTurns(file string, stdin io.Reader) ([]profile.Turn, error) {
	var r io.Reader = stdin
	if file = strings.TrimSpace(file); file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var turns []profile.Turn
	if err := json.NewDecoder(r).Decode(&turns); err != nil {
		return nil, fmt.Errorf("decode turns: %w", err)
	}
	return turns, nil
}
