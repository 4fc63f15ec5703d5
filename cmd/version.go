package cmd

import (
	"fmt"
	"runtime"

	"github.com/spigell/card-advisor/internal/catalog"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (%s)\n", app, version, runtime.Version())

		if c, err := catalog.Default(); err == nil {
			fmt.Printf("built-in catalog: %d cards\n", c.Len())
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
