// seqflow - prepares session-grouped event logs for sequential-pattern
// mining and post-processes the resulting rules into ranked tables.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// Global flags
var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "seqflow",
	Short: "seqflow - Prepare event logs for sequential-rule mining",
	Long: `seqflow transforms raw interaction logs (session key, action, timestamp)
into the transaction format sequential-pattern-mining engines expect, and
turns the rules such an engine produces into a ranked, analyzable table.

Typical flow:
  seqflow prepare -i events.xlsx -o transactions.csv     # engine input
  <run your mining engine on transactions.csv>
  seqflow rules -i rules.csv -o rules_ranked.csv --top 20`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
}
