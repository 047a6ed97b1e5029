package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stock-tracker",
	Short: "A CLI for the sell-in-thirds position tracker",
	Long: `Stock Tracker records stock positions, splits each one into thirds sold at +50% and +100%,
and moves the stop-loss to breakeven once the first third is sold.

Run the HTTP service with: tracker-service serve -c configs/config-tracker.yaml`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
