package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "realdeal",
	Short: "RealDeal - rental property deal screener",
	Long: `RealDeal CLI

Fetches residential listings, estimates rent, underwrites each deal
under base and stressed assumptions, and ranks the survivors.

Usage:
  go run ./cmd/realdeal [command]

Examples:
  go run ./cmd/realdeal run
  go run ./cmd/realdeal fetch
  go run ./cmd/realdeal report --limit 10
  go run ./cmd/realdeal serve`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default: built-in assumptions)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
