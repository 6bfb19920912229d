// Package main provides the tavern command: the Telnet server and a local
// single-player console, both over the same game handlers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "tavern",
	Short: "A narrated tavern text adventure",
	Long: `tavern runs a narrated text adventure built around a tavern, a market and
the wilds beyond. Serve it over Telnet or play it locally in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (defaults and TAVERN_* environment when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
}
