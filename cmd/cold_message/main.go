// Package main provides the cold_message CLI: it turns a resume into a
// personalized cold email or LinkedIn message, one stage at a time or all at
// once, and can serve the same flow over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cold_message",
	Short: "Generate personalized cold outreach messages from a resume",
	Long: "cold_message extracts a resume, classifies its profile links, summarizes it with a text-generation " +
		"provider and drafts a cold email or LinkedIn message with {recipient_name} and {company_name} " +
		"placeholders that are filled in at the end.",
	SilenceUsage: true,
}

// Persistent flags shared by every command.
var (
	configPath   string
	apiKeyFlag   string
	providerFlag string
	logLevelFlag string
	verbose      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Provider API key (overrides config and environment)")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "Text-generation provider: groq, openai or gemini")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print each stage's result to stderr")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
