package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:   "ecofix-cli",
	Short: "A CLI client for the EcoFix tracker service",
	Long:  `A command-line interface for logging daily activities and reading carbon footprint and sustainability scores.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("ECOFIX_SERVER", "http://localhost:8080"), "tracker service base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("ECOFIX_TOKEN"), "access token returned by `ecofix-cli login`")
	rootCmd.SilenceUsage = true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *apiClient {
	return newAPIClient(serverURL, authToken)
}
