// Package main implements the placement_portal CLI: the reference REST server
// and a terminal front end for the add-company form.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/placement-portal/internal/client"
	"github.com/jonathan/placement-portal/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	apiURL     string
	apiToken   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "placement_portal",
	Short: "Placement portal company onboarding",
	Long: "placement_portal serves the company REST API and drives the add-company form from the terminal: " +
		"pre-fill a draft from a LinkedIn company page, then submit it to the portal.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Portal API base URL (overrides PORTAL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "Bearer token for the portal API (overrides PORTAL_API_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers flags over the environment over the config file over
// built-in defaults, then validates the result.
func loadConfig() (config.Config, error) {
	cfg := config.FromEnv()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}

	flags := config.Config{APIURL: apiURL, APIToken: apiToken, Verbose: verbose}
	cfg = flags.MergeWithDefaults(cfg)
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newAPIClient(cfg config.Config) *client.Client {
	return client.New(&client.Options{
		BaseURL: cfg.APIURL,
		Token:   cfg.APIToken,
		Timeout: cfg.TimeoutDuration(),
	})
}
