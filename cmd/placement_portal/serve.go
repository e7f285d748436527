package main

import (
	"fmt"

	"github.com/jonathan/placement-portal/internal/config"
	"github.com/jonathan/placement-portal/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort        int
	serveDatabaseURL string
	serveUseBrowser  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing GET /scrapCompanyProfile, POST /addCompany and
GET /companies. Companies are stored in PostgreSQL or SQLite depending on DATABASE_URL.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT, default 8080)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db", "", "postgres:// or sqlite:// database URL (overrides DATABASE_URL)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "browser", false, "Render LinkedIn pages in headless Chrome when plain HTTP is not enough")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(serveConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// serveConfig applies the serve flags on top of the loaded configuration.
func serveConfig(cfg config.Config) server.Config {
	srvCfg := server.Config{
		Port:            cfg.Port,
		DatabaseURL:     cfg.DatabaseURL,
		UseBrowser:      cfg.UseBrowser || serveUseBrowser,
		ProfileCacheTTL: cfg.ProfileCacheTTLDuration(),
		Verbose:         cfg.Verbose,
	}
	if servePort != 0 {
		srvCfg.Port = servePort
	}
	if serveDatabaseURL != "" {
		srvCfg.DatabaseURL = serveDatabaseURL
	}
	return srvCfg
}
