package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/placement-portal/internal/client"
	"github.com/jonathan/placement-portal/internal/db"
	"github.com/jonathan/placement-portal/internal/server"
	"github.com/jonathan/placement-portal/internal/server/ratelimit"
	"github.com/jonathan/placement-portal/internal/types"
	"github.com/stretchr/testify/require"
)

// stubScraper serves canned profiles keyed by company identifier.
type stubScraper map[string]*types.ScrapedProfile

func (s stubScraper) Scrape(_ context.Context, profileID string) (*types.ScrapedProfile, error) {
	p, ok := s[profileID]
	if !ok {
		return nil, errors.New("company page not found")
	}
	return p, nil
}

func acmeScraper() stubScraper {
	return stubScraper{
		"acme-corp": {
			Name:             "Acme Corp",
			NatureOfBusiness: "IT Services",
			Website:          "https://acme.example",
			LinkedIn:         "https://www.linkedin.com/company/acme-corp/",
		},
	}
}

// newPortal starts the REST server on an in-memory store and returns a
// client pointed at it.
func newPortal(t *testing.T) *client.Client {
	t.Helper()

	store, err := db.OpenSQLite(context.Background(), db.MemoryPath)
	require.NoError(t, err)

	srv := server.NewWithStore(server.Config{RateLimit: &ratelimit.Config{Enabled: false}}, store, acmeScraper())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	return client.New(&client.Options{BaseURL: ts.URL, Timeout: 5 * time.Second})
}

// resetGlobalFlags restores the package-level flag variables after a test.
func resetGlobalFlags(t *testing.T) {
	t.Helper()
	saved := struct {
		configPath, apiURL, apiToken string
		verbose                      bool
		port                         int
		dbURL                        string
		browser                      bool
	}{configPath, apiURL, apiToken, verbose, servePort, serveDatabaseURL, serveUseBrowser}

	t.Cleanup(func() {
		configPath, apiURL, apiToken, verbose = saved.configPath, saved.apiURL, saved.apiToken, saved.verbose
		servePort, serveDatabaseURL, serveUseBrowser = saved.port, saved.dbURL, saved.browser
	})
}
