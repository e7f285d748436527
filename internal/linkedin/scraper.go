package linkedin

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/placement-portal/internal/fetch"
	"github.com/jonathan/placement-portal/internal/types"
)

// DefaultProfileCacheTTL is how long a scraped profile is served from cache.
const DefaultProfileCacheTTL = 7 * 24 * time.Hour

// ProfileCache stores scraped profiles by company identifier.
// GetCachedProfile returns nil, nil on a miss or a stale entry.
type ProfileCache interface {
	GetCachedProfile(ctx context.Context, profileID string, maxAge time.Duration) (*types.ScrapedProfile, error)
	SaveCachedProfile(ctx context.Context, profileID string, profile *types.ScrapedProfile) error
}

// ScraperConfig holds configuration for the scraper.
type ScraperConfig struct {
	// BaseURL overrides the LinkedIn origin.
	BaseURL    string
	UseBrowser bool
	Cache      ProfileCache
	CacheTTL   time.Duration
	Options    *fetch.Options
	Browser    *fetch.BrowserOptions
	Verbose    bool
}

// DefaultScraperConfig returns a config that fetches over plain HTTP,
// allowing one request per second to each host.
func DefaultScraperConfig() *ScraperConfig {
	opts := fetch.DefaultOptions()
	opts.Limiter = fetch.NewHostLimiter(1, 2)
	return &ScraperConfig{
		BaseURL:  DefaultBaseURL,
		CacheTTL: DefaultProfileCacheTTL,
		Options:  opts,
		Browser:  fetch.DefaultBrowserOptions(),
	}
}

// Scraper builds profiles from public LinkedIn company pages.
type Scraper struct {
	cfg ScraperConfig
}

// NewScraper creates a scraper. Zero-valued config fields take defaults.
func NewScraper(cfg *ScraperConfig) *Scraper {
	def := DefaultScraperConfig()
	if cfg == nil {
		cfg = def
	}
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.Options == nil {
		c.Options = def.Options
	}
	if c.Browser == nil {
		c.Browser = def.Browser
	}
	browser := *c.Browser
	browser.Verbose = browser.Verbose || c.Verbose
	c.Browser = &browser
	return &Scraper{cfg: c}
}

// Scrape returns the profile for a company identifier, from cache when fresh.
func (s *Scraper) Scrape(ctx context.Context, profileID string) (*types.ScrapedProfile, error) {
	if s.cfg.Cache != nil {
		cached, err := s.cfg.Cache.GetCachedProfile(ctx, profileID, s.cfg.CacheTTL)
		if err != nil {
			log.Printf("[scrape] cache lookup for %s failed: %v", profileID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	pageURL := companyPageURL(s.cfg.BaseURL, profileID)
	html, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	profile, err := ParseCompanyPage(html, pageURL)
	if err != nil {
		return nil, fmt.Errorf("company %s: %w", profileID, err)
	}

	if s.cfg.Cache != nil {
		if err := s.cfg.Cache.SaveCachedProfile(ctx, profileID, profile); err != nil {
			log.Printf("[scrape] caching profile %s failed: %v", profileID, err)
		}
	}
	return profile, nil
}

// fetchPage tries plain HTTP first and falls back to a headless browser when
// enabled and the response is an error or an unrendered shell.
func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (string, error) {
	result, err := fetch.URL(ctx, pageURL, s.cfg.Options)
	if err == nil {
		text, _ := fetch.ExtractMainText(result.HTML, fetch.CompanyPageSelectors())
		if !s.cfg.UseBrowser || !fetch.ShouldUseBrowser(text) {
			return result.HTML, nil
		}
		if s.cfg.Verbose {
			log.Printf("[scrape] %s returned %d chars of text, rendering in browser", pageURL, len(text))
		}
	} else if !s.cfg.UseBrowser {
		return "", err
	}

	html, berr := fetch.WithBrowser(ctx, pageURL, s.cfg.Browser)
	if berr != nil {
		if err != nil {
			return "", fmt.Errorf("%w (browser fallback: %v)", err, berr)
		}
		// Plain HTTP succeeded; the sparse page may still parse.
		return result.HTML, nil
	}
	return html, nil
}
