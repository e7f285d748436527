package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jonathan/placement-portal/internal/companyform"
	"github.com/jonathan/placement-portal/internal/linkedin"
	"github.com/jonathan/placement-portal/internal/observability"
	"github.com/jonathan/placement-portal/internal/types"
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Pre-fill a company draft from its LinkedIn page",
	Long: `Extracts the company identifier from a LinkedIn URL and asks the portal API to
scrape the company's profile, then prints the pre-filled form.

With --direct the page is fetched and parsed locally, without the API.`,
	RunE: runScrape,
}

var (
	scrapeLinkedInURL string
	scrapeDirect      bool
	scrapeUseBrowser  bool
)

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeLinkedInURL, "linkedin", "l", "", "LinkedIn company URL (required)")
	scrapeCmd.Flags().BoolVar(&scrapeDirect, "direct", false, "Scrape LinkedIn locally instead of through the API")
	scrapeCmd.Flags().BoolVar(&scrapeUseBrowser, "browser", false, "With --direct, fall back to headless Chrome")

	if err := scrapeCmd.MarkFlagRequired("linkedin"); err != nil {
		panic(fmt.Sprintf("failed to mark linkedin flag as required: %v", err))
	}

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if scrapeDirect {
		scraperCfg := linkedin.DefaultScraperConfig()
		scraperCfg.UseBrowser = cfg.UseBrowser || scrapeUseBrowser
		scraperCfg.Verbose = cfg.Verbose
		return scrapeLocally(ctx, cmd.OutOrStdout(), linkedin.NewScraper(scraperCfg), scrapeLinkedInURL)
	}
	return scrapeWithForm(ctx, cmd.OutOrStdout(), newAPIClient(cfg), scrapeLinkedInURL)
}

// scrapeWithForm runs the form's scrape on a fresh draft and prints the result.
func scrapeWithForm(ctx context.Context, out io.Writer, backend companyform.Backend, linkedInURL string) error {
	form := companyform.New(backend)
	if err := form.SetField(types.FieldLinkedIn, linkedInURL); err != nil {
		return err
	}

	err := form.Scrape(ctx)
	observability.NewPrinter(out).PrintFormView(form.View())
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}
	return nil
}

type profileScraper interface {
	Scrape(ctx context.Context, profileID string) (*types.ScrapedProfile, error)
}

// scrapeLocally fetches and parses the company page in-process.
func scrapeLocally(ctx context.Context, out io.Writer, scraper profileScraper, linkedInURL string) error {
	profileID, ok := linkedin.CompanyID(linkedInURL)
	if !ok {
		return fmt.Errorf("%w: %s", companyform.ErrInvalidLinkedInURL, linkedInURL)
	}

	profile, err := scraper.Scrape(ctx, profileID)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	observability.NewPrinter(out).PrintScrapedProfile(profile)
	return nil
}
