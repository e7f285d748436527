package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length for a plain HTTP
// fetch to count as rendered. Shorter pages are re-fetched in a browser.
const MinContentLength = 200

// ShouldUseBrowser reports whether extracted text looks like an unrendered
// shell or a sign-in wall.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	Timeout time.Duration
	// WaitSelector is waited on before the HTML is captured.
	WaitSelector string
	// DismissSelector is clicked, if visible, to close overlays.
	DismissSelector string
	Verbose         bool
}

// DefaultBrowserOptions returns options tuned for public company pages.
func DefaultBrowserOptions() *BrowserOptions {
	return &BrowserOptions{
		Timeout:         45 * time.Second,
		WaitSelector:    "body",
		DismissSelector: `button.modal__dismiss, button.contextual-sign-in-modal__modal-dismiss, button[id*="accept"]`,
	}
}

// WithBrowser renders a page in a headless Chrome and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, opts *BrowserOptions) (string, error) {
	if opts == nil {
		opts = DefaultBrowserOptions()
	}
	if opts.Verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(opts.WaitSelector),
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if opts.DismissSelector == "" {
				return nil
			}
			// Overlay may not exist; a failed click is not an error.
			_ = chromedp.Click(opts.DismissSelector, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if opts.Verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}
	return html, nil
}
