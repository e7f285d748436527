// Package client provides the HTTP client for the placement portal API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/placement-portal/internal/schemas"
	"github.com/jonathan/placement-portal/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// Endpoint paths consumed by the company form.
const (
	ScrapePath     = "/scrapCompanyProfile"
	AddCompanyPath = "/addCompany"
	CompaniesPath  = "/companies"
)

// Options configures the client.
type Options struct {
	BaseURL string
	Token   string // Bearer token, sent when non-empty
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Client talks to the portal's REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client. A nil opts uses DefaultOptions.
func New(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		token:      opts.Token,
		httpClient: httpClient,
	}
}

// ScrapeCompanyProfile requests enrichment data for a LinkedIn company identifier.
func (c *Client) ScrapeCompanyProfile(ctx context.Context, profileID string) (*types.ScrapedProfile, error) {
	query := url.Values{"profileId": []string{profileID}}
	body, err := c.do(ctx, http.MethodGet, ScrapePath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateContract(schemas.ScrapedProfile, body); err != nil {
		return nil, fmt.Errorf("unexpected scrape response: %w", err)
	}

	var profile types.ScrapedProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode scrape response: %w", err)
	}
	return &profile, nil
}

// AddCompany posts the draft to the creation endpoint and returns the stored company.
// Rejections are reported as *APIError.
func (c *Client) AddCompany(ctx context.Context, draft types.CompanyDraft) (*types.Company, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, AddCompanyPath, payload)
	if err != nil {
		return nil, err
	}

	var company types.Company
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &company); err != nil {
			return nil, fmt.Errorf("failed to decode add company response: %w", err)
		}
	}
	return &company, nil
}

// CompanyPage is one page of stored companies, newest first.
type CompanyPage struct {
	Companies []types.Company `json:"companies"`
	Count     int             `json:"count"`
	Limit     int             `json:"limit"`
	Offset    int             `json:"offset"`
}

// ListCompanies fetches a page of stored companies.
func (c *Client) ListCompanies(ctx context.Context, limit, offset int) (*CompanyPage, error) {
	query := url.Values{
		"limit":  []string{strconv.Itoa(limit)},
		"offset": []string{strconv.Itoa(offset)},
	}
	body, err := c.do(ctx, http.MethodGet, CompaniesPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var page CompanyPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode companies response: %w", err)
	}
	return &page, nil
}

// do executes a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}
