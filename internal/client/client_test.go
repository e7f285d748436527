package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jonathan/placement-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func TestScrapeCompanyProfile_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, ScrapePath, r.URL.Path)
		assert.Equal(t, "google", r.URL.Query().Get("profileId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Google","logo":"https://x/logo.png"}`))
	})

	profile, err := c.ScrapeCompanyProfile(context.Background(), "google")
	require.NoError(t, err)
	assert.Equal(t, "Google", profile.Name)
	assert.Equal(t, "https://x/logo.png", profile.Logo)
	assert.Empty(t, profile.Website)
}

func TestScrapeCompanyProfile_EscapesProfileID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a&b=c", r.URL.Query().Get("profileId"))
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.ScrapeCompanyProfile(context.Background(), "a&b=c")
	require.NoError(t, err)
}

func TestScrapeCompanyProfile_RejectsMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":123}`))
	})

	_, err := c.ScrapeCompanyProfile(context.Background(), "google")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected scrape response")
}

func TestScrapeCompanyProfile_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream fetch failed"}`))
	})

	_, err := c.ScrapeCompanyProfile(context.Background(), "google")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream fetch failed", apiErr.Message)
	assert.False(t, apiErr.HasFieldErrors())
}

func TestAddCompany_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, AddCompanyPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var draft types.CompanyDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "Google", draft.Name)
		assert.Equal(t, "30", draft.ExpectedCTC)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"6f1c2a0e-4b8e-4a57-9d6e-1b2c3d4e5f60","name":"Google","nameNormalized":"google"}`))
	})

	company, err := c.AddCompany(context.Background(), types.CompanyDraft{Name: "Google", ExpectedCTC: "30"})
	require.NoError(t, err)
	assert.Equal(t, "Google", company.Name)
	assert.Equal(t, "google", company.NameNormalized)
	assert.Equal(t, "6f1c2a0e-4b8e-4a57-9d6e-1b2c3d4e5f60", company.ID.String())
}

func TestAddCompany_FieldErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"param":"name","error":"name is required"}]}`))
	})

	_, err := c.AddCompany(context.Background(), types.CompanyDraft{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.HasFieldErrors())
	assert.Equal(t, []types.FieldError{{Param: "name", Error: "name is required"}}, apiErr.Errors)
	assert.Contains(t, apiErr.Error(), "name is required")
}

func TestAddCompany_Conflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"company with same name already exists"}`))
	})

	_, err := c.AddCompany(context.Background(), types.CompanyDraft{Name: "Google"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Nil(t, apiErr.Errors)
	assert.False(t, apiErr.HasFieldErrors())
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestAddCompany_EmptyErrorsListIsStructured(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[]}`))
	})

	_, err := c.AddCompany(context.Background(), types.CompanyDraft{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.HasFieldErrors())
	assert.Empty(t, apiErr.Errors)
}

func TestAddCompany_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.AddCompany(context.Background(), types.CompanyDraft{Name: "Google"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "bad gateway")
	assert.Nil(t, apiErr.Errors)
}

func TestAddCompany_LongNonJSONErrorBodyKeepsRunes(t *testing.T) {
	body := strings.Repeat("é", 150) + strings.Repeat("障", 150)
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(body))
	})

	_, err := c.AddCompany(context.Background(), types.CompanyDraft{Name: "Google"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, utf8.ValidString(apiErr.Message))
	assert.Equal(t, strings.Repeat("é", 150)+strings.Repeat("障", 50)+"...", apiErr.Message)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "ééé...", excerpt("éééé", 3))
	assert.Equal(t, "株式", excerpt("株式", 2))
}

func TestListCompanies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, CompaniesPath, r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"companies":[{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","name":"Acme"}],"count":1,"limit":5,"offset":10}`))
	})

	page, err := c.ListCompanies(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, page.Companies, 1)
	assert.Equal(t, "Acme", page.Companies[0].Name)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", page.Companies[0].ID.String())
	assert.Equal(t, 1, page.Count)
}

func TestListCompanies_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	})

	_, err := c.ListCompanies(context.Background(), 50, 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "unauthorized", apiErr.Message)
}

func TestClient_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(&Options{BaseURL: srv.URL + "/", Token: "secret-token"})
	_, err := c.ScrapeCompanyProfile(context.Background(), "google")
	require.NoError(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ScrapeCompanyProfile(ctx, "google")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = New(&Options{BaseURL: "http://portal.local/api/"})
	assert.Equal(t, "http://portal.local/api", c.baseURL)
}
