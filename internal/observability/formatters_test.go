package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/placement-portal/internal/companyform"
	"github.com/jonathan/placement-portal/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintFormView(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	state := companyform.State{
		Draft:       types.CompanyDraft{Name: "Acme Corp", LinkedIn: "https://example.com/bad"},
		ScrapeError: companyform.MsgInvalidLinkedInURL,
		Success:     true,
	}
	p.PrintFormView(companyform.Render(state))
	output := buf.String()

	assert.Contains(t, output, "ADD COMPANY")
	assert.Contains(t, output, "Company Name")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "! "+companyform.MsgInvalidLinkedInURL)
	assert.Contains(t, output, "Full Name of Company")
	assert.Contains(t, output, "✓ "+companyform.MsgCompanyAdded)
}

func TestPrintFormView_Progress(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFormView(companyform.Render(companyform.State{Scraping: true, Submitting: true}))

	output := buf.String()
	assert.Contains(t, output, "scraping...")
	assert.Contains(t, output, "submitting...")
	assert.NotContains(t, output, "✓")
}

func TestPrintScrapedProfile(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintScrapedProfile(&types.ScrapedProfile{
		Name:             "Acme Corp",
		NatureOfBusiness: "IT Services",
		Website:          "https://acme.example",
	})

	output := buf.String()
	assert.Contains(t, output, "SCRAPED PROFILE")
	assert.Contains(t, output, "IT Services")
	assert.Contains(t, output, "https://acme.example")
}

func TestPrintScrapedProfile_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintScrapedProfile(nil)
	assert.Empty(t, buf.String())
}

func TestPrintCompanies(t *testing.T) {
	var buf bytes.Buffer
	companies := make([]types.Company, 12)
	for i := range companies {
		companies[i] = types.Company{
			ID:           uuid.New(),
			CompanyDraft: types.CompanyDraft{Name: "Company"},
			CreatedAt:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	NewPrinter(&buf).PrintCompanies(companies)
	output := buf.String()
	assert.Contains(t, output, "Total: 12")
	assert.Contains(t, output, "2026-10-01")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintCompanies_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCompanies(nil)
	assert.Contains(t, buf.String(), "No companies found")
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("TITLE", "short\n"+strings.Repeat("é", 200))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}
