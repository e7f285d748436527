// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/placement-portal/internal/companyform"
	"github.com/jonathan/placement-portal/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// labelWidth aligns field values inside a box
	labelWidth = 20
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func writeRow(sb *strings.Builder, label, value string) {
	fmt.Fprintf(sb, "%-*s %s\n", labelWidth, label+":", value)
}

// PrintFormView outputs every form field with its value and helper text,
// followed by the progress and success indicators.
func (p *Printer) PrintFormView(v companyform.View) {
	var sb strings.Builder

	for i, fv := range v.Fields {
		value := fv.Value
		if value == "" {
			value = "-"
		}
		writeRow(&sb, fv.Label, value)

		marker := " "
		if fv.Error {
			marker = "!"
		}
		if fv.HelperText != "" {
			fmt.Fprintf(&sb, "  %s %s\n", marker, fv.HelperText)
		}
		if i < len(v.Fields)-1 {
			sb.WriteString("\n")
		}
	}

	var status []string
	if v.Scraping {
		status = append(status, "scraping...")
	}
	if v.Submitting {
		status = append(status, "submitting...")
	}
	if v.Banner != "" {
		status = append(status, "✓ "+v.Banner)
	}
	if len(status) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(status, "  "))
	}

	p.printBox("ADD COMPANY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScrapedProfile outputs a profile returned by the scrape endpoint.
func (p *Printer) PrintScrapedProfile(profile *types.ScrapedProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	writeRow(&sb, "Name", profile.Name)
	writeRow(&sb, "Nature Of Business", profile.NatureOfBusiness)
	writeRow(&sb, "Website", profile.Website)
	writeRow(&sb, "LinkedIn", profile.LinkedIn)
	writeRow(&sb, "Logo", profile.Logo)

	p.printBox("SCRAPED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompanies outputs a list of stored companies.
func (p *Printer) PrintCompanies(companies []types.Company) {
	if len(companies) == 0 {
		p.printBox("COMPANIES", "No companies found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d\n\n", len(companies)))

	count := min(len(companies), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := companies[i]
		sb.WriteString(fmt.Sprintf("• %s\n", c.Name))
		sb.WriteString(fmt.Sprintf("  %s  added %s\n", c.ID, c.CreatedAt.Format("2006-01-02")))
	}
	if len(companies) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(companies)-maxItemsToShow))
	}

	p.printBox("COMPANIES", strings.TrimSuffix(sb.String(), "\n"))
}
