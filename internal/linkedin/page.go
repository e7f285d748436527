package linkedin

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/placement-portal/internal/types"
)

// ParseError reports a company page that could not be turned into a profile.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("linkedin page parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("linkedin page parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// organization is the subset of the schema.org JSON-LD block LinkedIn embeds.
type organization struct {
	Type   string `json:"@type"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	SameAs string `json:"sameAs"`
	Logo   any    `json:"logo"`
}

// ParseCompanyPage extracts a profile from the HTML of a public company page.
// pageURL is reported back as the profile's LinkedIn URL.
// Top-card markup wins over JSON-LD, which wins over OpenGraph tags.
func ParseCompanyPage(html, pageURL string) (*types.ScrapedProfile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Message: "failed to parse HTML", Cause: err}
	}

	org := findOrganization(doc)

	profile := &types.ScrapedProfile{
		Name: firstText(
			clean(doc.Find("h1.top-card-layout__title").First().Text()),
			org.Name,
			strings.TrimSuffix(metaContent(doc, "og:title"), " | LinkedIn"),
		),
		NatureOfBusiness: firstText(
			aboutValue(doc, "about-us__industry"),
			aboutValue(doc, "about-us__industries"),
		),
		Website: firstText(
			aboutLink(doc, "about-us__website"),
			org.SameAs,
		),
		Logo: firstText(
			attr(doc.Find("img.top-card-layout__entity-image").First(), "data-delayed-url", "src"),
			org.logoURL(),
			metaContent(doc, "og:image"),
		),
		LinkedIn: firstText(metaContent(doc, "og:url"), pageURL),
	}

	if profile.Name == "" {
		return nil, &ParseError{Message: "company name not found"}
	}

	return profile, nil
}

func findOrganization(doc *goquery.Document) organization {
	var found organization
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var org organization
		if err := json.Unmarshal([]byte(s.Text()), &org); err != nil {
			return true
		}
		if org.Type != "Organization" {
			return true
		}
		found = org
		return false
	})
	return found
}

func (o organization) logoURL() string {
	switch v := o.Logo.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["contentUrl"].(string); ok {
			return s
		}
		if s, ok := v["url"].(string); ok {
			return s
		}
	}
	return ""
}

func aboutValue(doc *goquery.Document, testID string) string {
	return clean(doc.Find(fmt.Sprintf(`[data-test-id="%s"] dd`, testID)).First().Text())
}

func aboutLink(doc *goquery.Document, testID string) string {
	sel := doc.Find(fmt.Sprintf(`[data-test-id="%s"] a`, testID)).First()
	// LinkedIn wraps outbound links in a redirect; the visible text is the target.
	if text := clean(sel.Text()); strings.HasPrefix(text, "http") {
		return text
	}
	return attr(sel, "href")
}

func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property="%s"]`, property)).First()
	if sel.Length() == 0 {
		sel = doc.Find(fmt.Sprintf(`meta[name="%s"]`, property)).First()
	}
	return attr(sel, "content")
}

func attr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func firstText(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
