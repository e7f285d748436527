// Package linkedin extracts company identifiers from LinkedIn URLs and parses
// public LinkedIn company pages into scraped profiles.
package linkedin

import (
	"net/url"
	"strings"
)

// companySegment is the path segment that precedes a company identifier.
const companySegment = "company"

// CompanyID returns the segment that follows the first "company" segment of
// a slash-separated URL, e.g. "google" for https://www.linkedin.com/company/google/.
// It reports false when "company" is missing, is the last segment, or is
// followed by an empty segment.
func CompanyID(rawURL string) (string, bool) {
	parts := strings.Split(rawURL, "/")
	for i, part := range parts {
		if part != companySegment {
			continue
		}
		if i+1 >= len(parts) || parts[i+1] == "" {
			return "", false
		}
		return parts[i+1], true
	}
	return "", false
}

// DefaultBaseURL is the origin public company pages are served from.
const DefaultBaseURL = "https://www.linkedin.com"

// CompanyPageURL builds the public company page URL for an identifier.
func CompanyPageURL(id string) string {
	return companyPageURL(DefaultBaseURL, id)
}

func companyPageURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/" + companySegment + "/" + url.PathEscape(id) + "/"
}
