// Package db provides storage for companies and cached scraped profiles,
// backed by PostgreSQL or an embedded SQLite file.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jonathan/placement-portal/internal/types"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// SQLitePrefix selects the SQLite backend when it prefixes a database URL.
const SQLitePrefix = "sqlite://"

var (
	// ErrDuplicateName is returned when a company with the same normalized name exists.
	ErrDuplicateName = errors.New("company with same name already exists")
	// ErrEmptyName is returned when a name has no letters or digits to normalize.
	ErrEmptyName = errors.New("company name must contain a letter or digit")
)

// Company is a stored company record.
type Company = types.Company

// Store is implemented by both database backends.
type Store interface {
	CreateCompany(ctx context.Context, draft *types.CompanyDraft) (*Company, error)
	// GetCompanyByID returns nil, nil when no company has the ID.
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*Company, error)
	// ListCompanies returns companies newest first.
	ListCompanies(ctx context.Context, limit, offset int) ([]Company, error)
	GetCachedProfile(ctx context.Context, profileID string, maxAge time.Duration) (*types.ScrapedProfile, error)
	SaveCachedProfile(ctx context.Context, profileID string, profile *types.ScrapedProfile) error
	Close()
}

// Open connects to databaseURL, creating tables that do not exist yet.
// URLs starting with "sqlite://" open a SQLite file; "sqlite://:memory:"
// opens a private in-memory database. Anything else is passed to pgx.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if path, ok := strings.CutPrefix(databaseURL, SQLitePrefix); ok {
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	d, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := d.EnsureSchema(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// NormalizeName converts a company name to a normalized form for matching.
// Letters and digits of any script are kept, lowercased; everything else is dropped.
// Example: "Affirm, Inc." -> "affirminc", "Ölfabrik GmbH" -> "ölfabrikgmbh"
func NormalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.ToLower(name))
}

// newCompany builds the record inserted for a draft.
func newCompany(draft *types.CompanyDraft, now time.Time) (*Company, error) {
	normalized := NormalizeName(draft.Name)
	if normalized == "" {
		return nil, ErrEmptyName
	}
	return &Company{
		ID:             uuid.New(),
		NameNormalized: normalized,
		CompanyDraft:   *draft,
		CreatedAt:      now.UTC(),
	}, nil
}

func readSchema(name string) (string, error) {
	ddl, err := schemaFS.ReadFile("schema/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return string(ddl), nil
}

const companyColumns = `id, name, name_normalized, linkedin, nature_of_business, logo, website,
	expected_ctc, expected_base, expected_stipend, location, remarks, created_at`

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// companyFields returns scan targets for companyColumns, with created_at
// written into createdAt so each backend can convert it.
func companyFields(c *Company, id, createdAt any) []any {
	return []any{
		id, &c.Name, &c.NameNormalized, &c.LinkedIn, &c.NatureOfBusiness, &c.Logo, &c.Website,
		&c.ExpectedCTC, &c.ExpectedBase, &c.ExpectedStipend, &c.Location, &c.Remarks, createdAt,
	}
}

// companyValues returns insert arguments in companyColumns order.
func companyValues(c *Company, id, createdAt any) []any {
	return []any{
		id, c.Name, c.NameNormalized, c.LinkedIn, c.NatureOfBusiness, c.Logo, c.Website,
		c.ExpectedCTC, c.ExpectedBase, c.ExpectedStipend, c.Location, c.Remarks, createdAt,
	}
}
