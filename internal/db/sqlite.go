package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/placement-portal/internal/types"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// SQLiteDB stores companies in an embedded SQLite database.
type SQLiteDB struct {
	pool *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Single writer; also keeps an in-memory database alive across queries.
	pool.SetMaxOpenConns(1)
	if path != MemoryPath {
		pool.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLiteDB{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database handle.
func (s *SQLiteDB) Close() {
	if s == nil || s.pool == nil {
		return
	}
	if err := s.pool.Close(); err != nil {
		log.Printf("[db] closing sqlite database: %v", err)
	}
}

// EnsureSchema creates the tables and indexes used by the store.
func (s *SQLiteDB) EnsureSchema(ctx context.Context) error {
	ddl, err := readSchema("sqlite.sql")
	if err != nil {
		return err
	}
	if _, err := s.pool.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateCompany inserts a company, returning ErrDuplicateName when the
// normalized name is taken.
func (s *SQLiteDB) CreateCompany(ctx context.Context, draft *types.CompanyDraft) (*Company, error) {
	c, err := newCompany(draft, time.Now())
	if err != nil {
		return nil, err
	}

	res, err := s.pool.ExecContext(ctx,
		`INSERT INTO companies (`+companyColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name_normalized) DO NOTHING`,
		companyValues(c, c.ID.String(), formatTime(c.CreatedAt))...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	if n == 0 {
		return nil, ErrDuplicateName
	}
	return c, nil
}

// GetCompanyByID retrieves a company by its UUID
func (s *SQLiteDB) GetCompanyByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	row := s.pool.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = ?`,
		id.String(),
	)
	c, err := scanSQLiteCompany(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// ListCompanies returns companies ordered by creation time, newest first.
func (s *SQLiteDB) ListCompanies(ctx context.Context, limit, offset int) ([]Company, error) {
	rows, err := s.pool.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies
		 ORDER BY created_at DESC, id
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		c, err := scanSQLiteCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetCachedProfile returns a scraped profile fetched within maxAge, or nil.
func (s *SQLiteDB) GetCachedProfile(ctx context.Context, profileID string, maxAge time.Duration) (*types.ScrapedProfile, error) {
	var content, fetchedAt string
	err := s.pool.QueryRowContext(ctx,
		`SELECT content, fetched_at FROM scraped_profiles WHERE profile_id = ?`,
		profileID,
	).Scan(&content, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached profile: %w", err)
	}
	fetched, err := parseTime(fetchedAt)
	if err != nil {
		return nil, err
	}
	return decodeCachedProfile([]byte(content), fetched, maxAge)
}

// SaveCachedProfile upserts a scraped profile.
func (s *SQLiteDB) SaveCachedProfile(ctx context.Context, profileID string, profile *types.ScrapedProfile) error {
	return s.saveCachedProfileAt(ctx, profileID, profile, time.Now())
}

func (s *SQLiteDB) saveCachedProfileAt(ctx context.Context, profileID string, profile *types.ScrapedProfile, fetchedAt time.Time) error {
	content, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = s.pool.ExecContext(ctx,
		`INSERT INTO scraped_profiles (profile_id, content, fetched_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (profile_id) DO UPDATE SET content = excluded.content, fetched_at = excluded.fetched_at`,
		profileID, string(content), formatTime(fetchedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save cached profile: %w", err)
	}
	return nil
}

func scanSQLiteCompany(row scanner) (*Company, error) {
	var c Company
	var id, createdAt string
	if err := row.Scan(companyFields(&c, &id, &createdAt)...); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid company id %q: %w", id, err)
	}
	c.ID = parsed
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
