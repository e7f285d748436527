package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/placement-portal/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables and indexes used by the store.
func (db *DB) EnsureSchema(ctx context.Context) error {
	ddl, err := readSchema("postgres.sql")
	if err != nil {
		return err
	}
	if _, err := db.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateCompany inserts a company, returning ErrDuplicateName when the
// normalized name is taken.
func (db *DB) CreateCompany(ctx context.Context, draft *types.CompanyDraft) (*Company, error) {
	c, err := newCompany(draft, time.Now())
	if err != nil {
		return nil, err
	}

	var created Company
	err = db.pool.QueryRow(ctx,
		`INSERT INTO companies (`+companyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (name_normalized) DO NOTHING
		 RETURNING `+companyColumns,
		companyValues(c, c.ID, c.CreatedAt)...,
	).Scan(companyFields(&created, &created.ID, &created.CreatedAt)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &created, nil
}

// GetCompanyByID retrieves a company by its UUID
func (db *DB) GetCompanyByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var c Company
	err := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`,
		id,
	).Scan(companyFields(&c, &c.ID, &c.CreatedAt)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// ListCompanies returns companies ordered by creation time, newest first.
func (db *DB) ListCompanies(ctx context.Context, limit, offset int) ([]Company, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies
		 ORDER BY created_at DESC, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		var c Company
		if err := rows.Scan(companyFields(&c, &c.ID, &c.CreatedAt)...); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetCachedProfile returns a scraped profile fetched within maxAge, or nil.
func (db *DB) GetCachedProfile(ctx context.Context, profileID string, maxAge time.Duration) (*types.ScrapedProfile, error) {
	var content []byte
	var fetchedAt time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT content, fetched_at FROM scraped_profiles WHERE profile_id = $1`,
		profileID,
	).Scan(&content, &fetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached profile: %w", err)
	}
	return decodeCachedProfile(content, fetchedAt, maxAge)
}

// SaveCachedProfile upserts a scraped profile.
func (db *DB) SaveCachedProfile(ctx context.Context, profileID string, profile *types.ScrapedProfile) error {
	content, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO scraped_profiles (profile_id, content, fetched_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (profile_id) DO UPDATE SET content = $2, fetched_at = NOW()`,
		profileID, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save cached profile: %w", err)
	}
	return nil
}

func decodeCachedProfile(content []byte, fetchedAt time.Time, maxAge time.Duration) (*types.ScrapedProfile, error) {
	if time.Since(fetchedAt) >= maxAge {
		return nil, nil // Stale, should re-fetch
	}
	var p types.ScrapedProfile
	if err := json.Unmarshal(content, &p); err != nil {
		return nil, fmt.Errorf("failed to decode cached profile: %w", err)
	}
	return &p, nil
}
