// Command import_companies bulk-loads company drafts into the portal's store,
// e.g. last season's recruiter list.
//
// Usage:
//
//	go run cmd/tools/import_companies/main.go companies.yaml
//
// The file holds a JSON or YAML list of drafts. DATABASE_URL selects the
// store (postgres:// or sqlite://) and defaults to the local SQLite file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/placement-portal/internal/config"
	"github.com/jonathan/placement-portal/internal/db"
	"github.com/jonathan/placement-portal/internal/types"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: import_companies <drafts.json|drafts.yaml>")
		os.Exit(2)
	}

	drafts, err := readDrafts(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	dsn := os.Getenv(config.EnvDatabaseURL)
	if dsn == "" {
		dsn = config.DefaultDatabaseURL
	}

	ctx := context.Background()
	store, err := db.Open(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fmt.Println("=== Company Import ===")
	fmt.Println()

	summary := importDrafts(ctx, os.Stdout, store, drafts)

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Created: %d\n", summary.Created)
	fmt.Printf("  Existing: %d\n", summary.Existing)
	fmt.Printf("  Invalid: %d\n", summary.Invalid)
	fmt.Printf("  Failed: %d\n", summary.Failed)
	fmt.Printf("  Total: %d\n", len(drafts))

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

type importSummary struct {
	Created  int
	Existing int
	Invalid  int
	Failed   int
}

// importDrafts validates and stores each draft, reporting one line per draft.
// Duplicates by normalized name are counted as existing, not failures.
func importDrafts(ctx context.Context, out io.Writer, store db.Store, drafts []types.CompanyDraft) importSummary {
	var s importSummary
	for i := range drafts {
		draft := drafts[i]
		draft.TrimSpace()

		if errs := draft.Validate(); errs != nil {
			msgs := make([]string, 0, len(errs))
			for _, fe := range errs {
				msgs = append(msgs, fe.Error)
			}
			_, _ = fmt.Fprintf(out, "  ✗ %s: %s\n", displayName(draft, i), strings.Join(msgs, "; "))
			s.Invalid++
			continue
		}

		company, err := store.CreateCompany(ctx, &draft)
		switch {
		case errors.Is(err, db.ErrDuplicateName):
			_, _ = fmt.Fprintf(out, "  • Existing: %s\n", draft.Name)
			s.Existing++
		case errors.Is(err, db.ErrEmptyName):
			_, _ = fmt.Fprintf(out, "  ✗ %s: %v\n", displayName(draft, i), err)
			s.Invalid++
		case err != nil:
			_, _ = fmt.Fprintf(out, "  ✗ %s: %v\n", draft.Name, err)
			s.Failed++
		default:
			_, _ = fmt.Fprintf(out, "  ✓ Created: %s (ID: %s)\n", company.Name, company.ID)
			s.Created++
		}
	}
	return s
}

func displayName(d types.CompanyDraft, index int) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("entry %d", index+1)
}

// readDrafts loads a list of drafts from a JSON or YAML file, chosen by extension.
func readDrafts(path string) ([]types.CompanyDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read drafts file %s: %w", path, err)
	}

	var drafts []types.CompanyDraft
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &drafts)
	default:
		err = json.Unmarshal(data, &drafts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse drafts file %s: %w", path, err)
	}
	return drafts, nil
}
