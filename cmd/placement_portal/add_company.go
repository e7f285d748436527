package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/placement-portal/internal/companyform"
	"github.com/jonathan/placement-portal/internal/observability"
	"github.com/jonathan/placement-portal/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var addCompanyCmd = &cobra.Command{
	Use:   "add-company",
	Short: "Submit a company to the portal",
	Long: `Fills the add-company form from flags and/or a draft file, optionally pre-fills
it from LinkedIn with --scrape, and submits it. Flags override values from --file.
The final form, with any field errors, is printed either way.`,
	RunE: runAddCompany,
}

// draftFlags maps draft fields to their command-line flags.
var draftFlags = []struct {
	field string
	flag  string
	usage string
}{
	{types.FieldName, "name", "Company name"},
	{types.FieldLinkedIn, "linkedin", "LinkedIn company URL"},
	{types.FieldNatureOfBusiness, "nature-of-business", "Nature of business"},
	{types.FieldLogo, "logo", "Logo URL"},
	{types.FieldWebsite, "website", "Company website"},
	{types.FieldExpectedCTC, "expected-ctc", "Expected CTC"},
	{types.FieldExpectedBase, "expected-base", "Expected base salary"},
	{types.FieldExpectedStipend, "expected-stipend", "Expected stipend"},
	{types.FieldLocation, "location", "Location"},
	{types.FieldRemarks, "remarks", "Remarks"},
}

var (
	addCompanyValues = make(map[string]*string, len(draftFlags))
	addCompanyFile   string
	addCompanyScrape bool
)

func init() {
	for _, f := range draftFlags {
		addCompanyValues[f.field] = addCompanyCmd.Flags().String(f.flag, "", f.usage)
	}
	addCompanyCmd.Flags().StringVarP(&addCompanyFile, "file", "f", "", "Draft file (JSON or YAML)")
	addCompanyCmd.Flags().BoolVar(&addCompanyScrape, "scrape", false, "Pre-fill from LinkedIn before submitting")

	rootCmd.AddCommand(addCompanyCmd)
}

func runAddCompany(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var draft types.CompanyDraft
	if addCompanyFile != "" {
		fileDraft, err := loadDraftFile(addCompanyFile)
		if err != nil {
			return err
		}
		draft = *fileDraft
	}
	for _, f := range draftFlags {
		if cmd.Flags().Changed(f.flag) {
			draft.Set(f.field, *addCompanyValues[f.field])
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return addCompany(ctx, cmd.OutOrStdout(), newAPIClient(cfg), draft, addCompanyScrape)
}

// addCompany drives a form the way a user would: LinkedIn URL first, an
// optional scrape, then the remaining fields, then submit.
func addCompany(ctx context.Context, out io.Writer, backend companyform.Backend, draft types.CompanyDraft, scrape bool) error {
	form := companyform.New(backend)
	printer := observability.NewPrinter(out)

	if err := form.SetField(types.FieldLinkedIn, draft.LinkedIn); err != nil {
		return err
	}
	if scrape {
		if err := form.Scrape(ctx); err != nil {
			printer.PrintFormView(form.View())
			return fmt.Errorf("scrape failed: %w", err)
		}
	}

	for _, name := range types.DraftFields {
		value, _ := draft.Get(name)
		if name == types.FieldLinkedIn || value == "" {
			continue
		}
		if err := form.SetField(name, value); err != nil {
			return err
		}
	}

	err := form.Submit(ctx)
	printer.PrintFormView(form.View())
	if err != nil {
		return fmt.Errorf("failed to add company: %w", err)
	}
	return nil
}

// loadDraftFile reads a company draft from a JSON or YAML file, chosen by extension.
func loadDraftFile(path string) (*types.CompanyDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft file %s: %w", path, err)
	}

	var draft types.CompanyDraft
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &draft); err != nil {
			return nil, fmt.Errorf("failed to parse draft YAML %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &draft); err != nil {
			return nil, fmt.Errorf("failed to parse draft JSON %s: %w", path, err)
		}
	}
	return &draft, nil
}
