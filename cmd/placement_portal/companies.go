package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jonathan/placement-portal/internal/client"
	"github.com/jonathan/placement-portal/internal/observability"
	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies stored in the portal",
	RunE:  runCompanies,
}

var (
	companiesLimit  int
	companiesOffset int
)

func init() {
	companiesCmd.Flags().IntVar(&companiesLimit, "limit", 50, "Maximum number of companies to fetch (max 100)")
	companiesCmd.Flags().IntVar(&companiesOffset, "offset", 0, "Number of companies to skip")
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return listCompanies(ctx, cmd.OutOrStdout(), newAPIClient(cfg), companiesLimit, companiesOffset)
}

type companyLister interface {
	ListCompanies(ctx context.Context, limit, offset int) (*client.CompanyPage, error)
}

func listCompanies(ctx context.Context, out io.Writer, lister companyLister, limit, offset int) error {
	page, err := lister.ListCompanies(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}
	observability.NewPrinter(out).PrintCompanies(page.Companies)
	return nil
}
