package main

import (
	"fmt"
	"io"

	"github.com/jonathan/placement-portal/internal/config"
	"github.com/jonathan/placement-portal/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the portal API",
	Long: `Signs a token with JWT_SECRET for use with --token or PORTAL_API_TOKEN.
JWT_ISSUER and JWT_EXPIRATION_HOURS are honored.`,
	RunE: runToken,
}

var tokenSubject string

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Token subject, e.g. a team member's email (required)")

	if err := tokenCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	return mintToken(cmd.OutOrStdout(), tokenSubject)
}

func mintToken(out io.Writer, subject string) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(subject)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, token)
	return nil
}
