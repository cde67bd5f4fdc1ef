package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/octobees/leads-generator/sitescan/internal/auth"
)

var (
	tokenSubject string
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).GenerateToken(tokenSubject, tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "dev", "token subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "user", "token role (admin unlocks /admin routes)")
	rootCmd.AddCommand(tokenCmd)
}
