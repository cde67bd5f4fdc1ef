package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/leads-generator/sitescan/internal/scanner"
)

var (
	scanFlags scanner.ExistingFlags
	scanPaths []string
)

var scanCmd = &cobra.Command{
	Use:   "scan <website>",
	Short: "Scan one website and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if cfg.Scan.Deadline > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Scan.Deadline)
			defer cancel()
		}

		sc := newScanner(cfg, logger, scanner.WithPaths(scanPaths))
		result, err := sc.Scan(ctx, args[0], scanFlags)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode scan result")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanFlags.HasEmail, "has-email", false, "organization record already has an email")
	scanCmd.Flags().BoolVar(&scanFlags.HasPhone, "has-phone", false, "organization record already has a phone")
	scanCmd.Flags().BoolVar(&scanFlags.HasLinkedIn, "has-linkedin", false, "organization record already has a LinkedIn URL")
	scanCmd.Flags().BoolVar(&scanFlags.HasAddress, "has-address", false, "organization record already has an address")
	scanCmd.Flags().StringSliceVar(&scanPaths, "path", nil, "page paths to visit instead of the default list")
	rootCmd.AddCommand(scanCmd)
}
