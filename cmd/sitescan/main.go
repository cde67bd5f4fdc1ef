package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/octobees/leads-generator/sitescan/internal/config"
	"github.com/octobees/leads-generator/sitescan/internal/extract"
	"github.com/octobees/leads-generator/sitescan/internal/scanner"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "sitescan",
	Short: "Website contact discovery",
	Long:  "Scans a fixed set of likely pages on an organization's website for emails, phones, a LinkedIn company page and a postal address.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c

		l, err := config.NewLogger(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newScanner builds a scanner from the loaded configuration.
func newScanner(c *config.Config, l *zap.Logger, opts ...scanner.Option) *scanner.Scanner {
	var transport scanner.Transport
	if c.Scan.Transport == config.TransportChrome {
		transport = scanner.NewChromeTransport(c.Scan.PageTimeout)
	}
	fetcher := scanner.NewPageFetcher(transport, c.Scan.PageTimeout, c.Scan.UserAgent)

	base := []scanner.Option{
		scanner.WithDelay(c.Scan.PageDelay),
		scanner.WithLogger(l),
		scanner.WithExtractor(extract.New(c.Scan.PhoneRegion, l)),
	}
	return scanner.New(fetcher, append(base, opts...)...)
}
