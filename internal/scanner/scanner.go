package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/leads-generator/sitescan/internal/extract"
)

const DefaultPageDelay = 200 * time.Millisecond

// Fetcher retrieves one page. It reports failures in the result instead of an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// PageExtractor pulls contact candidates out of one page.
type PageExtractor interface {
	Extract(rawHTML, pageURL string) extract.PageFindings
}

// Scanner walks a fixed list of pages on one website and merges what it finds.
type Scanner struct {
	fetcher   Fetcher
	extractor PageExtractor
	paths     []string
	delay     time.Duration
	logger    *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithPaths overrides DefaultPaths.
func WithPaths(paths []string) Option {
	return func(s *Scanner) {
		if len(paths) > 0 {
			s.paths = append([]string(nil), paths...)
		}
	}
}

// WithDelay sets the pause between consecutive page fetches.
func WithDelay(delay time.Duration) Option {
	return func(s *Scanner) {
		if delay >= 0 {
			s.delay = delay
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExtractor overrides the default extractor.
func WithExtractor(extractor PageExtractor) Option {
	return func(s *Scanner) {
		if extractor != nil {
			s.extractor = extractor
		}
	}
}

// New builds a Scanner around fetcher.
func New(fetcher Fetcher, opts ...Option) *Scanner {
	s := &Scanner{
		fetcher: fetcher,
		paths:   DefaultPaths,
		delay:   DefaultPageDelay,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = extract.New("", s.logger)
	}
	return s
}

// Scan visits every configured page of website in order and returns the merged result.
// Only an unusable website is an error; page failures are recorded in the result. When
// ctx ends mid-scan the remaining pages are recorded as failed with the context error.
func (s *Scanner) Scan(ctx context.Context, website string, flags ExistingFlags) (*ScanResult, error) {
	origin, rootDomain, err := NormalizeWebsite(website)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("website", origin))
	acc := newAccumulator()
	started := time.Now()

	for i, path := range s.paths {
		target := pageURL(origin, path)

		if i > 0 && s.delay > 0 {
			if err := sleep(ctx, s.delay); err != nil {
				acc.fail(target, err.Error())
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			acc.fail(target, err.Error())
			continue
		}

		page := s.fetcher.Fetch(ctx, target)
		if !page.OK {
			log.Debug("page failed", zap.String("page", target), zap.String("reason", page.ErrorReason))
			acc.fail(target, page.ErrorReason)
			continue
		}

		acc.scan(target)
		acc.merge(s.extractor.Extract(page.HTML, target))
	}

	result := acc.result(origin, rootDomain, flags)
	log.Info("scan finished",
		zap.Int("pages_scanned", len(result.PagesScanned)),
		zap.Int("pages_failed", len(result.PagesFailed)),
		zap.Int("emails", len(result.Emails)),
		zap.Int("phones", len(result.Phones)),
		zap.Bool("linkedin", result.LinkedInURL != ""),
		zap.Bool("address", result.Address != nil),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
