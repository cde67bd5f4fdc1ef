package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/leads-generator/sitescan/internal/dto"
	"github.com/octobees/leads-generator/sitescan/internal/entity"
	"github.com/octobees/leads-generator/sitescan/internal/repository"
	"github.com/octobees/leads-generator/sitescan/internal/scanner"
	"github.com/octobees/leads-generator/sitescan/internal/webhook"
)

const (
	DefaultScanDeadline = 5 * time.Minute
	sideEffectTimeout   = 10 * time.Second
)

// ErrHistoryDisabled is returned by history reads when no database is configured.
var ErrHistoryDisabled = eris.New("scan history is disabled")

// WebsiteScanner runs one scan. *scanner.Scanner satisfies it.
type WebsiteScanner interface {
	Scan(ctx context.Context, website string, flags scanner.ExistingFlags) (*scanner.ScanResult, error)
}

// ScanRequest is one scan invocation.
type ScanRequest struct {
	Website   string
	Flags     scanner.ExistingFlags
	RequestID string
}

// ScansService runs scans and records their outcome.
type ScansService struct {
	scanner  WebsiteScanner
	repo     repository.ScansRepository
	hook     webhook.Poster
	deadline time.Duration
	logger   *zap.Logger
}

// ScansOption configures a ScansService.
type ScansOption func(*ScansService)

// WithRepository enables scan history.
func WithRepository(repo repository.ScansRepository) ScansOption {
	return func(s *ScansService) {
		s.repo = repo
	}
}

// WithWebhook delivers finished scans to a CRM endpoint.
func WithWebhook(hook webhook.Poster) ScansOption {
	return func(s *ScansService) {
		s.hook = hook
	}
}

// WithDeadline overrides DefaultScanDeadline. Zero disables it.
func WithDeadline(d time.Duration) ScansOption {
	return func(s *ScansService) {
		if d >= 0 {
			s.deadline = d
		}
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *zap.Logger) ScansOption {
	return func(s *ScansService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScansService wires a scan service around sc.
func NewScansService(sc WebsiteScanner, opts ...ScansOption) *ScansService {
	s := &ScansService{
		scanner:  sc,
		deadline: DefaultScanDeadline,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HistoryEnabled reports whether scans are persisted.
func (s *ScansService) HistoryEnabled() bool {
	return s.repo != nil
}

// Run validates the website, scans it under the configured deadline and then stores
// and forwards the result. Storage and webhook failures are logged, not returned.
func (s *ScansService) Run(ctx context.Context, req ScanRequest) (*dto.ScanResponse, error) {
	if _, _, err := scanner.NormalizeWebsite(req.Website); err != nil {
		return nil, err
	}

	scanCtx := ctx
	if s.deadline > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	result, err := s.scanner.Scan(scanCtx, req.Website, req.Flags)
	if err != nil {
		return nil, eris.Wrapf(err, "scan %s", req.Website)
	}

	log := s.logger.With(zap.String("website", result.Website), zap.String("request_id", req.RequestID))
	resp := &dto.ScanResponse{Result: result}

	// The request context may already be spent by a long scan.
	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.repo != nil {
		id, err := s.persist(sideCtx, result)
		if err != nil {
			log.Warn("failed to store scan", zap.Error(err))
		} else {
			resp.ScanID = id.String()
		}
	}

	if s.hook != nil {
		if _, err := s.hook.PostJSON(sideCtx, webhook.ResultsPath, resp, req.RequestID); err != nil {
			log.Warn("failed to deliver scan webhook", zap.Error(err))
		}
	}

	return resp, nil
}

func (s *ScansService) persist(ctx context.Context, result *scanner.ScanResult) (uuid.UUID, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "marshal scan result")
	}
	record := &entity.WebsiteScan{
		Website:      result.Website,
		RootDomain:   result.RootDomain,
		Result:       payload,
		EmailsFound:  len(result.Emails),
		PhonesFound:  len(result.Phones),
		PagesScanned: len(result.PagesScanned),
		PagesFailed:  len(result.PagesFailed),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// Get returns a stored scan with its decoded result.
func (s *ScansService) Get(ctx context.Context, id uuid.UUID) (*dto.ScanResponse, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var result scanner.ScanResult
	if err := json.Unmarshal(record.Result, &result); err != nil {
		return nil, eris.Wrapf(err, "decode stored scan %s", id)
	}
	return &dto.ScanResponse{ScanID: record.ID.String(), Result: &result}, nil
}

// ListRecent summarizes the newest stored scans, optionally for one root domain.
func (s *ScansService) ListRecent(ctx context.Context, domain string, limit int) ([]dto.ScanSummary, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}

	if domain = strings.TrimSpace(domain); domain != "" {
		domain = scanner.RootDomain(domain)
	}

	records, err := s.repo.ListRecent(ctx, domain, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.ScanSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, dto.ScanSummary{
			ScanID:       r.ID.String(),
			Website:      r.Website,
			RootDomain:   r.RootDomain,
			EmailsFound:  r.EmailsFound,
			PhonesFound:  r.PhonesFound,
			PagesScanned: r.PagesScanned,
			PagesFailed:  r.PagesFailed,
			CreatedAt:    r.CreatedAt,
		})
	}
	return summaries, nil
}
