package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/leads-generator/sitescan/internal/dto"
	"github.com/octobees/leads-generator/sitescan/internal/entity"
	"github.com/octobees/leads-generator/sitescan/internal/extract"
	"github.com/octobees/leads-generator/sitescan/internal/repository"
	"github.com/octobees/leads-generator/sitescan/internal/scanner"
	"github.com/octobees/leads-generator/sitescan/internal/webhook"
)

type stubScanner struct {
	calls       int
	gotFlags    scanner.ExistingFlags
	gotDeadline bool
	result      *scanner.ScanResult
	err         error
}

func (s *stubScanner) Scan(ctx context.Context, website string, flags scanner.ExistingFlags) (*scanner.ScanResult, error) {
	s.calls++
	s.gotFlags = flags
	_, s.gotDeadline = ctx.Deadline()
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubScansRepository struct {
	saved   []*entity.WebsiteScan
	saveErr error
	get     func(ctx context.Context, id uuid.UUID) (*entity.WebsiteScan, error)
	list    func(ctx context.Context, domain string, limit int) ([]entity.WebsiteScan, error)
}

func (r *stubScansRepository) Save(_ context.Context, scan *entity.WebsiteScan) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	scan.ID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	r.saved = append(r.saved, scan)
	return nil
}

func (r *stubScansRepository) Get(ctx context.Context, id uuid.UUID) (*entity.WebsiteScan, error) {
	if r.get != nil {
		return r.get(ctx, id)
	}
	return nil, errors.New("get not implemented")
}

func (r *stubScansRepository) ListRecent(ctx context.Context, domain string, limit int) ([]entity.WebsiteScan, error) {
	if r.list != nil {
		return r.list(ctx, domain, limit)
	}
	return nil, errors.New("list not implemented")
}

type stubPoster struct {
	path      string
	payload   any
	requestID string
	err       error
}

func (p *stubPoster) PostJSON(_ context.Context, path string, payload any, requestID string) (map[string]any, error) {
	p.path = path
	p.payload = payload
	p.requestID = requestID
	return nil, p.err
}

func sampleResult() *scanner.ScanResult {
	return &scanner.ScanResult{
		Website:    "https://acme.com",
		RootDomain: "acme.com",
		Emails: []extract.ScrapedContact{
			{Kind: extract.KindEmail, Value: "sales@acme.com", SourcePage: "https://acme.com/contact"},
		},
		Phones:       []extract.ScrapedContact{},
		PagesScanned: []string{"https://acme.com/", "https://acme.com/contact"},
		PagesFailed:  []scanner.PageFailure{{URL: "https://acme.com/team", Reason: "HTTP 404"}},
	}
}

func TestRunRejectsBadWebsiteWithoutScanning(t *testing.T) {
	sc := &stubScanner{result: sampleResult()}
	svc := NewScansService(sc)

	_, err := svc.Run(context.Background(), ScanRequest{Website: ""})
	assert.True(t, errors.Is(err, scanner.ErrMissingWebsite))

	_, err = svc.Run(context.Background(), ScanRequest{Website: "gopher://acme.com"})
	assert.True(t, errors.Is(err, scanner.ErrInvalidWebsite))

	assert.Zero(t, sc.calls)
}

func TestRunWithoutHistory(t *testing.T) {
	sc := &stubScanner{result: sampleResult()}
	svc := NewScansService(sc)
	flags := scanner.ExistingFlags{HasEmail: true, HasAddress: true}

	resp, err := svc.Run(context.Background(), ScanRequest{Website: "acme.com", Flags: flags})

	require.NoError(t, err)
	assert.Empty(t, resp.ScanID)
	assert.Same(t, sc.result, resp.Result)
	assert.Equal(t, flags, sc.gotFlags)
	assert.True(t, sc.gotDeadline)
	assert.False(t, svc.HistoryEnabled())
}

func TestRunZeroDeadlineLeavesContextOpen(t *testing.T) {
	sc := &stubScanner{result: sampleResult()}
	svc := NewScansService(sc, WithDeadline(0))

	_, err := svc.Run(context.Background(), ScanRequest{Website: "acme.com"})

	require.NoError(t, err)
	assert.False(t, sc.gotDeadline)
}

func TestRunPersistsAndDeliversWebhook(t *testing.T) {
	sc := &stubScanner{result: sampleResult()}
	repo := &stubScansRepository{}
	hook := &stubPoster{}
	svc := NewScansService(sc, WithRepository(repo), WithWebhook(hook))

	resp, err := svc.Run(context.Background(), ScanRequest{Website: "https://acme.com", RequestID: "rid-9"})

	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", resp.ScanID)

	require.Len(t, repo.saved, 1)
	saved := repo.saved[0]
	assert.Equal(t, "acme.com", saved.RootDomain)
	assert.Equal(t, 1, saved.EmailsFound)
	assert.Equal(t, 0, saved.PhonesFound)
	assert.Equal(t, 2, saved.PagesScanned)
	assert.Equal(t, 1, saved.PagesFailed)

	var stored scanner.ScanResult
	require.NoError(t, json.Unmarshal(saved.Result, &stored))
	assert.Equal(t, "sales@acme.com", stored.Emails[0].Value)

	assert.Equal(t, webhook.ResultsPath, hook.path)
	assert.Equal(t, "rid-9", hook.requestID)
	assert.Same(t, resp, hook.payload)
}

func TestRunKeepsResultWhenSideEffectsFail(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sc := &stubScanner{result: sampleResult()}
	repo := &stubScansRepository{saveErr: errors.New("db down")}
	hook := &stubPoster{err: errors.New("crm unavailable")}
	svc := NewScansService(sc, WithRepository(repo), WithWebhook(hook), WithServiceLogger(zap.New(core)))

	resp, err := svc.Run(context.Background(), ScanRequest{Website: "acme.com"})

	require.NoError(t, err)
	assert.Empty(t, resp.ScanID)
	assert.NotNil(t, resp.Result)
	assert.Equal(t, 1, logs.FilterMessage("failed to store scan").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to deliver scan webhook").Len())
}

func TestRunWrapsScannerError(t *testing.T) {
	sc := &stubScanner{err: errors.New("exploded")}
	svc := NewScansService(sc)

	_, err := svc.Run(context.Background(), ScanRequest{Website: "acme.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exploded")
}

func TestHistoryDisabled(t *testing.T) {
	svc := NewScansService(&stubScanner{})

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrHistoryDisabled))

	_, err = svc.ListRecent(context.Background(), "", 10)
	assert.True(t, errors.Is(err, ErrHistoryDisabled))
}

func TestGetDecodesStoredResult(t *testing.T) {
	id := uuid.New()
	payload, err := json.Marshal(sampleResult())
	require.NoError(t, err)

	repo := &stubScansRepository{
		get: func(_ context.Context, got uuid.UUID) (*entity.WebsiteScan, error) {
			if got != id {
				return nil, repository.ErrScanNotFound
			}
			return &entity.WebsiteScan{ID: id, Result: payload}, nil
		},
	}
	svc := NewScansService(&stubScanner{}, WithRepository(repo))

	resp, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.ScanID)
	assert.Equal(t, "https://acme.com", resp.Result.Website)
	assert.Len(t, resp.Result.PagesFailed, 1)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, repository.ErrScanNotFound))
}

func TestListRecentNormalizesDomain(t *testing.T) {
	var gotDomain string
	var gotLimit int
	created := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	repo := &stubScansRepository{
		list: func(_ context.Context, domain string, limit int) ([]entity.WebsiteScan, error) {
			gotDomain, gotLimit = domain, limit
			return []entity.WebsiteScan{{ID: id, Website: "https://shop.acme.com", RootDomain: "acme.com", EmailsFound: 4, CreatedAt: created}}, nil
		},
	}
	svc := NewScansService(&stubScanner{}, WithRepository(repo))

	summaries, err := svc.ListRecent(context.Background(), " WWW.Shop.Acme.com ", 5)

	require.NoError(t, err)
	assert.Equal(t, "acme.com", gotDomain)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, []dto.ScanSummary{{
		ScanID:      id.String(),
		Website:     "https://shop.acme.com",
		RootDomain:  "acme.com",
		EmailsFound: 4,
		CreatedAt:   created,
	}}, summaries)
}
