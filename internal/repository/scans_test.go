package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/leads-generator/sitescan/internal/entity"
)

var scanRowColumns = []string{
	"id", "website", "root_domain", "result",
	"emails_found", "phones_found", "pages_scanned", "pages_failed", "created_at",
}

func TestSaveAssignsIDAndCreatedAt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO website_scans").
		WithArgs(pgxmock.AnyArg(), "https://acme.com", "acme.com", []byte(`{"emails":[]}`), 2, 1, 3, 14).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	repo := &PGXScansRepository{pool: mock}
	scan := &entity.WebsiteScan{
		Website:      "https://acme.com",
		RootDomain:   "acme.com",
		Result:       json.RawMessage(`{"emails":[]}`),
		EmailsFound:  2,
		PhonesFound:  1,
		PagesScanned: 3,
		PagesFailed:  14,
	}

	require.NoError(t, repo.Save(context.Background(), scan))
	assert.NotEqual(t, uuid.Nil, scan.ID)
	assert.Equal(t, created, scan.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWrapsDatabaseError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("INSERT INTO website_scans").
		WithArgs(id, "https://acme.com", "acme.com", []byte("{}"), 0, 0, 0, 0).
		WillReturnError(errors.New("relation does not exist"))

	repo := &PGXScansRepository{pool: mock}
	err = repo.Save(context.Background(), &entity.WebsiteScan{ID: id, Website: "https://acme.com", RootDomain: "acme.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert scan")
	assert.Contains(t, err.Error(), "relation does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRejectsNil(t *testing.T) {
	repo := &PGXScansRepository{}
	assert.Error(t, repo.Save(context.Background(), nil))
}

func TestGetReturnsStoredScan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM website_scans WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(scanRowColumns).
			AddRow(id.String(), "https://acme.com", "acme.com", []byte(`{"website":"https://acme.com"}`), 1, 2, 5, 12, created))

	repo := &PGXScansRepository{pool: mock}
	scan, err := repo.Get(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, scan.ID)
	assert.Equal(t, "acme.com", scan.RootDomain)
	assert.JSONEq(t, `{"website":"https://acme.com"}`, string(scan.Result))
	assert.Equal(t, 2, scan.PhonesFound)
	assert.Equal(t, 12, scan.PagesFailed)
	assert.Equal(t, created, scan.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM website_scans WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	repo := &PGXScansRepository{pool: mock}
	_, err = repo.Get(context.Background(), id)

	assert.True(t, errors.Is(err, ErrScanNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentClampsLimitAndFiltersDomain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	first := uuid.New()
	second := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("FROM website_scans").
		WithArgs("acme.com", MaxListLimit).
		WillReturnRows(pgxmock.NewRows(scanRowColumns).
			AddRow(first.String(), "https://acme.com", "acme.com", []byte("{}"), 0, 0, 1, 16, now).
			AddRow(second.String(), "https://www.acme.com", "acme.com", []byte("{}"), 3, 1, 4, 13, now.Add(-time.Hour)))

	repo := &PGXScansRepository{pool: mock}
	scans, err := repo.ListRecent(context.Background(), "acme.com", 500)

	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, first, scans[0].ID)
	assert.Equal(t, second, scans[1].ID)
	assert.Equal(t, 3, scans[1].EmailsFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM website_scans").
		WithArgs("", DefaultListLimit).
		WillReturnRows(pgxmock.NewRows(scanRowColumns))

	repo := &PGXScansRepository{pool: mock}
	scans, err := repo.ListRecent(context.Background(), "", 0)

	require.NoError(t, err)
	assert.NotNil(t, scans)
	assert.Empty(t, scans)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM website_scans").
		WithArgs("", 10).
		WillReturnError(errors.New("connection reset"))

	repo := &PGXScansRepository{pool: mock}
	_, err = repo.ListRecent(context.Background(), "", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list scans")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-4))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 55, ClampLimit(55))
	assert.Equal(t, MaxListLimit, ClampLimit(101))
}
