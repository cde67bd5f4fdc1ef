package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/octobees/leads-generator/sitescan/internal/entity"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ErrScanNotFound is returned when no stored scan matches the id.
var ErrScanNotFound = eris.New("scan not found")

// ScansRepository persists scan runs.
type ScansRepository interface {
	Save(ctx context.Context, scan *entity.WebsiteScan) error
	Get(ctx context.Context, id uuid.UUID) (*entity.WebsiteScan, error)
	ListRecent(ctx context.Context, rootDomain string, limit int) ([]entity.WebsiteScan, error)
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXScansRepository implements ScansRepository with pgx.
type PGXScansRepository struct {
	pool pgxPool
}

// NewPGXScansRepository wires a pgx backed repository.
func NewPGXScansRepository(pool *pgxpool.Pool) *PGXScansRepository {
	return &PGXScansRepository{pool: pool}
}

const scanColumns = `id::text, website, root_domain, result, emails_found, phones_found, pages_scanned, pages_failed, created_at`

// Save inserts the scan and fills in its id (when unset) and created_at.
func (r *PGXScansRepository) Save(ctx context.Context, scan *entity.WebsiteScan) error {
	if scan == nil {
		return eris.New("scan payload is nil")
	}
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	result := scan.Result
	if len(result) == 0 {
		result = []byte("{}")
	}

	query := `
		INSERT INTO website_scans (
			id, website, root_domain, result,
			emails_found, phones_found, pages_scanned, pages_failed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		scan.ID,
		scan.Website,
		scan.RootDomain,
		[]byte(result),
		scan.EmailsFound,
		scan.PhonesFound,
		scan.PagesScanned,
		scan.PagesFailed,
	).Scan(&scan.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "insert scan %s", scan.ID)
	}
	return nil
}

// Get loads a single scan.
func (r *PGXScansRepository) Get(ctx context.Context, id uuid.UUID) (*entity.WebsiteScan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+scanColumns+` FROM website_scans WHERE id = $1`, id)

	scan, err := scanWebsiteScan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScanNotFound
		}
		return nil, eris.Wrapf(err, "fetch scan %s", id)
	}
	return scan, nil
}

// ListRecent returns the newest scans first, optionally restricted to one root domain.
func (r *PGXScansRepository) ListRecent(ctx context.Context, rootDomain string, limit int) ([]entity.WebsiteScan, error) {
	query := `SELECT ` + scanColumns + `
		FROM website_scans
		WHERE ($1 = '' OR root_domain = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, rootDomain, ClampLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "list scans")
	}
	defer rows.Close()

	scans := []entity.WebsiteScan{}
	for rows.Next() {
		scan, err := scanWebsiteScan(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan website_scans row")
		}
		scans = append(scans, *scan)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate scans")
	}
	return scans, nil
}

// ClampLimit maps a requested page size into 1..MaxListLimit, defaulting when unset.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func scanWebsiteScan(row pgx.Row) (*entity.WebsiteScan, error) {
	var (
		scan   entity.WebsiteScan
		id     string
		result []byte
	)
	if err := row.Scan(
		&id,
		&scan.Website,
		&scan.RootDomain,
		&result,
		&scan.EmailsFound,
		&scan.PhonesFound,
		&scan.PagesScanned,
		&scan.PagesFailed,
		&scan.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, eris.Wrapf(err, "parse scan id %q", id)
	}
	scan.ID = parsed
	if len(result) > 0 {
		scan.Result = append([]byte(nil), result...)
	}
	return &scan, nil
}
