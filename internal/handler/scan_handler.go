package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leads-generator/sitescan/internal/dto"
	middleware "github.com/octobees/leads-generator/sitescan/internal/middleware"
	"github.com/octobees/leads-generator/sitescan/internal/repository"
	"github.com/octobees/leads-generator/sitescan/internal/scanner"
	"github.com/octobees/leads-generator/sitescan/internal/service"
)

// ScanRunner is the service surface the scan endpoints need.
type ScanRunner interface {
	Run(ctx context.Context, req service.ScanRequest) (*dto.ScanResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ScanResponse, error)
	ListRecent(ctx context.Context, domain string, limit int) ([]dto.ScanSummary, error)
}

// ScanHandler exposes the website scan endpoints.
type ScanHandler struct {
	scans  ScanRunner
	logger *zap.Logger
}

// NewScanHandler creates a new handler instance.
func NewScanHandler(scans ScanRunner, logger *zap.Logger) *ScanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanHandler{scans: scans, logger: logger}
}

// Create handles POST /scans. The scan runs inside the request.
func (h *ScanHandler) Create(c echo.Context) error {
	var req dto.ScanRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.Website = strings.TrimSpace(req.Website)

	resp, err := h.scans.Run(c.Request().Context(), service.ScanRequest{
		Website:   req.Website,
		Flags:     req.Flags(),
		RequestID: middleware.RequestIDFromContext(c),
	})
	switch {
	case err == nil:
		return Success(c, http.StatusOK, "scan completed", resp)
	case errors.Is(err, scanner.ErrMissingWebsite):
		return Error(c, http.StatusBadRequest, "website is required")
	case errors.Is(err, scanner.ErrInvalidWebsite):
		return Error(c, http.StatusBadRequest, "website is not a valid http(s) url")
	default:
		h.logger.Error("scan failed",
			zap.String("website", req.Website),
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.Error(err),
		)
		return Error(c, http.StatusInternalServerError, "scan failed")
	}
}

// Get handles GET /scans/:id.
func (h *ScanHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid scan id")
	}

	resp, err := h.scans.Get(c.Request().Context(), id)
	if err != nil {
		return h.historyError(c, err)
	}
	return Success(c, http.StatusOK, "scan retrieved", resp)
}

// ListAdmin handles GET /admin/scans.
func (h *ScanHandler) ListAdmin(c echo.Context) error {
	limit := parseIntDefault(c.QueryParam("limit"), repository.DefaultListLimit)
	summaries, err := h.scans.ListRecent(c.Request().Context(), c.QueryParam("domain"), limit)
	if err != nil {
		return h.historyError(c, err)
	}
	return Success(c, http.StatusOK, "scans retrieved", summaries)
}

func (h *ScanHandler) historyError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrHistoryDisabled):
		return Error(c, http.StatusServiceUnavailable, "scan history is disabled")
	case errors.Is(err, repository.ErrScanNotFound):
		return Error(c, http.StatusNotFound, "scan not found")
	default:
		h.logger.Error("scan history lookup failed", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "failed to load scans")
	}
}

func parseIntDefault(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
