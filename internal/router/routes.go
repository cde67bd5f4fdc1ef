package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/sitescan/internal/auth"
	"github.com/octobees/leads-generator/sitescan/internal/config"
	"github.com/octobees/leads-generator/sitescan/internal/handler"
	middlewarepkg "github.com/octobees/leads-generator/sitescan/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Scans *handler.ScanHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{
			"status":  "ok",
			"history": cfg.HistoryEnabled(),
		})
	})

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/scans", handlers.Scans.Create, middlewarepkg.ScanRateLimiter(cfg.RateLimitScan))
	secured.GET("/scans/:id", handlers.Scans.Get)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/scans", handlers.Scans.ListAdmin)
}
