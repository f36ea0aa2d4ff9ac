package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gyeh/rxrecon/internal/pipeline"
	"github.com/gyeh/rxrecon/internal/query"
	"github.com/gyeh/rxrecon/internal/store"
)

// Handler serves the reconciliation API. The claim list and the KPI
// strip run the same pipeline so both views always agree for a given
// filter state.
type Handler struct {
	engine *pipeline.Engine
	store  store.Store
	log    zerolog.Logger
}

// NewHandler wires a handler over the enrichment engine and store.
func NewHandler(engine *pipeline.Engine, st store.Store, log zerolog.Logger) *Handler {
	return &Handler{engine: engine, store: st, log: log}
}

// RegisterRoutes attaches the API routes to the authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/claims", h.ListClaims)
	api.GET("/kpis", h.GetKPIs)

	// The reporting workflow's narrow write path.
	reports := api.Group("/reports", RequireRole("admin", "superadmin"))
	reports.POST("/save", h.SaveReport)
}

// ListClaims returns one page of evaluated claims plus the post-filter
// total.
func (h *Handler) ListClaims(c echo.Context) error {
	f, err := query.Parse(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	page, err := h.engine.List(c.Request().Context(), f)
	if err != nil {
		h.log.Error().Err(err).Msg("list claims failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, page)
}

// GetKPIs returns the aggregate object for the same filter contract.
func (h *Handler) GetKPIs(c echo.Context) error {
	f, err := query.Parse(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	kpis, err := h.engine.Aggregate(c.Request().Context(), f)
	if err != nil {
		h.log.Error().Err(err).Msg("aggregate kpis failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, kpis)
}

type saveReportRequest struct {
	Scripts    []string `json:"scripts"`
	Status     string   `json:"status"`
	ReportFile string   `json:"reportFile"`
}

type saveReportResponse struct {
	Updated int64 `json:"updated"`
}

// SaveReport stamps a set of claims with a status and report-file path
// after the reporting workflow has generated a document.
func (h *Handler) SaveReport(c echo.Context) error {
	var req saveReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Scripts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "scripts is required")
	}
	if req.Status == "" {
		req.Status = "Reported"
	}

	n, err := h.store.MarkReported(c.Request().Context(), req.Scripts, req.Status, req.ReportFile)
	if err != nil {
		h.log.Error().Err(err).Msg("save report failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, saveReportResponse{Updated: n})
}
