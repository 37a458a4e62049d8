package analytics

import (
	"errors"

	analyticssvc "github.com/Breaking-code-Project-work/Horizon-Analytics/internal/application/analytics"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/application/store"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/csvload"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/models"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Handlers adapts dashboard HTTP requests to the aggregation engine: query
// parameters in, plain envelopes out.
type Handlers struct {
	Service    *analyticssvc.Service
	Repository *store.Repository
	Cache      *analyticssvc.Cache
}

// filterFromQuery maps the recognized query parameters onto a Filter.
// Absent parameters stay unrestricted; the engine also understands the
// dashboard's "nessun filtro"/"Tutte" sentinels as-is.
func filterFromQuery(c *fiber.Ctx) analyticssvc.Filter {
	f := analyticssvc.Filter{
		Region:        c.Query("region"),
		Macroarea:     c.Query("macroarea"),
		FundingSource: c.Query("funding_source"),
	}
	switch c.Query("is_cross_cutting") {
	case "true":
		v := true
		f.IsCrossCutting = &v
	case "false":
		v := false
		f.IsCrossCutting = &v
	}
	return f
}

// GET /api/v1/analytics/overview
func (h *Handlers) Overview(c *fiber.Ctx) error {
	out, err := h.Cache.CachedOverview(c.Context(), h.Service, filterFromQuery(c))
	if err != nil {
		log.Error().Err(err).Msg("overview aggregation failed")
		return response.Error(c, "Could not compute overview", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Overview computed successfully", out, nil)
}

// GET /api/v1/analytics/financial-analysis
func (h *Handlers) FinancialAnalysis(c *fiber.Ctx) error {
	out, err := h.Cache.CachedFinancialAnalysis(c.Context(), h.Service, filterFromQuery(c))
	if err != nil {
		log.Error().Err(err).Msg("financial analysis aggregation failed")
		return response.Error(c, "Could not compute financial analysis", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Financial analysis computed successfully", out, nil)
}

type importRequest struct {
	Path string `json:"path"`
}

// POST /api/v1/imports
func (h *Handlers) TriggerImport(c *fiber.Ctx) error {
	var req importRequest
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return response.Error(c, "path is required", fiber.StatusBadRequest, nil)
	}

	run, err := h.Repository.ImportPath(c.Context(), req.Path)
	if err != nil {
		var rowErr *store.RowError
		var formatErr *csvload.FormatError
		if errors.As(err, &rowErr) || errors.As(err, &formatErr) {
			return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
		}
		log.Error().Err(err).Str("path", req.Path).Msg("import failed")
		return response.Error(c, "Import failed", fiber.StatusInternalServerError, nil)
	}

	h.Cache.Flush(c.Context())
	return response.SuccessCreated(c, "Import completed successfully", run, nil)
}

// GET /api/v1/imports/latest
func (h *Handlers) LatestImport(c *fiber.Ctx) error {
	var run models.ImportRun
	err := h.Repository.DB.WithContext(c.Context()).Order("id desc").First(&run).Error
	if err == gorm.ErrRecordNotFound {
		return response.Error(c, "No import has run yet", fiber.StatusNotFound, nil)
	}
	if err != nil {
		return response.Error(c, "Could not fetch import runs", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Latest import fetched successfully", run, nil)
}
