package readapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/report"
	"github.com/bizlens-lab/bizlens/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// Handler serves the summary tables over HTTP. Handlers only filter by
// partition key; every number they return was computed by the engine.
type Handler struct {
	reader storage.SummaryReader
}

// NewHandler creates a read API handler.
func NewHandler(reader storage.SummaryReader) *Handler {
	return &Handler{reader: reader}
}

// Register mounts the report routes on the router.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/daily-sales", h.HandleDailySales)
	api.GET("/daily-sales/:date", h.HandleDailySalesByDate)
	api.GET("/daily-sales/period/:period", h.HandleDailySalesByPeriod)
	api.GET("/top-selling-items", h.HandleTopSellingItems)
	api.GET("/category-summary", h.HandleCategorySummary)
	api.GET("/brand-summary", h.HandleBrandSummary)
	api.GET("/refund-analysis", h.HandleRefundAnalysis)
	api.GET("/low-stock-alerts", h.HandleLowStockAlerts)
	api.GET("/slow-moving-items", h.HandleSlowMovingItems)
	api.GET("/summary/overview", h.HandleSummaryOverview)
	api.GET("/summary/periods", h.HandleAnalysisPeriods)
	api.GET("/summary/dates", h.HandleAnalysisDates)
}

// ErrorResponse is the error response body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: code, Message: message})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "report_not_found", Message: message})
}

func internalError(c *gin.Context, what string, err error) {
	slog.Error("Report query failed", "report", what, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "failed to query " + what})
}

// parseWindow reads the period query param, defaulting to all_time.
func parseWindow(c *gin.Context) (report.Window, bool) {
	w := report.Window(c.DefaultQuery("period", string(report.WindowAllTime)))
	if !w.Valid() {
		badRequest(c, "invalid_period", fmt.Sprintf("unknown period %q", string(w)))
		return "", false
	}
	return w, true
}

// parseSort reads the sort_type query param against one report family's
// allowed set.
func parseSort(c *gin.Context, fallback report.SortDimension, allowed []report.SortDimension) (report.SortDimension, bool) {
	s := report.SortDimension(c.DefaultQuery("sort_type", string(fallback)))
	if !s.Allowed(allowed) {
		badRequest(c, "invalid_sort_type", fmt.Sprintf("unknown sort_type %q", string(s)))
		return "", false
	}
	return s, true
}

// parseDate reads the optional date query param. The zero time means "latest".
func parseDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		badRequest(c, "invalid_date", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

// HandleDailySales handles GET /api/daily-sales.
func (h *Handler) HandleDailySales(c *gin.Context) {
	row, err := h.reader.LatestDailySales(c.Request.Context())
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, "no daily sales data")
		return
	}
	if err != nil {
		internalError(c, "daily sales", err)
		return
	}
	c.JSON(http.StatusOK, toDailySalesResponse(row))
}

// HandleDailySalesByDate handles GET /api/daily-sales/:date.
func (h *Handler) HandleDailySalesByDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		badRequest(c, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	row, err := h.reader.DailySalesByDate(c.Request.Context(), date)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, "no daily sales data for "+c.Param("date"))
		return
	}
	if err != nil {
		internalError(c, "daily sales", err)
		return
	}
	c.JSON(http.StatusOK, toDailySalesResponse(row))
}

// HandleDailySalesByPeriod handles GET /api/daily-sales/period/:period. It
// returns the daily rows from the window ending at the latest analysis date.
func (h *Handler) HandleDailySalesByPeriod(c *gin.Context) {
	window := report.Window(c.Param("period"))
	if !window.Valid() {
		badRequest(c, "invalid_period", fmt.Sprintf("unknown period %q", string(window)))
		return
	}

	rows, err := h.reader.DailySalesHistory(c.Request.Context(), window)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, fmt.Sprintf("no daily sales data for period %q", string(window)))
		return
	}
	if err != nil {
		internalError(c, "daily sales history", err)
		return
	}
	c.JSON(http.StatusOK, toDailySalesListResponse(window, rows))
}

// HandleSummaryOverview handles GET /api/summary/overview: the daily row for
// the target date plus the head of the all_time revenue rankings and the alert
// list. Handlers still do no aggregation; this one only composes reads.
func (h *Handler) HandleSummaryOverview(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	var daily report.DailySales
	var err error
	if date.IsZero() {
		daily, err = h.reader.LatestDailySales(c.Request.Context())
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "no summary data")
			return
		}
		if err != nil {
			internalError(c, "summary overview", err)
			return
		}
		date = daily.AnalysisDate
	} else {
		daily, err = h.reader.DailySalesByDate(c.Request.Context(), date)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			internalError(c, "summary overview", err)
			return
		}
		// A date without a daily row still gets the ranked sections; the
		// daily block stays zero-valued.
		daily.AnalysisDate = date
	}

	top, err := h.reader.TopSellingItems(c.Request.Context(), date, report.WindowAllTime, report.SortRevenue)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		internalError(c, "summary overview", err)
		return
	}
	categories, err := h.reader.CategorySummaries(c.Request.Context(), date, report.WindowAllTime, report.SortRevenue)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		internalError(c, "summary overview", err)
		return
	}
	brands, err := h.reader.BrandSummaries(c.Request.Context(), date, report.WindowAllTime, report.SortRevenue)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		internalError(c, "summary overview", err)
		return
	}
	alerts, err := h.reader.LowStockAlerts(c.Request.Context(), date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		internalError(c, "summary overview", err)
		return
	}

	c.JSON(http.StatusOK, toSummaryOverviewResponse(daily,
		headTopSelling(top, overviewRankedLimit),
		headGroups(categories, overviewRankedLimit),
		headGroups(brands, overviewRankedLimit),
		headAlerts(alerts, overviewAlertLimit),
	))
}

// HandleAnalysisPeriods handles GET /api/summary/periods.
func (h *Handler) HandleAnalysisPeriods(c *gin.Context) {
	periods, err := h.reader.AnalysisPeriods(c.Request.Context())
	if err != nil {
		internalError(c, "analysis periods", err)
		return
	}
	c.JSON(http.StatusOK, toPeriodsResponse(periods))
}

// HandleAnalysisDates handles GET /api/summary/dates.
func (h *Handler) HandleAnalysisDates(c *gin.Context) {
	dates, err := h.reader.AnalysisDates(c.Request.Context())
	if err != nil {
		internalError(c, "analysis dates", err)
		return
	}
	c.JSON(http.StatusOK, toDatesResponse(dates))
}

// HandleTopSellingItems handles GET /api/top-selling-items.
func (h *Handler) HandleTopSellingItems(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	sortBy, ok := parseSort(c, report.SortRevenue, report.TopItemSorts())
	if !ok {
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	rows, err := h.reader.TopSellingItems(c.Request.Context(), date, window, sortBy)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, partitionMessage("top selling items", window, sortBy))
		return
	}
	if err != nil {
		internalError(c, "top selling items", err)
		return
	}
	c.JSON(http.StatusOK, toTopSellingResponse(window, sortBy, rows))
}

// HandleCategorySummary handles GET /api/category-summary.
func (h *Handler) HandleCategorySummary(c *gin.Context) {
	h.handleGroupSummary(c, "category summary", h.reader.CategorySummaries)
}

// HandleBrandSummary handles GET /api/brand-summary.
func (h *Handler) HandleBrandSummary(c *gin.Context) {
	h.handleGroupSummary(c, "brand summary", h.reader.BrandSummaries)
}

func (h *Handler) handleGroupSummary(
	c *gin.Context,
	what string,
	query func(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension) ([]report.GroupSummary, error),
) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	sortBy, ok := parseSort(c, report.SortRevenue, report.GroupSorts())
	if !ok {
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	rows, err := query(c.Request.Context(), date, window, sortBy)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, partitionMessage(what, window, sortBy))
		return
	}
	if err != nil {
		internalError(c, what, err)
		return
	}
	c.JSON(http.StatusOK, toGroupSummaryResponse(window, sortBy, rows))
}

// HandleRefundAnalysis handles GET /api/refund-analysis.
func (h *Handler) HandleRefundAnalysis(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	sortBy, ok := parseSort(c, report.SortRefundCount, report.RefundSorts())
	if !ok {
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	rows, err := h.reader.RefundAnalyses(c.Request.Context(), date, window, sortBy)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, partitionMessage("refund analysis", window, sortBy))
		return
	}
	if err != nil {
		internalError(c, "refund analysis", err)
		return
	}
	c.JSON(http.StatusOK, toRefundResponse(window, sortBy, rows))
}

// HandleLowStockAlerts handles GET /api/low-stock-alerts.
func (h *Handler) HandleLowStockAlerts(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	rows, err := h.reader.LowStockAlerts(c.Request.Context(), date)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, "no low stock alerts")
		return
	}
	if err != nil {
		internalError(c, "low stock alerts", err)
		return
	}
	c.JSON(http.StatusOK, toLowStockResponse(rows))
}

// HandleSlowMovingItems handles GET /api/slow-moving-items.
func (h *Handler) HandleSlowMovingItems(c *gin.Context) {
	sortBy, ok := parseSort(c, report.SortNoSales, report.SlowMovingSorts())
	if !ok {
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	rows, err := h.reader.SlowMovingItems(c.Request.Context(), date, sortBy)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, fmt.Sprintf("no slow moving items for sort_type %q", string(sortBy)))
		return
	}
	if err != nil {
		internalError(c, "slow moving items", err)
		return
	}
	c.JSON(http.StatusOK, toSlowMovingResponse(sortBy, rows))
}

func partitionMessage(what string, window report.Window, sortBy report.SortDimension) string {
	return fmt.Sprintf("no %s for period %q and sort_type %q", what, string(window), string(sortBy))
}
