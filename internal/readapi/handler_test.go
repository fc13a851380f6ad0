package readapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/report"
	"github.com/bizlens-lab/bizlens/internal/core/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	daily      report.DailySales
	dailyErr   error
	topRows    []report.TopSellingItem
	topErr     error
	groupRows  []report.GroupSummary
	groupErr   error
	refundRows []report.RefundRow
	refundErr  error
	alertRows  []report.LowStockAlert
	alertErr   error
	slowRows   []report.SlowMovingItem
	slowErr    error
	history    []report.DailySales
	historyErr error
	periods    []report.Window
	periodsErr error
	dates      []time.Time
	datesErr   error

	gotDate   time.Time
	gotWindow report.Window
	gotSort   report.SortDimension
}

func (f *fakeReader) LatestDailySales(ctx context.Context) (report.DailySales, error) {
	return f.daily, f.dailyErr
}

func (f *fakeReader) DailySalesByDate(ctx context.Context, date time.Time) (report.DailySales, error) {
	f.gotDate = date
	return f.daily, f.dailyErr
}

func (f *fakeReader) DailySalesHistory(ctx context.Context, w report.Window) ([]report.DailySales, error) {
	f.gotWindow = w
	return f.history, f.historyErr
}

func (f *fakeReader) AnalysisDates(ctx context.Context) ([]time.Time, error) {
	return f.dates, f.datesErr
}

func (f *fakeReader) AnalysisPeriods(ctx context.Context) ([]report.Window, error) {
	return f.periods, f.periodsErr
}

func (f *fakeReader) TopSellingItems(ctx context.Context, date time.Time, w report.Window, s report.SortDimension) ([]report.TopSellingItem, error) {
	f.gotDate, f.gotWindow, f.gotSort = date, w, s
	return f.topRows, f.topErr
}

func (f *fakeReader) CategorySummaries(ctx context.Context, date time.Time, w report.Window, s report.SortDimension) ([]report.GroupSummary, error) {
	f.gotDate, f.gotWindow, f.gotSort = date, w, s
	return f.groupRows, f.groupErr
}

func (f *fakeReader) BrandSummaries(ctx context.Context, date time.Time, w report.Window, s report.SortDimension) ([]report.GroupSummary, error) {
	f.gotDate, f.gotWindow, f.gotSort = date, w, s
	return f.groupRows, f.groupErr
}

func (f *fakeReader) RefundAnalyses(ctx context.Context, date time.Time, w report.Window, s report.SortDimension) ([]report.RefundRow, error) {
	f.gotDate, f.gotWindow, f.gotSort = date, w, s
	return f.refundRows, f.refundErr
}

func (f *fakeReader) LowStockAlerts(ctx context.Context, date time.Time) ([]report.LowStockAlert, error) {
	f.gotDate = date
	return f.alertRows, f.alertErr
}

func (f *fakeReader) SlowMovingItems(ctx context.Context, date time.Time, s report.SortDimension) ([]report.SlowMovingItem, error) {
	f.gotDate, f.gotSort = date, s
	return f.slowRows, f.slowErr
}

func newTestRouter(reader storage.SummaryReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(reader).Register(r)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestDailySalesLatest(t *testing.T) {
	reader := &fakeReader{daily: report.DailySales{
		AnalysisDate: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		TotalOrders:  12,
		TotalRevenue: 340.50,
		TotalProfit:  120.25,
		TotalRefunds: 2,
	}}
	w := doGet(t, newTestRouter(reader), "/api/daily-sales")

	require.Equal(t, http.StatusOK, w.Code)
	var got DailySalesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "2026-08-31", got.AnalysisDate)
	require.Equal(t, 12, got.TotalOrders)
	require.InDelta(t, 340.50, got.TotalRevenue, 1e-9)
}

func TestDailySalesByDate(t *testing.T) {
	reader := &fakeReader{daily: report.DailySales{AnalysisDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)}}
	w := doGet(t, newTestRouter(reader), "/api/daily-sales/2026-08-30")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), reader.gotDate)
}

func TestDailySalesByDateInvalid(t *testing.T) {
	w := doGet(t, newTestRouter(&fakeReader{}), "/api/daily-sales/not-a-date")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailySalesNotFound(t *testing.T) {
	reader := &fakeReader{dailyErr: storage.ErrNotFound}
	w := doGet(t, newTestRouter(reader), "/api/daily-sales")
	require.Equal(t, http.StatusNotFound, w.Code)

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "report_not_found", got.Error)
}

func TestDailySalesByPeriod(t *testing.T) {
	reader := &fakeReader{history: []report.DailySales{
		{AnalysisDate: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), TotalOrders: 12, TotalRevenue: 340.50},
		{AnalysisDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), TotalOrders: 9, TotalRevenue: 210.00},
	}}
	w := doGet(t, newTestRouter(reader), "/api/daily-sales/period/7_days_ago")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, report.Window7Days, reader.gotWindow)

	var got DailySalesListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "7_days_ago", got.Period)
	require.Equal(t, 2, got.Count)
	require.Equal(t, "2026-08-31", got.Data[0].AnalysisDate)
}

func TestDailySalesByPeriodInvalid(t *testing.T) {
	w := doGet(t, newTestRouter(&fakeReader{}), "/api/daily-sales/period/last_week")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailySalesByPeriodNotFound(t *testing.T) {
	reader := &fakeReader{historyErr: storage.ErrNotFound}
	w := doGet(t, newTestRouter(reader), "/api/daily-sales/period/all_time")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummaryOverview(t *testing.T) {
	topRows := make([]report.TopSellingItem, 0, 7)
	for i := 0; i < 7; i++ {
		topRows = append(topRows, report.TopSellingItem{SKU: "SKU", Rank: i + 1})
	}
	reader := &fakeReader{
		daily: report.DailySales{
			AnalysisDate: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			TotalOrders:  12,
			TotalRevenue: 340.50,
		},
		topRows:   topRows,
		groupRows: []report.GroupSummary{{GroupID: 10, GroupName: "Electronics", Rank: 1}},
		alertRows: []report.LowStockAlert{{SKU: "SKU-B", DaysLeft: 5, Level: report.AlertCritical}},
	}
	w := doGet(t, newTestRouter(reader), "/api/summary/overview")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, report.WindowAllTime, reader.gotWindow)
	require.Equal(t, report.SortRevenue, reader.gotSort)

	var got SummaryOverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "2026-08-31", got.AnalysisDate)
	require.Equal(t, 12, got.DailySales.TotalOrders)
	require.Len(t, got.TopSellingItems, 5, "rankings are cut to the overview head")
	require.Len(t, got.TopCategories, 1)
	require.Len(t, got.TopBrands, 1)
	require.Len(t, got.LowStockAlerts, 1)
}

func TestSummaryOverviewToleratesMissingSections(t *testing.T) {
	reader := &fakeReader{
		daily:    report.DailySales{AnalysisDate: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)},
		topErr:   storage.ErrNotFound,
		groupErr: storage.ErrNotFound,
		alertErr: storage.ErrNotFound,
	}
	w := doGet(t, newTestRouter(reader), "/api/summary/overview")

	require.Equal(t, http.StatusOK, w.Code)
	var got SummaryOverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Empty(t, got.TopSellingItems)
	require.Empty(t, got.TopCategories)
	require.Empty(t, got.LowStockAlerts)
}

func TestSummaryOverviewNotFound(t *testing.T) {
	reader := &fakeReader{dailyErr: storage.ErrNotFound}
	w := doGet(t, newTestRouter(reader), "/api/summary/overview")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummaryPeriods(t *testing.T) {
	reader := &fakeReader{periods: []report.Window{report.Window1Day, report.WindowAllTime}}
	w := doGet(t, newTestRouter(reader), "/api/summary/periods")

	require.Equal(t, http.StatusOK, w.Code)
	var got PeriodsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, []string{"1_day_ago", "all_time"}, got.Periods)
}

func TestSummaryDates(t *testing.T) {
	reader := &fakeReader{dates: []time.Time{
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}}
	w := doGet(t, newTestRouter(reader), "/api/summary/dates")

	require.Equal(t, http.StatusOK, w.Code)
	var got DatesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, []string{"2026-08-31", "2026-08-30"}, got.Dates)
}

func TestTopSellingItemsDefaults(t *testing.T) {
	reader := &fakeReader{topRows: []report.TopSellingItem{
		{SKU: "SKU-A", ItemName: "Item A", TotalSold: 5, TotalRevenue: 50, Rank: 1},
	}}
	w := doGet(t, newTestRouter(reader), "/api/top-selling-items")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, report.WindowAllTime, reader.gotWindow)
	require.Equal(t, report.SortRevenue, reader.gotSort)
	require.True(t, reader.gotDate.IsZero(), "absent date means latest")

	var got TopSellingListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "all_time", got.Period)
	require.Equal(t, 1, got.Count)
	require.Equal(t, "SKU-A", got.Data[0].SKU)
}

func TestTopSellingItemsExplicitParams(t *testing.T) {
	reader := &fakeReader{topRows: []report.TopSellingItem{{SKU: "SKU-A", Rank: 1}}}
	w := doGet(t, newTestRouter(reader), "/api/top-selling-items?period=7_days_ago&sort_type=profit&date=2026-08-30")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, report.Window7Days, reader.gotWindow)
	require.Equal(t, report.SortProfit, reader.gotSort)
	require.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), reader.gotDate)
}

func TestTopSellingItemsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"unknown period", "/api/top-selling-items?period=last_week"},
		{"unknown sort", "/api/top-selling-items?sort_type=margin"},
		{"refund sort on top items", "/api/top-selling-items?sort_type=refund_count"},
		{"bad date", "/api/top-selling-items?date=31-08-2026"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(t, newTestRouter(&fakeReader{}), tc.path)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestTopSellingItemsNotFound(t *testing.T) {
	reader := &fakeReader{topErr: storage.ErrNotFound}
	w := doGet(t, newTestRouter(reader), "/api/top-selling-items?period=1_day_ago")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryAndBrandSummary(t *testing.T) {
	reader := &fakeReader{groupRows: []report.GroupSummary{
		{GroupID: 10, GroupName: "Electronics", TotalSold: 13, TotalRevenue: 160, Rank: 1},
	}}
	router := newTestRouter(reader)

	for _, path := range []string{"/api/category-summary", "/api/brand-summary"} {
		w := doGet(t, router, path+"?sort_type=quantity")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, report.SortQuantity, reader.gotSort)

		var got GroupSummaryListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, "Electronics", got.Data[0].GroupName)
	}
}

func TestGroupSummaryRejectsProfitSort(t *testing.T) {
	w := doGet(t, newTestRouter(&fakeReader{}), "/api/category-summary?sort_type=profit")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefundAnalysisDefaults(t *testing.T) {
	reader := &fakeReader{refundRows: []report.RefundRow{
		{Reason: "Khách đổi ý", RefundCount: 3, ItemsAffected: 2, Rank: 1},
	}}
	w := doGet(t, newTestRouter(reader), "/api/refund-analysis")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, report.SortRefundCount, reader.gotSort)

	var got RefundListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "Khách đổi ý", got.Data[0].Reason)
}

func TestLowStockAlerts(t *testing.T) {
	reader := &fakeReader{alertRows: []report.LowStockAlert{
		{AnalysisDate: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), SKU: "SKU-B", DaysLeft: 5, Level: report.AlertCritical},
	}}
	w := doGet(t, newTestRouter(reader), "/api/low-stock-alerts")

	require.Equal(t, http.StatusOK, w.Code)
	var got LowStockListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "CRITICAL", got.Data[0].AlertLevel)
	require.Equal(t, 5, got.Data[0].DaysLeft)
}

func TestSlowMovingItems(t *testing.T) {
	reader := &fakeReader{slowRows: []report.SlowMovingItem{
		{SKU: "SKU-N2", DaysWithoutSales: 100, StockValue: 500, Rank: 1},
	}}
	w := doGet(t, newTestRouter(reader), "/api/slow-moving-items?sort_type=aging_stock")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, report.SortAgingStock, reader.gotSort)

	var got SlowMovingListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "aging_stock", got.SortType)
	require.Equal(t, "SKU-N2", got.Data[0].SKU)
}

func TestSlowMovingItemsRejectsWindowSort(t *testing.T) {
	w := doGet(t, newTestRouter(&fakeReader{}), "/api/slow-moving-items?sort_type=revenue")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
