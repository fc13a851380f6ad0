package readapi

import (
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/report"
)

// Response payloads. Dates are formatted as YYYY-MM-DD; monetary values are
// returned as numbers rounded at materialization time.

const dateLayout = "2006-01-02"

// Overview section lengths.
const (
	overviewRankedLimit = 5
	overviewAlertLimit  = 10
)

type DailySalesResponse struct {
	AnalysisDate string  `json:"analysis_date"`
	TotalOrders  int     `json:"total_orders"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	TotalRefunds int     `json:"total_refunds"`
}

func toDailySalesResponse(row report.DailySales) DailySalesResponse {
	return DailySalesResponse{
		AnalysisDate: row.AnalysisDate.Format(dateLayout),
		TotalOrders:  row.TotalOrders,
		TotalRevenue: row.TotalRevenue,
		TotalProfit:  row.TotalProfit,
		TotalRefunds: row.TotalRefunds,
	}
}

type DailySalesListResponse struct {
	Period string               `json:"period"`
	Count  int                  `json:"count"`
	Data   []DailySalesResponse `json:"data"`
}

func toDailySalesListResponse(window report.Window, rows []report.DailySales) DailySalesListResponse {
	data := make([]DailySalesResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, toDailySalesResponse(r))
	}
	return DailySalesListResponse{Period: string(window), Count: len(data), Data: data}
}

type TopSellingItemResponse struct {
	SKU          string  `json:"sku"`
	ItemName     string  `json:"item_name"`
	TotalSold    int     `json:"total_quantity_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	Rank         int     `json:"rank_position"`
}

type TopSellingListResponse struct {
	Period   string                   `json:"period"`
	SortType string                   `json:"sort_type"`
	Count    int                      `json:"count"`
	Data     []TopSellingItemResponse `json:"data"`
}

func toTopSellingResponse(window report.Window, sortBy report.SortDimension, rows []report.TopSellingItem) TopSellingListResponse {
	data := make([]TopSellingItemResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, TopSellingItemResponse{
			SKU:          r.SKU,
			ItemName:     r.ItemName,
			TotalSold:    r.TotalSold,
			TotalRevenue: r.TotalRevenue,
			TotalProfit:  r.TotalProfit,
			Rank:         r.Rank,
		})
	}
	return TopSellingListResponse{
		Period:   string(window),
		SortType: string(sortBy),
		Count:    len(data),
		Data:     data,
	}
}

type GroupSummaryResponse struct {
	GroupID      int64   `json:"group_id"`
	GroupName    string  `json:"group_name"`
	TotalSold    int     `json:"total_quantity_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	ProfitMargin float64 `json:"profit_margin"`
	Rank         int     `json:"rank_position"`
}

type GroupSummaryListResponse struct {
	Period   string                 `json:"period"`
	SortType string                 `json:"sort_type"`
	Count    int                    `json:"count"`
	Data     []GroupSummaryResponse `json:"data"`
}

func toGroupSummaryResponse(window report.Window, sortBy report.SortDimension, rows []report.GroupSummary) GroupSummaryListResponse {
	data := make([]GroupSummaryResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, GroupSummaryResponse{
			GroupID:      r.GroupID,
			GroupName:    r.GroupName,
			TotalSold:    r.TotalSold,
			TotalRevenue: r.TotalRevenue,
			TotalProfit:  r.TotalProfit,
			ProfitMargin: r.ProfitMargin,
			Rank:         r.Rank,
		})
	}
	return GroupSummaryListResponse{
		Period:   string(window),
		SortType: string(sortBy),
		Count:    len(data),
		Data:     data,
	}
}

type RefundRowResponse struct {
	SKU            string  `json:"sku,omitempty"`
	ItemName       string  `json:"item_name,omitempty"`
	TotalOrders    int     `json:"total_orders"`
	RefundCount    int     `json:"refund_orders"`
	RefundQuantity int     `json:"refund_quantity"`
	RefundRate     float64 `json:"refund_rate"`
	Reason         string  `json:"refund_reason"`
	ItemsAffected  int     `json:"items_affected,omitempty"`
	Rank           int     `json:"rank_position"`
}

type RefundListResponse struct {
	Period   string              `json:"period"`
	SortType string              `json:"sort_type"`
	Count    int                 `json:"count"`
	Data     []RefundRowResponse `json:"data"`
}

func toRefundResponse(window report.Window, sortBy report.SortDimension, rows []report.RefundRow) RefundListResponse {
	data := make([]RefundRowResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, RefundRowResponse{
			SKU:            r.SKU,
			ItemName:       r.ItemName,
			TotalOrders:    r.TotalOrders,
			RefundCount:    r.RefundCount,
			RefundQuantity: r.RefundQuantity,
			RefundRate:     r.RefundRate,
			Reason:         r.Reason,
			ItemsAffected:  r.ItemsAffected,
			Rank:           r.Rank,
		})
	}
	return RefundListResponse{
		Period:   string(window),
		SortType: string(sortBy),
		Count:    len(data),
		Data:     data,
	}
}

type LowStockAlertResponse struct {
	AnalysisDate  string  `json:"analysis_date"`
	SKU           string  `json:"sku"`
	ItemName      string  `json:"item_name"`
	CurrentStock  int     `json:"current_stock"`
	AvgDailySales float64 `json:"avg_daily_sales"`
	DaysLeft      int     `json:"days_left"`
	AlertLevel    string  `json:"alert_level"`
}

type LowStockListResponse struct {
	Count int                     `json:"count"`
	Data  []LowStockAlertResponse `json:"data"`
}

func toLowStockResponse(rows []report.LowStockAlert) LowStockListResponse {
	data := make([]LowStockAlertResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, LowStockAlertResponse{
			AnalysisDate:  r.AnalysisDate.Format(dateLayout),
			SKU:           r.SKU,
			ItemName:      r.ItemName,
			CurrentStock:  r.CurrentStock,
			AvgDailySales: r.AvgDailySales,
			DaysLeft:      r.DaysLeft,
			AlertLevel:    string(r.Level),
		})
	}
	return LowStockListResponse{Count: len(data), Data: data}
}

type SlowMovingItemResponse struct {
	SKU              string  `json:"sku"`
	ItemName         string  `json:"item_name"`
	BrandName        string  `json:"brand_name"`
	CategoryName     string  `json:"category_name"`
	CurrentStock     int     `json:"current_stock"`
	TotalSold        int     `json:"total_quantity_sold"`
	AvgDailySales    float64 `json:"avg_daily_sales"`
	DaysWithoutSales int     `json:"days_without_sales"`
	StockValue       float64 `json:"stock_value"`
	PotentialLoss    float64 `json:"potential_loss"`
	Rank             int     `json:"rank_position"`
}

type SlowMovingListResponse struct {
	SortType string                   `json:"sort_type"`
	Count    int                      `json:"count"`
	Data     []SlowMovingItemResponse `json:"data"`
}

func toSlowMovingResponse(sortBy report.SortDimension, rows []report.SlowMovingItem) SlowMovingListResponse {
	data := make([]SlowMovingItemResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, SlowMovingItemResponse{
			SKU:              r.SKU,
			ItemName:         r.ItemName,
			BrandName:        r.BrandName,
			CategoryName:     r.CategoryName,
			CurrentStock:     r.CurrentStock,
			TotalSold:        r.TotalSold,
			AvgDailySales:    r.AvgDailySales,
			DaysWithoutSales: r.DaysWithoutSales,
			StockValue:       r.StockValue,
			PotentialLoss:    r.PotentialLoss,
			Rank:             r.Rank,
		})
	}
	return SlowMovingListResponse{SortType: string(sortBy), Count: len(data), Data: data}
}

// SummaryOverviewResponse is the composite dashboard payload: the daily row
// for the target date plus the head of each all_time revenue ranking.
type SummaryOverviewResponse struct {
	AnalysisDate    string                   `json:"analysis_date"`
	DailySales      DailySalesResponse       `json:"daily_sales"`
	TopSellingItems []TopSellingItemResponse `json:"top_selling_items"`
	TopCategories   []GroupSummaryResponse   `json:"top_categories"`
	TopBrands       []GroupSummaryResponse   `json:"top_brands"`
	LowStockAlerts  []LowStockAlertResponse  `json:"low_stock_alerts"`
}

func toSummaryOverviewResponse(
	daily report.DailySales,
	top []report.TopSellingItem,
	categories []report.GroupSummary,
	brands []report.GroupSummary,
	alerts []report.LowStockAlert,
) SummaryOverviewResponse {
	return SummaryOverviewResponse{
		AnalysisDate:    daily.AnalysisDate.Format(dateLayout),
		DailySales:      toDailySalesResponse(daily),
		TopSellingItems: toTopSellingResponse(report.WindowAllTime, report.SortRevenue, top).Data,
		TopCategories:   toGroupSummaryResponse(report.WindowAllTime, report.SortRevenue, categories).Data,
		TopBrands:       toGroupSummaryResponse(report.WindowAllTime, report.SortRevenue, brands).Data,
		LowStockAlerts:  toLowStockResponse(alerts).Data,
	}
}

func headTopSelling(rows []report.TopSellingItem, n int) []report.TopSellingItem {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

func headGroups(rows []report.GroupSummary, n int) []report.GroupSummary {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

func headAlerts(rows []report.LowStockAlert, n int) []report.LowStockAlert {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

type PeriodsResponse struct {
	Periods []string `json:"periods"`
}

func toPeriodsResponse(periods []report.Window) PeriodsResponse {
	out := make([]string, 0, len(periods))
	for _, p := range periods {
		out = append(out, string(p))
	}
	return PeriodsResponse{Periods: out}
}

type DatesResponse struct {
	Dates []string `json:"dates"`
}

func toDatesResponse(dates []time.Time) DatesResponse {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(dateLayout))
	}
	return DatesResponse{Dates: out}
}
