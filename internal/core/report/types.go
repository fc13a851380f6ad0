package report

import "time"

// Summary rows produced by the aggregators. Monetary values and rates stay
// float64 through aggregation; the materializer converts them to fixed-point
// decimal at the persistence boundary.

// DailySales is the single-row daily rollup, keyed by analysis date.
type DailySales struct {
	AnalysisDate time.Time
	TotalOrders  int
	TotalRevenue float64
	TotalProfit  float64
	TotalRefunds int
}

// TopSellingItem is one ranked row of the top-selling report,
// keyed by (analysis_date, window, sort dimension, sku).
type TopSellingItem struct {
	AnalysisDate time.Time
	Window       Window
	SortBy       SortDimension
	SKU          string
	ItemName     string
	TotalSold    int
	TotalRevenue float64
	TotalProfit  float64
	ProfitMargin float64
	Rank         int
}

// GroupSummary is one ranked row of the category or brand rollup,
// keyed by (analysis_date, window, sort dimension, group id).
type GroupSummary struct {
	AnalysisDate time.Time
	Window       Window
	SortBy       SortDimension
	GroupID      int64
	GroupName    string
	TotalSold    int
	TotalRevenue float64
	TotalProfit  float64
	ProfitMargin float64
	Rank         int
}

// RefundRow is one ranked row of the refund analysis. For the refund_reason
// dimension the row is aggregated across items: SKU and ItemName are empty and
// ItemsAffected carries the number of distinct items behind the reason.
type RefundRow struct {
	AnalysisDate   time.Time
	Window         Window
	SortBy         SortDimension
	SKU            string
	ItemName       string
	TotalOrders    int
	RefundCount    int
	RefundQuantity int
	RefundRate     float64
	Reason         string
	ItemsAffected  int
	Rank           int
}

// AlertLevel is the first-pass low-stock classification.
type AlertLevel string

const (
	AlertUrgent   AlertLevel = "URGENT"
	AlertCritical AlertLevel = "CRITICAL"
	AlertWarning  AlertLevel = "WARNING"
)

// DaysLeftInfinite is the sentinel runway for items with no recent sales.
// Such items never trigger an alert and are excluded from the report.
const DaysLeftInfinite = 999

// LowStockAlert is one row of the low-stock report, keyed by (analysis_date, sku).
// Level is computed by the aggregator from the days-left runway; the materializer
// independently derives a second classification (alert_type) from the same runway
// using different thresholds. Both are persisted.
type LowStockAlert struct {
	AnalysisDate  time.Time
	SKU           string
	ItemName      string
	CurrentStock  int
	AvgDailySales float64
	DaysLeft      int
	Level         AlertLevel
}

// SlowMovingItem is one ranked row of the slow-moving report,
// keyed by (analysis_date, sort dimension, sku).
type SlowMovingItem struct {
	AnalysisDate     time.Time
	SortBy           SortDimension
	SKU              string
	ItemName         string
	BrandName        string
	CategoryName     string
	CurrentStock     int
	TotalSold        int
	AvgDailySales    float64
	DaysWithoutSales int
	StockValue       float64
	PotentialLoss    float64
	Rank             int
}
