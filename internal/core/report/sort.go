package report

import "errors"

// Sentinel errors for boundary validation. Aggregators wrap these with the
// offending value; callers test with errors.Is.
var (
	ErrInvalidWindow   = errors.New("invalid analysis window")
	ErrInvalidSortType = errors.New("invalid sort type")
)

// SortDimension is the metric a report family ranks its rows by. Each family
// accepts its own subset; the aggregator rejects anything else with
// ErrInvalidSortType.
type SortDimension string

const (
	SortRevenue  SortDimension = "revenue"
	SortProfit   SortDimension = "profit"
	SortQuantity SortDimension = "quantity"

	SortRefundCount    SortDimension = "refund_count"
	SortRefundRate     SortDimension = "refund_rate"
	SortRefundQuantity SortDimension = "refund_quantity"
	SortRefundReason   SortDimension = "refund_reason"

	SortNoSales           SortDimension = "no_sales"
	SortLowSales          SortDimension = "low_sales"
	SortHighStockLowSales SortDimension = "high_stock_low_sales"
	SortAgingStock        SortDimension = "aging_stock"
)

// TopItemSorts returns the sort dimensions accepted by the top-selling report.
func TopItemSorts() []SortDimension {
	return []SortDimension{SortRevenue, SortProfit, SortQuantity}
}

// GroupSorts returns the sort dimensions accepted by the category and brand rollups.
func GroupSorts() []SortDimension {
	return []SortDimension{SortRevenue, SortQuantity}
}

// RefundSorts returns the sort dimensions accepted by the refund analysis.
func RefundSorts() []SortDimension {
	return []SortDimension{SortRefundCount, SortRefundRate, SortRefundQuantity, SortRefundReason}
}

// SlowMovingSorts returns the classification dimensions of the slow-moving report.
func SlowMovingSorts() []SortDimension {
	return []SortDimension{SortNoSales, SortLowSales, SortHighStockLowSales, SortAgingStock}
}

// Allowed reports whether d is one of the given dimensions.
func (d SortDimension) Allowed(set []SortDimension) bool {
	for _, s := range set {
		if s == d {
			return true
		}
	}
	return false
}
