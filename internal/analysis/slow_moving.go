package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
)

// fallbackHistoryDays stands in for the observed history span when the store
// has no orders, or the earliest order is not in the past.
const fallbackHistoryDays = 365

// DefaultSlowMovingLimit caps each slow-moving classification list.
const DefaultSlowMovingLimit = 20

// slowMovingStats is the per-item lifetime view the classifications filter on.
type slowMovingStats struct {
	item             *catalog.Item
	totalSold        int
	avgDailySales    float64
	daysWithoutSales int
	stockValue       float64
	potentialLoss    float64
}

// classify assigns an in-stock item to exactly one slow-moving class, first
// match wins. The order makes the four classes pairwise disjoint: an item that
// never sold is always no_sales, never high_stock_low_sales.
func classify(s *slowMovingStats) report.SortDimension {
	switch {
	case s.totalSold == 0:
		return report.SortNoSales
	case float64(s.totalSold) < float64(s.item.StockQuantity)*0.05:
		return report.SortLowSales
	case s.item.StockQuantity > 10 && s.avgDailySales < 1:
		return report.SortHighStockLowSales
	case s.daysWithoutSales >= 30:
		return report.SortAgingStock
	default:
		return ""
	}
}

// SlowMovingItems classifies in-stock items over the entire order history span
// and ranks one classification at a time. Each item lands in at most one of
// the four classes: no_sales, low_sales, high_stock_low_sales, aging_stock.
func SlowMovingItems(
	snap *catalog.Snapshot,
	asOf time.Time,
	sortBy report.SortDimension,
	limit int,
) ([]report.SlowMovingItem, error) {
	totalDays := historyDays(snap, asOf)

	// Lifetime quantity sold per item across valid orders, single pass.
	lifetimeQty := make(map[int64]int)
	for _, o := range snap.Orders {
		if o.Refunded() {
			continue
		}
		for _, li := range o.Items {
			lifetimeQty[li.ItemID] += li.Quantity
		}
	}

	var stats []*slowMovingStats
	for i := range snap.Items {
		item := &snap.Items[i]
		if item.StockQuantity <= 0 {
			continue
		}
		sold := lifetimeQty[item.ID]
		stockValue := item.CostPrice.InexactFloat64() * float64(item.StockQuantity)
		potentialLoss := stockValue
		if sold > 0 {
			potentialLoss = stockValue * 0.5
		}
		daysWithoutSales := totalDays
		if sold > 0 {
			daysWithoutSales = totalDays - sold
		}
		stats = append(stats, &slowMovingStats{
			item:             item,
			totalSold:        sold,
			avgDailySales:    float64(sold) / float64(totalDays),
			daysWithoutSales: daysWithoutSales,
			stockValue:       stockValue,
			potentialLoss:    potentialLoss,
		})
	}

	var less func(a, b *slowMovingStats) bool
	switch sortBy {
	case report.SortNoSales, report.SortHighStockLowSales:
		less = func(a, b *slowMovingStats) bool { return a.stockValue > b.stockValue }
	case report.SortLowSales:
		less = func(a, b *slowMovingStats) bool { return a.potentialLoss > b.potentialLoss }
	case report.SortAgingStock:
		less = func(a, b *slowMovingStats) bool { return a.daysWithoutSales > b.daysWithoutSales }
	default:
		return nil, fmt.Errorf("slow-moving sort %q: %w", string(sortBy), report.ErrInvalidSortType)
	}

	var selected []*slowMovingStats
	for _, s := range stats {
		if classify(s) == sortBy {
			selected = append(selected, s)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool { return less(selected[i], selected[j]) })
	if limit <= 0 {
		limit = DefaultSlowMovingLimit
	}
	if len(selected) > limit {
		selected = selected[:limit]
	}

	analysisDate := dateOf(asOf)
	rows := make([]report.SlowMovingItem, 0, len(selected))
	for rank, s := range selected {
		rows = append(rows, report.SlowMovingItem{
			AnalysisDate:     analysisDate,
			SortBy:           sortBy,
			SKU:              s.item.SKU,
			ItemName:         s.item.Name,
			BrandName:        snap.BrandName(s.item),
			CategoryName:     snap.CategoryName(s.item),
			CurrentStock:     s.item.StockQuantity,
			TotalSold:        s.totalSold,
			AvgDailySales:    s.avgDailySales,
			DaysWithoutSales: s.daysWithoutSales,
			StockValue:       s.stockValue,
			PotentialLoss:    s.potentialLoss,
			Rank:             rank + 1,
		})
	}
	return rows, nil
}

// historyDays is the span in days between the earliest order and asOf.
// Falls back to a fixed year when there is no order history or the earliest
// order is not strictly in the past — the fallback takes precedence over a
// zero or negative span.
func historyDays(snap *catalog.Snapshot, asOf time.Time) int {
	if len(snap.Orders) == 0 {
		return fallbackHistoryDays
	}
	first := snap.Orders[0].OrderDate
	for _, o := range snap.Orders[1:] {
		if o.OrderDate.Before(first) {
			first = o.OrderDate
		}
	}
	days := int(asOf.Sub(first).Hours() / 24)
	if days <= 0 {
		return fallbackHistoryDays
	}
	return days
}
