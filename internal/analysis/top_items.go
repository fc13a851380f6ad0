package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
)

// DefaultLimit caps ranked reports when the caller passes a non-positive limit.
const DefaultLimit = 10

// itemSales accumulates per-item totals over a window.
type itemSales struct {
	itemID    int64
	totalSold int
	revenue   float64
	profit    float64
}

// TopSellingItems ranks items sold inside the window by the requested metric.
// Ties keep the order items were first seen in the snapshot (stable sort), so
// repeated runs over the same data produce identical rows.
func TopSellingItems(
	snap *catalog.Snapshot,
	asOf time.Time,
	window report.Window,
	sortBy report.SortDimension,
	limit int,
) ([]report.TopSellingItem, error) {
	rng, err := window.Resolve(asOf)
	if err != nil {
		return nil, err
	}

	var less func(a, b *itemSales) bool
	switch sortBy {
	case report.SortRevenue:
		less = func(a, b *itemSales) bool { return a.revenue > b.revenue }
	case report.SortProfit:
		less = func(a, b *itemSales) bool { return a.profit > b.profit }
	case report.SortQuantity:
		less = func(a, b *itemSales) bool { return a.totalSold > b.totalSold }
	default:
		return nil, fmt.Errorf("top-selling sort %q: %w", string(sortBy), report.ErrInvalidSortType)
	}

	groups := accumulateItemSales(snap, rng)
	sort.SliceStable(groups, func(i, j int) bool { return less(groups[i], groups[j]) })
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(groups) > limit {
		groups = groups[:limit]
	}

	analysisDate := dateOf(asOf)
	rows := make([]report.TopSellingItem, 0, len(groups))
	for rank, g := range groups {
		item, _ := snap.ItemByID(g.itemID)
		rows = append(rows, report.TopSellingItem{
			AnalysisDate: analysisDate,
			Window:       window,
			SortBy:       sortBy,
			SKU:          item.SKU,
			ItemName:     item.Name,
			TotalSold:    g.totalSold,
			TotalRevenue: g.revenue,
			TotalProfit:  g.profit,
			ProfitMargin: margin(g.profit, g.revenue),
			Rank:         rank + 1,
		})
	}
	return rows, nil
}

// accumulateItemSales folds valid line items within the range into per-item
// totals, in first-seen order. Line items whose item reference is missing from
// the snapshot are dropped so every returned group can be fully described.
func accumulateItemSales(snap *catalog.Snapshot, rng report.Range) []*itemSales {
	byID := make(map[int64]*itemSales)
	var ordered []*itemSales

	for _, o := range catalog.ValidOrders(snap.OrdersWithin(rng)) {
		for _, li := range o.Items {
			item, ok := snap.ItemByID(li.ItemID)
			if !ok {
				continue
			}
			g, exists := byID[li.ItemID]
			if !exists {
				g = &itemSales{itemID: li.ItemID}
				byID[li.ItemID] = g
				ordered = append(ordered, g)
			}
			g.totalSold += li.Quantity
			g.revenue += li.Revenue()
			g.profit += li.Profit(item.CostPrice)
		}
	}
	return ordered
}

// margin computes profit margin as a percentage, 0 when revenue is 0.
func margin(profit, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return profit / revenue * 100
}

// dateOf truncates an instant to its calendar day.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
