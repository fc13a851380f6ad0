package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
)

// groupSales accumulates totals for one category or brand.
type groupSales struct {
	groupID   int64
	groupName string
	totalSold int
	revenue   float64
	profit    float64
}

// CategoryRollup ranks categories by sales inside the window. Line items whose
// item has no resolvable category are excluded.
func CategoryRollup(
	snap *catalog.Snapshot,
	asOf time.Time,
	window report.Window,
	sortBy report.SortDimension,
	limit int,
) ([]report.GroupSummary, error) {
	return groupRollup(snap, asOf, window, sortBy, limit, "category", func(item *catalog.Item) (int64, string, bool) {
		c, ok := snap.CategoryByID(item.CategoryID)
		if !ok {
			return 0, "", false
		}
		return c.ID, c.Name, true
	})
}

// BrandRollup ranks brands by sales inside the window. Line items whose item
// has no resolvable brand are excluded.
func BrandRollup(
	snap *catalog.Snapshot,
	asOf time.Time,
	window report.Window,
	sortBy report.SortDimension,
	limit int,
) ([]report.GroupSummary, error) {
	return groupRollup(snap, asOf, window, sortBy, limit, "brand", func(item *catalog.Item) (int64, string, bool) {
		b, ok := snap.BrandByID(item.BrandID)
		if !ok {
			return 0, "", false
		}
		return b.ID, b.Name, true
	})
}

// groupRollup is the shared grouping algorithm behind the category and brand
// reports: accumulate valid line items per group in first-seen order, rank by
// the requested metric, truncate, assign dense ranks.
func groupRollup(
	snap *catalog.Snapshot,
	asOf time.Time,
	window report.Window,
	sortBy report.SortDimension,
	limit int,
	family string,
	keyFn func(item *catalog.Item) (int64, string, bool),
) ([]report.GroupSummary, error) {
	rng, err := window.Resolve(asOf)
	if err != nil {
		return nil, err
	}

	var less func(a, b *groupSales) bool
	switch sortBy {
	case report.SortRevenue:
		less = func(a, b *groupSales) bool { return a.revenue > b.revenue }
	case report.SortQuantity:
		less = func(a, b *groupSales) bool { return a.totalSold > b.totalSold }
	default:
		return nil, fmt.Errorf("%s sort %q: %w", family, string(sortBy), report.ErrInvalidSortType)
	}

	byID := make(map[int64]*groupSales)
	var ordered []*groupSales
	for _, o := range catalog.ValidOrders(snap.OrdersWithin(rng)) {
		for _, li := range o.Items {
			item, ok := snap.ItemByID(li.ItemID)
			if !ok {
				continue
			}
			id, name, ok := keyFn(item)
			if !ok {
				continue
			}
			g, exists := byID[id]
			if !exists {
				g = &groupSales{groupID: id, groupName: name}
				byID[id] = g
				ordered = append(ordered, g)
			}
			g.totalSold += li.Quantity
			g.revenue += li.Revenue()
			g.profit += li.Profit(item.CostPrice)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	analysisDate := dateOf(asOf)
	rows := make([]report.GroupSummary, 0, len(ordered))
	for rank, g := range ordered {
		rows = append(rows, report.GroupSummary{
			AnalysisDate: analysisDate,
			Window:       window,
			SortBy:       sortBy,
			GroupID:      g.groupID,
			GroupName:    g.groupName,
			TotalSold:    g.totalSold,
			TotalRevenue: g.revenue,
			TotalProfit:  g.profit,
			ProfitMargin: margin(g.profit, g.revenue),
			Rank:         rank + 1,
		})
	}
	return rows, nil
}
