package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
)

// refundKey groups refunded line items by item and canonical reason.
type refundKey struct {
	itemID int64
	reason string
}

type refundGroup struct {
	key            refundKey
	refundCount    int
	refundQuantity int
}

// RefundAnalysis ranks refund activity inside the window. Three dimensions
// rank the per-(item, reason) groups directly; refund_reason re-aggregates
// across items by reason only and produces rows without SKU or item name.
//
// The refund rate denominator is the quantity sold in non-refunded orders for
// the same item within the same window; items never sold get a rate of 0.
func RefundAnalysis(
	snap *catalog.Snapshot,
	asOf time.Time,
	window report.Window,
	sortBy report.SortDimension,
	limit int,
	normalizer *ReasonNormalizer,
) ([]report.RefundRow, error) {
	rng, err := window.Resolve(asOf)
	if err != nil {
		return nil, err
	}
	if !sortBy.Allowed(report.RefundSorts()) {
		return nil, fmt.Errorf("refund sort %q: %w", string(sortBy), report.ErrInvalidSortType)
	}

	inWindow := snap.OrdersWithin(rng)

	// Group refunded line items by (item, canonical reason), first-seen order.
	byKey := make(map[refundKey]*refundGroup)
	var groups []*refundGroup
	for _, o := range catalog.RefundedOrders(inWindow) {
		reason := normalizer.Normalize(o.RefundReason)
		for _, li := range o.Items {
			key := refundKey{itemID: li.ItemID, reason: reason}
			g, exists := byKey[key]
			if !exists {
				g = &refundGroup{key: key}
				byKey[key] = g
				groups = append(groups, g)
			}
			g.refundCount++
			g.refundQuantity += li.Quantity
		}
	}

	// Denominator: quantity sold in valid orders per item within the window.
	soldQty := make(map[int64]int)
	for _, o := range catalog.ValidOrders(inWindow) {
		for _, li := range o.Items {
			soldQty[li.ItemID] += li.Quantity
		}
	}

	analysisDate := dateOf(asOf)
	var rows []report.RefundRow
	for _, g := range groups {
		item, ok := snap.ItemByID(g.key.itemID)
		if !ok {
			continue
		}
		sold := soldQty[g.key.itemID]
		rate := 0.0
		if sold > 0 {
			// Unclamped: refunds of orders sold before the window can push
			// the rate past 100.
			rate = float64(g.refundCount) / float64(sold) * 100
		}
		rows = append(rows, report.RefundRow{
			AnalysisDate:   analysisDate,
			Window:         window,
			SortBy:         sortBy,
			SKU:            item.SKU,
			ItemName:       item.Name,
			TotalOrders:    sold,
			RefundCount:    g.refundCount,
			RefundQuantity: g.refundQuantity,
			RefundRate:     rate,
			Reason:         g.key.reason,
		})
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	if sortBy == report.SortRefundReason {
		rows = regroupByReason(rows, analysisDate, window)
	} else {
		var less func(a, b report.RefundRow) bool
		switch sortBy {
		case report.SortRefundCount:
			less = func(a, b report.RefundRow) bool { return a.RefundCount > b.RefundCount }
		case report.SortRefundRate:
			less = func(a, b report.RefundRow) bool { return a.RefundRate > b.RefundRate }
		case report.SortRefundQuantity:
			less = func(a, b report.RefundRow) bool { return a.RefundQuantity > b.RefundQuantity }
		}
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}

	if len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// regroupByReason collapses per-(item, reason) rows into one row per reason,
// counting distinct affected items, and ranks reasons by total refund count.
// The collapsed rows intentionally carry no SKU or item name.
func regroupByReason(rows []report.RefundRow, analysisDate time.Time, window report.Window) []report.RefundRow {
	type reasonTotals struct {
		reason         string
		refundCount    int
		refundQuantity int
		totalOrders    int
		itemsAffected  int
	}

	byReason := make(map[string]*reasonTotals)
	var ordered []*reasonTotals
	for _, r := range rows {
		t, exists := byReason[r.Reason]
		if !exists {
			t = &reasonTotals{reason: r.Reason}
			byReason[r.Reason] = t
			ordered = append(ordered, t)
		}
		t.refundCount += r.RefundCount
		t.refundQuantity += r.RefundQuantity
		t.totalOrders += r.TotalOrders
		t.itemsAffected++
	}

	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].refundCount > ordered[j].refundCount })

	out := make([]report.RefundRow, 0, len(ordered))
	for _, t := range ordered {
		rate := 0.0
		if t.totalOrders > 0 {
			rate = float64(t.refundCount) / float64(t.totalOrders) * 100
		}
		out = append(out, report.RefundRow{
			AnalysisDate:   analysisDate,
			Window:         window,
			SortBy:         report.SortRefundReason,
			TotalOrders:    t.totalOrders,
			RefundCount:    t.refundCount,
			RefundQuantity: t.refundQuantity,
			RefundRate:     rate,
			Reason:         t.reason,
			ItemsAffected:  t.itemsAffected,
		})
	}
	return out
}
