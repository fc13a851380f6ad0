package analysis

import (
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
)

// DailySales rolls up orders placed on the as-of day. It is independent of the
// window matrix: the analysis day is always the current one.
func DailySales(snap *catalog.Snapshot, asOf time.Time) report.DailySales {
	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var todays []catalog.Order
	for _, o := range snap.Orders {
		if !o.OrderDate.Before(dayStart) && o.OrderDate.Before(dayEnd) {
			todays = append(todays, o)
		}
	}

	out := report.DailySales{AnalysisDate: dayStart}
	for _, o := range todays {
		if o.Refunded() {
			out.TotalRefunds++
			continue
		}
		out.TotalOrders++
		for _, li := range o.Items {
			item, ok := snap.ItemByID(li.ItemID)
			if !ok {
				continue
			}
			out.TotalRevenue += li.Revenue()
			out.TotalProfit += li.Profit(item.CostPrice)
		}
	}
	return out
}
