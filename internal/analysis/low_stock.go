package analysis

import (
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
)

// lowStockTrailingDays is the fixed observation window for sales velocity.
const lowStockTrailingDays = 30

// LowStockAlerts evaluates stock runway for every in-stock item over the
// trailing 30 days from asOf. Items whose runway exceeds the warning threshold
// (or that sold nothing at all, runway "infinite") are excluded.
//
// The returned Level is the first classification pass; the materializer derives
// a second, coarser alert type from DaysLeft with its own thresholds. The two
// schemes are intentionally distinct and must not be merged.
func LowStockAlerts(snap *catalog.Snapshot, asOf time.Time) []report.LowStockAlert {
	cutoff := asOf.AddDate(0, 0, -lowStockTrailingDays)

	// Quantity sold per item in the trailing window, one pass over the orders.
	recentQty := make(map[int64]int)
	for _, o := range snap.Orders {
		if o.Refunded() || o.OrderDate.Before(cutoff) {
			continue
		}
		for _, li := range o.Items {
			recentQty[li.ItemID] += li.Quantity
		}
	}

	analysisDate := dateOf(asOf)
	var alerts []report.LowStockAlert
	for i := range snap.Items {
		item := &snap.Items[i]
		if item.StockQuantity <= 0 {
			continue
		}

		sold := recentQty[item.ID]
		avgDaily := 0.0
		if sold > 0 {
			avgDaily = float64(sold) / lowStockTrailingDays
		}
		daysLeft := report.DaysLeftInfinite
		if avgDaily > 0 {
			daysLeft = int(float64(item.StockQuantity) / avgDaily)
		}

		var level report.AlertLevel
		switch {
		case daysLeft <= 3:
			level = report.AlertUrgent
		case daysLeft <= 7:
			level = report.AlertCritical
		case daysLeft <= 14:
			level = report.AlertWarning
		default:
			continue
		}

		alerts = append(alerts, report.LowStockAlert{
			AnalysisDate:  analysisDate,
			SKU:           item.SKU,
			ItemName:      item.Name,
			CurrentStock:  item.StockQuantity,
			AvgDailySales: avgDaily,
			DaysLeft:      daysLeft,
			Level:         level,
		})
	}
	return alerts
}
