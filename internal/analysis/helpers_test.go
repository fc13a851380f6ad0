package analysis

import (
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/shopspring/decimal"
)

// Fixture builders shared by the aggregator tests.

var testAsOf = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func testItem(id int64, sku string, cost, sale float64, stock int) catalog.Item {
	return catalog.Item{
		ID:            id,
		SKU:           sku,
		Name:          "Item " + sku,
		CostPrice:     dec(cost),
		SalePrice:     dec(sale),
		StockQuantity: stock,
		IsActive:      true,
	}
}

func testOrder(id int64, daysAgo int, status string, items ...catalog.OrderItem) catalog.Order {
	return catalog.Order{
		ID:        id,
		OrderCode: "ORD-" + time.Duration(id).String(),
		Platform:  "shopee",
		OrderDate: testAsOf.AddDate(0, 0, -daysAgo),
		Status:    status,
		Items:     items,
	}
}

func refundedOrder(id int64, daysAgo int, reason string, items ...catalog.OrderItem) catalog.Order {
	o := testOrder(id, daysAgo, catalog.StatusRefunded, items...)
	o.RefundReason = reason
	return o
}

func line(itemID int64, qty int, price float64) catalog.OrderItem {
	return catalog.OrderItem{ItemID: itemID, Quantity: qty, PricePerUnit: dec(price)}
}
