package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transactional entities owned by the entity store. The engine reads them into
// a Snapshot once per run and never writes them back.

// StatusRefunded marks an order that was returned. Every other status counts
// as a valid sale.
const StatusRefunded = "refunded"

// Brand is a catalog brand referenced by items.
type Brand struct {
	ID   int64
	Name string
}

// Category is a catalog category referenced by items.
type Category struct {
	ID   int64
	Name string
}

// Item is a catalog SKU. BrandID and CategoryID are 0 when the reference is
// absent. IsAdultContent and NudityScore are written by the external content
// classifier and only carried here as part of the shared read schema.
type Item struct {
	ID             int64
	SKU            string
	Name           string
	CostPrice      decimal.Decimal
	SalePrice      decimal.Decimal
	StockQuantity  int
	BrandID        int64
	CategoryID     int64
	IsActive       bool
	IsAdultContent *bool
	NudityScore    decimal.NullDecimal
}

// Batch is an inventory lot for an item. Read for availability, not aggregated.
type Batch struct {
	ID             int64
	SKU            string
	ImportDate     time.Time
	TotalQuantity  int
	RemainQuantity int
}

// Order is one transactional order with its line items attached.
type Order struct {
	ID               int64
	OrderCode        string
	CustomerID       int64
	Platform         string
	ShippingLocation string
	OrderDate        time.Time
	Status           string
	RefundReason     string
	Items            []OrderItem
}

// Refunded reports whether the order is in refunded status.
func (o Order) Refunded() bool {
	return o.Status == StatusRefunded
}

// OrderItem is one line of an order, referencing a single item.
type OrderItem struct {
	ID             int64
	OrderID        int64
	ItemID         int64
	Quantity       int
	PricePerUnit   decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Revenue is the line revenue: price per unit times quantity.
func (oi OrderItem) Revenue() float64 {
	return oi.PricePerUnit.InexactFloat64() * float64(oi.Quantity)
}

// Profit is the line profit against the item's cost price.
func (oi OrderItem) Profit(costPrice decimal.Decimal) float64 {
	return (oi.PricePerUnit.InexactFloat64() - costPrice.InexactFloat64()) * float64(oi.Quantity)
}
