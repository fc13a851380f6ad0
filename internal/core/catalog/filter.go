package catalog

import "github.com/bizlens-lab/bizlens/internal/core/report"

// OrdersWithin returns the orders whose order timestamp falls inside the
// resolved window, inclusive on both ends. Order of the snapshot is preserved,
// which keeps downstream rank ties deterministic.
func (s *Snapshot) OrdersWithin(r report.Range) []Order {
	var out []Order
	for _, o := range s.Orders {
		if r.Contains(o.OrderDate) {
			out = append(out, o)
		}
	}
	return out
}

// ValidOrders filters to orders that count as sales: anything not refunded.
func ValidOrders(orders []Order) []Order {
	var out []Order
	for _, o := range orders {
		if !o.Refunded() {
			out = append(out, o)
		}
	}
	return out
}

// RefundedOrders filters to refunded orders only.
func RefundedOrders(orders []Order) []Order {
	var out []Order
	for _, o := range orders {
		if o.Refunded() {
			out = append(out, o)
		}
	}
	return out
}
