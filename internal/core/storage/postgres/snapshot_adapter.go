package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"golang.org/x/sync/errgroup"
)

// SnapshotAdapter implements storage.EntityStore on PostgreSQL. One call loads
// the full transactional entity set with order→line-item associations resolved
// in memory, so every aggregator in a run sees the same data.
type SnapshotAdapter struct {
	db *sql.DB
}

// NewSnapshotAdapter creates a SnapshotAdapter sharing the given pool.
func NewSnapshotAdapter(db *sql.DB) *SnapshotAdapter {
	return &SnapshotAdapter{db: db}
}

// LoadSnapshot loads all entities. The six collections load concurrently, each
// on its own pooled connection; any failure aborts the whole load so a run
// never starts from a partial snapshot.
func (a *SnapshotAdapter) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	var (
		orders     []catalog.Order
		orderItems []catalog.OrderItem
		items      []catalog.Item
		categories []catalog.Category
		brands     []catalog.Brand
		batches    []catalog.Batch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { orders, err = a.loadOrders(gctx); return })
	g.Go(func() (err error) { orderItems, err = a.loadOrderItems(gctx); return })
	g.Go(func() (err error) { items, err = a.loadItems(gctx); return })
	g.Go(func() (err error) { categories, err = a.loadCategories(gctx); return })
	g.Go(func() (err error) { brands, err = a.loadBrands(gctx); return })
	g.Go(func() (err error) { batches, err = a.loadBatches(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	// Attach line items to their orders.
	orderIdx := make(map[int64]*catalog.Order, len(orders))
	for i := range orders {
		orderIdx[orders[i].ID] = &orders[i]
	}
	for _, li := range orderItems {
		if o, ok := orderIdx[li.OrderID]; ok {
			o.Items = append(o.Items, li)
		}
	}

	slog.Info("[Snapshot] Loaded entity set",
		"orders", len(orders),
		"order_items", len(orderItems),
		"items", len(items),
		"categories", len(categories),
		"brands", len(brands),
		"batches", len(batches),
	)
	return catalog.NewSnapshot(orders, items, categories, brands, batches), nil
}

func (a *SnapshotAdapter) loadOrders(ctx context.Context) ([]catalog.Order, error) {
	rows, err := a.db.QueryContext(ctx, querySelectOrders)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []catalog.Order
	for rows.Next() {
		var o catalog.Order
		var shipping, refundReason sql.NullString
		if err := rows.Scan(&o.ID, &o.OrderCode, &o.CustomerID, &o.Platform,
			&shipping, &o.OrderDate, &o.Status, &refundReason); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.ShippingLocation = shipping.String
		o.RefundReason = refundReason.String
		out = append(out, o)
	}
	return out, rows.Err()
}

func (a *SnapshotAdapter) loadOrderItems(ctx context.Context) ([]catalog.OrderItem, error) {
	rows, err := a.db.QueryContext(ctx, querySelectOrderItems)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var out []catalog.OrderItem
	for rows.Next() {
		var li catalog.OrderItem
		if err := rows.Scan(&li.ID, &li.OrderID, &li.ItemID, &li.Quantity,
			&li.PricePerUnit, &li.DiscountAmount); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

func (a *SnapshotAdapter) loadItems(ctx context.Context) ([]catalog.Item, error) {
	rows, err := a.db.QueryContext(ctx, querySelectItems)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []catalog.Item
	for rows.Next() {
		var it catalog.Item
		var brandID, categoryID sql.NullInt64
		var adult sql.NullBool
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.CostPrice, &it.SalePrice,
			&it.StockQuantity, &brandID, &categoryID, &it.IsActive, &adult, &it.NudityScore); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.BrandID = brandID.Int64
		it.CategoryID = categoryID.Int64
		if adult.Valid {
			it.IsAdultContent = &adult.Bool
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (a *SnapshotAdapter) loadCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := a.db.QueryContext(ctx, querySelectCategories)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (a *SnapshotAdapter) loadBrands(ctx context.Context) ([]catalog.Brand, error) {
	rows, err := a.db.QueryContext(ctx, querySelectBrands)
	if err != nil {
		return nil, fmt.Errorf("query brands: %w", err)
	}
	defer rows.Close()

	var out []catalog.Brand
	for rows.Next() {
		var b catalog.Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (a *SnapshotAdapter) loadBatches(ctx context.Context) ([]catalog.Batch, error) {
	rows, err := a.db.QueryContext(ctx, querySelectBatches)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []catalog.Batch
	for rows.Next() {
		var b catalog.Batch
		if err := rows.Scan(&b.ID, &b.SKU, &b.ImportDate, &b.TotalQuantity, &b.RemainQuantity); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
