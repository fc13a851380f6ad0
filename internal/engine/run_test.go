package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizlens-lab/bizlens/internal/analysis"
	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeEntityStore struct {
	snap *catalog.Snapshot
	err  error
}

func (f *fakeEntityStore) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	return f.snap, f.err
}

// partitionKey identifies one materialized partition in the fake store.
type partitionKey struct {
	report string
	window report.Window
	sortBy report.SortDimension
}

type fakeSummaryStore struct {
	saved  map[partitionKey]int
	failOn map[partitionKey]error
	daily  []report.DailySales
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{
		saved:  make(map[partitionKey]int),
		failOn: make(map[partitionKey]error),
	}
}

func (f *fakeSummaryStore) record(key partitionKey, rows int) error {
	if err, ok := f.failOn[key]; ok {
		return err
	}
	f.saved[key] = rows
	return nil
}

func (f *fakeSummaryStore) SaveDailySales(ctx context.Context, row report.DailySales) error {
	key := partitionKey{report: "daily_sales"}
	if err, ok := f.failOn[key]; ok {
		return err
	}
	f.daily = append(f.daily, row)
	f.saved[key] = 1
	return nil
}

func (f *fakeSummaryStore) ReplaceTopSellingItems(ctx context.Context, date time.Time, w report.Window, s report.SortDimension, rows []report.TopSellingItem) error {
	return f.record(partitionKey{"top_selling_items", w, s}, len(rows))
}

func (f *fakeSummaryStore) ReplaceCategorySummaries(ctx context.Context, date time.Time, w report.Window, s report.SortDimension, rows []report.GroupSummary) error {
	return f.record(partitionKey{"category_summary", w, s}, len(rows))
}

func (f *fakeSummaryStore) ReplaceBrandSummaries(ctx context.Context, date time.Time, w report.Window, s report.SortDimension, rows []report.GroupSummary) error {
	return f.record(partitionKey{"brand_summary", w, s}, len(rows))
}

func (f *fakeSummaryStore) ReplaceRefundAnalyses(ctx context.Context, date time.Time, w report.Window, s report.SortDimension, rows []report.RefundRow) error {
	return f.record(partitionKey{"refund_analysis", w, s}, len(rows))
}

func (f *fakeSummaryStore) ReplaceLowStockAlerts(ctx context.Context, date time.Time, rows []report.LowStockAlert) error {
	return f.record(partitionKey{report: "low_stock_alerts"}, len(rows))
}

func (f *fakeSummaryStore) ReplaceSlowMovingItems(ctx context.Context, date time.Time, s report.SortDimension, rows []report.SlowMovingItem) error {
	return f.record(partitionKey{report: "slow_moving_items", sortBy: s}, len(rows))
}

func engineFixture() *catalog.Snapshot {
	items := []catalog.Item{
		{ID: 1, SKU: "SKU-A", Name: "Item A", CostPrice: decimal.NewFromInt(5), SalePrice: decimal.NewFromInt(10), StockQuantity: 10, IsActive: true},
	}
	orders := []catalog.Order{
		{
			ID: 1, OrderCode: "ORD-1", Platform: "shopee", Status: "completed",
			OrderDate: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
			Items:     []catalog.OrderItem{{ItemID: 1, Quantity: 2, PricePerUnit: decimal.NewFromInt(10)}},
		},
	}
	return catalog.NewSnapshot(orders, items, nil, nil, nil)
}

func newTestEngine(entities *fakeEntityStore, summaries *fakeSummaryStore) *Engine {
	return New(entities, summaries, analysis.NewReasonNormalizer(), DefaultOptions())
}

func TestEngineRunMaterializesFullMatrix(t *testing.T) {
	store := newFakeSummaryStore()
	eng := newTestEngine(&fakeEntityStore{snap: engineFixture()}, store)

	asOf := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	result, err := eng.Run(context.Background(), asOf)
	require.NoError(t, err)

	// 1 daily + 1 low-stock + 7 windows x (3 top + 2 category + 2 brand + 4 refund) + 4 slow-moving.
	require.Equal(t, 83, result.Partitions)
	require.Empty(t, result.Failures)
	require.Len(t, store.saved, 83)
	require.NotEmpty(t, result.RunID)

	// Every window/sort combination was materialized, even the empty ones.
	for _, w := range report.Windows() {
		for _, s := range report.TopItemSorts() {
			require.Contains(t, store.saved, partitionKey{"top_selling_items", w, s})
		}
		for _, s := range report.GroupSorts() {
			require.Contains(t, store.saved, partitionKey{"category_summary", w, s})
			require.Contains(t, store.saved, partitionKey{"brand_summary", w, s})
		}
		for _, s := range report.RefundSorts() {
			require.Contains(t, store.saved, partitionKey{"refund_analysis", w, s})
		}
	}
	for _, s := range report.SlowMovingSorts() {
		require.Contains(t, store.saved, partitionKey{report: "slow_moving_items", sortBy: s})
	}

	require.Len(t, store.daily, 1)
	require.Equal(t, 1, store.daily[0].TotalOrders)
	require.InDelta(t, 20.0, store.daily[0].TotalRevenue, 1e-9)
}

func TestEngineRunContinuesPastPartitionFailure(t *testing.T) {
	store := newFakeSummaryStore()
	boom := errors.New("disk full")
	store.failOn[partitionKey{"top_selling_items", report.Window7Days, report.SortRevenue}] = boom

	eng := newTestEngine(&fakeEntityStore{snap: engineFixture()}, store)

	result, err := eng.Run(context.Background(), time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err, "one failed partition must not abort the run")

	require.Equal(t, 83, result.Partitions)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "top_selling_items", result.Failures[0].Report)
	require.Equal(t, report.Window7Days, result.Failures[0].Window)
	require.ErrorIs(t, result.Failures[0].Err, boom)

	// All other partitions still landed.
	require.Len(t, store.saved, 82)
}

func TestEngineRunSnapshotLoadFailureAborts(t *testing.T) {
	store := newFakeSummaryStore()
	eng := newTestEngine(&fakeEntityStore{err: errors.New("connection refused")}, store)

	_, err := eng.Run(context.Background(), time.Now())
	require.Error(t, err)
	require.Empty(t, store.saved, "nothing materialized without a snapshot")
}

func TestEngineRunIdempotent(t *testing.T) {
	storeA := newFakeSummaryStore()
	storeB := newFakeSummaryStore()
	snap := engineFixture()
	asOf := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	_, err := newTestEngine(&fakeEntityStore{snap: snap}, storeA).Run(context.Background(), asOf)
	require.NoError(t, err)
	_, err = newTestEngine(&fakeEntityStore{snap: snap}, storeB).Run(context.Background(), asOf)
	require.NoError(t, err)

	require.Equal(t, storeA.saved, storeB.saved, "same snapshot and as-of produce identical partitions")
}
