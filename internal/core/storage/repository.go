package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
)

// ErrNotFound is returned by readers when the requested summary partition has
// not been materialized.
var ErrNotFound = errors.New("summary not found")

// EntityStore loads the transactional entity set. The engine calls it exactly
// once per run; every aggregator then works off the same snapshot.
type EntityStore interface {
	LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// SummaryStore owns the derived summary tables. Compound-key reports are
// replaced wholesale per partition key (delete then insert); the single-key
// daily summary is upserted in place.
//
// Contract: each call replaces exactly one partition in one transaction, so a
// failed run never leaves a partition half old, half new.
type SummaryStore interface {
	// SaveDailySales upserts the one daily row for its analysis date.
	SaveDailySales(ctx context.Context, row report.DailySales) error

	// ReplaceTopSellingItems replaces the (date, window, sortBy) partition.
	ReplaceTopSellingItems(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension, rows []report.TopSellingItem) error

	// ReplaceCategorySummaries replaces the (date, window, sortBy) partition.
	ReplaceCategorySummaries(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension, rows []report.GroupSummary) error

	// ReplaceBrandSummaries replaces the (date, window, sortBy) partition.
	ReplaceBrandSummaries(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension, rows []report.GroupSummary) error

	// ReplaceRefundAnalyses replaces the (date, window, sortBy) partition.
	// Rows from the refund_reason dimension carry empty SKU and item name.
	ReplaceRefundAnalyses(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension, rows []report.RefundRow) error

	// ReplaceLowStockAlerts replaces all alerts for the analysis date.
	ReplaceLowStockAlerts(ctx context.Context, date time.Time, rows []report.LowStockAlert) error

	// ReplaceSlowMovingItems replaces the (date, sortBy) partition.
	ReplaceSlowMovingItems(ctx context.Context, date time.Time, sortBy report.SortDimension, rows []report.SlowMovingItem) error
}

// SummaryReader is the read-side contract the query API consumes. A zero date
// means "the most recent analysis date with data". Readers perform no
// aggregation; they only filter by partition key.
type SummaryReader interface {
	LatestDailySales(ctx context.Context) (report.DailySales, error)
	DailySalesByDate(ctx context.Context, date time.Time) (report.DailySales, error)

	// DailySalesHistory returns the daily rows from the window ending at the
	// most recent analysis date, newest first.
	DailySalesHistory(ctx context.Context, window report.Window) ([]report.DailySales, error)

	// AnalysisDates lists every analysis date with daily data, newest first.
	// AnalysisPeriods lists every window that has materialized ranked rows.
	// Both return empty slices, not ErrNotFound, when nothing has run yet.
	AnalysisDates(ctx context.Context) ([]time.Time, error)
	AnalysisPeriods(ctx context.Context) ([]report.Window, error)

	TopSellingItems(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension) ([]report.TopSellingItem, error)
	CategorySummaries(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension) ([]report.GroupSummary, error)
	BrandSummaries(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension) ([]report.GroupSummary, error)
	RefundAnalyses(ctx context.Context, date time.Time, window report.Window, sortBy report.SortDimension) ([]report.RefundRow, error)
	LowStockAlerts(ctx context.Context, date time.Time) ([]report.LowStockAlert, error)
	SlowMovingItems(ctx context.Context, date time.Time, sortBy report.SortDimension) ([]report.SlowMovingItem, error)
}
