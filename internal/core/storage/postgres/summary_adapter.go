package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/bizlens-lab/bizlens/internal/core/report"
	"github.com/bizlens-lab/bizlens/internal/core/storage"
	"github.com/shopspring/decimal"
)

// SummaryAdapter implements storage.SummaryStore and storage.SummaryReader on
// PostgreSQL. Each Replace call deletes the target partition and re-inserts the
// new rows inside one transaction: replace, not merge.
//
// Currency and rate values are converted to fixed-point decimal here, at the
// persistence boundary, never earlier.
type SummaryAdapter struct {
	db *sql.DB
}

// NewSummaryAdapter creates a SummaryAdapter sharing the given pool.
func NewSummaryAdapter(db *sql.DB) *SummaryAdapter {
	return &SummaryAdapter{db: db}
}

// money converts an aggregated float to a two-place decimal for storage.
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// alertTypeFor is the materialization-time low-stock classification. It is a
// second, coarser pass over the same runway value and deliberately uses
// different thresholds than the aggregator's alert level.
func alertTypeFor(daysLeft int) string {
	switch {
	case daysLeft <= 0:
		return "out_of_stock"
	case daysLeft <= 3:
		return "low_stock"
	default:
		return "expiring_soon"
	}
}

// replacePartition runs delete-then-insert for one partition key in a single
// transaction.
func (a *SummaryAdapter) replacePartition(
	ctx context.Context,
	deleteQuery string,
	deleteArgs []interface{},
	insertQuery string,
	rowArgs [][]interface{},
) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete partition: %w", err)
	}

	if len(rowArgs) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertQuery)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, args := range rowArgs {
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveDailySales upserts the single daily row for its analysis date.
func (a *SummaryAdapter) SaveDailySales(ctx context.Context, row report.DailySales) error {
	_, err := a.db.ExecContext(ctx, queryUpsertDailySales,
		row.AnalysisDate,
		row.TotalOrders,
		money(row.TotalRevenue),
		money(row.TotalProfit),
		row.TotalRefunds,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert daily sales: %w", err)
	}
	slog.Info("[Summary] Saved daily sales", "analysis_date", row.AnalysisDate.Format("2006-01-02"))
	return nil
}

// ReplaceTopSellingItems replaces the (date, window, sortBy) partition.
func (a *SummaryAdapter) ReplaceTopSellingItems(
	ctx context.Context,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
	rows []report.TopSellingItem,
) error {
	now := time.Now().UTC()
	args := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		args = append(args, []interface{}{
			r.AnalysisDate, string(r.Window), string(r.SortBy), r.SKU, r.ItemName,
			r.TotalSold, money(r.TotalRevenue), money(r.TotalProfit), r.Rank, now,
		})
	}
	err := a.replacePartition(ctx,
		queryDeleteTopSelling, []interface{}{date, string(window), string(sortBy)},
		queryInsertTopSelling, args,
	)
	if err != nil {
		return fmt.Errorf("replace top selling items: %w", err)
	}
	return nil
}

// ReplaceCategorySummaries replaces the (date, window, sortBy) partition.
func (a *SummaryAdapter) ReplaceCategorySummaries(
	ctx context.Context,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
	rows []report.GroupSummary,
) error {
	args := groupSummaryArgs(rows)
	err := a.replacePartition(ctx,
		queryDeleteCategorySummary, []interface{}{date, string(window), string(sortBy)},
		queryInsertCategorySummary, args,
	)
	if err != nil {
		return fmt.Errorf("replace category summaries: %w", err)
	}
	return nil
}

// ReplaceBrandSummaries replaces the (date, window, sortBy) partition.
func (a *SummaryAdapter) ReplaceBrandSummaries(
	ctx context.Context,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
	rows []report.GroupSummary,
) error {
	args := groupSummaryArgs(rows)
	err := a.replacePartition(ctx,
		queryDeleteBrandSummary, []interface{}{date, string(window), string(sortBy)},
		queryInsertBrandSummary, args,
	)
	if err != nil {
		return fmt.Errorf("replace brand summaries: %w", err)
	}
	return nil
}

func groupSummaryArgs(rows []report.GroupSummary) [][]interface{} {
	now := time.Now().UTC()
	args := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		args = append(args, []interface{}{
			r.AnalysisDate, string(r.Window), string(r.SortBy), r.GroupID, r.GroupName,
			r.TotalSold, money(r.TotalRevenue), money(r.TotalProfit), money(r.ProfitMargin), r.Rank, now,
		})
	}
	return args
}

// ReplaceRefundAnalyses replaces the (date, window, sortBy) partition. Rows
// from the refund_reason dimension carry empty SKU and item name by contract.
func (a *SummaryAdapter) ReplaceRefundAnalyses(
	ctx context.Context,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
	rows []report.RefundRow,
) error {
	now := time.Now().UTC()
	args := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		args = append(args, []interface{}{
			r.AnalysisDate, string(r.Window), string(r.SortBy), r.SKU, r.ItemName,
			r.TotalOrders, r.RefundCount, r.RefundQuantity, money(r.RefundRate),
			r.Reason, r.ItemsAffected, r.Rank, now,
		})
	}
	err := a.replacePartition(ctx,
		queryDeleteRefundAnalysis, []interface{}{date, string(window), string(sortBy)},
		queryInsertRefundAnalysis, args,
	)
	if err != nil {
		return fmt.Errorf("replace refund analyses: %w", err)
	}
	return nil
}

// ReplaceLowStockAlerts replaces all alerts for the analysis date. The alert
// type column is derived here from the runway, independent of the aggregator's
// alert level.
func (a *SummaryAdapter) ReplaceLowStockAlerts(ctx context.Context, date time.Time, rows []report.LowStockAlert) error {
	now := time.Now().UTC()
	args := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		args = append(args, []interface{}{
			r.AnalysisDate, r.SKU, r.ItemName, r.CurrentStock, money(r.AvgDailySales),
			r.DaysLeft, string(r.Level), alertTypeFor(r.DaysLeft), now,
		})
	}
	err := a.replacePartition(ctx,
		queryDeleteLowStockAlerts, []interface{}{date},
		queryInsertLowStockAlert, args,
	)
	if err != nil {
		return fmt.Errorf("replace low stock alerts: %w", err)
	}
	return nil
}

// ReplaceSlowMovingItems replaces the (date, sortBy) partition.
func (a *SummaryAdapter) ReplaceSlowMovingItems(
	ctx context.Context,
	date time.Time,
	sortBy report.SortDimension,
	rows []report.SlowMovingItem,
) error {
	now := time.Now().UTC()
	args := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		args = append(args, []interface{}{
			r.AnalysisDate, string(r.SortBy), r.SKU, r.ItemName, r.BrandName, r.CategoryName,
			r.CurrentStock, r.TotalSold, money(r.AvgDailySales), r.DaysWithoutSales,
			money(r.StockValue), money(r.PotentialLoss), r.Rank, now,
		})
	}
	err := a.replacePartition(ctx,
		queryDeleteSlowMovingItems, []interface{}{date, string(sortBy)},
		queryInsertSlowMovingItem, args,
	)
	if err != nil {
		return fmt.Errorf("replace slow moving items: %w", err)
	}
	return nil
}

// nullableDate maps the zero time to SQL NULL so the read queries fall back to
// the most recent analysis date.
func nullableDate(date time.Time) sql.NullTime {
	if date.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: date, Valid: true}
}

// LatestDailySales returns the most recent daily summary row.
func (a *SummaryAdapter) LatestDailySales(ctx context.Context) (report.DailySales, error) {
	return a.scanDailySales(a.db.QueryRowContext(ctx, querySelectLatestDailySales))
}

// DailySalesByDate returns the daily summary row for one analysis date.
func (a *SummaryAdapter) DailySalesByDate(ctx context.Context, date time.Time) (report.DailySales, error) {
	return a.scanDailySales(a.db.QueryRowContext(ctx, querySelectDailySalesByDate, date))
}

func (a *SummaryAdapter) scanDailySales(row *sql.Row) (report.DailySales, error) {
	var out report.DailySales
	var revenue, profit decimal.Decimal
	err := row.Scan(&out.AnalysisDate, &out.TotalOrders, &revenue, &profit, &out.TotalRefunds)
	if err == sql.ErrNoRows {
		return report.DailySales{}, storage.ErrNotFound
	}
	if err != nil {
		return report.DailySales{}, fmt.Errorf("scan daily sales: %w", err)
	}
	out.TotalRevenue = revenue.InexactFloat64()
	out.TotalProfit = profit.InexactFloat64()
	return out, nil
}

// DailySalesHistory returns the daily rows inside the window ending at the
// most recent analysis date, newest first. all_time returns every row.
func (a *SummaryAdapter) DailySalesHistory(ctx context.Context, window report.Window) ([]report.DailySales, error) {
	var days sql.NullInt64
	if d, ok := window.Days(); ok {
		days = sql.NullInt64{Int64: int64(d), Valid: true}
	}

	rows, err := a.db.QueryContext(ctx, querySelectDailySalesHistory, days)
	if err != nil {
		return nil, fmt.Errorf("query daily sales history: %w", err)
	}
	defer rows.Close()

	var out []report.DailySales
	for rows.Next() {
		var r report.DailySales
		var revenue, profit decimal.Decimal
		if err := rows.Scan(&r.AnalysisDate, &r.TotalOrders, &revenue, &profit, &r.TotalRefunds); err != nil {
			return nil, fmt.Errorf("scan daily sales history: %w", err)
		}
		r.TotalRevenue = revenue.InexactFloat64()
		r.TotalProfit = profit.InexactFloat64()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily sales history: %w", err)
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}

// AnalysisDates lists every analysis date with daily data, newest first. An
// empty database yields an empty slice, not an error.
func (a *SummaryAdapter) AnalysisDates(ctx context.Context) ([]time.Time, error) {
	rows, err := a.db.QueryContext(ctx, querySelectAnalysisDates)
	if err != nil {
		return nil, fmt.Errorf("query analysis dates: %w", err)
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan analysis date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis dates: %w", err)
	}
	return dates, nil
}

// AnalysisPeriods lists every window with materialized ranked rows.
func (a *SummaryAdapter) AnalysisPeriods(ctx context.Context) ([]report.Window, error) {
	rows, err := a.db.QueryContext(ctx, querySelectAnalysisPeriods)
	if err != nil {
		return nil, fmt.Errorf("query analysis periods: %w", err)
	}
	defer rows.Close()

	periods := []report.Window{}
	for rows.Next() {
		var w report.Window
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan analysis period: %w", err)
		}
		periods = append(periods, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis periods: %w", err)
	}
	return periods, nil
}

// TopSellingItems reads one ranked partition, most recent date when date is zero.
func (a *SummaryAdapter) TopSellingItems(
	ctx context.Context,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
) ([]report.TopSellingItem, error) {
	rows, err := a.db.QueryContext(ctx, querySelectTopSelling, nullableDate(date), string(window), string(sortBy))
	if err != nil {
		return nil, fmt.Errorf("query top selling items: %w", err)
	}
	defer rows.Close()

	var out []report.TopSellingItem
	for rows.Next() {
		var r report.TopSellingItem
		var revenue, profit decimal.Decimal
		if err := rows.Scan(&r.AnalysisDate, &r.Window, &r.SortBy, &r.SKU, &r.ItemName,
			&r.TotalSold, &revenue, &profit, &r.Rank); err != nil {
			return nil, fmt.Errorf("scan top selling item: %w", err)
		}
		r.TotalRevenue = revenue.InexactFloat64()
		r.TotalProfit = profit.InexactFloat64()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top selling items: %w", err)
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}

// CategorySummaries reads one ranked partition, most recent date when date is zero.
func (a *SummaryAdapter) CategorySummaries(
	ctx context.Context,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
) ([]report.GroupSummary, error) {
	return a.queryGroupSummaries(ctx, querySelectCategorySummary, date, window, sortBy)
}

// BrandSummaries reads one ranked partition, most recent date when date is zero.
func (a *SummaryAdapter) BrandSummaries(
	ctx context.Context,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
) ([]report.GroupSummary, error) {
	return a.queryGroupSummaries(ctx, querySelectBrandSummary, date, window, sortBy)
}

func (a *SummaryAdapter) queryGroupSummaries(
	ctx context.Context,
	query string,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
) ([]report.GroupSummary, error) {
	rows, err := a.db.QueryContext(ctx, query, nullableDate(date), string(window), string(sortBy))
	if err != nil {
		return nil, fmt.Errorf("query group summaries: %w", err)
	}
	defer rows.Close()

	var out []report.GroupSummary
	for rows.Next() {
		var r report.GroupSummary
		var revenue, profit, marginVal decimal.Decimal
		if err := rows.Scan(&r.AnalysisDate, &r.Window, &r.SortBy, &r.GroupID, &r.GroupName,
			&r.TotalSold, &revenue, &profit, &marginVal, &r.Rank); err != nil {
			return nil, fmt.Errorf("scan group summary: %w", err)
		}
		r.TotalRevenue = revenue.InexactFloat64()
		r.TotalProfit = profit.InexactFloat64()
		r.ProfitMargin = marginVal.InexactFloat64()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group summaries: %w", err)
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}

// RefundAnalyses reads one ranked partition, most recent date when date is zero.
func (a *SummaryAdapter) RefundAnalyses(
	ctx context.Context,
	date time.Time,
	window report.Window,
	sortBy report.SortDimension,
) ([]report.RefundRow, error) {
	rows, err := a.db.QueryContext(ctx, querySelectRefundAnalysis, nullableDate(date), string(window), string(sortBy))
	if err != nil {
		return nil, fmt.Errorf("query refund analyses: %w", err)
	}
	defer rows.Close()

	var out []report.RefundRow
	for rows.Next() {
		var r report.RefundRow
		var rate decimal.Decimal
		if err := rows.Scan(&r.AnalysisDate, &r.Window, &r.SortBy, &r.SKU, &r.ItemName,
			&r.TotalOrders, &r.RefundCount, &r.RefundQuantity, &rate,
			&r.Reason, &r.ItemsAffected, &r.Rank); err != nil {
			return nil, fmt.Errorf("scan refund analysis: %w", err)
		}
		r.RefundRate = rate.InexactFloat64()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refund analyses: %w", err)
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}

// LowStockAlerts reads the alert set for a date, most recent when date is zero.
func (a *SummaryAdapter) LowStockAlerts(ctx context.Context, date time.Time) ([]report.LowStockAlert, error) {
	rows, err := a.db.QueryContext(ctx, querySelectLowStockAlerts, nullableDate(date))
	if err != nil {
		return nil, fmt.Errorf("query low stock alerts: %w", err)
	}
	defer rows.Close()

	var out []report.LowStockAlert
	for rows.Next() {
		var r report.LowStockAlert
		var avg decimal.Decimal
		if err := rows.Scan(&r.AnalysisDate, &r.SKU, &r.ItemName, &r.CurrentStock,
			&avg, &r.DaysLeft, &r.Level); err != nil {
			return nil, fmt.Errorf("scan low stock alert: %w", err)
		}
		r.AvgDailySales = avg.InexactFloat64()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock alerts: %w", err)
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}

// SlowMovingItems reads one classification partition, most recent date when date is zero.
func (a *SummaryAdapter) SlowMovingItems(
	ctx context.Context,
	date time.Time,
	sortBy report.SortDimension,
) ([]report.SlowMovingItem, error) {
	rows, err := a.db.QueryContext(ctx, querySelectSlowMovingItems, nullableDate(date), string(sortBy))
	if err != nil {
		return nil, fmt.Errorf("query slow moving items: %w", err)
	}
	defer rows.Close()

	var out []report.SlowMovingItem
	for rows.Next() {
		var r report.SlowMovingItem
		var avg, stockValue, potentialLoss decimal.Decimal
		if err := rows.Scan(&r.AnalysisDate, &r.SortBy, &r.SKU, &r.ItemName, &r.BrandName, &r.CategoryName,
			&r.CurrentStock, &r.TotalSold, &avg, &r.DaysWithoutSales,
			&stockValue, &potentialLoss, &r.Rank); err != nil {
			return nil, fmt.Errorf("scan slow moving item: %w", err)
		}
		r.AvgDailySales = avg.InexactFloat64()
		r.StockValue = stockValue.InexactFloat64()
		r.PotentialLoss = potentialLoss.InexactFloat64()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slow moving items: %w", err)
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}
