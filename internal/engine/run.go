package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/bizlens-lab/bizlens/internal/analysis"
	"github.com/bizlens-lab/bizlens/internal/core/report"
	"github.com/bizlens-lab/bizlens/internal/core/storage"
	"github.com/google/uuid"
)

// Options controls per-report row limits for a run.
type Options struct {
	TopLimit        int
	SlowMovingLimit int
}

// DefaultOptions returns the standard report limits.
func DefaultOptions() Options {
	return Options{
		TopLimit:        analysis.DefaultLimit,
		SlowMovingLimit: analysis.DefaultSlowMovingLimit,
	}
}

func (o Options) normalized() Options {
	n := o
	if n.TopLimit <= 0 {
		n.TopLimit = analysis.DefaultLimit
	}
	if n.SlowMovingLimit <= 0 {
		n.SlowMovingLimit = analysis.DefaultSlowMovingLimit
	}
	return n
}

// PartitionFailure records one summary partition that could not be computed or
// persisted during a run.
type PartitionFailure struct {
	Report string
	Window report.Window
	SortBy report.SortDimension
	Err    error
}

// RunResult summarizes one engine run.
type RunResult struct {
	RunID      string
	AsOf       time.Time
	Partitions int
	Failures   []PartitionFailure
	Elapsed    time.Duration
}

// Engine loads one entity snapshot and materializes every summary partition
// from it. A run is idempotent: re-running with the same data replaces each
// partition with identical rows.
type Engine struct {
	entities   storage.EntityStore
	summaries  storage.SummaryStore
	normalizer *analysis.ReasonNormalizer
	opts       Options
}

// New creates an Engine.
func New(entities storage.EntityStore, summaries storage.SummaryStore, normalizer *analysis.ReasonNormalizer, opts Options) *Engine {
	return &Engine{
		entities:   entities,
		summaries:  summaries,
		normalizer: normalizer,
		opts:       opts.normalized(),
	}
}

// Run executes one full analysis pass as of the given instant. A failed
// partition is recorded and skipped; the run continues so one bad report never
// blocks the rest.
func (e *Engine) Run(ctx context.Context, asOf time.Time) (RunResult, error) {
	runID := uuid.NewString()
	started := time.Now()
	date := dateOf(asOf)

	slog.Info("[Engine] Starting analysis run",
		"run_id", runID,
		"as_of", asOf.Format(time.RFC3339),
		"analysis_date", date.Format("2006-01-02"),
	)

	snap, err := e.entities.LoadSnapshot(ctx)
	if err != nil {
		return RunResult{RunID: runID, AsOf: asOf}, err
	}

	r := &runState{runID: runID}

	// Daily sales: single row for the as-of day.
	daily := analysis.DailySales(snap, asOf)
	r.record("daily_sales", "", "", e.summaries.SaveDailySales(ctx, daily))

	// Low stock alerts: one partition per analysis date.
	alerts := analysis.LowStockAlerts(snap, asOf)
	r.record("low_stock_alerts", "", "",
		e.summaries.ReplaceLowStockAlerts(ctx, date, alerts))

	// Windowed reports: every window crossed with every sort dimension.
	for _, w := range report.Windows() {
		for _, sortBy := range report.TopItemSorts() {
			rows, err := analysis.TopSellingItems(snap, asOf, w, sortBy, e.opts.TopLimit)
			if err == nil {
				err = e.summaries.ReplaceTopSellingItems(ctx, date, w, sortBy, rows)
			}
			r.record("top_selling_items", w, sortBy, err)
		}

		for _, sortBy := range report.GroupSorts() {
			rows, err := analysis.CategoryRollup(snap, asOf, w, sortBy, e.opts.TopLimit)
			if err == nil {
				err = e.summaries.ReplaceCategorySummaries(ctx, date, w, sortBy, rows)
			}
			r.record("category_summary", w, sortBy, err)

			rows, err = analysis.BrandRollup(snap, asOf, w, sortBy, e.opts.TopLimit)
			if err == nil {
				err = e.summaries.ReplaceBrandSummaries(ctx, date, w, sortBy, rows)
			}
			r.record("brand_summary", w, sortBy, err)
		}

		for _, sortBy := range report.RefundSorts() {
			rows, err := analysis.RefundAnalysis(snap, asOf, w, sortBy, e.opts.TopLimit, e.normalizer)
			if err == nil {
				err = e.summaries.ReplaceRefundAnalyses(ctx, date, w, sortBy, rows)
			}
			r.record("refund_analysis", w, sortBy, err)
		}
	}

	// Slow-moving classification is window-independent; it runs once per
	// classification dimension.
	for _, sortBy := range report.SlowMovingSorts() {
		rows, err := analysis.SlowMovingItems(snap, asOf, sortBy, e.opts.SlowMovingLimit)
		if err == nil {
			err = e.summaries.ReplaceSlowMovingItems(ctx, date, sortBy, rows)
		}
		r.record("slow_moving_items", "", sortBy, err)
	}

	result := RunResult{
		RunID:      runID,
		AsOf:       asOf,
		Partitions: r.partitions,
		Failures:   r.failures,
		Elapsed:    time.Since(started),
	}

	slog.Info("[Engine] Analysis run complete",
		"run_id", runID,
		"partitions", result.Partitions,
		"failed", len(result.Failures),
		"elapsed", result.Elapsed.String(),
	)
	return result, nil
}

type runState struct {
	runID      string
	partitions int
	failures   []PartitionFailure
}

func (r *runState) record(reportName string, w report.Window, sortBy report.SortDimension, err error) {
	r.partitions++
	if err == nil {
		return
	}
	r.failures = append(r.failures, PartitionFailure{Report: reportName, Window: w, SortBy: sortBy, Err: err})
	slog.Error("[Engine] Partition failed",
		"run_id", r.runID,
		"report", reportName,
		"data_range", string(w),
		"sort_type", string(sortBy),
		"error", err,
	)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
