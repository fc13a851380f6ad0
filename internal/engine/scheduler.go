package engine

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler re-runs the engine on a periodic interval. It is stateless: each
// tick loads a fresh snapshot and replaces every summary partition, so a
// missed or failed tick is fully repaired by the next one.
type Scheduler struct {
	interval time.Duration
	engine   *Engine
	clock    func() time.Time
}

// NewScheduler creates a periodic scheduler around the engine. The clock
// determines each run's as-of instant; pass nil for wall-clock UTC.
func NewScheduler(interval time.Duration, engine *Engine, clock func() time.Time) *Scheduler {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Scheduler{interval: interval, engine: engine, clock: clock}
}

// Start runs one pass immediately, then on every tick until the context is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting analysis scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")
			return nil
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.engine.Run(ctx, s.clock())
	if err != nil {
		slog.Error("[Scheduler] Analysis run failed", "error", err)
		return
	}
	if len(result.Failures) > 0 {
		slog.Warn("[Scheduler] Analysis run finished with failed partitions",
			"run_id", result.RunID,
			"failed", len(result.Failures),
		)
	}
}
