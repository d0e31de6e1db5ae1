package solver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhartert/khe-ls/khe"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one worker of ParallelSolve.
type Result struct {
	Worker int
	Soln   *khe.Soln
	Stats  Stats
}

// ParallelSolve runs n independent repair searches, each on its own copy of
// soln and with its own seed derived from cfg.Seed, and returns the result
// with the lowest final cost. Ties go to the lowest worker. Solution soln
// itself is not modified.
func ParallelSolve(ctx context.Context, soln *khe.Soln, n int, cfg Config) (*Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("number of workers must be at least 1, got: %d", n)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = soln.Logger()
	}

	// Copies are made up front: a solution must not be read concurrently.
	results := make([]*Result, n)
	for i := range results {
		results[i] = &Result{Worker: i, Soln: soln.Copy()}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, res := range results {
		res := res
		g.Go(func() error {
			wcfg := cfg
			wcfg.Seed = cfg.Seed + int64(res.Worker)
			wcfg.Logger = logger.With(slog.Int("worker", res.Worker))
			res.Stats = NewRepairSolver(res.Soln, wcfg).Solve(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := results[0]
	for _, res := range results[1:] {
		if res.Stats.FinalCost < best.Stats.FinalCost {
			best = res
		}
	}
	logger.Info("parallel search finished",
		slog.Int("workers", n),
		slog.Int("best_worker", best.Worker),
		slog.String("cost", best.Stats.FinalCost.String()))
	return best, nil
}
