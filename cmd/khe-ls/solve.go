package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rhartert/khe-ls/khe"
	"github.com/rhartert/khe-ls/khe/backoff"
	"github.com/rhartert/khe-ls/parser"
	"github.com/rhartert/khe-ls/solver"
	"github.com/urfave/cli/v2"
)

var defaults = solver.DefaultConfig()

var solveCmd = &cli.Command{
	Name:    "solve",
	Usage:   "Search for a low cost solution of an instance",
	Aliases: []string{"s"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "instance",
			Required: true,
			Usage:    "specify the instance file (YAML or JSON)",
		},
		&cli.IntFlag{
			Name:  "iterations",
			Value: defaults.Iterations,
			Usage: "specify the maximum number of repair attempts per worker",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: 1,
			Usage: "specify the number of independent searches run in parallel",
		},
		&cli.IntFlag{
			Name:  "best-paths",
			Value: defaults.BestPaths,
			Usage: "specify the number of alternatives kept per repair",
		},
		&cli.StringFlag{
			Name:  "backoff",
			Value: defaults.Backoff.String(),
			Usage: "specify the backoff policy (none, exponential)",
		},
		&cli.Float64Flag{
			Name:  "alpha",
			Value: defaults.Alpha,
			Usage: "specify the defect selection parameter (0 for uniform)",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Value: defaults.Seed,
			Usage: "specify the seed of the random number generator",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "specify the maximum search time (0 for none)",
		},
		&cli.BoolFlag{
			Name:  "matching",
			Usage: "monitor resource demand with a bipartite matching",
		},
		&cli.BoolFlag{
			Name:  "evenness",
			Usage: "monitor the evenness of resource usage per partition",
		},
		logLevelFlag,
	},
	Action: func(ctx *cli.Context) error {
		logger, err := newLogger(ctx.String("log-level"))
		if err != nil {
			return err
		}
		bo, err := backoff.ParseType(ctx.String("backoff"))
		if err != nil {
			return err
		}
		workers := ctx.Int("workers")
		if workers < 1 {
			return errors.New("invalid workers")
		}
		timeout := ctx.Duration("timeout")
		if timeout < 0 {
			return errors.New("invalid timeout")
		}

		cfg := defaults
		cfg.Iterations = ctx.Int("iterations")
		cfg.BestPaths = ctx.Int("best-paths")
		cfg.Backoff = bo
		cfg.Alpha = ctx.Float64("alpha")
		cfg.Seed = ctx.Int64("seed")
		cfg.Logger = logger
		if err := cfg.Validate(); err != nil {
			return err
		}

		ins, err := parser.ReadInstance(ctx.String("instance"))
		if err != nil {
			return err
		}
		s := khe.NewSoln(ins, khe.Config{
			Matching: ctx.Bool("matching"),
			Evenness: ctx.Bool("evenness"),
			Logger:   logger,
		})
		if h := s.EvennessHandler(); h != nil {
			h.AttachAll()
		}

		c := ctx.Context
		if timeout > 0 {
			var cancel context.CancelFunc
			c, cancel = context.WithTimeout(c, timeout)
			defer cancel()
		}
		return doSolve(c, ctx.App.Writer, s, workers, cfg)
	},
}

func doSolve(ctx context.Context, w io.Writer, s *khe.Soln, workers int, cfg solver.Config) error {
	start := time.Now()
	initial := s.Cost()
	res, err := solver.ParallelSolve(ctx, s, workers, cfg)
	if err != nil {
		return err
	}
	best := res.Soln
	best.EnsureOfficialCost()

	fmt.Fprintf(w, "search time (ms):  %v\n", time.Since(start).Milliseconds())
	fmt.Fprintf(w, "cost (before):     %s\n", initial)
	fmt.Fprintf(w, "cost (after):      %s\n", best.Cost())
	fmt.Fprintf(w, "improvements:      %d\n", res.Stats.Improvements)
	fmt.Fprintln(w, "timetable:")
	for i := 0; i < best.MeetCount(); i++ {
		m := best.Meet(i)
		fmt.Fprintf(w, "  %s", m)
		for j := 0; j < m.TaskCount(); j++ {
			fmt.Fprintf(w, " %s", m.Task(j))
		}
		fmt.Fprintln(w)
	}
	return nil
}
