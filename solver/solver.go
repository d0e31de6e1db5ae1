// Package solver contains a defect-guided repair search that lowers the cost
// of a timetable solution one defect at a time.
package solver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/rhartert/khe-ls/khe"
	"github.com/rhartert/khe-ls/khe/backoff"
	"github.com/rhartert/khe-ls/khe/wheels"
	"github.com/rhartert/sparsesets"
	"github.com/rhartert/yagh"
)

// Move kinds tried on the meets of a defect.
const (
	TimeMove = iota
	ResourceMove
	moveKinds
)

type Config struct {
	// Maximum number of repair attempts.
	Iterations int

	// Number of best alternatives kept while trying the moves of one repair.
	// The cheapest is applied if it improves on the current solution.
	BestPaths int

	// Acceptance policy for repair opportunities. Under exponential backoff,
	// failed repairs make the solver skip a growing number of opportunities.
	Backoff backoff.Type

	// Parameter alpha controls the likelihood of selecting a defect where the
	// likelihood P(d) of selecting defect d is determined by its cost raised
	// to the power of alpha: P(d) = (cost[d]^alpha) / Σ(cost[di]^alpha). High
	// values of alpha favor the most costly defects. Setting alpha to zero
	// results in random uniform selection among defects.
	Alpha float64

	// Every GreedyEvery-th iteration targets the most costly defect instead
	// of a randomly selected one. Zero disables greedy iterations.
	GreedyEvery int

	// Relative likelihood of each move kind, indexed by TimeMove and
	// ResourceMove. Nil means equal weights.
	MoveWeights []float64

	// Seed of the random number generator.
	Seed int64

	// Logger defaults to the logger of the solution.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used by the command line tool
// when no flag overrides it.
func DefaultConfig() Config {
	return Config{
		Iterations:  10000,
		BestPaths:   1,
		Backoff:     backoff.Exponential,
		Alpha:       2,
		GreedyEvery: 8,
		Seed:        42,
	}
}

// Validate returns an error describing the first invalid field of cfg.
func (cfg *Config) Validate() error {
	if n := cfg.Iterations; n < 0 {
		return fmt.Errorf("number of iterations must be non-negative, got: %d", n)
	}
	if n := cfg.BestPaths; n < 1 {
		return fmt.Errorf("number of best paths must be at least 1, got: %d", n)
	}
	if cfg.Backoff != backoff.None && cfg.Backoff != backoff.Exponential {
		return fmt.Errorf("invalid backoff type: %s", cfg.Backoff)
	}
	if a := cfg.Alpha; a < 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return fmt.Errorf("parameter alpha must be non-negative, got: %f", a)
	}
	if n := cfg.GreedyEvery; n < 0 {
		return fmt.Errorf("greedy period must be non-negative, got: %d", n)
	}
	if w := cfg.MoveWeights; w != nil {
		if len(w) != moveKinds {
			return fmt.Errorf("want %d move weights, got: %d", moveKinds, len(w))
		}
		total := 0.0
		for _, x := range w {
			if x < 0 {
				return fmt.Errorf("move weights must be non-negative, got: %v", w)
			}
			total += x
		}
		if total == 0 {
			return fmt.Errorf("at least one move weight must be positive")
		}
	}
	return nil
}

// Stats summarizes a call to Solve.
type Stats struct {
	InitialCost  khe.Cost
	FinalCost    khe.Cost
	Iterations   int
	Improvements int
	Backoff      backoff.Stats
}

// RepairSolver repeatedly selects a defect among the children of the
// solution and tries the time and resource moves of the meets involved in
// it, keeping the best improving alternative.
type RepairSolver struct {
	soln   *khe.Soln
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger

	defectWheel   *wheels.DefectWheel
	defectsByCost *yagh.IntMap[int64]
	moveWheel     *wheels.StaticWheel
	backoff       *backoff.Backoff
	trace         *khe.Trace
	tried         *sparsesets.Set // meets already tried in the current repair
}

// NewRepairSolver returns a solver of soln. The configuration must be
// valid.
func NewRepairSolver(soln *khe.Soln, cfg Config) *RepairSolver {
	if err := cfg.Validate(); err != nil {
		panic("solver.NewRepairSolver: " + err.Error())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = soln.Logger()
	}
	nMonitors := soln.MonitorCount()

	rs := &RepairSolver{
		soln:          soln,
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(cfg.Seed)),
		logger:        logger,
		defectWheel:   wheels.NewDefectWheel(soln.DefectCount()),
		defectsByCost: yagh.New[int64](nMonitors),
		moveWheel:     wheels.NewStaticWheel(moveKinds),
		trace:         khe.NewTrace(&soln.GroupMonitor),
		tried:         sparsesets.New(soln.MeetCount()),
	}
	for k := 0; k < moveKinds; k++ {
		w := 1.0
		if cfg.MoveWeights != nil {
			w = cfg.MoveWeights[k]
		}
		rs.moveWheel.SetWeight(k, w)
	}
	for i := 0; i < soln.ChildCount(); i++ {
		rs.track(soln.Child(i))
	}
	return rs
}

// track updates the selection structures with the current cost of m.
func (rs *RepairSolver) track(m khe.Monitor) {
	i := m.SolnIndex()
	if i < 0 {
		return
	}
	c := m.Cost()
	rs.defectsByCost.Put(i, -int64(c)) // most costly first
	if c > 0 {
		rs.defectWheel.Put(i, int64(c), math.Pow(c.Show(), rs.cfg.Alpha))
	} else {
		rs.defectWheel.Remove(i)
	}
}

// WorstDefect returns the most costly child of the solution, or nil if the
// solution has no defect.
func (rs *RepairSolver) WorstDefect() khe.Monitor {
	entry := rs.defectsByCost.Min()
	if entry == nil || entry.Cost == 0 {
		return nil
	}
	return rs.soln.Monitor(entry.Elem)
}

// SelectDefect selects a defect using roulette wheel selection accordingly
// to random number r in [0, 1). It returns nil if the solution has no
// defect. For more information about how defects are selected, refer to
// parameter Alpha in [Config].
func (rs *RepairSolver) SelectDefect(r float64) khe.Monitor {
	i := rs.defectWheel.Roll(r)
	if i < 0 {
		return nil
	}
	return rs.soln.Monitor(i)
}

// defectMeets returns the meets whose moves may repair defect d.
func defectMeets(d khe.Monitor) []*khe.Meet {
	var meets []*khe.Meet
	eventMeets := func(es *khe.EventInSoln) {
		for i := 0; i < es.MeetCount(); i++ {
			meets = append(meets, es.Meet(i))
		}
	}
	resourceMeets := func(r *khe.ResourceInSoln) {
		for i := 0; i < r.TaskCount(); i++ {
			meets = append(meets, r.Task(i).Meet())
		}
	}
	switch d := d.(type) {
	case *khe.AssignTimeMonitor:
		eventMeets(d.EventInSoln())
	case *khe.SplitEventsMonitor:
		eventMeets(d.EventInSoln())
	case *khe.AvoidClashesMonitor:
		resourceMeets(d.ResourceInSoln())
	case *khe.AvoidUnavailableTimesMonitor:
		resourceMeets(d.ResourceInSoln())
	case *khe.OrdinaryDemandMonitor:
		meets = append(meets, d.Task().Meet())
	case *khe.WorkloadDemandMonitor:
		resourceMeets(d.ResourceInSoln())
	}
	return meets
}

// tryMoves tries every move of the given kind on meet m, saving each
// alternative as a candidate path of mark.
func (rs *RepairSolver) tryMoves(mark *khe.Mark, m *khe.Meet, kind int) {
	switch kind {
	case TimeMove:
		for _, t := range m.StartTimes() {
			if t == m.Time() {
				continue
			}
			m.AssignTime(t)
			mark.AddBestPath(rs.cfg.BestPaths)
			mark.Undo()
		}
	case ResourceMove:
		for i := 0; i < m.TaskCount(); i++ {
			task := m.Task(i)
			for _, r := range task.Domain() {
				if r == task.Resource() {
					continue
				}
				task.AssignResource(r)
				mark.AddBestPath(rs.cfg.BestPaths)
				mark.Undo()
			}
		}
	}
}

// Repair tries to lower the cost of the solution by moving the meets of
// defect d. It returns true if an improving alternative was applied.
func (rs *RepairSolver) Repair(d khe.Monitor) bool {
	meets := defectMeets(d)
	if len(meets) == 0 {
		return false
	}

	s := rs.soln
	mark := s.MarkBegin()
	rs.tried.Clear()
	for _, m := range meets {
		if rs.tried.Contains(m.SolnIndex()) {
			continue
		}
		rs.tried.Insert(m.SolnIndex())
		rs.tryMoves(mark, m, rs.moveWheel.Roll(rs.rng.Float64()))
	}

	improved := mark.PathCount() > 0 && mark.Path(0).Cost() < mark.StartCost()
	if improved {
		rs.trace.Begin()
		mark.Path(0).Redo()
		s.Cost() // bring demand monitors up to date while tracing
		rs.trace.End()
		for i := 0; i < rs.trace.MonitorCount(); i++ {
			rs.track(rs.trace.Monitor(i))
		}
	}
	mark.End(false)
	return improved
}

// Solve runs at most cfg.Iterations repair attempts and stops early when
// the solution has no defect left or ctx is done. Each call starts with a
// fresh backoff.
func (rs *RepairSolver) Solve(ctx context.Context) Stats {
	s := rs.soln
	rs.backoff = backoff.New(rs.cfg.Backoff)
	stats := Stats{InitialCost: s.Cost()}
	rs.logger.Info("repair search started",
		slog.String("cost", stats.InitialCost.String()),
		slog.Int("defects", s.DefectCount()))

	for iter := 0; iter < rs.cfg.Iterations; iter++ {
		if ctx.Err() != nil {
			break
		}
		var d khe.Monitor
		if g := rs.cfg.GreedyEvery; g > 0 && iter%g == 0 {
			d = rs.WorstDefect()
		} else {
			d = rs.SelectDefect(rs.rng.Float64())
		}
		if d == nil {
			break // no defect left
		}
		stats.Iterations++
		if !rs.backoff.Accept() {
			continue
		}
		before := s.Cost()
		ok := rs.Repair(d)
		rs.backoff.Result(ok)
		if ok {
			stats.Improvements++
			rs.logger.Debug("repair applied",
				slog.Int("iteration", iter),
				slog.String("defect", d.String()),
				slog.String("before", before.String()),
				slog.String("after", s.Cost().String()))
		}
	}
	rs.backoff.End()

	stats.FinalCost = s.Cost()
	stats.Backoff = rs.backoff.Stats()
	rs.logger.Info("repair search finished",
		slog.String("cost", stats.FinalCost.String()),
		slog.Int("iterations", stats.Iterations),
		slog.Int("improvements", stats.Improvements),
		slog.Int("declined", stats.Backoff.Declined),
		slog.String("backoff", rs.backoff.String()))
	return stats
}
