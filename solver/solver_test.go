package solver

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/rhartert/khe-ls/khe"
	"github.com/rhartert/khe-ls/khe/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTwoTeachers returns a solution where teachers A and B each teach two
// single lessons over five times, and a double lesson shared by both.
// Every lesson must be timetabled without clashes.
func newTwoTeachers(t *testing.T, matching bool) *khe.Soln {
	t.Helper()
	ins := khe.NewInstance("two-teachers")
	for _, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri"} {
		ins.AddTime(name)
	}
	ins.AddPartition("teachers")
	ins.AddResource("A", 0)
	ins.AddResource("B", 0)

	var events []int
	for i, teacher := range []int{0, 0, 1, 1} {
		e := ins.AddEvent(string(rune('P'+i)), 1)
		e.AddResource([]int{teacher}, teacher)
		events = append(events, e.Index)
	}
	double := ins.AddEvent("Double", 2)
	double.AddResource([]int{0}, 0)
	double.AddResource([]int{1}, 1)
	events = append(events, double.Index)

	ins.AssignTime = append(ins.AssignTime, &khe.AssignTimeConstraint{
		ConstraintBase: khe.ConstraintBase{Name: "assign", Required: true, Weight: 1, Function: khe.Linear},
		Events:         events,
	})
	ins.AvoidClashes = append(ins.AvoidClashes, &khe.AvoidClashesConstraint{
		ConstraintBase: khe.ConstraintBase{Name: "clashes", Required: true, Weight: 1, Function: khe.Linear},
		Resources:      []int{0, 1},
	})
	require.NoError(t, ins.Finalize())

	// A soft matching weight keeps demand defects from cancelling out the
	// gain of timetabling a meet that causes a clash.
	return khe.NewSoln(ins, khe.Config{
		Matching:       matching,
		MatchingWeight: khe.NewCost(0, 1),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Iterations = 200
	cfg.MoveWeights = []float64{1, 0}
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		desc    string
		modify  func(cfg *Config)
		wantErr bool
	}{
		{desc: "default", modify: func(cfg *Config) {}},
		{desc: "negative iterations", modify: func(cfg *Config) { cfg.Iterations = -1 }, wantErr: true},
		{desc: "no best path", modify: func(cfg *Config) { cfg.BestPaths = 0 }, wantErr: true},
		{desc: "invalid backoff", modify: func(cfg *Config) { cfg.Backoff = 7 }, wantErr: true},
		{desc: "negative alpha", modify: func(cfg *Config) { cfg.Alpha = -1 }, wantErr: true},
		{desc: "negative greedy period", modify: func(cfg *Config) { cfg.GreedyEvery = -1 }, wantErr: true},
		{desc: "wrong move weight count", modify: func(cfg *Config) { cfg.MoveWeights = []float64{1} }, wantErr: true},
		{desc: "zero move weights", modify: func(cfg *Config) { cfg.MoveWeights = []float64{0, 0} }, wantErr: true},
		{desc: "no backoff", modify: func(cfg *Config) { cfg.Backoff = backoff.None }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepairSolver_WorstDefect(t *testing.T) {
	s := newTwoTeachers(t, false)
	rs := NewRepairSolver(s, testConfig())

	worst := rs.WorstDefect()
	require.NotNil(t, worst)
	assert.Equal(t, khe.NewCost(2, 0), worst.Cost())

	d := rs.SelectDefect(0.5)
	require.NotNil(t, d)
	assert.Greater(t, d.Cost(), khe.Cost(0))
}

func TestRepairSolver_Solve(t *testing.T) {
	for _, matching := range []bool{false, true} {
		s := newTwoTeachers(t, matching)
		rs := NewRepairSolver(s, testConfig())

		stats := rs.Solve(context.Background())

		assert.Equal(t, khe.NewCost(6, 0), stats.InitialCost)
		assert.Equal(t, khe.Cost(0), stats.FinalCost)
		assert.Equal(t, s.Cost(), stats.FinalCost)
		assert.GreaterOrEqual(t, stats.Improvements, 5)
		assert.Equal(t, 0, s.MarkCount())
		assert.Nil(t, rs.WorstDefect())
		assert.Nil(t, rs.SelectDefect(0.5))
	}
}

func TestRepairSolver_Solve_canceled(t *testing.T) {
	s := newTwoTeachers(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := NewRepairSolver(s, testConfig()).Solve(ctx)

	assert.Equal(t, 0, stats.Iterations)
	assert.Equal(t, stats.InitialCost, stats.FinalCost)
}

func TestRepairSolver_Solve_backoff(t *testing.T) {
	s := newTwoTeachers(t, false)
	cfg := testConfig()
	// Resource moves cannot repair anything: every task has one resource.
	cfg.MoveWeights = []float64{0, 1}
	cfg.Iterations = 20

	stats := NewRepairSolver(s, cfg).Solve(context.Background())

	assert.Equal(t, 0, stats.Improvements)
	assert.Equal(t, 0, stats.Backoff.Successful)
	assert.Equal(t, 20, stats.Backoff.Failed+stats.Backoff.Declined)
	assert.Greater(t, stats.Backoff.Declined, stats.Backoff.Failed)
}

func TestParallelSolve(t *testing.T) {
	s := newTwoTeachers(t, true)
	before := s.Cost()

	res, err := ParallelSolve(context.Background(), s, 3, testConfig())
	require.NoError(t, err)

	assert.Equal(t, khe.Cost(0), res.Stats.FinalCost)
	assert.Equal(t, khe.Cost(0), res.Soln.Cost())
	assert.Equal(t, 0, res.Worker)
	assert.Equal(t, before, s.Cost(), "original solution must not change")
}

func TestParallelSolve_errors(t *testing.T) {
	s := newTwoTeachers(t, false)

	_, err := ParallelSolve(context.Background(), s, 0, testConfig())
	assert.Error(t, err)

	cfg := testConfig()
	cfg.BestPaths = 0
	_, err = ParallelSolve(context.Background(), s, 2, cfg)
	assert.Error(t, err)
}
