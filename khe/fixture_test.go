package khe

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"testing"
)

// Indexes of the school fixture.
const (
	smith = iota
	jones
	room1
)

const (
	maths = iota
	english
	art
)

// newSchool returns a small finalized instance with four times, two
// teachers, one room and three events:
//
//	Maths    duration 2, teacher preassigned Smith
//	English  duration 1, any teacher
//	Art      duration 1, room preassigned Room1
//
// Every event must be assigned a time (hard), no resource may clash (hard),
// Smith should not work at time T3 (soft, weight 10), and Maths should be
// split into one or two meets of duration 1 or 2 (soft).
func newSchool(t *testing.T) *Instance {
	t.Helper()
	ins := NewInstance("school")
	for _, name := range []string{"T0", "T1", "T2", "T3"} {
		ins.AddTime(name)
	}
	ins.AddPartition("teachers")
	ins.AddPartition("rooms")
	ins.AddResource("Smith", 0)
	ins.AddResource("Jones", 0)
	ins.AddResource("Room1", 1)

	ins.AddEvent("Maths", 2).AddResource([]int{smith, jones}, smith)
	ins.AddEvent("English", 1).AddResource([]int{smith, jones}, -1)
	ins.AddEvent("Art", 1).AddResource([]int{room1}, room1)

	ins.AssignTime = append(ins.AssignTime, &AssignTimeConstraint{
		ConstraintBase: ConstraintBase{Name: "assign", Required: true, Weight: 1, Function: Linear},
		Events:         []int{maths, english, art},
	})
	ins.AvoidClashes = append(ins.AvoidClashes, &AvoidClashesConstraint{
		ConstraintBase: ConstraintBase{Name: "clashes", Required: true, Weight: 1, Function: Linear},
		Resources:      []int{smith, jones, room1},
	})
	ins.AvoidUnavailableTimes = append(ins.AvoidUnavailableTimes, &AvoidUnavailableTimesConstraint{
		ConstraintBase: ConstraintBase{Name: "unavailable", Weight: 10, Function: Linear},
		Resources:      []int{smith},
		Times:          []int{3},
	})
	ins.SplitEvents = append(ins.SplitEvents, &SplitEventsConstraint{
		ConstraintBase: ConstraintBase{Name: "split", Weight: 1, Function: Linear},
		Events:         []int{maths},
		MinDuration:    1,
		MaxDuration:    2,
		MinAmount:      1,
		MaxAmount:      2,
	})
	if err := ins.Finalize(); err != nil {
		t.Fatalf("Finalize(): %s", err)
	}
	return ins
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSchoolSoln(t *testing.T, cfg Config) *Soln {
	t.Helper()
	cfg.Logger = quietLogger()
	return NewSoln(newSchool(t), cfg)
}

// eventMeet returns the i-th meet of event e in s.
func eventMeet(s *Soln, e, i int) *Meet {
	return s.events[e].meets[i]
}

// checkConsistent fails t if the cost of any attached child of s differs
// from the cost obtained by detaching and reattaching it, or if the cost of
// s differs from the sum of its children's costs.
func checkConsistent(t *testing.T, s *Soln) {
	t.Helper()
	var sum Cost
	for i := 0; i < s.ChildCount(); i++ {
		m := s.Child(i)
		got := m.Cost()
		if got < 0 {
			t.Fatalf("%s: negative cost", m)
		}
		if m.Deviation() < 0 {
			t.Fatalf("%s: negative deviation", m)
		}
		if m.Attached() {
			m.DetachFromSoln()
			m.AttachToSoln()
			if want := m.Cost(); got != want {
				t.Fatalf("%s: incremental cost %s, recomputed cost %s", m, got, want)
			}
		}
		sum += m.Cost()
	}
	if got := s.Cost(); got != sum {
		t.Fatalf("Soln.Cost(): got %s, want sum of children %s", got, sum)
	}
}

// snapshot captures the observable state of s. Meets are listed in sorted
// order since undoing a merge may change the order of an event's meets.
// Demand monitors only count through Unmatched: which nodes end up
// unmatched depends on the order of the augmenting path searches.
type snapshot struct {
	Cost       Cost
	Deviations []int
	Unmatched  int
	Meets      []string
}

func takeSnapshot(s *Soln) snapshot {
	snap := snapshot{Cost: s.Cost()}
	for _, m := range s.monitors {
		if _, ok := m.(demandMonitor); ok {
			continue
		}
		snap.Deviations = append(snap.Deviations, m.Deviation())
	}
	if s.matching != nil {
		snap.Unmatched = s.matching.UnmatchedCount()
	}
	for _, m := range s.meets {
		snap.Meets = append(snap.Meets, m.String()+fmt.Sprint(taskResources(m)))
	}
	slices.Sort(snap.Meets)
	return snap
}

func taskResources(m *Meet) []int {
	var res []int
	for _, task := range m.tasks {
		res = append(res, task.resource)
	}
	return res
}

// randomEdit applies one random change to s and returns the name of the
// method it called, or "" if the change did not apply.
func randomEdit(s *Soln, rng *rand.Rand) string {
	if len(s.meets) == 0 {
		s.AddMeet(s.instance.Events[rng.Intn(len(s.instance.Events))], 1)
		return "AddMeet"
	}
	m := s.meets[rng.Intn(len(s.meets))]
	switch rng.Intn(9) {
	case 0:
		if starts := m.StartTimes(); len(starts) > 0 && m.AssignTime(starts[rng.Intn(len(starts))]) {
			return "AssignTime"
		}
	case 1:
		if m.time >= 0 {
			m.UnassignTime()
			return "UnassignTime"
		}
	case 2:
		if len(m.tasks) > 0 {
			task := m.tasks[rng.Intn(len(m.tasks))]
			if len(task.domain) > 0 && task.AssignResource(task.domain[rng.Intn(len(task.domain))]) {
				return "AssignResource"
			}
		}
	case 3:
		if len(m.tasks) > 0 {
			if task := m.tasks[rng.Intn(len(m.tasks))]; task.resource >= 0 {
				task.UnassignResource()
				return "UnassignResource"
			}
		}
	case 4:
		if m.duration > 1 {
			if _, ok := m.Split(1 + rng.Intn(m.duration-1)); ok {
				return "Split"
			}
		}
	case 5:
		es := s.events[m.event.Index]
		for _, m2 := range es.meets {
			if m.Merge(m2) {
				return "Merge"
			}
		}
	case 6:
		e := s.instance.Events[rng.Intn(len(s.instance.Events))]
		s.AddMeet(e, 1+rng.Intn(e.Duration))
		return "AddMeet"
	case 7:
		m.Delete()
		return "Delete"
	case 8:
		if len(m.tasks) > 0 {
			task := m.tasks[rng.Intn(len(m.tasks))]
			if task.SetDomain(randomSubset(task.eventResource.Domain, rng)) {
				return "SetDomain"
			}
		}
	}
	return ""
}

// randomSubset returns a non-empty random subset of xs, in order.
func randomSubset(xs []int, rng *rand.Rand) []int {
	var res []int
	for _, x := range xs {
		if rng.Intn(2) == 0 {
			res = append(res, x)
		}
	}
	if len(res) == 0 {
		res = append(res, xs[rng.Intn(len(xs))])
	}
	return res
}
