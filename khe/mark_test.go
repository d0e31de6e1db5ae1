package khe

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMark_undoRestoresSolution(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		s := newSchoolSoln(t, Config{Matching: true, Evenness: true})
		s.EvennessHandler().AttachAll()
		rng := rand.New(rand.NewSource(seed))
		want := takeSnapshot(s)

		m := s.MarkBegin()
		for i := 0; i < 30; i++ {
			randomEdit(s, rng)
		}
		m.End(true)

		if diff := cmp.Diff(want, takeSnapshot(s)); diff != "" {
			t.Errorf("seed %d: End(true): mismatch (-want +got):\n%s", seed, diff)
		}
		if got := s.MarkCount(); got != 0 {
			t.Errorf("seed %d: MarkCount(): got %d, want 0", seed, got)
		}
		checkConsistent(t, s)
	}
}

func TestMark_nested(t *testing.T) {
	s := newSchoolSoln(t, Config{Matching: true})
	initial := takeSnapshot(s)

	outer := s.MarkBegin()
	eventMeet(s, maths, 0).AssignTime(0)
	afterOuter := takeSnapshot(s)

	inner := s.MarkBegin()
	eventMeet(s, english, 0).AssignTime(1)
	eventMeet(s, english, 0).Task(0).AssignResource(smith)
	inner.End(true)

	if diff := cmp.Diff(afterOuter, takeSnapshot(s)); diff != "" {
		t.Errorf("inner End(true): mismatch (-want +got):\n%s", diff)
	}
	if outer.IsCurrent() {
		t.Errorf("IsCurrent(): got true, want false")
	}

	outer.End(true)
	if diff := cmp.Diff(initial, takeSnapshot(s)); diff != "" {
		t.Errorf("outer End(true): mismatch (-want +got):\n%s", diff)
	}
}

func TestMark_EndWithoutUndoKeepsChanges(t *testing.T) {
	s := newSchoolSoln(t, Config{})

	m := s.MarkBegin()
	eventMeet(s, art, 0).AssignTime(2)
	m.End(false)

	if got, want := s.Cost(), NewCost(3, 0); got != want {
		t.Errorf("Cost(): got %s, want %s", got, want)
	}
	if got := len(s.mainPath); got != 0 {
		t.Errorf("main path length: got %d, want 0", got)
	}
}

func TestMark_IsCurrent(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	m := s.MarkBegin()
	if !m.IsCurrent() {
		t.Errorf("IsCurrent(): got false, want true")
	}
	eventMeet(s, art, 0).AssignTime(2)
	if m.IsCurrent() {
		t.Errorf("IsCurrent() after change: got true, want false")
	}
	m.Undo()
	if !m.IsCurrent() {
		t.Errorf("IsCurrent() after Undo: got false, want true")
	}
	m.End(false)
}

func TestMark_notOnTop(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	m1 := s.MarkBegin()
	m2 := s.MarkBegin()

	mustPanic(t, "End", func() { m1.End(false) })
	mustPanic(t, "Undo", m1.Undo)

	m2.End(false)
	m1.End(false)
	mustPanic(t, "End of ended mark", func() { m1.End(false) })
}

func TestMark_reuse(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	m := s.MarkBegin()
	eventMeet(s, art, 0).AssignTime(2)
	m.AddPath()
	m.End(true)

	m2 := s.MarkBegin()
	if m2 != m {
		t.Errorf("MarkBegin(): ended mark was not reused")
	}
	if got := m2.PathCount(); got != 0 {
		t.Errorf("PathCount(): got %d, want 0", got)
	}
	if got, want := m2.String(), "[ Mark 0 (start_pos 0, cost 4.00000, 0 paths) ]"; got != want {
		t.Errorf("String(): got %q, want %q", got, want)
	}
	m2.End(false)
}

func TestMark_AddBestPath(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	mark := s.MarkBegin()
	var got []Cost
	costs := func() []Cost {
		got = got[:0]
		for i := 0; i < mark.PathCount(); i++ {
			got = append(got, mark.Path(i).Cost())
		}
		return got
	}

	eventMeet(s, maths, 0).AssignTime(0)
	if p := mark.AddBestPath(2); p == nil {
		t.Fatalf("AddBestPath(): got nil, want path")
	}
	mark.Undo()

	eventMeet(s, english, 0).AssignTime(1)
	if p := mark.AddBestPath(2); p == nil {
		t.Fatalf("AddBestPath(): got nil, want path")
	}
	mark.Undo()
	if diff := cmp.Diff([]Cost{NewCost(2, 0), NewCost(3, 0)}, costs()); diff != "" {
		t.Errorf("paths: mismatch (-want +got):\n%s", diff)
	}

	// Not cheaper than the worst kept path.
	eventMeet(s, art, 0).AssignTime(0)
	if p := mark.AddBestPath(2); p != nil {
		t.Errorf("AddBestPath(): got %s, want nil", p)
	}
	mark.Undo()

	eventMeet(s, maths, 0).AssignTime(0)
	eventMeet(s, english, 0).AssignTime(2)
	p := mark.AddBestPath(2)
	if p == nil {
		t.Fatalf("AddBestPath(): got nil, want path")
	}
	if got, want := p.Count(), 2; got != want {
		t.Errorf("Count(): got %d, want %d", got, want)
	}
	mark.Undo()
	if diff := cmp.Diff([]Cost{NewCost(1, 0), NewCost(2, 0)}, costs()); diff != "" {
		t.Errorf("paths: mismatch (-want +got):\n%s", diff)
	}

	best := mark.Path(0)
	best.Redo()
	if got, want := s.Cost(), NewCost(1, 0); got != want {
		t.Errorf("Cost() after Redo: got %s, want %s", got, want)
	}
	mustPanic(t, "Redo of non current mark", best.Redo)

	mark.End(false)
	if got, want := s.Cost(), NewCost(1, 0); got != want {
		t.Errorf("Cost() after End: got %s, want %s", got, want)
	}
	if best.Mark() != nil {
		t.Errorf("Mark(): paths of an ended mark must be deleted")
	}
}

func TestPath_Undo(t *testing.T) {
	s := newSchoolSoln(t, Config{Matching: true})
	mark := s.MarkBegin()
	start := takeSnapshot(s)

	m := eventMeet(s, maths, 0)
	m.AssignTime(1)
	m.Split(1)
	eventMeet(s, english, 0).Task(0).AssignResource(jones)
	p := mark.AddPath()

	p.Undo()
	if diff := cmp.Diff(start, takeSnapshot(s)); diff != "" {
		t.Errorf("Undo(): mismatch (-want +got):\n%s", diff)
	}
	if got, want := mark.StartCost(), s.Cost(); got != want {
		t.Errorf("StartCost(): got %s, want %s", got, want)
	}

	p.Delete()
	if got := mark.PathCount(); got != 0 {
		t.Errorf("PathCount(): got %d, want 0", got)
	}
	mustPanic(t, "Undo of deleted path", p.Undo)
	mark.End(true)
}

func TestSoln_randomEditsStayConsistent(t *testing.T) {
	s := newSchoolSoln(t, Config{Matching: true, Evenness: true})
	s.EvennessHandler().AttachAll()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		randomEdit(s, rng)
		if i%10 == 0 {
			checkConsistent(t, s)
		}
	}
	checkConsistent(t, s)
}

func TestMark_undoRoundTripAllEdits(t *testing.T) {
	applied := map[string]int{}
	for seed := int64(1); seed <= 200; seed++ {
		s := newSchoolSoln(t, Config{Matching: true, Evenness: true})
		s.EvennessHandler().AttachAll()
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < 10; i++ {
			applied[randomEdit(s, rng)]++
		}
		initial := takeSnapshot(s)

		outer := s.MarkBegin()
		for i := 0; i < 15; i++ {
			applied[randomEdit(s, rng)]++
		}
		middle := takeSnapshot(s)

		inner := s.MarkBegin()
		for i := 0; i < 15; i++ {
			applied[randomEdit(s, rng)]++
		}
		inner.End(true)
		if diff := cmp.Diff(middle, takeSnapshot(s)); diff != "" {
			t.Fatalf("seed %d: inner End(true): mismatch (-want +got):\n%s", seed, diff)
		}

		outer.End(true)
		if diff := cmp.Diff(initial, takeSnapshot(s)); diff != "" {
			t.Fatalf("seed %d: outer End(true): mismatch (-want +got):\n%s", seed, diff)
		}
		checkConsistent(t, s)
	}

	for _, op := range []string{
		"AssignTime", "UnassignTime", "AssignResource", "UnassignResource",
		"Split", "Merge", "AddMeet", "Delete", "SetDomain",
	} {
		if applied[op] == 0 {
			t.Errorf("randomEdit never applied %s", op)
		}
	}
}
