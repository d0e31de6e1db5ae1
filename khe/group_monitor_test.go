package khe

import "testing"

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: want panic", name)
		}
	}()
	f()
}

func TestGroupMonitor_additivity(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	g := NewGroupMonitor(s, 1, "assign time")
	for _, es := range s.events {
		g.AddChild(monitorOf[*AssignTimeMonitor](t, es.monitors))
	}
	if got, want := g.Cost(), NewCost(4, 0); got != want {
		t.Errorf("Cost(): got %s, want %s", got, want)
	}
	if got, want := g.DefectCount(), 3; got != want {
		t.Errorf("DefectCount(): got %d, want %d", got, want)
	}

	eventMeet(s, maths, 0).AssignTime(0)
	if got, want := g.Cost(), NewCost(2, 0); got != want {
		t.Errorf("Cost(): got %s, want %s", got, want)
	}
	if got, want := g.DefectCount(), 2; got != want {
		t.Errorf("DefectCount(): got %d, want %d", got, want)
	}

	// A group reached along two paths counts twice.
	top := NewGroupMonitor(s, 2, "top")
	mid := NewGroupMonitor(s, 3, "mid")
	top.AddChild(g)
	top.AddChild(mid)
	mid.AddChild(g)
	if got, want := PathCount(g, top), 2; got != want {
		t.Errorf("PathCount(): got %d, want %d", got, want)
	}
	if got, want := top.Cost(), 2*g.Cost(); got != want {
		t.Errorf("Cost(): got %s, want %s", got, want)
	}

	mid.DeleteChild(g)
	if got, want := top.Cost(), g.Cost(); got != want {
		t.Errorf("Cost() after DeleteChild: got %s, want %s", got, want)
	}
}

func TestGroupMonitor_AddChild_panics(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	g1 := NewGroupMonitor(s, 1, "g1")
	g2 := NewGroupMonitor(s, 2, "g2")
	g1.AddChild(g2)
	other := newSchoolSoln(t, Config{})

	mustPanic(t, "cycle", func() { g2.AddChild(g1) })
	mustPanic(t, "self", func() { g1.AddChild(g1) })
	mustPanic(t, "duplicate", func() { g1.AddChild(g2) })
	mustPanic(t, "solution", func() { g1.AddChild(s) })
	mustPanic(t, "other solution", func() { g1.AddChild(other.Child(0)) })
}

func TestGroupMonitor_BypassAndDelete(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	am := monitorOf[*AssignTimeMonitor](t, s.events[maths].monitors)
	g := NewGroupMonitor(s, 1, "g")
	s.AddChild(g)
	g.AddChild(am)
	s.DeleteChild(am)
	before := s.Cost()

	g.BypassAndDelete()

	if !s.HasChild(am) {
		t.Errorf("HasChild(): got false, want true")
	}
	if g.SolnIndex() != -1 {
		t.Errorf("SolnIndex(): got %d, want -1", g.SolnIndex())
	}
	if got := s.Cost(); got != before {
		t.Errorf("Cost(): got %s, want %s", got, before)
	}
}

func TestMonitor_attachDetachIdempotent(t *testing.T) {
	s := newSchoolSoln(t, Config{Matching: true, Evenness: true})
	eventMeet(s, maths, 0).AssignTime(0)
	eventMeet(s, english, 0).AssignTime(2)
	eventMeet(s, english, 0).Task(0).AssignResource(smith)

	for _, m := range s.monitors {
		if m.Tag() == TagGroup {
			continue
		}
		attached := m.Attached()
		cost := m.Cost()

		m.AttachToSoln()
		m.AttachToSoln()
		c1 := m.Cost()
		m.DetachFromSoln()
		m.DetachFromSoln()
		if got := m.Cost(); got != 0 {
			t.Errorf("%s: Cost() after detach: got %s, want 0", m, got)
		}
		m.AttachToSoln()
		if got := m.Cost(); got != c1 {
			t.Errorf("%s: Cost() after reattach: got %s, want %s", m, got, c1)
		}
		if !attached {
			m.DetachFromSoln()
		}
		if got := m.Cost(); got != cost {
			t.Errorf("%s: Cost(): got %s, want %s", m, got, cost)
		}
	}
	checkConsistent(t, s)
}

func TestMonitor_Delete(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	am := monitorOf[*AssignTimeMonitor](t, s.events[art].monitors)
	count := s.MonitorCount()

	mustPanic(t, "attached", func() { deleteMonitor(am) })

	am.Delete()
	if got, want := s.MonitorCount(), count-1; got != want {
		t.Errorf("MonitorCount(): got %d, want %d", got, want)
	}
	if s.HasChild(am) {
		t.Errorf("HasChild(): got true, want false")
	}
	if got, want := s.Cost(), NewCost(3, 0); got != want {
		t.Errorf("Cost(): got %s, want %s", got, want)
	}
	for i := 0; i < s.MonitorCount(); i++ {
		if got := s.Monitor(i).SolnIndex(); got != i {
			t.Errorf("SolnIndex(): got %d, want %d", got, i)
		}
	}
}

func TestDeleteAllParentsRecursive(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	am := monitorOf[*AssignTimeMonitor](t, s.events[art].monitors)
	outer := NewGroupMonitor(s, 1, "outer")
	inner := NewGroupMonitor(s, 2, "inner")
	s.AddChild(outer)
	outer.AddChild(inner)
	inner.AddChild(am)

	DeleteAllParentsRecursive(am)

	if am.ParentCount() != 0 {
		t.Errorf("ParentCount(): got %d, want 0", am.ParentCount())
	}
	if inner.SolnIndex() != -1 || outer.SolnIndex() != -1 {
		t.Errorf("childless groups were not deleted")
	}
}

func TestAddSelfOrParent(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	am := monitorOf[*AssignTimeMonitor](t, s.events[art].monitors)
	byEvent := NewGroupMonitor(s, 7, "art")
	byEvent.AddChild(am)
	target := NewGroupMonitor(s, 1, "target")

	AddSelfOrParent(am, 7, target)
	if !target.HasChild(byEvent) {
		t.Errorf("AddSelfOrParent(): parent with sub-tag was not added")
	}

	cm := monitorOf[*AvoidClashesMonitor](t, s.resources[room1].monitors)
	AddSelfOrParent(cm, 7, target)
	if !target.HasChild(cm) {
		t.Errorf("AddSelfOrParent(): monitor was not added")
	}

	AddSelfOrParent(cm, 7, target)
	if got, want := target.ChildCount(), 2; got != want {
		t.Errorf("ChildCount(): got %d, want %d", got, want)
	}
}

func TestTrace(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	am := monitorOf[*AssignTimeMonitor](t, s.events[maths].monitors)
	tr := NewTrace(&s.GroupMonitor)

	tr.Begin()
	m := eventMeet(s, maths, 0)
	m.AssignTime(0)
	m.UnassignTime()
	m.AssignTime(1)
	tr.End()

	if got, want := tr.GroupInitCost(), NewCost(4, 0); got != want {
		t.Errorf("GroupInitCost(): got %s, want %s", got, want)
	}
	if got, want := tr.MonitorCount(), 1; got != want {
		t.Fatalf("MonitorCount(): got %d, want %d", got, want)
	}
	if tr.Monitor(0) != Monitor(am) {
		t.Errorf("Monitor(0): got %s, want %s", tr.Monitor(0), am)
	}
	if got, want := tr.InitCost(0), NewCost(2, 0); got != want {
		t.Errorf("InitCost(0): got %s, want %s", got, want)
	}

	mustPanic(t, "End twice", tr.End)
}
