package khe

import "fmt"

// GroupMonitor is a monitor whose cost is the sum of the costs of its
// children. A monitor may be a child of several groups, and groups may be
// nested, but the graph of group links must be acyclic.
type GroupMonitor struct {
	monitorBase
	subTag   int
	label    string
	children []*monitorLink
	defects  []*monitorLink
	traces   []*Trace
}

// NewGroupMonitor returns a new group monitor of soln with no children. The
// sub-tag and label are free for the caller to use, e.g. to recognise the
// groups it built.
func NewGroupMonitor(soln *Soln, subTag int, label string) *GroupMonitor {
	g := &GroupMonitor{subTag: subTag, label: label}
	g.init(g, soln, TagGroup)
	g.attached = true
	return g
}

// SubTag returns the sub-tag of g.
func (g *GroupMonitor) SubTag() int {
	return g.subTag
}

// Label returns the label of g.
func (g *GroupMonitor) Label() string {
	return g.label
}

// AttachToSoln attaches every descendant of g.
func (g *GroupMonitor) AttachToSoln() {
	for _, l := range g.children {
		l.child.AttachToSoln()
	}
}

// DetachFromSoln detaches every descendant of g.
func (g *GroupMonitor) DetachFromSoln() {
	for _, l := range g.children {
		l.child.DetachFromSoln()
	}
}

// Deviation returns the number of defects of g.
func (g *GroupMonitor) Deviation() int {
	return len(g.defects)
}

func (g *GroupMonitor) DeviationDescription() string {
	return fmt.Sprintf("%d defects", len(g.defects))
}

func (g *GroupMonitor) String() string {
	return g.describe(fmt.Sprintf("%q (%d children, %d defects)", g.label, len(g.children), len(g.defects)))
}

// ChildCount returns the number of children of g.
func (g *GroupMonitor) ChildCount() int {
	return len(g.children)
}

// Child returns the i-th child of g.
func (g *GroupMonitor) Child(i int) Monitor {
	return g.children[i].child
}

// DefectCount returns the number of children of g with a non-zero cost.
func (g *GroupMonitor) DefectCount() int {
	return len(g.defects)
}

// Defect returns the i-th defect of g, in no particular order.
func (g *GroupMonitor) Defect(i int) Monitor {
	return g.defects[i].child
}

// HasChild returns true if m is a child of g.
func (g *GroupMonitor) HasChild(m Monitor) bool {
	return g.findLink(m) != nil
}

func (g *GroupMonitor) findLink(m Monitor) *monitorLink {
	// Search the shorter of the two lists.
	mb := m.base()
	if len(mb.parents) < len(g.children) {
		for _, l := range mb.parents {
			if l.parent == g {
				return l
			}
		}
		return nil
	}
	for _, l := range g.children {
		if l.child == m {
			return l
		}
	}
	return nil
}

// AddChild makes m a child of g. It panics if m is already a child of g, if
// m is the solution, or if the link would create a cycle.
func (g *GroupMonitor) AddChild(m Monitor) {
	mb := m.base()
	if mb.tag == TagSoln {
		panic("GroupMonitor.AddChild: the solution cannot be a child")
	}
	if mb.soln != g.soln {
		panic("GroupMonitor.AddChild: monitors of different solutions")
	}
	if child, ok := m.(*GroupMonitor); ok && (child == g || Descendant(g, child)) {
		panic("GroupMonitor.AddChild: cycle in group monitor graph")
	}
	if g.HasChild(m) {
		panic("GroupMonitor.AddChild: duplicate link")
	}
	l := &monitorLink{
		parent:      g,
		child:       m,
		parentIndex: len(g.children),
		childIndex:  len(mb.parents),
		defectIndex: -1,
	}
	g.children = append(g.children, l)
	mb.parents = append(mb.parents, l)
	g.lowerBound += mb.lowerBound
	if mb.cost > 0 {
		g.childCostChanged(l, 0, mb.cost)
	}
}

// DeleteChild removes child m from g. It panics if m is not a child of g.
func (g *GroupMonitor) DeleteChild(m Monitor) {
	l := g.findLink(m)
	if l == nil {
		panic("GroupMonitor.DeleteChild: not a child")
	}
	g.deleteLink(l)
}

// deleteLink removes l from both its parent and its child.
func (g *GroupMonitor) deleteLink(l *monitorLink) {
	mb := l.child.base()
	if mb.cost > 0 {
		g.childCostChanged(l, mb.cost, 0)
	}
	g.lowerBound -= mb.lowerBound

	last := g.children[len(g.children)-1]
	g.children[l.parentIndex] = last
	last.parentIndex = l.parentIndex
	g.children = g.children[:len(g.children)-1]

	last = mb.parents[len(mb.parents)-1]
	mb.parents[l.childIndex] = last
	last.childIndex = l.childIndex
	mb.parents = mb.parents[:len(mb.parents)-1]
}

// childCostChanged records that the cost of the child of link l changed from
// oldCost to newCost, and propagates the change upwards.
func (g *GroupMonitor) childCostChanged(l *monitorLink, oldCost, newCost Cost) {
	switch {
	case oldCost == 0 && newCost > 0:
		l.defectIndex = len(g.defects)
		g.defects = append(g.defects, l)
	case oldCost > 0 && newCost == 0:
		last := g.defects[len(g.defects)-1]
		g.defects[l.defectIndex] = last
		last.defectIndex = l.defectIndex
		g.defects = g.defects[:len(g.defects)-1]
		l.defectIndex = -1
	}
	for _, t := range g.traces {
		t.childChanged(l.child, oldCost)
	}
	g.changeCost(g.cost - oldCost + newCost)
}

// BypassAndDelete makes each child of g a child of each parent of g, unless
// it is one already, then deletes g.
func (g *GroupMonitor) BypassAndDelete() {
	for _, pl := range g.parents {
		for _, cl := range g.children {
			if !pl.parent.HasChild(cl.child) {
				pl.parent.AddChild(cl.child)
			}
		}
	}
	g.Delete()
}

// Delete removes g from its parents, removes its children, and removes it
// from its solution.
func (g *GroupMonitor) Delete() {
	if g.tag == TagSoln {
		panic("GroupMonitor.Delete: cannot delete the solution")
	}
	if len(g.traces) > 0 {
		panic("GroupMonitor.Delete: group has an open trace")
	}
	for len(g.children) > 0 {
		g.deleteLink(g.children[len(g.children)-1])
	}
	g.attached = false
	deleteMonitor(g)
}
