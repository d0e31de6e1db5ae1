package khe

// Trace records which children of a group monitor changed cost while it was
// open, and what their costs were before they first changed.
type Trace struct {
	group     *GroupMonitor
	open      bool
	groupInit Cost
	monitors  []Monitor
	initCosts []Cost
	seen      map[*monitorBase]bool
}

// NewTrace returns a closed trace of g.
func NewTrace(g *GroupMonitor) *Trace {
	return &Trace{
		group: g,
		seen:  map[*monitorBase]bool{},
	}
}

// Begin clears t and starts recording.
func (t *Trace) Begin() {
	if t.open {
		panic("Trace.Begin: trace is already open")
	}
	t.open = true
	t.groupInit = t.group.cost
	t.monitors = t.monitors[:0]
	t.initCosts = t.initCosts[:0]
	clear(t.seen)
	t.group.traces = append(t.group.traces, t)
}

// End stops recording. The recorded monitors stay available until the next
// call to Begin.
func (t *Trace) End() {
	if !t.open {
		panic("Trace.End: trace is not open")
	}
	traces := t.group.traces
	for i, x := range traces {
		if x == t {
			traces[i] = traces[len(traces)-1]
			traces[len(traces)-1] = nil
			t.group.traces = traces[:len(traces)-1]
			break
		}
	}
	t.open = false
}

// Group returns the group monitor traced by t.
func (t *Trace) Group() *GroupMonitor {
	return t.group
}

// GroupInitCost returns the cost of the group when Begin was called.
func (t *Trace) GroupInitCost() Cost {
	return t.groupInit
}

// MonitorCount returns the number of children whose cost changed.
func (t *Trace) MonitorCount() int {
	return len(t.monitors)
}

// Monitor returns the i-th child whose cost changed, in order of first
// change.
func (t *Trace) Monitor(i int) Monitor {
	return t.monitors[i]
}

// InitCost returns the cost of the i-th recorded child before its first
// change.
func (t *Trace) InitCost(i int) Cost {
	return t.initCosts[i]
}

func (t *Trace) childChanged(m Monitor, oldCost Cost) {
	mb := m.base()
	if t.seen[mb] {
		return
	}
	t.seen[mb] = true
	t.monitors = append(t.monitors, m)
	t.initCosts = append(t.initCosts, oldCost)
}
