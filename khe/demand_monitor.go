package khe

import (
	"fmt"

	"github.com/rhartert/khe-ls/khe/matching"
)

// demandMonitor is implemented by the monitors that own a demand node of
// the matching.
type demandMonitor interface {
	Monitor
	Node() *matching.DemandNode
	reprice()
}

// demandBase holds the state shared by demand monitors. It is the listener
// of its demand node: the deviation is 1 while the node is unmatched and its
// cost is then the matching weight of the solution.
type demandBase struct {
	monitorBase
	node      *matching.DemandNode
	unmatched bool
}

// Node returns the demand node of the monitor.
func (d *demandBase) Node() *matching.DemandNode {
	return d.node
}

// SetUnmatched is called by the matching when the node of the monitor
// becomes unmatched or matched.
func (d *demandBase) SetUnmatched(unmatched bool) {
	d.unmatched = unmatched
	d.reprice()
}

func (d *demandBase) reprice() {
	if d.unmatched {
		d.changeCost(d.soln.matchingWeight)
	} else {
		d.changeCost(0)
	}
}

func (d *demandBase) Deviation() int {
	d.soln.bringUpToDate()
	if d.unmatched {
		return 1
	}
	return 0
}

func (d *demandBase) DeviationDescription() string {
	return fmt.Sprint(d.Deviation())
}

func (d *demandBase) detachNode() {
	if d.node.Added() {
		d.node.Delete()
	}
	d.unmatched = false
	d.changeCost(0)
}

// OrdinaryDemandMonitor owns the demand node of one offset of a task: the
// task needs one of its resources at the time of that offset.
type OrdinaryDemandMonitor struct {
	demandBase
	task   *Task
	offset int
}

func newOrdinaryDemandMonitor(s *Soln, t *Task, offset int) *OrdinaryDemandMonitor {
	m := &OrdinaryDemandMonitor{task: t, offset: offset}
	m.init(m, s, TagOrdinaryDemand)
	domain := t.domain
	if t.resource >= 0 {
		domain = []int{t.resource}
	}
	m.node = matching.NewDemandNode(t.meet.chunks[offset], domain, m)
	return m
}

// Task returns the task whose demand m monitors.
func (m *OrdinaryDemandMonitor) Task() *Task {
	return m.task
}

// Offset returns the offset within its meet of the time m demands.
func (m *OrdinaryDemandMonitor) Offset() int {
	return m.offset
}

// AttachToSoln adds the node of m to the matching, unless the task of m is
// deleted, in which case the node is added when the task is restored.
func (m *OrdinaryDemandMonitor) AttachToSoln() {
	if m.attached {
		return
	}
	m.attached = true
	if m.task.live {
		m.node.Add()
	}
}

func (m *OrdinaryDemandMonitor) DetachFromSoln() {
	if !m.attached {
		return
	}
	m.detachNode()
	m.attached = false
}

func (m *OrdinaryDemandMonitor) String() string {
	return m.describe(fmt.Sprintf("%s+%d", m.task, m.offset))
}

// WorkloadDemandMonitor owns a demand node standing for one of the
// unavailable times of a resource: the resource consumes its own supply at
// those times.
type WorkloadDemandMonitor struct {
	demandBase
	resourceInSoln *ResourceInSoln
}

func newWorkloadDemandMonitor(s *Soln, rs *ResourceInSoln, dc *matching.DemandChunk) *WorkloadDemandMonitor {
	m := &WorkloadDemandMonitor{resourceInSoln: rs}
	m.init(m, s, TagWorkloadDemand)
	m.node = matching.NewDemandNode(dc, []int{rs.resource.Index}, m)
	rs.monitors = append(rs.monitors, m)
	return m
}

// ResourceInSoln returns the resource whose workload m stands for.
func (m *WorkloadDemandMonitor) ResourceInSoln() *ResourceInSoln {
	return m.resourceInSoln
}

func (m *WorkloadDemandMonitor) AttachToSoln() {
	if m.attached {
		return
	}
	m.attached = true
	m.node.Add()
}

func (m *WorkloadDemandMonitor) DetachFromSoln() {
	if !m.attached {
		return
	}
	m.detachNode()
	m.attached = false
}

func (m *WorkloadDemandMonitor) String() string {
	return m.describe(m.resourceInSoln.resource.Name)
}
