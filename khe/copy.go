package khe

import (
	"fmt"
	"slices"

	"github.com/rhartert/khe-ls/khe/matching"
	"github.com/samber/lo"
)

// solnCopier builds a deep copy of a solution. Monitors are copied first,
// without their references to other objects, so that they can be looked up
// by solution index while everything else is linked. Meets and tasks are
// copied on first request.
type solnCopier struct {
	from  *Soln
	to    *Soln
	cm    *matching.CopyMap
	meets map[*Meet]*Meet
	tasks map[*Task]*Task
}

// Copy returns a deep copy of s sharing only the instance. The copy has the
// same meets, tasks, monitors, group links, costs and matching as s, and no
// marks. Copy panics if s has an open mark or batch.
func (s *Soln) Copy() *Soln {
	if len(s.marks) > 0 {
		panic("Soln.Copy: solution has an open mark")
	}
	if s.batchDepth > 0 {
		panic("Soln.Copy: solution has an open batch")
	}
	s.bringUpToDate()

	c := newEmptySoln(s.instance, s.config)
	c.logger = s.logger
	c.matchingWeight = s.matchingWeight
	c.cost = s.cost
	c.lowerBound = s.lowerBound

	cp := &solnCopier{
		from:  s,
		to:    c,
		meets: make(map[*Meet]*Meet, len(s.meets)),
		tasks: map[*Task]*Task{},
	}
	if s.evenness != nil {
		c.evenness = &EvennessHandler{soln: c, attachedCount: s.evenness.attachedCount}
	}
	for _, m := range s.monitors {
		c.monitors = append(c.monitors, cp.shell(m))
	}
	if s.matching != nil {
		c.matching, cp.cm = s.matching.Copy(func(l matching.Listener) matching.Listener {
			return cp.monitor(l.(Monitor)).(matching.Listener)
		})
	}

	cp.linkGroup(&s.GroupMonitor, &c.GroupMonitor)
	for _, m := range s.monitors {
		cp.link(m)
	}
	for i, es := range s.events {
		ces := c.events[i]
		ces.meets = lo.Map(es.meets, cp.meetAt)
		ces.assignTime = lo.Map(es.assignTime, func(m *AssignTimeMonitor, _ int) *AssignTimeMonitor {
			return cp.monitor(m).(*AssignTimeMonitor)
		})
		ces.splitEvents = lo.Map(es.splitEvents, func(m *SplitEventsMonitor, _ int) *SplitEventsMonitor {
			return cp.monitor(m).(*SplitEventsMonitor)
		})
		ces.monitors = lo.Map(es.monitors, cp.monitorAt)
	}
	for i, rs := range s.resources {
		crs := c.resources[i]
		crs.timetable = slices.Clone(rs.timetable)
		crs.tasks = lo.Map(rs.tasks, cp.taskAt)
		crs.avoidClashes = lo.Map(rs.avoidClashes, func(m *AvoidClashesMonitor, _ int) *AvoidClashesMonitor {
			return cp.monitor(m).(*AvoidClashesMonitor)
		})
		crs.avoidUnavailable = lo.Map(rs.avoidUnavailable, func(m *AvoidUnavailableTimesMonitor, _ int) *AvoidUnavailableTimesMonitor {
			return cp.monitor(m).(*AvoidUnavailableTimesMonitor)
		})
		crs.monitors = lo.Map(rs.monitors, cp.monitorAt)
	}
	c.meets = lo.Map(s.meets, cp.meetAt)
	c.workload = lo.Map(s.workload, func(m *WorkloadDemandMonitor, _ int) *WorkloadDemandMonitor {
		return cp.monitor(m).(*WorkloadDemandMonitor)
	})
	if s.evenness != nil {
		for _, ph := range s.evenness.partitions {
			c.evenness.partitions = append(c.evenness.partitions, &PartitionHandler{
				partition: ph.partition,
				monitors: lo.Map(ph.monitors, func(m *EvennessMonitor, _ int) *EvennessMonitor {
					return cp.monitor(m).(*EvennessMonitor)
				}),
			})
		}
	}

	s.logger.Debug("solution copied", "meets", len(c.meets), "monitors", len(c.monitors))
	return c
}

// monitor returns the copy of m.
func (cp *solnCopier) monitor(m Monitor) Monitor {
	if m == Monitor(cp.from) {
		return cp.to
	}
	return cp.to.monitors[m.SolnIndex()]
}

func (cp *solnCopier) monitorAt(m Monitor, _ int) Monitor {
	return cp.monitor(m)
}

func (cp *solnCopier) base(mb *monitorBase, self Monitor) monitorBase {
	nb := *mb
	nb.self = self
	nb.soln = cp.to
	nb.parents = nil
	return nb
}

// shell returns a copy of m whose references to meets, tasks, matching nodes
// and other monitors are not set yet.
func (cp *solnCopier) shell(m Monitor) Monitor {
	c := cp.to
	switch m := m.(type) {
	case *GroupMonitor:
		n := &GroupMonitor{subTag: m.subTag, label: m.label}
		n.monitorBase = cp.base(&m.monitorBase, n)
		return n
	case *AssignTimeMonitor:
		n := new(AssignTimeMonitor)
		*n = *m
		n.monitorBase = cp.base(&m.monitorBase, n)
		n.eventInSoln = c.events[m.eventInSoln.event.Index]
		return n
	case *SplitEventsMonitor:
		n := new(SplitEventsMonitor)
		*n = *m
		n.monitorBase = cp.base(&m.monitorBase, n)
		n.eventInSoln = c.events[m.eventInSoln.event.Index]
		return n
	case *AvoidClashesMonitor:
		n := new(AvoidClashesMonitor)
		*n = *m
		n.monitorBase = cp.base(&m.monitorBase, n)
		n.resourceInSoln = c.resources[m.resourceInSoln.resource.Index]
		return n
	case *AvoidUnavailableTimesMonitor:
		n := new(AvoidUnavailableTimesMonitor)
		*n = *m
		n.monitorBase = cp.base(&m.monitorBase, n)
		n.resourceInSoln = c.resources[m.resourceInSoln.resource.Index]
		return n
	case *OrdinaryDemandMonitor:
		n := &OrdinaryDemandMonitor{offset: m.offset}
		n.monitorBase = cp.base(&m.monitorBase, n)
		n.unmatched = m.unmatched
		return n
	case *WorkloadDemandMonitor:
		n := &WorkloadDemandMonitor{resourceInSoln: c.resources[m.resourceInSoln.resource.Index]}
		n.monitorBase = cp.base(&m.monitorBase, n)
		n.unmatched = m.unmatched
		return n
	case *EvennessMonitor:
		n := new(EvennessMonitor)
		*n = *m
		n.monitorBase = cp.base(&m.monitorBase, n)
		n.handler = c.evenness
		return n
	default:
		panic(fmt.Sprintf("Soln.Copy: unexpected monitor type %T", m))
	}
}

// link sets the references of the copy of m that shell left out.
func (cp *solnCopier) link(m Monitor) {
	switch m := m.(type) {
	case *GroupMonitor:
		cp.linkGroup(m, cp.monitor(m).(*GroupMonitor))
	case *OrdinaryDemandMonitor:
		n := cp.monitor(m).(*OrdinaryDemandMonitor)
		n.task = cp.task(m.task)
		n.node = cp.cm.DemandNode(m.node)
	case *WorkloadDemandMonitor:
		n := cp.monitor(m).(*WorkloadDemandMonitor)
		n.node = cp.cm.DemandNode(m.node)
	}
}

// linkGroup copies the child links of g to its copy n, keeping the
// positions of each link in the parent, child and defect lists.
func (cp *solnCopier) linkGroup(g, n *GroupMonitor) {
	n.children = make([]*monitorLink, len(g.children))
	n.defects = make([]*monitorLink, len(g.defects))
	for _, l := range g.children {
		child := cp.monitor(l.child)
		cb := child.base()
		if cb.parents == nil {
			cb.parents = make([]*monitorLink, len(l.child.base().parents))
		}
		nl := &monitorLink{
			parent:      n,
			child:       child,
			parentIndex: l.parentIndex,
			childIndex:  l.childIndex,
			defectIndex: l.defectIndex,
		}
		n.children[l.parentIndex] = nl
		cb.parents[l.childIndex] = nl
		if l.defectIndex >= 0 {
			n.defects[l.defectIndex] = nl
		}
	}
}

func (cp *solnCopier) meet(m *Meet) *Meet {
	if m == nil {
		return nil
	}
	if n, ok := cp.meets[m]; ok {
		return n
	}
	n := &Meet{
		soln:       cp.to,
		event:      m.event,
		duration:   m.duration,
		time:       m.time,
		solnIndex:  m.solnIndex,
		eventIndex: m.eventIndex,
	}
	cp.meets[m] = n
	n.tasks = lo.Map(m.tasks, cp.taskAt)
	if m.chunks != nil {
		n.chunks = lo.Map(m.chunks, func(dc *matching.DemandChunk, _ int) *matching.DemandChunk {
			return cp.cm.DemandChunk(dc)
		})
	}
	return n
}

func (cp *solnCopier) meetAt(m *Meet, _ int) *Meet {
	return cp.meet(m)
}

func (cp *solnCopier) task(t *Task) *Task {
	if t == nil {
		return nil
	}
	if n, ok := cp.tasks[t]; ok {
		return n
	}
	n := &Task{
		soln:          cp.to,
		eventResource: t.eventResource,
		domain:        t.domain,
		resource:      t.resource,
		live:          t.live,
		meetIndex:     t.meetIndex,
		resourceIndex: t.resourceIndex,
	}
	cp.tasks[t] = n
	n.meet = cp.meet(t.meet)
	if t.demands != nil {
		n.demands = lo.Map(t.demands, func(dm *OrdinaryDemandMonitor, _ int) *OrdinaryDemandMonitor {
			return cp.monitor(dm).(*OrdinaryDemandMonitor)
		})
	}
	return n
}

func (cp *solnCopier) taskAt(t *Task, _ int) *Task {
	return cp.task(t)
}
