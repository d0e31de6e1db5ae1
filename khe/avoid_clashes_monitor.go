package khe

import (
	"fmt"
	"strings"
)

// AvoidClashesMonitor monitors one resource of an avoid clashes constraint.
// Its deviation is the sum over all times of the number of tasks beyond the
// first that the resource attends at that time.
//
// Occupancy changes only update newDeviation. The cost catches up when the
// outermost batch ends.
type AvoidClashesMonitor struct {
	monitorBase
	constraint     *AvoidClashesConstraint
	resourceInSoln *ResourceInSoln
	deviation      int
	newDeviation   int
}

func newAvoidClashesMonitor(s *Soln, c *AvoidClashesConstraint, rs *ResourceInSoln) *AvoidClashesMonitor {
	m := &AvoidClashesMonitor{constraint: c, resourceInSoln: rs}
	m.init(m, s, TagAvoidClashes)
	ins := s.instance
	w := c.CombinedWeight()
	if d := ins.preassignedDuration(rs.resource, w); d > len(ins.Times) {
		m.lowerBound = c.Function.Apply(w, d-len(ins.Times))
	}
	rs.monitors = append(rs.monitors, m)
	return m
}

// Constraint returns the constraint monitored by m.
func (m *AvoidClashesMonitor) Constraint() *AvoidClashesConstraint {
	return m.constraint
}

// ResourceInSoln returns the resource monitored by m.
func (m *AvoidClashesMonitor) ResourceInSoln() *ResourceInSoln {
	return m.resourceInSoln
}

func clashes(occ int) int {
	if occ > 1 {
		return occ - 1
	}
	return 0
}

func (m *AvoidClashesMonitor) AttachToSoln() {
	if m.attached {
		return
	}
	m.attached = true
	dev := 0
	for _, occ := range m.resourceInSoln.timetable {
		dev += clashes(occ)
	}
	m.deviation = dev
	m.newDeviation = dev
	m.changeCost(m.constraint.Cost(dev))
	m.resourceInSoln.attachAvoidClashes(m)
}

func (m *AvoidClashesMonitor) DetachFromSoln() {
	if !m.attached {
		return
	}
	m.resourceInSoln.detachAvoidClashes(m)
	m.deviation = 0
	m.newDeviation = 0
	m.changeCost(0)
	m.attached = false
}

// Delete detaches m and removes it from its parents and its solution.
func (m *AvoidClashesMonitor) Delete() {
	m.DetachFromSoln()
	m.resourceInSoln.monitors = removeFirst(m.resourceInSoln.monitors, Monitor(m))
	deleteMonitor(m)
}

// changeClashCount records that the occupancy at some time went from
// oldOcc to newOcc.
func (m *AvoidClashesMonitor) changeClashCount(oldOcc, newOcc int) {
	m.newDeviation += clashes(newOcc) - clashes(oldOcc)
}

// flush makes the cost of m agree with its pending deviation.
func (m *AvoidClashesMonitor) flush() {
	if m.newDeviation == m.deviation {
		return
	}
	m.checkDeviation("flush", m.newDeviation)
	m.deviation = m.newDeviation
	m.changeCost(m.constraint.Cost(m.deviation))
}

func (m *AvoidClashesMonitor) Deviation() int {
	m.soln.bringUpToDate()
	return m.deviation
}

// DeviationDescription lists the times at which the resource clashes. The
// number of extra tasks is shown when there is more than one.
func (m *AvoidClashesMonitor) DeviationDescription() string {
	if m.Deviation() == 0 {
		return "0"
	}
	var parts []string
	for t, occ := range m.resourceInSoln.timetable {
		if occ < 2 {
			continue
		}
		name := m.soln.instance.Times[t].Name
		if occ >= 3 {
			name = fmt.Sprintf("%d %s", occ-1, name)
		}
		parts = append(parts, name)
	}
	return fmt.Sprintf("%d: %s", m.deviation, strings.Join(parts, "; "))
}

func (m *AvoidClashesMonitor) String() string {
	return m.describe(fmt.Sprintf("%q %s", m.constraint.Name, m.resourceInSoln.resource.Name))
}
