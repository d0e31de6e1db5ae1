package khe

import (
	"fmt"
	"strings"
)

// AvoidUnavailableTimesMonitor monitors one resource of an avoid unavailable
// times constraint. Its deviation is the number of unavailable times at
// which the resource is busy.
type AvoidUnavailableTimesMonitor struct {
	monitorBase
	constraint     *AvoidUnavailableTimesConstraint
	resourceInSoln *ResourceInSoln
	deviation      int
}

func newAvoidUnavailableTimesMonitor(s *Soln, c *AvoidUnavailableTimesConstraint, rs *ResourceInSoln) *AvoidUnavailableTimesMonitor {
	m := &AvoidUnavailableTimesMonitor{constraint: c, resourceInSoln: rs}
	m.init(m, s, TagAvoidUnavailableTimes)
	m.lowerBound = m.initLowerBound()
	rs.monitors = append(rs.monitors, m)
	return m
}

// initLowerBound returns the cost forced on m when the resource has more
// surely timetabled preassigned duration than available times, and a more
// important avoid clashes constraint keeps it from doubling up.
func (m *AvoidUnavailableTimesMonitor) initLowerBound() Cost {
	ins := m.soln.instance
	r := m.resourceInSoln.resource
	w := m.constraint.CombinedWeight()
	guarded := false
	for _, c := range r.avoidClashes {
		if c.CombinedWeight() > w {
			guarded = true
			break
		}
	}
	if !guarded {
		return 0
	}
	d := ins.preassignedDuration(r, w) + len(m.constraint.Times) - len(ins.Times)
	if d <= 0 {
		return 0
	}
	return m.constraint.Cost(d)
}

// Constraint returns the constraint monitored by m.
func (m *AvoidUnavailableTimesMonitor) Constraint() *AvoidUnavailableTimesConstraint {
	return m.constraint
}

// ResourceInSoln returns the resource monitored by m.
func (m *AvoidUnavailableTimesMonitor) ResourceInSoln() *ResourceInSoln {
	return m.resourceInSoln
}

func (m *AvoidUnavailableTimesMonitor) AttachToSoln() {
	if m.attached {
		return
	}
	m.attached = true
	busy := 0
	for _, t := range m.constraint.Times {
		if m.resourceInSoln.timetable[t] > 0 {
			busy++
		}
	}
	m.addBusyAndIdle(busy)
	m.resourceInSoln.attachAvoidUnavailable(m)
}

func (m *AvoidUnavailableTimesMonitor) DetachFromSoln() {
	if !m.attached {
		return
	}
	m.resourceInSoln.detachAvoidUnavailable(m)
	m.deleteBusyAndIdle()
	m.attached = false
}

// Delete detaches m and removes it from its parents and its solution.
func (m *AvoidUnavailableTimesMonitor) Delete() {
	m.DetachFromSoln()
	m.resourceInSoln.monitors = removeFirst(m.resourceInSoln.monitors, Monitor(m))
	deleteMonitor(m)
}

func (m *AvoidUnavailableTimesMonitor) addBusyAndIdle(busy int) {
	if m.deviation != 0 {
		panic(fmt.Sprintf("AvoidUnavailableTimesMonitor.addBusyAndIdle: deviation is %d", m.deviation))
	}
	m.checkDeviation("addBusyAndIdle", busy)
	m.deviation = busy
	m.changeCost(m.constraint.Cost(busy))
}

func (m *AvoidUnavailableTimesMonitor) deleteBusyAndIdle() {
	m.deviation = 0
	m.changeCost(0)
}

func (m *AvoidUnavailableTimesMonitor) changeBusyAndIdle(oldBusy, newBusy int) {
	if oldBusy != m.deviation {
		panic(fmt.Sprintf("AvoidUnavailableTimesMonitor.changeBusyAndIdle: old %d, deviation %d",
			oldBusy, m.deviation))
	}
	m.checkDeviation("changeBusyAndIdle", newBusy)
	m.deviation = newBusy
	m.changeCost(m.constraint.Cost(newBusy))
}

func (m *AvoidUnavailableTimesMonitor) Deviation() int {
	return m.deviation
}

// DeviationDescription lists the unavailable times at which the resource is
// busy.
func (m *AvoidUnavailableTimesMonitor) DeviationDescription() string {
	if m.deviation == 0 {
		return "0"
	}
	var names []string
	for _, t := range m.constraint.Times {
		if m.resourceInSoln.timetable[t] > 0 {
			names = append(names, m.soln.instance.Times[t].Name)
		}
	}
	return fmt.Sprintf("%d: %s", m.deviation, strings.Join(names, "; "))
}

func (m *AvoidUnavailableTimesMonitor) String() string {
	return m.describe(fmt.Sprintf("%q %s", m.constraint.Name, m.resourceInSoln.resource.Name))
}
