package khe

import (
	"fmt"
	"strings"
)

// AssignTimeMonitor monitors one event of an assign time constraint. Its
// deviation is the total duration of the event's unassigned meets.
type AssignTimeMonitor struct {
	monitorBase
	constraint  *AssignTimeConstraint
	eventInSoln *EventInSoln
	deviation   int
}

func newAssignTimeMonitor(s *Soln, c *AssignTimeConstraint, es *EventInSoln) *AssignTimeMonitor {
	m := &AssignTimeMonitor{constraint: c, eventInSoln: es}
	m.init(m, s, TagAssignTime)
	es.monitors = append(es.monitors, m)
	return m
}

// Constraint returns the constraint monitored by m.
func (m *AssignTimeMonitor) Constraint() *AssignTimeConstraint {
	return m.constraint
}

// EventInSoln returns the event monitored by m.
func (m *AssignTimeMonitor) EventInSoln() *EventInSoln {
	return m.eventInSoln
}

func (m *AssignTimeMonitor) AttachToSoln() {
	if m.attached {
		return
	}
	m.attached = true
	m.deviation = 0
	for _, meet := range m.eventInSoln.meets {
		if meet.time < 0 {
			m.deviation += meet.duration
		}
	}
	m.changeCost(m.constraint.Cost(m.deviation))
	m.eventInSoln.attachAssignTime(m)
}

func (m *AssignTimeMonitor) DetachFromSoln() {
	if !m.attached {
		return
	}
	m.eventInSoln.detachAssignTime(m)
	m.deviation = 0
	m.changeCost(0)
	m.attached = false
}

// Delete detaches m and removes it from its parents and its solution.
func (m *AssignTimeMonitor) Delete() {
	m.DetachFromSoln()
	m.eventInSoln.monitors = removeFirst(m.eventInSoln.monitors, Monitor(m))
	deleteMonitor(m)
}

func (m *AssignTimeMonitor) update(op string, delta int) {
	m.deviation += delta
	m.checkDeviation(op, m.deviation)
	m.changeCost(m.constraint.Cost(m.deviation))
}

func (m *AssignTimeMonitor) addMeet(meet *Meet) {
	if meet.time < 0 {
		m.update("addMeet", meet.duration)
	}
}

func (m *AssignTimeMonitor) deleteMeet(meet *Meet) {
	if meet.time < 0 {
		m.update("deleteMeet", -meet.duration)
	}
}

func (m *AssignTimeMonitor) assignTime(meet *Meet) {
	m.update("assignTime", -meet.duration)
}

func (m *AssignTimeMonitor) unassignTime(meet *Meet) {
	m.update("unassignTime", meet.duration)
}

func (m *AssignTimeMonitor) Deviation() int {
	return m.deviation
}

// DeviationDescription returns "0", the deviation alone when a single meet
// is unassigned, or the deviation followed by the duration of each
// unassigned meet.
func (m *AssignTimeMonitor) DeviationDescription() string {
	if m.deviation == 0 {
		return "0"
	}
	var durns []string
	for _, meet := range m.eventInSoln.meets {
		if meet.time < 0 {
			durns = append(durns, fmt.Sprint(meet.duration))
		}
	}
	if len(durns) == 1 {
		return fmt.Sprint(m.deviation)
	}
	return fmt.Sprintf("%d: %s", m.deviation, strings.Join(durns, "; "))
}

func (m *AssignTimeMonitor) String() string {
	return m.describe(fmt.Sprintf("%q %s", m.constraint.Name, m.eventInSoln.event.Name))
}
