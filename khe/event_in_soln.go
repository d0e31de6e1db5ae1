package khe

// EventInSoln is the solution view of an event: its meets and the monitors
// watching them.
type EventInSoln struct {
	event       *Event
	meets       []*Meet
	assignTime  []*AssignTimeMonitor  // attached only
	splitEvents []*SplitEventsMonitor // attached only
	monitors    []Monitor
}

// Event returns the event of es.
func (es *EventInSoln) Event() *Event {
	return es.event
}

// MeetCount returns the number of meets of the event.
func (es *EventInSoln) MeetCount() int {
	return len(es.meets)
}

// Meet returns the i-th meet of the event.
func (es *EventInSoln) Meet(i int) *Meet {
	return es.meets[i]
}

// MonitorCount returns the number of monitors watching the event, attached
// or not.
func (es *EventInSoln) MonitorCount() int {
	return len(es.monitors)
}

// Monitor returns the i-th monitor watching the event.
func (es *EventInSoln) Monitor(i int) Monitor {
	return es.monitors[i]
}

func (es *EventInSoln) addMeet(m *Meet) {
	m.eventIndex = len(es.meets)
	es.meets = append(es.meets, m)
	for _, am := range es.assignTime {
		am.addMeet(m)
	}
	for _, sm := range es.splitEvents {
		sm.addMeet(m)
	}
}

func (es *EventInSoln) deleteMeet(m *Meet) {
	for _, am := range es.assignTime {
		am.deleteMeet(m)
	}
	for _, sm := range es.splitEvents {
		sm.deleteMeet(m)
	}
	es.removeMeet(m)
}

func (es *EventInSoln) removeMeet(m *Meet) {
	last := es.meets[len(es.meets)-1]
	es.meets[m.eventIndex] = last
	last.eventIndex = m.eventIndex
	es.meets[len(es.meets)-1] = nil
	es.meets = es.meets[:len(es.meets)-1]
	m.eventIndex = -1
}

// meetAssigned is called after m was assigned a time.
func (es *EventInSoln) meetAssigned(m *Meet) {
	for _, am := range es.assignTime {
		am.assignTime(m)
	}
}

// meetUnassigned is called before the time of m is removed.
func (es *EventInSoln) meetUnassigned(m *Meet) {
	for _, am := range es.assignTime {
		am.unassignTime(m)
	}
}

// splitMeet is called after m1 was split into m1 and m2.
func (es *EventInSoln) splitMeet(m1, m2 *Meet) {
	m2.eventIndex = len(es.meets)
	es.meets = append(es.meets, m2)
	for _, sm := range es.splitEvents {
		sm.splitMeet(m1, m2)
	}
}

// mergeMeet is called before m2 is merged into m1.
func (es *EventInSoln) mergeMeet(m1, m2 *Meet) {
	for _, sm := range es.splitEvents {
		sm.mergeMeet(m1, m2)
	}
	es.removeMeet(m2)
}

func (es *EventInSoln) attachAssignTime(m *AssignTimeMonitor) {
	es.assignTime = append(es.assignTime, m)
}

func (es *EventInSoln) detachAssignTime(m *AssignTimeMonitor) {
	es.assignTime = removeFirst(es.assignTime, m)
}

func (es *EventInSoln) attachSplitEvents(m *SplitEventsMonitor) {
	es.splitEvents = append(es.splitEvents, m)
}

func (es *EventInSoln) detachSplitEvents(m *SplitEventsMonitor) {
	es.splitEvents = removeFirst(es.splitEvents, m)
}

// removeFirst removes the first occurrence of x from s, preserving order.
func removeFirst[T comparable](s []T, x T) []T {
	for i, y := range s {
		if y == x {
			var zero T
			copy(s[i:], s[i+1:])
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	panic("removeFirst: element not found")
}
