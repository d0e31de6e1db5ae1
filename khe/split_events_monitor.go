package khe

import "fmt"

// SplitEventsMonitor monitors one event of a split events constraint. Its
// deviation is the number of meets missing below the minimum amount or
// exceeding the maximum amount, plus the number of meets whose duration is
// out of range.
type SplitEventsMonitor struct {
	monitorBase
	constraint  *SplitEventsConstraint
	eventInSoln *EventInSoln
	minDuration int
	maxDuration int
	minAmount   int
	maxAmount   int
	meetCount   int
	deviation   int
}

func newSplitEventsMonitor(s *Soln, c *SplitEventsConstraint, es *EventInSoln) *SplitEventsMonitor {
	m := &SplitEventsMonitor{
		constraint:  c,
		eventInSoln: es,
		minDuration: c.MinDuration,
		maxDuration: c.MaxDuration,
		minAmount:   c.MinAmount,
		maxAmount:   c.MaxAmount,
	}
	m.init(m, s, TagSplitEvents)
	es.monitors = append(es.monitors, m)
	return m
}

// Constraint returns the constraint monitored by m.
func (m *SplitEventsMonitor) Constraint() *SplitEventsConstraint {
	return m.constraint
}

// EventInSoln returns the event monitored by m.
func (m *SplitEventsMonitor) EventInSoln() *EventInSoln {
	return m.eventInSoln
}

// Limits returns the duration and amount limits of m.
func (m *SplitEventsMonitor) Limits() (minDuration, maxDuration, minAmount, maxAmount int) {
	return m.minDuration, m.maxDuration, m.minAmount, m.maxAmount
}

// AttachToSoln attaches m. An event with no meets has minAmount missing
// meets, so m starts from that deviation and then adds the existing meets.
func (m *SplitEventsMonitor) AttachToSoln() {
	if m.attached {
		return
	}
	m.attached = true
	m.meetCount = 0
	m.deviation = m.minAmount
	m.changeCost(m.constraint.Cost(m.deviation))
	for _, meet := range m.eventInSoln.meets {
		m.addMeet(meet)
	}
	m.eventInSoln.attachSplitEvents(m)
}

func (m *SplitEventsMonitor) DetachFromSoln() {
	if !m.attached {
		return
	}
	m.eventInSoln.detachSplitEvents(m)
	for _, meet := range m.eventInSoln.meets {
		m.deleteMeet(meet)
	}
	if m.deviation != m.minAmount || m.meetCount != 0 {
		panic(fmt.Sprintf("SplitEventsMonitor.DetachFromSoln: deviation %d, want %d",
			m.deviation, m.minAmount))
	}
	m.deviation = 0
	m.changeCost(0)
	m.attached = false
}

// Delete detaches m and removes it from its parents and its solution.
func (m *SplitEventsMonitor) Delete() {
	m.DetachFromSoln()
	m.eventInSoln.monitors = removeFirst(m.eventInSoln.monitors, Monitor(m))
	deleteMonitor(m)
}

func (m *SplitEventsMonitor) badDuration(durn int) bool {
	return durn < m.minDuration || durn > m.maxDuration
}

// countUp adds one meet and returns the resulting change in the amount part
// of the deviation. countDown is its opposite.
func (m *SplitEventsMonitor) countUp() int {
	m.meetCount++
	switch {
	case m.meetCount <= m.minAmount:
		return -1
	case m.meetCount > m.maxAmount:
		return 1
	default:
		return 0
	}
}

func (m *SplitEventsMonitor) countDown() int {
	m.meetCount--
	switch {
	case m.meetCount < m.minAmount:
		return 1
	case m.meetCount >= m.maxAmount:
		return -1
	default:
		return 0
	}
}

func (m *SplitEventsMonitor) update(op string, delta int) {
	m.deviation += delta
	m.checkDeviation(op, m.deviation)
	m.changeCost(m.constraint.Cost(m.deviation))
}

func (m *SplitEventsMonitor) addMeet(meet *Meet) {
	delta := m.countUp()
	if m.badDuration(meet.duration) {
		delta++
	}
	m.update("addMeet", delta)
}

func (m *SplitEventsMonitor) deleteMeet(meet *Meet) {
	delta := m.countDown()
	if m.badDuration(meet.duration) {
		delta--
	}
	m.update("deleteMeet", delta)
}

// splitMeet is called after a meet split into m1 and m2.
func (m *SplitEventsMonitor) splitMeet(m1, m2 *Meet) {
	delta := m.countUp()
	if m.badDuration(m1.duration) {
		delta++
	}
	if m.badDuration(m2.duration) {
		delta++
	}
	if m.badDuration(m1.duration + m2.duration) {
		delta--
	}
	m.update("splitMeet", delta)
}

// mergeMeet is called before m1 and m2 merge.
func (m *SplitEventsMonitor) mergeMeet(m1, m2 *Meet) {
	delta := m.countDown()
	if m.badDuration(m1.duration) {
		delta--
	}
	if m.badDuration(m2.duration) {
		delta--
	}
	if m.badDuration(m1.duration + m2.duration) {
		delta++
	}
	m.update("mergeMeet", delta)
}

func (m *SplitEventsMonitor) Deviation() int {
	return m.deviation
}

// DeviationDescription splits the deviation into its amount part and its
// duration part.
func (m *SplitEventsMonitor) DeviationDescription() string {
	if m.deviation == 0 {
		return "0"
	}
	tooFew, tooMany := 0, 0
	switch {
	case m.meetCount < m.minAmount:
		tooFew = m.minAmount - m.meetCount
	case m.meetCount > m.maxAmount:
		tooMany = m.meetCount - m.maxAmount
	}
	badDurn := m.deviation - tooFew - tooMany

	var amount string
	if tooFew > 0 {
		amount = fmt.Sprintf("%d too few sub-events", tooFew)
	} else {
		amount = fmt.Sprintf("%d too many sub-events", tooMany)
	}
	switch {
	case tooFew+tooMany == 0:
		return fmt.Sprintf("%d sub-events of unwanted duration", badDurn)
	case badDurn == 0:
		return amount
	default:
		return fmt.Sprintf("%d: %s; %d sub-events of unwanted duration", m.deviation, amount, badDurn)
	}
}

func (m *SplitEventsMonitor) String() string {
	return m.describe(fmt.Sprintf("%q %s", m.constraint.Name, m.eventInSoln.event.Name))
}
