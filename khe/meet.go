package khe

import (
	"fmt"
	"slices"

	"github.com/rhartert/khe-ls/khe/matching"
)

// Meet is a block of consecutive times of one event. Its tasks hold the
// resources attending it.
type Meet struct {
	soln       *Soln
	event      *Event
	duration   int
	time       int // -1 if unassigned
	tasks      []*Task
	solnIndex  int // -1 while deleted
	eventIndex int

	// One demand chunk per offset, while the solution has a matching.
	chunks []*matching.DemandChunk
}

// Soln returns the solution of m.
func (m *Meet) Soln() *Soln {
	return m.soln
}

// Event returns the event of m.
func (m *Meet) Event() *Event {
	return m.event
}

// Duration returns the number of times m runs for.
func (m *Meet) Duration() int {
	return m.duration
}

// Time returns the starting time of m, or -1 if m is unassigned.
func (m *Meet) Time() int {
	return m.time
}

// Assigned returns true if m is assigned a time.
func (m *Meet) Assigned() bool {
	return m.time >= 0
}

// SolnIndex returns the index of m in its solution, or -1 if m was deleted.
func (m *Meet) SolnIndex() int {
	return m.solnIndex
}

// TaskCount returns the number of tasks of m.
func (m *Meet) TaskCount() int {
	return len(m.tasks)
}

// Task returns the i-th task of m. Tasks follow the order of the event's
// resources.
func (m *Meet) Task(i int) *Task {
	return m.tasks[i]
}

// StartTimes returns the times m may be assigned.
func (m *Meet) StartTimes() []int {
	return m.event.StartTimes(len(m.soln.instance.Times), m.duration)
}

// CanStartAt returns true if m may be assigned time t.
func (m *Meet) CanStartAt(t int) bool {
	return slices.Contains(m.StartTimes(), t)
}

func (m *Meet) String() string {
	if m.time < 0 {
		return fmt.Sprintf("%s:%d", m.event.Name, m.duration)
	}
	return fmt.Sprintf("%s:%d@%s", m.event.Name, m.duration, m.soln.instance.Times[m.time].Name)
}

func (m *Meet) checkLive(op string) {
	if m.solnIndex < 0 {
		panic(fmt.Sprintf("Meet.%s: meet is not in the solution", op))
	}
}

// chunkDomain returns the domain of the demand chunk at the given offset:
// the times that offset may occupy.
func (m *Meet) chunkDomain(offset int) []int {
	if m.time >= 0 {
		return []int{m.time + offset}
	}
	starts := m.StartTimes()
	for i := range starts {
		starts[i] += offset
	}
	return starts
}

// AddMeet adds a new unassigned meet of event e with the given duration to
// s, with one unassigned task per resource of e.
func (s *Soln) AddMeet(e *Event, duration int) *Meet {
	if duration < 1 || duration > len(s.instance.Times) {
		panic(fmt.Sprintf("Soln.AddMeet: invalid duration %d", duration))
	}
	m := &Meet{
		soln:      s,
		event:     e,
		duration:  duration,
		time:      -1,
		solnIndex: -1,
	}
	b := s.BeginBatch()
	defer b.End()
	s.apply(Operation{Type: OpMeetAdd, Meet: m})
	for _, er := range e.Resources {
		t := &Task{
			soln:          s,
			eventResource: er,
			domain:        er.Domain,
			resource:      -1,
			meetIndex:     -1,
			resourceIndex: -1,
		}
		s.apply(Operation{Type: OpTaskAdd, Meet: m, Task: t})
	}
	return m
}

// Delete removes m and its tasks from the solution, unassigning them first.
func (m *Meet) Delete() {
	s := m.soln
	m.checkLive("Delete")
	b := s.BeginBatch()
	defer b.End()
	for _, t := range m.tasks {
		if t.resource >= 0 {
			s.apply(Operation{Type: OpTaskUnassign, Task: t, Resource: t.resource})
		}
	}
	if m.time >= 0 {
		s.apply(Operation{Type: OpMeetUnassign, Meet: m, Time: m.time})
	}
	for i := len(m.tasks) - 1; i >= 0; i-- {
		s.apply(Operation{Type: OpTaskDelete, Meet: m, Task: m.tasks[i]})
	}
	s.apply(Operation{Type: OpMeetDelete, Meet: m})
}

// AssignTime assigns m the starting time t, unassigning its current time
// first if needed. It returns false and changes nothing if m cannot start at
// t.
func (m *Meet) AssignTime(t int) bool {
	m.checkLive("AssignTime")
	if m.time == t {
		return true
	}
	if !m.CanStartAt(t) {
		return false
	}
	b := m.soln.BeginBatch()
	defer b.End()
	if m.time >= 0 {
		m.soln.apply(Operation{Type: OpMeetUnassign, Meet: m, Time: m.time})
	}
	m.soln.apply(Operation{Type: OpMeetAssign, Meet: m, Time: t})
	return true
}

// UnassignTime removes the time assignment of m, if any.
func (m *Meet) UnassignTime() {
	m.checkLive("UnassignTime")
	if m.time >= 0 {
		m.soln.apply(Operation{Type: OpMeetUnassign, Meet: m, Time: m.time})
	}
}

// Split splits m into m, which keeps the first duration1 times, and a new
// meet holding the rest. The new meet is assigned the time following m's
// times if m is assigned. Tasks are split along with m and keep their
// resources and domains. Split returns false if duration1 is not strictly
// between 0 and the duration of m.
func (m *Meet) Split(duration1 int) (*Meet, bool) {
	m.checkLive("Split")
	if duration1 <= 0 || duration1 >= m.duration {
		return nil, false
	}
	m2 := &Meet{
		soln:      m.soln,
		event:     m.event,
		time:      -1,
		solnIndex: -1,
	}
	for _, t := range m.tasks {
		m2.tasks = append(m2.tasks, &Task{
			soln:          m.soln,
			meet:          m2,
			eventResource: t.eventResource,
			domain:        t.domain,
			resource:      -1,
			meetIndex:     len(m2.tasks),
			resourceIndex: -1,
		})
	}
	m.soln.apply(Operation{Type: OpMeetSplit, Meet: m, Meet2: m2, Duration: duration1})
	return m2, true
}

// CanMerge returns true if m2 can be merged into m: both are meets of the
// same event whose tasks agree, and either both are unassigned or m2 starts
// right after m ends.
func (m *Meet) CanMerge(m2 *Meet) bool {
	if m == m2 || m.event != m2.event || m.solnIndex < 0 || m2.solnIndex < 0 {
		return false
	}
	if (m.time < 0) != (m2.time < 0) {
		return false
	}
	if m.time >= 0 && m2.time != m.time+m.duration {
		return false
	}
	if len(m.tasks) != len(m2.tasks) {
		return false
	}
	for i, t1 := range m.tasks {
		t2 := m2.tasks[i]
		if t1.eventResource != t2.eventResource || t1.resource != t2.resource || !slices.Equal(t1.domain, t2.domain) {
			return false
		}
	}
	return true
}

// Merge merges m2 into m, which then covers the times of both. Merge returns
// false and changes nothing if CanMerge(m2) is false.
func (m *Meet) Merge(m2 *Meet) bool {
	if !m.CanMerge(m2) {
		return false
	}
	m.soln.apply(Operation{Type: OpMeetMerge, Meet: m, Meet2: m2, Duration: m.duration})
	return true
}
