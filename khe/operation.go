package khe

import (
	"fmt"
	"slices"

	"github.com/rhartert/khe-ls/khe/matching"
)

// OpType is the kind of a kernel operation.
type OpType int8

const (
	OpMeetAdd OpType = iota
	OpMeetDelete
	OpMeetAssign
	OpMeetUnassign
	OpMeetSplit
	OpMeetMerge
	OpTaskAdd
	OpTaskDelete
	OpTaskAssign
	OpTaskUnassign
	OpTaskSetDomain
)

var opTypeNames = [...]string{
	OpMeetAdd:       "MeetAdd",
	OpMeetDelete:    "MeetDelete",
	OpMeetAssign:    "MeetAssign",
	OpMeetUnassign:  "MeetUnassign",
	OpMeetSplit:     "MeetSplit",
	OpMeetMerge:     "MeetMerge",
	OpTaskAdd:       "TaskAdd",
	OpTaskDelete:    "TaskDelete",
	OpTaskAssign:    "TaskAssign",
	OpTaskUnassign:  "TaskUnassign",
	OpTaskSetDomain: "TaskSetDomain",
}

// inverseOf maps each operation type to the type of its inverse.
var inverseOf = [...]OpType{
	OpMeetAdd:       OpMeetDelete,
	OpMeetDelete:    OpMeetAdd,
	OpMeetAssign:    OpMeetUnassign,
	OpMeetUnassign:  OpMeetAssign,
	OpMeetSplit:     OpMeetMerge,
	OpMeetMerge:     OpMeetSplit,
	OpTaskAdd:       OpTaskDelete,
	OpTaskDelete:    OpTaskAdd,
	OpTaskAssign:    OpTaskUnassign,
	OpTaskUnassign:  OpTaskAssign,
	OpTaskSetDomain: OpTaskSetDomain,
}

func (t OpType) String() string {
	if t < 0 || int(t) >= len(opTypeNames) {
		return fmt.Sprintf("OpType(%d)", int8(t))
	}
	return opTypeNames[t]
}

// Operation is one kernel operation on a solution. Each operation carries
// enough data to build its inverse, and is applied by the same dispatch
// whether it is done, undone or redone.
type Operation struct {
	Type      OpType
	Meet      *Meet
	Meet2     *Meet // split and merge only
	Task      *Task
	Time      int   // meet assign and unassign
	Resource  int   // task assign and unassign
	Duration  int   // duration of Meet after a split, before a merge
	OldDomain []int // task set domain
	NewDomain []int // task set domain
}

// Inverse returns the operation that undoes op.
func (op Operation) Inverse() Operation {
	inv := op
	inv.Type = inverseOf[op.Type]
	if op.Type == OpTaskSetDomain {
		inv.OldDomain, inv.NewDomain = op.NewDomain, op.OldDomain
	}
	return inv
}

func (op Operation) String() string {
	switch op.Type {
	case OpMeetAdd, OpMeetDelete:
		return fmt.Sprintf("%s(%s)", op.Type, op.Meet.event.Name)
	case OpMeetAssign, OpMeetUnassign:
		return fmt.Sprintf("%s(%s, %d)", op.Type, op.Meet.event.Name, op.Time)
	case OpMeetSplit, OpMeetMerge:
		return fmt.Sprintf("%s(%s, %d)", op.Type, op.Meet.event.Name, op.Duration)
	case OpTaskAdd, OpTaskDelete:
		return fmt.Sprintf("%s(%s/%d)", op.Type, op.Meet.event.Name, op.Task.eventResource.Index)
	case OpTaskAssign, OpTaskUnassign:
		return fmt.Sprintf("%s(%s/%d, %d)", op.Type, op.Task.eventResource.Event.Name, op.Task.eventResource.Index, op.Resource)
	default:
		return fmt.Sprintf("%s(%s/%d, %v)", op.Type, op.Task.eventResource.Event.Name, op.Task.eventResource.Index, op.NewDomain)
	}
}

// apply performs op and records it on the main path if a mark is open.
func (s *Soln) apply(op Operation) {
	s.do(op)
	if len(s.marks) > 0 {
		s.mainPath = append(s.mainPath, op)
	}
}

// undoTo undoes the operations of the main path beyond position pos.
func (s *Soln) undoTo(pos int) {
	for len(s.mainPath) > pos {
		op := s.mainPath[len(s.mainPath)-1]
		s.mainPath = s.mainPath[:len(s.mainPath)-1]
		s.do(op.Inverse())
	}
}

// do is the kernel dispatch.
func (s *Soln) do(op Operation) {
	b := s.BeginBatch()
	defer b.End()
	switch op.Type {
	case OpMeetAdd:
		s.meetAdd(op.Meet)
	case OpMeetDelete:
		s.meetDelete(op.Meet)
	case OpMeetAssign:
		s.meetAssign(op.Meet, op.Time)
	case OpMeetUnassign:
		s.meetUnassign(op.Meet, op.Time)
	case OpMeetSplit:
		s.meetSplit(op.Meet, op.Meet2, op.Duration)
	case OpMeetMerge:
		s.meetMerge(op.Meet, op.Meet2, op.Duration)
	case OpTaskAdd:
		s.taskAdd(op.Task, op.Meet)
	case OpTaskDelete:
		s.taskDelete(op.Task, op.Meet)
	case OpTaskAssign:
		s.taskAssign(op.Task, op.Resource)
	case OpTaskUnassign:
		s.taskUnassign(op.Task, op.Resource)
	case OpTaskSetDomain:
		s.taskSetDomain(op.Task, op.NewDomain)
	default:
		panic(fmt.Sprintf("Soln.do: invalid operation type %d", op.Type))
	}
}

func (s *Soln) addMeetToArena(m *Meet) {
	m.solnIndex = len(s.meets)
	s.meets = append(s.meets, m)
}

func (s *Soln) removeMeetFromArena(m *Meet) {
	last := s.meets[len(s.meets)-1]
	s.meets[m.solnIndex] = last
	last.solnIndex = m.solnIndex
	s.meets[len(s.meets)-1] = nil
	s.meets = s.meets[:len(s.meets)-1]
	m.solnIndex = -1
}

// resetChunkDomains recomputes the chunk domains of unassigned meet m.
func (s *Soln) resetChunkDomains(m *Meet, ct matching.ChangeType) {
	for i, dc := range m.chunks {
		dc.SetDomain(m.chunkDomain(i), ct)
	}
}

func (s *Soln) meetAdd(m *Meet) {
	if m.solnIndex >= 0 || m.time >= 0 || len(m.tasks) > 0 {
		panic("Soln.meetAdd: meet is not a fresh unassigned meet")
	}
	s.addMeetToArena(m)
	if s.matching != nil && m.chunks == nil {
		for i := 0; i < m.duration; i++ {
			dc := s.matching.NewDemandChunk(0, len(s.instance.Resources), m.chunkDomain(i))
			m.chunks = append(m.chunks, dc)
		}
	}
	s.events[m.event.Index].addMeet(m)
}

func (s *Soln) meetDelete(m *Meet) {
	if m.time >= 0 || len(m.tasks) > 0 {
		panic("Soln.meetDelete: meet is assigned or has tasks")
	}
	s.events[m.event.Index].deleteMeet(m)
	s.removeMeetFromArena(m)
}

func (s *Soln) meetAssign(m *Meet, t int) {
	if m.time >= 0 {
		panic("Soln.meetAssign: meet is already assigned")
	}
	m.time = t
	for i, dc := range m.chunks {
		dc.SetDomain([]int{t + i}, matching.ToSubset)
	}
	for _, task := range m.tasks {
		if task.resource >= 0 {
			s.resources[task.resource].changeOccupancy(s, t, m.duration, 1)
		}
		if s.evenness != nil {
			s.evenness.addTask(task, t)
		}
	}
	s.events[m.event.Index].meetAssigned(m)
}

func (s *Soln) meetUnassign(m *Meet, t int) {
	if m.time != t {
		panic(fmt.Sprintf("Soln.meetUnassign: meet is at time %d, not %d", m.time, t))
	}
	s.events[m.event.Index].meetUnassigned(m)
	for _, task := range m.tasks {
		if s.evenness != nil {
			s.evenness.deleteTask(task, t)
		}
		if task.resource >= 0 {
			s.resources[task.resource].changeOccupancy(s, t, m.duration, -1)
		}
	}
	m.time = -1
	s.resetChunkDomains(m, matching.ToSuperset)
}

func (s *Soln) meetSplit(m, m2 *Meet, d1 int) {
	if d1 <= 0 || d1 >= m.duration || m2.solnIndex >= 0 {
		panic("Soln.meetSplit: invalid split")
	}
	m2.duration = m.duration - d1
	m.duration = d1
	m2.time = -1
	if m.time >= 0 {
		m2.time = m.time + d1
	}
	if m.chunks != nil {
		m2.chunks = slices.Clone(m.chunks[d1:])
		m.chunks = slices.Clone(m.chunks[:d1])
	}
	for i, t1 := range m.tasks {
		t2 := m2.tasks[i]
		t2.meet = m2
		t2.meetIndex = i
		t2.domain = t1.domain
		t2.resource = t1.resource
		t2.live = true
		if t1.resource >= 0 {
			s.resources[t1.resource].addTask(t2)
		}
		if t1.demands != nil {
			t2.demands = slices.Clone(t1.demands[d1:])
			t1.demands = slices.Clone(t1.demands[:d1])
			for j, dm := range t2.demands {
				dm.task = t2
				dm.offset = j
			}
		}
	}
	s.addMeetToArena(m2)
	if m.time < 0 {
		s.resetChunkDomains(m, matching.ToOther)
		s.resetChunkDomains(m2, matching.ToOther)
	}
	s.events[m.event.Index].splitMeet(m, m2)
}

func (s *Soln) meetMerge(m, m2 *Meet, d1 int) {
	if m.duration != d1 || len(m.tasks) != len(m2.tasks) {
		panic("Soln.meetMerge: invalid merge")
	}
	s.events[m.event.Index].mergeMeet(m, m2)
	for i, t1 := range m.tasks {
		t2 := m2.tasks[i]
		for j, dm := range t2.demands {
			dm.task = t1
			dm.offset = d1 + j
		}
		t1.demands = append(t1.demands, t2.demands...)
		t2.demands = nil
		if t2.resource >= 0 {
			s.resources[t2.resource].deleteTask(t2)
		}
		t2.live = false
	}
	m.duration += m2.duration
	m.chunks = append(m.chunks, m2.chunks...)
	m2.chunks = nil
	m2.time = -1
	s.removeMeetFromArena(m2)
	if m.time < 0 {
		s.resetChunkDomains(m, matching.ToOther)
	}
}

func (s *Soln) taskAdd(t *Task, m *Meet) {
	if t.live || t.resource >= 0 || m.time >= 0 {
		panic("Soln.taskAdd: task is live or assigned, or meet is assigned")
	}
	t.meet = m
	t.meetIndex = len(m.tasks)
	m.tasks = append(m.tasks, t)
	t.live = true
	if s.matching == nil {
		return
	}
	if t.demands == nil {
		for i := 0; i < m.duration; i++ {
			dm := newOrdinaryDemandMonitor(s, t, i)
			t.demands = append(t.demands, dm)
			s.AddChild(dm)
			dm.AttachToSoln()
		}
		return
	}
	for _, dm := range t.demands {
		if dm.attached {
			dm.node.Add()
		}
	}
}

func (s *Soln) taskDelete(t *Task, m *Meet) {
	if !t.live || t.resource >= 0 || m.time >= 0 || t.meet != m {
		panic("Soln.taskDelete: task is not live, or is assigned, or meet is assigned")
	}
	for _, dm := range t.demands {
		if dm.node.Added() {
			dm.node.Delete()
		}
	}
	m.tasks = removeFirst(m.tasks, t)
	for i, x := range m.tasks {
		x.meetIndex = i
	}
	t.live = false
}

func (s *Soln) taskAssign(t *Task, r int) {
	if t.resource >= 0 {
		panic("Soln.taskAssign: task is already assigned")
	}
	t.resource = r
	s.resources[r].addTask(t)
	for _, dm := range t.demands {
		dm.node.SetDomain([]int{r}, matching.ToSubset)
	}
	if m := t.meet; m.time >= 0 {
		s.resources[r].changeOccupancy(s, m.time, m.duration, 1)
	}
}

func (s *Soln) taskUnassign(t *Task, r int) {
	if t.resource != r {
		panic(fmt.Sprintf("Soln.taskUnassign: task is assigned %d, not %d", t.resource, r))
	}
	if m := t.meet; m.time >= 0 {
		s.resources[r].changeOccupancy(s, m.time, m.duration, -1)
	}
	s.resources[r].deleteTask(t)
	t.resource = -1
	for _, dm := range t.demands {
		dm.node.SetDomain(t.domain, matching.ToSuperset)
	}
}

func (s *Soln) taskSetDomain(t *Task, domain []int) {
	m := t.meet
	if s.evenness != nil && m.time >= 0 {
		s.evenness.deleteTask(t, m.time)
	}
	t.domain = domain
	if s.evenness != nil && m.time >= 0 {
		s.evenness.addTask(t, m.time)
	}
	if t.resource < 0 {
		for _, dm := range t.demands {
			dm.node.SetDomain(domain, matching.ToOther)
		}
	}
}
