package khe

import "fmt"

// EvennessHandler spreads the demand for the resources of each partition
// evenly across times. It owns one evenness monitor per partition and time,
// all children of the solution and detached initially.
type EvennessHandler struct {
	soln          *Soln
	partitions    []*PartitionHandler
	attachedCount int
}

// PartitionHandler holds the evenness monitors of one partition, indexed by
// time.
type PartitionHandler struct {
	partition *Partition
	monitors  []*EvennessMonitor
}

func newEvennessHandler(s *Soln) *EvennessHandler {
	h := &EvennessHandler{soln: s}
	for _, p := range s.instance.Partitions {
		ph := &PartitionHandler{partition: p}
		for t := range s.instance.Times {
			m := newEvennessMonitor(s, h, p, t)
			ph.monitors = append(ph.monitors, m)
			s.AddChild(m)
		}
		h.partitions = append(h.partitions, ph)
	}
	return h
}

// PartitionCount returns the number of partition handlers of h.
func (h *EvennessHandler) PartitionCount() int {
	return len(h.partitions)
}

// Partition returns the handler of partition p.
func (h *EvennessHandler) Partition(p int) *PartitionHandler {
	return h.partitions[p]
}

// Monitor returns the evenness monitor of partition p at time t.
func (h *EvennessHandler) Monitor(p, t int) *EvennessMonitor {
	return h.partitions[p].monitors[t]
}

// AttachedCount returns the number of attached evenness monitors.
func (h *EvennessHandler) AttachedCount() int {
	return h.attachedCount
}

// AttachAll attaches every evenness monitor.
func (h *EvennessHandler) AttachAll() {
	for _, ph := range h.partitions {
		for _, m := range ph.monitors {
			m.AttachToSoln()
		}
	}
}

// DetachAll detaches every evenness monitor.
func (h *EvennessHandler) DetachAll() {
	for _, ph := range h.partitions {
		for _, m := range ph.monitors {
			m.DetachFromSoln()
		}
	}
}

// SetAllWeights sets the weight of every evenness monitor.
func (h *EvennessHandler) SetAllWeights(w Cost) {
	for _, ph := range h.partitions {
		for _, m := range ph.monitors {
			m.SetWeight(w)
		}
	}
}

// addTask records that task runs from time t for the duration of its meet.
func (h *EvennessHandler) addTask(task *Task, t int) {
	if h.attachedCount == 0 {
		return
	}
	p := task.partition()
	if p < 0 {
		return
	}
	ms := h.partitions[p].monitors
	for i := 0; i < task.meet.duration; i++ {
		ms[t+i].addTask()
	}
}

func (h *EvennessHandler) deleteTask(task *Task, t int) {
	if h.attachedCount == 0 {
		return
	}
	p := task.partition()
	if p < 0 {
		return
	}
	ms := h.partitions[p].monitors
	for i := 0; i < task.meet.duration; i++ {
		ms[t+i].deleteTask()
	}
}

// Partition returns the partition of ph.
func (ph *PartitionHandler) Partition() *Partition {
	return ph.partition
}

// Monitor returns the evenness monitor of ph at time t.
func (ph *PartitionHandler) Monitor(t int) *EvennessMonitor {
	return ph.monitors[t]
}

// EvennessMonitor counts the tasks running at one time whose domains lie in
// one partition. It has a cost when that count exceeds its limit.
type EvennessMonitor struct {
	monitorBase
	handler   *EvennessHandler
	partition *Partition
	time      int
	limit     int
	weight    Cost
	count     int
}

func newEvennessMonitor(s *Soln, h *EvennessHandler, p *Partition, t int) *EvennessMonitor {
	size := len(p.Resources)
	m := &EvennessMonitor{
		handler:   h,
		partition: p,
		time:      t,
		limit:     size - size/6,
		weight:    NewCost(0, 1),
	}
	m.init(m, s, TagEvenness)
	return m
}

// Partition returns the partition monitored by m.
func (m *EvennessMonitor) Partition() *Partition {
	return m.partition
}

// Time returns the time monitored by m.
func (m *EvennessMonitor) Time() int {
	return m.time
}

// Count returns the number of tasks counted by m. It is 0 while m is
// detached.
func (m *EvennessMonitor) Count() int {
	return m.count
}

// Limit returns the number of tasks m tolerates.
func (m *EvennessMonitor) Limit() int {
	return m.limit
}

// SetLimit changes the limit of m and reprices it.
func (m *EvennessMonitor) SetLimit(limit int) {
	m.limit = limit
	m.reprice()
}

// Weight returns the cost of each task beyond the limit.
func (m *EvennessMonitor) Weight() Cost {
	return m.weight
}

// SetWeight changes the weight of m and reprices it.
func (m *EvennessMonitor) SetWeight(w Cost) {
	if w < 0 {
		panic("EvennessMonitor.SetWeight: negative weight")
	}
	m.weight = w
	m.reprice()
}

func (m *EvennessMonitor) reprice() {
	if m.count > m.limit {
		m.changeCost(Cost(m.count-m.limit) * m.weight)
	} else {
		m.changeCost(0)
	}
}

// AttachToSoln counts the tasks of the partition running at the time of m.
func (m *EvennessMonitor) AttachToSoln() {
	if m.attached {
		return
	}
	m.attached = true
	m.handler.attachedCount++
	m.count = 0
	for _, meet := range m.soln.meets {
		if meet.time < 0 || m.time < meet.time || m.time >= meet.time+meet.duration {
			continue
		}
		for _, task := range meet.tasks {
			if task.partition() == m.partition.Index {
				m.count++
			}
		}
	}
	m.reprice()
}

func (m *EvennessMonitor) DetachFromSoln() {
	if !m.attached {
		return
	}
	m.count = 0
	m.changeCost(0)
	m.handler.attachedCount--
	m.attached = false
}

func (m *EvennessMonitor) addTask() {
	if m.attached {
		m.count++
		m.reprice()
	}
}

func (m *EvennessMonitor) deleteTask() {
	if m.attached {
		m.count--
		if m.count < 0 {
			panic("EvennessMonitor.deleteTask: negative count")
		}
		m.reprice()
	}
}

func (m *EvennessMonitor) Deviation() int {
	if m.count > m.limit {
		return 1
	}
	return 0
}

func (m *EvennessMonitor) DeviationDescription() string {
	return fmt.Sprint(m.Deviation())
}

func (m *EvennessMonitor) String() string {
	return m.describe(fmt.Sprintf("%s@%s (%d/%d)",
		m.partition.Name, m.soln.instance.Times[m.time].Name, m.count, m.limit))
}
