package khe

// ResourceInSoln is the solution view of a resource: its timetable, its
// assigned tasks, and the monitors watching them.
type ResourceInSoln struct {
	resource         *Resource
	timetable        []int // number of tasks at each time
	tasks            []*Task
	avoidClashes     []*AvoidClashesMonitor          // attached only
	avoidUnavailable []*AvoidUnavailableTimesMonitor // attached only
	monitors         []Monitor
}

// Resource returns the resource of rs.
func (rs *ResourceInSoln) Resource() *Resource {
	return rs.resource
}

// Occupancy returns the number of tasks assigned rs running at time t.
func (rs *ResourceInSoln) Occupancy(t int) int {
	return rs.timetable[t]
}

// TaskCount returns the number of tasks assigned the resource.
func (rs *ResourceInSoln) TaskCount() int {
	return len(rs.tasks)
}

// Task returns the i-th task assigned the resource.
func (rs *ResourceInSoln) Task(i int) *Task {
	return rs.tasks[i]
}

// MonitorCount returns the number of monitors watching the resource,
// attached or not.
func (rs *ResourceInSoln) MonitorCount() int {
	return len(rs.monitors)
}

// Monitor returns the i-th monitor watching the resource.
func (rs *ResourceInSoln) Monitor(i int) Monitor {
	return rs.monitors[i]
}

// BusyTimes returns the number of times at which the resource is busy.
func (rs *ResourceInSoln) BusyTimes() int {
	n := 0
	for _, occ := range rs.timetable {
		if occ > 0 {
			n++
		}
	}
	return n
}

// changeOccupancy adds delta to the occupancy of the duration times starting
// at start, and notifies the attached monitors.
func (rs *ResourceInSoln) changeOccupancy(s *Soln, start, duration, delta int) {
	for t := start; t < start+duration; t++ {
		oldOcc := rs.timetable[t]
		newOcc := oldOcc + delta
		if newOcc < 0 {
			panic("ResourceInSoln.changeOccupancy: negative occupancy")
		}
		rs.timetable[t] = newOcc
		if len(rs.avoidClashes) > 0 {
			for _, m := range rs.avoidClashes {
				m.changeClashCount(oldOcc, newOcc)
			}
			s.dirty.Insert(rs.resource.Index)
		}
		if (oldOcc == 0) == (newOcc == 0) {
			continue
		}
		for _, m := range rs.avoidUnavailable {
			if !m.constraint.Unavailable(t) {
				continue
			}
			if newOcc > 0 {
				m.changeBusyAndIdle(m.deviation, m.deviation+1)
			} else {
				m.changeBusyAndIdle(m.deviation, m.deviation-1)
			}
		}
	}
}

func (rs *ResourceInSoln) addTask(t *Task) {
	t.resourceIndex = len(rs.tasks)
	rs.tasks = append(rs.tasks, t)
}

func (rs *ResourceInSoln) deleteTask(t *Task) {
	last := rs.tasks[len(rs.tasks)-1]
	rs.tasks[t.resourceIndex] = last
	last.resourceIndex = t.resourceIndex
	rs.tasks[len(rs.tasks)-1] = nil
	rs.tasks = rs.tasks[:len(rs.tasks)-1]
	t.resourceIndex = -1
}

func (rs *ResourceInSoln) attachAvoidClashes(m *AvoidClashesMonitor) {
	rs.avoidClashes = append(rs.avoidClashes, m)
}

func (rs *ResourceInSoln) detachAvoidClashes(m *AvoidClashesMonitor) {
	rs.avoidClashes = removeFirst(rs.avoidClashes, m)
}

func (rs *ResourceInSoln) attachAvoidUnavailable(m *AvoidUnavailableTimesMonitor) {
	rs.avoidUnavailable = append(rs.avoidUnavailable, m)
}

func (rs *ResourceInSoln) detachAvoidUnavailable(m *AvoidUnavailableTimesMonitor) {
	rs.avoidUnavailable = removeFirst(rs.avoidUnavailable, m)
}
