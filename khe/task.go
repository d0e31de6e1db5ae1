package khe

import (
	"fmt"
	"slices"
)

// Task is one resource slot of a meet. It may be assigned a resource from
// its domain.
type Task struct {
	soln          *Soln
	meet          *Meet
	eventResource *EventResource
	domain        []int
	resource      int // -1 if unassigned
	live          bool
	meetIndex     int
	resourceIndex int

	// One ordinary demand monitor per offset of the meet, while the
	// solution has a matching.
	demands []*OrdinaryDemandMonitor
}

// Meet returns the meet of t.
func (t *Task) Meet() *Meet {
	return t.meet
}

// EventResource returns the event resource t was created for.
func (t *Task) EventResource() *EventResource {
	return t.eventResource
}

// Domain returns the resources t may be assigned.
func (t *Task) Domain() []int {
	return t.domain
}

// Resource returns the resource assigned to t, or -1.
func (t *Task) Resource() int {
	return t.resource
}

// Assigned returns true if t is assigned a resource.
func (t *Task) Assigned() bool {
	return t.resource >= 0
}

// Duration returns the duration of the meet of t.
func (t *Task) Duration() int {
	return t.meet.duration
}

// DemandMonitorCount returns the number of demand monitors of t.
func (t *Task) DemandMonitorCount() int {
	return len(t.demands)
}

// DemandMonitor returns the demand monitor of t at the given offset.
func (t *Task) DemandMonitor(offset int) *OrdinaryDemandMonitor {
	return t.demands[offset]
}

func (t *Task) checkLive(op string) {
	if !t.live {
		panic(fmt.Sprintf("Task.%s: task is not in the solution", op))
	}
}

// partition returns the partition containing the whole domain of t, or -1.
func (t *Task) partition() int {
	if len(t.domain) == 0 {
		return -1
	}
	rs := t.soln.instance.Resources
	p := rs[t.domain[0]].Partition
	for _, r := range t.domain[1:] {
		if rs[r].Partition != p {
			return -1
		}
	}
	return p
}

func (t *Task) String() string {
	res := "-"
	if t.resource >= 0 {
		res = t.soln.instance.Resources[t.resource].Name
	}
	return fmt.Sprintf("%s/%d=%s", t.meet, t.eventResource.Index, res)
}

// AssignResource assigns resource r to t, unassigning its current resource
// first if needed. It returns false and changes nothing if r is not in the
// domain of t.
func (t *Task) AssignResource(r int) bool {
	t.checkLive("AssignResource")
	if t.resource == r {
		return true
	}
	if !slices.Contains(t.domain, r) {
		return false
	}
	b := t.soln.BeginBatch()
	defer b.End()
	if t.resource >= 0 {
		t.soln.apply(Operation{Type: OpTaskUnassign, Task: t, Resource: t.resource})
	}
	t.soln.apply(Operation{Type: OpTaskAssign, Task: t, Resource: r})
	return true
}

// UnassignResource removes the resource assignment of t, if any.
func (t *Task) UnassignResource() {
	t.checkLive("UnassignResource")
	if t.resource >= 0 {
		t.soln.apply(Operation{Type: OpTaskUnassign, Task: t, Resource: t.resource})
	}
}

// SetDomain changes the domain of t. It returns false and changes nothing if
// t is assigned a resource outside the new domain. The domain slice must not
// be modified afterwards.
func (t *Task) SetDomain(domain []int) bool {
	t.checkLive("SetDomain")
	if t.resource >= 0 && !slices.Contains(domain, t.resource) {
		return false
	}
	t.soln.apply(Operation{Type: OpTaskSetDomain, Task: t, OldDomain: t.domain, NewDomain: domain})
	return true
}
