package khe

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidInstance is wrapped by the errors returned by Instance.Finalize.
var ErrInvalidInstance = errors.New("invalid instance")

// Time is one time of an instance. Times are consecutive.
type Time struct {
	Index int
	Name  string
}

// Partition is a set of resources of similar kind, e.g. the teachers of one
// faculty. Each resource lies in at most one partition.
type Partition struct {
	Index     int
	Name      string
	Resources []int
}

// Resource is one resource of an instance.
type Resource struct {
	Index     int
	Name      string
	Partition int // -1 if none

	preassigned      []*EventResource
	avoidClashes     []*AvoidClashesConstraint
	avoidUnavailable []*AvoidUnavailableTimesConstraint
}

// Event is one event of an instance.
type Event struct {
	Index           int
	Name            string
	Duration        int
	PreassignedTime int   // -1 if none
	TimeDomain      []int // permitted start times, nil for all
	Resources       []*EventResource

	assignTime  []*AssignTimeConstraint
	splitEvents []*SplitEventsConstraint
}

// EventResource is one resource requirement of an event.
type EventResource struct {
	Index       int // within the event
	Event       *Event
	Domain      []int
	Preassigned int // -1 if none
}

// Instance is a timetabling problem.
type Instance struct {
	Name                  string
	Times                 []*Time
	Partitions            []*Partition
	Resources             []*Resource
	Events                []*Event
	AssignTime            []*AssignTimeConstraint
	AvoidClashes          []*AvoidClashesConstraint
	AvoidUnavailableTimes []*AvoidUnavailableTimesConstraint
	SplitEvents           []*SplitEventsConstraint

	finalized bool
}

// NewInstance returns an empty instance.
func NewInstance(name string) *Instance {
	return &Instance{Name: name}
}

// AddTime adds a new time to ins and returns it.
func (ins *Instance) AddTime(name string) *Time {
	t := &Time{Index: len(ins.Times), Name: name}
	ins.Times = append(ins.Times, t)
	return t
}

// AddPartition adds a new empty partition to ins and returns it.
func (ins *Instance) AddPartition(name string) *Partition {
	p := &Partition{Index: len(ins.Partitions), Name: name}
	ins.Partitions = append(ins.Partitions, p)
	return p
}

// AddResource adds a new resource to ins and returns it. Parameter partition
// is the index of the resource's partition, or -1.
func (ins *Instance) AddResource(name string, partition int) *Resource {
	r := &Resource{Index: len(ins.Resources), Name: name, Partition: partition}
	ins.Resources = append(ins.Resources, r)
	return r
}

// AddEvent adds a new event with no resources and no preassigned time.
func (ins *Instance) AddEvent(name string, duration int) *Event {
	e := &Event{
		Index:           len(ins.Events),
		Name:            name,
		Duration:        duration,
		PreassignedTime: -1,
	}
	ins.Events = append(ins.Events, e)
	return e
}

// AddResource adds a resource requirement to e. Parameter preassigned is
// the index of the preassigned resource, or -1.
func (e *Event) AddResource(domain []int, preassigned int) *EventResource {
	er := &EventResource{
		Index:       len(e.Resources),
		Event:       e,
		Domain:      domain,
		Preassigned: preassigned,
	}
	e.Resources = append(e.Resources, er)
	return er
}

// StartTimes returns the times at which a meet of e with the given duration
// may start, in increasing order.
func (e *Event) StartTimes(timeCount, duration int) []int {
	var res []int
	fits := func(t int) bool {
		return t >= 0 && t+duration <= timeCount
	}
	switch {
	case e.PreassignedTime >= 0:
		res = append(res, e.PreassignedTime)
	case e.TimeDomain != nil:
		res = append(res, e.TimeDomain...)
	default:
		for t := 0; t < timeCount; t++ {
			res = append(res, t)
		}
	}
	return slices.DeleteFunc(res, func(t int) bool { return !fits(t) })
}

// TimeCount returns the number of times of ins.
func (ins *Instance) TimeCount() int {
	return len(ins.Times)
}

// ResourceCount returns the number of resources of ins.
func (ins *Instance) ResourceCount() int {
	return len(ins.Resources)
}

// Finalized returns true if Finalize succeeded on ins.
func (ins *Instance) Finalized() bool {
	return ins.finalized
}

// Finalize validates ins and computes the lookups used by solutions: the
// constraints of each event and resource, and the event resources
// preassigned to each resource. The instance must not be modified
// afterwards.
func (ins *Instance) Finalize() error {
	if ins.finalized {
		return nil
	}
	nTimes, nRes := len(ins.Times), len(ins.Resources)
	if nTimes == 0 {
		return fmt.Errorf("%w: no times", ErrInvalidInstance)
	}
	validTime := func(t int) bool { return t >= 0 && t < nTimes }
	validRes := func(r int) bool { return r >= 0 && r < nRes }
	validEvent := func(e int) bool { return e >= 0 && e < len(ins.Events) }

	for i, p := range ins.Partitions {
		if p.Index != i {
			return fmt.Errorf("%w: partition %q has index %d, want %d", ErrInvalidInstance, p.Name, p.Index, i)
		}
		p.Resources = p.Resources[:0]
	}
	for i, r := range ins.Resources {
		if r.Index != i {
			return fmt.Errorf("%w: resource %q has index %d, want %d", ErrInvalidInstance, r.Name, r.Index, i)
		}
		if r.Partition < -1 || r.Partition >= len(ins.Partitions) {
			return fmt.Errorf("%w: resource %q: unknown partition %d", ErrInvalidInstance, r.Name, r.Partition)
		}
		if r.Partition >= 0 {
			p := ins.Partitions[r.Partition]
			p.Resources = append(p.Resources, r.Index)
		}
		r.preassigned = nil
		r.avoidClashes = nil
		r.avoidUnavailable = nil
	}

	for i, e := range ins.Events {
		if e.Index != i {
			return fmt.Errorf("%w: event %q has index %d, want %d", ErrInvalidInstance, e.Name, e.Index, i)
		}
		if e.Duration < 1 || e.Duration > nTimes {
			return fmt.Errorf("%w: event %q: duration %d out of range", ErrInvalidInstance, e.Name, e.Duration)
		}
		if e.PreassignedTime != -1 && (!validTime(e.PreassignedTime) || e.PreassignedTime+e.Duration > nTimes) {
			return fmt.Errorf("%w: event %q: preassigned time %d does not fit", ErrInvalidInstance, e.Name, e.PreassignedTime)
		}
		for _, t := range e.TimeDomain {
			if !validTime(t) {
				return fmt.Errorf("%w: event %q: unknown time %d in time domain", ErrInvalidInstance, e.Name, t)
			}
		}
		for j, er := range e.Resources {
			er.Index = j
			er.Event = e
			if er.Preassigned != -1 {
				if !validRes(er.Preassigned) {
					return fmt.Errorf("%w: event %q: unknown preassigned resource %d", ErrInvalidInstance, e.Name, er.Preassigned)
				}
				if len(er.Domain) == 0 {
					er.Domain = []int{er.Preassigned}
				} else if !slices.Contains(er.Domain, er.Preassigned) {
					return fmt.Errorf("%w: event %q: preassigned resource %d outside domain", ErrInvalidInstance, e.Name, er.Preassigned)
				}
				r := ins.Resources[er.Preassigned]
				r.preassigned = append(r.preassigned, er)
			}
			for _, r := range er.Domain {
				if !validRes(r) {
					return fmt.Errorf("%w: event %q: unknown resource %d in domain", ErrInvalidInstance, e.Name, r)
				}
			}
		}
		e.assignTime = nil
		e.splitEvents = nil
	}

	checkBase := func(kind string, c *ConstraintBase) error {
		if c.Weight < 0 {
			return fmt.Errorf("%w: %s constraint %q: negative weight", ErrInvalidInstance, kind, c.Name)
		}
		if c.Function < Step || c.Function > Quadratic {
			return fmt.Errorf("%w: %s constraint %q: invalid cost function", ErrInvalidInstance, kind, c.Name)
		}
		return nil
	}

	for _, c := range ins.AssignTime {
		if err := checkBase("assign time", &c.ConstraintBase); err != nil {
			return err
		}
		for _, e := range c.Events {
			if !validEvent(e) {
				return fmt.Errorf("%w: constraint %q: unknown event %d", ErrInvalidInstance, c.Name, e)
			}
			ins.Events[e].assignTime = append(ins.Events[e].assignTime, c)
		}
	}
	for _, c := range ins.SplitEvents {
		if err := checkBase("split events", &c.ConstraintBase); err != nil {
			return err
		}
		if c.MinDuration > c.MaxDuration || c.MinAmount > c.MaxAmount || c.MinAmount < 0 {
			return fmt.Errorf("%w: constraint %q: inconsistent limits", ErrInvalidInstance, c.Name)
		}
		for _, e := range c.Events {
			if !validEvent(e) {
				return fmt.Errorf("%w: constraint %q: unknown event %d", ErrInvalidInstance, c.Name, e)
			}
			ins.Events[e].splitEvents = append(ins.Events[e].splitEvents, c)
		}
	}
	for _, c := range ins.AvoidClashes {
		if err := checkBase("avoid clashes", &c.ConstraintBase); err != nil {
			return err
		}
		for _, r := range c.Resources {
			if !validRes(r) {
				return fmt.Errorf("%w: constraint %q: unknown resource %d", ErrInvalidInstance, c.Name, r)
			}
			ins.Resources[r].avoidClashes = append(ins.Resources[r].avoidClashes, c)
		}
	}
	for _, c := range ins.AvoidUnavailableTimes {
		if err := checkBase("avoid unavailable times", &c.ConstraintBase); err != nil {
			return err
		}
		c.unavailable = make([]bool, nTimes)
		for _, t := range c.Times {
			if !validTime(t) {
				return fmt.Errorf("%w: constraint %q: unknown time %d", ErrInvalidInstance, c.Name, t)
			}
			if c.unavailable[t] {
				return fmt.Errorf("%w: constraint %q: duplicate time %d", ErrInvalidInstance, c.Name, t)
			}
			c.unavailable[t] = true
		}
		for _, r := range c.Resources {
			if !validRes(r) {
				return fmt.Errorf("%w: constraint %q: unknown resource %d", ErrInvalidInstance, c.Name, r)
			}
			ins.Resources[r].avoidUnavailable = append(ins.Resources[r].avoidUnavailable, c)
		}
	}

	ins.finalized = true
	return nil
}

// preassignedDuration returns the total duration of the events preassigned
// to r that will surely be timetabled: those with a preassigned time, or
// with an assign time constraint whose combined weight is greater than w.
func (ins *Instance) preassignedDuration(r *Resource, w Cost) int {
	durn := 0
	for _, er := range r.preassigned {
		if surelyTimetabled(er.Event, w) {
			durn += er.Event.Duration
		}
	}
	return durn
}

func surelyTimetabled(e *Event, w Cost) bool {
	if e.PreassignedTime >= 0 {
		return true
	}
	for _, c := range e.assignTime {
		if c.CombinedWeight() > w {
			return true
		}
	}
	return false
}
