package khe

import "fmt"

// Tag identifies the concrete kind of a monitor.
type Tag int8

const (
	TagSoln Tag = iota
	TagGroup
	TagAssignTime
	TagAvoidClashes
	TagAvoidUnavailableTimes
	TagSplitEvents
	TagOrdinaryDemand
	TagWorkloadDemand
	TagEvenness
)

var tagNames = [...]string{
	TagSoln:                  "Soln",
	TagGroup:                 "Group",
	TagAssignTime:            "AssignTime",
	TagAvoidClashes:          "AvoidClashes",
	TagAvoidUnavailableTimes: "AvoidUnavailableTimes",
	TagSplitEvents:           "SplitEvents",
	TagOrdinaryDemand:        "OrdinaryDemand",
	TagWorkloadDemand:        "WorkloadDemand",
	TagEvenness:              "Evenness",
}

func (t Tag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return fmt.Sprintf("Tag(%d)", int8(t))
	}
	return tagNames[t]
}

// IsConstraint returns true if monitors with tag t monitor instance
// constraints.
func (t Tag) IsConstraint() bool {
	switch t {
	case TagAssignTime, TagAvoidClashes, TagAvoidUnavailableTimes, TagSplitEvents:
		return true
	default:
		return false
	}
}

// Monitor is implemented by every monitor of a solution. The set of
// implementations is closed: *GroupMonitor, *Soln, and one type per
// constraint or demand kind.
type Monitor interface {
	// Tag returns the kind of the monitor.
	Tag() Tag

	// Soln returns the solution the monitor belongs to.
	Soln() *Soln

	// SolnIndex returns the index of the monitor in its solution.
	SolnIndex() int

	// Cost returns the current cost of the monitor. It is 0 while the
	// monitor is detached.
	Cost() Cost

	// LowerBound returns a cost that the monitor cannot go below whatever
	// the solution.
	LowerBound() Cost

	// Attached returns true if the monitor is attached to its solution.
	Attached() bool

	// AttachToSoln attaches the monitor. It does nothing if the monitor is
	// already attached.
	AttachToSoln()

	// DetachFromSoln detaches the monitor. It does nothing if the monitor
	// is already detached.
	DetachFromSoln()

	// Deviation returns the amount by which the monitored condition is
	// violated.
	Deviation() int

	// DeviationDescription describes the deviation for display.
	DeviationDescription() string

	ParentCount() int
	Parent(i int) *GroupMonitor

	String() string

	base() *monitorBase
}

// monitorLink links a parent group monitor to one of its children. Links
// record their position in both the parent's and the child's lists so that
// they can be removed in constant time.
type monitorLink struct {
	parent      *GroupMonitor
	child       Monitor
	parentIndex int // in parent.children
	childIndex  int // in child's parents
	defectIndex int // in parent.defects, or -1
}

// monitorBase holds the state shared by all monitors.
type monitorBase struct {
	self       Monitor
	soln       *Soln
	tag        Tag
	solnIndex  int
	attached   bool
	cost       Cost
	lowerBound Cost
	parents    []*monitorLink
}

func (mb *monitorBase) init(self Monitor, soln *Soln, tag Tag) {
	mb.self = self
	mb.soln = soln
	mb.tag = tag
	mb.solnIndex = -1
	if soln != nil {
		soln.addMonitor(self)
	}
}

func (mb *monitorBase) base() *monitorBase {
	return mb
}

func (mb *monitorBase) Tag() Tag {
	return mb.tag
}

func (mb *monitorBase) Soln() *Soln {
	return mb.soln
}

func (mb *monitorBase) SolnIndex() int {
	return mb.solnIndex
}

func (mb *monitorBase) Cost() Cost {
	if mb.soln != nil {
		mb.soln.bringUpToDate()
	}
	return mb.cost
}

func (mb *monitorBase) LowerBound() Cost {
	return mb.lowerBound
}

func (mb *monitorBase) Attached() bool {
	return mb.attached
}

func (mb *monitorBase) ParentCount() int {
	return len(mb.parents)
}

func (mb *monitorBase) Parent(i int) *GroupMonitor {
	return mb.parents[i].parent
}

// changeCost sets the cost of the monitor and propagates the change to all
// its ancestors.
func (mb *monitorBase) changeCost(newCost Cost) {
	if newCost < 0 {
		panic(fmt.Sprintf("%s.changeCost: negative cost %d", mb.tag, newCost))
	}
	if newCost == mb.cost {
		return
	}
	oldCost := mb.cost
	mb.cost = newCost
	for _, l := range mb.parents {
		l.parent.childCostChanged(l, oldCost, newCost)
	}
}

// checkDeviation panics if dev is negative.
func (mb *monitorBase) checkDeviation(op string, dev int) {
	if dev < 0 {
		panic(fmt.Sprintf("%sMonitor.%s: negative deviation %d", mb.tag, op, dev))
	}
}

// describe returns the common part of monitor descriptions.
func (mb *monitorBase) describe(detail string) string {
	return fmt.Sprintf("[ %s %d %s (cost %s) ]", mb.tag, mb.solnIndex, detail, mb.cost)
}

// deleteMonitor removes m from all its parents and from its solution. It
// panics if m is attached.
func deleteMonitor(m Monitor) {
	mb := m.base()
	if mb.attached {
		panic(fmt.Sprintf("%sMonitor.Delete: monitor is attached", mb.tag))
	}
	for len(mb.parents) > 0 {
		l := mb.parents[len(mb.parents)-1]
		l.parent.deleteLink(l)
	}
	if mb.soln != nil {
		mb.soln.deleteMonitor(m)
	}
}
