// Package khe holds timetabling instances and incrementally monitored
// solutions.
//
// A solution is made of meets (timed blocks of an event) and tasks (the
// resource slots of a meet). Every change to a solution goes through a small
// set of reversible kernel operations which notify the monitors watching the
// changed event or resource. Monitors turn what they observe into a
// deviation and a cost, and costs propagate through a tree of group monitors
// whose root is the solution itself. While a mark is open, kernel operations
// are also recorded so that they can be undone.
package khe

import (
	"fmt"
	"log/slog"

	"github.com/rhartert/khe-ls/khe/matching"
	"github.com/rhartert/sparsesets"
)

// Config holds the options of a solution.
type Config struct {
	// Matching builds the demand/supply matching and its demand monitors.
	Matching bool

	// MatchingWeight is the cost of each unmatched demand node. Defaults to
	// a hard cost of 1.
	MatchingWeight Cost

	// Evenness builds the evenness handler and its (detached) monitors.
	Evenness bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Soln is a solution of an instance. It is also the root group monitor: its
// cost is the cost of the solution.
//
// A Soln is not safe for concurrent use. Use Copy to give each goroutine its
// own solution.
type Soln struct {
	GroupMonitor

	instance  *Instance
	config    Config
	logger    *slog.Logger
	monitors  []Monitor
	meets     []*Meet
	events    []*EventInSoln
	resources []*ResourceInSoln

	matching       *matching.Matching
	matchingWeight Cost
	workload       []*WorkloadDemandMonitor
	evenness       *EvennessHandler

	mainPath  []Operation
	marks     []*Mark
	freeMarks []*Mark

	batchDepth int
	dirty      *sparsesets.Set // resources with unflushed clash counts
}

// NewSoln returns a new solution of ins, which must be finalized. The
// solution has one attached monitor per constraint point, all children of
// the solution, and one meet per event with its preassignments applied.
func NewSoln(ins *Instance, cfg Config) *Soln {
	s := newEmptySoln(ins, cfg)

	for _, c := range ins.AssignTime {
		for _, e := range c.Events {
			s.addConstraintMonitor(newAssignTimeMonitor(s, c, s.events[e]))
		}
	}
	for _, c := range ins.SplitEvents {
		for _, e := range c.Events {
			s.addConstraintMonitor(newSplitEventsMonitor(s, c, s.events[e]))
		}
	}
	for _, c := range ins.AvoidClashes {
		for _, r := range c.Resources {
			s.addConstraintMonitor(newAvoidClashesMonitor(s, c, s.resources[r]))
		}
	}
	for _, c := range ins.AvoidUnavailableTimes {
		for _, r := range c.Resources {
			s.addConstraintMonitor(newAvoidUnavailableTimesMonitor(s, c, s.resources[r]))
		}
	}

	if cfg.Matching {
		s.buildMatching()
	}
	if cfg.Evenness {
		s.evenness = newEvennessHandler(s)
	}

	for _, e := range ins.Events {
		m := s.AddMeet(e, e.Duration)
		if e.PreassignedTime >= 0 {
			m.AssignTime(e.PreassignedTime)
		}
		for _, t := range m.tasks {
			if t.eventResource.Preassigned >= 0 {
				t.AssignResource(t.eventResource.Preassigned)
			}
		}
	}

	s.logger.Debug("solution built",
		slog.String("instance", ins.Name),
		slog.Int("meets", len(s.meets)),
		slog.Int("monitors", len(s.monitors)),
		slog.String("cost", s.Cost().String()))
	return s
}

func newEmptySoln(ins *Instance, cfg Config) *Soln {
	if !ins.Finalized() {
		panic("NewSoln: instance is not finalized")
	}
	if cfg.MatchingWeight == 0 {
		cfg.MatchingWeight = NewCost(1, 0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Soln{
		instance:       ins,
		config:         cfg,
		logger:         logger,
		matchingWeight: cfg.MatchingWeight,
		dirty:          sparsesets.New(len(ins.Resources)),
	}
	s.GroupMonitor.monitorBase = monitorBase{
		self:      s,
		soln:      s,
		tag:       TagSoln,
		solnIndex: -1,
		attached:  true,
	}
	s.GroupMonitor.label = "soln"
	for _, e := range ins.Events {
		s.events = append(s.events, &EventInSoln{event: e})
	}
	for _, r := range ins.Resources {
		s.resources = append(s.resources, &ResourceInSoln{
			resource:  r,
			timetable: make([]int, len(ins.Times)),
		})
	}
	return s
}

func (s *Soln) addConstraintMonitor(m Monitor) {
	m.AttachToSoln()
	s.AddChild(m)
}

// buildMatching creates the supply nodes, one per tixel (time, resource),
// and the workload demand of each resource with required unavailable times.
func (s *Soln) buildMatching() {
	ins := s.instance
	s.matching = matching.New()
	for range ins.Times {
		sc := s.matching.NewSupplyChunk()
		for range ins.Resources {
			sc.AddSupplyNode()
		}
	}
	for _, r := range ins.Resources {
		var times []int
		seen := make([]bool, len(ins.Times))
		for _, c := range r.avoidUnavailable {
			if !c.Required {
				continue
			}
			for _, t := range c.Times {
				if !seen[t] {
					seen[t] = true
					times = append(times, t)
				}
			}
		}
		if len(times) == 0 {
			continue
		}
		dc := s.matching.NewDemandChunk(0, len(ins.Resources), times)
		for range times {
			m := newWorkloadDemandMonitor(s, s.resources[r.Index], dc)
			s.workload = append(s.workload, m)
			s.AddChild(m)
			m.AttachToSoln()
		}
	}
}

// Instance returns the instance solved by s.
func (s *Soln) Instance() *Instance {
	return s.instance
}

// Logger returns the logger of s.
func (s *Soln) Logger() *slog.Logger {
	return s.logger
}

// Matching returns the matching of s, or nil if s has none.
func (s *Soln) Matching() *matching.Matching {
	return s.matching
}

// MatchingWeight returns the cost of one unmatched demand node.
func (s *Soln) MatchingWeight() Cost {
	return s.matchingWeight
}

// SetMatchingWeight changes the cost of unmatched demand nodes, repricing
// the ones that are currently unmatched.
func (s *Soln) SetMatchingWeight(w Cost) {
	if w < 0 {
		panic("Soln.SetMatchingWeight: negative weight")
	}
	s.bringUpToDate()
	s.matchingWeight = w
	for _, m := range s.monitors {
		if d, ok := m.(demandMonitor); ok {
			d.reprice()
		}
	}
}

// EvennessHandler returns the evenness handler of s, or nil if s has none.
func (s *Soln) EvennessHandler() *EvennessHandler {
	return s.evenness
}

// MonitorCount returns the number of monitors of s, groups included.
func (s *Soln) MonitorCount() int {
	return len(s.monitors)
}

// Monitor returns the monitor with the given solution index.
func (s *Soln) Monitor(i int) Monitor {
	return s.monitors[i]
}

// MeetCount returns the number of meets of s.
func (s *Soln) MeetCount() int {
	return len(s.meets)
}

// Meet returns the i-th meet of s.
func (s *Soln) Meet(i int) *Meet {
	return s.meets[i]
}

// EventInSoln returns the solution view of event e.
func (s *Soln) EventInSoln(e *Event) *EventInSoln {
	return s.events[e.Index]
}

// ResourceInSoln returns the solution view of resource r.
func (s *Soln) ResourceInSoln(r *Resource) *ResourceInSoln {
	return s.resources[r.Index]
}

// Deviation returns the number of defects of the solution.
func (s *Soln) Deviation() int {
	s.bringUpToDate()
	return len(s.defects)
}

func (s *Soln) String() string {
	return fmt.Sprintf("[ Soln %q (%d meets, %d monitors, cost %s) ]",
		s.instance.Name, len(s.meets), len(s.monitors), s.Cost())
}

func (s *Soln) addMonitor(m Monitor) {
	m.base().solnIndex = len(s.monitors)
	s.monitors = append(s.monitors, m)
}

func (s *Soln) deleteMonitor(m Monitor) {
	mb := m.base()
	last := s.monitors[len(s.monitors)-1]
	s.monitors[mb.solnIndex] = last
	last.base().solnIndex = mb.solnIndex
	s.monitors = s.monitors[:len(s.monitors)-1]
	mb.solnIndex = -1
}

// bringUpToDate makes every monitor cost current: it flushes pending clash
// counts and cleans the matching.
func (s *Soln) bringUpToDate() {
	s.flushClashes()
	if s.matching != nil {
		s.matching.UnmatchedCount()
	}
}

// EnsureOfficialCost makes the cost of s its official cost: every
// constraint monitor is attached and is a child of s and of no other group,
// and every demand and evenness monitor is detached.
func (s *Soln) EnsureOfficialCost() {
	for _, m := range s.monitors {
		mb := m.base()
		switch {
		case mb.tag.IsConstraint():
			for i := len(mb.parents) - 1; i >= 0; i-- {
				if p := mb.parents[i].parent; p != &s.GroupMonitor {
					p.DeleteChild(m)
				}
			}
			if !s.HasChild(m) {
				s.AddChild(m)
			}
			m.AttachToSoln()
		case mb.tag == TagOrdinaryDemand || mb.tag == TagWorkloadDemand || mb.tag == TagEvenness:
			m.DetachFromSoln()
		}
	}
}

// Batch groups kernel operations so that clash counts are flushed once, when
// the outermost batch ends. Every kernel operation runs in a batch of its
// own, so callers only need batches to group several operations.
type Batch struct {
	soln  *Soln
	ended bool
}

// BeginBatch opens a batch, which must be closed with End.
func (s *Soln) BeginBatch() *Batch {
	s.batchDepth++
	return &Batch{soln: s}
}

// End closes b, flushing clash counts if b is the outermost batch.
func (b *Batch) End() {
	if b.ended {
		panic("Batch.End: batch already ended")
	}
	b.ended = true
	b.soln.batchDepth--
	if b.soln.batchDepth == 0 {
		b.soln.flushClashes()
	}
}

func (s *Soln) flushClashes() {
	if len(s.dirty.Content()) == 0 {
		return
	}
	for _, r := range s.dirty.Content() {
		for _, m := range s.resources[r].avoidClashes {
			m.flush()
		}
	}
	s.dirty.Clear()
}
