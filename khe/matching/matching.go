// Package matching maintains a maximum matching between demand nodes and
// supply nodes of a bipartite graph, under incremental changes.
//
// Supply nodes are grouped in supply chunks and numbered globally in their
// order of creation. Demand nodes are grouped in demand chunks. Given demand
// node dn in chunk dc, the supply nodes dn may be matched to are:
//
//	for each element a of domain(dc)
//	   for each element b of domain(dn)
//	      supply node base(dc) + increment(dc) * a + b
//
// This makes it easy to relocate an entire chunk by changing its base or its
// domain, which is how meets carry their demand from one time to another.
//
// Matching is lazy: changes only record what became unmatched, and the
// augmenting path searches run when the number of unmatched demand nodes is
// queried. Each demand node reports its transitions between matched and
// unmatched to its Listener.
package matching

import (
	"fmt"
	"math"
)

// ChangeType describes how a new domain relates to the domain it replaces.
type ChangeType int8

const (
	// ToSubset means that the new domain is a subset of the old one.
	ToSubset ChangeType = iota

	// ToSuperset means that the new domain is a superset of the old one.
	ToSuperset

	// ToOther means that nothing is known about the new domain.
	ToOther
)

func (ct ChangeType) String() string {
	switch ct {
	case ToSubset:
		return "subset"
	case ToSuperset:
		return "superset"
	default:
		return "other"
	}
}

// Listener is notified when a demand node starts or stops being unmatched.
type Listener interface {
	SetUnmatched(unmatched bool)
}

// noPrevAsst is the assignment index of a demand node that was never matched.
const noPrevAsst = math.MaxInt

// SupplyChunk is a set of consecutively numbered supply nodes.
type SupplyChunk struct {
	matching *Matching
	index    int
	base     int
	nodes    []*SupplyNode
}

// SupplyNode is one supply node of the matching.
type SupplyNode struct {
	chunk     *SupplyChunk
	index     int
	visitNum  uint
	asst      *DemandNode
	hallSet   *HallSet
	testIndex int
}

// DemandChunk is a set of demand nodes sharing a base, an increment and a
// domain.
type DemandChunk struct {
	matching  *Matching
	index     int
	base      int
	increment int
	domain    []int
	nodes     []*DemandNode
}

// DemandNode is one demand node of the matching. A demand node is created
// detached and takes part in the matching between calls to Add and Delete.
type DemandNode struct {
	chunk        *DemandChunk
	domain       []int
	asst         *SupplyNode
	asstIndex    int
	unmatchedPos int
	bfsNext      *DemandNode
	bfsParent    *DemandNode
	hallSet      *HallSet
	listener     Listener
	reported     bool // listener was told the node is unmatched
	added        bool
}

// Matching is a bipartite graph of demand and supply nodes together with a
// matching of maximum size (once brought up to date).
type Matching struct {
	supplyChunks    []*SupplyChunk
	demandChunks    []*DemandChunk
	supplyNodes     []*SupplyNode
	demandNodeCount int
	visitNum        uint

	// The unmatched demand nodes. This may include nodes that could be
	// matched; the list is brought up to date by makeClean.
	unmatched []*DemandNode

	// A lower bound on the number of unmatched demand nodes in a maximum
	// matching. When it equals len(unmatched), the matching is up to date.
	unmatchedLowerBound int

	active      bool
	marks       []int
	hallSets    []*HallSet
	competitors []*DemandNode
}

// New returns an empty matching.
func New() *Matching {
	return &Matching{
		visitNum: 1, // must be greater than the zero values of supply nodes
	}
}

// enter guards against reentrant calls, e.g. from a Listener.
func (m *Matching) enter(op string) {
	if m.active {
		panic(fmt.Sprintf("matching.%s: reentrant call", op))
	}
	m.active = true
}

func (m *Matching) leave() {
	m.active = false
}

// eachSupplyNode calls fn for each supply node dn may be matched to, in
// order, together with the index of the element of dn's domain that
// selected it. It stops as soon as fn returns false.
func (m *Matching) eachSupplyNode(dn *DemandNode, fn func(sn *SupplyNode, j int) bool) {
	dc := dn.chunk
	for _, a := range dc.domain {
		base := dc.base + dc.increment*a
		for j, b := range dn.domain {
			if !fn(m.supplyNodes[base+b], j) {
				return
			}
		}
	}
}

// assignBFS tries to find and apply an augmenting path from unassigned
// demand node dn, returning true if successful. It uses breadth-first search.
func (m *Matching) assignBFS(dn *DemandNode) bool {
	first, last := dn, dn
	dn.bfsParent, dn.bfsNext = nil, nil
	found := false
	for first != nil && !found {
		curr := first
		m.eachSupplyNode(curr, func(sn *SupplyNode, j int) bool {
			if !m.visit(sn) {
				return true
			}
			sn.testIndex = j
			if sn.asst == nil {
				// Unassigned: unwind the tree and augment.
				d, s := curr, sn
				for d != nil {
					prev := d.asst
					s.asst = d
					d.asst = s
					d.asstIndex = s.testIndex
					d, s = d.bfsParent, prev
				}
				found = true
				return false
			}
			last.bfsNext = sn.asst
			last = sn.asst
			last.bfsNext = nil
			last.bfsParent = curr
			return true
		})
		first = first.bfsNext
	}
	return found
}

func (m *Matching) addUnmatched(dn *DemandNode) {
	if dn.asst != nil {
		panic("matching.addUnmatched: demand node is assigned")
	}
	dn.unmatchedPos = len(m.unmatched)
	m.unmatched = append(m.unmatched, dn)
	if !dn.reported {
		dn.reported = true
		if dn.listener != nil {
			dn.listener.SetUnmatched(true)
		}
	}
}

// removeUnmatched removes dn from the unmatched list. When this is called,
// dn may already be assigned, since it may have just been matched.
func (m *Matching) removeUnmatched(dn *DemandNode) {
	if m.unmatched[dn.unmatchedPos] != dn {
		panic("matching.removeUnmatched: inconsistent position")
	}
	last := len(m.unmatched) - 1
	moved := m.unmatched[last]
	m.unmatched[dn.unmatchedPos] = moved
	moved.unmatchedPos = dn.unmatchedPos
	m.unmatched[last] = nil
	m.unmatched = m.unmatched[:last]
	if dn.reported {
		dn.reported = false
		if dn.listener != nil {
			dn.listener.SetUnmatched(false)
		}
	}
}

// makeClean brings the matching up to date by attempting to assign each
// unassigned demand node. Nodes are tried in reverse order of insertion, a
// previously successful domain element is tried before the general search,
// the timestamp is not incremented after a failed search (nothing changed),
// and the loop stops as soon as the lower bound is reached.
func (m *Matching) makeClean() {
	if m.unmatchedLowerBound >= len(m.unmatched) {
		return
	}
	visitNeeded := true
	for i := len(m.unmatched) - 1; i >= 0; i-- {
		dn := m.unmatched[i]
		if dn.asstIndex < len(dn.domain) {
			dc := dn.chunk
			for _, a := range dc.domain {
				sn := m.supplyNodes[dc.base+dc.increment*a+dn.domain[dn.asstIndex]]
				if sn.asst == nil {
					sn.asst = dn
					dn.asst = sn
					break
				}
			}
		}
		if dn.asst == nil {
			if visitNeeded {
				m.nextVisit()
			}
			visitNeeded = m.assignBFS(dn)
		}
		if dn.asst != nil {
			m.removeUnmatched(dn)
			if m.unmatchedLowerBound == len(m.unmatched) {
				break
			}
		}
	}
	m.unmatchedLowerBound = len(m.unmatched)
	m.hallSets = nil
}

// deassign breaks the assignment of dn, if any, and returns true if dn was
// assigned.
func deassign(dn *DemandNode) bool {
	if dn.asst == nil {
		return false
	}
	dn.asst.asst = nil
	dn.asst = nil
	return true
}

// domainChanged updates the matching after the domain of dn (or of its chunk)
// changed.
func (m *Matching) domainChanged(dn *DemandNode, ct ChangeType) {
	if ct != ToSubset && m.unmatchedLowerBound > 0 {
		m.unmatchedLowerBound--
	}
	if dn.asst != nil && ct != ToSuperset {
		deassign(dn)
		m.addUnmatched(dn)
	}
	m.hallSets = nil
}

// ---------------------------------------------------------------------------
// Supply side

// NewSupplyChunk adds an empty supply chunk to m. Its base is the number of
// supply nodes in m at the time of the call.
func (m *Matching) NewSupplyChunk() *SupplyChunk {
	sc := &SupplyChunk{
		matching: m,
		index:    len(m.supplyChunks),
		base:     len(m.supplyNodes),
	}
	m.supplyChunks = append(m.supplyChunks, sc)
	return sc
}

// AddSupplyNode adds a new supply node to sc and returns it. Supply nodes
// are numbered in their order of creation across the whole matching.
func (sc *SupplyChunk) AddSupplyNode() *SupplyNode {
	m := sc.matching
	sn := &SupplyNode{
		chunk: sc,
		index: len(m.supplyNodes),
	}
	m.supplyNodes = append(m.supplyNodes, sn)
	sc.nodes = append(sc.nodes, sn)
	return sn
}

// Base returns the index of the first supply node of sc.
func (sc *SupplyChunk) Base() int {
	return sc.base
}

// NodeCount returns the number of supply nodes of sc.
func (sc *SupplyChunk) NodeCount() int {
	return len(sc.nodes)
}

// Node returns the i-th supply node of sc.
func (sc *SupplyChunk) Node(i int) *SupplyNode {
	return sc.nodes[i]
}

// Index returns the global index of sn.
func (sn *SupplyNode) Index() int {
	return sn.index
}

// Chunk returns the supply chunk containing sn.
func (sn *SupplyNode) Chunk() *SupplyChunk {
	return sn.chunk
}

// Assignment returns the demand node sn is matched to, or nil. The result is
// only meaningful once the matching is up to date.
func (sn *SupplyNode) Assignment() *DemandNode {
	return sn.asst
}

// ---------------------------------------------------------------------------
// Demand chunks

// NewDemandChunk adds a demand chunk with the given base, increment and
// domain to m. The domain slice is shared and must not be modified by the
// caller afterwards.
func (m *Matching) NewDemandChunk(base, increment int, domain []int) *DemandChunk {
	dc := &DemandChunk{
		matching:  m,
		index:     len(m.demandChunks),
		base:      base,
		increment: increment,
		domain:    domain,
	}
	m.demandChunks = append(m.demandChunks, dc)
	return dc
}

// Base returns the base of dc.
func (dc *DemandChunk) Base() int {
	return dc.base
}

// Increment returns the increment of dc.
func (dc *DemandChunk) Increment() int {
	return dc.increment
}

// Domain returns the domain of dc.
func (dc *DemandChunk) Domain() []int {
	return dc.domain
}

// SetBase changes the base of dc.
func (dc *DemandChunk) SetBase(base int) {
	m := dc.matching
	m.enter("DemandChunk.SetBase")
	defer m.leave()
	if base != dc.base {
		dc.base = base
		for _, dn := range dc.nodes {
			m.domainChanged(dn, ToOther)
		}
	}
}

// SetIncrement changes the increment of dc.
func (dc *DemandChunk) SetIncrement(increment int) {
	m := dc.matching
	m.enter("DemandChunk.SetIncrement")
	defer m.leave()
	if increment != dc.increment {
		dc.increment = increment
		for _, dn := range dc.nodes {
			m.domainChanged(dn, ToOther)
		}
	}
}

// SetDomain changes the domain of dc. Parameter ct describes how the new
// domain relates to the old one.
func (dc *DemandChunk) SetDomain(domain []int, ct ChangeType) {
	m := dc.matching
	m.enter("DemandChunk.SetDomain")
	defer m.leave()
	dc.domain = domain
	for _, dn := range dc.nodes {
		m.domainChanged(dn, ct)
	}
}

// NodeCount returns the number of demand nodes currently in dc.
func (dc *DemandChunk) NodeCount() int {
	return len(dc.nodes)
}

// Node returns the i-th demand node of dc.
func (dc *DemandChunk) Node(i int) *DemandNode {
	return dc.nodes[i]
}

// ---------------------------------------------------------------------------
// Demand nodes

// NewDemandNode returns a new demand node of chunk dc with the given domain.
// The node does not take part in the matching until Add is called.
func NewDemandNode(dc *DemandChunk, domain []int, l Listener) *DemandNode {
	return &DemandNode{
		chunk:        dc,
		domain:       domain,
		asstIndex:    noPrevAsst,
		unmatchedPos: -1,
		listener:     l,
	}
}

// Add inserts dn into its chunk, unmatched.
func (dn *DemandNode) Add() {
	m := dn.chunk.matching
	m.enter("DemandNode.Add")
	defer m.leave()
	if dn.added {
		panic("DemandNode.Add: demand node already added")
	}
	dn.added = true
	dn.chunk.nodes = append(dn.chunk.nodes, dn)
	m.demandNodeCount++
	m.addUnmatched(dn)
	m.hallSets = nil
}

// Delete removes dn from the matching, releasing its supply node if any.
func (dn *DemandNode) Delete() {
	m := dn.chunk.matching
	m.enter("DemandNode.Delete")
	defer m.leave()
	if !dn.added {
		panic("DemandNode.Delete: demand node not added")
	}
	m.demandNodeCount--
	if !deassign(dn) {
		m.removeUnmatched(dn)
	}
	nodes := dn.chunk.nodes
	for i, x := range nodes {
		if x == dn {
			copy(nodes[i:], nodes[i+1:])
			nodes[len(nodes)-1] = nil
			dn.chunk.nodes = nodes[:len(nodes)-1]
			break
		}
	}
	if m.unmatchedLowerBound > 0 {
		m.unmatchedLowerBound--
	}
	dn.added = false
	m.hallSets = nil
}

// Added returns true if dn takes part in the matching.
func (dn *DemandNode) Added() bool {
	return dn.added
}

// Chunk returns the demand chunk of dn.
func (dn *DemandNode) Chunk() *DemandChunk {
	return dn.chunk
}

// Domain returns the domain of dn.
func (dn *DemandNode) Domain() []int {
	return dn.domain
}

// SetDomain changes the domain of dn. Parameter ct describes how the new
// domain relates to the old one. Unless the new domain is a superset, dn is
// unassigned so that its assignment never lies outside its domain.
func (dn *DemandNode) SetDomain(domain []int, ct ChangeType) {
	dn.domain = domain
	if !dn.added {
		return
	}
	m := dn.chunk.matching
	m.enter("DemandNode.SetDomain")
	defer m.leave()
	m.domainChanged(dn, ct)
}

// Assignment returns the supply node dn is matched to, or nil. The result is
// only meaningful once the matching is up to date.
func (dn *DemandNode) Assignment() *SupplyNode {
	return dn.asst
}

// Listener returns the listener of dn.
func (dn *DemandNode) Listener() Listener {
	return dn.listener
}

// SetListener changes the listener of dn.
func (dn *DemandNode) SetListener(l Listener) {
	dn.listener = l
}

// ---------------------------------------------------------------------------
// Matching queries

// SupplyNodeCount returns the number of supply nodes of m.
func (m *Matching) SupplyNodeCount() int {
	return len(m.supplyNodes)
}

// SupplyNode returns the supply node with global index i.
func (m *Matching) SupplyNode(i int) *SupplyNode {
	return m.supplyNodes[i]
}

// DemandNodeCount returns the number of demand nodes added to m.
func (m *Matching) DemandNodeCount() int {
	return m.demandNodeCount
}

// SupplyChunkCount returns the number of supply chunks of m.
func (m *Matching) SupplyChunkCount() int {
	return len(m.supplyChunks)
}

// SupplyChunk returns the i-th supply chunk of m.
func (m *Matching) SupplyChunk(i int) *SupplyChunk {
	return m.supplyChunks[i]
}

// DemandChunkCount returns the number of demand chunks of m.
func (m *Matching) DemandChunkCount() int {
	return len(m.demandChunks)
}

// DemandChunk returns the i-th demand chunk of m.
func (m *Matching) DemandChunk(i int) *DemandChunk {
	return m.demandChunks[i]
}

// UnmatchedCount brings m up to date and returns the number of unmatched
// demand nodes in a maximum matching.
func (m *Matching) UnmatchedCount() int {
	m.enter("UnmatchedCount")
	defer m.leave()
	m.makeClean()
	return m.unmatchedLowerBound
}

// Unmatched brings m up to date and returns its i-th unmatched demand node.
func (m *Matching) Unmatched(i int) *DemandNode {
	m.enter("Unmatched")
	defer m.leave()
	m.makeClean()
	return m.unmatched[i]
}

// MarkBegin records the current number of unmatched demand nodes.
func (m *Matching) MarkBegin() {
	m.marks = append(m.marks, m.UnmatchedCount())
}

// MarkEnd ends the most recent mark. If undo is true, the caller guarantees
// that the graph is back to its state at the time of the corresponding
// MarkBegin, so the recorded count is a valid lower bound that is reached
// again.
func (m *Matching) MarkEnd(undo bool) {
	if len(m.marks) == 0 {
		panic("matching.MarkEnd: no mark")
	}
	last := len(m.marks) - 1
	lowerBound := m.marks[last]
	m.marks = m.marks[:last]
	if !undo {
		return
	}
	m.enter("MarkEnd")
	defer m.leave()
	m.unmatchedLowerBound = lowerBound
	m.makeClean()
	if m.unmatchedLowerBound != lowerBound {
		panic(fmt.Sprintf("matching.MarkEnd: undo left %d unmatched nodes, want %d",
			m.unmatchedLowerBound, lowerBound))
	}
}

// SetCompetitors sets the competitors of unmatched demand node dn: the
// demand nodes reachable from dn by alternating paths, dn included. Every
// supply node these competitors could use is already matched.
func (m *Matching) SetCompetitors(dn *DemandNode) {
	m.UnmatchedCount()
	if dn.asst != nil {
		panic("matching.SetCompetitors: demand node is not unmatched")
	}
	m.nextVisit()
	m.competitors = append(m.competitors[:0], dn)
	for i := 0; i < len(m.competitors); i++ {
		m.eachSupplyNode(m.competitors[i], func(sn *SupplyNode, _ int) bool {
			if m.visit(sn) {
				if sn.asst == nil {
					panic("matching.SetCompetitors: unmatched supply node")
				}
				m.competitors = append(m.competitors, sn.asst)
			}
			return true
		})
	}
}

// CompetitorCount returns the number of competitors set by the last call to
// SetCompetitors.
func (m *Matching) CompetitorCount() int {
	return len(m.competitors)
}

// Competitor returns the i-th competitor.
func (m *Matching) Competitor(i int) *DemandNode {
	return m.competitors[i]
}
