package matching

import "fmt"

// HallSet is a set of demand nodes together with the set of all supply nodes
// they may be matched to, such that there are more demand nodes than supply
// nodes. Each unmatched demand node of an up to date matching lies in exactly
// one Hall set, and Hall sets explain why the nodes are unmatched.
type HallSet struct {
	parent      *HallSet
	supplyNodes []*SupplyNode
	demandNodes []*DemandNode
}

// root returns the representative of hs, compressing the path to it.
func (hs *HallSet) root() *HallSet {
	r := hs
	for r.parent != nil {
		r = r.parent
	}
	for hs != r {
		next := hs.parent
		hs.parent = r
		hs = next
	}
	return r
}

// union merges the set represented by other into the set represented by hs.
func (hs *HallSet) union(other *HallSet) {
	hs.supplyNodes = append(hs.supplyNodes, other.supplyNodes...)
	hs.demandNodes = append(hs.demandNodes, other.demandNodes...)
	other.supplyNodes = nil
	other.demandNodes = nil
	other.parent = hs
}

// SupplyNodeCount returns the number of supply nodes of hs.
func (hs *HallSet) SupplyNodeCount() int {
	return len(hs.supplyNodes)
}

// SupplyNode returns the i-th supply node of hs.
func (hs *HallSet) SupplyNode(i int) *SupplyNode {
	return hs.supplyNodes[i]
}

// DemandNodeCount returns the number of demand nodes of hs.
func (hs *HallSet) DemandNodeCount() int {
	return len(hs.demandNodes)
}

// DemandNode returns the i-th demand node of hs.
func (hs *HallSet) DemandNode(i int) *DemandNode {
	return hs.demandNodes[i]
}

// buildHallSets computes the Hall sets of an up to date matching.
func (m *Matching) buildHallSets() {
	for _, sn := range m.supplyNodes {
		sn.hallSet = nil
	}
	for _, dc := range m.demandChunks {
		for _, dn := range dc.nodes {
			dn.hallSet = nil
		}
	}

	var all []*HallSet
	var stack []*DemandNode
	for _, dn := range m.unmatched {
		if dn.hallSet != nil {
			continue // reached from an earlier unmatched node
		}
		hs := &HallSet{demandNodes: []*DemandNode{dn}}
		all = append(all, hs)
		dn.hallSet = hs
		stack = append(stack[:0], dn)
		for len(stack) > 0 {
			d := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			m.eachSupplyNode(d, func(sn *SupplyNode, _ int) bool {
				r := hs.root()
				if sn.hallSet != nil {
					if other := sn.hallSet.root(); other != r {
						r.union(other)
					}
					return true
				}
				if sn.asst == nil {
					panic("matching.buildHallSets: unmatched supply node")
				}
				sn.hallSet = r
				r.supplyNodes = append(r.supplyNodes, sn)
				if sn.asst.hallSet == nil {
					sn.asst.hallSet = r
					r.demandNodes = append(r.demandNodes, sn.asst)
					stack = append(stack, sn.asst)
				}
				return true
			})
		}
	}

	m.hallSets = m.hallSets[:0]
	for _, hs := range all {
		if hs.parent != nil {
			if len(hs.supplyNodes) > 0 || len(hs.demandNodes) > 0 {
				panic("matching.buildHallSets: non-empty child set")
			}
			continue
		}
		if len(hs.demandNodes) <= len(hs.supplyNodes) {
			panic(fmt.Sprintf("matching.buildHallSets: %d demand nodes for %d supply nodes",
				len(hs.demandNodes), len(hs.supplyNodes)))
		}
		m.hallSets = append(m.hallSets, hs)
	}
}

// HallSetCount brings m up to date, builds its Hall sets if they are not
// already built, and returns their number.
func (m *Matching) HallSetCount() int {
	m.UnmatchedCount()
	if m.hallSets == nil {
		m.hallSets = []*HallSet{}
		m.buildHallSets()
	}
	return len(m.hallSets)
}

// HallSet returns the i-th Hall set of m. HallSetCount must be called first.
func (m *Matching) HallSet(i int) *HallSet {
	return m.hallSets[i]
}

// HallSet returns the Hall set containing dn, or nil if dn lies in no Hall
// set. HallSetCount must be called first.
func (dn *DemandNode) HallSet() *HallSet {
	if dn.hallSet == nil {
		return nil
	}
	return dn.hallSet.root()
}
