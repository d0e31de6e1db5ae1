package matching

import "math"

// The visitNum fields of the matching and of its supply nodes act as a set
// of booleans telling whether a supply node was reached by the current
// search. Precisely, supply node sn was visited if sn.visitNum == m.visitNum.
// The use of a logical timestamp (rather than booleans) provides an efficient
// way to mark all supply nodes as unvisited in O(1) by incrementing the
// timestamp.

// nextVisit starts a new search by incrementing the timestamp. It resets the
// timestamps of all supply nodes if it overflows.
func (m *Matching) nextVisit() {
	if m.visitNum != math.MaxUint {
		m.visitNum += 1
		return
	}
	m.visitNum = 1
	for _, sn := range m.supplyNodes {
		sn.visitNum = 0
	}
}

// visit marks sn as visited by the current search and returns true if it was
// not visited before.
func (m *Matching) visit(sn *SupplyNode) bool {
	if sn.visitNum == m.visitNum {
		return false
	}
	sn.visitNum = m.visitNum
	return true
}
