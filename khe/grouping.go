package khe

// HasParent returns a parent of m that is a group monitor with the given
// sub-tag, or nil if there is none.
func HasParent(m Monitor, subTag int) *GroupMonitor {
	for _, l := range m.base().parents {
		if l.parent.tag == TagGroup && l.parent.subTag == subTag {
			return l.parent
		}
	}
	return nil
}

// Descendant returns true if lower is higher or a descendant of higher.
func Descendant(lower Monitor, higher *GroupMonitor) bool {
	if lower.base() == higher.base() {
		return true
	}
	for _, l := range lower.base().parents {
		if Descendant(l.parent, higher) {
			return true
		}
	}
	return false
}

// PathCount returns the number of distinct upward paths from lower to
// higher. Each such path contributes the cost of lower to the cost of
// higher once.
func PathCount(lower Monitor, higher *GroupMonitor) int {
	if lower.base() == higher.base() {
		return 1
	}
	n := 0
	for _, l := range lower.base().parents {
		n += PathCount(l.parent, higher)
	}
	return n
}

// AddSelfOrParent ensures that m is counted in g. If m has a parent with the
// given sub-tag, that parent is made a descendant of g (as a child of g if
// it is not one already). Otherwise m itself is made a descendant of g in
// the same way. This avoids counting m twice when it has been grouped
// already.
func AddSelfOrParent(m Monitor, subTag int, g *GroupMonitor) {
	var target Monitor = m
	if p := HasParent(m, subTag); p != nil {
		target = p
	}
	if !Descendant(target, g) {
		g.AddChild(target)
	}
}

// DeleteAllParentsRecursive removes m from all its parents. Each parent that
// is left without children is then deleted the same way, except the
// solution.
func DeleteAllParentsRecursive(m Monitor) {
	mb := m.base()
	for len(mb.parents) > 0 {
		p := mb.parents[len(mb.parents)-1].parent
		p.DeleteChild(m)
		if p.tag != TagSoln && len(p.children) == 0 {
			DeleteAllParentsRecursive(p)
			p.Delete()
		}
	}
}
