package khe

import (
	"fmt"
	"slices"
)

// Mark is a checkpoint in the history of a solution. Marks nest: only the
// most recent open mark may be undone or ended.
type Mark struct {
	soln      *Soln
	index     int // in soln.marks
	startPos  int // length of the main path when the mark began
	startCost Cost
	paths     []*Path
	open      bool
}

// reset clears every field of m before reuse.
func (m *Mark) reset(s *Soln) {
	clear(m.paths)
	*m = Mark{soln: s, paths: m.paths[:0]}
}

// MarkBegin opens a new mark on s.
func (s *Soln) MarkBegin() *Mark {
	var m *Mark
	if n := len(s.freeMarks); n > 0 {
		m = s.freeMarks[n-1]
		s.freeMarks[n-1] = nil
		s.freeMarks = s.freeMarks[:n-1]
	} else {
		m = &Mark{}
	}
	m.reset(s)
	m.startCost = s.Cost()
	m.index = len(s.marks)
	m.startPos = len(s.mainPath)
	m.open = true
	s.marks = append(s.marks, m)
	if s.matching != nil {
		s.matching.MarkBegin()
	}
	return m
}

// MarkCount returns the number of open marks of s.
func (s *Soln) MarkCount() int {
	return len(s.marks)
}

func (m *Mark) onTop() bool {
	return m.open && len(m.soln.marks) > 0 && m.soln.marks[len(m.soln.marks)-1] == m
}

// Soln returns the solution of m.
func (m *Mark) Soln() *Soln {
	return m.soln
}

// StartCost returns the cost of the solution when m began.
func (m *Mark) StartCost() Cost {
	return m.startCost
}

// StartPos returns the length of the main path when m began.
func (m *Mark) StartPos() int {
	return m.startPos
}

// IsCurrent returns true if the solution has not changed since m began, or
// since it was last undone to m.
func (m *Mark) IsCurrent() bool {
	return len(m.soln.mainPath) == m.startPos
}

// Undo returns the solution to its state when m began. It panics unless m
// is the most recent open mark.
func (m *Mark) Undo() {
	if !m.onTop() {
		panic("Mark.Undo: mark is not on top")
	}
	m.soln.undoTo(m.startPos)
}

// End closes m, deleting its paths and undoing its changes first if undo is
// true. It panics unless m is the most recent open mark.
func (m *Mark) End(undo bool) {
	if !m.onTop() {
		panic("Mark.End: mark is not on top")
	}
	s := m.soln
	for len(m.paths) > 0 {
		m.paths[len(m.paths)-1].Delete()
	}
	if undo {
		m.Undo()
	}
	if s.matching != nil {
		s.matching.MarkEnd(m.IsCurrent())
	}
	s.marks[len(s.marks)-1] = nil
	s.marks = s.marks[:len(s.marks)-1]
	if len(s.marks) == 0 {
		clear(s.mainPath)
		s.mainPath = s.mainPath[:0]
	}
	m.open = false
	s.freeMarks = append(s.freeMarks, m)
}

// AddPath saves the operations done since m began as a new path of m.
func (m *Mark) AddPath() *Path {
	if !m.open {
		panic("Mark.AddPath: mark is not open")
	}
	s := m.soln
	p := &Path{
		mark: m,
		ops:  slices.Clone(s.mainPath[m.startPos:]),
		cost: s.Cost(),
	}
	m.paths = append(m.paths, p)
	return p
}

// AddBestPath keeps the k cheapest paths of m, in increasing cost order. It
// adds a path for the current solution if there is room for it or if it is
// cheaper than the worst kept path, and returns it, or nil if it was not
// added.
func (m *Mark) AddBestPath(k int) *Path {
	if k < 1 {
		panic(fmt.Sprintf("Mark.AddBestPath: invalid k %d", k))
	}
	if len(m.paths) < k {
		p := m.AddPath()
		m.PathSort()
		return p
	}
	m.PathSort()
	for len(m.paths) > k {
		m.paths[len(m.paths)-1].Delete()
	}
	worst := m.paths[k-1]
	if m.soln.Cost() >= worst.cost {
		return nil
	}
	worst.Delete()
	p := m.AddPath()
	m.PathSort()
	return p
}

// PathCount returns the number of paths of m.
func (m *Mark) PathCount() int {
	return len(m.paths)
}

// Path returns the i-th path of m.
func (m *Mark) Path(i int) *Path {
	return m.paths[i]
}

// DeletePath deletes the i-th path of m.
func (m *Mark) DeletePath(i int) {
	m.paths[i].Delete()
}

// PathSort sorts the paths of m by increasing cost. Paths of equal cost
// keep their order.
func (m *Mark) PathSort() {
	slices.SortStableFunc(m.paths, func(a, b *Path) int {
		return CompareCost(a.cost, b.cost)
	})
}

func (m *Mark) String() string {
	return fmt.Sprintf("[ Mark %d (start_pos %d, cost %.5f, %d paths) ]",
		m.index, m.startPos, m.startCost.Show(), len(m.paths))
}
