package khe

import "fmt"

// Path is a saved sequence of operations done since its mark began, with
// the cost of the solution they led to.
type Path struct {
	mark *Mark
	ops  []Operation
	cost Cost
}

// Mark returns the mark of p, or nil if p was deleted.
func (p *Path) Mark() *Mark {
	return p.mark
}

// Cost returns the cost of the solution when p was saved.
func (p *Path) Cost() Cost {
	return p.cost
}

// Count returns the number of operations of p.
func (p *Path) Count() int {
	return len(p.ops)
}

// Operation returns the i-th operation of p.
func (p *Path) Operation(i int) Operation {
	return p.ops[i]
}

// Redo applies the operations of p again. The solution must be in the state
// of the mark of p, which must be on top.
func (p *Path) Redo() {
	m := p.mark
	if m == nil {
		panic("Path.Redo: path was deleted")
	}
	if !m.onTop() || !m.IsCurrent() {
		panic("Path.Redo: solution is not in the state of the path's mark")
	}
	s := m.soln
	b := s.BeginBatch()
	defer b.End()
	for _, op := range p.ops {
		s.apply(op)
	}
}

// Undo applies the inverses of the operations of p in reverse order. The
// solution must be in the state p was saved in.
func (p *Path) Undo() {
	if p.mark == nil {
		panic("Path.Undo: path was deleted")
	}
	s := p.mark.soln
	b := s.BeginBatch()
	defer b.End()
	for i := len(p.ops) - 1; i >= 0; i-- {
		s.apply(p.ops[i].Inverse())
	}
}

// Delete removes p from its mark.
func (p *Path) Delete() {
	if p.mark == nil {
		return
	}
	p.mark.paths = removeFirst(p.mark.paths, p)
	p.mark = nil
	p.ops = nil
}

func (p *Path) String() string {
	return fmt.Sprintf("[ Path (%d ops, cost %.5f) ]", len(p.ops), p.cost.Show())
}
