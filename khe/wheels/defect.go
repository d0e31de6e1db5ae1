package wheels

// DefectWheel selects among a changing set of elements, typically the
// defects of a group monitor identified by their solution index. Each
// element carries a cost alongside its weight so that callers can tell
// whether it changed since it was put.
//
// The number of defects is not known in advance: a repair can turn any
// monitor of the solution into a defect, and meets added during the search
// bring new demand monitors with them. The wheel therefore starts with room
// for the defects present at construction and doubles its leaves when an
// element does not fit. Removed elements are swapped with the last leaf so
// that the occupied leaves stay contiguous and Roll only walks live weights.
type DefectWheel struct {
	offset  int // index of the first leaf, a power of two
	size    int
	weights []float64
	costs   []int64
	elems   []int
	pos     map[int]int // element to leaf position
}

// NewDefectWheel returns an empty wheel with room for initSize elements
// before it grows.
func NewDefectWheel(initSize int) *DefectWheel {
	offset := nextPower2(initSize)
	return &DefectWheel{
		offset:  offset,
		weights: make([]float64, offset*2),
		elems:   make([]int, offset*2),
		costs:   make([]int64, offset*2),
		pos:     make(map[int]int, initSize),
	}
}

func nextPower2(i int) int {
	i |= i >> 1
	i |= i >> 2
	i |= i >> 4
	i |= i >> 8
	i |= i >> 16
	i |= i >> 32
	return i + 1
}

// Len returns the number of elements of dw.
func (dw *DefectWheel) Len() int {
	return dw.size
}

// Contains returns true if elem is in dw.
func (dw *DefectWheel) Contains(elem int) bool {
	_, ok := dw.pos[elem]
	return ok
}

// Put inserts elem with the given cost and weight, or updates them if elem
// is in dw already.
func (dw *DefectWheel) Put(elem int, cost int64, weight float64) {
	if i, ok := dw.pos[elem]; ok {
		n := dw.offset + i
		dw.costs[n] = cost
		dw.weights[n] = weight
		dw.propagate(n)
		return
	}
	if dw.offset+dw.size == len(dw.weights) {
		dw.grow()
	}
	n := dw.offset + dw.size
	dw.elems[n] = elem
	dw.costs[n] = cost
	dw.weights[n] = weight
	dw.pos[elem] = dw.size
	dw.size++
	dw.propagate(n)
}

// Remove removes elem from dw, if present.
func (dw *DefectWheel) Remove(elem int) {
	i, ok := dw.pos[elem]
	if !ok {
		return
	}
	delete(dw.pos, elem)

	dw.size--
	delNode := dw.offset + i
	lastNode := dw.offset + dw.size
	if delNode != lastNode {
		dw.weights[delNode] = dw.weights[lastNode]
		dw.elems[delNode] = dw.elems[lastNode]
		dw.costs[delNode] = dw.costs[lastNode]
		dw.pos[dw.elems[lastNode]] = i
		dw.propagate(delNode)
	}
	dw.weights[lastNode] = 0
	dw.costs[lastNode] = 0
	dw.propagate(lastNode)
}

// Cost returns the cost elem was put with, or 0 if it is not in dw.
func (dw *DefectWheel) Cost(elem int) int64 {
	if i, ok := dw.pos[elem]; ok {
		return dw.costs[dw.offset+i]
	}
	return 0
}

// Clear removes every element.
func (dw *DefectWheel) Clear() {
	clear(dw.weights)
	clear(dw.costs)
	clear(dw.pos)
	dw.size = 0
}

// Roll selects an element with probability proportional to its weight,
// using the random number roll in [0, 1). It returns -1 if dw is empty or
// every weight is 0.
func (dw *DefectWheel) Roll(roll float64) int {
	checkRoll(roll)
	if dw.size == 0 || dw.weights[1] == 0 {
		return -1
	}
	w := dw.weights[1] * roll
	i := 1
	for i < dw.offset {
		l := i * 2
		if w < dw.weights[l] {
			i = l
		} else {
			i = l + 1
			w -= dw.weights[l]
		}
	}
	return dw.elems[i]
}

func (dw *DefectWheel) propagate(i int) {
	for p := i >> 1; p > 0; p = p >> 1 {
		dw.weights[p] = dw.weights[p<<1] + dw.weights[p<<1+1]
	}
}

func (dw *DefectWheel) grow() {
	newOffset := len(dw.weights)
	newWeights := make([]float64, newOffset*2)
	newCosts := make([]int64, newOffset*2)
	newElems := make([]int, newOffset*2)
	copy(newWeights[newOffset:], dw.weights[dw.offset:])
	copy(newCosts[newOffset:], dw.costs[dw.offset:])
	copy(newElems[newOffset:], dw.elems[dw.offset:])
	dw.weights = newWeights
	dw.costs = newCosts
	dw.elems = newElems
	dw.offset = newOffset
	for p := dw.offset - 1; p > 0; p-- {
		dw.weights[p] = dw.weights[p*2] + dw.weights[p*2+1]
	}
}
