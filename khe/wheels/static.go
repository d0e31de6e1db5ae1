// Package wheels implements roulette wheel selection over weighted elements.
// Both wheels store weights in a complete binary tree whose internal nodes
// hold the sum of their children, so that updates and rolls are logarithmic.
package wheels

import "fmt"

// StaticWheel selects among a fixed number of elements 0..n-1.
type StaticWheel struct {
	n int
	// sumWeights is a complete tree with n leaves rooted at index 1. The
	// children of node i are at i*2 and i*2+1.
	sumWeights []float64
}

// NewStaticWheel returns a wheel of n elements, all of weight 0.
func NewStaticWheel(n int) *StaticWheel {
	return &StaticWheel{
		n:          n,
		sumWeights: make([]float64, n*2),
	}
}

// Len returns the number of elements of st.
func (st *StaticWheel) Len() int {
	return st.n
}

// SetWeight sets the weight of elem. Weights must not be negative.
func (st *StaticWheel) SetWeight(elem int, weight float64) {
	if weight < 0 {
		panic(fmt.Sprintf("StaticWheel.SetWeight: negative weight %f", weight))
	}
	i := st.n + elem
	st.sumWeights[i] = weight
	for p := i / 2; p > 0; p = p / 2 {
		st.sumWeights[p] = st.sumWeights[p*2] + st.sumWeights[p*2+1]
	}
}

// Weight returns the weight of elem.
func (st *StaticWheel) Weight(elem int) float64 {
	return st.sumWeights[st.n+elem]
}

// Total returns the sum of all weights.
func (st *StaticWheel) Total() float64 {
	if st.n == 0 {
		return 0
	}
	return st.sumWeights[1]
}

// Roll selects an element with probability proportional to its weight,
// using the random number roll in [0, 1). It returns -1 if every weight is
// 0.
func (st *StaticWheel) Roll(roll float64) int {
	checkRoll(roll)
	if st.n == 0 || st.sumWeights[1] == 0 {
		return -1
	}
	w := roll * st.sumWeights[1]
	i := 1
	for i < st.n {
		l := i * 2
		if w < st.sumWeights[l] {
			i = l
		} else {
			i = l + 1
			w -= st.sumWeights[l]
		}
	}
	return i - st.n
}

func checkRoll(roll float64) {
	if roll < 0 || 1 <= roll {
		panic(fmt.Sprintf("wheels: roll must be in [0, 1), got %f", roll))
	}
}
