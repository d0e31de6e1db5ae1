package khe

import "fmt"

// Cost is a solution cost made of a hard component (the number or weight of
// violated required constraints) and a soft component. Both components are
// packed into a single integer so that costs compare and add like integers,
// with the hard component dominating.
type Cost int64

// NewCost returns the cost with the given hard and soft components.
func NewCost(hard, soft int) Cost {
	return Cost(int64(hard)<<32 + int64(soft))
}

// Hard returns the hard component of c.
func (c Cost) Hard() int {
	return int(c >> 32)
}

// Soft returns the soft component of c.
func (c Cost) Soft() int {
	return int(c & 0xFFFFFFFF)
}

// CompareCost returns -1, 0 or 1 depending on whether a is smaller than,
// equal to, or greater than b.
func CompareCost(a, b Cost) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Show returns c as a single number for display: the hard component plus the
// soft component (capped at 99999) divided by 100000.
func (c Cost) Show() float64 {
	soft := c.Soft()
	if soft > 99999 {
		soft = 99999
	}
	return float64(c.Hard()) + float64(soft)/100000.0
}

func (c Cost) String() string {
	return fmt.Sprintf("%.5f", c.Show())
}

// CostFunction maps a deviation to a multiple of a constraint's weight.
type CostFunction int8

const (
	// Step charges the weight once if there is any deviation.
	Step CostFunction = iota

	// Linear charges the weight once per unit of deviation.
	Linear

	// Quadratic charges the weight once per unit of squared deviation.
	Quadratic
)

func (f CostFunction) String() string {
	switch f {
	case Step:
		return "step"
	case Linear:
		return "linear"
	case Quadratic:
		return "quadratic"
	default:
		return fmt.Sprintf("CostFunction(%d)", int8(f))
	}
}

// ParseCostFunction returns the cost function named s.
func ParseCostFunction(s string) (CostFunction, error) {
	switch s {
	case "step":
		return Step, nil
	case "linear", "":
		return Linear, nil
	case "quadratic":
		return Quadratic, nil
	default:
		return Linear, fmt.Errorf("unknown cost function %q", s)
	}
}

// Apply returns the cost of deviation dev under weight w.
func (f CostFunction) Apply(w Cost, dev int) Cost {
	switch f {
	case Step:
		if dev > 0 {
			return w
		}
		return 0
	case Linear:
		return Cost(dev) * w
	case Quadratic:
		return Cost(dev*dev) * w
	default:
		panic(fmt.Sprintf("CostFunction.Apply: invalid cost function %d", f))
	}
}
