package khe

// ConstraintBase holds the fields shared by all constraints.
type ConstraintBase struct {
	Name     string
	Required bool
	Weight   int
	Function CostFunction
}

// CombinedWeight returns the weight of the constraint as a hard cost if it
// is required, and as a soft cost otherwise.
func (c *ConstraintBase) CombinedWeight() Cost {
	if c.Required {
		return NewCost(c.Weight, 0)
	}
	return NewCost(0, c.Weight)
}

// Cost returns the cost of deviation dev.
func (c *ConstraintBase) Cost(dev int) Cost {
	return c.Function.Apply(c.CombinedWeight(), dev)
}

// AssignTimeConstraint requires the meets of its events to be assigned
// times.
type AssignTimeConstraint struct {
	ConstraintBase
	Events []int
}

// AvoidClashesConstraint requires its resources not to attend two meets at
// the same time.
type AvoidClashesConstraint struct {
	ConstraintBase
	Resources []int
}

// AvoidUnavailableTimesConstraint requires its resources not to be busy at
// the given times.
type AvoidUnavailableTimesConstraint struct {
	ConstraintBase
	Resources []int
	Times     []int

	unavailable []bool // by time index
}

// Unavailable returns true if t is one of the unavailable times of c. The
// instance must be finalized.
func (c *AvoidUnavailableTimesConstraint) Unavailable(t int) bool {
	return c.unavailable[t]
}

// SplitEventsConstraint limits the number of meets of each of its events and
// the durations of those meets.
type SplitEventsConstraint struct {
	ConstraintBase
	Events      []int
	MinDuration int
	MaxDuration int
	MinAmount   int
	MaxAmount   int
}
