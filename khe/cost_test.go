package khe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewCost(t *testing.T) {
	testCases := []struct {
		desc     string
		hard     int
		soft     int
		wantShow string
	}{
		{desc: "zero", hard: 0, soft: 0, wantShow: "0.00000"},
		{desc: "hard only", hard: 3, soft: 0, wantShow: "3.00000"},
		{desc: "soft only", hard: 0, soft: 25, wantShow: "0.00025"},
		{desc: "both", hard: 2, soft: 1500, wantShow: "2.01500"},
		{desc: "capped soft", hard: 1, soft: 250000, wantShow: "1.99999"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			c := NewCost(tc.hard, tc.soft)
			if got := c.Hard(); got != tc.hard {
				t.Errorf("Hard(): got %d, want %d", got, tc.hard)
			}
			if got := c.Soft(); got != tc.soft {
				t.Errorf("Soft(): got %d, want %d", got, tc.soft)
			}
			if got := c.String(); got != tc.wantShow {
				t.Errorf("String(): got %q, want %q", got, tc.wantShow)
			}
		})
	}
}

func TestCompareCost(t *testing.T) {
	testCases := []struct {
		desc string
		a, b Cost
		want int
	}{
		{desc: "equal", a: NewCost(1, 1), b: NewCost(1, 1), want: 0},
		{desc: "hard dominates", a: NewCost(0, 1000000), b: NewCost(1, 0), want: -1},
		{desc: "soft breaks ties", a: NewCost(2, 5), b: NewCost(2, 4), want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := CompareCost(tc.a, tc.b); got != tc.want {
				t.Errorf("CompareCost(): got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCostFunction_Apply(t *testing.T) {
	w := NewCost(0, 3)
	testCases := []struct {
		desc string
		f    CostFunction
		want []Cost // for deviations 0 to 3
	}{
		{desc: "step", f: Step, want: []Cost{0, w, w, w}},
		{desc: "linear", f: Linear, want: []Cost{0, w, 2 * w, 3 * w}},
		{desc: "quadratic", f: Quadratic, want: []Cost{0, w, 4 * w, 9 * w}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := []Cost{}
			for dev := 0; dev <= 3; dev++ {
				got = append(got, tc.f.Apply(w, dev))
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Apply(): mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCostFunction(t *testing.T) {
	testCases := []struct {
		s       string
		want    CostFunction
		wantErr bool
	}{
		{s: "", want: Linear},
		{s: "step", want: Step},
		{s: "linear", want: Linear},
		{s: "quadratic", want: Quadratic},
		{s: "cubic", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.s, func(t *testing.T) {
			got, err := ParseCostFunction(tc.s)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCostFunction(): got error %v, want error %t", err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("ParseCostFunction(): got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestConstraintBase_CombinedWeight(t *testing.T) {
	hard := ConstraintBase{Required: true, Weight: 2, Function: Quadratic}
	soft := ConstraintBase{Required: false, Weight: 2, Function: Quadratic}

	if got, want := hard.Cost(3), NewCost(18, 0); got != want {
		t.Errorf("Cost(): got %s, want %s", got, want)
	}
	if got, want := soft.Cost(3), NewCost(0, 18); got != want {
		t.Errorf("Cost(): got %s, want %s", got, want)
	}
}
