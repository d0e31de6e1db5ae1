package wheels

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// rolls returns the elements selected by evenly spaced rolls.
func rolls(n int, roll func(float64) int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = roll(float64(i) / float64(n))
	}
	return res
}

func TestStaticWheel_Roll(t *testing.T) {
	testCases := []struct {
		desc    string
		weights []float64
		want    []int // for rolls 0, 0.25, 0.5, 0.75
	}{
		{desc: "all zero", weights: []float64{0, 0, 0}, want: []int{-1, -1, -1, -1}},
		{desc: "single", weights: []float64{2}, want: []int{0, 0, 0, 0}},
		{desc: "uniform", weights: []float64{1, 1, 1, 1}, want: []int{0, 1, 2, 3}},
		{desc: "skewed", weights: []float64{3, 0, 1}, want: []int{2, 0, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			sw := NewStaticWheel(len(tc.weights))
			for i, w := range tc.weights {
				sw.SetWeight(i, w)
			}
			got := rolls(4, sw.Roll)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Roll(): mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStaticWheel_SetWeight(t *testing.T) {
	sw := NewStaticWheel(3)
	sw.SetWeight(0, 1)
	sw.SetWeight(1, 2)
	sw.SetWeight(2, 3)
	sw.SetWeight(1, 0)

	if got, want := sw.Total(), 4.0; got != want {
		t.Errorf("Total(): got %f, want %f", got, want)
	}
	if got, want := sw.Weight(2), 3.0; got != want {
		t.Errorf("Weight(): got %f, want %f", got, want)
	}
	for _, r := range []float64{0, 0.3, 0.6, 0.9} {
		if got := sw.Roll(r); got == 1 {
			t.Errorf("Roll(%f): got element of weight 0", r)
		}
	}
}

func TestRoll_panics(t *testing.T) {
	for _, r := range []float64{-0.1, 1, 2} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Roll(%f): want panic", r)
				}
			}()
			NewStaticWheel(2).Roll(r)
		}()
	}
}

func TestDefectWheel(t *testing.T) {
	dw := NewDefectWheel(2)
	if got := dw.Roll(0.5); got != -1 {
		t.Errorf("Roll() on empty wheel: got %d, want -1", got)
	}

	// Grows past its initial size.
	for _, e := range []int{10, 20, 30, 40, 50} {
		dw.Put(e, int64(e), 1)
	}
	if got, want := dw.Len(), 5; got != want {
		t.Errorf("Len(): got %d, want %d", got, want)
	}
	if diff := cmp.Diff([]int{10, 20, 30, 40, 50}, rolls(5, dw.Roll)); diff != "" {
		t.Errorf("Roll(): mismatch (-want +got):\n%s", diff)
	}

	dw.Remove(20)
	dw.Remove(99)
	dw.Put(30, 7, 2)
	if dw.Contains(20) {
		t.Errorf("Contains(20): got true, want false")
	}
	if got, want := dw.Cost(30), int64(7); got != want {
		t.Errorf("Cost(30): got %d, want %d", got, want)
	}
	if got := dw.Cost(20); got != 0 {
		t.Errorf("Cost(20): got %d, want 0", got)
	}
	// 50 took the place of 20.
	if diff := cmp.Diff([]int{10, 50, 30, 30, 40}, rolls(5, dw.Roll)); diff != "" {
		t.Errorf("Roll() after Remove: mismatch (-want +got):\n%s", diff)
	}

	dw.Clear()
	if got := dw.Roll(0); got != -1 {
		t.Errorf("Roll() after Clear: got %d, want -1", got)
	}
	dw.Put(60, 1, 1)
	if got := dw.Roll(0.9); got != 60 {
		t.Errorf("Roll(): got %d, want 60", got)
	}
}

func TestDefectWheel_growsFromEmpty(t *testing.T) {
	dw := NewDefectWheel(0)
	for e := 0; e < 8; e++ {
		dw.Put(e, int64(100+e), 1)
	}

	if got, want := dw.Len(), 8; got != want {
		t.Errorf("Len(): got %d, want %d", got, want)
	}
	for e := 0; e < 8; e++ {
		if got, want := dw.Cost(e), int64(100+e); got != want {
			t.Errorf("Cost(%d): got %d, want %d", e, got, want)
		}
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4, 5, 6, 7}, rolls(8, dw.Roll)); diff != "" {
		t.Errorf("Roll(): mismatch (-want +got):\n%s", diff)
	}
}
