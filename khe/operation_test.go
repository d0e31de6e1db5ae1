package khe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOperation_Inverse(t *testing.T) {
	for typ := OpMeetAdd; typ <= OpTaskSetDomain; typ++ {
		op := Operation{Type: typ, OldDomain: []int{1}, NewDomain: []int{2}}
		got := op.Inverse().Inverse()
		if diff := cmp.Diff(op, got); diff != "" {
			t.Errorf("%s: Inverse().Inverse(): mismatch (-want +got):\n%s", typ, diff)
		}
	}
}

func TestOperation_String(t *testing.T) {
	s := newSchoolSoln(t, Config{})
	m := eventMeet(s, maths, 0)
	task := m.Task(0)

	testCases := []struct {
		op   Operation
		want string
	}{
		{op: Operation{Type: OpMeetAdd, Meet: m}, want: "MeetAdd(Maths)"},
		{op: Operation{Type: OpMeetAssign, Meet: m, Time: 2}, want: "MeetAssign(Maths, 2)"},
		{op: Operation{Type: OpMeetSplit, Meet: m, Duration: 1}, want: "MeetSplit(Maths, 1)"},
		{op: Operation{Type: OpTaskAdd, Meet: m, Task: task}, want: "TaskAdd(Maths/0)"},
		{op: Operation{Type: OpTaskUnassign, Task: task, Resource: smith}, want: "TaskUnassign(Maths/0, 0)"},
		{op: Operation{Type: OpTaskSetDomain, Task: task, NewDomain: []int{1}}, want: "TaskSetDomain(Maths/0, [1])"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.op.String(); got != tc.want {
				t.Errorf("String(): got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTask_SetDomain(t *testing.T) {
	s := newSchoolSoln(t, Config{Matching: true})
	mark := s.MarkBegin()
	task := eventMeet(s, english, 0).Task(0)

	if !task.SetDomain([]int{jones}) {
		t.Fatalf("SetDomain(): got false, want true")
	}
	if task.AssignResource(smith) {
		t.Errorf("AssignResource(): resource outside the domain was accepted")
	}
	if !task.AssignResource(jones) {
		t.Errorf("AssignResource(): got false, want true")
	}

	mark.End(true)
	if diff := cmp.Diff([]int{smith, jones}, task.Domain()); diff != "" {
		t.Errorf("Domain() after undo: mismatch (-want +got):\n%s", diff)
	}
	if task.Assigned() {
		t.Errorf("Assigned() after undo: got true, want false")
	}
}
