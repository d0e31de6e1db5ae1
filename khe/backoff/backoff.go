// Package backoff implements an acceptance policy for repair opportunities.
// Solvers ask the policy whether to try an opportunity and report back
// whether the attempt succeeded. Under exponential backoff, consecutive
// failures make the policy decline an exponentially growing number of
// opportunities before it accepts the next one.
package backoff

import (
	"fmt"
	"math"
)

// Type selects the acceptance policy of a Backoff.
type Type int8

const (
	// None accepts every opportunity.
	None Type = iota

	// Exponential doubles the number of declined opportunities after each
	// failure and resets it after each success.
	Exponential
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Exponential:
		return "exponential"
	default:
		return fmt.Sprintf("Type(%d)", int8(t))
	}
}

// ParseType returns the Type named s ("none" or "exponential").
func ParseType(s string) (Type, error) {
	switch s {
	case "none":
		return None, nil
	case "exponential":
		return Exponential, nil
	default:
		return None, fmt.Errorf("unknown backoff type %q", s)
	}
}

// Stats counts the outcomes recorded by a Backoff.
type Stats struct {
	Successful int
	Failed     int
	Declined   int
}

// Backoff is the state machine behind the acceptance policy. Calls to Accept
// that return true must be followed by exactly one call to Result before the
// next call to Accept.
type Backoff struct {
	typ             Type
	currDeclined    int
	maxDeclined     int
	expectingResult bool
	stats           Stats
}

// New returns a Backoff of the given type, ready to receive opportunities.
func New(typ Type) *Backoff {
	if typ != None && typ != Exponential {
		panic(fmt.Sprintf("backoff.New: invalid type %d", typ))
	}
	return &Backoff{typ: typ}
}

// Type returns the policy of b.
func (b *Backoff) Type() Type {
	return b.typ
}

// Accept reports whether the next opportunity should be taken. When it
// returns true, the caller must report the outcome with Result.
func (b *Backoff) Accept() bool {
	if b.expectingResult {
		panic("Backoff.Accept: previous opportunity has no result")
	}
	if b.typ == Exponential && b.currDeclined < b.maxDeclined {
		b.currDeclined++
		b.stats.Declined++
		return false
	}
	b.currDeclined = 0
	b.expectingResult = true
	return true
}

// Result records the outcome of the opportunity most recently accepted.
func (b *Backoff) Result(success bool) {
	if !b.expectingResult {
		panic("Backoff.Result: no accepted opportunity")
	}
	if success {
		b.stats.Successful++
		b.maxDeclined = 0
	} else {
		b.stats.Failed++
		switch {
		case b.maxDeclined == 0:
			b.maxDeclined = 1
		case b.maxDeclined <= math.MaxInt32/2:
			b.maxDeclined *= 2
		}
	}
	b.expectingResult = false
}

// End checks that no result is pending. The Backoff must not be used after
// End has been called.
func (b *Backoff) End() {
	if b.expectingResult {
		panic("Backoff.End: accepted opportunity has no result")
	}
}

// ShowNextDecision returns "ACCEPT" or "DECLINE" depending on what the next
// call to Accept would return, without changing any state.
func (b *Backoff) ShowNextDecision() string {
	if b.typ == Exponential && b.currDeclined < b.maxDeclined {
		return "DECLINE"
	}
	return "ACCEPT"
}

// Stats returns the number of successful, failed and declined opportunities
// seen so far.
func (b *Backoff) Stats() Stats {
	return b.stats
}

// String returns a brief one-line view of the state, e.g. "[C1M4]". A
// trailing "!" means that a result is pending.
func (b *Backoff) String() string {
	pending := ""
	if b.expectingResult {
		pending = "!"
	}
	if b.typ == None {
		return fmt.Sprintf("[NONE%s]", pending)
	}
	return fmt.Sprintf("[C%dM%d%s]", b.currDeclined, b.maxDeclined, pending)
}
