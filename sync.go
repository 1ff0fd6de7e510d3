package xsrecover

import (
	"fmt"

	"github.com/xsrecover/xsrecover/xorshift"
)

// Candidate is a proposed position of an anchor: the recovered state, the
// number of raw transitions separating it from the preceding block boundary,
// and the emitted position of the anchor counted from that boundary.
type Candidate struct {
	State     xorshift.State
	Alignment int
	Offset    int
}

// Base returns the state at the block boundary the candidate assumes.
func (c Candidate) Base() xorshift.State {
	return xorshift.Advance(c.State, -c.Alignment)
}

// Result is the outcome of a synchronization. When Synced is true there is
// exactly one candidate and its absolute position is trustworthy. Otherwise
// the candidates agree on relative structure but not on where the anchor is;
// differences between positions of a single candidate can still be relied on.
type Result struct {
	Candidates []Candidate
	Synced     bool
}

// Unique returns the candidate of a synced result.
func (r Result) Unique() (Candidate, bool) {
	if !r.Synced || len(r.Candidates) != 1 {
		return Candidate{}, false
	}

	return r.Candidates[0], true
}

// Synchronize finds every alignment of a recovered state against which the
// observed run validates. The state is treated as lying within a block, at an
// unknown distance from its start. For each trial alignment the anchor value
// is searched for in the first SearchBound emitted values, and run[i] is then
// compared against the value emitted i positions after it. Unknown samples and
// clamped values always match, so the anchor itself must not be clamped.
//
// The error is ErrNoSolution when no alignment validates. More than one
// validating alignment is not an error; the result is then not synced.
func Synchronize(p Params, state xorshift.State, anchor float64, run []Sample) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if !(anchor >= 0 && anchor < 1) {
		return Result{}, fmt.Errorf("%w: anchor %v is outside [0, 1)", ErrInvalidInput, anchor)
	}
	if p.clamped(anchor) {
		return Result{}, fmt.Errorf("%w: anchor %v is a clamp value", ErrInvalidInput, anchor)
	}
	for i, s := range run {
		if s.Known && !p.clamped(s.Value) && !(s.Value >= 0 && s.Value < 1) {
			return Result{}, fmt.Errorf("%w: sample %v (%v) is outside [0, 1)", ErrInvalidInput, s.Value, i)
		}
	}

	var candidates []Candidate

	base := state
	for k := 0; k < p.BlockSize; k++ {
		if k > 0 {
			base = xorshift.Backward(base)
		}

		cur := newCursor(base, 0, p.BlockSize)

		pos, ok := cur.Find(anchor, 0, p.SearchBound)
		if !ok {
			continue
		}

		if !p.validates(cur, pos, run) {
			continue
		}

		candidates = append(candidates, Candidate{State: state, Alignment: k, Offset: pos})
	}

	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("%w: no alignment within %v validates %v samples", ErrNoSolution, p.BlockSize, len(run))
	}

	return Result{Candidates: candidates, Synced: len(candidates) == 1}, nil
}

func (p Params) validates(cur *Cursor, pos int, run []Sample) bool {
	for i, s := range run {
		if !s.Known || p.clamped(s.Value) {
			continue
		}

		if cur.Get(pos+i) != s.Value {
			return false
		}
	}

	return true
}
