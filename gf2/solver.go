package gf2

import "math/bits"

// Literal names an activation literal. A constraint guarded by a literal only
// takes part in a Check that assumes it.
type Literal int

// Always guards constraints that take part in every Check.
const Always Literal = 0

// Status is the outcome of a Check.
type Status int

const (
	Unsat Status = iota
	Sat
)

func (s Status) String() string {
	if s == Sat {
		return "sat"
	}
	return "unsat"
}

type constraint struct {
	act   Literal
	form  Form
	value bool
}

// Solver collects guarded equality constraints and blocked assignments, and
// decides satisfiability under a set of assumed activation literals. Adding
// constraints never invalidates earlier ones, so there is no push or pop: a
// group of constraints is switched off by not assuming its literal.
//
// A Solver is not safe for concurrent use.
type Solver struct {
	constraints []constraint
	blocked     map[Assignment]struct{}
	literals    Literal

	model    Assignment
	hasModel bool
}

func NewSolver() *Solver {
	return &Solver{blocked: map[Assignment]struct{}{}}
}

// NewLiteral returns a fresh activation literal.
func (s *Solver) NewLiteral() Literal {
	s.literals++
	return s.literals
}

// AssertEqual adds the constraint act => (f == v).
func (s *Solver) AssertEqual(act Literal, f Form, v bool) {
	s.constraints = append(s.constraints, constraint{act: act, form: f, value: v})
}

// AssertBits adds act => (bit lo+i of w == bit i of v) for i in [0, n).
func (s *Solver) AssertBits(act Literal, w Word, lo, n int, v uint64) {
	for i := 0; i < n; i++ {
		s.AssertEqual(act, w[lo+i], v>>uint(i)&1 == 1)
	}
}

// Block excludes the assignment x from every future model.
func (s *Solver) Block(x Assignment) {
	s.blocked[x] = struct{}{}
}

// Check decides whether some assignment that is not blocked satisfies every
// unguarded constraint and every constraint guarded by one of the assumptions.
// On Sat the assignment is available from Model.
func (s *Solver) Check(assumptions ...Literal) Status {
	s.hasModel = false

	active := make(map[Literal]bool, len(assumptions)+1)
	active[Always] = true
	for _, lit := range assumptions {
		active[lit] = true
	}

	var sys echelon
	for _, c := range s.constraints {
		if !active[c.act] {
			continue
		}
		if !sys.add(c.form.Mask, c.value != c.form.Const) {
			return Unsat
		}
	}

	x, ok := sys.pick(s.blocked)
	if !ok {
		return Unsat
	}

	s.model = x
	s.hasModel = true

	return Sat
}

// Model returns the assignment found by the last Check. The second return
// value is false if the last Check was not Sat.
func (s *Solver) Model() (Assignment, bool) {
	return s.model, s.hasModel
}

type row struct {
	mask [2]uint64
	rhs  bool
}

// The row stored at pivot v has v as its lowest unknown.
type echelon struct {
	rows [NumVars]row
	used [NumVars]bool
}

func lowest(mask [2]uint64) int {
	if mask[0] != 0 {
		return bits.TrailingZeros64(mask[0])
	}
	return 64 + bits.TrailingZeros64(mask[1])
}

// add reduces the equation against the existing rows. It returns false if the
// equation contradicts them.
func (e *echelon) add(mask [2]uint64, rhs bool) bool {
	for {
		if mask[0] == 0 && mask[1] == 0 {
			return !rhs
		}

		v := lowest(mask)
		if !e.used[v] {
			e.rows[v] = row{mask: mask, rhs: rhs}
			e.used[v] = true
			return true
		}

		mask[0] ^= e.rows[v].mask[0]
		mask[1] ^= e.rows[v].mask[1]
		rhs = rhs != e.rows[v].rhs
	}
}

func (e *echelon) free() []int {
	var vars []int
	for v := 0; v < NumVars; v++ {
		if !e.used[v] {
			vars = append(vars, v)
		}
	}

	return vars
}

// solve back-substitutes from the highest unknown down, giving free unknowns
// the values in choice.
func (e *echelon) solve(choice map[int]bool) Assignment {
	var x Assignment
	for v := NumVars - 1; v >= 0; v-- {
		var bit bool
		if e.used[v] {
			r := e.rows[v]
			n := bits.OnesCount64(r.mask[0]&x[0]) + bits.OnesCount64(r.mask[1]&x[1])
			bit = (n&1 == 1) != r.rhs
		} else {
			bit = choice[v]
		}

		if bit {
			x[v/64] |= 1 << uint(v%64)
		}
	}

	return x
}

// pick returns a solution that is not blocked. Distinct choices for the free
// unknowns give distinct solutions, so at most len(blocked)+1 of them need to
// be tried.
func (e *echelon) pick(blocked map[Assignment]struct{}) (Assignment, bool) {
	free := e.free()

	limit := uint64(len(blocked)) + 1
	if len(free) < 63 && uint64(1)<<uint(len(free)) < limit {
		limit = uint64(1) << uint(len(free))
	}

	choice := make(map[int]bool, len(free))
	for t := uint64(0); t < limit; t++ {
		for i, v := range free {
			if i >= 64 {
				break
			}
			choice[v] = t>>uint(i)&1 == 1
		}

		x := e.solve(choice)
		if _, ok := blocked[x]; !ok {
			return x, true
		}
	}

	return Assignment{}, false
}
