package xsrecover

import (
	"fmt"

	"github.com/xsrecover/xsrecover/gf2"
	"github.com/xsrecover/xsrecover/xorshift"
)

// Solve recovers the unique state that, stepped forward once per value,
// produces exactly the given decoded values in order. The returned state is
// the one preceding the first value.
//
// The error is ErrInvalidInput for an empty window or a value outside [0, 1),
// ErrNoSolution if the values are inconsistent with the generator and
// ErrMultipleSolutions if the window does not determine the state.
func Solve(values []float64) (xorshift.State, error) {
	if len(values) == 0 {
		return xorshift.State{}, fmt.Errorf("%w: empty probe window", ErrInvalidInput)
	}

	mantissas := make([]uint64, len(values))
	for i, v := range values {
		if !(v >= 0 && v < 1) {
			return xorshift.State{}, fmt.Errorf("%w: value %v at %v is outside [0, 1)", ErrInvalidInput, v, i)
		}

		m, ok := xorshift.Mantissa(v)
		if !ok {
			// Nothing the generator emits decodes to v.
			return xorshift.State{}, fmt.Errorf("%w: value %v at %v is not a generator output", ErrNoSolution, v, i)
		}
		mantissas[i] = m
	}

	solver := gf2.NewSolver()

	x, y := gf2.Var(0), gf2.Var(1)
	acts := make([]gf2.Literal, len(values))
	for i, m := range mantissas {
		x, y = y, symbolicStep(x, y)

		acts[i] = solver.NewLiteral()
		solver.AssertBits(acts[i], y, 64-xorshift.MantissaBits, xorshift.MantissaBits, m)
	}

	if solver.Check(acts...) != gf2.Sat {
		return xorshift.State{}, fmt.Errorf("%w: %v values are inconsistent with the generator", ErrNoSolution, len(values))
	}

	model, _ := solver.Model()
	solver.Block(model)

	if solver.Check(acts...) == gf2.Sat {
		return xorshift.State{}, fmt.Errorf("%w: %v values do not determine the state", ErrMultipleSolutions, len(values))
	}

	return xorshift.State{S0: model[0], S1: model[1]}, nil
}

// SolveSamples is Solve for a window of samples, all of which must be known.
func SolveSamples(window []Sample) (xorshift.State, error) {
	values := make([]float64, len(window))
	for i, s := range window {
		if !s.Known {
			return xorshift.State{}, fmt.Errorf("%w: probe window has a gap at %v", ErrInvalidInput, i)
		}
		values[i] = s.Value
	}

	return Solve(values)
}

// symbolicStep mirrors xorshift.Step and returns the new second word.
func symbolicStep(x, y gf2.Word) gf2.Word {
	x = x.Xor(x.Shl(xorshift.ShiftA))
	x = x.Xor(x.Shr(xorshift.ShiftB))
	x = x.Xor(y)
	x = x.Xor(y.Shr(xorshift.ShiftC))

	return x
}
