// Package xorshift implements the 128-bit xorshift-plus transition used by the
// observed generator, its inverse, and the decoding of raw words into the
// floating point values that the outside world sees.
package xorshift

import (
	"encoding/binary"
	"math"
)

// Shift amounts of the transition, in the order they are applied.
const (
	ShiftA = 23
	ShiftB = 17
	ShiftC = 26
)

const (
	// MantissaBits is the number of bits of a raw word that survive decoding.
	MantissaBits = 52
	MantissaMask = uint64(1)<<MantissaBits - 1

	discardBits = 64 - MantissaBits

	exponentOne = uint64(0x3FF0000000000000)
)

// State is the entire state of the generator. It is a value type; every
// transition produces a new State.
type State struct {
	S0, S1 uint64
}

// Forward applies one transition and returns the new state together with the
// decoded output of that transition.
func Forward(s State) (State, float64) {
	next := Step(s)
	return next, Decode(next.S1)
}

func Step(s State) State {
	x, y := s.S0, s.S1

	x ^= x << ShiftA
	x ^= x >> ShiftB
	x ^= y
	x ^= y >> ShiftC

	return State{S0: y, S1: x}
}

// Backward is the inverse of Step.
func Backward(s State) State {
	y := s.S0

	x := s.S1
	x ^= y >> ShiftC
	x ^= y
	x = unxorshr(x, ShiftB)
	x = unxorshl(x, ShiftA)

	return State{S0: x, S1: y}
}

// Advance moves the state n raw transitions forward, or -n transitions
// backward when n is negative.
func Advance(s State, n int) State {
	for ; n > 0; n-- {
		s = Step(s)
	}
	for ; n < 0; n++ {
		s = Backward(s)
	}

	return s
}

// Undo x ^= x >> k and x ^= x << k.
func unxorshr(y uint64, k uint) uint64 {
	x := y
	for i := k; i < 64; i += k {
		x = y ^ (x >> k)
	}

	return x
}

func unxorshl(y uint64, k uint) uint64 {
	x := y
	for i := k; i < 64; i += k {
		x = y ^ (x << k)
	}

	return x
}

// Decode maps a raw word to a value in [0, 1) by installing its top 52 bits as
// the mantissa of a double in [1, 2) and subtracting one.
func Decode(word uint64) float64 {
	return math.Float64frombits(word>>discardBits|exponentOne) - 1
}

// Mantissa returns the 52 bit pattern that Decode would have read from the top
// of a raw word to produce v. The second return value is false when no word
// decodes to v, which is the case for anything outside [0, 1) and for values
// that are not multiples of 2^-52.
func Mantissa(v float64) (uint64, bool) {
	if !(v >= 0 && v < 1) {
		return 0, false
	}

	m := math.Float64bits(v+1) & MantissaMask
	if Decode(m<<discardBits) != v {
		return 0, false
	}

	return m, true
}

// Rng is a streaming view over the transition function.
type Rng struct {
	state State
}

// NewRng returns a generator positioned at the given state.
func NewRng(s State) *Rng {
	return &Rng{state: s}
}

// Seed sets the state from the first 16 bytes of seed, read as two little
// endian words.
func (rng *Rng) Seed(seed []byte) {
	rng.state.S0 = binary.LittleEndian.Uint64(seed)
	rng.state.S1 = binary.LittleEndian.Uint64(seed[8:])
}

func (rng *Rng) State() State {
	return rng.state
}

// Uint64 advances the generator and returns the raw word it produced.
func (rng *Rng) Uint64() uint64 {
	rng.state = Step(rng.state)
	return rng.state.S1
}

func (rng *Rng) Float64() float64 {
	return Decode(rng.Uint64())
}
