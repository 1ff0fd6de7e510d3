// Package gf2 is a small decision procedure for systems of affine equations
// over GF(2) in up to 128 unknowns. Symbolic 64-bit words built from shifts and
// xors of the unknowns are exact in this representation, which makes it a
// complete solver for replaying shift/xor generators symbolically.
//
// It is only complete for affine constraints. Outputs that add words with
// carries, like s0+s1 or the xoroshiro++ scramblers, cannot be expressed here.
package gf2

import "math/bits"

// NumVars is the number of unknowns a Form can refer to.
const NumVars = 128

// Assignment gives a value to every unknown: unknown i is bit i%64 of word
// i/64.
type Assignment [2]uint64

// Form is an affine form: the xor of the unknowns selected by Mask, xored with
// Const.
type Form struct {
	Mask  [2]uint64
	Const bool
}

func (f Form) Xor(g Form) Form {
	return Form{
		Mask:  [2]uint64{f.Mask[0] ^ g.Mask[0], f.Mask[1] ^ g.Mask[1]},
		Const: f.Const != g.Const,
	}
}

// IsConst is true when the form does not depend on any unknown.
func (f Form) IsConst() bool {
	return f.Mask[0] == 0 && f.Mask[1] == 0
}

// Eval computes the value of the form under x.
func (f Form) Eval(x Assignment) bool {
	n := bits.OnesCount64(f.Mask[0]&x[0]) + bits.OnesCount64(f.Mask[1]&x[1])
	return (n&1 == 1) != f.Const
}

// Word is a symbolic 64-bit word; element i is bit i.
type Word [64]Form

// Var returns the word whose bits are the unknowns 64*index ... 64*index+63.
// Index must be 0 or 1.
func Var(index int) Word {
	var w Word
	for i := range w {
		w[i].Mask[index] = 1 << uint(i)
	}

	return w
}

// Const returns the word with the constant value v.
func Const(v uint64) Word {
	var w Word
	for i := range w {
		w[i].Const = v>>uint(i)&1 == 1
	}

	return w
}

func (w Word) Xor(v Word) Word {
	var out Word
	for i := range out {
		out[i] = w[i].Xor(v[i])
	}

	return out
}

func (w Word) Shl(n uint) Word {
	var out Word
	for i := int(n); i < 64; i++ {
		out[i] = w[i-int(n)]
	}

	return out
}

func (w Word) Shr(n uint) Word {
	var out Word
	for i := 0; i+int(n) < 64; i++ {
		out[i] = w[i+int(n)]
	}

	return out
}

func (w Word) Eval(x Assignment) uint64 {
	var v uint64
	for i := range w {
		if w[i].Eval(x) {
			v |= 1 << uint(i)
		}
	}

	return v
}
