// Package xsrecover recovers the state of a 128-bit xorshift-plus generator
// from its decoded floating point outputs, locates the recovered state against
// an anchored run of observations, and serves the decoded output sequence
// around that anchor.
package xsrecover

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSolution means no state or alignment is consistent with the
	// observations. Retrying with a different window or anchor may help.
	ErrNoSolution = errors.New("no solution")

	// ErrMultipleSolutions means the probe window is too short to pin down a
	// single state.
	ErrMultipleSolutions = errors.New("multiple solutions")

	// ErrInvalidInput means a malformed request was rejected before any
	// solving was attempted.
	ErrInvalidInput = errors.New("invalid input")
)

const (
	DefaultWindow       = 5
	DefaultBlockSize    = 64
	DefaultClampFloor   = 0.001
	DefaultClampCeiling = 0.999
)

// Params are the knobs that differ between deployments of the generator.
type Params struct {
	// Window is the number of consecutive known values handed to the solver.
	Window int

	// BlockSize is the number of raw transitions the generator performs per
	// batch. Values within a batch are emitted in reverse order.
	BlockSize int

	// SearchBound is how many emitted values past a trial block boundary are
	// searched for the anchor.
	SearchBound int

	// Observed values equal to ClampFloor or ClampCeiling were produced by a
	// clamp downstream of the generator and are accepted without comparison.
	ClampFloor   float64
	ClampCeiling float64
}

// DefaultParams returns the parameters of the reference deployment.
func DefaultParams() Params {
	return Params{
		Window:       DefaultWindow,
		BlockSize:    DefaultBlockSize,
		SearchBound:  2 * DefaultBlockSize,
		ClampFloor:   DefaultClampFloor,
		ClampCeiling: DefaultClampCeiling,
	}
}

// Validate checks that the parameters describe a usable configuration.
func (p Params) Validate() error {
	if p.Window < 1 {
		return fmt.Errorf("%w: window size %v must be positive", ErrInvalidInput, p.Window)
	}
	if p.BlockSize < 1 {
		return fmt.Errorf("%w: block size %v must be positive", ErrInvalidInput, p.BlockSize)
	}
	if p.Window > p.BlockSize {
		return fmt.Errorf("%w: window size %v exceeds block size %v", ErrInvalidInput, p.Window, p.BlockSize)
	}
	if p.SearchBound < 1 {
		return fmt.Errorf("%w: search bound %v must be positive", ErrInvalidInput, p.SearchBound)
	}

	return nil
}

func (p Params) clamped(v float64) bool {
	return v == p.ClampFloor || v == p.ClampCeiling
}

// Sample is one observed output of the generator. An unknown sample marks a
// position whose value was not observed; it is never treated as a mismatch.
type Sample struct {
	Value float64
	Known bool
	Label string
}

// Known returns a sample with an observed value.
func Known(v float64, label string) Sample {
	return Sample{Value: v, Known: true, Label: label}
}

// Unknown returns a placeholder for a position whose value was not observed.
func Unknown(label string) Sample {
	return Sample{Label: label}
}

func KnownValues(vs ...float64) []Sample {
	samples := make([]Sample, len(vs))
	for i, v := range vs {
		samples[i] = Known(v, "")
	}

	return samples
}
