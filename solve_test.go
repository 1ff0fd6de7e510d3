package xsrecover_test

import (
	"errors"
	"math/rand"

	"github.com/xsrecover/xsrecover"
	"github.com/xsrecover/xsrecover/xorshift"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("solver bridge", func() {
	seed := xorshift.State{S0: 6123107629886474, S1: 17247484357964131183}

	Context("a full window of known outputs", func() {
		It("should recover the seed", func() {
			state, err := xsrecover.Solve(outputs(seed, xsrecover.DefaultWindow))
			Expect(err).ToNot(HaveOccurred())
			Expect(state).To(Equal(seed))
		})

		It("should recover random states uniquely", func() {
			r := rand.New(rand.NewSource(21))

			for i := 0; i < 25; i++ {
				s := xorshift.State{S0: r.Uint64(), S1: r.Uint64()}

				state, err := xsrecover.Solve(outputs(s, xsrecover.DefaultWindow))
				Expect(err).ToNot(HaveOccurred())
				Expect(state).To(Equal(s))
			}
		})

		It("should be deterministic", func() {
			values := outputs(seed, xsrecover.DefaultWindow)

			first, err := xsrecover.Solve(values)
			Expect(err).ToNot(HaveOccurred())
			second, err := xsrecover.Solve(values)
			Expect(err).ToNot(HaveOccurred())
			Expect(first).To(Equal(second))
		})

		It("should accept known samples", func() {
			state, err := xsrecover.SolveSamples(xsrecover.KnownValues(outputs(seed, 6)...))
			Expect(err).ToNot(HaveOccurred())
			Expect(state).To(Equal(seed))
		})
	})

	Context("inconsistent windows", func() {
		It("should fail when any one value is perturbed", func() {
			values := outputs(seed, xsrecover.DefaultWindow)

			for i := range values {
				perturbed := make([]float64, len(values))
				copy(perturbed, values)

				m, ok := xorshift.Mantissa(values[i])
				Expect(ok).To(BeTrue())
				perturbed[i] = xorshift.Decode((m ^ 1) << 12)

				_, err := xsrecover.Solve(perturbed)
				Expect(errors.Is(err, xsrecover.ErrNoSolution)).To(BeTrue())
			}
		})

		It("should fail for values no output decodes to", func() {
			values := outputs(seed, xsrecover.DefaultWindow)
			values[2] = 1e-20

			_, err := xsrecover.Solve(values)
			Expect(errors.Is(err, xsrecover.ErrNoSolution)).To(BeTrue())
		})

		It("should fail for a window that crosses an emission block", func() {
			values := outputs(seed, xsrecover.DefaultWindow)
			values[0], values[4] = values[4], values[0]

			_, err := xsrecover.Solve(values)
			Expect(errors.Is(err, xsrecover.ErrNoSolution)).To(BeTrue())
		})
	})

	Context("short windows", func() {
		It("should report multiple solutions", func() {
			_, err := xsrecover.Solve(outputs(seed, 2))
			Expect(errors.Is(err, xsrecover.ErrMultipleSolutions)).To(BeTrue())
		})
	})

	Context("malformed input", func() {
		It("should reject an empty window", func() {
			_, err := xsrecover.Solve(nil)
			Expect(errors.Is(err, xsrecover.ErrInvalidInput)).To(BeTrue())
		})

		It("should reject values outside [0, 1)", func() {
			for _, v := range []float64{-0.25, 1, 2} {
				values := outputs(seed, xsrecover.DefaultWindow)
				values[1] = v

				_, err := xsrecover.Solve(values)
				Expect(errors.Is(err, xsrecover.ErrInvalidInput)).To(BeTrue())
			}
		})

		It("should reject windows with gaps", func() {
			window := xsrecover.KnownValues(outputs(seed, xsrecover.DefaultWindow)...)
			window[3] = xsrecover.Unknown("gap")

			_, err := xsrecover.SolveSamples(window)
			Expect(errors.Is(err, xsrecover.ErrInvalidInput)).To(BeTrue())
		})
	})
})
