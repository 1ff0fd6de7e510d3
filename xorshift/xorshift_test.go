package xorshift_test

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/xsrecover/xsrecover/xorshift"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("xorshift", func() {
	trials := 1000

	Context("transitions", func() {
		It("backward should invert forward", func() {
			r := rand.New(rand.NewSource(1))

			for i := 0; i < trials; i++ {
				s := randomState(r)

				next, _ := xorshift.Forward(s)
				Expect(xorshift.Backward(next)).To(Equal(s))
				Expect(xorshift.Step(xorshift.Backward(s))).To(Equal(s))
			}
		})

		It("should invert states with extreme bit patterns", func() {
			for _, s := range []xorshift.State{
				{S0: 0, S1: 0},
				{S0: math.MaxUint64, S1: math.MaxUint64},
				{S0: 1, S1: 0},
				{S0: 0, S1: 1 << 63},
				{S0: 0xAAAAAAAAAAAAAAAA, S1: 0x5555555555555555},
			} {
				Expect(xorshift.Backward(xorshift.Step(s))).To(Equal(s))
				Expect(xorshift.Step(xorshift.Backward(s))).To(Equal(s))
			}
		})

		It("should return to the original state after a block forward and back", func() {
			s := xorshift.State{S0: 6123107629886474, S1: 17247484357964131183}

			forward := s
			for i := 0; i < 64; i++ {
				forward = xorshift.Step(forward)
			}
			Expect(forward).NotTo(Equal(s))

			back := forward
			for i := 0; i < 64; i++ {
				back = xorshift.Backward(back)
			}
			Expect(back).To(Equal(s))

			Expect(xorshift.Advance(s, 64)).To(Equal(forward))
			Expect(xorshift.Advance(forward, -64)).To(Equal(s))
			Expect(xorshift.Advance(s, 0)).To(Equal(s))
		})

		It("should shift the state words along", func() {
			s := xorshift.State{S0: 6123107629886474, S1: 17247484357964131183}

			next, out := xorshift.Forward(s)
			Expect(next.S0).To(Equal(s.S1))
			Expect(out).To(Equal(xorshift.Decode(next.S1)))
		})
	})

	Context("decoding", func() {
		It("should always produce values in [0, 1)", func() {
			r := rand.New(rand.NewSource(2))

			for i := 0; i < trials; i++ {
				v := xorshift.Decode(r.Uint64())
				Expect(v >= 0 && v < 1).To(BeTrue())
			}

			Expect(xorshift.Decode(0)).To(Equal(0.0))
			Expect(xorshift.Decode(math.MaxUint64)).To(Equal(1 - math.Pow(2, -52)))
		})

		It("should ignore the low twelve bits", func() {
			Expect(xorshift.Decode(0xFFF)).To(Equal(0.0))
			Expect(xorshift.Decode(1 << 63)).To(Equal(0.5))
			Expect(xorshift.Decode(1<<63 | 0xABC)).To(Equal(0.5))
		})

		It("should recover the mantissa of decoded values", func() {
			r := rand.New(rand.NewSource(3))

			for i := 0; i < trials; i++ {
				word := r.Uint64()

				m, ok := xorshift.Mantissa(xorshift.Decode(word))
				Expect(ok).To(BeTrue())
				Expect(m).To(Equal(word >> 12))
			}
		})

		It("should reject values no word decodes to", func() {
			for _, v := range []float64{-0.5, 1, 1.5, math.NaN(), math.Inf(1), 1e-300, 0.1} {
				_, ok := xorshift.Mantissa(v)
				Expect(ok).To(BeFalse())
			}
		})
	})

	Context("streaming", func() {
		It("should agree with the transition function", func() {
			seed := make([]byte, 16)
			binary.LittleEndian.PutUint64(seed, 6123107629886474)
			binary.LittleEndian.PutUint64(seed[8:], 17247484357964131183)

			rng := xorshift.Rng{}
			rng.Seed(seed)
			Expect(rng.State()).To(Equal(xorshift.State{S0: 6123107629886474, S1: 17247484357964131183}))

			s := rng.State()
			for i := 0; i < 100; i++ {
				var v float64
				s, v = xorshift.Forward(s)
				Expect(rng.Float64()).To(Equal(v))
			}
			Expect(rng.State()).To(Equal(s))
		})
	})
})

func randomState(r *rand.Rand) xorshift.State {
	return xorshift.State{S0: r.Uint64(), S1: r.Uint64()}
}
