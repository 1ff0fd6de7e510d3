package xsrecover_test

import (
	"math/rand"

	"github.com/xsrecover/xsrecover"
	"github.com/xsrecover/xsrecover/xorshift"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("stream cursor", func() {
	params := xsrecover.DefaultParams()
	bs := params.BlockSize

	base := xorshift.State{S0: 6123107629886474, S1: 17247484357964131183}
	candidate := xsrecover.Candidate{State: xorshift.Advance(base, 17), Alignment: 17, Offset: 5}

	// Two blocks before the base followed by four blocks from it.
	stream := emitted(xorshift.Advance(base, -2*bs), 6, bs)
	at := func(i int) float64 { return stream[2*bs+5+i] }

	It("should serve values after the anchor", func() {
		cur := xsrecover.NewCursor(params, candidate)

		for i := 0; i < 4*bs-5; i++ {
			Expect(cur.Get(i)).To(Equal(at(i)))
		}
	})

	It("should serve values before the anchor", func() {
		cur := xsrecover.NewCursor(params, candidate)

		for i := -1; i >= -(2*bs + 5); i-- {
			Expect(cur.Get(i)).To(Equal(at(i)))
		}
	})

	It("should return identical values in any access order", func() {
		first := xsrecover.NewCursor(params, candidate)
		second := xsrecover.NewCursor(params, candidate)

		indices := make([]int, 0, 6*bs)
		for i := -(2*bs + 5); i < 4*bs-5; i++ {
			indices = append(indices, i)
		}

		ascending := make(map[int]float64, len(indices))
		for _, i := range indices {
			ascending[i] = first.Get(i)
		}

		r := rand.New(rand.NewSource(41))
		r.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		for _, i := range indices {
			Expect(second.Get(i)).To(Equal(ascending[i]))
		}

		// Warm caches must agree with themselves too.
		for _, i := range indices {
			Expect(first.Get(i)).To(Equal(second.Get(i)))
		}
	})

	It("should generate each block once", func() {
		cur := xsrecover.NewCursor(params, candidate)
		Expect(cur.Cached()).To(Equal(0))

		cur.Get(0)
		cur.Get(1)
		cur.Get(bs - 6)
		Expect(cur.Cached()).To(Equal(1))

		cur.Get(bs - 5)
		Expect(cur.Cached()).To(Equal(2))

		cur.Get(-6)
		Expect(cur.Cached()).To(Equal(3))

		cur.Get(-5)
		Expect(cur.Cached()).To(Equal(3))
	})

	It("should reposition between distant blocks", func() {
		cur := xsrecover.NewCursor(params, xsrecover.Candidate{State: base})
		near := cur.Get(0)

		far := xsrecover.NewCursor(params, xsrecover.Candidate{State: base})
		far.Get(64 * bs)
		far.Get(-64 * bs)
		Expect(far.Get(0)).To(Equal(near))
		Expect(far.Get(bs)).To(Equal(cur.Get(bs)))
	})

	It("should slice and find", func() {
		cur := xsrecover.NewCursor(params, candidate)

		Expect(cur.Slice(-3, 70)).To(Equal(stream[2*bs+2 : 2*bs+75]))
		Expect(cur.Slice(5, 5)).To(BeEmpty())

		i, ok := cur.Find(at(42), -10, 100)
		Expect(ok).To(BeTrue())
		Expect(i).To(Equal(42))

		_, ok = cur.Find(at(42), 43, 60)
		Expect(ok).To(BeFalse())
	})
})
