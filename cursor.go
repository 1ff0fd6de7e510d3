package xsrecover

import "github.com/xsrecover/xsrecover/xorshift"

// Cursor gives indexed access, in both directions, to the decoded values
// emitted around an anchor. The emitted sequence is cut into blocks of raw
// transitions; each block is generated in one pass, emitted in reverse, and
// cached. Since the sequence is a pure function of the state the cache is
// never invalidated.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	blockSize int

	// Emitted position of logical index 0 relative to the start of block 0.
	anchor int

	bases  map[int]xorshift.State
	blocks map[int][]float64
}

// NewCursor returns a cursor whose logical index 0 is the anchor of c.
func NewCursor(p Params, c Candidate) *Cursor {
	return newCursor(c.Base(), c.Offset, p.BlockSize)
}

func newCursor(base xorshift.State, anchor, blockSize int) *Cursor {
	return &Cursor{
		blockSize: blockSize,
		anchor:    anchor,
		bases:     map[int]xorshift.State{0: base},
		blocks:    map[int][]float64{},
	}
}

// Get returns the value i positions after the anchor, or -i positions before
// it when i is negative.
func (cur *Cursor) Get(i int) float64 {
	block, j := floorDivMod(cur.anchor+i, cur.blockSize)
	return cur.block(block)[j]
}

// Slice returns the values at logical indices [from, to).
func (cur *Cursor) Slice(from, to int) []float64 {
	if to <= from {
		return nil
	}

	vs := make([]float64, 0, to-from)
	for i := from; i < to; i++ {
		vs = append(vs, cur.Get(i))
	}

	return vs
}

// Find returns the first logical index in [from, to) holding v.
func (cur *Cursor) Find(v float64, from, to int) (int, bool) {
	for i := from; i < to; i++ {
		if cur.Get(i) == v {
			return i, true
		}
	}

	return 0, false
}

// Cached returns the number of generated blocks held by the cursor.
func (cur *Cursor) Cached() int {
	return len(cur.blocks)
}

func (cur *Cursor) block(n int) []float64 {
	if vs, ok := cur.blocks[n]; ok {
		return vs
	}

	s := cur.base(n)
	vs := make([]float64, cur.blockSize)
	for j := cur.blockSize - 1; j >= 0; j-- {
		s, vs[j] = xorshift.Forward(s)
	}

	cur.blocks[n] = vs
	cur.bases[n+1] = s

	return vs
}

// base returns the state at the start of block n, repositioning from the
// closest block whose start is already known.
func (cur *Cursor) base(n int) xorshift.State {
	if s, ok := cur.bases[n]; ok {
		return s
	}

	nearest, dist := 0, -1
	for k := range cur.bases {
		d := k - n
		if d < 0 {
			d = -d
		}
		if dist < 0 || d < dist || (d == dist && k < nearest) {
			nearest, dist = k, d
		}
	}

	s := xorshift.Advance(cur.bases[nearest], (n-nearest)*cur.blockSize)
	cur.bases[n] = s

	return s
}

func floorDivMod(a, b int) (int, int) {
	q, r := a/b, a%b
	if r < 0 {
		q--
		r += b
	}

	return q, r
}
