package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/profile"

	"github.com/xsrecover/xsrecover"
	"github.com/xsrecover/xsrecover/recovery"
	"github.com/xsrecover/xsrecover/xorshift"
)

func main() {
	defer profile.Start().Stop()

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	n := 200
	runLen := 150
	blocks := 6

	params := xsrecover.DefaultParams()
	rcv, err := recovery.New(recovery.Config{Params: params, Workers: 1})
	if err != nil {
		panic(err)
	}

	runs := make([]run, n)
	for i := range runs {
		base := xorshift.State{S0: r.Uint64(), S1: r.Uint64()}
		stream := emittedStream(base, blocks, params.BlockSize)
		anchor := r.Intn(len(stream) - runLen)

		runs[i] = run{
			index:  i,
			anchor: anchor,
			rec:    makeRecord(fmt.Sprintf("bench-%d", i), stream[anchor:anchor+runLen]),
		}
		runs[i].recover(rcv, base, params.BlockSize)
	}

	filename := fmt.Sprintf("%v-%v.metrics", n, runLen)
	reportMetrics(runs, filename)
}

type run struct {
	index, anchor int
	rec           recovery.Record

	window     int
	candidates int
	synced     bool
	correct    bool
	totalTime  time.Duration
}

func (ru *run) recover(rcv *recovery.Recoverer, base xorshift.State, blockSize int) {
	start := time.Now()
	out, err := rcv.Recover(context.Background(), ru.rec)
	ru.totalTime = time.Since(start)
	if err != nil {
		ru.window = -1
		return
	}

	ru.window = out.Window
	ru.candidates = len(out.Result.Candidates)
	ru.synced = out.Result.Synced

	// The candidate's base must be a block boundary of the stream, Offset
	// emitted values before the anchor.
	if c, ok := out.Result.Unique(); ok {
		lead := ru.anchor - c.Offset
		ru.correct = lead >= 0 && lead%blockSize == 0 && c.Base() == xorshift.Advance(base, lead)
	}
}

func reportMetrics(runs []run, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	columns := "Record | Anchor | Window | Candidates | Synced | Correct |         Time\n"
	separator := "-----------------------------------------------------------------------\n"
	runStr := "%6v | %6v | %6v | %10v | %6v | %7v | %12v\n"

	lineLen := len(columns)
	buf := make([]byte, lineLen*(2+len(runs)))
	remainder := buf

	copy(remainder, []byte(columns))
	remainder = remainder[lineLen:]
	copy(remainder, []byte(separator))
	remainder = remainder[lineLen:]

	for _, ru := range runs {
		copy(remainder, []byte(fmt.Sprintf(runStr, ru.index, ru.anchor, ru.window, ru.candidates, ru.synced, ru.correct, ru.totalTime)))
		remainder = remainder[lineLen:]
	}

	file.Write(buf)
}

// emittedStream returns the values a generator starting at base emits over
// the given number of blocks.
func emittedStream(base xorshift.State, blocks, blockSize int) []float64 {
	out := make([]float64, 0, blocks*blockSize)

	s := base
	for b := 0; b < blocks; b++ {
		block := make([]float64, blockSize)
		for j := blockSize - 1; j >= 0; j-- {
			s, block[j] = xorshift.Forward(s)
		}
		out = append(out, block...)
	}

	return out
}

func makeRecord(name string, values []float64) recovery.Record {
	samples := make([]xsrecover.Sample, len(values))
	for i, v := range values {
		samples[i] = xsrecover.Known(v, fmt.Sprintf("%s/%d", name, i))
	}

	return recovery.Record{Name: name, Samples: samples}
}
