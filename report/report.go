// Package report renders recovery results and walks over recovered streams
// for people to read.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/xsrecover/xsrecover"
)

// Labels maps values to a description of where they were observed. It is
// owned by the caller and only read here.
type Labels map[float64]string

var (
	good    = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	bad     = color.New(color.FgRed).SprintFunc()
	known   = color.New(color.FgCyan).SprintFunc()
)

// Result writes a summary of a result: one line for the verdict and one per
// candidate.
func Result(w io.Writer, name string, res xsrecover.Result) {
	switch {
	case res.Synced:
		fmt.Fprintf(w, "%s: %s\n", name, good("synced"))
	case len(res.Candidates) > 1:
		fmt.Fprintf(w, "%s: %s, %d candidates agree on relative positions only\n", name, warning("ambiguous"), len(res.Candidates))
	default:
		fmt.Fprintf(w, "%s: %s\n", name, bad("no candidates"))
	}

	for _, c := range res.Candidates {
		fmt.Fprintf(w, "  state=(%d, %d) alignment=%d offset=%d\n", c.State.S0, c.State.S1, c.Alignment, c.Offset)
	}
}

// Failure writes a line for a record that could not be recovered.
func Failure(w io.Writer, name string, err error) {
	fmt.Fprintf(w, "%s: %s: %v\n", name, bad("failed"), err)
}

// Walk writes the values at logical indices [from, to) of the cursor, one per
// line, naming the ones found in labels.
func Walk(w io.Writer, cur *xsrecover.Cursor, from, to int, labels Labels) {
	for i := from; i < to; i++ {
		v := cur.Get(i)

		if label, ok := labels[v]; ok {
			fmt.Fprintf(w, "%6d  %-20.17g  %s\n", i, v, known(label))
		} else {
			fmt.Fprintf(w, "%6d  %-20.17g\n", i, v)
		}
	}
}
