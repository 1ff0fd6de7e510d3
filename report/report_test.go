package report_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xsrecover/xsrecover"
	"github.com/xsrecover/xsrecover/report"
	"github.com/xsrecover/xsrecover/xorshift"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("report", func() {
	c := xsrecover.Candidate{State: xorshift.State{S0: 6123107629886474, S1: 17247484357964131183}, Alignment: 17, Offset: 5}

	It("should summarise synced results", func() {
		var buf bytes.Buffer
		report.Result(&buf, "player-1", xsrecover.Result{Candidates: []xsrecover.Candidate{c}, Synced: true})

		Expect(buf.String()).To(Equal("player-1: synced\n  state=(6123107629886474, 17247484357964131183) alignment=17 offset=5\n"))
	})

	It("should summarise ambiguous results", func() {
		var buf bytes.Buffer
		other := c
		other.Alignment = 18
		report.Result(&buf, "player-1", xsrecover.Result{Candidates: []xsrecover.Candidate{c, other}})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(Equal("player-1: ambiguous, 2 candidates agree on relative positions only"))
	})

	It("should report failures", func() {
		var buf bytes.Buffer
		report.Failure(&buf, "player-1", errors.New("boom"))

		Expect(buf.String()).To(Equal("player-1: failed: boom\n"))
	})

	It("should walk a cursor and name labelled values", func() {
		params := xsrecover.DefaultParams()
		cur := xsrecover.NewCursor(params, c)

		labels := report.Labels{cur.Get(1): "player-1/moxie"}

		var buf bytes.Buffer
		report.Walk(&buf, cur, -1, 3, labels)

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[0]).To(HavePrefix(fmt.Sprintf("%6d  ", -1)))
		Expect(lines[2]).To(HaveSuffix("player-1/moxie"))
		Expect(lines[2]).To(ContainSubstring(fmt.Sprintf("%.17g", cur.Get(1))))
		Expect(lines[3]).ToNot(ContainSubstring("player-1"))
	})
})
