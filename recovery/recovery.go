// Package recovery drives the solver, synchronizer and cursor for anchored
// records of observations: it picks probe windows, retries on failure, bounds
// each attempt in time, caches results and runs many records concurrently.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xsrecover/xsrecover"
	"github.com/xsrecover/xsrecover/xorshift"
)

// Record is an anchored run of observations in the order the generator
// emitted them. Samples[0] is the anchor and must be known.
type Record struct {
	Name    string
	Samples []xsrecover.Sample
}

// Entry is a cached result together with the digest of the parameters and
// samples it was recovered from.
type Entry struct {
	Digest Digest
	Result xsrecover.Result
}

// Cache stores entries by record name.
type Cache interface {
	Get(name string) (Entry, bool, error)
	Put(name string, e Entry) error
}

// Config configures a Recoverer.
type Config struct {
	Params xsrecover.Params

	// Timeout bounds a single solve attempt. Zero means no bound.
	Timeout time.Duration

	// Workers bounds the number of records recovered at once by RecoverAll.
	// Zero means one per CPU.
	Workers int

	// Cache is optional.
	Cache Cache
}

// Outcome is the result of recovering one record.
type Outcome struct {
	Name string

	// Window is the index of the first sample of the probe window that led
	// to the result, or -1 if the result came from the cache.
	Window int
	Cached bool
	Result xsrecover.Result
	Err    error
}

// Recoverer recovers records. Each call works on its own solver and cursors,
// so a Recoverer may be used from several goroutines.
type Recoverer struct {
	cfg Config
}

// New returns a Recoverer for the given configuration.
func New(cfg Config) (*Recoverer, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Params.SearchBound < 2*cfg.Params.BlockSize-cfg.Params.Window {
		return nil, fmt.Errorf("%w: search bound %v cannot reach an anchor up to %v values before a block",
			xsrecover.ErrInvalidInput, cfg.Params.SearchBound, 2*cfg.Params.BlockSize-cfg.Params.Window)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return &Recoverer{cfg: cfg}, nil
}

// Windows returns the start of every run of window consecutive samples that
// are all known and unclamped, in increasing order.
func Windows(p xsrecover.Params, samples []xsrecover.Sample) []int {
	var starts []int

	run := 0
	for i, s := range samples {
		if s.Known && s.Value != p.ClampFloor && s.Value != p.ClampCeiling {
			run++
		} else {
			run = 0
		}

		if run >= p.Window {
			starts = append(starts, i-p.Window+1)
		}
	}

	return starts
}

// Recover tries each probe window of the record in turn and returns the first
// result a window synchronizes to, synced or not. Windows whose solve or
// synchronization fails, such as those straddling a block boundary, are
// skipped. A cached entry is only used if it was recovered from the same
// parameters and samples.
func (r *Recoverer) Recover(ctx context.Context, rec Record) (Outcome, error) {
	p := r.cfg.Params

	if len(rec.Samples) == 0 || !rec.Samples[0].Known {
		return Outcome{}, fmt.Errorf("record %s: %w: anchor is not known", rec.Name, xsrecover.ErrInvalidInput)
	}
	if anchor := rec.Samples[0].Value; anchor == p.ClampFloor || anchor == p.ClampCeiling {
		return Outcome{}, fmt.Errorf("record %s: %w: anchor %v is a clamp value", rec.Name, xsrecover.ErrInvalidInput, anchor)
	}

	digest := Fingerprint(p, rec.Samples)

	if r.cfg.Cache != nil {
		e, ok, err := r.cfg.Cache.Get(rec.Name)
		switch {
		case err != nil:
			log.Warnf("Reading cached result for %s: %v", rec.Name, err)
		case ok && e.Digest == digest:
			log.Debugf("Using cached result for %s", rec.Name)
			return Outcome{Name: rec.Name, Window: -1, Cached: true, Result: e.Result}, nil
		case ok:
			log.Debugf("Cached result for %s is stale", rec.Name)
		}
	}

	windows := Windows(p, rec.Samples)
	if len(windows) == 0 {
		return Outcome{}, fmt.Errorf("record %s: %w: no %v consecutive known samples", rec.Name, xsrecover.ErrInvalidInput, p.Window)
	}

	lastErr := xsrecover.ErrNoSolution
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		res, err := r.attempt(ctx, rec, w)
		switch {
		case err == nil:
			log.Infof("Recovered %s from window %d: %d candidate(s), synced %v", rec.Name, w, len(res.Candidates), res.Synced)
			r.store(rec.Name, Entry{Digest: digest, Result: res})
			return Outcome{Name: rec.Name, Window: w, Result: res}, nil

		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			log.Debugf("Window %d of %s timed out after %v", w, rec.Name, r.cfg.Timeout)
			lastErr = err

		case errors.Is(err, xsrecover.ErrNoSolution), errors.Is(err, xsrecover.ErrMultipleSolutions):
			log.Tracef("Window %d of %s: %v", w, rec.Name, err)
			lastErr = err

		default:
			return Outcome{}, fmt.Errorf("record %s, window %d: %w", rec.Name, w, err)
		}
	}

	return Outcome{}, fmt.Errorf("record %s: %d windows tried: %w", rec.Name, len(windows), lastErr)
}

func (r *Recoverer) store(name string, e Entry) {
	if r.cfg.Cache == nil {
		return
	}

	if err := r.cfg.Cache.Put(name, e); err != nil {
		log.Warnf("Caching result for %s: %v", name, err)
	}
}

// attempt solves the window starting at sample w and synchronizes the whole
// record against the recovered state.
func (r *Recoverer) attempt(ctx context.Context, rec Record, w int) (xsrecover.Result, error) {
	p := r.cfg.Params

	// Within a block values are emitted in reverse, so the window read
	// backwards is in generation order.
	window := make([]float64, p.Window)
	for i := range window {
		window[p.Window-1-i] = rec.Samples[w+i].Value
	}

	state, err := r.solve(ctx, window)
	if err != nil {
		return xsrecover.Result{}, err
	}

	// The solved state sits inside the block holding the window. Rewind by
	// enough whole blocks that the anchor, w values earlier, lies after the
	// trial block boundaries.
	lead := (w + p.BlockSize - 1) / p.BlockSize
	state = xorshift.Advance(state, -lead*p.BlockSize)

	return xsrecover.Synchronize(p, state, rec.Samples[0].Value, rec.Samples)
}

// solve runs the solver, giving up when ctx is done or the attempt timeout
// passes. An abandoned solve finishes in the background.
func (r *Recoverer) solve(ctx context.Context, window []float64) (xorshift.State, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	type answer struct {
		state xorshift.State
		err   error
	}

	answers := make(chan answer, 1)
	go func() {
		state, err := xsrecover.Solve(window)
		answers <- answer{state, err}
	}()

	select {
	case a := <-answers:
		return a.state, a.err
	case <-ctx.Done():
		return xorshift.State{}, ctx.Err()
	}
}

// RecoverAll recovers records concurrently. Failures of individual records are
// reported in their outcomes; the error is only set if ctx ends early.
func (r *Recoverer) RecoverAll(ctx context.Context, recs []Record) ([]Outcome, error) {
	outcomes := make([]Outcome, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			o, err := r.Recover(gctx, rec)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warnf("Failed to recover %s: %v", rec.Name, err)
				o = Outcome{Name: rec.Name, Window: -1, Err: err}
			}

			outcomes[i] = o
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}
