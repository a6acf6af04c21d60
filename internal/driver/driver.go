// Package driver runs the front end over a set of crates: it loads them,
// lowers them in parallel, checks fixture expectations and keeps the owner
// hash cache.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"ferrule/internal/config"
	"ferrule/internal/defs"
	"ferrule/internal/diag"
	"ferrule/internal/fixture"
	"ferrule/internal/hir"
	"ferrule/internal/lower"
	"ferrule/internal/observ"
	"ferrule/internal/source"
	"ferrule/internal/trace"
)

// Options configures a run.
type Options struct {
	// Edition applies to crates that do not name one.
	Edition                  source.Edition
	IncrementalRelativeSpans bool
	DebugAssertions          bool
	// MaxDiagnostics caps each crate's bag.
	MaxDiagnostics int
	// Jobs bounds the crates lowered at once; 0 means GOMAXPROCS.
	Jobs int
	// Cache is nil when the hash cache is off.
	Cache *HashCache
	// CheckExpectations compares fixture documents with their `expect`.
	CheckExpectations bool
	// ICEOutput receives the trace ring dump after an internal error.
	// Stderr when nil.
	ICEOutput io.Writer
	// Progress receives per-crate events; nil disables them.
	Progress ProgressSink
}

// OptionsFromConfig maps ferrule.toml onto Options. The cache is opened
// when it is enabled.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	edition, err := cfg.Edition()
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Edition:                  edition,
		IncrementalRelativeSpans: cfg.Lower.IncrementalRelativeSpans,
		DebugAssertions:          cfg.Lower.DebugAssertions,
		MaxDiagnostics:           cfg.Diagnostics.Max,
	}
	if cfg.Cache.Enabled {
		opts.Cache, err = OpenHashCache(cfg.Cache.Dir)
		if err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

// CrateResult is the outcome for one crate.
type CrateResult struct {
	Fixture *fixture.Fixture
	Edition source.Edition
	// HIR and Defs are nil when the crate did not parse or lowering hit an
	// internal error.
	HIR  *hir.Crate
	Defs *defs.Definitions
	Bag  *diag.Bag
	// Err is a load failure or a *lower.InternalError.
	Err error
	// ExpectErr is set when the fixture's expectations were not met.
	ExpectErr error
	Delta     Delta
}

func (r *CrateResult) Name() string { return r.Fixture.Crate }

// Failed reports whether the crate should make the run fail.
func (r *CrateResult) Failed() bool {
	return r.Err != nil || r.ExpectErr != nil || r.Bag.HasErrors()
}

// Result is the outcome of a run.
type Result struct {
	FileSet *source.FileSet
	Crates  []*CrateResult
	Timer   *observ.Timer
}

// Failed reports whether any crate failed.
func (r *Result) Failed() bool {
	for _, c := range r.Crates {
		if c.Failed() {
			return true
		}
	}
	return false
}

// InternalErrors returns the crates whose lowering panicked.
func (r *Result) InternalErrors() []*lower.InternalError {
	var out []*lower.InternalError
	for _, c := range r.Crates {
		var ice *lower.InternalError
		if errors.As(c.Err, &ice) {
			out = append(out, ice)
		}
	}
	return out
}

// Run loads every input, lowers the crates and finishes them. Errors that
// belong to one crate are kept in its result; Run only fails for the run as
// a whole (cancellation).
func Run(ctx context.Context, inputs []*fixture.Fixture, opts Options) (*Result, error) {
	res := &Result{FileSet: source.NewFileSet(), Timer: observ.NewTimer()}
	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "run")
	defer span.End("")

	states := load(ctx, res, inputs, opts)
	if err := lowerAll(ctx, res, states, opts); err != nil {
		return nil, err
	}
	validate(ctx, res, opts)
	updateCache(ctx, res, opts)
	// a final event without a stage closes every crate
	for _, r := range res.Crates {
		status := StatusDone
		if r.Failed() {
			status = StatusError
		}
		opts.progress(Event{Crate: r.Name(), Status: status})
	}
	return res, nil
}

// crateState carries a loaded crate between the phases.
type crateState struct {
	result *CrateResult
	built  *fixture.Crate
	// rep is shared by resolution and lowering so an error both passes
	// see at the same place is reported once.
	rep *diag.DedupReporter
}

// load parses and resolves every crate. Registering files in the shared
// file set is sequential; the lowering that follows is not.
func load(ctx context.Context, res *Result, inputs []*fixture.Fixture, opts Options) []crateState {
	_, span := trace.StartSpan(ctx, trace.ScopePass, "load")
	done := res.Timer.Track(observ.PhaseLoad)

	limit := opts.MaxDiagnostics
	if limit <= 0 {
		limit = 100
	}
	for _, f := range inputs {
		opts.progress(Event{Crate: f.Crate, Stage: StageLoad, Status: StatusQueued})
	}
	states := make([]crateState, len(inputs))
	for i, f := range inputs {
		r := &CrateResult{Fixture: f, Bag: diag.NewBag(limit), Edition: opts.Edition}
		res.Crates = append(res.Crates, r)
		states[i].result = r
		opts.progress(Event{Crate: f.Crate, Stage: StageLoad, Status: StatusWorking})
		if f.Edition != "" {
			ed, err := f.EditionValue()
			if err != nil {
				r.Err = err
				r.Bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOFixtureError,
					Message:  fmt.Sprintf("crate %s: %v", f.Crate, err),
				})
				opts.progress(Event{Crate: f.Crate, Stage: StageLoad, Status: StatusError, Err: err})
				continue
			}
			r.Edition = ed
		}
		states[i].rep = diag.NewDedupReporter(diag.BagReporter{Bag: r.Bag})
		built, err := f.Build(res.FileSet, states[i].rep)
		if err != nil {
			r.Err = err
			opts.progress(Event{Crate: f.Crate, Stage: StageLoad, Status: StatusError, Err: err})
			continue
		}
		states[i].built = built
	}

	note := strconv.Itoa(len(inputs)) + " crates"
	done(note)
	span.End(note)
	return states
}

func lowerAll(ctx context.Context, res *Result, states []crateState, opts Options) error {
	ctx, span := trace.StartSpan(ctx, trace.ScopePass, "lower")
	defer span.End("")
	done := res.Timer.Track(observ.PhaseLower)
	defer done("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(states))))
	for i := range states {
		st := states[i]
		if st.built == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lowerOne(gctx, st, opts)
			return nil
		})
	}
	return g.Wait()
}

// lowerOne lowers a single crate. Each crate has its own resolver, bag and
// definitions table, so nothing here is shared between goroutines.
func lowerOne(ctx context.Context, st crateState, opts Options) {
	r := st.result
	start := time.Now()
	opts.progress(Event{Crate: r.Name(), Stage: StageLower, Status: StatusWorking})
	c, err := lower.Crate(ctx, st.built.AST, st.built.Table, lower.Options{
		Reporter:                 st.rep,
		Edition:                  r.Edition,
		IncrementalRelativeSpans: opts.IncrementalRelativeSpans,
		DebugAssertions:          opts.DebugAssertions,
	})
	if err != nil {
		r.Err = err
		reportInternal(ctx, r, err, opts)
		opts.progress(Event{Crate: r.Name(), Stage: StageLower, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return
	}
	r.HIR = c
	r.Defs = st.built.Table.Definitions()
	r.Bag.Sort()
	status := StatusDone
	if r.Bag.HasErrors() {
		status = StatusError
	}
	opts.progress(Event{Crate: r.Name(), Stage: StageLower, Status: status, Elapsed: time.Since(start)})
}

// reportInternal records an internal error as a diagnostic and dumps the
// trace ring, if one is kept.
func reportInternal(ctx context.Context, r *CrateResult, err error, opts Options) {
	var ice *lower.InternalError
	if !errors.As(err, &ice) {
		return
	}
	r.Bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     ice.Code(),
		Message:  ice.Error(),
	})
	ring := trace.RingOf(trace.FromContext(ctx))
	if ring == nil {
		return
	}
	w := opts.ICEOutput
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "--- trace before internal error in crate %s ---\n", r.Name()) //nolint:errcheck
	_ = ring.Dump(w, trace.FormatText)
}

func validate(ctx context.Context, res *Result, opts Options) {
	if !opts.CheckExpectations {
		return
	}
	_, span := trace.StartSpan(ctx, trace.ScopePass, "validate")
	done := res.Timer.Track(observ.PhaseValidate)
	failed := 0
	for _, r := range res.Crates {
		r.ExpectErr = r.Fixture.Check(r.HIR, r.Defs, r.Bag.Items())
		if r.ExpectErr != nil {
			failed++
			opts.progress(Event{Crate: r.Name(), Stage: StageValidate, Status: StatusError, Err: r.ExpectErr})
		}
	}
	note := fmt.Sprintf("%d failed", failed)
	done(note)
	span.End(note)
}

// updateCache stores the new owner hashes. Cache failures are warnings:
// the lowering itself succeeded.
func updateCache(ctx context.Context, res *Result, opts Options) {
	if opts.Cache == nil {
		return
	}
	_, span := trace.StartSpan(ctx, trace.ScopePass, "cache")
	defer span.End("")
	done := res.Timer.Track(observ.PhaseCache)
	defer done("")

	for _, r := range res.Crates {
		if r.HIR == nil {
			continue
		}
		opts.progress(Event{Crate: r.Name(), Stage: StageCache, Status: StatusWorking})
		delta, err := opts.Cache.Update(r.HIR, r.Defs)
		if err != nil {
			r.Bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.IOCacheError,
				Message:  "failed to update the hash cache: " + err.Error(),
			})
			continue
		}
		r.Delta = delta
	}
}
