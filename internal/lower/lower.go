// Package lower folds a resolved surface crate into HIR.
//
// Lowering is a single depth-first pass. Every item (and every opaque type
// synthesized for `impl Trait` or an async fn) becomes an owner: its nodes
// get dense local ids, and when the owner is done its tables are hashed and
// indexed into an hir.OwnerInfo. Region references are rewritten according
// to the resolver's answers and the anonymous-region mode in force.
package lower

import (
	"context"
	"fmt"

	"github.com/speakeasy-api/openapi/sequencedmap"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/diag"
	"ferrule/internal/hir"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
	"ferrule/internal/trace"
)

// Options configures one lowering run.
type Options struct {
	Reporter diag.Reporter
	// Hygiene receives the expansion data of desugared spans. A fresh table
	// is used when nil.
	Hygiene *source.Hygiene
	Edition source.Edition
	// IncrementalRelativeSpans parents every span to the owner it was
	// lowered in.
	IncrementalRelativeSpans bool
	// DebugAssertions enables the attribute-table checks and runs
	// hir.Validate on the result.
	DebugAssertions bool
	Tracer          trace.Tracer
}

// InternalError is returned when lowering hit a broken invariant. It is
// never the user's fault.
type InternalError struct {
	Crate string
	Err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error while lowering %q: %v", e.Crate, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

// Code is the diagnostic code drivers report the failure under.
func (e *InternalError) Code() diag.Code { return diag.LowInternalCompilerError }

// Crate lowers crate using the answers in r. User errors are reported to
// opts.Reporter and lowering continues; a broken invariant aborts the run
// and comes back as *InternalError.
func Crate(ctx context.Context, crate *ast.Crate, r resolve.Resolver, opts Options) (out *hir.Crate, err error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	span := trace.Begin(tracer, trace.ScopeCrate, "crate:"+crate.Name, trace.CurrentSpan(ctx))
	detail := "ok"
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &InternalError{Crate: crate.Name, Err: asError(rec)}
			detail = "ice"
		}
		span.End(detail)
	}()

	l := newLowerer(r, opts, tracer, span.ID())
	if def, ok := r.OptLocalDefID(ast.CrateNodeID); !ok || def != defs.CrateDefID {
		panic(fmt.Errorf("lower: crate node is not mapped to the crate root definition"))
	}
	l.lowerCrateRoot(crate)

	c := &hir.Crate{Name: crate.Name, Owners: make([]*hir.OwnerInfo, l.defs.Len()+1)}
	for def, info := range l.owners {
		c.Owners[def] = info
	}
	c.Hash = hir.HashCrate(l.defs, c)
	l.defs.InitHirMapping(l.defToHir())

	if opts.DebugAssertions {
		if verr := hir.Validate(c); verr != nil {
			panic(fmt.Errorf("lower: %w", verr))
		}
	}
	detail = fmt.Sprintf("owners=%d", len(l.owners))
	return c, nil
}

func asError(rec any) error {
	if e, ok := rec.(error); ok {
		return e
	}
	return fmt.Errorf("%v", rec)
}

// lowerer holds the state of one lowering run.
type lowerer struct {
	r        resolve.Resolver
	defs     *defs.Definitions
	opts     Options
	reporter diag.Reporter
	hygiene  *source.Hygiene
	tracer   trace.Tracer
	spanID   uint64

	nodeToHir map[ast.NodeID]hir.HirID
	owners    map[defs.LocalDefID]*hir.OwnerInfo
	cur       ownerState

	mode anonMode
	// collecting is the item in-band regions are gathered for; inBand holds
	// them in first-use order.
	collecting defs.LocalDefID
	inBand     *sequencedmap.Map[ast.NodeID, inBandParam]
	// captures is non-nil while the bounds of an opaque type are lowered.
	captures  *captureState
	inDynType bool
	generator hir.GeneratorKind
}

func newLowerer(r resolve.Resolver, opts Options, tracer trace.Tracer, spanID uint64) *lowerer {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	hygiene := opts.Hygiene
	if hygiene == nil {
		hygiene = source.NewHygiene()
	}
	return &lowerer{
		r:         r,
		defs:      r.Definitions(),
		opts:      opts,
		reporter:  reporter,
		hygiene:   hygiene,
		tracer:    tracer,
		spanID:    spanID,
		nodeToHir: make(map[ast.NodeID]hir.HirID),
		owners:    make(map[defs.LocalDefID]*hir.OwnerInfo),
	}
}

// defToHir collects the HirID of every lowered node that has a definition.
func (l *lowerer) defToHir() map[defs.LocalDefID]defs.HirRef {
	out := make(map[defs.LocalDefID]defs.HirRef)
	for node, id := range l.nodeToHir {
		if def, ok := l.r.OptLocalDefID(node); ok {
			out[def] = id.Ref()
		}
	}
	return out
}

func (l *lowerer) lowerCrateRoot(crate *ast.Crate) {
	l.withOwner(ast.CrateNodeID, func() *hir.Item {
		id := l.lowerNodeID(ast.CrateNodeID)
		l.lowerAttrs(id, crate.Attrs)
		items := make([]hir.ItemID, 0, len(crate.Items))
		for _, it := range crate.Items {
			items = append(items, l.lowerItem(it))
		}
		return &hir.Item{
			HirID: id,
			DefID: defs.CrateDefID,
			Ident: hir.Ident{Name: crate.Name, Span: l.lowerSpan(crate.Span.ShrinkToLo())},
			Kind:  hir.ItemMod,
			Vis:   ast.VisPublic,
			Span:  l.lowerSpan(crate.Span),
			Data:  &hir.ModItem{Items: items, Span: l.lowerSpan(crate.Span)},
		}
	})
}

func (l *lowerer) report(code diag.Code, span source.Span, msg string) {
	diag.ReportError(l.reporter, code, span, msg).Emit()
}
