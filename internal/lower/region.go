package lower

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"
	"github.com/speakeasy-api/openapi/sequencedmap"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/hir"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
)

// anonMode decides what an anonymous region (`'_` or elided) becomes.
type anonMode uint8

const (
	// modePassThrough leaves the region unnamed for the elision pass.
	modePassThrough anonMode = iota
	// modeCreateParameter introduces a fresh generic parameter on the item
	// being collected.
	modeCreateParameter
	// modeReportError is used where the resolver already rejected anonymous
	// regions; seeing one is a bug.
	modeReportError
)

func (m anonMode) String() string {
	switch m {
	case modeCreateParameter:
		return "CreateParameter"
	case modeReportError:
		return "ReportError"
	default:
		return "PassThrough"
	}
}

func (l *lowerer) withMode(mode anonMode, fn func()) {
	saved := l.mode
	l.mode = mode
	defer func() { l.mode = saved }()
	fn()
}

// inBandParam is a lifetime parameter the item never declared.
type inBandParam struct {
	span source.Span
	name hir.ParamName
}

// capture is a region referenced from inside an opaque bound list that
// the opaque item has to declare.
type capture struct {
	span source.Span
	// param is the node the opaque item's parameter is created for.
	param ast.NodeID
	name  hir.ParamName
	// lname is the region as written at the first use: a parameter, or
	// an implicit or `'_` region.
	lname hir.LifetimeName
	res   resolve.RegionRes
}

// paramKind is the kind of the parameter the opaque item declares for c.
func (c *capture) paramKind() hir.LifetimeParamKind {
	switch c.lname.Kind {
	case hir.LifetimeImplicit, hir.LifetimeUnderscore:
		return hir.LifetimeParamElided
	case hir.LifetimeParam:
		return hir.LifetimeParamExplicit
	default:
		panic(fmt.Errorf("lower: captured region %s at %s is not a parameter", c.lname, c.span))
	}
}

// captureState gathers captures while one opaque bound list is lowered.
// Regions whose binder is in binders were introduced inside the list.
type captureState struct {
	entries *sequencedmap.Map[ast.NodeID, *capture]
	binders *set.Set[ast.NodeID]
	// capturable restricts a type alias opaque to the named regions it
	// lists; nil admits every capture.
	capturable *set.Set[string]
}

// keeps reports whether the opaque item declares a parameter for c.
func (s *captureState) keeps(c *capture) bool {
	if s.capturable == nil {
		return true
	}
	if c.lname.Kind != hir.LifetimeParam || c.lname.Param.Kind != hir.ParamPlain {
		return false
	}
	return s.capturable.Contains(c.lname.Param.Ident.Name)
}

func newCaptureState() *captureState {
	return &captureState{
		entries: sequencedmap.New[ast.NodeID, *capture](),
		binders: set.New[ast.NodeID](0),
	}
}

// withBinder hides regions bound by binder from the capture table while fn
// runs.
func (l *lowerer) withBinder(binder ast.NodeID, fn func()) {
	if l.captures == nil || !binder.IsValid() {
		fn()
		return
	}
	c := l.captures
	added := c.binders.Insert(binder)
	defer func() {
		if added {
			c.binders.Remove(binder)
		}
	}()
	fn()
}

func (l *lowerer) lowerLifetime(lt *ast.Lifetime) *hir.Lifetime {
	res, ok := l.r.RegionRes(lt.ID)
	if !ok {
		panic(fmt.Errorf("lower: lifetime `%s` at %s was never resolved", lt.Ident.Name, lt.Ident.Span))
	}
	return l.newLifetime(lt.ID, lt.Ident.Span, lt.Ident.Name, res)
}

// elidedRefLifetime is the region omitted after `&` in the reference type t.
func (l *lowerer) elidedRefLifetime(t *ast.Ty) *hir.Lifetime {
	res, ok := l.r.ElidedRegionRes(t.ID)
	if !ok {
		panic(fmt.Errorf("lower: elided region of %s was never resolved", t.ID))
	}
	return l.newLifetime(l.r.NextNodeID(), t.Span.NextPoint(), "", res)
}

// elidedDynBound is the object region of `dyn Trait` written without one.
func (l *lowerer) elidedDynBound(span source.Span) *hir.Lifetime {
	return &hir.Lifetime{
		HirID: l.nextID(),
		Span:  l.lowerSpan(span),
		Name:  hir.LifetimeName{Kind: hir.LifetimeImplicitObjectDefault},
	}
}

// newLifetime builds the HIR for a region reference with surface node id.
func (l *lowerer) newLifetime(id ast.NodeID, span source.Span, ident string, res resolve.RegionRes) *hir.Lifetime {
	var name hir.LifetimeName
	switch res.Kind {
	case resolve.RegionParam:
		pname := hir.ParamName{Kind: hir.ParamPlain, Ident: hir.Ident{Name: ident, Span: l.lowerSpan(span)}}
		if res.Fresh {
			pname = hir.ParamName{Kind: hir.ParamFresh, Fresh: res.FreshIndex}
		}
		name = hir.LifetimeName{Kind: hir.LifetimeParam, Param: pname}
		if res.InBand {
			l.registerInBand(res, span, pname)
		}
		l.captureParam(res, span, pname, name)
	case resolve.RegionAnonymous:
		name = l.anonymousLifetime(span, ident, res)
	case resolve.RegionStatic:
		name = hir.LifetimeName{Kind: hir.LifetimeStatic}
	default:
		name = hir.LifetimeName{Kind: hir.LifetimeError}
	}
	return &hir.Lifetime{HirID: l.lowerNodeID(id), Span: l.lowerSpan(span), Name: name}
}

// registerInBand records an in-band parameter of the item being collected.
// Parameters introduced for other items are left alone.
func (l *lowerer) registerInBand(res resolve.RegionRes, span source.Span, name hir.ParamName) {
	if l.inBand == nil || !l.collecting.IsValid() {
		return
	}
	if binder, ok := l.r.OptLocalDefID(res.Binder); !ok || binder != l.collecting {
		return
	}
	if _, seen := l.inBand.Get(res.Param); seen {
		return
	}
	l.inBand.Set(res.Param, inBandParam{span: span, name: name})
}

func (l *lowerer) captureParam(res resolve.RegionRes, span source.Span, name hir.ParamName, lname hir.LifetimeName) {
	c := l.captures
	if c == nil || c.binders.Contains(res.Binder) {
		return
	}
	if _, seen := c.entries.Get(res.Param); seen {
		return
	}
	c.entries.Set(res.Param, &capture{
		span:  span,
		param: l.r.NextNodeID(),
		name:  name,
		lname: lname,
		res:   res,
	})
}

func (l *lowerer) anonymousLifetime(span source.Span, ident string, res resolve.RegionRes) hir.LifetimeName {
	unnamed := hir.LifetimeName{Kind: hir.LifetimeUnderscore}
	if res.Elided {
		unnamed = hir.LifetimeName{Kind: hir.LifetimeImplicit}
	}

	// Anonymous regions are never capturable by a type alias opaque; they
	// stay unnamed instead of pointing at a parameter nobody declares.
	if c := l.captures; c != nil && c.capturable == nil && !c.binders.Contains(res.Binder) {
		p := l.r.NextNodeID()
		fresh := hir.ParamName{Kind: hir.ParamFresh, Fresh: uint32(p)}
		c.entries.Set(p, &capture{span: span, param: p, name: fresh, lname: unnamed, res: res})
		return hir.LifetimeName{Kind: hir.LifetimeParam, Param: fresh}
	}

	switch l.mode {
	case modeCreateParameter:
		if !l.collecting.IsValid() {
			panic(fmt.Errorf("lower: creating a parameter for `%s` at %s with no item to attach it to", ident, span))
		}
		p := l.r.NextNodeID()
		l.r.CreateDef(l.collecting, p, defs.LifetimeNs("'_"), source.RootContext, span)
		fresh := hir.ParamName{Kind: hir.ParamFresh, Fresh: uint32(p)}
		if l.inBand != nil {
			l.inBand.Set(p, inBandParam{span: span, name: fresh})
		}
		return hir.LifetimeName{Kind: hir.LifetimeParam, Param: fresh}
	case modeReportError:
		panic(fmt.Errorf("lower: anonymous region at %s reached a position the resolver forbids", span))
	default:
		return unnamed
	}
}

// addInBandDefs lowers generics, then runs fn with in-band collection
// enabled for owner, then appends a parameter for every region fn
// introduced without declaring it. Universal `impl Trait` parameters come
// last.
func (l *lowerer) addInBandDefs(g *ast.Generics, owner defs.LocalDefID, mode anonMode, fn func(universal *[]*hir.GenericParam)) *hir.Generics {
	savedCollecting, savedInBand, savedMode := l.collecting, l.inBand, l.mode
	l.collecting = owner
	l.inBand = sequencedmap.New[ast.NodeID, inBandParam]()
	l.mode = mode
	defer func() {
		l.collecting, l.inBand, l.mode = savedCollecting, savedInBand, savedMode
	}()

	var universal []*hir.GenericParam
	generics := l.lowerGenerics(g, implTraitContext{kind: itUniversal, universal: &universal, parent: owner})
	fn(&universal)

	for node, p := range l.inBand.All() {
		kind := hir.LifetimeParamInBand
		switch p.name.Kind {
		case hir.ParamFresh:
			kind = hir.LifetimeParamElided
		case hir.ParamError:
			kind = hir.LifetimeParamError
		}
		generics.Params = append(generics.Params, &hir.GenericParam{
			HirID:        l.lowerNodeID(node),
			DefID:        l.r.LocalDefID(node),
			Name:         p.name,
			Span:         l.lowerSpan(p.span),
			Kind:         hir.ParamLifetimeKind,
			LifetimeKind: kind,
		})
	}
	generics.Params = append(generics.Params, universal...)
	return generics
}
