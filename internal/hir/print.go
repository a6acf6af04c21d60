package hir

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"ferrule/internal/ast"
	"ferrule/internal/defs"
)

// Printer dumps HIR in a Rust-like notation. Synthesized pieces are shown
// with their HIR-only spelling (`opaque(...)`, `'{elided}`, `'_#0`).
type Printer struct {
	w     io.Writer
	c     *Crate
	defs  *defs.Definitions
	err   error
	short bool
}

// NewPrinter creates a printer; short omits hashes.
func NewPrinter(w io.Writer, c *Crate, d *defs.Definitions, short bool) *Printer {
	return &Printer{w: w, c: c, defs: d, short: short}
}

// Dump writes every owner of c in definition order.
func Dump(w io.Writer, c *Crate, d *defs.Definitions) error {
	return NewPrinter(w, c, d, false).PrintCrate()
}

// DumpString renders c without hashes, for golden comparisons.
func DumpString(c *Crate, d *defs.Definitions) string {
	var buf bytes.Buffer
	_ = NewPrinter(&buf, c, d, true).PrintCrate()
	return buf.String()
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) PrintCrate() error {
	p.printf("crate %s", p.c.Name)
	if !p.short {
		p.printf(" hash=%s", p.c.Hash.Short())
	}
	p.printf("\n")
	for _, def := range p.c.OwnerDefs() {
		p.PrintOwner(def)
	}
	return p.err
}

func (p *Printer) PrintOwner(def defs.LocalDefID) {
	o := p.c.Owner(def)
	p.printf("\nowner %s %s nodes=%d bodies=%d", def, p.defs.PathString(def), len(o.Nodes.Nodes), len(o.Nodes.Bodies))
	if !p.short {
		p.printf(" hash=%s shallow=%s", o.Nodes.Hash.Short(), o.Nodes.HashWithoutBodies.Short())
	}
	p.printf("\n")
	it := o.Item()
	for _, a := range o.Attrs.Get(RootLocalID) {
		p.printf("  #[%s%s]\n", a.Name, attrArgs(a))
	}
	p.printf("  %s\n", p.item(it))
	if body := p.itemBody(it); body != nil {
		p.printf("  body%s: %s\n", generatorSuffix(body), p.bodyString(body))
	}
}

func attrArgs(a Attribute) string {
	if a.Args == "" {
		return ""
	}
	if a.Doc {
		return " = " + fmt.Sprintf("%q", a.Args)
	}
	return "(" + a.Args + ")"
}

func generatorSuffix(b *Body) string {
	if b.Generator == GenNone {
		return ""
	}
	return " [" + b.Generator.String() + "]"
}

func (p *Printer) itemBody(it *Item) *Body {
	switch d := it.Data.(type) {
	case *FnItem:
		if d.Body.IsValid() {
			return p.c.Body(d.Body)
		}
	case *ConstItem:
		if d.Body.IsValid() {
			return p.c.Body(d.Body)
		}
	}
	return nil
}

func (p *Printer) item(it *Item) string {
	var b strings.Builder
	if it.Vis == ast.VisPublic {
		b.WriteString("pub ")
	}
	switch d := it.Data.(type) {
	case *FnItem:
		h := d.Sig.Header
		if h.Async {
			b.WriteString("async ")
		}
		if h.Unsafe {
			b.WriteString("unsafe ")
		}
		if h.Extern {
			b.WriteString("extern ")
		}
		b.WriteString("fn " + it.Ident.Name)
		b.WriteString(p.genericParams(d.Generics))
		b.WriteString(p.fnDecl(d.Sig.Decl))
		b.WriteString(p.whereClause(d.Generics))
	case *TyAliasItem:
		b.WriteString("type " + it.Ident.Name + p.genericParams(d.Generics))
		if len(d.Bounds) > 0 {
			b.WriteString(": " + p.bounds(d.Bounds))
		}
		if d.Ty != nil {
			b.WriteString(" = " + p.ty(d.Ty))
		}
		b.WriteString(p.whereClause(d.Generics))
	case *OpaqueTyItem:
		b.WriteString("opaque type " + p.defs.PathString(it.DefID) + p.genericParams(d.Generics))
		b.WriteString(": " + p.bounds(d.Bounds))
		if d.Fn.IsValid() {
			b.WriteString(fmt.Sprintf(" (%s of %s)", d.Origin, p.defs.PathString(d.Fn)))
		} else {
			b.WriteString(fmt.Sprintf(" (%s)", d.Origin))
		}
	case *StructItem:
		b.WriteString("struct " + it.Ident.Name + p.genericParams(d.Generics))
		fields := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			if d.Tuple {
				fields[i] = p.ty(f.Ty)
			} else {
				fields[i] = f.Ident.Name + ": " + p.ty(f.Ty)
			}
		}
		if d.Tuple {
			b.WriteString("(" + strings.Join(fields, ", ") + ")")
		} else {
			b.WriteString(" { " + strings.Join(fields, ", ") + " }")
		}
		b.WriteString(p.whereClause(d.Generics))
	case *ConstItem:
		b.WriteString("const " + it.Ident.Name + ": " + p.ty(d.Ty))
	case *ModItem:
		if it.DefID == defs.CrateDefID {
			b.WriteString("crate")
		} else {
			b.WriteString("mod " + it.Ident.Name)
		}
		b.WriteString(" { " + p.itemRefs(d.Items) + " }")
	case *ImplItem:
		if d.Unsafe {
			b.WriteString("unsafe ")
		}
		b.WriteString("impl" + p.genericParams(d.Generics) + " ")
		if d.OfTrait != nil {
			b.WriteString(p.path(d.OfTrait.Path) + " for ")
		}
		b.WriteString(p.ty(d.SelfTy))
		b.WriteString(p.whereClause(d.Generics))
		b.WriteString(" { " + p.itemRefs(d.Items) + " }")
	case *TraitItem:
		if d.Unsafe {
			b.WriteString("unsafe ")
		}
		b.WriteString("trait " + it.Ident.Name + p.genericParams(d.Generics))
		if len(d.Bounds) > 0 {
			b.WriteString(": " + p.bounds(d.Bounds))
		}
		b.WriteString(p.whereClause(d.Generics))
		b.WriteString(" { " + p.itemRefs(d.Items) + " }")
	}
	return b.String()
}

func (p *Printer) itemRefs(ids []ItemID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = p.defs.PathString(id.Def)
	}
	return strings.Join(names, ", ")
}

func (p *Printer) genericParams(g *Generics) string {
	if g == nil || len(g.Params) == 0 {
		return ""
	}
	return "<" + p.paramList(g.Params) + ">"
}

func (p *Printer) paramList(params []*GenericParam) string {
	parts := make([]string, len(params))
	for i, gp := range params {
		var s string
		switch gp.Kind {
		case ParamLifetimeKind:
			s = LifetimeName{Kind: LifetimeParam, Param: gp.Name}.String()
			if gp.LifetimeKind != LifetimeParamExplicit {
				s += " /*" + gp.LifetimeKind.String() + "*/"
			}
		case ParamTypeKind:
			s = gp.Name.String()
			if gp.Synthetic {
				s = "/*synthetic*/ " + s
			}
		case ParamConstKind:
			s = "const " + gp.Name.String() + ": " + p.ty(gp.ConstTy)
		}
		if len(gp.Bounds) > 0 {
			s += ": " + p.bounds(gp.Bounds)
		}
		if gp.Default != nil {
			s += " = " + p.ty(gp.Default)
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) whereClause(g *Generics) string {
	if g == nil || len(g.Predicates) == 0 {
		return ""
	}
	preds := make([]string, len(g.Predicates))
	for i, pred := range g.Predicates {
		var s string
		if len(pred.BoundGenericParams) > 0 {
			s = "for<" + p.paramList(pred.BoundGenericParams) + "> "
		}
		if pred.Kind == WhereRegion {
			s += pred.Lifetime.Name.String()
		} else {
			s += p.ty(pred.BoundedTy)
		}
		preds[i] = s + ": " + p.bounds(pred.Bounds)
	}
	return " where " + strings.Join(preds, ", ")
}

func (p *Printer) bounds(bounds []*GenericBound) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		if b.Kind == BoundOutlives {
			parts[i] = b.Lifetime.Name.String()
			continue
		}
		s := p.polyTraitRef(b.Trait)
		if b.Modifier == ast.ModifierMaybe {
			s = "?" + s
		}
		parts[i] = s
	}
	return strings.Join(parts, " + ")
}

func (p *Printer) polyTraitRef(t *PolyTraitRef) string {
	s := p.path(t.TraitRef.Path)
	if len(t.BoundGenericParams) > 0 {
		s = "for<" + p.paramList(t.BoundGenericParams) + "> " + s
	}
	return s
}

func (p *Printer) fnDecl(d *FnDecl) string {
	inputs := make([]string, len(d.Inputs))
	for i, in := range d.Inputs {
		inputs[i] = p.ty(in)
	}
	if d.CVariadic {
		inputs = append(inputs, "...")
	}
	s := "(" + strings.Join(inputs, ", ") + ")"
	if d.Output.Ty != nil {
		s += " -> " + p.ty(d.Output.Ty)
	}
	if d.ImplicitSelf != SelfNone {
		s += " /*" + d.ImplicitSelf.String() + "*/"
	}
	return s
}

func (p *Printer) ty(t *Ty) string {
	if t == nil {
		return "_"
	}
	switch d := t.Data.(type) {
	case *SliceTy:
		return "[" + p.ty(d.Elem) + "]"
	case *ArrayTy:
		return "[" + p.ty(d.Elem) + "; " + p.anonConst(d.Len) + "]"
	case *PtrTy:
		if d.Mut {
			return "*mut " + p.ty(d.Elem)
		}
		return "*const " + p.ty(d.Elem)
	case *RefTy:
		s := "&" + d.Lifetime.Name.String() + " "
		if d.Mut {
			s += "mut "
		}
		return s + p.ty(d.Elem)
	case *BareFnTy:
		s := ""
		if len(d.GenericParams) > 0 {
			s = "for<" + p.paramList(d.GenericParams) + "> "
		}
		if d.Unsafe {
			s += "unsafe "
		}
		if d.Extern {
			s += "extern "
		}
		return s + "fn" + p.fnDecl(d.Decl)
	case *TupTy:
		elems := make([]string, len(d.Elems))
		for i, e := range d.Elems {
			elems[i] = p.ty(e)
		}
		if len(elems) == 1 {
			return "(" + elems[0] + ",)"
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case *PathTy:
		return p.qpath(d.QPath)
	case *OpaqueDefTy:
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = p.genericArg(a)
		}
		return "opaque(" + p.defs.PathString(d.Item.Def) + ")<" + strings.Join(args, ", ") + ">"
	case *TraitObjectTy:
		parts := make([]string, 0, len(d.Bounds)+1)
		for _, b := range d.Bounds {
			parts = append(parts, p.polyTraitRef(b))
		}
		parts = append(parts, d.Lifetime.Name.String())
		return "dyn " + strings.Join(parts, " + ")
	}
	switch t.Kind {
	case TyNever:
		return "!"
	case TyInfer:
		return "_"
	default:
		return "{type error}"
	}
}

func (p *Printer) qpath(q *QPath) string {
	if q.Kind == QPathTypeRelative {
		return "<" + p.ty(q.SelfTy) + ">::" + p.segment(q.Segment)
	}
	return p.path(q.Path)
}

func (p *Printer) path(path *Path) string {
	segs := make([]string, len(path.Segments))
	for i, s := range path.Segments {
		segs[i] = p.segment(s)
	}
	return strings.Join(segs, "::")
}

func (p *Printer) segment(s *PathSegment) string {
	if s.Args == nil {
		return s.Ident.Name
	}
	a := s.Args
	if a.Parenthesized {
		var inputs []string
		if len(a.Args) == 1 {
			if tup, ok := a.Args[0].Ty.Data.(*TupTy); ok {
				for _, e := range tup.Elems {
					inputs = append(inputs, p.ty(e))
				}
			}
		}
		out := ""
		if len(a.Bindings) == 1 {
			out = " -> " + p.ty(a.Bindings[0].Ty)
		}
		return s.Ident.Name + "(" + strings.Join(inputs, ", ") + ")" + out
	}
	parts := make([]string, 0, len(a.Args)+len(a.Bindings))
	for _, arg := range a.Args {
		parts = append(parts, p.genericArg(arg))
	}
	for _, b := range a.Bindings {
		name := b.Ident.Name
		if b.GenArgs != nil {
			name += "<...>"
		}
		if b.Kind == BindingEquality {
			parts = append(parts, name+" = "+p.ty(b.Ty))
		} else {
			parts = append(parts, name+": "+p.bounds(b.Bounds))
		}
	}
	if len(parts) == 0 {
		return s.Ident.Name
	}
	return s.Ident.Name + "<" + strings.Join(parts, ", ") + ">"
}

func (p *Printer) genericArg(a *GenericArg) string {
	switch a.Kind {
	case ArgLifetime:
		return a.Lifetime.Name.String()
	case ArgType:
		return p.ty(a.Ty)
	default:
		return p.anonConst(a.Const)
	}
}

func (p *Printer) anonConst(c *AnonConst) string {
	if c == nil {
		return "_"
	}
	b := p.c.Body(c.Body)
	if b == nil {
		return "{const}"
	}
	return "{" + p.expr(b.Value) + "}"
}

func (p *Printer) bodyString(b *Body) string {
	var s string
	if len(b.Params) > 0 {
		params := make([]string, len(b.Params))
		for i, prm := range b.Params {
			params[i] = p.pat(prm.Pat)
		}
		s = "|" + strings.Join(params, ", ") + "| "
	}
	return s + p.expr(b.Value)
}

func (p *Printer) pat(pt *Pat) string {
	switch pt.Kind {
	case PatBinding:
		s := pt.Ident.Name
		if pt.Mut {
			s = "mut " + s
		}
		if pt.ByRef {
			s = "ref " + s
		}
		return s
	case PatTuple:
		elems := make([]string, len(pt.Elems))
		for i, e := range pt.Elems {
			elems[i] = p.pat(e)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	default:
		return "_"
	}
}

func (p *Printer) exprs(es []*Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = p.expr(e)
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) expr(e *Expr) string {
	if e == nil {
		return ""
	}
	switch d := e.Data.(type) {
	case *LitExpr:
		return d.Text
	case *PathExpr:
		return p.qpath(d.QPath)
	case *CallExpr:
		return p.expr(d.Callee) + "(" + p.exprs(d.Args) + ")"
	case *UnaryExpr:
		return d.Op + p.expr(d.X)
	case *BinaryExpr:
		return p.expr(d.X) + " " + d.Op + " " + p.expr(d.Y)
	case *FieldExpr:
		return p.expr(d.X) + "." + d.Ident.Name
	case *BlockExpr:
		return p.block(d.Block)
	case *ClosureExpr:
		b := p.c.Body(d.Body)
		if b == nil {
			return "async {?}"
		}
		return "async move " + p.expr(b.Value)
	case *AwaitExpr:
		return p.expr(d.X) + ".await"
	case *CastExpr:
		return p.expr(d.X) + " as " + p.ty(d.Ty)
	case *RetExpr:
		if d.X == nil {
			return "return"
		}
		return "return " + p.expr(d.X)
	case *TupExpr:
		if len(d.Elems) == 1 {
			return "(" + p.expr(d.Elems[0]) + ",)"
		}
		return "(" + p.exprs(d.Elems) + ")"
	case *ArrayExpr:
		return "[" + p.exprs(d.Elems) + "]"
	case *RepeatExpr:
		return "[" + p.expr(d.Elem) + "; " + p.anonConst(d.Count) + "]"
	}
	return "{expr error}"
}

func (p *Printer) block(b *Block) string {
	parts := make([]string, 0, len(b.Stmts)+1)
	for _, s := range b.Stmts {
		switch s.Kind {
		case StmtLocal:
			l := s.Local
			str := "let " + p.pat(l.Pat)
			if l.Ty != nil {
				str += ": " + p.ty(l.Ty)
			}
			if l.Init != nil {
				str += " = " + p.expr(l.Init)
			}
			parts = append(parts, str+";")
		case StmtItem:
			parts = append(parts, "item "+p.defs.PathString(s.Item.Def)+";")
		case StmtSemi:
			parts = append(parts, p.expr(s.Expr)+";")
		case StmtExpr:
			parts = append(parts, p.expr(s.Expr))
		}
	}
	if b.Expr != nil {
		parts = append(parts, p.expr(b.Expr))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, " ") + " }"
}
