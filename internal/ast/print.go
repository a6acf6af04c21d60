package ast

import "strings"

// TyString renders t back to surface syntax. It is used to name synthetic
// type parameters (`impl Debug + Clone`) and in test failures.
func TyString(t *Ty) string {
	var sb strings.Builder
	writeTy(&sb, t)
	return sb.String()
}

// PathString renders a path with its generic arguments.
func PathString(p *Path) string {
	var sb strings.Builder
	writePath(&sb, p)
	return sb.String()
}

// BoundsString renders a `+`-separated bound list.
func BoundsString(bounds []*GenericBound) string {
	var sb strings.Builder
	writeBounds(&sb, bounds)
	return sb.String()
}

func writeTy(sb *strings.Builder, t *Ty) {
	if t == nil {
		sb.WriteString("()")
		return
	}
	switch d := t.Data.(type) {
	case *SliceTy:
		sb.WriteByte('[')
		writeTy(sb, d.Elem)
		sb.WriteByte(']')
	case *ArrayTy:
		sb.WriteByte('[')
		writeTy(sb, d.Elem)
		sb.WriteString("; ")
		if d.Len != nil {
			writeExpr(sb, d.Len.Value)
		}
		sb.WriteByte(']')
	case *PtrTy:
		if d.Mut {
			sb.WriteString("*mut ")
		} else {
			sb.WriteString("*const ")
		}
		writeTy(sb, d.Elem)
	case *RefTy:
		sb.WriteByte('&')
		if d.Lifetime != nil {
			sb.WriteString(d.Lifetime.Ident.Name)
			sb.WriteByte(' ')
		}
		if d.Mut {
			sb.WriteString("mut ")
		}
		writeTy(sb, d.Elem)
	case *BareFnTy:
		if len(d.GenericParams) > 0 {
			sb.WriteString("for<")
			writeParams(sb, d.GenericParams)
			sb.WriteString("> ")
		}
		if d.Unsafe {
			sb.WriteString("unsafe ")
		}
		if d.Extern {
			sb.WriteString("extern ")
		}
		sb.WriteString("fn")
		writeDecl(sb, d.Decl)
	case *TupTy:
		sb.WriteByte('(')
		for i, e := range d.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTy(sb, e)
		}
		if len(d.Elems) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *PathTy:
		writePath(sb, d.Path)
	case *TraitObjectTy:
		if d.Syntax == TraitObjectDyn {
			sb.WriteString("dyn ")
		}
		writeBounds(sb, d.Bounds)
	case *ImplTraitTy:
		sb.WriteString("impl ")
		writeBounds(sb, d.Bounds)
	case *ParenTy:
		sb.WriteByte('(')
		writeTy(sb, d.Inner)
		sb.WriteByte(')')
	default:
		switch t.Kind {
		case TyInfer:
			sb.WriteByte('_')
		case TyNever:
			sb.WriteByte('!')
		case TyImplicitSelf:
			sb.WriteString("Self")
		case TyCVarArgs:
			sb.WriteString("...")
		default:
			sb.WriteString("{error}")
		}
	}
}

func writeDecl(sb *strings.Builder, decl *FnDecl) {
	sb.WriteByte('(')
	if decl != nil {
		for i, p := range decl.Inputs {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTy(sb, p.Ty)
		}
		sb.WriteByte(')')
		if !decl.Output.IsDefault() {
			sb.WriteString(" -> ")
			writeTy(sb, decl.Output.Ty)
		}
		return
	}
	sb.WriteByte(')')
}

func writePath(sb *strings.Builder, p *Path) {
	if p == nil {
		return
	}
	if p.Global {
		sb.WriteString("::")
	}
	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteString("::")
		}
		sb.WriteString(seg.Ident.Name)
		if seg.Args != nil {
			writeArgs(sb, seg.Args)
		}
	}
}

func writeArgs(sb *strings.Builder, args *GenericArgs) {
	if args.Kind == ArgsParenthesized {
		sb.WriteByte('(')
		for i, in := range args.Inputs {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTy(sb, in)
		}
		sb.WriteByte(')')
		if !args.Output.IsDefault() {
			sb.WriteString(" -> ")
			writeTy(sb, args.Output.Ty)
		}
		return
	}
	sb.WriteByte('<')
	n := 0
	sep := func() {
		if n > 0 {
			sb.WriteString(", ")
		}
		n++
	}
	for _, a := range args.Args {
		sep()
		switch a.Kind {
		case ArgLifetime:
			sb.WriteString(a.Lifetime.Ident.Name)
		case ArgType:
			writeTy(sb, a.Ty)
		case ArgConst:
			sb.WriteByte('{')
			writeExpr(sb, a.Const.Value)
			sb.WriteByte('}')
		}
	}
	for _, c := range args.Constraints {
		sep()
		sb.WriteString(c.Ident.Name)
		if c.Kind == ConstraintEquality {
			sb.WriteString(" = ")
			writeTy(sb, c.Ty)
		} else {
			sb.WriteString(": ")
			writeBounds(sb, c.Bounds)
		}
	}
	sb.WriteByte('>')
}

func writeBounds(sb *strings.Builder, bounds []*GenericBound) {
	for i, b := range bounds {
		if i > 0 {
			sb.WriteString(" + ")
		}
		if b.Kind == BoundOutlives {
			sb.WriteString(b.Lifetime.Ident.Name)
			continue
		}
		if b.Modifier == ModifierMaybe {
			sb.WriteByte('?')
		}
		if len(b.Trait.BoundGenericParams) > 0 {
			sb.WriteString("for<")
			writeParams(sb, b.Trait.BoundGenericParams)
			sb.WriteString("> ")
		}
		writePath(sb, b.Trait.TraitRef.Path)
	}
}

func writeParams(sb *strings.Builder, params []*GenericParam) {
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Kind == ParamConst {
			sb.WriteString("const ")
		}
		sb.WriteString(p.Ident.Name)
		if len(p.Bounds) > 0 {
			sb.WriteString(": ")
			writeBounds(sb, p.Bounds)
		}
	}
}

func writeExpr(sb *strings.Builder, e *Expr) {
	if e == nil {
		return
	}
	switch d := e.Data.(type) {
	case *LitExpr:
		sb.WriteString(d.Text)
	case *PathExpr:
		writePath(sb, d.Path)
	case *UnaryExpr:
		sb.WriteString(d.Op)
		writeExpr(sb, d.X)
	case *BinaryExpr:
		writeExpr(sb, d.X)
		sb.WriteString(" " + d.Op + " ")
		writeExpr(sb, d.Y)
	case *CallExpr:
		writeExpr(sb, d.Callee)
		sb.WriteByte('(')
		for i, a := range d.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, a)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString("..")
	}
}
