package hir

import (
	"ferrule/internal/ast"
	"ferrule/internal/defs"
	"ferrule/internal/source"
)

// GeneratorKind marks bodies that were produced by async desugaring.
type GeneratorKind uint8

const (
	GenNone GeneratorKind = iota
	// GenAsyncFn is the body of the async block wrapping an async fn body.
	GenAsyncFn
	// GenAsyncBlock is the body of a user-written `async { }`.
	GenAsyncBlock
)

func (k GeneratorKind) String() string {
	switch k {
	case GenAsyncFn:
		return "async fn body"
	case GenAsyncBlock:
		return "async block"
	default:
		return "none"
	}
}

type Body struct {
	Params    []*Param
	Value     *Expr
	Generator GeneratorKind
}

// ID returns the id the body is referenced by.
func (b *Body) ID() BodyID { return BodyID{HirID: b.Value.HirID} }

type Param struct {
	HirID HirID
	Pat   *Pat
	Span  source.Span
}

type AnonConst struct {
	HirID HirID
	DefID defs.LocalDefID
	Body  BodyID
}

type PatKind uint8

const (
	PatWild PatKind = iota
	PatBinding
	PatTuple
)

type Pat struct {
	HirID HirID
	Kind  PatKind
	Ident Ident
	ByRef bool
	Mut   bool
	Elems []*Pat
	Span  source.Span
}

type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprPath
	ExprCall
	ExprUnary
	ExprBinary
	ExprField
	ExprBlock
	// ExprClosure is a desugared async block.
	ExprClosure
	ExprAwait
	ExprCast
	ExprRet
	ExprTup
	ExprArray
	ExprRepeat
	ExprErr
)

var exprKindNames = [...]string{
	ExprLit:     "Lit",
	ExprPath:    "Path",
	ExprCall:    "Call",
	ExprUnary:   "Unary",
	ExprBinary:  "Binary",
	ExprField:   "Field",
	ExprBlock:   "Block",
	ExprClosure: "Closure",
	ExprAwait:   "Await",
	ExprCast:    "Cast",
	ExprRet:     "Ret",
	ExprTup:     "Tup",
	ExprArray:   "Array",
	ExprRepeat:  "Repeat",
	ExprErr:     "Err",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Expr?"
}

type Expr struct {
	HirID HirID
	Kind  ExprKind
	Span  source.Span
	Data  ExprData // nil for ExprErr
}

type ExprData interface{ exprData() }

type LitExpr struct {
	Kind ast.LitKind
	Text string
}

type PathExpr struct{ QPath *QPath }

type CallExpr struct {
	Callee *Expr
	Args   []*Expr
}

type UnaryExpr struct {
	Op string
	X  *Expr
}

type BinaryExpr struct {
	Op   string
	X, Y *Expr
}

type FieldExpr struct {
	X     *Expr
	Ident Ident
}

type BlockExpr struct{ Block *Block }

// ClosureExpr is a generator closure; Def is its closure definition.
type ClosureExpr struct {
	Def       defs.LocalDefID
	Body      BodyID
	Generator GeneratorKind
}

type AwaitExpr struct{ X *Expr }

type CastExpr struct {
	X  *Expr
	Ty *Ty
}

type RetExpr struct{ X *Expr }

type TupExpr struct{ Elems []*Expr }

type ArrayExpr struct{ Elems []*Expr }

type RepeatExpr struct {
	Elem  *Expr
	Count *AnonConst
}

func (*LitExpr) exprData()     {}
func (*PathExpr) exprData()    {}
func (*CallExpr) exprData()    {}
func (*UnaryExpr) exprData()   {}
func (*BinaryExpr) exprData()  {}
func (*FieldExpr) exprData()   {}
func (*BlockExpr) exprData()   {}
func (*ClosureExpr) exprData() {}
func (*AwaitExpr) exprData()   {}
func (*CastExpr) exprData()    {}
func (*RetExpr) exprData()     {}
func (*TupExpr) exprData()     {}
func (*ArrayExpr) exprData()   {}
func (*RepeatExpr) exprData()  {}

type Block struct {
	HirID HirID
	Stmts []*Stmt
	// Expr is the trailing expression without `;`.
	Expr *Expr
	Span source.Span
}

type StmtKind uint8

const (
	StmtLocal StmtKind = iota
	StmtItem
	StmtExpr
	StmtSemi
)

type Stmt struct {
	HirID HirID
	Kind  StmtKind
	Local *Local
	Item  ItemID
	Expr  *Expr
	Span  source.Span
}

type Local struct {
	HirID HirID
	Pat   *Pat
	Ty    *Ty
	Init  *Expr
	Span  source.Span
}
