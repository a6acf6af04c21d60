package ast

import "ferrule/internal/source"

type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprPath
	ExprCall
	ExprUnary
	ExprBinary
	ExprField
	ExprBlock
	ExprAsync
	ExprAwait
	ExprCast
	ExprReturn
	ExprTup
	ExprArray
	ExprRepeat
	ExprErr
)

func (k ExprKind) String() string {
	switch k {
	case ExprLit:
		return "Lit"
	case ExprPath:
		return "Path"
	case ExprCall:
		return "Call"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprField:
		return "Field"
	case ExprBlock:
		return "Block"
	case ExprAsync:
		return "Async"
	case ExprAwait:
		return "Await"
	case ExprCast:
		return "Cast"
	case ExprReturn:
		return "Return"
	case ExprTup:
		return "Tup"
	case ExprArray:
		return "Array"
	case ExprRepeat:
		return "Repeat"
	default:
		return "Err"
	}
}

type Expr struct {
	ID    NodeID
	Kind  ExprKind
	Attrs []Attr
	Span  source.Span
	Data  ExprData
}

// ExprData is the kind-specific payload of an Expr.
type ExprData interface {
	exprData()
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitStr
	LitBool
)

type LitExpr struct {
	Kind LitKind
	Text string
}

type PathExpr struct{ Path *Path }

type CallExpr struct {
	Callee *Expr
	Args   []*Expr
}

type UnaryExpr struct {
	Op string // - ! * & &mut
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

// AsyncExpr is `async { ... }`; ClosureID names the desugared generator.
type AsyncExpr struct {
	ClosureID NodeID
	Block     *Block
}

type AwaitExpr struct{ X *Expr }

type CastExpr struct {
	X  *Expr
	Ty *Ty
}

type ReturnExpr struct{ X *Expr }

type TupExpr struct{ Elems []*Expr }

type ArrayExpr struct{ Elems []*Expr }

type RepeatExpr struct {
	Elem  *Expr
	Count *AnonConst
}

func (*LitExpr) exprData()    {}
func (*PathExpr) exprData()   {}
func (*CallExpr) exprData()   {}
func (*UnaryExpr) exprData()  {}
func (*BinaryExpr) exprData() {}
func (*FieldExpr) exprData()  {}
func (*BlockExpr) exprData()  {}
func (*AsyncExpr) exprData()  {}
func (*AwaitExpr) exprData()  {}
func (*CastExpr) exprData()   {}
func (*ReturnExpr) exprData() {}
func (*TupExpr) exprData()    {}
func (*ArrayExpr) exprData()  {}
func (*RepeatExpr) exprData() {}

type Block struct {
	ID    NodeID
	Stmts []*Stmt
	Span  source.Span
}

type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtItem
	StmtExpr // trailing expression without `;`
	StmtSemi
	StmtEmpty
)

type Stmt struct {
	ID    NodeID
	Kind  StmtKind
	Local *Local
	Item  *Item
	Expr  *Expr
	Span  source.Span
}

type Local struct {
	ID    NodeID
	Pat   *Pat
	Ty    *Ty
	Init  *Expr
	Attrs []Attr
	Span  source.Span
}

type PatKind uint8

const (
	PatWild PatKind = iota
	PatIdent
	PatTuple
)

type Pat struct {
	ID    NodeID
	Kind  PatKind
	Ident Ident
	ByRef bool
	Mut   bool
	Elems []*Pat
	Span  source.Span
}
