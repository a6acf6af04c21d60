package token

// Kind represents the category of a source token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident
	// Lifetime is 'name, including the reserved '_ and 'static.
	Lifetime

	KwFn
	KwLet
	KwConst
	KwMut
	KwType
	KwStruct
	KwTrait
	KwImpl
	KwMod
	KwAsync
	KwAwait
	KwDyn
	KwFor
	KwWhere
	KwReturn
	KwPub
	KwSelfValue // self
	KwSelfType  // Self
	KwAs
	KwTrue
	KwFalse
	KwUnsafe
	KwExtern

	IntLit
	FloatLit
	StringLit

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	Assign     // =
	EqEq       // ==
	Bang       // !
	BangEq     // !=
	Lt         // <
	LtEq       // <=
	Gt         // >
	Amp        // &
	AndAnd     // &&
	Pipe       // |
	OrOr       // ||
	Question   // ?
	Colon      // :
	ColonColon // ::
	Semicolon  // ;
	Comma      // ,
	Dot        // .
	DotDot     // ..
	DotDotDot  // ...
	Arrow      // ->
	FatArrow   // =>
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
	Pound      // #
	Underscore // _
)

var kindNames = map[Kind]string{
	Invalid:    "invalid",
	EOF:        "end of file",
	Ident:      "identifier",
	Lifetime:   "lifetime",
	IntLit:     "integer literal",
	FloatLit:   "float literal",
	StringLit:  "string literal",
	Plus:       "`+`",
	Minus:      "`-`",
	Star:       "`*`",
	Slash:      "`/`",
	Percent:    "`%`",
	Assign:     "`=`",
	EqEq:       "`==`",
	Bang:       "`!`",
	BangEq:     "`!=`",
	Lt:         "`<`",
	LtEq:       "`<=`",
	Gt:         "`>`",
	Amp:        "`&`",
	AndAnd:     "`&&`",
	Pipe:       "`|`",
	OrOr:       "`||`",
	Question:   "`?`",
	Colon:      "`:`",
	ColonColon: "`::`",
	Semicolon:  "`;`",
	Comma:      "`,`",
	Dot:        "`.`",
	DotDot:     "`..`",
	DotDotDot:  "`...`",
	Arrow:      "`->`",
	FatArrow:   "`=>`",
	LParen:     "`(`",
	RParen:     "`)`",
	LBrace:     "`{`",
	RBrace:     "`}`",
	LBracket:   "`[`",
	RBracket:   "`]`",
	Pound:      "`#`",
	Underscore: "`_`",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	for text, kw := range keywords {
		if kw == k {
			return "`" + text + "`"
		}
	}
	return "unknown"
}
