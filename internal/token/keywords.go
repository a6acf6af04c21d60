package token

var keywords = map[string]Kind{
	"fn":     KwFn,
	"let":    KwLet,
	"const":  KwConst,
	"mut":    KwMut,
	"type":   KwType,
	"struct": KwStruct,
	"trait":  KwTrait,
	"impl":   KwImpl,
	"mod":    KwMod,
	"async":  KwAsync,
	"await":  KwAwait,
	"dyn":    KwDyn,
	"for":    KwFor,
	"where":  KwWhere,
	"return": KwReturn,
	"pub":    KwPub,
	"self":   KwSelfValue,
	"Self":   KwSelfType,
	"as":     KwAs,
	"true":   KwTrue,
	"false":  KwFalse,
	"unsafe": KwUnsafe,
	"extern": KwExtern,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
