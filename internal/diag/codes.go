package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexBadLifetime              Code = 1005

	// Парсерные
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynExpectIdentifier   Code = 2002
	SynExpectType         Code = 2003
	SynExpectExpression   Code = 2004
	SynExpectSemicolon    Code = 2005
	SynUnclosedDelimiter  Code = 2006
	SynExpectItem         Code = 2007
	SynVariadicMustBeLast Code = 2008
	SynExpectLifetime     Code = 2009

	// Разрешение имён (fixture resolver)
	ResInfo                Code = 3000
	ResUnresolvedName      Code = 3001
	ResUnresolvedLifetime  Code = 3002
	ResAnonRegionForbidden Code = 3003
	ResDuplicateDefinition Code = 3004
	ResSelfOutsideImpl     Code = 3005

	// Lowering
	LowInfo                    Code = 4000
	LowUnderscoreLifetimeParam Code = 4001
	LowImplTraitNotAllowed     Code = 4002
	LowBareTraitObject         Code = 4003
	LowAwaitOutsideAsync       Code = 4004
	LowParenthesizedAssocArgs  Code = 4005
	LowInternalCompilerError   Code = 4099

	// Ошибки I/O
	IOLoadFileError Code = 5001
	IOFixtureError  Code = 5002
	IOConfigError   Code = 5003
	IOCacheError    Code = 5004
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Bad number",
	LexBadLifetime:              "Malformed lifetime",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynExpectIdentifier:         "Expect identifier",
	SynExpectType:               "Expect type",
	SynExpectExpression:         "Expect expression",
	SynExpectSemicolon:          "Expect semicolon",
	SynUnclosedDelimiter:        "Unclosed delimiter",
	SynExpectItem:               "Expect item",
	SynVariadicMustBeLast:       "Variadic parameter must be last",
	SynExpectLifetime:           "Expect lifetime",
	ResInfo:                     "Resolution information",
	ResUnresolvedName:           "Unresolved name",
	ResUnresolvedLifetime:       "Undeclared lifetime",
	ResAnonRegionForbidden:      "Anonymous lifetime not allowed here",
	ResDuplicateDefinition:      "Duplicate definition",
	ResSelfOutsideImpl:          "`Self` outside of an impl",
	LowInfo:                     "Lowering information",
	LowUnderscoreLifetimeParam:  "`'_` cannot be used here",
	LowImplTraitNotAllowed:      "`impl Trait` not allowed here",
	LowBareTraitObject:          "Trait object without `dyn`",
	LowAwaitOutsideAsync:        "`await` outside of an async context",
	LowParenthesizedAssocArgs:   "Parenthesized arguments in associated type constraint",
	LowInternalCompilerError:    "Internal compiler error",
	IOLoadFileError:             "Failed to load file",
	IOFixtureError:              "Malformed fixture",
	IOConfigError:               "Malformed configuration",
	IOCacheError:                "Hash cache error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Spanless reports whether diagnostics with this code carry no source
// position: internal errors and I/O failures.
func (c Code) Spanless() bool {
	return c == LowInternalCompilerError || (c >= IOLoadFileError && c < 6000)
}
