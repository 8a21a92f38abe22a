package query

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenises gate filter expressions.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Int", Pattern: `[0-9]+\b`},
	// Gate and module names may carry bus indices and hierarchy separators.
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.$/\[\]]*`},
	{Name: "Punct", Pattern: `[!&|()~]`},
})
