package query

import (
	"strconv"
	"strings"
)

// Expression is a disjunction of terms.
type Expression struct {
	Or []*Term `@@ ( "|" @@ )*`
}

// Term is a conjunction of factors.
type Term struct {
	And []*Factor `@@ ( "&" @@ )*`
}

// Factor is an optionally negated primary.
type Factor struct {
	Not     *Factor  `  "!" @@`
	Primary *Primary `| @@`
}

// Primary is a parenthesised expression, a predicate call or a keyword.
type Primary struct {
	Group   *Expression `  "(" @@ ")"`
	Call    *Call       `| @@`
	Keyword string      `| @Ident`
}

// Call is a predicate applied to one argument, e.g. type(DFF).
type Call struct {
	Func string `@Ident "("`
	Arg  *Arg   `@@ ")"`
}

// Arg is a call argument. A regex is written ~"pattern".
type Arg struct {
	Regex *string `  "~" @String`
	Str   *string `| @String`
	Int   *int    `| @Int`
	Ident *string `| @Ident`
}

func (e *Expression) String() string {
	parts := make([]string, len(e.Or))
	for i, t := range e.Or {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}

func (t *Term) String() string {
	parts := make([]string, len(t.And))
	for i, f := range t.And {
		parts[i] = f.String()
	}
	return strings.Join(parts, " & ")
}

func (f *Factor) String() string {
	if f.Not != nil {
		return "!" + f.Not.String()
	}
	return f.Primary.String()
}

func (p *Primary) String() string {
	switch {
	case p.Group != nil:
		return "(" + p.Group.String() + ")"
	case p.Call != nil:
		return p.Call.Func + "(" + p.Call.Arg.String() + ")"
	}
	return p.Keyword
}

func (a *Arg) String() string {
	switch {
	case a.Regex != nil:
		return "~" + strconv.Quote(*a.Regex)
	case a.Str != nil:
		return strconv.Quote(*a.Str)
	case a.Int != nil:
		return strconv.Itoa(*a.Int)
	case a.Ident != nil:
		return *a.Ident
	}
	return ""
}

// text returns the argument as a plain string.
func (a *Arg) text() string {
	switch {
	case a.Str != nil:
		return *a.Str
	case a.Ident != nil:
		return *a.Ident
	case a.Int != nil:
		return strconv.Itoa(*a.Int)
	case a.Regex != nil:
		return *a.Regex
	}
	return ""
}
