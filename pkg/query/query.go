// Package query compiles gate filter expressions into traversal filters.
//
// The CLI and the HTTP API take gate selections as text:
//
//	prop(ff) & !type(DFFR)
//	name(~"^ctr_") | module(alu)
//	(type(AND2) | type(OR2)) & !gnd
//
// Predicates:
//
//	type(NAME)       gate type name, case-insensitive
//	prop(PROPERTY)   gate type carries the property (ff, latch, carry, ...)
//	name(NAME)       exact instance name
//	name(~"REGEX")   instance name matches the regular expression
//	id(N)            gate id
//	module(NAME)     gate lies in a module of that name, at any depth
//	vcc, gnd         constant gates
//	all              every gate
//
// Operators, by increasing precedence: | (or), & (and), ! (not). Parentheses
// group. Syntax errors and unknown predicates fail with INVALID_EXPRESSION.
package query

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

var parser = participle.MustBuild[Expression](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse parses expr without resolving it against a netlist.
func Parse(expr string) (*Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New(errors.ErrCodeInvalidExpression, "empty gate filter expression")
	}
	ast, err := parser.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidExpression, err, "parse %q", expr)
	}
	return ast, nil
}

// Compile parses expr and resolves it against nl. Module names are looked up
// once; the returned filter is safe for concurrent use.
func Compile(expr string, nl *netlist.Netlist) (traversal.GateFilter, error) {
	if nl == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "nil netlist")
	}
	ast, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	c := compiler{nl: nl}
	f, err := c.expression(ast)
	if err != nil {
		return nil, errors.Context(err, "compile %q", expr)
	}
	return f, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(expr string, nl *netlist.Netlist) traversal.GateFilter {
	f, err := Compile(expr, nl)
	if err != nil {
		panic(err)
	}
	return f
}

type compiler struct {
	nl *netlist.Netlist
}

func (c compiler) expression(e *Expression) (traversal.GateFilter, error) {
	terms := make([]traversal.GateFilter, len(e.Or))
	for i, t := range e.Or {
		f, err := c.term(t)
		if err != nil {
			return nil, err
		}
		terms[i] = f
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return func(g *netlist.Gate) bool {
		for _, f := range terms {
			if f(g) {
				return true
			}
		}
		return false
	}, nil
}

func (c compiler) term(t *Term) (traversal.GateFilter, error) {
	factors := make([]traversal.GateFilter, len(t.And))
	for i, fa := range t.And {
		f, err := c.factor(fa)
		if err != nil {
			return nil, err
		}
		factors[i] = f
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return func(g *netlist.Gate) bool {
		for _, f := range factors {
			if !f(g) {
				return false
			}
		}
		return true
	}, nil
}

func (c compiler) factor(f *Factor) (traversal.GateFilter, error) {
	if f.Not != nil {
		inner, err := c.factor(f.Not)
		if err != nil {
			return nil, err
		}
		return func(g *netlist.Gate) bool { return !inner(g) }, nil
	}
	return c.primary(f.Primary)
}

func (c compiler) primary(p *Primary) (traversal.GateFilter, error) {
	switch {
	case p.Group != nil:
		return c.expression(p.Group)
	case p.Call != nil:
		return c.call(p.Call)
	}
	switch strings.ToLower(p.Keyword) {
	case "vcc":
		return c.nl.IsVCCGate, nil
	case "gnd":
		return c.nl.IsGNDGate, nil
	case "all":
		return func(*netlist.Gate) bool { return true }, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidExpression, "unknown keyword %q", p.Keyword)
}

func (c compiler) call(call *Call) (traversal.GateFilter, error) {
	arg := call.Arg
	fn := strings.ToLower(call.Func)
	if arg.Regex != nil && fn != "name" {
		return nil, errors.New(errors.ErrCodeInvalidExpression, "%s() does not take a regular expression", fn)
	}

	switch fn {
	case "type":
		name := arg.text()
		return func(g *netlist.Gate) bool { return strings.EqualFold(g.Type().Name(), name) }, nil

	case "prop":
		prop, err := netlist.ParseProperty(strings.ToLower(arg.text()))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidExpression, err, "prop(%s)", arg)
		}
		return func(g *netlist.Gate) bool { return g.HasProperty(prop) }, nil

	case "name":
		if arg.Regex != nil {
			re, err := regexp.Compile(*arg.Regex)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidExpression, err, "name(%s)", arg)
			}
			return func(g *netlist.Gate) bool { return re.MatchString(g.Name()) }, nil
		}
		name := arg.text()
		return func(g *netlist.Gate) bool { return g.Name() == name }, nil

	case "id":
		if arg.Int == nil {
			return nil, errors.New(errors.ErrCodeInvalidExpression, "id() takes an integer, got %s", arg)
		}
		id := netlist.GateID(*arg.Int)
		return func(g *netlist.Gate) bool { return g.ID() == id }, nil

	case "module":
		return c.module(arg.text())
	}
	return nil, errors.New(errors.ErrCodeInvalidExpression, "unknown predicate %s()", call.Func)
}

func (c compiler) module(name string) (traversal.GateFilter, error) {
	var mods []*netlist.Module
	for _, m := range c.nl.Modules() {
		if m.Name() == name {
			mods = append(mods, m)
		}
	}
	if len(mods) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidExpression, "no module named %q", name)
	}
	return func(g *netlist.Gate) bool {
		for _, m := range mods {
			if c.nl.ModuleContainsGate(m, g, true) {
				return true
			}
		}
		return false
	}, nil
}
