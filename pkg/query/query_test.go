package query_test

import (
	"slices"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
	"github.com/matzehuels/gatewalk/pkg/query"
)

func TestCompile(t *testing.T) {
	b := netlisttest.Sequential(t)
	if _, err := b.NL.CreateModule("regs", b.NL.TopModule(), b.G("ff1"), b.G("ff2")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		expr string
		want []string
	}{
		{"prop(ff)", []string{"ff1", "ff2"}},
		{"type(and2)", []string{"and", "out"}},
		{"name(buf)", []string{"buf"}},
		{`name("ff2")`, []string{"ff2"}},
		{`name(~"^ff")`, []string{"ff1", "ff2"}},
		{"id(3)", []string{"buf"}},
		{"vcc | gnd", []string{"gnd", "vcc"}},
		{"module(regs)", []string{"ff1", "ff2"}},
		{"!prop(combinational)", []string{"gnd", "vcc", "ff1", "ff2"}},
		{"prop(combinational) & !type(BUF)", []string{"and", "out"}},
		{"(type(AND2) | type(BUF)) & !name(out)", []string{"buf", "and"}},
		{"!!gnd", []string{"gnd"}},
		{"all & !all", nil},
		{"type(DFFE) | name(and) & id(4)", []string{"and", "ff1", "ff2"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := query.Compile(tt.expr, b.NL)
			if err != nil {
				t.Fatal(err)
			}
			got := netlisttest.Names(b.NL.GatesWhere(f))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Compile(%q) selects %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	b := netlisttest.Sequential(t)
	tests := []string{
		"",
		"prop(",
		"type(DFF) &",
		"prop(flipflop)",
		"colour(red)",
		"id(ff1)",
		`type(~"DFF")`,
		`name(~"[")`,
		"module(nowhere)",
		"register",
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			if _, err := query.Compile(expr, b.NL); !errors.Is(err, errors.ErrCodeInvalidExpression) {
				t.Errorf("Compile(%q) error = %v, want INVALID_EXPRESSION", expr, err)
			}
		})
	}
	if _, err := query.Compile("all", nil); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("nil netlist error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		expr, want string
	}{
		{"prop(ff)&!gnd", "prop(ff) & !gnd"},
		{`( name(~"^a") | id(7) )`, `(name(~"^a") | id(7))`},
		{`type("DFF")`, `type("DFF")`},
	}
	for _, tt := range tests {
		ast, err := query.Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.expr, err)
		}
		if got := ast.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.expr, got, tt.want)
		}
	}
}
