package netlist_test

import (
	"slices"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
)

func TestCreateModule(t *testing.T) {
	b := netlisttest.Pipeline(t)
	nl := b.NL
	top := nl.TopModule()

	alu, err := nl.CreateModule("alu", top, b.G("g1"), b.G("g2"))
	if err != nil {
		t.Fatal(err)
	}
	if alu.Parent() != top.ID() || alu.IsTop() {
		t.Errorf("Parent() = %d, want top", alu.Parent())
	}
	if got := alu.Gates(); !slices.Equal(got, []netlist.GateID{1, 2}) {
		t.Errorf("alu.Gates() = %v, want [1 2]", got)
	}
	if got := top.Gates(); !slices.Equal(got, []netlist.GateID{3, 4}) {
		t.Errorf("top.Gates() = %v, want [3 4]", got)
	}
	if b.G("g1").Module() != alu.ID() {
		t.Error("gate module not updated")
	}
	if got := top.Submodules(); !slices.Equal(got, []netlist.ModuleID{alu.ID()}) {
		t.Errorf("top.Submodules() = %v", got)
	}

	if _, err := nl.CreateModule("orphan", nil); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("CreateModule(nil parent) error = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := nl.CreateModuleWithID(alu.ID(), "dup", top); !errors.Is(err, errors.ErrCodeIDInUse) {
		t.Errorf("CreateModuleWithID(dup) error = %v, want ID_IN_USE", err)
	}
	if _, err := nl.CreateModuleWithID(netlist.TopModuleID, "dup", top); !errors.Is(err, errors.ErrCodeIDInUse) {
		t.Errorf("CreateModuleWithID(1) error = %v, want ID_IN_USE", err)
	}
}

func TestDeleteModule(t *testing.T) {
	b := netlisttest.Pipeline(t)
	nl := b.NL
	top := nl.TopModule()
	outer, _ := nl.CreateModule("outer", top, b.G("g1"))
	inner, _ := nl.CreateModule("inner", outer, b.G("g2"))

	if err := nl.DeleteModule(top); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("DeleteModule(top) error = %v, want INVALID_ARGUMENT", err)
	}
	if err := nl.DeleteModule(outer); err != nil {
		t.Fatal(err)
	}
	if nl.ContainsModule(outer) {
		t.Error("module still registered")
	}
	if b.G("g1").Module() != top.ID() {
		t.Error("gate of deleted module not moved to parent")
	}
	if inner.Parent() != top.ID() || !slices.Contains(top.Submodules(), inner.ID()) {
		t.Error("submodule of deleted module not moved to parent")
	}
	if b.G("g2").Module() != inner.ID() {
		t.Error("gates of the moved submodule changed owner")
	}
}

func TestRemoveGateFromModule(t *testing.T) {
	b := netlisttest.Pipeline(t)
	nl := b.NL
	m, _ := nl.CreateModule("m", nl.TopModule(), b.G("g1"))

	if err := nl.RemoveGateFromModule(m, b.G("g2")); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("removing a foreign member error = %v, want INVALID_ARGUMENT", err)
	}
	if err := nl.RemoveGateFromModule(nl.TopModule(), b.G("g2")); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("removing from top error = %v, want INVALID_ARGUMENT", err)
	}
	if err := nl.RemoveGateFromModule(m, b.G("g1")); err != nil {
		t.Fatal(err)
	}
	if b.G("g1").Module() != netlist.TopModuleID || len(m.Gates()) != 0 {
		t.Error("gate not handed back to the top module")
	}

	if err := nl.AssignGate(m, b.G("g3")); err != nil {
		t.Fatal(err)
	}
	if !nl.ModuleContainsGate(m, b.G("g3"), false) {
		t.Error("AssignGate did not move the gate")
	}
}

func TestSetParentModule(t *testing.T) {
	nl := netlisttest.New(t).NL
	top := nl.TopModule()
	a, _ := nl.CreateModule("a", top)
	b, _ := nl.CreateModule("b", a)
	c, _ := nl.CreateModule("c", top)

	tests := []struct {
		name      string
		m, parent *netlist.Module
	}{
		{"self", a, a},
		{"top", top, a},
		{"nil", a, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := nl.SetParentModule(tt.m, tt.parent); !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("SetParentModule error = %v, want INVALID_ARGUMENT", err)
			}
		})
	}

	if err := nl.SetParentModule(c, b); err != nil {
		t.Fatal(err)
	}
	if c.Parent() != b.ID() || !nl.ModuleContainsModule(top, c, true) || nl.ModuleContainsModule(top, c, false) {
		t.Error("c not moved below b")
	}

	// b lies below a, so b is lifted to a's parent before a moves below it.
	if err := nl.SetParentModule(a, b); err != nil {
		t.Fatal(err)
	}
	if b.Parent() != top.ID() || a.Parent() != b.ID() {
		t.Errorf("parents = b:%d a:%d, want b:top a:b", b.Parent(), a.Parent())
	}
	if nl.ModuleContainsModule(a, b, true) {
		t.Error("hierarchy contains a cycle")
	}
}

func TestModuleContainsGate(t *testing.T) {
	b := netlisttest.Pipeline(t)
	nl := b.NL
	top := nl.TopModule()
	outer, _ := nl.CreateModule("outer", top)
	inner, _ := nl.CreateModule("inner", outer, b.G("g3"))
	g3 := b.G("g3")

	tests := []struct {
		m         *netlist.Module
		recursive bool
		want      bool
	}{
		{inner, false, true},
		{outer, false, false},
		{outer, true, true},
		{top, false, false},
		{top, true, true},
	}
	for _, tt := range tests {
		if got := nl.ModuleContainsGate(tt.m, g3, tt.recursive); got != tt.want {
			t.Errorf("ModuleContainsGate(%s, g3, %v) = %v, want %v", tt.m.Name(), tt.recursive, got, tt.want)
		}
	}
	if nl.ModuleContainsModule(inner, inner, true) {
		t.Error("a module does not contain itself")
	}
	if got := len(nl.Modules()); got != 3 {
		t.Errorf("len(Modules()) = %d, want 3", got)
	}
}
