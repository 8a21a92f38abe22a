package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/gatewalk/pkg/netlist"
)

type document struct {
	Name    string   `json:"name,omitempty"`
	Library string   `json:"library,omitempty"`
	Gates   []gate   `json:"gates"`
	Nets    []net    `json:"nets"`
	Modules []module `json:"modules,omitempty"`
}

type gate struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Module uint32 `json:"module,omitempty"`
	Role   string `json:"role,omitempty"`
}

type pinRef struct {
	Gate uint32 `json:"gate"`
	Pin  string `json:"pin"`
}

type net struct {
	ID           uint32   `json:"id"`
	Name         string   `json:"name"`
	Sources      []pinRef `json:"sources,omitempty"`
	Destinations []pinRef `json:"destinations,omitempty"`
	GlobalInput  bool     `json:"global_input,omitempty"`
	GlobalOutput bool     `json:"global_output,omitempty"`
}

type module struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Parent uint32 `json:"parent"`
}

const (
	roleVCC = "vcc"
	roleGND = "gnd"
)

// WriteJSON encodes nl as indented JSON. Gates, nets and modules are written
// in id order; modules additionally list parents before children.
func WriteJSON(nl *netlist.Netlist, w io.Writer) error {
	out := document{
		Name:  nl.Name(),
		Gates: make([]gate, 0, nl.NumGates()),
		Nets:  make([]net, 0, nl.NumNets()),
	}
	if lib := nl.Library(); lib != nil {
		out.Library = lib.Name()
	}

	top := nl.TopModule().ID()
	for _, g := range nl.Gates() {
		gd := gate{ID: uint32(g.ID()), Name: g.Name(), Type: g.Type().Name()}
		if g.Module() != top {
			gd.Module = uint32(g.Module())
		}
		switch {
		case nl.IsVCCGate(g):
			gd.Role = roleVCC
		case nl.IsGNDGate(g):
			gd.Role = roleGND
		}
		out.Gates = append(out.Gates, gd)
	}

	for _, n := range nl.Nets() {
		nd := net{
			ID:           uint32(n.ID()),
			Name:         n.Name(),
			Sources:      pinRefs(n.Sources()),
			Destinations: pinRefs(n.Destinations()),
			GlobalInput:  nl.IsGlobalInputNet(n),
			GlobalOutput: nl.IsGlobalOutputNet(n),
		}
		out.Nets = append(out.Nets, nd)
	}

	var walk func(m *netlist.Module)
	walk = func(m *netlist.Module) {
		for _, id := range m.Submodules() {
			child := nl.Module(id)
			out.Modules = append(out.Modules, module{ID: uint32(child.ID()), Name: child.Name(), Parent: uint32(m.ID())})
			walk(child)
		}
	}
	walk(nl.TopModule())

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func pinRefs(eps []netlist.Endpoint) []pinRef {
	if len(eps) == 0 {
		return nil
	}
	out := make([]pinRef, len(eps))
	for i, ep := range eps {
		out[i] = pinRef{Gate: uint32(ep.Gate), Pin: ep.Pin}
	}
	return out
}

// ExportJSON writes nl to the file at path.
func ExportJSON(nl *netlist.Netlist, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(nl, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
