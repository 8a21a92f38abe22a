// Package netlisttest provides builders and small reference designs for
// tests of packages that operate on netlists.
package netlisttest

import (
	"slices"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/library"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// Builder creates gates and nets by name over the default library and fails
// the test on the first error.
type Builder struct {
	t     testing.TB
	NL    *netlist.Netlist
	gates map[string]*netlist.Gate
	nets  map[string]*netlist.Net
}

// New returns a builder over an empty netlist.
func New(t testing.TB) *Builder {
	t.Helper()
	return &Builder{
		t:     t,
		NL:    netlist.New(library.Default(), netlist.WithName(t.Name())),
		gates: make(map[string]*netlist.Gate),
		nets:  make(map[string]*netlist.Net),
	}
}

// Gate creates a gate of the named library type.
func (b *Builder) Gate(name, typ string) *netlist.Gate {
	b.t.Helper()
	gt, ok := b.NL.Library().GateType(typ)
	if !ok {
		b.t.Fatalf("unknown gate type %q", typ)
	}
	g, err := b.NL.CreateGate(gt, name)
	if err != nil {
		b.t.Fatalf("CreateGate(%s): %v", name, err)
	}
	b.gates[name] = g
	return g
}

// Gates creates one gate of type typ per name.
func (b *Builder) Gates(typ string, names ...string) []*netlist.Gate {
	b.t.Helper()
	out := make([]*netlist.Gate, 0, len(names))
	for _, name := range names {
		out = append(out, b.Gate(name, typ))
	}
	return out
}

// G returns a previously created gate.
func (b *Builder) G(name string) *netlist.Gate {
	b.t.Helper()
	g, ok := b.gates[name]
	if !ok {
		b.t.Fatalf("no gate named %q", name)
	}
	return g
}

// Connect wires src.srcPin to dst.dstPin, reusing the net already driven by
// src.srcPin.
func (b *Builder) Connect(src, srcPin, dst, dstPin string) *netlist.Net {
	b.t.Helper()
	n, err := b.NL.Connect(b.G(src), srcPin, b.G(dst), dstPin)
	if err != nil {
		b.t.Fatalf("Connect(%s.%s -> %s.%s): %v", src, srcPin, dst, dstPin, err)
	}
	b.nets[n.Name()] = n
	return n
}

// Net creates an unconnected net.
func (b *Builder) Net(name string) *netlist.Net {
	b.t.Helper()
	n, err := b.NL.CreateNet(name)
	if err != nil {
		b.t.Fatalf("CreateNet(%s): %v", name, err)
	}
	b.nets[name] = n
	return n
}

// N returns a net created by [Builder.Net] or [Builder.Connect].
func (b *Builder) N(name string) *netlist.Net {
	b.t.Helper()
	n, ok := b.nets[name]
	if !ok {
		b.t.Fatalf("no net named %q", name)
	}
	return n
}

// Source attaches gate.pin as a driver of net.
func (b *Builder) Source(net, gate, pin string) {
	b.t.Helper()
	if _, err := b.NL.AddSource(b.N(net), b.G(gate), pin); err != nil {
		b.t.Fatalf("AddSource(%s, %s.%s): %v", net, gate, pin, err)
	}
}

// Destination attaches gate.pin as a sink of net.
func (b *Builder) Destination(net, gate, pin string) {
	b.t.Helper()
	if _, err := b.NL.AddDestination(b.N(net), b.G(gate), pin); err != nil {
		b.t.Fatalf("AddDestination(%s, %s.%s): %v", net, gate, pin, err)
	}
}

// GlobalInput creates a net marked as global input that drives gate.pin.
func (b *Builder) GlobalInput(net, gate, pin string) *netlist.Net {
	b.t.Helper()
	n := b.Net(net)
	b.Destination(net, gate, pin)
	if err := b.NL.MarkGlobalInputNet(n); err != nil {
		b.t.Fatal(err)
	}
	return n
}

// GlobalOutput creates a net marked as global output driven by gate.pin.
func (b *Builder) GlobalOutput(net, gate, pin string) *netlist.Net {
	b.t.Helper()
	n := b.Net(net)
	b.Source(net, gate, pin)
	if err := b.NL.MarkGlobalOutputNet(n); err != nil {
		b.t.Fatal(err)
	}
	return n
}

// Names returns the instance names of gates in order.
func Names(gates []*netlist.Gate) []string {
	out := make([]string, len(gates))
	for i, g := range gates {
		out[i] = g.Name()
	}
	return out
}

// SortedNames returns the instance names of gates sorted alphabetically.
func SortedNames(gates []*netlist.Gate) []string {
	out := Names(gates)
	slices.Sort(out)
	return out
}

// IDs returns the ids of gates in order.
func IDs(gates []*netlist.Gate) []netlist.GateID {
	out := make([]netlist.GateID, len(gates))
	for i, g := range gates {
		out[i] = g.ID()
	}
	return out
}
