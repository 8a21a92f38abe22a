package traversal

import (
	"slices"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// NetsAtPins returns the distinct nets connected to the given pins of g, in
// pin order. input selects fan-in pins, otherwise fan-out pins are read.
// Unconnected pins are skipped; pins the gate type does not have are an
// error.
func (t *Traversal) NetsAtPins(g *netlist.Gate, pins []string, input bool) ([]*netlist.Net, error) {
	if err := t.checkGate(g); err != nil {
		return nil, errors.Context(err, "NetsAtPins")
	}
	var out []*netlist.Net
	seen := make(map[netlist.NetID]struct{})
	for _, pin := range pins {
		if _, ok := g.Type().Pin(pin); !ok {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"NetsAtPins: gate type %s has no pin %q", g.Type().Name(), pin)
		}
		var id netlist.NetID
		var ok bool
		if input {
			id, ok = g.FanInNet(pin)
		} else {
			id, ok = g.FanOutNet(pin)
		}
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, t.nl.Net(id))
	}
	return out, nil
}

// CommonInputs returns the nets that feed at least threshold of gates,
// sorted by id. A threshold of 0 requires every gate. Nets driven by a vcc or
// gnd gate are ignored.
func (t *Traversal) CommonInputs(gates []*netlist.Gate, threshold int) ([]*netlist.Net, error) {
	const op = "CommonInputs"
	if threshold < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "%s: negative threshold %d", op, threshold)
	}
	for _, g := range gates {
		if err := t.checkGate(g); err != nil {
			return nil, errors.Context(err, "%s", op)
		}
	}
	if threshold == 0 {
		threshold = len(gates)
	}

	counts := make(map[netlist.NetID]int)
	counted := make(gateSet, len(gates))
	for _, g := range gates {
		if counted.has(g.ID()) {
			continue
		}
		counted.add(g.ID())
		for _, id := range g.FanInNets() {
			counts[id]++
		}
	}

	var out []*netlist.Net
	for id, c := range counts {
		if c < threshold {
			continue
		}
		n := t.nl.Net(id)
		if t.drivenByConstant(n) {
			continue
		}
		out = append(out, n)
	}
	sortNets(out)
	return slices.Clip(out), nil
}

func (t *Traversal) drivenByConstant(n *netlist.Net) bool {
	for _, src := range n.Sources() {
		if t.nl.IsConstantGate(t.nl.Gate(src.Gate)) {
			return true
		}
	}
	return false
}
