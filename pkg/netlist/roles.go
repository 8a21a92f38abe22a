package netlist

import (
	"maps"
	"slices"
)

// Global roles are kept as sets on the Netlist, not as flags on the entities,
// so deletion can clear them in one place.

// MarkVCCGate marks g as a constant-one driver.
func (nl *Netlist) MarkVCCGate(g *Gate) error { return nl.markGate(nl.vcc, g) }

// UnmarkVCCGate clears the vcc role of g.
func (nl *Netlist) UnmarkVCCGate(g *Gate) error { return nl.unmarkGate(nl.vcc, g) }

// IsVCCGate reports whether g is marked as a vcc gate.
func (nl *Netlist) IsVCCGate(g *Gate) bool { return g != nil && has(nl.vcc, g.id) }

// VCCGates returns the vcc gates sorted by id.
func (nl *Netlist) VCCGates() []*Gate { return nl.GatesOf(sortedKeys(nl.vcc)) }

// MarkGNDGate marks g as a constant-zero driver.
func (nl *Netlist) MarkGNDGate(g *Gate) error { return nl.markGate(nl.gnd, g) }

// UnmarkGNDGate clears the gnd role of g.
func (nl *Netlist) UnmarkGNDGate(g *Gate) error { return nl.unmarkGate(nl.gnd, g) }

// IsGNDGate reports whether g is marked as a gnd gate.
func (nl *Netlist) IsGNDGate(g *Gate) bool { return g != nil && has(nl.gnd, g.id) }

// GNDGates returns the gnd gates sorted by id.
func (nl *Netlist) GNDGates() []*Gate { return nl.GatesOf(sortedKeys(nl.gnd)) }

// IsConstantGate reports whether g is a vcc or gnd gate.
func (nl *Netlist) IsConstantGate(g *Gate) bool { return nl.IsVCCGate(g) || nl.IsGNDGate(g) }

// MarkGlobalInputNet marks n as a primary input of the design.
func (nl *Netlist) MarkGlobalInputNet(n *Net) error { return nl.markNet(nl.globalIn, n) }

// UnmarkGlobalInputNet clears the global input role of n.
func (nl *Netlist) UnmarkGlobalInputNet(n *Net) error { return nl.unmarkNet(nl.globalIn, n) }

// IsGlobalInputNet reports whether n is a global input net.
func (nl *Netlist) IsGlobalInputNet(n *Net) bool { return n != nil && has(nl.globalIn, n.id) }

// GlobalInputNets returns the global input nets sorted by id.
func (nl *Netlist) GlobalInputNets() []*Net { return nl.netsOf(sortedKeys(nl.globalIn)) }

// MarkGlobalOutputNet marks n as a primary output of the design.
func (nl *Netlist) MarkGlobalOutputNet(n *Net) error { return nl.markNet(nl.globalOut, n) }

// UnmarkGlobalOutputNet clears the global output role of n.
func (nl *Netlist) UnmarkGlobalOutputNet(n *Net) error { return nl.unmarkNet(nl.globalOut, n) }

// IsGlobalOutputNet reports whether n is a global output net.
func (nl *Netlist) IsGlobalOutputNet(n *Net) bool { return n != nil && has(nl.globalOut, n.id) }

// GlobalOutputNets returns the global output nets sorted by id.
func (nl *Netlist) GlobalOutputNets() []*Net { return nl.netsOf(sortedKeys(nl.globalOut)) }

func (nl *Netlist) markGate(set map[GateID]struct{}, g *Gate) error {
	if err := nl.checkGate(g); err != nil {
		return err
	}
	if !has(set, g.id) {
		set[g.id] = struct{}{}
		nl.bump()
	}
	return nil
}

func (nl *Netlist) unmarkGate(set map[GateID]struct{}, g *Gate) error {
	if err := nl.checkGate(g); err != nil {
		return err
	}
	if has(set, g.id) {
		delete(set, g.id)
		nl.bump()
	}
	return nil
}

func (nl *Netlist) markNet(set map[NetID]struct{}, n *Net) error {
	if err := nl.checkNet(n); err != nil {
		return err
	}
	if !has(set, n.id) {
		set[n.id] = struct{}{}
		nl.bump()
	}
	return nil
}

func (nl *Netlist) unmarkNet(set map[NetID]struct{}, n *Net) error {
	if err := nl.checkNet(n); err != nil {
		return err
	}
	if has(set, n.id) {
		delete(set, n.id)
		nl.bump()
	}
	return nil
}

func (nl *Netlist) netsOf(ids []NetID) []*Net {
	out := make([]*Net, 0, len(ids))
	for _, id := range ids {
		if n, ok := nl.nets[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func has[K comparable](set map[K]struct{}, k K) bool {
	_, ok := set[k]
	return ok
}

func sortedKeys[K ~uint32](set map[K]struct{}) []K {
	return slices.Sorted(maps.Keys(set))
}
