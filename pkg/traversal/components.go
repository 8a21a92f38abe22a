package traversal

import (
	"time"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// CombinationalSubgraphs partitions the combinational gates into weakly
// connected components.
func (t *Traversal) CombinationalSubgraphs() ([][]*netlist.Gate, error) {
	return t.components("CombinationalSubgraphs", func(g *netlist.Gate) bool {
		return g.HasProperty(netlist.Combinational)
	}, nil)
}

// MatchingSubgraphs partitions the gates that satisfy filter into weakly
// connected components. Two matching gates are connected when a net links
// them directly; paths through non-matching gates do not count. The exit and
// entry filters of opts prune links. Each component is sorted by id and the
// components are ordered by their smallest id.
func (t *Traversal) MatchingSubgraphs(filter GateFilter, opts ...SearchOption) ([][]*netlist.Gate, error) {
	if err := requireGateFilter(filter, "MatchingSubgraphs"); err != nil {
		return nil, err
	}
	return t.components("MatchingSubgraphs", filter, opts)
}

func (t *Traversal) components(op string, filter GateFilter, opts []SearchOption) ([][]*netlist.Gate, error) {
	began := time.Now()
	cfg := newSearchConfig(opts)
	cfg.undirected = true
	cfg.maxDepth = 0
	guard := t.nl.Guard()

	assigned := make(gateSet)
	var out [][]*netlist.Gate
	for _, g := range t.nl.Gates() {
		if assigned.has(g.ID()) || !filter(g) {
			continue
		}
		comp := gateSet{g.ID(): {}}
		w := t.newWalker(Forward, &cfg)
		w.enter = func(_ netlist.Endpoint, nb *netlist.Gate, _ int) bool {
			if !filter(nb) {
				return false
			}
			comp.add(nb.ID())
			return true
		}
		w.start(gateOrigin(g))
		w.run()
		for id := range comp {
			assigned.add(id)
		}
		out = append(out, comp.gates(t.nl))
	}

	if err := guard.Check(); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	t.debug(op, began, len(assigned), len(out))
	return out, nil
}
