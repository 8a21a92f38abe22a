package abstraction

import (
	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

// Decorator answers search queries purely from the adjacency of an
// [Abstraction]; the netlist is only used to resolve result gates.
type Decorator struct {
	a *Abstraction
}

// NewDecorator wraps a.
func NewDecorator(a *Abstraction) *Decorator { return &Decorator{a: a} }

// Abstraction returns the wrapped abstraction.
func (d *Decorator) Abstraction() *Abstraction { return d.a }

// SearchOption tunes decorator queries.
type SearchOption func(*searchConfig)

type searchConfig struct {
	exit               traversal.EndpointFilter
	entry              traversal.EndpointFilter
	undirected         bool
	continueOnMatch    bool
	continueOnMismatch bool
}

// ExitFilter skips exit endpoints for which f is false.
func ExitFilter(f traversal.EndpointFilter) SearchOption {
	return func(c *searchConfig) { c.exit = f }
}

// EntryFilter skips entered endpoints for which f is false.
func EntryFilter(f traversal.EndpointFilter) SearchOption {
	return func(c *searchConfig) { c.entry = f }
}

// Undirected follows successors and predecessors alike.
func Undirected() SearchOption {
	return func(c *searchConfig) { c.undirected = true }
}

// ContinueOnMatch keeps expanding past matching gates.
func ContinueOnMatch() SearchOption {
	return func(c *searchConfig) { c.continueOnMatch = true }
}

// ContinueOnMismatch keeps expanding past non-matching gates in the "until"
// queries.
func ContinueOnMismatch() SearchOption {
	return func(c *searchConfig) { c.continueOnMismatch = true }
}

func newSearchConfig(opts []SearchOption) searchConfig {
	var c searchConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *searchConfig) exitOK(ep netlist.Endpoint, depth int) bool {
	return c.exit == nil || c.exit(ep, depth)
}

func (c *searchConfig) entryOK(ep netlist.Endpoint, depth int) bool {
	return c.entry == nil || c.entry(ep, depth)
}

// =============================================================================
// Shortest path distance
// =============================================================================

// ShortestPathDistance counts the hops from start to the nearest endpoint
// satisfying target. If start does not lie on the side dir leaves through
// (a source for [netlist.Output], a destination for [netlist.Input]) the
// search starts from all matching endpoints of its gate instead.
// [netlist.Inout] runs both searches and returns the smaller distance.
//
// A distance of 0 means a start endpoint matched before any hop. ok is false
// when no endpoint matches. Other directions fail with
// UNSUPPORTED_DIRECTION.
func (d *Decorator) ShortestPathDistance(start netlist.Endpoint, target traversal.EndpointTarget, dir netlist.PinDirection, opts ...SearchOption) (int, bool, error) {
	return d.distance(&start, start.Gate, target, dir, opts)
}

// GateShortestPathDistance starts from the fan-out ([netlist.Output]) or
// fan-in ([netlist.Input]) endpoints of g.
func (d *Decorator) GateShortestPathDistance(g *netlist.Gate, target traversal.EndpointTarget, dir netlist.PinDirection, opts ...SearchOption) (int, bool, error) {
	if g == nil {
		return 0, false, errors.New(errors.ErrCodeInvalidArgument, "nil gate given as start")
	}
	return d.distance(nil, g.ID(), target, dir, opts)
}

// ShortestPathDistanceToGate counts the hops from start to any endpoint of
// end.
func (d *Decorator) ShortestPathDistanceToGate(start, end *netlist.Gate, dir netlist.PinDirection, opts ...SearchOption) (int, bool, error) {
	if end == nil {
		return 0, false, errors.New(errors.ErrCodeInvalidArgument, "nil target gate")
	}
	id := end.ID()
	return d.GateShortestPathDistance(start, func(ep netlist.Endpoint) bool { return ep.Gate == id }, dir, opts...)
}

func (d *Decorator) distance(start *netlist.Endpoint, gate netlist.GateID, target traversal.EndpointTarget, dir netlist.PinDirection, opts []SearchOption) (int, bool, error) {
	if target == nil {
		return 0, false, errors.New(errors.ErrCodeInvalidArgument, "shortest path distance requires a target filter")
	}
	cfg := newSearchConfig(opts)
	switch dir {
	case netlist.Output, netlist.Input:
		starts, err := d.startEndpoints(start, gate, dir)
		if err != nil {
			return 0, false, err
		}
		return d.directedDistance(starts, target, dir, &cfg)
	case netlist.Inout:
		bd, bok, err := d.distance(start, gate, target, netlist.Input, opts)
		if err != nil {
			return 0, false, err
		}
		fd, fok, err := d.distance(start, gate, target, netlist.Output, opts)
		if err != nil {
			return 0, false, err
		}
		switch {
		case bok && fok:
			return min(bd, fd), true, nil
		case bok:
			return bd, true, nil
		default:
			return fd, fok, nil
		}
	}
	return 0, false, errors.New(errors.ErrCodeUnsupportedDirection,
		"cannot compute shortest path distance: pin direction %s is not supported", dir)
}

// startEndpoints resolves the exit endpoints a search in dir starts from.
func (d *Decorator) startEndpoints(start *netlist.Endpoint, gate netlist.GateID, dir netlist.PinDirection) ([]netlist.Endpoint, error) {
	if start != nil && start.Direction == dir {
		return []netlist.Endpoint{*start}, nil
	}
	eps, ok := d.a.exitEndpoints(gate, dir)
	if !ok {
		return nil, errors.New(errors.ErrCodeLookupMiss, "gate %d is not covered by the abstraction", gate)
	}
	return eps, nil
}

func (d *Decorator) neighbours(ep netlist.Endpoint, dir netlist.PinDirection) ([]netlist.Endpoint, error) {
	if dir == netlist.Output {
		return lookup(d.a.successors, ep, "successors")
	}
	return lookup(d.a.predecessors, ep, "predecessors")
}

func (d *Decorator) directedDistance(starts []netlist.Endpoint, target traversal.EndpointTarget, dir netlist.PinDirection, cfg *searchConfig) (int, bool, error) {
	var current []netlist.Endpoint
	for _, ep := range starts {
		if !cfg.exitOK(ep, 0) {
			continue
		}
		if target(ep) {
			return 0, true, nil
		}
		current = append(current, ep)
	}

	visited := make(map[netlist.EndpointKey]struct{})
	for dist := 1; len(current) > 0; dist++ {
		var next []netlist.Endpoint
		for _, exit := range current {
			entries, err := d.neighbours(exit, dir)
			if err != nil {
				return 0, false, err
			}
			for _, entry := range entries {
				if !cfg.entryOK(entry, dist) {
					continue
				}
				if target(entry) {
					return dist, true, nil
				}
				outs, ok := d.a.exitEndpoints(entry.Gate, dir)
				if !ok {
					return 0, false, errors.New(errors.ErrCodeLookupMiss, "gate %d is not covered by the abstraction", entry.Gate)
				}
				for _, out := range outs {
					if _, seen := visited[out.Key()]; seen {
						continue
					}
					visited[out.Key()] = struct{}{}
					if !cfg.exitOK(out, dist) {
						continue
					}
					if target(out) {
						return dist, true, nil
					}
					next = append(next, out)
				}
			}
		}
		current = next
	}
	return 0, false, nil
}

// =============================================================================
// Next matching gates
// =============================================================================

// NextMatchingGates walks the abstraction from ep and returns the gates that
// satisfy target, passing through gates that do not. A matching gate ends its
// branch unless [ContinueOnMatch] is given. dir must be [netlist.Output] or
// [netlist.Input].
func (d *Decorator) NextMatchingGates(ep netlist.Endpoint, target traversal.GateFilter, dir netlist.PinDirection, opts ...SearchOption) ([]*netlist.Gate, error) {
	return d.nextMatching(&ep, ep.Gate, target, dir, false, opts)
}

// GateNextMatchingGates is [Decorator.NextMatchingGates] starting from all
// exit endpoints of g.
func (d *Decorator) GateNextMatchingGates(g *netlist.Gate, target traversal.GateFilter, dir netlist.PinDirection, opts ...SearchOption) ([]*netlist.Gate, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "nil gate given as start")
	}
	return d.nextMatching(nil, g.ID(), target, dir, false, opts)
}

// NextMatchingGatesUntil walks the abstraction from ep and returns the gates
// that satisfy target, expanding through them. A gate that fails target ends
// its branch unless [ContinueOnMismatch] is given.
func (d *Decorator) NextMatchingGatesUntil(ep netlist.Endpoint, target traversal.GateFilter, dir netlist.PinDirection, opts ...SearchOption) ([]*netlist.Gate, error) {
	return d.nextMatching(&ep, ep.Gate, target, dir, true, opts)
}

// GateNextMatchingGatesUntil is [Decorator.NextMatchingGatesUntil] starting
// from all exit endpoints of g.
func (d *Decorator) GateNextMatchingGatesUntil(g *netlist.Gate, target traversal.GateFilter, dir netlist.PinDirection, opts ...SearchOption) ([]*netlist.Gate, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "nil gate given as start")
	}
	return d.nextMatching(nil, g.ID(), target, dir, true, opts)
}

func (d *Decorator) nextMatching(start *netlist.Endpoint, gate netlist.GateID, target traversal.GateFilter, dir netlist.PinDirection, until bool, opts []SearchOption) ([]*netlist.Gate, error) {
	if target == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "next matching gates requires a target gate filter")
	}
	if dir != netlist.Output && dir != netlist.Input {
		return nil, errors.New(errors.ErrCodeUnsupportedDirection,
			"cannot get next matching gates: pin direction %s is not supported", dir)
	}
	cfg := newSearchConfig(opts)

	var starts []netlist.Endpoint
	switch {
	case start != nil && (cfg.undirected || start.Direction == dir):
		starts = []netlist.Endpoint{*start}
	default:
		eps, err := d.gateExits(gate, dir, cfg.undirected)
		if err != nil {
			return nil, err
		}
		starts = eps
	}

	var current []netlist.Endpoint
	for _, ep := range starts {
		if cfg.exitOK(ep, 0) {
			current = append(current, ep)
		}
	}

	found := make(gateSet)
	entered := make(gateSet)
	for depth := 1; len(current) > 0; depth++ {
		var next []netlist.Endpoint
		for _, exit := range current {
			entries, err := d.hop(exit, dir, cfg.undirected)
			if err != nil {
				return nil, err
			}
			for _, entry := range entries {
				if !cfg.entryOK(entry, depth) || entered.has(entry.Gate) {
					continue
				}
				entered.add(entry.Gate)

				g := d.a.nl.Gate(entry.Gate)
				expand := true
				if target(g) {
					found.add(g.ID())
					expand = until || cfg.continueOnMatch
				} else if until {
					expand = cfg.continueOnMismatch
				}
				if !expand {
					continue
				}
				outs, err := d.gateExits(entry.Gate, dir, cfg.undirected)
				if err != nil {
					return nil, err
				}
				for _, out := range outs {
					if cfg.exitOK(out, depth) {
						next = append(next, out)
					}
				}
			}
		}
		current = next
	}
	return found.gates(d.a.nl), nil
}

// gateExits returns the endpoints a walk leaves gate through.
func (d *Decorator) gateExits(gate netlist.GateID, dir netlist.PinDirection, undirected bool) ([]netlist.Endpoint, error) {
	if !undirected {
		eps, ok := d.a.exitEndpoints(gate, dir)
		if !ok {
			return nil, errors.New(errors.ErrCodeLookupMiss, "gate %d is not covered by the abstraction", gate)
		}
		return eps, nil
	}
	out, okOut := d.a.fanOut[gate]
	in, okIn := d.a.fanIn[gate]
	if !okOut || !okIn {
		return nil, errors.New(errors.ErrCodeLookupMiss, "gate %d is not covered by the abstraction", gate)
	}
	return append(append([]netlist.Endpoint(nil), out...), in...), nil
}

// hop returns the endpoints one abstraction edge away from ep. Undirected
// walks follow successors of sources and predecessors of destinations.
func (d *Decorator) hop(ep netlist.Endpoint, dir netlist.PinDirection, undirected bool) ([]netlist.Endpoint, error) {
	if undirected {
		if ep.IsSource() {
			return d.neighbours(ep, netlist.Output)
		}
		return d.neighbours(ep, netlist.Input)
	}
	return d.neighbours(ep, dir)
}
