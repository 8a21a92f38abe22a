package traversal

import (
	"slices"
	"time"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// SearchOption tunes a filtered search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	exit               EndpointFilter
	entry              EndpointFilter
	continueOnMatch    bool
	continueOnMismatch bool
	undirected         bool
	maxDepth           int
}

// WithExitFilter prunes every branch that leaves a gate through an endpoint
// for which f is false.
func WithExitFilter(f EndpointFilter) SearchOption {
	return func(c *searchConfig) { c.exit = f }
}

// WithEntryFilter prunes every branch that enters a gate through an endpoint
// for which f is false.
func WithEntryFilter(f EndpointFilter) SearchOption {
	return func(c *searchConfig) { c.entry = f }
}

// ContinueOnMatch keeps expanding past gates that satisfy the target.
func ContinueOnMatch() SearchOption {
	return func(c *searchConfig) { c.continueOnMatch = true }
}

// ContinueOnMismatch keeps expanding past gates that fail the target in the
// "until" searches.
func ContinueOnMismatch() SearchOption {
	return func(c *searchConfig) { c.continueOnMismatch = true }
}

// Undirected expands every endpoint of a reached gate, fan-in and fan-out
// alike. Each gate is entered at most once.
func Undirected() SearchOption {
	return func(c *searchConfig) { c.undirected = true }
}

// WithMaxDepth stops expanding gates reached at layer d. Zero means unbounded.
func WithMaxDepth(d int) SearchOption {
	return func(c *searchConfig) { c.maxDepth = d }
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

// origin is the start of a walk, either a gate or a net.
type origin struct {
	isNet bool
	gate  *netlist.Gate
	net   *netlist.Net
}

func gateOrigin(g *netlist.Gate) origin { return origin{gate: g} }
func netOrigin(n *netlist.Net) origin   { return origin{isNet: true, net: n} }

func (t *Traversal) checkOrigin(o origin) error {
	if o.isNet {
		return t.checkNet(o.net)
	}
	return t.checkGate(o.gate)
}

// walker runs one layered breadth-first search. The frontier is a set of
// nets; each layer enters the gates behind the frontier's entry endpoints and
// leaves them through their exit endpoints onto the next layer's nets. A net
// is placed on the frontier at most once, which bounds the walk on cyclic
// designs.
//
// Layer numbering: exit endpoints of a start gate are seen at depth 0,
// endpoints entered from the start nets at depth 1, and exit endpoints of a
// gate entered at depth d at depth d as well.
type walker struct {
	nl  *netlist.Netlist
	dir Direction
	cfg *searchConfig

	// enter is called for each endpoint that passed the entry filter and
	// reports whether the gate behind it is expanded.
	enter func(ep netlist.Endpoint, g *netlist.Gate, depth int) bool
	// leave is called for each exit endpoint that passed the exit filter and
	// reports whether its net is followed. Nil follows every net.
	leave func(ep netlist.Endpoint, depth int) bool

	seenNets  map[netlist.NetID]struct{}
	seenGates gateSet
	next      []netlist.NetID
	visited   int
}

func (t *Traversal) newWalker(dir Direction, cfg *searchConfig) *walker {
	return &walker{
		nl:        t.nl,
		dir:       dir,
		cfg:       cfg,
		seenNets:  make(map[netlist.NetID]struct{}),
		seenGates: make(gateSet),
	}
}

func (w *walker) entryEndpoints(n *netlist.Net) []netlist.Endpoint {
	return entryEndpoints(n, w.dir, w.cfg.undirected)
}

func entryEndpoints(n *netlist.Net, dir Direction, undirected bool) []netlist.Endpoint {
	switch {
	case undirected:
		return append(n.Sources(), n.Destinations()...)
	case dir == Forward:
		return n.Destinations()
	default:
		return n.Sources()
	}
}

func (w *walker) exitEndpoints(g *netlist.Gate) []netlist.Endpoint {
	return exitEndpoints(g, w.dir, w.cfg.undirected)
}

func exitEndpoints(g *netlist.Gate, dir Direction, undirected bool) []netlist.Endpoint {
	switch {
	case undirected:
		return g.Endpoints()
	case dir == Forward:
		return g.FanOutEndpoints()
	default:
		return g.FanInEndpoints()
	}
}

func (w *walker) start(o origin) {
	if o.isNet {
		w.push(o.net.ID())
		return
	}
	w.seenGates.add(o.gate.ID())
	for _, ep := range w.exitEndpoints(o.gate) {
		w.leaveThrough(ep, 0)
	}
}

func (w *walker) leaveThrough(ep netlist.Endpoint, depth int) {
	if !w.cfg.exitOK(ep, depth) {
		return
	}
	if w.leave != nil && !w.leave(ep, depth) {
		return
	}
	w.push(ep.Net)
}

func (w *walker) push(id netlist.NetID) {
	if _, ok := w.seenNets[id]; ok {
		return
	}
	w.seenNets[id] = struct{}{}
	w.next = append(w.next, id)
}

func (w *walker) run() {
	for depth := 1; len(w.next) > 0; depth++ {
		current := w.next
		w.next = nil
		for _, id := range current {
			for _, ep := range w.entryEndpoints(w.nl.Net(id)) {
				if !w.cfg.entryOK(ep, depth) {
					continue
				}
				if w.cfg.undirected {
					if w.seenGates.has(ep.Gate) {
						continue
					}
					w.seenGates.add(ep.Gate)
				}
				g := w.nl.Gate(ep.Gate)
				w.visited++
				if !w.enter(ep, g, depth) {
					continue
				}
				if w.cfg.maxDepth > 0 && depth >= w.cfg.maxDepth {
					continue
				}
				for _, out := range w.exitEndpoints(g) {
					w.leaveThrough(out, depth)
				}
			}
		}
	}
}

// exec validates the start, runs w and verifies that the netlist was not
// modified during the walk.
func (t *Traversal) exec(o origin, dir Direction, w *walker) error {
	if err := dir.check(); err != nil {
		return err
	}
	if err := t.checkOrigin(o); err != nil {
		return err
	}
	guard := t.nl.Guard()
	w.start(o)
	w.run()
	return guard.Check()
}

// gateVisitor decides for a reached gate whether it is recorded and whether
// the walk expands it.
type gateVisitor func(g *netlist.Gate) (record, expand bool)

func (t *Traversal) collectGates(op string, o origin, dir Direction, cfg searchConfig, visit gateVisitor) ([]*netlist.Gate, error) {
	began := time.Now()
	found := make(gateSet)
	w := t.newWalker(dir, &cfg)
	w.enter = func(_ netlist.Endpoint, g *netlist.Gate, _ int) bool {
		record, expand := visit(g)
		if record {
			found.add(g.ID())
		}
		return expand
	}
	if err := t.exec(o, dir, w); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	res := found.gates(t.nl)
	t.debug(op, began, w.visited, len(res))
	return res, nil
}

func requireGateFilter(f GateFilter, what string) error {
	if f == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "%s requires a target gate filter", what)
	}
	return nil
}

// =============================================================================
// Next matching gates
// =============================================================================

// NextMatchingGates walks from g and returns the gates that satisfy target.
// A matching gate ends its branch unless [ContinueOnMatch] is given.
func (t *Traversal) NextMatchingGates(g *netlist.Gate, dir Direction, target GateFilter, opts ...SearchOption) ([]*netlist.Gate, error) {
	return t.nextMatching("NextMatchingGates", gateOrigin(g), dir, target, opts)
}

// NextMatchingGatesFromNet is [Traversal.NextMatchingGates] starting at the
// endpoints of n.
func (t *Traversal) NextMatchingGatesFromNet(n *netlist.Net, dir Direction, target GateFilter, opts ...SearchOption) ([]*netlist.Gate, error) {
	return t.nextMatching("NextMatchingGatesFromNet", netOrigin(n), dir, target, opts)
}

func (t *Traversal) nextMatching(op string, o origin, dir Direction, target GateFilter, opts []SearchOption) ([]*netlist.Gate, error) {
	if err := requireGateFilter(target, op); err != nil {
		return nil, err
	}
	cfg := newSearchConfig(opts)
	return t.collectGates(op, o, dir, cfg, func(g *netlist.Gate) (bool, bool) {
		if target(g) {
			return true, cfg.continueOnMatch
		}
		return false, true
	})
}

// NextMatchingGatesUntil walks from g and returns the gates that satisfy
// target, expanding through them. A gate that fails target ends its branch
// unless [ContinueOnMismatch] is given.
func (t *Traversal) NextMatchingGatesUntil(g *netlist.Gate, dir Direction, target GateFilter, opts ...SearchOption) ([]*netlist.Gate, error) {
	return t.nextMatchingUntil("NextMatchingGatesUntil", gateOrigin(g), dir, target, opts)
}

// NextMatchingGatesUntilFromNet is [Traversal.NextMatchingGatesUntil]
// starting at the endpoints of n.
func (t *Traversal) NextMatchingGatesUntilFromNet(n *netlist.Net, dir Direction, target GateFilter, opts ...SearchOption) ([]*netlist.Gate, error) {
	return t.nextMatchingUntil("NextMatchingGatesUntilFromNet", netOrigin(n), dir, target, opts)
}

func (t *Traversal) nextMatchingUntil(op string, o origin, dir Direction, target GateFilter, opts []SearchOption) ([]*netlist.Gate, error) {
	if err := requireGateFilter(target, op); err != nil {
		return nil, err
	}
	cfg := newSearchConfig(opts)
	return t.collectGates(op, o, dir, cfg, func(g *netlist.Gate) (bool, bool) {
		if target(g) {
			return true, true
		}
		return false, cfg.continueOnMismatch
	})
}

// NextMatchingGatesUntilDepth returns the gates within maxDepth layers of g
// (0 = unbounded) that satisfy filter. A nil filter returns every gate
// reached.
func (t *Traversal) NextMatchingGatesUntilDepth(g *netlist.Gate, dir Direction, maxDepth int, filter GateFilter) ([]*netlist.Gate, error) {
	return t.untilDepth("NextMatchingGatesUntilDepth", gateOrigin(g), dir, maxDepth, filter)
}

// NextMatchingGatesUntilDepthFromNet is
// [Traversal.NextMatchingGatesUntilDepth] starting at n; the endpoints of n
// are at depth 1.
func (t *Traversal) NextMatchingGatesUntilDepthFromNet(n *netlist.Net, dir Direction, maxDepth int, filter GateFilter) ([]*netlist.Gate, error) {
	return t.untilDepth("NextMatchingGatesUntilDepthFromNet", netOrigin(n), dir, maxDepth, filter)
}

func (t *Traversal) untilDepth(op string, o origin, dir Direction, maxDepth int, filter GateFilter) ([]*netlist.Gate, error) {
	if maxDepth < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "%s: negative depth %d", op, maxDepth)
	}
	cfg := searchConfig{maxDepth: maxDepth}
	return t.collectGates(op, o, dir, cfg, func(g *netlist.Gate) (bool, bool) {
		return filter == nil || filter(g), true
	})
}

// =============================================================================
// Subgraphs
// =============================================================================

// SubgraphGates returns every gate reachable from g that satisfies filter.
// Matching never ends a branch; only the endpoint filters prune. A nil
// filter returns every gate reached.
func (t *Traversal) SubgraphGates(g *netlist.Gate, dir Direction, filter GateFilter, opts ...SearchOption) ([]*netlist.Gate, error) {
	return t.subgraph("SubgraphGates", gateOrigin(g), dir, filter, opts)
}

// SubgraphGatesFromNet is [Traversal.SubgraphGates] starting at n.
func (t *Traversal) SubgraphGatesFromNet(n *netlist.Net, dir Direction, filter GateFilter, opts ...SearchOption) ([]*netlist.Gate, error) {
	return t.subgraph("SubgraphGatesFromNet", netOrigin(n), dir, filter, opts)
}

// NextGatesFancy materializes the filtered neighbourhood of g. It is
// [Traversal.SubgraphGates] under the name analysis scripts know it by.
func (t *Traversal) NextGatesFancy(g *netlist.Gate, dir Direction, filter GateFilter, opts ...SearchOption) ([]*netlist.Gate, error) {
	return t.subgraph("NextGatesFancy", gateOrigin(g), dir, filter, opts)
}

func (t *Traversal) subgraph(op string, o origin, dir Direction, filter GateFilter, opts []SearchOption) ([]*netlist.Gate, error) {
	cfg := newSearchConfig(opts)
	return t.collectGates(op, o, dir, cfg, func(g *netlist.Gate) (bool, bool) {
		return filter == nil || filter(g), true
	})
}

// SubgraphInputNets walks gate by gate from g and returns the nets for which
// target holds. A matching net is not crossed; every other net is crossed
// to the gates on its far side.
func (t *Traversal) SubgraphInputNets(g *netlist.Gate, dir Direction, target NetFilter, opts ...SearchOption) ([]*netlist.Net, error) {
	const op = "SubgraphInputNets"
	if target == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "%s requires a target net filter", op)
	}
	if err := dir.check(); err != nil {
		return nil, err
	}
	if err := t.checkGate(g); err != nil {
		return nil, err
	}
	began := time.Now()
	cfg := newSearchConfig(opts)
	guard := t.nl.Guard()

	found := make(map[netlist.NetID]*netlist.Net)
	seen := gateSet{g.ID(): {}}
	frontier := []*netlist.Gate{g}
	for depth := 0; len(frontier) > 0; depth++ {
		var next []*netlist.Gate
		for _, cur := range frontier {
			for _, out := range exitEndpoints(cur, dir, cfg.undirected) {
				if !cfg.exitOK(out, depth) {
					continue
				}
				n := t.nl.Net(out.Net)
				if target(n) {
					found[n.ID()] = n
					continue
				}
				for _, in := range entryEndpoints(n, dir, cfg.undirected) {
					if !cfg.entryOK(in, depth+1) || seen.has(in.Gate) {
						continue
					}
					seen.add(in.Gate)
					next = append(next, t.nl.Gate(in.Gate))
				}
			}
		}
		frontier = next
	}
	if err := guard.Check(); err != nil {
		return nil, errors.Context(err, "%s", op)
	}

	res := make([]*netlist.Net, 0, len(found))
	for _, n := range found {
		res = append(res, n)
	}
	sortNets(res)
	t.debug(op, began, len(seen), len(res))
	return res, nil
}

// =============================================================================
// Endpoints
// =============================================================================

// NextMatchingEndpoints walks from g and returns the endpoints that satisfy
// target. The target is evaluated on every entered endpoint and on every exit
// endpoint the walk leaves through; a match ends its branch unless
// [ContinueOnMatch] is given.
func (t *Traversal) NextMatchingEndpoints(g *netlist.Gate, dir Direction, target EndpointTarget, opts ...SearchOption) ([]netlist.Endpoint, error) {
	return t.matchingEndpoints("NextMatchingEndpoints", gateOrigin(g), nil, dir, target, opts)
}

// NextMatchingEndpointsFromNet is [Traversal.NextMatchingEndpoints] starting
// at n.
func (t *Traversal) NextMatchingEndpointsFromNet(n *netlist.Net, dir Direction, target EndpointTarget, opts ...SearchOption) ([]netlist.Endpoint, error) {
	return t.matchingEndpoints("NextMatchingEndpointsFromNet", netOrigin(n), nil, dir, target, opts)
}

// NextMatchingEndpointsFromEndpoint starts at ep: the exit filter and the
// target are evaluated on ep itself at depth 0 before the walk continues on
// its net.
func (t *Traversal) NextMatchingEndpointsFromEndpoint(ep netlist.Endpoint, dir Direction, target EndpointTarget, opts ...SearchOption) ([]netlist.Endpoint, error) {
	const op = "NextMatchingEndpointsFromEndpoint"
	g := t.nl.Gate(ep.Gate)
	if g == nil {
		return nil, errors.New(errors.ErrCodeNotInNetlist, "%s: gate %d of endpoint does not exist", op, ep.Gate)
	}
	if !t.isLiveEndpoint(g, ep) {
		return nil, errors.New(errors.ErrCodeNotInNetlist, "%s: endpoint %s is not connected", op, ep)
	}
	n := t.nl.Net(ep.Net)
	return t.matchingEndpoints(op, netOrigin(n), &ep, dir, target, opts)
}

func (t *Traversal) isLiveEndpoint(g *netlist.Gate, ep netlist.Endpoint) bool {
	var live netlist.Endpoint
	var ok bool
	if ep.IsSource() {
		live, ok = g.FanOutEndpoint(ep.Pin)
	} else {
		live, ok = g.FanInEndpoint(ep.Pin)
	}
	return ok && live == ep
}

func (t *Traversal) matchingEndpoints(op string, o origin, first *netlist.Endpoint, dir Direction, target EndpointTarget, opts []SearchOption) ([]netlist.Endpoint, error) {
	if target == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "%s requires a target endpoint filter", op)
	}
	if err := dir.check(); err != nil {
		return nil, err
	}
	if err := t.checkOrigin(o); err != nil {
		return nil, err
	}
	began := time.Now()
	cfg := newSearchConfig(opts)
	found := make(map[netlist.EndpointKey]netlist.Endpoint)
	match := func(ep netlist.Endpoint) bool {
		if !target(ep) {
			return true
		}
		found[ep.Key()] = ep
		return cfg.continueOnMatch
	}

	w := t.newWalker(dir, &cfg)
	w.enter = func(ep netlist.Endpoint, _ *netlist.Gate, _ int) bool { return match(ep) }
	w.leave = func(ep netlist.Endpoint, _ int) bool { return match(ep) }

	if first != nil {
		// The walk starts on the endpoint's net only if the endpoint itself
		// lets it through.
		if !cfg.exitOK(*first, 0) || !match(*first) {
			return collectEndpoints(found), nil
		}
	}
	if err := t.exec(o, dir, w); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	res := collectEndpoints(found)
	t.debug(op, began, w.visited, len(res))
	return res, nil
}

func collectEndpoints(found map[netlist.EndpointKey]netlist.Endpoint) []netlist.Endpoint {
	res := make([]netlist.Endpoint, 0, len(found))
	for _, ep := range found {
		res = append(res, ep)
	}
	sortEndpoints(res)
	return slices.Clip(res)
}
