package abstraction

import (
	"context"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/observability"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

// Abstraction is an immutable adjacency snapshot of a netlist restricted to a
// gate subset. For every endpoint of a covered gate it holds the endpoints of
// subset gates reachable in one hop through gates outside the subset, and the
// global input and output nets reachable the same way.
//
// An Abstraction is safe for concurrent use. It does not follow later
// changes to the netlist.
type Abstraction struct {
	id      uuid.UUID
	nl      *netlist.Netlist
	version uint64

	members gateSet // the subset S
	covered gateSet // gates whose endpoints are keys

	fanOut map[netlist.GateID][]netlist.Endpoint
	fanIn  map[netlist.GateID][]netlist.Endpoint

	successors   map[netlist.EndpointKey][]netlist.Endpoint
	predecessors map[netlist.EndpointKey][]netlist.Endpoint
	globalOut    map[netlist.EndpointKey][]netlist.NetID
	globalIn     map[netlist.EndpointKey][]netlist.NetID
}

// Option configures [New].
type Option func(*options)

type options struct {
	includeAll bool
	exit       traversal.EndpointFilter
	entry      traversal.EndpointFilter
	logger     *log.Logger
	workers    int
}

// IncludeAllGates computes adjacency for every gate of the netlist, not only
// for the subset. Targets are still restricted to the subset.
func IncludeAllGates() Option {
	return func(o *options) { o.includeAll = true }
}

// WithExitFilter prunes paths that leave a gate through an endpoint for
// which f is false.
func WithExitFilter(f traversal.EndpointFilter) Option {
	return func(o *options) { o.exit = f }
}

// WithEntryFilter prunes paths that enter a gate through an endpoint for
// which f is false.
func WithEntryFilter(f traversal.EndpointFilter) Option {
	return func(o *options) { o.entry = f }
}

// WithLogger emits a debug line per build.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWorkers bounds the build parallelism. Values <= 0 use one worker per
// CPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// gateResult is the adjacency computed for one gate.
type gateResult struct {
	id           netlist.GateID
	fanOut       []netlist.Endpoint
	fanIn        []netlist.Endpoint
	successors   map[netlist.EndpointKey][]netlist.Endpoint
	predecessors map[netlist.EndpointKey][]netlist.Endpoint
	globalOut    map[netlist.EndpointKey][]netlist.NetID
	globalIn     map[netlist.EndpointKey][]netlist.NetID
}

// New builds an abstraction of nl over gates. An empty gate list selects
// every gate of the netlist. The netlist must not change during the build;
// a change is reported as CONCURRENT_MUTATION.
func New(ctx context.Context, nl *netlist.Netlist, gates []*netlist.Gate, opts ...Option) (*Abstraction, error) {
	if nl == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "nil netlist given to abstraction")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(gates) == 0 {
		gates = nl.Gates()
	}
	members := make(gateSet, len(gates))
	for _, g := range gates {
		if g == nil {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "nil gate in abstraction subset")
		}
		if !nl.ContainsGate(g) {
			return nil, errors.New(errors.ErrCodeNotInNetlist, "gate %d (%s) does not belong to the netlist", g.ID(), g.Name())
		}
		members.add(g.ID())
	}
	covered := members
	if o.includeAll {
		covered = make(gateSet, nl.NumGates())
		for _, g := range nl.Gates() {
			covered.add(g.ID())
		}
	}

	hooks := observability.Abstraction()
	ctx = hooks.OnBuildStart(ctx, len(members))
	began := time.Now()

	a := &Abstraction{
		id:           uuid.New(),
		nl:           nl,
		version:      nl.Version(),
		members:      members,
		covered:      covered,
		fanOut:       make(map[netlist.GateID][]netlist.Endpoint, len(covered)),
		fanIn:        make(map[netlist.GateID][]netlist.Endpoint, len(covered)),
		successors:   make(map[netlist.EndpointKey][]netlist.Endpoint),
		predecessors: make(map[netlist.EndpointKey][]netlist.Endpoint),
		globalOut:    make(map[netlist.EndpointKey][]netlist.NetID),
		globalIn:     make(map[netlist.EndpointKey][]netlist.NetID),
	}
	err := a.build(ctx, &o)

	endpoints := len(a.successors) + len(a.predecessors)
	hooks.OnBuildComplete(ctx, len(members), endpoints, time.Since(began), err)
	if err != nil {
		return nil, err
	}
	if o.logger != nil {
		o.logger.Debug("abstraction.New", "gates", len(members), "endpoints", endpoints, "duration", time.Since(began))
	}
	return a, nil
}

func (a *Abstraction) build(ctx context.Context, o *options) error {
	guard := a.nl.Guard()
	tr := traversal.New(a.nl)
	var searchOpts []traversal.SearchOption
	if o.exit != nil {
		searchOpts = append(searchOpts, traversal.WithExitFilter(o.exit))
	}
	if o.entry != nil {
		searchOpts = append(searchOpts, traversal.WithEntryFilter(o.entry))
	}
	// Global nets count only when reached before another subset gate.
	outside := func(ep netlist.Endpoint, depth int) bool {
		return !a.members.has(ep.Gate) && (o.entry == nil || o.entry(ep, depth))
	}
	globalOpts := append(slices.Clip(searchOpts), traversal.WithEntryFilter(outside))

	workers := o.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range slices.Sorted(maps.Keys(a.covered)) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.buildGate(tr, a.nl.Gate(id), searchOpts, globalOpts)
			if err != nil {
				return err
			}
			mu.Lock()
			a.merge(res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := guard.Check(); err != nil {
		return errors.Context(err, "build abstraction")
	}
	return nil
}

func (a *Abstraction) buildGate(tr *traversal.Traversal, g *netlist.Gate, opts, globalOpts []traversal.SearchOption) (*gateResult, error) {
	res := &gateResult{
		id:           g.ID(),
		fanOut:       g.FanOutEndpoints(),
		fanIn:        g.FanInEndpoints(),
		successors:   make(map[netlist.EndpointKey][]netlist.Endpoint),
		predecessors: make(map[netlist.EndpointKey][]netlist.Endpoint),
		globalOut:    make(map[netlist.EndpointKey][]netlist.NetID),
		globalIn:     make(map[netlist.EndpointKey][]netlist.NetID),
	}
	memberSink := func(ep netlist.Endpoint) bool { return ep.IsDestination() && a.members.has(ep.Gate) }
	memberSource := func(ep netlist.Endpoint) bool { return ep.IsSource() && a.members.has(ep.Gate) }
	primaryOut := func(ep netlist.Endpoint) bool {
		return ep.IsSource() && a.nl.IsGlobalOutputNet(a.nl.Net(ep.Net))
	}
	primaryIn := func(ep netlist.Endpoint) bool {
		return ep.IsDestination() && a.nl.IsGlobalInputNet(a.nl.Net(ep.Net))
	}

	for _, ep := range res.fanOut {
		succ, err := tr.NextMatchingEndpointsFromEndpoint(ep, traversal.Forward, memberSink, opts...)
		if err != nil {
			return nil, errors.Context(err, "successors of %s", ep)
		}
		res.successors[ep.Key()] = succ
		outs, err := tr.NextMatchingEndpointsFromEndpoint(ep, traversal.Forward, primaryOut, globalOpts...)
		if err != nil {
			return nil, errors.Context(err, "global output successors of %s", ep)
		}
		res.globalOut[ep.Key()] = netIDs(outs)
	}
	for _, ep := range res.fanIn {
		pred, err := tr.NextMatchingEndpointsFromEndpoint(ep, traversal.Backward, memberSource, opts...)
		if err != nil {
			return nil, errors.Context(err, "predecessors of %s", ep)
		}
		res.predecessors[ep.Key()] = pred
		ins, err := tr.NextMatchingEndpointsFromEndpoint(ep, traversal.Backward, primaryIn, globalOpts...)
		if err != nil {
			return nil, errors.Context(err, "global input predecessors of %s", ep)
		}
		res.globalIn[ep.Key()] = netIDs(ins)
	}
	return res, nil
}

func (a *Abstraction) merge(res *gateResult) {
	a.fanOut[res.id] = res.fanOut
	a.fanIn[res.id] = res.fanIn
	maps.Copy(a.successors, res.successors)
	maps.Copy(a.predecessors, res.predecessors)
	maps.Copy(a.globalOut, res.globalOut)
	maps.Copy(a.globalIn, res.globalIn)
}

func netIDs(eps []netlist.Endpoint) []netlist.NetID {
	seen := make(map[netlist.NetID]struct{}, len(eps))
	out := make([]netlist.NetID, 0, len(eps))
	for _, ep := range eps {
		if _, ok := seen[ep.Net]; ok {
			continue
		}
		seen[ep.Net] = struct{}{}
		out = append(out, ep.Net)
	}
	slices.Sort(out)
	return out
}

// =============================================================================
// Accessors
// =============================================================================

// ID returns the random identifier assigned at build time.
func (a *Abstraction) ID() uuid.UUID { return a.id }

// Netlist returns the abstracted netlist.
func (a *Abstraction) Netlist() *netlist.Netlist { return a.nl }

// Version returns the netlist version the abstraction was built at.
func (a *Abstraction) Version() uint64 { return a.version }

// Stale reports whether the netlist changed since the build.
func (a *Abstraction) Stale() bool { return a.nl.Version() != a.version }

// Gates returns the gate subset sorted by id.
func (a *Abstraction) Gates() []*netlist.Gate { return a.members.gates(a.nl) }

// Contains reports whether g is part of the subset.
func (a *Abstraction) Contains(g *netlist.Gate) bool {
	return g != nil && a.nl.ContainsGate(g) && a.members.has(g.ID())
}

// NumEndpoints returns the number of endpoints with precomputed adjacency.
func (a *Abstraction) NumEndpoints() int { return len(a.successors) + len(a.predecessors) }

// Successors returns the destination endpoints of subset gates reached from
// the fan-out endpoint ep.
func (a *Abstraction) Successors(ep netlist.Endpoint) ([]netlist.Endpoint, error) {
	return lookup(a.successors, ep, "successors")
}

// Predecessors returns the source endpoints of subset gates reached backward
// from the fan-in endpoint ep.
func (a *Abstraction) Predecessors(ep netlist.Endpoint) ([]netlist.Endpoint, error) {
	return lookup(a.predecessors, ep, "predecessors")
}

// GateSuccessors returns the successors of every fan-out endpoint of g.
func (a *Abstraction) GateSuccessors(g *netlist.Gate) ([]netlist.Endpoint, error) {
	return a.gateEndpoints(g, a.fanOut, a.successors, "successors")
}

// GatePredecessors returns the predecessors of every fan-in endpoint of g.
func (a *Abstraction) GatePredecessors(g *netlist.Gate) ([]netlist.Endpoint, error) {
	return a.gateEndpoints(g, a.fanIn, a.predecessors, "predecessors")
}

// UniqueSuccessors returns the distinct gates behind [Abstraction.Successors].
func (a *Abstraction) UniqueSuccessors(ep netlist.Endpoint) ([]*netlist.Gate, error) {
	return a.unique(a.Successors(ep))
}

// UniquePredecessors returns the distinct gates behind
// [Abstraction.Predecessors].
func (a *Abstraction) UniquePredecessors(ep netlist.Endpoint) ([]*netlist.Gate, error) {
	return a.unique(a.Predecessors(ep))
}

// UniqueGateSuccessors returns the distinct successor gates of g.
func (a *Abstraction) UniqueGateSuccessors(g *netlist.Gate) ([]*netlist.Gate, error) {
	return a.unique(a.GateSuccessors(g))
}

// UniqueGatePredecessors returns the distinct predecessor gates of g.
func (a *Abstraction) UniqueGatePredecessors(g *netlist.Gate) ([]*netlist.Gate, error) {
	return a.unique(a.GatePredecessors(g))
}

// GlobalInputPredecessors returns the global input nets that reach the fan-in
// endpoint ep without passing a subset gate.
func (a *Abstraction) GlobalInputPredecessors(ep netlist.Endpoint) ([]*netlist.Net, error) {
	ids, err := lookup(a.globalIn, ep, "global input predecessors")
	if err != nil {
		return nil, err
	}
	return a.nets(ids), nil
}

// GlobalOutputSuccessors returns the global output nets reached from the
// fan-out endpoint ep without passing a subset gate.
func (a *Abstraction) GlobalOutputSuccessors(ep netlist.Endpoint) ([]*netlist.Net, error) {
	ids, err := lookup(a.globalOut, ep, "global output successors")
	if err != nil {
		return nil, err
	}
	return a.nets(ids), nil
}

func lookup[V any](m map[netlist.EndpointKey][]V, ep netlist.Endpoint, what string) ([]V, error) {
	vs, ok := m[ep.Key()]
	if !ok {
		return nil, errors.New(errors.ErrCodeLookupMiss, "no %s recorded for %s", what, ep)
	}
	return slices.Clone(vs), nil
}

func (a *Abstraction) gateEndpoints(g *netlist.Gate, side map[netlist.GateID][]netlist.Endpoint, adj map[netlist.EndpointKey][]netlist.Endpoint, what string) ([]netlist.Endpoint, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "nil gate")
	}
	eps, ok := side[g.ID()]
	if !ok {
		return nil, errors.New(errors.ErrCodeLookupMiss, "gate %d (%s) is not covered by the abstraction", g.ID(), g.Name())
	}
	var out []netlist.Endpoint
	for _, ep := range eps {
		out = append(out, adj[ep.Key()]...)
	}
	return out, nil
}

func (a *Abstraction) unique(eps []netlist.Endpoint, err error) ([]*netlist.Gate, error) {
	if err != nil {
		return nil, err
	}
	set := make(gateSet, len(eps))
	for _, ep := range eps {
		set.add(ep.Gate)
	}
	return set.gates(a.nl), nil
}

func (a *Abstraction) nets(ids []netlist.NetID) []*netlist.Net {
	out := make([]*netlist.Net, 0, len(ids))
	for _, id := range ids {
		if n := a.nl.Net(id); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// exitEndpoints returns the recorded fan-out (forward) or fan-in (backward)
// endpoints of a covered gate.
func (a *Abstraction) exitEndpoints(id netlist.GateID, dir netlist.PinDirection) ([]netlist.Endpoint, bool) {
	if dir == netlist.Output {
		eps, ok := a.fanOut[id]
		return eps, ok
	}
	eps, ok := a.fanIn[id]
	return eps, ok
}

type gateSet map[netlist.GateID]struct{}

func (s gateSet) add(id netlist.GateID) { s[id] = struct{}{} }

func (s gateSet) has(id netlist.GateID) bool {
	_, ok := s[id]
	return ok
}

func (s gateSet) gates(nl *netlist.Netlist) []*netlist.Gate {
	return nl.GatesOf(slices.Sorted(maps.Keys(s)))
}
