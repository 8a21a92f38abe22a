package traversal

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// Cache memoizes the first-stage results of sequential and combinational
// searches per start net. Reusing one cache across many queries on the same
// netlist turns repeated walks over shared logic into map lookups.
//
// A Cache is bound to the first netlist it is used with; using it with
// another netlist fails with INVALID_ARGUMENT. Cached results are not
// invalidated when the netlist changes. A Cache is not safe for concurrent
// use: give each worker its own.
type Cache struct {
	owner   uuid.UUID
	entries map[cacheKey][]netlist.GateID
	hits    int
	misses  int
}

type cacheKind uint8

const (
	kindSequential cacheKind = iota
	kindCombinational
)

type cacheKey struct {
	kind      cacheKind
	net       netlist.NetID
	dir       Direction
	forbidden string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]netlist.GateID)}
}

// Len returns the number of cached start nets.
func (c *Cache) Len() int { return len(c.entries) }

// Stats returns the number of lookups served from and missed by the cache.
func (c *Cache) Stats() (hits, misses int) { return c.hits, c.misses }

// Clear drops all entries and the netlist binding.
func (c *Cache) Clear() {
	clear(c.entries)
	c.owner = uuid.Nil
	c.hits, c.misses = 0, 0
}

func (c *Cache) bind(nl *netlist.Netlist) error {
	switch c.owner {
	case uuid.Nil:
		c.owner = nl.UUID()
	case nl.UUID():
	default:
		return errors.New(errors.ErrCodeInvalidArgument,
			"cache belongs to netlist %s, not %s", c.owner, nl.UUID())
	}
	return nil
}

func (c *Cache) get(k cacheKey) ([]netlist.GateID, bool) {
	ids, ok := c.entries[k]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return ids, ok
}

// SequentialOption tunes sequential and combinational searches.
type SequentialOption func(*sequentialConfig)

type sequentialConfig struct {
	forbidden map[netlist.PinType]struct{}
	cache     *Cache
	depth     int
}

// WithForbiddenPins excludes gates entered through a pin of one of the given
// types, e.g. [netlist.Clock] to ignore clock trees.
func WithForbiddenPins(types ...netlist.PinType) SequentialOption {
	return func(c *sequentialConfig) {
		for _, pt := range types {
			c.forbidden[pt] = struct{}{}
		}
	}
}

// WithCache memoizes results in c.
func WithCache(c *Cache) SequentialOption {
	return func(cfg *sequentialConfig) { cfg.cache = c }
}

// WithDepth sets how many sequential stages to cross: 1 (the default)
// returns the next stage, k the union of the next k stages and 0 every
// stage reachable.
func WithDepth(k int) SequentialOption {
	return func(c *sequentialConfig) { c.depth = k }
}

func newSequentialConfig(opts []SequentialOption) sequentialConfig {
	c := sequentialConfig{forbidden: make(map[netlist.PinType]struct{}), depth: 1}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *sequentialConfig) forbiddenKey() string {
	types := slices.Sorted(maps.Keys(c.forbidden))
	names := make([]string, len(types))
	for i, pt := range types {
		names[i] = pt.String()
	}
	return strings.Join(names, ",")
}

func (c *sequentialConfig) enteredForbidden(ep netlist.Endpoint, g *netlist.Gate) bool {
	if len(c.forbidden) == 0 {
		return false
	}
	p, ok := g.Type().Pin(ep.Pin)
	if !ok {
		return false
	}
	_, bad := c.forbidden[p.Type]
	return bad
}

// stageFromNet returns the gates of kind reached from net id in one stage,
// served from the cache when possible.
func (t *Traversal) stageFromNet(kind cacheKind, id netlist.NetID, dir Direction, cfg *sequentialConfig) []netlist.GateID {
	key := cacheKey{kind: kind, net: id, dir: dir, forbidden: cfg.forbiddenKey()}
	if cfg.cache != nil {
		if ids, ok := cfg.cache.get(key); ok {
			return ids
		}
	}

	found := make(gateSet)
	w := t.newWalker(dir, &searchConfig{})
	w.enter = func(ep netlist.Endpoint, g *netlist.Gate, _ int) bool {
		switch kind {
		case kindSequential:
			if !g.HasProperty(netlist.Sequential) {
				return true
			}
			if !cfg.enteredForbidden(ep, g) {
				found.add(g.ID())
			}
			return false
		default:
			if !g.HasProperty(netlist.Combinational) || cfg.enteredForbidden(ep, g) {
				return false
			}
			found.add(g.ID())
			return true
		}
	}
	w.push(id)
	w.run()

	ids := slices.Sorted(maps.Keys(found))
	if cfg.cache != nil {
		cfg.cache.entries[key] = ids
	}
	return ids
}

// stageFromGate unions the stages of all exit nets of g.
func (t *Traversal) stageFromGate(kind cacheKind, g *netlist.Gate, dir Direction, cfg *sequentialConfig, into gateSet) {
	for _, id := range exitNets(g, dir) {
		for _, gid := range t.stageFromNet(kind, id, dir, cfg) {
			into.add(gid)
		}
	}
}

func exitNets(g *netlist.Gate, dir Direction) []netlist.NetID {
	if dir == Forward {
		return g.FanOutNets()
	}
	return g.FanInNets()
}

// NextSequentialGates walks from g through non-sequential logic and returns
// the sequential gates where the walk stops. See [WithDepth],
// [WithForbiddenPins] and [WithCache].
func (t *Traversal) NextSequentialGates(g *netlist.Gate, dir Direction, opts ...SequentialOption) ([]*netlist.Gate, error) {
	return t.nextSequential("NextSequentialGates", gateOrigin(g), dir, opts)
}

// NextSequentialGatesFromNet is [Traversal.NextSequentialGates] starting at n.
func (t *Traversal) NextSequentialGatesFromNet(n *netlist.Net, dir Direction, opts ...SequentialOption) ([]*netlist.Gate, error) {
	return t.nextSequential("NextSequentialGatesFromNet", netOrigin(n), dir, opts)
}

func (t *Traversal) nextSequential(op string, o origin, dir Direction, opts []SequentialOption) ([]*netlist.Gate, error) {
	if err := dir.check(); err != nil {
		return nil, err
	}
	if err := t.checkOrigin(o); err != nil {
		return nil, err
	}
	cfg := newSequentialConfig(opts)
	if cfg.depth < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "%s: negative depth %d", op, cfg.depth)
	}
	if cfg.cache != nil {
		if err := cfg.cache.bind(t.nl); err != nil {
			return nil, errors.Context(err, "%s", op)
		}
	}
	began := time.Now()
	guard := t.nl.Guard()

	found := make(gateSet)
	if o.isNet {
		for _, id := range t.stageFromNet(kindSequential, o.net.ID(), dir, &cfg) {
			found.add(id)
		}
	} else {
		t.stageFromGate(kindSequential, o.gate, dir, &cfg, found)
	}

	// Further stages start from the gates found so far. A gate is expanded
	// once, so depth 0 terminates on cyclic register graphs.
	expanded := make(gateSet)
	frontier := slices.Sorted(maps.Keys(found))
	for stage := 2; len(frontier) > 0 && (cfg.depth == 0 || stage <= cfg.depth); stage++ {
		var next []netlist.GateID
		for _, id := range frontier {
			if expanded.has(id) {
				continue
			}
			expanded.add(id)
			reached := make(gateSet)
			t.stageFromGate(kindSequential, t.nl.Gate(id), dir, &cfg, reached)
			for gid := range reached {
				if !found.has(gid) {
					found.add(gid)
					next = append(next, gid)
				}
			}
		}
		slices.Sort(next)
		frontier = next
	}

	if err := guard.Check(); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	res := found.gates(t.nl)
	t.debug(op, began, len(expanded)+1, len(res))
	return res, nil
}

// NextSequentialGatesMap returns the next sequential stage of every
// sequential gate in the netlist. Without [WithCache] a private cache is used
// for the whole map.
func (t *Traversal) NextSequentialGatesMap(dir Direction, opts ...SequentialOption) (map[netlist.GateID][]*netlist.Gate, error) {
	if err := dir.check(); err != nil {
		return nil, err
	}
	cfg := newSequentialConfig(opts)
	if cfg.cache == nil {
		opts = append(slices.Clip(opts), WithCache(NewCache()))
	}
	out := make(map[netlist.GateID][]*netlist.Gate)
	for _, g := range t.nl.GatesWhere(func(g *netlist.Gate) bool { return g.HasProperty(netlist.Sequential) }) {
		next, err := t.NextSequentialGates(g, dir, opts...)
		if err != nil {
			return nil, errors.Context(err, "gate %s", g.Name())
		}
		out[g.ID()] = next
	}
	return out, nil
}

// NextCombinationalGates returns every combinational gate reachable from g
// without passing through a non-combinational gate. [WithDepth] is ignored.
func (t *Traversal) NextCombinationalGates(g *netlist.Gate, dir Direction, opts ...SequentialOption) ([]*netlist.Gate, error) {
	return t.nextCombinational("NextCombinationalGates", gateOrigin(g), dir, opts)
}

// NextCombinationalGatesFromNet is [Traversal.NextCombinationalGates]
// starting at n.
func (t *Traversal) NextCombinationalGatesFromNet(n *netlist.Net, dir Direction, opts ...SequentialOption) ([]*netlist.Gate, error) {
	return t.nextCombinational("NextCombinationalGatesFromNet", netOrigin(n), dir, opts)
}

func (t *Traversal) nextCombinational(op string, o origin, dir Direction, opts []SequentialOption) ([]*netlist.Gate, error) {
	if err := dir.check(); err != nil {
		return nil, err
	}
	if err := t.checkOrigin(o); err != nil {
		return nil, err
	}
	cfg := newSequentialConfig(opts)
	if cfg.cache != nil {
		if err := cfg.cache.bind(t.nl); err != nil {
			return nil, errors.Context(err, "%s", op)
		}
	}
	began := time.Now()
	guard := t.nl.Guard()
	found := make(gateSet)
	if o.isNet {
		for _, id := range t.stageFromNet(kindCombinational, o.net.ID(), dir, &cfg) {
			found.add(id)
		}
	} else {
		t.stageFromGate(kindCombinational, o.gate, dir, &cfg, found)
	}
	if err := guard.Check(); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	res := found.gates(t.nl)
	t.debug(op, began, len(found), len(res))
	return res, nil
}

// Path returns every gate between g and the first gates that carry one of
// stop, the stop gates included. With no stop properties every reachable gate
// is returned.
func (t *Traversal) Path(g *netlist.Gate, dir Direction, stop ...netlist.Property) ([]*netlist.Gate, error) {
	return t.path("Path", gateOrigin(g), dir, stop)
}

// PathFromNet is [Traversal.Path] starting at n.
func (t *Traversal) PathFromNet(n *netlist.Net, dir Direction, stop ...netlist.Property) ([]*netlist.Gate, error) {
	return t.path("PathFromNet", netOrigin(n), dir, stop)
}

func (t *Traversal) path(op string, o origin, dir Direction, stop []netlist.Property) ([]*netlist.Gate, error) {
	return t.collectGates(op, o, dir, searchConfig{}, func(g *netlist.Gate) (bool, bool) {
		return true, !g.Type().HasAnyProperty(stop...)
	})
}
