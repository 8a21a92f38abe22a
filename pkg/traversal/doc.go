// Package traversal implements filtered graph searches over a netlist.
//
// # Overview
//
// A [Traversal] is a stateless algorithm object bound to one
// [netlist.Netlist]. Every search is a layered breadth-first walk: the
// frontier is a set of nets, each layer enters the gates behind the
// frontier's entry endpoints and leaves them through their exit endpoints.
// Walking [Forward] leaves through fan-out endpoints and enters destinations;
// walking [Backward] leaves through fan-in endpoints and enters sources. A net
// joins the frontier at most once, so every search terminates on designs with
// combinational or sequential loops.
//
// # Filters
//
// Searches take a target predicate plus optional per-hop filters:
//
//	t := traversal.New(nl)
//	regs, err := t.NextMatchingGates(g, traversal.Forward,
//	    func(g *netlist.Gate) bool { return g.HasProperty(netlist.FF) },
//	    traversal.WithEntryFilter(func(ep netlist.Endpoint, depth int) bool {
//	        return depth <= 8
//	    }))
//
// The exit filter sees the start gate's endpoints at depth 0 and the endpoints
// of a gate entered at depth d at depth d; the entry filter sees endpoints
// entered from layer d at depth d+1. A failing filter prunes that branch only.
//
// # Sequential Reachability
//
// [Traversal.NextSequentialGates] skips non-sequential logic and stops at
// registers. Queries over large designs should share a [Cache], which
// memoizes the result of each start net. Caches are bound to one netlist and
// are not invalidated by mutations; clear them after editing the design.
// [Traversal.BatchNextSequentialGates] spreads queries over a worker pool with
// one cache per worker.
//
// # Results and Errors
//
// Gate results are sorted by id and endpoint results by gate and pin, so
// identical inputs give identical outputs. A search that finds nothing returns
// an empty result and a nil error. Starting from a nil entity fails with
// INVALID_ARGUMENT, from a foreign or deleted one with NOT_IN_NETLIST, and a
// netlist mutated during the walk (for example from inside a filter) with
// CONCURRENT_MUTATION.
package traversal
