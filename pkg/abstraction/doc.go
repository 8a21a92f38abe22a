// Package abstraction precomputes a read-only adjacency view of a netlist
// restricted to a gate subset.
//
// Analyses that ask the same neighbourhood questions millions of times (which
// registers feed this register? how far is the nearest multiplexer?) should
// not walk the raw netlist each time. [New] walks it once, using the
// traversal engine, and records for every endpoint of a covered gate:
//
//   - its successors: destination endpoints of subset gates reached forward
//     from a fan-out endpoint without crossing another subset gate;
//   - its predecessors: source endpoints of subset gates reached backward
//     from a fan-in endpoint the same way;
//   - the global output nets reached forward and the global input nets
//     reached backward.
//
// Queries on the result are map lookups. Asking for an endpoint that was not
// part of the build fails with LOOKUP_MISS, which usually means the
// abstraction was built over the wrong subset.
//
// A [Decorator] runs distance and reachability searches on the adjacency
// alone:
//
//	a, err := abstraction.New(ctx, nl, registers)
//	if err != nil {
//	    return err
//	}
//	d := abstraction.NewDecorator(a)
//	dist, ok, err := d.ShortestPathDistanceToGate(src, dst, netlist.Output)
//
// An [Abstraction] never changes after New returns and may be shared by any
// number of goroutines. It is a snapshot: [Abstraction.Stale] reports whether
// the netlist has been modified since.
package abstraction
