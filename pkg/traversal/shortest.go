package traversal

import (
	"slices"
	"time"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// ShortestPath returns the gates of a shortest path from start to end,
// start and end included. dir is [netlist.Output] to follow successors,
// [netlist.Input] to follow predecessors and [netlist.Inout] to try both; with
// Inout the strictly shorter result wins and ties go to the forward path.
// A nil slice means end is unreachable.
func (t *Traversal) ShortestPath(start, end *netlist.Gate, dir netlist.PinDirection) ([]*netlist.Gate, error) {
	const op = "ShortestPath"
	if err := t.checkGate(start); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	if err := t.checkGate(end); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	began := time.Now()
	guard := t.nl.Guard()

	var path []netlist.GateID
	switch dir {
	case netlist.Output:
		path = t.bfsPath(start.ID(), end.ID(), Forward)
	case netlist.Input:
		path = t.bfsPath(start.ID(), end.ID(), Backward)
	case netlist.Inout:
		path = t.bfsPath(start.ID(), end.ID(), Forward)
		if back := t.bfsPath(start.ID(), end.ID(), Backward); back != nil && (path == nil || len(back) < len(path)) {
			path = back
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedDirection, "%s: direction %s is not supported", op, dir)
	}
	if err := guard.Check(); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	t.debug(op, began, len(path), len(path))
	if path == nil {
		return nil, nil
	}
	return t.nl.GatesOf(path), nil
}

// bfsPath records the gate each gate was first reached from and walks the
// origins back once end is reached.
func (t *Traversal) bfsPath(start, end netlist.GateID, dir Direction) []netlist.GateID {
	if start == end {
		return []netlist.GateID{start}
	}
	origin := map[netlist.GateID]netlist.GateID{start: 0}
	frontier := []netlist.GateID{start}
	for len(frontier) > 0 {
		var next []netlist.GateID
		for _, id := range frontier {
			for _, nb := range t.neighbours(t.nl.Gate(id), dir) {
				if _, seen := origin[nb]; seen {
					continue
				}
				origin[nb] = id
				if nb == end {
					return unwind(origin, start, end)
				}
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return nil
}

func unwind(origin map[netlist.GateID]netlist.GateID, start, end netlist.GateID) []netlist.GateID {
	path := []netlist.GateID{end}
	for cur := end; cur != start; {
		cur = origin[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// neighbours returns the gates one hop away from g, in endpoint order.
func (t *Traversal) neighbours(g *netlist.Gate, dir Direction) []netlist.GateID {
	var out []netlist.GateID
	for _, ex := range exitEndpoints(g, dir, false) {
		for _, in := range entryEndpoints(t.nl.Net(ex.Net), dir, false) {
			out = append(out, in.Gate)
		}
	}
	return out
}

// ShortestPathDistance counts the hops from start to the nearest gate that
// satisfies target. start itself is at distance 0. The exit filter sees the
// endpoints left at distance d with depth d and the entry filter those entered
// with depth d+1. ok is false when no gate matches; that is not an error.
func (t *Traversal) ShortestPathDistance(start *netlist.Gate, target GateFilter, dir netlist.PinDirection, opts ...SearchOption) (dist int, ok bool, err error) {
	const op = "ShortestPathDistance"
	if err := requireGateFilter(target, op); err != nil {
		return 0, false, err
	}
	if err := t.checkGate(start); err != nil {
		return 0, false, errors.Context(err, "%s", op)
	}
	cfg := newSearchConfig(opts)
	guard := t.nl.Guard()

	switch dir {
	case netlist.Output:
		dist, ok = t.distance(start, target, Forward, &cfg)
	case netlist.Input:
		dist, ok = t.distance(start, target, Backward, &cfg)
	case netlist.Inout:
		fd, fok := t.distance(start, target, Forward, &cfg)
		bd, bok := t.distance(start, target, Backward, &cfg)
		switch {
		case fok && bok:
			dist, ok = min(fd, bd), true
		case fok:
			dist, ok = fd, true
		case bok:
			dist, ok = bd, true
		}
	default:
		return 0, false, errors.New(errors.ErrCodeUnsupportedDirection, "%s: direction %s is not supported", op, dir)
	}
	if err := guard.Check(); err != nil {
		return 0, false, errors.Context(err, "%s", op)
	}
	return dist, ok, nil
}

func (t *Traversal) distance(start *netlist.Gate, target GateFilter, dir Direction, cfg *searchConfig) (int, bool) {
	if target(start) {
		return 0, true
	}
	seen := gateSet{start.ID(): {}}
	frontier := []*netlist.Gate{start}
	for d := 0; len(frontier) > 0; d++ {
		var next []*netlist.Gate
		for _, g := range frontier {
			for _, ex := range exitEndpoints(g, dir, false) {
				if !cfg.exitOK(ex, d) {
					continue
				}
				for _, in := range entryEndpoints(t.nl.Net(ex.Net), dir, false) {
					if seen.has(in.Gate) || !cfg.entryOK(in, d+1) {
						continue
					}
					seen.add(in.Gate)
					nb := t.nl.Gate(in.Gate)
					if target(nb) {
						return d + 1, true
					}
					next = append(next, nb)
				}
			}
		}
		frontier = next
	}
	return 0, false
}
