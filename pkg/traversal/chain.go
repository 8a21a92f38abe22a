package traversal

import (
	"slices"
	"time"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// GateChain returns the run of gates of start's type that are linked from an
// output pin in outputPins to an input pin in inputPins, ordered from the
// first to the last link. Empty pin lists allow every pin and a nil filter
// accepts every gate.
//
// The run grows in each direction while there is exactly one qualifying
// neighbour and stops before a gate that is already part of it. If start
// fails filter the result is empty.
func (t *Traversal) GateChain(start *netlist.Gate, inputPins, outputPins []string, filter GateFilter) ([]*netlist.Gate, error) {
	if err := t.checkGate(start); err != nil {
		return nil, errors.Context(err, "GateChain")
	}
	types := []*netlist.GateType{start.Type()}
	return t.chain("GateChain", start, types, inputPins, outputPins, filter)
}

// ComplexGateChain is [Traversal.GateChain] for a repeating sequence of gate
// types: the successor of a gate of types[i] must be of types[i+1] and the
// sequence wraps around. The walk starts at the first occurrence of start's
// type in types; a start whose type is not listed yields an empty chain.
func (t *Traversal) ComplexGateChain(start *netlist.Gate, types []*netlist.GateType, inputPins, outputPins []string, filter GateFilter) ([]*netlist.Gate, error) {
	const op = "ComplexGateChain"
	if err := t.checkGate(start); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	if len(types) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "%s requires at least one gate type", op)
	}
	return t.chain(op, start, types, inputPins, outputPins, filter)
}

func (t *Traversal) chain(op string, start *netlist.Gate, types []*netlist.GateType, inputPins, outputPins []string, filter GateFilter) ([]*netlist.Gate, error) {
	began := time.Now()
	idx := slices.Index(types, start.Type())
	if idx < 0 || (filter != nil && !filter(start)) {
		return nil, nil
	}
	guard := t.nl.Guard()

	inChain := gateSet{start.ID(): {}}
	step := func(cur *netlist.Gate, pos int, dir Direction) (*netlist.Gate, int, bool) {
		nextPos := (pos + 1) % len(types)
		if dir == Backward {
			nextPos = (pos - 1 + len(types)) % len(types)
		}
		cands := t.chainNeighbours(cur, dir, types[nextPos], inputPins, outputPins, filter)
		if len(cands) != 1 || inChain.has(cands[0].ID()) {
			return nil, 0, false
		}
		return cands[0], nextPos, true
	}

	var succ []*netlist.Gate
	for cur, pos := start, idx; ; {
		next, np, ok := step(cur, pos, Forward)
		if !ok {
			break
		}
		inChain.add(next.ID())
		succ = append(succ, next)
		cur, pos = next, np
	}
	var pred []*netlist.Gate
	for cur, pos := start, idx; ; {
		prev, pp, ok := step(cur, pos, Backward)
		if !ok {
			break
		}
		inChain.add(prev.ID())
		pred = append(pred, prev)
		cur, pos = prev, pp
	}

	if err := guard.Check(); err != nil {
		return nil, errors.Context(err, "%s", op)
	}
	slices.Reverse(pred)
	res := make([]*netlist.Gate, 0, len(pred)+1+len(succ))
	res = append(res, pred...)
	res = append(res, start)
	res = append(res, succ...)
	t.debug(op, began, len(inChain), len(res))
	return res, nil
}

// chainNeighbours returns the distinct gates of type want linked to cur
// through the allowed pins.
func (t *Traversal) chainNeighbours(cur *netlist.Gate, dir Direction, want *netlist.GateType, inputPins, outputPins []string, filter GateFilter) []*netlist.Gate {
	exitPins, entryPins := outputPins, inputPins
	if dir == Backward {
		exitPins, entryPins = inputPins, outputPins
	}
	found := make(gateSet)
	for _, ex := range exitEndpoints(cur, dir, false) {
		if !pinAllowed(exitPins, ex.Pin) {
			continue
		}
		for _, in := range entryEndpoints(t.nl.Net(ex.Net), dir, false) {
			if !pinAllowed(entryPins, in.Pin) {
				continue
			}
			g := t.nl.Gate(in.Gate)
			if g.Type() != want || (filter != nil && !filter(g)) {
				continue
			}
			found.add(g.ID())
		}
	}
	return found.gates(t.nl)
}

func pinAllowed(pins []string, pin string) bool {
	return len(pins) == 0 || slices.Contains(pins, pin)
}
