package traversal

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// Direction selects which way a directed walk follows nets.
type Direction int

const (
	// Forward follows a gate's fan-out nets to their destinations.
	Forward Direction = iota
	// Backward follows a gate's fan-in nets to their sources.
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

// ParseDirection accepts "forward"/"successors"/"out" and
// "backward"/"predecessors"/"in".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward", "fwd", "successors", "out", "output":
		return Forward, nil
	case "backward", "bwd", "predecessors", "in", "input":
		return Backward, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupportedDirection, "unknown traversal direction %q", s)
}

// PinDirection maps the direction onto the pin direction of the endpoints a
// walk leaves through.
func (d Direction) PinDirection() netlist.PinDirection {
	if d == Backward {
		return netlist.Input
	}
	return netlist.Output
}

func (d Direction) check() error {
	if d != Forward && d != Backward {
		return errors.New(errors.ErrCodeUnsupportedDirection, "unsupported traversal direction %d", int(d))
	}
	return nil
}

// FromPinDirection converts output to [Forward] and input to [Backward].
// Every other direction fails with UNSUPPORTED_DIRECTION.
func FromPinDirection(pd netlist.PinDirection) (Direction, error) {
	switch pd {
	case netlist.Output:
		return Forward, nil
	case netlist.Input:
		return Backward, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupportedDirection, "pin direction %s is not supported", pd)
}

// EndpointFilter is evaluated on an endpoint when a walk leaves or enters a
// gate through it. depth is the current layer.
type EndpointFilter func(ep netlist.Endpoint, depth int) bool

// GateFilter selects gates.
type GateFilter func(g *netlist.Gate) bool

// EndpointTarget selects endpoints.
type EndpointTarget func(ep netlist.Endpoint) bool

// NetFilter selects nets.
type NetFilter func(n *netlist.Net) bool

// Traversal runs filtered searches over one netlist. It holds no mutable
// state and is safe for concurrent use as long as the netlist is not
// modified.
type Traversal struct {
	nl     *netlist.Netlist
	logger *log.Logger
}

// Option configures a [Traversal].
type Option func(*Traversal)

// WithLogger makes the traversal emit debug lines for each operation.
func WithLogger(l *log.Logger) Option {
	return func(t *Traversal) { t.logger = l }
}

// New returns a traversal over nl.
func New(nl *netlist.Netlist, opts ...Option) *Traversal {
	t := &Traversal{nl: nl}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Netlist returns the netlist the traversal reads.
func (t *Traversal) Netlist() *netlist.Netlist { return t.nl }

func (t *Traversal) checkGate(g *netlist.Gate) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "nil gate given as start")
	}
	if !t.nl.ContainsGate(g) {
		return errors.New(errors.ErrCodeNotInNetlist, "gate %d (%s) does not belong to the netlist", g.ID(), g.Name())
	}
	return nil
}

func (t *Traversal) checkNet(n *netlist.Net) error {
	if n == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "nil net given as start")
	}
	if !t.nl.ContainsNet(n) {
		return errors.New(errors.ErrCodeNotInNetlist, "net %d (%s) does not belong to the netlist", n.ID(), n.Name())
	}
	return nil
}

func (t *Traversal) debug(op string, start time.Time, visited, results int) {
	if t.logger == nil {
		return
	}
	t.logger.Debug(op, "visited", visited, "results", results, "duration", time.Since(start))
}

// gateSet collects gate ids and resolves them in id order.
type gateSet map[netlist.GateID]struct{}

func (s gateSet) add(id netlist.GateID) { s[id] = struct{}{} }

func (s gateSet) has(id netlist.GateID) bool {
	_, ok := s[id]
	return ok
}

func (s gateSet) gates(nl *netlist.Netlist) []*netlist.Gate {
	return nl.GatesOf(slices.Sorted(maps.Keys(s)))
}

func sortEndpoints(eps []netlist.Endpoint) {
	slices.SortFunc(eps, func(a, b netlist.Endpoint) int {
		if c := cmp.Compare(a.Gate, b.Gate); c != 0 {
			return c
		}
		return cmp.Compare(a.Pin, b.Pin)
	})
}

func sortNets(nets []*netlist.Net) {
	slices.SortFunc(nets, func(a, b *netlist.Net) int { return cmp.Compare(a.ID(), b.ID()) })
}
