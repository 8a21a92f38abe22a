package netlist

import (
	"maps"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/matzehuels/gatewalk/pkg/errors"
)

// Netlist owns every gate, net and module of a design, keyed by per-kind ids.
// All structural writes go through its methods; every write bumps
// [Netlist.Version].
//
// The zero value is not usable - use [New].
// Netlist is not safe for concurrent mutation. Any number of goroutines may
// read it while no goroutine writes.
type Netlist struct {
	id   uuid.UUID
	name string
	lib  *GateLibrary

	gates   map[GateID]*Gate
	nets    map[NetID]*Net
	modules map[ModuleID]*Module

	gateIDs   idAllocator
	netIDs    idAllocator
	moduleIDs idAllocator

	top *Module

	vcc       map[GateID]struct{}
	gnd       map[GateID]struct{}
	globalIn  map[NetID]struct{}
	globalOut map[NetID]struct{}

	version atomic.Uint64
}

// Option configures a netlist at construction time.
type Option func(*Netlist)

// WithName sets the design name.
func WithName(name string) Option {
	return func(nl *Netlist) { nl.name = name }
}

// WithUUID sets the instance identity instead of a random one. Used when a
// netlist is reloaded and caches keyed by its identity should stay valid.
func WithUUID(id uuid.UUID) Option {
	return func(nl *Netlist) { nl.id = id }
}

// New creates an empty netlist with a top module (id 1, "top_module").
// A nil library is replaced by an empty one.
func New(lib *GateLibrary, opts ...Option) *Netlist {
	if lib == nil {
		lib = NewGateLibrary("")
	}
	nl := &Netlist{
		id:        uuid.New(),
		lib:       lib,
		gates:     make(map[GateID]*Gate),
		nets:      make(map[NetID]*Net),
		modules:   make(map[ModuleID]*Module),
		gateIDs:   newIDAllocator(),
		netIDs:    newIDAllocator(),
		moduleIDs: newIDAllocator(),
		vcc:       make(map[GateID]struct{}),
		gnd:       make(map[GateID]struct{}),
		globalIn:  make(map[NetID]struct{}),
		globalOut: make(map[NetID]struct{}),
	}
	for _, opt := range opts {
		opt(nl)
	}
	nl.moduleIDs.claim(uint32(TopModuleID))
	nl.top = newModule(TopModuleID, "top_module", 0)
	nl.modules[TopModuleID] = nl.top
	return nl
}

// UUID returns the instance identity of the netlist.
func (nl *Netlist) UUID() uuid.UUID { return nl.id }

// Name returns the design name.
func (nl *Netlist) Name() string { return nl.name }

// Library returns the gate library the netlist was created with.
func (nl *Netlist) Library() *GateLibrary { return nl.lib }

// Version returns a counter that increases on every structural mutation.
// It is safe to call concurrently with mutations.
func (nl *Netlist) Version() uint64 { return nl.version.Load() }

func (nl *Netlist) bump() { nl.version.Add(1) }

// =============================================================================
// Gates
// =============================================================================

// CreateGate creates a gate of type t with an automatically assigned id and
// places it in the top module.
func (nl *Netlist) CreateGate(t *GateType, name string) (*Gate, error) {
	if err := validateGate(t, name); err != nil {
		return nil, err
	}
	return nl.addGate(GateID(nl.gateIDs.take()), t, name), nil
}

// CreateGateWithID creates a gate with an explicit id. It fails with
// ID_IN_USE when the id belongs to a live gate.
func (nl *Netlist) CreateGateWithID(id GateID, t *GateType, name string) (*Gate, error) {
	if id == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "gate id 0 is reserved")
	}
	if err := validateGate(t, name); err != nil {
		return nil, err
	}
	if !nl.gateIDs.claim(uint32(id)) {
		return nil, errors.New(errors.ErrCodeIDInUse, "gate id %d is already in use", id)
	}
	return nl.addGate(id, t, name), nil
}

func validateGate(t *GateType, name string) error {
	if t == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "nil gate type")
	}
	return errors.ValidateName("gate", name)
}

func (nl *Netlist) addGate(id GateID, t *GateType, name string) *Gate {
	g := &Gate{id: id, name: name, typ: t, module: TopModuleID}
	nl.gates[id] = g
	nl.top.gates[id] = struct{}{}
	nl.bump()
	return g
}

// DeleteGate removes g, detaches all its endpoints from their nets, drops it
// from its module and clears its vcc/gnd role. Attached nets survive.
func (nl *Netlist) DeleteGate(g *Gate) error {
	if err := nl.checkGate(g); err != nil {
		return err
	}
	for _, ep := range g.fanIn {
		n := nl.nets[ep.Net]
		n.destinations = removeEndpoint(n.destinations, ep.Key())
	}
	for _, ep := range g.fanOut {
		n := nl.nets[ep.Net]
		n.sources = removeEndpoint(n.sources, ep.Key())
	}
	g.fanIn, g.fanOut = nil, nil
	delete(nl.modules[g.module].gates, g.id)
	delete(nl.vcc, g.id)
	delete(nl.gnd, g.id)
	delete(nl.gates, g.id)
	nl.gateIDs.release(uint32(g.id))
	nl.bump()
	return nil
}

// Gate returns the gate with the given id, or nil.
func (nl *Netlist) Gate(id GateID) *Gate { return nl.gates[id] }

// Gates returns all gates sorted by id.
func (nl *Netlist) Gates() []*Gate {
	return sortedValues(nl.gates)
}

// GatesWhere returns the gates for which fn holds, sorted by id.
func (nl *Netlist) GatesWhere(fn func(*Gate) bool) []*Gate {
	var out []*Gate
	for _, g := range nl.Gates() {
		if fn(g) {
			out = append(out, g)
		}
	}
	return out
}

// GatesOf resolves gate ids; unknown ids are skipped.
func (nl *Netlist) GatesOf(ids []GateID) []*Gate {
	out := make([]*Gate, 0, len(ids))
	for _, id := range ids {
		if g, ok := nl.gates[id]; ok {
			out = append(out, g)
		}
	}
	return out
}

// NumGates returns the number of live gates.
func (nl *Netlist) NumGates() int { return len(nl.gates) }

// ContainsGate reports whether g is a live gate of this netlist.
func (nl *Netlist) ContainsGate(g *Gate) bool {
	return g != nil && nl.gates[g.id] == g
}

func (nl *Netlist) checkGate(g *Gate) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "nil gate")
	}
	if nl.gates[g.id] != g {
		return errors.New(errors.ErrCodeNotInNetlist, "gate %d (%s) does not belong to the netlist", g.id, g.name)
	}
	return nil
}

// =============================================================================
// Nets
// =============================================================================

// CreateNet creates an unconnected net with an automatically assigned id.
func (nl *Netlist) CreateNet(name string) (*Net, error) {
	if err := errors.ValidateName("net", name); err != nil {
		return nil, err
	}
	return nl.addNet(NetID(nl.netIDs.take()), name), nil
}

// CreateNetWithID creates a net with an explicit id. It fails with ID_IN_USE
// when the id belongs to a live net.
func (nl *Netlist) CreateNetWithID(id NetID, name string) (*Net, error) {
	if id == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "net id 0 is reserved")
	}
	if err := errors.ValidateName("net", name); err != nil {
		return nil, err
	}
	if !nl.netIDs.claim(uint32(id)) {
		return nil, errors.New(errors.ErrCodeIDInUse, "net id %d is already in use", id)
	}
	return nl.addNet(id, name), nil
}

func (nl *Netlist) addNet(id NetID, name string) *Net {
	n := &Net{id: id, name: name}
	nl.nets[id] = n
	nl.bump()
	return n
}

// DeleteNet removes n, detaches it from every gate pin and clears its global
// input/output roles. Attached gates survive.
func (nl *Netlist) DeleteNet(n *Net) error {
	if err := nl.checkNet(n); err != nil {
		return err
	}
	for _, ep := range n.sources {
		g := nl.gates[ep.Gate]
		g.fanOut = removeEndpoint(g.fanOut, ep.Key())
	}
	for _, ep := range n.destinations {
		g := nl.gates[ep.Gate]
		g.fanIn = removeEndpoint(g.fanIn, ep.Key())
	}
	n.sources, n.destinations = nil, nil
	delete(nl.globalIn, n.id)
	delete(nl.globalOut, n.id)
	delete(nl.nets, n.id)
	nl.netIDs.release(uint32(n.id))
	nl.bump()
	return nil
}

// Net returns the net with the given id, or nil.
func (nl *Netlist) Net(id NetID) *Net { return nl.nets[id] }

// Nets returns all nets sorted by id.
func (nl *Netlist) Nets() []*Net {
	return sortedValues(nl.nets)
}

// NumNets returns the number of live nets.
func (nl *Netlist) NumNets() int { return len(nl.nets) }

// ContainsNet reports whether n is a live net of this netlist.
func (nl *Netlist) ContainsNet(n *Net) bool {
	return n != nil && nl.nets[n.id] == n
}

func (nl *Netlist) checkNet(n *Net) error {
	if n == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "nil net")
	}
	if nl.nets[n.id] != n {
		return errors.New(errors.ErrCodeNotInNetlist, "net %d (%s) does not belong to the netlist", n.id, n.name)
	}
	return nil
}

// =============================================================================
// Connections
// =============================================================================

// AddSource connects the output (or inout) pin of g as a driver of n.
func (nl *Netlist) AddSource(n *Net, g *Gate, pin string) (Endpoint, error) {
	if err := nl.checkConnection(n, g, pin, Pin.drives, "drive"); err != nil {
		return Endpoint{}, err
	}
	ep := Endpoint{Gate: g.id, Pin: pin, Net: n.id, Direction: Output}
	n.sources = append(n.sources, ep)
	g.fanOut = append(g.fanOut, ep)
	nl.bump()
	return ep, nil
}

// AddDestination connects the input (or inout) pin of g as a sink of n.
func (nl *Netlist) AddDestination(n *Net, g *Gate, pin string) (Endpoint, error) {
	if err := nl.checkConnection(n, g, pin, Pin.receives, "receive"); err != nil {
		return Endpoint{}, err
	}
	ep := Endpoint{Gate: g.id, Pin: pin, Net: n.id, Direction: Input}
	n.destinations = append(n.destinations, ep)
	g.fanIn = append(g.fanIn, ep)
	nl.bump()
	return ep, nil
}

func (nl *Netlist) checkConnection(n *Net, g *Gate, pin string, allowed func(Pin) bool, verb string) error {
	if err := nl.checkNet(n); err != nil {
		return err
	}
	if err := nl.checkGate(g); err != nil {
		return err
	}
	p, ok := g.typ.Pin(pin)
	if !ok {
		return errors.New(errors.ErrCodeInvalidArgument, "gate type %s has no pin %s", g.typ.name, pin)
	}
	if !allowed(p) {
		return errors.New(errors.ErrCodeInvalidArgument, "%s pin %s of gate %s cannot %s a net", p.Direction, pin, g.name, verb)
	}
	if ep, taken := g.connected(pin); taken {
		return errors.New(errors.ErrCodeInvalidArgument, "pin %s of gate %s is already connected to net %d", pin, g.name, ep.Net)
	}
	return nil
}

// RemoveSource disconnects the driving pin of g from n.
func (nl *Netlist) RemoveSource(n *Net, g *Gate, pin string) error {
	if err := nl.checkNet(n); err != nil {
		return err
	}
	if err := nl.checkGate(g); err != nil {
		return err
	}
	key := EndpointKey{Gate: g.id, Pin: pin}
	if !slices.ContainsFunc(n.sources, func(ep Endpoint) bool { return ep.Key() == key }) {
		return errors.New(errors.ErrCodeInvalidArgument, "pin %s of gate %s is not a source of net %d", pin, g.name, n.id)
	}
	n.sources = removeEndpoint(n.sources, key)
	g.fanOut = removeEndpoint(g.fanOut, key)
	nl.bump()
	return nil
}

// RemoveDestination disconnects the driven pin of g from n.
func (nl *Netlist) RemoveDestination(n *Net, g *Gate, pin string) error {
	if err := nl.checkNet(n); err != nil {
		return err
	}
	if err := nl.checkGate(g); err != nil {
		return err
	}
	key := EndpointKey{Gate: g.id, Pin: pin}
	if !slices.ContainsFunc(n.destinations, func(ep Endpoint) bool { return ep.Key() == key }) {
		return errors.New(errors.ErrCodeInvalidArgument, "pin %s of gate %s is not a destination of net %d", pin, g.name, n.id)
	}
	n.destinations = removeEndpoint(n.destinations, key)
	g.fanIn = removeEndpoint(g.fanIn, key)
	nl.bump()
	return nil
}

// Connect wires srcPin of src to dstPin of dst. The net already driven by
// srcPin is reused; otherwise a net named "<src>_<srcPin>" is created.
func (nl *Netlist) Connect(src *Gate, srcPin string, dst *Gate, dstPin string) (*Net, error) {
	if err := nl.checkGate(src); err != nil {
		return nil, err
	}
	if err := nl.checkGate(dst); err != nil {
		return nil, err
	}
	if ep, ok := src.FanOutEndpoint(srcPin); ok {
		n := nl.nets[ep.Net]
		if _, err := nl.AddDestination(n, dst, dstPin); err != nil {
			return nil, err
		}
		return n, nil
	}
	n, err := nl.CreateNet(src.name + "_" + srcPin)
	if err != nil {
		return nil, err
	}
	if _, err := nl.AddSource(n, src, srcPin); err != nil {
		_ = nl.DeleteNet(n)
		return nil, err
	}
	if _, err := nl.AddDestination(n, dst, dstPin); err != nil {
		_ = nl.DeleteNet(n)
		return nil, err
	}
	return n, nil
}

func sortedValues[K ~uint32, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[k])
	}
	return out
}
