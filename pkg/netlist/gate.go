package netlist

import "slices"

// Gate is an instance of a [GateType] inside a netlist. Gates are created and
// destroyed only through the [Netlist]; the accessors here are read-only.
//
// Fan-in endpoints are the pins through which the gate is a destination of a
// net, fan-out endpoints the pins through which it drives a net. Both lists
// keep connection order.
type Gate struct {
	id     GateID
	name   string
	typ    *GateType
	module ModuleID
	fanIn  []Endpoint
	fanOut []Endpoint
}

// ID returns the gate id.
func (g *Gate) ID() GateID { return g.id }

// Name returns the instance name.
func (g *Gate) Name() string { return g.name }

// Type returns the gate type.
func (g *Gate) Type() *GateType { return g.typ }

// Module returns the id of the module that owns the gate.
func (g *Gate) Module() ModuleID { return g.module }

// HasProperty is shorthand for g.Type().HasProperty(p).
func (g *Gate) HasProperty(p Property) bool { return g.typ.HasProperty(p) }

// FanInEndpoints returns the endpoints through which the gate receives signals.
func (g *Gate) FanInEndpoints() []Endpoint { return slices.Clone(g.fanIn) }

// FanOutEndpoints returns the endpoints through which the gate drives signals.
func (g *Gate) FanOutEndpoints() []Endpoint { return slices.Clone(g.fanOut) }

// Endpoints returns fan-in endpoints followed by fan-out endpoints.
func (g *Gate) Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(g.fanIn)+len(g.fanOut))
	out = append(out, g.fanIn...)
	return append(out, g.fanOut...)
}

// FanInEndpoint returns the fan-in endpoint at pin.
func (g *Gate) FanInEndpoint(pin string) (Endpoint, bool) { return findPin(g.fanIn, pin) }

// FanOutEndpoint returns the fan-out endpoint at pin.
func (g *Gate) FanOutEndpoint(pin string) (Endpoint, bool) { return findPin(g.fanOut, pin) }

// FanInNet returns the net connected to the input pin.
func (g *Gate) FanInNet(pin string) (NetID, bool) {
	ep, ok := findPin(g.fanIn, pin)
	return ep.Net, ok
}

// FanOutNet returns the net connected to the output pin.
func (g *Gate) FanOutNet(pin string) (NetID, bool) {
	ep, ok := findPin(g.fanOut, pin)
	return ep.Net, ok
}

// FanInNets returns the distinct fan-in nets in connection order.
func (g *Gate) FanInNets() []NetID { return distinctNets(g.fanIn) }

// FanOutNets returns the distinct fan-out nets in connection order.
func (g *Gate) FanOutNets() []NetID { return distinctNets(g.fanOut) }

func (g *Gate) connected(pin string) (Endpoint, bool) {
	if ep, ok := findPin(g.fanIn, pin); ok {
		return ep, true
	}
	return findPin(g.fanOut, pin)
}

func findPin(eps []Endpoint, pin string) (Endpoint, bool) {
	for _, ep := range eps {
		if ep.Pin == pin {
			return ep, true
		}
	}
	return Endpoint{}, false
}

func distinctNets(eps []Endpoint) []NetID {
	out := make([]NetID, 0, len(eps))
	for _, ep := range eps {
		if !slices.Contains(out, ep.Net) {
			out = append(out, ep.Net)
		}
	}
	return out
}

func removeEndpoint(eps []Endpoint, key EndpointKey) []Endpoint {
	return slices.DeleteFunc(eps, func(ep Endpoint) bool { return ep.Key() == key })
}
