package netlist

import "fmt"

// Endpoint identifies one connection point between a gate pin and a net.
// It is a plain value resolved through the owning [Netlist] on demand and
// carries no ownership.
//
// Direction is [Output] for a net source (the gate drives the net) and
// [Input] for a net destination.
type Endpoint struct {
	Gate      GateID
	Pin       string
	Net       NetID
	Direction PinDirection
}

// EndpointKey is the identity of an endpoint: the gate and the pin.
type EndpointKey struct {
	Gate GateID
	Pin  string
}

// Key returns the identity of e. Two endpoints with the same key are equal
// regardless of the net they are attached to.
func (e Endpoint) Key() EndpointKey { return EndpointKey{Gate: e.Gate, Pin: e.Pin} }

// Equal reports whether e and o denote the same gate pin.
func (e Endpoint) Equal(o Endpoint) bool { return e.Key() == o.Key() }

// IsSource reports whether the endpoint drives its net.
func (e Endpoint) IsSource() bool { return e.Direction == Output }

// IsDestination reports whether the endpoint is driven by its net.
func (e Endpoint) IsDestination() bool { return e.Direction == Input }

func (e Endpoint) String() string {
	if e.IsSource() {
		return fmt.Sprintf("gate %d.%s -> net %d", e.Gate, e.Pin, e.Net)
	}
	return fmt.Sprintf("net %d -> gate %d.%s", e.Net, e.Gate, e.Pin)
}
