package netlist

import "slices"

// Net connects driving endpoints (sources) to driven endpoints (destinations).
// A net with no sources or no destinations is unrouted but valid; a net with
// more than one source is multi-driven, which is legal but usually a defect.
type Net struct {
	id           NetID
	name         string
	sources      []Endpoint
	destinations []Endpoint
}

// ID returns the net id.
func (n *Net) ID() NetID { return n.id }

// Name returns the net name.
func (n *Net) Name() string { return n.name }

// Sources returns the driving endpoints in connection order.
func (n *Net) Sources() []Endpoint { return slices.Clone(n.sources) }

// Destinations returns the driven endpoints in connection order.
func (n *Net) Destinations() []Endpoint { return slices.Clone(n.destinations) }

// NumSources returns the number of driving endpoints.
func (n *Net) NumSources() int { return len(n.sources) }

// NumDestinations returns the number of driven endpoints.
func (n *Net) NumDestinations() int { return len(n.destinations) }

// IsUnrouted reports whether the net lacks sources or destinations.
func (n *Net) IsUnrouted() bool { return len(n.sources) == 0 || len(n.destinations) == 0 }

// IsMultiDriven reports whether more than one endpoint drives the net.
func (n *Net) IsMultiDriven() bool { return len(n.sources) > 1 }
