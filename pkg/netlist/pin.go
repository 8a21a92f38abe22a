package netlist

import (
	"strings"

	"github.com/matzehuels/gatewalk/pkg/errors"
)

// PinDirection is the signal direction of a pin. It doubles as the search
// direction of the shortest-path and abstraction queries, where Output means
// following successors, Input following predecessors and Inout both.
type PinDirection int

const (
	DirectionNone PinDirection = iota
	Input
	Output
	Inout
	Internal
)

var pinDirectionNames = map[PinDirection]string{
	DirectionNone: "none",
	Input:         "input",
	Output:        "output",
	Inout:         "inout",
	Internal:      "internal",
}

func (d PinDirection) String() string {
	if s, ok := pinDirectionNames[d]; ok {
		return s
	}
	return "unknown"
}

// ParsePinDirection parses the lower-case name of a direction.
func ParsePinDirection(s string) (PinDirection, error) {
	for d, name := range pinDirectionNames {
		if strings.EqualFold(s, name) {
			return d, nil
		}
	}
	return DirectionNone, errors.New(errors.ErrCodeInvalidInput, "unknown pin direction %q", s)
}

// PinType is the functional classification of a pin.
type PinType int

const (
	PinTypeNone PinType = iota
	Power
	Ground
	Clock
	Reset
	Set
	Enable
	Data
	Address
	IO
)

var pinTypeNames = map[PinType]string{
	PinTypeNone: "none",
	Power:       "power",
	Ground:      "ground",
	Clock:       "clock",
	Reset:       "reset",
	Set:         "set",
	Enable:      "enable",
	Data:        "data",
	Address:     "address",
	IO:          "io",
}

func (t PinType) String() string {
	if s, ok := pinTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParsePinType parses the lower-case name of a pin type.
func ParsePinType(s string) (PinType, error) {
	for t, name := range pinTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return PinTypeNone, errors.New(errors.ErrCodeInvalidInput, "unknown pin type %q", s)
}

// Pin is a terminal of a gate type.
type Pin struct {
	Name      string
	Direction PinDirection
	Type      PinType
}

// drives reports whether the pin may act as a net source.
func (p Pin) drives() bool { return p.Direction == Output || p.Direction == Inout }

// receives reports whether the pin may act as a net destination.
func (p Pin) receives() bool { return p.Direction == Input || p.Direction == Inout }
