package netlist

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/gatewalk/pkg/errors"
)

// Property is a boolean classification carried by a gate type. The engines
// consume properties as opaque predicates; their meaning is fixed by the gate
// library that defines the types.
type Property uint8

const (
	Combinational Property = iota
	Sequential
	FF
	Latch
	Buffer
	Carry
	LUT
	PowerSource
	GroundSource
	RAM
	IOPad
	numProperties
)

var propertyNames = [numProperties]string{
	Combinational: "combinational",
	Sequential:    "sequential",
	FF:            "ff",
	Latch:         "latch",
	Buffer:        "buffer",
	Carry:         "carry",
	LUT:           "lut",
	PowerSource:   "power",
	GroundSource:  "ground",
	RAM:           "ram",
	IOPad:         "io",
}

func (p Property) String() string {
	if p < numProperties {
		return propertyNames[p]
	}
	return "unknown"
}

// ParseProperty parses the lower-case name of a property.
func ParseProperty(s string) (Property, error) {
	for i, name := range propertyNames {
		if strings.EqualFold(s, name) {
			return Property(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown gate type property %q", s)
}

// GateType is the immutable classification shared by all gates of one kind.
type GateType struct {
	name  string
	props uint32
	pins  []Pin
	index map[string]int
}

// NewGateType creates a gate type. Pin names must be unique. Types carrying
// [FF] or [Latch] implicitly carry [Sequential] as well.
func NewGateType(name string, props []Property, pins []Pin) (*GateType, error) {
	if err := errors.ValidateName("gate type", name); err != nil {
		return nil, err
	}
	t := &GateType{
		name:  name,
		pins:  slices.Clone(pins),
		index: make(map[string]int, len(pins)),
	}
	for _, p := range props {
		if p >= numProperties {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "gate type %s: invalid property %d", name, p)
		}
		t.props |= 1 << p
	}
	if t.HasAnyProperty(FF, Latch) {
		t.props |= 1 << Sequential
	}
	for i, p := range t.pins {
		if err := errors.ValidatePinName(p.Name); err != nil {
			return nil, errors.Context(err, "gate type %s", name)
		}
		if p.Direction == DirectionNone {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "gate type %s: pin %s has no direction", name, p.Name)
		}
		if _, dup := t.index[p.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "gate type %s: duplicate pin %s", name, p.Name)
		}
		t.index[p.Name] = i
	}
	return t, nil
}

// Name returns the type name, e.g. "DFFE".
func (t *GateType) Name() string { return t.name }

// HasProperty reports whether the type carries p.
func (t *GateType) HasProperty(p Property) bool {
	return p < numProperties && t.props&(1<<p) != 0
}

// HasAnyProperty reports whether the type carries at least one of props.
func (t *GateType) HasAnyProperty(props ...Property) bool {
	for _, p := range props {
		if t.HasProperty(p) {
			return true
		}
	}
	return false
}

// Properties returns the properties of the type in declaration order.
func (t *GateType) Properties() []Property {
	var out []Property
	for p := Property(0); p < numProperties; p++ {
		if t.HasProperty(p) {
			out = append(out, p)
		}
	}
	return out
}

// Pins returns all pins in declaration order.
func (t *GateType) Pins() []Pin { return slices.Clone(t.pins) }

// Pin looks up a pin by name.
func (t *GateType) Pin(name string) (Pin, bool) {
	i, ok := t.index[name]
	if !ok {
		return Pin{}, false
	}
	return t.pins[i], true
}

// InputPins returns the pins that may receive a signal (input and inout).
func (t *GateType) InputPins() []Pin {
	return t.pinsWhere(Pin.receives)
}

// OutputPins returns the pins that may drive a signal (output and inout).
func (t *GateType) OutputPins() []Pin {
	return t.pinsWhere(Pin.drives)
}

// PinsOfType returns the pins of the given functional type.
func (t *GateType) PinsOfType(pt PinType) []Pin {
	return t.pinsWhere(func(p Pin) bool { return p.Type == pt })
}

func (t *GateType) pinsWhere(fn func(Pin) bool) []Pin {
	var out []Pin
	for _, p := range t.pins {
		if fn(p) {
			out = append(out, p)
		}
	}
	return out
}

func (t *GateType) String() string { return t.name }

// GateLibrary is a named collection of gate types.
type GateLibrary struct {
	name  string
	types map[string]*GateType
}

// NewGateLibrary creates an empty library.
func NewGateLibrary(name string) *GateLibrary {
	return &GateLibrary{name: name, types: make(map[string]*GateType)}
}

// Name returns the library name.
func (l *GateLibrary) Name() string { return l.name }

// AddGateType registers t. Type names are unique within a library.
func (l *GateLibrary) AddGateType(t *GateType) error {
	if t == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "nil gate type")
	}
	if _, dup := l.types[t.name]; dup {
		return errors.New(errors.ErrCodeIDInUse, "gate type %s already defined in library %s", t.name, l.name)
	}
	l.types[t.name] = t
	return nil
}

// GateType looks up a type by name.
func (l *GateLibrary) GateType(name string) (*GateType, bool) {
	t, ok := l.types[name]
	return t, ok
}

// GateTypes returns all types sorted by name.
func (l *GateLibrary) GateTypes() []*GateType {
	out := make([]*GateType, 0, len(l.types))
	for _, name := range slices.Sorted(maps.Keys(l.types)) {
		out = append(out, l.types[name])
	}
	return out
}
