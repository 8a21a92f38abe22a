package library

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

//go:embed default.toml
var defaultTOML []byte

// Format selects the encoding of a library definition.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format by file extension. Anything other than
// .yaml or .yml is treated as TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Definition is the file form of a gate library.
type Definition struct {
	Name  string    `toml:"name" yaml:"name" json:"name" validate:"required,max=256"`
	Types []TypeDef `toml:"type" yaml:"types" json:"types" validate:"required,min=1,dive"`
}

// TypeDef describes one gate type.
type TypeDef struct {
	Name       string   `toml:"name" yaml:"name" json:"name" validate:"required,max=256"`
	Properties []string `toml:"properties" yaml:"properties" json:"properties" validate:"dive,oneof=combinational sequential ff latch buffer carry lut power ground ram io"`
	Pins       []PinDef `toml:"pins" yaml:"pins" json:"pins" validate:"dive"`
}

// PinDef describes one pin of a gate type. An empty type means "none".
type PinDef struct {
	Name      string `toml:"name" yaml:"name" json:"name" validate:"required,max=256"`
	Direction string `toml:"direction" yaml:"direction" json:"direction" validate:"required,oneof=input output inout internal"`
	Type      string `toml:"type" yaml:"type" json:"type,omitempty" validate:"omitempty,oneof=none power ground clock reset set enable data address io"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in library. The result is shared; gate types are
// immutable so sharing is safe.
var Default = sync.OnceValue(func() *netlist.GateLibrary {
	lib, err := Parse(defaultTOML, FormatTOML)
	if err != nil {
		panic(fmt.Sprintf("library: built-in definition is invalid: %v", err))
	}
	return lib
})

// Load reads a library file. The format follows the file extension.
func Load(path string) (*netlist.GateLibrary, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "gate library %s", path)
		}
		return nil, fmt.Errorf("read gate library: %w", err)
	}
	lib, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, errors.Context(err, "%s", path)
	}
	return lib, nil
}

// Parse decodes, validates and builds a library.
func Parse(data []byte, format Format) (*netlist.GateLibrary, error) {
	def, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Build(def)
}

// Decode decodes a definition without building it.
func Decode(data []byte, format Format) (*Definition, error) {
	var def Definition
	switch format {
	case FormatTOML, "":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&def); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, err, "decode toml")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported library format %q", format)
	}
	return &def, nil
}

// Build validates def and converts it into a gate library.
func Build(def *Definition) (*netlist.GateLibrary, error) {
	if def == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "nil library definition")
	}
	if err := validate.Struct(def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, err, "library %q", def.Name)
	}
	lib := netlist.NewGateLibrary(def.Name)
	for _, td := range def.Types {
		t, err := buildType(td)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, err, "library %q", def.Name)
		}
		if err := lib.AddGateType(t); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, err, "library %q", def.Name)
		}
	}
	return lib, nil
}

func buildType(td TypeDef) (*netlist.GateType, error) {
	props := make([]netlist.Property, 0, len(td.Properties))
	for _, s := range td.Properties {
		p, err := netlist.ParseProperty(s)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	pins := make([]netlist.Pin, 0, len(td.Pins))
	for _, pd := range td.Pins {
		dir, err := netlist.ParsePinDirection(pd.Direction)
		if err != nil {
			return nil, errors.Context(err, "type %s pin %s", td.Name, pd.Name)
		}
		typ := netlist.PinTypeNone
		if pd.Type != "" {
			if typ, err = netlist.ParsePinType(pd.Type); err != nil {
				return nil, errors.Context(err, "type %s pin %s", td.Name, pd.Name)
			}
		}
		pins = append(pins, netlist.Pin{Name: pd.Name, Direction: dir, Type: typ})
	}
	return netlist.NewGateType(td.Name, props, pins)
}

// Describe converts a library back into its file form.
func Describe(lib *netlist.GateLibrary) *Definition {
	def := &Definition{Name: lib.Name()}
	for _, t := range lib.GateTypes() {
		td := TypeDef{Name: t.Name()}
		for _, p := range t.Properties() {
			td.Properties = append(td.Properties, p.String())
		}
		for _, p := range t.Pins() {
			pd := PinDef{Name: p.Name, Direction: p.Direction.String()}
			if p.Type != netlist.PinTypeNone {
				pd.Type = p.Type.String()
			}
			td.Pins = append(td.Pins, pd)
		}
		def.Types = append(def.Types, td)
	}
	return def
}
