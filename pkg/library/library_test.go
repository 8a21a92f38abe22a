package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

func TestDefault(t *testing.T) {
	lib := Default()
	if lib.Name() != "gatewalk_default" {
		t.Errorf("Name() = %q, want gatewalk_default", lib.Name())
	}

	tests := []struct {
		typ   string
		props []netlist.Property
		pins  int
	}{
		{"AND2", []netlist.Property{netlist.Combinational}, 3},
		{"BUF", []netlist.Property{netlist.Combinational, netlist.Buffer}, 2},
		{"CARRY", []netlist.Property{netlist.Combinational, netlist.Carry}, 5},
		{"DFFE", []netlist.Property{netlist.Sequential, netlist.FF}, 4},
		{"LATCH", []netlist.Property{netlist.Sequential, netlist.Latch}, 3},
		{"GND", []netlist.Property{netlist.GroundSource}, 1},
		{"VCC", []netlist.Property{netlist.PowerSource}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			gt, ok := lib.GateType(tt.typ)
			if !ok {
				t.Fatalf("GateType(%q) missing", tt.typ)
			}
			for _, p := range tt.props {
				if !gt.HasProperty(p) {
					t.Errorf("%s lacks property %s", tt.typ, p)
				}
			}
			if got := len(gt.Pins()); got != tt.pins {
				t.Errorf("len(Pins()) = %d, want %d", got, tt.pins)
			}
		})
	}

	if Default() != lib {
		t.Error("Default() should return the shared library")
	}
}

func TestDefaultPinTypes(t *testing.T) {
	dffe, _ := Default().GateType("DFFE")
	if pins := dffe.PinsOfType(netlist.Clock); len(pins) != 1 || pins[0].Name != "CLK" {
		t.Errorf("clock pins = %v, want [CLK]", pins)
	}
	if pins := dffe.PinsOfType(netlist.Enable); len(pins) != 1 || pins[0].Name != "EN" {
		t.Errorf("enable pins = %v, want [EN]", pins)
	}
	if got := len(dffe.InputPins()); got != 3 {
		t.Errorf("len(InputPins()) = %d, want 3", got)
	}
}

const yamlLib = `
name: tiny
types:
  - name: NAND2
    properties: [combinational]
    pins:
      - {name: A, direction: input, type: data}
      - {name: B, direction: input, type: data}
      - {name: Y, direction: output}
  - name: SDFF
    properties: [ff]
    pins:
      - {name: D, direction: input}
      - {name: CK, direction: input, type: clock}
      - {name: Q, direction: output}
`

func TestParseYAML(t *testing.T) {
	lib, err := Parse([]byte(yamlLib), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lib.Name() != "tiny" {
		t.Errorf("Name() = %q, want tiny", lib.Name())
	}
	sdff, ok := lib.GateType("SDFF")
	if !ok || !sdff.HasProperty(netlist.Sequential) {
		t.Fatalf("SDFF missing or not sequential")
	}
	y, _ := lib.GateTypes()[0].Pin("Y")
	if y.Type != netlist.PinTypeNone || y.Direction != netlist.Output {
		t.Errorf("pin Y = %+v, want output without type", y)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"bad toml", "name = ", FormatTOML},
		{"no types", `name = "x"`, FormatTOML},
		{"bad direction", `
name = "x"
[[type]]
name = "A"
pins = [{ name = "I", direction = "sideways" }]
`, FormatTOML},
		{"bad property", `
name = "x"
[[type]]
name = "A"
properties = ["magic"]
`, FormatTOML},
		{"duplicate pin", `
name = "x"
[[type]]
name = "A"
pins = [{ name = "I", direction = "input" }, { name = "I", direction = "output" }]
`, FormatTOML},
		{"duplicate type", `
name = "x"
[[type]]
name = "A"
[[type]]
name = "A"
`, FormatTOML},
		{"bad yaml", "name: [", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidLibrary) {
				t.Errorf("Parse() error = %v, want INVALID_LIBRARY", err)
			}
		})
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(defaultTOML, Format("xml"))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Parse() error = %v, want UNSUPPORTED", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cells.yml")
	if err := os.WriteFile(path, []byte(yamlLib), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lib.GateTypes()) != 2 {
		t.Errorf("len(GateTypes()) = %d, want 2", len(lib.GateTypes()))
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.toml": FormatTOML,
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a":      FormatTOML,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDescribeRoundTrip(t *testing.T) {
	def := Describe(Default())
	lib, err := Build(def)
	if err != nil {
		t.Fatalf("Build(Describe(Default())): %v", err)
	}
	if got, want := len(lib.GateTypes()), len(Default().GateTypes()); got != want {
		t.Errorf("round trip has %d types, want %d", got, want)
	}
}
