package io_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/errors"
	gwio "github.com/matzehuels/gatewalk/pkg/io"
	"github.com/matzehuels/gatewalk/pkg/library"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
)

func annotated(t *testing.T) *netlisttest.Builder {
	t.Helper()
	b := netlisttest.Sequential(t)
	b.GlobalInput("pi", "ff1", "CLK")
	b.GlobalOutput("po", "out", "O")
	regs, err := b.NL.CreateModule("regs", b.NL.TopModule(), b.G("ff1"), b.G("ff2"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.NL.CreateModule("inner", regs, b.G("ff2")); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	b := annotated(t)
	var first bytes.Buffer
	if err := gwio.WriteJSON(b.NL, &first); err != nil {
		t.Fatal(err)
	}

	nl, err := gwio.ReadJSON(bytes.NewReader(first.Bytes()), library.Default())
	if err != nil {
		t.Fatal(err)
	}
	if nl.NumGates() != b.NL.NumGates() || nl.NumNets() != b.NL.NumNets() {
		t.Fatalf("imported %d gates, %d nets; want %d, %d", nl.NumGates(), nl.NumNets(), b.NL.NumGates(), b.NL.NumNets())
	}
	for _, want := range b.NL.Gates() {
		got := nl.Gate(want.ID())
		if got == nil || got.Name() != want.Name() || got.Type().Name() != want.Type().Name() {
			t.Errorf("gate %d = %v, want %s", want.ID(), got, want.Name())
			continue
		}
		if got.Module() != want.Module() {
			t.Errorf("gate %s module = %d, want %d", want.Name(), got.Module(), want.Module())
		}
		if len(got.Endpoints()) != len(want.Endpoints()) {
			t.Errorf("gate %s has %d endpoints, want %d", want.Name(), len(got.Endpoints()), len(want.Endpoints()))
		}
	}
	if !nl.IsGNDGate(nl.Gate(b.G("gnd").ID())) || !nl.IsVCCGate(nl.Gate(b.G("vcc").ID())) {
		t.Error("constant gate roles lost")
	}
	if len(nl.GlobalInputNets()) != 1 || len(nl.GlobalOutputNets()) != 1 {
		t.Errorf("global nets = %d in, %d out; want 1, 1", len(nl.GlobalInputNets()), len(nl.GlobalOutputNets()))
	}
	if nl.Name() != b.NL.Name() {
		t.Errorf("Name() = %q, want %q", nl.Name(), b.NL.Name())
	}
	if nl.UUID() == b.NL.UUID() {
		t.Error("imported netlist shares the UUID of the original")
	}

	var second bytes.Buffer
	if err := gwio.WriteJSON(nl, &second); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("re-export differs:\n%s\nvs\n%s", first.String(), second.String())
	}
}

func TestModulesOutOfOrder(t *testing.T) {
	doc := `{
	  "gates": [{"id": 1, "name": "a", "type": "BUF", "module": 3}],
	  "nets": [],
	  "modules": [
	    {"id": 3, "name": "leaf", "parent": 2},
	    {"id": 2, "name": "mid", "parent": 1}
	  ]
	}`
	nl, err := gwio.ReadJSON(strings.NewReader(doc), library.Default())
	if err != nil {
		t.Fatal(err)
	}
	leaf := nl.Module(3)
	if leaf == nil || leaf.Parent() != 2 {
		t.Fatalf("module 3 = %v, want child of 2", leaf)
	}
	if !nl.ModuleContainsGate(nl.Module(2), nl.Gate(1), true) {
		t.Error("gate a is not below module mid")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"gates": [`},
		{"unknown type", `{"gates": [{"id": 1, "name": "a", "type": "NAND9"}], "nets": []}`},
		{"duplicate gate id", `{"gates": [{"id": 1, "name": "a", "type": "BUF"}, {"id": 1, "name": "b", "type": "BUF"}], "nets": []}`},
		{"unknown role", `{"gates": [{"id": 1, "name": "a", "type": "BUF", "role": "clock"}], "nets": []}`},
		{"unknown gate", `{"gates": [], "nets": [{"id": 1, "name": "n", "sources": [{"gate": 7, "pin": "O"}]}]}`},
		{"unknown pin", `{"gates": [{"id": 1, "name": "a", "type": "BUF"}], "nets": [{"id": 1, "name": "n", "sources": [{"gate": 1, "pin": "Q"}]}]}`},
		{"input pin as source", `{"gates": [{"id": 1, "name": "a", "type": "BUF"}], "nets": [{"id": 1, "name": "n", "sources": [{"gate": 1, "pin": "I"}]}]}`},
		{"orphan module", `{"gates": [], "nets": [], "modules": [{"id": 2, "name": "m", "parent": 9}]}`},
		{"unknown module", `{"gates": [{"id": 1, "name": "a", "type": "BUF", "module": 4}], "nets": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gwio.ReadJSON(strings.NewReader(tt.doc), library.Default())
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}

	if _, err := gwio.ReadJSON(strings.NewReader(`{}`), nil); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("nil library error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestImportExportFile(t *testing.T) {
	b := netlisttest.Pipeline(t)
	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := gwio.ExportJSON(b.NL, path); err != nil {
		t.Fatal(err)
	}
	nl, err := gwio.ImportJSON(path, library.Default())
	if err != nil {
		t.Fatal(err)
	}
	got := netlisttest.Names(nl.Gates())
	want := netlisttest.Names(b.NL.Gates())
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("gates = %v, want %v", got, want)
	}

	_, err = gwio.ImportJSON(filepath.Join(t.TempDir(), "missing.json"), library.Default())
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteJSONOmitsTopModule(t *testing.T) {
	b := netlisttest.Pipeline(t)
	var buf bytes.Buffer
	if err := gwio.WriteJSON(b.NL, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"modules"`) || strings.Contains(buf.String(), `"module"`) {
		t.Errorf("flat netlist output mentions modules:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `"type": "DFF"`) {
		t.Errorf("output lacks gate types:\n%s", buf.String())
	}
}
