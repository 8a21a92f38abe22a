package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// gateRef is the JSON form of a gate in command output.
type gateRef struct {
	ID   netlist.GateID `json:"id"`
	Name string         `json:"name"`
	Type string         `json:"type"`
}

func gateRefs(gates []*netlist.Gate) []gateRef {
	out := make([]gateRef, len(gates))
	for i, g := range gates {
		out[i] = gateRef{ID: g.ID(), Name: g.Name(), Type: g.Type().Name()}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeGates prints one gate per line as "name  TYPE  #id", or a JSON array.
func writeGates(w io.Writer, gates []*netlist.Gate, asJSON bool) error {
	if asJSON {
		return writeJSON(w, gateRefs(gates))
	}
	for _, g := range gates {
		if _, err := fmt.Fprintf(w, "%s\t%s\t#%d\n", g.Name(), g.Type().Name(), g.ID()); err != nil {
			return err
		}
	}
	return nil
}

// writePath prints gates joined by arrows, or a JSON array.
func writePath(w io.Writer, gates []*netlist.Gate, asJSON bool) error {
	if asJSON {
		return writeJSON(w, gateRefs(gates))
	}
	names := make([]string, len(gates))
	for i, g := range gates {
		names[i] = g.Name()
	}
	_, err := fmt.Fprintln(w, strings.Join(names, " "+iconArrow+" "))
	return err
}

// gateNames returns the names of gates in order.
func gateNames(gates []*netlist.Gate) []string {
	out := make([]string, len(gates))
	for i, g := range gates {
		out[i] = g.Name()
	}
	return out
}
