package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// ReadJSON decodes a netlist from r, resolving gate types in lib.
//
// Ids from the document are kept. ReadJSON fails with INVALID_INPUT when the
// JSON is malformed, a gate type is unknown to lib, an id is used twice, a
// connection names an unknown gate or pin, or a module's parent chain does
// not reach the top module. The cause carries the offending entity.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader, lib *netlist.GateLibrary) (*netlist.Netlist, error) {
	if lib == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "nil gate library")
	}
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode netlist")
	}

	var opts []netlist.Option
	if doc.Name != "" {
		opts = append(opts, netlist.WithName(doc.Name))
	}
	nl := netlist.New(lib, opts...)

	for _, g := range doc.Gates {
		t, ok := lib.GateType(g.Type)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "gate %d (%s): unknown gate type %q in library %s", g.ID, g.Name, g.Type, lib.Name())
		}
		gt, err := nl.CreateGateWithID(netlist.GateID(g.ID), t, g.Name)
		if err != nil {
			return nil, invalid(err, "gate %d (%s)", g.ID, g.Name)
		}
		switch g.Role {
		case "":
		case roleVCC:
			err = nl.MarkVCCGate(gt)
		case roleGND:
			err = nl.MarkGNDGate(gt)
		default:
			err = errors.New(errors.ErrCodeInvalidInput, "unknown role %q", g.Role)
		}
		if err != nil {
			return nil, invalid(err, "gate %d (%s)", g.ID, g.Name)
		}
	}

	for _, n := range doc.Nets {
		nt, err := nl.CreateNetWithID(netlist.NetID(n.ID), n.Name)
		if err != nil {
			return nil, invalid(err, "net %d (%s)", n.ID, n.Name)
		}
		for _, p := range n.Sources {
			if _, err := nl.AddSource(nt, nl.Gate(netlist.GateID(p.Gate)), p.Pin); err != nil {
				return nil, invalid(err, "net %s source %d.%s", n.Name, p.Gate, p.Pin)
			}
		}
		for _, p := range n.Destinations {
			if _, err := nl.AddDestination(nt, nl.Gate(netlist.GateID(p.Gate)), p.Pin); err != nil {
				return nil, invalid(err, "net %s destination %d.%s", n.Name, p.Gate, p.Pin)
			}
		}
		if n.GlobalInput {
			if err := nl.MarkGlobalInputNet(nt); err != nil {
				return nil, invalid(err, "net %s", n.Name)
			}
		}
		if n.GlobalOutput {
			if err := nl.MarkGlobalOutputNet(nt); err != nil {
				return nil, invalid(err, "net %s", n.Name)
			}
		}
	}

	if err := createModules(nl, doc.Modules); err != nil {
		return nil, err
	}
	for _, g := range doc.Gates {
		if g.Module == 0 {
			continue
		}
		m := nl.Module(netlist.ModuleID(g.Module))
		if m == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "gate %d (%s): unknown module %d", g.ID, g.Name, g.Module)
		}
		if err := nl.AssignGate(m, nl.Gate(netlist.GateID(g.ID))); err != nil {
			return nil, invalid(err, "gate %d (%s)", g.ID, g.Name)
		}
	}
	return nl, nil
}

// createModules creates modules in any order as long as every parent chain
// ends at the top module.
func createModules(nl *netlist.Netlist, mods []module) error {
	pending := mods
	for len(pending) > 0 {
		var next []module
		for _, m := range pending {
			parent := nl.Module(netlist.ModuleID(m.Parent))
			if parent == nil {
				next = append(next, m)
				continue
			}
			if _, err := nl.CreateModuleWithID(netlist.ModuleID(m.ID), m.Name, parent); err != nil {
				return invalid(err, "module %d (%s)", m.ID, m.Name)
			}
		}
		if len(next) == len(pending) {
			return errors.New(errors.ErrCodeInvalidInput, "module %d (%s): parent %d does not exist", next[0].ID, next[0].Name, next[0].Parent)
		}
		pending = next
	}
	return nil
}

// invalid re-codes a netlist error as INVALID_INPUT, keeping it as cause.
func invalid(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeInvalidInput, err, format, args...)
}

// ImportJSON reads the netlist file at path.
func ImportJSON(path string, lib *netlist.GateLibrary) (*netlist.Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, lib)
}
