// Package netlist provides the graph model of a gate-level hardware design:
// gates, nets, the module hierarchy and the endpoints that connect them.
//
// # Overview
//
// A [Netlist] owns every [Gate], [Net] and [Module] of a design in per-kind
// maps keyed by [GateID], [NetID] and [ModuleID]. Entities never point at each
// other. A gate records its connections as [Endpoint] values
// {gate, pin, net, direction} that are resolved through the netlist on demand,
// so there is no ownership cycle to manage and deleting an entity is a local
// operation.
//
// # Basic Usage
//
// Gate types come from a [GateLibrary] (see package library for loading one
// from TOML or YAML). Gates are created through the netlist and wired either
// explicitly with [Netlist.AddSource] and [Netlist.AddDestination] or with the
// [Netlist.Connect] shorthand:
//
//	nl := netlist.New(lib, netlist.WithName("counter"))
//	and, _ := nl.CreateGate(andType, "u1")
//	ff, _ := nl.CreateGate(dffType, "r1")
//	nl.Connect(and, "O", ff, "D")
//
// # Identifiers
//
// Ids are unique within their kind and 0 is reserved. Automatic ids come from
// a free list (lowest released id first) and otherwise grow monotonically.
// The explicit-id constructors fail with ID_IN_USE when the id is held by
// a live entity. Operations on nil, deleted or foreign entities fail with
// NOT_IN_NETLIST or INVALID_ARGUMENT.
//
// # Hierarchy
//
// Every netlist has a top module with id 1. Each gate belongs to exactly one
// module; removing a gate from its module hands it back to the top module and
// deleting a module moves its gates and submodules to its parent.
//
// # Global Roles
//
// Constant drivers (vcc/gnd gates) and primary inputs and outputs (global
// input/output nets) are kept as sets on the netlist. Deleting a gate or net
// drops its roles.
//
// # Concurrency
//
// A Netlist is not safe for concurrent mutation. Any number of goroutines may
// read it as long as no goroutine writes. Every mutation bumps
// [Netlist.Version]; long read-only operations take a [ReadGuard] and fail
// with CONCURRENT_MUTATION if the version moved underneath them.
package netlist
