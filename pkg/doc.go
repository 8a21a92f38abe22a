// Package pkg holds the libraries behind gatewalk.
//
// # Overview
//
// Gatewalk answers reachability questions over gate-level netlists. The
// libraries are layered bottom-up:
//
//	gate library (TOML/YAML)      netlist interchange file (JSON)
//	         ↓                              ↓
//	   [library] package  ──────→   [io] package
//	                                        ↓
//	                              [netlist] package (gates, nets, modules)
//	                                        ↓
//	         [traversal] package (filtered walks, sequential stages, paths)
//	                                        ↓
//	   [abstraction] package (precomputed adjacency over a gate subset)
//
// # Quick Start
//
// Load a design and find the registers one stage after a gate:
//
//	lib := library.Default()
//	nl, err := io.ImportJSON("design.json", lib)
//	if err != nil {
//	    return err
//	}
//	t := traversal.New(nl)
//	next, err := t.NextSequentialGates(nl.Gate(42), traversal.Forward)
//
// Build an abstraction over the registers and measure distances on it:
//
//	regs := nl.GatesWhere(query.MustCompile("prop(ff)", nl))
//	a, err := abstraction.New(ctx, nl, regs)
//	d := abstraction.NewDecorator(a)
//	hops, ok, err := d.ShortestPathDistanceToGate(regs[0], regs[1], netlist.Output)
//
// # Packages
//
// ## Model
//
// [netlist] - Gates, nets, modules and the gate library types. Ids are
// allocated per netlist and every mutation bumps a version counter that
// long-running readers use to detect concurrent modification.
//
// [library] - Gate library definitions in TOML or YAML, validated on load,
// and the built-in default library.
//
// [io] - The JSON interchange format for netlists.
//
// ## Algorithms
//
// [traversal] - Layered breadth-first searches with endpoint filters,
// sequential stage queries with an optional result cache, gate chains,
// shortest paths and connected subgraphs.
//
// [abstraction] - A snapshot of endpoint adjacency restricted to a gate
// subset, built in parallel, and a decorator that runs distance and matching
// queries over it.
//
// [query] - The gate filter expression language used by the CLI and the
// HTTP API.
//
// ## Support
//
// [cache] - Result caching for command output: file and redis backends,
// content-addressed keys and OpenTelemetry instrumentation.
//
// [config] - The user configuration file.
//
// [render/dot] - Graphviz diagrams of netlist neighbourhoods.
//
// [observability] - Hook interfaces for builds, batches, cache accesses and
// HTTP requests, with an OpenTelemetry implementation.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information set at link time.
//
// [netlist]: github.com/matzehuels/gatewalk/pkg/netlist
// [library]: github.com/matzehuels/gatewalk/pkg/library
// [io]: github.com/matzehuels/gatewalk/pkg/io
// [traversal]: github.com/matzehuels/gatewalk/pkg/traversal
// [abstraction]: github.com/matzehuels/gatewalk/pkg/abstraction
// [query]: github.com/matzehuels/gatewalk/pkg/query
// [cache]: github.com/matzehuels/gatewalk/pkg/cache
// [config]: github.com/matzehuels/gatewalk/pkg/config
// [render/dot]: github.com/matzehuels/gatewalk/pkg/render/dot
// [observability]: github.com/matzehuels/gatewalk/pkg/observability
// [errors]: github.com/matzehuels/gatewalk/pkg/errors
// [buildinfo]: github.com/matzehuels/gatewalk/pkg/buildinfo
package pkg
