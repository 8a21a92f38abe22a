// Package io reads and writes netlists as JSON.
//
// The format is an interchange format for fixtures, the CLI and external
// tools; it is not meant as a long-term persistence format. It keeps every
// id, so traversal results computed on an exported netlist refer to the same
// gates after re-import.
//
// # JSON Format
//
//	{
//	  "name": "counter",
//	  "library": "gatewalk_default",
//	  "gates": [
//	    {"id": 1, "name": "gnd", "type": "GND", "role": "gnd"},
//	    {"id": 2, "name": "ff", "type": "DFF", "module": 2}
//	  ],
//	  "nets": [
//	    {"id": 1, "name": "zero",
//	     "sources": [{"gate": 1, "pin": "O"}],
//	     "destinations": [{"gate": 2, "pin": "D"}]},
//	    {"id": 2, "name": "q", "sources": [{"gate": 2, "pin": "Q"}], "global_output": true}
//	  ],
//	  "modules": [
//	    {"id": 2, "name": "regs", "parent": 1}
//	  ]
//	}
//
// Gate types are resolved by name in the library passed to [ReadJSON]; the
// "library" field is informational. A gate without "module" belongs to the
// top module, which always has id 1 and is not listed. "role" is "vcc" or
// "gnd".
//
// # Import and Export
//
//	nl, err := io.ImportJSON("design.json", library.Default())
//	if err != nil {
//	    return err
//	}
//	err = io.ExportJSON(nl, "copy.json")
//
// Decoding errors carry the INVALID_INPUT code and name the offending gate,
// net or module.
package io
