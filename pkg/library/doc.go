// Package library loads gate libraries from TOML or YAML definitions.
//
// A definition names the library and lists its gate types, each with a set
// of properties (combinational, ff, latch, buffer, carry, ...) and its pins:
//
//	name = "my_cells"
//
//	[[type]]
//	name = "DFFE"
//	properties = ["ff"]
//	pins = [
//	  { name = "D", direction = "input", type = "data" },
//	  { name = "CLK", direction = "input", type = "clock" },
//	  { name = "EN", direction = "input", type = "enable" },
//	  { name = "Q", direction = "output", type = "data" },
//	]
//
// YAML files use the same fields with the gate types under "types". Files
// are validated before they are built; failures carry INVALID_LIBRARY.
//
// [Default] returns a small built-in library (AND2, OR2, XOR2, INV, BUF,
// MUX2, LUT4, CARRY, DFF, DFFE, DFFR, LATCH, IBUF, OBUF, GND, VCC) used by
// the command-line tool when no library is configured and by the tests.
package library
