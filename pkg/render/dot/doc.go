// Package dot renders netlist neighbourhoods as Graphviz diagrams.
//
// Gates become nodes and every net connecting two drawn gates becomes one
// edge per destination, labelled with the net name. Sequential gates are
// drawn as filled boxes, combinational gates as rounded boxes, and the gates
// of a highlighted path get a red outline.
//
//	src := dot.ToDOT(nl, gates, dot.Options{Highlight: path})
//	svg, err := dot.RenderSVG(ctx, src)
//
// [ToDOT] produces plain DOT text that can be saved and processed with any
// Graphviz installation. [RenderSVG] lays it out in-process through
// [github.com/goccy/go-graphviz], so no graphviz binary is needed.
package dot
