package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// Options configures diagram generation.
type Options struct {
	// RankDir is the Graphviz rankdir; empty means LR.
	RankDir string
	// Detailed adds the gate type and id to node labels.
	Detailed bool
	// Highlight marks gates, typically a path, with a red outline.
	Highlight []*netlist.Gate
}

// ToDOT renders gates and the nets between them. Nets leaving the drawn set
// are omitted. Output is deterministic: gates in id order, edges in source
// id, pin and destination order.
func ToDOT(nl *netlist.Netlist, gates []*netlist.Gate, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}
	drawn := make(map[netlist.GateID]bool, len(gates))
	for _, g := range gates {
		drawn[g.ID()] = true
	}
	hot := make(map[netlist.GateID]bool, len(opts.Highlight))
	for _, g := range opts.Highlight {
		hot[g.ID()] = true
	}
	sorted := slices.Clone(gates)
	slices.SortFunc(sorted, func(a, b *netlist.Gate) int { return int(a.ID()) - int(b.ID()) })
	sorted = slices.CompactFunc(sorted, func(a, b *netlist.Gate) bool { return a.ID() == b.ID() })

	var buf bytes.Buffer
	buf.WriteString("digraph netlist {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [fontsize=10, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	for _, g := range sorted {
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(g.ID()), strings.Join(nodeAttrs(nl, g, opts.Detailed, hot[g.ID()]), ", "))
	}

	buf.WriteString("\n")
	for _, g := range sorted {
		for _, out := range g.FanOutEndpoints() {
			n := nl.Net(out.Net)
			if n == nil {
				continue
			}
			for _, in := range n.Destinations() {
				if !drawn[in.Gate] {
					continue
				}
				attrs := []string{fmt.Sprintf("label=%q", n.Name())}
				if hot[g.ID()] && hot[in.Gate] {
					attrs = append(attrs, "color=red", "penwidth=2")
				}
				fmt.Fprintf(&buf, "  %s -> %s [%s];\n", nodeID(g.ID()), nodeID(in.Gate), strings.Join(attrs, ", "))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id netlist.GateID) string { return "g" + strconv.FormatUint(uint64(id), 10) }

func nodeAttrs(nl *netlist.Netlist, g *netlist.Gate, detailed, highlighted bool) []string {
	label := g.Name()
	if detailed {
		label = fmt.Sprintf("%s\n%s #%d", g.Name(), g.Type().Name(), g.ID())
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case g.HasProperty(netlist.Sequential):
		attrs = append(attrs, "style=filled", "fillcolor=lightsteelblue")
	case nl.IsConstantGate(g):
		attrs = append(attrs, "shape=plaintext")
	}
	if highlighted {
		attrs = append(attrs, "color=red", "penwidth=2")
	}
	return attrs
}

// RenderSVG lays out a DOT graph and returns SVG with a normalized viewBox.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag with one whose viewBox starts at
// the origin and whose size matches it, so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
