package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/query"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

func (c *CLI) pathCommand() *cobra.Command {
	var (
		gate, dir string
		stop      []string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "path <netlist.json>",
		Short: "List the gates between a gate and the next stop gates",
		Long: `Walk from a gate until gates whose type carries one of the --stop
properties and print every gate on the way, stop gates included.`,
		Example: `  gatewalk path design.json --gate alu_out --stop ff,latch
  gatewalk path design.json --gate '#17' --dir backward --stop io`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadNetlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := resolveGate(d.nl, gate)
			if err != nil {
				return err
			}
			direction, err := traversal.ParseDirection(strings.ToLower(dir))
			if err != nil {
				return err
			}
			props, err := parseProperties(stop)
			if err != nil {
				return err
			}
			res, err := c.traversal(d.nl).Path(g, direction, props...)
			if err != nil {
				return err
			}
			return writeGates(cmd.OutOrStdout(), res, asJSON)
		},
	}

	cmd.Flags().StringVarP(&gate, "gate", "g", "", "start gate, by name or #id")
	cmd.Flags().StringVarP(&dir, "dir", "d", "forward", "direction: forward or backward")
	cmd.Flags().StringSliceVar(&stop, "stop", []string{"sequential"}, "stop at gates with these properties")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) shortestCommand() *cobra.Command {
	var (
		from, to, dir string
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "shortest <netlist.json>",
		Short: "Find a shortest path between two gates",
		Long: `Find a shortest gate path from --from to --to.

--dir output follows successors, input follows predecessors and inout
searches both ways and keeps the shorter path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadNetlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			start, err := resolveGate(d.nl, from)
			if err != nil {
				return err
			}
			end, err := resolveGate(d.nl, to)
			if err != nil {
				return err
			}
			pd, err := netlist.ParsePinDirection(dir)
			if err != nil {
				return err
			}
			res, err := c.traversal(d.nl).ShortestPath(start, end, pd)
			if err != nil {
				return err
			}
			if len(res) == 0 && !asJSON {
				printWarning("No path from %s to %s", start.Name(), end.Name())
				return nil
			}
			return writePath(cmd.OutOrStdout(), res, asJSON)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start gate, by name or #id")
	cmd.Flags().StringVar(&to, "to", "", "end gate, by name or #id")
	cmd.Flags().StringVarP(&dir, "dir", "d", "output", "direction: output, input or inout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) chainCommand() *cobra.Command {
	var (
		gate, filter string
		types        []string
		inPins       []string
		outPins      []string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "chain <netlist.json>",
		Short: "Detect a chain of same-typed gates through a gate",
		Long: `Grow a chain from a gate forward and backward through gates of the same
type, connected output pin to input pin. With --types the chain follows a
repeating sequence of types instead. The chain ends at branches, at
loops and at gates rejected by --filter.`,
		Example: `  gatewalk chain design.json --gate carry_4 --in CI --out CO
  gatewalk chain design.json --gate lut_0 --types LUT4,CARRY`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadNetlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := resolveGate(d.nl, gate)
			if err != nil {
				return err
			}
			var keep traversal.GateFilter
			if filter != "" {
				if keep, err = query.Compile(filter, d.nl); err != nil {
					return err
				}
			}
			tr := c.traversal(d.nl)

			var res []*netlist.Gate
			if len(types) == 0 {
				res, err = tr.GateChain(g, inPins, outPins, keep)
			} else {
				var seq []*netlist.GateType
				if seq, err = resolveTypes(d.nl.Library(), types); err != nil {
					return err
				}
				res, err = tr.ComplexGateChain(g, seq, inPins, outPins, keep)
			}
			if err != nil {
				return err
			}
			return writePath(cmd.OutOrStdout(), res, asJSON)
		},
	}

	cmd.Flags().StringVarP(&gate, "gate", "g", "", "gate in the chain, by name or #id")
	cmd.Flags().StringSliceVar(&types, "types", nil, "repeating gate type sequence")
	cmd.Flags().StringSliceVar(&inPins, "in", nil, "input pins that link the chain (default any)")
	cmd.Flags().StringSliceVar(&outPins, "out", nil, "output pins that link the chain (default any)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only chain gates matching this expression")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func resolveTypes(lib *netlist.GateLibrary, names []string) ([]*netlist.GateType, error) {
	out := make([]*netlist.GateType, len(names))
	for i, name := range names {
		t, ok := lib.GateType(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("gate type %q is not in library %s", name, lib.Name())
		}
		out[i] = t
	}
	return out, nil
}

func (c *CLI) subgraphCommand() *cobra.Command {
	var (
		gate, dir, filter string
		depth             int
		asJSON            bool
	)

	cmd := &cobra.Command{
		Use:   "subgraph <netlist.json>",
		Short: "Collect a filtered neighbourhood or the connected components",
		Long: `With --gate, walk up to --depth layers from the gate and collect every
gate reached that matches --filter.

Without --gate, split the gates matching --filter (default: combinational
gates) into connected components and print one component per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadNetlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if filter == "" {
				filter = "prop(combinational) & !vcc & !gnd"
			}
			match, err := query.Compile(filter, d.nl)
			if err != nil {
				return err
			}
			var opts []traversal.SearchOption
			if depth > 0 {
				opts = append(opts, traversal.WithMaxDepth(depth))
			}
			tr := c.traversal(d.nl)
			w := cmd.OutOrStdout()

			if gate == "" {
				comps, err := tr.MatchingSubgraphs(match, opts...)
				if err != nil {
					return err
				}
				if asJSON {
					out := make([][]gateRef, len(comps))
					for i, comp := range comps {
						out[i] = gateRefs(comp)
					}
					return writeJSON(w, out)
				}
				for _, comp := range comps {
					fmt.Fprintln(w, strings.Join(gateNames(comp), " "))
				}
				return nil
			}

			g, err := resolveGate(d.nl, gate)
			if err != nil {
				return err
			}
			direction, err := traversal.ParseDirection(strings.ToLower(dir))
			if err != nil {
				return err
			}
			res, err := tr.SubgraphGates(g, direction, match, opts...)
			if err != nil {
				return err
			}
			return writeGates(w, res, asJSON)
		},
	}

	cmd.Flags().StringVarP(&gate, "gate", "g", "", "start gate, by name or #id")
	cmd.Flags().StringVarP(&dir, "dir", "d", "forward", "direction: forward or backward")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "gates to collect, as a filter expression")
	cmd.Flags().IntVar(&depth, "depth", 0, "maximum layers to walk (0 = unbounded)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
