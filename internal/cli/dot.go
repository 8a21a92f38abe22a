package cli

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/query"
	"github.com/matzehuels/gatewalk/pkg/render/dot"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

func (c *CLI) dotCommand() *cobra.Command {
	var (
		filter, around  string
		radius          int
		from, to        string
		rankdir, output string
		svg, detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "dot <netlist.json>",
		Short: "Draw gates and the nets between them",
		Long: `Write a Graphviz DOT diagram of the gates matching --filter, or of the
neighbourhood of --around up to --radius hops in either direction.

--from and --to highlight a shortest path between two gates. --svg lays the
diagram out with the embedded Graphviz and writes SVG instead.`,
		Example: `  gatewalk dot design.json --around ctr_reg_3 --radius 2 --svg -o ctr.svg
  gatewalk dot design.json --filter 'module(alu)' --from a_in --to alu_q | dot -Tpng > alu.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.loadNetlist(ctx, args[0])
			if err != nil {
				return err
			}
			if rankdir != "" && !validRankDir(rankdir) {
				return fmt.Errorf("invalid --rankdir %q", rankdir)
			}
			nl := d.nl
			tr := c.traversal(nl)

			var gates []*netlist.Gate
			switch {
			case around != "" && filter != "":
				return fmt.Errorf("--around and --filter are mutually exclusive")
			case around != "":
				g, err := resolveGate(nl, around)
				if err != nil {
					return err
				}
				hood, err := tr.SubgraphGates(g, traversal.Forward, nil, traversal.Undirected(), traversal.WithMaxDepth(radius))
				if err != nil {
					return err
				}
				gates = append(hood, g)
			default:
				f, err := query.Compile(cmp.Or(filter, "all"), nl)
				if err != nil {
					return err
				}
				gates = nl.GatesWhere(f)
			}

			var highlight []*netlist.Gate
			if from != "" || to != "" {
				if highlight, err = highlightPath(tr, from, to); err != nil {
					return err
				}
				if len(highlight) == 0 {
					loggerFromContext(ctx).Warn("no path to highlight", "from", from, "to", to)
				}
				gates = append(gates, highlight...)
			}

			src := dot.ToDOT(nl, gates, dot.Options{
				RankDir:   strings.ToUpper(cmp.Or(rankdir, c.cfg.Render.RankDir)),
				Detailed:  detailed,
				Highlight: highlight,
			})
			data := []byte(src)
			if svg {
				if data, err = dot.RenderSVG(ctx, src); err != nil {
					return err
				}
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Drew %d gates", len(gates))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "gates to draw, as a filter expression (default all)")
	cmd.Flags().StringVar(&around, "around", "", "draw the neighbourhood of this gate")
	cmd.Flags().IntVar(&radius, "radius", 2, "hops around --around")
	cmd.Flags().StringVar(&from, "from", "", "highlight a shortest path from this gate")
	cmd.Flags().StringVar(&to, "to", "", "highlight a shortest path to this gate")
	cmd.Flags().StringVar(&rankdir, "rankdir", "", "Graphviz rank direction: LR, TB, RL, BT (default from config)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label gates with type and id")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func highlightPath(tr *traversal.Traversal, from, to string) ([]*netlist.Gate, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("--from and --to go together")
	}
	nl := tr.Netlist()
	start, err := resolveGate(nl, from)
	if err != nil {
		return nil, err
	}
	end, err := resolveGate(nl, to)
	if err != nil {
		return nil, err
	}
	return tr.ShortestPath(start, end, netlist.Inout)
}

// validRankDir reports whether s is a Graphviz rank direction.
func validRankDir(s string) bool {
	switch strings.ToUpper(s) {
	case "LR", "RL", "TB", "BT":
		return true
	}
	return false
}
