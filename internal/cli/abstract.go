package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gatewalk/pkg/abstraction"
	"github.com/matzehuels/gatewalk/pkg/cache"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/query"
)

// defaultSubset is the gate selection abstractions are built over unless
// --subset says otherwise.
const defaultSubset = "prop(sequential)"

// buildAbstraction compiles subset and builds an abstraction over the
// matching gates behind a spinner.
func (c *CLI) buildAbstraction(ctx context.Context, nl *netlist.Netlist, subset string, includeAll bool) (*abstraction.Abstraction, error) {
	f, err := query.Compile(subset, nl)
	if err != nil {
		return nil, err
	}
	gates := nl.GatesWhere(f)
	if len(gates) == 0 {
		return nil, fmt.Errorf("subset %q selects no gates", subset)
	}
	opts := []abstraction.Option{
		abstraction.WithLogger(c.Logger),
		abstraction.WithWorkers(c.cfg.Workers),
	}
	if includeAll {
		opts = append(opts, abstraction.IncludeAllGates())
	}

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Building abstraction over %d gates...", len(gates)))
	spin.Start()
	prog := newProgress(loggerFromContext(ctx))
	a, err := abstraction.New(ctx, nl, gates, opts...)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Built abstraction over %d gates, %d endpoints", len(gates), a.NumEndpoints()))
	return a, nil
}

// adjacency is the gate-level summary of an abstraction.
type adjacency struct {
	Successors   []netlist.GateID `json:"successors"`
	Predecessors []netlist.GateID `json:"predecessors"`
}

func summarize(a *abstraction.Abstraction) (map[netlist.GateID]adjacency, error) {
	out := make(map[netlist.GateID]adjacency)
	for _, g := range a.Gates() {
		succ, err := a.UniqueGateSuccessors(g)
		if err != nil {
			return nil, err
		}
		pred, err := a.UniqueGatePredecessors(g)
		if err != nil {
			return nil, err
		}
		out[g.ID()] = adjacency{
			Successors:   idsOf(succ),
			Predecessors: idsOf(pred),
		}
	}
	return out, nil
}

func idsOf(gates []*netlist.Gate) []netlist.GateID {
	ids := make([]netlist.GateID, len(gates))
	for i, g := range gates {
		ids[i] = g.ID()
	}
	return ids
}

func (c *CLI) abstractCommand() *cobra.Command {
	var (
		subset     string
		includeAll bool
		noCache    bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "abstract <netlist.json>",
		Short: "Print the gate-level adjacency of a netlist abstraction",
		Long: `Build an abstraction over the gates selected by --subset and print, for
each of them, the subset gates one hop away through logic outside the subset.

Summaries are cached by netlist fingerprint and subset.`,
		Example: `  gatewalk abstract design.json
  gatewalk abstract design.json --subset 'prop(ff) & module(core)' --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.loadNetlist(ctx, args[0])
			if err != nil {
				return err
			}
			store, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer store.Close()
			logger := loggerFromContext(ctx)

			key := keyer().AbstractionKey(d.hash, cache.AbstractionKeyOpts{Selection: subset, IncludeAll: includeAll})
			var (
				summary map[netlist.GateID]adjacency
				cached  bool
			)
			if data, ok, err := store.Get(ctx, key); err != nil {
				logger.Warn("cache read failed", "err", err)
			} else if ok && json.Unmarshal(data, &summary) == nil {
				cached = true
			}
			if !cached {
				a, err := c.buildAbstraction(ctx, d.nl, subset, includeAll)
				if err != nil {
					return err
				}
				if summary, err = summarize(a); err != nil {
					return err
				}
				if data, err := json.Marshal(summary); err == nil {
					if err := store.Set(ctx, key, data, c.cfg.Cache.TTL.Duration); err != nil {
						logger.Warn("cache write failed", "err", err)
					}
				}
			}

			w := cmd.OutOrStdout()
			ids := make([]netlist.GateID, 0, len(summary))
			for id := range summary {
				if d.nl.Gate(id) == nil {
					return fmt.Errorf("cache entry %s refers to unknown gate %d; rerun with --no-cache", key, id)
				}
				ids = append(ids, id)
			}
			slices.Sort(ids)

			if asJSON {
				out := make(map[string]map[string][]gateRef, len(ids))
				for _, id := range ids {
					out[d.nl.Gate(id).Name()] = map[string][]gateRef{
						"successors":   gateRefs(resolveIDs(d.nl, summary[id].Successors)),
						"predecessors": gateRefs(resolveIDs(d.nl, summary[id].Predecessors)),
					}
				}
				return writeJSON(w, out)
			}

			printStats(len(ids), 0, cached)
			rows := make([][]string, len(ids))
			for i, id := range ids {
				rows[i] = []string{
					d.nl.Gate(id).Name(),
					joinDim(gateNames(resolveIDs(d.nl, summary[id].Predecessors))),
					joinDim(gateNames(resolveIDs(d.nl, summary[id].Successors))),
				}
			}
			fmt.Fprintln(w, renderTable([]string{"Gate", "Predecessors", "Successors"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&subset, "subset", "s", defaultSubset, "gates to abstract over, as a filter expression")
	cmd.Flags().BoolVar(&includeAll, "include-all", false, "index the endpoints of every gate, not only the subset")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) distanceCommand() *cobra.Command {
	var (
		subset, from, to, target, dir string
		asJSON                        bool
	)

	cmd := &cobra.Command{
		Use:   "distance <netlist.json>",
		Short: "Count abstraction hops from a gate to a target",
		Long: `Build an abstraction over --subset and count the hops from --from to
the nearest subset gate matching --to (a gate) or --target (an expression).

--dir output follows successors, input follows predecessors and inout
returns the smaller of both distances.`,
		Example: `  gatewalk distance design.json --from key_reg_0 --target 'name(~"^out_")'
  gatewalk distance design.json --from '#12' --to '#80' --dir inout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.loadNetlist(ctx, args[0])
			if err != nil {
				return err
			}
			start, err := resolveGate(d.nl, from)
			if err != nil {
				return err
			}
			pd, err := netlist.ParsePinDirection(dir)
			if err != nil {
				return err
			}
			matches, err := distanceTarget(d.nl, to, target)
			if err != nil {
				return err
			}

			a, err := c.buildAbstraction(ctx, d.nl, subset, false)
			if err != nil {
				return err
			}
			dist, ok, err := abstraction.NewDecorator(a).GateShortestPathDistance(start, func(ep netlist.Endpoint) bool {
				g := d.nl.Gate(ep.Gate)
				return g != nil && matches(g)
			}, pd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, map[string]any{"from": start.Name(), "found": ok, "distance": dist})
			}
			if !ok {
				printWarning("No target reachable from %s", start.Name())
				return nil
			}
			_, err = fmt.Fprintln(w, strconv.Itoa(dist))
			return err
		},
	}

	cmd.Flags().StringVarP(&subset, "subset", "s", defaultSubset, "gates to abstract over, as a filter expression")
	cmd.Flags().StringVar(&from, "from", "", "start gate, by name or #id")
	cmd.Flags().StringVar(&to, "to", "", "target gate, by name or #id")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target gates, as a filter expression")
	cmd.Flags().StringVarP(&dir, "dir", "d", "output", "direction: output, input or inout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func distanceTarget(nl *netlist.Netlist, to, target string) (func(*netlist.Gate) bool, error) {
	switch {
	case to != "" && target != "":
		return nil, fmt.Errorf("--to and --target are mutually exclusive")
	case to != "":
		g, err := resolveGate(nl, to)
		if err != nil {
			return nil, err
		}
		id := g.ID()
		return func(x *netlist.Gate) bool { return x.ID() == id }, nil
	case target != "":
		return query.Compile(target, nl)
	}
	return nil, fmt.Errorf("give a target with --to or --target")
}
