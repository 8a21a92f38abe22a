package cli

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gatewalk/pkg/cache"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

// seqFlags are the options shared by seq and seqmap.
type seqFlags struct {
	dir    string
	depth  int
	forbid []string
	asJSON bool
}

func (f *seqFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "forward", "direction: forward or backward")
	cmd.Flags().IntVar(&f.depth, "depth", 1, "sequential stages to cross (0 = all reachable)")
	cmd.Flags().StringSliceVar(&f.forbid, "forbid", nil, "pin types not to enter, e.g. clock,reset")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
}

func (f *seqFlags) options() (traversal.Direction, []traversal.SequentialOption, error) {
	dir, err := traversal.ParseDirection(strings.ToLower(f.dir))
	if err != nil {
		return 0, nil, err
	}
	pins, err := parsePinTypes(f.forbid)
	if err != nil {
		return 0, nil, err
	}
	return dir, []traversal.SequentialOption{
		traversal.WithDepth(f.depth),
		traversal.WithForbiddenPins(pins...),
	}, nil
}

func (c *CLI) seqCommand() *cobra.Command {
	var (
		flags         seqFlags
		gate, filter  string
		combinational bool
		workers       int
	)

	cmd := &cobra.Command{
		Use:   "seq <netlist.json>",
		Short: "Find the next sequential gates of a gate",
		Long: `Walk from the selected gates through combinational logic and print the
sequential gates where each walk stops.

With --filter every matching gate is queried in parallel on --workers
goroutines. With --combinational the combinational gates passed on the way
are printed instead.`,
		Example: `  gatewalk seq design.json --gate ctr_reg_0
  gatewalk seq design.json --filter 'prop(ff)' --dir backward --forbid clock,reset
  gatewalk seq design.json --gate '#42' --depth 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadNetlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			starts, err := selectGates(d.nl, gate, filter)
			if err != nil {
				return err
			}
			dir, opts, err := flags.options()
			if err != nil {
				return err
			}
			tr := c.traversal(d.nl)

			if combinational {
				if len(starts) != 1 {
					return fmt.Errorf("--combinational takes a single --gate")
				}
				res, err := tr.NextCombinationalGates(starts[0], dir, opts...)
				if err != nil {
					return err
				}
				return writeGates(cmd.OutOrStdout(), res, flags.asJSON)
			}

			if len(starts) == 1 {
				res, err := tr.NextSequentialGates(starts[0], dir, opts...)
				if err != nil {
					return err
				}
				return writeGates(cmd.OutOrStdout(), res, flags.asJSON)
			}

			prog := newProgress(loggerFromContext(cmd.Context()))
			res, err := tr.BatchNextSequentialGates(cmd.Context(), starts, dir, cmp.Or(workers, c.cfg.Workers), opts...)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Queried %d gates", len(starts)))
			return writeSequentialMap(cmd.OutOrStdout(), d.nl, idMap(res), flags.asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&gate, "gate", "g", "", "start gate, by name or #id")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "start gates, as a filter expression")
	cmd.Flags().BoolVar(&combinational, "combinational", false, "print the combinational gates reached instead")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel queries for --filter (default from config)")
	return cmd
}

func (c *CLI) seqmapCommand() *cobra.Command {
	var (
		flags   seqFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "seqmap <netlist.json>",
		Short: "Map every sequential gate to its next sequential gates",
		Long: `Compute the sequential successor (or predecessor) map of the whole netlist.

Results are cached by netlist fingerprint and options, so repeated runs over
an unchanged netlist are served from the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.loadNetlist(ctx, args[0])
			if err != nil {
				return err
			}
			dir, opts, err := flags.options()
			if err != nil {
				return err
			}
			store, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			key := keyer().SequentialMapKey(d.hash, cache.SequentialKeyOpts{
				Direction:     dir.String(),
				Depth:         flags.depth,
				ForbiddenPins: flags.forbid,
			})
			m, cached, err := c.sequentialMap(ctx, store, key, d.nl, dir, opts)
			if err != nil {
				return err
			}
			if !flags.asJSON {
				printStats(len(m), 0, cached)
			}
			return writeSequentialMap(cmd.OutOrStdout(), d.nl, m, flags.asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	return cmd
}

// sequentialMap returns the cached map under key, or computes and stores it.
// Cache failures are logged and never fail the command.
func (c *CLI) sequentialMap(ctx context.Context, store cache.Cache, key string, nl *netlist.Netlist, dir traversal.Direction, opts []traversal.SequentialOption) (map[netlist.GateID][]netlist.GateID, bool, error) {
	logger := loggerFromContext(ctx)
	if data, ok, err := store.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if ok {
		var m map[netlist.GateID][]netlist.GateID
		if err := json.Unmarshal(data, &m); err == nil && validIDs(nl, m) {
			return m, true, nil
		}
		logger.Debug("discarding unusable cache entry", "key", key)
	}

	prog := newProgress(logger)
	res, err := c.traversal(nl).NextSequentialGatesMap(dir, opts...)
	if err != nil {
		return nil, false, err
	}
	m := idMap(res)
	prog.done(fmt.Sprintf("Mapped %d sequential gates", len(m)))

	if data, err := json.Marshal(m); err == nil {
		if err := store.Set(ctx, key, data, c.cfg.Cache.TTL.Duration); err != nil {
			logger.Warn("cache write failed", "err", err)
		}
	}
	return m, false, nil
}

func idMap(res map[netlist.GateID][]*netlist.Gate) map[netlist.GateID][]netlist.GateID {
	m := make(map[netlist.GateID][]netlist.GateID, len(res))
	for id, gates := range res {
		ids := make([]netlist.GateID, len(gates))
		for i, g := range gates {
			ids[i] = g.ID()
		}
		m[id] = ids
	}
	return m
}

func validIDs(nl *netlist.Netlist, m map[netlist.GateID][]netlist.GateID) bool {
	for id, next := range m {
		if nl.Gate(id) == nil {
			return false
		}
		for _, n := range next {
			if nl.Gate(n) == nil {
				return false
			}
		}
	}
	return true
}

// writeSequentialMap prints "gate -> next, next" lines in gate id order, or
// a JSON object keyed by gate name.
func writeSequentialMap(w io.Writer, nl *netlist.Netlist, m map[netlist.GateID][]netlist.GateID, asJSON bool) error {
	ids := slices.Sorted(maps.Keys(m))
	if asJSON {
		out := make(map[string][]gateRef, len(m))
		for _, id := range ids {
			out[nl.Gate(id).Name()] = gateRefs(resolveIDs(nl, m[id]))
		}
		return writeJSON(w, out)
	}
	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", nl.Gate(id).Name(), iconArrow, joinDim(gateNames(resolveIDs(nl, m[id])))); err != nil {
			return err
		}
	}
	return nil
}

func resolveIDs(nl *netlist.Netlist, ids []netlist.GateID) []*netlist.Gate {
	out := make([]*netlist.Gate, 0, len(ids))
	for _, id := range ids {
		if g := nl.Gate(id); g != nil {
			out = append(out, g)
		}
	}
	return out
}
