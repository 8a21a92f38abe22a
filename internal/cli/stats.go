package cli

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gatewalk/pkg/netlist"
)

// netlistStats summarizes the structure of a netlist.
type netlistStats struct {
	Name          string         `json:"name"`
	Library       string         `json:"library"`
	Gates         int            `json:"gates"`
	Nets          int            `json:"nets"`
	Modules       int            `json:"modules"`
	Sequential    int            `json:"sequential"`
	Combinational int            `json:"combinational"`
	Constants     int            `json:"constants"`
	GlobalInputs  int            `json:"global_inputs"`
	GlobalOutputs int            `json:"global_outputs"`
	Unrouted      int            `json:"unrouted_nets"`
	MultiDriven   int            `json:"multi_driven_nets"`
	Types         map[string]int `json:"types"`
}

func collectStats(nl *netlist.Netlist) netlistStats {
	s := netlistStats{
		Name:          nl.Name(),
		Library:       nl.Library().Name(),
		Gates:         nl.NumGates(),
		Nets:          nl.NumNets(),
		Modules:       len(nl.Modules()),
		GlobalInputs:  len(nl.GlobalInputNets()),
		GlobalOutputs: len(nl.GlobalOutputNets()),
		Types:         make(map[string]int),
	}
	for _, g := range nl.Gates() {
		s.Types[g.Type().Name()]++
		switch {
		case nl.IsConstantGate(g):
			s.Constants++
		case g.HasProperty(netlist.Sequential):
			s.Sequential++
		case g.HasProperty(netlist.Combinational):
			s.Combinational++
		}
	}
	for _, n := range nl.Nets() {
		if n.IsUnrouted() {
			s.Unrouted++
		}
		if n.IsMultiDriven() {
			s.MultiDriven++
		}
	}
	return s
}

func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <netlist.json>",
		Short: "Summarize gates, nets and modules of a netlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadNetlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s := collectStats(d.nl)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			printStatsReport(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printStatsReport(w io.Writer, s netlistStats) {
	fmt.Fprintln(w, StyleTitle.Render(s.Name))
	printKeyValue(w, "Library", s.Library)
	printKeyValue(w, "Gates", strconv.Itoa(s.Gates))
	printKeyValue(w, "  sequential", strconv.Itoa(s.Sequential))
	printKeyValue(w, "  combinational", strconv.Itoa(s.Combinational))
	printKeyValue(w, "  constant", strconv.Itoa(s.Constants))
	printKeyValue(w, "Nets", strconv.Itoa(s.Nets))
	printKeyValue(w, "  global in/out", fmt.Sprintf("%d / %d", s.GlobalInputs, s.GlobalOutputs))
	if s.Unrouted > 0 {
		printKeyValue(w, "  unrouted", StyleWarning.Render(strconv.Itoa(s.Unrouted)))
	}
	if s.MultiDriven > 0 {
		printKeyValue(w, "  multi-driven", StyleWarning.Render(strconv.Itoa(s.MultiDriven)))
	}
	printKeyValue(w, "Modules", strconv.Itoa(s.Modules))

	names := slices.SortedFunc(maps.Keys(s.Types), func(a, b string) int {
		return cmp.Or(cmp.Compare(s.Types[b], s.Types[a]), cmp.Compare(a, b))
	})
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, strconv.Itoa(s.Types[name])}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderTable([]string{"Type", "Count"}, rows))
}
