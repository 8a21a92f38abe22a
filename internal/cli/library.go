package cli

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gatewalk/pkg/library"
	"github.com/matzehuels/gatewalk/pkg/netlist"
)

func (c *CLI) libraryCommand() *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List the gate types of the active gate library",
		Long: `List the gate types of the library selected by --library or the config
file, or of the built-in library.

With --export the library is written as a definition file that can be edited
and passed back through --library.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := c.library()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			switch strings.ToLower(export) {
			case "":
			case string(library.FormatTOML):
				return toml.NewEncoder(w).Encode(library.Describe(lib))
			case string(library.FormatYAML), "yml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(library.Describe(lib)); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown export format %q (want toml or yaml)", export)
			}

			fmt.Fprintln(w, StyleTitle.Render(lib.Name()))
			fmt.Fprintln(w, renderTable([]string{"Type", "Properties", "Inputs", "Outputs"}, libraryRows(lib)))
			return nil
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "write the library definition (toml, yaml)")
	return cmd
}

func libraryRows(lib *netlist.GateLibrary) [][]string {
	var rows [][]string
	for _, t := range lib.GateTypes() {
		props := make([]string, 0)
		for _, p := range t.Properties() {
			props = append(props, p.String())
		}
		rows = append(rows, []string{
			t.Name(),
			strings.Join(props, ", "),
			pinList(t.InputPins()),
			pinList(t.OutputPins()),
		})
	}
	return rows
}

// pinList renders pins as "D CLK:clock EN:enable".
func pinList(pins []netlist.Pin) string {
	parts := make([]string, len(pins))
	for i, p := range pins {
		parts[i] = p.Name
		if p.Type != netlist.PinTypeNone {
			parts[i] += ":" + p.Type.String()
		}
	}
	return strings.Join(parts, " ")
}
