package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gatewalk/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr, subset string

	cmd := &cobra.Command{
		Use:   "serve <netlist.json>",
		Short: "Serve traversal queries over HTTP",
		Long: `Load a netlist and answer traversal queries over a JSON HTTP API until
interrupted. With --subset an abstraction is built at start-up and
/distance becomes available.`,
		Example: `  gatewalk serve design.json --addr :9000
  curl localhost:9000/gates/ff_0/sequential?depth=2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.loadNetlist(ctx, args[0])
			if err != nil {
				return err
			}
			opts := []server.Option{server.WithLogger(c.Logger)}
			if subset != "" {
				a, err := c.buildAbstraction(ctx, d.nl, subset, false)
				if err != nil {
					return err
				}
				opts = append(opts, server.WithAbstraction(a))
			}
			srv, err := server.New(d.nl, opts...)
			if err != nil {
				return err
			}

			printSuccess("Serving %s on %s", d.nl.Name(), addr)
			printDetail("Press Ctrl+C to stop")
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			printInfo("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&subset, "subset", "s", "", "build an abstraction over these gates, as a filter expression")
	return cmd
}
