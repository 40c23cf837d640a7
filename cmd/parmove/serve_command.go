package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/parmove/internal/serve"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [output-dir]",
		Short: "Serve an output directory over HTTP until interrupted",
		Args:  maxOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.outputDirArg(args)
			if err != nil {
				return err
			}
			log, closer, err := a.newLogger()
			if err != nil {
				return err
			}
			defer closer.Close()

			return serve.ListenAndServe(cmd.Context(), addr, dir, log, func(at net.Addr) {
				fmt.Fprintf(a.stdout, "Serving %s on http://%s/\n", dir, at)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
