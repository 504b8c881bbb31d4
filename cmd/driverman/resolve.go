package main

import (
	"github.com/spf13/cobra"
)

func newResolveCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the chromedriver version ensure would install",
		Long: `Resolve the chromedriver version for the installed Chrome without
downloading anything or touching the store.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			acq, err := newAcquirer(cfg, root.logger, nil)
			if err != nil {
				return err
			}

			target, err := acq.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			root.printf("%s\n", target)
			return nil
		},
	}
}
