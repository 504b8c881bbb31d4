package main

import (
	"github.com/spf13/cobra"
)

func newCachedCommand(root *rootCommand) *cobra.Command {
	var showPath bool

	cmd := &cobra.Command{
		Use:   "cached",
		Short: "Print the chromedriver version recorded in the store",
		Long: `Print the chromedriver version recorded in the store, or 0 when no
driver has been installed yet. No network requests are made.`,
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

			root.printf("%s\n", acq.CachedVersion())
			if showPath {
				root.printf("%s\n", acq.DriverPath())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPath, "path", false, "also print the driver executable path")
	return cmd
}
