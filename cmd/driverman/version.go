package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(root *rootCommand) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Args:  noArgs,
		// No config or logger needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			if !asJSON {
				root.printf("driverman %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
				return nil
			}

			details, err := json.Marshal(map[string]string{
				"version": Version,
				"go":      runtime.Version(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
			})
			if err != nil {
				return fmt.Errorf("marshal version details: %w", err)
			}
			root.printf("%s\n", details)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print version details as JSON")
	return cmd
}
