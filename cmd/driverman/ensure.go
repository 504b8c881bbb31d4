package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/driverman/internal/driver"
	"github.com/ZebulonRouseFrantzich/driverman/internal/lock"
)

func newEnsureCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Install the matching chromedriver if it is not already in the store",
		Long: `Resolve the chromedriver version for the installed Chrome and make sure
the store holds it. Nothing is downloaded when the store is up to date.

Exit codes:
  0  driver is up to date or was installed
  2  invalid flags or configuration
  3  browser not found
  4  browser is older than the stable driver
  5  driver version cannot be determined
  6  metadata or download request failed
  7  archive could not be extracted
  8  another driverman run holds the store lock`,
		Args: noArgs,
		RunE: root.runEnsure,
	}

	flags := cmd.Flags()
	flags.StringVar(&root.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	flags.BoolVar(&root.noLock, "no-lock", false, "do not take the store lock")
	return cmd
}

func (c *rootCommand) runEnsure(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	if c.metricsFile != "" {
		reg = prometheus.NewRegistry()
		defer func() {
			if writeErr := prometheus.WriteToTextfile(c.metricsFile, reg); writeErr != nil && err == nil {
				err = fmt.Errorf("write metrics file: %w", writeErr)
			}
		}()
	}

	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	acq, err := newAcquirer(cfg, c.logger, registerer)
	if err != nil {
		return err
	}

	if !c.noLock {
		l, err := lock.Acquire(cmd.Context(), cfg.StoreDir)
		if err != nil {
			return err
		}
		defer func() {
			if releaseErr := l.Release(); releaseErr != nil {
				c.logger.WithError(releaseErr).Warn("failed to release store lock")
			}
		}()
	}

	res, err := acq.Ensure(cmd.Context())
	if err != nil {
		return err
	}

	c.printResult(res)
	return nil
}

func (c *rootCommand) printResult(res *driver.Result) {
	switch res.State {
	case driver.StateRecordUpdated:
		c.color(color.FgGreen).Fprintf(c.stdout, "✓ Installed chromedriver %s\n", res.Version)
	default:
		c.color(color.FgCyan).Fprintf(c.stdout, "✓ chromedriver %s is up to date\n", res.Version)
	}
	c.printf("  %s\n", res.DriverPath)
}
