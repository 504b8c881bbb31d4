package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ZebulonRouseFrantzich/driverman/internal/config"
	"github.com/ZebulonRouseFrantzich/driverman/internal/logging"
)

// rootCommand keeps the state shared by all subcommands.
type rootCommand struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	lookup config.LookupFunc

	logger *logrus.Logger
	cmd    *cobra.Command

	configFile  string
	logFormat   string
	verbose     bool
	noColor     bool
	metricsFile string
	noLock      bool
}

func newRootCommand(ctx context.Context, stdout, stderr io.Writer) *rootCommand {
	c := &rootCommand{
		ctx:    ctx,
		stdout: stdout,
		stderr: stderr,
		lookup: os.LookupEnv,
	}

	c.cmd = &cobra.Command{
		Use:   "driverman",
		Short: "Keep a chromedriver that matches the installed Chrome",
		Long: `driverman resolves the chromedriver version for the local Chrome
installation and keeps that driver in a store directory.

Running driverman without a subcommand is the same as "driverman ensure".`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		Args:              noArgs,
	}
	c.cmd.SetOut(stdout)
	c.cmd.SetErr(stderr)
	c.cmd.SetContext(ctx)
	c.cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	c.cmd.PersistentFlags().AddFlagSet(c.rootFlagSet())

	ensure := newEnsureCommand(c)
	c.cmd.RunE = ensure.RunE
	c.cmd.Flags().AddFlagSet(ensure.Flags())
	c.cmd.AddCommand(
		ensure,
		newResolveCommand(c),
		newCachedCommand(c),
		newVersionCommand(c),
	)
	return c
}

func (c *rootCommand) rootFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVarP(&c.configFile, "config", "c", "", "Lua config file")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&c.logFormat, "log-format", string(logging.FormatText), "log format: text or json")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	flags.AddFlagSet(optionFlagSet())
	return flags
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	logger, err := logging.New(logging.Options{
		Out:     c.stderr,
		Verbose: c.verbose,
		Format:  logging.Format(c.logFormat),
	})
	if err != nil {
		return &usageError{err: err}
	}
	c.logger = logger
	c.logger.WithField("version", Version).Debug("driverman starting")
	return nil
}

// loadConfig builds the configuration from all layers.
func (c *rootCommand) loadConfig(cmd *cobra.Command) (config.Config, error) {
	flagOpts, err := optionsFromFlags(cmd.Flags())
	if err != nil {
		return config.Config{}, &usageError{err: err}
	}

	cfg, err := config.Load(cmd.Context(), config.LoadOptions{
		ConfigFile: c.configFile,
		Flags:      flagOpts,
		Lookup:     c.lookup,
		Logger:     c.logger,
	})
	if err != nil {
		return config.Config{}, &configError{err: err, verbose: c.verbose}
	}
	return cfg, nil
}

// color returns a printer honoring --no-color.
func (c *rootCommand) color(attrs ...color.Attribute) *color.Color {
	p := color.New(attrs...)
	if c.noColor {
		p.DisableColor()
	}
	return p
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := newRootCommand(ctx, stdout, stderr)
	return c.execute(args)
}

func (c *rootCommand) execute(args []string) int {
	c.cmd.SetArgs(args)
	err := c.cmd.Execute()
	if err == nil {
		return exitOK
	}
	code, msg := describeError(err)
	c.color(color.FgRed).Fprintf(c.stderr, "Error: %s\n", msg)
	return code
}

// printf writes to stdout; output errors are not actionable.
func (c *rootCommand) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.stdout, format, args...)
}
