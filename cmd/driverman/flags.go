package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/ZebulonRouseFrantzich/driverman/internal/config"
)

// stringOptionFlags maps flag names to the Options field they set.
var stringOptionFlags = []struct {
	name  string
	usage string
	field func(*config.Options) *null.String
}{
	{"browser-path", "Chrome executable to match (default: auto-detected)", func(o *config.Options) *null.String { return &o.BrowserPath }},
	{"store-dir", "driver store directory (default: <user cache dir>/driverman)", func(o *config.Options) *null.String { return &o.StoreDir }},
	{"pinned-version", "install this driver version without resolution", func(o *config.Options) *null.String { return &o.PinnedVersion }},
	{"stable-url", "stable channel metadata URL", func(o *config.Options) *null.String { return &o.StableURL }},
	{"download-url", "base URL of the driver archives", func(o *config.Options) *null.String { return &o.DistributionURL }},
	{"platform", "driver platform: linux64, mac-x64, mac-arm64, win32 or win64 (default: detected)", func(o *config.Options) *null.String { return &o.Platform }},
	{"http-proxy", "proxy for http requests", func(o *config.Options) *null.String { return &o.HTTPProxy }},
	{"https-proxy", "proxy for https requests", func(o *config.Options) *null.String { return &o.HTTPSProxy }},
	{"no-proxy", "comma separated hosts that bypass the proxy", func(o *config.Options) *null.String { return &o.NoProxy }},
}

// optionFlagSet returns the flags that make up the command line config
// layer. Defaults are empty; config.Load supplies the real ones.
func optionFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	for _, f := range stringOptionFlags {
		flags.String(f.name, "", f.usage)
	}
	flags.Duration("timeout", 0, fmt.Sprintf("HTTP request timeout, 0 disables it (default %s)", config.DefaultTimeout))
	return flags
}

// optionsFromFlags returns the Options for the flags the user set.
func optionsFromFlags(flags *pflag.FlagSet) (config.Options, error) {
	var opts config.Options

	for _, f := range stringOptionFlags {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetString(f.name)
		if err != nil {
			return config.Options{}, err
		}
		*f.field(&opts) = null.StringFrom(value)
	}

	if flags.Changed("timeout") {
		timeout, err := flags.GetDuration("timeout")
		if err != nil {
			return config.Options{}, err
		}
		if timeout < 0 {
			return config.Options{}, fmt.Errorf("--timeout cannot be negative")
		}
		opts.Timeout = config.NullDurationFrom(timeout)
	}

	return opts, nil
}
