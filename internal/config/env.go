package config

import (
	"fmt"

	"github.com/mstoykov/envconfig"
)

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// FromEnv reads the DRIVERMAN_* environment layer through lookup.
func FromEnv(lookup LookupFunc) (Options, error) {
	var opts Options
	if err := envconfig.Process("", &opts, lookup); err != nil {
		return Options{}, fmt.Errorf("read environment: %w", err)
	}
	return opts, nil
}
