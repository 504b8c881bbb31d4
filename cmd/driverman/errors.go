package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/driverman/internal/browser"
	"github.com/ZebulonRouseFrantzich/driverman/internal/config"
	"github.com/ZebulonRouseFrantzich/driverman/internal/driver"
	"github.com/ZebulonRouseFrantzich/driverman/internal/lock"
	"github.com/ZebulonRouseFrantzich/driverman/internal/metadata"
	"github.com/ZebulonRouseFrantzich/driverman/internal/resolver"
)

// Exit codes.
const (
	exitOK = iota
	exitFailure
	exitUsage
	exitBrowserNotFound
	exitOutdatedBrowser
	exitIndeterminate
	exitNetwork
	exitExtraction
	exitLocked
	exitInterrupted
)

// usageError is a bad flag or argument.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// configError is a configuration that failed to load.
type configError struct {
	err     error
	verbose bool
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// describeError maps err to an exit code and a one-line message.
//
//nolint:cyclop
func describeError(err error) (int, string) {
	var (
		usageErr    *usageError
		configErr   *configError
		outdatedErr *resolver.OutdatedBrowserError
	)

	switch {
	case errors.As(err, &usageErr):
		return exitUsage, err.Error()
	case errors.As(err, &configErr):
		return exitUsage, "invalid configuration: " + config.FormatError(configErr.err, configErr.verbose)
	case errors.Is(err, context.Canceled):
		return exitInterrupted, "interrupted"
	case errors.As(err, &outdatedErr):
		return exitOutdatedBrowser, fmt.Sprintf("installed browser %s is older than the stable driver %s; update the browser",
			outdatedErr.Browser, outdatedErr.Stable)
	case errors.Is(err, browser.ErrNotFound):
		return exitBrowserNotFound, err.Error()
	case errors.Is(err, resolver.ErrIndeterminate):
		return exitIndeterminate, err.Error()
	case errors.Is(err, metadata.ErrFetchFailed), errors.Is(err, driver.ErrDownloadFailed):
		return exitNetwork, err.Error()
	case errors.Is(err, driver.ErrExtractionFailed):
		return exitExtraction, err.Error()
	case errors.Is(err, lock.ErrLockExists):
		return exitLocked, err.Error()
	default:
		return exitFailure, err.Error()
	}
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &usageError{err: err}
	}
	return nil
}
