// Package resolver decides which driver version belongs next to an installed
// browser.
//
// Rules are evaluated in order and the first match wins:
//
//  1. a driver package exists for the browser version itself: use it
//  2. the cached driver equals the browser or the stable version: keep it
//  3. the browser is newer than stable: use stable
//  4. the browser is older than stable: fail with *OutdatedBrowserError
//  5. anything else (browser == stable, no package, stale cache): ErrIndeterminate
//
// The resolver performs no I/O of its own apart from the Prober callback.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ZebulonRouseFrantzich/driverman/internal/logging"
	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

var (
	// ErrIndeterminate means no rule produced a target. It signals a mismatch
	// between the metadata service and the distribution endpoint and is never
	// silently defaulted.
	ErrIndeterminate = errors.New("cannot determine driver version")

	// ErrInvalidInput is wrapped by *InputError.
	ErrInvalidInput = errors.New("invalid resolver input")
)

// Prober answers whether a driver package is published for an exact version.
type Prober interface {
	PackageExists(ctx context.Context, v version.Version) (bool, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, v version.Version) (bool, error)

// PackageExists calls f.
func (f ProberFunc) PackageExists(ctx context.Context, v version.Version) (bool, error) {
	return f(ctx, v)
}

// Inputs are the versions a resolution pass works from.
// Cached is the zero Version when nothing is installed.
type Inputs struct {
	Browser version.Version
	Stable  version.Version
	Cached  version.Version
}

// Rule identifies which precedence rule produced a target.
type Rule int

const (
	// RuleNone means no rule produced a target.
	RuleNone Rule = iota
	// RuleExactMatch means a driver is published for the browser version.
	RuleExactMatch
	// RuleAlreadyCurrent means the cached driver matches the browser or stable.
	RuleAlreadyCurrent
	// RuleStableFallback means the browser is newer than stable and the
	// stable driver is used.
	RuleStableFallback
)

// String returns the rule name used in log fields.
func (r Rule) String() string {
	switch r {
	case RuleExactMatch:
		return "exact-match"
	case RuleAlreadyCurrent:
		return "already-current"
	case RuleStableFallback:
		return "stable-fallback"
	default:
		return "none"
	}
}

// OutdatedBrowserError means the installed browser predates the published
// stable line and no driver exists for it. The user has to upgrade the browser.
type OutdatedBrowserError struct {
	Browser version.Version
	Stable  version.Version
}

func (e *OutdatedBrowserError) Error() string {
	return fmt.Sprintf("outdated browser: browser %s is older than stable %s and no driver is published for it; update the browser",
		e.Browser, e.Stable)
}

// InputError reports versions the resolver cannot compare.
type InputError struct {
	Browser version.Version
	Stable  version.Version
	Reason  string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: browser %s, stable %s: %s", ErrInvalidInput, e.Browser, e.Stable, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Resolver applies the precedence rules.
type Resolver struct {
	prober Prober
	logger logrus.FieldLogger
}

// New creates a Resolver. A nil logger discards output.
func New(prober Prober, logger logrus.FieldLogger) *Resolver {
	return &Resolver{
		prober: prober,
		logger: logging.OrDiscard(logger),
	}
}

// Resolve returns the single driver version that should be installed.
func (r *Resolver) Resolve(ctx context.Context, in Inputs) (version.Version, error) {
	target, _, err := r.ResolveRule(ctx, in)
	return target, err
}

// ResolveRule is Resolve that also reports the rule that matched.
func (r *Resolver) ResolveRule(ctx context.Context, in Inputs) (version.Version, Rule, error) {
	if in.Browser.IsZero() {
		return version.Version{}, RuleNone, &InputError{Browser: in.Browser, Stable: in.Stable, Reason: "browser version is missing"}
	}
	if r.prober == nil {
		return version.Version{}, RuleNone, fmt.Errorf("resolve: no package prober configured")
	}

	log := r.logger.WithFields(logrus.Fields{
		"browser": in.Browser.String(),
		"stable":  in.Stable.String(),
		"cached":  in.Cached.String(),
	})

	exists, err := r.prober.PackageExists(ctx, in.Browser)
	if err != nil {
		return version.Version{}, RuleNone, fmt.Errorf("probe package %s: %w", in.Browser, err)
	}
	if exists {
		log.WithField("rule", RuleExactMatch).Debug("driver published for browser version")
		return in.Browser, RuleExactMatch, nil
	}

	// A published exact match does not need the stable version; every
	// rule below does.
	if in.Stable.IsZero() {
		return version.Version{}, RuleNone, &InputError{Browser: in.Browser, Stable: in.Stable, Reason: "stable version is missing"}
	}
	if in.Cached.Equal(in.Browser) || in.Cached.Equal(in.Stable) {
		log.WithField("rule", RuleAlreadyCurrent).Debug("cached driver already matches")
		return in.Cached, RuleAlreadyCurrent, nil
	}

	if !version.SameShape(in.Browser, in.Stable) {
		return version.Version{}, RuleNone, &InputError{Browser: in.Browser, Stable: in.Stable, Reason: "component counts differ"}
	}
	switch in.Browser.Compare(in.Stable) {
	case 1:
		log.WithField("rule", RuleStableFallback).Debug("browser newer than stable, falling back to stable driver")
		return in.Stable, RuleStableFallback, nil
	case -1:
		return version.Version{}, RuleNone, &OutdatedBrowserError{Browser: in.Browser, Stable: in.Stable}
	}

	log.Warn("browser equals stable but no driver package is published for it")
	return version.Version{}, RuleNone, fmt.Errorf("%w: browser %s equals stable but no package is published",
		ErrIndeterminate, in.Browser)
}
