package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZebulonRouseFrantzich/driverman/internal/browser"
	"github.com/ZebulonRouseFrantzich/driverman/internal/driver"
	"github.com/ZebulonRouseFrantzich/driverman/internal/lock"
	"github.com/ZebulonRouseFrantzich/driverman/internal/metadata"
	"github.com/ZebulonRouseFrantzich/driverman/internal/resolver"
	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

func TestDescribeError(t *testing.T) {
	outdated := &resolver.OutdatedBrowserError{
		Browser: version.MustParse("115.0.5790.170"),
		Stable:  version.MustParse("120.0.6099.109"),
	}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "usage", err: &usageError{err: errors.New("unknown flag: --bogus")}, wantCode: exitUsage, wantMsg: "unknown flag"},
		{name: "config", err: &configError{err: errors.New("store_dir must be absolute")}, wantCode: exitUsage, wantMsg: "invalid configuration"},
		{name: "interrupted", err: fmt.Errorf("download: %w", context.Canceled), wantCode: exitInterrupted, wantMsg: "interrupted"},
		{name: "outdated", err: fmt.Errorf("resolve: %w", outdated), wantCode: exitOutdatedBrowser, wantMsg: "115.0.5790.170 is older than the stable driver 120.0.6099.109"},
		{name: "browser_not_found", err: fmt.Errorf("detect browser version: %w", browser.ErrNotFound), wantCode: exitBrowserNotFound, wantMsg: "browser not found"},
		{name: "indeterminate", err: resolver.ErrIndeterminate, wantCode: exitIndeterminate, wantMsg: "cannot determine"},
		{name: "metadata", err: fmt.Errorf("query stable version: %w", metadata.ErrFetchFailed), wantCode: exitNetwork, wantMsg: "metadata fetch failed"},
		{name: "download", err: &driver.StatusError{URL: "https://example.com/a.zip", StatusCode: 503}, wantCode: exitNetwork, wantMsg: "503"},
		{name: "extraction", err: fmt.Errorf("%w: not a zip", driver.ErrExtractionFailed), wantCode: exitExtraction, wantMsg: "not a zip"},
		{name: "locked", err: lock.ErrLockExists, wantCode: exitLocked, wantMsg: "lock"},
		{name: "other", err: errors.New("disk full"), wantCode: exitFailure, wantMsg: "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := describeError(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, msg, tt.wantMsg)
		})
	}
}
