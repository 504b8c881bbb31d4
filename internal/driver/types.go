package driver

import (
	"time"

	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

// State is a step of a single Ensure call.
type State int

const (
	// StateIdle is the state before Ensure starts work.
	StateIdle State = iota
	// StateResolvingVersion computes the target version.
	StateResolvingVersion
	// StateUpToDate means the cached driver already matches the target.
	StateUpToDate
	// StateDownloading fetches the distribution archive.
	StateDownloading
	// StateExtracting unpacks the archive into the store.
	StateExtracting
	// StateRecordUpdated means the new driver is installed and recorded.
	StateRecordUpdated
	// StateFailed means Ensure stopped with an error and the record is unchanged.
	StateFailed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingVersion:
		return "resolving-version"
	case StateUpToDate:
		return "up-to-date"
	case StateDownloading:
		return "downloading"
	case StateExtracting:
		return "extracting"
	case StateRecordUpdated:
		return "record-updated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends an Ensure call.
func (s State) Terminal() bool {
	return s == StateUpToDate || s == StateRecordUpdated || s == StateFailed
}

// Result describes the outcome of Ensure.
type Result struct {
	// Version is the driver version in the store after the call. On failure
	// it is the target that could not be installed, if one was resolved.
	Version    version.Version
	State      State
	DriverPath string
	Duration   time.Duration
}

// Updated reports whether the call installed a new driver.
func (r *Result) Updated() bool {
	return r != nil && r.State == StateRecordUpdated
}
