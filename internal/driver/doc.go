// Package driver acquires the chromedriver build that matches the local
// browser and keeps it in a store directory.
//
// # Store layout
//
// The store holds the extracted distribution archive and a record of the
// installed version:
//
//	<store>/version.json                     {"version":"120.0.6099.109"}
//	<store>/chromedriver-<platform>/chromedriver[.exe]
//
// Archives are unpacked into a <store>/.extract-* staging directory. The
// driver directory is swapped into place only after the whole archive
// extracted cleanly, and the record is written last, so a failed Ensure
// leaves the previous driver and its record in place.
//
// # Usage
//
//	acq, err := driver.NewAcquirer(driver.Config{
//	    StoreDir:   "/home/user/.cache/driverman",
//	    Platform:   platform.DriverLinux64,
//	    HTTPClient: client,
//	    Browser:    browser.NewDetector("/usr/bin/google-chrome"),
//	    Stable:     metadata.NewClient(client, "", logger),
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := acq.Ensure(ctx)
//
// # Architecture
//
//   - Acquirer: version resolution and the download/extract/record sequence
//   - Downloader: archive fetch into a temporary file and the package probe
//   - Extractor: zip extraction into a staging directory
//   - Store: the store directory and its version record
package driver
