package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ZebulonRouseFrantzich/driverman/internal/browser"
	"github.com/ZebulonRouseFrantzich/driverman/internal/config"
	"github.com/ZebulonRouseFrantzich/driverman/internal/driver"
	"github.com/ZebulonRouseFrantzich/driverman/internal/metadata"
	"github.com/ZebulonRouseFrantzich/driverman/internal/transport"
)

// newAcquirer wires the acquirer and its collaborators from cfg. reg may be
// nil when metrics are not exported.
func newAcquirer(cfg config.Config, logger logrus.FieldLogger, reg prometheus.Registerer) (*driver.Acquirer, error) {
	client := transport.NewClient(transport.Options{
		Timeout: cfg.Timeout,
		Proxy:   cfg.Proxy,
	})

	var detector browser.Detector
	if cfg.BrowserPath != "" {
		detector = browser.NewDetector(cfg.BrowserPath)
	}

	var metrics *driver.Metrics
	if reg != nil {
		metrics = driver.NewMetrics(reg)
	}

	return driver.NewAcquirer(driver.Config{
		StoreDir:        cfg.StoreDir,
		Platform:        cfg.Platform,
		DistributionURL: cfg.DistributionURL,
		PinnedVersion:   cfg.PinnedVersion,
		HTTPClient:      client,
		Browser:         detector,
		Stable:          metadata.NewClient(client, cfg.StableURL, logger),
		Logger:          logger,
		Metrics:         metrics,
	})
}
