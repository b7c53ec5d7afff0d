package catalog

import (
	"context"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/browser"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
)

// Pipeline runs the driver and the extractor on the registry's session.
type Pipeline struct {
	registry  *browser.Registry
	driver    *Driver
	extractor *Extractor
	logger    *logging.Logger
}

// NewPipeline wires a pipeline. The registry stays the session's owner.
func NewPipeline(registry *browser.Registry, driver *Driver, extractor *Extractor, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pipeline{
		registry:  registry,
		driver:    driver,
		extractor: extractor,
		logger:    logger,
	}
}

// Fetch harvests a fresh catalog. Playwright waits cannot be cancelled, so
// ctx is only checked before the session is acquired.
func (p *Pipeline) Fetch(ctx context.Context) (Catalog, error) {
	var result Catalog
	err := p.registry.Run(ctx, func(s *browser.Session) error {
		list, err := p.driver.Drive(s)
		if err != nil {
			return err
		}
		result = New(p.extractor.Extract(list))
		return nil
	})
	if err != nil {
		p.logger.Warnf("catalog fetch failed: %v", err)
		return nil, err
	}
	p.logger.Infof("catalog fetched: %d entries", len(result))
	return result, nil
}
