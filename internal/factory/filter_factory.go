package factory

import (
	"github.com/mikey/spam-doctor/internal/adapters/filter"
	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/ports"
	"github.com/mikey/spam-doctor/internal/whitelist"
	"go.uber.org/zap"
)

// FilterFactory creates mail filters based on configuration
type FilterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	doctor *core.SpamDoctor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, doctor *core.SpamDoctor) *FilterFactory {
	return &FilterFactory{
		cfg:    cfg,
		logger: logger,
		doctor: doctor,
	}
}

// CreateMessageFilter creates the SMTP content filter
func (f *FilterFactory) CreateMessageFilter() ports.MessageFilter {
	serverCfg := f.cfg.GetServer()
	return filter.NewPostfixFilter(
		f.doctor,
		whitelist.NewChecker(serverCfg.WhitelistedDomains, f.logger),
		serverCfg,
		f.logger,
	)
}
