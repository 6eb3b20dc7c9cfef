package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/factory"
	"github.com/mikey/spam-doctor/internal/logging"
	"github.com/mikey/spam-doctor/internal/ports"
	"github.com/mikey/spam-doctor/internal/utils"
)

// Options carries the command line settings that shape the container
type Options struct {
	ConfigFile string
	// Console selects the terminal logger driven by Verbose and JSONLog
	// instead of the logging section of the config file
	Console bool
	Verbose bool
	JSONLog bool
}

// BuildContainer creates and configures a dependency injection container
func BuildContainer(opts Options) (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		func() Options { return opts },

		// Register configuration
		func(opts Options) (*config.Config, error) {
			return config.New(opts.ConfigFile)
		},

		// Register logger
		func(opts Options, cfg *config.Config) (*zap.Logger, error) {
			var logger *zap.Logger
			var err error
			if opts.Console {
				logger, err = logging.InitConsoleLogger(opts.Verbose, opts.JSONLog)
			} else {
				logger, err = logging.InitLogger(cfg)
			}
			if err != nil {
				return nil, err
			}

			if file := cfg.GetViper().ConfigFileUsed(); file != "" {
				logger.Info("Loaded configuration from file", zap.String("file", file))
			} else {
				logger.Debug("No configuration file found, using defaults")
			}
			return logger, nil
		},

		func(logger *zap.Logger) *utils.TextProcessor {
			return utils.NewTextProcessor(logger.Named("sanitizer"))
		},

		// Register factories
		factory.NewClassifierFactory,
		factory.NewStoreFactory,
		factory.NewFilterFactory,

		func(f *factory.ClassifierFactory) (core.Classifier, error) {
			return f.CreateClassifier()
		},
		func(f *factory.StoreFactory) (*factory.Stores, error) {
			return f.CreateStores()
		},

		// Register the detector
		func(
			cfg *config.Config,
			logger *zap.Logger,
			classifier core.Classifier,
			stores *factory.Stores,
			textProcessor *utils.TextProcessor,
		) *core.SpamDoctor {
			modelCfg := cfg.GetModel()
			return core.NewSpamDoctor(
				classifier,
				stores.Lexicon,
				stores.Corpus,
				stores.SpamLog,
				textProcessor,
				logger.Named("doctor"),
				core.Settings{
					ModelType:           modelCfg.Type,
					ConfidenceThreshold: modelCfg.ConfidenceThreshold,
					SeedDefaultCorpus:   modelCfg.SeedDefaultCorpus,
					FilterItems:         cfg.GetFilterItems(),
				},
			)
		},

		// Register mail filter
		func(f *factory.FilterFactory) ports.MessageFilter {
			return f.CreateMessageFilter()
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}
	return container, nil
}
