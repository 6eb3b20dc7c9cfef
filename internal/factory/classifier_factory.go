package factory

import (
	"fmt"

	"github.com/mikey/spam-doctor/internal/adapters/bayes"
	"github.com/mikey/spam-doctor/internal/adapters/bedrock"
	"github.com/mikey/spam-doctor/internal/adapters/gemini"
	"github.com/mikey/spam-doctor/internal/adapters/llm"
	"github.com/mikey/spam-doctor/internal/adapters/openai"
	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/utils"
	"go.uber.org/zap"
)

// Model types accepted in model.type
const (
	ModelNaiveBayes = "naive_bayes"
	ModelOpenAI     = "openai"
	ModelGemini     = "gemini"
	ModelBedrock    = "bedrock"
)

// ClassifierFactory creates classifiers
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a classifier based on the configuration
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	modelCfg := f.cfg.GetModel()

	var (
		classifier *llm.Classifier
		err        error
	)
	switch modelCfg.Type {
	case ModelNaiveBayes, "":
		return bayes.NewClassifier(modelCfg.Path, f.logger), nil
	case ModelOpenAI:
		classifier, err = openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case ModelGemini:
		classifier, err = gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case ModelBedrock:
		classifier, err = bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelCfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return classifier, nil
}
