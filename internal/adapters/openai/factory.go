package openai

import (
	"errors"

	"github.com/mikey/spam-doctor/internal/adapters/llm"
	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates OpenAI-backed classifiers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for OpenAI classifiers
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a classifier that asks OpenAI for verdicts
func (f *Factory) CreateClassifier() (*llm.Classifier, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	completer := NewCompleter(
		openai.NewClient(openaiCfg.APIKey),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
	)

	return llm.NewClassifier(
		completer,
		f.textProcessor,
		openaiCfg.MaxBodySize,
		f.cfg.GetModel().MaxExamples,
		f.logger,
	), nil
}
