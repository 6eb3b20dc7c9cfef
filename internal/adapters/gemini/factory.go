package gemini

import (
	"context"
	"errors"

	"github.com/mikey/spam-doctor/internal/adapters/llm"
	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Gemini-backed classifiers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for Gemini classifiers
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a classifier that asks Gemini for verdicts
func (f *Factory) CreateClassifier() (*llm.Classifier, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	completer, err := NewCompleter(
		context.Background(),
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
	if err != nil {
		return nil, err
	}

	return llm.NewClassifier(
		completer,
		f.textProcessor,
		geminiCfg.MaxBodySize,
		f.cfg.GetModel().MaxExamples,
		f.logger,
	), nil
}
