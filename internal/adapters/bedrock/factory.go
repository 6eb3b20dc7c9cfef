package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/spam-doctor/internal/adapters/llm"
	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Bedrock-backed classifiers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a classifier that asks a Bedrock model for verdicts
func (f *Factory) CreateClassifier() (*llm.Classifier, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	completer := NewCompleter(
		bedrockruntime.NewFromConfig(awsCfg),
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		bedrockCfg.Temperature,
		bedrockCfg.TopP,
		f.logger,
	)

	return llm.NewClassifier(
		completer,
		f.textProcessor,
		bedrockCfg.MaxBodySize,
		f.cfg.GetModel().MaxExamples,
		f.logger,
	), nil
}
