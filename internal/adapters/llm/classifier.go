// Package llm classifies messages by asking a large language model, using
// recent training samples as few-shot examples.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/utils"
)

// Completer sends a prompt to a model and returns its raw text answer
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// Verdict is the structured answer expected from the model
type Verdict struct {
	IsSpam      bool    `json:"is_spam"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Classifier implements core.Classifier and core.ProbabilityEstimator on top
// of a Completer
type Classifier struct {
	completer     Completer
	textProcessor *utils.TextProcessor
	maxBodySize   int
	maxExamples   int
	logger        *zap.Logger

	mu       sync.Mutex
	examples []core.TrainingSample
	trained  bool
	lastText string
	last     *Verdict
}

// NewClassifier creates a new LLM classifier
func NewClassifier(
	completer Completer,
	textProcessor *utils.TextProcessor,
	maxBodySize int,
	maxExamples int,
	logger *zap.Logger,
) *Classifier {
	return &Classifier{
		completer:     completer,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		maxExamples:   maxExamples,
		logger:        logger,
	}
}

// Trained reports whether few-shot examples have been loaded
func (c *Classifier) Trained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trained
}

// Train keeps the most recent samples of each label as few-shot examples.
// No request is sent to the model.
func (c *Classifier) Train(ctx context.Context, samples []string, labels []core.Label) error {
	if len(samples) != len(labels) {
		return fmt.Errorf("got %d samples but %d labels", len(samples), len(labels))
	}

	examples := selectExamples(samples, labels, c.maxExamples)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.examples = examples
	c.trained = true
	c.lastText, c.last = "", nil

	c.logger.Debug("Loaded few-shot examples",
		zap.String("model", c.completer.ModelName()),
		zap.Int("examples", len(examples)))
	return nil
}

// Predict asks the model whether text is spam
func (c *Classifier) Predict(ctx context.Context, text string) (core.Label, error) {
	v, err := c.analyze(ctx, text)
	if err != nil {
		return "", err
	}
	return core.LabelFor(v.IsSpam), nil
}

// PredictProbability returns the spam score reported by the model
func (c *Classifier) PredictProbability(ctx context.Context, text string) (float64, error) {
	v, err := c.analyze(ctx, text)
	if err != nil {
		return 0, err
	}
	return v.Score, nil
}

// analyze queries the model once per text; Predict and PredictProbability on
// the same text share the answer
func (c *Classifier) analyze(ctx context.Context, text string) (*Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last != nil && c.lastText == text {
		return c.last, nil
	}

	prompt := buildPrompt(c.examples, c.textProcessor.ProcessText(text, c.maxBodySize))
	answer, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	v, err := ParseVerdict(answer)
	if err != nil {
		c.logger.Debug("Unparsable model answer", zap.String("model", c.completer.ModelName()), zap.String("answer", answer))
		return nil, err
	}

	c.lastText, c.last = text, v
	return v, nil
}

// Close releases the underlying client when it holds resources
func (c *Classifier) Close() error {
	if closer, ok := c.completer.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// selectExamples takes up to limit samples, newest first, split evenly
// between spam and ham
func selectExamples(samples []string, labels []core.Label, limit int) []core.TrainingSample {
	if limit <= 0 {
		return nil
	}
	quota := map[core.Label]int{
		core.LabelSpam: (limit + 1) / 2,
		core.LabelHam:  limit / 2,
	}

	var out []core.TrainingSample
	for i := len(samples) - 1; i >= 0 && len(out) < limit; i-- {
		if quota[labels[i]] == 0 {
			continue
		}
		quota[labels[i]]--
		out = append(out, core.TrainingSample{Text: samples[i], Label: labels[i]})
	}
	return out
}

const promptHeader = `You are a spam detection system. Analyze the following message and determine if it's spam.
Respond with a JSON object containing:
- is_spam: boolean (true if spam, false if not)
- score: number between 0 and 1 (higher means more likely to be spam)
- explanation: string (brief explanation of why you think it's spam or not)
`

func buildPrompt(examples []core.TrainingSample, text string) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	if len(examples) > 0 {
		b.WriteString("\nLabeled examples:\n")
		for _, ex := range examples {
			fmt.Fprintf(&b, "[%s] %s\n", ex.Label, ex.Text)
		}
	}

	b.WriteString("\nMessage:\n")
	b.WriteString(text)
	b.WriteString("\n\nRespond only with the JSON object and nothing else.")
	return b.String()
}

// ParseVerdict decodes the model answer, tolerating text around the JSON object
func ParseVerdict(answer string) (*Verdict, error) {
	var v Verdict
	if err := json.Unmarshal([]byte(answer), &v); err == nil {
		return &v, nil
	}

	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return nil, errors.New("failed to extract JSON from LLM response")
	}
	if err := json.Unmarshal([]byte(answer[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &v, nil
}
